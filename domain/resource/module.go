package resource

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/emergent-company/ldpgraph/domain/identity"
	"github.com/emergent-company/ldpgraph/internal/config"
	"github.com/emergent-company/ldpgraph/pkg/ldp"
	"github.com/emergent-company/ldpgraph/pkg/rdf"
)

// Module wires a Repository against the configured Fedora endpoint for
// applications embedding this package. The stub server does not use it.
var Module = fx.Module("resource",
	fx.Provide(
		fx.Annotate(NewLDPClient, fx.As(fx.Self()), fx.As(new(Client))),
		NewResolver,
		NewMinter,
		rdf.DefaultRegistry,
		NewRepository,
	),
)

// NewLDPClient builds the repository client from configuration.
func NewLDPClient(cfg *config.Config, log *slog.Logger) *ldp.Client {
	return ldp.NewClient(cfg.Fedora.ClientConfig(), log)
}

// NewResolver roots PID resolution at the configured repository.
func NewResolver(client *ldp.Client) *identity.Resolver {
	return identity.NewResolver(client.BaseURL())
}

// NewMinter mints PIDs in the configured namespace.
func NewMinter(cfg *config.Config) *identity.Minter {
	return identity.NewMinter(cfg.PIDNamespace)
}
