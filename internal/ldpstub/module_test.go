package ldpstub

import (
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	"github.com/emergent-company/ldpgraph/internal/config"
	"github.com/emergent-company/ldpgraph/pkg/logger"
)

func TestModuleGraph(t *testing.T) {
	err := fx.ValidateApp(
		logger.Module,
		config.Module,
		Module,
		fx.Invoke(func(*echo.Echo) {}),
	)
	require.NoError(t, err)
}
