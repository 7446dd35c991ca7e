package ldpstub

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var OperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ldpstub_operations_total",
	Help: "Total number of write operations handled by the stub repository",
}, []string{"operation"})
