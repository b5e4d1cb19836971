// Package metrics exposes Prometheus metrics for the server: authentication
// decision outcomes and per-method RPC counts and latencies.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

type Metrics struct {
	registry      *prometheus.Registry
	authDecisions *prometheus.CounterVec
	rpcRequests   *prometheus.CounterVec
	rpcDuration   *prometheus.HistogramVec
}

// New creates the metrics on a private registry, together with the standard
// Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: reg,
		authDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gophauth_auth_decisions_total",
				Help: "Authentication decisions by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		rpcRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gophauth_rpc_requests_total",
				Help: "Unary RPCs handled, by method and status code",
			},
			[]string{"method", "code"},
		),
		rpcDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gophauth_rpc_duration_seconds",
				Help:    "Unary RPC latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}

	reg.MustRegister(m.authDecisions, m.rpcRequests, m.rpcDuration)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) ObserveLogin(outcome string) {
	m.authDecisions.WithLabelValues("login", outcome).Inc()
}

func (m *Metrics) ObserveAuthenticate(outcome string) {
	m.authDecisions.WithLabelValues("authenticate", outcome).Inc()
}

// UnaryServerInterceptor records the count and latency of every unary call.
func (m *Metrics) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		m.rpcDuration.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())
		m.rpcRequests.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
		return resp, err
	}
}
