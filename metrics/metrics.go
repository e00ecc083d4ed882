// Package metrics exposes the node's Prometheus instrumentation: DKG phase
// duration, request outcomes, and signing session outcomes, served over a
// bound /metrics HTTP endpoint alongside the standard Go/process collectors.
package metrics

import (
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/driftcommittee/node/log"
)

var (
	// Registry collects every series this package registers.
	Registry = prometheus.NewRegistry()

	// DkgPhaseDuration observes how long a node's DKG phase takes from
	// Initializing to its terminal state, labeled by outcome.
	DkgPhaseDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dkg_phase_duration_seconds",
		Help:    "Duration of a node's DKG phase, from Initializing to terminal.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	// RequestsTotal counts served requests by committee log result, or by
	// "malformed"/"failed" when no log was produced.
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "requests_total",
		Help: "Number of requests served by the request loop, by outcome.",
	}, []string{"result"})

	// SigningSessionsTotal counts signing FSM runs by outcome.
	SigningSessionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "signing_sessions_total",
		Help: "Number of signing sessions completed, by outcome.",
	}, []string{"outcome"})

	bound = false
)

func bind() error {
	if bound {
		return nil
	}
	bound = true

	if err := Registry.Register(collectors.NewGoCollector()); err != nil {
		return err
	}
	if err := Registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return err
	}

	for _, c := range []prometheus.Collector{DkgPhaseDuration, RequestsTotal, SigningSessionsTotal} {
		if err := Registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Start binds every collector and serves /metrics at addr. It logs and
// returns nil rather than failing the caller's startup if the bind or
// listen fails: metrics are best-effort, never a reason to keep a node
// from serving requests.
func Start(addr string) net.Listener {
	logger := log.DefaultLogger().Named("metrics")
	if err := bind(); err != nil {
		logger.Warnw("metric registration failed", "error", err)
		return nil
	}

	l, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Warnw("listen failed", "addr", addr, "error", err)
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry}))
	s := &http.Server{Addr: l.Addr().String(), Handler: mux}
	go func() {
		logger.Warnw("metrics server stopped", "error", s.Serve(l))
	}()
	logger.Infow("metrics server started", "addr", l.Addr().String())
	return l
}
