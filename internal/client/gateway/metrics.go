package gateway

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// instrument wraps next with request counting and latency observation.
// Collectors already registered on reg are reused, so several gateways may
// share one registry.
func instrument(reg prometheus.Registerer, next http.RoundTripper) (http.RoundTripper, error) {
	if next == nil {
		next = http.DefaultTransport
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tradeguard",
		Subsystem: "gateway",
		Name:      "requests_total",
		Help:      "Requests issued to the TradeGuard API, by status code and method.",
	}, []string{"code", "method"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tradeguard",
		Subsystem: "gateway",
		Name:      "request_duration_seconds",
		Help:      "Latency of requests issued to the TradeGuard API.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"code", "method"})

	inFlight := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "tradeguard",
		Subsystem: "gateway",
		Name:      "in_flight_requests",
		Help:      "Requests to the TradeGuard API currently in flight.",
	})

	var err error
	if requests, err = registerOrReuse(reg, requests); err != nil {
		return nil, err
	}
	if duration, err = registerOrReuse(reg, duration); err != nil {
		return nil, err
	}
	if inFlight, err = registerOrReuse(reg, inFlight); err != nil {
		return nil, err
	}

	return promhttp.InstrumentRoundTripperInFlight(inFlight,
		promhttp.InstrumentRoundTripperCounter(requests,
			promhttp.InstrumentRoundTripperDuration(duration, next),
		),
	), nil
}

func registerOrReuse[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}
