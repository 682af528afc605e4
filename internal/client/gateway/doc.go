// Package gateway is the single component that issues HTTP calls to the
// TradeGuard backend.
//
// # Overview
//
// A Gateway is constructed once with New and shared by the session manager
// and the CLI. It resolves paths against the configured base URL, attaches
// the bearer credential supplied by the registered credential source, tags
// every request with an X-Request-ID and normalizes every outcome into a
// Result:
//
//	res := gateway.Call[models.Profile](ctx, g, http.MethodGet, "/api/users/profile", nil)
//	if !res.OK {
//	    fmt.Println(res.Error)
//	}
//
// Typed helpers for each endpoint family (auth, analysis, risk, reports,
// settings, alerts, dashboard, broker integration) live on *Gateway.
//
// # Error Handling
//
// Gateway calls never return a Go error and never panic on malformed input.
// Transport failures, cancelled contexts and unparseable 2xx bodies produce
// MsgNetworkError. Other failures carry the backend's message, taken from
// the first non-empty of the detail, error and message fields, or
// MsgRequestFailed when none is present. Structured values are rendered as
// compact JSON.
//
// A 401 response invokes the unauthorized handler once for that call before
// the failure is returned. Concurrent rejected calls each invoke it.
//
// # Concurrency
//
// A Gateway is safe for concurrent use. Each call takes its own snapshot of
// the credential when it is issued. The hooks may be replaced at any time.
package gateway
