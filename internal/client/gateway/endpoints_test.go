package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/tradeguard/internal/client/models"
)

type recorded struct {
	method string
	path   string
	query  string
	body   string
}

type recorder struct {
	mu    sync.Mutex
	calls []recorded
	reply string
}

func (rec *recorder) handler(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	rec.mu.Lock()
	rec.calls = append(rec.calls, recorded{r.Method, r.URL.Path, r.URL.RawQuery, string(b)})
	reply := rec.reply
	rec.mu.Unlock()
	if reply == "" {
		reply = `{"success":true,"data":null,"message":"Success"}`
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, reply)
}

func (rec *recorder) last(t *testing.T) recorded {
	t.Helper()
	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.NotEmpty(t, rec.calls)
	return rec.calls[len(rec.calls)-1]
}

func (rec *recorder) respondWith(reply string) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.reply = reply
}

func (rec *recorder) count() int {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return len(rec.calls)
}

func ptr[T any](v T) *T { return &v }

func TestEndpoints_Routes(t *testing.T) {
	rec := &recorder{}
	g, _ := newTestGateway(t, rec.handler)
	ctx := context.Background()

	tests := []struct {
		name   string
		call   func() bool
		method string
		path   string
		query  string
		body   string
	}{
		{"register", func() bool {
			return g.Register(ctx, models.RegisterRequest{Email: "a@b.com", Username: "alice", Password: "pw"}).OK
		}, "POST", "/api/users/register", "", `{"email":"a@b.com","username":"alice","password":"pw"}`},
		{"login", func() bool {
			return g.Login(ctx, models.LoginRequest{Email: "a@b.com", Password: "secret"}).OK
		}, "POST", "/api/users/login", "", `{"email":"a@b.com","password":"secret"}`},
		{"profile", func() bool { return g.Profile(ctx).OK }, "GET", "/api/users/profile", "", ""},
		{"quick analyze", func() bool {
			return g.QuickAnalyze(ctx, models.QuickAnalyzeRequest{Trades: []models.Trade{{ProfitLoss: 50}}}).OK
		}, "POST", "/api/analyze/quick", "", `{"trades":[{"profit_loss":50}]}`},
		{"get analysis", func() bool { return g.GetAnalysis(ctx, "an-1").OK }, "GET", "/api/analyze/an-1", "", ""},
		{"list analyses default limit", func() bool { return g.ListAnalyses(ctx, models.ListQuery{}).OK },
			"GET", "/api/analyze/", "limit=20&skip=0", ""},
		{"list analyses page", func() bool { return g.ListAnalyses(ctx, models.ListQuery{Skip: 40, Limit: 10}).OK },
			"GET", "/api/analyze/", "limit=10&skip=40", ""},
		{"risk calculate", func() bool {
			return g.CalculateRisk(ctx, map[string]models.RiskDetail{"no_stop_loss": {Severity: 40}}).OK
		}, "POST", "/api/risk/calculate", "", `{"no_stop_loss":{"severity":40,"threshold":0,"message":""}}`},
		{"risk calculate empty", func() bool { return g.CalculateRisk(ctx, nil).OK }, "POST", "/api/risk/calculate", "", `{}`},
		{"risk simulate", func() bool {
			return g.SimulateRisk(ctx, models.SimulationRequest{CurrentScore: 60, Improvements: map[string]float64{"over_leverage": 20}}).OK
		}, "POST", "/api/risk/simulate", "", `{"current_score":60,"improvements":{"over_leverage":20}}`},
		{"risk types", func() bool { return g.RiskTypes(ctx).OK }, "GET", "/api/risk/types", "", ""},
		{"generate report defaults to markdown", func() bool {
			return g.GenerateReport(ctx, models.ReportRequest{AnalysisID: "an-1"}).OK
		}, "POST", "/api/reports/generate", "", `{"analysis_id":"an-1","format":"markdown"}`},
		{"list reports", func() bool { return g.ListReports(ctx, "an-1").OK }, "GET", "/api/reports/an-1", "", ""},
		{"get settings", func() bool { return g.GetSettings(ctx).OK }, "GET", "/api/users/settings", "", ""},
		{"update settings", func() bool {
			return g.UpdateSettings(ctx, models.SettingsUpdate{MinWinRate: ptr(55.0), AIEnabled: ptr(false)}).OK
		}, "PUT", "/api/users/settings", "", `{"min_win_rate":55,"ai_enabled":false}`},
		{"get alert settings", func() bool { return g.GetAlertSettings(ctx).OK }, "GET", "/api/alerts/settings", "", ""},
		{"snooze alert", func() bool {
			return g.SnoozeAlert(ctx, "al-9", models.SnoozeRequest{DurationMinutes: 60}).OK
		}, "POST", "/api/alerts/al-9/snooze", "", `{"duration_minutes":60}`},
		{"dashboard summary", func() bool { return g.DashboardSummary(ctx).OK }, "GET", "/api/dashboard/summary", "", ""},
		{"dashboard metrics default", func() bool { return g.DashboardMetrics(ctx, "").OK },
			"GET", "/api/dashboard/metrics", "period=month", ""},
		{"dashboard insights", func() bool { return g.DashboardInsights(ctx, 5).OK },
			"GET", "/api/dashboard/insights", "limit=5", ""},
		{"connect deriv", func() bool {
			return g.ConnectDeriv(ctx, models.DerivConnectRequest{APIToken: "abcdefghijkl", AppID: "1089", AutoSync: true}).OK
		}, "POST", "/api/integrations/deriv/connect", "", `{"api_token":"abcdefghijkl","app_id":"1089","auto_sync":true}`},
		{"list connections", func() bool { return g.ListDerivConnections(ctx).OK },
			"GET", "/api/integrations/deriv/connections", "", ""},
		{"status one", func() bool { return g.DerivStatus(ctx, "c1").OK },
			"GET", "/api/integrations/deriv/status", "connection_id=c1", ""},
		{"sync all", func() bool { return g.SyncDeriv(ctx, "", models.SyncRequest{AnalyzeAfterSync: true}).OK },
			"POST", "/api/integrations/deriv/sync", "", `{"force_full_sync":false,"analyze_after_sync":true}`},
		{"trades", func() bool {
			return g.DerivTrades(ctx, models.DerivTradesQuery{ConnectionID: "c1", Limit: 50, Offset: 100, Status: "won"}).OK
		}, "GET", "/api/integrations/deriv/trades", "connection_id=c1&limit=50&offset=100&status=won", ""},
		{"update connection", func() bool {
			return g.UpdateDerivConnection(ctx, "c1", models.UpdateConnectionRequest{AutoSync: ptr(false)}).OK
		}, "PUT", "/api/integrations/deriv/connections/c1", "", `{"auto_sync":false}`},
		{"disconnect", func() bool { return g.DisconnectDeriv(ctx, "c1").OK },
			"DELETE", "/api/integrations/deriv/connections/c1", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.True(t, tc.call())
			got := rec.last(t)
			assert.Equal(t, tc.method, got.method)
			assert.Equal(t, tc.path, got.path)
			assert.Equal(t, tc.query, got.query)
			if tc.body == "" {
				assert.Empty(t, got.body)
			} else {
				assert.JSONEq(t, tc.body, got.body)
			}
		})
	}
}

func TestEndpoints_ValidationSkipsRequest(t *testing.T) {
	rec := &recorder{}
	g, _ := newTestGateway(t, rec.handler)
	ctx := context.Background()

	tests := []struct {
		name    string
		call    func() (bool, string)
		wantErr string
	}{
		{"short api token", func() (bool, string) {
			r := g.ConnectDeriv(ctx, models.DerivConnectRequest{APIToken: "short", AppID: "1089"})
			return r.OK, r.Error
		}, "api_token must be at least 10 characters"},
		{"days back range", func() (bool, string) {
			r := g.SyncDeriv(ctx, "", models.SyncRequest{DaysBack: 500})
			return r.OK, r.Error
		}, "days_back must be at most 365"},
		{"score out of range", func() (bool, string) {
			r := g.SimulateRisk(ctx, models.SimulationRequest{CurrentScore: -1, Improvements: map[string]float64{}})
			return r.OK, r.Error
		}, "current_score must be greater than or equal to 0"},
		{"bad email", func() (bool, string) {
			r := g.Login(ctx, models.LoginRequest{Email: "nope", Password: "x"})
			return r.OK, r.Error
		}, "email must be a valid email address"},
		{"bad report format", func() (bool, string) {
			r := g.GenerateReport(ctx, models.ReportRequest{AnalysisID: "a", Format: "docx"})
			return r.OK, r.Error
		}, "format must be one of"},
		{"bad period", func() (bool, string) {
			r := g.DashboardMetrics(ctx, "decade")
			return r.OK, r.Error
		}, "period must be one of"},
		{"empty trades", func() (bool, string) {
			r := g.QuickAnalyze(ctx, models.QuickAnalyzeRequest{})
			return r.OK, r.Error
		}, "trades is required"},
		{"empty analysis id", func() (bool, string) {
			r := g.GetAnalysis(ctx, "")
			return r.OK, r.Error
		}, "analysis id is required"},
		{"snooze too long", func() (bool, string) {
			r := g.SnoozeAlert(ctx, "a1", models.SnoozeRequest{DurationMinutes: 20000})
			return r.OK, r.Error
		}, "duration_minutes must be at most 10080"},
		{"trade status", func() (bool, string) {
			r := g.DerivTrades(ctx, models.DerivTradesQuery{Status: "pending"})
			return r.OK, r.Error
		}, "Status must be one of"},
		{"missing connection id", func() (bool, string) {
			r := g.DisconnectDeriv(ctx, "")
			return r.OK, r.Error
		}, "connection id is required"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ok, msg := tc.call()
			assert.False(t, ok)
			assert.Contains(t, msg, tc.wantErr)
		})
	}
	assert.Zero(t, rec.count(), "invalid requests must not reach the backend")
}

func TestEndpoints_DecodeBackendPayloads(t *testing.T) {
	rec := &recorder{}
	g, _ := newTestGateway(t, rec.handler)
	ctx := context.Background()

	rec.respondWith(`{"success":true,"data":{"user":{"id":"1","email":"a@b.com","username":"alice","created_at":"2024-01-01T00:00:00"},
		"access_token":"tok123","token_type":"bearer"},"message":"Login successful","error":null}`)
	login := g.Login(ctx, models.LoginRequest{Email: "a@b.com", Password: "secret"})
	require.True(t, login.OK, login.Error)
	assert.Equal(t, "tok123", login.Data.AccessToken)
	assert.Equal(t, models.FlexibleID("1"), login.Data.User.ID)

	rec.respondWith(`{"success":true,"data":{"over_leverage":{"name":"Over Leverage","description":"d","threshold":"2%","weight":30}}}`)
	types := g.RiskTypes(ctx)
	require.True(t, types.OK, types.Error)
	assert.Equal(t, float64(30), types.Data["over_leverage"].Weight)

	rec.respondWith(`{"success":true,"data":[{"id":"r1","report_type":"markdown","download_count":2,
		"generated_at":"2024-02-03T04:05:06.789","download_url":"/api/reports/download/r1"}]}`)
	reports := g.ListReports(ctx, "an-1")
	require.True(t, reports.OK, reports.Error)
	require.Len(t, reports.Data, 1)
	assert.Equal(t, 2, reports.Data[0].DownloadCount)

	rec.respondWith(`{"success":true,"data":{"trades":[{"id":"t1","deriv_trade_id":"9","symbol":"R_100","contract_type":"CALL",
		"status":"won","stake":10,"profit":8.5,"purchase_time":"2024-01-01T10:00:00","expiry_time":null,"duration":60,
		"buy_price":10,"sell_price":18.5,"barrier":null,"payout":18.5}],"stats":{"total_trades":1,"total_profit":8.5,
		"win_count":1,"loss_count":0,"open_count":0,"most_traded_symbol":null},
		"pagination":{"total":1,"limit":100,"offset":0,"has_more":false}}}`)
	page := g.DerivTrades(ctx, models.DerivTradesQuery{})
	require.True(t, page.OK, page.Error)
	require.Len(t, page.Data.Trades, 1)
	assert.Equal(t, 8.5, page.Data.Trades[0].Profit)
	assert.True(t, page.Data.Trades[0].ExpiryTime.IsZero())
	assert.Equal(t, "", rec.last(t).query)

	rec.respondWith(`{"success":true,"data":null,"message":"Deriv account disconnected successfully","error":null}`)
	del := g.DisconnectDeriv(ctx, "c1")
	assert.True(t, del.OK)

	var raw json.RawMessage
	rec.respondWith(`{"id":"r1","content":"# Report"}`)
	raw = g.DownloadReport(ctx, "r1", false)
	assert.JSONEq(t, `{"id":"r1","content":"# Report"}`, string(raw))
}
