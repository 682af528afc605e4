package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/tradeguard/internal/client/models"
	"github.com/dmitrijs2005/tradeguard/internal/server/engine"
)

const (
	statusConnected = "connected"
	statusDisabled  = "disabled"

	defaultSyncDays  = 30
	defaultTradeSize = 50
	// syncBatch bounds the synthetic trades produced by one sync.
	syncBatch = 10
)

var syncIntervals = map[string]time.Duration{
	"hourly": time.Hour,
	"daily":  24 * time.Hour,
	"weekly": 7 * 24 * time.Hour,
}

// testConnection stands in for the broker handshake. Tokens starting with
// "invalid" are rejected.
func testConnection(req models.DerivConnectRequest) (json.RawMessage, error) {
	if strings.HasPrefix(req.APIToken, "invalid") {
		return nil, errors.New("invalid API token")
	}
	info, err := json.Marshal(map[string]any{
		"success": true,
		"account_info": map[string]any{
			"loginid":    req.AccountID,
			"currency":   "USD",
			"is_virtual": strings.HasPrefix(req.AccountID, "VR"),
		},
	})
	return info, err
}

func (a *API) derivConnect(c *gin.Context) {
	var req models.DerivConnectRequest
	if !bindJSON(c, &req) {
		return
	}
	userID := currentUserID(c)

	if req.AccountID == "" {
		req.AccountID = "CR" + strings.ToUpper(uuid.NewString()[:7])
	}
	for _, existing := range a.data.userConnections(userID) {
		if existing.AccountID != nil && *existing.AccountID == req.AccountID {
			fail(c, http.StatusBadRequest, "Account already connected")
			return
		}
	}

	testResult, err := testConnection(req)
	if err != nil {
		fail(c, http.StatusBadRequest, "Connection test failed: "+err.Error())
		return
	}

	now := models.Timestamp{Time: a.now()}
	name := req.ConnectionName
	if name == "" {
		name = "Deriv " + req.AccountID
	}
	freq := req.SyncFrequency
	if freq == "" {
		freq = "daily"
	}
	days := req.SyncDaysBack
	if days == 0 {
		days = defaultSyncDays
	}
	accountType := "real"
	if strings.HasPrefix(req.AccountID, "VR") {
		accountType = "demo"
	}
	accountID := req.AccountID

	// The API token is only checked, never stored.
	rec := &connectionRecord{
		DerivConnection: models.DerivConnection{
			ID:               uuid.NewString(),
			ConnectionName:   name,
			ConnectionStatus: statusConnected,
			AccountID:        &accountID,
			AccountType:      &accountType,
			AutoSync:         req.AutoSync,
			SyncFrequency:    freq,
			CreatedAt:        now,
			ConnectedAt:      now,
		},
		UserID:       userID,
		SyncDaysBack: days,
	}
	a.data.addConnection(rec)
	if req.AutoSync {
		a.syncConnection(c, rec.ID, days, true)
	}

	conn, _ := a.data.updateConnection(userID, rec.ID, func(*connectionRecord) {})
	a.log.Info(c.Request.Context(), "deriv connected", "connection_id", rec.ID, "user_id", userID)
	ok(c, models.ConnectResult{Connection: conn.DerivConnection, TestResult: testResult},
		"Deriv account connected successfully. Initial sync started in background.")
}

func (a *API) derivConnections(c *gin.Context) {
	list := models.ConnectionList{Connections: []models.DerivConnection{}}
	for _, rec := range a.data.userConnections(currentUserID(c)) {
		list.Connections = append(list.Connections, rec.DerivConnection)
	}
	list.Total = len(list.Connections)
	ok(c, list, "")
}

// selectConnections returns the connection named by the connection_id query
// parameter, or all of them. It writes a 404 and returns false for an
// unknown id.
func (a *API) selectConnections(c *gin.Context) ([]connectionRecord, bool) {
	all := a.data.userConnections(currentUserID(c))
	id := c.Query("connection_id")
	if id == "" {
		return all, true
	}
	for _, rec := range all {
		if rec.ID == id {
			return []connectionRecord{rec}, true
		}
	}
	fail(c, http.StatusNotFound, "Connection not found")
	return nil, false
}

func (a *API) derivStatus(c *gin.Context) {
	conns, found := a.selectConnections(c)
	if !found {
		return
	}

	out := models.DerivStatus{Connections: []models.ConnectionStatus{}, TotalConnections: len(conns)}
	for _, rec := range conns {
		st := models.ConnectionStatus{
			Connection: rec.DerivConnection,
			CanSync:    rec.ConnectionStatus == statusConnected,
		}
		if every, scheduled := syncIntervals[rec.SyncFrequency]; scheduled && rec.AutoSync && !rec.LastSyncAt.IsZero() {
			st.NextSync = models.Timestamp{Time: rec.LastSyncAt.Add(every)}
		}
		if st.CanSync {
			out.ActiveConnections++
		}
		out.Connections = append(out.Connections, st)
	}
	ok(c, out, "")
}

func (a *API) derivSync(c *gin.Context) {
	var req models.SyncRequest
	if !bindJSON(c, &req) {
		return
	}
	conns, found := a.selectConnections(c)
	if !found {
		return
	}

	var targets []connectionRecord
	for _, rec := range conns {
		if rec.ConnectionStatus == statusConnected {
			targets = append(targets, rec)
		}
	}
	if len(targets) == 0 {
		fail(c, http.StatusNotFound, "No connected Deriv accounts found")
		return
	}

	out := models.SyncStarted{ConnectionsSyncing: []string{}, TotalConnections: len(targets)}
	for _, rec := range targets {
		days := req.DaysBack
		if days == 0 {
			days = rec.SyncDaysBack
		}
		a.syncConnection(c, rec.ID, days, req.AnalyzeAfterSync)
		out.ConnectionsSyncing = append(out.ConnectionsSyncing, rec.ID)
	}
	ok(c, out, fmt.Sprintf("Started sync for %d connection(s)", len(targets)))
}

// syncConnection pulls a batch of synthetic trades into the connection and
// optionally analyzes the closed ones.
func (a *API) syncConnection(c *gin.Context, id string, daysBack int, analyze bool) {
	userID := currentUserID(c)
	now := a.now()

	var closed []models.Trade
	a.data.updateConnection(userID, id, func(rec *connectionRecord) {
		seen := map[string]bool{}
		for _, t := range rec.Trades {
			seen[t.DerivTradeID] = true
		}
		n := min(daysBack, syncBatch)
		for i := 0; i < n; i++ {
			t := syntheticTrade(rec.ID, i, now.AddDate(0, 0, -daysBack+i), i == n-1)
			if !seen[t.DerivTradeID] {
				rec.Trades = append(rec.Trades, t)
			}
		}
		rec.LastSyncAt = models.Timestamp{Time: now}
		rec.LastSuccessfulSync = models.Timestamp{Time: now}
		rec.TotalSyncs++
		rec.TotalTradesSynced = len(rec.Trades)
		rec.LastError = nil

		for _, t := range rec.Trades {
			if t.Status != "open" {
				closed = append(closed, models.Trade{
					TradeID:    t.DerivTradeID,
					ProfitLoss: t.Profit,
					EntryTime:  t.PurchaseTime.Format("2006-01-02 15:04:05"),
					ExitTime:   t.ExpiryTime.Format("2006-01-02 15:04:05"),
					Symbol:     t.Symbol,
				})
			}
		}
	})

	if analyze && len(closed) > 0 {
		res := engine.Analyze(closed, engine.ColumnsOf(closed), a.thresholds(c))
		res.AnalysisID = uuid.NewString()
		a.data.addAnalysis(&analysisRecord{
			ID:          res.AnalysisID,
			UserID:      userID,
			Filename:    "deriv_sync_" + id[:8],
			Result:      res,
			CreatedAt:   now,
			CompletedAt: now,
		})
	}
}

var syntheticSymbols = []string{"R_100", "R_50", "frxEURUSD"}

func syntheticTrade(connID string, i int, at time.Time, open bool) models.DerivTrade {
	profit := float64(defaultTradeSize) * 0.8
	status := "won"
	if i%3 == 1 {
		profit = -defaultTradeSize
		status = "lost"
	}
	t := models.DerivTrade{
		ID:           uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%s/%d", connID, i))).String(),
		DerivTradeID: fmt.Sprintf("%s-%d", connID[:8], i),
		Symbol:       syntheticSymbols[i%len(syntheticSymbols)],
		ContractType: "CALL",
		Status:       status,
		Stake:        defaultTradeSize,
		Profit:       profit,
		PurchaseTime: models.Timestamp{Time: at},
		ExpiryTime:   models.Timestamp{Time: at.Add(5 * time.Minute)},
		BuyPrice:     defaultTradeSize,
	}
	if open {
		t.Status = "open"
		t.Profit = 0
		t.ExpiryTime = models.Timestamp{}
	} else {
		sell := defaultTradeSize + profit
		t.SellPrice = &sell
	}
	return t
}

func (a *API) derivTrades(c *gin.Context) {
	q := models.DerivTradesQuery{ConnectionID: c.Query("connection_id"), Status: c.DefaultQuery("status", "all")}
	var good bool
	if q.Limit, good = queryInt(c, "limit", 100); !good {
		return
	}
	if q.Offset, good = queryInt(c, "offset", 0); !good {
		return
	}
	if !validated(c, "query", q) {
		return
	}
	conns, found := a.selectConnections(c)
	if !found {
		return
	}

	var trades []models.DerivTrade
	for _, rec := range conns {
		for _, t := range rec.Trades {
			if q.Status == "all" || t.Status == q.Status {
				trades = append(trades, t)
			}
		}
	}

	stats := models.TradeStats{TotalTrades: len(trades)}
	symbols := map[string]int{}
	for _, t := range trades {
		stats.TotalProfit += t.Profit
		switch t.Status {
		case "won":
			stats.WinCount++
		case "lost":
			stats.LossCount++
		case "open":
			stats.OpenCount++
		}
		symbols[t.Symbol]++
	}
	stats.TotalProfit = round2(stats.TotalProfit)
	best := ""
	for _, s := range syntheticSymbols {
		if symbols[s] > symbols[best] {
			best = s
		}
	}
	if best != "" {
		stats.MostTradedSymbol = &best
	}

	page := []models.DerivTrade{}
	for i := q.Offset; i < len(trades) && i < q.Offset+q.Limit; i++ {
		page = append(page, trades[i])
	}
	ok(c, models.DerivTradesPage{
		Trades: page,
		Stats:  stats,
		Pagination: models.Pagination{
			Total:   len(trades),
			Limit:   q.Limit,
			Offset:  q.Offset,
			HasMore: q.Offset+q.Limit < len(trades),
		},
	}, "")
}

func (a *API) derivUpdate(c *gin.Context) {
	var req models.UpdateConnectionRequest
	if !bindJSON(c, &req) {
		return
	}

	rec, found := a.data.updateConnection(currentUserID(c), c.Param("id"), func(rec *connectionRecord) {
		if req.ConnectionName != nil {
			rec.ConnectionName = *req.ConnectionName
		}
		if req.AutoSync != nil {
			rec.AutoSync = *req.AutoSync
		}
		if req.SyncFrequency != nil {
			rec.SyncFrequency = *req.SyncFrequency
		}
		if req.SyncDaysBack != nil {
			rec.SyncDaysBack = *req.SyncDaysBack
		}
		if req.Disabled != nil {
			if *req.Disabled {
				rec.ConnectionStatus = statusDisabled
			} else {
				rec.ConnectionStatus = statusConnected
			}
		}
	})
	if !found {
		fail(c, http.StatusNotFound, "Connection not found")
		return
	}
	ok(c, rec.DerivConnection, "Connection updated successfully")
}

func (a *API) derivDisconnect(c *gin.Context) {
	if !a.data.deleteConnection(currentUserID(c), c.Param("id")) {
		fail(c, http.StatusNotFound, "Connection not found")
		return
	}
	ok(c, nil, "Deriv account disconnected successfully")
}
