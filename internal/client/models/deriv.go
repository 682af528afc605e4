package models

import "encoding/json"

// DerivConnectRequest links a Deriv trading account. APIToken is sent once
// and is never stored by the client.
type DerivConnectRequest struct {
	APIToken       string `json:"api_token" validate:"required,min=10"`
	AppID          string `json:"app_id" validate:"required,min=3"`
	AccountID      string `json:"account_id,omitempty"`
	ConnectionName string `json:"connection_name,omitempty"`
	AutoSync       bool   `json:"auto_sync"`
	SyncFrequency  string `json:"sync_frequency,omitempty" validate:"omitempty,oneof=hourly daily weekly manual"`
	SyncDaysBack   int    `json:"sync_days_back,omitempty" validate:"omitempty,min=1,max=365"`
}

type DerivConnection struct {
	ID                 string          `json:"id"`
	ConnectionName     string          `json:"connection_name"`
	ConnectionStatus   string          `json:"connection_status"`
	AccountID          *string         `json:"account_id"`
	AccountType        *string         `json:"account_type"`
	AutoSync           bool            `json:"auto_sync"`
	SyncFrequency      string          `json:"sync_frequency"`
	LastSyncAt         Timestamp       `json:"last_sync_at"`
	LastSuccessfulSync Timestamp       `json:"last_successful_sync"`
	TotalTradesSynced  int             `json:"total_trades_synced"`
	TotalSyncs         int             `json:"total_syncs"`
	AccountInfo        json.RawMessage `json:"account_info,omitempty"`
	CreatedAt          Timestamp       `json:"created_at"`
	ConnectedAt        Timestamp       `json:"connected_at"`
	LastError          *string         `json:"last_error"`
}

type ConnectResult struct {
	Connection DerivConnection `json:"connection"`
	TestResult json.RawMessage `json:"test_result,omitempty"`
}

type ConnectionList struct {
	Connections []DerivConnection `json:"connections"`
	Total       int               `json:"total"`
}

type ConnectionStatus struct {
	Connection DerivConnection `json:"connection"`
	NextSync   Timestamp       `json:"next_sync"`
	IsSyncing  bool            `json:"is_syncing"`
	CanSync    bool            `json:"can_sync"`
}

type DerivStatus struct {
	Connections       []ConnectionStatus `json:"connections"`
	TotalConnections  int                `json:"total_connections"`
	ActiveConnections int                `json:"active_connections"`
}

type SyncRequest struct {
	DaysBack         int  `json:"days_back,omitempty" validate:"omitempty,min=1,max=365"`
	ForceFullSync    bool `json:"force_full_sync"`
	AnalyzeAfterSync bool `json:"analyze_after_sync"`
}

type SyncStarted struct {
	ConnectionsSyncing []string `json:"connections_syncing"`
	TotalConnections   int      `json:"total_connections"`
}

// UpdateConnectionRequest is a partial update of connection settings.
type UpdateConnectionRequest struct {
	ConnectionName *string `json:"connection_name,omitempty"`
	AutoSync       *bool   `json:"auto_sync,omitempty"`
	SyncFrequency  *string `json:"sync_frequency,omitempty" validate:"omitempty,oneof=hourly daily weekly manual"`
	SyncDaysBack   *int    `json:"sync_days_back,omitempty" validate:"omitempty,min=1,max=365"`
	Disabled       *bool   `json:"disabled,omitempty"`
}

type DerivTrade struct {
	ID           string    `json:"id"`
	DerivTradeID string    `json:"deriv_trade_id"`
	Symbol       string    `json:"symbol"`
	ContractType string    `json:"contract_type"`
	Status       string    `json:"status"`
	Stake        float64   `json:"stake"`
	Profit       float64   `json:"profit"`
	PurchaseTime Timestamp `json:"purchase_time"`
	ExpiryTime   Timestamp `json:"expiry_time"`
	Duration     *int      `json:"duration"`
	BuyPrice     float64   `json:"buy_price"`
	SellPrice    *float64  `json:"sell_price"`
	Barrier      *float64  `json:"barrier"`
	Payout       *float64  `json:"payout"`
}

// DerivTradesQuery filters the synced trade list. Status is one of open,
// won, lost or all.
type DerivTradesQuery struct {
	ConnectionID string
	Limit        int    `validate:"gte=0,lte=500"`
	Offset       int    `validate:"gte=0"`
	Status       string `validate:"omitempty,oneof=open won lost all"`
}

type TradeStats struct {
	TotalTrades      int     `json:"total_trades"`
	TotalProfit      float64 `json:"total_profit"`
	WinCount         int     `json:"win_count"`
	LossCount        int     `json:"loss_count"`
	OpenCount        int     `json:"open_count"`
	MostTradedSymbol *string `json:"most_traded_symbol"`
}

type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

type DerivTradesPage struct {
	Trades     []DerivTrade `json:"trades"`
	Stats      TradeStats   `json:"stats"`
	Pagination Pagination   `json:"pagination"`
}
