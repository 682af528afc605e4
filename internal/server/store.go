package server

import (
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/tradeguard/internal/client/models"
)

// analysisRecord is a stored analysis. UserID is zero for anonymous ones.
type analysisRecord struct {
	ID          string
	UserID      int64
	Filename    string
	FileSize    int
	Result      models.AnalysisResult
	CreatedAt   time.Time
	CompletedAt time.Time
}

type reportRecord struct {
	ID            string
	AnalysisID    string
	Format        models.ReportFormat
	Content       string
	DownloadCount int
	GeneratedAt   time.Time
}

type connectionRecord struct {
	models.DerivConnection
	UserID       int64
	SyncDaysBack int
	Trades       []models.DerivTrade
}

// store keeps every non-user resource of the development server in memory.
type store struct {
	mu          sync.RWMutex
	analyses    map[string]*analysisRecord
	reports     map[string]*reportRecord
	settings    map[int64]models.UserSettings
	alerts      map[int64]models.AlertSettings
	snoozes     map[int64]map[string]time.Time
	connections map[string]*connectionRecord
}

func newStore() *store {
	return &store{
		analyses:    map[string]*analysisRecord{},
		reports:     map[string]*reportRecord{},
		settings:    map[int64]models.UserSettings{},
		alerts:      map[int64]models.AlertSettings{},
		snoozes:     map[int64]map[string]time.Time{},
		connections: map[string]*connectionRecord{},
	}
}

func (s *store) addAnalysis(a *analysisRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyses[a.ID] = a
}

func (s *store) analysis(id string) (analysisRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.analyses[id]
	if !ok {
		return analysisRecord{}, false
	}
	return *a, true
}

// userAnalyses returns the analyses owned by userID, newest first.
func (s *store) userAnalyses(userID int64) []analysisRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []analysisRecord
	for _, a := range s.analyses {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *store) addReport(r *reportRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[r.ID] = r
}

// downloadReport bumps the download counter and returns the updated report.
func (s *store) downloadReport(id string) (reportRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return reportRecord{}, false
	}
	r.DownloadCount++
	return *r, true
}

func (s *store) report(id string) (reportRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[id]
	if !ok {
		return reportRecord{}, false
	}
	return *r, true
}

// analysisReports lists reports for analysisID, oldest first.
func (s *store) analysisReports(analysisID string) []reportRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []reportRecord
	for _, r := range s.reports {
		if r.AnalysisID == analysisID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GeneratedAt.Before(out[j].GeneratedAt) })
	return out
}

func (s *store) userSettings(userID int64, now time.Time) models.UserSettings {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.settings[userID]; ok {
		return st
	}
	st := defaultSettings(userID, now)
	s.settings[userID] = st
	return st
}

func (s *store) updateSettings(userID int64, upd models.SettingsUpdate, now time.Time) models.UserSettings {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.settings[userID]
	if !ok {
		st = defaultSettings(userID, now)
	}
	if upd.MaxPositionSizePct != nil {
		st.MaxPositionSizePct = upd.MaxPositionSizePct
	}
	if upd.MinWinRate != nil {
		st.MinWinRate = upd.MinWinRate
	}
	if upd.MaxDrawdownPct != nil {
		st.MaxDrawdownPct = upd.MaxDrawdownPct
	}
	if upd.MinRRRatio != nil {
		st.MinRRRatio = upd.MinRRRatio
	}
	if upd.MinSLUsageRate != nil {
		st.MinSLUsageRate = upd.MinSLUsageRate
	}
	if upd.AIEnabled != nil {
		st.AIEnabled = upd.AIEnabled
	}
	if upd.PreferredModel != nil {
		st.PreferredModel = upd.PreferredModel
	}
	// The key itself is never kept.
	if upd.OpenAIAPIKey != nil {
		st.OpenAIAPIKeyConfigured = *upd.OpenAIAPIKey != ""
	}
	st.UpdatedAt = models.Timestamp{Time: now}
	s.settings[userID] = st
	return st
}

func (s *store) alertSettings(userID int64) models.AlertSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.alerts[userID]; ok {
		return a
	}
	return defaultAlerts()
}

func (s *store) setAlertSettings(userID int64, a models.AlertSettings) models.AlertSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts[userID] = a
	return a
}

func (s *store) snooze(userID int64, alertID string, until time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snoozes[userID] == nil {
		s.snoozes[userID] = map[string]time.Time{}
	}
	s.snoozes[userID][alertID] = until
}

func (s *store) addConnection(c *connectionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connections[c.ID] = c
}

// userConnections returns userID's connections, oldest first.
func (s *store) userConnections(userID int64) []connectionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []connectionRecord
	for _, c := range s.connections {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt.Time) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt.Time)
	})
	return out
}

// updateConnection applies fn to the connection if userID owns it.
func (s *store) updateConnection(userID int64, id string, fn func(*connectionRecord)) (connectionRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.connections[id]
	if !ok || c.UserID != userID {
		return connectionRecord{}, false
	}
	fn(c)
	return *c, true
}

func (s *store) deleteConnection(userID int64, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.connections[id]
	if !ok || c.UserID != userID {
		return false
	}
	delete(s.connections, id)
	return true
}

func defaultSettings(userID int64, now time.Time) models.UserSettings {
	f := func(v float64) *float64 { return &v }
	ai := true
	model := "rules"
	ts := models.Timestamp{Time: now}
	return models.UserSettings{
		UserID:             formatUserID(userID),
		MaxPositionSizePct: f(2),
		MinWinRate:         f(40),
		MaxDrawdownPct:     f(20),
		MinRRRatio:         f(1),
		MinSLUsageRate:     f(80),
		AIEnabled:          &ai,
		PreferredModel:     &model,
		CreatedAt:          ts,
		UpdatedAt:          ts,
	}
}

func defaultAlerts() models.AlertSettings {
	return models.AlertSettings{
		Enabled:         true,
		ScoreThreshold:  60,
		NotifyOnNewRisk: true,
	}
}
