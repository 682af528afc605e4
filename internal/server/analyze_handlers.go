package server

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/tradeguard/internal/client/models"
	"github.com/dmitrijs2005/tradeguard/internal/server/engine"
)

const sampleFilename = "sample_data.csv"

func (a *API) thresholds(c *gin.Context) engine.Thresholds {
	if id := currentUserID(c); id != 0 {
		return engine.DefaultThresholds.WithSettings(a.data.userSettings(id, a.now()))
	}
	return engine.DefaultThresholds
}

// runAnalysis scores trades, stores the outcome and writes the response.
func (a *API) runAnalysis(c *gin.Context, trades []models.Trade, cols engine.Columns, filename string, size int) {
	res := engine.Analyze(trades, cols, a.thresholds(c))
	res.AnalysisID = uuid.NewString()

	now := a.now()
	a.data.addAnalysis(&analysisRecord{
		ID:          res.AnalysisID,
		UserID:      currentUserID(c),
		Filename:    filename,
		FileSize:    size,
		Result:      res,
		CreatedAt:   now,
		CompletedAt: now,
	})

	a.log.Info(c.Request.Context(), "analysis completed",
		"analysis_id", res.AnalysisID, "trades", len(trades), "score", res.ScoreResult.Score)
	ok(c, res, "Analysis completed successfully")
}

func (a *API) analyzeTrades(c *gin.Context) {
	if c.Query("use_sample") == "true" {
		trades := engine.SampleTrades()
		a.runAnalysis(c, trades, engine.ColumnsOf(trades), sampleFilename, 1024)
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "No file uploaded. Either upload a file or set use_sample=true")
		return
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".csv") {
		fail(c, http.StatusBadRequest, "Only CSV files are supported")
		return
	}

	f, err := fh.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, "Could not read uploaded file")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		fail(c, http.StatusBadRequest, "Could not read uploaded file")
		return
	}

	trades, cols, err := engine.ParseCSV(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, engine.ErrMissingColumn) || errors.Is(err, engine.ErrNoTrades) {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		fail(c, http.StatusBadRequest, "Invalid CSV: "+err.Error())
		return
	}

	a.runAnalysis(c, trades, cols, filepath.Base(fh.Filename), len(data))
}

func (a *API) quickAnalyze(c *gin.Context) {
	var req models.QuickAnalyzeRequest
	if !bindJSON(c, &req) {
		return
	}
	a.runAnalysis(c, req.Trades, engine.ColumnsOf(req.Trades), "quick_analysis", 0)
}

// visible reports whether the caller may read an analysis owned by owner.
// Anonymous analyses are readable by everyone.
func visible(c *gin.Context, owner int64) bool {
	id := currentUserID(c)
	return owner == 0 || id == 0 || owner == id
}

func (a *API) getAnalysis(c *gin.Context) {
	rec, found := a.data.analysis(c.Param("id"))
	if !found {
		fail(c, http.StatusNotFound, "Analysis not found")
		return
	}
	if !visible(c, rec.UserID) {
		fail(c, http.StatusForbidden, "Not authorized")
		return
	}
	ok(c, toAnalysis(rec), "")
}

func toAnalysis(rec analysisRecord) models.Analysis {
	r := rec.Result
	return models.Analysis{
		ID:             rec.ID,
		Status:         "completed",
		Metrics:        &r.Metrics,
		RiskResults:    &r.RiskResults,
		ScoreResult:    &r.ScoreResult,
		AIExplanations: r.AIExplanations,
		CreatedAt:      models.Timestamp{Time: rec.CreatedAt},
		CompletedAt:    models.Timestamp{Time: rec.CompletedAt},
		Filename:       rec.Filename,
		TradeCount:     r.Metrics.TotalTrades,
	}
}

func (a *API) listAnalyses(c *gin.Context) {
	skip, good := queryInt(c, "skip", 0)
	if !good {
		return
	}
	limit, good := queryInt(c, "limit", 20)
	if !good {
		return
	}
	if !validated(c, "query", models.ListQuery{Skip: skip, Limit: limit}) {
		return
	}

	all := a.data.userAnalyses(currentUserID(c))
	page := []models.AnalysisSummary{}
	for i := skip; i < len(all) && i < skip+limit; i++ {
		rec := all[i]
		score, grade := rec.Result.ScoreResult.Score, rec.Result.ScoreResult.Grade
		page = append(page, models.AnalysisSummary{
			ID:         rec.ID,
			Filename:   rec.Filename,
			TradeCount: rec.Result.Metrics.TotalTrades,
			Score:      &score,
			Grade:      &grade,
			CreatedAt:  models.Timestamp{Time: rec.CreatedAt},
			Status:     "completed",
		})
	}

	ok(c, models.AnalysisList{Analyses: page, Total: len(all), Skip: skip, Limit: limit}, "")
}
