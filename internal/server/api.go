package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrijs2005/tradeguard/internal/logging"
	"github.com/dmitrijs2005/tradeguard/internal/server/users"
)

// maxUploadBytes bounds a trades CSV upload.
const maxUploadBytes = 10 << 20

// API serves the TradeGuard HTTP endpoints from memory.
type API struct {
	users *users.Service
	data  *store
	log   logging.Logger
	now   func() time.Time
}

func NewAPI(us *users.Service, log logging.Logger) *API {
	return &API{
		users: us,
		data:  newStore(),
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Handler builds the gin engine with every route registered. Metrics are
// recorded in reg and exposed on /metrics.
func (a *API) Handler(reg *prometheus.Registry) http.Handler {
	r := gin.New()
	r.MaxMultipartMemory = maxUploadBytes
	r.Use(gin.Recovery(), requestID(), accessLog(a.log), newHTTPMetrics(reg).middleware())

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "healthy"}) })
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	optional := authenticate(a.users, false)
	required := authenticate(a.users, true)

	api := r.Group("/api")

	u := api.Group("/users")
	u.POST("/register", a.register)
	u.POST("/login", a.login)
	u.GET("/profile", required, a.profile)
	u.GET("/settings", required, a.getSettings)
	u.PUT("/settings", required, a.updateSettings)

	an := api.Group("/analyze", optional)
	an.POST("/trades", a.analyzeTrades)
	an.POST("/quick", a.quickAnalyze)
	an.GET("/", a.listAnalyses)
	an.GET("/:id", a.getAnalysis)

	rk := api.Group("/risk", optional)
	rk.POST("/calculate", a.calculateRisk)
	rk.POST("/explanations", a.explanations)
	rk.POST("/simulate", a.simulate)
	rk.GET("/types", a.riskTypes)

	rp := api.Group("/reports", optional)
	rp.POST("/generate", a.generateReport)
	rp.GET("/download/:id", a.downloadReport)
	rp.GET("/:analysis_id", a.listReports)

	al := api.Group("/alerts", required)
	al.GET("/settings", a.getAlertSettings)
	al.PUT("/settings", a.updateAlertSettings)
	al.POST("/:id/snooze", a.snoozeAlert)

	d := api.Group("/dashboard", required)
	d.GET("/summary", a.dashboardSummary)
	d.GET("/metrics", a.dashboardMetrics)
	d.GET("/insights", a.dashboardInsights)

	dv := api.Group("/integrations/deriv", required)
	dv.POST("/connect", a.derivConnect)
	dv.GET("/connections", a.derivConnections)
	dv.GET("/status", a.derivStatus)
	dv.POST("/sync", a.derivSync)
	dv.GET("/trades", a.derivTrades)
	dv.PUT("/connections/:id", a.derivUpdate)
	dv.DELETE("/connections/:id", a.derivDisconnect)

	return r
}
