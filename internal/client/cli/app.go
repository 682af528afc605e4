package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrijs2005/tradeguard/internal/client/archive"
	"github.com/dmitrijs2005/tradeguard/internal/client/config"
	"github.com/dmitrijs2005/tradeguard/internal/client/gateway"
	"github.com/dmitrijs2005/tradeguard/internal/client/services"
	"github.com/dmitrijs2005/tradeguard/internal/client/store"
	"github.com/dmitrijs2005/tradeguard/internal/logging"
)

// MsgSessionExpired is printed once when the backend rejects the saved
// session.
const MsgSessionExpired = "Session expired, please log in again."

var errNotLoggedIn = errors.New("not logged in; run 'tradeguard login' first")

// App bundles the services used by one command invocation.
type App struct {
	cfg     *config.Config
	log     logging.Logger
	db      *sql.DB
	gw      *gateway.Gateway
	session *services.SessionManager
	reports services.ReportService
	metrics *prometheus.Registry

	reader *bufio.Reader
	out    io.Writer
	errOut io.Writer

	expiredOnce sync.Once
}

// NewApp opens the local session store and wires the gateway, session
// manager and report service for cfg. The saved session is restored.
func NewApp(ctx context.Context, cfg *config.Config, in io.Reader, out, errOut io.Writer) (*App, error) {
	log, err := logging.NewText(errOut, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	opts := []gateway.Option{
		gateway.WithTimeout(cfg.RequestTimeout),
		gateway.WithLogger(log),
	}
	var reg *prometheus.Registry
	if cfg.MetricsFile != "" {
		reg = prometheus.NewRegistry()
		opts = append(opts, gateway.WithMetrics(reg))
	}
	gw, err := gateway.New(cfg.APIBaseURL, opts...)
	if err != nil {
		return nil, err
	}

	db, err := store.Open(ctx, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	sinks := []archive.Sink{archive.NewFileSink(cfg.ReportDir)}
	if cfg.S3.Enabled() {
		s3sink, err := archive.NewS3Sink(archive.S3Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    "reports",
		}, nil)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		sinks = append(sinks, s3sink)
	}

	a := &App{
		cfg:     cfg,
		log:     log,
		db:      db,
		gw:      gw,
		reports: services.NewReportService(gw, log, sinks...),
		metrics: reg,
		reader:  bufio.NewReader(in),
		out:     out,
		errOut:  errOut,
	}
	a.session = services.NewSessionManager(gw, db,
		services.WithSessionLogger(log),
		services.WithOnExpired(a.sessionExpired),
		services.WithClearTimeout(cfg.RequestTimeout),
	)
	a.session.Restore(ctx)
	return a, nil
}

// Close writes the request metrics, if enabled, and closes the store.
func (a *App) Close() error {
	var merr error
	if a.metrics != nil {
		if err := prometheus.WriteToTextfile(a.cfg.MetricsFile, a.metrics); err != nil {
			merr = fmt.Errorf("write metrics: %w", err)
		}
	}
	return errors.Join(merr, a.db.Close())
}

func (a *App) sessionExpired() {
	a.expiredOnce.Do(func() {
		fmt.Fprintln(a.errOut, MsgSessionExpired)
	})
}

func (a *App) requireAuth() error {
	if !a.session.IsAuthenticated() {
		return errNotLoggedIn
	}
	return nil
}
