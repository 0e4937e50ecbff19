// Package app wires configuration, logging, storage and the HTTP API
// into one runnable unit.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"einsatzplan/internal/auth"
	"einsatzplan/internal/config"
	"einsatzplan/internal/httpapi"
	"einsatzplan/internal/maintenance"
	"einsatzplan/internal/plan"
	"einsatzplan/internal/storage"
	logx "einsatzplan/pkg/logx"
)

type App struct {
	cfgPath string

	cfgm  *config.ConfigManager
	logs  *logx.Service
	log   logx.Logger
	store *storage.Store
	auth  *auth.Service
	http  *httpapi.Server
	maint *maintenance.Service
}

func New(cfgPath string) (*App, error) {
	cfgm := config.NewConfigManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	log = log.With(logx.String("component", "app"))
	cfgm.SetLogger(log.With(logx.String("component", "config")))

	busyTimeout, err := config.ParseDurationOrDefault("storage.busy_timeout", cfg.Storage.BusyTimeout, 0)
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(storage.Config{
		Path:        cfg.Storage.PathOrDefault(),
		BusyTimeout: busyTimeout,
	}, log.With(logx.String("component", "storage")))
	if err != nil {
		_ = logSvc.Close()
		return nil, fmt.Errorf("open storage: %w", err)
	}

	inviteTTL, err := cfg.Auth.InviteTTLOrDefault()
	if err != nil {
		return nil, err
	}
	sessionTTL, err := cfg.Auth.SessionTTLOrDefault()
	if err != nil {
		return nil, err
	}
	resetTTL, err := cfg.Auth.ResetTTLOrDefault()
	if err != nil {
		return nil, err
	}
	authSvc := auth.New(store, log, auth.Options{
		AppURL:     cfg.Auth.AppURL,
		InviteTTL:  inviteTTL,
		SessionTTL: sessionTTL,
		ResetTTL:   resetTTL,
	})

	readTimeout, err := config.ParseDurationOrDefault("http.read_timeout", cfg.HTTP.ReadTimeout, 10*time.Second)
	if err != nil {
		return nil, err
	}
	writeTimeout, err := config.ParseDurationOrDefault("http.write_timeout", cfg.HTTP.WriteTimeout, 10*time.Second)
	if err != nil {
		return nil, err
	}
	httpSrv := httpapi.New(httpapi.Config{
		Addr:            cfg.HTTP.AddrOrDefault(),
		ReadTimeout:     readTimeout,
		WriteTimeout:    writeTimeout,
		ServiceKey:      cfg.Auth.ServiceKey,
		LoginRatePerMin: cfg.Auth.LoginRateOrDefault(),
		Geometry:        geometryFrom(cfg.Plan),
		WeekTargetHours: cfg.Plan.WeekTargetOrDefault(),
	}, store, authSvc, log)

	maintSvc := maintenance.New(maintenance.Config{
		Enabled:  cfg.Maintenance.IsEnabled(),
		Schedule: cfg.Maintenance.ScheduleOrDefault(),
		Timezone: cfg.Maintenance.Timezone,
	}, store, log)

	return &App{
		cfgPath: cfgPath,
		cfgm:    cfgm,
		logs:    logSvc,
		log:     log,
		store:   store,
		auth:    authSvc,
		http:    httpSrv,
		maint:   maintSvc,
	}, nil
}

func geometryFrom(p config.PlanConfig) plan.Geometry {
	g := plan.DefaultGeometry
	if p.ViewHeightPx > 0 {
		g.ViewHeight = p.ViewHeightPx
	}
	if p.TopPadPx > 0 {
		g.TopPad = p.TopPadPx
	}
	if p.BottomPadPx > 0 {
		g.BottomPad = p.BottomPadPx
	}
	return g
}

// Run serves until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := a.maint.Start(ctx); err != nil {
		return fmt.Errorf("start maintenance: %w", err)
	}
	defer a.maint.Stop()
	defer func() { _ = a.store.Close() }()
	defer func() { _ = a.logs.Close() }()

	go a.watchConfig(ctx)

	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)
	defer func() { _, _ = daemon.SdNotify(false, daemon.SdNotifyStopping) }()

	return a.http.Run(ctx)
}

// watchConfig hot-reloads the config file. Only the logging section is
// applied live; the rest takes effect on restart.
func (a *App) watchConfig(ctx context.Context) {
	sub := a.cfgm.Subscribe(1)
	defer a.cfgm.Unsubscribe(sub)

	go func() {
		if err := a.cfgm.Watch(ctx); err != nil && ctx.Err() == nil {
			a.log.Warn("config watch stopped", logx.Err(err))
		}
	}()

	old := a.cfgm.Get()
	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-sub:
			if !ok {
				return
			}
			sections, fields := config.SummarizeConfigChange(old, cfg)
			a.log.Info("config reloaded", append(fields,
				logx.Any("sections", sections))...)

			a.logs.Apply(logx.Config{
				Level:   cfg.Logging.Level,
				Console: cfg.Logging.Console,
				File: logx.FileConfig{
					Enabled: cfg.Logging.File.Enabled,
					Path:    cfg.Logging.File.Path,
				},
			})
			old = cfg
		}
	}
}
