package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/padraicbc/matchapi/booking"
	"github.com/padraicbc/matchapi/cache"
	"github.com/padraicbc/matchapi/catalog"
	"github.com/padraicbc/matchapi/config"
	"github.com/padraicbc/matchapi/db"
	"github.com/padraicbc/matchapi/events"
	"github.com/padraicbc/matchapi/handlers"
	applog "github.com/padraicbc/matchapi/logger"
	mw "github.com/padraicbc/matchapi/middleware"
	"github.com/padraicbc/matchapi/store"
	"github.com/padraicbc/matchapi/validation"
)

func main() {
	cfg := config.Load()
	logger, err := applog.New(cfg.Debug, "matchapi")
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bdb, err := db.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("open database failed", zap.Error(err))
	}
	defer bdb.Close()

	if err := db.CreateTables(ctx, bdb); err != nil {
		logger.Fatal("create tables failed", zap.Error(err))
	}

	st := store.New(bdb)

	var catalogCache cache.Cache = cache.Noop{}
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedis(ctx, cfg.RedisURL, "matchapi:")
		if err != nil {
			logger.Warn("redis unavailable, catalog cache disabled", zap.Error(err))
		} else {
			defer rc.Close()
			catalogCache = rc
		}
	}

	var publisher events.Publisher = events.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := events.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		if err != nil {
			logger.Fatal("kafka publisher failed", zap.Error(err))
		}
		publisher = kp
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("close publisher", zap.Error(err))
		}
	}()

	h := handlers.New(
		catalog.NewService(st, catalogCache, cfg.CatalogCacheTTL, logger),
		booking.NewEngine(st, publisher, logger),
		st,
	)

	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.New()
	e.HTTPErrorHandler = handlers.ErrorHandler(logger)

	e.Use(mw.RequestID())
	e.Use(mw.RequestLogger(logger))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderXRequestID},
	}))

	h.Register(e)

	s := &http.Server{
		Addr:         cfg.Port,
		Handler:      e,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	go func() {
		var err error
		if cfg.AutoTLS() {
			autoTLS := &autocert.Manager{
				Prompt:     autocert.AcceptTOS,
				Cache:      autocert.DirCache(".cache"),
				HostPolicy: autocert.HostWhitelist(cfg.TLSDomains...),
			}
			s.Addr = ":443"
			s.TLSConfig = autoTLS.TLSConfig()
			logger.Info("starting server", zap.String("mode", "tls"), zap.Strings("domains", cfg.TLSDomains))
			err = s.ListenAndServeTLS("", "")
		} else {
			logger.Info("starting server", zap.String("addr", cfg.Port), zap.Bool("debug", cfg.Debug))
			err = s.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server exited", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
