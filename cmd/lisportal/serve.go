package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pthm/hxsearch"
	hxsearchecho "github.com/pthm/hxsearch/adapters/echo"
	"github.com/pthm/hxsearch/elements"
	"github.com/pthm/hxsearch/internal/config"
	"github.com/pthm/hxsearch/internal/portal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func runServe(args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("serve takes at most one argument, got %d", len(args))
	}
	var configPath string
	if len(args) == 1 {
		configPath = args[0]
	}

	if err := config.LoadEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	srv, err := newServer(cfg, logger)
	if err != nil {
		return err
	}
	defer srv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx, cfg.Server.Addr, time.Duration(cfg.Server.ShutdownSeconds)*time.Second)
}

type server struct {
	echo   *echo.Echo
	reg    *hxsearch.Registry
	index  *portal.Index
	logger *zap.Logger
}

func newServer(cfg *config.Config, logger *zap.Logger) (*server, error) {
	index, err := portal.NewIndex(logger.Named("portal"), cfg.Search.PageSize)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			logger.Debug("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.Error(v.Error),
			)
			return nil
		},
	}))

	var key []byte
	if cfg.Server.SigningKey != "" {
		key = []byte(cfg.Server.SigningKey)
	} else {
		logger.Warn("no signing key configured, element links will not survive a restart")
	}
	reg := hxsearchecho.Mount(e,
		hxsearchecho.WithKey(key),
		hxsearchecho.WithLogger(logger.Named("hxsearch")),
		hxsearchecho.WithMaxInstances(cfg.Server.MaxInstances),
	)
	elements.Init(reg, index.Functions())

	s := &server{echo: e, reg: reg, index: index, logger: logger}
	s.routes()
	return s, nil
}

func (s *server) routes() {
	s.echo.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, pages[0].Path)
	})
	for _, p := range pages {
		s.echo.GET(p.Path, func(c echo.Context) error {
			return hxsearchecho.Render(c, layout(p, c.Request().URL.RequestURI(), s.reg.Placeholder(p.Tag, loading())))
		})
	}
}

// Run serves until ctx is done, then shuts down within timeout. Live
// elements are closed first so in-flight searches are canceled.
func (s *server) Run(ctx context.Context, addr string, timeout time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("listening", zap.String("addr", addr))
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down")
		s.reg.Close()
		sctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return s.echo.Shutdown(sctx)
	})

	return g.Wait()
}

func (s *server) Close() {
	s.reg.Close()
	if err := s.index.Close(); err != nil {
		s.logger.Warn("failed to close index", zap.Error(err))
	}
}
