package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/OguroGen/ogu-watcher/main/relay"
	"github.com/OguroGen/ogu-watcher/main/utils"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

func socketOptions(config utils.Config) relay.SocketOptions {
	return relay.SocketOptions{
		OutboxSize:     config.OutboxSize,
		MaxMessageSize: config.MaxMessageSize,
		PingInterval:   config.PingInterval,
		WriteTimeout:   config.WriteTimeout,
	}
}

func createMux(hub *relay.Hub, config utils.Config) *echo.Echo {
	e := echo.New()
	// echo resolves file names inside e.Filesystem, which defaults to the working directory
	staticFS := os.DirFS(config.StaticDir)
	e.Filesystem = staticFS

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
		Filesystem: staticFS,
		Root:       ".",
		Index:      "index.html",
		Skipper: func(c echo.Context) bool {
			return websocket.IsWebSocketUpgrade(c.Request())
		},
	}))

	g := e.Group("/api")
	hub.Mount(g)

	// cameras and viewers dial the bare host
	e.GET("/", func(c echo.Context) error {
		if !websocket.IsWebSocketUpgrade(c.Request()) {
			return echo.ErrNotFound
		}
		return hub.HandleWebSocket(c)
	})

	e.GET("/viewer", func(c echo.Context) error {
		return c.File("viewer.html")
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(relay.Metrics, promhttp.HandlerOpts{})))

	return e
}

func printBanner(config utils.Config) {
	scheme := config.Scheme()
	localIP := utils.LocalIP()

	log.Info().Str("addr", config.Addr()).Bool("tls", config.TLSEnabled()).Msg("OguWatcher started")
	if hostname := utils.Hostname(); hostname != "" {
		log.Info().Msgf("camera page: %s://%s.local:%s/camera.html", scheme, hostname, config.Port)
	}
	log.Info().Msgf("camera page: %s://%s:%s/camera.html", scheme, localIP, config.Port)
	log.Info().Msgf("viewer page: %s://%s:%s/viewer", scheme, localIP, config.Port)
}

// StartRelayServer serves until ctx is cancelled.
func StartRelayServer(ctx context.Context, config utils.Config) error {
	hub := relay.NewHub(socketOptions(config))
	e := createMux(hub, config)

	if config.StatusInterval > 0 {
		relay.StartStatusLog(ctx, hub.Registry, config.StatusInterval, relay.LogStatus)
	}

	server := &http.Server{
		Addr:    config.Addr(),
		Handler: e,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Err(err).Msg("server forced to shutdown")
		}
	}()

	printBanner(config)

	var err error
	if config.TLSEnabled() {
		err = server.ListenAndServeTLS(config.TLSCertFile, config.TLSKeyFile)
	} else {
		err = server.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
