package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"reactionduel/internal/config"
	"reactionduel/internal/db"
	"reactionduel/internal/feed"
	"reactionduel/internal/match"
	"reactionduel/internal/metrics"
	"reactionduel/internal/rooms"
)

const shutdownTimeout = 10 * time.Second

func Run() error {
	appCfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(appCfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	g, gctx := errgroup.WithContext(ctx)
	rec := &resultRecorder{metrics: m}
	srv := &Server{Metrics: m, Registry: reg, AllowedOrigins: appCfg.AllowedOrigins}

	// Optional database connection
	if appCfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, appCfg.DatabaseURL)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to database, running without it")
		} else {
			defer database.Close()
			if err := database.Migrate(ctx); err != nil {
				log.Error().Err(err).Msg("migration failed")
			}
			srv.DB = database
			rec.store = database
			rec.reactions = make(chan db.ReactionEvent, 1000)
			g.Go(func() error {
				reactionBatchWriter(gctx, database, rec.reactions, m)
				return nil
			})
			log.Info().Msg("database connected and migrations applied")
		}
	} else {
		log.Info().Msg("DATABASE_URL not set, running without database")
	}

	if appCfg.NATSURL != "" {
		pub, err := feed.Connect(appCfg.NATSURL, appCfg.NATSSubject)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to NATS, match feed disabled")
		} else {
			defer pub.Close()
			rec.feed = pub
		}
	}

	srv.Rooms = rooms.NewStore(gctx, match.FromAppConfig(appCfg), appCfg.RoomTTL, nil,
		match.WithRecorder(rec),
		match.WithMetrics(m),
	)
	defer srv.Rooms.Close()

	// Request contexts derive from gctx so websocket read loops end on shutdown.
	httpSrv := &http.Server{
		Addr:              ":" + appCfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return gctx },
	}

	g.Go(func() error {
		log.Info().Str("addr", httpSrv.Addr).Msg("server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return srv.Rooms.RunSweeper(gctx)
	})

	return g.Wait()
}

func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// Handler builds the routed, CORS-wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("POST /api/rooms", s.handleCreateRoom)
	mux.HandleFunc("GET /api/events", s.handleEvents)
	mux.HandleFunc("GET /api/results", s.handleResults)
	mux.HandleFunc("GET /api/leaderboard", s.handleLeaderboard)
	mux.HandleFunc("GET /api/players/{name}", s.handlePlayer)
	if s.Registry != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{}))
	}

	c := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedOrigins: s.AllowedOrigins,
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(mux)
}
