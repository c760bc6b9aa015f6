// Package server assembles the router and runs the HTTP service.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"pookal/internal/config"
	"pookal/internal/handler"
	agenthandler "pookal/internal/handler/agent"
	voicehandler "pookal/internal/handler/voice"
	"pookal/internal/logging"
	"pookal/internal/svc"
	"pookal/internal/websocket"
)

// Options tunes how the server runs.
type Options struct {
	// SvcCtx, when set, is used instead of building one from config.
	SvcCtx *svc.ServiceContext
	// Quiet suppresses startup messages and request logging.
	Quiet bool
}

// Run starts the server and blocks until the context is cancelled.
func Run(ctx context.Context, c config.Config, opts ...Options) error {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}

	if err := checkPortAvailable(c.Port); err != nil {
		return fmt.Errorf("port %d is already in use: %w", c.Port, err)
	}

	svcCtx := o.SvcCtx
	if svcCtx == nil {
		svcCtx = svc.NewServiceContext(c)
	}

	r := chi.NewRouter()
	if !o.Quiet {
		r.Use(chimw.Logger)
	}
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(corsMiddleware())

	r.Get("/health", handler.HealthCheckHandler(svcCtx))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/agent/message", agenthandler.SendMessageHandler(svcCtx))

		r.Get("/capabilities", agenthandler.ListCapabilitiesHandler(svcCtx))
		r.Post("/capabilities/execute", agenthandler.ExecuteCapabilityHandler(svcCtx))

		r.Get("/proposals/{id}", agenthandler.GetProposalHandler(svcCtx))
		r.Post("/proposals/{id}/confirm", agenthandler.ConfirmProposalHandler(svcCtx))
		r.Post("/proposals/{id}/decline", agenthandler.DeclineProposalHandler(svcCtx))
		r.Post("/proposals/{id}/overrides", agenthandler.OverrideProposalHandler(svcCtx))

		r.Post("/voice/start", voicehandler.StartVoiceHandler(svcCtx))
		r.Post("/voice/stop", voicehandler.StopVoiceHandler(svcCtx))
		r.Get("/voice/status", voicehandler.VoiceStatusHandler(svcCtx))
	})

	go svcCtx.Hub.Run(ctx)
	r.Get("/ws", websocket.Handler(svcCtx.Hub))

	// Write timeout is omitted: /voice/stop legitimately blocks for the
	// length of a transcribe/speak cycle, and /ws hijacks the connection.
	httpServer := &http.Server{
		Addr:        fmt.Sprintf(":%d", c.Port),
		Handler:     r,
		IdleTimeout: 120 * time.Second,
	}

	if !o.Quiet {
		logging.Infof("listening on http://localhost:%d", c.Port)
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Errorf("http server: %v", err)
		}
	}()

	<-ctx.Done()

	if !o.Quiet {
		logging.Info("shutting down")
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// corsMiddleware allows browser clients on this machine only.
func corsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || isLocalhostOrigin(origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isLocalhostOrigin(origin string) bool {
	return strings.HasPrefix(origin, "http://localhost:") ||
		strings.HasPrefix(origin, "http://127.0.0.1:") ||
		origin == "http://localhost" || origin == "http://127.0.0.1"
}

// checkPortAvailable verifies the port can be bound before startup.
func checkPortAvailable(port int) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return err
	}
	ln.Close()
	return nil
}
