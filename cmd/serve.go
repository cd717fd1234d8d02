package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/extract"
	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/internal/notify"
	"github.com/sells-group/prospector/internal/panel"
	"github.com/sells-group/prospector/internal/router"
	"github.com/sells-group/prospector/pkg/browser"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the capture daemon and panel message server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		hub := notify.NewHub(originChecker(cfg.Server.AllowedOrigins))
		defer hub.Close()

		env, err := initEnv(ctx, hub)
		if err != nil {
			return err
		}
		defer env.Close()

		session, err := browser.NewSession(ctx, cfg.Browser)
		if err != nil {
			return eris.Wrap(err, "attach browser")
		}
		defer session.Close()

		selectors, err := extract.LoadSelectors(cfg.Extract.StrategyFile)
		if err != nil {
			return eris.Wrap(err, "load selectors")
		}

		extractor := extract.New(browser.NewDOM(session), selectors, supportedURL,
			extract.WithSink(env.Store),
			extract.WithNotifier(env.Notifier),
		)

		controller := panel.New(supportedURL, cfg.Panel.GestureWindow())

		events, err := session.WatchTabs(ctx)
		if err != nil {
			return eris.Wrap(err, "watch tabs")
		}
		go trackTabs(ctx, events, controller, extractor, session)

		dispatch := router.New(router.Deps{
			Extractor: extractor,
			Panel:     controller,
			Pipeline:  env.Pipeline,
			Store:     env.Store,
			Session:   env.Session,
			Username:  cfg.CRM.Username,
		})

		r := chi.NewRouter()
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
		})

		r.Post("/api/message", func(w http.ResponseWriter, req *http.Request) {
			var msg model.Message
			if err := json.NewDecoder(req.Body).Decode(&msg); err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(model.Fail("bad_request", "invalid message body"))
				return
			}

			envlp := dispatch.Dispatch(req.Context(), msg)

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(envlp)
		})

		r.Get("/api/events", hub.ServeHTTP)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf("127.0.0.1:%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// trackTabs feeds browser tab events into the panel controller and
// re-injects the capture affordance after each navigation.
func trackTabs(ctx context.Context, events <-chan model.TabEvent, controller *panel.Controller, extractor *extract.Extractor, session *browser.Session) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-events:
			controller.HandleTabEvent(evt)
			if evt.Kind == model.TabNavigated && controller.State(evt.TabID).Eligible {
				if err := extractor.InjectAffordance(session.Context()); err != nil {
					zap.L().Debug("inject affordance", zap.String("tab", evt.TabID), zap.Error(err))
				}
			}
		}
	}
}

// originChecker matches request origins against the allowed list.
// A single '*' in a pattern wildcards that position.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // same-host tools and curl
		}
		for _, pattern := range allowed {
			if pattern == "*" || pattern == origin {
				return true
			}
			if i := strings.IndexByte(pattern, '*'); i >= 0 {
				if strings.HasPrefix(origin, pattern[:i]) && strings.HasSuffix(origin, pattern[i+1:]) {
					return true
				}
			}
		}
		return false
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
