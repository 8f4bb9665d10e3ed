package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"tush00nka/chathub/internal/handler"
	"tush00nka/chathub/internal/pkg/auth"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Routes groups everything the server mounts.
type Routes struct {
	User    *handler.UserHandler
	Chat    *handler.ChatHandler
	Message *handler.MessageHandler
	WS      http.HandlerFunc
	// Files serves locally stored attachments; nil for remote storage.
	Files http.Handler
	// OnShutdown runs when the server begins shutting down.
	OnShutdown func()
}

type Server struct {
	router     *mux.Router
	handler    http.Handler
	onShutdown func()
	log        *slog.Logger
}

func NewServer(routes Routes, tokens *auth.Manager, corsOrigins []string, log *slog.Logger) *Server {
	router := mux.NewRouter()

	router.HandleFunc("/ping", handler.Ping).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.HandleFunc("/ws", routes.WS).Methods("GET")

	// Настройка Swagger
	router.HandleFunc("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./docs/swagger.json")
	})
	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"), // Важно: относительный путь
	))

	if routes.Files != nil {
		router.PathPrefix("/images/").Handler(http.StripPrefix("/images/", routes.Files))
	}

	routes.User.RegisterRoutes(router)

	protected := router.NewRoute().Subrouter()
	protected.Use(handler.Authenticate(tokens))
	routes.Chat.RegisterRoutes(protected)
	routes.Message.RegisterRoutes(protected)

	cors := handlers.CORS(
		handlers.AllowedOrigins(corsOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Requested-With"}),
		handlers.AllowCredentials(),
	)

	return &Server{
		router:     router,
		handler:    handlers.CombinedLoggingHandler(os.Stdout, cors(router)),
		onShutdown: routes.OnShutdown,
		log:        log,
	}
}

// Run serves on port until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, port string) error {
	srv := &http.Server{
		Handler:           s.handler,
		Addr:              ":" + port,
		ReadHeaderTimeout: 15 * time.Second,
	}
	// Shutdown не закрывает перехваченные websocket соединения
	if s.onShutdown != nil {
		srv.RegisterOnShutdown(s.onShutdown)
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", "port", port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.log.Info("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
