// Package server is the composition root: it opens the database, builds the
// services and handlers, and mounts them on one chi router.
//
// DEPENDENCY FLOW:
//
//	config.Config
//	  → sqlite.DB (+ migrations) ─┐
//	  → media.LocalStorage ───────┼→ services → handlers → routes
//	  → auth.TokenService ────────┘
//
// Nothing below this package constructs its own dependencies, so tests can
// build any layer on its own with fakes or an in-memory database.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/yatube/internal/auth"
	"github.com/sakif/yatube/internal/config"
	"github.com/sakif/yatube/internal/handler"
	"github.com/sakif/yatube/internal/media"
	"github.com/sakif/yatube/internal/middleware"
	sqliteRepo "github.com/sakif/yatube/internal/repository/sqlite"
	"github.com/sakif/yatube/internal/service"
)

// ShutdownTimeout is how long in-flight requests get to finish after
// SIGINT/SIGTERM.
const ShutdownTimeout = 30 * time.Second

// Server owns the router and the database connection. The database is
// closed when Start returns, or by Close for servers that never start.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database, applies migrations and wires every route.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler { return s.router }

// Close releases the database. Start calls it on the way out.
func (s *Server) Close() error { return s.db.Close() }

// setupRoutes mounts:
//
//	/api/v1/groups, /api/v1/groups/{groupID}                       GET
//	/api/v1/posts, /api/v1/posts/{postID}                          GET POST PUT PATCH DELETE
//	/api/v1/posts/{postID}/comments[/{commentID}]                  GET POST PUT PATCH DELETE
//	/api/v1/follows                                                GET POST
//	/api/v1/users, /api/v1/users/me                                POST, GET
//	/api/v1/jwt/create, /api/v1/jwt/verify                         POST
//	/auth/github/login, /auth/github/callback, /auth/logout        (GitHub configured only)
//	/media/*                                                       stored images
//	/healthz                                                       database ping
//
// Middleware runs in the order added. Authenticate comes last so the
// principal it resolves is in the context every handler sees; it never
// rejects a request itself.
func (s *Server) setupRoutes() error {
	cfg := s.config

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	store, err := media.NewLocalStorage(cfg.Media.Dir, cfg.Server.BaseURL+"/media/")
	if err != nil {
		return fmt.Errorf("creating media storage: %w", err)
	}

	users := s.db.Users()

	postService := service.NewPostService(s.db.Posts(), s.db.Groups(), store, s.logger)
	commentService := service.NewCommentService(s.db.Comments(), s.db.Posts(), s.logger)
	groupService := service.NewGroupService(s.db.Groups(), s.logger)
	followService := service.NewFollowService(s.db.Follows(), users, s.logger)
	authService := service.NewAuthService(users, tokens, auth.NewPasswordService(), s.logger)

	postHandler := handler.NewPostHandler(postService, store.URL, cfg.Server.BaseURL, s.logger)
	commentHandler := handler.NewCommentHandler(commentService, s.logger)
	groupHandler := handler.NewGroupHandler(groupService, s.logger)
	followHandler := handler.NewFollowHandler(followService, s.logger)
	userHandler := handler.NewUserHandler(authService, s.logger)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.StripSlashes)
	s.router.Use(auth.Authenticate(tokens, users, s.logger))

	// Set before any Route/Mount so sub-routers inherit them.
	s.router.NotFound(handler.NotFound)
	s.router.MethodNotAllowed(handler.MethodNotAllowed)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/media/*", http.StripPrefix("/media/", noDirListing(http.FileServer(http.Dir(store.Root())))))

	if cfg.Auth.GitHub.Enabled() {
		gh := auth.NewGitHubProvider(cfg.Auth.GitHub.ClientID, cfg.Auth.GitHub.ClientSecret, cfg.Auth.GitHub.CallbackURL)
		authHandler := handler.NewAuthHandler(gh, authService, tokens.TTL(),
			strings.HasPrefix(cfg.Server.BaseURL, "https://"), s.logger)

		s.router.Route("/auth", func(r chi.Router) {
			r.Get("/github/login", authHandler.HandleGitHubLogin)
			r.Get("/github/callback", authHandler.HandleGitHubCallback)
			r.Post("/logout", authHandler.HandleLogout)
		})
	} else {
		s.logger.Info("GitHub login disabled (GITHUB_CLIENT_ID / GITHUB_CLIENT_SECRET not set)")
	}

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/groups", func(r chi.Router) {
			r.Get("/", groupHandler.HandleList)
			r.Get("/{groupID}", groupHandler.HandleGet)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", postHandler.HandleList)
			r.Post("/", postHandler.HandleCreate)

			r.Route("/{postID}", func(r chi.Router) {
				r.Get("/", postHandler.HandleGet)
				r.Put("/", postHandler.HandleUpdate)
				r.Patch("/", postHandler.HandleUpdate)
				r.Delete("/", postHandler.HandleDelete)

				r.Route("/comments", func(r chi.Router) {
					r.Get("/", commentHandler.HandleList)
					r.Post("/", commentHandler.HandleCreate)
					r.Get("/{commentID}", commentHandler.HandleGet)
					r.Put("/{commentID}", commentHandler.HandleUpdate)
					r.Patch("/{commentID}", commentHandler.HandleUpdate)
					r.Delete("/{commentID}", commentHandler.HandleDelete)
				})
			})
		})

		r.Get("/follows", followHandler.HandleList)
		r.Post("/follows", followHandler.HandleCreate)

		r.Post("/users", userHandler.HandleRegister)
		r.With(auth.RequireAuth).Get("/users/me", userHandler.HandleMe)
		r.Post("/jwt/create", userHandler.HandleTokenCreate)
		r.Post("/jwt/verify", userHandler.HandleTokenVerify)
	})

	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if err := s.db.Ping(ctx); err != nil {
		s.logger.Error("health check failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unavailable"}` + "\n"))
		return
	}
	w.Write([]byte(`{"status":"ok"}` + "\n"))
}

// noDirListing hides directory indexes that http.FileServer would
// otherwise render for paths ending in a slash.
func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			handler.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Start serves until SIGINT/SIGTERM, then shuts down gracefully:
//
//  1. stop accepting new connections
//  2. wait up to ShutdownTimeout for in-flight requests
//  3. close the database
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         s.config.Addr(),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("url", s.config.Server.BaseURL),
			slog.String("database", s.config.Database.Path),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
