package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/wolfiez/wallpaper/config"
	"github.com/wolfiez/wallpaper/internal/db"
	"github.com/wolfiez/wallpaper/internal/handlers"
	"github.com/wolfiez/wallpaper/internal/services"
	"github.com/wolfiez/wallpaper/internal/store"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	boardRepo := store.NewBoardRepository(dbConn)
	sessionRepo := store.NewSessionRepository(dbConn)

	userService := services.NewUserService(userRepo)
	boardService := services.NewBoardService(boardRepo, userRepo)
	authService := services.NewAuthService(userService, sessionRepo, cfg.Session.TTL)

	jwtSecret := strings.TrimSpace(cfg.JWTSecret)
	if jwtSecret == "" {
		_ = dbConn.Close()
		return nil, errors.New("JWT_SECRET is required")
	}

	authMiddleware := handlers.RequireAuth(authService, jwtSecret)
	pages := handlers.NewPageHandler(authService, userService, boardService, cfg.Session.SecureCookie)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)

	// Public allow-list: home, health, and the login/register flows.
	router.Get("/healthz", handlers.Healthz)
	router.Get("/", pages.Home)
	router.Get("/login", pages.LoginPage)
	router.Post("/login", pages.LoginSubmit)
	router.Get("/register", pages.RegisterPage)
	router.Post("/register", pages.RegisterSubmit)
	router.Post("/logout", pages.Logout)

	router.With(authMiddleware).Get("/dashboard", pages.Dashboard)

	router.Route("/api/auth", func(r chi.Router) {
		handlers.AuthRouter(r, authService, userService, jwtSecret, authMiddleware)
	})
	router.Route("/api/users", func(r chi.Router) {
		r.Use(authMiddleware)
		handlers.UserRouter(r, userService)
	})
	router.Route("/api/boards", func(r chi.Router) {
		handlers.BoardRouter(r, boardService, authMiddleware)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
