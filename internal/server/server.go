package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/wishlist/internal/account"
	"github.com/dukerupert/wishlist/internal/handler"
	"github.com/dukerupert/wishlist/internal/metrics"
	"github.com/dukerupert/wishlist/internal/middleware"
	"github.com/dukerupert/wishlist/internal/wishlist"
)

type Server struct {
	accounts    *account.Service
	authH       *handler.AuthHandler
	wishlistH   *handler.WishlistHandler
	itemH       *handler.ItemHandler
	metrics     *metrics.Metrics
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(accounts *account.Service, wishlists *wishlist.Service, m *metrics.Metrics, logger *slog.Logger) *Server {
	return &Server{
		accounts:    accounts,
		authH:       handler.NewAuthHandler(accounts, wishlists, logger.With("component", "auth")),
		wishlistH:   handler.NewWishlistHandler(wishlists, logger.With("component", "wishlist")),
		itemH:       handler.NewItemHandler(wishlists, logger.With("component", "item")),
		metrics:     m,
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /signup", s.authH.Signup)
	outerMux.HandleFunc("POST /login", s.rateLimitedHandler("login", s.authH.Login))
	outerMux.HandleFunc("POST /token", s.authH.Token)
	outerMux.HandleFunc("POST /logout", s.authH.Logout)
	outerMux.HandleFunc("POST /activate", s.authH.Activate)
	outerMux.HandleFunc("POST /forget-password", s.rateLimitedHandler("forget-password", s.authH.ForgetPassword))
	outerMux.HandleFunc("POST /reset-password", s.authH.ResetPassword)
	outerMux.HandleFunc("POST /user/exists", s.authH.UserExists)
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.Handle("GET /metrics", s.metrics.Handler())

	// Protected routes, wrapped with RequireToken
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	outerMux.Handle("/", middleware.RequireToken(s.accounts)(protectedMux))

	var h http.Handler = outerMux
	h = s.metrics.Instrument(h)
	h = middleware.Recoverer(s.logger.With("component", "http"))(h)
	return middleware.RequestLogger(s.logger.With("component", "http"))(h)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(route string, h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return route + ":" + middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /user/me", s.authH.Me)
	mux.HandleFunc("GET /user/wishlist", s.wishlistH.ListMine)

	mux.HandleFunc("POST /wishlist", s.wishlistH.Create)
	mux.HandleFunc("GET /wishlist/{id}", s.wishlistH.Get)
	mux.HandleFunc("PUT /wishlist/{id}/close", s.wishlistH.Close)
	mux.HandleFunc("POST /wishlist/{id}/invite", s.wishlistH.Invite)
	mux.HandleFunc("GET /wishlist/{id}/users", s.wishlistH.Members)

	mux.HandleFunc("POST /wishlist/{id}/item", s.itemH.Create)
	mux.HandleFunc("GET /wishlist/{id}/items", s.itemH.List)
	mux.HandleFunc("PUT /item/{id}/bought", s.itemH.MarkBought)

	mux.HandleFunc("POST /reservation", s.itemH.Reserve)
	mux.HandleFunc("DELETE /reservation/{itemId}", s.itemH.Unreserve)
}
