package devserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/digitalhat/storefront/internal/domain"
)

// Server is an in-memory implementation of the DigitalHat backend REST
// API for local development and integration tests. State lives for the
// process lifetime; auth is naive on purpose.
type Server struct {
	log *slog.Logger

	mu           sync.Mutex
	products     []domain.Product
	users        map[string]*account // keyed by email
	tokens       map[string]string   // token -> email
	pendingOTP   map[string]*account // awaiting verification, keyed by email
	carts        map[string]*domain.Cart
	orders       map[string][]domain.Order
	orderByKey   map[string]string // idempotency key -> order id
	nextUserID   int
	nextOrderSeq int
}

type account struct {
	user     domain.User
	password string
}

func New(log *slog.Logger) *Server {
	return &Server{
		log:        log,
		products:   seedProducts(),
		users:      make(map[string]*account),
		tokens:     make(map[string]string),
		pendingOTP: make(map[string]*account),
		carts:      make(map[string]*domain.Cart),
		orders:     make(map[string][]domain.Order),
		orderByKey: make(map[string]string),
	}
}

// SeedUser registers a verified account directly, for tests and demos.
func (s *Server) SeedUser(fullName, email, password string, role domain.Role) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createUser(fullName, email, password, role)
}

// caller must hold s.mu
func (s *Server) createUser(fullName, email, password string, role domain.Role) domain.User {
	s.nextUserID++
	user := domain.User{
		ID:       userID(s.nextUserID),
		FullName: fullName,
		Email:    email,
		Role:     role,
	}
	s.users[email] = &account{user: user, password: password}
	return user
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", s.listProducts)
			r.Get("/search", s.searchProducts)
			r.Get("/{productID}", s.getProduct)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", s.login)
			r.Post("/register", s.register)
			r.Post("/verify-otp", s.verifyOTP)
			r.With(s.requireAuth).Get("/me", s.me)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/", s.getCart)
			r.Post("/items", s.addCartItem)
			r.Patch("/items/{productID}", s.updateCartItem)
			r.Delete("/items/{productID}", s.removeCartItem)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/", s.createOrder)
			r.Get("/me", s.myOrders)
			r.Get("/{orderID}", s.getOrder)
		})
	})

	return r
}

type errorResponse struct {
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Message: message})
}
