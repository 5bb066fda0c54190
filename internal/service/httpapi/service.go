// Package httpapi — HTTP-слой сервиса: каталог, корзина, checkout и заявки.
package httpapi

import (
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/houseit/internal/cart"
	"github.com/vladislavdragonenkov/houseit/internal/catalog"
	"github.com/vladislavdragonenkov/houseit/internal/domain"
)

// Service обслуживает HTTP API поверх движка корзины и хранилищ.
type Service struct {
	catalog  *catalog.Catalog
	registry *cart.Registry
	carts    domain.CartStore
	requests domain.RequestStore
	resolver domain.IdentityResolver
	idemRepo domain.IdempotencyRepository
	logger   *log.Entry
}

// Options задаёт необязательные зависимости HTTP-слоя.
type Options struct {
	IdempotencyRepo domain.IdempotencyRepository
	Logger          *log.Entry
}

// Option настраивает Service.
type Option func(*Options)

// WithIdempotencyRepo включает поддержку заголовка Idempotency-Key на checkout.
func WithIdempotencyRepo(repo domain.IdempotencyRepository) Option {
	return func(opts *Options) {
		opts.IdempotencyRepo = repo
	}
}

// WithLogger задаёт logger сервиса.
func WithLogger(logger *log.Entry) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// NewService создаёт HTTP-сервис.
func NewService(
	cat *catalog.Catalog,
	registry *cart.Registry,
	carts domain.CartStore,
	requests domain.RequestStore,
	resolver domain.IdentityResolver,
	options ...Option,
) *Service {
	opts := Options{}
	for _, option := range options {
		option(&opts)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "httpapi")
	}
	return &Service{
		catalog:  cat,
		registry: registry,
		carts:    carts,
		requests: requests,
		resolver: resolver,
		idemRepo: opts.IdempotencyRepo,
		logger:   logger,
	}
}

// Router собирает маршруты API. Каталог открыт без токена, корзина и
// заявки требуют Bearer-аутентификации.
func (s *Service) Router() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/v1/categories", s.handleListCategories).Methods("GET")
	router.HandleFunc("/v1/categories/{key}/providers", s.handleListProviders).Methods("GET")
	router.HandleFunc("/v1/categories/{key}/providers/{id}", s.handleGetProvider).Methods("GET")

	authed := router.PathPrefix("/v1").Subrouter()
	authed.Use(s.authMiddleware)
	authed.HandleFunc("/cart", s.handleGetCart).Methods("GET")
	authed.HandleFunc("/cart/items", s.handleAddItem).Methods("POST")
	authed.HandleFunc("/cart/items/{id}/decrement", s.handleDecrementItem).Methods("POST")
	authed.HandleFunc("/cart/items/{id}", s.handleRemoveItem).Methods("DELETE")
	authed.HandleFunc("/checkout", s.withIdempotency(s.handleCheckout)).Methods("POST")
	authed.HandleFunc("/requests", s.handleListRequests).Methods("GET")
	authed.HandleFunc("/requests/{id}", s.handleGetRequest).Methods("GET")

	return router
}
