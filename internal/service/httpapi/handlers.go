package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/houseit/internal/cart"
	"github.com/vladislavdragonenkov/houseit/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

type cartLinePayload struct {
	ItemID     int64  `json:"item_id"`
	Name       string `json:"name"`
	PriceMinor int64  `json:"price_minor"`
	Quantity   int    `json:"quantity"`
}

type cartResponse struct {
	CategoryKey  string            `json:"category_key,omitempty"`
	ProviderID   int64             `json:"provider_id,omitempty"`
	ProviderName string            `json:"provider_name,omitempty"`
	Lines        []cartLinePayload `json:"lines"`
	TotalMinor   int64             `json:"total_minor"`
}

type bookingRequestPayload struct {
	ID           string            `json:"id"`
	CategoryKey  string            `json:"category_key"`
	ProviderID   int64             `json:"provider_id"`
	ProviderName string            `json:"provider_name"`
	Lines        []cartLinePayload `json:"lines"`
	TotalMinor   int64             `json:"total_minor"`
	Status       string            `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
}

type addItemRequest struct {
	CategoryKey string `json:"category_key"`
	ProviderID  int64  `json:"provider_id"`
	ItemID      int64  `json:"item_id"`
}

func (s *Service) handleListCategories(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"categories": s.catalog.Categories(),
	})
}

func (s *Service) handleListProviders(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	// неизвестная категория отдаёт пустой список, а не ошибку
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"category_key": key,
		"providers":    s.catalog.Providers(key),
	})
}

func (s *Service) handleGetProvider(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	key := vars["key"]

	providerID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "provider id must be an integer")
		return
	}

	provider, ok := s.catalog.Provider(key, providerID)
	if !ok {
		s.writeError(w, http.StatusNotFound, domain.ErrProviderNotFound.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, provider)
}

func (s *Service) handleGetCart(w http.ResponseWriter, r *http.Request) {
	state := identityStateFrom(r.Context())
	identity, err := domain.RequireIdentity(state)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	if engine, ok := s.registry.Current(identity.UserID); ok {
		sess := engine.Session()
		s.writeJSON(w, http.StatusOK, cartResponse{
			CategoryKey:  sess.CategoryKey,
			ProviderID:   sess.ProviderID,
			ProviderName: sess.ProviderName,
			Lines:        toLinePayloads(engine.Lines()),
			TotalMinor:   engine.TotalMinor(),
		})
		return
	}

	// сессии нет, показываем зеркалированную корзину из хранилища
	lines, err := s.carts.ListAll(r.Context(), identity.UserID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", identity.UserID).Warn("cart read failed")
		s.writeDomainError(w, domain.ErrPersistenceFailed)
		return
	}

	var total int64
	for _, line := range lines {
		total += line.PriceMinor * int64(line.Quantity)
	}
	s.writeJSON(w, http.StatusOK, cartResponse{
		Lines:      toLinePayloads(lines),
		TotalMinor: total,
	})
}

func (s *Service) handleAddItem(w http.ResponseWriter, r *http.Request) {
	state := identityStateFrom(r.Context())

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	provider, ok := s.catalog.Provider(req.CategoryKey, req.ProviderID)
	if !ok {
		s.writeError(w, http.StatusNotFound, domain.ErrProviderNotFound.Error())
		return
	}
	item, ok := s.catalog.Item(req.CategoryKey, req.ProviderID, req.ItemID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "service item not found")
		return
	}

	identity, err := domain.RequireIdentity(state)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	engine := s.registry.For(identity.UserID, cart.Session{
		CategoryKey:  req.CategoryKey,
		ProviderID:   provider.ID,
		ProviderName: provider.Name,
	})
	if err := engine.AddItem(r.Context(), state, item); err != nil {
		s.writeDomainError(w, err)
		return
	}

	s.writeCartState(w, engine)
}

func (s *Service) handleDecrementItem(w http.ResponseWriter, r *http.Request) {
	s.handleLineMutation(w, r, func(engine *cart.Engine, state domain.IdentityState, itemID int64) error {
		return engine.DecrementItem(r.Context(), state, itemID)
	})
}

func (s *Service) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	s.handleLineMutation(w, r, func(engine *cart.Engine, state domain.IdentityState, itemID int64) error {
		return engine.RemoveItem(r.Context(), state, itemID)
	})
}

func (s *Service) handleLineMutation(
	w http.ResponseWriter,
	r *http.Request,
	mutate func(*cart.Engine, domain.IdentityState, int64) error,
) {
	state := identityStateFrom(r.Context())
	identity, err := domain.RequireIdentity(state)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	itemID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "item id must be an integer")
		return
	}

	engine, ok := s.registry.Current(identity.UserID)
	if !ok {
		s.writeDomainError(w, domain.ErrLineNotFound)
		return
	}

	if err := mutate(engine, state, itemID); err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeCartState(w, engine)
}

func (s *Service) handleCheckout(w http.ResponseWriter, r *http.Request) {
	state := identityStateFrom(r.Context())
	identity, err := domain.RequireIdentity(state)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	engine, ok := s.registry.Current(identity.UserID)
	if !ok {
		s.writeDomainError(w, domain.ErrCartEmpty)
		return
	}

	request, err := engine.Checkout(r.Context(), state)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toRequestPayload(request))
}

func (s *Service) handleListRequests(w http.ResponseWriter, r *http.Request) {
	state := identityStateFrom(r.Context())
	identity, err := domain.RequireIdentity(state)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	requests, err := s.requests.ListAll(r.Context(), identity.UserID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", identity.UserID).Warn("list requests failed")
		s.writeDomainError(w, domain.ErrPersistenceFailed)
		return
	}

	payloads := make([]bookingRequestPayload, 0, len(requests))
	for _, request := range requests {
		payloads = append(payloads, toRequestPayload(request))
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"requests": payloads})
}

func (s *Service) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	state := identityStateFrom(r.Context())
	identity, err := domain.RequireIdentity(state)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	request, err := s.requests.Get(r.Context(), identity.UserID, mux.Vars(r)["id"])
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toRequestPayload(request))
}

func (s *Service) writeCartState(w http.ResponseWriter, engine *cart.Engine) {
	sess := engine.Session()
	s.writeJSON(w, http.StatusOK, cartResponse{
		CategoryKey:  sess.CategoryKey,
		ProviderID:   sess.ProviderID,
		ProviderName: sess.ProviderName,
		Lines:        toLinePayloads(engine.Lines()),
		TotalMinor:   engine.TotalMinor(),
	})
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).Warn("failed to encode response")
	}
}

func (s *Service) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}

// writeDomainError переводит доменные sentinel-ошибки в HTTP-статусы.
func (s *Service) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrAuthenticationRequired):
		s.writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrIdentityIncomplete):
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrCartEmpty):
		s.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrLineNotFound),
		errors.Is(err, domain.ErrRequestNotFound),
		errors.Is(err, domain.ErrProviderNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrPersistenceFailed),
		errors.Is(err, domain.ErrCheckoutFailed):
		s.writeError(w, http.StatusBadGateway, err.Error())
	default:
		s.logger.WithFields(log.Fields{"error": err}).Error("unhandled error in http handler")
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func toLinePayloads(lines []domain.CartLine) []cartLinePayload {
	payloads := make([]cartLinePayload, 0, len(lines))
	for _, line := range lines {
		payloads = append(payloads, cartLinePayload{
			ItemID:     line.ItemID,
			Name:       line.Name,
			PriceMinor: line.PriceMinor,
			Quantity:   line.Quantity,
		})
	}
	return payloads
}

func toRequestPayload(request domain.BookingRequest) bookingRequestPayload {
	return bookingRequestPayload{
		ID:           request.ID,
		CategoryKey:  request.CategoryKey,
		ProviderID:   request.ProviderID,
		ProviderName: request.ProviderName,
		Lines:        toLinePayloads(request.Lines),
		TotalMinor:   request.TotalMinor,
		Status:       string(request.Status),
		CreatedAt:    request.CreatedAt,
	}
}
