package cart

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/houseit/internal/domain"
)

// Registry выдаёт движок корзины по пользователю. Смена провайдера в
// пределах пользователя начинает новую сессию: старая корзина отбрасывается,
// позиции разных провайдеров в одной заявке не смешиваются.
type Registry struct {
	mu      sync.Mutex
	engines map[string]*Engine

	store    domain.CartStore
	requests domain.RequestStore
	notifier domain.Notifier
	logger   *log.Entry
	options  []Option
}

// NewRegistry создаёт реестр движков с общими зависимостями.
func NewRegistry(
	store domain.CartStore,
	requests domain.RequestStore,
	notifier domain.Notifier,
	logger *log.Entry,
	options ...Option,
) *Registry {
	if logger == nil {
		logger = log.New().WithField("component", "cart-registry")
	}
	return &Registry{
		engines:  make(map[string]*Engine),
		store:    store,
		requests: requests,
		notifier: notifier,
		logger:   logger,
		options:  options,
	}
}

// For возвращает движок пользователя userID для сессии sess. Существующий
// движок переиспользуется, пока категория и провайдер совпадают; иначе
// создаётся новый.
func (r *Registry) For(userID string, sess Session) *Engine {
	r.mu.Lock()
	defer r.mu.Unlock()

	if engine, ok := r.engines[userID]; ok {
		current := engine.Session()
		if current.CategoryKey == sess.CategoryKey && current.ProviderID == sess.ProviderID {
			return engine
		}
		r.logger.WithFields(log.Fields{
			"user_id":       userID,
			"from_provider": current.ProviderID,
			"to_provider":   sess.ProviderID,
		}).Info("cart session switched to another provider")
	}

	engine := NewEngine(sess, r.store, r.requests, r.notifier,
		r.logger.WithField("user_id", userID), r.options...)
	r.engines[userID] = engine
	return engine
}

// Current возвращает движок пользователя, если сессия уже открыта.
func (r *Registry) Current(userID string) (*Engine, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	engine, ok := r.engines[userID]
	return engine, ok
}

// Drop закрывает сессию пользователя.
func (r *Registry) Drop(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.engines, userID)
}
