package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/houseit/internal/domain"
)

type cartKey struct {
	userID string
	itemID int64
}

// cartStoreInMemory — простая in-memory реализация CartStore.
type cartStoreInMemory struct {
	mu    sync.RWMutex
	items map[cartKey]domain.CartLine

	// failNext имитирует отказ удалённого хранилища в тестах.
	failNext error
}

// NewCartStore возвращает in-memory хранилище корзины для локальной разработки и тестов.
func NewCartStore() *cartStoreInMemory {
	return &cartStoreInMemory{
		items: make(map[cartKey]domain.CartLine),
	}
}

// Upsert перезаписывает строку целиком и проставляет серверный UpdatedAt.
func (s *cartStoreInMemory) Upsert(_ context.Context, userID string, line domain.CartLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return err
	}

	line.UpdatedAt = time.Now().UTC()
	s.items[cartKey{userID: userID, itemID: line.ItemID}] = line
	return nil
}

// ListAll возвращает строки пользователя, упорядоченные по item id.
func (s *cartStoreInMemory) ListAll(_ context.Context, userID string) ([]domain.CartLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.CartLine, 0)
	for key, line := range s.items {
		if key.userID != userID {
			continue
		}
		result = append(result, line)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].ItemID < result[j].ItemID })
	return result, nil
}

// Delete удаляет одну строку; отсутствие строки не считается ошибкой.
func (s *cartStoreInMemory) Delete(_ context.Context, userID string, itemID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return err
	}

	delete(s.items, cartKey{userID: userID, itemID: itemID})
	return nil
}

// DeleteAll удаляет все строки пользователя.
func (s *cartStoreInMemory) DeleteAll(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return err
	}

	for key := range s.items {
		if key.userID == userID {
			delete(s.items, key)
		}
	}
	return nil
}

// FailNext заставляет следующую мутацию вернуть err (для тестов отката).
func (s *cartStoreInMemory) FailNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}

func (s *cartStoreInMemory) takeFailure() error {
	err := s.failNext
	s.failNext = nil
	return err
}

var _ domain.CartStore = (*cartStoreInMemory)(nil)
