package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/houseit/internal/domain"
)

// requestStoreInMemory — простая in-memory реализация RequestStore.
type requestStoreInMemory struct {
	mu    sync.RWMutex
	items map[string][]domain.BookingRequest

	failNext error
}

// NewRequestStore возвращает in-memory хранилище заявок для локальной разработки и тестов.
func NewRequestStore() *requestStoreInMemory {
	return &requestStoreInMemory{
		items: make(map[string][]domain.BookingRequest),
	}
}

// Create сохраняет заявку, назначая идентификатор, CreatedAt и статус pending.
func (s *requestStoreInMemory) Create(_ context.Context, userID string, req domain.BookingRequest) (string, error) {
	if userID == "" {
		return "", domain.ErrUserIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return "", err
	}

	req.ID = uuid.NewString()
	req.UserID = userID
	req.Status = domain.BookingStatusPending
	req.CreatedAt = time.Now().UTC()

	// Сохраняем копию строк, чтобы избежать непредсказуемых мутаций извне.
	lines := make([]domain.CartLine, len(req.Lines))
	copy(lines, req.Lines)
	req.Lines = lines

	s.items[userID] = append(s.items[userID], req)
	return req.ID, nil
}

// ListAll возвращает заявки пользователя по убыванию времени создания.
func (s *requestStoreInMemory) ListAll(_ context.Context, userID string) ([]domain.BookingRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.items[userID]
	result := make([]domain.BookingRequest, len(stored))
	copy(result, stored)

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	return result, nil
}

// Get возвращает заявку или ErrRequestNotFound, если её нет.
func (s *requestStoreInMemory) Get(_ context.Context, userID, requestID string) (domain.BookingRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, req := range s.items[userID] {
		if req.ID == requestID {
			return req, nil
		}
	}
	return domain.BookingRequest{}, domain.ErrRequestNotFound
}

// FailNext заставляет следующий Create вернуть err (для тестов отказа checkout).
func (s *requestStoreInMemory) FailNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}

func (s *requestStoreInMemory) takeFailure() error {
	err := s.failNext
	s.failNext = nil
	return err
}

var _ domain.RequestStore = (*requestStoreInMemory)(nil)
