package cart

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/houseit/internal/domain"
)

// journal — журнал намерений движка корзины. Запись фиксируется до
// удалённого вызова, переводится в done после подтверждения и в failed
// после применённой компенсации. Обрыв посреди операции оставляет
// pending-запись, по которой расхождение локального и удалённого
// состояния можно обнаружить и разобрать.
type journal struct {
	mu      sync.Mutex
	records map[string]domain.CartIntent
}

func newJournal() *journal {
	return &journal{records: make(map[string]domain.CartIntent)}
}

// begin регистрирует намерение перед удалённым вызовом.
func (j *journal) begin(userID string, op domain.IntentOp, itemID int64, prior *domain.CartLine) domain.CartIntent {
	now := time.Now().UTC()
	intent := domain.CartIntent{
		ID:        uuid.NewString(),
		UserID:    userID,
		Op:        op,
		ItemID:    itemID,
		Status:    domain.IntentStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if prior != nil {
		priorCopy := *prior
		intent.Prior = &priorCopy
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.records[intent.ID] = intent
	return intent
}

// done подтверждает намерение; компенсация не понадобится.
func (j *journal) done(id string) {
	j.mark(id, domain.IntentStatusDone)
}

// failed фиксирует, что удалённый вызов не удался и компенсация применена.
func (j *journal) failed(id string) {
	j.mark(id, domain.IntentStatusFailed)
}

func (j *journal) mark(id string, status domain.IntentStatus) {
	j.mu.Lock()
	defer j.mu.Unlock()

	record, ok := j.records[id]
	if !ok {
		return
	}
	record.Status = status
	record.UpdatedAt = time.Now().UTC()
	j.records[id] = record
}

// pending возвращает незавершённые намерения (используется в тестах и диагностике).
func (j *journal) pending() []domain.CartIntent {
	j.mu.Lock()
	defer j.mu.Unlock()

	result := make([]domain.CartIntent, 0)
	for _, record := range j.records {
		if record.Status == domain.IntentStatusPending {
			result = append(result, record)
		}
	}
	return result
}

// reset очищает журнал; вызывается после успешного checkout.
func (j *journal) reset() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = make(map[string]domain.CartIntent)
}
