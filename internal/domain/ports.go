package domain

import (
	"context"
	"time"
)

// CartStore описывает удалённое документное хранилище корзины.
// Каждая строка адресуется парой (userID, itemID) и перезаписывается целиком.
type CartStore interface {
	// Upsert сохраняет строку корзины, проставляя серверный UpdatedAt.
	Upsert(ctx context.Context, userID string, line CartLine) error
	// ListAll возвращает все зеркалированные строки пользователя.
	ListAll(ctx context.Context, userID string) ([]CartLine, error)
	// Delete удаляет одну строку; отсутствие строки — не ошибка.
	Delete(ctx context.Context, userID string, itemID int64) error
	// DeleteAll удаляет все строки пользователя.
	DeleteAll(ctx context.Context, userID string) error
}

// RequestStore описывает append-only хранилище заявок на услуги.
type RequestStore interface {
	// Create сохраняет заявку, назначая идентификатор, CreatedAt и статус pending.
	Create(ctx context.Context, userID string, req BookingRequest) (string, error)
	// ListAll возвращает заявки пользователя по убыванию времени создания.
	ListAll(ctx context.Context, userID string) ([]BookingRequest, error)
	// Get возвращает заявку или ErrRequestNotFound, если её нет.
	Get(ctx context.Context, userID, requestID string) (BookingRequest, error)
}

// AlertKind классифицирует уведомление для презентационного слоя.
type AlertKind string

const (
	AlertKindSuccess AlertKind = "success"
	AlertKindError   AlertKind = "error"
	AlertKindInfo    AlertKind = "info"
)

// AlertButton — кнопка уведомления; Action выполняется после закрытия алерта.
type AlertButton struct {
	Text   string
	Action func()
}

// Alert — запрос на показ модального уведомления пользователю.
type Alert struct {
	Title   string
	Message string
	Kind    AlertKind
	Buttons []AlertButton
}

// Notifier — канал уведомлений: очередь не более чем из одного видимого алерта.
// Передаётся явной зависимостью, без процесс-глобального состояния.
type Notifier interface {
	// Show ставит алерт в показ; предыдущий видимый алерт закрывается.
	Show(alert Alert)
	// Hide закрывает текущий алерт, если он есть.
	Hide()
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// IdempotencyRepository хранит состояние обработки запросов по idempotency-key.
type IdempotencyRepository interface {
	CreateProcessing(key, requestHash string, ttlAt time.Time) (IdempotencyRecord, error)
	Get(key string) (IdempotencyRecord, error)
	MarkDone(key string, responseBody []byte, httpStatus int) error
	MarkFailed(key string, responseBody []byte, httpStatus int) error
	DeleteExpired(before time.Time, limit int) (int, error)
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
