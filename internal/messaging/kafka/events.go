package kafka

import "time"

// EventType определяет тип события
type EventType string

const (
	// Booking события
	EventTypeBookingCreated   EventType = "booking.created"
	EventTypeBookingAccepted  EventType = "booking.accepted"
	EventTypeBookingCompleted EventType = "booking.completed"
	EventTypeBookingCanceled  EventType = "booking.canceled"

	// Cart события
	EventTypeCartCleared EventType = "cart.cleared"
)

// Topics для Kafka
const (
	TopicBookingEvents   = "houseit.booking.events"
	TopicDeadLetterQueue = "houseit.dlq" // Dead Letter Queue для failed messages
)

// Kafka headers для retry логики
const (
	HeaderRetryCount    = "x-retry-count"
	HeaderOriginalTopic = "x-original-topic"
	HeaderErrorMessage  = "x-error-message"
	HeaderFailedAt      = "x-failed-at"
)

// BookingEvent представляет событие жизненного цикла заявки
type BookingEvent struct {
	EventType  EventType              `json:"event_type"`
	RequestID  string                 `json:"request_id"`
	UserID     string                 `json:"user_id"`
	ProviderID int64                  `json:"provider_id"`
	Status     string                 `json:"status"`
	TotalMinor int64                  `json:"total_minor"`
	Timestamp  time.Time              `json:"timestamp"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// NewBookingEvent создает новое событие заявки
func NewBookingEvent(eventType EventType, requestID, userID string, providerID int64, status string, totalMinor int64) *BookingEvent {
	return &BookingEvent{
		EventType:  eventType,
		RequestID:  requestID,
		UserID:     userID,
		ProviderID: providerID,
		Status:     status,
		TotalMinor: totalMinor,
		Timestamp:  time.Now(),
	}
}
