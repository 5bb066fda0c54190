package domain

import "time"

// IntentOp — тип отложенной операции над зеркалом корзины.
type IntentOp string

const (
	IntentOpUpsert IntentOp = "upsert"
	IntentOpDelete IntentOp = "delete"
)

// IntentStatus описывает жизненный цикл записи журнала намерений.
type IntentStatus string

const (
	// IntentStatusPending — локальная мутация применена, удалённый вызов ещё не подтверждён.
	IntentStatusPending IntentStatus = "pending"
	// IntentStatusDone — удалённый вызов подтверждён, компенсация не нужна.
	IntentStatusDone IntentStatus = "done"
	// IntentStatusFailed — удалённый вызов не удался, компенсация применена.
	IntentStatusFailed IntentStatus = "failed"
)

// CartIntent — запись журнала намерений: фиксируется до удалённого вызова,
// чтобы сбой на середине операции оставлял обнаружимый pending-след, а не
// молча разъехавшееся локальное и удалённое состояние.
type CartIntent struct {
	ID     string
	UserID string
	Op     IntentOp
	ItemID int64
	// Prior — состояние строки до локальной мутации; nil, если строки не было.
	// Используется как компенсация при откате.
	Prior     *CartLine
	Status    IntentStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
