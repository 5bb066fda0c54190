package domain

import "time"

// BookingStatus описывает жизненный цикл заявки на услуги.
type BookingStatus string

const (
	// BookingStatusPending — заявка создана, исполнение ещё не началось.
	BookingStatusPending BookingStatus = "pending"
	// BookingStatusAccepted — провайдер принял заявку (меняется внешним процессом).
	BookingStatusAccepted BookingStatus = "accepted"
	// BookingStatusCompleted — услуги оказаны.
	BookingStatusCompleted BookingStatus = "completed"
	// BookingStatusCanceled — заявка отменена до исполнения.
	BookingStatusCanceled BookingStatus = "canceled"
)

// BookingRequest — неизменяемый снимок корзины, сохранённый при checkout.
// ID и CreatedAt назначаются хранилищем; Status после создания меняет
// только внешний процесс исполнения.
type BookingRequest struct {
	ID           string
	UserID       string
	CategoryKey  string
	ProviderID   int64
	ProviderName string
	Lines        []CartLine
	TotalMinor   int64
	Status       BookingStatus
	CreatedAt    time.Time
}

// ValidateInvariants проверяет базовые инварианты заявки и возвращает список замечаний.
func (r *BookingRequest) ValidateInvariants() []error {
	var errs []error

	if r.UserID == "" {
		errs = append(errs, ErrUserIDRequired)
	}
	if len(r.Lines) == 0 {
		errs = append(errs, ErrLinesRequired)
	}

	// Сверяем сумму заявки с суммой строк: qty * price.
	var calc int64
	for _, line := range r.Lines {
		if line.Quantity <= 0 {
			errs = append(errs, ErrLineQtyInvalid)
		}
		if line.PriceMinor < 0 {
			errs = append(errs, ErrLinePriceInvalid)
		}
		calc += int64(line.Quantity) * line.PriceMinor
	}
	if calc != r.TotalMinor {
		errs = append(errs, ErrTotalMismatch)
	}

	return errs
}

// Valid проверяет, что статус относится к поддерживаемым значениям.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusAccepted, BookingStatusCompleted, BookingStatusCanceled:
		return true
	default:
		return false
	}
}
