// Package cart реализует движок корзины: авторитетное локальное состояние
// выбора пользователя, его зеркалирование в удалённое хранилище и конечный
// автомат checkout с компенсациями при отказах.
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/houseit/internal/domain"
	"github.com/vladislavdragonenkov/houseit/internal/metrics"
)

// Session описывает пару (категория, провайдер), к которой привязана корзина.
type Session struct {
	CategoryKey  string
	ProviderID   int64
	ProviderName string
}

// Options задаёт необязательные зависимости движка.
type Options struct {
	Metrics *metrics.CartMetrics
	Outbox  domain.OutboxRepository
	// ConfirmAction выполняется после закрытия алерта подтверждения
	// (презентер обычно подставляет сюда возврат на витрину).
	ConfirmAction func()
}

// Option настраивает Engine.
type Option func(*Options)

// WithMetrics задаёт метрики движка.
func WithMetrics(m *metrics.CartMetrics) Option {
	return func(opts *Options) {
		opts.Metrics = m
	}
}

// WithOutbox задаёт outbox для событий бронирования.
func WithOutbox(repo domain.OutboxRepository) Option {
	return func(opts *Options) {
		opts.Outbox = repo
	}
}

// WithConfirmAction задаёт действие кнопки OK в алерте подтверждения.
func WithConfirmAction(action func()) Option {
	return func(opts *Options) {
		opts.ConfirmAction = action
	}
}

// Engine — движок корзины одной сессии (пользователь, провайдер).
//
// Все операции сериализуются мьютексом: UI-петля одного пользователя не
// создаёт настоящей конкуренции, но HTTP-слой может быть реентерабельным.
// Гонки add/add по одному item id разрешаются как last-write-wins и на
// локальном состоянии, и на удалённом upsert.
type Engine struct {
	mu   sync.Mutex
	sess Session
	cart domain.Cart

	// pinnedRequestID — заявка, созданная в checkout, чья очистка корзины
	// ещё не подтверждена. Повторный checkout переиспользует её вместо
	// создания дубликата.
	pinnedRequestID string
	pinnedRequest   domain.BookingRequest

	store    domain.CartStore
	requests domain.RequestStore
	notifier domain.Notifier
	journal  *journal
	logger   *log.Entry

	metrics       *metrics.CartMetrics
	outbox        domain.OutboxRepository
	confirmAction func()
}

// NewEngine создаёт движок корзины для сессии sess.
func NewEngine(
	sess Session,
	store domain.CartStore,
	requests domain.RequestStore,
	notifier domain.Notifier,
	logger *log.Entry,
	options ...Option,
) *Engine {
	opts := Options{}
	for _, option := range options {
		option(&opts)
	}
	if logger == nil {
		logger = log.New().WithField("component", "cart-engine")
	}
	return &Engine{
		sess:          sess,
		cart:          domain.Cart{CategoryKey: sess.CategoryKey, ProviderID: sess.ProviderID},
		store:         store,
		requests:      requests,
		notifier:      notifier,
		journal:       newJournal(),
		logger:        logger,
		metrics:       opts.Metrics,
		outbox:        opts.Outbox,
		confirmAction: opts.ConfirmAction,
	}
}

// Session возвращает пару (категория, провайдер) движка.
func (e *Engine) Session() Session {
	return e.sess
}

// Lines возвращает копию строк корзины.
func (e *Engine) Lines() []domain.CartLine {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]domain.CartLine, len(e.cart.Lines))
	copy(out, e.cart.Lines)
	return out
}

// TotalMinor возвращает сумму корзины. Чистая функция без побочных эффектов,
// ноль для пустой корзины.
func (e *Engine) TotalMinor() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cart.TotalMinor()
}

// Restore загружает зеркалированные строки из удалённого хранилища.
// Вызывается на входе в сессию, чтобы корзина переживала перезапуск.
func (e *Engine) Restore(ctx context.Context, state domain.IdentityState) error {
	identity, err := domain.RequireIdentity(state)
	if err != nil {
		return err
	}

	lines, err := e.store.ListAll(ctx, identity.UserID)
	if err != nil {
		e.logger.WithError(err).WithField("user_id", identity.UserID).Warn("restore cart failed")
		return fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.cart.UserID = identity.UserID
	e.cart.Lines = lines
	return nil
}

// AddItem добавляет позицию каталога в корзину: существующая строка
// инкрементируется, новая добавляется с количеством 1. Локальная мутация
// применяется оптимистично и откатывается целиком, если удалённый upsert
// не удался.
func (e *Engine) AddItem(ctx context.Context, state domain.IdentityState, item domain.CatalogItem) error {
	identity, err := domain.RequireIdentity(state)
	if err != nil {
		return err
	}

	var pending *domain.Alert
	e.mu.Lock()
	defer e.showPending(&pending)
	defer e.mu.Unlock()
	e.cart.UserID = identity.UserID

	var (
		prior *domain.CartLine
		line  domain.CartLine
	)
	if existing, ok := e.cart.Line(item.ID); ok {
		priorCopy := existing
		prior = &priorCopy
		line = existing
		line.Quantity++
	} else {
		line = domain.CartLine{
			ItemID:     item.ID,
			Name:       item.Name,
			PriceMinor: item.PriceMinor,
			Quantity:   1,
		}
	}

	intent := e.journal.begin(identity.UserID, domain.IntentOpUpsert, item.ID, prior)
	e.applyLine(line)

	if err := e.store.Upsert(ctx, identity.UserID, line); err != nil {
		e.rollbackLine(item.ID, prior)
		e.journal.failed(intent.ID)
		if e.metrics != nil {
			e.metrics.RecordRollback()
		}
		e.logger.WithError(err).WithFields(log.Fields{
			"user_id": identity.UserID,
			"item_id": item.ID,
		}).Warn("cart upsert failed, local mutation rolled back")
		e.queueError(&pending, "Cart Not Saved", fmt.Sprintf("Could not save %s to your cart: %v", item.Name, err))
		return fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, err)
	}

	e.journal.done(intent.ID)
	if e.metrics != nil {
		e.metrics.RecordMutation("add")
	}
	return nil
}

// DecrementItem уменьшает количество строки на единицу; последняя единица
// убирает строку целиком. Зеркалируется как upsert либо delete с тем же
// откатом при отказе.
func (e *Engine) DecrementItem(ctx context.Context, state domain.IdentityState, itemID int64) error {
	identity, err := domain.RequireIdentity(state)
	if err != nil {
		return err
	}

	var pending *domain.Alert
	e.mu.Lock()
	defer e.showPending(&pending)
	defer e.mu.Unlock()

	existing, ok := e.cart.Line(itemID)
	if !ok {
		return domain.ErrLineNotFound
	}
	priorCopy := existing

	if existing.Quantity <= 1 {
		return e.removeLineLocked(ctx, identity, priorCopy, &pending)
	}

	line := existing
	line.Quantity--

	intent := e.journal.begin(identity.UserID, domain.IntentOpUpsert, itemID, &priorCopy)
	e.applyLine(line)

	if err := e.store.Upsert(ctx, identity.UserID, line); err != nil {
		e.rollbackLine(itemID, &priorCopy)
		e.journal.failed(intent.ID)
		if e.metrics != nil {
			e.metrics.RecordRollback()
		}
		e.logger.WithError(err).WithFields(log.Fields{
			"user_id": identity.UserID,
			"item_id": itemID,
		}).Warn("cart upsert failed, local mutation rolled back")
		e.queueError(&pending, "Cart Not Saved", fmt.Sprintf("Could not update %s in your cart: %v", existing.Name, err))
		return fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, err)
	}

	e.journal.done(intent.ID)
	if e.metrics != nil {
		e.metrics.RecordMutation("decrement")
	}
	return nil
}

// RemoveItem убирает строку целиком независимо от количества.
func (e *Engine) RemoveItem(ctx context.Context, state domain.IdentityState, itemID int64) error {
	identity, err := domain.RequireIdentity(state)
	if err != nil {
		return err
	}

	var pending *domain.Alert
	e.mu.Lock()
	defer e.showPending(&pending)
	defer e.mu.Unlock()

	existing, ok := e.cart.Line(itemID)
	if !ok {
		return domain.ErrLineNotFound
	}
	return e.removeLineLocked(ctx, identity, existing, &pending)
}

func (e *Engine) removeLineLocked(ctx context.Context, identity domain.Identity, prior domain.CartLine, pending **domain.Alert) error {
	intent := e.journal.begin(identity.UserID, domain.IntentOpDelete, prior.ItemID, &prior)
	e.rollbackLine(prior.ItemID, nil) // локально строка убирается сразу

	if err := e.store.Delete(ctx, identity.UserID, prior.ItemID); err != nil {
		e.rollbackLine(prior.ItemID, &prior)
		e.journal.failed(intent.ID)
		if e.metrics != nil {
			e.metrics.RecordRollback()
		}
		e.logger.WithError(err).WithFields(log.Fields{
			"user_id": identity.UserID,
			"item_id": prior.ItemID,
		}).Warn("cart delete failed, local mutation rolled back")
		e.queueError(pending, "Cart Not Saved", fmt.Sprintf("Could not remove %s from your cart: %v", prior.Name, err))
		return fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, err)
	}

	e.journal.done(intent.ID)
	if e.metrics != nil {
		e.metrics.RecordMutation("remove")
	}
	return nil
}

// Checkout превращает корзину в заявку: снимок -> создание записи в
// хранилище заявок -> очистка удалённой корзины -> очистка локальной.
//
// Частичный отказ разрешается идемпотентным повтором: если заявка создана,
// а очистка корзины не удалась, её идентификатор закрепляется за сессией,
// и повторный Checkout переиспользует его вместо создания дубликата.
// При любом отказе локальная корзина остаётся нетронутой, пользователь —
// механизм повтора.
func (e *Engine) Checkout(ctx context.Context, state domain.IdentityState) (domain.BookingRequest, error) {
	start := time.Now()
	if e.metrics != nil {
		e.metrics.RecordCheckoutStarted()
		defer func() {
			e.metrics.RecordCheckoutDuration(time.Since(start))
		}()
	}

	var pending *domain.Alert
	e.mu.Lock()
	defer e.showPending(&pending)
	defer e.mu.Unlock()

	if len(e.cart.Lines) == 0 {
		e.queueInfo(&pending, "Cart Empty", "Please select at least one service.")
		return domain.BookingRequest{}, domain.ErrCartEmpty
	}

	identity, err := domain.RequireIdentity(state)
	if err != nil {
		if e.metrics != nil {
			e.metrics.RecordCheckoutFailed()
		}
		e.queueError(&pending, "Login Required", "Please log in to book services.")
		return domain.BookingRequest{}, err
	}
	e.cart.UserID = identity.UserID

	request := e.snapshotLocked(identity)

	if e.pinnedRequestID == "" {
		id, createErr := e.requests.Create(ctx, identity.UserID, request)
		if createErr != nil {
			if e.metrics != nil {
				e.metrics.RecordCheckoutFailed()
			}
			e.logger.WithError(createErr).WithField("user_id", identity.UserID).Error("booking request creation failed")
			e.queueError(&pending, "Booking Failed", fmt.Sprintf("Could not submit your booking: %v", createErr))
			return domain.BookingRequest{}, fmt.Errorf("%w: %v", domain.ErrCheckoutFailed, createErr)
		}
		request.ID = id
		e.pinnedRequestID = id
		e.pinnedRequest = request
	} else {
		// Повтор после частичного отказа: заявка уже существует.
		request = e.pinnedRequest
		if e.metrics != nil {
			e.metrics.RecordCheckoutRetried()
		}
		e.logger.WithField("request_id", request.ID).Info("checkout retry reuses pinned booking request")
	}

	if err := e.store.DeleteAll(ctx, identity.UserID); err != nil {
		if e.metrics != nil {
			e.metrics.RecordCheckoutFailed()
		}
		e.logger.WithError(err).WithFields(log.Fields{
			"user_id":    identity.UserID,
			"request_id": e.pinnedRequestID,
		}).Error("cart clear after booking failed")
		e.queueError(&pending, "Booking Failed", fmt.Sprintf("Could not finalize your booking: %v", err))
		return domain.BookingRequest{}, fmt.Errorf("%w: %v", domain.ErrCheckoutFailed, err)
	}

	e.cart.Lines = nil
	e.pinnedRequestID = ""
	e.pinnedRequest = domain.BookingRequest{}
	e.journal.reset()

	e.emitBookingCreated(request)

	e.queueAlert(&pending, domain.Alert{
		Title:   "Booking Confirmed!",
		Message: fmt.Sprintf("Your total is %s. Request %s accepted, a professional will arrive within the estimated time.", formatMinor(request.TotalMinor), request.ID),
		Kind:    domain.AlertKindSuccess,
		Buttons: []domain.AlertButton{{Text: "OK", Action: e.confirmAction}},
	})
	if e.metrics != nil {
		e.metrics.RecordCheckoutCompleted()
	}

	return request, nil
}

// PendingIntents возвращает незавершённые намерения журнала.
func (e *Engine) PendingIntents() []domain.CartIntent {
	return e.journal.pending()
}

func (e *Engine) snapshotLocked(identity domain.Identity) domain.BookingRequest {
	lines := make([]domain.CartLine, len(e.cart.Lines))
	copy(lines, e.cart.Lines)

	return domain.BookingRequest{
		UserID:       identity.UserID,
		CategoryKey:  e.sess.CategoryKey,
		ProviderID:   e.sess.ProviderID,
		ProviderName: e.sess.ProviderName,
		Lines:        lines,
		TotalMinor:   e.cart.TotalMinor(),
		Status:       domain.BookingStatusPending,
	}
}

func (e *Engine) applyLine(line domain.CartLine) {
	for i := range e.cart.Lines {
		if e.cart.Lines[i].ItemID == line.ItemID {
			e.cart.Lines[i] = line
			return
		}
	}
	e.cart.Lines = append(e.cart.Lines, line)
}

// rollbackLine возвращает строку itemID к prior; prior == nil убирает строку.
func (e *Engine) rollbackLine(itemID int64, prior *domain.CartLine) {
	if prior != nil {
		e.applyLine(*prior)
		return
	}
	for i := range e.cart.Lines {
		if e.cart.Lines[i].ItemID == itemID {
			e.cart.Lines = append(e.cart.Lines[:i], e.cart.Lines[i+1:]...)
			return
		}
	}
}

// queueAlert откладывает алерт до выхода из критической секции: канал с
// ненулевой паузой показа может спать в Show, и делать это под e.mu нельзя.
func (e *Engine) queueAlert(pending **domain.Alert, alert domain.Alert) {
	*pending = &alert
	if e.metrics != nil {
		e.metrics.RecordNotification(string(alert.Kind))
	}
}

func (e *Engine) queueError(pending **domain.Alert, title, message string) {
	e.queueAlert(pending, domain.Alert{Title: title, Message: message, Kind: domain.AlertKindError})
}

func (e *Engine) queueInfo(pending **domain.Alert, title, message string) {
	e.queueAlert(pending, domain.Alert{Title: title, Message: message, Kind: domain.AlertKindInfo})
}

// showPending вызывается defer-ом после освобождения e.mu.
func (e *Engine) showPending(pending **domain.Alert) {
	if *pending != nil {
		e.notifier.Show(**pending)
	}
}

func (e *Engine) emitBookingCreated(request domain.BookingRequest) {
	if e.outbox == nil {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"request_id":    request.ID,
		"user_id":       request.UserID,
		"category_key":  request.CategoryKey,
		"provider_id":   request.ProviderID,
		"provider_name": request.ProviderName,
		"total_minor":   request.TotalMinor,
		"lines_count":   len(request.Lines),
		"ts":            time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		e.logger.WithError(err).WithField("request_id", request.ID).Error("marshal booking event failed")
		return
	}

	msg := domain.OutboxMessage{
		AggregateType: "booking",
		AggregateID:   request.ID,
		EventType:     "BookingRequestCreated",
		Payload:       payload,
	}
	if _, err := e.outbox.Enqueue(msg); err != nil {
		e.logger.WithError(err).WithField("request_id", request.ID).Error("enqueue booking event failed")
	} else if e.metrics != nil {
		e.metrics.RecordOutboxEvent()
	}
}

// formatMinor печатает сумму в минимальных единицах как доллары.
func formatMinor(amount int64) string {
	return fmt.Sprintf("$%d.%02d", amount/100, amount%100)
}
