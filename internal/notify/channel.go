// Package notify реализует канал уведомлений: очередь не более чем из одного
// видимого модального алерта. Канал передаётся явной зависимостью всем
// потребителям; процесс-глобальной ссылки нет.
package notify

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/houseit/internal/domain"
)

// state — состояние презентации: Idle -> Showing -> Idle.
type state int

const (
	stateIdle state = iota
	stateShowing
)

// Options задаёт параметры канала уведомлений.
type Options struct {
	Logger *log.Entry
	// SettleDelay — пауза между переходами Idle -> Showing, чтобы повторный
	// алерт не накладывался на анимацию закрытия предыдущего. Для web-класса
	// презентеров ноль. Таймингование презентационное, на корректность не влияет.
	SettleDelay time.Duration
}

// Option настраивает Channel.
type Option func(*Options)

// WithLogger задаёт logger канала.
func WithLogger(logger *log.Entry) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithSettleDelay задаёт паузу перед повторным показом.
func WithSettleDelay(delay time.Duration) Option {
	return func(opts *Options) {
		opts.SettleDelay = delay
	}
}

// Channel — in-process реализация domain.Notifier.
type Channel struct {
	mu           sync.Mutex
	state        state
	current      domain.Alert
	lastHiddenAt time.Time
	settleDelay  time.Duration
	logger       *log.Entry
}

// NewChannel создаёт канал уведомлений.
func NewChannel(options ...Option) *Channel {
	opts := Options{}
	for _, option := range options {
		option(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = log.WithField("component", "notify")
	}
	return &Channel{
		settleDelay: opts.SettleDelay,
		logger:      opts.Logger,
	}
}

// Show ставит алерт в показ. Уже видимый алерт закрывается: одновременно
// виден не более чем один.
func (c *Channel) Show(alert domain.Alert) {
	c.mu.Lock()
	if c.state == stateShowing {
		c.hideLocked()
	}

	if c.settleDelay > 0 && !c.lastHiddenAt.IsZero() {
		if wait := c.settleDelay - time.Since(c.lastHiddenAt); wait > 0 {
			c.mu.Unlock()
			time.Sleep(wait)
			c.mu.Lock()
		}
	}

	c.state = stateShowing
	c.current = alert
	c.mu.Unlock()

	c.logger.WithFields(log.Fields{
		"title": alert.Title,
		"kind":  alert.Kind,
	}).Debug("alert shown")
}

// Hide закрывает текущий алерт, если он есть.
func (c *Channel) Hide() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hideLocked()
}

// Press закрывает алерт по нажатию кнопки и затем выполняет её действие.
// Действие выполняется после завершения закрытия, не синхронно с нажатием.
func (c *Channel) Press(text string) {
	c.mu.Lock()
	if c.state != stateShowing {
		c.mu.Unlock()
		return
	}

	var action func()
	for _, button := range c.current.Buttons {
		if button.Text == text {
			action = button.Action
			break
		}
	}
	c.hideLocked()
	c.mu.Unlock()

	// Сначала закрытие, потом действие: вызывающие не должны рассчитывать
	// на синхронность с нажатием.
	if action != nil {
		action()
	}
}

// Current возвращает видимый алерт и признак его наличия.
func (c *Channel) Current() (domain.Alert, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != stateShowing {
		return domain.Alert{}, false
	}
	return c.current, true
}

func (c *Channel) hideLocked() {
	if c.state != stateShowing {
		return
	}
	c.state = stateIdle
	c.current = domain.Alert{}
	c.lastHiddenAt = time.Now()
}

var _ domain.Notifier = (*Channel)(nil)
