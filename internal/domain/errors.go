package domain

import "errors"

var (
	// Ошибка операции с корзиной без аутентифицированного пользователя.
	ErrAuthenticationRequired = errors.New("authentication required")
	// Ошибка, если identity присутствует, но без адресуемого user id.
	ErrIdentityIncomplete = errors.New("identity is missing user id")
	// Ошибка checkout для пустой корзины.
	ErrCartEmpty = errors.New("cart is empty")
	// ErrPersistenceFailed возвращается, если зеркалирование корзины в удалённое хранилище не удалось.
	ErrPersistenceFailed = errors.New("cart persistence failed")
	// ErrCheckoutFailed возвращается, если создание заявки или очистка корзины не удались.
	ErrCheckoutFailed = errors.New("checkout failed")
	// Ошибка при некорректном количестве в строке корзины (<= 0).
	ErrLineQtyInvalid = errors.New("cart line quantity must be greater than zero")
	// Ошибка отрицательной цены строки корзины.
	ErrLinePriceInvalid = errors.New("cart line price must be non-negative")
	// Ошибка дублирующейся строки корзины для одного item id.
	ErrLineDuplicate = errors.New("cart contains duplicate line for item")
	// Ошибка отсутствующего идентификатора пользователя в заявке.
	ErrUserIDRequired = errors.New("user_id is required")
	// Ошибка отсутствия хотя бы одной строки в заявке.
	ErrLinesRequired = errors.New("booking request must contain at least one line")
	// Ошибка несоответствия суммы заявки и сумм строк.
	ErrTotalMismatch = errors.New("booking total does not match lines sum")
	// ErrLineNotFound возвращается при decrement/remove для отсутствующей строки.
	ErrLineNotFound = errors.New("cart line not found")
	// ErrRequestNotFound возвращается, если заявка не найдена в хранилище.
	ErrRequestNotFound = errors.New("booking request not found")
	// ErrProviderNotFound сигнализирует промах по каталогу; наружу не поднимается, рендерится fallback.
	ErrProviderNotFound = errors.New("provider not found")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// IsUserFacing проверяет, относится ли ошибка к предусловиям, которые показываются пользователю как есть.
func IsUserFacing(err error) bool {
	return errors.Is(err, ErrAuthenticationRequired) ||
		errors.Is(err, ErrIdentityIncomplete) ||
		errors.Is(err, ErrCartEmpty)
}
