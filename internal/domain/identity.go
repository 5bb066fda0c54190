package domain

// Identity — непрозрачная ссылка на аутентифицированного пользователя.
// Движок корзины не интерпретирует учётные данные, только наличие user id.
type Identity struct {
	UserID string
	Email  string
}

// Complete проверяет, что identity адресуема (есть user id).
func (i Identity) Complete() bool {
	return i.UserID != ""
}

// IdentityState — снимок состояния резолвера identity: пользователь,
// признак незавершённой загрузки и последняя ошибка резолва.
type IdentityState struct {
	User      *Identity
	Resolving bool
	LastError error
}

// IdentityResolver отдаёт текущее состояние аутентификации для запроса.
type IdentityResolver interface {
	// Resolve возвращает состояние identity для переданного учётного материала
	// (например, bearer-токена). Отсутствие токена — это не ошибка, а User == nil.
	Resolve(credential string) IdentityState
}

// RequireIdentity сводит состояние резолвера к предусловиям движка корзины:
// user отсутствует или ещё резолвится -> ErrAuthenticationRequired,
// user без адресуемого ключа -> ErrIdentityIncomplete.
func RequireIdentity(state IdentityState) (Identity, error) {
	if state.User == nil || state.Resolving {
		return Identity{}, ErrAuthenticationRequired
	}
	if !state.User.Complete() {
		return Identity{}, ErrIdentityIncomplete
	}
	return *state.User, nil
}
