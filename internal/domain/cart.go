package domain

import "time"

// CatalogItem — неизменяемая позиция из каталога услуг провайдера.
type CatalogItem struct {
	// ID уникален в пределах одного провайдера.
	ID int64
	// Name — отображаемое название услуги.
	Name string
	// Description — краткое описание для карточки услуги.
	Description string
	// PriceMinor — цена за единицу в минимальных денежных единицах (центы).
	PriceMinor int64
}

// CartLine представляет одну строку корзины: позиция каталога плюс количество.
// Название и цена денормализованы в момент добавления.
type CartLine struct {
	ItemID     int64
	Name       string
	PriceMinor int64
	Quantity   int
	// UpdatedAt проставляется хранилищем при последнем upsert.
	UpdatedAt time.Time
}

// Cart агрегирует строки корзины одной пары (пользователь, провайдер).
// Инвариант: не более одной строки на item id, количество каждой строки >= 1.
type Cart struct {
	UserID      string
	CategoryKey string
	ProviderID  int64
	Lines       []CartLine
}

// TotalMinor возвращает сумму корзины: qty * price по всем строкам. Для пустой корзины ноль.
func (c *Cart) TotalMinor() int64 {
	var total int64
	for _, line := range c.Lines {
		total += int64(line.Quantity) * line.PriceMinor
	}
	return total
}

// Line возвращает строку по item id и признак её наличия.
func (c *Cart) Line(itemID int64) (CartLine, bool) {
	for _, line := range c.Lines {
		if line.ItemID == itemID {
			return line, true
		}
	}
	return CartLine{}, false
}

// ValidateInvariants проверяет базовые инварианты корзины и возвращает список замечаний.
func (c *Cart) ValidateInvariants() []error {
	var errs []error

	seen := make(map[int64]bool, len(c.Lines))
	for _, line := range c.Lines {
		if line.Quantity <= 0 {
			errs = append(errs, ErrLineQtyInvalid)
		}
		if line.PriceMinor < 0 {
			errs = append(errs, ErrLinePriceInvalid)
		}
		if seen[line.ItemID] {
			errs = append(errs, ErrLineDuplicate)
		}
		seen[line.ItemID] = true
	}

	return errs
}
