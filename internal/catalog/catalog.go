// Package catalog отдаёт статический справочник категорий услуг, провайдеров
// и их прайс-листов. Справочник загружается из JSON-конфигурации, чтобы
// каталог менялся без пересборки сервиса; дефолтная версия вшита в бинарь.
package catalog

import (
	"fmt"
	"os"
	"sort"

	"encoding/json"

	"github.com/vladislavdragonenkov/houseit/internal/domain"
)

// Category — категория домашних услуг на витрине.
type Category struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// Provider — исполнитель внутри категории со своим прайс-листом.
type Provider struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Rating          float64 `json:"rating"`
	Reviews         int     `json:"reviews"`
	ETA             string  `json:"eta"`
	HourlyRateMinor int64   `json:"hourly_rate_minor"`
	Services        []item  `json:"services,omitempty"`
}

type item struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	PriceMinor  int64  `json:"price_minor"`
	Description string `json:"description"`
}

type document struct {
	Categories []Category            `json:"categories"`
	Providers  map[string][]Provider `json:"providers"`
}

// Catalog — иммутабельная таблица соответствий категория -> провайдеры -> услуги.
type Catalog struct {
	doc document
}

// Load читает каталог из файла. Пустой path означает вшитый дефолт.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog config: %w", err)
	}
	return parse(data)
}

// Default возвращает каталог, вшитый в бинарь.
func Default() (*Catalog, error) {
	return parse(defaultCatalog)
}

func parse(data []byte) (*Catalog, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog config: %w", err)
	}

	for key, providers := range doc.Providers {
		sort.Slice(providers, func(i, j int) bool { return providers[i].ID < providers[j].ID })
		doc.Providers[key] = providers
	}

	return &Catalog{doc: doc}, nil
}

// Categories возвращает все категории в порядке конфигурации.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.doc.Categories))
	copy(out, c.doc.Categories)
	return out
}

// CategoryName возвращает отображаемое имя категории и признак её наличия.
func (c *Catalog) CategoryName(key string) (string, bool) {
	for _, cat := range c.doc.Categories {
		if cat.Key == key {
			return cat.Name, true
		}
	}
	return "", false
}

// Providers возвращает провайдеров категории. Неизвестный ключ — это пустой
// список, а не ошибка: витрина рендерит fallback.
func (c *Catalog) Providers(categoryKey string) []Provider {
	providers, ok := c.doc.Providers[categoryKey]
	if !ok {
		return []Provider{}
	}
	out := make([]Provider, len(providers))
	copy(out, providers)
	return out
}

// Provider возвращает провайдера с прайс-листом или ok=false при промахе.
func (c *Catalog) Provider(categoryKey string, providerID int64) (Provider, bool) {
	for _, p := range c.doc.Providers[categoryKey] {
		if p.ID == providerID {
			return p, true
		}
	}
	return Provider{}, false
}

// Item возвращает позицию прайс-листа провайдера.
func (c *Catalog) Item(categoryKey string, providerID, itemID int64) (domain.CatalogItem, bool) {
	provider, ok := c.Provider(categoryKey, providerID)
	if !ok {
		return domain.CatalogItem{}, false
	}
	for _, svc := range provider.Services {
		if svc.ID == itemID {
			return domain.CatalogItem{
				ID:          svc.ID,
				Name:        svc.Name,
				Description: svc.Description,
				PriceMinor:  svc.PriceMinor,
			}, true
		}
	}
	return domain.CatalogItem{}, false
}

// Items возвращает прайс-лист провайдера в доменном виде.
func (p Provider) Items() []domain.CatalogItem {
	out := make([]domain.CatalogItem, 0, len(p.Services))
	for _, svc := range p.Services {
		out = append(out, domain.CatalogItem{
			ID:          svc.ID,
			Name:        svc.Name,
			Description: svc.Description,
			PriceMinor:  svc.PriceMinor,
		})
	}
	return out
}
