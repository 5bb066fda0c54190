package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/houseit/internal/domain"
)

const (
	opTimeout = 5 * time.Second
)

type cartStorePostgres struct {
	store *Store
}

var _ domain.CartStore = (*cartStorePostgres)(nil)

// NewCartStore создаёт PostgreSQL-реализацию CartStore.
func NewCartStore(store *Store) *cartStorePostgres {
	return &cartStorePostgres{store: store}
}

func (s *cartStorePostgres) Upsert(ctx context.Context, userID string, line domain.CartLine) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := s.store.DB().ExecContext(ctx, `
		INSERT INTO cart_lines (user_id, item_id, name, price_minor, quantity, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (user_id, item_id) DO UPDATE SET
			name = EXCLUDED.name,
			price_minor = EXCLUDED.price_minor,
			quantity = EXCLUDED.quantity,
			updated_at = EXCLUDED.updated_at
	`,
		userID, line.ItemID, line.Name, line.PriceMinor, line.Quantity, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert cart line: %w", err)
	}
	return nil
}

func (s *cartStorePostgres) ListAll(ctx context.Context, userID string) ([]domain.CartLine, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := s.store.DB().QueryContext(ctx, `
		SELECT item_id, name, price_minor, quantity, updated_at
		FROM cart_lines
		WHERE user_id = $1
		ORDER BY item_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(&line.ItemID, &line.Name, &line.PriceMinor, &line.Quantity, &line.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart lines: %w", err)
	}
	return lines, nil
}

// Delete убирает строку; отсутствие строки не считается ошибкой.
func (s *cartStorePostgres) Delete(ctx context.Context, userID string, itemID int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := s.store.DB().ExecContext(ctx, `
		DELETE FROM cart_lines WHERE user_id = $1 AND item_id = $2
	`, userID, itemID); err != nil {
		return fmt.Errorf("delete cart line: %w", err)
	}
	return nil
}

func (s *cartStorePostgres) DeleteAll(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := s.store.DB().ExecContext(ctx, `
		DELETE FROM cart_lines WHERE user_id = $1
	`, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
