package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/houseit/internal/domain"
)

type requestStorePostgres struct {
	store *Store
}

var _ domain.RequestStore = (*requestStorePostgres)(nil)

// NewRequestStore создаёт PostgreSQL-реализацию RequestStore.
func NewRequestStore(store *Store) *requestStorePostgres {
	return &requestStorePostgres{store: store}
}

// Create сохраняет заявку и её строки в одной транзакции.
func (s *requestStorePostgres) Create(ctx context.Context, userID string, req domain.BookingRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	id := uuid.NewString()
	createdAt := req.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	status := req.Status
	if status == "" {
		status = domain.BookingStatusPending
	}

	tx, err := s.store.DB().BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO booking_requests (
			id, user_id, category_key, provider_id, provider_name, total_minor, status, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		id, userID, req.CategoryKey, req.ProviderID, req.ProviderName,
		req.TotalMinor, string(status), createdAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert booking request: %w", err)
	}

	for _, line := range req.Lines {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO booking_request_lines (
				id, request_id, item_id, name, price_minor, quantity
			) VALUES ($1,$2,$3,$4,$5,$6)
		`,
			uuid.NewString(), id, line.ItemID, line.Name, line.PriceMinor, line.Quantity,
		); err != nil {
			return "", fmt.Errorf("insert booking request line: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("commit booking request: %w", err)
	}
	return id, nil
}

// ListAll возвращает заявки пользователя со строками, новые первыми.
func (s *requestStorePostgres) ListAll(ctx context.Context, userID string) ([]domain.BookingRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := s.store.DB().QueryContext(ctx, `
		SELECT id, user_id, category_key, provider_id, provider_name, total_minor, status, created_at
		FROM booking_requests
		WHERE user_id = $1
		ORDER BY created_at DESC, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list booking requests: %w", err)
	}
	defer rows.Close()

	var requests []domain.BookingRequest
	index := map[string]int{}
	for rows.Next() {
		var (
			req       domain.BookingRequest
			statusRaw string
		)
		if err := rows.Scan(
			&req.ID, &req.UserID, &req.CategoryKey, &req.ProviderID,
			&req.ProviderName, &req.TotalMinor, &statusRaw, &req.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan booking request: %w", err)
		}
		req.Status = domain.BookingStatus(statusRaw)
		index[req.ID] = len(requests)
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking requests: %w", err)
	}
	if len(requests) == 0 {
		return []domain.BookingRequest{}, nil
	}

	ids := make([]string, 0, len(requests))
	for _, req := range requests {
		ids = append(ids, req.ID)
	}

	lineRows, err := s.store.DB().QueryContext(ctx, `
		SELECT request_id, item_id, name, price_minor, quantity
		FROM booking_request_lines
		WHERE request_id = ANY($1)
		ORDER BY request_id, item_id
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("list booking request lines: %w", err)
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var (
			requestID string
			line      domain.CartLine
		)
		if err := lineRows.Scan(&requestID, &line.ItemID, &line.Name, &line.PriceMinor, &line.Quantity); err != nil {
			return nil, fmt.Errorf("scan booking request line: %w", err)
		}
		if i, ok := index[requestID]; ok {
			requests[i].Lines = append(requests[i].Lines, line)
		}
	}
	if err := lineRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking request lines: %w", err)
	}

	return requests, nil
}

func (s *requestStorePostgres) Get(ctx context.Context, userID, requestID string) (domain.BookingRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var (
		req       domain.BookingRequest
		statusRaw string
	)
	err := s.store.DB().QueryRowContext(ctx, `
		SELECT id, user_id, category_key, provider_id, provider_name, total_minor, status, created_at
		FROM booking_requests
		WHERE id = $1 AND user_id = $2
	`, requestID, userID).Scan(
		&req.ID, &req.UserID, &req.CategoryKey, &req.ProviderID,
		&req.ProviderName, &req.TotalMinor, &statusRaw, &req.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.BookingRequest{}, domain.ErrRequestNotFound
		}
		return domain.BookingRequest{}, fmt.Errorf("get booking request: %w", err)
	}
	req.Status = domain.BookingStatus(statusRaw)

	rows, err := s.store.DB().QueryContext(ctx, `
		SELECT item_id, name, price_minor, quantity
		FROM booking_request_lines
		WHERE request_id = $1
		ORDER BY item_id
	`, requestID)
	if err != nil {
		return domain.BookingRequest{}, fmt.Errorf("list booking request lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(&line.ItemID, &line.Name, &line.PriceMinor, &line.Quantity); err != nil {
			return domain.BookingRequest{}, fmt.Errorf("scan booking request line: %w", err)
		}
		req.Lines = append(req.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return domain.BookingRequest{}, fmt.Errorf("iterate booking request lines: %w", err)
	}

	return req, nil
}
