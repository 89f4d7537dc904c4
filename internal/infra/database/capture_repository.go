package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/xavierca1/lead-roulette/internal/entity"
)

type CaptureRepository struct {
	DB *sql.DB
}

func NewCaptureRepository(db *sql.DB) *CaptureRepository {
	return &CaptureRepository{DB: db}
}

// Record grava o lead CAPTURED e a captura na mesma transação.
// A unicidade de lead_id segura uma segunda captura do mesmo lead.
func (r *CaptureRepository) Record(ctx context.Context, lead entity.Lead, c entity.Capture) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		if err := saveLead(ctx, tx, lead, false); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO captures (id, lead_id, broker_id, store_id, status, captured_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, c.ID, c.LeadID, c.BrokerID, c.StoreID, string(c.Status), c.CapturedAt)
		if err != nil {
			return fmt.Errorf("gravar captura do lead %s: %w", c.LeadID, err)
		}
		return nil
	})
}

// Discard apaga a captura e regrava o lead com o estado que a memória tem agora.
func (r *CaptureRepository) Discard(ctx context.Context, captureID string, lead entity.Lead) error {
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM captures WHERE id = $1`, captureID); err != nil {
			return fmt.Errorf("desfazer captura %s: %w", captureID, err)
		}
		return saveLead(ctx, tx, lead, false)
	})
}

func (r *CaptureRepository) UpdateStatus(ctx context.Context, c entity.Capture) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE captures SET status = $2, sent_at = COALESCE($3, sent_at), detail = $4
		WHERE id = $1
	`, c.ID, string(c.Status), c.SentAt, nullString(c.Detail))
	if err != nil {
		return fmt.Errorf("atualizar captura %s: %w", c.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return entity.ErrCaptureNotFound
	}
	return nil
}

// FindSince alimenta a janela móvel do limitador na subida.
func (r *CaptureRepository) FindSince(ctx context.Context, since time.Time) ([]entity.Capture, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+captureColumns+`
		FROM captures
		WHERE captured_at >= $1
		ORDER BY captured_at
	`, since)
	if err != nil {
		return nil, fmt.Errorf("listar capturas recentes: %w", err)
	}
	defer rows.Close()

	var out []entity.Capture
	for rows.Next() {
		c, err := scanCapture(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CaptureRepository) TotalsByBroker(ctx context.Context) (map[string]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT broker_id, COUNT(*) FROM captures GROUP BY broker_id`)
	if err != nil {
		return nil, fmt.Errorf("totais por corretor: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("ler total: %w", err)
		}
		totals[id] = n
	}
	return totals, rows.Err()
}

// ListByBroker devolve as capturas mais recentes com o lead junto.
func (r *CaptureRepository) ListByBroker(ctx context.Context, brokerID string, limit int) ([]entity.Capture, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT c.id, c.lead_id, c.broker_id, c.store_id, c.status, c.captured_at, c.sent_at, c.detail,
			l.id, l.campaign, l.ad_set, l.is_hot, l.status, l.store_id, l.assigned_to,
			l.received_at, l.assigned_at, l.captured_at, l.payload::text
		FROM captures c
		JOIN leads l ON l.id = c.lead_id
		WHERE c.broker_id = $1
		ORDER BY c.captured_at DESC
		LIMIT $2
	`, brokerID, limit)
	if err != nil {
		return nil, fmt.Errorf("listar capturas do corretor %s: %w", brokerID, err)
	}
	defer rows.Close()

	var out []entity.Capture
	for rows.Next() {
		var row captureRow
		var lr leadRow
		dest := append(row.dest(), lr.dest()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("ler captura: %w", err)
		}
		c := row.capture()
		lead := lr.lead()
		c.Lead = &lead
		out = append(out, c)
	}
	return out, rows.Err()
}

const captureColumns = `id, lead_id, broker_id, store_id, status, captured_at, sent_at, detail`

type captureRow struct {
	c      entity.Capture
	status string
	sentAt sql.NullTime
	detail sql.NullString
}

func (r *captureRow) dest() []any {
	return []any{&r.c.ID, &r.c.LeadID, &r.c.BrokerID, &r.c.StoreID, &r.status, &r.c.CapturedAt, &r.sentAt, &r.detail}
}

func (r *captureRow) capture() entity.Capture {
	c := r.c
	c.Status = entity.CaptureStatus(r.status)
	c.SentAt = timePtr(r.sentAt)
	c.Detail = r.detail.String
	return c
}

func scanCapture(s scanner) (entity.Capture, error) {
	var row captureRow
	if err := s.Scan(row.dest()...); err != nil {
		return entity.Capture{}, fmt.Errorf("ler captura: %w", err)
	}
	return row.capture(), nil
}
