package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/xavierca1/lead-roulette/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const upsertLeadSQL = `
	INSERT INTO leads (id, campaign, ad_set, is_hot, status, store_id, assigned_to,
		received_at, assigned_at, captured_at, payload, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::jsonb, NOW())
	ON CONFLICT (id) DO UPDATE SET
		status = EXCLUDED.status,
		assigned_to = EXCLUDED.assigned_to,
		assigned_at = EXCLUDED.assigned_at,
		captured_at = EXCLUDED.captured_at,
		updated_at = NOW()
`

// Upsert grava o estado do lead. Um lead CAPTURED no banco não é rebaixado:
// gravações atrasadas da fila de escrita perdem para a captura.
func (r *LeadRepository) Upsert(ctx context.Context, lead entity.Lead) error {
	return saveLead(ctx, r.DB, lead, true)
}

func saveLead(ctx context.Context, ex execer, lead entity.Lead, guarded bool) error {
	query := upsertLeadSQL
	if guarded {
		query += ` WHERE leads.status <> 'CAPTURED'`
	}
	_, err := ex.ExecContext(ctx, query,
		lead.ID,
		lead.Campaign,
		lead.AdSet,
		lead.IsHot,
		string(lead.Status),
		lead.StoreID,
		nullString(lead.AssignedTo),
		lead.ReceivedAt,
		lead.AssignedAt,
		lead.CapturedAt,
		nullJSON(lead.Payload),
	)
	if err != nil {
		return fmt.Errorf("salvar lead %s: %w", lead.ID, err)
	}
	return nil
}

// FindOpen devolve os leads que voltam para a memória na subida.
func (r *LeadRepository) FindOpen(ctx context.Context) ([]entity.Lead, error) {
	open := []string{string(entity.LeadWaiting), string(entity.LeadAssigned)}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE status = ANY($1::text[])
		ORDER BY received_at
	`, pq.Array(open))
	if err != nil {
		return nil, fmt.Errorf("listar leads abertos: %w", err)
	}
	defer rows.Close()

	var leads []entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

const leadColumns = `id, campaign, ad_set, is_hot, status, store_id, assigned_to,
	received_at, assigned_at, captured_at, payload::text`

type scanner interface {
	Scan(dest ...any) error
}

type leadRow struct {
	l                      entity.Lead
	status                 string
	assignedTo, payload    sql.NullString
	assignedAt, capturedAt sql.NullTime
}

func (r *leadRow) dest() []any {
	return []any{
		&r.l.ID, &r.l.Campaign, &r.l.AdSet, &r.l.IsHot, &r.status, &r.l.StoreID, &r.assignedTo,
		&r.l.ReceivedAt, &r.assignedAt, &r.capturedAt, &r.payload,
	}
}

func (r *leadRow) lead() entity.Lead {
	lead := r.l
	lead.Status = entity.LeadStatus(r.status)
	lead.AssignedTo = r.assignedTo.String
	lead.AssignedAt = timePtr(r.assignedAt)
	lead.CapturedAt = timePtr(r.capturedAt)
	if r.payload.Valid {
		lead.Payload = json.RawMessage(r.payload.String)
	}
	return lead
}

func scanLead(s scanner) (entity.Lead, error) {
	var row leadRow
	if err := s.Scan(row.dest()...); err != nil {
		return entity.Lead{}, fmt.Errorf("ler lead: %w", err)
	}
	return row.lead(), nil
}

func nullJSON(raw json.RawMessage) *string {
	if len(raw) == 0 {
		return nil
	}
	s := string(raw)
	return &s
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
