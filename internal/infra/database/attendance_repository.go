package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xavierca1/lead-roulette/internal/entity"
)

type AttendanceRepository struct {
	DB *sql.DB
}

func NewAttendanceRepository(db *sql.DB) *AttendanceRepository {
	return &AttendanceRepository{DB: db}
}

func (r *AttendanceRepository) Open(ctx context.Context, a entity.Attendance) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO attendances (id, broker_id, store_id, status, method, checkin_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, a.ID, a.BrokerID, a.StoreID, string(a.Status), string(a.Method), a.CheckinAt)
	if err != nil {
		return fmt.Errorf("abrir presença do corretor %s: %w", a.BrokerID, err)
	}
	return nil
}

// Close é idempotente: fechar de novo não muda nada.
func (r *AttendanceRepository) Close(ctx context.Context, a entity.Attendance) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE attendances
		SET status = $2, checkout_at = $3, checkout_reason = $4
		WHERE id = $1 AND status = 'PRESENT'
	`, a.ID, string(entity.AttendanceAbsent), a.CheckoutAt, nullString(a.CheckoutReason))
	if err != nil {
		return fmt.Errorf("fechar presença %s: %w", a.ID, err)
	}
	return nil
}

func (r *AttendanceRepository) FindOpen(ctx context.Context) ([]entity.Attendance, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, broker_id, store_id, status, method, checkin_at
		FROM attendances
		WHERE status = 'PRESENT'
		ORDER BY checkin_at
	`)
	if err != nil {
		return nil, fmt.Errorf("listar presenças abertas: %w", err)
	}
	defer rows.Close()

	var out []entity.Attendance
	for rows.Next() {
		var a entity.Attendance
		var status, method string
		if err := rows.Scan(&a.ID, &a.BrokerID, &a.StoreID, &status, &method, &a.CheckinAt); err != nil {
			return nil, fmt.Errorf("ler presença: %w", err)
		}
		a.Status = entity.AttendanceStatus(status)
		a.Method = entity.CheckinMethod(method)
		out = append(out, a)
	}
	return out, rows.Err()
}
