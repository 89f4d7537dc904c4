package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xavierca1/lead-roulette/internal/entity"
)

type BrokerRepository struct {
	DB *sql.DB
}

func NewBrokerRepository(db *sql.DB) *BrokerRepository {
	return &BrokerRepository{DB: db}
}

// Upsert sincroniza o perfil vindo do token de identidade.
func (r *BrokerRepository) Upsert(ctx context.Context, b entity.Broker) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO brokers (id, name, email, tier, is_top, is_admin, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			tier = EXCLUDED.tier,
			is_top = EXCLUDED.is_top,
			is_admin = EXCLUDED.is_admin,
			updated_at = NOW()
	`, b.ID, b.Name, b.Email, string(b.Tier), b.IsTop, b.IsAdmin)
	if err != nil {
		return fmt.Errorf("salvar corretor %s: %w", b.ID, err)
	}
	return nil
}

func (r *BrokerRepository) FindAll(ctx context.Context) ([]entity.Broker, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, name, email, tier, is_top, is_admin FROM brokers`)
	if err != nil {
		return nil, fmt.Errorf("listar corretores: %w", err)
	}
	defer rows.Close()

	var brokers []entity.Broker
	for rows.Next() {
		var b entity.Broker
		var tier string
		if err := rows.Scan(&b.ID, &b.Name, &b.Email, &tier, &b.IsTop, &b.IsAdmin); err != nil {
			return nil, fmt.Errorf("ler corretor: %w", err)
		}
		b.Tier = entity.Tier(tier)
		brokers = append(brokers, b)
	}
	return brokers, rows.Err()
}
