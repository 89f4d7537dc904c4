package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xavierca1/lead-roulette/internal/entity"
)

type StoreRepository struct {
	DB *sql.DB
}

func NewStoreRepository(db *sql.DB) *StoreRepository {
	return &StoreRepository{DB: db}
}

func (r *StoreRepository) FindAll(ctx context.Context) ([]entity.Store, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, latitude, longitude, radius, totp_secret
		FROM stores
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("listar lojas: %w", err)
	}
	defer rows.Close()

	var stores []entity.Store
	for rows.Next() {
		var s entity.Store
		if err := rows.Scan(&s.ID, &s.Name, &s.Location.Latitude, &s.Location.Longitude, &s.Radius, &s.TOTPSecret); err != nil {
			return nil, fmt.Errorf("ler loja: %w", err)
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}
