package entity

import "context"

type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Store é a loja física. Criada/editada pelo admin; somente leitura no core.
type Store struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Location   Coordinate `json:"location"`
	Radius     float64    `json:"radius"` // metros
	TOTPSecret string     `json:"-"`      // base32
}

type StoreRepositoryInterface interface {
	FindAll(ctx context.Context) ([]Store, error)
}
