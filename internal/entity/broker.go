package entity

import "context"

type Tier string

const (
	TierForte Tier = "FORTE"
	TierMedio Tier = "MEDIO"
	TierFraco Tier = "FRACO"
)

func (t Tier) Valid() bool {
	switch t {
	case TierForte, TierMedio, TierFraco:
		return true
	}
	return false
}

// Broker é o corretor. Tier e flags só mudam por ação de admin (fora do core).
type Broker struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Tier    Tier   `json:"tier"`
	IsTop   bool   `json:"isTop"`
	IsAdmin bool   `json:"isAdmin"`
}

type BrokerRepositoryInterface interface {
	Upsert(ctx context.Context, b Broker) error
	FindAll(ctx context.Context) ([]Broker, error)
}
