package roulette

import (
	"time"

	"github.com/xavierca1/lead-roulette/internal/entity"
)

// Candidate é um corretor presente, livre e dentro do limite de capturas.
type Candidate struct {
	BrokerID       string
	Tier           entity.Tier
	IsTop          bool
	LastAssignedAt time.Time // zero: nunca recebeu lead
}

// Policy é o único ponto de decisão de justiça da roleta.
type Policy interface {
	Select(candidates []Candidate) Candidate
}

// RoundRobin escolhe quem está há mais tempo sem receber lead;
// empate decidido pelo id do corretor.
type RoundRobin struct{}

func (RoundRobin) Select(candidates []Candidate) Candidate {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.LastAssignedAt.Before(best.LastAssignedAt) ||
			(c.LastAssignedAt.Equal(best.LastAssignedAt) && c.BrokerID < best.BrokerID) {
			best = c
		}
	}
	return best
}
