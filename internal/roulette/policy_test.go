package roulette

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoundRobinPicksLongestIdle(t *testing.T) {
	tests := []struct {
		name       string
		candidates []Candidate
		want       string
	}{
		{
			name: "nunca recebeu ganha",
			candidates: []Candidate{
				{BrokerID: "a", LastAssignedAt: t0},
				{BrokerID: "b"},
			},
			want: "b",
		},
		{
			name: "mais antigo ganha",
			candidates: []Candidate{
				{BrokerID: "a", LastAssignedAt: t0.Add(time.Minute)},
				{BrokerID: "b", LastAssignedAt: t0},
				{BrokerID: "c", LastAssignedAt: t0.Add(2 * time.Minute)},
			},
			want: "b",
		},
		{
			name: "empate pelo id",
			candidates: []Candidate{
				{BrokerID: "c", LastAssignedAt: t0},
				{BrokerID: "a", LastAssignedAt: t0},
				{BrokerID: "b", LastAssignedAt: t0},
			},
			want: "a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundRobin{}.Select(tt.candidates)
			assert.Equal(t, tt.want, got.BrokerID)
		})
	}
}
