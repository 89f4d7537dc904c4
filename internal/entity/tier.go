package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// TierCap é o teto de capturas numa janela móvel de 1h e de 24h.
type TierCap struct {
	PerHour int `json:"perHour"`
	PerDay  int `json:"perDay"`
}

// TierCaps é a tabela tier -> teto. Trocar a tabela troca a política,
// sem mexer no engine.
type TierCaps map[Tier]TierCap

func DefaultTierCaps() TierCaps {
	return TierCaps{
		TierForte: {PerHour: 4, PerDay: 18},
		TierMedio: {PerHour: 3, PerDay: 12},
		TierFraco: {PerHour: 2, PerDay: 8},
	}
}

func (c TierCaps) For(t Tier) (TierCap, bool) {
	cp, ok := c[t]
	return cp, ok
}

// ParseTierCaps lê o formato "FORTE=4/18,MEDIO=3/12,FRACO=2/8".
// Tiers omitidos mantêm o default.
func ParseTierCaps(raw string) (TierCaps, error) {
	caps := DefaultTierCaps()
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return caps, nil
	}

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, limits, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("tier cap inválido %q: esperado TIER=hora/dia", part)
		}
		tier := Tier(strings.ToUpper(strings.TrimSpace(name)))
		if !tier.Valid() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidTier, name)
		}
		hourStr, dayStr, ok := strings.Cut(limits, "/")
		if !ok {
			return nil, fmt.Errorf("tier cap inválido %q: esperado hora/dia", part)
		}
		perHour, err := strconv.Atoi(strings.TrimSpace(hourStr))
		if err != nil || perHour < 0 {
			return nil, fmt.Errorf("limite por hora inválido em %q", part)
		}
		perDay, err := strconv.Atoi(strings.TrimSpace(dayStr))
		if err != nil || perDay < 0 {
			return nil, fmt.Errorf("limite por dia inválido em %q", part)
		}
		caps[tier] = TierCap{PerHour: perHour, PerDay: perDay}
	}

	return caps, nil
}
