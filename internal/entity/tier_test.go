package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTierCaps(t *testing.T) {
	caps := DefaultTierCaps()

	assert.Equal(t, TierCap{PerHour: 4, PerDay: 18}, caps[TierForte])
	assert.Equal(t, TierCap{PerHour: 3, PerDay: 12}, caps[TierMedio])
	assert.Equal(t, TierCap{PerHour: 2, PerDay: 8}, caps[TierFraco])
}

func TestParseTierCaps(t *testing.T) {
	t.Run("vazio usa default", func(t *testing.T) {
		caps, err := ParseTierCaps("")
		require.NoError(t, err)
		assert.Equal(t, DefaultTierCaps(), caps)
	})

	t.Run("sobrescreve apenas o informado", func(t *testing.T) {
		caps, err := ParseTierCaps(" forte=5/20 , FRACO=1/3")
		require.NoError(t, err)
		assert.Equal(t, TierCap{PerHour: 5, PerDay: 20}, caps[TierForte])
		assert.Equal(t, TierCap{PerHour: 3, PerDay: 12}, caps[TierMedio])
		assert.Equal(t, TierCap{PerHour: 1, PerDay: 3}, caps[TierFraco])
	})

	t.Run("tier desconhecido", func(t *testing.T) {
		_, err := ParseTierCaps("SUPER=9/99")
		assert.ErrorIs(t, err, ErrInvalidTier)
	})

	t.Run("formato inválido", func(t *testing.T) {
		for _, raw := range []string{"FORTE", "FORTE=4", "FORTE=a/18", "FORTE=4/-1"} {
			_, err := ParseTierCaps(raw)
			assert.Error(t, err, raw)
		}
	})
}
