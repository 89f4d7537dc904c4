// Package totp valida o código de 6 dígitos exibido na loja.
package totp

import (
	"crypto/subtle"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	Period = 30 * time.Second
	Digits = otp.DigitsSix
)

var opts = totp.ValidateOpts{
	Period:    uint(Period / time.Second),
	Skew:      0,
	Digits:    Digits,
	Algorithm: otp.AlgorithmSHA1,
}

// Generate devolve o código do passo que contém t.
func Generate(secret string, t time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, t, opts)
}

// Validate aceita o passo atual e o imediatamente anterior (até 30s de atraso).
// O passo seguinte não é aceito.
func Validate(code, secret string, now time.Time) bool {
	if len(code) != Digits.Length() || secret == "" {
		return false
	}

	for _, t := range []time.Time{now, now.Add(-Period)} {
		expected, err := Generate(secret, t)
		if err != nil {
			return false
		}
		if subtle.ConstantTimeCompare([]byte(expected), []byte(code)) == 1 {
			return true
		}
	}
	return false
}

// NewSecret gera um segredo base32 para uma loja nova.
func NewSecret(storeName string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "roleta-leads",
		AccountName: storeName,
		Period:      opts.Period,
		Digits:      Digits,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", err
	}
	return key.Secret(), nil
}
