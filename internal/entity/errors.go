package entity

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrStoreNotFound      = errors.New("loja não encontrada")
	ErrLeadNotFound       = errors.New("lead não encontrado")
	ErrCaptureNotFound    = errors.New("captura não encontrada")
	ErrInvalidTier        = errors.New("tier inválido")
	ErrCheckinProofNeeded = errors.New("check-in exige localização ou código TOTP")
)

type OutOfRangeError struct {
	StoreID  string
	Distance float64
	Radius   float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("fora do raio da loja %s: %.0fm (raio %.0fm)", e.StoreID, e.Distance, e.Radius)
}

type InvalidCodeError struct {
	StoreID string
}

func (e *InvalidCodeError) Error() string {
	return "código de autenticação inválido ou expirado"
}

type AlreadyPresentError struct {
	BrokerID string
	StoreID  string
}

func (e *AlreadyPresentError) Error() string {
	if e.StoreID == "" {
		return fmt.Sprintf("corretor %s já possui check-in em andamento", e.BrokerID)
	}
	return fmt.Sprintf("corretor %s já está presente na loja %s", e.BrokerID, e.StoreID)
}

type NotPresentError struct {
	BrokerID string
}

func (e *NotPresentError) Error() string {
	return fmt.Sprintf("corretor %s não está presente em nenhuma loja", e.BrokerID)
}

type NotAssignedError struct {
	LeadID   string
	BrokerID string
}

func (e *NotAssignedError) Error() string {
	return fmt.Sprintf("lead %s não está atribuído ao corretor %s", e.LeadID, e.BrokerID)
}

type AlreadyCapturedError struct {
	LeadID string
}

func (e *AlreadyCapturedError) Error() string {
	return fmt.Sprintf("lead %s já foi capturado", e.LeadID)
}

// RateLimitExceededError carrega quanto falta para a janela liberar uma vaga.
type RateLimitExceededError struct {
	BrokerID   string
	RetryAfter time.Duration
}

func (e *RateLimitExceededError) Error() string {
	return fmt.Sprintf("limite de capturas atingido para %s, tente em %s", e.BrokerID, e.RetryAfter.Round(time.Second))
}

// NoEligibleBrokerError não é falha de usuário: o lead fica WAITING.
type NoEligibleBrokerError struct {
	StoreID string
}

func (e *NoEligibleBrokerError) Error() string {
	return fmt.Sprintf("nenhum corretor elegível na loja %s", e.StoreID)
}

// TransientError embrulha falhas de colaboradores (banco, fila, CRM).
// O estado em memória fica como estava antes da requisição.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: falha temporária: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}
