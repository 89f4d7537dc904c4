package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
)

type CheckinMethod string

const (
	CheckinGeo  CheckinMethod = "GEO"
	CheckinTOTP CheckinMethod = "TOTP"
)

// Motivos de checkout
const (
	CheckoutManual       = "MANUAL"
	CheckoutShiftCeiling = "SHIFT_CEILING"
)

type Attendance struct {
	ID             string           `json:"id"`
	BrokerID       string           `json:"brokerId"`
	StoreID        string           `json:"storeId"`
	Status         AttendanceStatus `json:"status"`
	Method         CheckinMethod    `json:"method"`
	CheckinAt      time.Time        `json:"checkinAt"`
	CheckoutAt     *time.Time       `json:"checkoutAt,omitempty"`
	CheckoutReason string           `json:"checkoutReason,omitempty"`
}

func NewAttendance(brokerID, storeID string, method CheckinMethod, now time.Time) *Attendance {
	return &Attendance{
		ID:        uuid.New().String(),
		BrokerID:  brokerID,
		StoreID:   storeID,
		Status:    AttendancePresent,
		Method:    method,
		CheckinAt: now,
	}
}

// Close devolve uma cópia fechada; a original não é alterada.
func (a Attendance) Close(now time.Time, reason string) Attendance {
	a.Status = AttendanceAbsent
	a.CheckoutAt = &now
	a.CheckoutReason = reason
	return a
}

type AttendanceRepositoryInterface interface {
	Open(ctx context.Context, a Attendance) error
	Close(ctx context.Context, a Attendance) error
	FindOpen(ctx context.Context) ([]Attendance, error)
}
