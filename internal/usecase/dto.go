package usecase

import (
	"encoding/json"
	"time"

	"github.com/xavierca1/lead-roulette/internal/entity"
)

type IngestLeadInput struct {
	Campaign string          `json:"campaign" validate:"required,max=200"`
	AdSet    string          `json:"adSet" validate:"required,max=200"`
	IsHot    bool            `json:"isHot"`
	StoreID  string          `json:"storeId" validate:"required"`
	LeadData json.RawMessage `json:"leadData,omitempty"`
}

// TestLeadInput: loja opcional; sem ela vai para a primeira loja cadastrada.
type TestLeadInput struct {
	Campaign string `json:"campaign" validate:"required,max=200"`
	AdSet    string `json:"adSet" validate:"required,max=200"`
	StoreID  string `json:"storeId,omitempty"`
	IsHot    bool   `json:"-"`
}

type CheckinInput struct {
	StoreID   string   `json:"storeId" validate:"required"`
	Latitude  *float64 `json:"latitude,omitempty" validate:"required_with=Longitude,omitempty,latitude"`
	Longitude *float64 `json:"longitude,omitempty" validate:"required_with=Latitude,omitempty,longitude"`
	TOTPCode  string   `json:"totpCode,omitempty" validate:"omitempty,len=6,numeric"`
}

type StoreView struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Radius    float64 `json:"radius"`
}

type UserView struct {
	ID      string      `json:"id"`
	Email   string      `json:"email"`
	Name    string      `json:"name"`
	Tier    entity.Tier `json:"tier"`
	IsTop   bool        `json:"isTop"`
	IsAdmin bool        `json:"isAdmin"`
}

type LeadView struct {
	ID         string            `json:"id"`
	Campaign   string            `json:"campaign"`
	AdSet      string            `json:"adSet"`
	IsHot      bool              `json:"isHot"`
	Status     entity.LeadStatus `json:"status"`
	ReceivedAt time.Time         `json:"receivedAt"`
	AssignedAt *time.Time        `json:"assignedAt,omitempty"`
	CapturedAt *time.Time        `json:"capturedAt,omitempty"`
	AssignedTo string            `json:"assignedTo,omitempty"`
	Store      StoreView         `json:"store"`
	LeadData   json.RawMessage   `json:"leadData"`
}

type AttendanceView struct {
	ID             string                  `json:"id"`
	Status         entity.AttendanceStatus `json:"status"`
	Method         entity.CheckinMethod    `json:"method"`
	CheckinAt      time.Time               `json:"checkinAt"`
	CheckoutAt     *time.Time              `json:"checkoutAt,omitempty"`
	CheckoutReason string                  `json:"checkoutReason,omitempty"`
	Store          StoreView               `json:"store"`
}

type CaptureView struct {
	ID         string               `json:"id"`
	Status     entity.CaptureStatus `json:"status"`
	CapturedAt time.Time            `json:"capturedAt"`
	SentAt     *time.Time           `json:"sentAt,omitempty"`
	Lead       *LeadView            `json:"lead,omitempty"`
}

type DashboardView struct {
	entity.DashboardCounts
	Present  int `json:"present"`
	Waiting  int `json:"waiting"`
	Assigned int `json:"assigned"`
}

func NewStoreView(s entity.Store) StoreView {
	return StoreView{
		ID:        s.ID,
		Name:      s.Name,
		Latitude:  s.Location.Latitude,
		Longitude: s.Location.Longitude,
		Radius:    s.Radius,
	}
}

func NewUserView(b entity.Broker) UserView {
	return UserView{ID: b.ID, Email: b.Email, Name: b.Name, Tier: b.Tier, IsTop: b.IsTop, IsAdmin: b.IsAdmin}
}

// storeLookup resolve a loja de um lead ou presença.
type storeLookup func(id string) (entity.Store, bool)

func newLeadView(l entity.Lead, stores storeLookup) LeadView {
	v := LeadView{
		ID:         l.ID,
		Campaign:   l.Campaign,
		AdSet:      l.AdSet,
		IsHot:      l.IsHot,
		Status:     l.Status,
		ReceivedAt: l.ReceivedAt,
		AssignedAt: l.AssignedAt,
		CapturedAt: l.CapturedAt,
		AssignedTo: l.AssignedTo,
		Store:      StoreView{ID: l.StoreID},
		LeadData:   l.Payload,
	}
	if len(v.LeadData) == 0 {
		v.LeadData = json.RawMessage("null")
	}
	if s, ok := stores(l.StoreID); ok {
		v.Store = NewStoreView(s)
	}
	return v
}

func newAttendanceView(a entity.Attendance, stores storeLookup) AttendanceView {
	v := AttendanceView{
		ID:             a.ID,
		Status:         a.Status,
		Method:         a.Method,
		CheckinAt:      a.CheckinAt,
		CheckoutAt:     a.CheckoutAt,
		CheckoutReason: a.CheckoutReason,
		Store:          StoreView{ID: a.StoreID},
	}
	if s, ok := stores(a.StoreID); ok {
		v.Store = NewStoreView(s)
	}
	return v
}

func newCaptureView(c entity.Capture, stores storeLookup) CaptureView {
	v := CaptureView{ID: c.ID, Status: c.Status, CapturedAt: c.CapturedAt, SentAt: c.SentAt}
	if c.Lead != nil {
		lv := newLeadView(*c.Lead, stores)
		v.Lead = &lv
	}
	return v
}
