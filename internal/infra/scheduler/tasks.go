package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TaskAssignmentTimeout = "lead:assignment_timeout"
	TaskShiftCeiling      = "broker:shift_ceiling"
)

type AssignmentTimeoutPayload struct {
	LeadID     string    `json:"lead_id"`
	AssignedAt time.Time `json:"assigned_at"`
}

type ShiftCeilingPayload struct {
	BrokerID     string `json:"broker_id"`
	AttendanceID string `json:"attendance_id"`
}

func NewAssignmentTimeoutTask(payload AssignmentTimeoutPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAssignmentTimeout, data), nil
}

func ParseAssignmentTimeoutPayload(task *asynq.Task) (AssignmentTimeoutPayload, error) {
	var payload AssignmentTimeoutPayload
	err := json.Unmarshal(task.Payload(), &payload)
	return payload, err
}

func NewShiftCeilingTask(payload ShiftCeilingPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskShiftCeiling, data), nil
}

func ParseShiftCeilingPayload(task *asynq.Task) (ShiftCeilingPayload, error) {
	var payload ShiftCeilingPayload
	err := json.Unmarshal(task.Payload(), &payload)
	return payload, err
}
