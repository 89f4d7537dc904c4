package scheduler

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockExpirer struct{ mock.Mock }

func (m *MockExpirer) ExpireAssignment(leadID string, assignedAt time.Time) bool {
	return m.Called(leadID, assignedAt).Bool(0)
}

func (m *MockExpirer) ExpireShift(brokerID, attendanceID string) bool {
	return m.Called(brokerID, attendanceID).Bool(0)
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestAssignmentTimeoutTaskReachesEngine(t *testing.T) {
	assignedAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	exp := new(MockExpirer)
	exp.On("ExpireAssignment", "l1", assignedAt).Return(true)

	task, err := NewAssignmentTimeoutTask(AssignmentTimeoutPayload{LeadID: "l1", AssignedAt: assignedAt})
	require.NoError(t, err)

	w := newWorker(exp, quiet())
	require.NoError(t, w.mux.ProcessTask(context.Background(), task))
	exp.AssertExpectations(t)
}

func TestShiftCeilingTaskIsIdempotent(t *testing.T) {
	exp := new(MockExpirer)
	exp.On("ExpireShift", "b1", "a1").Return(false)

	task, err := NewShiftCeilingTask(ShiftCeilingPayload{BrokerID: "b1", AttendanceID: "a1"})
	require.NoError(t, err)

	w := newWorker(exp, quiet())
	assert.NoError(t, w.mux.ProcessTask(context.Background(), task))
	exp.AssertExpectations(t)
}

func TestMalformedTaskSkipsRetry(t *testing.T) {
	w := newWorker(new(MockExpirer), quiet())
	err := w.mux.ProcessTask(context.Background(), asynq.NewTask(TaskShiftCeiling, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestClientRequiresRedisURL(t *testing.T) {
	_, err := NewClient("")
	assert.Error(t, err)

	_, err = NewClient("://sem-esquema")
	assert.Error(t, err)

	var c *Client
	assert.NoError(t, c.ScheduleShiftCeiling(context.Background(), "b1", "a1", time.Now()))
}
