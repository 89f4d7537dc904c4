// Package scheduler agenda, via asynq/Redis, as verificações pontuais de
// timeout de atribuição e teto de turno. Sem Redis, a varredura periódica
// do engine cobre os dois casos sozinha.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/xavierca1/lead-roulette/internal/roulette"
)

const defaultQueue = "roulette"

type Client struct {
	client *asynq.Client
	queue  string
}

var _ roulette.TimeoutScheduler = (*Client)(nil)

func NewClient(redisURL string) (*Client, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}
	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}
	return &Client{client: asynq.NewClient(opt), queue: defaultQueue}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) ScheduleAssignmentTimeout(ctx context.Context, leadID string, assignedAt, runAt time.Time) error {
	if c == nil || c.client == nil {
		return nil
	}
	task, err := NewAssignmentTimeoutTask(AssignmentTimeoutPayload{LeadID: leadID, AssignedAt: assignedAt})
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.ProcessAt(runAt), asynq.Queue(c.queue), asynq.MaxRetry(3))
	return err
}

func (c *Client) ScheduleShiftCeiling(ctx context.Context, brokerID, attendanceID string, runAt time.Time) error {
	if c == nil || c.client == nil {
		return nil
	}
	task, err := NewShiftCeilingTask(ShiftCeilingPayload{BrokerID: brokerID, AttendanceID: attendanceID})
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.ProcessAt(runAt), asynq.Queue(c.queue), asynq.MaxRetry(3))
	return err
}

func redisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, fmt.Errorf("REDIS_URL inválida: %w", err)
	}
	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}
