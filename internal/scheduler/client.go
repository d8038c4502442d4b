package scheduler

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"plumbing_portal_backend/internal/events"
	"plumbing_portal_backend/platform/config"
	"plumbing_portal_backend/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Client enqueues follow-up tasks on the shared Redis queue.
type Client struct {
	client *asynq.Client
	queue  string
	delay  time.Duration
	log    *logger.Logger
}

// NewClient creates an asynq client from the scheduler config.
func NewClient(cfg config.SchedulerConfig, log *logger.Logger) (*Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	delay := cfg.GetFollowUpAfter()
	if delay <= 0 {
		delay = 24 * time.Hour
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
		delay:  delay,
		log:    log,
	}, nil
}

// Close releases the Redis connection.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// ScheduleFollowUp enqueues a follow-up check for a quoted request after the
// configured delay.
func (c *Client) ScheduleFollowUp(ctx context.Context, requestID string) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewRequestFollowUpTask(RequestFollowUpPayload{RequestID: requestID})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.ProcessIn(c.delay), asynq.Queue(c.queue))
	return err
}

// RegisterSubscribers schedules a follow-up check each time a quote goes out.
// If the customer has not responded by the time the task fires, staff get a
// nudge to chase the quote.
func (c *Client) RegisterSubscribers(bus events.Bus) {
	bus.Subscribe(events.QuoteCreated{}.EventName(), func(ctx context.Context, event events.Event) error {
		created, ok := event.(events.QuoteCreated)
		if !ok {
			return nil
		}
		if err := c.ScheduleFollowUp(ctx, created.RequestID.String()); err != nil {
			c.log.Error("failed to schedule follow-up", "requestId", created.RequestID, "error", err)
			return err
		}
		return nil
	})
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
