package scheduler

import (
	"context"
	"fmt"
	"time"

	"plumbing_portal_backend/internal/events"
	"plumbing_portal_backend/internal/requests/repository"
	"plumbing_portal_backend/internal/requests/transport"
	"plumbing_portal_backend/platform/apperr"
	"plumbing_portal_backend/platform/config"
	"plumbing_portal_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Worker consumes follow-up tasks and raises events for quoted requests that
// are still waiting on a customer response.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	repo   *repository.Repository
	bus    events.Bus
	window time.Duration
	log    *logger.Logger
}

// NewWorker creates the asynq worker from the scheduler config.
func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, bus events.Bus, log *logger.Logger) (*Worker, error) {
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

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	window := cfg.GetFollowUpAfter()
	if window <= 0 {
		window = 24 * time.Hour
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		repo:   repository.New(pool),
		bus:    bus,
		window: window,
		log:    log,
	}

	mux.HandleFunc(TaskRequestFollowUp, w.handleRequestFollowUp)
	mux.HandleFunc(TaskStaleRequestSweep, w.handleStaleRequestSweep)

	return w, nil
}

// Run serves tasks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleRequestFollowUp(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseRequestFollowUpPayload(task)
	if err != nil {
		return err
	}

	requestID, err := uuid.Parse(payload.RequestID)
	if err != nil {
		return err
	}

	req, err := w.repo.GetByID(ctx, requestID)
	if err != nil {
		// The request may have been deleted; nothing left to follow up on.
		if apperr.Is(err, apperr.KindNotFound) {
			return nil
		}
		return err
	}

	// The customer already responded, or staff moved it along.
	if req.Status != string(transport.RequestStatusQuoted) {
		return nil
	}

	return w.publishFollowUpDue(ctx, req)
}

// handleStaleRequestSweep is a safety net for quotes sent before the
// scheduler was running, or whose follow-up task was lost.
func (w *Worker) handleStaleRequestSweep(ctx context.Context, task *asynq.Task) error {
	cutoff := time.Now().UTC().Add(-w.window)
	stale, err := w.repo.ListStaleWithStatus(ctx, string(transport.RequestStatusQuoted), cutoff, 100)
	if err != nil {
		return err
	}

	for i := range stale {
		if err := w.publishFollowUpDue(ctx, &stale[i]); err != nil {
			return err
		}
	}
	return nil
}

func (w *Worker) publishFollowUpDue(ctx context.Context, req *repository.Request) error {
	if w.bus == nil {
		return nil
	}

	customerName := ""
	if req.CustomerName != nil {
		customerName = *req.CustomerName
	}
	contactInfo := ""
	if req.ContactInfo != nil {
		contactInfo = *req.ContactInfo
	}

	w.bus.PublishSync(ctx, events.RequestFollowUpDue{
		BaseEvent:    events.NewBaseEvent(),
		RequestID:    req.ID,
		ServiceType:  req.ProblemCategory,
		CustomerName: customerName,
		ContactInfo:  contactInfo,
		Status:       req.Status,
	})
	return nil
}
