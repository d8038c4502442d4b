package storage

import (
	"context"

	"plumbing_portal_backend/internal/events"
	apphttp "plumbing_portal_backend/internal/http"
	"plumbing_portal_backend/platform/config"
	"plumbing_portal_backend/platform/httpkit"
	"plumbing_portal_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module wires attachment storage: customer uploads, staff listings, and
// the admin object proxy.
type Module struct {
	handler *Handler
	log     *logger.Logger
}

// NewModule assembles the storage module. Returns nil when object storage
// is not configured; the caller simply skips registering it.
func NewModule(ctx context.Context, cfg config.StorageConfig, pool *pgxpool.Pool, requests RequestStore, eventBus events.Bus, log *logger.Logger) (*Module, error) {
	if !cfg.IsStorageEnabled() {
		log.Info("attachment storage disabled, MinIO not configured")
		return nil, nil
	}

	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if err := client.EnsureBucket(ctx); err != nil {
		return nil, err
	}

	service := NewService(client, NewRepository(pool), requests, eventBus, log)

	return &Module{handler: NewHandler(service, log), log: log}, nil
}

func (m *Module) Name() string { return "storage" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Public.POST("/upload-attachment", ctx.AuthMiddleware, m.handler.Upload)
	ctx.Public.GET("/storage/object/*objectPath", ctx.AuthMiddleware, httpkit.RequireRole("admin"), m.handler.DownloadObject)
	ctx.Staff.GET("/requests/:id/attachments", m.handler.ListForRequest)
}
