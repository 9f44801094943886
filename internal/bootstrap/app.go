package bootstrap

import (
	"context"
	"database/sql"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"pdfchat-backend/internal/chat"
	"pdfchat-backend/internal/documents"
	"pdfchat-backend/internal/genai"
	"pdfchat-backend/internal/records"
	"pdfchat-backend/internal/shared/config"
	"pdfchat-backend/internal/shared/server"
	"pdfchat-backend/internal/shared/storage/db"
	"pdfchat-backend/internal/shared/storage/object"
	localstore "pdfchat-backend/internal/shared/storage/object/local"
	s3store "pdfchat-backend/internal/shared/storage/object/s3"
	"pdfchat-backend/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB

	Blobs   object.ObjectStore
	Records *records.Service

	DocumentsService *documents.Service
	ChatService      *chat.Service

	DocumentsHandler *documents.Handler
	ChatHandler      *chat.Handler
}

// Build prepares shared dependencies and wires the router. A failure to
// reach remote storage falls back to the local backends rather than
// aborting startup.
func Build(cfg config.Config) (*App, error) {
	ctx := context.Background()

	sqlDB, backend, err := buildRecordsBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	blobs, err := buildBlobStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	recs := records.NewService(backend)
	gen := genai.NewGenerator(buildGenClient(cfg), genai.Config{
		Model:       cfg.GeminiModel,
		MinInterval: cfg.GenMinInterval,
		MaxAttempts: cfg.GenMaxAttempts,
		BaseDelay:   cfg.GenBaseDelay,
	})

	app := &App{
		Config:           cfg,
		DB:               sqlDB,
		Blobs:            blobs,
		Records:          recs,
		DocumentsService: documents.NewService(blobs, recs),
		ChatService:      chat.NewService(recs, gen),
	}
	app.DocumentsHandler = documents.NewHandler(app.DocumentsService)
	app.ChatHandler = chat.NewHandler(app.ChatService)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           cfg,
		DocumentsHandler: app.DocumentsHandler,
		ChatHandler:      app.ChatHandler,
	})

	return app, nil
}

// buildRecordsBackend selects the remote backend when fully configured and
// reachable, otherwise the local JSON file. The returned *sql.DB is nil in
// local mode.
func buildRecordsBackend(ctx context.Context, cfg config.Config) (*sql.DB, records.Backend, error) {
	if cfg.RemoteStorageConfigured() {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
		if err == nil {
			if migErr := db.RunMigrations(ctx, sqlDB); migErr != nil {
				telemetry.Error("bootstrap.migrate", map[string]any{"error": migErr.Error()})
				sqlDB.Close()
			} else if backend, pgErr := records.NewPGBackend(sqlDB, cfg.RecordsTable); pgErr != nil {
				telemetry.Error("bootstrap.records_table", map[string]any{"error": pgErr.Error()})
				sqlDB.Close()
			} else if schemaErr := backend.EnsureSchema(ctx); schemaErr != nil {
				telemetry.Error("bootstrap.records_schema", map[string]any{"error": schemaErr.Error()})
				sqlDB.Close()
			} else {
				telemetry.Info("bootstrap.records", map[string]any{"backend": "postgres", "table": cfg.RecordsTable})
				return sqlDB, backend, nil
			}
		} else {
			telemetry.Error("bootstrap.db_connect", map[string]any{"error": err.Error()})
		}
	} else {
		telemetry.Warn("bootstrap.records", map[string]any{
			"backend": "file",
			"reason":  "remote storage not fully configured",
		})
	}

	path := filepath.Join(cfg.LocalStoreDir, records.DefaultFileName)
	backend, err := records.NewFileBackend(path)
	if err != nil {
		return nil, nil, err
	}
	telemetry.Info("bootstrap.records", map[string]any{"backend": "file", "path": path})
	return nil, backend, nil
}

func buildBlobStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
	default:
		return localstore.New(filepath.Join(cfg.LocalStoreDir, "blobs")), nil
	}
}

func buildGenClient(cfg config.Config) genai.Client {
	if cfg.GeminiAPIKey == "" {
		telemetry.Warn("bootstrap.genai", map[string]any{"client": "placeholder", "reason": "GEMINI_API_KEY not set"})
		return genai.PlaceholderClient{}
	}
	client, err := genai.NewGeminiClient(cfg.GeminiAPIKey)
	if err != nil {
		telemetry.Error("bootstrap.genai", map[string]any{"error": err.Error()})
		return genai.PlaceholderClient{}
	}
	return client
}
