package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/khrees2412/applytrack/internal/backend"
	"github.com/khrees2412/applytrack/internal/config"
	"github.com/khrees2412/applytrack/internal/database"
	"github.com/khrees2412/applytrack/internal/logger"
	"github.com/khrees2412/applytrack/internal/reconciler"
	"github.com/khrees2412/applytrack/internal/status"
	"github.com/khrees2412/applytrack/pkg/models"
	"go.uber.org/zap"
)

// App is the dependency container for the CLI application
type App struct {
	DB         *sql.DB
	Store      *database.Store
	Config     *config.Config
	HTTPClient *http.Client
	Logger     *zap.Logger
	Backend    *backend.Client
	Reconciler *reconciler.Reconciler
}

// NewApp initializes and returns a new App instance
func NewApp(ctx context.Context) (*App, error) {
	if err := config.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}

	db, err := database.Initialize()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	app, err := New(config.AppConfig, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return app, nil
}

// New wires an App from an already loaded config and open database
func New(cfg *config.Config, db *sql.DB) (*App, error) {
	log, err := logger.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Every backend call is bounded; a timeout counts as a failed call
	httpClient := &http.Client{
		Timeout: cfg.RequestTimeout,
	}

	client := backend.NewClient(cfg.APIBaseURL, httpClient, log.Named("backend"))
	rec := reconciler.New(client,
		reconciler.WithLogger(log.Named("reconciler")),
		reconciler.WithSortOrder(models.SortOrder(cfg.SortOrder)),
		reconciler.WithEnrichConcurrency(cfg.EnrichConcurrency),
	)

	return &App{
		DB:         db,
		Store:      database.NewStore(db),
		Config:     cfg,
		HTTPClient: httpClient,
		Logger:     log,
		Backend:    client,
		Reconciler: rec,
	}, nil
}

// Close closes all resources
func (a *App) Close() error {
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

// Session builds the caller session from config, with optional overrides
// for role and user id.
func (a *App) Session(role, userID string) (models.Session, error) {
	if role == "" {
		role = a.Config.Role
	}
	if userID == "" {
		userID = a.Config.UserID
	}
	session := models.Session{
		Role:   models.Role(strings.ToLower(strings.TrimSpace(role))),
		UserID: strings.TrimSpace(userID),
		Token:  strings.TrimSpace(a.Config.APIToken),
	}
	switch session.Role {
	case models.RoleSeeker, models.RoleRecruiter:
	default:
		return models.Session{}, fmt.Errorf("%w: role %q", ErrInvalidArgument, role)
	}
	if session.Token == "" {
		return models.Session{}, ErrNoToken
	}
	// snapshots are keyed by identity, so seekers need one too
	if session.UserID == "" {
		return models.Session{}, ErrNoUserID
	}
	return session, nil
}

// Refresh runs one reconciliation cycle. The last saved snapshot seeds the
// reconciler so a failed fetch still has a last-known-good list to serve;
// successful fetches replace the snapshot.
func (a *App) Refresh(ctx context.Context, session models.Session) (models.ReconciledList, error) {
	a.restore(session)

	list, err := a.Reconciler.Reconcile(ctx, session)
	if err != nil {
		var fetchErr *reconciler.FetchError
		if errors.As(err, &fetchErr) && list.Stale {
			a.Logger.Warn("serving last-known-good applications", zap.Error(err))
		}
		return list, err
	}

	if err := a.Store.SaveSnapshot(session, list); err != nil {
		a.Logger.Warn("failed to save snapshot", zap.Error(err))
	}
	return list, nil
}

// UpdateStatus applies one status change and records it in the audit log
func (a *App) UpdateStatus(ctx context.Context, session models.Session, key models.ApplicationKey, s models.DisplayStatus) error {
	a.restore(session)
	err := a.Reconciler.UpdateStatus(ctx, session, key.ApplicantID, key.JobID, s)
	entry := &models.StatusUpdate{
		ApplicantID:   key.ApplicantID,
		JobID:         key.JobID,
		DisplayStatus: s,
		Succeeded:     err == nil,
	}
	entry.BackendStatus, _ = status.ToBackend(s)
	if err != nil {
		entry.Message = err.Error()
		var updateErr *reconciler.StatusUpdateError
		if errors.As(err, &updateErr) {
			entry.Message = updateErr.Message
		}
	}
	a.record(entry)
	if err == nil {
		a.saveCurrent(session)
	}
	return err
}

// BulkUpdateStatus applies a status change to many applications, recording
// each outcome in the audit log
func (a *App) BulkUpdateStatus(ctx context.Context, session models.Session, keys []models.ApplicationKey, s models.DisplayStatus) models.BulkResult {
	a.restore(session)
	result := a.Reconciler.BulkUpdateStatus(ctx, session, keys, s)
	backendStatus, _ := status.ToBackend(s)

	for _, key := range result.Succeeded {
		a.record(&models.StatusUpdate{
			ApplicantID: key.ApplicantID, JobID: key.JobID,
			DisplayStatus: s, BackendStatus: backendStatus, Succeeded: true,
		})
	}
	for _, failure := range result.Failed {
		a.record(&models.StatusUpdate{
			ApplicantID: failure.Key.ApplicantID, JobID: failure.Key.JobID,
			DisplayStatus: s, BackendStatus: backendStatus, Message: failure.Message,
		})
	}
	if len(result.Succeeded) > 0 {
		a.saveCurrent(session)
	}
	return result
}

// restore seeds the reconciler with the saved snapshot for session, if any
func (a *App) restore(session models.Session) {
	snapshot, err := a.Store.LoadSnapshot(session)
	if err != nil {
		a.Logger.Warn("failed to load snapshot", zap.Error(err))
		return
	}
	if snapshot != nil {
		a.Reconciler.Restore(*snapshot)
	}
}

func (a *App) record(entry *models.StatusUpdate) {
	if err := a.Store.RecordStatusUpdate(entry); err != nil {
		a.Logger.Warn("failed to record status update", zap.Error(err))
	}
}

// saveCurrent persists the reconciler's list after local updates so the
// snapshot does not lag behind them.
func (a *App) saveCurrent(session models.Session) {
	current := a.Reconciler.Current()
	if len(current.Applications) == 0 {
		return
	}
	if err := a.Store.SaveSnapshot(session, current); err != nil {
		a.Logger.Warn("failed to save snapshot", zap.Error(err))
	}
}

// ForgetSnapshot drops the saved last-known-good list for the session
// identity; the next failed fetch then has nothing to fall back to.
func (a *App) ForgetSnapshot(session models.Session) error {
	if err := a.Store.DeleteSnapshot(session); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	a.Reconciler.Reset()
	return nil
}
