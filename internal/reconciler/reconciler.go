package reconciler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/khrees2412/applytrack/internal/backend"
	"github.com/khrees2412/applytrack/internal/status"
	"github.com/khrees2412/applytrack/pkg/models"
	"go.uber.org/zap"
)

// Backend is the job/application service the reconciler reads from and
// writes status updates to.
type Backend interface {
	MyApplications(ctx context.Context, token string) ([]models.ApplicationRecord, error)
	AllApplications(ctx context.Context, token string) ([]models.ApplicationRecord, error)
	JobsByOwner(ctx context.Context, token, recruiterID string) ([]models.Job, error)
	Job(ctx context.Context, token, jobID string) (*models.Job, error)
	Applicant(ctx context.Context, token, applicantID string) (*models.Applicant, error)
	UpdateStatus(ctx context.Context, token, applicantID, jobID string, s models.BackendStatus) error
}

// Reconciler produces deduplicated, enriched application lists with
// statistics and applies status updates to the list it holds.
type Reconciler struct {
	backend     Backend
	logger      *zap.Logger
	order       models.SortOrder
	concurrency int
	now         func() time.Time

	mu      sync.Mutex
	current *models.ReconciledList
}

type Option func(*Reconciler)

func WithLogger(logger *zap.Logger) Option {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithSortOrder(order models.SortOrder) Option {
	return func(r *Reconciler) {
		if order == models.SortAsc || order == models.SortDesc {
			r.order = order
		}
	}
}

// WithEnrichConcurrency bounds parallel job/applicant lookups.
func WithEnrichConcurrency(n int) Option {
	return func(r *Reconciler) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) {
		if now != nil {
			r.now = now
		}
	}
}

func New(b Backend, opts ...Option) *Reconciler {
	r := &Reconciler{
		backend:     b,
		logger:      zap.NewNop(),
		order:       models.SortDesc,
		concurrency: 4,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile runs one fetch cycle for the session's role. On a fetch failure
// it returns the last-known-good list marked stale, if one is held, along
// with a *FetchError.
func (r *Reconciler) Reconcile(ctx context.Context, session models.Session) (models.ReconciledList, error) {
	switch session.Role {
	case models.RoleSeeker:
		return r.FetchForSeeker(ctx, session)
	case models.RoleRecruiter:
		return r.FetchForRecruiter(ctx, session)
	default:
		return models.ReconciledList{}, fmt.Errorf("%w: %q", ErrUnknownRole, session.Role)
	}
}

// FetchForSeeker reconciles the session owner's own applications. Job fields
// come denormalized from the backend; no per-job lookups are made.
func (r *Reconciler) FetchForSeeker(ctx context.Context, session models.Session) (models.ReconciledList, error) {
	records, err := r.backend.MyApplications(ctx, session.Token)
	if err != nil {
		return r.fail("applications/mine", err)
	}

	apps := make([]models.Application, 0, len(records))
	for _, rec := range records {
		apps = append(apps, r.normalize(rec))
	}
	return r.publish(apps), nil
}

// FetchForRecruiter reconciles applicants across every job the recruiter
// owns. The backend has no scoped endpoint, so the full application
// collection is fetched and filtered here; cost grows with every
// application in the system.
func (r *Reconciler) FetchForRecruiter(ctx context.Context, session models.Session) (models.ReconciledList, error) {
	recruiterID := strings.TrimSpace(session.UserID)
	// a missing identity is a caller error, not a FetchFailure: no backend
	// call was made, so no stale list is served
	if recruiterID == "" {
		return models.ReconciledList{}, ErrNoIdentity
	}

	jobs, err := r.backend.JobsByOwner(ctx, session.Token, recruiterID)
	if err != nil {
		return r.fail("jobs/by-owner", err)
	}

	all, err := r.backend.AllApplications(ctx, session.Token)
	if err != nil {
		return r.fail("applications/all", err)
	}

	records := FilterByJobs(all, jobs)
	r.logger.Debug("filtered applications",
		zap.String("recruiter_id", recruiterID),
		zap.Int("jobs", len(jobs)),
		zap.Int("fetched", len(all)),
		zap.Int("kept", len(records)))

	enriched := r.enrich(ctx, session.Token, records)

	apps := make([]models.Application, 0, len(enriched))
	for _, rec := range enriched {
		apps = append(apps, r.normalize(rec))
	}
	return r.publish(apps), nil
}

// Current returns a copy of the held list.
func (r *Reconciler) Current() models.ReconciledList {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return models.ReconciledList{Stats: ComputeStats(nil)}
	}
	return cloneList(*r.current)
}

// Restore seeds the held list with a previously saved snapshot. It is a
// no-op once a live fetch has succeeded.
func (r *Reconciler) Restore(list models.ReconciledList) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != nil {
		return
	}
	restored := cloneList(list)
	restored.Stats = ComputeStats(restored.Applications)
	r.current = &restored
}

// Reset drops the held list.
func (r *Reconciler) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = nil
}

// UpdateStatus writes a new status for one application. On success the held
// entry is updated in place and statistics are recomputed; on failure the
// list is untouched.
func (r *Reconciler) UpdateStatus(ctx context.Context, session models.Session, applicantID, jobID string, s models.DisplayStatus) error {
	key := models.ApplicationKey{ApplicantID: applicantID, JobID: jobID}
	backendStatus, err := status.ToBackend(s)
	if err != nil {
		return &StatusUpdateError{Key: key, Message: err.Error(), Err: err}
	}

	if err := r.backend.UpdateStatus(ctx, session.Token, applicantID, jobID, backendStatus); err != nil {
		r.logger.Warn("status update failed",
			zap.String("key", key.String()),
			zap.String("status", string(s)),
			zap.Error(err))
		return &StatusUpdateError{Key: key, Message: updateMessage(err), Err: err}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return nil
	}
	for i := range r.current.Applications {
		app := &r.current.Applications[i]
		if app.ApplicantID == applicantID && app.JobID == jobID {
			// keep the requested display value; the backend cannot tell
			// to_interview from interviewed
			app.Status = s
			app.BackendStatus = backendStatus
			r.current.Stats = ComputeStats(r.current.Applications)
			break
		}
	}
	return nil
}

// BulkUpdateStatus issues one update per key. Outcomes are independent and
// successful updates are not rolled back when others fail.
func (r *Reconciler) BulkUpdateStatus(ctx context.Context, session models.Session, keys []models.ApplicationKey, s models.DisplayStatus) models.BulkResult {
	result := models.BulkResult{
		Succeeded: []models.ApplicationKey{},
		Failed:    []models.BulkFailure{},
	}
	seen := make(map[models.ApplicationKey]struct{}, len(keys))
	for _, key := range keys {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		err := r.UpdateStatus(ctx, session, key.ApplicantID, key.JobID, s)
		if err != nil {
			msg := err.Error()
			var updateErr *StatusUpdateError
			if errors.As(err, &updateErr) {
				msg = updateErr.Message
			}
			result.Failed = append(result.Failed, models.BulkFailure{Key: key, Message: msg})
			continue
		}
		result.Succeeded = append(result.Succeeded, key)
	}

	r.logger.Info("bulk status update",
		zap.String("status", string(s)),
		zap.Int("succeeded", len(result.Succeeded)),
		zap.Int("failed", len(result.Failed)))
	return result
}

func (r *Reconciler) normalize(rec models.ApplicationRecord) models.Application {
	if _, ok := status.ToDisplay(rec.Status); !ok {
		r.logger.Warn("unknown backend status",
			zap.String("key", rec.Key().String()),
			zap.String("status", string(rec.Status)))
	}
	if rec.AppliedAt.Raw != "" {
		r.logger.Warn("unparseable appliedAt",
			zap.String("key", rec.Key().String()),
			zap.String("applied_at", rec.AppliedAt.Raw))
	}
	return Normalize(rec)
}

// publish dedups, sorts and stores apps as the held list.
func (r *Reconciler) publish(apps []models.Application) models.ReconciledList {
	apps = Dedup(apps)
	Sort(apps, r.order)
	list := models.ReconciledList{
		Applications: apps,
		Stats:        ComputeStats(apps),
		FetchedAt:    r.now(),
	}

	r.mu.Lock()
	stored := cloneList(list)
	r.current = &stored
	r.mu.Unlock()
	return list
}

func (r *Reconciler) fail(op string, err error) (models.ReconciledList, error) {
	fetchErr := &FetchError{Op: op, Err: err}
	r.logger.Warn("reconciliation failed", zap.String("op", op), zap.Error(err))

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return models.ReconciledList{Stats: ComputeStats(nil)}, fetchErr
	}
	stale := cloneList(*r.current)
	stale.Stale = true
	return stale, fetchErr
}

func updateMessage(err error) string {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return genericUpdateMessage
}

func cloneList(list models.ReconciledList) models.ReconciledList {
	out := list
	out.Applications = append([]models.Application(nil), list.Applications...)
	out.Stats.ByStatus = make(map[models.DisplayStatus]int, len(list.Stats.ByStatus))
	for k, v := range list.Stats.ByStatus {
		out.Stats.ByStatus[k] = v
	}
	return out
}
