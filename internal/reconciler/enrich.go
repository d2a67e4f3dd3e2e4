package reconciler

import (
	"context"
	"sync"

	"github.com/khrees2412/applytrack/pkg/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type lookups struct {
	mu         sync.Mutex
	jobs       map[string]*models.Job
	applicants map[string]*models.Applicant
}

// enrich attaches job and applicant fields to each record. Each distinct job
// and applicant is looked up once per cycle. A failed or empty lookup leaves
// the record as received; records are never dropped and order is preserved.
func (r *Reconciler) enrich(ctx context.Context, token string, records []models.ApplicationRecord) []models.ApplicationRecord {
	if len(records) == 0 {
		return records
	}

	found := &lookups{
		jobs:       make(map[string]*models.Job),
		applicants: make(map[string]*models.Applicant),
	}
	jobIDs, applicantIDs := distinctIDs(records)

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for _, id := range jobIDs {
		id := id
		g.Go(func() error {
			job, err := r.backend.Job(ctx, token, id)
			if err == nil && (job == nil || job.IsEmpty()) {
				err = errEmptyLookup
			}
			if err != nil {
				r.logEnrichment(records, "job", id, err)
				return nil
			}
			found.mu.Lock()
			found.jobs[id] = job
			found.mu.Unlock()
			return nil
		})
	}
	for _, id := range applicantIDs {
		id := id
		g.Go(func() error {
			applicant, err := r.backend.Applicant(ctx, token, id)
			if err == nil && (applicant == nil || applicant.IsEmpty()) {
				err = errEmptyLookup
			}
			if err != nil {
				r.logEnrichment(records, "applicant", id, err)
				return nil
			}
			found.mu.Lock()
			found.applicants[id] = applicant
			found.mu.Unlock()
			return nil
		})
	}
	// lookups never return errors; failures are logged above
	_ = g.Wait()

	out := make([]models.ApplicationRecord, len(records))
	for i, rec := range records {
		if job, ok := found.jobs[rec.JobID]; ok {
			rec = applyJob(rec, job)
		}
		if applicant, ok := found.applicants[rec.ApplicantID]; ok {
			rec = applyApplicant(rec, applicant)
		}
		out[i] = rec
	}
	return out
}

func (r *Reconciler) logEnrichment(records []models.ApplicationRecord, kind, id string, err error) {
	for _, rec := range records {
		if (kind == "job" && rec.JobID == id) || (kind == "applicant" && rec.ApplicantID == id) {
			enrichErr := &EnrichmentError{Key: rec.Key(), Kind: kind, Err: err}
			r.logger.Warn("enrichment skipped", zap.Error(enrichErr))
			return
		}
	}
}

func distinctIDs(records []models.ApplicationRecord) (jobIDs, applicantIDs []string) {
	seenJobs := make(map[string]struct{})
	seenApplicants := make(map[string]struct{})
	for _, rec := range records {
		if _, ok := seenJobs[rec.JobID]; !ok && rec.JobID != "" {
			seenJobs[rec.JobID] = struct{}{}
			jobIDs = append(jobIDs, rec.JobID)
		}
		if _, ok := seenApplicants[rec.ApplicantID]; !ok && rec.ApplicantID != "" {
			seenApplicants[rec.ApplicantID] = struct{}{}
			applicantIDs = append(applicantIDs, rec.ApplicantID)
		}
	}
	return jobIDs, applicantIDs
}

func applyJob(rec models.ApplicationRecord, job *models.Job) models.ApplicationRecord {
	rec.JobTitle = firstNonEmpty(job.Title, rec.JobTitle)
	rec.CompanyName = firstNonEmpty(job.CompanyName, rec.CompanyName)
	rec.Location = firstNonEmpty(job.Location, rec.Location)
	rec.JobType = firstNonEmpty(job.JobType, rec.JobType)
	rec.SalaryRange = firstNonEmpty(job.SalaryRange, rec.SalaryRange)
	return rec
}

func applyApplicant(rec models.ApplicationRecord, applicant *models.Applicant) models.ApplicationRecord {
	rec.ApplicantName = firstNonEmpty(applicant.Name, rec.ApplicantName)
	rec.ApplicantEmail = firstNonEmpty(applicant.Email, rec.ApplicantEmail)
	return rec
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
