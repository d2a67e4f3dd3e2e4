package reconciler

import (
	"sort"

	"github.com/khrees2412/applytrack/internal/status"
	"github.com/khrees2412/applytrack/pkg/models"
)

// Normalize maps a backend record to a display-ready application. Missing
// scores become 0 and missing strings become placeholders.
func Normalize(r models.ApplicationRecord) models.Application {
	display, _ := status.ToDisplay(r.Status)
	return models.Application{
		ApplicantID:     r.ApplicantID,
		JobID:           r.JobID,
		Status:          display,
		BackendStatus:   r.Status,
		AppliedAt:       r.AppliedAt.Time,
		FinalScore:      score(r.FinalScore),
		SkillScore:      score(r.SkillScore),
		ExperienceScore: score(r.ExperienceScore),
		EducationScore:  score(r.EducationScore),
		JobTitle:        orDefault(r.JobTitle, models.PlaceholderJob),
		CompanyName:     orDefault(r.CompanyName, models.PlaceholderCompany),
		Location:        orDefault(r.Location, models.PlaceholderNA),
		JobType:         orDefault(r.JobType, models.PlaceholderNA),
		SalaryRange:     orDefault(r.SalaryRange, models.PlaceholderNA),
		ApplicantName:   orDefault(r.ApplicantName, models.PlaceholderNA),
		ApplicantEmail:  orDefault(r.ApplicantEmail, models.PlaceholderNA),
	}
}

// Dedup keeps the first-seen application for every (applicant, job) pair,
// preserving input order.
func Dedup(apps []models.Application) []models.Application {
	seen := make(map[models.ApplicationKey]struct{}, len(apps))
	out := make([]models.Application, 0, len(apps))
	for _, app := range apps {
		key := app.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, app)
	}
	return out
}

// Sort orders applications by AppliedAt. The sort is stable so equal
// timestamps keep backend order.
func Sort(apps []models.Application, order models.SortOrder) {
	sort.SliceStable(apps, func(i, j int) bool {
		if order == models.SortAsc {
			return apps[i].AppliedAt.Before(apps[j].AppliedAt)
		}
		return apps[i].AppliedAt.After(apps[j].AppliedAt)
	})
}

// FilterByJobs keeps only records whose job is in the given set.
func FilterByJobs(records []models.ApplicationRecord, jobs []models.Job) []models.ApplicationRecord {
	owned := make(map[string]struct{}, len(jobs))
	for _, job := range jobs {
		owned[job.ID] = struct{}{}
	}
	out := make([]models.ApplicationRecord, 0, len(records))
	for _, r := range records {
		if _, ok := owned[r.JobID]; ok {
			out = append(out, r)
		}
	}
	return out
}

// FilterByStatus keeps applications with the given display status. An empty
// status keeps everything.
func FilterByStatus(apps []models.Application, s models.DisplayStatus) []models.Application {
	if s == "" {
		return apps
	}
	out := []models.Application{}
	for _, app := range apps {
		if app.Status == s {
			out = append(out, app)
		}
	}
	return out
}

func score(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
