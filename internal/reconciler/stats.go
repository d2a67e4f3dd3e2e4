package reconciler

import "github.com/khrees2412/applytrack/pkg/models"

// ComputeStats counts applications by display status. Buckets:
//
//	pending     = applied, or any unknown status
//	reviewed    = to_review
//	shortlisted = shortlisted, to_interview, interviewed
//	accepted    = hired, selected
//	rejected    = rejected
//
// Every status lands in exactly one bucket.
func ComputeStats(apps []models.Application) models.Statistics {
	stats := models.Statistics{
		Total:    len(apps),
		ByStatus: make(map[models.DisplayStatus]int),
	}

	for _, app := range apps {
		stats.ByStatus[app.Status]++

		switch app.Status {
		case models.StatusToReview:
			stats.Reviewed++
		case models.StatusShortlisted, models.StatusToInterview, models.StatusInterviewed:
			stats.Shortlisted++
		case models.StatusHired, models.StatusSelected:
			stats.Accepted++
		case models.StatusRejected:
			stats.Rejected++
		default:
			// applied, and anything outside the vocabulary (e.g. a hand-edited
			// snapshot), counts as pending
			stats.Pending++
		}
	}

	return stats
}
