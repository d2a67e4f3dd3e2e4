package status

import (
	"errors"
	"fmt"
	"strings"

	"github.com/khrees2412/applytrack/pkg/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrUnknownStatus is returned for values outside either vocabulary
var ErrUnknownStatus = errors.New("unknown status")

var backendToDisplay = map[models.BackendStatus]models.DisplayStatus{
	models.BackendPending:            models.StatusApplied,
	models.BackendReviewed:           models.StatusToReview,
	models.BackendShortlisted:        models.StatusShortlisted,
	models.BackendInterviewScheduled: models.StatusToInterview,
	models.BackendAccepted:           models.StatusHired,
	models.BackendRejected:           models.StatusRejected,
}

// displayToBackend is the forward table read in reverse, plus the two display
// values that have no forward counterpart.
var displayToBackend = map[models.DisplayStatus]models.BackendStatus{
	models.StatusApplied:     models.BackendPending,
	models.StatusToReview:    models.BackendReviewed,
	models.StatusShortlisted: models.BackendShortlisted,
	models.StatusToInterview: models.BackendInterviewScheduled,
	models.StatusInterviewed: models.BackendInterviewScheduled,
	models.StatusSelected:    models.BackendAccepted,
	models.StatusHired:       models.BackendAccepted,
	models.StatusRejected:    models.BackendRejected,
}

var displayOrder = []models.DisplayStatus{
	models.StatusApplied,
	models.StatusToReview,
	models.StatusShortlisted,
	models.StatusToInterview,
	models.StatusInterviewed,
	models.StatusSelected,
	models.StatusHired,
	models.StatusRejected,
}

var backendOrder = []models.BackendStatus{
	models.BackendPending,
	models.BackendReviewed,
	models.BackendShortlisted,
	models.BackendInterviewScheduled,
	models.BackendAccepted,
	models.BackendRejected,
}

// ToDisplay maps a backend status to its display status. Unknown values map
// to applied and report ok=false.
func ToDisplay(s models.BackendStatus) (models.DisplayStatus, bool) {
	d, ok := backendToDisplay[s]
	if !ok {
		return models.StatusApplied, false
	}
	return d, true
}

// ToBackend maps a display status to the backend vocabulary. The mapping is
// lossy: interviewed and to_interview share interview_scheduled, selected and
// hired share accepted.
func ToBackend(s models.DisplayStatus) (models.BackendStatus, error) {
	b, ok := displayToBackend[s]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return b, nil
}

// ParseDisplay parses user input such as "To-Interview" into a display status.
func ParseDisplay(raw string) (models.DisplayStatus, error) {
	s := models.DisplayStatus(normalize(raw))
	if _, ok := displayToBackend[s]; !ok {
		return "", fmt.Errorf("%w: %q (valid: %s)", ErrUnknownStatus, raw, joinDisplay())
	}
	return s, nil
}

// ParseBackend parses a backend status value.
func ParseBackend(raw string) (models.BackendStatus, error) {
	s := models.BackendStatus(normalize(raw))
	if _, ok := backendToDisplay[s]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
	}
	return s, nil
}

// AllDisplay returns the display vocabulary in pipeline order.
func AllDisplay() []models.DisplayStatus {
	out := make([]models.DisplayStatus, len(displayOrder))
	copy(out, displayOrder)
	return out
}

// AllBackend returns the backend vocabulary in pipeline order.
func AllBackend() []models.BackendStatus {
	out := make([]models.BackendStatus, len(backendOrder))
	copy(out, backendOrder)
	return out
}

// Label returns a human readable label, e.g. "To Interview".
func Label(s models.DisplayStatus) string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(s), "_", " "))
}

func normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "-", "_")
	return strings.ReplaceAll(s, " ", "_")
}

func joinDisplay() string {
	parts := make([]string, len(displayOrder))
	for i, s := range displayOrder {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}
