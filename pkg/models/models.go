package models

import (
	"fmt"
	"time"
)

// BackendStatus is the status vocabulary persisted by the application backend.
type BackendStatus string

const (
	BackendPending            BackendStatus = "pending"
	BackendReviewed           BackendStatus = "reviewed"
	BackendShortlisted        BackendStatus = "shortlisted"
	BackendInterviewScheduled BackendStatus = "interview_scheduled"
	BackendAccepted           BackendStatus = "accepted"
	BackendRejected           BackendStatus = "rejected"
)

// DisplayStatus is the status vocabulary shown to users. It is richer than
// BackendStatus: several display values share one backend value.
type DisplayStatus string

const (
	StatusApplied     DisplayStatus = "applied"
	StatusToReview    DisplayStatus = "to_review"
	StatusShortlisted DisplayStatus = "shortlisted"
	StatusToInterview DisplayStatus = "to_interview"
	StatusInterviewed DisplayStatus = "interviewed"
	StatusSelected    DisplayStatus = "selected"
	StatusHired       DisplayStatus = "hired"
	StatusRejected    DisplayStatus = "rejected"
)

// Role identifies which side of the job board a session belongs to.
type Role string

const (
	RoleSeeker    Role = "seeker"
	RoleRecruiter Role = "recruiter"
)

// SortOrder controls ordering of reconciled applications by AppliedAt.
type SortOrder string

const (
	SortDesc SortOrder = "desc"
	SortAsc  SortOrder = "asc"
)

// Placeholders used when the backend omits a denormalized field.
const (
	PlaceholderNA      = "N/A"
	PlaceholderCompany = "Unknown Company"
	PlaceholderJob     = "Unknown Job"
)

// Session carries the caller identity and bearer token issued by the auth service.
type Session struct {
	Role   Role   `json:"role"`
	UserID string `json:"user_id"`
	Token  string `json:"-"`
}

// ApplicationRecord is one application as returned by the backend.
type ApplicationRecord struct {
	ApplicantID     string        `json:"applicantId"`
	JobID           string        `json:"jobId"`
	Status          BackendStatus `json:"status"`
	AppliedAt       Timestamp     `json:"appliedAt"`
	FinalScore      *float64      `json:"finalScore,omitempty"`
	SkillScore      *float64      `json:"skillScore,omitempty"`
	ExperienceScore *float64      `json:"experienceScore,omitempty"`
	EducationScore  *float64      `json:"educationScore,omitempty"`
	JobTitle        string        `json:"jobTitle,omitempty"`
	CompanyName     string        `json:"companyName,omitempty"`
	Location        string        `json:"location,omitempty"`
	JobType         string        `json:"jobType,omitempty"`
	SalaryRange     string        `json:"salaryRange,omitempty"`
	ApplicantName   string        `json:"applicantName,omitempty"`
	ApplicantEmail  string        `json:"applicantEmail,omitempty"`
}

// Key returns the natural key of the record.
func (r ApplicationRecord) Key() ApplicationKey {
	return ApplicationKey{ApplicantID: r.ApplicantID, JobID: r.JobID}
}

// ApplicationKey identifies one seeker's application to one job.
type ApplicationKey struct {
	ApplicantID string `json:"applicantId"`
	JobID       string `json:"jobId"`
}

func (k ApplicationKey) String() string {
	return fmt.Sprintf("%s-%s", k.ApplicantID, k.JobID)
}

// Application is a reconciled, display-ready application.
type Application struct {
	ApplicantID     string        `json:"applicant_id"`
	JobID           string        `json:"job_id"`
	Status          DisplayStatus `json:"status"`
	BackendStatus   BackendStatus `json:"backend_status"`
	AppliedAt       time.Time     `json:"applied_at"`
	FinalScore      float64       `json:"final_score"`
	SkillScore      float64       `json:"skill_score"`
	ExperienceScore float64       `json:"experience_score"`
	EducationScore  float64       `json:"education_score"`
	JobTitle        string        `json:"job_title"`
	CompanyName     string        `json:"company_name"`
	Location        string        `json:"location"`
	JobType         string        `json:"job_type"`
	SalaryRange     string        `json:"salary_range"`
	ApplicantName   string        `json:"applicant_name"`
	ApplicantEmail  string        `json:"applicant_email"`
}

// Key returns the natural key of the application.
func (a Application) Key() ApplicationKey {
	return ApplicationKey{ApplicantID: a.ApplicantID, JobID: a.JobID}
}

// Job represents a job posting owned by a recruiter
type Job struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	CompanyName string `json:"companyName"`
	Location    string `json:"location"`
	JobType     string `json:"jobType"`
	SalaryRange string `json:"salaryRange"`
	OwnerID     string `json:"ownerId"`
}

// IsEmpty reports whether the backend returned an empty job document.
func (j Job) IsEmpty() bool {
	return j == Job{}
}

// Applicant holds the profile fields used to enrich recruiter views
type Applicant struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// IsEmpty reports whether the backend returned an empty user document.
func (a Applicant) IsEmpty() bool {
	return a == Applicant{}
}

// Statistics are aggregate counts over a reconciled list.
type Statistics struct {
	Total       int                   `json:"total"`
	Pending     int                   `json:"pending"`
	Reviewed    int                   `json:"reviewed"`
	Shortlisted int                   `json:"shortlisted"`
	Accepted    int                   `json:"accepted"`
	Rejected    int                   `json:"rejected"`
	ByStatus    map[DisplayStatus]int `json:"by_status"`
}

// BucketSum returns the sum of all named buckets. It equals Total for any
// list of known display statuses.
func (s Statistics) BucketSum() int {
	return s.Pending + s.Reviewed + s.Shortlisted + s.Accepted + s.Rejected
}

// ResponseRate is the share of applications that moved past "applied",
// in percent.
func (s Statistics) ResponseRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Total-s.Pending) / float64(s.Total) * 100
}

// ReconciledList is the output of one reconciliation cycle.
type ReconciledList struct {
	Applications []Application `json:"applications"`
	Stats        Statistics    `json:"stats"`
	FetchedAt    time.Time     `json:"fetched_at"`
	// Stale is set when the list is a last-known-good copy served after a fetch failure.
	Stale bool `json:"stale"`
}

// BulkFailure describes one failed pair of a bulk status update.
type BulkFailure struct {
	Key     ApplicationKey `json:"key"`
	Message string         `json:"message"`
}

// BulkResult reports per-pair outcomes of a bulk status update.
type BulkResult struct {
	Succeeded []ApplicationKey `json:"succeeded"`
	Failed    []BulkFailure    `json:"failed"`
}

// StatusUpdate is a local audit entry for one status update attempt.
type StatusUpdate struct {
	ID            int           `json:"id"`
	ApplicantID   string        `json:"applicant_id"`
	JobID         string        `json:"job_id"`
	DisplayStatus DisplayStatus `json:"display_status"`
	BackendStatus BackendStatus `json:"backend_status"`
	Succeeded     bool          `json:"succeeded"`
	Message       string        `json:"message"`
	CreatedAt     time.Time     `json:"created_at"`
}
