package reconciler

import (
	"testing"

	"github.com/khrees2412/applytrack/internal/status"
	"github.com/khrees2412/applytrack/pkg/models"
)

func TestComputeStatsBuckets(t *testing.T) {
	apps := []models.Application{}
	for _, s := range status.AllDisplay() {
		apps = append(apps, models.Application{Status: s})
	}

	stats := ComputeStats(apps)

	if stats.Total != 8 {
		t.Errorf("Total = %d", stats.Total)
	}
	expected := models.Statistics{Pending: 1, Reviewed: 1, Shortlisted: 3, Accepted: 2, Rejected: 1}
	if stats.Pending != expected.Pending || stats.Reviewed != expected.Reviewed ||
		stats.Shortlisted != expected.Shortlisted || stats.Accepted != expected.Accepted ||
		stats.Rejected != expected.Rejected {
		t.Errorf("got %+v, expected buckets %+v", stats, expected)
	}
	if stats.ByStatus[models.StatusInterviewed] != 1 {
		t.Errorf("ByStatus = %v", stats.ByStatus)
	}
}

func TestComputeStatsSumsToTotal(t *testing.T) {
	all := status.AllDisplay()
	tests := []struct {
		name string
		n    int
	}{
		{name: "empty", n: 0},
		{name: "one", n: 1},
		{name: "mixed", n: 37},
		{name: "large", n: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apps := make([]models.Application, tt.n)
			for i := range apps {
				apps[i].Status = all[(i*5+i/3)%len(all)]
			}
			stats := ComputeStats(apps)
			if stats.Total != len(apps) {
				t.Errorf("Total = %d, expected %d", stats.Total, len(apps))
			}
			if stats.BucketSum() != len(apps) {
				t.Errorf("bucket sum = %d, expected %d", stats.BucketSum(), len(apps))
			}
		})
	}
}

func TestResponseRate(t *testing.T) {
	stats := ComputeStats([]models.Application{
		{Status: models.StatusApplied},
		{Status: models.StatusRejected},
		{Status: models.StatusHired},
		{Status: models.StatusApplied},
	})
	if got := stats.ResponseRate(); got != 50 {
		t.Errorf("ResponseRate = %.1f", got)
	}
	if got := ComputeStats(nil).ResponseRate(); got != 0 {
		t.Errorf("empty ResponseRate = %.1f", got)
	}
}

func TestComputeStatsUnknownStatusIsPending(t *testing.T) {
	apps := []models.Application{
		{Status: models.StatusApplied},
		{Status: "archived"},
		{Status: ""},
		{Status: models.StatusRejected},
	}

	stats := ComputeStats(apps)
	if stats.Pending != 3 || stats.Rejected != 1 {
		t.Errorf("unexpected buckets %+v", stats)
	}
	if stats.BucketSum() != stats.Total {
		t.Errorf("BucketSum = %d, Total = %d", stats.BucketSum(), stats.Total)
	}
}

func TestRestoredUnknownStatusKeepsBucketSum(t *testing.T) {
	r := New(newFakeBackend())
	r.Restore(models.ReconciledList{Applications: []models.Application{
		{ApplicantID: "a1", JobID: "j1", Status: "on_hold"},
		{ApplicantID: "a1", JobID: "j2", Status: models.StatusHired},
	}})

	stats := r.Current().Stats
	if stats.BucketSum() != stats.Total || stats.Pending != 1 || stats.Accepted != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}
