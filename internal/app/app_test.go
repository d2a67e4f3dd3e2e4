package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/khrees2412/applytrack/internal/config"
	"github.com/khrees2412/applytrack/internal/database"
	"github.com/khrees2412/applytrack/internal/reconciler"
	"github.com/khrees2412/applytrack/pkg/models"
)

type fakeServer struct {
	down     atomic.Bool
	reshaped atomic.Bool
	failJob  string
	statuses map[string]string
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if f.down.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/applications/mine" && f.reshaped.Load():
		w.Write([]byte(`{"success":true,"items":[]}`))
	case r.Method == http.MethodGet && r.URL.Path == "/applications/mine":
		w.Write([]byte(`[
			{"applicantId":"s1","jobId":"j1","status":"pending","appliedAt":"2024-04-01T10:00:00Z","jobTitle":"Go Developer","companyName":"Acme"},
			{"applicantId":"s1","jobId":"j2","status":"interview_scheduled","appliedAt":"2024-04-03T10:00:00Z"}
		]`))
	case r.Method == http.MethodPut && r.URL.Path == "/applications/status":
		var body struct {
			ApplicantID string `json:"applicantId"`
			JobID       string `json:"jobId"`
			Status      string `json:"status"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if body.JobID == f.failJob {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"application not found"}`))
			return
		}
		f.statuses[body.ApplicantID+"-"+body.JobID] = body.Status
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestApp(t *testing.T) (*App, *fakeServer) {
	t.Helper()
	fake := &fakeServer{failJob: "missing", statuses: map[string]string{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	cfg := &config.Config{
		APIBaseURL:        srv.URL,
		APIToken:          "tok",
		Role:              "seeker",
		UserID:            "s1",
		PollInterval:      30 * time.Second,
		RequestTimeout:    2 * time.Second,
		SortOrder:         "desc",
		EnrichConcurrency: 2,
		LogLevel:          "error",
		Env:               "prod",
	}
	app, err := New(cfg, db)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { app.Close() })
	return app, fake
}

func TestSession(t *testing.T) {
	app, _ := newTestApp(t)

	session, err := app.Session("", "")
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if session.Role != models.RoleSeeker || session.UserID != "s1" || session.Token != "tok" {
		t.Errorf("unexpected session %+v", session)
	}

	session, err = app.Session("Recruiter", "r9")
	if err != nil {
		t.Fatalf("Session override: %v", err)
	}
	if session.Role != models.RoleRecruiter || session.UserID != "r9" {
		t.Errorf("overrides not applied: %+v", session)
	}

	if _, err := app.Session("admin", ""); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}

	app.Config.APIToken = ""
	if _, err := app.Session("", ""); !errors.Is(err, ErrNoToken) {
		t.Errorf("expected ErrNoToken, got %v", err)
	}
}

func TestRefreshSavesSnapshot(t *testing.T) {
	app, _ := newTestApp(t)
	session, _ := app.Session("", "")

	list, err := app.Refresh(context.Background(), session)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(list.Applications) != 2 || list.Applications[0].JobID != "j2" {
		t.Errorf("unexpected list %+v", list.Applications)
	}
	if list.Applications[0].Status != models.StatusToInterview || list.Applications[0].CompanyName != models.PlaceholderCompany {
		t.Errorf("unexpected first entry %+v", list.Applications[0])
	}

	saved, err := app.Store.LoadSnapshot(session)
	if err != nil || saved == nil {
		t.Fatalf("snapshot not saved: %v", err)
	}
	if len(saved.Applications) != 2 {
		t.Errorf("snapshot has %d applications", len(saved.Applications))
	}
}

func TestRefreshFallsBackToSnapshot(t *testing.T) {
	app, fake := newTestApp(t)
	session, _ := app.Session("", "")

	if _, err := app.Refresh(context.Background(), session); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	// a fresh process has only the snapshot to go on
	restarted, err := New(app.Config, app.DB)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	fake.down.Store(true)

	list, err := restarted.Refresh(context.Background(), session)
	var fetchErr *reconciler.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if !list.Stale || len(list.Applications) != 2 {
		t.Errorf("expected stale snapshot, got %+v", list)
	}
	if list.Stats.Total != 2 {
		t.Errorf("stats not recomputed for snapshot: %+v", list.Stats)
	}
}

func TestUpdateStatusRecordsAudit(t *testing.T) {
	app, fake := newTestApp(t)
	session, _ := app.Session("", "")
	if _, err := app.Refresh(context.Background(), session); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	key := models.ApplicationKey{ApplicantID: "s1", JobID: "j1"}
	if err := app.UpdateStatus(context.Background(), session, key, models.StatusSelected); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if fake.statuses["s1-j1"] != "accepted" {
		t.Errorf("backend got %q", fake.statuses["s1-j1"])
	}

	err := app.UpdateStatus(context.Background(), session, models.ApplicationKey{ApplicantID: "s1", JobID: "missing"}, models.StatusRejected)
	var updateErr *reconciler.StatusUpdateError
	if !errors.As(err, &updateErr) || updateErr.Message != "application not found" {
		t.Errorf("unexpected error %v", err)
	}

	updates, err := app.Store.RecentStatusUpdates(10)
	if err != nil {
		t.Fatalf("RecentStatusUpdates: %v", err)
	}
	if len(updates) != 2 {
		t.Fatalf("expected 2 audit entries, got %d", len(updates))
	}

	saved, _ := app.Store.LoadSnapshot(session)
	for _, a := range saved.Applications {
		if a.JobID == "j1" && a.Status != models.StatusSelected {
			t.Errorf("snapshot not updated after local change: %+v", a)
		}
	}
}

func TestBulkUpdateStatus(t *testing.T) {
	app, _ := newTestApp(t)
	session, _ := app.Session("recruiter", "r1")

	keys := []models.ApplicationKey{
		{ApplicantID: "s1", JobID: "j1"},
		{ApplicantID: "s2", JobID: "missing"},
		{ApplicantID: "s3", JobID: "j1"},
	}
	result := app.BulkUpdateStatus(context.Background(), session, keys, models.StatusShortlisted)
	if len(result.Succeeded) != 2 || len(result.Failed) != 1 {
		t.Fatalf("expected 2/1, got %+v", result)
	}
	if result.Failed[0].Key != keys[1] {
		t.Errorf("wrong failed key %s", result.Failed[0].Key)
	}

	updates, _ := app.Store.RecentStatusUpdates(10)
	if len(updates) != 3 {
		t.Errorf("expected 3 audit entries, got %d", len(updates))
	}
}

func TestContextHelpers(t *testing.T) {
	if _, err := FromContext(context.Background()); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
	app := &App{}
	ctx := SetAppInContext(context.Background(), app)
	got, err := FromContext(ctx)
	if err != nil || got != app {
		t.Errorf("FromContext = %v, %v", got, err)
	}
}

func TestForgetSnapshot(t *testing.T) {
	app, fake := newTestApp(t)
	session, _ := app.Session("", "")
	if _, err := app.Refresh(context.Background(), session); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if err := app.ForgetSnapshot(session); err != nil {
		t.Fatalf("ForgetSnapshot: %v", err)
	}
	if saved, _ := app.Store.LoadSnapshot(session); saved != nil {
		t.Errorf("snapshot still present: %+v", saved)
	}

	fake.down.Store(true)
	list, err := app.Refresh(context.Background(), session)
	if err == nil {
		t.Fatal("expected fetch error")
	}
	if list.Stale || len(list.Applications) != 0 {
		t.Errorf("expected empty list after forget, got %+v", list)
	}
}

func TestRefreshKeepsSnapshotOnUnexpectedShape(t *testing.T) {
	app, fake := newTestApp(t)
	session, _ := app.Session("", "")
	if _, err := app.Refresh(context.Background(), session); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	fake.reshaped.Store(true)
	list, err := app.Refresh(context.Background(), session)
	var fetchErr *reconciler.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if !list.Stale || len(list.Applications) != 2 {
		t.Errorf("expected stale list of 2, got %+v", list)
	}

	saved, err := app.Store.LoadSnapshot(session)
	if err != nil || saved == nil {
		t.Fatalf("snapshot missing: %v", err)
	}
	if len(saved.Applications) != 2 {
		t.Errorf("snapshot overwritten with %d applications", len(saved.Applications))
	}
}

func TestAppsUseTheirOwnStore(t *testing.T) {
	first, _ := newTestApp(t)
	second, _ := newTestApp(t)
	session, _ := first.Session("", "")

	if _, err := first.Refresh(context.Background(), session); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if saved, _ := second.Store.LoadSnapshot(session); saved != nil {
		t.Error("snapshot written to another app's database")
	}
	if saved, _ := first.Store.LoadSnapshot(session); saved == nil {
		t.Error("snapshot missing from the app's own database")
	}
}
