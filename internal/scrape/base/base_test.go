package base

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diegoamorenag/JobPersonilisePortal/internal/domain"
	"github.com/diegoamorenag/JobPersonilisePortal/internal/scrape/types"
)

type fakeStore struct {
	seen    map[string]domain.JobPosting
	failIDs map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{seen: map[string]domain.JobPosting{}, failIDs: map[string]bool{}}
}

func (f *fakeStore) UpsertJob(_ context.Context, job domain.JobPosting) (bool, error) {
	if f.failIDs[job.ExternalID] {
		return false, errors.New("store rejected write")
	}
	_, existed := f.seen[job.ExternalID]
	f.seen[job.ExternalID] = job
	return !existed, nil
}

func testCfg() types.Config {
	cfg := types.DefaultConfig()
	cfg.BaseURL = "https://jobs.example.com"
	cfg.SourceName = "Example Jobs"
	cfg.MaxRetries = 3
	cfg.DelayBetweenRequests = time.Millisecond
	return cfg
}

func validJob(id string) domain.JobPosting {
	return domain.JobPosting{
		Title:      "Backend Engineer",
		Company:    "Acme",
		Location:   "Remote",
		ApplyLink:  "https://jobs.example.com/view/1",
		ExternalID: id,
	}
}

func TestSaveJobs_CountsSavedDuplicatesFailed(t *testing.T) {
	store := newFakeStore()
	store.failIDs["broken"] = true
	b := New(testCfg(), store, nil)

	jobs := []domain.JobPosting{
		validJob("a"),
		validJob("a"), // same external id: duplicate
		validJob("broken"),
		{Title: "No Company", Location: "Remote", ApplyLink: "x"}, // invalid
	}

	stats := b.SaveJobs(context.Background(), jobs)
	assert.Equal(t, 1, stats.Saved)
	assert.Equal(t, 1, stats.Duplicates)
	assert.Equal(t, 2, stats.Failed)
	assert.Equal(t, 4, stats.Total)
	assert.Len(t, store.seen, 1)
	assert.Len(t, b.Errors(), 1) // only the store rejection; validation is not exceptional
}

func TestSaveJobs_SecondSaveOverwritesFields(t *testing.T) {
	store := newFakeStore()
	b := New(testCfg(), store, nil)

	first := validJob("stable-1")
	first.Description = "old"
	second := validJob("stable-1")
	second.Description = "new"

	s1 := b.SaveJobs(context.Background(), []domain.JobPosting{first})
	s2 := b.SaveJobs(context.Background(), []domain.JobPosting{second})

	assert.Equal(t, 1, s1.Saved)
	assert.Equal(t, 1, s2.Duplicates)
	assert.Equal(t, 0, s2.Saved)
	assert.Equal(t, "new", store.seen["stable-1"].Description)
}

func TestSaveJobs_EmptyInput(t *testing.T) {
	store := newFakeStore()
	b := New(testCfg(), store, nil)

	stats := b.SaveJobs(context.Background(), nil)
	assert.Equal(t, domain.RunStats{}, stats)
	assert.Empty(t, store.seen)
}

func TestSaveJobs_InvalidNeverReachesStore(t *testing.T) {
	tests := []struct {
		name string
		job  domain.JobPosting
	}{
		{"missing title", domain.JobPosting{Company: "A", Location: "R", ApplyLink: "u"}},
		{"missing company", domain.JobPosting{Title: "T", Location: "R", ApplyLink: "u"}},
		{"missing location", domain.JobPosting{Title: "T", Company: "A", ApplyLink: "u"}},
		{"missing apply link", domain.JobPosting{Title: "T", Company: "A", Location: "R"}},
		{"whitespace only title", domain.JobPosting{Title: "  \n ", Company: "A", Location: "R", ApplyLink: "u"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			b := New(testCfg(), store, nil)
			stats := b.SaveJobs(context.Background(), []domain.JobPosting{tt.job})
			assert.Equal(t, 1, stats.Failed)
			assert.Empty(t, store.seen)
		})
	}
}

func TestCleanJobData(t *testing.T) {
	b := New(testCfg(), newFakeStore(), nil)

	job := b.CleanJobData(domain.JobPosting{
		Title:    "  Senior\nEngineer ",
		Company:  "Acme   Corp",
		Location: " Bogotá, Colombia ",
		Tags:     []string{" $90K/yr ", "", "  ", "Full-time"},
	})

	assert.Equal(t, "Senior Engineer", job.Title)
	assert.Equal(t, "Acme Corp", job.Company)
	assert.Equal(t, "Bogotá, Colombia", job.Location)
	assert.Equal(t, []string{"$90K/yr", "Full-time"}, job.Tags)
	assert.Equal(t, "Example Jobs", job.Source)
	assert.False(t, job.PostedAt.IsZero())
	assert.NotEmpty(t, job.ExternalID)
}

func TestCleanJobData_KeepsProvidedExternalID(t *testing.T) {
	b := New(testCfg(), newFakeStore(), nil)
	job := b.CleanJobData(domain.JobPosting{Title: "T", Company: "C", ExternalID: "example-jobs-12345"})
	assert.Equal(t, "example-jobs-12345", job.ExternalID)
}

func TestGenerateExternalID(t *testing.T) {
	b := New(testCfg(), newFakeStore(), nil)
	job := domain.JobPosting{
		Title:   "Senior Backend Engineer Working On Distributed Systems At Scale",
		Company: "Extremely Long Company Name Incorporated LLC",
	}

	id := b.GenerateExternalID(job)
	require.True(t, strings.HasPrefix(id, "example-jobs-"), id)

	// deterministic textual prefix: strip the trailing epoch-millis segment
	trim := func(s string) string { return s[:strings.LastIndex(s, "-")] }
	id2 := b.GenerateExternalID(job)
	assert.Equal(t, trim(id), trim(id2))

	// slug caps: company <=30, title <=50
	parts := strings.Split(trim(id), "-")
	assert.Greater(t, len(parts), 3)

	// the epoch-millis suffix keeps IDs apart across milliseconds
	time.Sleep(2 * time.Millisecond)
	id3 := b.GenerateExternalID(job)
	assert.NotEqual(t, id, id3)
}

func TestFetchWithRetry_SucceedsAfterFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	b := New(testCfg(), newFakeStore(), nil)
	body, err := b.FetchWithRetry(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, body, "ok")
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchWithRetry_Exhaustion(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	b := New(testCfg(), newFakeStore(), nil)
	_, err := b.FetchWithRetry(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch failed after 3 attempts")
	assert.Contains(t, err.Error(), srv.URL)
	assert.Equal(t, int32(3), calls.Load())
}

func TestExtractHelpers(t *testing.T) {
	b := New(testCfg(), newFakeStore(), nil)
	doc, err := b.Parse(`<div class="card"><h3 class="t">  Backend \n Dev </h3><a class="l" href=" /jobs/1 ">go</a></div>`)
	require.NoError(t, err)

	assert.Equal(t, `Backend \n Dev`, b.ExtractText(doc.Selection, "h3.t"))
	assert.Equal(t, "/jobs/1", b.ExtractAttr(doc.Selection, "a.l", "href"))
	// missing matches yield empty strings, never panic
	assert.Equal(t, "", b.ExtractText(doc.Selection, ".nope"))
	assert.Equal(t, "", b.ExtractAttr(doc.Selection, ".nope", "href"))
}

func TestResetClearsState(t *testing.T) {
	b := New(testCfg(), newFakeStore(), nil)
	b.AppendJobs(validJob("x"))
	b.AddError("page 1", "boom")
	b.Reset()
	assert.Empty(t, b.Jobs())
	assert.Empty(t, b.Errors())
}

func TestSleep_CancelledContext(t *testing.T) {
	b := New(testCfg(), newFakeStore(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := b.Sleep(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}
