package serpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diegoamorenag/JobPersonilisePortal/internal/domain"
)

type memStore struct {
	jobs map[string]domain.JobPosting
}

func newMemStore() *memStore { return &memStore{jobs: map[string]domain.JobPosting{}} }

func (m *memStore) UpsertJob(_ context.Context, job domain.JobPosting) (bool, error) {
	_, existed := m.jobs[job.ExternalID]
	m.jobs[job.ExternalID] = job
	return !existed, nil
}

const sampleResponse = `{
  "jobs_results": [
    {
      "title": "Golang Developer",
      "company_name": "Initech",
      "location": "Austin, TX",
      "description": "Build   services in Go.",
      "via": "via LinkedIn",
      "share_link": "https://www.google.com/search?q=golang+dev",
      "job_id": "eyJqb2JfdGl0bGUiOiJHbyJ9",
      "extensions": ["2 days ago", "Full-time", ""],
      "detected_extensions": {"posted_at": "2 days ago"}
    },
    {
      "title": "No ID Job",
      "company_name": "Acme",
      "location": "Remote",
      "related_links": [{"link": "https://acme.example/jobs/1"}]
    }
  ]
}`

func TestRun_NormalizesAndUpserts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "google_jobs", r.URL.Query().Get("engine"))
		assert.Equal(t, "golang", r.URL.Query().Get("q"))
		assert.Equal(t, "Austin", r.URL.Query().Get("location"))
		assert.Equal(t, "k", r.URL.Query().Get("api_key"))
		fmt.Fprint(w, sampleResponse)
	}))
	defer srv.Close()

	store := newMemStore()
	c := New(srv.URL, "k", store)

	stats, err := c.Run(context.Background(), "golang", "Austin")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Saved)
	assert.Equal(t, 1, stats.Failed) // listing without job_id skipped
	assert.Equal(t, 2, stats.Total)

	job, ok := store.jobs["google-jobs-eyJqb2JfdGl0bGUiOiJHbyJ9"]
	require.True(t, ok)
	assert.Equal(t, "Golang Developer", job.Title)
	assert.Equal(t, "Initech", job.Company)
	assert.Equal(t, "Build services in Go.", job.Description) // whitespace collapsed
	assert.Equal(t, "Google Jobs", job.Source)
	assert.Equal(t, "https://www.google.com/search?q=golang+dev", job.ApplyLink)
	assert.Contains(t, job.Tags, "Full-time")
	assert.Contains(t, job.Tags, "via LinkedIn")
	assert.WithinDuration(t, time.Now().UTC().AddDate(0, 0, -2), job.PostedAt, time.Minute)
}

func TestRun_SecondFetchIsDuplicate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleResponse)
	}))
	defer srv.Close()

	c := New(srv.URL, "k", newMemStore())
	_, err := c.Run(context.Background(), "golang", "")
	require.NoError(t, err)
	stats, err := c.Run(context.Background(), "golang", "")
	require.NoError(t, err)
	assert.Zero(t, stats.Saved)
	assert.Equal(t, 1, stats.Duplicates)
}

func TestFetch_Errors(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		c := New("", "", newMemStore())
		_, err := c.Fetch(context.Background(), "q", "")
		assert.ErrorContains(t, err, "api key")
	})

	t.Run("non-200", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"bad key"}`)
		}))
		defer srv.Close()

		c := New(srv.URL, "k", newMemStore())
		_, err := c.Fetch(context.Background(), "q", "")
		assert.ErrorContains(t, err, "status 401")
	})
}
