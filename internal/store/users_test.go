package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := &UserStore{DB: testDB(t)}
	ctx := context.Background()

	u, err := s.CreateUser(ctx, uuid.NewString(), "Dev@Example.com", "hash")
	require.NoError(t, err)
	assert.Equal(t, "dev@example.com", u.Email) // stored lowercased

	_, err = s.CreateUser(ctx, uuid.NewString(), "dev@example.com", "hash2")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestGetUser_NotFound(t *testing.T) {
	s := &UserStore{DB: testDB(t)}
	_, err := s.GetUserByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSavedJobs_RoundTrip(t *testing.T) {
	db := testDB(t)
	users := &UserStore{DB: db}
	jobs := &JobStore{DB: db}
	ctx := context.Background()

	u, err := users.CreateUser(ctx, uuid.NewString(), "a@b.co", "h")
	require.NoError(t, err)

	_, err = jobs.UpsertJob(ctx, posting("saved-1"))
	require.NoError(t, err)
	all, err := jobs.ListJobs(ctx, ListJobsOpts{})
	require.NoError(t, err)
	jobID := all[0].ID

	require.NoError(t, users.SaveJob(ctx, u.ID, jobID))
	require.NoError(t, users.SaveJob(ctx, u.ID, jobID)) // idempotent

	saved, err := users.ListSavedJobs(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "saved-1", saved[0].ExternalID)

	require.NoError(t, users.UnsaveJob(ctx, u.ID, jobID))
	saved, err = users.ListSavedJobs(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestPreferences_DefaultsAndUpsert(t *testing.T) {
	db := testDB(t)
	users := &UserStore{DB: db}
	ctx := context.Background()

	u, err := users.CreateUser(ctx, uuid.NewString(), "p@q.co", "h")
	require.NoError(t, err)

	p, err := users.GetPreferences(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, p.RemoteOK)
	assert.Empty(t, p.Keywords)

	p.Keywords = []string{"golang", "backend"}
	p.Locations = []string{"Bogotá"}
	p.RemoteOK = false
	require.NoError(t, users.PutPreferences(ctx, u.ID, p))

	// second write overwrites
	p.Keywords = []string{"golang"}
	require.NoError(t, users.PutPreferences(ctx, u.ID, p))

	got, err := users.GetPreferences(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"golang"}, got.Keywords)
	assert.Equal(t, []string{"Bogotá"}, got.Locations)
	assert.False(t, got.RemoteOK)
}
