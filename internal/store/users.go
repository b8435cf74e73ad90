package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/diegoamorenag/JobPersonilisePortal/internal/domain"
)

var (
	ErrUserExists   = errors.New("email already registered")
	ErrUserNotFound = errors.New("user not found")
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Preferences capture a user's saved search defaults.
type Preferences struct {
	Keywords  []string `json:"keywords"`
	Locations []string `json:"locations"`
	Sources   []string `json:"sources"`
	RemoteOK  bool     `json:"remoteOk"`
}

// UserStore persists accounts, saved jobs and preferences.
type UserStore struct {
	DB *sql.DB
}

func (s *UserStore) CreateUser(ctx context.Context, id, email, passwordHash string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash) VALUES (?, ?, ?);`,
		id, email, passwordHash)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return User{}, ErrUserExists
		}
		return User{}, err
	}
	return s.GetUserByID(ctx, id)
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return s.scanUser(s.DB.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = ?;`, email))
}

func (s *UserStore) GetUserByID(ctx context.Context, id string) (User, error) {
	return s.scanUser(s.DB.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE id = ?;`, id))
}

func (s *UserStore) scanUser(row *sql.Row) (User, error) {
	var u User
	var created string
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return u, ErrUserNotFound
		}
		return u, err
	}
	if t, err := time.Parse("2006-01-02T15:04:05.000Z", created); err == nil {
		u.CreatedAt = t
	}
	return u, nil
}

// SaveJob bookmarks a job for a user; saving twice is a no-op.
func (s *UserStore) SaveJob(ctx context.Context, userID string, jobID int64) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT OR IGNORE INTO saved_jobs (user_id, job_id) VALUES (?, ?);`, userID, jobID)
	return err
}

func (s *UserStore) UnsaveJob(ctx context.Context, userID string, jobID int64) error {
	_, err := s.DB.ExecContext(ctx,
		`DELETE FROM saved_jobs WHERE user_id = ? AND job_id = ?;`, userID, jobID)
	return err
}

func (s *UserStore) ListSavedJobs(ctx context.Context, userID string) ([]domain.JobPosting, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT j.id, j.external_id, j.title, j.company, j.location, j.description, j.tags, j.source, j.apply_link, j.posted_at
FROM saved_jobs sj
JOIN jobs j ON j.id = sj.job_id
WHERE sj.user_id = ?
ORDER BY sj.created_at DESC;`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.JobPosting{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// GetPreferences returns the stored preferences, or zero-value defaults
// when the user never set any.
func (s *UserStore) GetPreferences(ctx context.Context, userID string) (Preferences, error) {
	p := Preferences{Keywords: []string{}, Locations: []string{}, Sources: []string{}, RemoteOK: true}

	var kw, loc, src string
	var remote int
	err := s.DB.QueryRowContext(ctx,
		`SELECT keywords, locations, sources, remote_ok FROM preferences WHERE user_id = ?;`,
		userID).Scan(&kw, &loc, &src, &remote)
	if errors.Is(err, sql.ErrNoRows) {
		return p, nil
	}
	if err != nil {
		return p, err
	}

	_ = json.Unmarshal([]byte(kw), &p.Keywords)
	_ = json.Unmarshal([]byte(loc), &p.Locations)
	_ = json.Unmarshal([]byte(src), &p.Sources)
	p.RemoteOK = remote != 0
	return p, nil
}

func (s *UserStore) PutPreferences(ctx context.Context, userID string, p Preferences) error {
	kw, _ := json.Marshal(p.Keywords)
	loc, _ := json.Marshal(p.Locations)
	src, _ := json.Marshal(p.Sources)
	remote := 0
	if p.RemoteOK {
		remote = 1
	}

	_, err := s.DB.ExecContext(ctx, `
INSERT INTO preferences (user_id, keywords, locations, sources, remote_ok)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
	keywords   = excluded.keywords,
	locations  = excluded.locations,
	sources    = excluded.sources,
	remote_ok  = excluded.remote_ok,
	updated_at = strftime('%Y-%m-%dT%H:%M:%fZ','now');`,
		userID, string(kw), string(loc), string(src), remote)
	return err
}
