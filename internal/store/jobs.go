package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/diegoamorenag/JobPersonilisePortal/internal/domain"
)

// JobStore persists job postings with upsert-by-external-id as the sole
// primitive.
type JobStore struct {
	DB *sql.DB
}

// UpsertJob inserts the posting or, when the external ID already exists,
// overwrites the earlier row's fields. inserted reports whether the row was
// new. The pool runs a single writer, so the exists-then-upsert pair does
// not race.
func (s *JobStore) UpsertJob(ctx context.Context, job domain.JobPosting) (inserted bool, err error) {
	if job.ExternalID == "" {
		return false, errors.New("missing external id")
	}

	var one int
	err = s.DB.QueryRowContext(ctx,
		`SELECT 1 FROM jobs WHERE external_id = ? LIMIT 1;`, job.ExternalID).Scan(&one)
	switch {
	case err == nil:
		inserted = false
	case errors.Is(err, sql.ErrNoRows):
		inserted = true
	default:
		return false, fmt.Errorf("upsert precheck: %w", err)
	}

	tagsB, _ := json.Marshal(job.Tags)
	if job.Tags == nil {
		tagsB = []byte("[]")
	}

	_, err = s.DB.ExecContext(ctx, `
INSERT INTO jobs (external_id, title, company, location, description, tags, source, apply_link, posted_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(external_id) DO UPDATE SET
	title       = excluded.title,
	company     = excluded.company,
	location    = excluded.location,
	description = excluded.description,
	tags        = excluded.tags,
	source      = excluded.source,
	apply_link  = excluded.apply_link,
	posted_at   = excluded.posted_at,
	updated_at  = strftime('%Y-%m-%dT%H:%M:%fZ','now');`,
		job.ExternalID, job.Title, job.Company, job.Location, job.Description,
		string(tagsB), job.Source, job.ApplyLink, job.PostedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("upsert job: %w", err)
	}
	return inserted, nil
}

// ListJobsOpts filter the jobs listing.
type ListJobsOpts struct {
	Source string
	Search string // matches title or company
	Limit  int
}

func (s *JobStore) ListJobs(ctx context.Context, opts ListJobsOpts) ([]domain.JobPosting, error) {
	q := `SELECT id, external_id, title, company, location, description, tags, source, apply_link, posted_at
	      FROM jobs WHERE 1=1`
	var args []any

	if opts.Source != "" {
		q += ` AND source = ?`
		args = append(args, opts.Source)
	}
	if opts.Search != "" {
		q += ` AND (title LIKE ? OR company LIKE ?)`
		like := "%" + opts.Search + "%"
		args = append(args, like, like)
	}
	q += ` ORDER BY posted_at DESC, id DESC`
	if opts.Limit <= 0 || opts.Limit > 500 {
		opts.Limit = 100
	}
	q += ` LIMIT ?`
	args = append(args, opts.Limit)

	rows, err := s.DB.QueryContext(ctx, q, args...)
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

func (s *JobStore) GetJob(ctx context.Context, id int64) (domain.JobPosting, error) {
	row := s.DB.QueryRowContext(ctx, `
SELECT id, external_id, title, company, location, description, tags, source, apply_link, posted_at
FROM jobs WHERE id = ?;`, id)
	return scanJob(row)
}

func (s *JobStore) DeleteJob(ctx context.Context, id int64) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?;`, id)
	return err
}

func (s *JobStore) CountJobs(ctx context.Context) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs;`).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(r rowScanner) (domain.JobPosting, error) {
	var j domain.JobPosting
	var tagsJSON, postedAt string
	if err := r.Scan(&j.ID, &j.ExternalID, &j.Title, &j.Company, &j.Location,
		&j.Description, &tagsJSON, &j.Source, &j.ApplyLink, &postedAt); err != nil {
		return j, err
	}
	_ = json.Unmarshal([]byte(tagsJSON), &j.Tags)
	if t, err := time.Parse(time.RFC3339, postedAt); err == nil {
		j.PostedAt = t
	}
	return j, nil
}
