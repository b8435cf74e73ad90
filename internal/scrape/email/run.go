package email

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/emersion/go-imap/v2"

	"github.com/diegoamorenag/JobPersonilisePortal/internal/domain"
	"github.com/diegoamorenag/JobPersonilisePortal/internal/scrape/base"
)

// Config holds the IMAP connection settings for one mailbox.
type Config struct {
	Addr     string // host:port
	Username string
	Password string
	Mailbox  string        // default INBOX
	MaxMsgs  int           // default 25
	Lookback time.Duration // default 7 days
}

func (c Config) withDefaults() Config {
	if c.Mailbox == "" {
		c.Mailbox = "INBOX"
	}
	if c.MaxMsgs <= 0 {
		c.MaxMsgs = 25
	}
	if c.Lookback <= 0 {
		c.Lookback = 7 * 24 * time.Hour
	}
	return c
}

// Ingestor reads job alert emails and persists the postings they carry.
type Ingestor struct {
	Cfg   Config
	Store base.JobStore
}

func NewIngestor(cfg Config, store base.JobStore) *Ingestor {
	return &Ingestor{Cfg: cfg.withDefaults(), Store: store}
}

// RunOnce connects, ingests unseen alert emails, marks processed messages
// seen and disconnects. Stats cover the postings found across all parsed
// alerts in this pass.
func (in *Ingestor) RunOnce(ctx context.Context) (domain.RunStats, error) {
	var stats domain.RunStats

	ctx, cancel := context.WithTimeout(ctx, 120*time.Second)
	defer cancel()

	c, err := dialAndLogin(ctx, in.Cfg.Addr, in.Cfg.Username, in.Cfg.Password)
	if err != nil {
		return stats, err
	}
	defer logoutAndClose(c)

	if _, err := c.Select(in.Cfg.Mailbox, &imap.SelectOptions{ReadOnly: false}).Wait(); err != nil {
		return stats, fmt.Errorf("imap select %s: %w", in.Cfg.Mailbox, err)
	}

	msgs, err := fetchUnseen(ctx, c, in.Cfg.MaxMsgs, time.Now().Add(-in.Cfg.Lookback))
	if err != nil {
		return stats, err
	}
	if len(msgs) == 0 {
		log.Printf("[email] no unseen messages in %s", in.Cfg.Mailbox)
		return stats, nil
	}

	var processed []imap.UID
	for _, m := range msgs {
		if !LooksLikeJobAlert(m.Subject) || m.HTML == "" {
			continue
		}
		jobs := ParseJobAlertHTML(m.HTML)
		if len(jobs) == 0 {
			continue
		}
		for i := range jobs {
			jobs[i].Source = "LinkedIn Jobs"
			if jobs[i].PostedAt.IsZero() && !m.Date.IsZero() {
				jobs[i].PostedAt = m.Date
			}
		}
		s := in.save(ctx, jobs)
		stats.Saved += s.Saved
		stats.Duplicates += s.Duplicates
		stats.Failed += s.Failed
		stats.Total += s.Total
		processed = append(processed, m.UID)
		log.Printf("[email] %q: %d postings (%d new)", m.Subject, s.Total, s.Saved)
	}

	if err := markSeen(c, processed); err != nil {
		return stats, err
	}
	return stats, nil
}

func (in *Ingestor) save(ctx context.Context, jobs []domain.JobPosting) domain.RunStats {
	var s domain.RunStats
	for _, j := range jobs {
		if j.Title == "" || j.ExternalID == "" {
			s.Failed++
			s.Total++
			continue
		}
		inserted, err := in.Store.UpsertJob(ctx, j)
		switch {
		case err != nil:
			s.Failed++
			log.Printf("[email] upsert %s: %v", j.ExternalID, err)
		case inserted:
			s.Saved++
		default:
			s.Duplicates++
		}
		s.Total++
	}
	return s
}
