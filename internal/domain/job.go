package domain

import "time"

// JobPosting is the normalized unit produced by every source and persisted
// by the store. ExternalID is the sole identity key: two postings with the
// same ExternalID are the same listing, and later writes overwrite earlier
// fields.
type JobPosting struct {
	ID          int64     `json:"id,omitempty"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	ExternalID  string    `json:"externalId"`
	Source      string    `json:"source"`
	ApplyLink   string    `json:"applyLink"`
	PostedAt    time.Time `json:"postedAt"`
}
