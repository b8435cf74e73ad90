package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseRelativeDate(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"days ago", "3 days ago", now.AddDate(0, 0, -3)},
		{"one day", "1 day ago", now.AddDate(0, 0, -1)},
		{"hours ago", "5 hours ago", now.Add(-5 * time.Hour)},
		{"weeks ago", "2 weeks ago", now.AddDate(0, 0, -14)},
		{"months ago", "1 month ago", now.AddDate(0, -1, 0)},
		{"minutes ago", "30 minutes ago", now.Add(-30 * time.Minute)},
		{"spanish days", "hace 5 días", now.AddDate(0, 0, -5)},
		{"spanish days unaccented", "hace 2 dias", now.AddDate(0, 0, -2)},
		{"spanish hours", "Hace 4 horas", now.Add(-4 * time.Hour)},
		{"yesterday", "yesterday", now.AddDate(0, 0, -1)},
		{"ayer", "Ayer", now.AddDate(0, 0, -1)},
		{"today", "today", now},
		{"empty", "", now},
		{"garbage", "posted recently", now},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRelativeDate(tt.in, now))
		})
	}
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		href string
		want string
	}{
		{"absolute passthrough", "https://co.computrabajo.com", "https://example.com/x", "https://example.com/x"},
		{"relative path", "https://co.computrabajo.com", "/ofertas-de-trabajo/oferta-123", "https://co.computrabajo.com/ofertas-de-trabajo/oferta-123"},
		{"empty", "https://example.com", "", ""},
		{"bad base", "://", "/jobs/1", "/jobs/1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveURL(tt.base, tt.href))
		})
	}
}
