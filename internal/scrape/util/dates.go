package util

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var relDateRe = regexp.MustCompile(`(?i)(?:hace\s+)?(\d+)\s*(hour|hours|hora|horas|day|days|d[ií]a|d[ií]as|week|weeks|semana|semanas|month|months|mes|meses|minute|minutes|minuto|minutos)\b`)

// ParseRelativeDate turns relative-date text like "3 days ago" or
// "hace 5 días" into an absolute timestamp, anchored at now. Unparseable or
// empty text yields now: by the time a listing reaches us with no usable
// date, scrape time is the best estimate we have.
func ParseRelativeDate(s string, now time.Time) time.Time {
	s = CleanText(s)
	if s == "" {
		return now
	}

	low := strings.ToLower(s)
	switch {
	case strings.Contains(low, "just now"), strings.Contains(low, "today"),
		strings.Contains(low, "hoy"), strings.Contains(low, "ahora"):
		return now
	case strings.Contains(low, "yesterday"), strings.Contains(low, "ayer"):
		return now.AddDate(0, 0, -1)
	}

	m := relDateRe.FindStringSubmatch(s)
	if m == nil {
		return now
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 0 {
		return now
	}

	unit := strings.ToLower(m[2])
	switch {
	case strings.HasPrefix(unit, "minut"):
		return now.Add(-time.Duration(n) * time.Minute)
	case strings.HasPrefix(unit, "hour"), strings.HasPrefix(unit, "hora"):
		return now.Add(-time.Duration(n) * time.Hour)
	case strings.HasPrefix(unit, "day"), strings.HasPrefix(unit, "día"), strings.HasPrefix(unit, "dia"):
		return now.AddDate(0, 0, -n)
	case strings.HasPrefix(unit, "week"), strings.HasPrefix(unit, "semana"):
		return now.AddDate(0, 0, -7*n)
	case strings.HasPrefix(unit, "month"), strings.HasPrefix(unit, "mes"):
		return now.AddDate(0, -n, 0)
	}
	return now
}
