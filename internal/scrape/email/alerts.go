package email

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/diegoamorenag/JobPersonilisePortal/internal/domain"
	"github.com/diegoamorenag/JobPersonilisePortal/internal/scrape/util"
)

var reAlertJobID = regexp.MustCompile(`/jobs/view/(?:[^/?#]*-)?(\d+)`)

// LooksLikeJobAlert reports whether an email subject matches the job alert
// notifications we know how to parse.
func LooksLikeJobAlert(subject string) bool {
	s := strings.ToLower(subject)
	if !strings.Contains(s, "job") && !strings.Contains(s, "empleo") {
		return false
	}
	for _, kw := range []string{"alert", "alerta", "new jobs", "nuevos empleos", "opportunities", "oportunidades"} {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// ParseJobAlertHTML extracts job postings from a LinkedIn job alert email
// body. Alert emails reference each listing through several anchors (logo,
// title, footer link), so postings are merged by the numeric job id and the
// longest anchor text wins as the title.
func ParseJobAlertHTML(html string) []domain.JobPosting {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	type draft struct {
		job   domain.JobPosting
		order int
	}
	drafts := map[string]*draft{}
	var order []string

	doc.Find(`a[href*="/jobs/view/"]`).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		m := reAlertJobID.FindStringSubmatch(href)
		if m == nil {
			return
		}
		id := m[1]

		d, ok := drafts[id]
		if !ok {
			d = &draft{job: domain.JobPosting{
				ExternalID: "linkedin-jobs-" + id,
				ApplyLink:  "https://www.linkedin.com/jobs/view/" + id,
			}}
			drafts[id] = d
			order = append(order, id)
		}

		text := util.CleanText(a.Text())
		if len(text) > len(d.job.Title) {
			d.job.Title = text
		}

		// The company and location line sits next to the title anchor,
		// typically "Company · City, Country". Logo anchors carry no text
		// and sit in their own cell, so only text anchors are inspected.
		if text != "" && d.job.Company == "" {
			meta := cardMetaLine(a)
			if company, location, ok := splitMetaLine(meta); ok {
				d.job.Company = company
				d.job.Location = location
			}
		}
	})

	out := make([]domain.JobPosting, 0, len(order))
	for _, id := range order {
		j := drafts[id].job
		if j.Title == "" {
			continue
		}
		out = append(out, j)
	}
	return out
}

// cardMetaLine walks up from the title anchor looking for the first short
// sibling text containing the middle-dot separator alert cards use.
func cardMetaLine(a *goquery.Selection) string {
	node := a
	for depth := 0; depth < 4; depth++ {
		parent := node.Parent()
		if parent.Length() == 0 {
			break
		}
		found := ""
		parent.Children().EachWithBreak(func(_ int, sib *goquery.Selection) bool {
			t := util.CleanText(sib.Text())
			if t != "" && len(t) < 160 && strings.Contains(t, "·") {
				found = t
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
		node = parent
	}
	return ""
}

func splitMetaLine(s string) (company, location string, ok bool) {
	parts := strings.SplitN(s, "·", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	company = util.CleanText(parts[0])
	location = util.CleanText(parts[1])
	return company, location, company != ""
}
