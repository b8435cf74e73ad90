package computrabajo

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
	"github.com/diegoamorenag/JobPersonilisePortal/internal/scrape/types"
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

const oferta = `
<article class="box_offer">
  <h2 class="fs18"><a class="js-o-link" href="/ofertas-de-trabajo/oferta-de-trabajo-de-analista-de-datos-en-bogota-DC5A2B9E1F4C3D2B1A0F9E8D7C6B5A4D">Analista de Datos</a></h2>
  <p class="dIB fs16"><a class="fc_base">Globant</a><span class="mr10">Bogotá, D.C.</span></p>
  <div class="fs13"><span class="tag base">Tiempo completo</span><span class="tag base">Presencial</span></div>
  <p class="fs13">Hace 5 días</p>
</article>`

func fastCfg(baseURL string) types.Config {
	cfg := types.DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.MaxRetries = 1
	cfg.DelayBetweenRequests = time.Millisecond
	return cfg
}

func TestScrape_ExtractsSpanishListings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("p") != "" {
			fmt.Fprint(w, "<html><body></body></html>")
			return
		}
		fmt.Fprint(w, "<html><body>"+oferta+"</body></html>")
	}))
	defer srv.Close()

	store := newMemStore()
	s := New(fastCfg(srv.URL), store, nil)

	before := time.Now().UTC()
	res, err := s.Scrape(context.Background(), types.Options{Query: "analista", Location: "Bogotá", MaxPages: 2})
	require.NoError(t, err)
	assert.True(t, res.Success)
	require.Len(t, res.Jobs, 1)

	job := res.Jobs[0]
	assert.Equal(t, "Analista de Datos", job.Title)
	assert.Equal(t, "Globant", job.Company)
	assert.Equal(t, "Bogotá, D.C.", job.Location)
	assert.Equal(t, "Computrabajo", job.Source)
	assert.Equal(t, []string{"Tiempo completo", "Presencial"}, job.Tags)
	// relative apply link resolved against the base URL
	assert.Equal(t, srv.URL+"/ofertas-de-trabajo/oferta-de-trabajo-de-analista-de-datos-en-bogota-DC5A2B9E1F4C3D2B1A0F9E8D7C6B5A4D", job.ApplyLink)
	// external id derived from the hex offer token
	assert.Equal(t, "computrabajo-DC5A2B9E1F4C3D2B1A0F9E8D7C6B5A4D", job.ExternalID)

	// "Hace 5 días" ~ 5 days before now (day component)
	want := before.AddDate(0, 0, -5)
	assert.WithinDuration(t, want, job.PostedAt, time.Minute)

	assert.Equal(t, 1, res.Stats.Saved)
	assert.Len(t, store.jobs, 1)
}

func TestBuildSearchURL(t *testing.T) {
	s := New(types.DefaultConfig(), newMemStore(), nil)

	assert.Equal(t,
		"https://co.computrabajo.com/trabajo-de-analista-de-datos-en-bogota",
		s.buildSearchURL(types.Options{Query: "Analista de Datos", Location: "bogota"}, 1))

	assert.Equal(t,
		"https://co.computrabajo.com/trabajo-de-developer?p=3",
		s.buildSearchURL(types.Options{Query: "developer"}, 3))
}

func TestScrape_RepeatedRunDedupesByOfferToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>"+oferta+"</body></html>")
	}))
	defer srv.Close()

	store := newMemStore()
	s := New(fastCfg(srv.URL), store, nil)

	res1, err := s.Scrape(context.Background(), types.Options{Query: "analista", MaxPages: 1})
	require.NoError(t, err)
	res2, err := s.Scrape(context.Background(), types.Options{Query: "analista", MaxPages: 1})
	require.NoError(t, err)

	assert.Equal(t, 1, res1.Stats.Saved)
	assert.Equal(t, 1, res2.Stats.Duplicates)
	assert.Zero(t, res2.Stats.Saved)
	assert.Len(t, store.jobs, 1)
}
