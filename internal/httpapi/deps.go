package httpapi

import (
	"sync/atomic"

	"github.com/diegoamorenag/JobPersonilisePortal/internal/auth"
	"github.com/diegoamorenag/JobPersonilisePortal/internal/config"
	"github.com/diegoamorenag/JobPersonilisePortal/internal/events"
	"github.com/diegoamorenag/JobPersonilisePortal/internal/scrape"
	"github.com/diegoamorenag/JobPersonilisePortal/internal/scrape/serpapi"
	"github.com/diegoamorenag/JobPersonilisePortal/internal/store"
)

type Deps struct {
	Jobs  *store.JobStore
	Users *store.UserStore

	Svc *scrape.Service
	Hub *events.Hub

	Tokens     *auth.Tokens
	Aggregator *serpapi.Client

	// Atomic store holding config.Config
	CfgVal *atomic.Value

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
}
