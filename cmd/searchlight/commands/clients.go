package commands

import (
	"database/sql"
	"os"
	"strings"

	"searchlight-backend/lib/configutil"
	"searchlight-backend/lib/ga4"
	"searchlight-backend/lib/googleauth"
	"searchlight-backend/lib/gsc"
	"searchlight-backend/lib/openai"
	"searchlight-backend/lib/serviceutil"
	"searchlight-backend/services/insights"
	"searchlight-backend/services/reports"
	"searchlight-backend/services/reports/db"
	"searchlight-backend/services/seoaudit"

	_ "modernc.org/sqlite"
)

func tokenSource() googleauth.TokenSource {
	creds, err := googleauth.CredentialsFromEnv()
	if err != nil {
		serviceutil.Fatal("failed to read google credentials", err)
	}
	tokens, err := googleauth.NewTokenSource(
		creds,
		googleauth.ScopeAnalyticsReadonly,
		googleauth.ScopeWebmastersReadonly,
	)
	if err != nil {
		serviceutil.Fatal("failed to initialize google token source", err)
	}
	return tokens
}

// googleClients builds the analytics and search console clients off the
// service account in the environment.
func googleClients() (*ga4.Client, *gsc.Client) {
	tokens := tokenSource()
	propertyID := configutil.Env("GA4_PROPERTY_ID", "")
	siteURL := configutil.Env("GSC_SITE_URL", "")
	return ga4.NewClient(tokens, propertyID), gsc.NewClient(tokens, siteURL)
}

func newAuditor() *seoaudit.Fetcher {
	fetcher, err := seoaudit.NewFetcher()
	if err != nil {
		serviceutil.Fatal("failed to initialize page fetcher", err)
	}
	return fetcher
}

// insightsRegistry builds one assistant per configured site. sites come
// from sites.json5 when present, otherwise a single site from the
// environment.
func insightsRegistry() *insights.Registry {
	config, err := configutil.ReadConfig[insights.SitesConfig]("sites.json5")
	if os.IsNotExist(err) {
		config = insights.SitesConfig{Sites: []insights.Site{{
			Name:        configutil.Env("SITE_NAME", "default"),
			GA4Property: configutil.Env("GA4_PROPERTY_ID", ""),
			GSCSiteURL:  configutil.Env("GSC_SITE_URL", ""),
		}}}
	} else if err != nil {
		serviceutil.Fatal("failed to read sites config", err)
	}

	tokens := tokenSource()
	auditor := newAuditor()
	llm := openai.NewClient(configutil.Env("OPENAI_API_KEY", ""))
	model := configutil.Env("OPENAI_MODEL", "")

	registry := insights.NewRegistry()
	for _, site := range config.Sites {
		registry.Register(site.Name, insights.NewService(insights.Options{
			Traffic: ga4.NewClient(tokens, site.GA4Property),
			Search:  gsc.NewClient(tokens, site.GSCSiteURL),
			Auditor: auditor,
			LLM:     llm,
			Model:   model,
		}))
	}
	if config.Default != "" {
		err = registry.SetDefault(config.Default)
		if err != nil {
			serviceutil.Fatal("bad sites config", err)
		}
	}
	return registry
}

// openStore opens the snapshot database, creating the schema on first
// use.
func openStore() (reports.Store, *sql.DB) {
	path := configutil.Env("SEARCHLIGHT_DB", "searchlight.db")
	sqlite, err := sql.Open("sqlite", path)
	if err != nil {
		serviceutil.Fatal("failed to open snapshot database", err)
	}
	// sqlite only supports one writer, see
	// https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	sqlite.SetMaxOpenConns(1)
	_, err = sqlite.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		serviceutil.Fatal("failed to enable WAL mode", err)
	}
	_, err = sqlite.Exec(db.Schema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		serviceutil.Fatal("failed to apply snapshot schema", err)
	}
	return reports.NewStore(sqlite), sqlite
}

func newGenerator() (*reports.Generator, reports.Store, *sql.DB) {
	store, sqlite := openStore()
	traffic, search := googleClients()
	return reports.NewGenerator(store, traffic, search, configutil.Env("REPORT_DIR", "")), store, sqlite
}
