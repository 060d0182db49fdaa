package commands

import (
	"strconv"
	"strings"

	"searchlight-backend/lib/configutil"
	"searchlight-backend/lib/serviceutil"
	"searchlight-backend/services/dashboard"
	"searchlight-backend/services/recommend"
	"searchlight-backend/services/reports"

	"github.com/spf13/cobra"
)

var servePort *int

func init() {
	servePort = serveCmd.Flags().Int("port", 0, "Port to listen on, overrides PORT.")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the dashboard api and runs the daily snapshot scheduler.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := serviceutil.SignalContext()

		port := *servePort
		if port == 0 {
			port, _ = strconv.Atoi(configutil.Env("PORT", "8080"))
			if port == 0 {
				port = 8080
			}
		}

		traffic, search := googleClients()
		auditor := newAuditor()
		store, sqlite := openStore()
		defer sqlite.Close()

		engine, err := recommend.NewEngine(recommend.Options{})
		if err != nil {
			serviceutil.Fatal("failed to initialize recommendation engine", err)
		}

		registry := insightsRegistry()
		sites := map[string]dashboard.InsightsAPI{}
		for _, name := range registry.Names() {
			site, err := registry.Get(name)
			if err != nil {
				serviceutil.Fatal("bad sites config", err)
			}
			sites[name] = site
		}

		svc := dashboard.NewService(dashboard.Options{
			Traffic:  traffic,
			Search:   search,
			Auditor:  auditor,
			Insights: registry.Default(),
			Sites:    sites,
			Series:   store,
			Engine:   engine,
		})

		generator := reports.NewGenerator(store, traffic, search, configutil.Env("REPORT_DIR", ""))
		err = generator.StartScheduler(ctx, configutil.Env("SNAPSHOT_AT", "06:00"))
		if err != nil {
			serviceutil.Fatal("failed to start snapshot scheduler", err)
		}

		var origins []string
		if raw := configutil.Env("CORS_ORIGINS", ""); raw != "" {
			origins = strings.Split(raw, ",")
		}
		serviceutil.StartHttpServer(port, dashboard.Router(svc, origins))
	},
}
