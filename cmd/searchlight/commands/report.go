package commands

import (
	"fmt"
	"os"
	"strings"

	"searchlight-backend/lib/configutil"
	"searchlight-backend/lib/notion"
	"searchlight-backend/lib/serviceutil"
	"searchlight-backend/lib/timezone"
	"searchlight-backend/services/reports"

	"github.com/guptarohit/asciigraph"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	reportDays   *int
	reportEmail  *string
	reportNotion *bool
	reportOut    *bool
)

func init() {
	reportDays = reportCmd.Flags().Int("days", 30, "Trailing window of the report in days.")
	reportEmail = reportCmd.Flags().String("email", "", "Comma separated recipients to mail the report to.")
	reportNotion = reportCmd.Flags().Bool("notion", false, "Publish the report to the notion report database.")
	reportOut = reportCmd.Flags().Bool("out", false, "Write the report markdown to the report directory.")
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report [--days <n>] [--email <a,b>] [--notion] [--out]",
	Short: "Prints the traffic and search summary with a click trend chart.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		generator, store, sqlite := newGenerator()
		defer sqlite.Close()

		summary, err := generator.Summary(ctx, *reportDays)
		if err != nil {
			serviceutil.Fatal("failed to build summary report", err)
		}

		overview := table.NewWriter()
		overview.SetOutputMirror(os.Stdout)
		overview.AppendHeader(table.Row{"Metric", "Value"})
		overview.AppendRows([]table.Row{
			{"セッション", fmt.Sprintf("%.0f", summary.Traffic.Sessions)},
			{"ユーザー", fmt.Sprintf("%.0f", summary.Traffic.Users)},
			{"ページビュー", fmt.Sprintf("%.0f", summary.Traffic.PageViews)},
			{"直帰率", fmt.Sprintf("%.1f%%", summary.Traffic.BounceRate*100)},
			{"クリック", fmt.Sprintf("%.0f", summary.Search.Clicks)},
			{"インプレッション", fmt.Sprintf("%.0f", summary.Search.Impressions)},
			{"CTR", fmt.Sprintf("%.2f%%", summary.Search.Ctr)},
			{"平均順位", fmt.Sprintf("%.1f", summary.Search.Position)},
		})
		overview.SetStyle(table.StyleRounded)
		overview.Render()

		if len(summary.TopPages) > 0 {
			pages := table.NewWriter()
			pages.SetOutputMirror(os.Stdout)
			pages.AppendHeader(table.Row{"Page", "Clicks", "CTR", "Position"})
			for _, page := range summary.TopPages {
				pages.AppendRow(table.Row{
					page.Key,
					fmt.Sprintf("%.0f", page.Clicks),
					fmt.Sprintf("%.2f%%", page.Ctr),
					fmt.Sprintf("%.1f", page.Position),
				})
			}
			pages.SetStyle(table.StyleRounded)
			pages.Render()
		}

		printClickTrend(cmd, store)

		for _, rec := range summary.Recommendations {
			fmt.Println("-", rec)
		}

		if *reportOut {
			path, err := generator.WriteMarkdown(ctx, summary)
			if err != nil {
				serviceutil.Fatal("failed to write report markdown", err)
			}
			fmt.Println("wrote", path)
		}

		if *reportEmail != "" {
			smtp, err := reports.SmtpConfigFromEnv()
			if err != nil {
				serviceutil.Fatal("failed to read smtp config", err)
			}
			to := strings.Split(*reportEmail, ",")
			err = reports.NewMailer(smtp).SendSummary(ctx, to, summary)
			if err != nil {
				serviceutil.Fatal("failed to mail report", err)
			}
			fmt.Println("mailed", strings.Join(to, ", "))
		}

		if *reportNotion {
			token := configutil.Env("NOTION_TOKEN", "")
			databaseID := configutil.Env("NOTION_DATABASE_ID", "")
			if token == "" || databaseID == "" {
				serviceutil.Fatal("notion publishing", fmt.Errorf("NOTION_TOKEN and NOTION_DATABASE_ID must be set"))
			}
			pageID, err := reports.PublishToNotion(ctx, notion.NewClient(token), databaseID, summary)
			if err != nil {
				serviceutil.Fatal("failed to publish to notion", err)
			}
			fmt.Println("published notion page", pageID)
		}
	},
}

func printClickTrend(cmd *cobra.Command, store reports.Store) {
	since := timezone.Now().AddDate(0, 0, -*reportDays)
	points, err := store.PullSeries(cmd.Context(), reports.SourceSearch, "clicks", since)
	if err != nil || len(points) < 2 {
		return
	}

	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	fmt.Println(asciigraph.Plot(values,
		asciigraph.Height(10),
		asciigraph.Caption(fmt.Sprintf("clicks, last %d days", *reportDays)),
	))
}
