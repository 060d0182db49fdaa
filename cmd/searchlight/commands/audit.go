package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"searchlight-backend/lib/configutil"
	"searchlight-backend/lib/pagespeed"
	"searchlight-backend/lib/serviceutil"
	"searchlight-backend/services/seoaudit"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	auditJSON      *bool
	auditPagespeed *bool
	auditStrategy  *string
)

func init() {
	auditJSON = auditCmd.Flags().Bool("json", false, "Print the audit as json instead of text.")
	auditPagespeed = auditCmd.Flags().Bool("pagespeed", false, "Also run a PageSpeed Insights lighthouse audit.")
	auditStrategy = auditCmd.Flags().String("strategy", "mobile", "PageSpeed strategy, mobile or desktop.")
	rootCmd.AddCommand(auditCmd)
}

var auditCmd = &cobra.Command{
	Use:   "audit <url> [--json] [--pagespeed]",
	Short: "Fetches a page and audits its seo quality.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		audit, err := newAuditor().Run(cmd.Context(), args[0])
		if err != nil {
			serviceutil.Fatal("audit failed", err)
		}

		var speed *pagespeed.Result
		if *auditPagespeed {
			client := pagespeed.NewClient(configutil.Env("PAGESPEED_API_KEY", ""))
			speed, err = client.Audit(cmd.Context(), args[0], pagespeed.Strategy(*auditStrategy))
			if err != nil {
				serviceutil.Fatal("pagespeed audit failed", err)
			}
		}

		if *auditJSON {
			out := map[string]any{"audit": audit}
			if speed != nil {
				out["pagespeed"] = speed
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			err = enc.Encode(out)
			if err != nil {
				serviceutil.Fatal("failed to encode audit", err)
			}
			return
		}

		fmt.Println(seoaudit.RenderText(audit))
		if speed != nil {
			printPagespeed(speed)
		}
	},
}

func printPagespeed(speed *pagespeed.Result) {
	fmt.Printf("\nPageSpeed Insights (%s)\n", speed.Strategy)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Category", "Score"})
	t.AppendRows([]table.Row{
		{"Performance", fmt.Sprintf("%.0f", speed.Performance)},
		{"Accessibility", fmt.Sprintf("%.0f", speed.Accessibility)},
		{"Best Practices", fmt.Sprintf("%.0f", speed.BestPractices)},
		{"SEO", fmt.Sprintf("%.0f", speed.SEO)},
	})
	t.SetStyle(table.StyleRounded)
	t.Render()

	fmt.Println("FCP:", speed.FirstContentfulPaint)
	fmt.Println("LCP:", speed.LargestContentfulPaint)
	fmt.Println("CLS:", speed.CumulativeLayoutShift)
	fmt.Println("TBT:", speed.TotalBlockingTime)
}
