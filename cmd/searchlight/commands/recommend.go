package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"searchlight-backend/lib/serviceutil"
	"searchlight-backend/services/recommend"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	recommendArticles *string
	recommendProducts *string
	recommendJSON     *bool
)

func init() {
	recommendArticles = recommendCmd.Flags().String("articles", "articles.json", "Path to the article list json.")
	recommendProducts = recommendCmd.Flags().String("products", "products.json", "Path to the product list json.")
	recommendJSON = recommendCmd.Flags().Bool("json", false, "Print results as json.")
	rootCmd.AddCommand(recommendCmd)
}

func readJSON[T any](path string) (T, error) {
	var out T
	contents, err := os.ReadFile(path)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(contents, &out)
	if err != nil {
		return out, fmt.Errorf("parse %s: %w", path, err)
	}
	return out, nil
}

var recommendCmd = &cobra.Command{
	Use:   "recommend --articles <articles.json> --products <products.json>",
	Short: "Scores article-product matches and prints the recommendations.",
	Run: func(cmd *cobra.Command, args []string) {
		articles, err := readJSON[[]recommend.Article](*recommendArticles)
		if err != nil {
			serviceutil.Fatal("failed to read articles", err)
		}
		products, err := readJSON[[]recommend.Product](*recommendProducts)
		if err != nil {
			serviceutil.Fatal("failed to read products", err)
		}

		engine, err := recommend.NewEngine(recommend.Options{})
		if err != nil {
			serviceutil.Fatal("failed to initialize recommendation engine", err)
		}
		results := engine.RecommendBatch(cmd.Context(), articles, products)

		if *recommendJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			err = enc.Encode(results)
			if err != nil {
				serviceutil.Fatal("failed to encode results", err)
			}
			return
		}

		for _, article := range articles {
			fmt.Printf("%s (%s)\n", article.Title, article.ID)

			recs := results[article.ID]
			if len(recs) == 0 {
				fmt.Println("  no matches above the confidence threshold")
				continue
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Product", "Score", "Confidence", "Reasons"})
			for _, rec := range recs {
				t.AppendRow(table.Row{
					rec.ProductName,
					fmt.Sprintf("%.3f", rec.Score),
					fmt.Sprintf("%.2f", rec.Confidence),
					fmt.Sprintf("%v", rec.Reasons),
				})
			}
			t.SetStyle(table.StyleRounded)
			t.Render()
		}
	},
}
