package commands

import (
	"fmt"
	"os"

	"searchlight-backend/lib/serviceutil"
	"searchlight-backend/services/htmlgen"

	"github.com/spf13/cobra"
)

var convertOut *string

func init() {
	convertOut = convertCmd.Flags().StringP("out", "o", "", "Output html path, stdout when omitted.")
	rootCmd.AddCommand(convertCmd)
}

var convertCmd = &cobra.Command{
	Use:   "convert <in.csv> [-o out.html]",
	Short: "Converts a tag-typed article csv into the storefront html document.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		in, err := os.Open(args[0])
		if err != nil {
			serviceutil.Fatal("failed to open csv", err)
		}
		defer in.Close()

		article, err := htmlgen.ParseCSV(in)
		if err != nil {
			serviceutil.Fatal("failed to parse csv", err)
		}

		out := os.Stdout
		if *convertOut != "" {
			out, err = os.Create(*convertOut)
			if err != nil {
				serviceutil.Fatal("failed to create output file", err)
			}
			defer out.Close()
		}

		err = htmlgen.Render(out, article)
		if err != nil {
			serviceutil.Fatal("failed to render html", err)
		}
		if *convertOut != "" {
			fmt.Println("wrote", *convertOut)
		}
	},
}
