package commands

import (
	"fmt"

	"searchlight-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(snapshotCmd)
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Fetches yesterday's metrics and stores them as the daily snapshot.",
	Run: func(cmd *cobra.Command, args []string) {
		generator, _, sqlite := newGenerator()
		defer sqlite.Close()

		err := generator.Daily(cmd.Context())
		if err != nil {
			serviceutil.Fatal("daily snapshot failed", err)
		}
		fmt.Println("snapshot stored")
	},
}
