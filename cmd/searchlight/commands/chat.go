package commands

import (
	"fmt"
	"os"

	"searchlight-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

var (
	chatStream *bool
	chatSite   *string
)

func init() {
	chatStream = chatCmd.Flags().Bool("stream", false, "Stream tokens as they arrive.")
	chatSite = chatCmd.Flags().String("site", "", "Site name from sites.json5, default site when omitted.")
	rootCmd.AddCommand(chatCmd)
}

var chatCmd = &cobra.Command{
	Use:   "chat <question> [--stream] [--site name]",
	Short: "Asks the analytics assistant a question over the site's data.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		registry := insightsRegistry()
		svc, err := registry.Get(*chatSite)
		if err != nil {
			serviceutil.Fatal(fmt.Sprintf("no such site, configured sites: %v", registry.Names()), err)
		}

		if *chatStream {
			stream, err := svc.AskStream(cmd.Context(), args[0])
			if err != nil {
				serviceutil.Fatal("failed to start chat stream", err)
			}
			for chunk := range stream {
				if chunk.Err != nil {
					fmt.Fprintln(os.Stderr)
					serviceutil.Fatal("chat stream failed", chunk.Err)
				}
				fmt.Print(chunk.Delta)
			}
			fmt.Println()
			return
		}

		answer, err := svc.Ask(cmd.Context(), args[0])
		if err != nil {
			serviceutil.Fatal("chat failed", err)
		}
		fmt.Println(answer)
	},
}
