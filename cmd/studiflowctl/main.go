package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiFlag string
	rootCmd = &cobra.Command{
		Use:   "studiflowctl",
		Short: "CLI client for the StudiFlow REST API",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "StudiFlow service base URL")

	stateCmd := &cobra.Command{
		Use:   "state",
		Short: "Print the full application state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runState(apiFlag, os.Stdout)
		},
	}
	rootCmd.AddCommand(stateCmd)

	chatCmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Send a message to the assistant",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(apiFlag, args, os.Stdout)
		},
	}
	rootCmd.AddCommand(chatCmd)

	logCmd := &cobra.Command{
		Use:   "log",
		Short: "Record an activity log",
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, _ := cmd.Flags().GetString("type")
			title, _ := cmd.Flags().GetString("title")
			subject, _ := cmd.Flags().GetString("subject")
			minutes, _ := cmd.Flags().GetInt("minutes")
			return runLog(apiFlag, typ, title, subject, minutes, os.Stdout)
		},
	}
	logCmd.Flags().StringP("type", "t", "Study", "Activity type")
	logCmd.Flags().String("title", "", "Log title (defaults to the type)")
	logCmd.Flags().StringP("subject", "s", "", "Subject ID")
	logCmd.Flags().IntP("minutes", "m", 0, "Duration in minutes (required)")
	_ = logCmd.MarkFlagRequired("minutes")
	rootCmd.AddCommand(logCmd)

	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the analytics summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(apiFlag, os.Stdout)
		},
	}
	rootCmd.AddCommand(summaryCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
