package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"stashwatch/internal/alert"
	"stashwatch/internal/validate"
)

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration and the history store against the watch list",
		Args:  cobra.NoArgs,
		RunE:  runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := openApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	fmt.Fprintf(os.Stdout, "Config:   %s\n", configPath)
	fmt.Fprintf(os.Stdout, "Players:  %d\n", a.watch.Len())
	fmt.Fprintf(os.Stdout, "Webhook:  %s\n", alert.RedactURL(a.cfg.WebhookURL))
	fmt.Fprintf(os.Stdout, "Lookback: %s\n", a.cfg.Lookback)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := a.store.Ping(pingCtx); err != nil {
		return fmt.Errorf("history store unreachable: %w", err)
	}

	report, err := validate.Run(ctx, a.store, a.watch, a.cfg.Lookback)
	if err != nil {
		return err
	}

	var errorIssues []validate.Issue
	var warnIssues []validate.Issue
	for _, issue := range report.Issues {
		switch issue.Severity {
		case validate.SeverityError:
			errorIssues = append(errorIssues, issue)
		case validate.SeverityWarn:
			warnIssues = append(warnIssues, issue)
		}
	}

	if len(errorIssues) == 0 && len(warnIssues) == 0 {
		fmt.Fprintln(os.Stdout, "No issues found.")
		return nil
	}

	if len(errorIssues) > 0 {
		fmt.Fprintf(os.Stdout, "\nErrors (%d):\n", len(errorIssues))
		printIssues(os.Stdout, errorIssues)
	}
	if len(warnIssues) > 0 {
		fmt.Fprintf(os.Stdout, "\nWarnings (%d):\n", len(warnIssues))
		printIssues(os.Stdout, warnIssues)
	}

	if len(errorIssues) > 0 {
		return fmt.Errorf("validation found errors")
	}
	return nil
}

func printIssues(out io.Writer, issues []validate.Issue) {
	for _, issue := range issues {
		if issue.Player != "" {
			fmt.Fprintf(out, "  - %s: %s (%s)\n", issue.Player, issue.Message, issue.Code)
			continue
		}
		fmt.Fprintf(out, "  - %s (%s)\n", issue.Message, issue.Code)
	}
}
