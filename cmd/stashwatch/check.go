package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"stashwatch/internal/history"
)

func checkCmd() *cobra.Command {
	var loc history.Location
	var actor string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Show whether a location is indexed and who stocked it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(loc.World) == "" {
				return fmt.Errorf("--world is required")
			}
			return runCheck(cmd.Context(), loc, actor)
		},
	}
	cmd.Flags().StringVar(&loc.World, "world", "", "World name")
	cmd.Flags().IntVar(&loc.X, "x", 0, "Block x coordinate")
	cmd.Flags().IntVar(&loc.Y, "y", 0, "Block y coordinate")
	cmd.Flags().IntVar(&loc.Z, "z", 0, "Block z coordinate")
	cmd.Flags().StringVar(&actor, "actor", "", "Player to leave out of the attribution")
	return cmd
}

func runCheck(ctx context.Context, loc history.Location, actor string) error {
	a, err := openApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	if err := a.buildIndex(ctx); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Location: %s\n", loc)
	if !a.index.Lookup(loc) {
		fmt.Fprintln(os.Stdout, "Indexed:  no")
		return nil
	}
	fmt.Fprintln(os.Stdout, "Indexed:  yes")

	correlator, err := a.correlator(nil)
	if err != nil {
		return err
	}
	users, err := correlator.Attribute(ctx, actor, loc)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Fprintln(os.Stdout, "Stocked by: nobody else")
		return nil
	}
	fmt.Fprintf(os.Stdout, "Stocked by: %s\n", strings.Join(users, ", "))
	return nil
}
