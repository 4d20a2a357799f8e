package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replay queued hourly entries once",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer shutdown(cmd.Context(), a)

		out := a.Scheduler.RunSync(cmd.Context())
		if !out.Success {
			return errors.New(out.Message)
		}
		fmt.Fprintln(cmd.OutOrStdout(), out.Message)
		return nil
	},
}

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "List hourly entries waiting for sync",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer shutdown(cmd.Context(), a)

		entries, err := a.Submissions.Entries(cmd.Context())
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No offline entries to sync")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "QUEUE ID\tCAPTURED\tLINE SETUP\tHOUR\tTARGET\tACTUAL\tDEFECTS")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\t%d\t%d\n",
				e.QueueID, e.CapturedAt().Format(time.DateTime), e.LineSetupID, e.HourSlot,
				e.TargetQuantity, e.ActualQuantity, e.DefectQuantity)
		}
		return w.Flush()
	},
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage cached reference data",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached reference data (settings, session and queue are kept)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer shutdown(cmd.Context(), a)

		removed, err := a.Production.ClearCache(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d cached %s\n", removed, plural(removed, "key"))
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
