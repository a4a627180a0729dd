// Copyright 2025 The Refuge Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var runsOptions = struct {
	dbPath string
	limit  int
	offset int
}{}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect stored runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs",
	RunE: func(_ *cobra.Command, _ []string) error {
		db, repo, err := openDatabase(runsOptions.dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		count, err := repo.CountRuns()
		if err != nil {
			return err
		}

		runs, err := repo.ListRuns(runsOptions.limit, runsOptions.offset)
		if err != nil {
			return err
		}

		fmt.Printf("%d run(s) stored\n", count)

		a, b, c, d := strings.Repeat("─", 36), strings.Repeat("─", 19), strings.Repeat("─", 24), strings.Repeat("─", 4)
		fmt.Printf("╭─%s─┬─%s─┬─%s─┬─%s─╮\n", a, b, c, d)
		fmt.Printf("│ %-36s │ %-19s │ %-24s │ %-4s │\n", "Id", "When", "Location", "Conf")
		fmt.Printf("├─%s─┼─%s─┼─%s─┼─%s─┤\n", a, b, c, d)

		for _, run := range runs {
			location := run.Location
			if len(location) > 24 {
				location = location[:21] + "..."
			}

			fmt.Printf("│ %-36s │ %-19s │ %-24s │ %-4s │\n",
				run.ID, run.CreatedAt.Format("2006-01-02 15:04:05"), location, run.Confidence)
		}

		fmt.Printf("╰─%s─┴─%s─┴─%s─┴─%s─╯\n", a, b, c, d)

		return nil
	},
}

var runsExportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Export one run with its results as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		db, repo, err := openDatabase(runsOptions.dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		run, err := repo.GetRun(args[0])
		if err != nil {
			return err
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		return encoder.Encode(run)
	},
}

func init() {
	runsCmd.PersistentFlags().StringVar(&runsOptions.dbPath, "db-path", defaultDBPath(), "directory holding refuge.duckdb")
	runsListCmd.Flags().IntVar(&runsOptions.limit, "limit", 50, "maximum runs to list")
	runsListCmd.Flags().IntVar(&runsOptions.offset, "offset", 0, "runs to skip")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsExportCmd)
	rootCmd.AddCommand(runsCmd)
}
