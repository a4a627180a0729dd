// Copyright 2025 The Refuge Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openrefuge/refuge/finder"
	"github.com/openrefuge/refuge/geocode"
	"github.com/openrefuge/refuge/store"
)

var serveOptions = struct {
	addr   string
	dbPath string
}{}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(_ *cobra.Command, _ []string) error {
		serperKey := os.Getenv("SERPER_API_KEY")
		if serperKey == "" {
			return fmt.Errorf("SERPER_API_KEY is not set")
		}

		userAgent := fmt.Sprintf("refuge/%s (+https://github.com/openrefuge/refuge)", Version)

		// The server shares one DuckDB-backed geocode cache across
		// requests so repeated locations skip the provider.
		db, _, err := openDatabase(serveOptions.dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		resolver := geocode.NewResolver(geocode.NewNominatimGeocoder(userAgent),
			geocode.WithCache(store.NewGeocodeCache(db)))

		cfg := finder.Config{
			SearchProvider: finder.NewSerperClient(serperKey),
			Geolocator:     resolver,
			Fetcher:        finder.NewHTTPPageFetcher(userAgent),
		}

		if openaiKey := os.Getenv("OPENAI_API_KEY"); openaiKey != "" {
			cfg.Scorer = finder.NewChatScorer(openaiKey)
		}

		f, err := finder.New(cfg)
		if err != nil {
			return err
		}

		return finder.NewServer(f, serveOptions.addr).Run()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveOptions.addr, "addr", "localhost:8080", "listen address")
	serveCmd.Flags().StringVar(&serveOptions.dbPath, "db-path", defaultDBPath(), "directory holding refuge.duckdb")

	rootCmd.AddCommand(serveCmd)
}
