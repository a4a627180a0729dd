// Copyright 2025 The Refuge Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/openrefuge/refuge/finder"
	"github.com/openrefuge/refuge/geocode"
	"github.com/openrefuge/refuge/store"
)

var findOptions = struct {
	location    string
	services    []string
	useLLM      bool
	deepExtract bool
	maxQueries  int
	minResults  int
	maxResults  int
	save        bool
	dbPath      string
	asJSON      bool
}{}

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Search for services around a location",
	RunE: func(cmd *cobra.Command, _ []string) error {
		categories := make([]finder.Category, 0, len(findOptions.services))
		for _, s := range findOptions.services {
			categories = append(categories, finder.Category(strings.TrimSpace(s)))
		}

		var aggregatorOpts []finder.AggregatorOption

		if isatty.IsTerminal(os.Stderr.Fd()) {
			var bar *progressbar.ProgressBar

			aggregatorOpts = append(aggregatorOpts, finder.WithProgress(func(done, total int) {
				if bar == nil {
					bar = progressbar.NewOptions(total,
						progressbar.OptionSetDescription("Searching "+findOptions.location),
						progressbar.OptionSetWriter(os.Stderr),
						progressbar.OptionShowCount(),
						progressbar.OptionClearOnFinish(),
					)
				}

				_ = bar.Set(done)
			}))
		}

		f, resolver, err := buildFinder(aggregatorOpts)
		if err != nil {
			return err
		}

		response, err := f.FindResources(cmd.Context(), findOptions.location, categories, finder.Options{
			UseExternalScoring:   findOptions.useLLM,
			EnableDeepExtraction: findOptions.deepExtract,
			MinResults:           findOptions.minResults,
			MaxResults:           findOptions.maxResults,
			MaxQueries:           findOptions.maxQueries,
		})
		if err != nil {
			return err
		}

		if findOptions.save {
			if err := saveRun(cmd.Context(), resolver, response, categories); err != nil {
				return fmt.Errorf("saving run: %w", err)
			}
		}

		if findOptions.asJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")

			return encoder.Encode(response)
		}

		printResponse(response)

		return nil
	},
}

// buildFinder assembles the production pipeline from environment
// configuration.
func buildFinder(aggregatorOpts []finder.AggregatorOption) (*finder.Finder, *geocode.Resolver, error) {
	serperKey := os.Getenv("SERPER_API_KEY")
	if serperKey == "" {
		return nil, nil, fmt.Errorf("SERPER_API_KEY is not set")
	}

	userAgent := fmt.Sprintf("refuge/%s (+https://github.com/openrefuge/refuge)", Version)

	resolver := geocode.NewResolver(geocode.NewNominatimGeocoder(userAgent),
		geocode.WithCache(geocode.NewMemoryCache()))

	cfg := finder.Config{
		SearchProvider: finder.NewSerperClient(serperKey),
		Geolocator:     resolver,
		Aggregator:     aggregatorOpts,
	}

	if findOptions.deepExtract {
		cfg.Fetcher = finder.NewHTTPPageFetcher(userAgent)
	}

	if findOptions.useLLM {
		openaiKey := os.Getenv("OPENAI_API_KEY")
		if openaiKey == "" {
			return nil, nil, fmt.Errorf("OPENAI_API_KEY is not set but --use-llm was given")
		}

		cfg.Scorer = finder.NewChatScorer(openaiKey)
	}

	f, err := finder.New(cfg)
	if err != nil {
		return nil, nil, err
	}

	return f, resolver, nil
}

// defaultDBPath honours REFUGE_DB_PATH so the three database-backed
// commands agree on where refuge.duckdb lives.
func defaultDBPath() string {
	loadEnv()
	if p := os.Getenv("REFUGE_DB_PATH"); p != "" {
		return p
	}
	return "."
}

func openDatabase(dbPath string) (*sql.DB, store.RunRepository, error) {
	db, err := sql.Open("duckdb", filepath.Join(dbPath, "refuge.duckdb"))
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	repo := store.NewRunRepository(db)
	if err := repo.CreateSchema(); err != nil {
		db.Close()

		return nil, nil, fmt.Errorf("creating schema: %w", err)
	}

	return db, repo, nil
}

func saveRun(ctx context.Context, resolver *geocode.Resolver, response *finder.Response, categories []finder.Category) error {
	db, repo, err := openDatabase(findOptions.dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	run := &store.Run{
		Location:   response.Location,
		Resolved:   response.Resolved,
		Services:   categories,
		Confidence: response.Confidence,
		Results:    response.Results,
	}

	if resolved, err := resolver.Resolve(ctx, response.Location); err == nil {
		run.Point = &resolved.Point
	}

	if err := repo.SaveRun(run); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "saved run %s\n", run.ID)

	return nil
}

func printResponse(response *finder.Response) {
	if response.Resolved != "" {
		fmt.Printf("Location: %s (%s)\n", response.Location, response.Resolved)
	} else {
		fmt.Printf("Location: %s\n", response.Location)
	}

	if response.Confidence == finder.ConfidenceLow {
		fmt.Println("Confidence: low — treat these results as best-effort")
	}

	fmt.Println()

	for i, result := range response.Results {
		fmt.Printf("%2d. %s (score %.2f)\n", i+1, result.Name, result.MatchScore)
		fmt.Printf("    %s\n", result.URL)

		services := make([]string, 0, len(result.MatchingServices))
		for _, s := range result.MatchingServices {
			services = append(services, string(s))
		}

		fmt.Printf("    services: %s\n", strings.Join(services, ", "))

		if result.DistanceKm != nil {
			fmt.Printf("    distance: %.1f km\n", *result.DistanceKm)
		}

		if result.Address != "" {
			fmt.Printf("    address: %s\n", result.Address)
		}

		if result.Phone != "" {
			fmt.Printf("    phone: %s\n", result.Phone)
		}

		if result.Hours != "" {
			fmt.Printf("    hours: %s\n", result.Hours)
		}

		if result.LLMSummary != "" {
			fmt.Printf("    %s\n", result.LLMSummary)
		}
	}

	if len(response.Results) == 0 {
		fmt.Println("No resources found.")
	}
}

func init() {
	findCmd.Flags().StringVarP(&findOptions.location, "location", "l", "", "location to search around (required)")
	findCmd.Flags().StringSliceVarP(&findOptions.services, "services", "s", []string{"shelter"}, "service categories to look for")
	findCmd.Flags().BoolVar(&findOptions.useLLM, "use-llm", false, "refine top results with an LLM relevance score")
	findCmd.Flags().BoolVar(&findOptions.deepExtract, "deep-extract", false, "fetch candidate pages for address/phone/hours")
	findCmd.Flags().IntVar(&findOptions.maxQueries, "max-queries", 10, "maximum search queries per run")
	findCmd.Flags().IntVar(&findOptions.minResults, "min-results", 0, "minimum results before relaxing diversity")
	findCmd.Flags().IntVar(&findOptions.maxResults, "max-results", 0, "maximum results to return")
	findCmd.Flags().BoolVar(&findOptions.save, "save", false, "persist the run to the local database")
	findCmd.Flags().StringVar(&findOptions.dbPath, "db-path", defaultDBPath(), "directory holding refuge.duckdb")
	findCmd.Flags().BoolVar(&findOptions.asJSON, "json", false, "emit the response as JSON")

	_ = findCmd.MarkFlagRequired("location")

	rootCmd.AddCommand(findCmd)
}
