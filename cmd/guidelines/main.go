// Copyright 2025 Carelight Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/carelight/guidelines"
	"github.com/carelight/guidelines/ai"
	"github.com/carelight/guidelines/core"
)

func main() {
	app := &cli.App{
		Name:  "guidelines",
		Usage: "Clinical guideline retrieval corpus",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Path to the library data directory",
				Value:   "./guidelines_data",
			},
			&cli.StringFlag{
				Name:  "embedding-host",
				Usage: "Embedding service host URL",
				Value: "http://localhost:11434/v1",
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Embedding model name",
				Value: "embeddinggemma",
			},
			&cli.StringFlag{
				Name:  "nice-export",
				Usage: "Path to a NICE syndication export file (optional)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "refresh",
				Usage:  "Fetch all configured sources and re-embed changed content",
				Action: refreshCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "source",
						Usage: "Refresh only the named sources (manual, uspstf, nice, openfda)",
					},
					&cli.BoolFlag{
						Name:  "if-due",
						Usage: "Only refresh when the corpus is stale",
					},
				},
			},
			{
				Name:   "status",
				Usage:  "Show refresh schedule and staleness",
				Action: statusCommand,
			},
			{
				Name:      "search",
				Usage:     "Search the guideline corpus",
				Action:    searchCommand,
				ArgsUsage: "<query>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "specialty",
						Usage: "Restrict results to one specialty",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 5,
					},
					&cli.StringFlag{
						Name:  "mode",
						Usage: "Search mode (hybrid, semantic, text)",
						Value: "hybrid",
					},
				},
			},
			{
				Name:   "seed",
				Usage:  "Load the curated guideline set and embed it",
				Action: seedCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openLibrary(c *cli.Context) (*guidelines.Library, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	opts := []guidelines.LibraryOption{guidelines.WithAIConfig(aiConfig)}
	if path := c.String("nice-export"); path != "" {
		opts = append(opts, guidelines.WithNICEExport(path))
	}

	lib, err := guidelines.Open(c.String("data"), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open library: %w", err)
	}
	return lib, nil
}

func refreshCommand(c *cli.Context) error {
	ctx := context.Background()

	lib, err := openLibrary(c)
	if err != nil {
		return err
	}
	defer lib.Close()

	scheduler, err := lib.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	if c.Bool("if-due") && !scheduler.IsRefreshDue(ctx) {
		fmt.Println("Corpus is current, nothing to do")
		return nil
	}

	var sources []core.Source
	for _, name := range c.StringSlice("source") {
		source, err := core.ParseSource(name)
		if err != nil {
			return fmt.Errorf("unknown source %q", name)
		}
		sources = append(sources, source)
	}

	if err := scheduler.TriggerManualRefresh(ctx, sources...); err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}

	fmt.Println("Refresh completed")
	return nil
}

func statusCommand(c *cli.Context) error {
	ctx := context.Background()

	lib, err := openLibrary(c)
	if err != nil {
		return err
	}
	defer lib.Close()

	scheduler, err := lib.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	status := scheduler.Status(ctx)
	if status.LastRun.IsZero() {
		fmt.Println("Last refresh:  never")
	} else {
		fmt.Printf("Last refresh:  %s\n", status.LastRun.Format("2006-01-02 15:04"))
	}
	fmt.Printf("Next run:      %s\n", status.NextRun.Format("2006-01-02 15:04"))
	fmt.Printf("Refresh due:   %t\n", status.IsDue)
	fmt.Printf("Running now:   %t\n", status.IsRunning)

	docs, err := lib.GuidelineRepository().GetAllGuidelines(ctx)
	if err != nil {
		return fmt.Errorf("failed to read corpus: %w", err)
	}
	fmt.Printf("Documents:     %d\n", len(docs))
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("a search query is required")
	}

	var specialty core.Specialty
	if name := c.String("specialty"); name != "" {
		parsed, err := core.ParseSpecialty(name)
		if err != nil {
			return fmt.Errorf("unknown specialty %q", name)
		}
		specialty = parsed
	}

	lib, err := openLibrary(c)
	if err != nil {
		return err
	}
	defer lib.Close()

	searcher, err := lib.NewSearcher()
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	limit := c.Int("limit")
	switch c.String("mode") {
	case "semantic":
		results, err := searcher.Semantic(ctx, query, specialty, limit)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		printSemanticResults(results)
	case "text":
		hits, err := searcher.Text(ctx, query, specialty, limit)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		printTextResults(hits)
	case "hybrid":
		printSemanticResults(searcher.Search(ctx, query, specialty, limit))
	default:
		return fmt.Errorf("unknown mode %q: must be one of hybrid, semantic, text", c.String("mode"))
	}
	return nil
}

func printSemanticResults(results []*core.SearchResult) {
	fmt.Printf("Found %d hits\n", len(results))
	for i, hit := range results {
		fmt.Printf("%d: %s [%s/%s] (%0.3f)\n", i+1, hit.Meta.Title, hit.Meta.Source, hit.Meta.Specialty, hit.Similarity)
		fmt.Printf("   %s\n", excerpt(hit.Contents, 200))
	}
}

func printTextResults(hits []*core.TextSearchResult) {
	fmt.Printf("Found %d hits\n", len(hits))
	for i, hit := range hits {
		fmt.Printf("%d: %s [%s/%s] (%0.3f)\n", i+1, hit.Title, hit.Source, hit.Specialty, hit.Score)
		fmt.Printf("   %s\n", excerpt(hit.Contents, 200))
	}
}

func excerpt(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= max {
		return text
	}
	return text[:max] + "…"
}

func seedCommand(c *cli.Context) error {
	ctx := context.Background()

	lib, err := openLibrary(c)
	if err != nil {
		return err
	}
	defer lib.Close()

	orchestrator := lib.NewOrchestrator()
	result, err := orchestrator.IngestSource(ctx, core.SourceManual)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	fmt.Printf("Seeded %d curated guidelines (%d new or changed)\n", result.DocumentsProcessed, result.DocumentsUpdated)

	pipeline, err := lib.NewPipeline()
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	embedded, err := pipeline.ProcessAllGuidelines(ctx)
	if err != nil {
		return fmt.Errorf("embedding failed: %w", err)
	}
	fmt.Printf("Embedded %d documents (%d chunks)\n", embedded.DocumentsProcessed, embedded.ChunksEmbedded)
	if len(embedded.Errors) > 0 {
		fmt.Printf("Errors:\n")
		for _, e := range embedded.Errors {
			fmt.Printf("  %s\n", e)
		}
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
