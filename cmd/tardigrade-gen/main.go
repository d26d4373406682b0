package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"

	"github.com/goliatone/go-tardigrade/internal/prompt"
	"github.com/goliatone/go-tardigrade/pkg/codegen"
	"github.com/goliatone/go-tardigrade/pkg/engine/htmlengine"
	"github.com/goliatone/go-tardigrade/pkg/manifest"
	"github.com/goliatone/go-tardigrade/pkg/orchestrator"
)

func main() {
	manifestPath := flag.String("manifest", "tardigrade.yaml", "generator manifest")
	verbose := flag.Int("v", 0, "log verbosity (0 quiet, 1 progress, 2 engine detail)")
	initEntry := flag.Bool("init", false, "interactively add a template entry to the manifest")
	check := flag.Bool("check", false, "render accessors without writing them")
	templateDir := flag.String("templates", "", "directory whose accessor.go.tpl overrides the built-in template")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := newLogger(*verbose)

	if *initEntry {
		if err := addEntry(ctx, *manifestPath); err != nil {
			if errors.Is(err, prompt.ErrAborted) {
				fmt.Fprintln(os.Stderr, "aborted")
				os.Exit(1)
			}
			log.Fatalf("Failed to update manifest: %v", err)
		}
		return
	}

	m, err := manifest.Load(*manifestPath)
	if err != nil {
		log.Fatalf("Failed to load manifest: %v", err)
	}

	generator, err := codegen.New(codegen.WithLogger(logger), codegen.WithTemplateDir(*templateDir))
	if err != nil {
		log.Fatalf("Failed to prepare generator: %v", err)
	}

	gen := orchestrator.New(
		orchestrator.WithGenerator(generator),
		orchestrator.WithLogger(logger),
		orchestrator.WithEngine(htmlengine.New(htmlengine.WithLogger(logger))),
		orchestrator.WithDryRun(*check),
	)
	results, err := gen.Run(ctx, m)
	if err != nil {
		log.Fatalf("Failed to generate accessors: %v", err)
	}

	for _, res := range results {
		if *check {
			fmt.Printf("%s ok\n", res.Entry.Name)
			continue
		}
		fmt.Printf("Accessor written to %s\n", res.Output)
	}
}

func addEntry(ctx context.Context, path string) error {
	m, err := manifest.LoadOrEmpty(path)
	if err != nil {
		return err
	}
	entry, err := prompt.Entry(ctx, prompt.NewSurveyDriver())
	if err != nil {
		return err
	}
	if err := m.Add(entry); err != nil {
		return err
	}
	if err := m.Save(path); err != nil {
		return err
	}
	fmt.Printf("Added %s to %s\n", entry.Name, path)
	return nil
}

func newLogger(verbosity int) logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintf(os.Stderr, "%s: %s\n", prefix, args)
			return
		}
		fmt.Fprintln(os.Stderr, args)
	}, funcr.Options{Verbosity: verbosity})
}
