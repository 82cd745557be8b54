// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 Zustand Playground Authors

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"github.com/scetiner/zustand-playground-sub000/cmd/zplay/internal/tui"
	"github.com/scetiner/zustand-playground-sub000/internal/fsutil"
	"github.com/scetiner/zustand-playground-sub000/internal/lesson"
	"github.com/scetiner/zustand-playground-sub000/internal/playground"
	"github.com/scetiner/zustand-playground-sub000/internal/storage"
	"github.com/scetiner/zustand-playground-sub000/internal/util"
	"github.com/scetiner/zustand-playground-sub000/internal/version"
)

func main() {
	// Define all flags upfront before parsing
	printVersion := flag.Bool("version", false, "Print version and exit")
	dataDir := flag.String("d", "", "Data directory (default: ~/.zplay or ZPLAY_DATA)")
	jsFile := flag.String("js", "", "Run a snippet file and exit (use '-' for stdin)")
	jsExpr := flag.String("e", "", "Run a snippet given on the command line and exit")
	watchFile := flag.String("watch", "", "Re-run a snippet file on every save")
	replMode := flag.Bool("repl", false, "Start the line-oriented REPL instead of the TUI")
	lessonsPath := flag.String("lessons", "", "Lesson catalog override (default: embedded catalog)")
	lessonID := flag.String("lesson", "", "Open the TUI (or REPL) at a specific lesson")
	flag.Parse()

	if *printVersion {
		fmt.Printf("zplay %s\n", version.String())
		os.Exit(0)
	}

	// Resolve data directory: -d flag > ZPLAY_DATA env var > ~/.zplay
	resolvedDataDir := util.ResolveDataDir(*dataDir)
	if err := fsutil.MkdirAll(resolvedDataDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot create data directory %s: %v\n", resolvedDataDir, err)
		os.Exit(1)
	}

	// Initialize logger (supports ZPLAY_DEBUG environment variable)
	util.InitLogger()

	config, err := util.LoadConfig(resolvedDataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	catalog, err := loadCatalog(*lessonsPath, config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	progress, err := lesson.LoadProgress(filepath.Join(resolvedDataDir, config.ProgressFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	stor, err := storage.OpenFile(filepath.Join(resolvedDataDir, config.StorageFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	engine := playground.New(stor, util.Logger)
	defer engine.Close()

	switch {
	case *jsExpr != "":
		runOneShot(engine, *jsExpr)
	case *jsFile != "":
		source, err := readSnippet(*jsFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		runOneShot(engine, source)
	case *watchFile != "":
		if err := runWatch(engine, *watchFile, config); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case *replMode || !term.IsTerminal(int(os.Stdout.Fd())):
		historyPath := filepath.Join(resolvedDataDir, config.HistoryFile)
		startREPL(engine, catalog, progress, historyPath, *lessonID)
	default:
		if err := tui.Run(engine, catalog, progress, *lessonID); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}

// loadCatalog picks the catalog source: -lessons flag > config > embedded.
func loadCatalog(flagPath string, config util.Config) (*lesson.Catalog, error) {
	path := flagPath
	if path == "" {
		path = config.LessonsPath
	}
	if path == "" {
		return lesson.LoadDefault()
	}
	return lesson.LoadFile(path)
}

// readSnippet reads a snippet file, with '-' meaning stdin.
func readSnippet(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read snippet file: %w", err)
	}
	return string(data), nil
}
