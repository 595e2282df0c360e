package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/claude/nextset/internal/importer"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "nextset server URL (e.g. https://nextset.tail1234.ts.net)")
	token := flag.String("token", "", "bearer token (defaults to NEXTSET_TOKEN)")
	dir := flag.String("path", "", "path to a directory of CSV training exports")
	stateDir := flag.String("state-dir", "", "state database directory (defaults to ~/.nextset-import)")
	dryRun := flag.Bool("dry-run", false, "parse files but don't send to server")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("nextset-import", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	_ = godotenv.Load()
	if *token == "" {
		*token = os.Getenv("NEXTSET_TOKEN")
	}

	if *dir == "" {
		fmt.Fprintf(os.Stderr, "Usage: nextset-import -server <URL> -token <token> -path <csv dir> [-dry-run]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if !*dryRun {
		if *serverURL == "" {
			fmt.Fprintf(os.Stderr, "Error: -server is required (or use -dry-run)\n")
			os.Exit(1)
		}
		if *token == "" {
			fmt.Fprintf(os.Stderr, "Error: -token or NEXTSET_TOKEN is required (or use -dry-run)\n")
			os.Exit(1)
		}
	}
	*serverURL = strings.TrimRight(*serverURL, "/")

	info, err := os.Stat(*dir)
	if err != nil || !info.IsDir() {
		log.Error("export directory not found", "path", *dir)
		os.Exit(1)
	}

	// Open state database
	if *stateDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Error("failed to get home directory", "error", err)
			os.Exit(1)
		}
		*stateDir = filepath.Join(homeDir, ".nextset-import")
	}
	state, err := importer.OpenStateDB(*stateDir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	// Create client (nil-safe in dry-run mode)
	var client *importer.Client
	if !*dryRun {
		client = importer.NewClient(*serverURL, *token)
	}

	if *dryRun {
		log.Info("DRY RUN mode, files will be parsed but not sent")
	}

	// Run import
	imp := importer.New(client, state, *dir, *dryRun, log)
	stats, err := imp.Run()
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(stats)
		os.Exit(1)
	}

	printStats(stats)
	log.Info("import complete")
}

func printStats(stats *importer.Stats) {
	fmt.Println()
	fmt.Println("=== Import Summary ===")
	fmt.Printf("  Files total:     %d\n", stats.FilesTotal)
	fmt.Printf("  Files imported:  %d\n", stats.FilesImported)
	fmt.Printf("  Files skipped:   %d (already imported)\n", stats.FilesSkipped)
	fmt.Printf("  Files errored:   %d\n", stats.FilesErrored)
	fmt.Println()
	fmt.Printf("  Sessions sent:   %d\n", stats.SessionsSent)
	fmt.Printf("  Sets sent:       %d\n", stats.SetsSent)
	fmt.Println()
}
