// Package importer walks a directory of CSV training exports and replays
// each day as a logged session against a running nextset server. A local
// SQLite state database remembers which files were already sent, so the
// importer can run repeatedly over the same export directory.
package importer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/claude/nextset/internal/models"
)

// Stats tracks progress over one import run.
type Stats struct {
	FilesTotal    int
	FilesImported int
	FilesSkipped  int
	FilesErrored  int
	SessionsSent  int
	SetsSent      int
}

// Importer drives the import of a directory of CSV exports.
type Importer struct {
	client *Client
	state  *StateDB
	dir    string
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates an Importer over the given directory.
func New(client *Client, state *StateDB, dir string, dryRun bool, log *slog.Logger) *Importer {
	return &Importer{client: client, state: state, dir: dir, dryRun: dryRun, log: log}
}

// Run imports every *.csv file in the directory that the state database has
// not seen before. Parse failures skip the file; a failed send aborts the
// run so the file is retried next time.
func (imp *Importer) Run() (*Stats, error) {
	files, err := filepath.Glob(filepath.Join(imp.dir, "*.csv"))
	if err != nil {
		return &imp.stats, fmt.Errorf("listing csv files: %w", err)
	}

	for _, f := range files {
		imp.stats.FilesTotal++

		relPath, err := filepath.Rel(imp.dir, f)
		if err != nil {
			relPath = filepath.Base(f)
		}
		info, err := os.Stat(f)
		if err != nil {
			imp.log.Warn("stat failed", "file", f, "error", err)
			imp.stats.FilesErrored++
			continue
		}
		hash, err := HashFile(f)
		if err != nil {
			imp.log.Warn("hash failed", "file", f, "error", err)
			imp.stats.FilesErrored++
			continue
		}
		imported, err := imp.state.IsImported(relPath, info.Size(), hash)
		if err != nil {
			imp.log.Warn("state check failed", "file", f, "error", err)
			imp.stats.FilesErrored++
			continue
		}
		if imported {
			imp.stats.FilesSkipped++
			continue
		}

		sessions, err := imp.parseFile(f)
		if err != nil {
			imp.log.Warn("parse failed", "file", f, "error", err)
			imp.stats.FilesErrored++
			continue
		}
		if len(sessions) == 0 {
			imp.log.Info("no sessions in file", "file", relPath)
			if !imp.dryRun {
				if err := imp.state.MarkImported(relPath, info.Size(), hash); err != nil {
					imp.log.Warn("failed to mark imported", "file", relPath, "error", err)
				}
			}
			imp.stats.FilesSkipped++
			continue
		}

		if err := imp.sendSessions(relPath, sessions); err != nil {
			return &imp.stats, err
		}

		if !imp.dryRun {
			if err := imp.state.MarkImported(relPath, info.Size(), hash); err != nil {
				imp.log.Warn("failed to mark imported", "file", relPath, "error", err)
			}
		}
		imp.stats.FilesImported++
		imp.log.Info("imported file", "file", relPath, "sessions", len(sessions))
	}

	return &imp.stats, nil
}

func (imp *Importer) parseFile(path string) ([]models.LogSessionRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseCSV(f)
}

func (imp *Importer) sendSessions(file string, sessions []models.LogSessionRequest) error {
	for _, session := range sessions {
		if imp.dryRun {
			imp.log.Info("dry run, would send session",
				"file", file,
				"date", session.Date.Format(models.DateOnlyLayout),
				"sets", len(session.Sets))
		} else if err := imp.client.LogSession(session); err != nil {
			return fmt.Errorf("sending session from %s: %w", file, err)
		}
		imp.stats.SessionsSent++
		imp.stats.SetsSent += len(session.Sets)
	}
	return nil
}
