// main.go
//
// Session-authenticated data service for the Runway AI pageant training application
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of runway.
// runway is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// runway is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with runway.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

// Package main is the runway operator CLI: schema migration, catalogue seeding, and outreach reports.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/localnerve/runway/data"
	"github.com/localnerve/runway/internal/config"
	"github.com/localnerve/runway/internal/database"
	"github.com/localnerve/runway/internal/logging"
	"github.com/localnerve/runway/internal/models"
	"github.com/localnerve/runway/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app is the state shared by every subcommand, opened lazily
type app struct {
	cfg   *config.Config
	log   *logrus.Logger
	store *storage.Storage
	out   io.Writer
}

func (a *app) open() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logging.New(cfg.LogLevel, cfg.LogFormat)
	a.log.SetOutput(os.Stderr)

	db, err := database.Connect(cfg, a.log)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	store, err := storage.New(db, storage.WithSessionGC(0), storage.WithLogger(a.log))
	if err != nil {
		return err
	}
	a.store = store
	return nil
}

func (a *app) close() {
	if a.store != nil {
		_ = a.store.Close()
	}
}

func rootCmd() *cobra.Command {
	a := &app{out: os.Stdout}

	cmd := &cobra.Command{
		Use:   "runwayctl",
		Short: "Operate the runway data service",
		Long: `runwayctl manages the runway database with the same DB_* environment
(or .env file) the server reads.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the schema",
			RunE: func(cmd *cobra.Command, args []string) error {
				// open already migrated
				fmt.Fprintf(a.out, "schema is up to date (%s)\n", a.cfg.DBType)
				return nil
			},
		},
		seedMovesCmd(a),
		signupsCmd(a),
		emailsCmd(a),
		pruneSessionsCmd(a),
	)
	return cmd
}

func seedMovesCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed-moves",
		Short: "Upsert the reference-move catalogue",
		Long:  "Upserts every move by moveId. Uses the embedded catalogue unless --file is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			moves, err := loadMoves(file)
			if err != nil {
				return err
			}
			created, updated, err := seedMoves(cmd.Context(), a.store, moves)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "seeded %d reference moves (%d created, %d updated)\n", len(moves), created, updated)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML catalogue to load instead of the embedded one")
	return cmd
}

func loadMoves(file string) ([]models.ReferenceMove, error) {
	if file == "" {
		return data.LoadReferenceMoves()
	}
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return data.ParseReferenceMoves(raw)
}

func seedMoves(ctx context.Context, store *storage.Storage, moves []models.ReferenceMove) (created, updated int, err error) {
	for _, move := range moves {
		_, isNew, err := store.SaveReferenceMove(ctx, move)
		if err != nil {
			return created, updated, fmt.Errorf("move %d: %w", move.MoveID, err)
		}
		if isNew {
			created++
		} else {
			updated++
		}
	}
	return created, updated, nil
}

func signupsCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "signups",
		Short: "List early-access signups, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			signups, err := a.store.ListEarlyAccessSignups(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(a.out, signups)
			}
			return writeSignups(a.out, signups)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func emailsCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "emails",
		Short: "List guide email records, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := a.store.GetEmailRecords(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(a.out, records)
			}
			return writeEmailRecords(a.out, records)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func pruneSessionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "prune-sessions",
		Short: "Delete expired database-backed sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, ok := a.store.SessionStore().(*storage.SessionStore)
			if !ok {
				return fmt.Errorf("sessions are not stored in the database")
			}
			n, err := sessions.DeleteExpired(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "removed %d expired sessions\n", n)
			return nil
		},
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeSignups(w io.Writer, signups []models.EarlyAccessSignup) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tSOURCE\tCREATED")
	for _, s := range signups {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", s.ID, s.Email, s.Name, s.Source, s.CreatedAt.UTC().Format(time.RFC3339))
	}
	return tw.Flush()
}

func writeEmailRecords(w io.Writer, records []models.EmailRecord) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ATTEMPT\tEMAIL\tSTATUS\tSOURCE\tSENT")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.AttemptID, r.Email, r.Status, r.Source, r.SentAt.UTC().Format(time.RFC3339))
	}
	return tw.Flush()
}
