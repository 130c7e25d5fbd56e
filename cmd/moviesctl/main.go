// Command moviesctl administers the movies database: it applies the schema
// and manages the encrypted provider API keys the server reads.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/iliyamo/movies/internal/config"
	"github.com/iliyamo/movies/internal/credential"
	"github.com/iliyamo/movies/internal/database"
	"github.com/iliyamo/movies/internal/logging"
	"github.com/iliyamo/movies/internal/repository"
	"github.com/iliyamo/movies/internal/utils"
)

func main() {
	logging.SetGlobal(logging.New(logging.Config{Level: os.Getenv("LOG_LEVEL"), Format: "text", Output: os.Stderr}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCommand().ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("moviesctl failed")
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "moviesctl",
		Short:         "Administer the movies service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(migrateCommand(), apiKeyCommand(), tokenCommand())
	return root
}

// openDB opens the database named by the DB_* variables.
func openDB() (*sql.DB, config.Config, error) {
	cfg := config.LoadDB()
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return nil, cfg, fmt.Errorf("connect database: %w", err)
	}
	return db, cfg, nil
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, _, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			return database.Migrate(cmd.Context(), db)
		},
	}
}

func apiKeyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage provider API keys (encrypted with MOVIES_MASTER_KEY)",
	}

	set := &cobra.Command{
		Use:     "set <name> <value>",
		Short:   "Store or replace an API key",
		Example: "  moviesctl apikey set tmdb eyJhbGciOi...",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeFn, err := dbStore()
			if err != nil {
				return err
			}
			defer closeFn()
			if err := store.Set(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored api key %q\n", args[0])
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a stored API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeFn, err := dbStore()
			if err != nil {
				return err
			}
			defer closeFn()
			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				if errors.Is(err, credential.ErrNotFound) {
					return fmt.Errorf("no api key named %q", args[0])
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted api key %q\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(set, del)
	return cmd
}

func tokenCommand() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token <subject>",
		Short: "Sign an access token with JWT_SECRET for local use",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := config.LoadJWTSecret()
			if secret == "" {
				return errors.New("JWT_SECRET is required to sign tokens")
			}
			tok, err := utils.NewAccessToken(secret, args[0], ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok.Token)
			log.Debug().Str("sub", args[0]).Time("exp", tok.Exp).Msg("token issued")
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", utils.DefaultTokenTTL, "token lifetime")
	return cmd
}

func dbStore() (*credential.DBStore, func(), error) {
	db, cfg, err := openDB()
	if err != nil {
		return nil, nil, err
	}
	if cfg.MasterKey == "" {
		db.Close()
		return nil, nil, errors.New("MOVIES_MASTER_KEY is required to manage api keys")
	}
	cipher, err := credential.NewCipherFromHex(cfg.MasterKey)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return credential.NewDBStore(repository.NewAPIKeyRepo(db), cipher), func() { db.Close() }, nil
}
