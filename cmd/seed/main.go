// Command seed loads portfolio content into MongoDB and mints admin tokens.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/folio/portfolio/backend/go-services/internal/config"
	"github.com/folio/portfolio/backend/go-services/internal/content"
	"github.com/folio/portfolio/backend/go-services/internal/database"
	"github.com/folio/portfolio/backend/go-services/internal/models"
	"github.com/folio/portfolio/backend/go-services/internal/seed"
	"github.com/folio/portfolio/backend/go-services/internal/tokens"
	"github.com/folio/portfolio/backend/go-services/pkg/logger"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Portfolio content and admin tooling",
}

var loadCmd = &cobra.Command{
	Use:   "load <file.yaml>",
	Short: "Load profile, projects, skills and experiences from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		if cfg.MongoDB.URI == "" {
			return fmt.Errorf("MONGODB_URI is required")
		}
		fh, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer fh.Close()
		f, err := seed.Parse(fh)
		if err != nil {
			return err
		}

		ctx := context.Background()
		client, err := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		if err != nil {
			return err
		}
		defer func() { _ = client.Disconnect(ctx) }()

		svc := content.NewService(content.NewMongoRepo(client.Database(cfg.MongoDB.Database)), nil)
		sum, err := seed.Apply(ctx, svc, f)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %s: %s\n", args[0], sum)
		return nil
	},
}

var (
	tokenSub   string
	tokenEmail string
	tokenName  string
	tokenTTL   time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print an admin bearer token signed with ADMIN_JWT_SECRET",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		if cfg.Auth.AdminJWTSecret == "" {
			return fmt.Errorf("ADMIN_JWT_SECRET is not set")
		}
		ttl := tokenTTL
		if ttl <= 0 {
			ttl = cfg.Auth.AdminTokenTTL
		}
		tok, err := tokens.GenerateAdminToken(cfg.Auth.AdminJWTSecret, &models.Admin{Sub: tokenSub, Email: tokenEmail, Name: tokenName}, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSub, "sub", "local-admin", "subject claim")
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "email claim")
	tokenCmd.Flags().StringVar(&tokenName, "name", "", "name claim")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (default ADMIN_TOKEN_TTL)")
	rootCmd.AddCommand(loadCmd, tokenCmd)
}

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
