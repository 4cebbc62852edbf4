// Command ankaadmin runs the investor admin service and its maintenance tasks.
//
// @title                       Anka Tech Investor Admin API
// @version                     1.0
// @description                 Clients, financial assets and allocations of the investor admin service.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ankatech/investor-admin/internal/app"
	"github.com/ankatech/investor-admin/internal/pkg/config"
	"github.com/ankatech/investor-admin/pkg/logger"
)

var (
	// Global flags
	envFile string
	verbose bool

	cfg *config.Config
	log zerolog.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ankaadmin",
	Short: "Anka Tech investor admin",
	Long: `Administration of investment clients and their financial asset allocations.

Configuration comes from the environment; a .env file is loaded first when present.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}

		var err error
		cfg, err = config.Load(cmd.Context())
		if err != nil {
			return err
		}

		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		log = logger.Init(logger.Options{
			Level:   level,
			Pretty:  cfg.Development(),
			Service: "investor-admin",
		})
		return nil
	},
}

// serveCmd runs the HTTP service
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the admin screens and the JSON API",
	Long: `Starts the HTTP server: HTML screens under /, the JSON API under /api,
Swagger UI at /swagger/index.html, probes at /health and metrics at /metrics.

The server stops gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(serveCmd, clientsCmd, assetsCmd, seedCmd, operatorCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	return application.Run(ctx)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
