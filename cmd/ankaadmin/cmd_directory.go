package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ankatech/investor-admin/internal/core/ports"
	"github.com/ankatech/investor-admin/internal/core/service"
	"github.com/ankatech/investor-admin/internal/infrastructure/backend"
	mongodb "github.com/ankatech/investor-admin/internal/infrastructure/db/mongo"
	"github.com/ankatech/investor-admin/internal/pkg/config"
	"github.com/ankatech/investor-admin/pkg/money"
)

var (
	searchTerm string
	asJSON     bool
)

// clientsCmd lists clients
var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "List clients from the configured directory",
	Long: `Lists clients with the same search the admin screen uses: a case-insensitive
match on name or email.

Example:
  ankaadmin clients --q silva`,
	RunE: runClients,
}

// assetsCmd lists financial assets
var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "List financial assets with their current value",
	RunE:  runAssets,
}

func init() {
	for _, c := range []*cobra.Command{clientsCmd, assetsCmd} {
		c.Flags().StringVar(&searchTerm, "q", "", "search term")
		c.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	}
}

func runClients(cmd *cobra.Command, args []string) error {
	svc, closeDir, err := openService(cmd.Context())
	if err != nil {
		return err
	}
	defer closeDir()

	list, err := svc.ListClients(cmd.Context(), searchTerm)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, list.Items)
	}
	if list.Empty != "" {
		_, err := fmt.Fprintln(out, list.Empty)
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNOME\tEMAIL\tSTATUS\tATIVOS")
	for _, c := range list.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", c.ID, c.Name, c.Email, c.Status.Label(), len(c.AssetIDs))
	}
	return tw.Flush()
}

func runAssets(cmd *cobra.Command, args []string) error {
	svc, closeDir, err := openService(cmd.Context())
	if err != nil {
		return err
	}
	defer closeDir()

	list, err := svc.ListAssets(cmd.Context(), searchTerm)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, list.Items)
	}
	if list.Empty != "" {
		_, err := fmt.Fprintln(out, list.Empty)
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNOME\tVALOR ATUAL")
	for _, a := range list.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", a.ID, a.Name, money.BRL(a.CurrentValue))
	}
	return tw.Flush()
}

// openService builds a read-only client service over the configured
// directory, without caching or auditing.
func openService(ctx context.Context) (ports.ClientService, func(), error) {
	if cfg.DirectoryBackend != config.DirectoryMongo {
		dir := backend.New(backend.Config{
			BaseURL:     cfg.Backend.URL,
			Timeout:     cfg.Backend.Timeout,
			RPS:         cfg.Backend.RPS,
			Burst:       cfg.Backend.Burst,
			AssetsField: cfg.Backend.AssetsField,
		})
		return service.NewClientService(dir, service.NewInputValidator(), nil, nil, log), func() {}, nil
	}

	client, db, err := connectMongo(ctx)
	if err != nil {
		return nil, nil, err
	}
	svc := service.NewClientService(mongodb.NewDirectory(db), service.NewInputValidator(), nil, nil, log)
	return svc, func() { _ = client.Disconnect(context.Background()) }, nil
}

func connectMongo(ctx context.Context) (*mongo.Client, *mongo.Database, error) {
	if cfg.Mongo.URI == "" {
		return nil, nil, fmt.Errorf("MONGO_URI is not set")
	}
	return mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  cfg.Mongo.AppName + "-cli",
		Timeout:  cfg.Mongo.Timeout,
	})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
