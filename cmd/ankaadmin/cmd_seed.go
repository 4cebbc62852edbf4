package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/ankatech/investor-admin/internal/core/domain"
	mongodb "github.com/ankatech/investor-admin/internal/infrastructure/db/mongo"
	"github.com/ankatech/investor-admin/internal/infrastructure/seed"
)

var (
	catalogFile string

	operatorUsername string
	operatorRole     string
	operatorPassword string
)

// seedCmd loads the asset catalog into mongo
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the financial asset catalog into mongo",
	Long: `Upserts the asset catalog into the mongo directory. Without --file the
catalog shipped with the binary is used. Existing ids are updated in place.

Example:
  ankaadmin seed --file catalog.yaml`,
	RunE: runSeed,
}

// operatorCmd manages operators stored in mongo
var operatorCmd = &cobra.Command{
	Use:   "operator",
	Short: "Manage operators stored in mongo",
}

var operatorAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create or replace an operator",
	Long: `Stores an operator with a bcrypt-hashed password. Operators from the
environment (ADMIN_USERNAME, VIEWER_USERNAME) take precedence at login.

Example:
  ankaadmin operator add --username joana --role viewer --password '...'`,
	RunE: runOperatorAdd,
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print the bcrypt hash for ADMIN_PASSWORD_HASH or VIEWER_PASSWORD_HASH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := bcrypt.GenerateFromPassword([]byte(args[0]), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(hash))
		return err
	},
}

func init() {
	seedCmd.Flags().StringVarP(&catalogFile, "file", "f", "", "catalog YAML (default: built-in catalog)")

	operatorAddCmd.Flags().StringVar(&operatorUsername, "username", "", "operator username")
	operatorAddCmd.Flags().StringVar(&operatorRole, "role", domain.RoleViewer, "admin or viewer")
	operatorAddCmd.Flags().StringVar(&operatorPassword, "password", "", "operator password")
	_ = operatorAddCmd.MarkFlagRequired("username")
	_ = operatorAddCmd.MarkFlagRequired("password")

	operatorCmd.AddCommand(operatorAddCmd, hashPasswordCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	assets, err := loadCatalog()
	if err != nil {
		return err
	}

	client, db, err := connectMongo(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(cmd.Context()) }()

	return seed.Run(cmd.Context(), mongodb.NewAssetRepository(db), assets, log)
}

func loadCatalog() ([]domain.Asset, error) {
	if catalogFile == "" {
		return seed.Default()
	}
	f, err := os.Open(catalogFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return seed.Load(f)
}

func runOperatorAdd(cmd *cobra.Command, args []string) error {
	role := strings.ToLower(strings.TrimSpace(operatorRole))
	if role != domain.RoleAdmin && role != domain.RoleViewer {
		return fmt.Errorf("unknown role %q", operatorRole)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(operatorPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	client, db, err := connectMongo(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(cmd.Context()) }()

	user := domain.User{Username: strings.TrimSpace(operatorUsername), PasswordHash: string(hash), Role: role}
	if err := mongodb.NewOperatorRepository(db).Upsert(cmd.Context(), user); err != nil {
		return err
	}
	log.Info().Str("username", user.Username).Str("role", role).Msg("operator stored")
	return nil
}
