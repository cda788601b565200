package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eqcoach/db"
	"eqcoach/models"
	"eqcoach/utils"

	"github.com/spf13/cobra"
)

var (
	newUserEmail    string
	newUserPassword string
	newUserName     string
)

var addUserCmd = &cobra.Command{
	Use:   "adduser",
	Short: "Create an account directly in MongoDB",
	RunE: func(cmd *cobra.Command, args []string) error {
		if newUserEmail == "" || newUserPassword == "" {
			return errors.New("--email and --password are required")
		}
		if len(newUserPassword) < 8 {
			return errors.New("password must be at least 8 characters")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Database.URI == "" {
			return errors.New("database.uri (or MONGO_URI) is required")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		store, err := db.ConnectMongoDB(ctx, cfg.Database.URI, logger)
		if err != nil {
			return err
		}
		defer store.Disconnect(context.Background())

		hash, err := utils.HashPassword(newUserPassword)
		if err != nil {
			return err
		}
		name := newUserName
		if name == "" {
			name = utils.ExtractNameFromEmail(newUserEmail)
		}
		user := &models.User{Email: newUserEmail, DisplayName: name, PasswordHash: hash}
		if err := store.CreateUser(ctx, user); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", user.Email, user.ID.Hex())
		return nil
	},
}

func init() {
	addUserCmd.Flags().StringVar(&newUserEmail, "email", "", "account email")
	addUserCmd.Flags().StringVar(&newUserPassword, "password", "", "account password")
	addUserCmd.Flags().StringVar(&newUserName, "name", "", "display name (defaults to the email's local part)")
}
