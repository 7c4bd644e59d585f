package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/SNU-Hackathon/Doany-sub000/internal/middleware"
)

func TokenCmd() *cobra.Command {
	var (
		userID string
		ttl    time.Duration
	)

	c := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for local testing (reads JWT_SECRET)",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			secret := os.Getenv("JWT_SECRET")
			if secret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			if userID == "" {
				return errors.New("--user is required")
			}

			token, err := middleware.IssueToken(secret, userID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	c.Flags().StringVar(&userID, "user", "", "user ID to put in the token")
	c.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return c
}
