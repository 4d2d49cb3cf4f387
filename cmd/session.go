package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/security"
)

func newSessionCmd(load appLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect and manage the stored PMS session",
	}
	cmd.AddCommand(newSessionStatusCmd(load))
	cmd.AddCommand(newSessionSeedCmd(load))
	cmd.AddCommand(newSessionTokenCmd(load))
	cmd.AddCommand(newSessionRefreshCmd(load))
	cmd.AddCommand(newSessionClearCmd(load))
	cmd.AddCommand(newSessionOperatorTokenCmd(load))
	return cmd
}

func newSessionStatusCmd(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a session is stored and how old it is",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			status, err := app.Tokens.Status(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), status)
		},
	}
}

func newSessionSeedCmd(load appLoader) *cobra.Command {
	var accessToken, refreshToken string

	c := &cobra.Command{
		Use:   "seed",
		Short: "Store a token pair obtained at login",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Tokens.Seed(cmd.Context(), accessToken, refreshToken); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "session stored")
			return nil
		},
	}

	c.Flags().StringVar(&accessToken, "access-token", "", "access token")
	c.Flags().StringVar(&refreshToken, "refresh-token", "", "refresh token")
	_ = c.MarkFlagRequired("access-token")
	_ = c.MarkFlagRequired("refresh-token")
	return c
}

func newSessionTokenCmd(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Print a usable access token, refreshing it when stale",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			token, err := app.Tokens.GetToken(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}

func newSessionRefreshCmd(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Force a refresh exchange and print the new access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			token, err := app.Tokens.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}

func newSessionClearCmd(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Log out: wipe every persisted session key",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Tokens.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "session cleared")
			return nil
		},
	}
}

func newSessionOperatorTokenCmd(load appLoader) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	c := &cobra.Command{
		Use:   "operator-token",
		Short: "Mint a bearer token for the /session HTTP endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			token, err := security.SignOperatorToken([]byte(app.Config.Server.OperatorSecret), subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	c.Flags().StringVar(&subject, "subject", "operator", "who the token is issued to")
	c.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "token lifetime")
	return c
}
