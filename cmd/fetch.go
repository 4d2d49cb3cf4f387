package main

import (
	"github.com/spf13/cobra"
)

func newFetchCmd(load appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <path>",
		Short: "GET a PMS path with the session's bearer token and print the body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			body, err := app.PMS.Fetch(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(body)
			return err
		},
	}
}
