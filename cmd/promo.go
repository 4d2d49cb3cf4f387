package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/citrus-hotelmate/ibe-v2-sub001/internal/model"
)

func newPromoCmd(load appLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "promo",
		Short: "Promo code tools",
	}
	cmd.AddCommand(newPromoCheckCmd(load))
	return cmd
}

func newPromoCheckCmd(load appLoader) *cobra.Command {
	var (
		hotelID int
		code    string
		checkIn string
		nights  int
	)

	c := &cobra.Command{
		Use:   "check",
		Short: "Show which catalog rule a promo code resolves to for a draft booking",
		RunE: func(cmd *cobra.Command, args []string) error {
			draft := model.BookingDraft{Nights: nights}
			if checkIn != "" {
				date, err := model.ParseDate(checkIn)
				if err != nil {
					return fmt.Errorf("invalid --check-in (want YYYY-MM-DD): %w", err)
				}
				draft.CheckIn = &date
			}

			app, err := load(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			rule, err := app.Promotions.Apply(cmd.Context(), hotelID, code, draft)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rule)
		},
	}

	c.Flags().IntVar(&hotelID, "hotel", 0, "hotel id")
	c.Flags().StringVar(&code, "code", "", "promo code")
	c.Flags().StringVar(&checkIn, "check-in", "", "check-in date, YYYY-MM-DD")
	c.Flags().IntVar(&nights, "nights", 1, "number of nights")
	_ = c.MarkFlagRequired("hotel")
	_ = c.MarkFlagRequired("code")
	return c
}
