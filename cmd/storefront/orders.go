package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/muhammadmasoud/amazon-clone-sub000/internal/api"
	"github.com/muhammadmasoud/amazon-clone-sub000/internal/domain"
)

func ordersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Order history and tracking",
	}

	var status, from, to string
	list := &cobra.Command{
		Use:   "list",
		Short: "List past orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := api.OrderFilter{Status: domain.OrderStatus(status)}
			if filter.Status != "" && !filter.Status.IsValid() {
				return fmt.Errorf("invalid status %q", status)
			}
			var err error
			if filter.DateFrom, err = parseDate(from); err != nil {
				return err
			}
			if filter.DateTo, err = parseDate(to); err != nil {
				return err
			}

			a, _, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			orders, err := a.Orders.ListOrders(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), orders)
		},
	}
	list.Flags().StringVar(&status, "status", "", "only orders in this status")
	list.Flags().StringVar(&from, "from", "", "only orders placed on or after this date (YYYY-MM-DD)")
	list.Flags().StringVar(&to, "to", "", "only orders placed on or before this date (YYYY-MM-DD)")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "show <order-id>",
		Short: "Print one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, _, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			order, err := a.Orders.GetOrder(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), order)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "cancel <order-id>",
		Short: "Cancel an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a, _, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			order, err := a.Orders.CancelOrder(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), order)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "track <order-number>",
		Short: "Show the delivery timeline of an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			tracking, err := a.Orders.TrackOrder(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tracking)
		},
	})

	return cmd
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}
