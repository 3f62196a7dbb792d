package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/muhammadmasoud/amazon-clone-sub000/internal/app"
	"github.com/muhammadmasoud/amazon-clone-sub000/internal/cart"
)

func cartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show and change the cart",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLoadedCart(cmd, func(ctx context.Context, a *app.App) error {
				return printCart(cmd, a)
			})
		},
	})

	var quantity, stock int
	add := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return mutateCart(cmd, func(ctx context.Context, a *app.App) error {
				return a.Cart.AddToCart(ctx, productID, quantity, stock)
			})
		},
	}
	add.Flags().IntVarP(&quantity, "quantity", "q", 1, "units to add")
	add.Flags().IntVar(&stock, "stock", cart.UnknownStock, "known stock of the product, checked before sending")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "update <item-id> <quantity>",
		Short: "Set the quantity of a cart line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := parseID(args[0])
			if err != nil {
				return err
			}
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			return mutateCart(cmd, func(ctx context.Context, a *app.App) error {
				return a.Cart.UpdateCartQuantity(ctx, itemID, qty)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <item-id>",
		Short: "Remove a cart line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return mutateCart(cmd, func(ctx context.Context, a *app.App) error {
				return a.Cart.RemoveFromCart(ctx, itemID)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateCart(cmd, func(ctx context.Context, a *app.App) error {
				return a.Cart.ClearCart(ctx)
			})
		},
	})

	promo := &cobra.Command{
		Use:   "promo",
		Short: "Apply or remove a promo code",
	}
	promo.AddCommand(&cobra.Command{
		Use:   "apply <code>",
		Short: "Apply a promo code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateCart(cmd, func(ctx context.Context, a *app.App) error {
				return a.Cart.ApplyPromoCode(ctx, args[0])
			})
		},
	})
	promo.AddCommand(&cobra.Command{
		Use:   "remove",
		Short: "Remove the applied promo code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateCart(cmd, func(ctx context.Context, a *app.App) error {
				return a.Cart.RemovePromoCode(ctx)
			})
		},
	})
	cmd.AddCommand(promo)

	return cmd
}

// mutateCart runs one cart action and prints the resulting cart. A failed
// action reports the message the store was given.
func mutateCart(cmd *cobra.Command, action func(ctx context.Context, a *app.App) error) error {
	return withLoadedCart(cmd, func(ctx context.Context, a *app.App) error {
		if err := action(ctx, a); err != nil {
			if msg := a.Store.Error(); msg != "" {
				return errors.New(msg)
			}
			return err
		}
		return printCart(cmd, a)
	})
}

func printCart(cmd *cobra.Command, a *app.App) error {
	snap := a.Store.Snapshot()
	return printJSON(cmd.OutOrStdout(), struct {
		Cart        any    `json:"cart"`
		Count       int    `json:"count"`
		CanCheckout bool   `json:"can_checkout"`
		Error       string `json:"error,omitempty"`
	}{snap.Cart, snap.Count, snap.CanCheckout(), snap.Error})
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
