package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/muhammadmasoud/amazon-clone-sub000/internal/app"
	"github.com/muhammadmasoud/amazon-clone-sub000/internal/domain"
)

func checkoutCmd() *cobra.Command {
	var (
		form   domain.ShippingForm
		method string
	)

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the current cart",
		Long: `Place an order for the current cart.

Examples:
  storefront checkout --address "1 Main St" --city Springfield
  storefront checkout --address "1 Main St" --payment card`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stderr := cmd.ErrOrStderr()
			return withLoadedCart(cmd, func(ctx context.Context, a *app.App) error {
				sess := a.Checkout.ActiveSession()
				if err := sess.SetShippingForm(form); err != nil {
					return err
				}
				if err := sess.SelectPaymentMethod(domain.PaymentMethod(method)); err != nil {
					return err
				}

				out, err := a.Checkout.Submit(ctx, sess)
				if perr := printJSON(cmd.OutOrStdout(), out); perr != nil {
					return perr
				}
				return err
			},
				app.WithNotifier(consoleNotifier(stderr)),
				app.WithNavigator(consoleNavigator(stderr)),
				app.WithCardConfirmer(stdinConfirmer{in: cmd.InOrStdin(), out: stderr}),
			)
		},
	}

	f := cmd.Flags()
	f.StringVar(&form.Address, "address", "", "shipping street address (required)")
	f.StringVar(&form.City, "city", "", "shipping city")
	f.StringVar(&form.State, "state", "", "shipping state")
	f.StringVar(&form.Zip, "zip", "", "shipping postal code")
	f.StringVar(&form.Country, "country", "", "shipping country (default "+domain.DefaultShippingCountry+")")
	f.StringVar(&form.Phone, "phone", "", "contact phone")
	f.StringVar(&form.CustomerNotes, "notes", "", "notes for the order")
	f.StringVar(&method, "payment", string(domain.PaymentMethodCashOnDelivery), "payment method: card or cash_on_delivery")

	return cmd
}
