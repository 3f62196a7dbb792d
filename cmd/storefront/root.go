package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/muhammadmasoud/amazon-clone-sub000/internal/app"
	"github.com/muhammadmasoud/amazon-clone-sub000/internal/checkout"
	"github.com/muhammadmasoud/amazon-clone-sub000/internal/config"
	"github.com/muhammadmasoud/amazon-clone-sub000/internal/domain"
	"github.com/muhammadmasoud/amazon-clone-sub000/pkg/logger"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "storefront",
		Short: "Storefront cart and checkout client",
		Long: `storefront drives the shop's REST API: it keeps the shopper's cart in
sync, places orders without creating duplicates, and can serve the same
operations over HTTP for a browser front end.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(loginTokenCmd())
	rootCmd.AddCommand(cartCmd())
	rootCmd.AddCommand(checkoutCmd())
	rootCmd.AddCommand(ordersCmd())

	return rootCmd
}

// loadApp builds the application from the environment. Logs go to stderr so
// command output on stdout stays machine readable.
func loadApp(cmd *cobra.Command, opts ...app.Option) (*app.App, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.NewWithOptions(logger.Options{
		Service: "storefront",
		Level:   cfg.LogLevel,
		Format:  logger.Format(cfg.LogFormat),
		Writer:  cmd.ErrOrStderr(),
	})

	a, err := app.NewApp(cfg, log, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize application: %w", err)
	}
	return a, log, nil
}

// withLoadedCart opens the app, loads the cart into the store and runs fn.
func withLoadedCart(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error, opts ...app.Option) error {
	a, _, err := loadApp(cmd, opts...)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if err := a.Cart.FetchCart(ctx); err != nil {
		return err
	}
	a.Cart.FetchCartCount(ctx)
	return fn(ctx, a)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// consoleNotifier prints orchestrator notifications as they happen.
func consoleNotifier(w io.Writer) checkout.Notifier {
	return checkout.NotifierFunc(func(_ context.Context, n checkout.Notification) {
		fmt.Fprintf(w, "[%s] %s\n", n.Level, n.Message)
	})
}

func consoleNavigator(w io.Writer) checkout.Navigator {
	return checkout.NavigatorFunc(func(_ context.Context, path string) {
		fmt.Fprintf(w, "next: %s\n", path)
	})
}

// stdinConfirmer hands the client secret to the shopper and waits until
// they have completed the card form elsewhere.
type stdinConfirmer struct {
	in  io.Reader
	out io.Writer
}

func (c stdinConfirmer) ConfirmCard(ctx context.Context, intent domain.PaymentIntent, _ domain.ShippingForm) (string, error) {
	fmt.Fprintf(c.out, "Complete the card payment of %s for order %s with client secret:\n  %s\nPress Enter when done.\n",
		intent.Amount.StringFixed(2), intent.OrderNumber, intent.ClientSecret)

	done := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(c.in).ReadString('\n')
		done <- err
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case err := <-done:
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read confirmation: %w", err)
		}
	}
	return checkout.IntentIDFromClientSecret(intent.ClientSecret), nil
}
