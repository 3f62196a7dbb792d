package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/muhammadmasoud/amazon-clone-sub000/internal/session"
)

func loginTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login-token",
		Short: "Manage the stored access token",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <token>",
		Short: "Store the access token sent with every request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Sessions.SetToken(cmd.Context(), args[0]); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			claims, err := session.ParseClaims(args[0])
			if err != nil {
				fmt.Fprintln(out, "token stored")
				return nil
			}
			fmt.Fprintf(out, "token stored for user %s", claims.UserID)
			if !claims.ExpiresAt.IsZero() {
				fmt.Fprintf(out, ", expires %s", claims.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
			}
			fmt.Fprintln(out)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Sessions.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "token cleared")
			return nil
		},
	})

	return cmd
}
