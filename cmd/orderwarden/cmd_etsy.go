package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newEtsyCmd(flags *globalFlags) *cobra.Command {
	etsyCmd := &cobra.Command{
		Use:   "etsy",
		Short: "Manage the Etsy shop connection",
	}

	etsyCmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show whether an Etsy shop is connected",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := newCLIApp(cmd, flags)
				if err != nil {
					return err
				}
				defer a.close()

				st, err := a.dash.RefreshEtsy(cmd.Context())
				printNotes(cmd, a)
				if err != nil {
					return cliError(err)
				}
				if !st.Connected {
					fmt.Fprintln(cmd.OutOrStdout(), "Etsy: not connected")
					return nil
				}
				last := "never"
				if st.LastSyncAt != nil {
					last = st.LastSyncAt.Local().Format("2006-01-02 15:04")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Etsy: connected to %s (last sync %s)\n", st.ShopName, last)
				return nil
			},
		},
		&cobra.Command{
			Use:   "connect",
			Short: "Print the Etsy consent URL",
			Long: `Prints the URL that connects your Etsy shop. After approving, the
browser lands on the configured return URL; pass that URL back with
--landing-url to see the outcome.`,
			Args: cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := newCLIApp(cmd, flags)
				if err != nil {
					return err
				}
				defer a.close()

				err = a.dash.ConnectEtsy()
				printNotes(cmd, a)
				return cliError(err)
			},
		},
		&cobra.Command{
			Use:   "sync",
			Short: "Import new orders from the connected shop",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := newCLIApp(cmd, flags)
				if err != nil {
					return err
				}
				defer a.close()

				_, err = a.dash.SyncEtsy(cmd.Context())
				printNotes(cmd, a)
				return cliError(err)
			},
		},
		&cobra.Command{
			Use:   "disconnect",
			Short: "Disconnect the Etsy shop",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := newCLIApp(cmd, flags)
				if err != nil {
					return err
				}
				defer a.close()

				err = a.dash.DisconnectEtsy(cmd.Context())
				printNotes(cmd, a)
				return cliError(err)
			},
		},
	)
	return etsyCmd
}
