package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"orderwarden/internal/dashboard"
	"orderwarden/internal/model"
	"orderwarden/internal/notify"
	"orderwarden/internal/viewmodel"
)

type listOptions struct {
	search string
	risk   string
	status string
	date   string
	sort   string
	desc   bool
	asc    bool
}

func newListCmd(flags *globalFlags) *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List orders with search, filters and sorting",
		Long: `Lists your orders the way the dashboard shows them.

Examples:
  orderwarden list --risk red
  orderwarden list --search 1Z --date 30days --sort lastUpdateAt --desc`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newCLIApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.dash.Load(cmd.Context()); err != nil {
				printNotes(cmd, a)
				return cliError(err)
			}

			var applyErr error
			a.dash.Update(func(vm *viewmodel.ViewModel) {
				applyErr = opts.apply(vm)
			})
			if applyErr != nil {
				return applyErr
			}

			snap := a.dash.Snapshot()
			fmt.Fprintln(cmd.OutOrStdout(), renderOrders(snap.Visible))
			fmt.Fprintln(cmd.OutOrStdout(), renderSummary(snap))
			printNotes(cmd, a)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.search, "search", "", "match order id, tracking number or carrier")
	f.StringVar(&opts.risk, "risk", viewmodel.FilterAll, "risk level: all, green, yellow, red")
	f.StringVar(&opts.status, "status", viewmodel.FilterAll, "status: all or a delivery status; unknown matches carrier-reported unknown, not never-checked orders")
	f.StringVar(&opts.date, "date", string(viewmodel.DateAll), "created within: all, 7days, 30days, 90days")
	f.StringVar(&opts.sort, "sort", string(viewmodel.SortCreatedAt), "sort field")
	f.BoolVar(&opts.desc, "desc", false, "sort descending")
	f.BoolVar(&opts.asc, "asc", false, "sort ascending")
	cmd.MarkFlagsMutuallyExclusive("asc", "desc")
	return cmd
}

func (o listOptions) apply(vm *viewmodel.ViewModel) error {
	if o.risk != viewmodel.FilterAll && !model.RiskLevel(o.risk).Known() {
		return fmt.Errorf("unknown risk level %q", o.risk)
	}
	if o.status != viewmodel.FilterAll && !model.Status(o.status).Known() && model.Status(o.status) != model.StatusUnknown {
		return fmt.Errorf("unknown status %q", o.status)
	}
	window, err := viewmodel.ParseDateWindow(o.date)
	if err != nil {
		return err
	}
	field, err := viewmodel.ParseSortField(o.sort)
	if err != nil {
		return err
	}

	vm.SetSearch(o.search)
	vm.SetRiskFilter(o.risk)
	vm.SetStatusFilter(o.status)
	vm.SetDateFilter(window)
	if cur, _ := vm.Sort(); cur != field {
		vm.SetSort(field)
	}
	switch {
	case o.desc:
		vm.SetSortDirection(viewmodel.Desc)
	case o.asc:
		vm.SetSortDirection(viewmodel.Asc)
	}
	return nil
}

func newAddCmd(flags *globalFlags) *cobra.Command {
	var carrier string

	cmd := &cobra.Command{
		Use:   "add <order-id> <tracking-number>",
		Short: "Add an order to track",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newCLIApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.close()

			o, err := a.dash.CreateOrder(cmd.Context(), model.NewOrder{
				OrderID:        args[0],
				TrackingNumber: args[1],
				Carrier:        carrier,
			})
			printNotes(cmd, a)
			if err != nil {
				return cliError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderOrders([]model.Order{*o}))
			return nil
		},
	}
	cmd.Flags().StringVar(&carrier, "carrier", "", "carrier code (detected from the tracking number when empty)")
	return cmd
}

func newDeleteCmd(flags *globalFlags) *cobra.Command {
	var bestEffort bool

	cmd := &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete one or more orders",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newCLIApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.dash.Load(cmd.Context()); err != nil {
				printNotes(cmd, a)
				return cliError(err)
			}

			policy := dashboard.DeleteConfirmed
			if bestEffort {
				policy = dashboard.DeleteBestEffort
			}
			res, err := a.dash.Delete(cmd.Context(), args, policy)
			printNotes(cmd, a)
			if len(res.Failed) > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "not deleted: %s\n", strings.Join(res.Failed, ", "))
			}
			return cliError(err)
		},
	}
	cmd.Flags().BoolVar(&bestEffort, "best-effort", false, "drop every attempted order locally even when its delete fails")
	return cmd
}

func newCheckCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check <id>",
		Short: "Re-check tracking for an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newCLIApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.dash.Load(cmd.Context()); err != nil {
				printNotes(cmd, a)
				return cliError(err)
			}

			res, err := a.dash.Check(cmd.Context(), args[0])
			printNotes(cmd, a)
			if err != nil {
				return cliError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderOrders([]model.Order{res.Order}))
			return nil
		},
	}
}

// newCLIApp wires the dashboard for a one-shot command: redirect targets are
// printed and warnings go to stderr.
func newCLIApp(cmd *cobra.Command, flags *globalFlags) (*app, error) {
	a, err := newApp(flags, appOptions{
		open: func(target string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Open in your browser: "+target)
			return err
		},
		logFallback: os.Stderr,
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func printNotes(cmd *cobra.Command, a *app) {
	for _, n := range a.notes.Active() {
		w := cmd.OutOrStdout()
		if n.Kind == notify.KindError {
			w = cmd.ErrOrStderr()
		}
		fmt.Fprintf(w, "[%s] %s\n", n.Kind, n.Message)
	}
}

var errNotSignedIn = errors.New("not signed in: set --user or --token")

func cliError(err error) error {
	if errors.Is(err, dashboard.ErrUnauthenticated) {
		return errNotSignedIn
	}
	return err
}
