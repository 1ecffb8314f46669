package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/angelmondragon/buzdealz-backend/pkg/client"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// wishlistResult is the structured output of a wishlist mutation.
type wishlistResult struct {
	DealID       uuid.UUID `json:"dealId" yaml:"dealId"`
	InWishlist   bool      `json:"inWishlist" yaml:"inWishlist"`
	AlertEnabled bool      `json:"alertEnabled" yaml:"alertEnabled"`
}

func newWishlistCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wishlist",
		Short: "Manage saved deals and price alerts",
	}
	cmd.AddCommand(newWishlistListCommand(rootOpts))
	cmd.AddCommand(newWishlistAddCommand(rootOpts))
	cmd.AddCommand(newWishlistRemoveCommand(rootOpts))
	cmd.AddCommand(newWishlistAlertCommand(rootOpts))
	return cmd
}

func newWishlistListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved deals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			if err := a.requireSession(); err != nil {
				return err
			}
			items, err := a.sync.Wishlist(cmd.Context())
			if err != nil {
				return fromAPI(err)
			}
			return a.out.Render(items, func(w io.Writer) { writeWishlist(w, items) })
		},
	}
}

func newWishlistAddCommand(rootOpts *RootOptions) *cobra.Command {
	var alert bool
	cmd := &cobra.Command{
		Use:   "add <dealId>",
		Short: "Save a deal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseDealID(args[0])
			if err != nil {
				return err
			}
			a, err := openApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if a.api.Session().Authenticated() {
				if _, err := a.sync.Deal(ctx, id); err != nil {
					return fromAPI(err)
				}
			}
			if err := a.sync.Toggle(ctx, id, true); err != nil {
				return reported(err)
			}
			result := wishlistResult{DealID: id, InWishlist: true}
			if alert {
				// The deal stays saved without an alert for non-subscribers.
				switch err := a.sync.SetAlert(ctx, id, true); {
				case errors.Is(err, client.ErrSubscriptionRequired):
				case err != nil:
					return reported(err)
				default:
					result.AlertEnabled = true
				}
			}
			return a.out.Render(result, func(io.Writer) {})
		},
	}
	cmd.Flags().BoolVar(&alert, "alert", false, "also enable price alerts (subscribers only)")
	return cmd
}

func newWishlistRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <dealId>",
		Aliases: []string{"rm"},
		Short:   "Remove a saved deal",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseDealID(args[0])
			if err != nil {
				return err
			}
			a, err := openApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			if err := a.sync.Toggle(cmd.Context(), id, false); err != nil {
				return reported(err)
			}
			return a.out.Render(wishlistResult{DealID: id}, func(io.Writer) {})
		},
	}
}

func newWishlistAlertCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "alert <dealId> on|off",
		Short:     "Turn price alerts on or off for a saved deal",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseDealID(args[0])
			if err != nil {
				return err
			}
			enabled, err := parseSwitch(args[1])
			if err != nil {
				return err
			}
			a, err := openApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			if err := a.sync.SetAlert(cmd.Context(), id, enabled); err != nil {
				return reported(err)
			}
			return a.out.Render(wishlistResult{DealID: id, InWishlist: true, AlertEnabled: enabled}, func(io.Writer) {})
		},
	}
}

func parseSwitch(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "on", "true", "yes":
		return true, nil
	case "off", "false", "no":
		return false, nil
	}
	return false, NewExitError(ExitCommandError, fmt.Sprintf("expected on or off, got %q", raw))
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func writeWishlist(w io.Writer, items []client.WishlistItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "Wishlist is empty")
		return
	}
	for _, item := range items {
		fmt.Fprintf(w, "%s  alert=%-3s %9s  %s\n", item.DealID, onOff(item.AlertEnabled), money(item.Deal.BestAvailablePrice), item.Deal.Title)
	}
}
