package cli

import (
	"fmt"
	"io"

	"github.com/angelmondragon/buzdealz-backend/pkg/client"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newDealsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deals",
		Short: "Browse the deal catalog",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List deals in catalog order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(rootOpts, cmd)
			if err != nil {
				return err
			}
			list, err := a.sync.Deals(cmd.Context())
			if err != nil {
				return fromAPI(err)
			}
			return a.out.Render(list, func(w io.Writer) { writeDealList(w, list) })
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show one deal",
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
			deal, err := a.sync.Deal(cmd.Context(), id)
			if err != nil {
				return fromAPI(err)
			}
			return a.out.Render(deal, func(w io.Writer) { writeDeal(w, deal) })
		},
	})
	return cmd
}

func parseDealID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, NewExitError(ExitCommandError, fmt.Sprintf("invalid deal id %q", raw))
	}
	return id, nil
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func dealMarks(d client.Deal) string {
	switch {
	case d.InWishlist && d.AlertOn():
		return " [saved, alert]"
	case d.InWishlist:
		return " [saved]"
	}
	return ""
}

func writeDealList(w io.Writer, list []client.Deal) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No deals")
		return
	}
	for _, d := range list {
		fmt.Fprintf(w, "%s  %-8s %9s  %s%s\n", d.ID, d.Status, money(d.BestAvailablePrice), d.Title, dealMarks(d))
	}
}

func writeDeal(w io.Writer, d client.Deal) {
	fmt.Fprintln(w, d.Title)
	fmt.Fprintf(w, "  id:        %s\n", d.ID)
	fmt.Fprintf(w, "  retailer:  %s\n", d.Retailer)
	fmt.Fprintf(w, "  price:     %s (was %s)\n", money(d.CurrentPrice), money(d.OriginalPrice))
	fmt.Fprintf(w, "  best:      %s\n", money(d.BestAvailablePrice))
	fmt.Fprintf(w, "  status:    %s\n", d.Status)
	if d.ExpiresAt != nil {
		fmt.Fprintf(w, "  expires:   %s\n", d.ExpiresAt.UTC().Format("2006-01-02"))
	}
	if d.ProductURL != nil {
		fmt.Fprintf(w, "  url:       %s\n", *d.ProductURL)
	}
	saved := "no"
	switch {
	case d.InWishlist && d.AlertOn():
		saved = "saved, alert on"
	case d.InWishlist:
		saved = "saved"
	}
	fmt.Fprintf(w, "  wishlist:  %s\n", saved)
}
