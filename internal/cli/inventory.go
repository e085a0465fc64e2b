package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"petcare-inventory-api/internal/model"

	"github.com/spf13/cobra"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every inventory item",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(opts.sessionPath)
			if err != nil {
				return err
			}

			items, err := newAPIClient(s).listItems(cmd.Context())
			if err != nil {
				return err
			}
			return printItems(cmd.OutOrStdout(), items)
		},
	}
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search items by name, category or supplier",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return fmt.Errorf("search query must not be blank")
			}

			s, err := loadSession(opts.sessionPath)
			if err != nil {
				return err
			}

			items, err := newAPIClient(s).searchItems(cmd.Context(), query)
			if err != nil {
				return err
			}
			return printItems(cmd.OutOrStdout(), items)
		},
	}
}

func newUploadCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload an item photo and print its URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(opts.sessionPath)
			if err != nil {
				return err
			}

			if d := checkAdmin(cmd.Context(), opts, s); !d.Allowed() {
				return &accessDeniedError{decision: d}
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			url, err := newAPIClient(s).uploadPhoto(cmd.Context(), args[0], data)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}
}

func printItems(out io.Writer, items []model.InventoryItem) error {
	if len(items) == 0 {
		fmt.Fprintln(out, "No items.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tCATEGORY\tSUPPLIER\tEXPIRES")
	for _, item := range items {
		expires := "-"
		if item.ExpiryDate != nil {
			expires = item.ExpiryDate.Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			item.ID, item.Name, item.Quantity, item.Category, item.Supplier, expires)
	}
	return tw.Flush()
}
