package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/ducks/internal/errors"
)

func explainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain [code]",
		Short: "Describe an error code",
		Long: `Describe a ducks error code, or list every code when none is given.

Examples:
  ducks explain
  ducks explain D102`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				listCodes(cmd.OutOrStdout())
				return nil
			}
			return explainCode(cmd.OutOrStdout(), args[0])
		},
	}
}

func listCodes(out io.Writer) {
	for _, code := range errors.GetAllCodes() {
		t, _ := errors.GetTemplate(code)
		fmt.Fprintf(out, "%s  %-10s %s\n", code, t.Category, t.Message)
	}
}

func explainCode(out io.Writer, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	t, ok := errors.GetTemplate(code)
	if !ok {
		return errors.Newf(errors.CategoryCLI, "unknown error code %q", code).
			WithSuggestion("Run ducks explain to list every code")
	}

	fmt.Fprintf(out, "%s: %s\n\n", code, t.Message)
	info(out, "Category: %s", t.Category)
	info(out, "%s", t.Detail)
	info(out, "Learn more: %s", t.DocURL)
	return nil
}
