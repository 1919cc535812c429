package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/ducks/internal/config"
	"github.com/vango-dev/ducks/pkg/resource"
)

func listCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured resources and their action types",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			return runList(cfg, cmd.OutOrStdout())
		},
	}
}

func runList(cfg *config.Config, out io.Writer) error {
	if len(cfg.Resources) == 0 {
		info(out, "No resources configured in %s", cfg.Path())
		return nil
	}

	for _, rc := range cfg.Resources {
		res, err := resource.New(rc.Name, resource.WithURL(rc.URL))
		if err != nil {
			return err
		}
		if err := res.RegisterDefaultActions(); err != nil {
			return err
		}

		fmt.Fprintf(out, "%s (%s) %s\n", res.Name(), rc.Transport, rc.URL)
		info(out, "requests: %s", strings.Join(res.RequestActions(), " "))
		info(out, "reducers: %s", strings.Join(res.ReducerActions(), " "))
	}
	return nil
}
