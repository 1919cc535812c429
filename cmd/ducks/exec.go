package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/vango-dev/ducks/internal/config"
	"github.com/vango-dev/ducks/internal/errors"
	"github.com/vango-dev/ducks/pkg/resource"
	"github.com/vango-dev/ducks/pkg/store"
)

// DefaultExecTimeout bounds how long exec waits for an action.
const DefaultExecTimeout = 30 * time.Second

func execCmd(flags *globalFlags) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "exec <resource> <action> [payload]",
		Short: "Dispatch one resource action and print the state",
		Long: `Dispatch an async action of a configured resource and print the
resulting resource state as JSON.

The action may be given with or without the leading "$" and in any case.
The payload is a JSON value; URL placeholders such as :id are filled
from it.

Examples:
  ducks exec widget query
  ducks exec widget '$GET' '{"id":1}'
  ducks exec widget create '{"name":"gear"}'`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			var payload any
			if len(args) == 3 {
				if err := json.Unmarshal([]byte(args[2]), &payload); err != nil {
					return errors.New("D122").
						WithDetail(err.Error()).
						WithExample(`ducks exec widget update '{"id":1,"name":"gear"}'`).
						Wrap(err)
				}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			logger := newLogger(cfg, flags.verbose, cmd.ErrOrStderr())
			return runExec(ctx, cfg, logger, cmd.OutOrStdout(), args[0], args[1], payload)
		},
	}

	cmd.Flags().DurationVarP(&timeout, "timeout", "t", DefaultExecTimeout, "How long to wait for the action")

	return cmd
}

func runExec(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer, name, action string, payload any) error {
	rc, ok := cfg.Resource(name)
	if !ok {
		return errors.New("D120").
			WithDetail(fmt.Sprintf("No resource named %q", name)).
			WithSuggestion("Configured resources: " + strings.Join(cfg.ResourceNames(), ", "))
	}

	res, err := newBinder(cfg, logger, nil).bind(rc)
	if err != nil {
		return err
	}

	st := store.New(store.WithLogger(logger.With("component", "store")))
	key := sliceKey(rc.Name)
	st.Register(key, res.Reducer(), res.InitialState())
	res.Configure(st)

	action = normalizeAction(action)
	if !slices.Contains(res.RequestActions(), res.ActionType(action)) {
		return errors.New("D121").
			WithDetail(fmt.Sprintf("%s has no request for %s", rc.Name, res.ActionType(action))).
			WithSuggestion("Available: " + strings.Join(res.RequestActions(), ", "))
	}

	f, err := res.DispatchAsync(ctx, action, payload)
	if err != nil {
		return err
	}
	if err := f.Wait(ctx); err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return errors.New("D123").
				WithDetail(fmt.Sprintf("%s did not complete in time", res.ActionType(action))).
				WithSuggestion("Raise --timeout or check that the backend is reachable").
				Wrap(err)
		}
		return err
	}

	data, err := json.MarshalIndent(st.Slice(key), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(data))

	if f.Status() == resource.Failed {
		return errors.New("D140").
			WithDetail(fmt.Sprintf("%s failed", f.Action().Type)).
			Wrap(f.Err())
	}
	return nil
}

// normalizeAction turns "query", "QUERY" and "$query" into "$QUERY".
func normalizeAction(action string) string {
	action = strings.ToUpper(strings.TrimSpace(action))
	if !strings.HasPrefix(action, "$") {
		action = "$" + action
	}
	return action
}
