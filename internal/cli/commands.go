package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"tasklist/internal/app"
	"tasklist/internal/notify"
	"tasklist/internal/tasks"
	"tasklist/internal/view"
)

// withSession opens a non-interactive session around fn.
func withSession(opts *RootOptions, cmd *cobra.Command, fn func(*session) error) error {
	s, err := openSession(opts, cmd.ErrOrStderr(), false)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

// report prints the outcome notice and turns error notices into a command error.
func report(w io.Writer, out app.Outcome) error {
	if out.Notice == nil {
		return nil
	}
	if out.Notice.Severity == notify.Error {
		return errors.New(out.Notice.Message)
	}
	fmt.Fprintf(w, "%s %s\n", out.Notice.Severity.Icon(), out.Notice.Message)
	return nil
}

func newAddCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add TEXT...",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(opts, cmd, func(s *session) error {
				return report(cmd.OutOrStdout(), s.dispatch.Dispatch(app.Add(strings.Join(args, " "))))
			})
		},
	}
}

func newListCommand(opts *RootOptions) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(opts, cmd, func(s *session) error {
				if cmd.Flags().Changed("filter") {
					f, err := tasks.ParseFilter(filter)
					if err != nil {
						return err
					}
					s.dispatch.Dispatch(app.SetFilter(f))
				}
				fmt.Fprint(cmd.OutOrStdout(), view.Render(s.dispatch.Projection()))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "all", "all|completed|pending")
	return cmd
}

func newToggleCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ID",
		Short: "Mark a task completed or pending",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(opts, cmd, func(s *session) error {
				id, err := resolveID(s.dispatch.Store(), args[0])
				if err != nil {
					return err
				}
				return report(cmd.OutOrStdout(), s.dispatch.Dispatch(app.Toggle(id)))
			})
		},
	}
}

func newEditCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "edit ID TEXT...",
		Short: "Replace a task's text",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(opts, cmd, func(s *session) error {
				id, err := resolveID(s.dispatch.Store(), args[0])
				if err != nil {
					return err
				}
				return report(cmd.OutOrStdout(), s.dispatch.Dispatch(app.Edit(id, strings.Join(args[1:], " "))))
			})
		},
	}
}

func newDeleteCommand(opts *RootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(opts, cmd, func(s *session) error {
				id, err := resolveID(s.dispatch.Store(), args[0])
				if err != nil {
					return err
				}
				return confirmAndRun(opts, cmd, s, app.Delete(id), yes)
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newClearCommand(opts *RootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all completed tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(opts, cmd, func(s *session) error {
				return confirmAndRun(opts, cmd, s, app.ClearCompleted(), yes)
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newExportCommand(opts *RootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all tasks to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(opts, cmd, func(s *session) error {
				return export(cmd.OutOrStdout(), s.dispatch.Store().List(tasks.FilterAll), format)
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "output format (json|yaml)")
	return cmd
}

func export(w io.Writer, list []tasks.Task, format string) error {
	recs := tasks.ToRecords(list)
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(recs); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("invalid format %q: must be json or yaml", format)
	}
}

// confirmAndRun dispatches c, asking on stdin first when the dispatcher wants
// confirmation. Anything but yes leaves the tasks alone.
func confirmAndRun(opts *RootOptions, cmd *cobra.Command, s *session, c app.Command, yes bool) error {
	out := s.dispatch.Dispatch(c)
	if out.NeedsConfirm() {
		if !yes && !ask(opts.in, cmd.OutOrStdout(), out.Confirm) {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
			return nil
		}
		out = s.dispatch.Dispatch(c.Confirm())
	}
	return report(cmd.OutOrStdout(), out)
}

func ask(in io.Reader, w io.Writer, prompt string) bool {
	fmt.Fprintf(w, "%s [y/N] ", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// resolveID accepts a full id or a unique prefix of one.
func resolveID(store *tasks.Store, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if _, ok := store.Get(ref); ok {
		return ref, nil
	}
	var match string
	for _, t := range store.List(tasks.FilterAll) {
		if ref != "" && strings.HasPrefix(t.ID, ref) {
			if match != "" {
				return "", fmt.Errorf("id prefix %q is ambiguous", ref)
			}
			match = t.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%q: %w", ref, tasks.ErrNotFound)
	}
	return match, nil
}
