package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muurk/videohub/internal/hub"
	"github.com/muurk/videohub/internal/menu"
	"github.com/muurk/videohub/internal/preset"
	"github.com/muurk/videohub/internal/ui"
	"github.com/muurk/videohub/internal/version"
)

// Output formats accepted by --format
const (
	formatDetailed = "detailed"
	formatCompact  = "compact"
	formatJSON     = "json"
)

func checkFormat(format string) error {
	switch format {
	case formatDetailed, formatCompact, formatJSON:
		return nil
	}
	return fmt.Errorf("unknown format %q (use detailed, compact or json)", format)
}

func (a *app) printState(s *hub.State, format string) error {
	switch format {
	case formatJSON:
		data, err := preset.Encode(s)
		if err != nil {
			return err
		}
		a.out.Print(string(data))
	case formatCompact:
		a.out.Print(s.FormatCompact())
	default:
		a.out.Print(s.FormatDetailed())
	}
	return nil
}

func (a *app) readCmd() *cobra.Command {
	var (
		full   bool
		format string
	)

	cmd := &cobra.Command{
		Use:   "read",
		Short: "Read labels and routing from the hub",
		Long: `Connect to the hub and print its input labels, output labels and
routing table.

With --full the device information block and output locks are printed
as well.`,
		Example: `  # Read the default hub
  videohub-cfg read

  # Read a specific hub with device information
  videohub-cfg read --host 192.168.1.248 --full

  # JSON in preset format, for scripting
  videohub-cfg read --hub studio-a --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			if err := a.requireTarget(); err != nil {
				return err
			}

			result, err := a.session.Read(cmd.Context())
			if err != nil {
				return a.fail("Read failed", err)
			}
			s := result.State
			a.rememberHub(result.Info.ModelName(), len(s.InputLabels), len(s.OutputLabels))

			if format == formatJSON {
				return a.printState(s, format)
			}
			if format == formatDetailed {
				a.out.PrintHeader("Hub routing", version.Name+" read",
					ui.Detail{Key: "Hub", Value: a.session.Target()},
					ui.Detail{Key: "Summary", Value: s.Summary()},
				)
			}
			a.out.Print(menu.FormatRead(result, full))
			return nil
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "Also print device information and output locks")
	cmd.Flags().StringVar(&format, "format", formatDetailed, "Output format (detailed, compact, json)")
	return cmd
}

func (a *app) saveCmd() *cobra.Command {
	var (
		description string
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "save [name]",
		Short: "Read the hub and save its routing as a preset",
		Long: `Read the hub and write its routing table and labels to
<preset-dir>/<name>.json.

The name defaults to "preset". An existing preset is only replaced after
confirmation, or with --force.`,
		Example: `  videohub-cfg save morning-show --description "Morning show, studio A"
  videohub-cfg save morning-show --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			name, err := preset.CleanName(name)
			if err != nil {
				return err
			}
			if err := a.requireTarget(); err != nil {
				return err
			}

			store := a.session.Store()
			if store.Exists(name) && !force {
				path, _ := store.Path(name)
				if !ui.ConfirmOverwrite(a.in, a.out.Writer(), path) {
					a.out.PrintWarning("Preset not saved", ui.Detail{Key: "Path", Value: path})
					return nil
				}
				force = true
			}

			result, err := a.session.Read(cmd.Context())
			if err != nil {
				return a.fail("Read failed", err)
			}
			a.rememberHub(result.Info.ModelName(), len(result.State.InputLabels), len(result.State.OutputLabels))

			path, err := a.session.Save(name, description, force)
			if err != nil {
				return a.fail("Save failed", err)
			}

			a.out.PrintSuccess("Preset saved",
				ui.Detail{Key: "Path", Value: path},
				ui.Detail{Key: "Hub", Value: a.session.Target()},
				ui.Detail{Key: "Contents", Value: result.State.Summary()},
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Free-text description stored in the preset")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing preset without asking")
	return cmd
}

func (a *app) presetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "presets",
		Aliases: []string{"list"},
		Short:   "List saved presets",
		Args:    cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			entries, err := a.session.List()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				a.out.Printf("No presets in %s\n", a.session.Store().Dir)
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				routes := strconv.Itoa(e.Routes)
				desc := e.Description
				if e.Err != nil {
					routes, desc = "-", "unreadable: "+e.Err.Error()
				}
				rows = append(rows, []string{e.Name, routes, e.ModTime.Format("2006-01-02 15:04"), desc})
			}
			a.out.Println(ui.RenderTable([]string{"NAME", "ROUTES", "MODIFIED", "DESCRIPTION"}, rows))
			return nil
		},
	}
}

func (a *app) showPresetCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show-preset <name>",
		Short: "Print a saved preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			s, err := a.session.Load(args[0])
			if err != nil {
				return err
			}
			return a.printState(s, format)
		},
	}

	cmd.Flags().StringVar(&format, "format", formatDetailed, "Output format (detailed, compact, json)")
	return cmd
}

func (a *app) deletePresetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete-preset <name>",
		Short: "Delete a saved preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			name, err := preset.CleanName(args[0])
			if err != nil {
				return err
			}
			if !a.session.Store().Exists(name) {
				return fmt.Errorf("%w: %s", preset.ErrPresetNotFound, name)
			}
			if !yes && !ui.ConfirmDelete(a.in, a.out.Writer(), name) {
				return nil
			}
			if err := a.session.Delete(name); err != nil {
				return err
			}
			a.out.Printf("%s Deleted preset %s\n", ui.SuccessMarker, name)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking")
	return cmd
}

func (a *app) compareCmd() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "compare <name>",
		Short: "Compare a preset with the hub's current routing",
		Long: `Load a preset, read the hub and print both routing tables side by
side. Outputs whose input differs are marked with '*'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireTarget(); err != nil {
				return err
			}
			if _, err := a.session.Load(args[0]); err != nil {
				return err
			}
			if _, err := a.session.Read(cmd.Context()); err != nil {
				return a.fail("Read failed", err)
			}

			rows, err := a.session.Compare()
			if err != nil {
				return a.fail("Compare failed", err)
			}

			if plain {
				a.out.Print(hub.FormatComparison(rows))
				return nil
			}
			a.out.PrintHeader("Compare", version.Name+" compare "+a.session.PresetName,
				ui.Detail{Key: "Preset", Value: a.session.Preset.Source},
				ui.Detail{Key: "Hub", Value: a.session.Target()},
			)
			a.out.Print(ui.RenderComparison(rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Print an unstyled table for logs and scripts")
	return cmd
}

func (a *app) applyCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "apply <name>",
		Short: "Send a preset's routing to the hub",
		Long: `Route every output in the preset, in ascending output order, one
command per output.

Labels in the preset are not sent. A route that fails to send is reported
and the remaining routes are still sent; nothing is rolled back.`,
		Example: `  videohub-cfg apply morning-show
  videohub-cfg apply morning-show --hub studio-a --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireTarget(); err != nil {
				return err
			}
			p, err := a.session.Load(args[0])
			if err != nil {
				return err
			}
			name := a.session.PresetName

			a.out.PrintHeader("Apply preset", version.Name+" apply "+name,
				ui.Detail{Key: "Preset", Value: p.Source},
				ui.Detail{Key: "Hub", Value: a.session.Target()},
				ui.Detail{Key: "Routes", Value: strconv.Itoa(len(p.Routing))},
			)

			if len(p.Routing) > 0 && !yes && !ui.ConfirmApply(a.in, a.out.Writer(), name, a.session.Target(), len(p.Routing)) {
				a.out.PrintWarning("Apply cancelled", ui.Detail{Key: "Hub", Value: a.session.Target()})
				return nil
			}

			progress := ui.NewApplyProgress(len(p.Routing))
			result, err := a.session.Apply(cmd.Context(), func(_, _ int, o hub.RouteOutcome) {
				progress.Record(o)
				a.out.Println(ui.RenderOutcome(o))
			})
			if err != nil {
				return a.fail("Apply failed", err)
			}

			a.out.Newline()
			if !result.NothingToApply() {
				a.out.Println(progress.RenderBar())
				a.out.Newline()
			}
			a.out.PrintResult(ui.ApplySummary(name, result))

			if failed := result.Failed(); len(failed) > 0 {
				errs := make([]error, 0, len(failed))
				for _, o := range failed {
					errs = append(errs, o.Err)
				}
				return reportedError{fmt.Errorf("%d of %d routes failed: %w", len(failed), len(result.Outcomes), errors.Join(errs...))}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Apply without asking")
	return cmd
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the resolved hub, preset directory and timings",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			s := a.settings
			target := "not set"
			if s.HasTarget() {
				target = a.session.Target()
				if s.Hub != "" {
					target += " (" + s.Hub + ")"
				}
			}

			rows := []ui.Detail{
				{Key: "Hub", Value: target},
				{Key: "Registry", Value: a.configPath},
				{Key: "Preset dir", Value: s.PresetDir},
				{Key: "Parsing", Value: s.Policy().String()},
				{Key: "Timeouts", Value: fmt.Sprintf("fetch %v, greeting %v, idle %v, ack %v",
					s.FetchTimeout, s.InitialTimeout, s.FollowupTimeout, s.AckTimeout)},
			}
			if names := a.registry.HubNames(); len(names) > 0 {
				rows = append(rows, ui.Detail{Key: "Known hubs", Value: strings.Join(names, ", ")})
			}
			a.out.Println(ui.RenderKeyValues(rows))
			return nil
		},
	}
}
