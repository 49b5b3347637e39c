package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/videohub/internal/config"
	"github.com/muurk/videohub/internal/logging"
	"github.com/muurk/videohub/internal/menu"
	"github.com/muurk/videohub/internal/preset"
	"github.com/muurk/videohub/internal/session"
	"github.com/muurk/videohub/internal/ui"
	"github.com/muurk/videohub/internal/version"
)

// app carries what every command needs once flags are parsed
type app struct {
	configPath string
	registry   *config.Registry
	settings   *config.Settings
	session    *session.Session
	out        *ui.Printer
	in         io.Reader
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   version.Name,
		Short: "Blackmagic Videohub routing preset utility",
		Long: `Read, save, compare and apply routing presets on Blackmagic Videohub
matrix routers over the Videohub Ethernet protocol (TCP port 9990).

The hub is chosen with --host, with --hub (a name from the hub registry),
or by the registry's default hub. Settings can also come from VIDEOHUB_*
environment variables.

If no command is specified, the interactive menu is launched.`,
		Version:           version.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE:              a.runMenu,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	f := root.PersistentFlags()
	f.StringVar(&a.configPath, "config", "", "Hub registry file (default is the user config dir)")
	f.String("host", "", "Hub IP address or hostname")
	f.Int("port", config.DefaultPort, "Hub control port")
	f.String("hub", "", "Named hub from the registry")
	f.String("preset-dir", "", "Directory holding preset files (default \"presets\")")
	f.Bool("strict", false, "Fail on malformed records instead of skipping them")
	f.String("log-level", "", "Log level: debug, info, warn, error (default silent)")
	f.Duration("initial-timeout", 0, "Wait for the first byte of the greeting before applying")
	f.Duration("followup-timeout", 0, "Idle time that ends a reply")
	f.Duration("fetch-timeout", 0, "Wait for the first byte of each read reply")
	f.Duration("ack-timeout", 0, "Wait for the hub to acknowledge each route")

	root.AddCommand(
		a.readCmd(),
		a.saveCmd(),
		a.presetsCmd(),
		a.showPresetCmd(),
		a.deletePresetCmd(),
		a.compareCmd(),
		a.applyCmd(),
		a.statusCmd(),
		a.hubsCmd(),
		a.menuCmd(),
		versionCmd(),
	)
	return root
}

// setup loads the registry and settings and builds the session
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	a.out = ui.NewPrinter(cmd.OutOrStdout())
	a.in = cmd.InOrStdin()

	if a.configPath == "" {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		a.configPath = path
	}

	reg, err := config.LoadRegistryFrom(a.configPath)
	if err != nil {
		return err
	}
	a.registry = reg

	settings, err := config.LoadSettings(cmd.Flags(), reg)
	if err != nil {
		return err
	}
	a.settings = settings

	if err := logging.Initialize(settings.LogLevel); err != nil {
		return err
	}
	logging.Debug("Settings resolved",
		zap.String("config", a.configPath),
		zap.String("host", settings.Host),
		zap.Int("port", settings.Port),
		zap.String("hub", settings.Hub),
		zap.String("preset_dir", settings.PresetDir),
		zap.Stringer("policy", settings.Policy()),
	)

	a.session = session.New(settings.Client(), preset.NewStore(settings.PresetDir))
	return nil
}

// requireTarget fails unless a hub address was resolved
func (a *app) requireTarget() error {
	if !a.settings.HasTarget() {
		return fmt.Errorf("no hub address: use --host, --hub or set a default with '%s hubs default'", version.Name)
	}
	return nil
}

// fail prints a failure box and returns err marked as reported
func (a *app) fail(title string, err error) error {
	a.out.Newline()
	a.out.PrintError(title, err)
	return reportedError{err}
}

// rememberHub records what a read learned about a registered hub
func (a *app) rememberHub(model string, inputs, outputs int) {
	if a.settings.Hub == "" {
		return
	}
	a.registry.UpdateHubLastSeen(a.settings.Hub, model, inputs, outputs)
	if err := a.registry.SaveTo(a.configPath); err != nil {
		logging.Warn("Failed to update hub registry", zap.Error(err))
	}
}

func (a *app) menuCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Launch the interactive menu",
		Long: `Launch the interactive menu.

The menu keeps the last hub read and the loaded preset in memory, so a
preset can be loaded, compared with the hub and applied in one session.`,
		Args: cobra.NoArgs,
		RunE: a.runMenu,
	}
}

func (a *app) runMenu(_ *cobra.Command, _ []string) error {
	if !ui.IsTerminal() {
		return fmt.Errorf("the menu needs an interactive terminal; see '%s --help' for commands", version.Name)
	}
	if err := menu.Run(a.session); err != nil {
		return fmt.Errorf("menu error: %w", err)
	}
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
