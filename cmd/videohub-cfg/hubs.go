package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/videohub/internal/config"
	"github.com/muurk/videohub/internal/hub"
	"github.com/muurk/videohub/internal/ui"
)

func (a *app) hubsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hubs",
		Short: "Manage the registry of named hubs",
		Long: `Named hubs let commands use --hub <name> instead of an address. The
default hub is used when neither --host nor --hub is given.`,
	}

	cmd.AddCommand(
		a.hubsListCmd(),
		a.hubsAddCmd(),
		a.hubsRemoveCmd(),
		a.hubsDefaultCmd(),
		a.hubsInitCmd(),
	)
	return cmd
}

func (a *app) hubsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered hubs",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			names := a.registry.HubNames()
			if len(names) == 0 {
				a.out.Printf("No hubs registered in %s\n", a.configPath)
				return nil
			}

			def, _ := a.registry.DefaultHub()
			rows := make([][]string, 0, len(names))
			for _, name := range names {
				h := a.registry.GetHub(name)
				mark := ""
				if name == def {
					mark = "*"
				}
				size, seen := "", ""
				if h.Inputs > 0 || h.Outputs > 0 {
					size = fmt.Sprintf("%dx%d", h.Inputs, h.Outputs)
				}
				if !h.LastSeen.IsZero() {
					seen = h.LastSeen.Format("2006-01-02 15:04")
				}
				model := h.Model
				if h.Nickname != "" {
					model = h.Nickname
				}
				rows = append(rows, []string{mark, name, hub.Address(h.Host, h.EffectivePort()), model, size, seen})
			}
			a.out.Println(ui.RenderTable([]string{"", "NAME", "ADDRESS", "MODEL", "SIZE", "LAST SEEN"}, rows))
			return nil
		},
	}
}

func (a *app) hubsAddCmd() *cobra.Command {
	var (
		nickname   string
		setDefault bool
	)

	cmd := &cobra.Command{
		Use:   "add <name> <host>",
		Short: "Register or update a named hub",
		Example: `  videohub-cfg hubs add studio-a 192.168.1.248
  videohub-cfg hubs add edit-2 10.0.0.20 --port 9991
  videohub-cfg hubs add mcr 172.20.5.247 --nickname "MCR 40x40" --default`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, host := args[0], args[1]
			port, err := cmd.Flags().GetInt("port")
			if err != nil {
				return err
			}
			if err := hub.ValidateTarget(host, port); err != nil {
				return err
			}

			h := a.registry.SetHub(name, host, port)
			if nickname != "" {
				h.Nickname = nickname
			}
			if setDefault {
				if err := a.registry.SetDefaultHub(name); err != nil {
					return err
				}
			}
			if err := a.registry.SaveTo(a.configPath); err != nil {
				return err
			}

			a.out.Printf("%s Hub %s -> %s\n", ui.SuccessMarker, name, hub.Address(host, port))
			return nil
		},
	}

	cmd.Flags().StringVar(&nickname, "nickname", "", "Display name")
	cmd.Flags().BoolVar(&setDefault, "default", false, "Make this the default hub")
	return cmd
}

func (a *app) hubsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a named hub",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if !a.registry.RemoveHub(args[0]) {
				return fmt.Errorf("unknown hub %q", args[0])
			}
			if err := a.registry.SaveTo(a.configPath); err != nil {
				return err
			}
			a.out.Printf("%s Removed hub %s\n", ui.SuccessMarker, args[0])
			return nil
		},
	}
}

func (a *app) hubsDefaultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "default <name>",
		Short: "Set the default hub",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := a.registry.SetDefaultHub(args[0]); err != nil {
				return err
			}
			if err := a.registry.SaveTo(a.configPath); err != nil {
				return err
			}
			a.out.Printf("%s Default hub is now %s\n", ui.SuccessMarker, args[0])
			return nil
		},
	}
}

func (a *app) hubsInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a registry with the two studio hubs",
		Long: `Create the hub registry with the standard entries: a 12x12 Smart
Videohub at 192.168.1.248 and a 40x40 Universal Videohub at 172.20.5.247
(the default).`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if _, err := os.Stat(a.configPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to replace it)", a.configPath)
			}
			reg, err := config.CreateDefaultConfig(a.configPath)
			if err != nil {
				return err
			}
			a.registry = reg
			a.out.Printf("%s Wrote %s\n", ui.SuccessMarker, a.configPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing registry")
	return cmd
}
