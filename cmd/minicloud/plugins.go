package main

import (
	"context"

	"minicloud/pkg/plugins"

	"github.com/spf13/cobra"
)

func pluginsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "Configure server plugins (admins only)",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List plugins and their settings",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withPlugins(func(ctx context.Context, c *cli, m *plugins.Manager) error {
					list := m.Plugins()
					if c.json {
						return c.printJSON(list)
					}

					t := c.styles.newTable("Name", "Enabled", "Settings", "Description")
					for _, p := range list {
						enabled := c.styles.muted.Render("no")
						if p.Enabled {
							enabled = c.styles.success.Render("yes")
						}
						t.Row(p.Name, enabled, p.Settings.String(), p.Description)
					}
					c.println(t.Render())
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "enable <name>",
			Short: "Enable a plugin",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withPlugins(func(ctx context.Context, c *cli, m *plugins.Manager) error {
					return m.SetEnabled(ctx, args[0], true)
				})
			},
		},
		&cobra.Command{
			Use:   "disable <name>",
			Short: "Disable a plugin",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withPlugins(func(ctx context.Context, c *cli, m *plugins.Manager) error {
					return m.SetEnabled(ctx, args[0], false)
				})
			},
		},
		&cobra.Command{
			Use:   "set <name> <value>",
			Short: "Replace the settings of a plugin",
			Long: `Replace the settings of a plugin. The value depends on the plugin:

  file_filter    comma separated extensions, e.g. ".exe,.bat"
  upload_limit   a size, e.g. "10MB" or "512KiB"
  anything else  a JSON object`,
			Args: cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				settings, err := plugins.Parse(args[0], args[1])
				if err != nil {
					return err
				}
				return withPlugins(func(ctx context.Context, c *cli, m *plugins.Manager) error {
					return m.UpdateSettings(ctx, args[0], settings)
				})
			},
		},
	)
	return cmd
}

func withPlugins(fn func(context.Context, *cli, *plugins.Manager) error) error {
	c, cleanup, err := openCLI()
	if err != nil {
		return err
	}
	defer cleanup()
	ctx, cancel := commandContext()
	defer cancel()

	m, err := c.Plugins()
	if err != nil {
		return err
	}
	if err := m.Load(ctx); err != nil {
		return err
	}
	return fn(ctx, c, m)
}
