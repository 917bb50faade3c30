package main

import (
	"fmt"
	"strings"

	"minicloud/pkg/config"
	"minicloud/pkg/i18n"
	"minicloud/pkg/session"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change client settings",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Show every setting",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.LoadClientConfig(configFile)
				if err != nil {
					return err
				}
				values := make(map[string]string)
				for _, key := range config.Keys() {
					values[key], _ = cfg.Get(key)
				}
				if outputJSON || cfg.OutputFormat == config.OutputJSON {
					c := &cli{out: cmd.OutOrStdout()}
					return c.printJSON(values)
				}

				st := newStyles(session.ThemeDark)
				t := st.newTable("Key", "Value")
				for _, key := range config.Keys() {
					t.Row(key, values[key])
				}
				fmt.Fprintln(cmd.OutOrStdout(), st.muted.Render(cfg.Path()))
				fmt.Fprintln(cmd.OutOrStdout(), t.Render())
				return nil
			},
		},
		&cobra.Command{
			Use:       "get <key>",
			Short:     "Print one setting",
			Args:      cobra.ExactArgs(1),
			ValidArgs: config.Keys(),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.LoadClientConfig(configFile)
				if err != nil {
					return err
				}
				value, err := cfg.Get(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			},
		},
		&cobra.Command{
			Use:       "set <key> <value>",
			Short:     "Change one setting and save the config file",
			Args:      cobra.ExactArgs(2),
			ValidArgs: config.Keys(),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.LoadClientConfig(configFile)
				if err != nil {
					return err
				}
				if err := cfg.Set(args[0], args[1]); err != nil {
					return err
				}
				if err := cfg.Save(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
				return nil
			},
		},
	)
	return cmd
}

func themeCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark]",
		Short:     "Show or switch the color theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{session.ThemeLight, session.ThemeDark},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cleanup, err := openCLI()
			if err != nil {
				return err
			}
			defer cleanup()

			if len(args) == 0 {
				c.println(c.Store.Theme())
				return nil
			}
			if err := c.Store.SetTheme(args[0]); err != nil {
				return err
			}
			c.styles = newStyles(args[0])
			c.println(c.styles.success.Render(c.T("theme.changed", args[0])))
			return nil
		},
	}
}

func languageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "language [code]",
		Short: "Show or switch the interface language",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cleanup, err := openCLI()
			if err != nil {
				return err
			}
			defer cleanup()

			if len(args) == 0 {
				current := c.I18n.Language()
				var lines []string
				for _, code := range i18n.Supported() {
					marker := "  "
					if code == current {
						marker = c.styles.success.Render("* ")
					}
					lines = append(lines, marker+code+"  "+languageName(code))
				}
				c.println(strings.Join(lines, "\n"))
				return nil
			}

			ctx, cancel := commandContext()
			defer cancel()
			lang, err := c.SetLanguage(ctx, args[0])
			if err != nil {
				return err
			}
			c.println(c.styles.success.Render(c.T("language.changed", languageName(lang))))
			return nil
		},
	}
}

// languageName is the name of a language in that language, e.g. "polski".
func languageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	return display.Self.Name(tag)
}
