package main

import (
	"fmt"
	"strings"
	"time"

	"minicloud/pkg/auth"
	"minicloud/pkg/utils"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func loginCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login [username]",
		Short: "Sign in to the server",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cleanup, err := openCLI()
			if err != nil {
				return err
			}
			defer cleanup()
			ctx, cancel := commandContext()
			defer cancel()

			username := ""
			if len(args) == 1 {
				username = args[0]
			} else if username, err = c.readLine("Username: "); err != nil {
				return err
			}
			if password == "" {
				if password, err = c.readPassword("Password: "); err != nil {
					return err
				}
			}

			sess, err := c.Login(ctx, username, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			c.println(c.styles.success.Render(c.T("login.success", sess.User.Username)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func registerCmd() *cobra.Command {
	var (
		username string
		email    string
		language string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cleanup, err := openCLI()
			if err != nil {
				return err
			}
			defer cleanup()
			ctx, cancel := commandContext()
			defer cancel()

			if username == "" {
				if username, err = c.readLine("Username: "); err != nil {
					return err
				}
			}
			if email == "" {
				if email, err = c.readLine("Email: "); err != nil {
					return err
				}
			}
			password, err := c.readPassword("Password: ")
			if err != nil {
				return err
			}
			c.println(renderPasswordRules(c, password))
			confirm, err := c.readPassword("Confirm password: ")
			if err != nil {
				return err
			}

			sess, err := c.Register(ctx, auth.RegisterInput{
				Username: username,
				Email:    email,
				Password: password,
				Confirm:  confirm,
				Language: language,
			})
			if err != nil {
				return fmt.Errorf("registration failed: %w", err)
			}
			c.println(c.styles.success.Render(c.T("register.success")))
			c.println(c.styles.success.Render(c.T("login.success", sess.User.Username)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "account name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "email address")
	cmd.Flags().StringVarP(&language, "language", "l", "", "initial interface language")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cleanup, err := openCLI()
			if err != nil {
				return err
			}
			defer cleanup()

			if err := c.Logout(); err != nil {
				return err
			}
			c.println(c.styles.muted.Render(c.T("logout.success")))
			return nil
		},
	}
}

func passwdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "passwd",
		Short: "Change your password",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cleanup, err := openCLI()
			if err != nil {
				return err
			}
			defer cleanup()
			if err := c.requireSession(); err != nil {
				return err
			}
			ctx, cancel := commandContext()
			defer cancel()

			current, err := c.readPassword("Current password: ")
			if err != nil {
				return err
			}
			next, err := c.readPassword("New password: ")
			if err != nil {
				return err
			}
			c.println(renderPasswordRules(c, next))
			confirm, err := c.readPassword("Confirm new password: ")
			if err != nil {
				return err
			}

			if err := c.ChangePassword(ctx, current, next, confirm); err != nil {
				return fmt.Errorf("password change failed: %w", err)
			}
			c.println(c.styles.success.Render(c.T("password.changed")))
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cleanup, err := openCLI()
			if err != nil {
				return err
			}
			defer cleanup()
			if err := c.requireSession(); err != nil {
				return err
			}

			sess, _ := c.Session()
			user := sess.User
			if remote {
				ctx, cancel := commandContext()
				defer cancel()
				me, err := c.API.Me(ctx)
				if err != nil {
					return err
				}
				user = *me
			}

			info, err := auth.InspectToken(sess.Token)
			if err != nil {
				c.Logger.Debug("Token is not a readable JWT")
			}

			if c.json {
				out := map[string]any{"user": user}
				if info != nil {
					out["token"] = info
				}
				return c.printJSON(out)
			}

			role := user.Role
			if user.IsSuperAdmin {
				role += " (super admin)"
			}
			lines := []string{
				c.styles.title.Render(user.Username),
				fmt.Sprintf("%s %s", c.styles.muted.Render("Email:   "), user.Email),
				fmt.Sprintf("%s %s", c.styles.muted.Render("Role:    "), role),
				fmt.Sprintf("%s %s", c.styles.muted.Render("Server:  "), c.Config.Server),
				fmt.Sprintf("%s %s", c.styles.muted.Render("Language:"), c.I18n.Language()),
			}
			if info != nil && !info.ExpiresAt.IsZero() {
				expiry := humanize.Time(info.ExpiresAt)
				if info.Expired(time.Now()) {
					expiry = c.styles.danger.Render("expired " + expiry)
				}
				lines = append(lines, fmt.Sprintf("%s %s", c.styles.muted.Render("Token:   "), expiry))
			}
			c.println(c.styles.panel.Render(strings.Join(lines, "\n")))
			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "fetch the profile from the server")
	return cmd
}

// renderPasswordRules shows which password rules pass, with the strength.
func renderPasswordRules(c *cli, pw string) string {
	labels := map[string]string{
		auth.RuleLength:  c.T("password.rule.length"),
		auth.RuleUpper:   c.T("password.rule.upper"),
		auth.RuleLower:   c.T("password.rule.lower"),
		auth.RuleSpecial: c.T("password.rule.special"),
	}

	check := auth.CheckPassword(pw)
	var b strings.Builder
	for _, r := range check.Rules {
		if r.Passed {
			b.WriteString(c.styles.success.Render("  ✓ " + labels[r.Name]))
		} else {
			b.WriteString(c.styles.muted.Render("  ✗ " + labels[r.Name]))
		}
		b.WriteString("\n")
	}
	b.WriteString(c.styles.progressBar(utils.UsagePercent(int64(auth.Strength(pw)), int64(len(check.Rules))), 20))
	return b.String()
}
