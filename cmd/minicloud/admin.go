package main

import (
	"context"
	"errors"
	"fmt"

	"minicloud/pkg/admin"
	"minicloud/pkg/types"
	"minicloud/pkg/utils"

	"github.com/spf13/cobra"
)

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage users (admins only)",
	}

	cmd.AddCommand(
		adminUsersCmd(),
		adminRoleCmd(),
		adminPasswdCmd(),
		adminRmCmd(),
	)
	return cmd
}

// openPanel loads the user list for the signed-in admin.
func (c *cli) openPanel(ctx context.Context, opts ...admin.Option) (*admin.Panel, error) {
	p, err := c.Admin(opts...)
	if err != nil {
		return nil, err
	}
	if err := p.Load(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// findUser looks a user up by username or id.
func findUser(p *admin.Panel, name string) (types.AdminUser, error) {
	for _, u := range p.Users() {
		if u.Username == name || u.ID == name {
			return u, nil
		}
	}
	return types.AdminUser{}, fmt.Errorf("%w: %s", admin.ErrUnknownUser, name)
}

func adminUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List every user with their usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cleanup, err := openCLI()
			if err != nil {
				return err
			}
			defer cleanup()
			ctx, cancel := commandContext()
			defer cancel()

			p, err := c.openPanel(ctx)
			if err != nil {
				return err
			}
			sum := p.Summary()
			if c.json {
				return c.printJSON(map[string]any{"users": p.Users(), "summary": sum})
			}

			c.println(c.styles.title.Render(c.T("admin.users")))
			c.println(c.styles.muted.Render(fmt.Sprintf("%d users, %d admins, %d files, %d folders, %s",
				sum.Users, sum.Admins, sum.Files, sum.Folders, utils.FormatDataSize(sum.Storage))))

			t := c.styles.newTable("Username", "Email", "Role", "Files", "Folders", "Storage", "Joined")
			for _, u := range p.Users() {
				role := u.Role
				if u.IsSuperAdmin {
					role = c.styles.warning.Render("super admin")
				}
				t.Row(u.Username, u.Email, role,
					fmt.Sprint(u.FileCount), fmt.Sprint(u.FolderCount),
					utils.FormatDataSize(u.StorageUsed), relativeTime(u.CreatedAt))
			}
			c.println(t.Render())
			return nil
		},
	}
}

func adminRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "role <username> admin|user",
		Short:     "Change the role of a user",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{types.RoleAdmin, types.RoleUser},
		RunE: func(cmd *cobra.Command, args []string) error {
			var makeAdmin bool
			switch args[1] {
			case types.RoleAdmin:
				makeAdmin = true
			case types.RoleUser:
			default:
				return fmt.Errorf("role must be %q or %q", types.RoleAdmin, types.RoleUser)
			}

			c, cleanup, err := openCLI()
			if err != nil {
				return err
			}
			defer cleanup()
			ctx, cancel := commandContext()
			defer cancel()

			p, err := c.openPanel(ctx)
			if err != nil {
				return err
			}
			u, err := findUser(p, args[0])
			if err != nil {
				return err
			}
			return p.ChangeRole(ctx, u.ID, makeAdmin)
		},
	}
}

func adminPasswdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "passwd <username>",
		Short: "Set the password of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cleanup, err := openCLI()
			if err != nil {
				return err
			}
			defer cleanup()
			ctx, cancel := commandContext()
			defer cancel()

			p, err := c.openPanel(ctx)
			if err != nil {
				return err
			}
			u, err := findUser(p, args[0])
			if err != nil {
				return err
			}

			pw, err := c.readPassword(fmt.Sprintf("New password for %s: ", u.Username))
			if err != nil {
				return err
			}
			c.println(renderPasswordRules(c, pw))
			return p.ChangePassword(ctx, u.ID, pw)
		},
	}
}

func adminRmCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm <username>",
		Short: "Delete a user and everything they own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cleanup, err := openCLI()
			if err != nil {
				return err
			}
			defer cleanup()
			ctx, cancel := commandContext()
			defer cancel()

			p, err := c.openPanel(ctx, admin.WithConfirmer(func(u types.AdminUser) bool {
				return yes || c.confirm(c.T("admin.delete_confirm", u.Username))
			}))
			if err != nil {
				return err
			}
			u, err := findUser(p, args[0])
			if err != nil {
				return err
			}

			if err := p.DeleteUser(ctx, u.ID); err != nil {
				if errors.Is(err, admin.ErrNotConfirmed) {
					c.println(c.styles.muted.Render("Cancelled"))
					return nil
				}
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
