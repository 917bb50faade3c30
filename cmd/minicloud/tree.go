package main

import (
	"context"

	"minicloud/pkg/directory"
	"minicloud/pkg/types"
	"minicloud/pkg/utils"

	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"
)

func treeCmd() *cobra.Command {
	var withFiles bool

	cmd := &cobra.Command{
		Use:   "tree [path]",
		Short: "Show the folder hierarchy",
		Args:  cobra.MaximumNArgs(1),
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

			folders, err := c.API.FolderTree(ctx)
			if err != nil {
				return err
			}
			start := "/"
			if len(args) == 1 {
				start = args[0]
			}
			root, err := directory.ResolvePath(folders, start)
			if err != nil {
				return err
			}

			if c.json {
				return c.printJSON(folders)
			}

			label := c.T("app.home")
			if root != nil {
				label = directory.PathOf(folders, root)
			}
			t := tree.Root(label).
				Enumerator(tree.RoundedEnumerator).
				EnumeratorStyle(c.styles.muted).
				RootStyle(c.styles.title)
			if err := c.addBranch(ctx, t, folders, root, withFiles); err != nil {
				return err
			}
			c.println(t.String())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&withFiles, "files", "f", false, "list the files of every folder too")
	return cmd
}

// addBranch appends the folders below parent, and optionally their files.
// Listing files costs one request per folder.
func (c *cli) addBranch(ctx context.Context, t *tree.Tree, folders []types.FolderNode, parent *string, withFiles bool) error {
	for _, f := range directory.Children(folders, parent) {
		id := f.ID
		sub := tree.Root(c.styles.folder.Render(f.Name))
		if err := c.addBranch(ctx, sub, folders, &id, withFiles); err != nil {
			return err
		}
		t.Child(sub)
	}

	if !withFiles {
		return nil
	}
	files, err := c.API.ListFiles(ctx, parent)
	if err != nil {
		return err
	}
	for _, f := range files {
		t.Child(f.Name + c.styles.muted.Render(" ("+utils.FormatDataSize(f.Size)+")"))
	}
	return nil
}
