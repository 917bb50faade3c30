package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"minicloud/pkg/directory"
	"minicloud/pkg/plugins"
	"minicloud/pkg/types"
	"minicloud/pkg/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// openDirectory builds the directory view model for the signed-in user. For
// admins the enabled upload plugins tighten the client-side checks.
func (c *cli) openDirectory(ctx context.Context, opts ...directory.Option) (*directory.Directory, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}

	base := []directory.Option{directory.WithConfirmer(func(item types.ItemRef) bool {
		return c.confirm(c.T("delete.confirm", item.Kind, item.Name))
	})}
	d := c.Directory(append(base, opts...)...)
	if sess, _ := c.Session(); sess.User.IsAdmin() {
		if _, err := c.applyUploadPolicy(ctx, d); err != nil {
			c.Logger.Debug("Plugin policy unavailable", zap.Error(err))
		}
	}
	return d, nil
}

// applyUploadPolicy loads the plugin list and hands the enabled upload
// restrictions to d. Without a size plugin the configured limit applies.
func (c *cli) applyUploadPolicy(ctx context.Context, d *directory.Directory) (plugins.UploadPolicy, error) {
	mgr, err := c.Plugins()
	if err != nil {
		return plugins.UploadPolicy{}, err
	}
	if err := mgr.Load(ctx); err != nil {
		return plugins.UploadPolicy{}, err
	}
	policy := mgr.Policy()
	limit := c.Config.UploadLimit()
	if policy.MaxFileSize > 0 {
		limit = policy.MaxFileSize
	}
	d.SetUploadLimit(limit)
	d.SetBlockedExtensions(policy.BlockedExtensions)
	return policy, nil
}

// resolveItem finds the file or folder named by an absolute remote path.
func (c *cli) resolveItem(ctx context.Context, tree []types.FolderNode, p string) (types.ItemRef, *types.FileNode, error) {
	if id, err := directory.ResolvePath(tree, p); err == nil {
		if id == nil {
			return types.ItemRef{}, nil, errors.New("the root folder cannot be used here")
		}
		for _, f := range tree {
			if f.ID == *id {
				return types.FolderRef(f), nil, nil
			}
		}
	}

	dir, name := directory.SplitPath(p)
	parent, err := directory.ResolvePath(tree, dir)
	if err != nil {
		return types.ItemRef{}, nil, err
	}
	files, err := c.API.ListFiles(ctx, parent)
	if err != nil {
		return types.ItemRef{}, nil, err
	}
	for i := range files {
		if files[i].Name == name {
			return types.FileRef(files[i]), &files[i], nil
		}
	}
	return types.ItemRef{}, nil, fmt.Errorf("no such file or folder: %s", p)
}

func lsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls [path]",
		Short: "List a folder",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cleanup, err := openCLI()
			if err != nil {
				return err
			}
			defer cleanup()
			ctx, cancel := commandContext()
			defer cancel()

			d, err := c.openDirectory(ctx)
			if err != nil {
				return err
			}
			target := "/"
			if len(args) == 1 {
				target = args[0]
			}
			if err := navigatePath(ctx, c, d, target); err != nil {
				return err
			}

			view := d.View()
			if c.json {
				return c.printJSON(view)
			}
			c.println(renderView(c, view))
			return nil
		},
	}
}

// navigatePath loads the folder tree, then navigates to the folder at p.
func navigatePath(ctx context.Context, c *cli, d *directory.Directory, p string) error {
	tree, err := c.API.FolderTree(ctx)
	if err != nil {
		return err
	}
	id, err := directory.ResolvePath(tree, p)
	if err != nil {
		return err
	}
	return d.Navigate(ctx, id)
}

func renderView(c *cli, view directory.View) string {
	var b strings.Builder

	crumbs := []string{c.T("app.home")}
	for _, e := range view.Breadcrumb {
		crumbs = append(crumbs, e.Name)
	}
	b.WriteString(c.styles.title.Render(strings.Join(crumbs, " / ")))
	b.WriteString("\n")

	if view.Empty() {
		b.WriteString(c.styles.muted.Render(c.T("folder.empty")))
		return b.String()
	}

	t := c.styles.newTable("Name", "Type", "Size", "Created")
	for _, f := range view.Folders {
		t.Row(c.styles.folder.Render(f.Name+"/"), "folder", utils.FormatDataSize(f.Size), relativeTime(f.CreatedAt))
	}
	for _, f := range view.Files {
		kind := f.MimeType
		if kind == "" {
			kind = "file"
		}
		t.Row(f.Name, kind, utils.FormatDataSize(f.Size), relativeTime(f.CreatedAt))
	}
	b.WriteString(t.Render())
	return b.String()
}

func mkdirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <path>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cleanup, err := openCLI()
			if err != nil {
				return err
			}
			defer cleanup()
			ctx, cancel := commandContext()
			defer cancel()

			d, err := c.openDirectory(ctx)
			if err != nil {
				return err
			}
			dir, name := directory.SplitPath(args[0])
			if err := navigatePath(ctx, c, d, dir); err != nil {
				return err
			}

			id, err := d.CreateFolder(ctx, name, d.View().CurrentFolderID)
			if err != nil {
				return err
			}
			if c.json {
				return c.printJSON(map[string]string{"id": id, "name": name})
			}
			return nil
		},
	}
}

func rmCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm <path>",
		Short: "Delete a file, or a folder with everything in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cleanup, err := openCLI()
			if err != nil {
				return err
			}
			defer cleanup()
			ctx, cancel := commandContext()
			defer cancel()

			var opts []directory.Option
			if yes {
				opts = append(opts, directory.WithConfirmer(func(types.ItemRef) bool { return true }))
			}
			d, err := c.openDirectory(ctx, opts...)
			if err != nil {
				return err
			}

			tree, err := c.API.FolderTree(ctx)
			if err != nil {
				return err
			}
			item, _, err := c.resolveItem(ctx, tree, args[0])
			if err != nil {
				return err
			}

			if err := d.Delete(ctx, item); err != nil {
				if errors.Is(err, directory.ErrNotConfirmed) {
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

func mvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mv <path> <folder>",
		Short: "Move a file or folder into another folder (\"/\" for the root)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cleanup, err := openCLI()
			if err != nil {
				return err
			}
			defer cleanup()
			ctx, cancel := commandContext()
			defer cancel()

			d, err := c.openDirectory(ctx)
			if err != nil {
				return err
			}
			// Loading the root gives the view the tree the descendant check needs.
			if err := d.Navigate(ctx, nil); err != nil {
				return err
			}

			tree, err := c.API.FolderTree(ctx)
			if err != nil {
				return err
			}
			item, _, err := c.resolveItem(ctx, tree, args[0])
			if err != nil {
				return err
			}
			dest, err := directory.ResolvePath(tree, args[1])
			if err != nil {
				return err
			}

			return d.Move(ctx, item, dest)
		},
	}
}

func uploadCmd() *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "upload <local path>...",
		Short: "Upload files, or folder trees, into a remote folder",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cleanup, err := openCLI()
			if err != nil {
				return err
			}
			defer cleanup()
			ctx, cancel := commandContext()
			defer cancel()

			d, err := c.openDirectory(ctx)
			if err != nil {
				return err
			}
			if err := navigatePath(ctx, c, d, to); err != nil {
				return err
			}
			folderID := d.View().CurrentFolderID

			var plain, bulk []directory.UploadFile
			for _, arg := range args {
				info, err := os.Stat(arg)
				if err != nil {
					return err
				}
				if !info.IsDir() {
					plain = append(plain, localFile(arg, "", info.Size()))
					continue
				}
				files, err := collectTree(arg)
				if err != nil {
					return err
				}
				bulk = append(bulk, files...)
			}

			var total directory.UploadReport
			if len(plain) > 0 {
				report, err := d.Upload(ctx, plain, directory.UploadTarget{FolderID: folderID})
				if err != nil {
					return err
				}
				total.Succeeded += report.Succeeded
				total.Failed += report.Failed
			}
			if len(bulk) > 0 {
				report, err := d.Upload(ctx, bulk, directory.UploadTarget{FolderID: folderID, Bulk: true})
				if err != nil {
					return err
				}
				total.Succeeded += report.Succeeded
				total.Failed += report.Failed
				total.Groups = report.Groups
			}

			if c.json {
				return c.printJSON(total)
			}
			if total.Failed > 0 {
				return fmt.Errorf("%d of %d uploads failed", total.Failed, total.Failed+total.Succeeded)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&to, "to", "t", "/", "remote folder to upload into")
	return cmd
}

func localFile(path, rel string, size int64) directory.UploadFile {
	return directory.UploadFile{
		Name:         filepath.Base(path),
		RelativePath: rel,
		Size:         size,
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

// collectTree lists every regular file below root. Relative paths start
// with the name of root itself, so "photos" yields "photos/2024/a.jpg".
func collectTree(root string) ([]directory.UploadFile, error) {
	base := filepath.Dir(filepath.Clean(root))

	var files []directory.UploadFile
	err := filepath.WalkDir(root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		files = append(files, localFile(p, filepath.ToSlash(rel), info.Size()))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", root, err)
	}
	return files, nil
}

func downloadCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "download <path>",
		Short: "Download a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, cleanup, err := openCLI()
			if err != nil {
				return err
			}
			defer cleanup()
			ctx, cancel := commandContext()
			defer cancel()

			d, err := c.openDirectory(ctx)
			if err != nil {
				return err
			}
			tree, err := c.API.FolderTree(ctx)
			if err != nil {
				return err
			}
			_, file, err := c.resolveItem(ctx, tree, args[0])
			if err != nil {
				return err
			}
			if file == nil {
				return fmt.Errorf("%s is a folder", args[0])
			}

			dest := output
			if dest == "" {
				dest = filepath.Join(c.Config.DownloadDir, file.Name)
			}
			n, err := saveDownload(ctx, d, *file, dest)
			if err != nil {
				return err
			}

			if c.json {
				return c.printJSON(map[string]any{"path": dest, "bytes": n})
			}
			c.println(c.styles.success.Render(c.T("download.saved", dest)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "local file to write (default: download_dir/<name>)")
	return cmd
}

// saveDownload writes the file to a temporary sibling of dest and renames it
// into place once complete. An existing dest is untouched on error.
func saveDownload(ctx context.Context, d *directory.Directory, file types.FileNode, dest string) (int64, error) {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}
	out, err := os.CreateTemp(dir, "."+filepath.Base(dest)+"-*")
	if err != nil {
		return 0, err
	}
	tmp := out.Name()

	n, err := d.Download(ctx, file, out)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmp, 0644)
	}
	if err == nil {
		err = os.Rename(tmp, dest)
	}
	if err != nil {
		os.Remove(tmp)
		return n, err
	}
	return n, nil
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show storage usage",
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

			stats, err := c.API.Stats(ctx)
			if err != nil {
				return err
			}
			if c.json {
				return c.printJSON(stats)
			}

			lines := []string{
				c.styles.title.Render(c.T("stats.storage")),
				fmt.Sprintf("%-10s %s", c.T("stats.storage"), utils.FormatDataSize(stats.StorageUsed)),
				fmt.Sprintf("%-10s %d", c.T("stats.files"), stats.FileCount),
				fmt.Sprintf("%-10s %d", c.T("stats.folders"), stats.FolderCount),
			}
			c.println(c.styles.panel.Render(strings.Join(lines, "\n")))
			return nil
		},
	}
}
