package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"minicloud/pkg/directory"
	"minicloud/pkg/dragdrop"
	"minicloud/pkg/types"
	"minicloud/pkg/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shellHelp = `Commands:
  ls                      list the current folder
  cd <path>               change folder ("..", "/" and absolute paths work)
  mkdir <name>            create a folder here
  rm <name>               delete a file or folder here
  mv <name> <folder>      move an item into a folder path
  upload <local>...       upload files or folder trees here
  download <name> [dest]  download a file
  refresh                 reload the current folder
  policy                  reload the upload restrictions (admins)
  drag <name>             start dragging an item of this folder
  over <folder>           hover the dragged item over a folder here
  root                    hover the dragged item over the root area
  leave                   leave the highlighted folder
  drop                    drop the dragged item on the highlighted target
  dropfiles <local>...    drop local files on the root area
  cancel                  end the drag without dropping
  state                   show the drag state
  help                    show this text
  exit                    leave the shell`

func shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Browse and organize files interactively",
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
			sh := &shell{cli: c, dir: d}
			sh.drag = dragdrop.New(d,
				dragdrop.WithLogger(c.Logger.Named("dragdrop")),
				dragdrop.WithOnChange(func(s dragdrop.State) {
					c.println(c.styles.muted.Render("[" + s.String() + "]"))
				}),
			)

			if err := d.Navigate(ctx, nil); err != nil {
				return err
			}
			c.println(renderView(c, d.View()))
			return sh.run(ctx)
		},
	}
}

// shell is an interactive session over one directory view.
type shell struct {
	*cli
	dir  *directory.Directory
	drag *dragdrop.Controller
}

func (s *shell) run(ctx context.Context) error {
	for ctx.Err() == nil {
		line, err := s.readLine(s.prompt())
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.println()
				return nil
			}
			return err
		}

		args := splitArgs(line)
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" || args[0] == "quit" {
			return nil
		}
		if err := s.exec(ctx, args[0], args[1:]); err != nil {
			s.Logger.Debug("Shell command failed", zap.String("command", args[0]), zap.Error(err))
			s.println(s.styles.danger.Render(err.Error()))
		}
	}
	return nil
}

func (s *shell) prompt() string {
	return s.styles.title.Render(s.cwd()) + " > "
}

// cwd is the path of the current folder, derived from the breadcrumb.
func (s *shell) cwd() string {
	view := s.dir.View()
	names := make([]string, 0, len(view.Breadcrumb))
	for _, e := range view.Breadcrumb {
		names = append(names, e.Name)
	}
	return "/" + strings.Join(names, "/")
}

func (s *shell) exec(ctx context.Context, name string, args []string) error {
	switch name {
	case "help":
		s.println(shellHelp)
	case "ls":
		s.println(renderView(s.cli, s.dir.View()))
	case "refresh":
		if err := s.dir.Refresh(ctx); err != nil {
			return err
		}
		s.println(renderView(s.cli, s.dir.View()))
	case "policy":
		policy, err := s.applyUploadPolicy(ctx, s.dir)
		if err != nil {
			return err
		}
		limit := "-"
		if policy.MaxFileSize > 0 {
			limit = utils.FormatDataSize(policy.MaxFileSize)
		}
		blocked := "-"
		if len(policy.BlockedExtensions) > 0 {
			blocked = strings.Join(policy.BlockedExtensions, " ")
		}
		s.println(fmt.Sprintf("max file size: %s\nblocked: %s", limit, blocked))
	case "cd":
		target := "/"
		if len(args) > 0 {
			target = s.abs(args[0])
		}
		if err := navigatePath(ctx, s.cli, s.dir, target); err != nil {
			return err
		}
		s.println(renderView(s.cli, s.dir.View()))
	case "mkdir":
		if len(args) != 1 {
			return errors.New("usage: mkdir <name>")
		}
		_, err := s.dir.CreateFolder(ctx, args[0], s.dir.View().CurrentFolderID)
		return err
	case "rm":
		if len(args) != 1 {
			return errors.New("usage: rm <name>")
		}
		item, err := s.item(args[0])
		if err != nil {
			return err
		}
		if err := s.dir.Delete(ctx, item); err != nil && !errors.Is(err, directory.ErrNotConfirmed) {
			return err
		}
	case "mv":
		if len(args) != 2 {
			return errors.New("usage: mv <name> <folder>")
		}
		item, err := s.item(args[0])
		if err != nil {
			return err
		}
		dest, err := s.resolveFolder(ctx, args[1])
		if err != nil {
			return err
		}
		return s.dir.Move(ctx, item, dest)
	case "upload":
		files, err := s.localFiles(args)
		if err != nil {
			return err
		}
		return s.upload(ctx, files)
	case "download":
		if len(args) < 1 || len(args) > 2 {
			return errors.New("usage: download <name> [dest]")
		}
		file, err := s.file(args[0])
		if err != nil {
			return err
		}
		dest := filepath.Join(s.Config.DownloadDir, file.Name)
		if len(args) == 2 {
			dest = args[1]
		}
		if _, err := saveDownload(ctx, s.dir, file, dest); err != nil {
			return err
		}
		s.println(s.styles.success.Render(s.T("download.saved", dest)))
	default:
		return s.execDrag(ctx, name, args)
	}
	return nil
}

func (s *shell) execDrag(ctx context.Context, name string, args []string) error {
	switch name {
	case "drag":
		if len(args) != 1 {
			return errors.New("usage: drag <name>")
		}
		item, err := s.item(args[0])
		if err != nil {
			return err
		}
		if !s.drag.DragStart(item) {
			return errors.New("a drag is already in progress")
		}
	case "over":
		if len(args) != 1 {
			return errors.New("usage: over <folder>")
		}
		folder, err := s.folder(args[0])
		if err != nil {
			return err
		}
		s.drag.DragOver(folder)
	case "root":
		s.drag.DragOverRoot()
	case "leave":
		if id, ok := dragdrop.DropTarget(s.drag.State()); ok {
			if folder, found := s.dir.Folder(id); found {
				s.drag.DragLeave(folder)
			}
		}
	case "drop":
		switch st := s.drag.State().(type) {
		case dragdrop.DroppingOnFolder:
			folder, ok := s.dir.Folder(st.FolderID)
			if !ok {
				s.drag.DragEnd()
				return errors.New("the highlighted folder is gone")
			}
			return s.drag.Drop(ctx, folder)
		case dragdrop.DroppingOnRoot:
			return s.drag.DropOnRoot(ctx, dragdrop.Payload{})
		default:
			return errors.New("nothing to drop on")
		}
	case "dropfiles":
		files, err := s.localFiles(args)
		if err != nil {
			return err
		}
		bulk := false
		for _, f := range files {
			if f.RelativePath != "" {
				bulk = true
				break
			}
		}
		return s.drag.DropOnRoot(ctx, dragdrop.Payload{Files: files, Bulk: bulk})
	case "cancel":
		s.drag.DragEnd()
	case "state":
		s.println(s.drag.State().String())
	default:
		return fmt.Errorf("unknown command %q, try help", name)
	}
	return nil
}

// upload sends plain files and folder trees as separate batches.
func (s *shell) upload(ctx context.Context, files []directory.UploadFile) error {
	folderID := s.dir.View().CurrentFolderID
	var plain, bulk []directory.UploadFile
	for _, f := range files {
		if f.RelativePath != "" {
			bulk = append(bulk, f)
		} else {
			plain = append(plain, f)
		}
	}
	if len(plain) > 0 {
		if _, err := s.dir.Upload(ctx, plain, directory.UploadTarget{FolderID: folderID}); err != nil {
			return err
		}
	}
	if len(bulk) > 0 {
		if _, err := s.dir.Upload(ctx, bulk, directory.UploadTarget{FolderID: folderID, Bulk: true}); err != nil {
			return err
		}
	}
	return nil
}

func (s *shell) localFiles(args []string) ([]directory.UploadFile, error) {
	if len(args) == 0 {
		return nil, errors.New("no local files given")
	}
	var files []directory.UploadFile
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, localFile(arg, "", info.Size()))
			continue
		}
		tree, err := collectTree(arg)
		if err != nil {
			return nil, err
		}
		files = append(files, tree...)
	}
	return files, nil
}

func (s *shell) abs(p string) string {
	if strings.HasPrefix(p, "/") {
		return path.Clean(p)
	}
	return path.Join(s.cwd(), p)
}

func (s *shell) resolveFolder(ctx context.Context, p string) (*string, error) {
	tree, err := s.API.FolderTree(ctx)
	if err != nil {
		return nil, err
	}
	return directory.ResolvePath(tree, s.abs(p))
}

// item finds a folder or file of the current view by name. Folders win.
func (s *shell) item(name string) (types.ItemRef, error) {
	if f, err := s.folder(name); err == nil {
		return types.FolderRef(f), nil
	}
	f, err := s.file(name)
	if err != nil {
		return types.ItemRef{}, err
	}
	return types.FileRef(f), nil
}

func (s *shell) folder(name string) (types.FolderNode, error) {
	for _, f := range s.dir.View().Folders {
		if f.Name == name {
			return f, nil
		}
	}
	return types.FolderNode{}, fmt.Errorf("no folder %q here", name)
}

func (s *shell) file(name string) (types.FileNode, error) {
	for _, f := range s.dir.View().Files {
		if f.Name == name {
			return f, nil
		}
	}
	return types.FileNode{}, fmt.Errorf("no file %q here", name)
}

// splitArgs splits a command line on spaces; double quotes group words.
func splitArgs(line string) []string {
	var (
		args    []string
		cur     strings.Builder
		quoted  bool
		started bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			started = true
		case r == ' ' && !quoted:
			if started {
				args = append(args, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if started {
		args = append(args, cur.String())
	}
	return args
}
