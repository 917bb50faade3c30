package directory

import (
	"context"
	"fmt"
	"io"
	"strings"

	"minicloud/pkg/client"
	"minicloud/pkg/notify"
	"minicloud/pkg/types"

	"go.uber.org/zap"
)

// CreateFolder creates name below parentID and reloads folders and stats.
// Blank names never reach the server.
func (d *Directory) CreateFolder(ctx context.Context, name string, parentID *string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		notify.Error(d.notifier, d.t("folder.name_required"))
		return "", ErrEmptyName
	}

	id, err := d.api.CreateFolder(ctx, name, parentID)
	if err != nil {
		d.fail(err)
		return "", err
	}

	d.logger.Info("Folder created",
		zap.String("folder_id", id),
		zap.String("name", name),
		zap.Stringp("parent_id", parentID))
	notify.Success(d.notifier, d.t("folder.created", name))
	_ = d.reload(ctx, partFolders|partStats)
	return id, nil
}

// Delete removes a file, or a folder with everything below it, once the
// confirmer agrees. Files, folders and stats are reloaded on success.
func (d *Directory) Delete(ctx context.Context, target types.ItemRef) error {
	if !d.confirm(target) {
		return ErrNotConfirmed
	}

	var err error
	switch target.Kind {
	case types.KindFolder:
		err = d.api.DeleteFolder(ctx, target.ID)
	case types.KindFile:
		err = d.api.DeleteFile(ctx, target.ID)
	default:
		return fmt.Errorf("unknown item kind %q", target.Kind)
	}
	if err != nil {
		d.fail(err)
		return err
	}

	d.logger.Info("Deleted",
		zap.String("kind", string(target.Kind)),
		zap.String("id", target.ID))
	notify.Success(d.notifier, d.t("delete.success", displayName(target)))
	_ = d.reload(ctx, partFiles|partFolders|partStats)
	return nil
}

// Move re-parents a file or folder; nil destination is the root. Folders
// are never moved into themselves or below themselves. Files and folders
// are reloaded whether or not the server accepted the move.
func (d *Directory) Move(ctx context.Context, target types.ItemRef, destination *string) error {
	if target.Kind == types.KindFolder && destination != nil {
		if *destination == target.ID {
			notify.Error(d.notifier, d.t("move.into_self"))
			return ErrMoveIntoSelf
		}
		d.mu.Lock()
		below := isDescendant(d.tree, *destination, target.ID)
		d.mu.Unlock()
		if below {
			notify.Error(d.notifier, d.t("move.into_descendant"))
			return ErrMoveIntoDescendant
		}
	}

	var err error
	switch target.Kind {
	case types.KindFolder:
		err = d.api.MoveFolder(ctx, target.ID, destination)
	case types.KindFile:
		err = d.api.MoveFile(ctx, target.ID, destination)
	default:
		return fmt.Errorf("unknown item kind %q", target.Kind)
	}

	if err != nil {
		d.logger.Warn("Move failed",
			zap.String("id", target.ID),
			zap.Stringp("destination", destination),
			zap.Error(err))
		notify.Error(d.notifier, d.t("move.failed", client.Message(err, d.t("request.failed"))))
	} else {
		notify.Success(d.notifier, d.t("move.success", displayName(target)))
	}

	if reloadErr := d.reload(ctx, partFiles|partFolders); err == nil {
		err = reloadErr
	}
	return err
}

// Download streams the content of file into w and returns the byte count.
func (d *Directory) Download(ctx context.Context, file types.FileNode, w io.Writer) (int64, error) {
	dl, err := d.api.DownloadFile(ctx, file.ID)
	if err != nil {
		d.fail(err)
		return 0, err
	}
	defer dl.Body.Close()

	n, err := io.Copy(w, dl.Body)
	if err != nil {
		return n, fmt.Errorf("failed to download %s: %w", file.Name, err)
	}
	d.logger.Debug("Downloaded", zap.String("file", file.Name), zap.Int64("bytes", n))
	return n, nil
}

// MoveTarget is one destination offered for a move.
type MoveTarget struct {
	// ID is nil for the root.
	ID   *string
	Path string
}

// MoveTargets lists the root and every loaded folder the item may be moved
// into. A folder is never offered itself or anything below it.
func (d *Directory) MoveTargets(item types.ItemRef) []MoveTarget {
	d.mu.Lock()
	defer d.mu.Unlock()

	byID := indexFolders(d.tree)
	targets := []MoveTarget{{Path: "/"}}
	for _, f := range d.tree {
		if item.Kind == types.KindFolder && isDescendant(d.tree, f.ID, item.ID) {
			continue
		}
		id := f.ID
		targets = append(targets, MoveTarget{ID: &id, Path: "/" + folderPath(byID, f.ID)})
	}
	return targets
}

// Folder returns the loaded folder with the given id.
func (d *Directory) Folder(id string) (types.FolderNode, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, f := range d.tree {
		if f.ID == id {
			return f, true
		}
	}
	return types.FolderNode{}, false
}

func (d *Directory) fail(err error) {
	notify.Error(d.notifier, client.Message(err, d.t("request.failed")))
}

func displayName(item types.ItemRef) string {
	if item.Name != "" {
		return item.Name
	}
	return item.ID
}

func indexFolders(tree []types.FolderNode) map[string]types.FolderNode {
	byID := make(map[string]types.FolderNode, len(tree))
	for _, f := range tree {
		byID[f.ID] = f
	}
	return byID
}

// isDescendant reports whether candidate is ancestor itself or lies below
// it. Walking stops at the root, at an unknown folder, or on a cycle.
func isDescendant(tree []types.FolderNode, candidate, ancestor string) bool {
	byID := indexFolders(tree)
	seen := make(map[string]bool)
	for id := candidate; id != "" && !seen[id]; {
		if id == ancestor {
			return true
		}
		seen[id] = true
		f, ok := byID[id]
		if !ok || f.ParentID == nil {
			return false
		}
		id = *f.ParentID
	}
	return false
}

// folderPath joins the names from the root down to id.
func folderPath(byID map[string]types.FolderNode, id string) string {
	var names []string
	seen := make(map[string]bool)
	for id != "" && !seen[id] {
		seen[id] = true
		f, ok := byID[id]
		if !ok {
			break
		}
		names = append([]string{f.Name}, names...)
		if f.ParentID == nil {
			break
		}
		id = *f.ParentID
	}
	return strings.Join(names, "/")
}
