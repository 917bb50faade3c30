package directory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"minicloud/pkg/client"
	"minicloud/pkg/notify"

	"go.uber.org/zap"
)

var (
	errTooLarge       = errors.New("file exceeds the upload size limit")
	errBlockedExt     = errors.New("file type is blocked")
	errMissingContent = errors.New("file has no content source")
)

// UploadFile is one local file queued for upload.
type UploadFile struct {
	Name string
	// RelativePath is the slash separated path inside a selected folder
	// tree, e.g. "docs/sub/b.txt". Only bulk uploads use it.
	RelativePath string
	// Size is the size in bytes, or -1 when unknown.
	Size int64
	Open func() (io.ReadCloser, error)
}

// UploadTarget says where a batch goes. FolderID is the base folder, nil
// being the root. With Bulk set, every file lands in the folder named by
// the directory part of its RelativePath below the base folder.
type UploadTarget struct {
	FolderID *string
	Bulk     bool
}

// UploadReport aggregates the outcome of one batch.
type UploadReport struct {
	Succeeded int
	Failed    int
	// Groups are the folder paths derived from a bulk upload, in order.
	Groups []string
}

// Upload sends every file with its own request. A failed file does not
// stop the batch. Files, folders and stats are reloaded afterwards even
// when some files failed. Only one batch runs at a time.
func (d *Directory) Upload(ctx context.Context, files []UploadFile, target UploadTarget) (UploadReport, error) {
	d.mu.Lock()
	if d.uploading {
		d.mu.Unlock()
		notify.Info(d.notifier, d.t("upload.busy"))
		return UploadReport{}, ErrBusy
	}
	d.uploading = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.uploading = false
		d.mu.Unlock()
	}()

	var (
		report   UploadReport
		groupIDs map[string]string
	)
	if target.Bulk {
		report.Groups = DeriveGroups(files)
		groupIDs = d.ensureFolders(ctx, target.FolderID, report.Groups)
	}

	for _, f := range files {
		up := client.UploadRequest{Name: f.Name, FolderID: target.FolderID}
		if target.Bulk {
			if group := groupOf(f.RelativePath); group != "" {
				if id, ok := groupIDs[group]; ok {
					up.FolderID = &id
				} else {
					// The folder could not be created up front; let the
					// server resolve the path below the base folder.
					up.FolderPath = group
				}
			}
			if up.Name == "" {
				up.Name = path.Base(cleanRelative(f.RelativePath))
			}
		}

		size, err := d.uploadOne(ctx, f, up)
		d.metrics.ObserveUpload(size, err)
		if err != nil {
			report.Failed++
			d.logger.Warn("Upload failed",
				zap.String("file", up.Name),
				zap.String("folder_path", up.FolderPath),
				zap.Error(err))
			continue
		}
		report.Succeeded++
	}

	level := notify.LevelSuccess
	if report.Failed > 0 {
		level = notify.LevelError
	}
	d.notifier.Notify(notify.Notification{
		Level:   level,
		Message: d.t("upload.summary", report.Succeeded, report.Failed),
	})
	d.logger.Info("Upload batch finished",
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
		zap.Strings("groups", report.Groups))

	_ = d.reload(ctx, partFiles|partFolders|partStats)
	return report, nil
}

func (d *Directory) uploadOne(ctx context.Context, f UploadFile, up client.UploadRequest) (int64, error) {
	if up.Name == "" {
		return 0, fmt.Errorf("upload name is required")
	}
	if err := d.precheck(up.Name, f.Size); err != nil {
		return 0, err
	}
	if f.Open == nil {
		return 0, errMissingContent
	}

	rc, err := f.Open()
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", up.Name, err)
	}
	defer rc.Close()

	counter := &countingReader{r: rc}
	up.Content = counter
	if _, err := d.api.UploadFile(ctx, up); err != nil {
		return 0, err
	}
	return counter.n, nil
}

// ensureFolders creates the folder chain of every group below base,
// reusing folders that already exist, and returns the folder id of every
// group it could resolve. A group missing from the result is left to the
// server through the folder_path field of its files.
func (d *Directory) ensureFolders(ctx context.Context, base *string, groups []string) map[string]string {
	ids := make(map[string]string, len(groups))
	if len(groups) == 0 {
		return ids
	}

	tree, err := d.api.FolderTree(ctx)
	if err != nil {
		d.logger.Warn("Failed to read folder tree before bulk upload", zap.Error(err))
		tree = nil
	}

	known := make(map[string]string)
	key := func(parent *string, name string) string {
		if parent == nil {
			return "/" + name
		}
		return *parent + "/" + name
	}
	for _, f := range tree {
		known[key(f.ParentID, f.Name)] = f.ID
	}

	for _, group := range groups {
		parent := base
		resolved := true
		for _, name := range strings.Split(group, "/") {
			id, ok := known[key(parent, name)]
			if !ok {
				id, err = d.api.CreateFolder(ctx, name, parent)
				if err != nil {
					d.logger.Warn("Failed to create upload folder",
						zap.String("folder_path", group),
						zap.String("name", name),
						zap.Error(err))
					resolved = false
					break
				}
				known[key(parent, name)] = id
			}
			next := id
			parent = &next
		}
		if resolved && parent != nil {
			ids[group] = *parent
		}
	}
	return ids
}

// DeriveGroups returns the distinct folder paths of a bulk selection,
// including every intermediate folder, sorted so parents come first.
func DeriveGroups(files []UploadFile) []string {
	seen := make(map[string]bool)
	for _, f := range files {
		for dir := groupOf(f.RelativePath); dir != ""; dir = parentOf(dir) {
			seen[dir] = true
		}
	}

	groups := make([]string, 0, len(seen))
	for g := range seen {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups
}

func cleanRelative(rel string) string {
	rel = strings.ReplaceAll(rel, "\\", "/")
	rel = path.Clean("/" + rel)
	return strings.TrimPrefix(rel, "/")
}

// groupOf is the folder part of a relative path, "" for top level files.
func groupOf(rel string) string {
	dir := path.Dir(cleanRelative(rel))
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}

func parentOf(dir string) string {
	if i := strings.LastIndex(dir, "/"); i >= 0 {
		return dir[:i]
	}
	return ""
}

func normalizeExtensions(exts []string) map[string]bool {
	out := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out[ext] = true
	}
	return out
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// SetBlockedExtensions replaces the client-side extension filter. Batches
// already in flight keep checking against the old one until their next file.
func (d *Directory) SetBlockedExtensions(exts []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.blocked = normalizeExtensions(exts)
}

// SetUploadLimit replaces the client-side size limit. Zero disables it.
func (d *Directory) SetUploadLimit(limit int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.uploadLimit = limit
}

// precheck applies the client-side size and extension checks.
func (d *Directory) precheck(name string, size int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.uploadLimit > 0 && size > d.uploadLimit {
		return errTooLarge
	}
	if d.blocked[strings.ToLower(filepath.Ext(name))] {
		return errBlockedExt
	}
	return nil
}
