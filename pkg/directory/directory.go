// Package directory is the view model of one folder level: its child
// folders and files, the breadcrumb and the account totals. The view is
// never patched locally; every navigation and mutation re-reads it from
// the backend.
package directory

import (
	"context"
	"errors"
	"sync"

	"minicloud/pkg/client"
	"minicloud/pkg/i18n"
	"minicloud/pkg/metrics"
	"minicloud/pkg/notify"
	"minicloud/pkg/types"

	"go.uber.org/zap"
)

var (
	ErrEmptyName          = errors.New("folder name is empty")
	ErrNotConfirmed       = errors.New("deletion not confirmed")
	ErrMoveIntoSelf       = errors.New("cannot move a folder into itself")
	ErrMoveIntoDescendant = errors.New("cannot move a folder into its own subfolder")
	ErrBusy               = errors.New("an upload is already in progress")
)

// API is the part of the backend the directory view talks to.
type API interface {
	FolderTree(ctx context.Context) ([]types.FolderNode, error)
	ListFiles(ctx context.Context, folderID *string) ([]types.FileNode, error)
	Breadcrumb(ctx context.Context, folderID string) ([]types.BreadcrumbEntry, error)
	Stats(ctx context.Context) (*types.Stats, error)
	CreateFolder(ctx context.Context, name string, parentID *string) (string, error)
	UploadFile(ctx context.Context, up client.UploadRequest) (*client.UploadResponse, error)
	DownloadFile(ctx context.Context, fileID string) (*client.Download, error)
	DeleteFile(ctx context.Context, fileID string) error
	DeleteFolder(ctx context.Context, folderID string) error
	MoveFile(ctx context.Context, fileID string, target *string) error
	MoveFolder(ctx context.Context, folderID string, target *string) error
}

// Confirmer asks the user to confirm an irreversible deletion.
type Confirmer func(target types.ItemRef) bool

// View is a snapshot of the directory state handed to renderers.
type View struct {
	CurrentFolderID *string
	Folders         []types.FolderNode
	Files           []types.FileNode
	// Breadcrumb runs from the root down to the current folder; it is
	// empty at the root.
	Breadcrumb []types.BreadcrumbEntry
	Stats      types.Stats
	Loading    bool
	Uploading  bool
}

// Empty reports whether the current folder has no folders and no files.
func (v View) Empty() bool {
	return len(v.Folders) == 0 && len(v.Files) == 0
}

// AtRoot reports whether the view shows the account root.
func (v View) AtRoot() bool {
	return v.CurrentFolderID == nil
}

// parts selects what a reload fetches.
type parts uint8

const (
	partFolders parts = 1 << iota
	partFiles
	partBreadcrumb
	partStats

	partAll = partFolders | partFiles | partBreadcrumb | partStats
)

type Option func(*Directory)

func WithNotifier(n notify.Notifier) Option {
	return func(d *Directory) { d.notifier = n }
}

func WithLogger(logger *zap.Logger) Option {
	return func(d *Directory) { d.logger = logger }
}

func WithConfirmer(c Confirmer) Option {
	return func(d *Directory) { d.confirm = c }
}

func WithTranslator(t i18n.Lookup) Option {
	return func(d *Directory) { d.t = t }
}

func WithMetrics(m *metrics.ClientMetrics) Option {
	return func(d *Directory) { d.metrics = m }
}

// WithUploadLimit rejects files larger than limit bytes before sending them.
// Zero disables the check.
func WithUploadLimit(limit int64) Option {
	return func(d *Directory) { d.uploadLimit = limit }
}

// WithBlockedExtensions rejects files with the given extensions before
// sending them. Extensions include the leading dot.
func WithBlockedExtensions(exts []string) Option {
	return func(d *Directory) { d.blocked = normalizeExtensions(exts) }
}

// Directory is the directory view model.
type Directory struct {
	api         API
	notifier    notify.Notifier
	logger      *zap.Logger
	confirm     Confirmer
	t           i18n.Lookup
	metrics     *metrics.ClientMetrics
	uploadLimit int64
	blocked     map[string]bool

	mu   sync.Mutex
	view View
	// tree is the full folder list of the last applied load.
	tree []types.FolderNode
	// seq numbers the loads; only the latest one may apply its result.
	seq uint64
	// pending accumulates the parts requested by loads not yet applied.
	pending   parts
	uploading bool
}

// New creates a directory view model positioned at the root. Nothing is
// loaded until Navigate or Refresh is called.
func New(api API, opts ...Option) *Directory {
	d := &Directory{
		api:      api,
		notifier: notify.Nop,
		logger:   zap.NewNop(),
		confirm:  func(types.ItemRef) bool { return false },
		t: func(key string, args ...any) string {
			return i18n.Translate("en", key, args...)
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// View returns a copy of the current state.
func (d *Directory) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()

	v := d.view
	v.Folders = append([]types.FolderNode(nil), d.view.Folders...)
	v.Files = append([]types.FileNode(nil), d.view.Files...)
	v.Breadcrumb = append([]types.BreadcrumbEntry{}, d.view.Breadcrumb...)
	v.Uploading = d.uploading
	return v
}

// Navigate switches to folderID, nil being the root, and reloads the
// whole view.
func (d *Directory) Navigate(ctx context.Context, folderID *string) error {
	d.mu.Lock()
	if folderID != nil {
		id := *folderID
		folderID = &id
	}
	d.view.CurrentFolderID = folderID
	d.mu.Unlock()

	d.logger.Debug("Navigating", zap.Stringp("folder_id", folderID))
	return d.reload(ctx, partAll)
}

// Refresh re-reads the current folder.
func (d *Directory) Refresh(ctx context.Context) error {
	return d.reload(ctx, partAll)
}

type loadResult struct {
	tree   []types.FolderNode
	files  []types.FileNode
	crumbs []types.BreadcrumbEntry
	stats  *types.Stats
}

// reload fetches the requested parts for the current folder. Responses of
// a load that has been overtaken by a newer one are dropped; the newer
// load also fetches whatever the dropped one was asked for.
func (d *Directory) reload(ctx context.Context, want parts) error {
	d.mu.Lock()
	d.seq++
	seq := d.seq
	d.pending |= want
	want = d.pending
	folderID := d.view.CurrentFolderID
	d.view.Loading = true
	d.mu.Unlock()

	res, err := d.fetch(ctx, want, folderID)

	d.mu.Lock()
	defer d.mu.Unlock()

	if seq != d.seq {
		d.logger.Debug("Dropping stale directory load",
			zap.Uint64("seq", seq),
			zap.Uint64("latest", d.seq))
		return nil
	}

	if res.tree != nil {
		d.tree = res.tree
		d.view.Folders = childFolders(res.tree, folderID)
	}
	if res.files != nil {
		d.view.Files = res.files
	}
	if res.crumbs != nil {
		d.view.Breadcrumb = res.crumbs
	}
	if res.stats != nil {
		d.view.Stats = *res.stats
	}
	d.pending = 0
	d.view.Loading = false

	if err != nil {
		d.notifier.Notify(notify.Notification{
			Level:   notify.LevelError,
			Message: client.Message(err, d.t("request.failed")),
		})
	}
	return err
}

// fetch reads every requested part; a failed part leaves its field nil so
// the previous state is kept.
func (d *Directory) fetch(ctx context.Context, want parts, folderID *string) (loadResult, error) {
	var (
		res  loadResult
		errs []error
	)

	if want&partFolders != 0 {
		tree, err := d.api.FolderTree(ctx)
		if err != nil {
			errs = append(errs, err)
		} else {
			res.tree = nonNil(tree)
		}
	}
	if want&partFiles != 0 {
		files, err := d.api.ListFiles(ctx, folderID)
		if err != nil {
			errs = append(errs, err)
		} else {
			res.files = nonNil(files)
		}
	}
	if want&partBreadcrumb != 0 {
		if folderID == nil {
			res.crumbs = []types.BreadcrumbEntry{}
		} else if crumbs, err := d.api.Breadcrumb(ctx, *folderID); err != nil {
			errs = append(errs, err)
		} else {
			res.crumbs = nonNil(crumbs)
		}
	}
	if want&partStats != 0 {
		stats, err := d.api.Stats(ctx)
		if err != nil {
			errs = append(errs, err)
		} else {
			res.stats = stats
		}
	}

	if len(errs) > 0 {
		d.logger.Warn("Directory load failed",
			zap.Stringp("folder_id", folderID),
			zap.Error(errs[0]))
		return res, errs[0]
	}
	return res, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func childFolders(tree []types.FolderNode, parent *string) []types.FolderNode {
	out := []types.FolderNode{}
	for _, f := range tree {
		if types.SameParent(f.ParentID, parent) {
			out = append(out, f)
		}
	}
	return out
}
