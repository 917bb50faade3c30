package dragdrop

import (
	"context"
	"sync"

	"minicloud/pkg/directory"
	"minicloud/pkg/types"

	"go.uber.org/zap"
)

// Target is what a drop acts on.
type Target interface {
	Move(ctx context.Context, item types.ItemRef, destination *string) error
	Upload(ctx context.Context, files []directory.UploadFile, target directory.UploadTarget) (directory.UploadReport, error)
	View() directory.View
}

// Payload is what a drop on the root area carries. Native files from the
// operating system take precedence over a dragged item.
type Payload struct {
	Files []directory.UploadFile
	// Bulk marks a dropped folder tree; see directory.UploadTarget.
	Bulk bool
}

func (p Payload) HasFiles() bool {
	return len(p.Files) > 0
}

type Option func(*Controller)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithOnChange registers a callback run after every state change.
func WithOnChange(fn func(State)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// Controller is the drag-and-drop state machine.
type Controller struct {
	target   Target
	logger   *zap.Logger
	onChange func(State)

	mu    sync.Mutex
	state State
}

func New(target Target, opts ...Option) *Controller {
	c := &Controller{
		target: target,
		logger: zap.NewNop(),
		state:  Idle{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// set must be called without c.mu held.
func (c *Controller) set(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()

	c.logger.Debug("Drag state", zap.Stringer("state", s))
	if c.onChange != nil {
		c.onChange(s)
	}
}

// DragStart begins dragging item. It is ignored unless the controller is idle.
func (c *Controller) DragStart(item types.ItemRef) bool {
	if _, idle := c.State().(Idle); !idle {
		return false
	}
	c.set(Dragging{Item: item})
	return true
}

// DragOver highlights folder as the drop target, unless it is the dragged
// item itself.
func (c *Controller) DragOver(folder types.FolderNode) bool {
	item, ok := DraggedItem(c.State())
	if !ok {
		return false
	}
	if folder.ID == item.ID {
		c.set(Dragging{Item: item})
		return false
	}
	c.set(DroppingOnFolder{Item: item, FolderID: folder.ID})
	return true
}

// DragLeave drops the highlight of folder.
func (c *Controller) DragLeave(folder types.FolderNode) bool {
	st, ok := c.State().(DroppingOnFolder)
	if !ok || st.FolderID != folder.ID {
		return false
	}
	c.set(Dragging{Item: st.Item})
	return true
}

// DragOverRoot highlights the root drop area, taking over from a
// highlighted folder.
func (c *Controller) DragOverRoot() bool {
	switch st := c.State().(type) {
	case Dragging:
		c.set(DroppingOnRoot{Item: st.Item})
		return true
	case DroppingOnFolder:
		c.set(DroppingOnRoot{Item: st.Item})
		return true
	case DroppingOnRoot:
		return true
	}
	return false
}

// DragEnd cancels the gesture.
func (c *Controller) DragEnd() {
	c.set(Idle{})
}

// Drop moves the dragged item into folder. The state is back to Idle
// before the move request is sent.
func (c *Controller) Drop(ctx context.Context, folder types.FolderNode) error {
	item, ok := DraggedItem(c.State())
	c.set(Idle{})
	if !ok || item.ID == folder.ID {
		return nil
	}

	id := folder.ID
	return c.move(ctx, item, &id)
}

// DropOnRoot handles a drop on the root area: native files are uploaded
// into the current folder, otherwise the dragged item moves to the root.
func (c *Controller) DropOnRoot(ctx context.Context, payload Payload) error {
	item, ok := DraggedItem(c.State())
	c.set(Idle{})

	if payload.HasFiles() {
		target := directory.UploadTarget{
			FolderID: c.target.View().CurrentFolderID,
			Bulk:     payload.Bulk,
		}
		_, err := c.target.Upload(ctx, payload.Files, target)
		return err
	}
	if !ok {
		return nil
	}
	return c.move(ctx, item, nil)
}

func (c *Controller) move(ctx context.Context, item types.ItemRef, destination *string) error {
	err := c.target.Move(ctx, item, destination)
	if err != nil {
		c.logger.Debug("Drop move failed",
			zap.String("id", item.ID),
			zap.Stringp("destination", destination),
			zap.Error(err))
	}
	return err
}
