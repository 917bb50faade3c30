// Package dragdrop turns drag gestures over the directory view into move
// and upload requests. The drag state is a single tagged value, so an
// impossible mix such as "idle with a drop target" cannot be represented.
package dragdrop

import (
	"fmt"

	"minicloud/pkg/types"
)

// State is one of Idle, Dragging, DroppingOnFolder or DroppingOnRoot.
type State interface {
	isState()
	String() string
}

// Idle means nothing is being dragged.
type Idle struct{}

// Dragging carries the dragged item while no drop target is highlighted.
type Dragging struct {
	Item types.ItemRef
}

// DroppingOnFolder means the item hovers over a folder it may be dropped into.
type DroppingOnFolder struct {
	Item     types.ItemRef
	FolderID string
}

// DroppingOnRoot means the item hovers over the root drop area.
type DroppingOnRoot struct {
	Item types.ItemRef
}

func (Idle) isState()             {}
func (Dragging) isState()         {}
func (DroppingOnFolder) isState() {}
func (DroppingOnRoot) isState()   {}

func (Idle) String() string { return "idle" }

func (s Dragging) String() string {
	return fmt.Sprintf("dragging %s %s", s.Item.Kind, s.Item.ID)
}

func (s DroppingOnFolder) String() string {
	return fmt.Sprintf("dropping %s %s on folder %s", s.Item.Kind, s.Item.ID, s.FolderID)
}

func (s DroppingOnRoot) String() string {
	return fmt.Sprintf("dropping %s %s on root", s.Item.Kind, s.Item.ID)
}

// DraggedItem returns the item of any non-idle state.
func DraggedItem(s State) (types.ItemRef, bool) {
	switch st := s.(type) {
	case Dragging:
		return st.Item, true
	case DroppingOnFolder:
		return st.Item, true
	case DroppingOnRoot:
		return st.Item, true
	}
	return types.ItemRef{}, false
}

// DropTarget returns the highlighted folder, if any.
func DropTarget(s State) (string, bool) {
	if st, ok := s.(DroppingOnFolder); ok {
		return st.FolderID, true
	}
	return "", false
}
