package dragdrop

import (
	"context"
	"errors"
	"testing"

	"minicloud/pkg/apitest"
	"minicloud/pkg/directory"
	"minicloud/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type moveCall struct {
	Item        types.ItemRef
	Destination *string
	State       State
}

type uploadCall struct {
	Files  int
	Target directory.UploadTarget
	State  State
}

type fakeTarget struct {
	ctrl    *Controller
	view    directory.View
	moveErr error
	moves   []moveCall
	uploads []uploadCall
}

func (f *fakeTarget) Move(_ context.Context, item types.ItemRef, destination *string) error {
	f.moves = append(f.moves, moveCall{Item: item, Destination: destination, State: f.ctrl.State()})
	return f.moveErr
}

func (f *fakeTarget) Upload(_ context.Context, files []directory.UploadFile, target directory.UploadTarget) (directory.UploadReport, error) {
	f.uploads = append(f.uploads, uploadCall{Files: len(files), Target: target, State: f.ctrl.State()})
	return directory.UploadReport{Succeeded: len(files)}, nil
}

func (f *fakeTarget) View() directory.View {
	return f.view
}

func newController(t *testing.T, opts ...Option) (*Controller, *fakeTarget) {
	t.Helper()
	target := &fakeTarget{}
	c := New(target, opts...)
	target.ctrl = c
	return c, target
}

var (
	report  = types.ItemRef{ID: "f1", Name: "report.pdf", Kind: types.KindFile}
	docs    = types.FolderNode{ID: "d1", Name: "docs"}
	archive = types.FolderNode{ID: "d2", Name: "archive"}
)

func TestController_Transitions(t *testing.T) {
	var seen []string
	c, _ := newController(t, WithOnChange(func(s State) { seen = append(seen, s.String()) }))

	assert.Equal(t, Idle{}, c.State())

	assert.True(t, c.DragStart(report))
	assert.Equal(t, Dragging{Item: report}, c.State())

	assert.False(t, c.DragStart(types.ItemRef{ID: "other"}), "a second drag must not replace the first")

	assert.True(t, c.DragOver(docs))
	assert.Equal(t, DroppingOnFolder{Item: report, FolderID: "d1"}, c.State())

	assert.False(t, c.DragLeave(archive), "leaving a folder that is not highlighted changes nothing")
	assert.Equal(t, DroppingOnFolder{Item: report, FolderID: "d1"}, c.State())

	assert.True(t, c.DragLeave(docs))
	assert.Equal(t, Dragging{Item: report}, c.State())

	assert.True(t, c.DragOverRoot())
	assert.Equal(t, DroppingOnRoot{Item: report}, c.State())

	assert.True(t, c.DragOver(archive))
	target, ok := DropTarget(c.State())
	require.True(t, ok)
	assert.Equal(t, "d2", target)

	c.DragEnd()
	assert.Equal(t, Idle{}, c.State())
	_, ok = DraggedItem(c.State())
	assert.False(t, ok)

	assert.Equal(t, []string{
		"dragging file f1",
		"dropping file f1 on folder d1",
		"dragging file f1",
		"dropping file f1 on root",
		"dropping file f1 on folder d2",
		"idle",
	}, seen)
}

func TestController_IdleIgnoresHover(t *testing.T) {
	c, _ := newController(t)

	assert.False(t, c.DragOver(docs))
	assert.False(t, c.DragOverRoot())
	assert.False(t, c.DragLeave(docs))
	assert.Equal(t, Idle{}, c.State())
}

func TestController_DragOverSelfDoesNotHighlight(t *testing.T) {
	c, _ := newController(t)
	c.DragStart(types.FolderRef(docs))

	assert.False(t, c.DragOver(docs))
	_, ok := DropTarget(c.State())
	assert.False(t, ok)
	assert.Equal(t, Dragging{Item: types.FolderRef(docs)}, c.State())
}

func TestController_DropIsIdleBeforeMove(t *testing.T) {
	c, target := newController(t)
	c.DragStart(report)
	c.DragOver(docs)

	require.NoError(t, c.Drop(context.Background(), docs))

	require.Len(t, target.moves, 1)
	call := target.moves[0]
	assert.Equal(t, report, call.Item)
	require.NotNil(t, call.Destination)
	assert.Equal(t, "d1", *call.Destination)
	assert.Equal(t, Idle{}, call.State)
	assert.Equal(t, Idle{}, c.State())
}

func TestController_DropOntoSelfIsIgnored(t *testing.T) {
	c, target := newController(t)
	c.DragStart(types.FolderRef(docs))

	require.NoError(t, c.Drop(context.Background(), docs))
	assert.Empty(t, target.moves)
	assert.Equal(t, Idle{}, c.State())
}

func TestController_DropWithoutDragIsIgnored(t *testing.T) {
	c, target := newController(t)

	require.NoError(t, c.Drop(context.Background(), docs))
	require.NoError(t, c.DropOnRoot(context.Background(), Payload{}))
	assert.Empty(t, target.moves)
	assert.Empty(t, target.uploads)
}

func TestController_DropMoveFailure(t *testing.T) {
	c, target := newController(t)
	target.moveErr = errors.New("target folder not found")
	c.DragStart(report)

	err := c.Drop(context.Background(), archive)
	assert.EqualError(t, err, "target folder not found")
	assert.Equal(t, Idle{}, c.State())
}

func TestController_DropOnRootMovesToRoot(t *testing.T) {
	c, target := newController(t)
	c.DragStart(report)
	c.DragOverRoot()

	require.NoError(t, c.DropOnRoot(context.Background(), Payload{}))

	require.Len(t, target.moves, 1)
	assert.Nil(t, target.moves[0].Destination)
	assert.Equal(t, Idle{}, target.moves[0].State)
}

func TestController_RootTakesOverFromFolder(t *testing.T) {
	tests := []struct {
		name  string
		start func(c *Controller)
	}{
		{"FromDragging", func(c *Controller) { c.DragStart(report) }},
		{"FromHighlightedFolder", func(c *Controller) {
			c.DragStart(report)
			c.DragOver(docs)
		}},
		{"FromRoot", func(c *Controller) {
			c.DragStart(report)
			c.DragOverRoot()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, target := newController(t)
			tt.start(c)

			assert.True(t, c.DragOverRoot())
			assert.Equal(t, DroppingOnRoot{Item: report}, c.State())
			_, ok := DropTarget(c.State())
			assert.False(t, ok)

			require.NoError(t, c.DropOnRoot(context.Background(), Payload{}))
			require.Len(t, target.moves, 1)
			assert.Nil(t, target.moves[0].Destination)
		})
	}
}

func TestController_DropOnRootFilesTakePrecedence(t *testing.T) {
	c, target := newController(t)
	current := "d1"
	target.view = directory.View{CurrentFolderID: &current}
	c.DragStart(report)
	c.DragOverRoot()

	payload := Payload{Files: []directory.UploadFile{{Name: "a.txt"}, {Name: "b.txt"}}, Bulk: true}
	require.NoError(t, c.DropOnRoot(context.Background(), payload))

	assert.Empty(t, target.moves)
	require.Len(t, target.uploads, 1)
	call := target.uploads[0]
	assert.Equal(t, 2, call.Files)
	assert.True(t, call.Target.Bulk)
	require.NotNil(t, call.Target.FolderID)
	assert.Equal(t, "d1", *call.Target.FolderID)
	assert.Equal(t, Idle{}, call.State)
}

func TestController_CancelledDragLeavesViewUntouched(t *testing.T) {
	srv := apitest.New(t)
	uid := srv.AddUser("alice", "Secret1!", types.RoleUser)
	api := srv.Client(srv.Token(uid))
	ctx := context.Background()

	_, err := api.CreateFolder(ctx, "docs", nil)
	require.NoError(t, err)
	_, err = api.CreateFolder(ctx, "archive", nil)
	require.NoError(t, err)

	dir := directory.New(api)
	require.NoError(t, dir.Navigate(ctx, nil))
	before := dir.View()
	srv.ResetCounts()

	c := New(dir)
	folders := before.Folders
	require.Len(t, folders, 2)
	c.DragStart(types.FolderRef(folders[0]))
	c.DragOver(folders[1])
	c.DragOverRoot()
	c.DragEnd()

	assert.Equal(t, Idle{}, c.State())
	assert.Equal(t, before, dir.View())
	assert.Zero(t, srv.TotalRequests())
}

func TestController_DropMovesThroughDirectory(t *testing.T) {
	srv := apitest.New(t)
	uid := srv.AddUser("alice", "Secret1!", types.RoleUser)
	api := srv.Client(srv.Token(uid))
	ctx := context.Background()

	docsID, err := api.CreateFolder(ctx, "docs", nil)
	require.NoError(t, err)
	archiveID, err := api.CreateFolder(ctx, "archive", nil)
	require.NoError(t, err)

	dir := directory.New(api)
	require.NoError(t, dir.Navigate(ctx, nil))

	c := New(dir)
	docsNode, ok := dir.Folder(docsID)
	require.True(t, ok)
	archiveNode, ok := dir.Folder(archiveID)
	require.True(t, ok)

	c.DragStart(types.FolderRef(docsNode))
	c.DragOver(archiveNode)
	require.NoError(t, c.Drop(ctx, archiveNode))

	folders := dir.View().Folders
	require.Len(t, folders, 1)
	assert.Equal(t, "archive", folders[0].Name)
	moved, ok := dir.Folder(docsID)
	require.True(t, ok)
	require.NotNil(t, moved.ParentID)
	assert.Equal(t, archiveID, *moved.ParentID)
}
