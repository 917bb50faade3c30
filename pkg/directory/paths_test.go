package directory

import (
	"testing"

	"minicloud/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	tree := []types.FolderNode{
		{ID: "1", Name: "docs"},
		{ID: "2", Name: "sub", ParentID: types.StringPtr("1")},
		{ID: "3", Name: "sub"},
		{ID: "4", Name: "deep", ParentID: types.StringPtr("2")},
	}

	tests := []struct {
		path string
		want *string
	}{
		{"", nil},
		{"/", nil},
		{".", nil},
		{"/docs", types.StringPtr("1")},
		{"docs/sub", types.StringPtr("2")},
		{"/sub/", types.StringPtr("3")},
		{"/docs/sub/deep", types.StringPtr("4")},
		{"/docs/../sub", types.StringPtr("3")},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := ResolvePath(tree, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ResolvePath(tree, "/docs/missing")
	assert.ErrorIs(t, err, ErrFolderNotFound)

	assert.Equal(t, "/docs/sub/deep", PathOf(tree, types.StringPtr("4")))
	assert.Equal(t, "/", PathOf(tree, nil))
	assert.Equal(t, []types.FolderNode{tree[1]}, Children(tree, types.StringPtr("1")))
}

func TestSplitPath(t *testing.T) {
	dir, name := SplitPath("/docs/sub/a.txt")
	assert.Equal(t, "/docs/sub", dir)
	assert.Equal(t, "a.txt", name)

	dir, name = SplitPath("a.txt")
	assert.Equal(t, "/", dir)
	assert.Equal(t, "a.txt", name)
}
