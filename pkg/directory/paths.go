package directory

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"minicloud/pkg/types"
)

// ErrFolderNotFound is returned when a folder path names no folder.
var ErrFolderNotFound = errors.New("folder not found")

// ResolvePath finds the folder named by a slash separated path such as
// "/docs/sub". The root ("", "/" or ".") resolves to nil.
func ResolvePath(tree []types.FolderNode, p string) (*string, error) {
	clean := cleanRelative(p)
	if clean == "" || clean == "." {
		return nil, nil
	}

	var parent *string
	for _, name := range strings.Split(clean, "/") {
		found := false
		for _, f := range tree {
			if f.Name == name && types.SameParent(f.ParentID, parent) {
				id := f.ID
				parent = &id
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrFolderNotFound, "/"+clean)
		}
	}
	return parent, nil
}

// PathOf renders the absolute path of a folder; nil is "/".
func PathOf(tree []types.FolderNode, id *string) string {
	if id == nil {
		return "/"
	}
	return "/" + folderPath(indexFolders(tree), *id)
}

// SplitPath separates the folder part of an item path from its name, e.g.
// "/docs/a.txt" becomes "/docs" and "a.txt".
func SplitPath(p string) (dir, name string) {
	clean := "/" + cleanRelative(p)
	return path.Dir(clean), path.Base(clean)
}

// Children returns the folders directly below parent.
func Children(tree []types.FolderNode, parent *string) []types.FolderNode {
	return childFolders(tree, parent)
}
