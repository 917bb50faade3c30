package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"minicloud/pkg/apitest"
	"minicloud/pkg/client"
	"minicloud/pkg/directory"
	"minicloud/pkg/session"
	"minicloud/pkg/types"
	"minicloud/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"ls", []string{"ls"}},
		{"mv  a.txt   docs", []string{"mv", "a.txt", "docs"}},
		{`mkdir "Tax returns"`, []string{"mkdir", "Tax returns"}},
		{`mv "my file.txt" "/a b/c"`, []string{"mv", "my file.txt", "/a b/c"}},
		{`rm ""`, []string{"rm", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, splitArgs(tt.line))
		})
	}
}

func TestCollectTree(t *testing.T) {
	root := filepath.Join(t.TempDir(), "photos")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "2024", "summer"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "cover.jpg"), []byte("abc"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "2024", "summer", "beach.jpg"), []byte("12345"), 0644))

	files, err := collectTree(root)
	require.NoError(t, err)

	var rels []string
	sizes := make(map[string]int64)
	for _, f := range files {
		rels = append(rels, f.RelativePath)
		sizes[f.Name] = f.Size
	}
	sort.Strings(rels)
	assert.Equal(t, []string{"photos/2024/summer/beach.jpg", "photos/cover.jpg"}, rels)
	assert.Equal(t, int64(5), sizes["beach.jpg"])
	assert.Equal(t, []string{"photos", "photos/2024", "photos/2024/summer"}, directory.DeriveGroups(files))

	rc, err := files[0].Open()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestRelativeTime(t *testing.T) {
	assert.Equal(t, "-", relativeTime(""))
	assert.Equal(t, "not a time", relativeTime("not a time"))

	ts := time.Now().Add(-3 * time.Hour).UTC()
	assert.Equal(t, "3 hours ago", relativeTime(ts.Format(time.RFC3339)))
	assert.Equal(t, "3 hours ago", relativeTime(ts.Format("2006-01-02T15:04:05.999999")))
}

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "polski", languageName("pl"))
	assert.Equal(t, "Deutsch", languageName("de"))
	assert.Equal(t, "???", languageName("???"))
}

func TestSaveDownload(t *testing.T) {
	srv := apitest.New(t)
	api := srv.Client(srv.Token(srv.AddUser("alice", "Secret1!", types.RoleUser)))
	ctx := context.Background()

	resp, err := api.UploadFile(ctx, client.UploadRequest{Name: "notes.txt", Content: strings.NewReader("fresh")})
	require.NoError(t, err)
	d := directory.New(api)

	tests := []struct {
		name    string
		file    types.FileNode
		wantErr bool
		want    string
	}{
		{"ReplacesExistingFile", types.FileNode{ID: resp.FileID, Name: "notes.txt"}, false, "fresh"},
		{"FailureKeepsExistingFile", types.FileNode{ID: "missing", Name: "notes.txt"}, true, "old contents"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			dest := filepath.Join(dir, "notes.txt")
			require.NoError(t, os.WriteFile(dest, []byte("old contents"), 0644))

			_, err := saveDownload(ctx, d, tt.file, dest)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			data, err := os.ReadFile(dest)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Len(t, entries, 1, "temporary files are cleaned up")
		})
	}
}

func TestStrengthBar(t *testing.T) {
	st := newStyles(session.ThemeDark)
	assert.True(t, strings.HasSuffix(st.progressBar(utils.UsagePercent(3, 4), 20), " 75.0%"))
	assert.True(t, strings.HasSuffix(st.progressBar(utils.UsagePercent(9, 4), 20), " 100.0%"))
	assert.True(t, strings.HasSuffix(st.progressBar(utils.UsagePercent(1, 0), 20), " 0.0%"))
}
