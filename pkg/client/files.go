package client

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"minicloud/pkg/types"

	"github.com/h2non/filetype"
)

// ListFiles lists the files directly inside folderID; nil is the root.
func (c *Client) ListFiles(ctx context.Context, folderID *string) ([]types.FileNode, error) {
	query := url.Values{}
	if folderID != nil {
		query.Set("folder_id", *folderID)
	}

	var out []types.FileNode
	err := c.do(ctx, request{
		method: http.MethodGet,
		route:  "/files/list",
		path:   "/files/list",
		query:  query,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UploadRequest describes one file upload. FolderPath, when set, is a
// slash separated path resolved by the server below FolderID.
type UploadRequest struct {
	Name       string
	Content    io.Reader
	FolderID   *string
	FolderPath string
}

// UploadResponse holds the response from an upload operation.
type UploadResponse struct {
	Message string `json:"message"`
	FileID  string `json:"file_id"`
}

// UploadFile streams one file as multipart/form-data.
func (c *Client) UploadFile(ctx context.Context, up UploadRequest) (*UploadResponse, error) {
	if up.Name == "" {
		return nil, fmt.Errorf("upload name is required")
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	done := make(chan struct{})
	go func() {
		defer close(done)
		pw.CloseWithError(writeUploadForm(mw, up))
	}()

	var out UploadResponse
	err := c.do(ctx, request{
		method:      http.MethodPost,
		route:       "/files/upload",
		path:        "/files/upload",
		body:        pr,
		contentType: mw.FormDataContentType(),
	}, &out)
	// Unblocks the writer if the request ended before the body was consumed.
	// up.Content belongs to the caller again once the writer has returned.
	pr.CloseWithError(io.ErrClosedPipe)
	<-done
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func writeUploadForm(mw *multipart.Writer, up UploadRequest) error {
	if up.FolderID != nil {
		if err := mw.WriteField("folder_id", *up.FolderID); err != nil {
			return err
		}
	}
	if up.FolderPath != "" {
		if err := mw.WriteField("folder_path", up.FolderPath); err != nil {
			return err
		}
	}

	content := up.Content
	if content == nil {
		content = strings.NewReader("")
	}
	br := bufio.NewReader(content)
	head, _ := br.Peek(sniffLen)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(up.Name)))
	h.Set("Content-Type", DetectContentType(up.Name, head))

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, br); err != nil {
		return fmt.Errorf("failed to read %s: %w", up.Name, err)
	}
	return mw.Close()
}

// sniffLen covers the longest magic number filetype inspects.
const sniffLen = 262

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// DetectContentType guesses a MIME type from the leading bytes of a file,
// then from its extension.
func DetectContentType(name string, head []byte) string {
	if kind, err := filetype.Match(head); err == nil && kind != filetype.Unknown {
		return kind.MIME.Value
	}
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); t != "" {
		return t
	}
	return "application/octet-stream"
}

// Download is an open file download. The caller closes Body.
type Download struct {
	Body        io.ReadCloser
	Filename    string
	ContentType string
	Size        int64
}

// DownloadFile opens the content stream of a file.
func (c *Client) DownloadFile(ctx context.Context, fileID string) (*Download, error) {
	resp, err := c.send(ctx, request{
		method: http.MethodGet,
		route:  "/files/download/{id}",
		path:   "/files/download/" + url.PathEscape(fileID),
	})
	if err != nil {
		return nil, err
	}

	dl := &Download{
		Body:        resp.Body,
		ContentType: resp.Header.Get("Content-Type"),
		Size:        -1,
	}
	if cl := resp.Header.Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil {
			dl.Size = n
		}
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			dl.Filename = params["filename"]
		}
	}
	return dl, nil
}

// DeleteFile deletes one file.
func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	return c.do(ctx, request{
		method: http.MethodDelete,
		route:  "/files/delete/{id}",
		path:   "/files/delete/" + url.PathEscape(fileID),
	}, nil)
}

// MoveFile moves a file into target; nil is the root.
func (c *Client) MoveFile(ctx context.Context, fileID string, target *string) error {
	return c.doJSON(ctx, request{
		method: http.MethodPost,
		route:  "/files/move",
		path:   "/files/move",
	}, struct {
		FileID         string  `json:"file_id"`
		TargetFolderID *string `json:"target_folder_id"`
	}{fileID, target}, nil)
}
