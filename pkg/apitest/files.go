package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"minicloud/pkg/client"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type fileJSON struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Size      int64   `json:"size"`
	MimeType  string  `json:"mime_type"`
	FolderID  *string `json:"folder_id"`
	CreatedAt string  `json:"created_at"`
}

func (f *file) json() fileJSON {
	return fileJSON{
		ID:        f.ID,
		Name:      f.Name,
		Size:      int64(len(f.Data)),
		MimeType:  f.MimeType,
		FolderID:  f.FolderID,
		CreatedAt: f.CreatedAt.Format(time.RFC3339),
	}
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	var folderID *string
	if id := r.URL.Query().Get("folder_id"); id != "" {
		folderID = &id
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []fileJSON{}
	for _, f := range s.ownedFiles(currentAccount(r.Context()).ID) {
		if sameFolder(f.FolderID, folderID) {
			out = append(out, f.json())
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeValidation(w, "invalid multipart body")
		return
	}
	upload, header, err := r.FormFile("file")
	if err != nil {
		writeValidation(w, "field required: file")
		return
	}
	defer upload.Close()

	data, err := io.ReadAll(upload)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read upload")
		return
	}
	name := header.Filename

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failUploads[name] {
		writeError(w, http.StatusInternalServerError, "Storage failure")
		return
	}
	if s.blockedExtension(name) {
		writeError(w, http.StatusBadRequest, "File type not allowed for security reasons")
		return
	}
	if limit := s.maxFileSize(); limit > 0 && int64(len(data)) > limit {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("File too large. Maximum size is %dMB", limit/(1024*1024)))
		return
	}

	owner := currentAccount(r.Context()).ID
	var folderID *string
	if id := r.FormValue("folder_id"); id != "" {
		f := s.folders[id]
		if f == nil || f.OwnerID != owner {
			writeError(w, http.StatusNotFound, "Folder not found")
			return
		}
		folderID = &f.ID
	}
	if path := strings.Trim(r.FormValue("folder_path"), "/"); path != "" {
		folderID = s.mkdirAll(owner, folderID, path)
	}

	f := &file{
		seq:       s.nextSeq(),
		ID:        uuid.NewString(),
		Name:      name,
		OwnerID:   owner,
		FolderID:  folderID,
		MimeType:  client.DetectContentType(name, data),
		Data:      data,
		CreatedAt: s.now().UTC(),
	}
	s.files[f.ID] = f
	writeJSON(w, http.StatusOK, map[string]string{"message": "File uploaded successfully", "file_id": f.ID})
}

// mkdirAll resolves path below parent, creating missing folders.
func (s *Server) mkdirAll(owner string, parent *string, path string) *string {
	for _, name := range strings.Split(path, "/") {
		if name == "" {
			continue
		}
		f := s.childFolder(owner, parent, name)
		if f == nil {
			f = s.addFolder(owner, name, parent)
		}
		parent = &f.ID
	}
	return parent
}

func (s *Server) blockedExtension(name string) bool {
	p := s.plugins["file_filter"]
	if p == nil || !p.Enabled {
		return false
	}
	var settings struct {
		BlockedExtensions []string `json:"blocked_extensions"`
	}
	if err := json.Unmarshal(p.Settings, &settings); err != nil {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, blocked := range settings.BlockedExtensions {
		if ext != "" && strings.ToLower(blocked) == ext {
			return true
		}
	}
	return false
}

func (s *Server) maxFileSize() int64 {
	p := s.plugins["upload_limit"]
	if p == nil || !p.Enabled {
		return DefaultMaxFileSize
	}
	var settings struct {
		MaxFileSize json.Number `json:"max_file_size"`
	}
	if err := json.Unmarshal(p.Settings, &settings); err != nil {
		return DefaultMaxFileSize
	}
	n, err := settings.MaxFileSize.Int64()
	if err != nil {
		return DefaultMaxFileSize
	}
	return n
}

func (s *Server) ownedFile(r *http.Request, id string) *file {
	f := s.files[id]
	if f == nil || f.OwnerID != currentAccount(r.Context()).ID {
		return nil
	}
	return f
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	f := s.ownedFile(r, chi.URLParam(r, "id"))
	var data []byte
	var name, mimeType string
	if f != nil {
		data, name, mimeType = f.Data, f.Name, f.MimeType
	}
	s.mu.Unlock()

	if f == nil {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.ownedFile(r, chi.URLParam(r, "id"))
	if f == nil {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}
	delete(s.files, f.ID)
	writeMessage(w, "File deleted successfully")
}

func (s *Server) handleMoveFile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FileID         string  `json:"file_id"`
		TargetFolderID *string `json:"target_folder_id"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.ownedFile(r, req.FileID)
	if f == nil {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}
	if req.TargetFolderID != nil {
		if s.ownedFolder(r, *req.TargetFolderID) == nil {
			writeError(w, http.StatusNotFound, "Target folder not found")
			return
		}
	}
	f.FolderID = req.TargetFolderID
	writeMessage(w, "File moved successfully")
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner := currentAccount(r.Context()).ID
	writeJSON(w, http.StatusOK, map[string]any{
		"storage_used": s.storageUsed(owner),
		"file_count":   len(s.ownedFiles(owner)),
		"folder_count": len(s.ownedFolders(owner)),
	})
}

func (s *Server) storageUsed(owner string) int64 {
	var total int64
	for _, f := range s.ownedFiles(owner) {
		total += int64(len(f.Data))
	}
	return total
}
