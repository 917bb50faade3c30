package apitest

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type folderJSON struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	ParentID  *string `json:"parent_id"`
	CreatedAt string  `json:"created_at"`
	Size      int64   `json:"size"`
}

func (s *Server) addFolder(owner, name string, parent *string) *folder {
	f := &folder{
		seq:       s.nextSeq(),
		ID:        uuid.NewString(),
		Name:      name,
		OwnerID:   owner,
		ParentID:  parent,
		CreatedAt: s.now().UTC(),
	}
	s.folders[f.ID] = f
	return f
}

func (s *Server) ownedFolder(r *http.Request, id string) *folder {
	f := s.folders[id]
	if f == nil || f.OwnerID != currentAccount(r.Context()).ID {
		return nil
	}
	return f
}

// folderSize sums the files of the folder and of every folder below it.
func (s *Server) folderSize(f *folder) int64 {
	var total int64
	for _, file := range s.files {
		if file.OwnerID == f.OwnerID && file.FolderID != nil && *file.FolderID == f.ID {
			total += int64(len(file.Data))
		}
	}
	for _, child := range s.folders {
		if child.OwnerID == f.OwnerID && child.ParentID != nil && *child.ParentID == f.ID {
			total += s.folderSize(child)
		}
	}
	return total
}

// isDescendant reports whether candidate is ancestor or lies below it.
func (s *Server) isDescendant(candidate, ancestor string) bool {
	for id := &candidate; id != nil; {
		if *id == ancestor {
			return true
		}
		f := s.folders[*id]
		if f == nil {
			return false
		}
		id = f.ParentID
	}
	return false
}

func (s *Server) handleFolderTree(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []folderJSON{}
	for _, f := range s.ownedFolders(currentAccount(r.Context()).ID) {
		out = append(out, folderJSON{
			ID:        f.ID,
			Name:      f.Name,
			ParentID:  f.ParentID,
			CreatedAt: f.CreatedAt.Format(time.RFC3339),
			Size:      s.folderSize(f),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string  `json:"name"`
		ParentID *string `json:"parent_id"`
	}
	if !decode(w, r, &req) {
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "Folder name is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	owner := currentAccount(r.Context()).ID
	if req.ParentID != nil && s.ownedFolder(r, *req.ParentID) == nil {
		writeError(w, http.StatusNotFound, "Parent folder not found")
		return
	}
	if s.childFolder(owner, req.ParentID, name) != nil {
		writeError(w, http.StatusBadRequest, "Folder with this name already exists")
		return
	}

	f := s.addFolder(owner, name, req.ParentID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Folder created successfully", "folder_id": f.ID})
}

func (s *Server) handleDeleteFolder(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.ownedFolder(r, chi.URLParam(r, "id"))
	if f == nil {
		writeError(w, http.StatusNotFound, "Folder not found")
		return
	}
	s.deleteSubtree(f)
	writeMessage(w, "Folder deleted successfully")
}

func (s *Server) deleteSubtree(f *folder) {
	for _, child := range s.folders {
		if child.ParentID != nil && *child.ParentID == f.ID {
			s.deleteSubtree(child)
		}
	}
	for id, file := range s.files {
		if file.FolderID != nil && *file.FolderID == f.ID {
			delete(s.files, id)
		}
	}
	delete(s.folders, f.ID)
}

func (s *Server) handleMoveFolder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FolderID       string  `json:"folder_id"`
		TargetParentID *string `json:"target_parent_id"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.ownedFolder(r, req.FolderID)
	if f == nil {
		writeError(w, http.StatusNotFound, "Folder not found")
		return
	}
	if req.TargetParentID != nil {
		if s.ownedFolder(r, *req.TargetParentID) == nil {
			writeError(w, http.StatusNotFound, "Target parent folder not found")
			return
		}
		if s.isDescendant(*req.TargetParentID, f.ID) {
			writeError(w, http.StatusBadRequest, "Cannot move folder into itself or its descendants")
			return
		}
	}
	f.ParentID = req.TargetParentID
	writeMessage(w, "Folder moved successfully")
}

func (s *Server) handleBreadcrumb(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	type entry struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	crumbs := []entry{}
	id := chi.URLParam(r, "id")
	for id != "" {
		f := s.ownedFolder(r, id)
		if f == nil {
			break
		}
		crumbs = append([]entry{{ID: f.ID, Name: f.Name}}, crumbs...)
		id = ""
		if f.ParentID != nil {
			id = *f.ParentID
		}
	}
	writeJSON(w, http.StatusOK, crumbs)
}
