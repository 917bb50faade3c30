package apitest

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
)

type adminUserJSON struct {
	userJSON
	CreatedAt   string `json:"created_at"`
	StorageUsed int64  `json:"storage_used"`
	FileCount   int    `json:"file_count"`
	FolderCount int    `json:"folder_count"`
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts := make([]*account, 0, len(s.accounts))
	for _, a := range s.accounts {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].seq < accounts[j].seq })

	out := make([]adminUserJSON, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, adminUserJSON{
			userJSON:    a.json(),
			CreatedAt:   a.CreatedAt.Format(time.RFC3339),
			StorageUsed: s.storageUsed(a.ID),
			FileCount:   len(s.ownedFiles(a.ID)),
			FolderCount: len(s.ownedFolders(a.ID)),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// guardTarget applies the backend's rules for acting on another account.
func guardTarget(w http.ResponseWriter, actor, target *account, what string) bool {
	if !actor.IsSuperAdmin && target.Role == "admin" {
		writeError(w, http.StatusForbidden, "Only super admin can modify admin users")
		return false
	}
	if target.IsSuperAdmin {
		writeError(w, http.StatusForbidden, "Cannot modify super admin"+what)
		return false
	}
	return true
}

func (s *Server) handleChangeRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID    string `json:"user_id"`
		Role      string `json:"role"`
		MakeAdmin bool   `json:"make_admin"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.accounts[req.UserID]
	if target == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if !guardTarget(w, currentAccount(r.Context()), target, "") {
		return
	}

	target.Role = "user"
	if req.MakeAdmin {
		target.Role = "admin"
	}
	writeMessage(w, "Role updated successfully")
}

func (s *Server) handleAdminChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID      string `json:"user_id"`
		NewPassword string `json:"new_password"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.accounts[req.UserID]
	if target == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if !guardTarget(w, currentAccount(r.Context()), target, " password") {
		return
	}
	if msg := passwordProblem(req.NewPassword); msg != "" {
		writeValidation(w, msg)
		return
	}

	target.PasswordHash, _ = bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.MinCost)
	writeMessage(w, "Password changed successfully")
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actor := currentAccount(r.Context())
	target := s.accounts[chi.URLParam(r, "id")]
	if target == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if !guardTarget(w, actor, target, "") {
		return
	}
	if target.ID == actor.ID {
		writeError(w, http.StatusBadRequest, "Cannot delete yourself")
		return
	}

	for id, f := range s.files {
		if f.OwnerID == target.ID {
			delete(s.files, id)
		}
	}
	for id, f := range s.folders {
		if f.OwnerID == target.ID {
			delete(s.folders, id)
		}
	}
	delete(s.accounts, target.ID)
	writeMessage(w, "User deleted successfully")
}

func (s *Server) handleListPlugins(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]plugin, 0, len(s.plugins))
	for _, p := range s.plugins {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdatePlugin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled  *bool           `json:"enabled"`
		Settings json.RawMessage `json:"settings"`
	}
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.plugins[chi.URLParam(r, "name")]
	if p == nil {
		writeError(w, http.StatusNotFound, "Plugin not found")
		return
	}
	if req.Enabled != nil {
		p.Enabled = *req.Enabled
	}
	if len(req.Settings) > 0 && string(req.Settings) != "null" {
		if !json.Valid(req.Settings) || req.Settings[0] != '{' {
			writeValidation(w, "settings must be an object")
			return
		}
		p.Settings = append(json.RawMessage(nil), req.Settings...)
	}
	writeJSON(w, http.StatusOK, p)
}
