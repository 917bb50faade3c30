// Package apitest runs an in-memory Mini Cloud backend for tests. It speaks
// the same REST surface as the real server, counts requests per route and
// can inject upload failures and per-request hooks.
package apitest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"minicloud/pkg/client"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"
	"golang.org/x/crypto/bcrypt"
)

// Seeded super admin credentials.
const (
	AdminUsername = "admin"
	AdminPassword = "admin"
)

// DefaultMaxFileSize mirrors the backend's upload limit.
const DefaultMaxFileSize = 100 * 1024 * 1024

// DefaultBlockedExtensions mirrors the backend's extension filter.
var DefaultBlockedExtensions = []string{".php", ".exe", ".bat", ".cmd", ".sh", ".js", ".html", ".htm", ".jsp", ".asp", ".aspx"}

type account struct {
	seq          int
	ID           string
	Username     string
	Email        string
	PasswordHash []byte
	Role         string
	IsSuperAdmin bool
	Language     string
	CreatedAt    time.Time
}

type folder struct {
	seq       int
	ID        string
	Name      string
	OwnerID   string
	ParentID  *string
	CreatedAt time.Time
}

type file struct {
	seq       int
	ID        string
	Name      string
	OwnerID   string
	FolderID  *string
	MimeType  string
	Data      []byte
	CreatedAt time.Time
}

type plugin struct {
	Name        string          `json:"name"`
	Enabled     bool            `json:"enabled"`
	Description string          `json:"description"`
	Settings    json.RawMessage `json:"settings"`
}

// Server is the fake backend. Every exported method is safe for concurrent use.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	secret   []byte
	tokenID  func() string
	seq      int
	accounts map[string]*account
	folders  map[string]*folder
	files    map[string]*file
	plugins  map[string]*plugin

	counts      map[string]int
	failUploads map[string]bool
	onRequest   func(r *http.Request)
	now         func() time.Time
}

// New starts a fake backend with the seeded super admin and default
// plugins. It is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	tokenID, err := nanoid.Standard(21)
	if err != nil {
		t.Fatalf("failed to create token id generator: %v", err)
	}

	s := &Server{
		tokenID:     tokenID,
		secret:      []byte(uuid.NewString()),
		accounts:    make(map[string]*account),
		folders:     make(map[string]*folder),
		files:       make(map[string]*file),
		plugins:     make(map[string]*plugin),
		counts:      make(map[string]int),
		failUploads: make(map[string]bool),
		now:         time.Now,
	}
	s.addAccount(AdminUsername, "admin@minicloud.com", AdminPassword, "admin", true)
	s.seedPlugins()

	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) seedPlugins() {
	blocked, _ := json.Marshal(map[string]any{"blocked_extensions": DefaultBlockedExtensions})
	limit, _ := json.Marshal(map[string]any{"max_file_size": DefaultMaxFileSize})
	s.plugins["file_filter"] = &plugin{
		Name:        "file_filter",
		Enabled:     true,
		Description: "Rejects uploads with blocked file extensions",
		Settings:    blocked,
	}
	s.plugins["upload_limit"] = &plugin{
		Name:        "upload_limit",
		Enabled:     true,
		Description: "Limits the size of a single upload",
		Settings:    limit,
	}
	s.plugins["audit_log"] = &plugin{
		Name:        "audit_log",
		Enabled:     false,
		Description: "Records security events",
		Settings:    json.RawMessage(`{"retention_days":30,"events":["login","delete"]}`),
	}
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.track)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/register", s.handleRegister)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Post("/auth/change-password", s.handleChangePassword)
			r.Get("/auth/me", s.handleMe)

			r.Get("/files/list", s.handleListFiles)
			r.Post("/files/upload", s.handleUpload)
			r.Get("/files/download/{id}", s.handleDownload)
			r.Delete("/files/delete/{id}", s.handleDeleteFile)
			r.Post("/files/move", s.handleMoveFile)

			r.Get("/folders/tree", s.handleFolderTree)
			r.Post("/folders/create", s.handleCreateFolder)
			r.Delete("/folders/delete/{id}", s.handleDeleteFolder)
			r.Post("/folders/move", s.handleMoveFolder)
			r.Get("/folders/breadcrumb/{id}", s.handleBreadcrumb)

			r.Get("/user/stats", s.handleStats)
			r.Post("/user/language", s.handleLanguage)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAdmin)

				r.Get("/admin/users", s.handleListUsers)
				r.Post("/admin/change-role", s.handleChangeRole)
				r.Post("/admin/change-password", s.handleAdminChangePassword)
				r.Delete("/admin/delete-user/{id}", s.handleDeleteUser)
				r.Get("/admin/plugins", s.handleListPlugins)
				r.Put("/admin/plugins/{name}", s.handleUpdatePlugin)
			})
		})
	})
	return r
}

// track runs the request hook, then counts the request under its route
// pattern once chi has matched it.
func (s *Server) track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		hook := s.onRequest
		s.mu.Unlock()
		if hook != nil {
			hook(r)
		}

		next.ServeHTTP(w, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		route = strings.TrimPrefix(route, "/api")

		s.mu.Lock()
		s.counts[r.Method+" "+route]++
		s.mu.Unlock()
	})
}

// Requests returns how many requests hit route, e.g. ("POST", "/folders/create").
func (s *Server) Requests(method, route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[method+" "+route]
}

// TotalRequests returns the number of requests served since the last reset.
func (s *Server) TotalRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.counts {
		total += n
	}
	return total
}

func (s *Server) ResetCounts() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts = make(map[string]int)
}

// FailUploads makes uploads of the named files fail with a 500.
func (s *Server) FailUploads(names ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range names {
		s.failUploads[name] = true
	}
}

// OnRequest installs a hook that runs before every request is handled.
// The hook may block to delay a response.
func (s *Server) OnRequest(hook func(r *http.Request)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRequest = hook
}

// AddUser creates an account and returns its id.
func (s *Server) AddUser(username, password, role string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addAccount(username, username+"@example.com", password, role, false).ID
}

// UserID returns the id of the named account.
func (s *Server) UserID(username string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a := s.accountByName(username); a != nil {
		return a.ID
	}
	return ""
}

// Token issues a valid token for the account.
func (s *Server) Token(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.accounts[userID]
	if a == nil {
		return ""
	}
	token, _ := s.issueToken(a)
	return token
}

// Client returns an API client for the server that sends token.
func (s *Server) Client(token string) *client.Client {
	return client.New(client.Config{BaseURL: s.URL, Tokens: client.StaticToken(token)})
}

// FolderID resolves a slash separated folder path of the account.
func (s *Server) FolderID(userID, path string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var parent *string
	for _, name := range strings.Split(strings.Trim(path, "/"), "/") {
		f := s.childFolder(userID, parent, name)
		if f == nil {
			return "", false
		}
		parent = &f.ID
	}
	if parent == nil {
		return "", false
	}
	return *parent, true
}

// FileNames lists the names of the files directly inside folderID.
func (s *Server) FileNames(userID string, folderID *string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var names []string
	for _, f := range s.ownedFiles(userID) {
		if sameFolder(f.FolderID, folderID) {
			names = append(names, f.Name)
		}
	}
	sort.Strings(names)
	return names
}

func (s *Server) nextSeq() int {
	s.seq++
	return s.seq
}

func (s *Server) addAccount(username, email, password, role string, superAdmin bool) *account {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	a := &account{
		seq:          s.nextSeq(),
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsSuperAdmin: superAdmin,
		CreatedAt:    s.now().UTC(),
	}
	s.accounts[a.ID] = a
	return a
}

func (s *Server) accountByName(username string) *account {
	for _, a := range s.accounts {
		if a.Username == username {
			return a
		}
	}
	return nil
}

func (s *Server) childFolder(ownerID string, parent *string, name string) *folder {
	for _, f := range s.folders {
		if f.OwnerID == ownerID && f.Name == name && sameFolder(f.ParentID, parent) {
			return f
		}
	}
	return nil
}

func (s *Server) ownedFolders(ownerID string) []*folder {
	var out []*folder
	for _, f := range s.folders {
		if f.OwnerID == ownerID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func (s *Server) ownedFiles(ownerID string) []*file {
	var out []*file
	for _, f := range s.files {
		if f.OwnerID == ownerID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func sameFolder(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

type ctxKey struct{}

func currentAccount(ctx context.Context) *account {
	a, _ := ctx.Value(ctxKey{}).(*account)
	return a
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeValidation mimics the list-shaped detail of request validation errors.
func writeValidation(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"detail": []map[string]string{{"msg": msg}},
	})
}

func writeMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeValidation(w, "invalid JSON body")
		return false
	}
	return true
}
