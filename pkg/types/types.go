package types

// Roles understood by the backend.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	IsSuperAdmin bool   `json:"is_super_admin"`
	Language     string `json:"language,omitempty"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Session is the authenticated state of the client: one per process.
type Session struct {
	Token string
	User  User
}

type FolderNode struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	ParentID  *string `json:"parent_id"`
	Size      int64   `json:"size"`
	CreatedAt string  `json:"created_at,omitempty"`
}

type FileNode struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	FolderID  *string `json:"folder_id"`
	Size      int64   `json:"size"`
	MimeType  string  `json:"mime_type,omitempty"`
	CreatedAt string  `json:"created_at,omitempty"`
}

type BreadcrumbEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Stats are account-wide totals, never scoped to a folder.
type Stats struct {
	StorageUsed int64 `json:"storage_used"`
	FileCount   int   `json:"file_count"`
	FolderCount int   `json:"folder_count"`
}

type AdminUser struct {
	User
	CreatedAt   string `json:"created_at,omitempty"`
	StorageUsed int64  `json:"storage_used"`
	FileCount   int    `json:"file_count"`
	FolderCount int    `json:"folder_count"`
}

type ItemKind string

const (
	KindFile   ItemKind = "file"
	KindFolder ItemKind = "folder"
)

// ItemRef addresses a file or a folder for delete and move.
type ItemRef struct {
	ID   string
	Name string
	Kind ItemKind
}

func FileRef(f FileNode) ItemRef {
	return ItemRef{ID: f.ID, Name: f.Name, Kind: KindFile}
}

func FolderRef(f FolderNode) ItemRef {
	return ItemRef{ID: f.ID, Name: f.Name, Kind: KindFolder}
}

// SameParent reports whether two nullable folder references point at the same folder.
func SameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func StringPtr(s string) *string {
	return &s
}
