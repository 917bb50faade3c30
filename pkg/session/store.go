package session

import (
	"encoding/json"
	"fmt"

	"minicloud/pkg/types"
)

// Themes.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Store is the typed view over Storage: the one session of the process plus
// the persisted theme and language.
type Store struct {
	storage Storage
}

func NewStore(storage Storage) *Store {
	return &Store{storage: storage}
}

// Current returns the persisted session, or false when signed out. A user
// blob that no longer parses counts as signed out.
func (s *Store) Current() (types.Session, bool) {
	token, ok := s.storage.Get(KeyToken)
	if !ok || token == "" {
		return types.Session{}, false
	}

	raw, ok := s.storage.Get(KeyUser)
	if !ok {
		return types.Session{}, false
	}
	var user types.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return types.Session{}, false
	}
	return types.Session{Token: token, User: user}, true
}

// Token returns the bearer token or "".
func (s *Store) Token() string {
	token, _ := s.storage.Get(KeyToken)
	return token
}

// Save replaces the current session.
func (s *Store) Save(sess types.Session) error {
	if sess.Token == "" {
		return fmt.Errorf("session token is required")
	}
	data, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	if err := s.storage.Set(KeyToken, sess.Token); err != nil {
		return err
	}
	return s.storage.Set(KeyUser, string(data))
}

// UpdateUser rewrites the stored profile, keeping the token.
func (s *Store) UpdateUser(user types.User) error {
	sess, ok := s.Current()
	if !ok {
		return fmt.Errorf("not signed in")
	}
	sess.User = user
	return s.Save(sess)
}

// Clear destroys the session. Theme and language survive a logout.
func (s *Store) Clear() error {
	if err := s.storage.Remove(KeyToken); err != nil {
		return err
	}
	return s.storage.Remove(KeyUser)
}

func (s *Store) Theme() string {
	if theme, ok := s.storage.Get(KeyTheme); ok && theme != "" {
		return theme
	}
	return ThemeDark
}

func (s *Store) SetTheme(theme string) error {
	switch theme {
	case ThemeLight, ThemeDark:
	default:
		return fmt.Errorf("unknown theme %q", theme)
	}
	return s.storage.Set(KeyTheme, theme)
}

// Language returns the persisted language code, or "" if none was chosen.
func (s *Store) Language() string {
	lang, _ := s.storage.Get(KeyLanguage)
	return lang
}

func (s *Store) SetLanguage(lang string) error {
	return s.storage.Set(KeyLanguage, lang)
}
