package plugins

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"minicloud/pkg/utils"
)

// Plugins whose settings have a typed form.
const (
	FileFilter  = "file_filter"
	UploadLimit = "upload_limit"
)

var (
	ErrInvalidSettings = errors.New("invalid plugin settings")
	ErrWrongSettings   = errors.New("settings do not belong to this plugin")
)

// Settings is one of BlockedExtensions, MaxFileSize or Unknown.
type Settings interface {
	isSettings()
	String() string
}

// BlockedExtensions configures the file_filter plugin.
type BlockedExtensions struct {
	Extensions []string
}

// MaxFileSize configures the upload_limit plugin. Limit is in bytes.
type MaxFileSize struct {
	Limit int64
}

// Unknown carries the settings of a plugin this client has no typed form
// for. Raw is sent back unchanged.
type Unknown struct {
	Raw json.RawMessage
}

func (BlockedExtensions) isSettings() {}
func (MaxFileSize) isSettings()       {}
func (Unknown) isSettings()           {}

func (s BlockedExtensions) String() string {
	if len(s.Extensions) == 0 {
		return "no blocked extensions"
	}
	return strings.Join(s.Extensions, ", ")
}

func (s MaxFileSize) String() string {
	return utils.FormatDataSize(s.Limit)
}

func (s Unknown) String() string {
	if len(s.Raw) == 0 {
		return "{}"
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, s.Raw); err != nil {
		return string(s.Raw)
	}
	return buf.String()
}

type blockedJSON struct {
	BlockedExtensions []string `json:"blocked_extensions"`
}

type limitJSON struct {
	MaxFileSize int64 `json:"max_file_size"`
}

// Decode turns the stored settings of the named plugin into their typed form.
func Decode(name string, raw json.RawMessage) (Settings, error) {
	switch name {
	case FileFilter:
		var v blockedJSON
		if err := strictUnmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSettings, name, err)
		}
		return BlockedExtensions{Extensions: NormalizeExtensions(v.BlockedExtensions)}, nil
	case UploadLimit:
		var v limitJSON
		if err := strictUnmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSettings, name, err)
		}
		return MaxFileSize{Limit: v.MaxFileSize}, nil
	}
	return Unknown{Raw: append(json.RawMessage(nil), raw...)}, nil
}

// Encode validates s for the named plugin and renders the wire payload.
func Encode(name string, s Settings) (json.RawMessage, error) {
	switch v := s.(type) {
	case BlockedExtensions:
		if name != FileFilter {
			return nil, fmt.Errorf("%w: %s", ErrWrongSettings, name)
		}
		return json.Marshal(blockedJSON{BlockedExtensions: NormalizeExtensions(v.Extensions)})
	case MaxFileSize:
		if name != UploadLimit {
			return nil, fmt.Errorf("%w: %s", ErrWrongSettings, name)
		}
		if v.Limit <= 0 {
			return nil, fmt.Errorf("%w: size limit must be positive", ErrInvalidSettings)
		}
		return json.Marshal(limitJSON{MaxFileSize: v.Limit})
	case Unknown:
		if name == FileFilter || name == UploadLimit {
			if _, err := Decode(name, v.Raw); err != nil {
				return nil, err
			}
		}
		if !isObject(v.Raw) {
			return nil, fmt.Errorf("%w: settings must be a JSON object", ErrInvalidSettings)
		}
		return append(json.RawMessage(nil), v.Raw...), nil
	case nil:
		return nil, fmt.Errorf("%w: no settings", ErrInvalidSettings)
	}
	return nil, fmt.Errorf("%w: unsupported settings type %T", ErrInvalidSettings, s)
}

// Parse reads settings for the named plugin from command line input: a
// comma separated extension list for file_filter, a size such as "100MB"
// for upload_limit, and a JSON object for anything else.
func Parse(name, input string) (Settings, error) {
	input = strings.TrimSpace(input)
	switch name {
	case FileFilter:
		return BlockedExtensions{Extensions: NormalizeExtensions(strings.Split(input, ","))}, nil
	case UploadLimit:
		limit, err := utils.ParseDataSize(input)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
		}
		if limit <= 0 {
			return nil, fmt.Errorf("%w: size limit must be positive", ErrInvalidSettings)
		}
		return MaxFileSize{Limit: limit}, nil
	}
	if !isObject(json.RawMessage(input)) {
		return nil, fmt.Errorf("%w: settings must be a JSON object", ErrInvalidSettings)
	}
	return Unknown{Raw: json.RawMessage(input)}, nil
}

// NormalizeExtensions lowercases, adds the leading dot and drops blanks and
// duplicates, keeping the first occurrence order.
func NormalizeExtensions(exts []string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" || ext == "." {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if seen[ext] {
			continue
		}
		seen[ext] = true
		out = append(out, ext)
	}
	return out
}

func strictUnmarshal(raw json.RawMessage, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{' && json.Valid(raw)
}
