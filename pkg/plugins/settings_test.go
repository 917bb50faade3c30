package plugins

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		plugin  string
		input   string
		want    Settings
		wantErr bool
	}{
		{"extension list", FileFilter, " exe, .BAT ,,sh ", BlockedExtensions{Extensions: []string{".exe", ".bat", ".sh"}}, false},
		{"empty extension list", FileFilter, "", BlockedExtensions{Extensions: []string{}}, false},
		{"human size", UploadLimit, "100MiB", MaxFileSize{Limit: 100 * 1024 * 1024}, false},
		{"byte count", UploadLimit, "2048", MaxFileSize{Limit: 2048}, false},
		{"zero size", UploadLimit, "0", nil, true},
		{"bad size", UploadLimit, "lots", nil, true},
		{"json object", "audit_log", `{"retention_days":5}`, Unknown{Raw: json.RawMessage(`{"retention_days":5}`)}, false},
		{"json scalar", "audit_log", `5`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.plugin, tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSettings)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeEncode(t *testing.T) {
	s, err := Decode(UploadLimit, json.RawMessage(`{"max_file_size":1048576}`))
	require.NoError(t, err)
	assert.Equal(t, MaxFileSize{Limit: 1048576}, s)
	assert.Equal(t, "1 MB", s.String())

	raw, err := Encode(UploadLimit, s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"max_file_size":1048576}`, string(raw))

	s, err = Decode(FileFilter, json.RawMessage(`{"blocked_extensions":["PHP","php",".js"]}`))
	require.NoError(t, err)
	assert.Equal(t, BlockedExtensions{Extensions: []string{".php", ".js"}}, s)
	assert.Equal(t, ".php, .js", s.String())

	_, err = Decode(FileFilter, json.RawMessage(`{"blocked_extensions":"php"}`))
	assert.ErrorIs(t, err, ErrInvalidSettings)

	s, err = Decode("audit_log", json.RawMessage("{ \"a\" : 1 }"))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, s.String())
}
