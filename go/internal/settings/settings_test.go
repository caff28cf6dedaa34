package settings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected BoardSettings
		wantErr  error
	}{
		{
			name:     "empty document keeps defaults",
			input:    "",
			expected: Default(),
		},
		{
			name: "partial override",
			input: `
board:
  rows: 24
  ghost_piece: false
`,
			expected: BoardSettings{Rows: 24, Cols: 10, Speed: 1000, GhostPiece: false, ShowNext: true},
		},
		{
			name: "full override",
			input: `
board:
  rows: 16
  cols: 8
  speed: 500
  ghost_piece: false
  show_next: false
`,
			expected: BoardSettings{Rows: 16, Cols: 8, Speed: 500},
		},
		{
			name: "zero columns rejected",
			input: `
board:
  cols: 0
`,
			expected: Default(),
			wantErr:  ErrInvalidSettings,
		},
		{
			name: "negative speed rejected",
			input: `
board:
  speed: -1
`,
			expected: Default(),
			wantErr:  ErrInvalidSettings,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.input))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.expected, got)
		})
	}
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte("board: [1, 2"))
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("board:\n  rows: 30\n"), 0o600))

	got, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 30, got.Rows)

	got, err = Load(filepath.Join(dir, "missing.yaml"))
	require.True(t, errors.Is(err, os.ErrNotExist))
	require.Equal(t, Default(), got)
}
