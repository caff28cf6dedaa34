package settings

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrInvalidSettings = errors.New("invalid board settings")

// BoardSettings describes the playfield the presentation layer renders
type BoardSettings struct {
	Rows       int  `yaml:"rows" json:"rows"`
	Cols       int  `yaml:"cols" json:"cols"`
	Speed      int  `yaml:"speed" json:"speed"` // drop interval in milliseconds
	GhostPiece bool `yaml:"ghost_piece" json:"ghost_piece"`
	ShowNext   bool `yaml:"show_next" json:"show_next"`
}

type file struct {
	Board BoardSettings `yaml:"board"`
}

// Default returns the standard 20x10 board
func Default() BoardSettings {
	return BoardSettings{
		Rows:       20,
		Cols:       10,
		Speed:      1000,
		GhostPiece: true,
		ShowNext:   true,
	}
}

// Validate checks that every dimension is positive
func (b BoardSettings) Validate() error {
	if b.Rows <= 0 || b.Cols <= 0 {
		return fmt.Errorf("%w: board must be at least 1x1, got %dx%d", ErrInvalidSettings, b.Rows, b.Cols)
	}
	if b.Speed <= 0 {
		return fmt.Errorf("%w: speed must be positive, got %d", ErrInvalidSettings, b.Speed)
	}
	return nil
}

// Load reads board settings from a YAML file. Keys missing from the file keep
// their default values. A missing file yields the defaults and os.ErrNotExist.
func Load(path string) (BoardSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), fmt.Errorf("failed to read settings file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML settings on top of the defaults
func Parse(data []byte) (BoardSettings, error) {
	f := file{Board: Default()}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Default(), fmt.Errorf("failed to parse settings: %w", err)
	}
	if err := f.Board.Validate(); err != nil {
		return Default(), err
	}
	return f.Board, nil
}
