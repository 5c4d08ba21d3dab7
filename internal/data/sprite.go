package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SpriteInfo holds the metrics of one animated sprite. Glyph and Color are
// what the terminal canvas draws in place of the bitmap frames.
type SpriteInfo struct {
	ID     int    `yaml:"id"`
	Name   string `yaml:"name"`
	Frames int    `yaml:"frames"`
	Width  int    `yaml:"width"`  // pixels
	Height int    `yaml:"height"` // pixels
	XLeft  int    `yaml:"xleft"`
	XRight int    `yaml:"xright"`
	YAbove int    `yaml:"yabove"`
	YBelow int    `yaml:"ybelow"`
	Glyph  string `yaml:"glyph"`
	Color  string `yaml:"color"`
}

// SpriteTable provides lookup of sprite metrics by sprite id.
type SpriteTable struct {
	sprites map[int]*SpriteInfo
}

// LoadSpriteTable loads sprites.yaml.
func LoadSpriteTable(path string) (*SpriteTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sprite list: %w", err)
	}
	var entries []SpriteInfo
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse sprite list: %w", err)
	}
	return NewSpriteTable(entries...), nil
}

// NewSpriteTable builds a table from in-memory entries. Missing extents are
// derived from the frame size, anchored at the bottom-right like shape art.
func NewSpriteTable(entries ...SpriteInfo) *SpriteTable {
	t := &SpriteTable{sprites: make(map[int]*SpriteInfo, len(entries))}
	for i := range entries {
		e := entries[i]
		if e.Frames <= 0 {
			e.Frames = 1
		}
		if e.XLeft == 0 && e.XRight == 0 {
			e.XLeft = e.Width - 1
		}
		if e.YAbove == 0 && e.YBelow == 0 {
			e.YAbove = e.Height - 1
		}
		if e.Glyph == "" {
			e.Glyph = "*"
		}
		t.sprites[e.ID] = &e
	}
	return t
}

// Get returns sprite metrics, or nil for an unknown id.
func (t *SpriteTable) Get(id int) *SpriteInfo {
	return t.sprites[id]
}

// Count returns the total number of sprites loaded.
func (t *SpriteTable) Count() int {
	return len(t.sprites)
}
