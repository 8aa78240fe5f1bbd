// Package pool loads tile shape definitions from a JSON pool document.
//
// A pool groups structures by category (such as "standard").  Each structure
// is a two-dimensional grid of filled and empty cells with an id that is
// unique within the category.  Documents are validated against the pool
// schema before use.
package pool

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	_ "embed"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/polyfall-game/polyfall/game/tile"
)

type (
	// Pool holds the tile structures of a game, grouped by category.
	Pool struct {
		categories map[string][]Structure
	}

	// Structure is the cell grid of a single tile shape.
	Structure struct {
		ID    int
		Cells [][]bool
	}

	// jsonPool is the document form of a pool.
	jsonPool struct {
		Categories map[string][]jsonStructure `json:"categories"`
	}

	// jsonStructure is the document form of a structure.  Cells are 0 or 1.
	jsonStructure struct {
		ID    int     `json:"id"`
		Cells [][]int `json:"cells"`
	}
)

//go:embed schema.json
var schemaJSON []byte

const schemaName = "tilepool.schema.json"

// tileColors are assigned to pool tiles round-robin by structure id.
var tileColors = []tile.Color{
	tile.Red,
	tile.Green,
	tile.Blue,
	tile.Yellow,
	tile.Purple,
	tile.Orange,
	tile.Cyan,
}

// New parses and validates a pool document.
func New(poolJSON []byte) (*Pool, error) {
	if err := validateDocument(poolJSON); err != nil {
		return nil, fmt.Errorf("validating pool document: %w", err)
	}
	var jp jsonPool
	if err := json.Unmarshal(poolJSON, &jp); err != nil {
		return nil, fmt.Errorf("parsing pool document: %w", err)
	}
	p := Pool{
		categories: make(map[string][]Structure, len(jp.Categories)),
	}
	for category, jsonStructures := range jp.Categories {
		structures := make([]Structure, 0, len(jsonStructures))
		for _, js := range jsonStructures {
			s, err := js.structure()
			if err != nil {
				return nil, fmt.Errorf("structure %v in category %q: %w", js.ID, category, err)
			}
			structures = append(structures, s)
		}
		sort.Slice(structures, func(i, j int) bool {
			return structures[i].ID < structures[j].ID
		})
		p.categories[category] = structures
	}
	return &p, nil
}

// validateDocument checks the document against the pool schema.
func validateDocument(poolJSON []byte) error {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaName, bytes.NewReader(schemaJSON)); err != nil {
		return fmt.Errorf("adding pool schema: %w", err)
	}
	schema, err := c.Compile(schemaName)
	if err != nil {
		return fmt.Errorf("compiling pool schema: %w", err)
	}
	var doc interface{}
	if err := json.Unmarshal(poolJSON, &doc); err != nil {
		return fmt.Errorf("parsing document: %w", err)
	}
	return schema.Validate(doc)
}

// structure converts the document form, requiring all rows to have the same width.
func (js jsonStructure) structure() (Structure, error) {
	s := Structure{
		ID:    js.ID,
		Cells: make([][]bool, len(js.Cells)),
	}
	for y, row := range js.Cells {
		if y > 0 && len(row) != len(js.Cells[0]) {
			return Structure{}, fmt.Errorf("row %v has %v cells, want %v", y, len(row), len(js.Cells[0]))
		}
		s.Cells[y] = make([]bool, len(row))
		for x, cell := range row {
			s.Cells[y][x] = cell != 0
		}
	}
	return s, nil
}

// Categories returns the sorted category names of the pool.
func (p *Pool) Categories() []string {
	categories := make([]string, 0, len(p.categories))
	for category := range p.categories {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}

// Structures returns the structures of the category, sorted by id.
func (p *Pool) Structures(category string) []Structure {
	return p.categories[category]
}

// Structure returns the cell grid of the structure with the id in the category.
func (p *Pool) Structure(id int, category string) ([][]bool, error) {
	for _, s := range p.categories[category] {
		if s.ID == id {
			return s.Cells, nil
		}
	}
	return nil, fmt.Errorf("no structure with id %v in category %q", id, category)
}

// NewTile builds a tile from the structure with the id in the category.
// The shape is centered on the midpoint of the structure's cell grid and the
// tile is colored by id.
func (p *Pool) NewTile(id int, category string) (*tile.Tile, error) {
	cells, err := p.Structure(id, category)
	if err != nil {
		return nil, err
	}
	t := tile.NewFromStructure(cells)
	t.SetColor(tileColors[((id%len(tileColors))+len(tileColors))%len(tileColors)])
	return t, nil
}
