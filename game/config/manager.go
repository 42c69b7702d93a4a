package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/mcp-training/stromrallye/game/engine"
	"github.com/wricardo/mcp-training/stromrallye/game/service"
)

var (
	ErrPuzzleNotFound = service.ErrPuzzleNotFound
	ErrInvalidPuzzle  = engine.ErrInvalidPuzzle
	ErrInvalidName    = errors.New("invalid puzzle name")
)

// DefaultPuzzleID is the puzzle picked as default when the directory has it
const DefaultPuzzleID = "stromrallye0"

// Manager handles puzzle loading and caching
type Manager struct {
	puzzleDir     string
	defaultPuzzle *engine.Puzzle
	puzzles       map[string]*engine.Puzzle
	mu            sync.RWMutex
}

// NewManager creates a new puzzle library over a directory
func NewManager(puzzleDir string) (*Manager, error) {
	// Ensure puzzle directory exists
	if _, err := os.Stat(puzzleDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("puzzle directory does not exist: %s", puzzleDir)
	}

	m := &Manager{
		puzzleDir: puzzleDir,
		puzzles:   make(map[string]*engine.Puzzle),
	}

	if err := m.loadDefaultPuzzle(); err != nil {
		return nil, fmt.Errorf("failed to load default puzzle: %w", err)
	}

	return m, nil
}

// PuzzleID strips a puzzle file extension from name
func PuzzleID(name string) string {
	if engine.IsPuzzleFile(name) {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}

// LoadPuzzle loads a puzzle by id. The id may carry a file extension; without
// one every puzzle extension is tried in order.
func (m *Manager) LoadPuzzle(name string) (*engine.Puzzle, error) {
	id := PuzzleID(name)

	m.mu.RLock()
	// Check cache first
	if p, exists := m.puzzles[id]; exists {
		m.mu.RUnlock()
		return p, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if p, exists := m.puzzles[id]; exists {
		return p, nil
	}

	path, err := m.resolve(name)
	if err != nil {
		return nil, err
	}

	p, err := engine.LoadPuzzle(path)
	if err != nil {
		return nil, err
	}

	m.puzzles[id] = p
	return p, nil
}

// resolve finds the file backing a puzzle name
func (m *Manager) resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	candidates := []string{name}
	if !engine.IsPuzzleFile(name) {
		candidates = candidates[:0]
		for _, ext := range engine.PuzzleExtensions {
			candidates = append(candidates, name+ext)
		}
	}

	for _, c := range candidates {
		path := filepath.Join(m.puzzleDir, c)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrPuzzleNotFound, name)
}

// ListPuzzles returns information about every readable puzzle file
func (m *Manager) ListPuzzles() ([]*service.PuzzleInfo, error) {
	entries, err := os.ReadDir(m.puzzleDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read puzzle directory: %w", err)
	}

	var puzzles []*service.PuzzleInfo
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() || !engine.IsPuzzleFile(entry.Name()) {
			continue
		}

		id := PuzzleID(entry.Name())
		if seen[id] {
			continue
		}

		p, err := m.LoadPuzzle(entry.Name())
		if err != nil {
			// Skip invalid puzzles
			continue
		}
		seen[id] = true

		puzzles = append(puzzles, &service.PuzzleInfo{
			Filename:    entry.Name(),
			PuzzleID:    id,
			Name:        p.Name,
			Description: p.Description,
			Format:      string(engine.FormatFromFilename(entry.Name())),
			Size:        p.Size,
			Batteries:   len(p.Batteries),
			TotalCharge: p.TotalCharge(),
		})
	}

	sort.Slice(puzzles, func(i, j int) bool {
		return puzzles[i].PuzzleID < puzzles[j].PuzzleID
	})
	return puzzles, nil
}

// GetDefault returns the default puzzle
func (m *Manager) GetDefault() *engine.Puzzle {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultPuzzle
}

// SetDefault sets the default puzzle by id
func (m *Manager) SetDefault(name string) error {
	p, err := m.LoadPuzzle(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultPuzzle = p
	return nil
}

// Reload drops a puzzle from the cache and reads it again from disk
func (m *Manager) Reload(name string) (*engine.Puzzle, error) {
	m.mu.Lock()
	delete(m.puzzles, PuzzleID(name))
	m.mu.Unlock()

	return m.LoadPuzzle(name)
}

// RefreshCache drops every cached puzzle and picks the default again
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.puzzles = make(map[string]*engine.Puzzle)
	m.mu.Unlock()

	return m.loadDefaultPuzzle()
}

// Count returns the number of cached puzzles
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.puzzles)
}

// loadDefaultPuzzle picks stromrallye0, then the first listed puzzle, then
// the built-in one.
func (m *Manager) loadDefaultPuzzle() error {
	p, err := m.LoadPuzzle(DefaultPuzzleID)
	if err != nil {
		puzzles, listErr := m.ListPuzzles()
		if listErr != nil || len(puzzles) == 0 {
			p = engine.DefaultPuzzle()
		} else if p, err = m.LoadPuzzle(puzzles[0].Filename); err != nil {
			p = engine.DefaultPuzzle()
		}
	}

	m.mu.Lock()
	m.defaultPuzzle = p
	m.mu.Unlock()
	return nil
}

// SavePuzzle writes a puzzle to disk. The extension of name picks the format;
// names without one are saved as JSON.
func (m *Manager) SavePuzzle(name string, p *engine.Puzzle) error {
	if err := engine.ValidatePuzzle(p); err != nil {
		return err
	}
	if name == "" || name != filepath.Base(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	filename := name
	if !engine.IsPuzzleFile(filename) {
		filename = name + ".json"
	}

	data, err := engine.EncodePuzzle(p, engine.FormatFromFilename(filename))
	if err != nil {
		return fmt.Errorf("failed to encode puzzle: %w", err)
	}

	if err := os.WriteFile(filepath.Join(m.puzzleDir, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write puzzle file: %w", err)
	}

	// Update cache
	m.mu.Lock()
	m.puzzles[PuzzleID(name)] = p.Clone()
	m.mu.Unlock()

	return nil
}
