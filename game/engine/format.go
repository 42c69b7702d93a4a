package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a puzzle file encoding
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// PuzzleExtensions lists the file extensions recognized as puzzles
var PuzzleExtensions = []string{".txt", ".json", ".yaml", ".yml"}

// FormatFromFilename picks the format from the file extension. Unknown
// extensions are read as text.
func FormatFromFilename(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatText
	}
}

// IsPuzzleFile reports whether filename has a puzzle extension
func IsPuzzleFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, known := range PuzzleExtensions {
		if ext == known {
			return true
		}
	}
	return false
}

// DecodePuzzle decodes and validates a puzzle
func DecodePuzzle(data []byte, format Format) (*Puzzle, error) {
	switch format {
	case FormatText:
		return ParsePuzzle(bytes.NewReader(data))
	case FormatJSON, FormatYAML:
	default:
		return nil, fmt.Errorf("unknown puzzle format %q", format)
	}

	var p Puzzle
	var err error
	if format == FormatJSON {
		err = json.Unmarshal(data, &p)
	} else {
		err = yaml.Unmarshal(data, &p)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPuzzle, err)
	}
	if err := ValidatePuzzle(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// EncodePuzzle encodes p. The text format carries no name or description.
func EncodePuzzle(p *Puzzle, format Format) ([]byte, error) {
	switch format {
	case FormatText:
		var buf bytes.Buffer
		if err := WritePuzzle(&buf, p); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatJSON:
		return json.MarshalIndent(p, "", "  ")
	case FormatYAML:
		return yaml.Marshal(p)
	default:
		return nil, fmt.Errorf("unknown puzzle format %q", format)
	}
}
