package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Batch is a file of replies to segment in one run. The file may also be a
// bare list of strings.
type Batch struct {
	Texts []string `yaml:"texts" json:"texts"`
}

// LoadTexts loads the replies in a batch file. YAML and JSON files are
// parsed as a Batch; any other file is a single reply.
func LoadTexts(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return ParseTexts(data, path)
}

// ParseTexts parses batch data based on the file extension.
func ParseTexts(data []byte, filename string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		var list []string
		if err := yaml.Unmarshal(data, &list); err == nil {
			return list, nil
		}
		var b Batch
		if err := yaml.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		return b.Texts, nil
	case ".json":
		var list []string
		if err := json.Unmarshal(data, &list); err == nil {
			return list, nil
		}
		var b Batch
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		return b.Texts, nil
	}
	return []string{string(data)}, nil
}

// ReadText reads a single reply from r, typically stdin.
func ReadText(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}
