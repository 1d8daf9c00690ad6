package categories

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults is the built-in category list, used when no categories.yaml is
// configured or the file is missing.
var Defaults = []Category{
	{Name: "Search"},
	{Name: "Development"},
	{Name: "Design"},
	{Name: "News"},
	{Name: "Entertainment"},
	{Name: "Education"},
	{Name: "Tools"},
	{Name: "Social"},
	{Name: "Other"},
}

// Loader handles loading and parsing of categories.yaml.
type Loader struct {
	filePath string
}

// NewLoader creates a new categories loader. An empty filePath means the
// built-in defaults are used.
func NewLoader(filePath string) *Loader {
	return &Loader{filePath: filePath}
}

// Load reads and parses the categories file. A missing or unconfigured file
// yields the defaults; a present but malformed file is an error.
func (l *Loader) Load() ([]Category, error) {
	if l.filePath == "" {
		return Defaults, nil
	}

	data, err := os.ReadFile(l.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return Defaults, nil
		}
		return nil, fmt.Errorf("failed to read categories file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse categories yaml: %w", err)
	}

	out := make([]Category, 0, len(config.Categories))
	seen := map[string]bool{}
	for _, cat := range config.Categories {
		name := strings.TrimSpace(cat.Name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		cat.Name = name
		out = append(out, cat)
	}
	if len(out) == 0 {
		return Defaults, nil
	}
	return out, nil
}
