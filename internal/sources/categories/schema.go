package categories

// Config represents the top-level structure of categories.yaml.
type Config struct {
	Categories []Category `yaml:"categories"`
}

// Category is one selectable category in the admin UI.
type Category struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Aliases     []string `yaml:"aliases,omitempty"`
}
