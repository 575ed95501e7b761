package analysis

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed topics.yaml
var topicsYAML []byte

// Topic is one entry of the ERP topic catalog: a module name plus example
// task phrases used when suggesting follow-up questions.
type Topic struct {
	Name  string   `yaml:"name"`
	Tasks []string `yaml:"tasks"`
}

// Catalog is the static list of ERP modules the analyzer recognizes.
// Loaded once at startup; immutable thereafter.
type Catalog struct {
	Topics []Topic `yaml:"topics"`

	byName map[string]*Topic
}

// ParseCatalog parses a YAML topic catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse topic catalog: %w", err)
	}
	if len(c.Topics) == 0 {
		return nil, fmt.Errorf("topic catalog is empty")
	}
	c.byName = make(map[string]*Topic, len(c.Topics))
	for i := range c.Topics {
		c.byName[c.Topics[i].Name] = &c.Topics[i]
	}
	return &c, nil
}

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// DefaultCatalog returns the catalog embedded in the binary.
func DefaultCatalog() *Catalog {
	defaultCatalogOnce.Do(func() {
		c, err := ParseCatalog(topicsYAML)
		if err != nil {
			// The embedded catalog is validated by tests; a parse failure
			// here means a broken build.
			panic(fmt.Sprintf("embedded topic catalog invalid: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Tasks returns the example task phrases for a module, or nil if the module
// is not in the catalog.
func (c *Catalog) Tasks(module string) []string {
	if t, ok := c.byName[module]; ok {
		return t.Tasks
	}
	return nil
}

// ModuleNames returns the module names in catalog order.
func (c *Catalog) ModuleNames() []string {
	names := make([]string, len(c.Topics))
	for i, t := range c.Topics {
		names[i] = t.Name
	}
	return names
}
