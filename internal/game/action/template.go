// Package action provides static, versioned action template definitions
// loaded from YAML content files, and the registry the resolver consults.
package action

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/calebdrake/fifthstreet/internal/game/skill"
)

// Template defines an invokable action: its energy cost, difficulty
// threshold, suit mapping, and cost-reducing skills.
//
// Templates are immutable once registered; editing content produces a new
// Version rather than retroactively changing historical results.
type Template struct {
	ID          string         `yaml:"id"`
	Version     int            `yaml:"version"`
	Name        string         `yaml:"name"`
	Category    skill.Category `yaml:"category"`
	// SecondaryCategory optionally adds a second suit bonus. Empty means none.
	SecondaryCategory skill.Category      `yaml:"secondary_category"`
	EnergyCost        int                 `yaml:"energy_cost"`
	Difficulty        float64             `yaml:"difficulty"`
	CostReducers      []skill.CostReducer `yaml:"cost_reducers"`
}

// HasSecondary reports whether the template defines a secondary suit category.
func (t *Template) HasSecondary() bool {
	return t.SecondaryCategory != ""
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, Version >= 1,
// Category is valid, any secondary category is valid and distinct from the
// primary, EnergyCost >= 1, Difficulty > 0, and every cost reducer names a
// skill with PerLevel >= 0 and Cap in [0, 0.5].
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("action template: id must not be empty")
	}
	if t.Version < 1 {
		return fmt.Errorf("action template %q: version must be >= 1", t.ID)
	}
	if t.Name == "" {
		return fmt.Errorf("action template %q: name must not be empty", t.ID)
	}
	if !t.Category.Valid() {
		return fmt.Errorf("action template %q: category %q is not a suit category", t.ID, t.Category)
	}
	if t.SecondaryCategory != "" {
		if !t.SecondaryCategory.Valid() {
			return fmt.Errorf("action template %q: secondary category %q is not a suit category", t.ID, t.SecondaryCategory)
		}
		if t.SecondaryCategory == t.Category {
			return fmt.Errorf("action template %q: secondary category must differ from primary", t.ID)
		}
	}
	if t.EnergyCost < 1 {
		return fmt.Errorf("action template %q: energy_cost must be >= 1", t.ID)
	}
	if t.Difficulty <= 0 {
		return fmt.Errorf("action template %q: difficulty must be > 0", t.ID)
	}
	for i, r := range t.CostReducers {
		if r.Skill == "" {
			return fmt.Errorf("action template %q: cost_reducers[%d]: skill must not be empty", t.ID, i)
		}
		if r.PerLevel < 0 {
			return fmt.Errorf("action template %q: cost_reducers[%d]: per_level must be >= 0", t.ID, i)
		}
		if r.Cap < 0 || r.Cap > skill.MaxTotalCostReduction {
			return fmt.Errorf("action template %q: cost_reducers[%d]: cap must be in [0, %v]", t.ID, i, skill.MaxTotalCostReduction)
		}
	}
	return nil
}

// LoadTemplateFromBytes parses a single action template from raw YAML bytes.
//
// Postcondition: Returns a validated *Template, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates loads every .yaml/.yml file under dir as an action template.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all parsed templates, or the first error encountered.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading template directory %q: %w", dir, err)
	}

	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading template file %q: %w", name, err)
		}
		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("template file %q: %w", name, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}
