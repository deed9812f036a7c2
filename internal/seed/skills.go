package seed

import (
	_ "embed"
	"fmt"
	"math/rand"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed skills.yml
var skillsYAML []byte

// SkillCategory groups related skills in the built-in catalog.
type SkillCategory struct {
	Name   string   `yaml:"name" json:"name"`
	Skills []string `yaml:"skills" json:"skills"`
}

type skillCatalog struct {
	Categories []SkillCategory `yaml:"categories"`
}

var (
	catalogOnce sync.Once
	catalog     []SkillCategory
	catalogErr  error
)

// Catalog returns the built-in skill catalog, parsed once from the
// embedded YAML. The catalog feeds the seeder and the /api/skills
// endpoint.
func Catalog() ([]SkillCategory, error) {
	catalogOnce.Do(func() {
		var parsed skillCatalog
		if err := yaml.Unmarshal(skillsYAML, &parsed); err != nil {
			catalogErr = fmt.Errorf("parse embedded skill catalog: %w", err)
			return
		}
		if len(parsed.Categories) == 0 {
			catalogErr = fmt.Errorf("embedded skill catalog is empty")
			return
		}
		catalog = parsed.Categories
	})
	return catalog, catalogErr
}

// AllSkills flattens the catalog into a single list.
func AllSkills() ([]string, error) {
	cats, err := Catalog()
	if err != nil {
		return nil, err
	}
	var out []string
	for _, c := range cats {
		out = append(out, c.Skills...)
	}
	return out, nil
}

// randomSkill picks one catalog skill, or a fixed fallback if the
// catalog failed to parse (seeding should not die over demo data).
func randomSkill(r *rand.Rand) string {
	skills, err := AllSkills()
	if err != nil || len(skills) == 0 {
		return "Guitar"
	}
	return skills[r.Intn(len(skills))]
}
