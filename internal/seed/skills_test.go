package seed

import "testing"

func TestCatalogParses(t *testing.T) {
	cats, err := Catalog()
	if err != nil {
		t.Fatalf("catalog failed to parse: %v", err)
	}
	if len(cats) == 0 {
		t.Fatal("catalog has no categories")
	}
	for _, c := range cats {
		if c.Name == "" {
			t.Error("category with empty name")
		}
		if len(c.Skills) == 0 {
			t.Errorf("category %q has no skills", c.Name)
		}
	}
}

func TestAllSkillsFlattens(t *testing.T) {
	skills, err := AllSkills()
	if err != nil {
		t.Fatalf("AllSkills: %v", err)
	}
	if len(skills) < 10 {
		t.Fatalf("expected a reasonably sized catalog, got %d skills", len(skills))
	}
	seen := make(map[string]bool)
	for _, s := range skills {
		if s == "" {
			t.Error("empty skill name in catalog")
		}
		if seen[s] {
			t.Errorf("duplicate skill in catalog: %q", s)
		}
		seen[s] = true
	}
}
