package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRecipeGuideIncludesProductCatalog(t *testing.T) {
	t.Parallel()

	guide, err := NewPromptManager("").RecipeGuide()
	if err != nil {
		t.Fatalf("RecipeGuide: %v", err)
	}

	for _, want := range []string{"Lemon - Fine Cut", "Roses - Hand Cut", "DEHY", "cocktail_history"} {
		if !strings.Contains(guide, want) {
			t.Errorf("guide missing %q", want)
		}
	}
	if strings.Contains(guide, "{{.Products}}") {
		t.Error("template placeholder not expanded")
	}
}

func TestRecipeGuidePrefersConfigDirOverride(t *testing.T) {
	t.Parallel()

	configDir := t.TempDir()
	override := "Custom guide. Products: {{.Products}}"
	if err := os.WriteFile(filepath.Join(configDir, "prompt.txt"), []byte(override), 0644); err != nil {
		t.Fatal(err)
	}

	guide, err := NewPromptManager(configDir).RecipeGuide()
	if err != nil {
		t.Fatalf("RecipeGuide: %v", err)
	}
	if !strings.HasPrefix(guide, "Custom guide.") {
		t.Errorf("override not used: %q", guide)
	}
	if !strings.Contains(guide, "Apple - Fine Cut") {
		t.Errorf("products not injected into override: %q", guide)
	}
}

func TestEnsureDefaultPrompt(t *testing.T) {
	t.Parallel()

	configDir := filepath.Join(t.TempDir(), "garnish")
	if err := EnsureDefaultPrompt(configDir); err != nil {
		t.Fatalf("EnsureDefaultPrompt: %v", err)
	}
	if !FileExists(filepath.Join(configDir, "prompt.txt")) {
		t.Error("prompt.txt not created")
	}

	// Second call must not fail or overwrite
	if err := os.WriteFile(filepath.Join(configDir, "prompt.txt"), []byte("edited"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := EnsureDefaultPrompt(configDir); err != nil {
		t.Fatalf("EnsureDefaultPrompt (second): %v", err)
	}
	data, err := os.ReadFile(filepath.Join(configDir, "prompt.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "edited" {
		t.Error("existing prompt was overwritten")
	}
}
