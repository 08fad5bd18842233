package internal

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed prompt.txt
var defaultPromptTemplate string

// productCatalog lists the shop's products exactly as they appear on the
// storefront, so the model references them by their real names.
var productCatalog = []string{
	"Apple - Fine Cut",
	"Blood Orange - Fine Cut",
	"Chrysanthemum Yellow - Hand Cut",
	"Citrus Jar Set",
	"Dragonfruit Red - Fine Cut",
	"Dragonfruit White - Fine Cut",
	"Figs - Hand Cut",
	"Grapefruit - Fine Cut",
	"Kiwifruit - Fine Cut",
	"Lapel Pin",
	"Lavender - Hand Cut",
	"Lemon - Fine Cut",
	"Lime - Fine Cut",
	"Lotus Root - Fine Cut",
	"Mini Clothespins",
	"Orange - Fine Cut",
	"Pear - Fine Cut",
	"Persimmon - Fine Cut",
	"Pineapple Half - Fine Cut",
	"Pineapple Whole - Fine Cut",
	"Roses - Hand Cut",
	"Sphinx Hat",
	"Star Fruit - Fine Cut",
	"Strawberries - Fine Cut",
}

// promptData for template injection
type promptData struct {
	Products string
}

// PromptManager loads the recipe structuring prompt, preferring a
// prompt.txt in the config directory over the embedded default.
type PromptManager struct {
	configDir string
}

// NewPromptManager creates a new prompt manager
func NewPromptManager(configDir string) *PromptManager {
	return &PromptManager{configDir: configDir}
}

// EnsureDefaultPrompt writes the embedded prompt template into the config
// directory if no prompt.txt exists yet, so users have something to edit.
func EnsureDefaultPrompt(configDir string) error {
	filePath := filepath.Join(configDir, "prompt.txt")
	if FileExists(filePath) {
		return nil
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(filePath, []byte(defaultPromptTemplate), 0644); err != nil {
		return fmt.Errorf("writing default prompt: %w", err)
	}
	return nil
}

// RecipeGuide renders the system prompt used to turn a raw transcript into
// structured recipe JSON.
func (pm *PromptManager) RecipeGuide() (string, error) {
	content := defaultPromptTemplate

	if pm.configDir != "" {
		override := filepath.Join(pm.configDir, "prompt.txt")
		if FileExists(override) {
			data, err := os.ReadFile(override)
			if err != nil {
				return "", fmt.Errorf("reading prompt template: %w", err)
			}
			content = string(data)
		}
	}

	tmpl, err := template.New("prompt").Parse(content)
	if err != nil {
		return "", fmt.Errorf("parsing prompt template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, promptData{Products: strings.Join(productCatalog, ", ")}); err != nil {
		return "", fmt.Errorf("executing prompt template: %w", err)
	}

	return buf.String(), nil
}
