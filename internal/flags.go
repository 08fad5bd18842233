package internal

import (
	"fmt"

	"github.com/spf13/cobra"
)

// validModels are the chat models accepted for recipe structuring.
var validModels = []string{"gpt-4o", "gpt-4o-mini", "o4-mini", "gpt-4.1-nano"}

// AddModelFlag adds the model override flag used by AI-backed commands.
func AddModelFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("model", "m", "", "OpenAI model for recipe structuring")
}

// ValidateModel checks that a model name is supported.
func ValidateModel(model string) error {
	for _, valid := range validModels {
		if model == valid {
			return nil
		}
	}
	return fmt.Errorf("unsupported model %q (valid: %v)", model, validModels)
}

// HandleModelFlag applies an explicit --model to the config after validation.
func HandleModelFlag(cmd *cobra.Command, config *Config) error {
	model, err := cmd.Flags().GetString("model")
	if err != nil {
		return fmt.Errorf("failed to get model flag: %w", err)
	}
	if model == "" {
		return ValidateModel(config.RecipeModel)
	}
	if err := ValidateModel(model); err != nil {
		return err
	}
	config.RecipeModel = model
	return nil
}

// HandleVerboseFlag processes the --verbose flag to update config
func HandleVerboseFlag(cmd *cobra.Command, config *Config) error {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}
	if verbose {
		config.Verbose = true
	}
	return nil
}

// HandleQuietFlag processes the --quiet flag to update config
func HandleQuietFlag(cmd *cobra.Command, config *Config) error {
	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if quiet {
		config.Quiet = true
		config.Verbose = false
	}
	return nil
}
