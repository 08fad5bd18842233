package internal

import (
	"context"
	"embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// CommandRunner executes external commands
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// DefaultCommandRunner implements CommandRunner
type DefaultCommandRunner struct{}

func (r *DefaultCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// Config holds application settings. It is built once at process start and
// passed to component constructors; nothing mutates it afterwards.
type Config struct {
	// Shopify
	ShopName           string
	APIVersion         string
	ShopifyAccessToken string

	// OpenAI
	OpenAIAPIKey string
	RecipeModel  string

	// YouTube
	YouTubeClientSecrets string

	// Behavior
	ImageWidth     int
	WhisperTimeout time.Duration
	FormatTimeout  time.Duration
	Verbose        bool
	Quiet          bool

	// Fixed XDG paths (not configurable)
	ConfigDir string
	DataDir   string
	CacheDir  string
	TempDir   string
}

//go:embed config.toml
var defaultFS embed.FS

// WhisperLimit is the maximum file size accepted by OpenAI's Whisper API (25 MiB)
const WhisperLimit int64 = 25 << 20

// EnsureDefaultConfig checks if a config file exists in the XDG config
// directory and creates it from the embedded default if it doesn't exist
func EnsureDefaultConfig(configDir string) error {
	filePath := filepath.Join(configDir, "config.toml")
	if FileExists(filePath) {
		return nil
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	defaultContent, err := defaultFS.ReadFile("config.toml")
	if err != nil {
		return fmt.Errorf("reading embedded default configuration: %w", err)
	}

	if err := os.WriteFile(filePath, defaultContent, 0644); err != nil {
		return fmt.Errorf("writing default configuration: %w", err)
	}

	fmt.Printf("Created default configuration at %s\n", filePath)
	return nil
}

// InitConfig initializes Viper and loads configuration. configFile, when
// non-empty, overrides the XDG config search path.
func InitConfig(configFile string) *Config {
	// Local .env first, so a checkout can carry its own credentials
	_ = godotenv.Load()

	// XDG standard directories
	configDir := filepath.Join(xdg.ConfigHome, "garnish")
	dataDir := filepath.Join(xdg.DataHome, "garnish")
	cacheDir := filepath.Join(xdg.CacheHome, "garnish")
	tempDir := filepath.Join(cacheDir, "temp_chunks")

	v := viper.New()

	// Defaults for configurable settings
	v.SetDefault("shop_name", "dehy-garnishes")
	v.SetDefault("api_version", "2024-04")
	v.SetDefault("recipe_model", "gpt-4o")
	v.SetDefault("image_width", 720)
	v.SetDefault("whisper_timeout", 10*time.Minute)
	v.SetDefault("format_timeout", 2*time.Minute)
	v.SetDefault("verbose", false)
	v.SetDefault("quiet", false)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("GARNISH")
	v.AutomaticEnv()

	// Credentials come from the canonical env var names
	_ = v.BindEnv("shopify_access_token", "SHOPIFY_ACCESS_TOKEN")
	_ = v.BindEnv("shop_name", "SHOPIFY_SHOP_NAME")
	_ = v.BindEnv("api_version", "SHOPIFY_API_VERSION")
	_ = v.BindEnv("openai_api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("youtube_client_secrets", "YOUTUBE_CLIENT_SECRETS")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: Error reading config file: %v\n", err)
		}
	}

	config := &Config{
		ShopName:           v.GetString("shop_name"),
		APIVersion:         v.GetString("api_version"),
		ShopifyAccessToken: v.GetString("shopify_access_token"),

		OpenAIAPIKey: v.GetString("openai_api_key"),
		RecipeModel:  v.GetString("recipe_model"),

		YouTubeClientSecrets: v.GetString("youtube_client_secrets"),

		ImageWidth:     v.GetInt("image_width"),
		WhisperTimeout: v.GetDuration("whisper_timeout"),
		FormatTimeout:  v.GetDuration("format_timeout"),
		Verbose:        v.GetBool("verbose"),
		Quiet:          v.GetBool("quiet"),

		ConfigDir: configDir,
		DataDir:   dataDir,
		CacheDir:  cacheDir,
		TempDir:   tempDir,
	}

	if config.Verbose {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	return config
}

// RequireShopify fails with an AuthError when the Shopify token is absent.
// Called before any network round-trip.
func (c *Config) RequireShopify() error {
	if c.ShopifyAccessToken == "" {
		return &AuthError{Variable: "SHOPIFY_ACCESS_TOKEN"}
	}
	return nil
}

// RequireOpenAI fails with an AuthError when the OpenAI key is absent.
func (c *Config) RequireOpenAI() error {
	if c.OpenAIAPIKey == "" {
		return &AuthError{Variable: "OPENAI_API_KEY"}
	}
	return nil
}

// RequireYouTube fails with an AuthError when no client secrets file is set.
func (c *Config) RequireYouTube() error {
	if c.YouTubeClientSecrets == "" {
		return &AuthError{Variable: "YOUTUBE_CLIENT_SECRETS"}
	}
	return nil
}

// ShopifyEndpoint is the Admin GraphQL URL for the configured shop.
func (c *Config) ShopifyEndpoint() string {
	return fmt.Sprintf("https://%s.myshopify.com/admin/api/%s/graphql.json", c.ShopName, c.APIVersion)
}
