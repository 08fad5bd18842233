package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
)

// App holds the application state and dependencies
type App struct {
	config   *Config
	ui       UIManager
	audio    *Audio
	ai       *AI
	prompts  *PromptManager
	shopify  *ShopifyClient
	uploader *MediaUploader
}

// NewApp initializes the application
func NewApp(config *Config, options ...AppOption) *App {
	cmdRunner := &DefaultCommandRunner{}

	prompts := NewPromptManager(config.ConfigDir)
	audio := NewAudio(cmdRunner, config.TempDir, config.Verbose)
	ui := NewUIManager(config.Verbose, config.Quiet)

	app := &App{
		config:  config,
		ui:      ui,
		audio:   audio,
		ai:      NewAIWithKey(config.OpenAIAPIKey, audio, prompts, config.RecipeModel, WhisperLimit, config.WhisperTimeout, config.FormatTimeout, config.Verbose),
		prompts: prompts,
	}

	// Apply any custom options
	for _, option := range options {
		option(app)
	}

	return app
}

// AppOption customizes App creation
type AppOption func(*App)

// WithUI sets a custom UI manager
func WithUI(ui UIManager) AppOption {
	return func(a *App) {
		a.ui = ui
	}
}

// WithAI sets a custom AI processor
func WithAI(ai *AI) AppOption {
	return func(a *App) {
		a.ai = ai
	}
}

// WithAudio sets a custom audio processor
func WithAudio(audio *Audio) AppOption {
	return func(a *App) {
		a.audio = audio
	}
}

// WithShopifyClient sets a custom Shopify client (tests point it at a fake server)
func WithShopifyClient(client *ShopifyClient) AppOption {
	return func(a *App) {
		a.shopify = client
	}
}

// Shopify returns the Shopify client, validating credentials on first use.
func (app *App) Shopify() (*ShopifyClient, error) {
	if app.shopify != nil {
		return app.shopify, nil
	}
	if err := app.config.RequireShopify(); err != nil {
		return nil, err
	}
	app.shopify = NewShopifyClient(app.config)
	return app.shopify, nil
}

// Uploader returns the staged media uploader.
func (app *App) Uploader() (*MediaUploader, error) {
	if app.uploader != nil {
		return app.uploader, nil
	}
	client, err := app.Shopify()
	if err != nil {
		return nil, err
	}
	app.uploader = NewMediaUploader(client, app.config.Verbose)
	return app.uploader, nil
}

// ExportProducts parses the price list workbook and writes the
// Shopify-importable CSV.
func (app *App) ExportProducts(xlsxPath, templatePath, outPath string) error {
	parser := NewProductParser(app.config.Verbose)
	rows, err := parser.ParseWorkbook(xlsxPath)
	if err != nil {
		return err
	}
	if err := WriteProductCSV(rows, templatePath, outPath); err != nil {
		return err
	}
	app.ui.Printf("Exported %d rows to %s\n", len(rows), outPath)
	return nil
}

// PublishRecipes runs the full publish pipeline over every recipe folder
// under root.
func (app *App) PublishRecipes(ctx context.Context, root string, skipTranscribe bool, width int) error {
	if !skipTranscribe {
		if err := app.config.RequireOpenAI(); err != nil {
			return err
		}
	}
	uploader, err := app.Uploader()
	if err != nil {
		return err
	}
	client, err := app.Shopify()
	if err != nil {
		return err
	}

	metaobject := NewMetaobjectManager(client, app.config.Verbose)
	images := NewImagePreparer(width, app.config.Verbose)
	publisher := NewRecipePublisher(app.ai, uploader, metaobject, images, skipTranscribe, app.config.Verbose)
	return publisher.PublishTree(ctx, root, app.ui)
}

// PublishBlog creates or refreshes a blog article for every published
// recipe metaobject.
func (app *App) PublishBlog(ctx context.Context, blogID string) error {
	client, err := app.Shopify()
	if err != nil {
		return err
	}
	metaobject := NewMetaobjectManager(client, app.config.Verbose)
	publisher := NewBlogPublisher(client, metaobject, app.config.Verbose)
	return publisher.PublishAll(ctx, blogID, app.ui)
}

// UpdateVariants reorders variants and/or syncs their metafields. The
// workbook path is optional; without it the metafield step has no source
// data and skips every variant.
func (app *App) UpdateVariants(ctx context.Context, what, xlsxPath string) error {
	client, err := app.Shopify()
	if err != nil {
		return err
	}

	var rows []ProductRow
	if xlsxPath != "" {
		parser := NewProductParser(app.config.Verbose)
		rows, err = parser.ParseWorkbook(xlsxPath)
		if err != nil {
			return err
		}
	}

	updater := NewVariantUpdater(client, rows, app.config.Verbose)
	return updater.Sync(ctx, what, app.ui)
}

// UploadYouTube uploads recipe videos and syncs watch URLs back to their
// metaobjects. secretsFile overrides the configured client secrets path.
func (app *App) UploadYouTube(ctx context.Context, root, secretsFile string) error {
	if secretsFile == "" {
		if err := app.config.RequireYouTube(); err != nil {
			return err
		}
	}
	client, err := app.Shopify()
	if err != nil {
		return err
	}

	metaobject := NewMetaobjectManager(client, app.config.Verbose)
	uploader := NewYouTubeUploader(app.config, metaobject, secretsFile)
	return uploader.UploadTree(ctx, root, app.ui)
}

// SyncCollection ensures a collection exists containing every shop product
// named in the price list workbook. Products already in the collection are
// left alone.
func (app *App) SyncCollection(ctx context.Context, title, xlsxPath string) error {
	client, err := app.Shopify()
	if err != nil {
		return err
	}

	parser := NewProductParser(app.config.Verbose)
	rows, err := parser.ParseWorkbook(xlsxPath)
	if err != nil {
		return err
	}
	wanted := make(map[string]bool, len(rows))
	for _, row := range rows {
		wanted[row.ProductTitle] = true
	}

	updater := NewVariantUpdater(client, nil, app.config.Verbose)
	products, err := updater.FetchProducts(ctx)
	if err != nil {
		return fmt.Errorf("fetching products: %w", err)
	}
	var productIDs []string
	for _, product := range products {
		if wanted[product.Title] {
			productIDs = append(productIDs, product.ID)
		}
	}
	if len(productIDs) == 0 {
		app.ui.Println("No shop products matched the workbook; nothing to sync.")
		return nil
	}

	collections := NewCollectionManager(client, app.config.Verbose)
	id, err := collections.UpdateOrCreate(ctx, title, productIDs)
	if err != nil {
		return err
	}
	app.ui.Printf("Collection %q synced (%d products, id=%s)\n", title, len(productIDs), id)
	return nil
}

// PrepareMedia resizes and renames the images of every recipe folder.
// With normalizeVideo the folder's video is also re-muxed to a faststart
// mp4 that Shopify and YouTube accept without a second pass.
func (app *App) PrepareMedia(ctx context.Context, root string, width int, normalizeVideo bool) error {
	if err := NewImagePreparer(width, app.config.Verbose).PrepareTree(root); err != nil {
		return err
	}
	if !normalizeVideo {
		return nil
	}

	folders, err := RecipeFolders(root)
	if err != nil {
		return err
	}
	for _, folder := range folders {
		videoPath, err := videoInFolder(folder)
		if err != nil {
			return err
		}
		if videoPath == "" {
			continue
		}
		if err := app.normalizeVideo(ctx, videoPath); err != nil {
			return err
		}
	}
	return nil
}

// normalizeVideo re-muxes videoPath into <name>.mp4, replacing the
// original. An mp4 source is re-muxed through a sibling file first so the
// input is never written while ffmpeg reads it.
func (app *App) normalizeVideo(ctx context.Context, videoPath string) error {
	dst := strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".mp4"
	out := dst
	if out == videoPath {
		out = strings.TrimSuffix(dst, ".mp4") + ".faststart.mp4"
	}

	if err := app.audio.NormalizeVideo(ctx, videoPath, out); err != nil {
		return fmt.Errorf("normalizing %s: %w", videoPath, err)
	}
	if out != dst {
		if err := os.Rename(out, dst); err != nil {
			return fmt.Errorf("replacing %s: %w", videoPath, err)
		}
	} else if err := os.Remove(videoPath); err != nil {
		return fmt.Errorf("removing %s: %w", videoPath, err)
	}
	app.ui.Verbose("Normalized %s\n", dst)
	return nil
}

// PreviewRecipe renders a published recipe in the terminal. The argument
// is a recipe folder (its base name identifies the handle) or the handle
// itself. With copyHTML the article HTML lands on the clipboard.
func (app *App) PreviewRecipe(ctx context.Context, folderOrHandle string, copyHTML bool) error {
	client, err := app.Shopify()
	if err != nil {
		return err
	}
	metaobject := NewMetaobjectManager(client, app.config.Verbose)

	handle := Sanitize(folderBase(folderOrHandle))
	recipe, err := metaobject.GetByHandle(ctx, handle)
	if err != nil {
		return err
	}
	if recipe == nil {
		return fmt.Errorf("no recipe found for handle %q", handle)
	}

	rendered, err := RenderMarkdown(RecipeMarkdown(recipe))
	if err != nil {
		return err
	}
	fmt.Print(rendered)

	if copyHTML {
		if err := clipboard.WriteAll(BlogHTML(recipe)); err != nil {
			return fmt.Errorf("copying html to clipboard: %w", err)
		}
		app.ui.Println("Article HTML copied to clipboard.")
	}
	return nil
}

// folderBase strips any directory part so both paths and bare handles work.
func folderBase(arg string) string {
	if info, err := os.Stat(arg); err == nil && info.IsDir() {
		return info.Name()
	}
	return arg
}
