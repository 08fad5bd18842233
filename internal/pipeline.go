package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const maxRecipeImages = 3

// RecipePublisher runs the per-folder publish pipeline: transcribe the
// recipe video, upload the folder's images, and upsert the recipe
// metaobject. Each folder is independent; a failed stage aborts that
// recipe only.
type RecipePublisher struct {
	ai             *AI
	uploader       *MediaUploader
	metaobject     *MetaobjectManager
	images         *ImagePreparer
	skipTranscribe bool
	verbose        bool
}

// NewRecipePublisher wires the pipeline stages together.
func NewRecipePublisher(ai *AI, uploader *MediaUploader, metaobject *MetaobjectManager, images *ImagePreparer, skipTranscribe, verbose bool) *RecipePublisher {
	return &RecipePublisher{
		ai:             ai,
		uploader:       uploader,
		metaobject:     metaobject,
		images:         images,
		skipTranscribe: skipTranscribe,
		verbose:        verbose,
	}
}

// imagesInFolder lists the folder's image files sorted by name.
func imagesInFolder(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading folder %s: %w", dir, err)
	}
	var images []string
	for _, entry := range entries {
		if !entry.IsDir() && IsImageFile(entry.Name()) {
			images = append(images, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(images)
	return images, nil
}

// contentFields turns structured recipe content into metaobject fields.
func contentFields(recipe *RecipeContent) ([]MetaobjectField, error) {
	ingredients, err := BuildRichTextList(recipe.Ingredients, "unordered")
	if err != nil {
		return nil, err
	}
	instructions, err := BuildRichTextList(recipe.Instructions, "ordered")
	if err != nil {
		return nil, err
	}
	return []MetaobjectField{
		{Key: "cocktail_history", Value: recipe.CocktailHistory},
		{Key: "intro", Value: recipe.Intro},
		{Key: "ingredients", Value: ingredients},
		{Key: "instructions", Value: instructions},
	}, nil
}

// PublishFolder publishes one recipe folder and returns the metaobject ID.
// The upsert happens only once every stage has produced its fields, so a
// failed transcription never leaves a half-written recipe behind.
func (p *RecipePublisher) PublishFolder(ctx context.Context, folder string) (string, error) {
	folderName := filepath.Base(folder)
	handle := Sanitize(folderName)
	title := TitleCase(folderName)

	if p.images != nil {
		if err := p.images.PrepareFolder(folder); err != nil {
			return "", fmt.Errorf("preparing images: %w", err)
		}
	}

	fields := []MetaobjectField{{Key: "title", Value: title}}

	if !p.skipTranscribe {
		videoPath, err := videoInFolder(folder)
		if err != nil {
			return "", err
		}
		if videoPath == "" {
			if p.verbose {
				fmt.Printf("No video found in %s, skipping transcription\n", folder)
			}
		} else {
			_, recipe, err := p.ai.ProcessVideo(ctx, videoPath)
			if err != nil {
				return "", fmt.Errorf("transcribing %s: %w", folderName, err)
			}
			recipeFields, err := contentFields(recipe)
			if err != nil {
				return "", err
			}
			fields = append(fields, recipeFields...)
		}
	}

	images, err := imagesInFolder(folder)
	if err != nil {
		return "", err
	}
	uploaded := 0
	for _, imagePath := range images {
		if uploaded == maxRecipeImages {
			break
		}
		fileID, _, err := p.uploader.Upload(ctx, imagePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: skipping image %s: %v\n", imagePath, err)
			continue
		}
		uploaded++
		fields = append(fields, MetaobjectField{Key: fmt.Sprintf("image_%d", uploaded), Value: fileID})
	}

	id, err := p.metaobject.Upsert(ctx, handle, fields, RecipeCapabilities())
	if err != nil {
		return "", fmt.Errorf("upserting recipe %s: %w", handle, err)
	}
	return id, nil
}

// PublishTree runs the pipeline over every recipe folder under root.
// Per-recipe failures are reported and the batch continues.
func (p *RecipePublisher) PublishTree(ctx context.Context, root string, ui UIManager) error {
	folders, err := RecipeFolders(root)
	if err != nil {
		return err
	}

	bar := ui.NewProgressBar(len(folders), "Publishing recipes")
	defer bar.Finish()

	for i, folder := range folders {
		bar.Set(i)
		bar.Describe(fmt.Sprintf("Publishing %s", filepath.Base(folder)))

		id, err := p.PublishFolder(ctx, folder)
		if err != nil {
			ui.Printf("Publish failed for %s: %v\n", filepath.Base(folder), err)
			continue
		}
		ui.Verbose("Upserted recipe metaobject: %s (id=%s)\n", TitleCase(filepath.Base(folder)), id)
	}
	bar.Set(len(folders))
	return nil
}
