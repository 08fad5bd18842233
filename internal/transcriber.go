package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// RecipeContent is the structured output of a transcribed recipe video.
type RecipeContent struct {
	CocktailHistory string   `json:"cocktail_history"`
	Intro           string   `json:"intro"`
	Ingredients     []string `json:"ingredients"`
	Instructions    []string `json:"instructions"`
}

// AI turns recipe videos into structured content: Whisper for the
// transcript, a chat model for the recipe JSON.
type AI struct {
	client         OpenAIClientInterface
	audio          *Audio
	prompts        *PromptManager
	model          string
	whisperLimit   int64
	whisperTimeout time.Duration
	formatTimeout  time.Duration
	verbose        bool
	apiKey         string
	clientOnce     sync.Once
}

// NewAI creates an AI processor with an explicit client (tests inject a fake here).
func NewAI(client OpenAIClientInterface, audio *Audio, prompts *PromptManager, model string, whisperLimit int64, whisperTimeout, formatTimeout time.Duration, verbose bool) *AI {
	return &AI{
		client:         client,
		audio:          audio,
		prompts:        prompts,
		model:          model,
		whisperLimit:   whisperLimit,
		whisperTimeout: whisperTimeout,
		formatTimeout:  formatTimeout,
		verbose:        verbose,
	}
}

// NewAIWithKey creates an AI processor with lazy client initialization
func NewAIWithKey(apiKey string, audio *Audio, prompts *PromptManager, model string, whisperLimit int64, whisperTimeout, formatTimeout time.Duration, verbose bool) *AI {
	return &AI{
		audio:          audio,
		prompts:        prompts,
		model:          model,
		whisperLimit:   whisperLimit,
		whisperTimeout: whisperTimeout,
		formatTimeout:  formatTimeout,
		verbose:        verbose,
		apiKey:         apiKey,
	}
}

// ensureClient initializes the OpenAI client if needed
func (ai *AI) ensureClient() error {
	if ai.client != nil {
		return nil
	}

	if ai.apiKey == "" {
		return &AuthError{Variable: "OPENAI_API_KEY"}
	}

	ai.clientOnce.Do(func() {
		ai.client = NewOpenAIClient(ai.apiKey)
	})

	return nil
}

// Transcribe transcribes an audio file using OpenAI's Whisper API,
// splitting it into chunks when it exceeds the API's file size limit.
func (ai *AI) Transcribe(ctx context.Context, audioFile string) (string, error) {
	if err := ai.ensureClient(); err != nil {
		return "", err
	}

	if ai.verbose {
		fmt.Printf("Transcribing audio file: %s\n", audioFile)
	}

	if ai.whisperTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ai.whisperTimeout)
		defer cancel()
	}

	info, err := os.Stat(audioFile)
	if err != nil {
		return "", fmt.Errorf("getting audio file info: %w", err)
	}

	numChunks := int(math.Ceil(float64(info.Size()) / float64(ai.whisperLimit)))

	chunks := []string{audioFile}
	if numChunks > 1 {
		chunks, err = ai.audio.Split(ctx, audioFile, numChunks)
		if err != nil {
			return "", fmt.Errorf("splitting audio: %w", err)
		}
		defer cleanupFiles(chunks...)
	}

	transcript, err := ai.processAudioChunks(ctx, chunks)
	if err != nil {
		return "", fmt.Errorf("transcribing audio: %w", err)
	}
	return transcript, nil
}

// processAudioChunks transcribes audio chunks sequentially
// NOTE: concurrent transcription occasionally returned a garbled chunk,
// sequential has been reliable
func (ai *AI) processAudioChunks(ctx context.Context, chunks []string) (string, error) {
	if ai.verbose && len(chunks) > 1 {
		fmt.Printf("Transcribing chunks (%d)\n", len(chunks))
	}

	var sb strings.Builder
	for i, chunkPath := range chunks {
		file, err := os.Open(chunkPath)
		if err != nil {
			return "", fmt.Errorf("opening chunk %s: %w", chunkPath, err)
		}

		text, err := ai.client.CreateTranscription(ctx, file)
		if closeErr := file.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close file %s: %v\n", chunkPath, closeErr)
		}
		if err != nil {
			return "", fmt.Errorf("transcribing chunk %d: %w", i+1, err)
		}

		sb.WriteString(strings.TrimSpace(text))
		if i < len(chunks)-1 {
			sb.WriteString(" ")
		}
	}

	return sb.String(), nil
}

// StructureTranscript asks the chat model to turn a raw transcript into
// recipe JSON and decodes the response.
func (ai *AI) StructureTranscript(ctx context.Context, transcript string) (*RecipeContent, error) {
	if err := ai.ensureClient(); err != nil {
		return nil, err
	}

	guide, err := ai.prompts.RecipeGuide()
	if err != nil {
		return nil, err
	}

	if ai.formatTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ai.formatTimeout)
		defer cancel()
	}

	raw, err := ai.client.CreateChatCompletion(ctx, ai.model, guide, transcript)
	if err != nil {
		return nil, fmt.Errorf("structuring transcript: %w", err)
	}

	return DecodeRecipeJSON(raw)
}

// ProcessVideo runs the full pipeline for one video: extract audio,
// transcribe, and structure into recipe JSON. A malformed model response
// is retried once before the error surfaces.
func (ai *AI) ProcessVideo(ctx context.Context, videoFile string) (string, *RecipeContent, error) {
	audioFile := strings.TrimSuffix(videoFile, filepath.Ext(videoFile)) + "-audio.wav"

	if err := ai.audio.ExtractAudio(ctx, videoFile, audioFile); err != nil {
		return "", nil, fmt.Errorf("extracting audio from %s: %w", videoFile, err)
	}
	defer cleanupFiles(audioFile)

	transcript, err := ai.Transcribe(ctx, audioFile)
	if err != nil {
		return "", nil, err
	}

	recipe, err := ai.StructureTranscript(ctx, transcript)
	var formatErr *FormatError
	if errors.As(err, &formatErr) {
		if ai.verbose {
			fmt.Printf("Retrying after malformed response: %v\n", formatErr)
		}
		recipe, err = ai.StructureTranscript(ctx, transcript)
	}
	if err != nil {
		return "", nil, err
	}

	return transcript, recipe, nil
}

// stripJSONFences removes Markdown code fences the model sometimes wraps
// around its JSON output.
func stripJSONFences(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		if idx := strings.Index(text, "\n"); idx >= 0 {
			text = text[idx+1:]
		} else {
			text = strings.TrimPrefix(text, "```")
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	return strings.TrimSpace(text)
}

func snippet(text string) string {
	const max = 120
	if len(text) > max {
		return text[:max] + "..."
	}
	return text
}

// DecodeRecipeJSON parses a model response into RecipeContent. Anything
// short of a JSON object with all four keys is a *FormatError; nothing
// partial ever comes back.
func DecodeRecipeJSON(raw string) (*RecipeContent, error) {
	text := stripJSONFences(raw)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil, &FormatError{Reason: "not a JSON object", Snippet: snippet(text)}
	}

	for _, key := range []string{"cocktail_history", "intro", "ingredients", "instructions"} {
		if _, ok := fields[key]; !ok {
			return nil, &FormatError{Reason: fmt.Sprintf("missing key %q", key), Snippet: snippet(text)}
		}
	}

	var recipe RecipeContent
	if err := json.Unmarshal([]byte(text), &recipe); err != nil {
		return nil, &FormatError{Reason: err.Error(), Snippet: snippet(text)}
	}
	if len(recipe.Ingredients) == 0 {
		return nil, &FormatError{Reason: "empty ingredients list", Snippet: snippet(text)}
	}
	if len(recipe.Instructions) == 0 {
		return nil, &FormatError{Reason: "empty instructions list", Snippet: snippet(text)}
	}
	return &recipe, nil
}
