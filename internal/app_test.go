package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// quietUI implements UIManager for tests, recording printed lines.
type quietUI struct {
	lines []string
}

func (u *quietUI) NewProgressBar(total int, description string) ProgressBar { return noopBar{} }

func (u *quietUI) Verbose(format string, args ...interface{}) {}

func (u *quietUI) Printf(format string, args ...interface{}) {
	u.lines = append(u.lines, fmt.Sprintf(format, args...))
}

func (u *quietUI) Println(args ...interface{}) {
	u.lines = append(u.lines, fmt.Sprintln(args...))
}

type noopBar struct{}

func (noopBar) Set(int)         {}
func (noopBar) Describe(string) {}
func (noopBar) Finish()         {}

func appTestConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		ShopName:           "dehy-garnishes",
		APIVersion:         "2024-04",
		ShopifyAccessToken: "shpat_test",
		OpenAIAPIKey:       "sk-test",
		RecipeModel:        "gpt-4o",
		ImageWidth:         40,
		WhisperTimeout:     time.Minute,
		FormatTimeout:      time.Minute,
		ConfigDir:          t.TempDir(),
		TempDir:            t.TempDir(),
	}
}

// recipeServer fakes the Shopify endpoints the publish pipeline talks to,
// keeping metaobjects by handle across requests.
type recipeServer struct {
	*httptest.Server
	created int
	objects map[string]string
	upserts []map[string]string
}

func newRecipeServer(t *testing.T) *recipeServer {
	rs := &recipeServer{objects: map[string]string{}}

	mux := http.NewServeMux()
	mux.HandleFunc("/graphql", func(w http.ResponseWriter, r *http.Request) {
		var req graphqlRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		switch {
		case strings.Contains(req.Query, "stagedUploadsCreate"):
			resp := fmt.Sprintf(`{"data":{"stagedUploadsCreate":{"stagedTargets":[{
				"url":%q,"resourceUrl":"https://cdn.example.com/staged/1","parameters":[]
			}],"userErrors":[]}}}`, rs.URL+"/upload")
			_, _ = w.Write([]byte(resp))
		case strings.Contains(req.Query, "fileCreate"):
			_, _ = w.Write([]byte(`{"data":{"fileCreate":{"files":[{"id":"gid://shopify/MediaImage/1"}],"userErrors":[]}}}`))
		case strings.Contains(req.Query, "metaobjectUpsert"):
			handle := req.Variables["handle"].(map[string]any)["handle"].(string)
			if _, ok := rs.objects[handle]; !ok {
				rs.created++
				rs.objects[handle] = fmt.Sprintf("gid://shopify/Metaobject/%d", rs.created)
			}

			fields := map[string]string{}
			metaobject := req.Variables["metaobject"].(map[string]any)
			for _, raw := range metaobject["fields"].([]any) {
				field := raw.(map[string]any)
				fields[field["key"].(string)] = field["value"].(string)
			}
			rs.upserts = append(rs.upserts, fields)

			resp := fmt.Sprintf(`{"data":{"metaobjectUpsert":{
				"metaobject":{"id":%q,"handle":%q,"fields":[]},
				"userErrors":[]}}}`, rs.objects[handle], handle)
			_, _ = w.Write([]byte(resp))
		default:
			t.Errorf("unexpected query: %s", req.Query)
		}
	})
	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	rs.Server = httptest.NewServer(mux)
	return rs
}

func TestAppPublishRecipesTwiceKeepsMetaobject(t *testing.T) {
	t.Parallel()

	server := newRecipeServer(t)
	defer server.Close()

	root := t.TempDir()
	folder := filepath.Join(root, "Old Fashioned")
	if err := os.MkdirAll(folder, 0755); err != nil {
		t.Fatal(err)
	}
	writePNG(t, filepath.Join(folder, "shot.png"), 100, 50)

	config := appTestConfig(t)
	client := NewShopifyClient(config, WithEndpoint(server.URL+"/graphql"), WithRetryPolicy(noRetry()))
	ui := &quietUI{}
	app := NewApp(config, WithShopifyClient(client), WithUI(ui))

	for run := 1; run <= 2; run++ {
		if err := app.PublishRecipes(context.Background(), root, true, 40); err != nil {
			t.Fatalf("PublishRecipes run %d: %v", run, err)
		}
	}

	if server.created != 1 {
		t.Errorf("created = %d, want 1 (re-publish must reuse the metaobject)", server.created)
	}
	if len(server.upserts) != 2 {
		t.Fatalf("upserts = %d, want 2", len(server.upserts))
	}
	for i, fields := range server.upserts {
		if fields["title"] != "Old Fashioned" || fields["image_1"] == "" {
			t.Errorf("upsert %d fields = %v", i, fields)
		}
	}
	for _, line := range ui.lines {
		if strings.Contains(line, "failed") {
			t.Errorf("unexpected failure reported: %s", line)
		}
	}
}

func TestAppPublishRecipesTranscribesWithInjectedAI(t *testing.T) {
	t.Parallel()

	server := newRecipeServer(t)
	defer server.Close()

	root := t.TempDir()
	folder := filepath.Join(root, "Negroni")
	if err := os.MkdirAll(folder, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(folder, "negroni.mp4"), []byte("video"), 0644); err != nil {
		t.Fatal(err)
	}

	config := appTestConfig(t)
	runner := &fakeRunner{duration: "9.0"}
	audio := NewAudio(runner, config.TempDir, false)
	ai := NewAI(&fakeOpenAI{transcript: "stir with ice", chats: []string{validRecipeJSON}},
		audio, NewPromptManager(""), "gpt-4o", WhisperLimit, time.Minute, time.Minute, false)

	client := NewShopifyClient(config, WithEndpoint(server.URL+"/graphql"), WithRetryPolicy(noRetry()))
	app := NewApp(config, WithShopifyClient(client), WithUI(&quietUI{}), WithAudio(audio), WithAI(ai))

	if err := app.PublishRecipes(context.Background(), root, false, 40); err != nil {
		t.Fatalf("PublishRecipes: %v", err)
	}

	if len(server.upserts) != 1 {
		t.Fatalf("upserts = %d, want 1", len(server.upserts))
	}
	fields := server.upserts[0]
	if fields["cocktail_history"] != "Old story." {
		t.Errorf("cocktail_history = %q", fields["cocktail_history"])
	}
	if !strings.Contains(fields["instructions"], `"listType":"ordered"`) {
		t.Errorf("instructions = %q", fields["instructions"])
	}
}

func TestPrepareMediaNormalizesVideos(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	movFolder := filepath.Join(root, "Old Fashioned")
	mp4Folder := filepath.Join(root, "Negroni")
	for _, dir := range []string{movFolder, mp4Folder} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(movFolder, "clip.mov"), []byte("video"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(mp4Folder, "negroni.mp4"), []byte("video"), 0644); err != nil {
		t.Fatal(err)
	}

	config := appTestConfig(t)
	runner := &fakeRunner{duration: "9.0"}
	app := NewApp(config, WithAudio(NewAudio(runner, config.TempDir, false)), WithUI(&quietUI{}))

	if err := app.PrepareMedia(context.Background(), root, 40, true); err != nil {
		t.Fatalf("PrepareMedia: %v", err)
	}

	if !FileExists(filepath.Join(movFolder, "clip.mp4")) {
		t.Error("clip.mp4 missing")
	}
	if FileExists(filepath.Join(movFolder, "clip.mov")) {
		t.Error("clip.mov should be removed after re-muxing")
	}
	if !FileExists(filepath.Join(mp4Folder, "negroni.mp4")) {
		t.Error("negroni.mp4 missing")
	}
	if FileExists(filepath.Join(mp4Folder, "negroni.faststart.mp4")) {
		t.Error("intermediate faststart file left behind")
	}

	faststart := false
	for _, args := range runner.args {
		for _, arg := range args {
			if arg == "+faststart" {
				faststart = true
			}
		}
	}
	if !faststart {
		t.Error("ffmpeg never invoked with +faststart")
	}
}

func TestPrepareMediaWithoutNormalizeLeavesVideosAlone(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	folder := filepath.Join(root, "Negroni")
	if err := os.MkdirAll(folder, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(folder, "negroni.mov"), []byte("video"), 0644); err != nil {
		t.Fatal(err)
	}

	config := appTestConfig(t)
	runner := &fakeRunner{duration: "9.0"}
	app := NewApp(config, WithAudio(NewAudio(runner, config.TempDir, false)), WithUI(&quietUI{}))

	if err := app.PrepareMedia(context.Background(), root, 40, false); err != nil {
		t.Fatalf("PrepareMedia: %v", err)
	}
	if len(runner.calls) != 0 {
		t.Errorf("ffmpeg invoked %d times, want 0", len(runner.calls))
	}
	if !FileExists(filepath.Join(folder, "negroni.mov")) {
		t.Error("negroni.mov should be untouched")
	}
}

func TestUploadYouTubeLeavesConfigUntouched(t *testing.T) {
	t.Parallel()

	config := appTestConfig(t)
	config.YouTubeClientSecrets = "configured_secrets.json"

	client := NewShopifyClient(config, WithRetryPolicy(noRetry()))
	app := NewApp(config, WithShopifyClient(client), WithUI(&quietUI{}))

	override := filepath.Join(t.TempDir(), "override.json")
	err := app.UploadYouTube(context.Background(), t.TempDir(), override)
	if err == nil {
		t.Fatal("expected error for missing override secrets file")
	}
	if !strings.Contains(err.Error(), "override.json") {
		t.Errorf("error should name the override file: %v", err)
	}
	if config.YouTubeClientSecrets != "configured_secrets.json" {
		t.Errorf("config mutated: %q", config.YouTubeClientSecrets)
	}
}
