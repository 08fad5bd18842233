package internal

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewYouTubeUploaderSecretsPrecedence(t *testing.T) {
	t.Parallel()

	config := &Config{ConfigDir: t.TempDir(), YouTubeClientSecrets: "configured.json"}

	if got := NewYouTubeUploader(config, nil, "").secretsFile; got != "configured.json" {
		t.Errorf("secretsFile = %q, want configured.json", got)
	}
	if got := NewYouTubeUploader(config, nil, "override.json").secretsFile; got != "override.json" {
		t.Errorf("secretsFile = %q, want override.json", got)
	}

	want := filepath.Join(config.ConfigDir, "youtube_token.json")
	if got := NewYouTubeUploader(config, nil, "").tokenFile; got != want {
		t.Errorf("tokenFile = %q, want %q", got, want)
	}
}

func TestVideoInFolderPicksFirstByName(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"b-take.mov", "a-take.mp4", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	video, err := videoInFolder(dir)
	if err != nil {
		t.Fatalf("videoInFolder: %v", err)
	}
	if video != filepath.Join(dir, "a-take.mp4") {
		t.Errorf("video = %q, want a-take.mp4", video)
	}
}
