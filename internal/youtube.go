package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	youtube "google.golang.org/api/youtube/v3"
)

// videoTags are attached to every uploaded recipe video.
var videoTags = []string{"cocktail", "recipe", "dehy", "dehygarnish"}

const youtubeCategoryPeopleAndBlogs = "22"

// YouTubeUploader uploads recipe videos and writes the resulting watch URL
// back into the recipe metaobject. Uploads are keyed by video title: a
// video whose title already exists on the channel is reused, not
// re-uploaded.
type YouTubeUploader struct {
	secretsFile string
	tokenFile   string
	metaobject  *MetaobjectManager
	verbose     bool
}

// NewYouTubeUploader creates an uploader. An empty secretsFile falls back
// to the configured client secrets path. The OAuth token is cached in the
// config directory after the first interactive authorization.
func NewYouTubeUploader(config *Config, metaobject *MetaobjectManager, secretsFile string) *YouTubeUploader {
	if secretsFile == "" {
		secretsFile = config.YouTubeClientSecrets
	}
	return &YouTubeUploader{
		secretsFile: secretsFile,
		tokenFile:   filepath.Join(config.ConfigDir, "youtube_token.json"),
		metaobject:  metaobject,
		verbose:     config.Verbose,
	}
}

func (y *YouTubeUploader) oauthConfig() (*oauth2.Config, error) {
	data, err := os.ReadFile(y.secretsFile)
	if err != nil {
		return nil, fmt.Errorf("reading client secrets %s: %w", y.secretsFile, err)
	}
	conf, err := google.ConfigFromJSON(data, youtube.YoutubeUploadScope, youtube.YoutubeReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parsing client secrets: %w", err)
	}
	return conf, nil
}

func (y *YouTubeUploader) cachedToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(y.tokenFile)
	if err != nil {
		return nil, err
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

func (y *YouTubeUploader) saveToken(token *oauth2.Token) {
	data, err := json.Marshal(token)
	if err == nil {
		err = os.WriteFile(y.tokenFile, data, 0600)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to cache oauth token: %v\n", err)
	}
}

// token returns a cached token or walks the user through the installed-app
// authorization flow on first use.
func (y *YouTubeUploader) token(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	if token, err := y.cachedToken(); err == nil {
		return token, nil
	}

	url := conf.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Open the following URL in your browser, then paste the authorization code:\n%s\n> ", url)

	var code string
	if _, err := fmt.Scan(&code); err != nil {
		return nil, fmt.Errorf("reading authorization code: %w", err)
	}

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}
	y.saveToken(token)
	return token, nil
}

// Service builds an authenticated YouTube API client.
func (y *YouTubeUploader) Service(ctx context.Context) (*youtube.Service, error) {
	conf, err := y.oauthConfig()
	if err != nil {
		return nil, err
	}
	token, err := y.token(ctx, conf)
	if err != nil {
		return nil, err
	}
	service, err := youtube.NewService(ctx, option.WithTokenSource(conf.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("creating youtube service: %w", err)
	}
	return service, nil
}

// findByTitle searches the channel's own videos for an exact
// (case-insensitive) title match and returns its video ID, or "".
func findByTitle(service *youtube.Service, title string) (string, error) {
	resp, err := service.Search.List([]string{"snippet"}).
		ForMine(true).
		Type("video").
		Q(title).
		MaxResults(50).
		Do()
	if err != nil {
		return "", fmt.Errorf("searching channel videos: %w", err)
	}
	for _, item := range resp.Items {
		if strings.EqualFold(strings.TrimSpace(item.Snippet.Title), strings.TrimSpace(title)) {
			return item.Id.VideoId, nil
		}
	}
	return "", nil
}

// videoInFolder returns the first video file in dir (by name), or "".
func videoInFolder(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading folder %s: %w", dir, err)
	}
	var videos []string
	for _, entry := range entries {
		if !entry.IsDir() && IsVideoFile(entry.Name()) {
			videos = append(videos, entry.Name())
		}
	}
	if len(videos) == 0 {
		return "", nil
	}
	sort.Strings(videos)
	return filepath.Join(dir, videos[0]), nil
}

// UploadFolder uploads the video in one recipe folder and syncs the watch
// URL into the recipe metaobject. Returns the video ID, or "" when the
// folder holds no video.
func (y *YouTubeUploader) UploadFolder(ctx context.Context, service *youtube.Service, folder string) (string, error) {
	folderName := filepath.Base(folder)
	title := TitleCase(folderName)
	handle := Sanitize(folderName)

	videoPath, err := videoInFolder(folder)
	if err != nil {
		return "", err
	}
	if videoPath == "" {
		if y.verbose {
			fmt.Printf("No video found in %s\n", folder)
		}
		return "", nil
	}

	// Description comes from the already-published recipe metaobject.
	var description string
	if recipe, err := y.metaobject.GetByHandle(ctx, handle); err == nil && recipe != nil {
		description = VideoDescription(recipe)
	}

	videoID, err := findByTitle(service, title)
	if err != nil {
		return "", err
	}

	if videoID == "" {
		file, err := os.Open(videoPath)
		if err != nil {
			return "", fmt.Errorf("opening video %s: %w", videoPath, err)
		}
		defer file.Close()

		video := &youtube.Video{
			Snippet: &youtube.VideoSnippet{
				Title:       title,
				Description: description,
				Tags:        videoTags,
				CategoryId:  youtubeCategoryPeopleAndBlogs,
			},
			Status: &youtube.VideoStatus{PrivacyStatus: "public"},
		}
		resp, err := service.Videos.Insert([]string{"snippet", "status"}, video).Media(file).Do()
		if err != nil {
			return "", fmt.Errorf("uploading %s: %w", videoPath, err)
		}
		videoID = resp.Id
		if y.verbose {
			fmt.Printf("Uploaded YouTube video: %s\n", videoID)
		}
	} else if y.verbose {
		fmt.Printf("YouTube video already exists: %s\n", videoID)
	}

	fields := []MetaobjectField{
		{Key: "title", Value: title},
		{Key: "video_url", Value: "https://www.youtube.com/watch?v=" + videoID},
	}
	if _, err := y.metaobject.Upsert(ctx, handle, fields, RecipeCapabilities()); err != nil {
		return "", fmt.Errorf("syncing video url for %s: %w", handle, err)
	}

	return videoID, nil
}

// UploadTree uploads every recipe folder under root. Per-folder failures
// are reported and the walk continues.
func (y *YouTubeUploader) UploadTree(ctx context.Context, root string, ui UIManager) error {
	folders, err := RecipeFolders(root)
	if err != nil {
		return err
	}

	service, err := y.Service(ctx)
	if err != nil {
		return err
	}

	bar := ui.NewProgressBar(len(folders), "Uploading videos")
	defer bar.Finish()

	for i, folder := range folders {
		bar.Set(i)
		if _, err := y.UploadFolder(ctx, service, folder); err != nil {
			ui.Printf("Upload failed for %s: %v\n", filepath.Base(folder), err)
		}
	}
	bar.Set(len(folders))
	return nil
}
