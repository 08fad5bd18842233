package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// newUploadServer serves both the GraphQL endpoint and a staged target.
func newUploadServer(t *testing.T, uploadStatus int) (*httptest.Server, *int) {
	t.Helper()

	uploads := 0
	mux := http.NewServeMux()
	var server *httptest.Server

	mux.HandleFunc("/graphql", func(w http.ResponseWriter, r *http.Request) {
		var req graphqlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding graphql request: %v", err)
		}

		switch {
		case strings.Contains(req.Query, "stagedUploadsCreate"):
			resp := fmt.Sprintf(`{"data":{"stagedUploadsCreate":{"stagedTargets":[{
				"url":%q,
				"resourceUrl":"https://cdn.example.com/staged/photo.jpg",
				"parameters":[{"name":"key","value":"staged/photo.jpg"},{"name":"policy","value":"signed"}]
			}],"userErrors":[]}}}`, server.URL+"/upload")
			_, _ = w.Write([]byte(resp))
		case strings.Contains(req.Query, "fileCreate"):
			files := req.Variables["files"].([]any)
			file := files[0].(map[string]any)
			if file["duplicateResolutionMode"] != "REPLACE" {
				t.Errorf("duplicateResolutionMode = %v, want REPLACE", file["duplicateResolutionMode"])
			}
			if file["originalSource"] != "https://cdn.example.com/staged/photo.jpg" {
				t.Errorf("originalSource = %v", file["originalSource"])
			}
			_, _ = w.Write([]byte(`{"data":{"fileCreate":{"files":[{"id":"gid://shopify/MediaImage/1"}],"userErrors":[]}}}`))
		default:
			t.Errorf("unexpected query: %s", req.Query)
		}
	})

	mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
		uploads++
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parsing multipart form: %v", err)
		}
		if got := r.FormValue("key"); got != "staged/photo.jpg" {
			t.Errorf("signed param key = %q", got)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("missing file part: %v", err)
		}
		w.WriteHeader(uploadStatus)
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &uploads
}

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing test file: %v", err)
	}
	return path
}

func TestUploadRunsAllThreePhases(t *testing.T) {
	t.Parallel()

	server, uploads := newUploadServer(t, http.StatusNoContent)
	client := NewShopifyClient(testConfig(), WithEndpoint(server.URL+"/graphql"), WithRetryPolicy(noRetry()))
	uploader := NewMediaUploader(client, false)

	path := writeTestFile(t, "photo.jpg", "jpeg bytes")
	fileID, resourceURL, err := uploader.Upload(context.Background(), path)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if fileID != "gid://shopify/MediaImage/1" {
		t.Errorf("fileID = %q", fileID)
	}
	if resourceURL != "https://cdn.example.com/staged/photo.jpg" {
		t.Errorf("resourceURL = %q", resourceURL)
	}
	if *uploads != 1 {
		t.Errorf("uploads = %d, want 1", *uploads)
	}
}

func TestUploadFailureNamesPhaseAndRetriesOnce(t *testing.T) {
	t.Parallel()

	server, uploads := newUploadServer(t, http.StatusForbidden)
	client := NewShopifyClient(testConfig(), WithEndpoint(server.URL+"/graphql"), WithRetryPolicy(noRetry()))
	uploader := NewMediaUploader(client, false)

	path := writeTestFile(t, "photo.jpg", "jpeg bytes")
	_, _, err := uploader.Upload(context.Background(), path)

	var uploadErr *UploadError
	if !errors.As(err, &uploadErr) {
		t.Fatalf("Upload() error = %v, want *UploadError", err)
	}
	if uploadErr.Phase != "upload" {
		t.Errorf("Phase = %q, want upload", uploadErr.Phase)
	}
	if uploadErr.File != "photo.jpg" {
		t.Errorf("File = %q, want photo.jpg", uploadErr.File)
	}
	if *uploads != 2 {
		t.Errorf("uploads = %d, want 2 (one retry)", *uploads)
	}
}

func TestUploadStagePhaseFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"stagedUploadsCreate":{"stagedTargets":[],"userErrors":[{"field":null,"message":"file too large"}]}}}`))
	}))
	defer server.Close()

	client := NewShopifyClient(testConfig(), WithEndpoint(server.URL), WithRetryPolicy(noRetry()))
	uploader := NewMediaUploader(client, false)

	path := writeTestFile(t, "clip.mp4", "mp4 bytes")
	_, _, err := uploader.Upload(context.Background(), path)

	var uploadErr *UploadError
	if !errors.As(err, &uploadErr) {
		t.Fatalf("Upload() error = %v, want *UploadError", err)
	}
	if uploadErr.Phase != "stage" {
		t.Errorf("Phase = %q, want stage", uploadErr.Phase)
	}
}
