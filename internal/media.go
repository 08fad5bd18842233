package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const stagedUploadTimeout = 10 * time.Minute

// MediaUploader performs Shopify's three-phase staged upload: request a
// signed target, push the bytes, then bind the uploaded resource to a file
// object. Re-running is safe because finalize resolves filename duplicates
// by replacement.
type MediaUploader struct {
	client     *ShopifyClient
	httpClient *http.Client
	verbose    bool
}

// NewMediaUploader creates an uploader on top of the GraphQL client.
func NewMediaUploader(client *ShopifyClient, verbose bool) *MediaUploader {
	return &MediaUploader{
		client:     client,
		httpClient: &http.Client{Timeout: stagedUploadTimeout},
		verbose:    verbose,
	}
}

// stagedTarget is the signed upload destination Shopify hands back.
type stagedTarget struct {
	URL         string `json:"url"`
	ResourceURL string `json:"resourceUrl"`
	Parameters  []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"parameters"`
}

const stagedUploadsCreateMutation = `
mutation stagedUploadsCreate($input: [StagedUploadInput!]!) {
  stagedUploadsCreate(input: $input) {
    stagedTargets {
      url
      resourceUrl
      parameters { name value }
    }
    userErrors { field message }
  }
}`

const fileCreateMutation = `
mutation fileCreate($files: [FileCreateInput!]!) {
  fileCreate(files: $files) {
    files { id alt createdAt }
    userErrors { field message }
  }
}`

// Upload runs the full staged upload for one file and returns the durable
// file GID and the staged resource URL. Any phase failing yields an
// *UploadError naming the phase; a single retry is worthwhile because
// staged targets are cheap and finalize is idempotent per filename.
func (u *MediaUploader) Upload(ctx context.Context, filePath string) (string, string, error) {
	fileID, resourceURL, err := u.uploadOnce(ctx, filePath)
	if err == nil {
		return fileID, resourceURL, nil
	}
	if u.verbose {
		fmt.Printf("Upload failed for %s, retrying once: %v\n", filePath, err)
	}
	return u.uploadOnce(ctx, filePath)
}

func (u *MediaUploader) uploadOnce(ctx context.Context, filePath string) (string, string, error) {
	fileName := filepath.Base(filePath)

	target, err := u.createStagedUpload(ctx, filePath)
	if err != nil {
		return "", "", &UploadError{Phase: "stage", File: fileName, Err: err}
	}

	if err := u.uploadToStagedTarget(ctx, target, filePath); err != nil {
		return "", "", &UploadError{Phase: "upload", File: fileName, Err: err}
	}

	fileID, err := u.finalizeUpload(ctx, target.ResourceURL, fileName)
	if err != nil {
		return "", "", &UploadError{Phase: "finalize", File: fileName, Err: err}
	}

	if u.verbose {
		fmt.Printf("Uploaded %s (id=%s)\n", filePath, fileID)
	}
	return fileID, target.ResourceURL, nil
}

func (u *MediaUploader) createStagedUpload(ctx context.Context, filePath string) (*stagedTarget, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}

	mimeType := ContentTypeFor(filePath)
	resource := "IMAGE"
	if mimeType == "video/mp4" {
		resource = "VIDEO"
	}

	variables := map[string]any{
		"input": []map[string]any{{
			"resource":   resource,
			"filename":   filepath.Base(filePath),
			"mimeType":   mimeType,
			"httpMethod": "POST",
			"fileSize":   fmt.Sprintf("%d", info.Size()),
		}},
	}

	data, err := u.client.Query(ctx, stagedUploadsCreateMutation, variables)
	if err != nil {
		return nil, err
	}

	var result struct {
		StagedUploadsCreate struct {
			StagedTargets []stagedTarget `json:"stagedTargets"`
			UserErrors    []UserError    `json:"userErrors"`
		} `json:"stagedUploadsCreate"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decoding staged upload response: %w", err)
	}
	if err := checkUserErrors("stagedUploadsCreate", result.StagedUploadsCreate.UserErrors); err != nil {
		return nil, err
	}
	if len(result.StagedUploadsCreate.StagedTargets) == 0 {
		return nil, fmt.Errorf("no staged target returned")
	}
	return &result.StagedUploadsCreate.StagedTargets[0], nil
}

func (u *MediaUploader) uploadToStagedTarget(ctx context.Context, target *stagedTarget, filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	// Signed parameters must precede the file part.
	for _, param := range target.Parameters {
		if err := writer.WriteField(param.Name, param.Value); err != nil {
			return fmt.Errorf("writing form field %s: %w", param.Name, err)
		}
	}

	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("copying file bytes: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.URL, &body)
	if err != nil {
		return fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("posting to staged target: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("staged target returned http %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}
	return nil
}

func (u *MediaUploader) finalizeUpload(ctx context.Context, resourceURL, fileName string) (string, error) {
	contentType := "IMAGE"
	if ContentTypeFor(fileName) == "video/mp4" {
		contentType = "VIDEO"
	}

	variables := map[string]any{
		"files": []map[string]any{{
			"filename":                fileName,
			"alt":                     fileName,
			"originalSource":          resourceURL,
			"contentType":             contentType,
			"duplicateResolutionMode": "REPLACE",
		}},
	}

	data, err := u.client.Query(ctx, fileCreateMutation, variables)
	if err != nil {
		return "", err
	}

	var result struct {
		FileCreate struct {
			Files []struct {
				ID string `json:"id"`
			} `json:"files"`
			UserErrors []UserError `json:"userErrors"`
		} `json:"fileCreate"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("decoding fileCreate response: %w", err)
	}
	if err := checkUserErrors("fileCreate", result.FileCreate.UserErrors); err != nil {
		return "", err
	}
	if len(result.FileCreate.Files) == 0 {
		return "", fmt.Errorf("fileCreate returned no files")
	}
	return result.FileCreate.Files[0].ID, nil
}
