// ABOUTME: HTTP client for the remote clip directory
// ABOUTME: Lists clips, resolves public URLs, uploads objects and downloads payloads
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/shermbites/shermbites-go/internal/clip"
	"github.com/shermbites/shermbites-go/internal/version"
)

// Config holds backend connection settings
type Config struct {
	BaseURL string
	APIKey  string
	Table   string
	Bucket  string
	Timeout time.Duration
}

// newClip is an insert row; the id column is assigned by the backend
type newClip struct {
	Label    string `json:"label"`
	Filename string `json:"filename"`
}

// Client talks to a Supabase-compatible REST and storage API
type Client struct {
	config Config
	client *http.Client
}

// NewClient creates a directory client
func NewClient(config Config) *Client {
	if config.Table == "" {
		config.Table = "clips"
	}
	if config.Bucket == "" {
		config.Bucket = "audio-clips"
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &Client{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// ListClips returns every clip ordered by label ascending
func (c *Client) ListClips(ctx context.Context) ([]clip.Clip, error) {
	endpoint := fmt.Sprintf("%s/rest/v1/%s?select=*&order=label.asc", c.config.BaseURL, url.PathEscape(c.config.Table))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build list request: %w", err)
	}
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list clips: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list clips failed: HTTP %d", resp.StatusCode)
	}

	var clips []clip.Clip
	if err := json.NewDecoder(resp.Body).Decode(&clips); err != nil {
		return nil, fmt.Errorf("failed to decode clip list: %w", err)
	}

	log.Debug("Listed clips", "count", len(clips))
	return clips, nil
}

// ResolvePlayableURL returns the public object URL for filename
func (c *Client) ResolvePlayableURL(filename string) (string, bool) {
	if filename == "" || c.config.BaseURL == "" {
		return "", false
	}
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s",
		c.config.BaseURL, url.PathEscape(c.config.Bucket), url.PathEscape(filename)), true
}

// UploadClip stores data as object name, then inserts the clip row
func (c *Client) UploadClip(ctx context.Context, label, name string, data []byte) (clip.Clip, error) {
	if err := clip.ValidateLabel(label); err != nil {
		return clip.Clip{}, err
	}
	if name == "" || len(data) == 0 {
		return clip.Clip{}, fmt.Errorf("upload needs a file name and data")
	}

	if err := c.uploadObject(ctx, name, data); err != nil {
		return clip.Clip{}, err
	}

	created, err := c.insertClip(ctx, label, name)
	if err != nil {
		return clip.Clip{}, err
	}

	log.Info("Uploaded clip", "id", created.ID, "label", created.Label, "filename", created.Filename)
	return created, nil
}

// Download fetches the payload at rawURL
func (c *Client) Download(ctx context.Context, rawURL string) ([]byte, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("empty download url")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build download request: %w", err)
	}
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download clip: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("clip download failed: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read clip body: %w", err)
	}

	log.Debug("Downloaded clip", "url", rawURL, "bytes", len(data))
	return data, nil
}

func (c *Client) uploadObject(ctx context.Context, name string, data []byte) error {
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s",
		c.config.BaseURL, url.PathEscape(c.config.Bucket), url.PathEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to build upload request: %w", err)
	}
	c.authorize(req)
	req.Header.Set("Content-Type", contentType(name, data))

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("object upload failed: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

func (c *Client) insertClip(ctx context.Context, label, filename string) (clip.Clip, error) {
	endpoint := fmt.Sprintf("%s/rest/v1/%s", c.config.BaseURL, url.PathEscape(c.config.Table))

	payload, err := json.Marshal([]newClip{{Label: label, Filename: filename}})
	if err != nil {
		return clip.Clip{}, fmt.Errorf("failed to encode clip row: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return clip.Clip{}, fmt.Errorf("failed to build insert request: %w", err)
	}
	c.authorize(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := c.client.Do(req)
	if err != nil {
		return clip.Clip{}, fmt.Errorf("failed to insert clip: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return clip.Clip{}, fmt.Errorf("clip insert failed: HTTP %d", resp.StatusCode)
	}

	var rows []clip.Clip
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return clip.Clip{}, fmt.Errorf("failed to decode inserted clip: %w", err)
	}
	if len(rows) == 0 {
		return clip.Clip{}, fmt.Errorf("clip insert returned no rows")
	}
	return rows[0], nil
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("User-Agent", version.UserAgent())
	if c.config.APIKey == "" {
		return
	}
	req.Header.Set("apikey", c.config.APIKey)
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
}

// audioTypes covers extensions missing from Go's builtin MIME table
var audioTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".m4a":  "audio/mp4",
}

// contentType guesses the object MIME type from the name, then the payload
func contentType(name string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(name))
	if t, ok := audioTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return http.DetectContentType(data)
}
