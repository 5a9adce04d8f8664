// Package media forwards uploaded images to external object storage and
// returns URL descriptors. Nothing is kept on local disk.
package media

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kietute/safevoice/internal/config"
	"go.uber.org/zap"
)

// Image describes one stored file as returned by the provider.
type Image struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Format   string `json:"format"`
}

type Uploader interface {
	UploadBuffer(ctx context.Context, data []byte, filename string) (*Image, error)
	UploadBase64(ctx context.Context, dataURI, name string) (*Image, error)
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Format    string `json:"format"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CloudinaryClient implements Uploader against the Cloudinary upload API.
type CloudinaryClient struct {
	httpClient *resty.Client
	apiKey     string
	apiSecret  string
	folder     string
	logger     *zap.Logger
}

func NewCloudinaryClient(cfg config.CloudinaryConfig, logger *zap.Logger) *CloudinaryClient {
	baseURL := fmt.Sprintf("https://api.cloudinary.com/v1_1/%s", cfg.CloudName)
	return newClient(baseURL, cfg, logger)
}

func newClient(baseURL string, cfg config.CloudinaryConfig, logger *zap.Logger) *CloudinaryClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second)

	return &CloudinaryClient{
		httpClient: client,
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		folder:     cfg.Folder,
		logger:     logger,
	}
}

func (c *CloudinaryClient) UploadBuffer(ctx context.Context, data []byte, filename string) (*Image, error) {
	params := map[string]string{
		"timestamp": strconv.FormatInt(time.Now().Unix(), 10),
		"folder":    c.folder,
	}

	var result uploadResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetFileReader("file", filename, bytes.NewReader(data)).
		SetFormData(c.signed(params)).
		SetResult(&result).
		SetError(&result).
		Post("/image/upload")
	if err != nil {
		return nil, err
	}
	return c.toImage(resp.StatusCode(), &result)
}

func (c *CloudinaryClient) UploadBase64(ctx context.Context, dataURI, name string) (*Image, error) {
	params := map[string]string{
		"timestamp": strconv.FormatInt(time.Now().Unix(), 10),
		"folder":    c.folder,
	}
	if name != "" {
		params["public_id"] = fmt.Sprintf("%d_%s", time.Now().UnixMilli(), name)
	}

	form := c.signed(params)
	form["file"] = dataURI

	var result uploadResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&result).
		SetError(&result).
		Post("/image/upload")
	if err != nil {
		return nil, err
	}
	return c.toImage(resp.StatusCode(), &result)
}

func (c *CloudinaryClient) toImage(status int, result *uploadResponse) (*Image, error) {
	if status >= 300 || result.SecureURL == "" {
		c.logger.Error("cloudinary upload failed",
			zap.Int("status", status),
			zap.String("message", result.Error.Message),
		)
		return nil, fmt.Errorf("cloudinary upload failed: %s", result.Error.Message)
	}
	return &Image{
		URL:      result.SecureURL,
		PublicID: result.PublicID,
		Width:    result.Width,
		Height:   result.Height,
		Format:   result.Format,
	}, nil
}

// signed adds api_key and the request signature Cloudinary expects:
// SHA-1 over the alphabetically sorted params concatenated with the API
// secret.
func (c *CloudinaryClient) signed(params map[string]string) map[string]string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + c.apiSecret))

	form := make(map[string]string, len(params)+2)
	for k, v := range params {
		form[k] = v
	}
	form["api_key"] = c.apiKey
	form["signature"] = hex.EncodeToString(sum[:])
	return form
}
