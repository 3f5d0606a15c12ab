package recognition

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pet-reunite/internal/platform/httpclient"
	"pet-reunite/internal/ports/vision"
)

var (
	ErrNotConfigured = errors.New("recognition client not configured")
	ErrUpstream      = errors.New("recognition upstream error")
)

// Config del cliente de reconocimiento.
// BaseURL y APIKey normalmente vendrán de env vars en el servicio que lo instancie.
type Config struct {
	BaseURL string
	APIKey  string

	// Opcional: nombre del header donde se manda la API key.
	// Si está vacío, se usa "X-Api-Key".
	APIKeyHeader string

	Timeout time.Duration
}

// Client implementa vision.Recognizer contra el servicio de reconocimiento.
// Expone las dos operaciones del colaborador: compare-faces y detect-labels.
type Client struct {
	http         *httpclient.Client
	apiKey       string
	apiKeyHeader string
}

func NewClient(cfg Config) (*Client, error) {
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}

	hc, err := httpclient.NewWithBaseURL(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("recognition: %w", err)
	}

	return &Client{
		http:         hc,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: h,
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != "" && c.apiKey != ""
}

type compareFacesRequest struct {
	ImageA string `json:"image_a"` // base64
	ImageB string `json:"image_b"`
}

type compareFacesResponse struct {
	Matched    bool    `json:"matched"`
	Similarity float64 `json:"similarity"` // 0-100
}

// CompareFaces devuelve Matched=false cuando el servicio no detecta cara en
// alguna de las imágenes: outcome normal, no error.
func (c *Client) CompareFaces(ctx context.Context, imageA, imageB []byte) (vision.FaceMatch, error) {
	if !c.IsConfigured() {
		return vision.FaceMatch{}, ErrNotConfigured
	}

	req := compareFacesRequest{
		ImageA: base64.StdEncoding.EncodeToString(imageA),
		ImageB: base64.StdEncoding.EncodeToString(imageB),
	}

	var out compareFacesResponse
	if err := c.http.DoJSON(ctx, http.MethodPost, "/v1/faces/compare", c.headers(), req, &out); err != nil {
		return vision.FaceMatch{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	return vision.FaceMatch{
		Matched:    out.Matched,
		Similarity: out.Similarity,
	}, nil
}

type detectLabelsRequest struct {
	Image string `json:"image"` // base64
}

type detectLabelsResponse struct {
	Labels []struct {
		Name       string  `json:"name"`
		Confidence float64 `json:"confidence"` // 0-100
	} `json:"labels"`
}

func (c *Client) DetectLabels(ctx context.Context, image []byte) ([]vision.Label, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	req := detectLabelsRequest{
		Image: base64.StdEncoding.EncodeToString(image),
	}

	var out detectLabelsResponse
	if err := c.http.DoJSON(ctx, http.MethodPost, "/v1/labels/detect", c.headers(), req, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	labels := make([]vision.Label, 0, len(out.Labels))
	for _, l := range out.Labels {
		name := strings.ToLower(strings.TrimSpace(l.Name))
		if name == "" {
			continue
		}
		labels = append(labels, vision.Label{
			Name:       name,
			Confidence: l.Confidence,
		})
	}
	return labels, nil
}

func (c *Client) headers() map[string]string {
	return map[string]string{
		c.apiKeyHeader: c.apiKey,
	}
}
