package gateways

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/ochairo/tpa-symbols/internal/domain/entities"
)

// DefaultTimeout applies when no timeout is configured
const DefaultTimeout = 5 * time.Minute

// maxErrorBody caps how much of an error response is kept in the error message
const maxErrorBody = 4 * 1024

// HTTPTPAGateway implements TPAGateway using standard HTTP client
type HTTPTPAGateway struct {
	client    *http.Client
	apiKey    string
	userAgent string
	requestID string
}

// HTTPTPAGatewayConfig holds settings for the gateway
type HTTPTPAGatewayConfig struct {
	APIKey    string
	Timeout   time.Duration
	UserAgent string
	RequestID string // sent as X-Request-ID on every call
}

// NewHTTPTPAGateway creates a new TPA gateway with HTTP client
func NewHTTPTPAGateway(cfg HTTPTPAGatewayConfig) *HTTPTPAGateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "tpa-symbols/dev"
	}

	return &HTTPTPAGateway{
		client: &http.Client{
			Timeout: timeout,
		},
		apiKey:    cfg.APIKey,
		userAgent: userAgent,
		requestID: cfg.RequestID,
	}
}

func symbolsURL(project entities.Project) string {
	return fmt.Sprintf("%s/rest/api/v2/projects/%s/apps/%s/symbols/",
		project.Host, url.PathEscape(project.ProjectUUID), url.PathEscape(project.AppIdentifier))
}

func versionSymbolsURL(project entities.Project, build string) string {
	return fmt.Sprintf("%s/rest/api/v2/projects/%s/apps/%s/versions/%s/symbols/",
		project.Host, url.PathEscape(project.ProjectUUID), url.PathEscape(project.AppIdentifier), url.PathEscape(build))
}

func (g *HTTPTPAGateway) setHeaders(req *http.Request) {
	req.Header.Set("X-API-Key", g.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", g.userAgent)
	if g.requestID != "" {
		req.Header.Set("X-Request-ID", g.requestID)
	}
}

func statusError(op string, resp *http.Response) error {
	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return entities.Errorf(entities.KindNetwork, "", "%s: status %d (failed to read response)", op, resp.StatusCode)
	}
	return entities.Errorf(entities.KindNetwork, "", "%s: status %d: %s", op, resp.StatusCode, string(bodyBytes))
}

// ListSymbols retrieves the symbol archives already known to TPA
func (g *HTTPTPAGateway) ListSymbols(ctx context.Context, project entities.Project) (entities.RemoteInventory, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, symbolsURL(project), nil)
	if err != nil {
		return nil, entities.NewError(entities.KindNetwork, "failed to create request", "", err)
	}
	g.setHeaders(req)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, entities.NewError(entities.KindNetwork, "failed to list symbols", "", err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("failed to list symbols", resp)
	}

	var inventory entities.RemoteInventory
	if err := json.NewDecoder(resp.Body).Decode(&inventory); err != nil {
		return nil, entities.NewError(entities.KindNetwork, "failed to decode symbols response", "", err)
	}

	return inventory, nil
}

// UploadSymbols posts one archive as multipart form data with fields
// version_string and mapping
func (g *HTTPTPAGateway) UploadSymbols(ctx context.Context, project entities.Project, meta entities.ArchiveMetadata, filename string, content io.Reader) error {
	// Buffer the form so the request carries a Content-Length
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := writeUploadForm(mw, meta.Version, filename, content); err != nil {
		return entities.NewError(entities.KindIO, "failed to build upload form", filename, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, versionSymbolsURL(project, meta.Build), &buf)
	if err != nil {
		return entities.NewError(entities.KindNetwork, "failed to create request", "", err)
	}
	g.setHeaders(req)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := g.client.Do(req)
	if err != nil {
		return entities.NewError(entities.KindNetwork, "failed to upload symbols", filename, err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError("failed to upload symbols", resp)
	}

	return nil
}

func writeUploadForm(mw *multipart.Writer, versionString, filename string, content io.Reader) error {
	if err := mw.WriteField("version_string", versionString); err != nil {
		return fmt.Errorf("failed to write version_string: %w", err)
	}

	part, err := mw.CreateFormFile("mapping", filename)
	if err != nil {
		return fmt.Errorf("failed to create mapping part: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("failed to read content: %w", err)
	}

	return mw.Close()
}
