package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrNoEndpoint indicates a client without a Gotenberg URL.
var ErrNoEndpoint = errors.New("report: gotenberg endpoint required")

// Client wraps interactions with the Gotenberg API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a new client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithHTTPClient swaps the transport, mostly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// PaperOptions are Chromium print settings. Sizes are in inches.
type PaperOptions struct {
	Width        float64
	Height       float64
	MarginTop    float64
	MarginBottom float64
	MarginLeft   float64
	MarginRight  float64
	Landscape    bool
	WaitDelay    time.Duration
}

func (o PaperOptions) fields() [][2]string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
	var out [][2]string
	if o.Width > 0 && o.Height > 0 {
		out = append(out, [2]string{"paperWidth", f(o.Width)}, [2]string{"paperHeight", f(o.Height)})
	}
	out = append(out,
		[2]string{"marginTop", f(o.MarginTop)},
		[2]string{"marginBottom", f(o.MarginBottom)},
		[2]string{"marginLeft", f(o.MarginLeft)},
		[2]string{"marginRight", f(o.MarginRight)},
		[2]string{"preferCssPageSize", "true"},
	)
	if o.Landscape {
		out = append(out, [2]string{"landscape", "true"})
	}
	if o.WaitDelay > 0 {
		out = append(out, [2]string{"waitDelay", fmt.Sprintf("%dms", o.WaitDelay.Milliseconds())})
	}
	return out
}

// Ping checks if the remote Gotenberg service is available.
func (c *Client) Ping(ctx context.Context) error {
	if c.baseURL == "" {
		return ErrNoEndpoint
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/health", c.baseURL), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("gotenberg returned status %d", resp.StatusCode)
	}
	return nil
}

// RenderHTML converts raw HTML into a PDF document using Gotenberg.
func (c *Client) RenderHTML(ctx context.Context, html string, opts PaperOptions) ([]byte, error) {
	if c == nil || c.baseURL == "" {
		return nil, ErrNoEndpoint
	}
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(part, html); err != nil {
		return nil, err
	}
	for _, kv := range opts.fields() {
		if err := writer.WriteField(kv[0], kv[1]); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/forms/chromium/convert/html", c.baseURL), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("gotenberg response %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return io.ReadAll(resp.Body)
}
