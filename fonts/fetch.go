package fonts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const userAgent = "docshot/1.0 (compatible; Go)"

// maxFontBytes bounds a downloaded font file.
const maxFontBytes = 32 << 20

// DefaultTimeout is used for the remote fetch when Options.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// fetch downloads rawURL once with the given client and timeout.
func fetch(ctx context.Context, client *http.Client, rawURL string, timeout time.Duration) ([]byte, error) {
	if !isNetworkURL(rawURL) {
		return nil, fmt.Errorf("not an http(s) url: %q", rawURL)
	}
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d fetching %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFontBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if len(body) > maxFontBytes {
		return nil, fmt.Errorf("font at %s exceeds %d bytes", rawURL, maxFontBytes)
	}
	return body, nil
}

func isNetworkURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
