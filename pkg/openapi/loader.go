package openapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// IsURL reports whether location should be fetched over HTTP rather than
// read from the filesystem.
func IsURL(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ReadLocation returns the raw bytes of a description stored at a file path
// or an http(s) URL, together with the format implied by its name or
// Content-Type.
func ReadLocation(ctx context.Context, location string) ([]byte, Format, error) {
	if location == "" {
		return nil, FormatAuto, fmt.Errorf("empty description location")
	}
	if !IsURL(location) {
		data, err := readFile(location)
		if err != nil {
			return nil, FormatAuto, err
		}
		return data, FormatFromName(location), nil
	}
	return fetch(ctx, http.DefaultClient, location)
}

// Load reads and parses the description at location.
func Load(ctx context.Context, location string) (*Document, error) {
	data, format, err := ReadLocation(ctx, location)
	if err != nil {
		return nil, err
	}
	doc, err := ParseFormat(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}
	return doc, nil
}

func fetch(ctx context.Context, client *http.Client, location string) ([]byte, Format, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, FormatAuto, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.5")

	resp, err := client.Do(req)
	if err != nil {
		return nil, FormatAuto, fmt.Errorf("failed to fetch description: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, FormatAuto, fmt.Errorf("failed to fetch description: %s returned %s", location, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, FormatAuto, fmt.Errorf("reading response: %w", err)
	}

	format := formatFromContentType(resp.Header.Get("Content-Type"))
	if format == FormatAuto {
		u, _ := url.Parse(location)
		format = FormatFromName(u.Path)
	}
	return data, format, nil
}

func formatFromContentType(contentType string) Format {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "json"):
		return FormatJSON
	case strings.Contains(ct, "yaml"), strings.Contains(ct, "yml"):
		return FormatYAML
	default:
		return FormatAuto
	}
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}
