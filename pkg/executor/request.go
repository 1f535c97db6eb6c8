package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"slices"
	"strings"

	"github.com/oapi-codegen/runtime"

	"github.com/grokify/apicligen/pkg/command"
)

var placeholderPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// NewRequest resolves inv into an HTTP request against the executor's base
// URL. Values named by a path placeholder are substituted into the path,
// the rest become query parameters, and the body is sent as JSON.
func (e *Executor) NewRequest(ctx context.Context, inv *command.Invocation) (*http.Request, error) {
	values := inv.Values()

	path, used, err := ExpandPath(inv.PathTemplate, values)
	if err != nil {
		return nil, err
	}

	query, err := EncodeQuery(values, used)
	if err != nil {
		return nil, err
	}

	target := strings.TrimRight(e.baseURL, "/") + path
	if query != "" {
		target += "?" + query
	}

	var body io.Reader
	if inv.Body != nil {
		data, err := json.Marshal(inv.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, inv.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// ExpandPath substitutes every {name} placeholder in template with the
// simple-style encoding of values[name]. It returns the substituted path
// and the set of names it consumed.
func ExpandPath(template string, values map[string]any) (string, map[string]bool, error) {
	used := make(map[string]bool)
	var missing []string
	var styleErr error

	path := placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := match[1 : len(match)-1]
		v, ok := values[name]
		if !ok {
			missing = append(missing, name)
			return match
		}
		styled, err := runtime.StyleParamWithLocation("simple", false, name, runtime.ParamLocationPath, v)
		if err != nil {
			if styleErr == nil {
				styleErr = fmt.Errorf("path parameter %s: %w", name, err)
			}
			return match
		}
		used[name] = true
		return styled
	})

	if styleErr != nil {
		return "", nil, styleErr
	}
	if len(missing) > 0 {
		return "", nil, fmt.Errorf("no value for path parameter(s): %s", strings.Join(missing, ", "))
	}
	return path, used, nil
}

// EncodeQuery form-encodes every value not in skip, in name order.
func EncodeQuery(values map[string]any, skip map[string]bool) (string, error) {
	names := make([]string, 0, len(values))
	for name := range values {
		if !skip[name] {
			names = append(names, name)
		}
	}
	slices.Sort(names)

	query := url.Values{}
	for _, name := range names {
		styled, err := runtime.StyleParamWithLocation("form", true, name, runtime.ParamLocationQuery, values[name])
		if err != nil {
			return "", fmt.Errorf("query parameter %s: %w", name, err)
		}
		parsed, err := url.ParseQuery(styled)
		if err != nil {
			return "", fmt.Errorf("query parameter %s: %w", name, err)
		}
		for k, vs := range parsed {
			query[k] = append(query[k], vs...)
		}
	}
	return query.Encode(), nil
}
