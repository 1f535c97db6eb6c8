package executor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/alecthomas/chroma/v2/quick"

	"github.com/grokify/apicligen/pkg/logging"
)

// ColorMode controls syntax highlighting of responses.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode validates a --color value.
func ParseColorMode(s string) (ColorMode, error) {
	switch mode := ColorMode(s); mode {
	case ColorAuto, ColorAlways, ColorNever:
		return mode, nil
	default:
		return "", fmt.Errorf("invalid color mode %q (want auto, always or never)", s)
	}
}

func (m ColorMode) enabled(w io.Writer) bool {
	switch m {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return logging.IsTerminal(w)
	}
}

// FormatJSON re-indents a JSON document with two spaces, keeping key order
// and number text. It reports false when body is not JSON.
func FormatJSON(body []byte) (string, bool) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(body), "", "  "); err != nil {
		return "", false
	}
	buf.WriteByte('\n')
	return buf.String(), true
}

var highlight = func(w io.Writer, formatted string) error {
	return quick.Highlight(w, formatted, "json", "terminal256", "monokai")
}
