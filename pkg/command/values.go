package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

// typedValue is a pflag.Value that converts its input with a Kind at parse
// time, so bad values are rejected as usage errors.
type typedValue struct {
	kind  Kind
	value any
	raw   string
	set   bool
}

var _ pflag.Value = (*typedValue)(nil)

func (v *typedValue) String() string { return v.raw }

func (v *typedValue) Type() string { return string(v.kind) }

func (v *typedValue) Set(s string) error {
	parsed, err := v.kind.Convert(s)
	if err != nil {
		return err
	}
	v.value = parsed
	v.raw = s
	v.set = true
	return nil
}

// documentValue is a pflag.Value holding a JSON document. A value starting
// with "@" names a file to read the document from.
type documentValue struct {
	value any
	raw   string
	set   bool
}

var _ pflag.Value = (*documentValue)(nil)

func (v *documentValue) String() string { return v.raw }

func (v *documentValue) Type() string { return "json" }

func (v *documentValue) Set(s string) error {
	text := s
	if path, ok := strings.CutPrefix(s, "@"); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading body: %w", err)
		}
		text = string(data)
	}

	parsed, err := decodeDocument(text)
	if err != nil {
		return err
	}
	v.value = parsed
	v.raw = s
	v.set = true
	return nil
}

// decodeDocument decodes exactly one JSON value, keeping numbers exact.
func decodeDocument(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid JSON: unexpected data after document")
	}
	return out, nil
}
