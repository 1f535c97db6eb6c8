package openapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pb33f/libopenapi/orderedmap"
	"gopkg.in/yaml.v3"
)

// normalized is the serializable view of a Document: references resolved,
// path-level parameters merged into operations, and paths and operations
// kept in document order.
type normalized struct {
	OpenAPI string                                                       `json:"openapi,omitempty"`
	Swagger string                                                       `json:"swagger,omitempty"`
	Info    Info                                                         `json:"info"`
	Servers []Server                                                     `json:"servers,omitempty"`
	Paths   *orderedmap.Map[string, *orderedmap.Map[string, *Operation]] `json:"paths"`
}

func (d *Document) normalize() normalized {
	paths := orderedmap.New[string, *orderedmap.Map[string, *Operation]]()
	for _, item := range d.Paths {
		ops := orderedmap.New[string, *Operation]()
		for _, op := range item.Operations {
			ops.Set(strings.ToLower(op.Method), op)
		}
		paths.Set(item.Path, ops)
	}
	return normalized{
		OpenAPI: d.OpenAPI,
		Swagger: d.Swagger,
		Info:    d.Info,
		Servers: d.Servers,
		Paths:   paths,
	}
}

// WriteJSON writes the normalized description as JSON.
func WriteJSON(w io.Writer, doc *Document) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(doc.normalize()); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// WriteYAML writes the normalized description as YAML. The document is
// encoded as JSON first so that map order carries over, then re-emitted in
// block style.
func WriteYAML(w io.Writer, doc *Document) error {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, doc); err != nil {
		return err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(buf.Bytes(), &node); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	blockStyle(&node)

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(&node); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return encoder.Close()
}

// blockStyle clears the flow and quoting styles picked up from JSON. The
// encoder still quotes strings that would otherwise read back as another type.
func blockStyle(node *yaml.Node) {
	node.Style = 0
	for _, child := range node.Content {
		blockStyle(child)
	}
}

// Write writes the normalized description in the given format. FormatAuto
// writes YAML.
func Write(w io.Writer, doc *Document, format Format) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, doc)
	case FormatYAML, FormatAuto:
		return WriteYAML(w, doc)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// ToString converts the normalized description to a string in the
// specified format.
func ToString(doc *Document, format Format) (string, error) {
	var buf bytes.Buffer
	if err := Write(&buf, doc, format); err != nil {
		return "", err
	}
	return buf.String(), nil
}
