package openapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

// ErrNoPaths is returned when a description has no usable paths mapping.
var ErrNoPaths = errors.New("missing or invalid 'paths' section")

// Format represents the encoding of a description.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatAuto Format = ""
)

// FormatFromName guesses the format from a file name or URL path.
func FormatFromName(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatAuto
	}
}

// ReadFile reads a description from a file.
// Format is determined by file extension (.json or .yaml/.yml).
func ReadFile(path string) (*Document, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return ParseFormat(data, FormatFromName(path))
}

// FromJSON parses a description from JSON bytes.
func FromJSON(data []byte) (*Document, error) {
	if !json.Valid(data) {
		var v any
		err := json.Unmarshal(data, &v)
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	// Raw tabs can only be insignificant whitespace in valid JSON, but YAML
	// rejects them as indentation.
	return FromYAML(bytes.ReplaceAll(data, []byte("\t"), []byte(" ")))
}

// FromYAML parses a description from YAML bytes.
//
// Path and operation order comes from the YAML node tree. Parameters,
// schemas and request bodies come from the libopenapi v3 model, which
// follows every $ref. Documents that declare no OpenAPI 3.x version are
// read as written and may not use references.
func FromYAML(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	doc, err := decodeOutline(&root)
	if err != nil {
		return nil, err
	}

	model, err := buildModel(doc, data)
	if err != nil {
		return nil, err
	}
	if model == nil {
		return doc, resolveLocal(doc)
	}
	return doc, applyModel(doc, model)
}

// ParseFormat parses a description in the given format. FormatAuto tries
// JSON first when the data looks like a JSON object, then YAML.
func ParseFormat(data []byte, format Format) (*Document, error) {
	switch format {
	case FormatJSON:
		return FromJSON(data)
	case FormatYAML:
		return FromYAML(data)
	default:
		if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
			return FromJSON(data)
		}
		return FromYAML(data)
	}
}

// Parse parses a description of unknown format.
func Parse(data []byte) (*Document, error) {
	return ParseFormat(data, FormatAuto)
}

// decodeOutline walks the YAML node tree so that paths and operations keep
// their document order. References are left as written.
func decodeOutline(root *yaml.Node) (*Document, error) {
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, fmt.Errorf("expected a document")
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected top-level mapping")
	}

	doc := &Document{}
	if err := top.Decode(doc); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}

	pathsNode := getMapValue(top, "paths")
	if pathsNode == nil || pathsNode.Kind != yaml.MappingNode {
		return nil, ErrNoPaths
	}

	var errs *multierror.Error
	for i := 0; i+1 < len(pathsNode.Content); i += 2 {
		pathKey := pathsNode.Content[i]
		pathVal := pathsNode.Content[i+1]
		if pathVal.Kind != yaml.MappingNode {
			continue
		}

		item, err := decodePathItem(pathKey.Value, pathVal)
		if err != nil {
			errs = multierror.Append(errs, err)
		}
		doc.Paths = append(doc.Paths, item)
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return doc, nil
}

func decodePathItem(path string, node *yaml.Node) (*PathItem, error) {
	item := &PathItem{Path: path}
	var errs *multierror.Error

	if ref := getMapValue(node, "$ref"); ref != nil {
		item.Ref = ref.Value
	}
	if paramsNode := getMapValue(node, "parameters"); paramsNode != nil {
		if err := paramsNode.Decode(&item.Parameters); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: decoding parameters: %w", path, err))
		}
	}

	for j := 0; j+1 < len(node.Content); j += 2 {
		methodKey := node.Content[j]
		methodVal := node.Content[j+1]
		if !IsHTTPMethod(methodKey.Value) || methodVal.Kind != yaml.MappingNode {
			continue
		}

		op := &Operation{}
		if err := methodVal.Decode(op); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s %s: %w", strings.ToUpper(methodKey.Value), path, err))
			continue
		}
		op.Method = strings.ToUpper(methodKey.Value)
		op.Path = path
		item.Operations = append(item.Operations, op)
	}

	return item, errs.ErrorOrNil()
}

// resolveLocal merges path-level parameters into each operation of a
// document that has no libopenapi model. Any reference is an error.
func resolveLocal(doc *Document) error {
	var errs *multierror.Error
	for _, item := range doc.Paths {
		if item.Ref != "" {
			errs = multierror.Append(errs, fmt.Errorf("%s: unresolved path item reference %q (no OpenAPI 3.x version declared)", item.Path, item.Ref))
			continue
		}
		for _, op := range item.Operations {
			if err := resolveOperation(item, op); err != nil {
				errs = multierror.Append(errs, fmt.Errorf("%s %s: %w", op.Method, item.Path, err))
			}
		}
	}
	return errs.ErrorOrNil()
}

// resolveOperation merges item's parameters into op, rejecting references.
func resolveOperation(item *PathItem, op *Operation) error {
	var errs *multierror.Error
	if op.RequestBody != nil && op.RequestBody.Ref != "" {
		errs = multierror.Append(errs, fmt.Errorf("unresolved request body reference %q", op.RequestBody.Ref))
	}
	params, err := mergeParameters(item.Parameters, op.Parameters)
	if err != nil {
		errs = multierror.Append(errs, err)
	}
	op.Parameters = params
	return errs.ErrorOrNil()
}

// mergeParameters merges path-level parameters into the operation's own
// list. An operation parameter overrides a path parameter with the same
// name and location.
func mergeParameters(pathParams, opParams []Parameter) ([]Parameter, error) {
	var errs *multierror.Error
	var out []Parameter
	seen := make(map[string]int)

	add := func(p Parameter, override bool) {
		if p.Ref != "" {
			errs = multierror.Append(errs, fmt.Errorf("unresolved parameter reference %q", p.Ref))
			return
		}
		if p.Name == "" {
			errs = multierror.Append(errs, fmt.Errorf("parameter without a name"))
			return
		}
		key := p.In + ":" + p.Name
		if idx, ok := seen[key]; ok {
			if override {
				out[idx] = p
			}
			return
		}
		seen[key] = len(out)
		out = append(out, p)
	}

	for _, p := range opParams {
		add(p, true)
	}
	for _, p := range pathParams {
		add(p, false)
	}

	return out, errs.ErrorOrNil()
}

// getMapValue returns the value node for key in a mapping node, or nil.
func getMapValue(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}
