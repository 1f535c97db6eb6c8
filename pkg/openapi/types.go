// Package openapi reads OpenAPI 3.x descriptions into an order-preserving
// model that is sufficient for deriving command-line interfaces.
package openapi

import "strings"

// DefaultBaseURL is used when a description declares no servers.
const DefaultBaseURL = "http://localhost:8000"

// Document represents an OpenAPI 3.x description.
// Paths keep the order in which they appear in the source document.
type Document struct {
	OpenAPI string      `json:"openapi,omitempty" yaml:"openapi,omitempty"`
	Swagger string      `json:"swagger,omitempty" yaml:"swagger,omitempty"`
	Info    Info        `json:"info" yaml:"info"`
	Servers []Server    `json:"servers,omitempty" yaml:"servers,omitempty"`
	Paths   []*PathItem `json:"-" yaml:"-"`
}

// Info provides metadata about the API.
type Info struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Version     string `json:"version" yaml:"version"`
}

// Server represents an API server.
type Server struct {
	URL         string `json:"url" yaml:"url"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// PathItem describes the operations available on a single path template.
type PathItem struct {
	Path       string       `json:"-" yaml:"-"`
	Ref        string       `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Parameters []Parameter  `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Operations []*Operation `json:"-" yaml:"-"`
}

// Operation describes a single API operation on a path.
// Method and Path are filled in by the reader; the remaining fields come
// straight from the operation object.
type Operation struct {
	Method      string       `json:"-" yaml:"-"`
	Path        string       `json:"-" yaml:"-"`
	Tags        []string     `json:"tags,omitempty" yaml:"tags,omitempty"`
	Summary     string       `json:"summary,omitempty" yaml:"summary,omitempty"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	OperationID string       `json:"operationId,omitempty" yaml:"operationId,omitempty"`
	Parameters  []Parameter  `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	RequestBody *RequestBody `json:"requestBody,omitempty" yaml:"requestBody,omitempty"`
	Deprecated  bool         `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
}

// HasBody reports whether the operation declares a request body.
func (o *Operation) HasBody() bool {
	return o.RequestBody != nil
}

// Parameter describes a single operation parameter.
type Parameter struct {
	Ref         string  `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Name        string  `json:"name" yaml:"name"`
	In          string  `json:"in" yaml:"in"` // query, header, path, cookie
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool    `json:"required,omitempty" yaml:"required,omitempty"`
	Schema      *Schema `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// Kind returns the declared primitive type of the parameter, or "" when
// the parameter has no schema.
func (p Parameter) Kind() string {
	if p.Schema == nil {
		return ""
	}
	return p.Schema.PrimaryType()
}

// RequestBody describes a single request body.
type RequestBody struct {
	Ref         string               `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Description string               `json:"description,omitempty" yaml:"description,omitempty"`
	Content     map[string]MediaType `json:"content,omitempty" yaml:"content,omitempty"`
	Required    bool                 `json:"required,omitempty" yaml:"required,omitempty"`
}

// MediaType provides the schema for a media type.
type MediaType struct {
	Schema *Schema `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// Schema is the subset of JSON Schema needed to pick argument types.
type Schema struct {
	Type   any    `json:"type,omitempty" yaml:"type,omitempty"` // string or []string in 3.1
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
	Ref    string `json:"$ref,omitempty" yaml:"$ref,omitempty"`
}

// PrimaryType returns the first non-null type name. OpenAPI 3.1 allows
// type to be a list such as ["integer", "null"].
func (s *Schema) PrimaryType() string {
	switch t := s.Type.(type) {
	case string:
		return t
	case []any:
		for _, v := range t {
			if name, ok := v.(string); ok && name != "null" {
				return name
			}
		}
	case []string:
		for _, name := range t {
			if name != "null" {
				return name
			}
		}
	}
	return ""
}

// BaseURL returns the URL of the first declared server, or DefaultBaseURL.
func (d *Document) BaseURL() string {
	if len(d.Servers) > 0 && d.Servers[0].URL != "" {
		return d.Servers[0].URL
	}
	return DefaultBaseURL
}

// Description returns info.description.
func (d *Document) Description() string {
	return d.Info.Description
}

// Operations returns every operation in document order.
func (d *Document) Operations() []*Operation {
	var ops []*Operation
	for _, item := range d.Paths {
		ops = append(ops, item.Operations...)
	}
	return ops
}

// Version returns the declared openapi (or swagger) version string.
func (d *Document) Version() string {
	if d.OpenAPI != "" {
		return d.OpenAPI
	}
	return d.Swagger
}

// httpMethods lists the path item keys that hold operations.
var httpMethods = map[string]bool{
	"get":     true,
	"put":     true,
	"post":    true,
	"delete":  true,
	"options": true,
	"head":    true,
	"patch":   true,
	"trace":   true,
	"query":   true,
}

// IsHTTPMethod reports whether key names an operation inside a path item.
func IsHTTPMethod(key string) bool {
	return httpMethods[strings.ToLower(key)]
}
