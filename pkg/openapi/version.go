package openapi

import (
	"fmt"

	"github.com/pb33f/libopenapi"
)

// SniffVersion confirms that data is an OpenAPI or Swagger document and
// returns the version it declares.
func SniffVersion(data []byte) (string, error) {
	doc, err := libopenapi.NewDocument(data)
	if err != nil {
		return "", fmt.Errorf("not an OpenAPI document: %w", err)
	}
	version := doc.GetVersion()
	if version == "" {
		return "", fmt.Errorf("not an OpenAPI document: no openapi or swagger version")
	}
	return version, nil
}
