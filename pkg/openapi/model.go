package openapi

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pb33f/libopenapi"
	"github.com/pb33f/libopenapi/datamodel/high/base"
	v3high "github.com/pb33f/libopenapi/datamodel/high/v3"
)

// maxSchemaDepth bounds the walk through allOf/oneOf/anyOf compositions.
const maxSchemaDepth = 8

// modelOperations returns (method, *Operation) pairs for a PathItem in a fixed order.
func modelOperations(item *v3high.PathItem) []struct {
	Method string
	Op     *v3high.Operation
} {
	return []struct {
		Method string
		Op     *v3high.Operation
	}{
		{"GET", item.Get},
		{"PUT", item.Put},
		{"POST", item.Post},
		{"DELETE", item.Delete},
		{"OPTIONS", item.Options},
		{"HEAD", item.Head},
		{"PATCH", item.Patch},
		{"TRACE", item.Trace},
	}
}

// buildModel builds the libopenapi v3 model of data. It returns nil when
// the document declares no OpenAPI 3.x version.
func buildModel(doc *Document, data []byte) (*v3high.Document, error) {
	if !strings.HasPrefix(doc.OpenAPI, "3.") {
		return nil, nil
	}

	parsed, err := libopenapi.NewDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parsing OpenAPI document: %w", err)
	}
	v3Model, errs := parsed.BuildV3Model()
	if v3Model == nil {
		return nil, fmt.Errorf("building OpenAPI v3 model: %v", errs)
	}
	return &v3Model.Model, nil
}

// applyModel replaces the parameters and request bodies of the outline
// with their resolved forms from model.
func applyModel(doc *Document, model *v3high.Document) error {
	var errs *multierror.Error
	for _, item := range doc.Paths {
		var high *v3high.PathItem
		if model.Paths != nil && model.Paths.PathItems != nil {
			high, _ = model.Paths.PathItems.Get(item.Path)
		}
		if high == nil {
			if err := resolveLocal(&Document{Paths: []*PathItem{item}}); err != nil {
				errs = multierror.Append(errs, err)
			}
			continue
		}
		if err := applyPathItem(item, high); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

func applyPathItem(item *PathItem, high *v3high.PathItem) error {
	var errs *multierror.Error

	shared, err := convertParameters(item.Parameters, high.Parameters)
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("%s: %w", item.Path, err))
	}
	item.Parameters = shared

	// A referenced path item has no operations of its own in the outline.
	if item.Ref != "" && len(item.Operations) == 0 {
		for _, mo := range modelOperations(high) {
			if mo.Op != nil {
				item.Operations = append(item.Operations, &Operation{Method: mo.Method, Path: item.Path})
			}
		}
	}

	highOps := make(map[string]*v3high.Operation)
	for _, mo := range modelOperations(high) {
		if mo.Op != nil {
			highOps[mo.Method] = mo.Op
		}
	}

	for _, op := range item.Operations {
		var err error
		if highOp := highOps[op.Method]; highOp != nil {
			err = applyOperation(item, op, highOp)
		} else {
			err = resolveOperation(item, op)
		}
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s %s: %w", op.Method, item.Path, err))
		}
	}
	return errs.ErrorOrNil()
}

func applyOperation(item *PathItem, op *Operation, high *v3high.Operation) error {
	var errs *multierror.Error

	if item.Ref != "" {
		op.Tags = high.Tags
		op.Summary = high.Summary
		op.Description = high.Description
		op.OperationID = high.OperationId
		op.Deprecated = high.Deprecated != nil && *high.Deprecated
	}

	own, err := convertParameters(op.Parameters, high.Parameters)
	if err != nil {
		errs = multierror.Append(errs, err)
	}
	params, err := mergeParameters(item.Parameters, own)
	if err != nil {
		errs = multierror.Append(errs, err)
	}
	op.Parameters = params

	switch {
	case high.RequestBody != nil:
		op.RequestBody = convertRequestBody(high.RequestBody)
	case op.RequestBody != nil && op.RequestBody.Ref != "":
		errs = multierror.Append(errs, fmt.Errorf("unresolved request body reference %q", op.RequestBody.Ref))
	}

	return errs.ErrorOrNil()
}

// convertParameters converts the model's parameters, checking them against
// the list declared in the outline. A reference the model could not
// follow leaves a gap or an unnamed parameter at its position.
func convertParameters(declared []Parameter, high []*v3high.Parameter) ([]Parameter, error) {
	if len(high) != len(declared) {
		for _, p := range declared {
			if p.Ref != "" {
				return nil, fmt.Errorf("unresolved parameter reference %q", p.Ref)
			}
		}
	}

	var errs *multierror.Error
	out := make([]Parameter, 0, len(high))
	for i, hp := range high {
		if hp == nil || hp.Name == "" {
			if i < len(declared) && declared[i].Ref != "" {
				errs = multierror.Append(errs, fmt.Errorf("unresolved parameter reference %q", declared[i].Ref))
				continue
			}
			if hp == nil {
				continue
			}
		}
		p := Parameter{
			Name:        hp.Name,
			In:          hp.In,
			Description: hp.Description,
			Required:    hp.Required != nil && *hp.Required,
			Schema:      schemaFrom(hp.Schema, 0),
		}
		out = append(out, p)
	}
	return out, errs.ErrorOrNil()
}

func convertRequestBody(high *v3high.RequestBody) *RequestBody {
	body := &RequestBody{
		Description: high.Description,
		Required:    high.Required != nil && *high.Required,
	}
	if high.Content != nil {
		body.Content = make(map[string]MediaType, high.Content.Len())
		for mediaType, media := range high.Content.FromOldest() {
			var schema *Schema
			if media != nil {
				schema = schemaFrom(media.Schema, 0)
			}
			body.Content[mediaType] = MediaType{Schema: schema}
		}
	}
	return body
}

// schemaFrom resolves proxy and keeps its type and format. A schema with
// no type of its own takes the first typed member of allOf, oneOf or anyOf.
func schemaFrom(proxy *base.SchemaProxy, depth int) *Schema {
	if proxy == nil || depth > maxSchemaDepth {
		return nil
	}
	resolved := proxy.Schema()
	if resolved == nil {
		return nil
	}

	out := &Schema{Format: resolved.Format}
	switch len(resolved.Type) {
	case 0:
	case 1:
		out.Type = resolved.Type[0]
	default:
		out.Type = resolved.Type
	}
	if out.PrimaryType() != "" {
		return out
	}

	for _, group := range [][]*base.SchemaProxy{resolved.AllOf, resolved.OneOf, resolved.AnyOf} {
		for _, member := range group {
			if s := schemaFrom(member, depth+1); s != nil && s.PrimaryType() != "" {
				return s
			}
		}
	}
	return out
}
