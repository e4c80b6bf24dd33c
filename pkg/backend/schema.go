package backend

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const columnsSchema = `{
  "type": "object",
  "properties": {
    "success": {"type": "boolean"},
    "columns": {"type": "array", "items": {"type": "string"}},
    "total_students": {"type": "integer", "minimum": 0},
    "message": {"type": ["string", "null"]}
  }
}`

const searchSchema = `{
  "type": "object",
  "properties": {
    "success": {"type": "boolean"},
    "message": {"type": ["string", "null"]},
    "count": {"type": "integer", "minimum": 0},
    "search_term": {"type": ["string", "null"]},
    "students": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": {"type": ["string", "number", "boolean", "null"]}
      }
    }
  }
}`

var (
	columnsValidator = mustSchema(columnsSchema)
	searchValidator  = mustSchema(searchSchema)
)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("backend: invalid schema: %v", err))
	}
	return s
}

// validate checks body against schema and returns ErrMalformedResponse with
// the collected violations when it does not conform.
func validate(schema *gojsonschema.Schema, body []byte) error {
	res, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrMalformedResponse, strings.Join(msgs, "; "))
}
