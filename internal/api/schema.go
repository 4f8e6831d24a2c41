package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const todoSchemaSrc = `{
  "type": "object",
  "required": ["id", "task", "isComplete"],
  "properties": {
    "id": {"type": "integer"},
    "task": {"type": "string"},
    "isComplete": {"type": "boolean"}
  }
}`

const todoListSchemaSrc = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "task", "isComplete"],
    "properties": {
      "id": {"type": "integer"},
      "task": {"type": "string"},
      "isComplete": {"type": "boolean"}
    }
  }
}`

var (
	todoSchema     = jsonschema.MustCompileString("todo.json", todoSchemaSrc)
	todoListSchema = jsonschema.MustCompileString("todos.json", todoListSchemaSrc)
)

// decodeValidated checks body against schema before unmarshalling into out.
func decodeValidated(body []byte, schema *jsonschema.Schema, out any) error {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %s", ErrMalformedResponse, schemaDetail(err))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// schemaDetail flattens a validation error to its leaf messages.
func schemaDetail(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	var msgs []string
	collectLeaves(ve, &msgs)
	if len(msgs) == 0 {
		return ve.Message
	}
	return strings.Join(msgs, "; ")
}

func collectLeaves(ve *jsonschema.ValidationError, msgs *[]string) {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		*msgs = append(*msgs, loc+": "+ve.Message)
		return
	}
	for _, c := range ve.Causes {
		collectLeaves(c, msgs)
	}
}
