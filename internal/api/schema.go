package api

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// draftSchema describes an acceptable PUT /api/profile body.
const draftSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "name":     {"type": "string"},
    "title":    {"type": "string"},
    "bio":      {"type": "string"},
    "email":    {"type": "string"},
    "phone":    {"type": "string"},
    "location": {"type": "string"},
    "socialLinks": {
      "type": "object",
      "properties": {
        "github":   {"type": "string"},
        "linkedin": {"type": "string"},
        "twitter":  {"type": "string"}
      },
      "additionalProperties": {"type": "string"}
    },
    "skills": {
      "type": "array",
      "items": {"type": ["number", "string"]}
    }
  }
}`

var compiledDraftSchema = mustCompile(draftSchema)

func mustCompile(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("compiling schema: %v", err))
	}
	return s
}

// validateDraft checks body against the draft schema.
func validateDraft(body []byte) error {
	res, err := compiledDraftSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return err
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("schema validation failed: %s", strings.Join(msgs, "; "))
}
