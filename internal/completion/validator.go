package completion

import (
	"fmt"

	"github.com/folio/portfolio/backend/go-services/internal/models"
)

// Validate checks the shape of a decoded chat request body (as produced by
// json.Unmarshal into interface{}). It never modifies the body.
func Validate(body interface{}) error {
	if body == nil {
		return ValidationError("Request body is required")
	}
	obj, ok := body.(map[string]interface{})
	if !ok {
		return ValidationError("Request body must be a JSON object")
	}
	raw, ok := obj["messages"]
	if !ok || raw == nil {
		return ValidationError("messages is required and must be an array")
	}
	list, ok := raw.([]interface{})
	if !ok {
		return ValidationError("messages is required and must be an array")
	}
	if len(list) == 0 {
		return ValidationError("messages must not be empty")
	}
	for i, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			return ValidationError(fmt.Sprintf("message %d must be an object with role and content", i))
		}
		role, hasRole := m["role"]
		content, hasContent := m["content"]
		if !hasRole || role == nil || !hasContent || content == nil {
			return ValidationError(fmt.Sprintf("message %d must have role and content", i))
		}
		r, ok := role.(string)
		if !ok || !models.ValidRole(r) {
			return ValidationError(fmt.Sprintf("message %d has invalid role %v: must be one of system, user, assistant", i, role))
		}
		if _, ok := content.(string); !ok {
			return ValidationError(fmt.Sprintf("message %d content must be a string", i))
		}
	}
	return nil
}
