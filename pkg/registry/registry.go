// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// FindByTaskType returns the activity registered for the task type.
func (r *ActivityRegistry) FindByTaskType(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// ValidateVariables checks process variables against the activity's
// input schema. Activities without a schema accept everything.
func (a *Activity) ValidateVariables(rawVariables string) error {
	if len(a.InputSchema) == 0 {
		return nil
	}

	schemaLoader := gojsonschema.NewGoLoader(a.InputSchema)
	docLoader := gojsonschema.NewStringLoader(rawVariables)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("validate variables for %s: %w", a.ID, err)
	}
	if !result.Valid() {
		msg := ""
		for i, desc := range result.Errors() {
			if i > 0 {
				msg += "; "
			}
			msg += desc.String()
		}
		return fmt.Errorf("variables for %s invalid: %s", a.ID, msg)
	}
	return nil
}
