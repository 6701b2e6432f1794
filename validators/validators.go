// Package validators provides stock predicates for the validating provider
// decorator. Each constructor returns a provider.ValidatorFn whose rejection
// message doubles as corrective feedback to the model.
package validators

import (
	"errors"
	"fmt"
	"strings"

	"github.com/casualjim/llmchain/provider"
	"github.com/invopop/jsonschema"
	"github.com/tidwall/gjson"
)

// NonEmpty rejects responses that are empty or whitespace only.
func NonEmpty() provider.ValidatorFn {
	return func(output string) error {
		if strings.TrimSpace(output) == "" {
			return errors.New("the response is empty")
		}
		return nil
	}
}

// JSONObject rejects responses that are not a single valid JSON object.
func JSONObject() provider.ValidatorFn {
	return func(output string) error {
		trimmed := strings.TrimSpace(output)
		if !gjson.Valid(trimmed) {
			return errors.New("the response is not valid JSON")
		}
		if !strings.HasPrefix(trimmed, "{") {
			return errors.New("the response must be a JSON object, not an array or scalar")
		}
		return nil
	}
}

// Shaped rejects responses that are not JSON objects carrying every required
// field of the schema derived from T. It checks presence, not full schema
// conformance; the point is to give the model precise feedback about missing
// fields.
func Shaped[T any]() provider.ValidatorFn {
	reflector := &jsonschema.Reflector{DoNotReference: true}
	var model T
	schema := reflector.Reflect(&model)
	object := JSONObject()

	return func(output string) error {
		if err := object(output); err != nil {
			return err
		}
		var missing []string
		for _, field := range schema.Required {
			if !gjson.Get(output, field).Exists() {
				missing = append(missing, field)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("the response is missing required field(s): %s", strings.Join(missing, ", "))
		}
		return nil
	}
}

// All combines validators; the first rejection wins.
func All(validators ...provider.ValidatorFn) provider.ValidatorFn {
	return func(output string) error {
		for _, v := range validators {
			if err := v(output); err != nil {
				return err
			}
		}
		return nil
	}
}
