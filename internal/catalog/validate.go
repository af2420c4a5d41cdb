package catalog

// validate.go checks staged edit values against descriptor rules before
// a commit is allowed to reach the remote store. Validation operates on
// edit representations: "1,5" has already been rejected by coercion,
// so a number that coerces to nil here is either absent or malformed.

import (
	"fmt"
	"strings"
)

// ValidateStaged validates a session's staged edit values against the
// descriptor list. It returns every failure so the caller can surface
// them all at once.
func ValidateStaged(descriptors []FieldDescriptor, staged map[string]any) ValidationErrors {
	var errs ValidationErrors

	for _, desc := range descriptors {
		raw := strings.TrimSpace(asString(staged[desc.Name]))

		if raw == "" {
			if desc.Mandatory {
				errs = append(errs, ValidationError{
					Field:   desc.Name,
					Message: "required field is empty",
				})
			}
			continue
		}

		if err := validateValue(raw, desc); err != nil {
			errs = append(errs, ValidationError{
				Field:   desc.Name,
				Value:   raw,
				Message: err.Error(),
			})
		}
	}

	return errs
}

// validateValue checks one non-empty edit value against its descriptor.
func validateValue(raw string, desc FieldDescriptor) error {
	switch desc.Type {
	case FieldNumber:
		f, ok := asFloat(raw)
		if !ok {
			return fmt.Errorf("invalid number format")
		}
		if desc.Min != nil && f < *desc.Min {
			return fmt.Errorf("must be at least %v", *desc.Min)
		}
		if desc.Max != nil && f > *desc.Max {
			return fmt.Errorf("must be at most %v", *desc.Max)
		}
	case FieldBool:
		if raw != editTrue && raw != editFalse {
			return fmt.Errorf("must be %s or %s", editTrue, editFalse)
		}
	case FieldSelect:
		if len(desc.Options) > 0 {
			code, ok := ToWireValue(desc, raw).(int)
			if ok {
				for _, opt := range desc.Options {
					if opt.Code == code {
						return nil
					}
				}
			}
			labels := make([]string, len(desc.Options))
			for i, opt := range desc.Options {
				labels[i] = opt.Label
			}
			return fmt.Errorf("value must be one of: %s", strings.Join(labels, ", "))
		}
	default:
		if desc.Pattern != nil && !desc.Pattern.MatchString(raw) {
			return fmt.Errorf("invalid %s format", fieldTypeName(desc.Type))
		}
	}
	return nil
}
