package catalog

// coerce.go is the single source of truth for converting record field
// values between their wire representation (typed values as exchanged
// with the remote store, nils meaningful) and their edit representation
// (form-friendly values, usually strings).
//
// Malformed input never produces an error here: a number that does not
// parse coerces to nil and the gap is left for validation to flag.

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Edit-side literals for boolean fields. Booleans are edited through a
// two-option select, so the edit representation is a string.
const (
	editTrue  = "True"
	editFalse = "False"
)

// ToEditValue converts a wire value to its edit representation for the
// given descriptor.
func ToEditValue(desc FieldDescriptor, wire any) any {
	switch desc.Type {
	case FieldNumber:
		f, ok := asFloat(wire)
		if !ok {
			return ""
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	case FieldBool:
		b, ok := wire.(bool)
		if !ok {
			return ""
		}
		if b {
			return editTrue
		}
		return editFalse
	case FieldSelect:
		f, ok := asFloat(wire)
		if !ok {
			return ""
		}
		return strconv.Itoa(int(f))
	default:
		// text, long-text, URL: nil edits as the empty string
		if wire == nil {
			return ""
		}
		return fmt.Sprintf("%v", wire)
	}
}

// ToWireValue converts an edit value back to its wire representation
// for the given descriptor.
func ToWireValue(desc FieldDescriptor, edit any) any {
	switch desc.Type {
	case FieldNumber:
		f, ok := asFloat(edit)
		if !ok {
			return nil
		}
		if desc.Monetary {
			f = math.Round(f*100) / 100
		}
		return f
	case FieldBool:
		switch strings.TrimSpace(asString(edit)) {
		case editTrue:
			return true
		case editFalse:
			return false
		default:
			return nil
		}
	case FieldSelect:
		s := strings.TrimSpace(asString(edit))
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil
		}
		return n
	default:
		s := strings.TrimSpace(asString(edit))
		if s == "" {
			// Mandatory text-like fields keep the empty string so
			// required-field validation fires; optional ones null out.
			if desc.Mandatory {
				return ""
			}
			return nil
		}
		return s
	}
}

// asFloat extracts a float64 from the numeric shapes a value can
// arrive in: JSON numbers decode as float64, edits arrive as strings.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// asString renders a value the way it is shown in an edit field.
func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		if s {
			return editTrue
		}
		return editFalse
	default:
		return fmt.Sprintf("%v", s)
	}
}
