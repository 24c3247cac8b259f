// Package flatten implements the pure transformation of a nested document
// (as decoded by encoding/json or yaml.v3 into any/map[string]any/[]any) into
// a flat mapping from absolute KV path to scalar value.
package flatten

import (
	"errors"
	"fmt"
)

// ErrNestedListsNotSupported is returned when a sequence contains another
// sequence as an element.
var ErrNestedListsNotSupported = errors.New("flatten: nested lists not supported")

// ErrUnsupportedType is returned when a value is neither a scalar, an
// ordered sequence, nor a string-keyed mapping.
var ErrUnsupportedType = errors.New("flatten: unsupported type")

// Flatten walks node and returns a mapping from absolute path to scalar
// value. prefix is the absolute path node itself is rooted at.
func Flatten(node any, prefix string) (map[string]string, error) {
	out := make(map[string]string)
	if err := flattenInto(out, node, prefix); err != nil {
		return nil, err
	}
	return out, nil
}

func flattenInto(out map[string]string, node any, prefix string) error {
	switch v := node.(type) {
	case map[string]any:
		for key, child := range v {
			path := prefix + "/" + key
			switch child.(type) {
			case map[string]any, []any:
				if err := flattenInto(out, child, path); err != nil {
					return err
				}
			default:
				if !isScalar(child) {
					return fmt.Errorf("%w: at %s", ErrUnsupportedType, path)
				}
				out[path] = stringify(child)
			}
		}
		return nil

	case []any:
		for _, elem := range v {
			if _, ok := elem.([]any); ok {
				return fmt.Errorf("%w: at %s", ErrNestedListsNotSupported, prefix)
			}
			if m, ok := elem.(map[string]any); ok {
				// Only scalar sequence elements become membership leaves; a
				// mapping element is rejected the same way any other
				// non-scalar sequence element would be.
				_ = m
				return fmt.Errorf("%w: at %s", ErrUnsupportedType, prefix)
			}
			if !isScalar(elem) {
				return fmt.Errorf("%w: at %s", ErrUnsupportedType, prefix)
			}
			out[prefix+"/"+stringify(elem)] = ""
		}
		return nil

	default:
		if isScalar(node) {
			out[prefix] = stringify(node)
			return nil
		}
		return fmt.Errorf("%w: at %s", ErrUnsupportedType, prefix)
	}
}

func isScalar(v any) bool {
	switch v.(type) {
	case nil, string, bool, int, int64, float64:
		return true
	default:
		return false
	}
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "true"
		}
		return "false"
	case int:
		return fmt.Sprintf("%d", x)
	case int64:
		return fmt.Sprintf("%d", x)
	case float64:
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%g", x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
