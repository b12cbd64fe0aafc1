// Package grading canonicalizes expected and submitted answers and compares
// them. Comparison is case- and whitespace-insensitive; list answers are
// order-sensitive to match drag_drop semantics.
package grading

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Normalize lowercases and collapses whitespace for fair comparison.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(s))), " ")
}

// CoerceList turns any answer shape (scalar, list, stringified JSON array)
// into an ordered list of strings. Malformed input degrades to a
// single-element list.
func CoerceList(v any) []string {
	list, _ := coerce(v)
	return list
}

// coerce reports whether the value was list-shaped alongside the coerced list.
func coerce(v any) ([]string, bool) {
	switch x := v.(type) {
	case nil:
		return []string{""}, false
	case []string:
		return append([]string(nil), x...), true
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			out = append(out, toStr(e))
		}
		return out, true
	case string:
		trimmed := strings.TrimSpace(x)
		if strings.HasPrefix(trimmed, "[") {
			var arr []any
			if err := json.Unmarshal([]byte(trimmed), &arr); err == nil {
				return CoerceList(arr), true
			}
		}
		return []string{x}, false
	default:
		return []string{toStr(v)}, false
	}
}

func toStr(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		// JSON numbers decode as float64; keep integers clean
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%v", x)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func normalizeAll(xs []string) []string {
	out := make([]string, len(xs))
	for i, s := range xs {
		out[i] = Normalize(s)
	}
	return out
}

// Correct grades a submission against the stored answer.
//   - list vs list: exact, order-sensitive equality
//   - list expected, scalar submitted: membership
//   - scalar vs scalar: normalized equality
func Correct(expected, submitted any) bool {
	exp, expIsList := coerce(expected)
	sub, subIsList := coerce(submitted)
	expN := normalizeAll(exp)
	subN := normalizeAll(sub)

	if expIsList {
		if subIsList {
			if len(expN) != len(subN) {
				return false
			}
			for i := range expN {
				if expN[i] != subN[i] {
					return false
				}
			}
			return true
		}
		for _, e := range expN {
			if e == subN[0] {
				return true
			}
		}
		return false
	}
	if subIsList {
		return len(subN) == 1 && subN[0] == expN[0]
	}
	return expN[0] == subN[0]
}
