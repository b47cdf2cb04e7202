package script

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"go.trai.ch/hob/internal/core/domain"
	"go.trai.ch/zerr"
)

// Runtime values are nil (unit), string, int64, bool, []any and map[string]any.

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "()"
	case string:
		return "string"
	case int64:
		return "integer"
	case bool:
		return "bool"
	case []any:
		return "array"
	case map[string]any:
		return "map"
	default:
		return "unknown"
	}
}

func truthy(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func display(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = debug(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		keys := slices.Sorted(maps.Keys(x))
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + debug(x[k])
		}
		return "#{" + strings.Join(parts, ", ") + "}"
	default:
		return "?"
	}
}

func debug(v any) string {
	switch x := v.(type) {
	case nil:
		return "()"
	case string:
		return domain.Quote(x)
	default:
		return display(x)
	}
}

func equal(a, b any) bool {
	switch x := a.(type) {
	case []any:
		y, ok := b.([]any)
		return ok && slices.EqualFunc(x, y, equal)
	case map[string]any:
		y, ok := b.(map[string]any)
		return ok && maps.EqualFunc(x, y, equal)
	default:
		return a == b
	}
}

func fromDomain(v domain.Value) any {
	switch v.Kind {
	case domain.ValueString:
		return v.Str
	case domain.ValueBool:
		return v.Bool
	case domain.ValueInteger:
		return v.Int
	case domain.ValueArray:
		items := make([]any, len(v.List))
		for i, item := range v.List {
			items[i] = fromDomain(item)
		}
		return items
	default:
		return nil
	}
}

func toDomain(v any) (domain.Value, error) {
	switch x := v.(type) {
	case nil:
		return domain.UnitValue(), nil
	case string:
		return domain.StringValue(x), nil
	case int64:
		return domain.IntValue(x), nil
	case bool:
		return domain.BoolValue(x), nil
	case []any:
		items := make([]domain.Value, len(x))
		for i, item := range x {
			dv, err := toDomain(item)
			if err != nil {
				return domain.Value{}, err
			}
			items[i] = dv
		}
		return domain.ArrayValue(items...), nil
	default:
		return domain.Value{}, zerr.With(zerr.Wrap(domain.ErrUnsupportedValue, "cannot convert script value"), "type", typeName(v))
	}
}

// literal evaluates e without running code. ok is false if e is not built
// from literals only.
func literal(e expr) (any, bool) {
	switch x := e.(type) {
	case *litExpr:
		return x.val, true
	case *unaryExpr:
		if n, ok := x.x.(*litExpr); ok && x.op == "-" {
			if i, isInt := n.val.(int64); isInt {
				return -i, true
			}
		}
	case *arrayExpr:
		items := make([]any, len(x.items))
		for i, item := range x.items {
			v, ok := literal(item)
			if !ok {
				return nil, false
			}
			items[i] = v
		}
		return items, true
	}
	return nil, false
}
