package attr

import (
	"strconv"
	"strings"
)

// ParseStructTag reifies a raw struct-tag string into attribute values, one
// per tag key, in declaration order. The conventional tag shape
// `key:"first,flag,name=value"` maps to an attribute named after the key with
// the first element as constructor argument zero (a hole when empty) and the
// remaining elements as named arguments: `name=value` keeps the string value,
// a bare flag becomes (flag, true).
//
// The syntax mirrors reflect.StructTag's, re-implemented here because the
// standard type only supports lookup of known keys, not enumeration.
func ParseStructTag(tag string, pos Position) []Value {
	var out []Value
	for tag != "" {
		// Skip leading space.
		i := 0
		for i < len(tag) && tag[i] == ' ' {
			i++
		}
		tag = tag[i:]
		if tag == "" {
			break
		}

		// Scan the key up to a colon.
		i = 0
		for i < len(tag) && tag[i] > ' ' && tag[i] != ':' && tag[i] != '"' && tag[i] != 0x7f {
			i++
		}
		if i == 0 || i+1 >= len(tag) || tag[i] != ':' || tag[i+1] != '"' {
			break
		}
		key := tag[:i]
		tag = tag[i+1:]

		// Scan the quoted value.
		i = 1
		for i < len(tag) && tag[i] != '"' {
			if tag[i] == '\\' {
				i++
			}
			i++
		}
		if i >= len(tag) {
			break
		}
		quoted := tag[:i+1]
		tag = tag[i+1:]

		value, err := strconv.Unquote(quoted)
		if err != nil {
			continue
		}
		out = append(out, tagValue(key, value, pos))
	}
	return out
}

func tagValue(key, value string, pos Position) Value {
	v := Value{FullName: key, Position: pos}
	parts := strings.Split(value, ",")
	if len(parts) > 0 {
		if parts[0] == "" {
			v.CtorArgs = []any{nil} // hole: the key was applied without a primary value
		} else {
			v.CtorArgs = []any{parts[0]}
		}
		for _, part := range parts[1:] {
			if part == "" {
				continue
			}
			if name, val, ok := strings.Cut(part, "="); ok {
				v.NamedArgs = append(v.NamedArgs, NamedArg{Name: name, Value: val})
			} else {
				v.NamedArgs = append(v.NamedArgs, NamedArg{Name: part, Value: true})
			}
		}
	}
	return v
}
