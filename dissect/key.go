package dissect

import (
	"fmt"
	"strconv"
	"strings"
)

// Modifier changes how the value captured by a key ends up in the result.
type Modifier int

const (
	ModifierNone            Modifier = iota // %{name}
	ModifierAppend                          // %{+name}
	ModifierAppendWithOrder                 // %{+name/N}
	ModifierFieldName                       // %{?name} or %{*name}
	ModifierFieldValue                      // %{&name}
)

func (m Modifier) String() string {
	switch m {
	case ModifierNone:
		return "none"
	case ModifierAppend:
		return "append"
	case ModifierAppendWithOrder:
		return "append_with_order"
	case ModifierFieldName:
		return "field_name"
	case ModifierFieldValue:
		return "field_value"
	default:
		return "unknown"
	}
}

// IsAppend reports whether values of the key are joined into an append group.
func (m Modifier) IsAppend() bool {
	switch m {
	case ModifierAppend, ModifierAppendWithOrder:
		return true
	case ModifierNone, ModifierFieldName, ModifierFieldValue:
		return false
	default:
		panic(fmt.Sprintf("dissect: unknown modifier %d", int(m)))
	}
}

// IsReference reports whether the key takes part in a name/value association.
func (m Modifier) IsReference() bool {
	switch m {
	case ModifierFieldName, ModifierFieldValue:
		return true
	case ModifierNone, ModifierAppend, ModifierAppendWithOrder:
		return false
	default:
		panic(fmt.Sprintf("dissect: unknown modifier %d", int(m)))
	}
}

const paddingMarker = "->"

// Key is the parsed form of a single %{...} placeholder.
type Key struct {
	name             string
	modifier         Modifier
	appendPosition   int
	skip             bool
	skipRightPadding bool
}

// ParseKey parses the text between "%{" and "}".
func ParseKey(raw string) (Key, error) {
	var k Key

	body := raw
	if strings.HasSuffix(body, paddingMarker) {
		k.skipRightPadding = true
		body = strings.TrimSuffix(body, paddingMarker)
	}

	if body == "" {
		k.skip = true
		return k, nil
	}

	switch body[0] {
	case '?', '*':
		k.modifier = ModifierFieldName
		k.name = body[1:]
	case '&':
		k.modifier = ModifierFieldValue
		k.name = body[1:]
	case '+':
		k.modifier = ModifierAppend
		k.name = body[1:]
		if slash := strings.LastIndexByte(k.name, '/'); slash >= 0 {
			pos, err := parseAppendPosition(k.name[slash+1:])
			if err != nil {
				return Key{}, fmt.Errorf("key %q: %w", raw, err)
			}
			k.modifier = ModifierAppendWithOrder
			k.appendPosition = pos
			k.name = k.name[:slash]
		}
	default:
		k.name = body
	}

	if k.name == "" {
		return Key{}, fmt.Errorf("key %q: the key name could not be determined", raw)
	}
	return k, nil
}

func parseAppendPosition(digits string) (int, error) {
	if digits == "" {
		return 0, fmt.Errorf("missing append position after '/'")
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, fmt.Errorf("append position %q is not a number", digits)
		}
	}
	pos, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("append position %q: %w", digits, err)
	}
	return pos, nil
}

func (k Key) Name() string           { return k.name }
func (k Key) Modifier() Modifier     { return k.modifier }
func (k Key) IsSkip() bool           { return k.skip }
func (k Key) SkipRightPadding() bool { return k.skipRightPadding }

// AppendPosition returns the explicit join position of a %{+name/N} key.
func (k Key) AppendPosition() (int, bool) {
	if k.modifier != ModifierAppendWithOrder {
		return 0, false
	}
	return k.appendPosition, true
}

// String renders the key back into placeholder syntax.
func (k Key) String() string {
	var sb strings.Builder
	sb.WriteString("%{")
	switch k.modifier {
	case ModifierNone:
	case ModifierAppend, ModifierAppendWithOrder:
		sb.WriteByte('+')
	case ModifierFieldName:
		sb.WriteByte('?')
	case ModifierFieldValue:
		sb.WriteByte('&')
	default:
		panic(fmt.Sprintf("dissect: unknown modifier %d", int(k.modifier)))
	}
	sb.WriteString(k.name)
	if k.modifier == ModifierAppendWithOrder {
		sb.WriteByte('/')
		sb.WriteString(strconv.Itoa(k.appendPosition))
	}
	if k.skipRightPadding {
		sb.WriteString(paddingMarker)
	}
	sb.WriteByte('}')
	return sb.String()
}
