// Package editor applies operator edits to a theme. Every operation is
// copy-on-write: the input theme is never modified and a new theme is returned.
package editor

import (
	"fmt"
	"strings"

	"github.com/ajramos/formsmith/internal/schema"
)

// Direction of a MoveField
type Direction int

const (
	Up Direction = iota
	Down
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Field attributes accepted by UpdateField
const (
	AttrName     = "name"
	AttrLabel    = "label"
	AttrType     = "type"
	AttrRequired = "required"
	AttrVisible  = "visible"
	AttrOptions  = "options"
)

// NewFieldLabel is the label given to fields created by AddField
const NewFieldLabel = "New Field"

// AddField appends a new optional, visible text field. Its name is
// field<N+1> where N is the current field count; when that name is already
// taken the counter keeps increasing until the name is unique.
func AddField(theme schema.ThemeConfig) schema.ThemeConfig {
	out := theme.Clone()
	n := len(out.Fields) + 1
	name := fmt.Sprintf("field%d", n)
	for schema.IndexOf(out.Fields, name) >= 0 {
		n++
		name = fmt.Sprintf("field%d", n)
	}
	out.Fields = append(out.Fields, schema.FieldDefinition{
		Name:    name,
		Label:   NewFieldLabel,
		Type:    schema.FieldText,
		Visible: true,
	})
	return out
}

// RemoveField deletes the field at index. Remaining fields keep their names
// and relative order.
func RemoveField(theme schema.ThemeConfig, index int) (schema.ThemeConfig, error) {
	if index < 0 || index >= len(theme.Fields) {
		return theme, newError("remove", index, "", ErrIndexOutOfRange)
	}
	out := theme.Clone()
	out.Fields = append(out.Fields[:index], out.Fields[index+1:]...)
	return out, nil
}

// UpdateField sets one attribute of the field at index.
func UpdateField(theme schema.ThemeConfig, index int, attribute string, value any) (schema.ThemeConfig, error) {
	if index < 0 || index >= len(theme.Fields) {
		return theme, newError("update", index, attribute, ErrIndexOutOfRange)
	}
	out := theme.Clone()
	f := &out.Fields[index]

	invalid := func(format string, args ...any) (schema.ThemeConfig, error) {
		err := fmt.Errorf("%w: "+format, append([]any{ErrInvalidFieldValue}, args...)...)
		return theme, newError("update", index, attribute, err)
	}

	switch attribute {
	case AttrName:
		s, ok := value.(string)
		if !ok {
			return invalid("name must be a string, got %T", value)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return invalid("name must not be empty")
		}
		if i := schema.IndexOf(out.Fields, s); i >= 0 && i != index {
			return theme, newError("update", index, attribute, fmt.Errorf("%w: %q is used by fields[%d]", ErrDuplicateFieldName, s, i))
		}
		f.Name = s
	case AttrLabel:
		s, ok := value.(string)
		if !ok {
			return invalid("label must be a string, got %T", value)
		}
		f.Label = s
	case AttrType:
		var ft schema.FieldType
		switch v := value.(type) {
		case schema.FieldType:
			ft = v
		case string:
			ft = schema.FieldType(v)
		default:
			return invalid("type must be a string, got %T", value)
		}
		if !ft.Valid() {
			return invalid("unknown field type %q", ft)
		}
		f.Type = ft
	case AttrRequired, AttrVisible:
		b, ok := value.(bool)
		if !ok {
			return invalid("%s must be a bool, got %T", attribute, value)
		}
		if attribute == AttrRequired {
			f.Required = b
		} else {
			f.Visible = b
		}
	case AttrOptions:
		switch v := value.(type) {
		case []string:
			f.Options = append([]string(nil), v...)
		case []any:
			opts := make([]string, 0, len(v))
			for _, o := range v {
				s, ok := o.(string)
				if !ok {
					return invalid("options must be strings, got %T", o)
				}
				opts = append(opts, s)
			}
			f.Options = opts
		case nil:
			f.Options = nil
		default:
			return invalid("options must be a list of strings, got %T", value)
		}
	default:
		return invalid("unknown field attribute")
	}
	return out, nil
}

// MoveField swaps the field at index with its neighbor in direction. Moving
// the first field up or the last field down returns the theme unchanged.
func MoveField(theme schema.ThemeConfig, index int, dir Direction) (schema.ThemeConfig, error) {
	if index < 0 || index >= len(theme.Fields) {
		return theme, newError("move", index, "", ErrIndexOutOfRange)
	}
	var target int
	switch dir {
	case Up:
		target = index - 1
	case Down:
		target = index + 1
	default:
		return theme, newError("move", index, "", fmt.Errorf("%w: unknown direction %d", ErrInvalidFieldValue, int(dir)))
	}
	if target < 0 || target >= len(theme.Fields) {
		return theme, nil
	}
	out := theme.Clone()
	out.Fields[index], out.Fields[target] = out.Fields[target], out.Fields[index]
	return out, nil
}

// Reset returns the canonical default theme
func Reset() schema.ThemeConfig {
	return schema.Default()
}
