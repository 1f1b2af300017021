package schema

// FieldType is the input control a form field renders as
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldEmail    FieldType = "email"
	FieldTextarea FieldType = "textarea"
	FieldCheckbox FieldType = "checkbox"
	FieldDropdown FieldType = "dropdown"
)

// FieldTypes lists every supported field type in display order
var FieldTypes = []FieldType{FieldText, FieldEmail, FieldTextarea, FieldCheckbox, FieldDropdown}

// Valid reports whether t is one of the supported field types
func (t FieldType) Valid() bool {
	for _, known := range FieldTypes {
		if t == known {
			return true
		}
	}
	return false
}

// FieldDefinition describes one data-entry field of a form.
// Its position is its index in ThemeConfig.Fields.
type FieldDefinition struct {
	Name     string    `json:"name" yaml:"name" validate:"required"`
	Label    string    `json:"label" yaml:"label"`
	Type     FieldType `json:"type" yaml:"type" validate:"oneof=text email textarea checkbox dropdown"`
	Required bool      `json:"required" yaml:"required"`
	Visible  bool      `json:"visible" yaml:"visible"`

	// Options are the choices of a dropdown field
	Options []string `json:"options,omitempty" yaml:"options,omitempty"`
}

// Clone returns a copy that shares no memory with f
func (f FieldDefinition) Clone() FieldDefinition {
	if f.Options != nil {
		f.Options = append([]string(nil), f.Options...)
	}
	return f
}

// DefaultFields returns the name/email/message field set used when a theme has no fields
func DefaultFields() []FieldDefinition {
	return []FieldDefinition{
		{Name: "name", Label: "Name", Type: FieldText, Required: true, Visible: true},
		{Name: "email", Label: "Email", Type: FieldEmail, Required: true, Visible: true},
		{Name: "message", Label: "Message", Type: FieldTextarea, Required: true, Visible: true},
	}
}

// IndexOf returns the index of the field called name, or -1
func IndexOf(fields []FieldDefinition, name string) int {
	for i, f := range fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}
