package schema

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Entry represents a single bibliographic item. On disk it is one YAML
// document whose single top-level key is the label.
type Entry struct {
	Label  string
	Fields Fields
	Files  []string
	Notes  string
}

// reserved field names lifted out of the field mapping into Entry attributes.
const (
	fileField = "file"
	noteField = "note"
)

// New returns an entry with the given label and no fields.
func New(label string) *Entry { return &Entry{Label: label} }

// Get returns the named field value, treating "label", "file" and "note" as
// virtual fields backed by the entry attributes.
func (e *Entry) Get(name string) (Value, bool) {
	switch name {
	case "label":
		return StringValue(e.Label), true
	case fileField:
		if len(e.Files) == 0 {
			return Value{}, false
		}
		return ListValue(e.Files...), true
	case noteField:
		if e.Notes == "" {
			return Value{}, false
		}
		return StringValue(e.Notes), true
	}
	return e.Fields.Get(name)
}

// Set stores the named field value, routing the reserved names to the entry
// attributes.
func (e *Entry) Set(name string, v Value) {
	switch name {
	case fileField:
		if v.Kind == KindList {
			e.Files = v.List
		} else {
			e.Files = []string{v.String()}
		}
	case noteField:
		e.Notes = v.String()
	default:
		e.Fields.Set(name, v)
	}
}

// Delete removes the named field, routing the reserved names to the entry
// attributes. It reports whether anything was removed.
func (e *Entry) Delete(name string) bool {
	switch name {
	case fileField:
		had := len(e.Files) > 0
		e.Files = nil
		return had
	case noteField:
		had := e.Notes != ""
		e.Notes = ""
		return had
	}
	return e.Fields.Delete(name)
}

// Merge folds the other entry into this one. With ours set, existing values
// of this entry win; otherwise the other entry's values overwrite them.
// Associated files are unioned in both cases and the label is unchanged.
func (e *Entry) Merge(other *Entry, ours bool) {
	if other == nil {
		return
	}
	for _, fl := range other.Fields {
		if _, ok := e.Fields.Get(fl.Name); ok && ours {
			continue
		}
		e.Fields.Set(fl.Name, fl.Value)
	}
	seen := map[string]bool{}
	for _, f := range e.Files {
		seen[f] = true
	}
	for _, f := range other.Files {
		if !seen[f] {
			e.Files = append(e.Files, f)
			seen[f] = true
		}
	}
	if e.Notes == "" {
		e.Notes = other.Notes
	}
}

// Clone returns a deep copy of the entry.
func (e *Entry) Clone() *Entry {
	out := &Entry{
		Label:  e.Label,
		Fields: e.Fields.Clone(),
		Notes:  e.Notes,
	}
	if e.Files != nil {
		out.Files = append([]string(nil), e.Files...)
	}
	return out
}

// Equal reports whether two entries carry the same label, fields and paths.
func (e *Entry) Equal(o *Entry) bool {
	if o == nil || e.Label != o.Label || e.Notes != o.Notes {
		return false
	}
	if len(e.Fields) != len(o.Fields) || len(e.Files) != len(o.Files) {
		return false
	}
	for i, fl := range e.Fields {
		if fl.Name != o.Fields[i].Name || !fl.Value.Equal(o.Fields[i].Value) {
			return false
		}
	}
	for i, f := range e.Files {
		if f != o.Files[i] {
			return false
		}
	}
	return true
}

// Validate applies the structural rules for an entry.
func (e *Entry) Validate() error {
	return validation.ValidateStruct(e,
		validation.Field(&e.Label, validation.Required, validation.By(checkLabel)),
		validation.Field(&e.Fields, validation.By(checkFields)),
	)
}

// checkLabel rejects labels containing path separators or control characters.
func checkLabel(v interface{}) error {
	label, _ := v.(string)
	for _, r := range label {
		if r == '/' || r == '\\' || r < 0x20 || r == 0x7f {
			return fmt.Errorf("contains forbidden character %q", r)
		}
	}
	return nil
}

// checkFields rejects unnamed fields and duplicated field names.
func checkFields(v interface{}) error {
	fields, _ := v.(Fields)
	seen := map[string]bool{}
	for _, fl := range fields {
		name := strings.TrimSpace(fl.Name)
		if name == "" {
			return fmt.Errorf("field name must not be empty")
		}
		if seen[name] {
			return fmt.Errorf("duplicate field %q", name)
		}
		seen[name] = true
	}
	return nil
}

// MarshalYAML emits the on-disk shape: {label: {fields..., file, note}}.
func (e *Entry) MarshalYAML() (interface{}, error) {
	inner := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	appendKV := func(key string, val interface{}) error {
		k := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
		v := &yaml.Node{}
		if err := v.Encode(val); err != nil {
			return err
		}
		inner.Content = append(inner.Content, k, v)
		return nil
	}
	for _, fl := range e.Fields {
		if err := appendKV(fl.Name, fl.Value); err != nil {
			return nil, err
		}
	}
	if len(e.Files) > 0 {
		if err := appendKV(fileField, e.Files); err != nil {
			return nil, err
		}
	}
	if e.Notes != "" {
		if err := appendKV(noteField, e.Notes); err != nil {
			return nil, err
		}
	}
	root := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	root.Content = append(root.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Label},
		inner,
	)
	return root, nil
}

// UnmarshalYAML parses the on-disk shape, lifting the reserved "file" and
// "note" keys out of the field mapping.
func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return fmt.Errorf("entry document must be a mapping with a single label key")
	}
	labelNode, body := node.Content[0], node.Content[1]
	if labelNode.Kind != yaml.ScalarNode || strings.TrimSpace(labelNode.Value) == "" {
		return fmt.Errorf("entry label must be a non-empty scalar")
	}
	if body.Kind != yaml.MappingNode {
		return fmt.Errorf("entry %q must map to a field mapping", labelNode.Value)
	}
	e.Label = labelNode.Value
	e.Fields = nil
	e.Files = nil
	e.Notes = ""
	for i := 0; i+1 < len(body.Content); i += 2 {
		k, vn := body.Content[i], body.Content[i+1]
		var v Value
		if err := v.UnmarshalYAML(vn); err != nil {
			return fmt.Errorf("entry %q field %q: %w", e.Label, k.Value, err)
		}
		switch k.Value {
		case fileField:
			if v.Kind == KindList {
				e.Files = v.List
			} else if s := strings.TrimSpace(v.String()); s != "" {
				e.Files = []string{s}
			}
		case noteField:
			e.Notes = v.String()
		default:
			e.Fields = append(e.Fields, Field{Name: k.Value, Value: v})
		}
	}
	return nil
}
