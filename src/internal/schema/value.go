package schema

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind discriminates the shapes a field value can take.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindList
	KindPeople
)

// Person is a structured sub-record for author-like fields.
type Person struct {
	Family string `yaml:"family" json:"family"`
	Given  string `yaml:"given,omitempty" json:"given,omitempty"`
}

// String renders the person as "Family, Given" (or just the non-empty part).
func (p Person) String() string {
	fam := strings.TrimSpace(p.Family)
	giv := strings.TrimSpace(p.Given)
	switch {
	case fam != "" && giv != "":
		return fam + ", " + giv
	case fam != "":
		return fam
	default:
		return giv
	}
}

// Value is a single field value: a scalar string, an integer, an ordered list
// of strings, or an ordered list of people.
type Value struct {
	Kind   Kind
	Str    string
	Int    int
	List   []string
	People []Person
}

// StringValue returns a scalar string value.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// IntValue returns an integer value.
func IntValue(i int) Value { return Value{Kind: KindInt, Int: i} }

// ListValue returns an ordered list-of-strings value.
func ListValue(items ...string) Value { return Value{Kind: KindList, List: items} }

// PeopleValue returns an ordered list-of-people value.
func PeopleValue(people ...Person) Value { return Value{Kind: KindPeople, People: people} }

// String renders the value for display and for template substitution.
func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.Itoa(v.Int)
	case KindList:
		return strings.Join(v.List, ", ")
	case KindPeople:
		parts := make([]string, 0, len(v.People))
		for _, p := range v.People {
			parts = append(parts, p.String())
		}
		return strings.Join(parts, " and ")
	default:
		return v.Str
	}
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindInt:
		return v.Int == o.Int
	case KindList:
		if len(v.List) != len(o.List) {
			return false
		}
		for i := range v.List {
			if v.List[i] != o.List[i] {
				return false
			}
		}
		return true
	case KindPeople:
		if len(v.People) != len(o.People) {
			return false
		}
		for i := range v.People {
			if v.People[i] != o.People[i] {
				return false
			}
		}
		return true
	default:
		return v.Str == o.Str
	}
}

// MarshalYAML emits the natural YAML shape for the value kind.
func (v Value) MarshalYAML() (interface{}, error) {
	switch v.Kind {
	case KindInt:
		return v.Int, nil
	case KindList:
		return v.List, nil
	case KindPeople:
		return v.People, nil
	default:
		return v.Str, nil
	}
}

// UnmarshalYAML accepts scalars (string or int), sequences of strings,
// sequences of person mappings, or a single person mapping.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node == nil {
		*v = StringValue("")
		return nil
	}
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!int" {
			i, err := strconv.Atoi(node.Value)
			if err != nil {
				return fmt.Errorf("invalid integer %q: %w", node.Value, err)
			}
			*v = IntValue(i)
			return nil
		}
		*v = StringValue(node.Value)
		return nil
	case yaml.SequenceNode:
		// A sequence of mappings is a people list; anything else is coerced
		// to a list of strings.
		if len(node.Content) > 0 && node.Content[0].Kind == yaml.MappingNode {
			var people []Person
			for _, n := range node.Content {
				var p Person
				if err := n.Decode(&p); err != nil {
					return err
				}
				if strings.TrimSpace(p.Family) == "" && strings.TrimSpace(p.Given) == "" {
					continue
				}
				people = append(people, p)
			}
			*v = PeopleValue(people...)
			return nil
		}
		var items []string
		for _, n := range node.Content {
			if s := strings.TrimSpace(n.Value); s != "" {
				items = append(items, n.Value)
			}
		}
		*v = ListValue(items...)
		return nil
	case yaml.MappingNode:
		var p Person
		if err := node.Decode(&p); err != nil {
			return err
		}
		*v = PeopleValue(p)
		return nil
	default:
		*v = StringValue("")
		return nil
	}
}

// Field is one named field of an entry.
type Field struct {
	Name  string
	Value Value
}

// Fields is the ordered field mapping of an entry.
type Fields []Field

// Get returns the value stored under name.
func (f Fields) Get(name string) (Value, bool) {
	for _, fl := range f {
		if fl.Name == name {
			return fl.Value, true
		}
	}
	return Value{}, false
}

// Set replaces the value under name in place, or appends a new field.
func (f *Fields) Set(name string, v Value) {
	for i := range *f {
		if (*f)[i].Name == name {
			(*f)[i].Value = v
			return
		}
	}
	*f = append(*f, Field{Name: name, Value: v})
}

// Delete removes the field with the given name. It reports whether a field
// was actually removed.
func (f *Fields) Delete(name string) bool {
	for i := range *f {
		if (*f)[i].Name == name {
			*f = append((*f)[:i], (*f)[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the fields.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for i, fl := range f {
		v := fl.Value
		if v.List != nil {
			v.List = append([]string(nil), v.List...)
		}
		if v.People != nil {
			v.People = append([]Person(nil), v.People...)
		}
		out[i] = Field{Name: fl.Name, Value: v}
	}
	return out
}
