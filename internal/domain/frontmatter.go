package domain

import "sort"

// Value holds a frontmatter entry, either a scalar string or an ordered list.
type Value struct {
	Text   string
	List   []string
	isList bool
}

// Scalar builds a scalar Value.
func Scalar(text string) Value {
	return Value{Text: text}
}

// List builds a list Value. The input slice is copied.
func List(items ...string) Value {
	return Value{List: append([]string{}, items...), isList: true}
}

// IsList reports whether the value was declared as a list.
func (v Value) IsList() bool {
	return v.isList
}

// FrontMatter maps metadata keys to values.
type FrontMatter map[string]Value

// String returns the scalar value stored under key.
func (fm FrontMatter) String(key string) (string, bool) {
	value, ok := fm[key]
	if !ok || value.isList {
		return "", false
	}
	return value.Text, true
}

// Get returns the scalar under key, or an empty string.
func (fm FrontMatter) Get(key string) string {
	text, _ := fm.String(key)
	return text
}

// Strings returns a copy of the list stored under key.
func (fm FrontMatter) Strings(key string) ([]string, bool) {
	value, ok := fm[key]
	if !ok || !value.isList {
		return nil, false
	}
	return append([]string(nil), value.List...), true
}

// Title returns the title, falling back to DefaultTitle.
func (fm FrontMatter) Title() string {
	if title := fm.Get("title"); title != "" {
		return title
	}
	return DefaultTitle
}

// Keys returns the keys sorted lexicographically.
func (fm FrontMatter) Keys() []string {
	keys := make([]string, 0, len(fm))
	for key := range fm {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy.
func (fm FrontMatter) Clone() FrontMatter {
	out := make(FrontMatter, len(fm))
	for key, value := range fm {
		if value.isList {
			out[key] = List(value.List...)
			continue
		}
		out[key] = value
	}
	return out
}
