package domain

import (
	"bytes"
	"encoding/json"
	"iter"
	"slices"

	"github.com/mailru/easyjson/jlexer"
	"github.com/mailru/easyjson/jwriter"
	"go.trai.ch/zerr"
)

const manifestIndent = "  "

// DependencyMap is a dependency section that keeps the declaration order of its entries.
type DependencyMap struct {
	names []string
	specs map[string]string
}

// NewDependencyMap creates an empty DependencyMap.
func NewDependencyMap() *DependencyMap {
	return &DependencyMap{specs: make(map[string]string)}
}

// Get returns the specifier declared for name.
func (d *DependencyMap) Get(name string) (string, bool) {
	if d == nil {
		return "", false
	}
	spec, ok := d.specs[name]
	return spec, ok
}

// Set declares or replaces the specifier for name. New names are appended.
func (d *DependencyMap) Set(name, spec string) {
	if _, ok := d.specs[name]; !ok {
		d.names = append(d.names, name)
	}
	d.specs[name] = spec
}

// Len returns the number of entries.
func (d *DependencyMap) Len() int {
	if d == nil {
		return 0
	}
	return len(d.names)
}

// All iterates over the entries in declaration order.
func (d *DependencyMap) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		if d == nil {
			return
		}
		for _, name := range d.names {
			if !yield(name, d.specs[name]) {
				return
			}
		}
	}
}

// MarshalEasyJSON writes the section as a JSON object in declaration order.
func (d *DependencyMap) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawByte('{')
	for i, name := range d.names {
		if i > 0 {
			w.RawByte(',')
		}
		w.String(name)
		w.RawByte(':')
		w.String(d.specs[name])
	}
	w.RawByte('}')
}

// UnmarshalEasyJSON reads a JSON object of string specifiers.
func (d *DependencyMap) UnmarshalEasyJSON(in *jlexer.Lexer) {
	if d.specs == nil {
		d.specs = make(map[string]string)
	}
	in.Delim('{')
	for !in.IsDelim('}') {
		name := in.String()
		in.WantColon()
		d.Set(name, in.String())
		in.WantComma()
	}
	in.Delim('}')
}

// Manifest is a parsed package.json. Top-level keys keep their order and every value
// except the dependency sections is carried through as raw JSON.
type Manifest struct {
	keys     []string
	raw      map[string][]byte
	sections map[string]*DependencyMap
}

// ParseManifest decodes a package manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	m := &Manifest{}
	in := jlexer.Lexer{Data: data}
	m.UnmarshalEasyJSON(&in)
	in.Consumed()
	if err := in.Error(); err != nil {
		return nil, zerr.Wrap(err, "invalid manifest JSON")
	}
	return m, nil
}

// UnmarshalEasyJSON reads the top-level manifest object.
func (m *Manifest) UnmarshalEasyJSON(in *jlexer.Lexer) {
	m.keys = nil
	m.raw = make(map[string][]byte)
	m.sections = make(map[string]*DependencyMap)

	in.Delim('{')
	for !in.IsDelim('}') {
		key := in.String()
		in.WantColon()
		if !slices.Contains(m.keys, key) {
			m.keys = append(m.keys, key)
		}
		delete(m.raw, key)
		delete(m.sections, key)

		if isSectionKey(key) && in.IsDelim('{') {
			section := NewDependencyMap()
			section.UnmarshalEasyJSON(in)
			m.sections[key] = section
		} else {
			m.raw[key] = bytes.Clone(in.Raw())
		}
		in.WantComma()
	}
	in.Delim('}')
}

// MarshalEasyJSON writes the manifest as a compact JSON object in key order.
func (m *Manifest) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawByte('{')
	for i, key := range m.keys {
		if i > 0 {
			w.RawByte(',')
		}
		w.String(key)
		w.RawByte(':')
		if section, ok := m.sections[key]; ok {
			section.MarshalEasyJSON(w)
			continue
		}
		w.Raw(m.raw[key], nil)
	}
	w.RawByte('}')
}

// Encode returns the manifest as JSON indented with two spaces.
func (m *Manifest) Encode() ([]byte, error) {
	w := jwriter.Writer{NoEscapeHTML: true}
	m.MarshalEasyJSON(&w)
	compact, err := w.BuildBytes()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to encode manifest")
	}

	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", manifestIndent); err != nil {
		return nil, zerr.Wrap(err, "failed to indent manifest")
	}
	return out.Bytes(), nil
}

// Name returns the package name, or "" when absent.
func (m *Manifest) Name() string {
	return m.stringField("name")
}

// Version returns the package version, or "" when absent.
func (m *Manifest) Version() string {
	return m.stringField("version")
}

// HasScript reports whether the manifest declares a non-empty lifecycle script.
func (m *Manifest) HasScript(name string) bool {
	raw, ok := m.raw["scripts"]
	if !ok {
		return false
	}

	found := false
	in := jlexer.Lexer{Data: raw}
	in.Delim('{')
	for !in.IsDelim('}') {
		key := in.String()
		in.WantColon()
		if key == name && !in.IsNull() {
			found = in.String() != ""
		} else {
			in.SkipRecursive()
		}
		in.WantComma()
	}
	in.Delim('}')
	return found && in.Error() == nil
}

// Section returns the native dependency section, or nil when the manifest has none.
func (m *Manifest) Section(kind SectionKind) *DependencyMap {
	return m.sections[kind.Key()]
}

// PackSection returns the dedicated section of plain paths to pack, or nil.
func (m *Manifest) PackSection(kind SectionKind) *DependencyMap {
	return m.sections[kind.PackKey()]
}

// SetDependency points a native section entry at spec, creating the section if needed.
func (m *Manifest) SetDependency(kind SectionKind, name, spec string) {
	key := kind.Key()
	section, ok := m.sections[key]
	if !ok {
		section = NewDependencyMap()
		m.sections[key] = section
		delete(m.raw, key)
		if !slices.Contains(m.keys, key) {
			m.keys = append(m.keys, key)
		}
	}
	section.Set(name, spec)
}

// PackedDependencies lists the dependencies of a section that have to be packed: marked
// native entries in declaration order, followed by the entries of the dedicated section.
func (m *Manifest) PackedDependencies(kind SectionKind) ([]Dependency, error) {
	var deps []Dependency
	seen := make(map[string]struct{})

	for name, spec := range m.Section(kind).All() {
		path, marked := ParseSpecifier(spec)
		if !marked {
			continue
		}
		if path == "" {
			return nil, zerr.With(zerr.Wrap(ErrInvalidSpecifier, "empty dependency path"), "dependency", name)
		}
		deps = append(deps, Dependency{Name: name, Path: path})
		seen[name] = struct{}{}
	}

	for name, path := range m.PackSection(kind).All() {
		if _, dup := seen[name]; dup {
			continue
		}
		if path == "" {
			return nil, zerr.With(zerr.Wrap(ErrInvalidSpecifier, "empty dependency path"), "dependency", name)
		}
		deps = append(deps, Dependency{Name: name, Path: path})
		seen[name] = struct{}{}
	}

	return deps, nil
}

func (m *Manifest) stringField(key string) string {
	raw, ok := m.raw[key]
	if !ok {
		return ""
	}
	in := jlexer.Lexer{Data: raw}
	s := in.String()
	if in.Error() != nil {
		return ""
	}
	return s
}

func isSectionKey(key string) bool {
	for _, kind := range []SectionKind{SectionRuntime, SectionDev} {
		if key == kind.Key() || key == kind.PackKey() {
			return true
		}
	}
	return false
}
