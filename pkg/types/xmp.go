package types

import (
	"fmt"
	"strings"
)

// XMPField is one property written into the rdf:Description of a packet,
// e.g. tiff:Make="Hasselblad".
type XMPField struct {
	Prefix string `json:"prefix"`
	Name   string `json:"name"`
	Value  string `json:"value"`
}

// QualifiedName returns prefix:Name.
func (f XMPField) QualifiedName() string {
	return f.Prefix + ":" + f.Name
}

// XMPUpdate is the caller-supplied metadata written by the rewriter.
type XMPUpdate struct {
	// About is the rdf:about attribute, usually empty.
	About string
	// Namespaces maps extra prefixes to namespace URIs. Well-known prefixes
	// (tiff, exif, xmp, dc, ...) need no entry.
	Namespaces map[string]string
	Fields     []XMPField
}

// IsEmpty reports whether the update carries no fields.
func (u XMPUpdate) IsEmpty() bool {
	return len(u.Fields) == 0
}

// Set replaces the value of prefix:name or appends a new field.
func (u *XMPUpdate) Set(prefix, name, value string) {
	for i := range u.Fields {
		if u.Fields[i].Prefix == prefix && u.Fields[i].Name == name {
			u.Fields[i].Value = value
			return
		}
	}
	u.Fields = append(u.Fields, XMPField{Prefix: prefix, Name: name, Value: value})
}

// SplitQualifiedName splits "prefix:Name" into its parts.
func SplitQualifiedName(qname string) (string, string, error) {
	prefix, name, ok := strings.Cut(strings.TrimSpace(qname), ":")
	if !ok || prefix == "" || name == "" {
		return "", "", fmt.Errorf("field name %q must look like prefix:Name", qname)
	}
	return prefix, name, nil
}

// ParseXMPField parses "prefix:Name=value". The value may be empty and may
// itself contain '='.
func ParseXMPField(s string) (XMPField, error) {
	qname, value, ok := strings.Cut(s, "=")
	if !ok {
		return XMPField{}, fmt.Errorf("field %q must look like prefix:Name=value", s)
	}
	prefix, name, err := SplitQualifiedName(qname)
	if err != nil {
		return XMPField{}, err
	}
	return XMPField{Prefix: prefix, Name: name, Value: value}, nil
}

// ParseXMPFields parses one field per entry, skipping blank lines.
func ParseXMPFields(lines []string) ([]XMPField, error) {
	var fields []XMPField
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		f, err := ParseXMPField(line)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// FormatXMPFields is the inverse of ParseXMPFields.
func FormatXMPFields(fields []XMPField) []string {
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		lines = append(lines, f.QualifiedName()+"="+f.Value)
	}
	return lines
}
