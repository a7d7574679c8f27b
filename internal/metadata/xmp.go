package metadata

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	serr "imgmeta/internal/errors"
	"imgmeta/pkg/types"
)

// KnownNamespaces maps the prefixes an update may use without declaring them.
var KnownNamespaces = map[string]string{
	"tiff":      "http://ns.adobe.com/tiff/1.0/",
	"exif":      "http://ns.adobe.com/exif/1.0/",
	"xmp":       "http://ns.adobe.com/xap/1.0/",
	"xmpMM":     "http://ns.adobe.com/xap/1.0/mm/",
	"dc":        "http://purl.org/dc/elements/1.1/",
	"crs":       "http://ns.adobe.com/camera-raw-settings/1.0/",
	"photoshop": "http://ns.adobe.com/photoshop/1.0/",
	"GPano":     "http://ns.google.com/photos/1.0/panorama/",
	"drone-dji": "http://www.dji.com/drone-dji/1.0/",
}

const (
	rdfNamespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	xpacketID    = "W5M0MpCehiHzreSzNTczkc9d"
)

var xmlName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.\-]*$`)

// reserved prefixes are emitted by the envelope itself.
var reservedPrefixes = map[string]bool{"x": true, "rdf": true, "xml": true, "xmlns": true}

// EncodeXMP renders update as a complete xpacket. Fields become attributes
// of a single rdf:Description in the order given; only the namespaces that
// are actually used get declared.
func EncodeXMP(update types.XMPUpdate) ([]byte, error) {
	if update.IsEmpty() {
		return nil, serr.NewMetadataError("no XMP fields to write", "", "rewrite", serr.InvalidXMPField, nil)
	}

	used := map[string]string{}
	seen := map[string]bool{}
	for _, f := range update.Fields {
		if !xmlName.MatchString(f.Prefix) || !xmlName.MatchString(f.Name) || reservedPrefixes[f.Prefix] {
			return nil, invalidField(f, "is not a valid XML name")
		}
		if seen[f.QualifiedName()] {
			return nil, invalidField(f, "is set twice")
		}
		seen[f.QualifiedName()] = true

		uri, ok := update.Namespaces[f.Prefix]
		if !ok {
			uri, ok = KnownNamespaces[f.Prefix]
		}
		if !ok || uri == "" {
			return nil, invalidField(f, "uses an unknown namespace prefix")
		}
		used[f.Prefix] = uri
	}

	prefixes := make([]string, 0, len(used))
	for p := range used {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)

	var buf bytes.Buffer
	buf.WriteString("<?xpacket begin=\"\uFEFF\" id=\"" + xpacketID + "\"?>\n")
	buf.WriteString("<x:xmpmeta xmlns:x=\"adobe:ns:meta/\">\n")
	buf.WriteString(" <rdf:RDF xmlns:rdf=\"" + rdfNamespace + "\">\n")
	buf.WriteString("  <rdf:Description rdf:about=\"")
	if err := writeAttr(&buf, update.About); err != nil {
		return nil, err
	}
	buf.WriteString("\"")
	for _, p := range prefixes {
		buf.WriteString("\n    xmlns:" + p + "=\"")
		if err := writeAttr(&buf, used[p]); err != nil {
			return nil, err
		}
		buf.WriteString("\"")
	}
	for _, f := range update.Fields {
		buf.WriteString("\n    " + f.QualifiedName() + "=\"")
		if err := writeAttr(&buf, f.Value); err != nil {
			return nil, err
		}
		buf.WriteString("\"")
	}
	buf.WriteString("/>\n")
	buf.WriteString(" </rdf:RDF>\n")
	buf.WriteString("</x:xmpmeta>\n")
	buf.WriteString("<?xpacket end=\"w\"?>")
	return buf.Bytes(), nil
}

func writeAttr(buf *bytes.Buffer, s string) error {
	return xml.EscapeText(buf, []byte(s))
}

func invalidField(f types.XMPField, problem string) error {
	return serr.NewMetadataError(fmt.Sprintf("field %q %s", f.QualifiedName(), problem), "", "rewrite", serr.InvalidXMPField, nil)
}

// DescriptionFields returns the properties of every rdf:Description in
// packet, in document order. Properties may be attributes or child
// elements; the rdf:li items of a Bag, Seq or Alt are joined with ", ".
// Namespace declarations and rdf attributes are skipped.
func DescriptionFields(packet []byte) ([]types.XMPField, error) {
	dec := xml.NewDecoder(bytes.NewReader(packet))
	prefixOf := map[string]string{}
	var fields []types.XMPField
	malformed := func(err error) error {
		return serr.NewMetadataError("malformed XMP packet", "", "read", serr.MetadataDecodeFailed, err)
	}
	for {
		tok, err := dec.Token()
		if err != nil {
			if err == io.EOF {
				return fields, nil
			}
			return fields, malformed(err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		declare(prefixOf, start)
		if start.Name.Space != rdfNamespace || start.Name.Local != "Description" {
			continue
		}
		for _, a := range start.Attr {
			if a.Name.Space == "" || a.Name.Space == "xmlns" || a.Name.Space == rdfNamespace {
				continue
			}
			fields = append(fields, types.XMPField{Prefix: prefixFor(prefixOf, a.Name.Space), Name: a.Name.Local, Value: a.Value})
		}

		for done := false; !done; {
			tok, err := dec.Token()
			if err != nil {
				return fields, malformed(err)
			}
			switch t := tok.(type) {
			case xml.EndElement:
				done = true
			case xml.StartElement:
				declare(prefixOf, t)
				value, err := propertyValue(dec, prefixOf)
				if err != nil {
					return fields, malformed(err)
				}
				fields = append(fields, types.XMPField{Prefix: prefixFor(prefixOf, t.Name.Space), Name: t.Name.Local, Value: value})
			}
		}
	}
}

func declare(prefixOf map[string]string, start xml.StartElement) {
	for _, a := range start.Attr {
		if a.Name.Space == "xmlns" {
			prefixOf[a.Value] = a.Name.Local
		}
	}
}

func prefixFor(prefixOf map[string]string, space string) string {
	if prefix, ok := prefixOf[space]; ok {
		return prefix
	}
	return space
}

// propertyValue consumes a property element up to its end tag.
func propertyValue(dec *xml.Decoder, prefixOf map[string]string) (string, error) {
	var text, item strings.Builder
	var items []string
	inItem := false
	for depth := 1; depth > 0; {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			declare(prefixOf, t)
			if t.Name.Space == rdfNamespace && t.Name.Local == "li" {
				inItem = true
				item.Reset()
			}
		case xml.EndElement:
			depth--
			if inItem && t.Name.Space == rdfNamespace && t.Name.Local == "li" {
				items = append(items, strings.TrimSpace(item.String()))
				inItem = false
			}
		case xml.CharData:
			if inItem {
				item.Write(t)
			} else {
				text.Write(t)
			}
		}
	}
	if len(items) > 0 {
		return strings.Join(items, ", "), nil
	}
	return strings.TrimSpace(text.String()), nil
}
