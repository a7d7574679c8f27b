package metadata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serr "imgmeta/internal/errors"
	"imgmeta/pkg/types"
)

func TestEncodeXMP(t *testing.T) {
	update := types.XMPUpdate{
		Fields: []types.XMPField{
			{Prefix: "tiff", Name: "Make", Value: "Hasselblad"},
			{Prefix: "drone-dji", Name: "GimbalYawDegree", Value: "-12.5"},
			{Prefix: "dc", Name: "title", Value: `Fish & "chips" <lunch>`},
		},
	}

	packet, err := EncodeXMP(update)
	require.NoError(t, err)
	s := string(packet)

	assert.True(t, strings.HasPrefix(s, "<?xpacket begin=\"\uFEFF\" id=\"W5M0MpCehiHzreSzNTczkc9d\"?>"))
	assert.True(t, strings.HasSuffix(s, `<?xpacket end="w"?>`))
	assert.Contains(t, s, `xmlns:tiff="http://ns.adobe.com/tiff/1.0/"`)
	assert.Contains(t, s, `xmlns:drone-dji="http://www.dji.com/drone-dji/1.0/"`)
	assert.NotContains(t, s, "xmlns:exif=", "unused namespaces are not declared")
	assert.Contains(t, s, `tiff:Make="Hasselblad"`)
	assert.NotContains(t, s, `"chips"`)

	assert.Less(t, strings.Index(s, "tiff:Make="), strings.Index(s, "drone-dji:GimbalYawDegree="))
	assert.Less(t, strings.Index(s, "drone-dji:GimbalYawDegree="), strings.Index(s, "dc:title="))

	fields, err := DescriptionFields(packet)
	require.NoError(t, err)
	assert.Equal(t, update.Fields, fields)
}

func TestEncodeXMPCustomNamespace(t *testing.T) {
	update := types.XMPUpdate{
		About:      "uuid:1",
		Namespaces: map[string]string{"acme": "http://example.com/acme/1.0/"},
		Fields:     []types.XMPField{{Prefix: "acme", Name: "Batch", Value: "7"}},
	}
	packet, err := EncodeXMP(update)
	require.NoError(t, err)
	assert.Contains(t, string(packet), `rdf:about="uuid:1"`)
	assert.Contains(t, string(packet), `xmlns:acme="http://example.com/acme/1.0/"`)
}

func TestEncodeXMPInvalid(t *testing.T) {
	tests := []struct {
		name   string
		fields []types.XMPField
	}{
		{name: "empty", fields: nil},
		{name: "unknown prefix", fields: []types.XMPField{{Prefix: "nope", Name: "A", Value: "1"}}},
		{name: "bad name", fields: []types.XMPField{{Prefix: "tiff", Name: "Ma ke", Value: "1"}}},
		{name: "reserved prefix", fields: []types.XMPField{{Prefix: "rdf", Name: "about", Value: "1"}}},
		{name: "duplicate", fields: []types.XMPField{
			{Prefix: "tiff", Name: "Make", Value: "a"},
			{Prefix: "tiff", Name: "Make", Value: "b"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncodeXMP(types.XMPUpdate{Fields: tt.fields})
			require.Error(t, err)
			assert.Equal(t, serr.InvalidXMPField, serr.KindOf(err))
		})
	}
}

func TestDescriptionFieldsMalformed(t *testing.T) {
	_, err := DescriptionFields([]byte("<x:xmpmeta><rdf:RDF>"))
	require.Error(t, err)
	assert.Equal(t, serr.MetadataDecodeFailed, serr.KindOf(err))
}

func TestDescriptionFieldsElements(t *testing.T) {
	packet := `<x:xmpmeta xmlns:x="adobe:ns:meta/">
 <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
  <rdf:Description rdf:about="" xmlns:tiff="http://ns.adobe.com/tiff/1.0/" tiff:Make="DJI">
   <tiff:Model>FC3411</tiff:Model>
  </rdf:Description>
  <rdf:Description rdf:about="" xmlns:dc="http://purl.org/dc/elements/1.1/">
   <dc:creator>
    <rdf:Seq>
     <rdf:li>me</rdf:li>
     <rdf:li>you</rdf:li>
    </rdf:Seq>
   </dc:creator>
   <dc:title>
    <rdf:Alt>
     <rdf:li xml:lang="x-default">Harbour &amp; boats</rdf:li>
    </rdf:Alt>
   </dc:title>
  </rdf:Description>
 </rdf:RDF>
</x:xmpmeta>`

	fields, err := DescriptionFields([]byte(packet))
	require.NoError(t, err)
	assert.Equal(t, []types.XMPField{
		{Prefix: "tiff", Name: "Make", Value: "DJI"},
		{Prefix: "tiff", Name: "Model", Value: "FC3411"},
		{Prefix: "dc", Name: "creator", Value: "me, you"},
		{Prefix: "dc", Name: "title", Value: "Harbour & boats"},
	}, fields)
}
