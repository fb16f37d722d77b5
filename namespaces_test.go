package imagemeta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testNS = "https://example.com/ns/studio/1.0/"

func TestRegisterNamespace(t *testing.T) {
	require.NoError(t, RegisterNamespace(testNS, "studio"))
	t.Cleanup(func() { _ = UnregisterNamespace(testNS) })

	uri, err := NamespaceURI("studio")
	require.NoError(t, err)
	assert.Equal(t, testNS, uri)
	assert.Contains(t, Namespaces(), Namespace{Prefix: "studio", URI: testNS})

	// Properties of the new namespace round trip through a file.
	data := fixture(t, func(t testing.TB, doc *Document) {
		setXmpText(t, doc, "Xmp.studio.Shoot", "north")
	})
	doc := readBytes(t, data)
	tag, err := doc.XmpTag("Xmp.studio.Shoot")
	require.NoError(t, err)
	text, err := tag.TextValue()
	require.NoError(t, err)
	assert.Equal(t, "north", text)
}

func TestRegisterNamespace_Errors(t *testing.T) {
	tests := []struct {
		name   string
		uri    string
		prefix string
	}{
		{"builtin prefix", "https://example.com/other/", "dc"},
		{"own prefix", "https://example.com/other/", OwnNamespacePrefix},
		{"empty prefix", "https://example.com/other/", ""},
		{"dotted prefix", "https://example.com/other/", "a.b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RegisterNamespace(tt.uri, tt.prefix)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidKey)
		})
	}

	uri, err := NamespaceURI("dc")
	require.NoError(t, err)
	assert.Equal(t, "http://purl.org/dc/elements/1.1/", uri)
}

func TestUnregisterNamespace(t *testing.T) {
	require.NoError(t, RegisterNamespace(testNS, "studio"))
	require.NoError(t, UnregisterNamespace(testNS))

	_, err := NamespaceURI("studio")
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = NewXmpTag("Xmp.studio.Shoot")
	assert.ErrorIs(t, err, ErrInvalidKey)

	assert.ErrorIs(t, UnregisterNamespace(testNS), ErrInvalidKey)
	assert.ErrorIs(t, UnregisterNamespace("http://purl.org/dc/elements/1.1/"), ErrInvalidKey)

	_, err = NamespaceURI("dc")
	assert.NoError(t, err)
}

func TestOwnNamespace(t *testing.T) {
	uri, err := NamespaceURI(OwnNamespacePrefix)
	require.NoError(t, err)
	assert.Equal(t, OwnNamespaceURI, uri)

	tag, err := NewXmpTag("Xmp." + OwnNamespacePrefix + ".Source")
	require.NoError(t, err)
	require.NoError(t, tag.SetTextValue("scanner"))
	assert.False(t, tag.Attached())
}
