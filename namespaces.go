package imagemeta

import (
	"github.com/simonhull/imagemeta/internal/codes"
	"github.com/simonhull/imagemeta/internal/schema"
	"github.com/simonhull/imagemeta/internal/types"
)

// Namespace is one entry of the XMP namespace registry.
type Namespace = types.Namespace

// RegisterNamespace makes prefix usable in XMP keys ("Xmp.<prefix>.Name")
// for properties of the namespace uri. It fails with KindInvalidKey when
// prefix is already taken.
func RegisterNamespace(uri, prefix string) error {
	const op = "RegisterNamespace"
	// A failed lookup means the prefix is free.
	if _, err := schema.Namespaces.NS(prefix); err == nil {
		return codes.New(op, codes.ExistingPrefix, prefix)
	}
	if err := schema.Namespaces.Register(uri, prefix); err != nil {
		return codes.Classify(op, err)
	}
	return nil
}

// UnregisterNamespace removes the custom namespace uri. It fails with
// KindInvalidKey when uri is not registered or is builtin.
func UnregisterNamespace(uri string) error {
	const op = "UnregisterNamespace"
	if schema.Namespaces.Prefix(uri) == "" {
		return codes.New(op, codes.NotRegistered, uri)
	}
	schema.Namespaces.Unregister(uri)
	if schema.Namespaces.Prefix(uri) != "" {
		return codes.New(op, codes.BuiltinNamespace, uri)
	}
	return nil
}

// UnregisterNamespaces removes every custom namespace, including the ones
// registered by Init.
func UnregisterNamespaces() {
	schema.Namespaces.UnregisterAll()
}

// Namespaces lists the registry sorted by prefix.
func Namespaces() []Namespace {
	return schema.Namespaces.List()
}

// NamespaceURI returns the URI registered for prefix.
func NamespaceURI(prefix string) (string, error) {
	uri, err := schema.Namespaces.NS(prefix)
	if err != nil {
		return "", codes.Classify("NamespaceURI", err)
	}
	return uri, nil
}
