// Package uri parses and serializes the typed wire-format URIs the committee
// protocol passes around: input locations, output destinations and storage
// keys. Grammar and scheme set are fixed by the request/response wire
// format; unknown strings that don't match a typed scheme fall back to a
// plain URL for InputUri, or are rejected for the others.
package uri

import (
	"fmt"
	"net/url"
	"strings"
)

// InputUriKind discriminates the variants of InputUri.
type InputUriKind int

const (
	InputIota InputUriKind = iota
	InputLocal
	InputLiteral
	InputURL
)

// InputUri is a parsed `iota:message:<id>` | `storage:local:<key>` |
// `literal:string:<bytes>` | <RFC-3986 URL>.
type InputUri struct {
	Kind    InputUriKind
	IotaID  string
	Key     string
	Literal string
	URL     *url.URL
}

// ParseInputUri parses the wire-format string of an InputUri.
func ParseInputUri(s string) (InputUri, error) {
	if scheme, sub, rest, ok := splitTyped(s); ok {
		switch {
		case scheme == "iota" && sub == "message":
			return InputUri{Kind: InputIota, IotaID: rest}, nil
		case scheme == "storage" && sub == "local":
			return InputUri{Kind: InputLocal, Key: rest}, nil
		case scheme == "literal" && sub == "string":
			return InputUri{Kind: InputLiteral, Literal: rest}, nil
		}
	}

	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" {
		return InputUri{}, fmt.Errorf("uri: %q is not a valid input uri", s)
	}
	return InputUri{Kind: InputURL, URL: u}, nil
}

// String renders the canonical wire form.
func (u InputUri) String() string {
	switch u.Kind {
	case InputIota:
		return "iota:message:" + u.IotaID
	case InputLocal:
		return "storage:local:" + u.Key
	case InputLiteral:
		return "literal:string:" + u.Literal
	case InputURL:
		return u.URL.String()
	default:
		return ""
	}
}

// OutputUriKind discriminates the variants of OutputUri.
type OutputUriKind int

const (
	OutputNone OutputUriKind = iota
	OutputIota
	OutputLocal
)

// OutputUri is a parsed `none` | `iota:index:<tag>` | `storage:local:<key>`.
type OutputUri struct {
	Kind OutputUriKind
	Tag  string
	Key  string
}

// ParseOutputUri parses the wire-format string of an OutputUri.
func ParseOutputUri(s string) (OutputUri, error) {
	if s == "" || s == "none" {
		return OutputUri{Kind: OutputNone}, nil
	}

	if scheme, sub, rest, ok := splitTyped(s); ok {
		switch {
		case scheme == "iota" && sub == "index":
			return OutputUri{Kind: OutputIota, Tag: rest}, nil
		case scheme == "storage" && sub == "local":
			return OutputUri{Kind: OutputLocal, Key: rest}, nil
		}
	}

	return OutputUri{}, fmt.Errorf("uri: %q is not a valid output uri", s)
}

// String renders the canonical wire form.
func (u OutputUri) String() string {
	switch u.Kind {
	case OutputIota:
		return "iota:index:" + u.Tag
	case OutputLocal:
		return "storage:local:" + u.Key
	default:
		return "none"
	}
}

// StorageUriKind discriminates the variants of StorageUri.
type StorageUriKind int

const (
	StorageNone StorageUriKind = iota
	StorageLocal
)

// StorageUri is a parsed `none` | `storage:local:<key>`.
type StorageUri struct {
	Kind StorageUriKind
	Key  string
}

// ParseStorageUri parses the wire-format string of a StorageUri.
func ParseStorageUri(s string) (StorageUri, error) {
	if s == "" || s == "none" {
		return StorageUri{Kind: StorageNone}, nil
	}

	if scheme, sub, rest, ok := splitTyped(s); ok && scheme == "storage" && sub == "local" {
		return StorageUri{Kind: StorageLocal, Key: rest}, nil
	}

	return StorageUri{}, fmt.Errorf("uri: %q is not a valid storage uri", s)
}

// String renders the canonical wire form.
func (u StorageUri) String() string {
	if u.Kind == StorageLocal {
		return "storage:local:" + u.Key
	}
	return "none"
}

// splitTyped splits "scheme:sub:rest" into its three parts, rejoining any
// extra colons into rest so that literal:string: payloads keep embedded
// colons intact.
func splitTyped(s string) (scheme, sub, rest string, ok bool) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}
