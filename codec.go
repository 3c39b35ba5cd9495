// Serialization codecs. The on-disk bytes are compress(Marshal(document)).

package docstore

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Codec converts the in-memory document to and from bytes. Implementations
// must be safe for concurrent use and must round-trip any JSON-like value
// (nil, bool, number, string, []any, map[string]any).
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSON encodes documents with encoding/json. It is the default codec.
type JSON struct {
	// Indent, when non-empty, is used to pretty-print the output. Useful
	// when the file is inspected by hand together with [NoCompression].
	Indent string
}

func (j JSON) Marshal(v any) ([]byte, error) {
	if j.Indent != "" {
		return json.MarshalIndent(v, "", j.Indent)
	}
	return json.Marshal(v)
}

func (JSON) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// YAML encodes documents with gopkg.in/yaml.v3. Documents written by one
// codec are not readable by the other; pick one per file.
type YAML struct{}

func (YAML) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

func (YAML) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}
