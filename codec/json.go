package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// Metadata records and manifests are map-like structures for which JSON is
// stable, portable and inspectable with standard tooling. Implement Codec to
// substitute a custom encoding where a store supports it.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Default is the default codec used by the library.
var Default Codec = JSON{}
