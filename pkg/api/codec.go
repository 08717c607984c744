// Package api defines the watchtogether RPC surface: message types, procedure
// names, and Connect handler and client constructors.
//
// Messages are plain Go structs carried as JSON. Every handler and client built
// here installs Codec, which replaces Connect's protobuf-backed "json" codec.
package api

import (
	"github.com/goccy/go-json"
)

// PackageName prefixes every service name.
const PackageName = "watchtogether.v1"

// Codec marshals messages with goccy/go-json under the "json" name, so
// requests use the application/json content type.
type Codec struct{}

// Name implements connect.Codec.
func (Codec) Name() string { return "json" }

// Marshal implements connect.Codec.
func (Codec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal implements connect.Codec.
func (Codec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
