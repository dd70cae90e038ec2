package metadata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const trackProto = `
syntax = "proto3";

package music;

message Track {
  string title = 1;
  optional uint64 duration = 2;
  repeated string tags = 3;
  Album album = 4;
  map<string, string> attrs = 5;
  oneof source {
    string url = 6;
    string path = 7;
  }
}

message Album {
  string name = 1;
}
`

func TestScanProto(t *testing.T) {
	table, err := ScanProto(strings.NewReader(trackProto), "track.proto")
	require.NoError(t, err)

	tests := []struct {
		field    string
		optional bool
	}{
		// proto3 plain scalars have no presence tracking.
		{"title", false},
		// The optional keyword is explicit presence.
		{"duration", true},
		// Repeated communicates absence via emptiness.
		{"tags", false},
		// Message fields are always nullable on the wire.
		{"album", true},
		{"attrs", false},
		// Oneof members are present only when selected.
		{"url", true},
		{"path", true},
	}

	for _, tt := range tests {
		optional, ok := table.FieldOptionality("Track", tt.field)
		require.True(t, ok, "field %s not scanned", tt.field)
		assert.Equal(t, tt.optional, optional, "field %s", tt.field)
	}

	optional, ok := table.FieldOptionality("Album", "name")
	require.True(t, ok)
	assert.False(t, optional)
}

func TestScanProtoMalformed(t *testing.T) {
	_, err := ScanProto(strings.NewReader("message {"), "broken.proto")
	assert.Error(t, err)
}
