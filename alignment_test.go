package gamsort_test

import (
	"bytes"
	"testing"

	"github.com/lanrat/gamsort"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestAlignmentRoundTrip(t *testing.T) {
	a := aln("read-1", pos(12, true, 3), pos(1<<40, false, 0))
	a.Quality = []byte{30, 31, 32, 33}
	a.MappingQuality = 60
	a.Score = -4
	a.Path.Name = "path"
	a.Path.Mappings[0].Position.Name = "chr2"
	a.Path.Mappings[1].Edits = append(a.Path.Mappings[1].Edits, gamsort.Edit{FromLength: 0, ToLength: 2, Sequence: "GG"})

	raw, err := gamsort.MarshalAlignment(a)
	require.NoError(t, err)

	got, err := gamsort.UnmarshalAlignment(raw)
	require.NoError(t, err)
	assert.Equal(t, a, got)
	assert.Equal(t, a.SortKey(), got.SortKey())
}

func TestAlignmentRoundTripEmpty(t *testing.T) {
	raw, err := gamsort.MarshalAlignment(gamsort.Alignment{})
	require.NoError(t, err)
	assert.Empty(t, raw)

	got, err := gamsort.UnmarshalAlignment(raw)
	require.NoError(t, err)
	assert.True(t, got.SortKey().IsSentinel())
	assert.Empty(t, got.Path.Mappings)
}

func TestAlignmentPreservesUnknownFields(t *testing.T) {
	raw, err := gamsort.MarshalAlignment(aln("read", pos(7, false, 1)))
	require.NoError(t, err)

	// append fields this package does not model: a string and a fixed64
	raw = protowire.AppendTag(raw, 15, protowire.BytesType)
	raw = protowire.AppendString(raw, "fragment")
	raw = protowire.AppendTag(raw, 22, protowire.Fixed64Type)
	raw = protowire.AppendFixed64(raw, 42)

	decoded, err := gamsort.UnmarshalAlignment(raw)
	require.NoError(t, err)
	assert.Equal(t, "read", decoded.Name)
	assert.Equal(t, pos(7, false, 1), decoded.SortKey())

	again, err := gamsort.MarshalAlignment(decoded)
	require.NoError(t, err)
	assert.Equal(t, raw, again)
}

func TestAlignmentUnmarshalErrors(t *testing.T) {
	good, err := gamsort.MarshalAlignment(aln("read", pos(7, false, 1)))
	require.NoError(t, err)

	tests := map[string][]byte{
		"truncated":    good[:len(good)-1],
		"bad tag":      {0xff, 0xff, 0xff},
		"short length": {0x12, 0x05, 0x01},
		"bad varint":   {0x28, 0xff},
		"bad submsg":   {0x12, 0x02, 0x0a, 0x05},
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := gamsort.UnmarshalAlignment(raw)
			assert.Error(t, err)
		})
	}
}

// pathWithExtra encodes a path with one mapping on node and an unmodeled
// string field.
func pathWithExtra(node uint64, extra string) []byte {
	var position, mapping, path []byte
	position = protowire.AppendTag(position, 1, protowire.VarintType)
	position = protowire.AppendVarint(position, node)
	mapping = protowire.AppendTag(mapping, 1, protowire.BytesType)
	mapping = protowire.AppendBytes(mapping, position)
	path = protowire.AppendTag(path, 2, protowire.BytesType)
	path = protowire.AppendBytes(path, mapping)
	path = protowire.AppendTag(path, 9, protowire.BytesType)
	return protowire.AppendString(path, extra)
}

func TestAlignmentMergesRepeatedPath(t *testing.T) {
	var raw []byte
	raw = protowire.AppendTag(raw, 2, protowire.BytesType)
	raw = protowire.AppendBytes(raw, pathWithExtra(8, "first"))
	raw = protowire.AppendTag(raw, 2, protowire.BytesType)
	raw = protowire.AppendBytes(raw, pathWithExtra(3, "second"))

	a, err := gamsort.UnmarshalAlignment(raw)
	require.NoError(t, err)
	require.Len(t, a.Path.Mappings, 2)
	assert.Equal(t, pos(3, false, 0), a.SortKey())

	again, err := gamsort.MarshalAlignment(a)
	require.NoError(t, err)
	assert.True(t, bytes.Contains(again, []byte("first")))
	assert.True(t, bytes.Contains(again, []byte("second")))
}

func TestAlignmentWrongWireTypeKeptAsUnknown(t *testing.T) {
	var raw []byte
	raw = protowire.AppendTag(raw, 3, protowire.BytesType)
	raw = protowire.AppendString(raw, "read")
	// name again, but as a varint
	raw = protowire.AppendTag(raw, 3, protowire.VarintType)
	raw = protowire.AppendVarint(raw, 7)

	a, err := gamsort.UnmarshalAlignment(raw)
	require.NoError(t, err)
	assert.Equal(t, "read", a.Name)

	again, err := gamsort.MarshalAlignment(a)
	require.NoError(t, err)
	assert.Equal(t, raw, again)
}
