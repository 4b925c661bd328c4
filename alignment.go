package gamsort

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// Edit describes how a stretch of the read differs from the graph.
type Edit struct {
	FromLength int32
	ToLength   int32
	Sequence   string

	unknown []byte
}

// Mapping anchors one segment of a path to a graph position.
type Mapping struct {
	Position Position
	Edits    []Edit
	Rank     int64

	unknown []byte
}

// Path is the ordered walk of an alignment through the graph.
type Path struct {
	Name     string
	Mappings []Mapping

	unknown []byte
}

// Alignment is a read aligned to a sequence graph. An alignment with an empty
// path is unmapped.
type Alignment struct {
	Sequence       string
	Path           Path
	Name           string
	Quality        []byte
	MappingQuality int32
	Score          int32

	unknown []byte
}

// Wire field numbers. Fields this package does not model are kept as raw
// bytes and written back unchanged.
const (
	alnSequenceField       protowire.Number = 1
	alnPathField           protowire.Number = 2
	alnNameField           protowire.Number = 3
	alnQualityField        protowire.Number = 4
	alnMappingQualityField protowire.Number = 5
	alnScoreField          protowire.Number = 6

	pathNameField    protowire.Number = 1
	pathMappingField protowire.Number = 2

	mappingPositionField protowire.Number = 1
	mappingEditField     protowire.Number = 2
	mappingRankField     protowire.Number = 5

	editFromLengthField protowire.Number = 1
	editToLengthField   protowire.Number = 2
	editSequenceField   protowire.Number = 3

	posNodeIDField    protowire.Number = 1
	posOffsetField    protowire.Number = 2
	posIsReverseField protowire.Number = 4
	posNameField      protowire.Number = 5
)

// AlignmentCodec serializes alignments in protobuf wire format.
var AlignmentCodec = Codec[Alignment]{
	ToBytes:   MarshalAlignment,
	FromBytes: UnmarshalAlignment,
}

// MarshalAlignment encodes an alignment in protobuf wire format.
func MarshalAlignment(a Alignment) ([]byte, error) {
	return a.appendTo(nil), nil
}

// UnmarshalAlignment decodes an alignment from protobuf wire format.
func UnmarshalAlignment(b []byte) (Alignment, error) {
	var a Alignment
	err := a.unmarshal(b)
	return a, err
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func (a *Alignment) appendTo(b []byte) []byte {
	b = appendString(b, alnSequenceField, a.Sequence)
	if path := a.Path.appendTo(nil); len(path) > 0 {
		b = appendMessage(b, alnPathField, path)
	}
	b = appendString(b, alnNameField, a.Name)
	if len(a.Quality) > 0 {
		b = protowire.AppendTag(b, alnQualityField, protowire.BytesType)
		b = protowire.AppendBytes(b, a.Quality)
	}
	b = appendVarint(b, alnMappingQualityField, uint64(int64(a.MappingQuality)))
	b = appendVarint(b, alnScoreField, uint64(int64(a.Score)))
	return append(b, a.unknown...)
}

func (p *Path) appendTo(b []byte) []byte {
	b = appendString(b, pathNameField, p.Name)
	for i := range p.Mappings {
		b = appendMessage(b, pathMappingField, p.Mappings[i].appendTo(nil))
	}
	return append(b, p.unknown...)
}

func (m *Mapping) appendTo(b []byte) []byte {
	if pos := m.Position.appendTo(nil); len(pos) > 0 {
		b = appendMessage(b, mappingPositionField, pos)
	}
	for i := range m.Edits {
		b = appendMessage(b, mappingEditField, m.Edits[i].appendTo(nil))
	}
	b = appendVarint(b, mappingRankField, uint64(m.Rank))
	return append(b, m.unknown...)
}

func (e *Edit) appendTo(b []byte) []byte {
	b = appendVarint(b, editFromLengthField, uint64(int64(e.FromLength)))
	b = appendVarint(b, editToLengthField, uint64(int64(e.ToLength)))
	b = appendString(b, editSequenceField, e.Sequence)
	return append(b, e.unknown...)
}

func (p *Position) appendTo(b []byte) []byte {
	b = appendVarint(b, posNodeIDField, p.NodeID)
	b = appendVarint(b, posOffsetField, p.Offset)
	b = appendVarint(b, posIsReverseField, protowire.EncodeBool(p.IsReverse))
	return appendString(b, posNameField, p.Name)
}

// fieldFunc decodes the value of one field and returns the bytes consumed, or
// zero when the field is not recognized.
type fieldFunc func(num protowire.Number, typ protowire.Type, b []byte) (int, error)

// consumeMessage walks every field in b, returning the raw bytes of fields fn
// did not recognize.
func consumeMessage(b []byte, fn fieldFunc) ([]byte, error) {
	var unknown []byte
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, protowire.ParseError(n)
		}
		field := b
		b = b[n:]
		m, err := fn(num, typ, b)
		if err != nil {
			return nil, err
		}
		if m == 0 {
			m = protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return nil, protowire.ParseError(m)
			}
			unknown = append(unknown, field[:n+m]...)
		}
		b = b[m:]
	}
	return unknown, nil
}

func consumeVarint(typ protowire.Type, b []byte) (uint64, int, error) {
	if typ != protowire.VarintType {
		return 0, 0, nil
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, protowire.ParseError(n)
	}
	return v, n, nil
}

func consumeBytes(typ protowire.Type, b []byte) ([]byte, int, error) {
	if typ != protowire.BytesType {
		return nil, 0, nil
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, protowire.ParseError(n)
	}
	return v, n, nil
}

func (a *Alignment) unmarshal(b []byte) error {
	unknown, err := consumeMessage(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case alnSequenceField, alnNameField, alnQualityField, alnPathField:
			v, n, err := consumeBytes(typ, b)
			if n == 0 || err != nil {
				return n, err
			}
			switch num {
			case alnSequenceField:
				a.Sequence = string(v)
			case alnNameField:
				a.Name = string(v)
			case alnQualityField:
				a.Quality = append([]byte(nil), v...)
			case alnPathField:
				if err := a.Path.unmarshal(v); err != nil {
					return 0, err
				}
			}
			return n, nil
		case alnMappingQualityField, alnScoreField:
			v, n, err := consumeVarint(typ, b)
			if n == 0 || err != nil {
				return n, err
			}
			if num == alnScoreField {
				a.Score = int32(v)
			} else {
				a.MappingQuality = int32(v)
			}
			return n, nil
		}
		return 0, nil
	})
	a.unknown = append(a.unknown, unknown...)
	return err
}

func (p *Path) unmarshal(b []byte) error {
	unknown, err := consumeMessage(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case pathNameField:
			v, n, err := consumeBytes(typ, b)
			if n == 0 || err != nil {
				return n, err
			}
			p.Name = string(v)
			return n, nil
		case pathMappingField:
			v, n, err := consumeBytes(typ, b)
			if n == 0 || err != nil {
				return n, err
			}
			var m Mapping
			if err := m.unmarshal(v); err != nil {
				return 0, err
			}
			p.Mappings = append(p.Mappings, m)
			return n, nil
		}
		return 0, nil
	})
	p.unknown = append(p.unknown, unknown...)
	return err
}

func (m *Mapping) unmarshal(b []byte) error {
	unknown, err := consumeMessage(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case mappingPositionField:
			v, n, err := consumeBytes(typ, b)
			if n == 0 || err != nil {
				return n, err
			}
			return n, m.Position.unmarshal(v)
		case mappingEditField:
			v, n, err := consumeBytes(typ, b)
			if n == 0 || err != nil {
				return n, err
			}
			var e Edit
			if err := e.unmarshal(v); err != nil {
				return 0, err
			}
			m.Edits = append(m.Edits, e)
			return n, nil
		case mappingRankField:
			v, n, err := consumeVarint(typ, b)
			if n == 0 || err != nil {
				return n, err
			}
			m.Rank = int64(v)
			return n, nil
		}
		return 0, nil
	})
	m.unknown = append(m.unknown, unknown...)
	return err
}

func (e *Edit) unmarshal(b []byte) error {
	unknown, err := consumeMessage(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case editFromLengthField:
			v, n, err := consumeVarint(typ, b)
			if n == 0 || err != nil {
				return n, err
			}
			e.FromLength = int32(v)
			return n, nil
		case editToLengthField:
			v, n, err := consumeVarint(typ, b)
			if n == 0 || err != nil {
				return n, err
			}
			e.ToLength = int32(v)
			return n, nil
		case editSequenceField:
			v, n, err := consumeBytes(typ, b)
			if n == 0 || err != nil {
				return n, err
			}
			e.Sequence = string(v)
			return n, nil
		}
		return 0, nil
	})
	e.unknown = append(e.unknown, unknown...)
	return err
}

// Position has no unknown field storage so it stays comparable with ==.
// Unrecognized position fields are dropped.
func (p *Position) unmarshal(b []byte) error {
	_, err := consumeMessage(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case posNodeIDField:
			v, n, err := consumeVarint(typ, b)
			if n == 0 || err != nil {
				return n, err
			}
			p.NodeID = v
			return n, nil
		case posOffsetField:
			v, n, err := consumeVarint(typ, b)
			if n == 0 || err != nil {
				return n, err
			}
			p.Offset = v
			return n, nil
		case posIsReverseField:
			v, n, err := consumeVarint(typ, b)
			if n == 0 || err != nil {
				return n, err
			}
			p.IsReverse = protowire.DecodeBool(v)
			return n, nil
		case posNameField:
			v, n, err := consumeBytes(typ, b)
			if n == 0 || err != nil {
				return n, err
			}
			p.Name = string(v)
			return n, nil
		}
		return 0, nil
	})
	return err
}
