package types

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// NodeId is a 128-bit content-addressed identifier for a Universal AST node.
// Two nodes with identical (repoID, file, span, kind) always hash to the
// same NodeId; any differing input yields a different one (spec §3.2
// invariant 1, §3.3).
type NodeId [16]byte

// NewNodeId derives a NodeId from its content-addressing inputs. The hash
// recipe is BLAKE3(repoID || filePath || startByte_le64 || endByte_le64 ||
// kindDebugString), truncated to the first 128 bits. This recipe is a fixed
// wire format (spec §3.3): changing it, or the strings NodeKind.String()
// produces, changes every previously computed id.
func NewNodeId(repoID, filePath string, span Span, kind NodeKind) NodeId {
	h := blake3.New()
	h.Write([]byte(repoID))
	h.Write([]byte(filePath))

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(span.StartByte))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(span.EndByte))
	h.Write(buf[:])

	h.Write([]byte(kind.String()))

	sum := h.Sum(nil)
	var id NodeId
	copy(id[:], sum[:16])
	return id
}

// Hex returns the 32-char lowercase hex wire representation.
func (id NodeId) Hex() string {
	return hex.EncodeToString(id[:])
}

// String implements fmt.Stringer using the hex representation.
func (id NodeId) String() string {
	return id.Hex()
}

// NodeIdFromHex parses a 32-char lowercase hex string into a NodeId.
func NodeIdFromHex(s string) (NodeId, error) {
	var id NodeId
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("node id: invalid hex: %w", err)
	}
	if len(b) != 16 {
		return id, fmt.Errorf("node id: expected 16 bytes, got %d", len(b))
	}
	copy(id[:], b)
	return id, nil
}

// IsZero reports whether this is the zero-value NodeId.
func (id NodeId) IsZero() bool {
	return id == NodeId{}
}

// MarshalJSON encodes the id as its hex string (spec §6.1: "id as 32-char
// lowercase hex").
func (id NodeId) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.Hex() + `"`), nil
}

// UnmarshalJSON decodes a hex string into a NodeId.
func (id *NodeId) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := NodeIdFromHex(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// EdgeKey identifies an edge for deduplication and deletion purposes: the
// (source, target, kind) triple (spec §3.1, §6.1).
type EdgeKey struct {
	Source NodeId   `json:"source"`
	Target NodeId   `json:"target"`
	Kind   EdgeKind `json:"kind"`
}
