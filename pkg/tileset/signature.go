package tileset

import (
	"encoding/binary"
	"hash/fnv"
	"slices"
)

// Signature is the matching key of one face.
//
// Hash is identical for a set of loops and the same loops traversed
// backwards. Symmetry is 0 when both traversals hash alike and +1 or -1
// depending on which traversal produced the smaller hash. Empty marks a
// face without boundary; its Hash and Symmetry are always zero.
type Signature struct {
	Hash     uint64 `json:"hash"`
	Symmetry int8   `json:"symmetry"`
	Empty    bool   `json:"empty"`
}

// Matches reports whether faces with signatures s and o may abut. Empty
// faces only match empty faces.
func (s Signature) Matches(o Signature) bool {
	if s.Empty || o.Empty {
		return s.Empty && o.Empty
	}
	return s.Hash == o.Hash && s.Symmetry == -o.Symmetry
}

// HashLoop computes the signature of a single loop.
func HashLoop(l Loop) Signature {
	return HashLoops([]Loop{l})
}

// HashLoops computes the signature of every loop on one face together.
// Loop order does not matter.
func HashLoops(loops []Loop) Signature {
	fwd := canonical(loops)
	if len(fwd) == 0 {
		return Signature{Empty: true}
	}
	hf := hashProfile(fwd)
	hr := hashProfile(reversed(fwd))

	sig := Signature{Hash: hf ^ hr}
	switch {
	case hf < hr:
		sig.Symmetry = 1
	case hf > hr:
		sig.Symmetry = -1
	}
	return sig
}

// canonical drops empty loops and returns the rest sorted.
func canonical(loops []Loop) []Loop {
	out := make([]Loop, 0, len(loops))
	for _, l := range loops {
		if len(l) > 0 {
			out = append(out, l)
		}
	}
	slices.SortFunc(out, compareLoops)
	return out
}

// reversed returns every loop traversed backwards, sorted.
func reversed(loops []Loop) []Loop {
	out := make([]Loop, len(loops))
	for i, l := range loops {
		out[i] = l.Reverse()
	}
	slices.SortFunc(out, compareLoops)
	return out
}

// hashProfile is FNV-1a over the length-prefixed point sequence of every loop.
func hashProfile(loops []Loop) uint64 {
	h := fnv.New64a()
	buf := make([]byte, 0, 16)
	for _, l := range loops {
		buf = binary.LittleEndian.AppendUint64(buf[:0], uint64(len(l)))
		h.Write(buf)
		for _, p := range l {
			buf = binary.LittleEndian.AppendUint64(buf[:0], uint64(p.U))
			buf = binary.LittleEndian.AppendUint64(buf, uint64(p.V))
			h.Write(buf)
		}
	}
	return h.Sum64()
}

// FaceProfile is the boundary of one face of one catalogue entry.
type FaceProfile struct {
	Face      Face
	Loops     []Loop // canonical order
	Signature Signature
}

// NewFaceProfile builds the profile of face f from its boundary loops.
func NewFaceProfile(f Face, loops []Loop) FaceProfile {
	c := canonical(loops)
	return FaceProfile{Face: f, Loops: c, Signature: HashLoops(c)}
}

// Matches reports whether p and o can sit on either side of one seam: o's
// loops must be p's loops traversed backwards. This is the exact check
// behind a signature match and rules out hash collisions.
func (p FaceProfile) Matches(o FaceProfile) bool {
	if !p.Signature.Matches(o.Signature) {
		return false
	}
	if p.Signature.Empty {
		return true
	}
	return slices.EqualFunc(o.Loops, reversed(p.Loops), func(a, b Loop) bool {
		return compareLoops(a, b) == 0
	})
}
