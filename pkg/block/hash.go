package block

import (
	"hash/fnv"
	"strconv"

	"github.com/patrickspencer/scheduleexpr/pkg/interval"
)

// hashState accumulates a structural hash for a block. The source system
// this spec was distilled from used a 32-bit rolling hash that could
// collide across differently-shaped blocks sharing a cache domain (spec
// §9); this module upgrades to 64-bit FNV-1a over a canonical string
// encoding of the node's kind, merge state, and values, which is
// collision-resistant enough for a cache key and needs no extra
// dependency (see DESIGN.md).
type hashState struct {
	h uint64
}

func newHash(kind string) *hashState {
	f := fnv.New64a()
	f.Write([]byte(kind))
	return &hashState{h: f.Sum64()}
}

func (s *hashState) mix(part string) *hashState {
	f := fnv.New64a()
	f.Write(u64bytes(s.h))
	f.Write([]byte{0})
	f.Write([]byte(part))
	s.h = f.Sum64()
	return s
}

func (s *hashState) mixInt(v int64) *hashState {
	return s.mix(strconv.FormatInt(v, 10))
}

func (s *hashState) mixMerge(m MergeState) *hashState {
	return s.mixInt(int64(m))
}

func (s *hashState) mixConstraint(c interval.NumericConstraint) *hashState {
	s.mixInt(int64(c.Kind))
	switch c.Kind {
	case interval.Single:
		s.mixInt(c.Value)
	case interval.Range:
		s.mixInt(c.Start).mixInt(c.End)
	case interval.Algebraic:
		s.mixInt(c.A).mixInt(int64(c.Op)).mixInt(c.B)
	}
	return s
}

func (s *hashState) mixInterval(iv interval.Interval) *hashState {
	return s.mixInt(iv.Start).mixInt(iv.End)
}

func (s *hashState) sum() uint64 {
	return s.h
}

func u64bytes(v uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	return b
}
