package arbitrary

import (
	"encoding/binary"
	"math/rand/v2"

	"github.com/wippyai/wasmbin/codec"
)

// Unstructured draws choices from a fixed byte slice. Once the bytes run
// out every choice is zero, which selects the first case and empty
// sequences, so construction always terminates.
type Unstructured struct {
	data []byte
}

// NewUnstructured wraps data.
func NewUnstructured(data []byte) *Unstructured {
	return &Unstructured{data: data}
}

// Len returns the bytes not yet consumed.
func (u *Unstructured) Len() int {
	return len(u.data)
}

func (u *Unstructured) take(n int) uint64 {
	var buf [8]byte
	k := copy(buf[:n], u.data)
	u.data = u.data[k:]
	return binary.LittleEndian.Uint64(buf[:])
}

// Uint64 consumes up to eight bytes.
func (u *Unstructured) Uint64() uint64 {
	return u.take(8)
}

// Intn consumes only as many bytes as n needs.
func (u *Unstructured) Intn(n int) int {
	if n <= 1 {
		return 0
	}
	width := 1
	for limit := uint64(0x100); uint64(n) > limit && width < 8; limit <<= 8 {
		width++
	}
	return int(u.take(width) % uint64(n))
}

// Rand draws choices from a seeded PCG generator.
type Rand struct {
	r *rand.Rand
}

// NewRand creates a deterministic source for seed.
func NewRand(seed uint64) *Rand {
	return &Rand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *Rand) Uint64() uint64 {
	return r.r.Uint64()
}

func (r *Rand) Intn(n int) int {
	if n <= 1 {
		return 0
	}
	return r.r.IntN(n)
}

// Fill populates n with random content drawn from src.
func Fill(src codec.Source, n codec.Node) {
	codec.Fill(src, n)
}

// FillWith populates n using g, for callers that tune bounds.
func FillWith(g *codec.Gen, n codec.Node) {
	g.Fill(n)
}
