package id

import (
	"encoding/binary"
	"math"
	"sync"
	"time"
)

// Token is a 12-byte, lexicographically sortable disambiguator encoded
// big-endian: [8 bytes ms_timestamp][4 bytes sequence]. Tokens minted within
// the same millisecond differ in sequence, so they never collide.
type Token [12]byte

// String returns the fixed-width hex form used inside sort keys.
func (t Token) String() string {
	const hexdigits = "0123456789abcdef"
	out := make([]byte, len(t)*2)
	for i, v := range t {
		out[i*2] = hexdigits[v>>4]
		out[i*2+1] = hexdigits[v&0x0f]
	}
	return string(out)
}

// Compare returns -1, 0, 1 based on byte-wise comparison.
func (t Token) Compare(other Token) int {
	for i := 0; i < len(t); i++ {
		if t[i] < other[i] {
			return -1
		}
		if t[i] > other[i] {
			return 1
		}
	}
	return 0
}

// Generator mints strictly increasing Tokens per process.
type Generator struct {
	mu     sync.Mutex
	lastMs int64
	seq    uint32
}

// NewGenerator creates a new Generator.
func NewGenerator() *Generator { return &Generator{} }

// NowMs returns current time in milliseconds since Unix epoch.
var NowMs = func() int64 { return time.Now().UnixMilli() }

// Next returns a new Token. If the clock regresses, it pins to the last seen
// millisecond and keeps incrementing the sequence. If the sequence would
// overflow within one millisecond, it waits for the next one.
func (g *Generator) Next() Token {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := NowMs()
	if ms < g.lastMs {
		ms = g.lastMs
	}

	if ms == g.lastMs {
		if g.seq == math.MaxUint32 {
			for {
				ms = NowMs()
				if ms > g.lastMs {
					break
				}
				time.Sleep(time.Millisecond / 8)
			}
			g.seq = 0
		} else {
			g.seq++
		}
	} else {
		g.seq = 0
	}

	g.lastMs = ms
	return makeToken(ms, g.seq)
}

func makeToken(ms int64, seq uint32) Token {
	var t Token
	binary.BigEndian.PutUint64(t[0:8], uint64(ms))
	binary.BigEndian.PutUint32(t[8:12], seq)
	return t
}
