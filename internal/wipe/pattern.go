package wipe

import (
	crand "crypto/rand"
	"fmt"
	"math/rand/v2"

	"github.com/cockroachdb/errors"
)

// PatternKind вид паттерна прохода
type PatternKind int

const (
	PatternFixed PatternKind = iota
	PatternRandom
	PatternCyclic
)

// Pattern describes the bytes written during one pass.
// Sequence is set for PatternCyclic, Byte for PatternFixed.
type Pattern struct {
	Kind     PatternKind
	Byte     byte
	Sequence []byte
	Index    int
}

// FixedByte returns a pattern repeating b.
func FixedByte(b byte) Pattern {
	return Pattern{Kind: PatternFixed, Byte: b}
}

// RandomBytes returns a pattern regenerated before every write.
func RandomBytes() Pattern {
	return Pattern{Kind: PatternRandom}
}

// CyclicSequence returns a pattern repeating seq; index is its position in the source table.
func CyclicSequence(seq []byte, index int) Pattern {
	return Pattern{Kind: PatternCyclic, Sequence: seq, Index: index}
}

// IsRandom reports whether the buffer must be refilled before each write.
func (p Pattern) IsRandom() bool {
	return p.Kind == PatternRandom
}

// Label returns the display label of the pattern itself.
func (p Pattern) Label() string {
	switch p.Kind {
	case PatternFixed:
		return fmt.Sprintf("0x%02X", p.Byte)
	case PatternRandom:
		return "RAND"
	default:
		return "GUTM"
	}
}

// Equal compares kind and content, ignoring the table index.
func (p Pattern) Equal(o Pattern) bool {
	if p.Kind != o.Kind {
		return false
	}
	switch p.Kind {
	case PatternFixed:
		return p.Byte == o.Byte
	case PatternCyclic:
		if len(p.Sequence) != len(o.Sequence) {
			return false
		}
		for i := range p.Sequence {
			if p.Sequence[i] != o.Sequence[i] {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Fill заполняет буфер детерминированным паттерном; для случайного паттерна ничего не делает
func (p Pattern) Fill(buf []byte) {
	switch p.Kind {
	case PatternFixed:
		fillByte(buf, p.Byte)
	case PatternCyclic:
		if len(p.Sequence) == 1 {
			fillByte(buf, p.Sequence[0])
			return
		}
		fillCyclic(buf, p.Sequence)
	}
}

func fillByte(buf []byte, b byte) {
	if len(buf) == 0 {
		return
	}
	buf[0] = b
	// удвоение через copy быстрее побайтового цикла
	for n := 1; n < len(buf); n *= 2 {
		copy(buf[n:], buf[:n])
	}
}

func fillCyclic(buf []byte, seq []byte) {
	if len(buf) == 0 || len(seq) == 0 {
		return
	}
	n := copy(buf, seq)
	for n < len(buf) {
		// n всегда кратно len(seq), поэтому фаза сохраняется
		n += copy(buf[n:], buf[:n])
	}
}

// randomSource поток случайных байт для проходов RAND
type randomSource struct {
	rng *rand.ChaCha8
}

func newRandomSource() (*randomSource, error) {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		return nil, errors.Wrap(err, "seed random generator")
	}
	return &randomSource{rng: rand.NewChaCha8(seed)}, nil
}

// Fill перезаписывает buf свежими случайными байтами
func (r *randomSource) Fill(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	_, err := r.rng.Read(buf)
	return err
}
