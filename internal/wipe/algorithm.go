package wipe

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Method определяет схему затирания
type Method int

const (
	MethodZero Method = iota
	MethodRandom
	MethodDoD5220
	MethodGutmann
	MethodCustom
)

// Algorithm выбранная схема; CustomPasses используется только для MethodCustom
type Algorithm struct {
	Method       Method
	CustomPasses int
}

// Zero, Random, DoD5220 and Gutmann are the fixed-pass algorithms.
var (
	Zero    = Algorithm{Method: MethodZero}
	Random  = Algorithm{Method: MethodRandom}
	DoD5220 = Algorithm{Method: MethodDoD5220}
	Gutmann = Algorithm{Method: MethodGutmann}
)

// Custom returns a random-data algorithm with the given number of passes.
func Custom(passes int) Algorithm {
	return Algorithm{Method: MethodCustom, CustomPasses: passes}
}

// scheme одна строка таблицы диспетчеризации
type scheme struct {
	id      string
	display string
	summary string
	passes  func(a Algorithm) int
	pattern func(pass int) Pattern
	label   func(pass int) string
}

func fixedPasses(n int) func(Algorithm) int {
	return func(Algorithm) int { return n }
}

func constPattern(p Pattern) func(int) Pattern {
	return func(int) Pattern { return p }
}

func constLabel(s string) func(int) string {
	return func(int) string { return s }
}

var dodPasses = [...]Pattern{FixedByte(0x00), FixedByte(0xFF), RandomBytes()}

var catalog = map[Method]scheme{
	MethodZero: {
		id:      "zero",
		display: "Zero",
		summary: "single pass of 0x00",
		passes:  fixedPasses(1),
		pattern: constPattern(FixedByte(0x00)),
		label:   constLabel("0x00"),
	},
	MethodRandom: {
		id:      "random",
		display: "Random",
		summary: "single pass of random data",
		passes:  fixedPasses(1),
		pattern: constPattern(RandomBytes()),
		label:   constLabel("RAND"),
	},
	MethodDoD5220: {
		id:      "dod5220",
		display: "Dod5220",
		summary: "DoD 5220.22-M: 0x00, 0xFF, random",
		passes:  fixedPasses(3),
		pattern: func(pass int) Pattern { return dodPasses[pass-1] },
		label:   func(pass int) string { return dodPasses[pass-1].Label() },
	},
	MethodGutmann: {
		id:      "gutmann",
		display: "Gutmann",
		summary: "35 passes cycling the 29-entry Gutmann table",
		passes:  fixedPasses(35),
		pattern: func(pass int) Pattern {
			idx := (pass - 1) % len(gutmannTable)
			return CyclicSequence(gutmannTable[idx], idx)
		},
		label: constLabel("GUTM"),
	},
	MethodCustom: {
		id:      "custom",
		display: "Custom",
		summary: "N passes of random data",
		passes:  func(a Algorithm) int { return a.CustomPasses },
		pattern: constPattern(RandomBytes()),
		label:   constLabel("RAND"),
	},
}

// gutmannTable 29 последовательностей; 35 проходов идут по кругу.
// Каноническая схема Гутмана содержит 35 различных проходов, здесь сохранён цикл из 29.
var gutmannTable = [...][]byte{
	{0x00},
	{0xFF},
	{0x55},
	{0xAA},
	{0x92, 0x49, 0x24},
	{0x49, 0x24, 0x92},
	{0x24, 0x92, 0x49},
	{0x00, 0x00, 0x00},
	{0x11, 0x11, 0x11},
	{0x22, 0x22, 0x22},
	{0x33, 0x33, 0x33},
	{0x44, 0x44, 0x44},
	{0x55, 0x55, 0x55},
	{0x66, 0x66, 0x66},
	{0x77, 0x77, 0x77},
	{0x88, 0x88, 0x88},
	{0x99, 0x99, 0x99},
	{0xAA, 0xAA, 0xAA},
	{0xBB, 0xBB, 0xBB},
	{0xCC, 0xCC, 0xCC},
	{0xDD, 0xDD, 0xDD},
	{0xEE, 0xEE, 0xEE},
	{0xFF, 0xFF, 0xFF},
	{0x92, 0x49, 0x24},
	{0x49, 0x24, 0x92},
	{0x24, 0x92, 0x49},
	{0x6D, 0xB6, 0xDB},
	{0xB6, 0xDB, 0x6D},
	{0xDB, 0x6D, 0xB6},
}

func (a Algorithm) scheme() (scheme, error) {
	s, ok := catalog[a.Method]
	if !ok {
		return scheme{}, newError(KindConfig, "algorithm", "", errors.Newf("unknown wipe method %d", int(a.Method)))
	}
	return s, nil
}

// String returns the display name used in the start event.
func (a Algorithm) String() string {
	s, err := a.scheme()
	if err != nil {
		return "Unknown"
	}
	return s.display
}

// ID returns the lowercase name accepted by ParseAlgorithm.
func (a Algorithm) ID() string {
	s, err := a.scheme()
	if err != nil {
		return "unknown"
	}
	return s.id
}

// Summary returns a one-line description of the scheme.
func (a Algorithm) Summary() string {
	s, err := a.scheme()
	if err != nil {
		return ""
	}
	return s.summary
}

// PassCount возвращает общее число проходов
func (a Algorithm) PassCount() (int, error) {
	s, err := a.scheme()
	if err != nil {
		return 0, err
	}
	n := s.passes(a)
	if n <= 0 {
		return 0, newError(KindConfig, "algorithm", "", errors.Newf("%s algorithm requires a positive pass count, got %d", s.id, n))
	}
	return n, nil
}

// PatternFor returns the pattern of a 1-based pass index.
func (a Algorithm) PatternFor(pass int) (Pattern, error) {
	s, err := a.checkPass(pass)
	if err != nil {
		return Pattern{}, err
	}
	return s.pattern(pass), nil
}

// LabelFor returns the short display label of a pass ("0x00", "RAND", "GUTM").
func (a Algorithm) LabelFor(pass int) (string, error) {
	s, err := a.checkPass(pass)
	if err != nil {
		return "", err
	}
	return s.label(pass), nil
}

func (a Algorithm) checkPass(pass int) (scheme, error) {
	s, err := a.scheme()
	if err != nil {
		return scheme{}, err
	}
	total, err := a.PassCount()
	if err != nil {
		return scheme{}, err
	}
	if pass < 1 || pass > total {
		return scheme{}, newError(KindConfig, "algorithm", "", errors.Newf("pass %d out of range 1..%d for %s", pass, total, s.id))
	}
	return s, nil
}

// Methods lists all methods in display order.
func Methods() []Method {
	return []Method{MethodZero, MethodRandom, MethodDoD5220, MethodGutmann, MethodCustom}
}

// ParseAlgorithm проверяет имя метода; passes учитывается только для custom
func ParseAlgorithm(name string, passes int) (Algorithm, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, m := range Methods() {
		if catalog[m].id != n {
			continue
		}
		a := Algorithm{Method: m}
		if m == MethodCustom {
			a.CustomPasses = passes
			if _, err := a.PassCount(); err != nil {
				return Algorithm{}, err
			}
		}
		return a, nil
	}
	return Algorithm{}, newError(KindConfig, "algorithm", "", errors.Newf("unsupported wipe algorithm: %s", name))
}
