package receipt

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"time"
)

// NumberPattern matches receipt display numbers
var NumberPattern = regexp.MustCompile(`^RECIBO-\d{4}-\d{5}$`)

// numberSpace is the exclusive upper bound of the random suffix
const numberSpace = 99999

// NumberGenerator produces human facing receipt numbers. Numbers are not
// guaranteed unique; callers that need uniqueness check the repository.
type NumberGenerator interface {
	Generate() string
}

// RandomNumberGenerator draws RECIBO-<year>-<NNNNN> with NNNNN uniform in [0, 99999)
type RandomNumberGenerator struct {
	now  func() time.Time
	intN func(n int) int
}

// NumberGeneratorOption configures a RandomNumberGenerator
type NumberGeneratorOption func(*RandomNumberGenerator)

// WithNumberClock overrides the clock used to pick the year
func WithNumberClock(now func() time.Time) NumberGeneratorOption {
	return func(g *RandomNumberGenerator) {
		g.now = now
	}
}

// WithNumberSource overrides the random source
func WithNumberSource(intN func(n int) int) NumberGeneratorOption {
	return func(g *RandomNumberGenerator) {
		g.intN = intN
	}
}

// NewRandomNumberGenerator creates a generator backed by math/rand/v2
func NewRandomNumberGenerator(opts ...NumberGeneratorOption) *RandomNumberGenerator {
	g := &RandomNumberGenerator{
		now:  time.Now,
		intN: rand.IntN,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a new display number
func (g *RandomNumberGenerator) Generate() string {
	return FormatNumber(g.now().Year(), g.intN(numberSpace))
}

// FormatNumber renders a display number from its parts
func FormatNumber(year, seq int) string {
	return fmt.Sprintf("RECIBO-%d-%05d", year, seq)
}

// IsValidNumber reports whether s has the display number shape
func IsValidNumber(s string) bool {
	return NumberPattern.MatchString(s)
}
