// Package labels generates the random strings rendered into training samples.
//
// Every generator returns a Label: the text to render and an opaque ULID that
// can serve as a content-independent sample identifier. Generators hold no
// mutable state; all randomness comes from the *rand.Rand passed to Generate,
// so callers control seeding and each worker can own its RNG.
package labels

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator kinds.
const (
	KindULID   = "ulid"
	KindDate   = "date"
	KindNumber = "number"
	KindString = "string"
)

// DefaultCharset is used by the string generator when none is configured.
const DefaultCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// StringLength is the number of characters produced by the string generator.
const StringLength = 16

// Label is one generated text with its identifier.
type Label struct {
	ID   string
	Text string
}

// Generator produces labels.
type Generator interface {
	Kind() string
	Generate(rng *rand.Rand) Label
}

// Kinds returns every generator kind in a stable order.
func Kinds() []string {
	return []string{KindULID, KindDate, KindNumber, KindString}
}

// New returns the generator for kind. charset is used only by the string
// generator; an empty charset selects DefaultCharset.
func New(kind, charset string) (Generator, error) {
	switch strings.ToLower(kind) {
	case KindULID:
		return ulidGenerator{}, nil
	case KindDate:
		return dateGenerator{}, nil
	case KindNumber:
		return numberGenerator{}, nil
	case KindString:
		if charset == "" {
			charset = DefaultCharset
		}
		return stringGenerator{charset: []rune(charset)}, nil
	default:
		return nil, fmt.Errorf("unknown label kind %q (want one of %s)", kind, strings.Join(Kinds(), ", "))
	}
}

// NewAll returns generators for the given kinds, in order.
func NewAll(kinds []string, charset string) ([]Generator, error) {
	gens := make([]Generator, 0, len(kinds))
	for _, k := range kinds {
		g, err := New(k, charset)
		if err != nil {
			return nil, err
		}
		gens = append(gens, g)
	}
	return gens, nil
}

// newID returns a ULID for the current time with entropy from rng.
func newID(rng *rand.Rand) string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rng).String()
}

// ulidGenerator renders the identifier itself.
type ulidGenerator struct{}

func (ulidGenerator) Kind() string { return KindULID }

func (ulidGenerator) Generate(rng *rand.Rand) Label {
	id := newID(rng)
	return Label{ID: id, Text: id}
}

// dateGenerator renders a date-like "MM/DD/YYYY-NNN" pattern. The fields are
// drawn from fixed-width ranges, not calendar-valid dates.
type dateGenerator struct{}

func (dateGenerator) Kind() string { return KindDate }

func (dateGenerator) Generate(rng *rand.Rand) Label {
	mm := 10 + rng.Intn(90)
	dd := 10 + rng.Intn(90)
	yyyy := 1000 + rng.Intn(9000)
	nnn := 100 + rng.Intn(900)
	return Label{
		ID:   newID(rng),
		Text: fmt.Sprintf("%02d/%02d/%04d-%03d", mm, dd, yyyy, nnn),
	}
}

// numberGenerator renders an eight digit number.
type numberGenerator struct{}

func (numberGenerator) Kind() string { return KindNumber }

func (numberGenerator) Generate(rng *rand.Rand) Label {
	return Label{
		ID:   newID(rng),
		Text: fmt.Sprintf("%08d", 10000000+rng.Intn(90000000)),
	}
}

// stringGenerator renders StringLength characters from a charset.
type stringGenerator struct {
	charset []rune
}

func (stringGenerator) Kind() string { return KindString }

func (g stringGenerator) Generate(rng *rand.Rand) Label {
	out := make([]rune, StringLength)
	for i := range out {
		out[i] = g.charset[rng.Intn(len(g.charset))]
	}
	return Label{ID: newID(rng), Text: string(out)}
}
