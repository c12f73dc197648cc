package strategy

import (
	"fmt"
	"strings"
	"unicode"
)

// Kind identifies a screening strategy.
type Kind int

const (
	MomentumBreakout Kind = iota + 1
	Pullback
	MACrossover
	RSIRange
	MomentumCrossover
	ConsolidationBreakout
	Recovery
)

var kindNames = map[Kind]struct{ display, slug string }{
	MomentumBreakout:      {"Momentum + Breakout", "momentum-breakout"},
	Pullback:              {"Pullback", "pullback"},
	MACrossover:           {"MA Crossover", "ma-crossover"},
	RSIRange:              {"RSI Range", "rsi-range"},
	MomentumCrossover:     {"Momentum Crossover", "momentum-crossover"},
	ConsolidationBreakout: {"Consolidation Breakout", "consolidation-breakout"},
	Recovery:              {"Recovery", "recovery"},
}

// Kinds lists every strategy in display order.
func Kinds() []Kind {
	return []Kind{MomentumBreakout, Pullback, MACrossover, RSIRange, MomentumCrossover, ConsolidationBreakout, Recovery}
}

// String returns the display name.
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n.display
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Slug returns the URL and config friendly name.
func (k Kind) Slug() string {
	if n, ok := kindNames[k]; ok {
		return n.slug
	}
	return ""
}

// ParseKind accepts a display name or a slug, ignoring case, spaces and punctuation.
func ParseKind(s string) (Kind, error) {
	want := squash(s)
	if want == "" {
		return 0, fmt.Errorf("empty strategy name")
	}
	for k, n := range kindNames {
		if squash(n.display) == want || squash(n.slug) == want {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown strategy %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if k.Slug() == "" {
		return nil, fmt.Errorf("unknown strategy %d", int(k))
	}
	return []byte(k.Slug()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func squash(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
