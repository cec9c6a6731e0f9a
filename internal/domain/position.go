package domain

import (
	"fmt"
	"strings"
)

type Position string

const (
	PosC    Position = "C"
	Pos1B   Position = "1B"
	Pos2B   Position = "2B"
	Pos3B   Position = "3B"
	PosSS   Position = "SS"
	PosCI   Position = "CI"
	PosMI   Position = "MI"
	PosLF   Position = "LF"
	PosCF   Position = "CF"
	PosRF   Position = "RF"
	PosOF   Position = "OF"
	PosUtil Position = "Util"
	PosSP   Position = "SP"
	PosRP   Position = "RP"
	PosP    Position = "P"
)

// Positions is the canonical roster vocabulary, in display order.
var Positions = []Position{
	PosC, Pos1B, Pos2B, Pos3B, PosSS, PosCI, PosMI,
	PosLF, PosCF, PosRF, PosOF, PosUtil, PosSP, PosRP, PosP,
}

func (p Position) Valid() bool {
	return p.index() >= 0
}

func (p Position) index() int {
	for i, v := range Positions {
		if v == p {
			return i
		}
	}
	return -1
}

// EligibilitySet is the set of roster slots a player may fill. The zero value is
// an empty, usable set.
type EligibilitySet struct {
	bits uint16
}

func NewEligibilitySet(positions ...Position) EligibilitySet {
	var s EligibilitySet
	for _, p := range positions {
		s.Add(p)
	}
	return s
}

// Add ignores positions outside the vocabulary.
func (s *EligibilitySet) Add(p Position) {
	if i := p.index(); i >= 0 {
		s.bits |= 1 << uint(i)
	}
}

func (s EligibilitySet) Has(p Position) bool {
	i := p.index()
	return i >= 0 && s.bits&(1<<uint(i)) != 0
}

func (s EligibilitySet) Len() int {
	n := 0
	for b := s.bits; b != 0; b &= b - 1 {
		n++
	}
	return n
}

func (s EligibilitySet) Empty() bool { return s.bits == 0 }

func (s EligibilitySet) Union(o EligibilitySet) EligibilitySet {
	return EligibilitySet{bits: s.bits | o.bits}
}

// Slice returns members in vocabulary order.
func (s EligibilitySet) Slice() []Position {
	out := make([]Position, 0, s.Len())
	for _, p := range Positions {
		if s.Has(p) {
			out = append(out, p)
		}
	}
	return out
}

// String renders the storage form: comma-joined, vocabulary order, "" when empty.
func (s EligibilitySet) String() string {
	parts := make([]string, 0, s.Len())
	for _, p := range s.Slice() {
		parts = append(parts, string(p))
	}
	return strings.Join(parts, ",")
}

func (s EligibilitySet) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *EligibilitySet) UnmarshalText(b []byte) error {
	parsed, err := ParseEligibilitySet(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseEligibilitySet reads the comma-joined storage form.
func ParseEligibilitySet(raw string) (EligibilitySet, error) {
	var s EligibilitySet
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		p := Position(part)
		if !p.Valid() {
			return EligibilitySet{}, fmt.Errorf("unknown position %q", part)
		}
		s.Add(p)
	}
	return s, nil
}
