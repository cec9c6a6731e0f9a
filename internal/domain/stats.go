package domain

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type PlayerKind string

const (
	KindBatter  PlayerKind = "batter"
	KindPitcher PlayerKind = "pitcher"
)

var ErrInvalidKind = errors.New("invalid player kind")

func (k PlayerKind) Valid() bool {
	return k == KindBatter || k == KindPitcher
}

// StatLine holds the expected-stats columns shared by hitters and pitchers.
// The batting diff fields are expected minus actual, as published by the
// source.
type StatLine struct {
	Name      string  `json:"name"`
	PA        int     `json:"pa"`
	BA        float64 `json:"ba"`
	XBA       float64 `json:"xba"`
	XBADiff   float64 `json:"xbaDiff"`
	SLG       float64 `json:"slg"`
	XSLG      float64 `json:"xslg"`
	XSLGDiff  float64 `json:"xslgDiff"`
	WOBA      float64 `json:"woba"`
	XWOBA     float64 `json:"xwoba"`
	XWOBADiff float64 `json:"xwobaDiff"`
}

// PitchingLine adds the ERA columns only published for pitchers.
type PitchingLine struct {
	ERA  float64 `json:"era"`
	XERA float64 `json:"xera"`
	// ERADiff is actual minus expected (era - xera), unlike the batting diffs.
	ERADiff float64 `json:"eraDiff"`
}

// RawStatRow is one row from the stats source before normalisation.
type RawStatRow struct {
	StatLine
	PitchingLine
}

type Hitter struct {
	StatLine
	Positions EligibilitySet `json:"positions"`
}

type Pitcher struct {
	StatLine
	PitchingLine
}

type Tables struct {
	Hitters  []Hitter
	Pitchers []Pitcher
}

// FoldName lowercases, strips accents and collapses whitespace so that
// "José Ramírez" and "jose  ramirez" compare equal.
func FoldName(name string) string {
	tr := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s := strings.ToLower(strings.TrimSpace(name))
	if out, _, err := transform.String(tr, s); err == nil {
		s = out
	}
	return strings.Join(strings.Fields(s), " ")
}
