package dss

import (
	"regexp"
	"strings"
)

// UnknownPatternKey is the group key shared by every identifier that does
// not follow the {site}_{band}{sector}_{carrier} convention.
const UnknownPatternKey = "UNKNOWN"

var bandSegment = regexp.MustCompile(`^([A-Z]\d+)[A-Z]?$`)

// Pattern is the band+carrier key of a cell identifier. It is either parsed
// or unknown; only parsed patterns carry a band and a carrier.
type Pattern struct {
	band    string
	carrier string
	parsed  bool
}

// ParsedPattern builds a known pattern.
func ParsedPattern(band, carrier string) Pattern {
	return Pattern{band: band, carrier: carrier, parsed: true}
}

// UnknownPattern is the pattern of an unparseable identifier.
func UnknownPattern() Pattern { return Pattern{} }

// ParsePattern derives the pattern of a cell identifier such as
// "NCRN002376_N066A_1" (-> N066_1). It never fails; identifiers that do not
// fit the convention yield UnknownPattern.
func ParsePattern(id Value) Pattern {
	if id.IsNull() {
		return UnknownPattern()
	}
	parts := strings.Split(strings.TrimSpace(id.String()), "_")
	if len(parts) < 3 {
		return UnknownPattern()
	}
	m := bandSegment.FindStringSubmatch(parts[1])
	if m == nil {
		return UnknownPattern()
	}
	return ParsedPattern(m[1], parts[2])
}

func (p Pattern) Known() bool { return p.parsed }

// Band returns the band (e.g. "N066") of a parsed pattern.
func (p Pattern) Band() (string, bool) { return p.band, p.parsed }

// Carrier returns the carrier number of a parsed pattern.
func (p Pattern) Carrier() (string, bool) { return p.carrier, p.parsed }

// Key is the group key: "{band}_{carrier}" or UnknownPatternKey.
func (p Pattern) Key() string {
	if !p.parsed {
		return UnknownPatternKey
	}
	return p.band + "_" + p.carrier
}

func (p Pattern) String() string { return p.Key() }
