package dss

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"sort"
	"strings"
)

// maxReported caps how many missing or null tokens are listed in the log.
const maxReported = 5

var nrNodePrefixRe = regexp.MustCompile(`^(.+_N\d{3})[A-D]_\d$`)

// PlaceholderMap maps template tokens to values for one group. A token can be
// present with a null value, which is distinct from being absent.
type PlaceholderMap struct {
	Name   string // pattern key, e.g. "N066_1"
	Group  string // source group, e.g. "DSS1"
	values map[string]Value
}

func NewPlaceholderMap(name string) *PlaceholderMap {
	return &PlaceholderMap{Name: name, values: make(map[string]Value)}
}

func (m *PlaceholderMap) Set(token string, v Value) { m.values[token] = v }

func (m *PlaceholderMap) Get(token string) (Value, bool) {
	v, ok := m.values[token]
	return v, ok
}

func (m *PlaceholderMap) Len() int { return len(m.values) }

// Tokens returns the tokens longest first, ties in ascending order.
func (m *PlaceholderMap) Tokens() []string {
	tokens := make([]string, 0, len(m.values))
	for t := range m.values {
		tokens = append(tokens, t)
	}
	sort.Slice(tokens, func(i, j int) bool {
		if len(tokens[i]) != len(tokens[j]) {
			return len(tokens[i]) > len(tokens[j])
		}
		return tokens[i] < tokens[j]
	})
	return tokens
}

func (m *PlaceholderMap) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.values)
}

// Validation lists expected tokens that are absent or null.
type Validation struct {
	Missing []string
	Null    []string
}

func (v Validation) OK() bool { return len(v.Missing) == 0 && len(v.Null) == 0 }

// Validate checks m against ExpectedTokens.
func (m *PlaceholderMap) Validate() Validation {
	var res Validation
	for _, t := range ExpectedTokens {
		v, ok := m.values[t]
		switch {
		case !ok:
			res.Missing = append(res.Missing, t)
		case v.IsNull():
			res.Null = append(res.Null, t)
		}
	}
	return res
}

// Mapper translates enriched records into placeholder maps.
type Mapper struct {
	logger *slog.Logger
}

func NewMapper(logger *slog.Logger) *Mapper {
	return &Mapper{logger: componentLogger(logger, "mapper")}
}

// Map builds the placeholder map of one record and logs the advisory
// validation result.
func (mp *Mapper) Map(rec EnrichedRecord) *PlaceholderMap {
	m := NewPlaceholderMap(rec.Pattern.Key())
	m.Group = rec.GroupName

	row := func(i int) ProjectedRow {
		if i < len(rec.Rows) {
			return rec.Rows[i]
		}
		return nil
	}

	m.Set(TokenPrimaryNode, rec.PrimaryNode)
	m.Set(TokenLTESiteID, rec.LTESiteID)
	m.Set(TokenNRNodeName, row(0).Get("gNB Name"))
	m.Set(TokenLTEENBID, rec.ENBID)
	m.Set(TokenNRGNBID, row(0).Get("gNBId"))
	m.Set(TokenSSBFreqA, row(0).Get("ssbFrequency"))

	for i, sector := range Sectors {
		t := sectorTokenTable[sector]
		ids := rec.Sector(sector)
		nr := rec.NR[sector]

		m.Set(t.LTECellID, ids.CellID)
		m.Set(t.LTESectorCarr, ids.SectorID)
		m.Set(t.NRCellLocalID, row(i).Get("cellLocalId"))
		m.Set(t.NRSectorCarr, nr)
		m.Set(t.NRNodeSector, nr)
		m.Set(t.LTESiteSector, rec.DSS[sector])

		if seg, ok := rec.Equipment[i+1]; ok {
			m.Set(t.Equipment, StringValue(seg))
		} else {
			m.Set(t.Equipment, NullValue())
		}

		if ess, ok := ESSForCell(nr); ok {
			m.Set(t.ESSPairID, IntValue(ess.PairID))
			m.Set(t.ESSLocalID, IntValue(ess.LocalID))
		} else {
			m.Set(t.ESSPairID, NullValue())
			m.Set(t.ESSLocalID, NullValue())
		}
	}

	ref := rec.NR["gamma"]
	if ref.IsNull() {
		ref = rec.NR["delta"]
	}
	m.Set(TokenNRNodeN00X, nrNodePrefix(ref))
	m.Set(TokenN00X, StringValue(strings.Split(rec.Pattern.Key(), "_")[0]))

	mp.report(m)
	return m
}

func nrNodePrefix(nr Value) Value {
	if nr.IsNull() {
		return NullValue()
	}
	if sub := nrNodePrefixRe.FindStringSubmatch(nr.String()); sub != nil {
		return StringValue(sub[1])
	}
	return NullValue()
}

func (mp *Mapper) report(m *PlaceholderMap) {
	res := m.Validate()
	if res.OK() {
		mp.logger.Info("all placeholders populated",
			slog.String("variable", m.Name),
			slog.Int("placeholders", m.Len()))
		return
	}
	if len(res.Missing) > 0 {
		mp.logger.Warn("placeholders missing",
			slog.String("variable", m.Name),
			slog.Int("count", len(res.Missing)),
			slog.String("first", strings.Join(head(res.Missing, maxReported), ", ")))
	}
	if len(res.Null) > 0 {
		mp.logger.Warn("placeholders without value",
			slog.String("variable", m.Name),
			slog.Int("count", len(res.Null)),
			slog.String("first", strings.Join(head(res.Null, maxReported), ", ")))
	}
}

func head(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
