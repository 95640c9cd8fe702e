package dss

import (
	"log/slog"
	"sort"
)

// ProjectedColumns is the allow-list each grouped row is reduced to.
var ProjectedColumns = []string{
	"gNBId",
	"gNB Name",
	"SectorEquipmentFunction",
	"cellLocalId",
	"Carrier",
	"ssbFrequency",
}

// ProjectedRow holds the allow-listed fields of one row keyed by their
// canonical spelling. Columns absent from the worksheet are omitted.
type ProjectedRow map[string]Value

// Get returns the field or null.
func (p ProjectedRow) Get(field string) Value { return p[field] }

// SectorValues maps a sector name (alpha, beta, alpha1, ...) to the raw
// identifier that produced it.
type SectorValues map[string]Value

// Names lists the sector names in sorted order.
func (s SectorValues) Names() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// CleanedRecord is one group flattened to named per-sector fields.
type CleanedRecord struct {
	GroupName string
	Pattern   Pattern
	RowCount  int
	DSS       SectorValues
	NR        SectorValues
	Rows      []ProjectedRow
}

// Cleaner derives sector names and projects rows.
type Cleaner struct {
	logger *slog.Logger
}

func NewCleaner(logger *slog.Logger) *Cleaner {
	return &Cleaner{logger: componentLogger(logger, "cleaner")}
}

// Clean flattens a group. DSS and NR values keep independent duplicate
// counters. Values without a recognizable sector letter are skipped.
func (c *Cleaner) Clean(g Group) CleanedRecord {
	rec := CleanedRecord{
		GroupName: g.Name,
		Pattern:   g.Pattern,
		RowCount:  len(g.Rows),
		DSS:       assignSectors(g.DSSValues),
		NR:        assignSectors(g.CellIDs),
		Rows:      make([]ProjectedRow, 0, len(g.Rows)),
	}
	for _, row := range g.Rows {
		rec.Rows = append(rec.Rows, project(row))
	}

	c.logger.Info("group cleaned",
		slog.String("group", g.Name),
		slog.Int("dss_sectors", len(rec.DSS)),
		slog.Int("nr_sectors", len(rec.NR)),
		slog.Int("rows", len(rec.Rows)))
	return rec
}

func assignSectors(values []Value) SectorValues {
	namer := newSectorNamer()
	out := make(SectorValues, len(values))
	for _, v := range values {
		if v.IsNull() {
			continue
		}
		letter, ok := SectorLetter(v.String())
		if !ok {
			continue
		}
		out[namer.name(letter)] = v
	}
	return out
}

func project(row Row) ProjectedRow {
	out := make(ProjectedRow, len(ProjectedColumns))
	for _, field := range ProjectedColumns {
		if _, v, ok := row.Lookup(field); ok {
			out[field] = v
		}
	}
	return out
}
