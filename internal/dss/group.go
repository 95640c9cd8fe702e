package dss

import (
	"fmt"
	"log/slog"
	"sort"
)

// GroupNamePrefix prefixes the sequential group names DSS1, DSS2, ...
const GroupNamePrefix = "DSS"

// Group holds all filtered rows sharing one Pattern, in input order.
type Group struct {
	Name      string
	Pattern   Pattern
	Rows      []Row
	CellIDs   []Value
	DSSValues []Value
}

// Grouper partitions filtered rows by band+carrier pattern.
type Grouper struct {
	column string
	logger *slog.Logger
}

func NewGrouper(opts Options, logger *slog.Logger) *Grouper {
	return &Grouper{
		column: opts.WithDefaults().CellColumn,
		logger: componentLogger(logger, "grouper"),
	}
}

// Group returns one Group per distinct pattern key. Groups are ordered by key
// and named DSS1, DSS2, ... in that order, so the naming depends only on the
// set of keys present, not on row order.
func (g *Grouper) Group(in *FilteredRows) ([]Group, error) {
	tbl := &Table{Name: in.Sheet, Headers: in.Headers}
	col, ok := tbl.Column(g.column)
	if !ok {
		return nil, columnNotFound(g.column, tbl)
	}

	byKey := make(map[string]*Group)
	for _, row := range in.Rows {
		id := row.Get(col)
		p := ParsePattern(id)
		grp, ok := byKey[p.Key()]
		if !ok {
			grp = &Group{Pattern: p}
			byKey[p.Key()] = grp
		}
		grp.Rows = append(grp.Rows, row)
		grp.CellIDs = append(grp.CellIDs, id)
		grp.DSSValues = append(grp.DSSValues, row.Get(in.Column))
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	groups := make([]Group, 0, len(keys))
	for i, k := range keys {
		grp := byKey[k]
		grp.Name = fmt.Sprintf("%s%d", GroupNamePrefix, i+1)
		groups = append(groups, *grp)

		if !grp.Pattern.Known() {
			g.logger.Warn("identifiers without a band pattern grouped together",
				slog.String("group", grp.Name),
				slog.Int("rows", len(grp.Rows)))
			continue
		}
		g.logger.Info("group created",
			slog.String("group", grp.Name),
			slog.String("pattern", k),
			slog.Int("rows", len(grp.Rows)))
	}
	return groups, nil
}
