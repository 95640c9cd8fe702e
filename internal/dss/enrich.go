package dss

import (
	"log/slog"
	"strings"
)

// Node-identity worksheet columns.
const (
	NodeNameColumn    = "gNodeB Name"
	NodeIDColumn      = "gNBId"
	NodeRoleColumn    = "Node to be built as"
	NodeENBIDColumn   = "eNBId"
	NodeENBNameColumn = "eNodeB Name"
)

// Cell-identity worksheet columns, compared as trimmed upper-case headers.
const (
	CellIdentifierColumn = "EUTRANCELLFDDID"
	CellSectorIDColumn   = "SECTORID"
	CellIDColumn         = "CELLID"
)

// SectorIDs are the LTE identifiers joined for one DSS sector. Either field
// may be null.
type SectorIDs struct {
	SectorID Value
	CellID   Value
}

// EnrichedRecord is a cleaned record plus the identifiers joined from the
// auxiliary worksheets. Fields whose lookup missed stay null.
type EnrichedRecord struct {
	CleanedRecord

	PrimaryNode Value
	ENBID       Value
	LTESiteID   Value

	// Sectors holds joined ids keyed by DSS sector name.
	Sectors map[string]SectorIDs
	// Equipment holds the last segment of SectorEquipmentFunction keyed by
	// 1-based row ordinal.
	Equipment map[int]string
}

// Sector returns the joined ids for name; both null on a miss.
func (r *EnrichedRecord) Sector(name string) SectorIDs {
	return r.Sectors[name]
}

// Enricher joins cleaned records against the node-identity and cell-identity
// worksheets. Either worksheet may be absent, in which case its fields stay
// null.
type Enricher struct {
	nodes  *Table
	cells  *Table
	logger *slog.Logger
}

func NewEnricher(wb *Workbook, opts Options, logger *slog.Logger) *Enricher {
	opts = opts.WithDefaults()
	e := &Enricher{logger: componentLogger(logger, "enricher")}
	if t, ok := wb.Sheet(opts.NodeSheet); ok {
		e.nodes = t
	} else {
		e.logger.Warn("node identity worksheet missing; node fields left empty",
			slog.String("sheet", opts.NodeSheet))
	}
	if t, ok := wb.Sheet(opts.CellSheet); ok {
		e.cells = t
	} else {
		e.logger.Warn("cell identity worksheet missing; sector ids left empty",
			slog.String("sheet", opts.CellSheet))
	}
	return e
}

// Enrich never fails. Misses are logged and leave fields null.
func (e *Enricher) Enrich(rec CleanedRecord) EnrichedRecord {
	out := EnrichedRecord{
		CleanedRecord: rec,
		Sectors:       make(map[string]SectorIDs),
		Equipment:     make(map[int]string),
	}

	if len(rec.Rows) > 0 {
		first := rec.Rows[0]
		name, id := first.Get("gNB Name"), first.Get("gNBId")
		if !name.IsNull() && !id.IsNull() {
			e.joinNode(&out, name, id)
		}
	}

	for _, sector := range rec.DSS.Names() {
		ids, ok := e.lookupCell(rec.DSS[sector])
		if !ok {
			e.logger.Warn("no cell identity row for DSS value",
				slog.String("group", rec.GroupName),
				slog.String("sector", sector),
				slog.String("value", rec.DSS[sector].String()))
			continue
		}
		out.Sectors[sector] = ids
	}

	for i, row := range rec.Rows {
		if seg, ok := equipmentSuffix(row.Get("SectorEquipmentFunction")); ok {
			out.Equipment[i+1] = seg
		}
	}

	e.logger.Info("group enriched",
		slog.String("group", rec.GroupName),
		slog.Bool("node_matched", !out.PrimaryNode.IsNull() || !out.ENBID.IsNull() || !out.LTESiteID.IsNull()),
		slog.Int("sectors_matched", len(out.Sectors)))
	return out
}

// joinNode copies node fields from the first node row matching both name and id.
func (e *Enricher) joinNode(out *EnrichedRecord, name, id Value) {
	if e.nodes == nil {
		return
	}
	nameCol, ok1 := e.nodes.Column(NodeNameColumn)
	idCol, ok2 := e.nodes.Column(NodeIDColumn)
	if !ok1 || !ok2 {
		e.logger.Warn("node identity worksheet lacks key columns",
			slog.String("sheet", e.nodes.Name))
		return
	}
	roleCol, hasRole := e.nodes.Column(NodeRoleColumn)
	enbCol, hasENB := e.nodes.Column(NodeENBIDColumn)
	siteCol, hasSite := e.nodes.Column(NodeENBNameColumn)

	for _, row := range e.nodes.Rows {
		if !row.Get(nameCol).Equal(name) || !row.Get(idCol).Equal(id) {
			continue
		}
		if hasRole {
			out.PrimaryNode = row.Get(roleCol)
		}
		if hasENB {
			out.ENBID = row.Get(enbCol).AsInt()
		}
		if hasSite {
			out.LTESiteID = row.Get(siteCol)
		}
		return
	}
	e.logger.Warn("no node identity row matched",
		slog.String("group", out.GroupName),
		slog.String("gnb_name", name.String()),
		slog.String("gnb_id", id.String()))
}

// lookupCell finds the first cell identity row whose identifier equals the
// DSS value exactly after trimming whitespace.
func (e *Enricher) lookupCell(dss Value) (SectorIDs, bool) {
	if e.cells == nil {
		return SectorIDs{}, false
	}
	idCol, ok1 := e.cells.Column(CellIdentifierColumn)
	secCol, ok2 := e.cells.Column(CellSectorIDColumn)
	cellCol, ok3 := e.cells.Column(CellIDColumn)
	if !ok1 || !ok2 || !ok3 {
		return SectorIDs{}, false
	}

	want := strings.TrimSpace(dss.String())
	for _, row := range e.cells.Rows {
		if strings.TrimSpace(row.Get(idCol).String()) != want {
			continue
		}
		return SectorIDs{
			SectorID: row.Get(secCol).AsInt(),
			CellID:   row.Get(cellCol).AsInt(),
		}, true
	}
	return SectorIDs{}, false
}

func equipmentSuffix(v Value) (string, bool) {
	if v.IsNull() {
		return "", false
	}
	parts := strings.Split(v.String(), "_")
	if len(parts) < 2 || parts[len(parts)-1] == "" {
		return "", false
	}
	return parts[len(parts)-1], true
}
