package dss

// Default worksheet and column names of the site survey workbook.
const (
	DefaultWorksheet  = "5G Info"
	DefaultDSSColumn  = "DSS"
	DefaultCellColumn = "NRCellDU"
	DefaultExclude    = "NO"
	DefaultNodeSheet  = "Mixed Mode Info"
	DefaultCellSheet  = "eUtran Parameters"
)

// Options configures one pipeline run.
type Options struct {
	Worksheet  string
	DSSColumn  string
	CellColumn string
	Exclude    string
	NodeSheet  string
	CellSheet  string
	Variant    Variant
	// SingleTemplate names the template used when Variant is VariantSingle.
	SingleTemplate string
}

// DefaultOptions returns the options used by the field teams.
func DefaultOptions() Options {
	return Options{
		Worksheet:      DefaultWorksheet,
		DSSColumn:      DefaultDSSColumn,
		CellColumn:     DefaultCellColumn,
		Exclude:        DefaultExclude,
		NodeSheet:      DefaultNodeSheet,
		CellSheet:      DefaultCellSheet,
		Variant:        VariantDual,
		SingleTemplate: FourSectorTemplate,
	}
}

// WithDefaults fills empty fields from DefaultOptions.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.Worksheet == "" {
		o.Worksheet = d.Worksheet
	}
	if o.DSSColumn == "" {
		o.DSSColumn = d.DSSColumn
	}
	if o.CellColumn == "" {
		o.CellColumn = d.CellColumn
	}
	if o.Exclude == "" {
		o.Exclude = d.Exclude
	}
	if o.NodeSheet == "" {
		o.NodeSheet = d.NodeSheet
	}
	if o.CellSheet == "" {
		o.CellSheet = d.CellSheet
	}
	if o.Variant == "" {
		o.Variant = d.Variant
	}
	if o.SingleTemplate == "" {
		o.SingleTemplate = d.SingleTemplate
	}
	return o
}
