package dss

import "regexp"

// ESSCarrier is the shared-spectrum pairing assigned to one NR sector carrier.
type ESSCarrier struct {
	PairID  int64
	LocalID int64
}

// essScTable is keyed by {band}{sector}_{carrier}.
var essScTable = map[string]ESSCarrier{
	"N066A_1": {2222, 20},
	"N066B_1": {2223, 21},
	"N066C_1": {2224, 22},
	"N066D_1": {2225, 23},
	"N066A_2": {2225, 23},
	"N066B_2": {2226, 24},
	"N066C_2": {2227, 25},
	"N066D_2": {2228, 26},

	"N002A_1": {3322, 30},
	"N002B_1": {3323, 31},
	"N002C_1": {3324, 32},
	"N002D_1": {3325, 33},
	"N002A_2": {3325, 33},
	"N002B_2": {3326, 34},
	"N002C_2": {3327, 35},
	"N002D_2": {3328, 36},

	"N005A_1": {1122, 10},
	"N005B_1": {1123, 11},
	"N005C_1": {1124, 12},
	"N005D_1": {1125, 13},
	"N005A_2": {1125, 13},
	"N005B_2": {1126, 14},
	"N005C_2": {1127, 15},
	"N005D_2": {1128, 16},
}

var essScKeyRe = regexp.MustCompile(`_(N\d{3}[A-D]_\d)$`)

// LookupESS returns the pairing for an exact {band}{sector}_{carrier} key.
func LookupESS(key string) (ESSCarrier, bool) {
	c, ok := essScTable[key]
	return c, ok
}

// ESSForCell extracts the key suffix of an NR cell identifier
// ("NCGN003194_N066A_1" -> "N066A_1") and looks it up.
func ESSForCell(nr Value) (ESSCarrier, bool) {
	if nr.IsNull() {
		return ESSCarrier{}, false
	}
	m := essScKeyRe.FindStringSubmatch(nr.String())
	if m == nil {
		return ESSCarrier{}, false
	}
	return LookupESS(m[1])
}
