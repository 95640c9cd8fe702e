package dss

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	bandSectorRe  = regexp.MustCompile(`_([A-Z]\d+)([A-Z])_`)
	digitSectorRe = regexp.MustCompile(`_(\d+)([A-Z])_`)
)

var sectorNames = map[string]string{
	"A": "alpha",
	"B": "beta",
	"C": "gamma",
	"D": "delta",
	"E": "epsilon",
	"F": "zeta",
}

// Sectors are the four sector names that templates address, in letter order.
var Sectors = []string{"alpha", "beta", "gamma", "delta"}

// SectorLetter returns the sector letter embedded in identifiers like
// "NCGN003194_N002A_1" or "WCL03194_9A_1".
func SectorLetter(id string) (string, bool) {
	if m := bandSectorRe.FindStringSubmatch(id); m != nil {
		return m[2], true
	}
	if m := digitSectorRe.FindStringSubmatch(id); m != nil {
		return m[2], true
	}
	return "", false
}

// sectorNamer hands out sector names within one group and value class.
// Repeated letters get a numeric suffix: alpha, alpha1, alpha2.
type sectorNamer struct {
	seen map[string]int
}

func newSectorNamer() *sectorNamer {
	return &sectorNamer{seen: make(map[string]int)}
}

func (n *sectorNamer) name(letter string) string {
	greek, ok := sectorNames[letter]
	if !ok {
		return "sector_" + strings.ToLower(letter)
	}
	count, dup := n.seen[letter]
	if !dup {
		n.seen[letter] = 0
		return greek
	}
	count++
	n.seen[letter] = count
	return greek + strconv.Itoa(count)
}
