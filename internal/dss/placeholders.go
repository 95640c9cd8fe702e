package dss

// Placeholder tokens as they appear verbatim in the site templates.
const (
	TokenPrimaryNode = "xxMMBB_Primary_Node_Namexx"
	TokenLTESiteID   = "xxLTE_Site_IDxx"
	TokenNRNodeName  = "xx5G_NR_Node_Namexx"
	TokenLTEENBID    = "xxLTE_eNBIDxx"
	TokenNRGNBID     = "xx5G_NR_gNBIDxx"
	TokenSSBFreqA    = "xx5G_ssbfrequencyAxx"
	TokenNRNodeN00X  = "xx5G_NR_Node_Namexx_N00X"
	TokenN00X        = "N00X"
)

// sectorTokens are the tokens that exist once per sector.
type sectorTokens struct {
	LTECellID     string
	NRCellLocalID string
	NRSectorCarr  string
	LTESectorCarr string
	LTESiteSector string
	NRNodeSector  string
	Equipment     string
	ESSPairID     string
	ESSLocalID    string
}

var sectorTokenTable = map[string]sectorTokens{
	"alpha": newSectorTokens("A", "Alpha"),
	"beta":  newSectorTokens("B", "Beta"),
	"gamma": newSectorTokens("C", "Gamma"),
	"delta": newSectorTokens("D", "Delta"),
}

func newSectorTokens(letter, title string) sectorTokens {
	return sectorTokens{
		LTECellID:     "LTE_cellid" + letter,
		NRCellLocalID: "xx5G_celllocalid" + letter + "xx",
		NRSectorCarr:  "xx5G_NRSectorCarrier_" + title + "xx",
		LTESectorCarr: "xxLTE_SectorCarrier_No_" + title + "xx",
		LTESiteSector: "xxLTE_Site_IDxx_X" + letter + "_1",
		NRNodeSector:  "xx5G_NR_Node_Namexx_N00X" + letter + "_1",
		Equipment:     "N00X" + letter,
		ESSPairID:     "essScPairId_" + letter,
		ESSLocalID:    "essScLocalId_" + letter,
	}
}

// FourSectorTokens decide template selection: any non-null value means the
// group has a delta sector.
var FourSectorTokens = []string{
	"LTE_cellidD",
	"xx5G_celllocalidDxx",
	"xx5G_NRSectorCarrier_Deltaxx",
	"essScPairId_D",
}

// ExpectedTokens is the full vocabulary a mapped group should carry.
var ExpectedTokens = buildExpectedTokens()

func buildExpectedTokens() []string {
	tokens := []string{
		TokenPrimaryNode,
		TokenLTESiteID,
		TokenNRNodeName,
		TokenLTEENBID,
		TokenNRGNBID,
	}
	for _, s := range Sectors {
		tokens = append(tokens, sectorTokenTable[s].LTECellID)
	}
	for _, s := range Sectors {
		tokens = append(tokens, sectorTokenTable[s].NRCellLocalID)
	}
	tokens = append(tokens, TokenSSBFreqA)
	for _, s := range Sectors {
		t := sectorTokenTable[s]
		tokens = append(tokens, t.NRSectorCarr, t.LTESectorCarr, t.LTESiteSector, t.NRNodeSector, t.Equipment)
	}
	tokens = append(tokens, TokenN00X)
	for _, s := range Sectors {
		t := sectorTokenTable[s]
		tokens = append(tokens, t.ESSPairID, t.ESSLocalID)
	}
	return append(tokens, TokenNRNodeN00X)
}
