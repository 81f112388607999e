package domain

// OffchainMetadata is the JSON document referenced by an NFT's on-chain URI.
// Field order matches the published document layout.
type OffchainMetadata struct {
	Name                 string      `json:"name"`
	Symbol               string      `json:"symbol"`
	Description          string      `json:"description"`
	SellerFeeBasisPoints uint16      `json:"seller_fee_basis_points"`
	Image                string      `json:"image"`
	ExternalURL          string      `json:"external_url"`
	Attributes           []Attribute `json:"attributes"`
	Collection           Collection  `json:"collection"`
	Properties           Properties  `json:"properties"`
}

// Attribute is a single trait. Duplicate trait names are tolerated.
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// Collection describes the NFT family.
type Collection struct {
	Name   string `json:"name"`
	Family string `json:"family"`
}

// Properties holds the file list, category and creator shares.
type Properties struct {
	Files    []PropertiesFile `json:"files"`
	Category string           `json:"category"`
	Creators []Creator        `json:"creators"`
}

// PropertiesFile points at an asset file.
type PropertiesFile struct {
	URI  string `json:"uri"`
	Type string `json:"type"`
}

// Creator is a royalty share holder.
type Creator struct {
	Address string `json:"address"`
	Share   int    `json:"share"`
}

// FindAttribute returns the first attribute with the given trait name.
func (m *OffchainMetadata) FindAttribute(traitType string) (Attribute, bool) {
	for _, a := range m.Attributes {
		if a.TraitType == traitType {
			return a, true
		}
	}
	return Attribute{}, false
}

// OnchainMetadata is the decoded subset of a Metaplex metadata account.
type OnchainMetadata struct {
	UpdateAuthority      string
	Mint                 string
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
}
