package domain

// RegisteredAddress is the registered office address reported by the
// authenticated registry API.
type RegisteredAddress struct {
	AddressLine1 string `json:"address_line_1,omitempty"`
	AddressLine2 string `json:"address_line_2,omitempty"`
	Locality     string `json:"locality,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
	Country      string `json:"country,omitempty"`
}

// RegistrySearchItem is one hit of the API company search.
type RegistrySearchItem struct {
	CompanyNumber  string            `json:"company_number"`
	Title          string            `json:"title"`
	CompanyType    string            `json:"company_type"`
	CompanyStatus  string            `json:"company_status"`
	DateOfCreation string            `json:"date_of_creation"`
	Address        RegisteredAddress `json:"registered_office_address"`
	SICCodes       []string          `json:"sic_codes,omitempty"`
}

// RegistrySearchPage is one page of API search results.
type RegistrySearchPage struct {
	TotalResults int                  `json:"total_results"`
	ItemsPerPage int                  `json:"items_per_page"`
	StartIndex   int                  `json:"start_index"`
	Items        []RegistrySearchItem `json:"items"`
}

// RegistryProfile is the company profile returned by the API.
type RegistryProfile struct {
	CompanyNumber        string            `json:"company_number"`
	CompanyName          string            `json:"company_name"`
	Type                 string            `json:"type"`
	CompanyStatus        string            `json:"company_status"`
	DateOfCreation       string            `json:"date_of_creation"`
	CanFile              bool              `json:"can_file"`
	HasCharges           bool              `json:"has_charges"`
	HasInsolvencyHistory bool              `json:"has_insolvency_history"`
	Address              RegisteredAddress `json:"registered_office_address"`
	SICCodes             []string          `json:"sic_codes,omitempty"`
}

// Officer is one appointment on a company's officer list.
type Officer struct {
	Name        string `json:"name"`
	OfficerRole string `json:"officer_role"`
	AppointedOn string `json:"appointed_on,omitempty"`
	ResignedOn  string `json:"resigned_on,omitempty"`
	Nationality string `json:"nationality,omitempty"`
	Occupation  string `json:"occupation,omitempty"`
}

// OfficerList is the officers endpoint payload.
type OfficerList struct {
	TotalResults  int       `json:"total_results"`
	ActiveCount   int       `json:"active_count"`
	ResignedCount int       `json:"resigned_count"`
	Items         []Officer `json:"items"`
}
