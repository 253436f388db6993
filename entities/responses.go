package entities

// ListResult is one page of the management listing.
type ListResult struct {
	Total     int              `json:"total"`
	Page      int              `json:"page"`
	PageSize  int              `json:"page_size"`
	Medicines []EnrichedRecord `json:"medicines"`
}

// InventoryStats summarises the whole catalog.
type InventoryStats struct {
	TotalItems    int `json:"total_items"`
	LowStockItems int `json:"low_stock_items"`
	OutOfStock    int `json:"out_of_stock"`
	ExpiringSoon  int `json:"expiring_soon"`
	Expired       int `json:"expired"`
}

// SubstituteCandidate is an in-stock catalog entry resolved from one of the
// substitute names listed on another record. Whether it is clinically
// acceptable is decided elsewhere.
type SubstituteCandidate struct {
	SubstituteName string         `json:"substitute_name"`
	Medicine       EnrichedRecord `json:"medicine"`
}

// SubstitutesResponse groups the candidates for one record.
type SubstitutesResponse struct {
	Medicine    EnrichedRecord        `json:"medicine"`
	Substitutes []SubstituteCandidate `json:"substitutes"`
}

// PrescribedItem is one structured line produced by the extraction step.
type PrescribedItem struct {
	MedicineName string `json:"medicine_name"`
	Quantity     string `json:"quantity"`
}

// PrescriptionRequest is the body of a prescription match request.
type PrescriptionRequest struct {
	Medicines []PrescribedItem `json:"medicines"`
}

// OrderSuggestion tells how many packs cover the prescribed units.
type OrderSuggestion struct {
	Packs int `json:"packs"`
	Units int `json:"units"`
}

// PrescriptionMatchItem is one catalog candidate for a prescribed line.
type PrescriptionMatchItem struct {
	EnrichedRecord
	PackCount  int              `json:"pack_count"`
	Suggestion *OrderSuggestion `json:"suggestion,omitempty"`
}

// PrescriptionMatch is the outcome for one prescribed line.
type PrescriptionMatch struct {
	MedicineName       string                  `json:"medicine_name"`
	PrescribedQuantity int                     `json:"prescribed_quantity"`
	Matches            []PrescriptionMatchItem `json:"matches"`
	Message            string                  `json:"message,omitempty"`
}

// PrescriptionResponse wraps all lines of a prescription.
type PrescriptionResponse struct {
	Results []PrescriptionMatch `json:"results"`
}

// ListFilter is the parsed query of the management listing. Empty fields
// mean "not requested".
type ListFilter struct {
	Search       string
	SortBy       string
	SortOrder    string
	StatusFilter []StatusTag
	Page         int
	PageSize     int
}
