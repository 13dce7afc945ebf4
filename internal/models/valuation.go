package models

// Status constants for valuation results
const (
	StatusUnderpriced = "Underpriced"
	StatusOverpriced  = "Overpriced"
	StatusError       = "Error"
)

// ValuationResult is the engine's output for one ticker. Error rows carry
// zeroed numeric fields.
type ValuationResult struct {
	Ticker           string  `json:"ticker"`
	FairValue        float64 `json:"fair_value"`
	CurrentPrice     float64 `json:"current_price"`
	PriceDifference  float64 `json:"price_difference"`
	BookValue        float64 `json:"book_value"`
	Status           string  `json:"status"`
	DCFValue         float64 `json:"dcf_value"`
	CompsValue       float64 `json:"comps_value"`
	UpsidePercentage float64 `json:"upside_percentage"`
	Synthetic        bool    `json:"synthetic,omitempty"`
}

// DCFParameters holds the discounted cash flow model inputs
type DCFParameters struct {
	DiscountRate       float64 `json:"discount_rate"`
	TerminalGrowthRate float64 `json:"terminal_growth_rate"`
	MaxGrowthRate      float64 `json:"max_growth_rate"`
	ProjectionYears    int     `json:"projection_years"`
}

// CompsParameters holds the comparable-company multiple inputs
type CompsParameters struct {
	PEConservativeFactor float64 `json:"pe_conservative_factor"`
	MinPERatio           float64 `json:"min_pe_ratio"`
	MaxPERatio           float64 `json:"max_pe_ratio"`
}

// ValuationWeights blends the two methods into one fair value
type ValuationWeights struct {
	DCFWeight   float64 `json:"dcf_weight"`
	CompsWeight float64 `json:"comps_weight"`
}
