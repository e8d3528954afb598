package models

// Affordability classifies the debt-to-income ratio of a payment.
type Affordability string

const (
	AffordabilityAffordable   Affordability = "affordable"
	AffordabilityTight        Affordability = "tight"
	AffordabilityUnaffordable Affordability = "unaffordable"
	// AffordabilityUnknown is returned when no income was supplied.
	AffordabilityUnknown Affordability = "unknown"
)

// FinancingTerms is the input of a financing calculation.
type FinancingTerms struct {
	VehiclePrice  float64  `json:"vehicle_price" validate:"required,gt=0"`
	DownPayment   float64  `json:"down_payment" validate:"gte=0"`
	TradeInValue  float64  `json:"trade_in_value" validate:"gte=0"`
	AnnualRate    float64  `json:"annual_rate" validate:"gte=0"`
	TermMonths    int      `json:"term_months" validate:"required,gt=0"`
	TaxRate       float64  `json:"tax_rate" validate:"gte=0"`
	Fees          float64  `json:"fees" validate:"gte=0"`
	MonthlyIncome *float64 `json:"monthly_income,omitempty"`
}

// PaymentBreakdown itemises what the financed amount is made of.
type PaymentBreakdown struct {
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
	Tax       float64 `json:"tax"`
	Fees      float64 `json:"fees"`
}

// FinancingCalculationResult is a pure function of its inputs and is
// only ever persisted inside the FIRequest that produced it.
type FinancingCalculationResult struct {
	Principal      float64          `json:"principal"`
	MonthlyPayment float64          `json:"monthly_payment"`
	TotalInterest  float64          `json:"total_interest"`
	TotalCost      float64          `json:"total_cost"`
	TermMonths     int              `json:"term_months"`
	AnnualRate     float64          `json:"annual_rate"`
	DTIRatio       *float64         `json:"dti_ratio,omitempty"`
	Affordability  Affordability    `json:"affordability"`
	Breakdown      PaymentBreakdown `json:"breakdown"`
}

// FinancingOption is one candidate lender offer.
type FinancingOption struct {
	Lender     string  `json:"lender" validate:"required"`
	AnnualRate float64 `json:"annual_rate" validate:"gte=0"`
	TermMonths int     `json:"term_months" validate:"required,gt=0"`
	Type       string  `json:"type,omitempty"`
}

// RankedOption is a lender offer with its computed standing.
type RankedOption struct {
	FinancingOption
	MonthlyPayment      float64  `json:"monthly_payment"`
	DTIRatio            *float64 `json:"dti_ratio,omitempty"`
	ApprovalProbability float64  `json:"approval_probability"`
	IsRecommended       bool     `json:"is_recommended"`
}

// OptionsComparison is the ranked output of the comparator. Exactly one
// option carries IsRecommended.
type OptionsComparison struct {
	Options        []RankedOption `json:"options"`
	BestLender     string         `json:"best_lender"`
	Recommendation string         `json:"recommendation"`
}
