package eligibility

import "math"

const (
	RiskBandLow    = "LOW"
	RiskBandMedium = "MEDIUM"
	RiskBandHigh   = "HIGH"
)

const (
	ReasonLowIncome     = "Monthly income below minimum eligibility threshold"
	ReasonInvalidTenure = "Invalid loan tenure"
	ReasonFOIRTooHigh   = "FOIR too high based on existing obligations"
	ReasonEligible      = "Eligible based on income, obligations, and tenure"
)

// Policy holds the underwriting thresholds the engine evaluates against.
type Policy struct {
	MinMonthlyIncome int64
	MaxFOIR          float64
	LowRiskFOIR      float64
}

type Input struct {
	MonthlyIncome   int64
	ExistingEMI     int64
	RequestedAmount int64
	TenureMonths    int
}

// Result is produced fresh per evaluation and never mutated afterwards.
type Result struct {
	Eligible          bool
	ApprovedAmount    int64
	RequestedAmount   int64
	FOIR              float64
	RiskBand          string
	MaxEligibleAmount int64
	Reason            string
}

// Evaluate runs the affordability and risk assessment. It is a pure function:
// no I/O, no side effects, deterministic for identical inputs. Tenure is
// re-checked here even though input validation guards it upstream.
func (p Policy) Evaluate(in Input) Result {
	if in.MonthlyIncome < p.MinMonthlyIncome {
		return Result{
			Eligible:        false,
			ApprovedAmount:  0,
			RequestedAmount: in.RequestedAmount,
			RiskBand:        RiskBandHigh,
			Reason:          ReasonLowIncome,
		}
	}

	if in.TenureMonths <= 0 {
		return Result{
			Eligible:        false,
			ApprovedAmount:  0,
			RequestedAmount: in.RequestedAmount,
			RiskBand:        RiskBandHigh,
			Reason:          ReasonInvalidTenure,
		}
	}

	proposedEMI := float64(in.RequestedAmount) / float64(in.TenureMonths)

	// FOIR is kept at full precision for the decision; rounding is only for
	// display. MinMonthlyIncome > 0 precludes division by zero here.
	foir := (float64(in.ExistingEMI) + proposedEMI) / float64(in.MonthlyIncome)

	if foir > p.MaxFOIR {
		return Result{
			Eligible:        false,
			ApprovedAmount:  0,
			RequestedAmount: in.RequestedAmount,
			FOIR:            roundRatio(foir),
			RiskBand:        RiskBandHigh,
			Reason:          ReasonFOIRTooHigh,
		}
	}

	riskBand := RiskBandMedium
	if foir <= p.LowRiskFOIR {
		riskBand = RiskBandLow
	}

	maxAffordableEMI := float64(in.MonthlyIncome)*p.MaxFOIR - float64(in.ExistingEMI)
	maxEligibleAmount := int64(math.Floor(maxAffordableEMI * float64(in.TenureMonths)))

	approvedAmount := in.RequestedAmount
	if maxEligibleAmount < approvedAmount {
		approvedAmount = maxEligibleAmount
	}

	return Result{
		Eligible:          true,
		ApprovedAmount:    approvedAmount,
		RequestedAmount:   in.RequestedAmount,
		FOIR:              roundRatio(foir),
		RiskBand:          riskBand,
		MaxEligibleAmount: maxEligibleAmount,
		Reason:            ReasonEligible,
	}
}

func roundRatio(r float64) float64 {
	return math.Round(r*100) / 100
}
