package verification

import (
	"context"

	"loan-intake-be/pkg/validation"
)

// Result is the verdict of a KYC check. A false Verified is a business
// rejection, not an error; transport problems surface as the error return.
type Result struct {
	Verified bool
	Reason   string
}

// Verifier checks a normalized PAN. Implementations may call out to a real
// registry; the intake flow only depends on this contract.
type Verifier interface {
	Verify(ctx context.Context, pan string) (Result, error)
}

// FormatVerifier validates PAN layout only (demo scope). It stands in for a
// registry-backed verifier and never returns a transport error.
type FormatVerifier struct{}

func NewFormatVerifier() *FormatVerifier {
	return &FormatVerifier{}
}

func (v *FormatVerifier) Verify(_ context.Context, pan string) (Result, error) {
	if pan == "" {
		return Result{Verified: false, Reason: "PAN not provided"}, nil
	}
	if len(pan) != 10 {
		return Result{Verified: false, Reason: "Invalid PAN length"}, nil
	}
	if !validation.ValidPAN(pan) {
		return Result{Verified: false, Reason: "Invalid PAN format"}, nil
	}
	return Result{Verified: true, Reason: "PAN format verified successfully"}, nil
}
