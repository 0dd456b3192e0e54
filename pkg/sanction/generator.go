package sanction

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const nbfcName = "ARMEK Financial Services"

// Request carries the approved terms the letter is issued for.
type Request struct {
	CustomerName   string
	ApprovedAmount int64
	InterestRate   float64
	TenureMonths   int
}

// Letter points at the generated artifact. Password unlocks the download on
// the client side; it is returned once and not stored by the core.
type Letter struct {
	URL      string
	Password string
	Meta     Meta
}

type Meta struct {
	CustomerName   string
	ApprovedAmount int64
	InterestRate   float64
	TenureMonths   int
}

// Issuer produces a retrievable sanction artifact for approved terms.
type Issuer interface {
	Issue(ctx context.Context, req Request) (Letter, error)
}

// LetterGenerator renders sanction letters into outputDir, which the HTTP
// server exposes under urlPrefix.
type LetterGenerator struct {
	outputDir string
	urlPrefix string
}

func NewLetterGenerator(outputDir string) *LetterGenerator {
	return &LetterGenerator{
		outputDir: outputDir,
		urlPrefix: "/generated_letters",
	}
}

var letterTemplate = template.Must(template.New("sanction").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Loan Sanction Letter</title></head>
<body>
<h1 style="text-align:center">LOAN SANCTION LETTER</h1>
<h2 style="text-align:center">{{.NBFCName}}</h2>
<hr>
<table border="1" cellpadding="8">
<tr><th>Borrower Name</th><td>{{.CustomerName}}</td></tr>
<tr><th>Sanction Date</th><td>{{.SanctionDate}}</td></tr>
<tr><th>Loan Type</th><td>Personal Loan</td></tr>
</table>
<h3>KEY FACT SHEET</h3>
<table border="1" cellpadding="8">
<tr><th>Approved Amount</th><td>INR {{.ApprovedAmount}}</td></tr>
<tr><th>Interest Rate</th><td>{{printf "%.2f" .InterestRate}}% per annum</td></tr>
<tr><th>Tenure</th><td>{{.TenureMonths}} months</td></tr>
<tr><th>Repayment Mode</th><td>Monthly EMI</td></tr>
<tr><th>Interest Type</th><td>Fixed</td></tr>
</table>
<p>This loan is sanctioned subject to completion of documentation,
verification, and internal credit policies of the company.
This is a system-generated document and does not require a physical signature.</p>
<hr>
<p>For {{.NBFCName}}<br>Authorized Credit Team</p>
</body>
</html>
`))

func (g *LetterGenerator) Issue(_ context.Context, req Request) (Letter, error) {
	if strings.TrimSpace(req.CustomerName) == "" {
		return Letter{}, fmt.Errorf("customer name is required for issuance")
	}

	if err := os.MkdirAll(g.outputDir, 0755); err != nil {
		return Letter{}, fmt.Errorf("failed to create letter directory: %w", err)
	}

	name := capitalizeWords(req.CustomerName)
	safeName := strings.ReplaceAll(name, " ", "_")
	fileName := fmt.Sprintf("sanction_%s.html", safeName)
	filePath := filepath.Join(g.outputDir, fileName)

	file, err := os.Create(filePath)
	if err != nil {
		return Letter{}, fmt.Errorf("failed to create letter file: %w", err)
	}
	defer file.Close()

	data := struct {
		NBFCName       string
		CustomerName   string
		SanctionDate   string
		ApprovedAmount int64
		InterestRate   float64
		TenureMonths   int
	}{
		NBFCName:       nbfcName,
		CustomerName:   name,
		SanctionDate:   time.Now().Format("02 Jan 2006"),
		ApprovedAmount: req.ApprovedAmount,
		InterestRate:   req.InterestRate,
		TenureMonths:   req.TenureMonths,
	}

	if err := letterTemplate.Execute(file, data); err != nil {
		return Letter{}, fmt.Errorf("failed to render sanction letter: %w", err)
	}

	return Letter{
		URL:      g.urlPrefix + "/" + fileName,
		Password: strings.ToLower(strings.Fields(name)[0]),
		Meta: Meta{
			CustomerName:   name,
			ApprovedAmount: req.ApprovedAmount,
			InterestRate:   req.InterestRate,
			TenureMonths:   req.TenureMonths,
		},
	}, nil
}

func capitalizeWords(raw string) string {
	words := strings.Fields(raw)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
