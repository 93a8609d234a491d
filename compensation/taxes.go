package compensation

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// TAX RATES - Flat approximations for forecasting
// =============================================================================

// TaxRates are flat rates applied to gross pay.
type TaxRates struct {
	Federal      decimal.Decimal
	State        decimal.Decimal
	EmployeeFICA decimal.Decimal
	EmployerFICA decimal.Decimal
	FUTA         decimal.Decimal
	SUTA         decimal.Decimal
}

// DefaultTaxRates: 22% federal, 5% state, 7.65% FICA each side, 0.6% FUTA, 2.7% SUTA.
func DefaultTaxRates() TaxRates {
	return TaxRates{
		Federal:      decimal.RequireFromString("0.22"),
		State:        decimal.RequireFromString("0.05"),
		EmployeeFICA: decimal.RequireFromString("0.0765"),
		EmployerFICA: decimal.RequireFromString("0.0765"),
		FUTA:         decimal.RequireFromString("0.006"),
		SUTA:         decimal.RequireFromString("0.027"),
	}
}

// taxRatesFile is the on-disk form. Omitted keys keep their default.
type taxRatesFile struct {
	Federal      *string `yaml:"federal"`
	State        *string `yaml:"state"`
	EmployeeFICA *string `yaml:"employee_fica"`
	EmployerFICA *string `yaml:"employer_fica"`
	FUTA         *string `yaml:"futa"`
	SUTA         *string `yaml:"suta"`
}

// ParseTaxRates reads YAML such as:
//
//	federal: "0.22"
//	state: "0.0495"
//	employee_fica: "0.0765"
func ParseTaxRates(data []byte) (TaxRates, error) {
	var f taxRatesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return TaxRates{}, fmt.Errorf("failed to parse tax rates: %w", err)
	}

	rates := DefaultTaxRates()
	fields := []struct {
		name string
		src  *string
		dst  *decimal.Decimal
	}{
		{"federal", f.Federal, &rates.Federal},
		{"state", f.State, &rates.State},
		{"employee_fica", f.EmployeeFICA, &rates.EmployeeFICA},
		{"employer_fica", f.EmployerFICA, &rates.EmployerFICA},
		{"futa", f.FUTA, &rates.FUTA},
		{"suta", f.SUTA, &rates.SUTA},
	}
	for _, fld := range fields {
		if fld.src == nil {
			continue
		}
		v, err := decimal.NewFromString(*fld.src)
		if err != nil || v.IsNegative() || v.GreaterThan(decimal.NewFromInt(1)) {
			return TaxRates{}, fmt.Errorf("tax rate %s: must be a number between 0 and 1, got %q", fld.name, *fld.src)
		}
		*fld.dst = v
	}
	return rates, nil
}

// LoadTaxRates reads a YAML tax-rate file.
func LoadTaxRates(path string) (TaxRates, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TaxRates{}, fmt.Errorf("failed to read tax rates: %w", err)
	}
	return ParseTaxRates(data)
}

// =============================================================================
// ESTIMATES
// =============================================================================

// EmployeeTaxes is withholding estimated from gross pay.
type EmployeeTaxes struct {
	Federal decimal.Decimal `json:"federal"`
	State   decimal.Decimal `json:"state"`
	FICA    decimal.Decimal `json:"fica"`
	Total   decimal.Decimal `json:"total"`
}

// EmployerTaxes is the employer-side burden estimated from gross pay.
type EmployerTaxes struct {
	FICA  decimal.Decimal `json:"fica"`
	FUTA  decimal.Decimal `json:"futa"`
	SUTA  decimal.Decimal `json:"suta"`
	Total decimal.Decimal `json:"total"`
}

// Withholding estimates employee taxes on gross.
func (r TaxRates) Withholding(gross decimal.Decimal) EmployeeTaxes {
	federal := gross.Mul(r.Federal)
	state := gross.Mul(r.State)
	fica := gross.Mul(r.EmployeeFICA)
	return EmployeeTaxes{
		Federal: federal,
		State:   state,
		FICA:    fica,
		Total:   federal.Add(state).Add(fica),
	}
}

// EmployerBurden estimates employer taxes on gross.
func (r TaxRates) EmployerBurden(gross decimal.Decimal) EmployerTaxes {
	fica := gross.Mul(r.EmployerFICA)
	futa := gross.Mul(r.FUTA)
	suta := gross.Mul(r.SUTA)
	return EmployerTaxes{
		FICA:  fica,
		FUTA:  futa,
		SUTA:  suta,
		Total: fica.Add(futa).Add(suta),
	}
}
