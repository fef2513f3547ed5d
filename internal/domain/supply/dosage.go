package supply

import (
	"github.com/shopspring/decimal"
)

// Format describes how a supply is dosed and dispensed.
type Format string

const (
	FormatLiquid  Format = "liquid"  // ml per kg
	FormatTablet  Format = "tablet"  // tablets per kg
	FormatPowder  Format = "powder"  // grams per kg
	FormatPipette Format = "pipette" // one per application, weight band
	FormatUnit    Format = "unit"    // materials, one per application
)

func (f Format) IsValid() bool {
	switch f {
	case FormatLiquid, FormatTablet, FormatPowder, FormatPipette, FormatUnit:
		return true
	}
	return false
}

// WeightBased reports whether the dose scales with the patient's weight.
func (f Format) WeightBased() bool {
	switch f {
	case FormatLiquid, FormatTablet, FormatPowder:
		return true
	}
	return false
}

// Dosing is the part of a supply that drives the container computation.
type Dosing struct {
	Format              Format
	DosePerKg           decimal.Decimal
	ApplicationsPerDay  int
	ContentPerContainer decimal.Decimal
	MinWeightKg         decimal.Decimal
	MaxWeightKg         decimal.Decimal
}

// DoseRequest is one line of treatment. Containers, when positive, is taken
// as is and skips the computation.
type DoseRequest struct {
	WeightKg   decimal.Decimal
	Days       int
	Containers int64
}

// Requirement is the outcome of a dose computation.
type Requirement struct {
	Units      decimal.Decimal `json:"units"`
	Containers int64           `json:"containers"`
}

// Require computes the whole containers needed for a treatment line, rounding
// up. A non-zero need is always at least one container.
func Require(d Dosing, req DoseRequest) (Requirement, error) {
	if req.Containers < 0 {
		return Requirement{}, ErrInvalidQuantity
	}
	if req.Containers > 0 {
		return Requirement{
			Units:      decimal.NewFromInt(req.Containers).Mul(content(d)),
			Containers: req.Containers,
		}, nil
	}

	days := int64(req.Days)
	if days <= 0 {
		days = 1
	}
	apps := int64(d.ApplicationsPerDay)
	if apps <= 0 {
		apps = 1
	}
	applications := decimal.NewFromInt(apps * days)

	var units decimal.Decimal
	switch {
	case d.Format.WeightBased():
		if !req.WeightKg.IsPositive() {
			return Requirement{}, ErrWeightRequired
		}
		if !d.DosePerKg.IsPositive() {
			return Requirement{}, ErrDoseNotConfigured
		}
		units = d.DosePerKg.Mul(req.WeightKg).Mul(applications)

	case d.Format == FormatPipette:
		if err := checkBand(d, req.WeightKg); err != nil {
			return Requirement{}, err
		}
		units = applications

	case d.Format == FormatUnit:
		units = applications

	default:
		return Requirement{}, ErrInvalidFormat
	}

	containers := units.Div(content(d)).Ceil().IntPart()
	if containers < 1 && units.IsPositive() {
		containers = 1
	}
	return Requirement{Units: units, Containers: containers}, nil
}

func content(d Dosing) decimal.Decimal {
	if d.ContentPerContainer.IsPositive() {
		return d.ContentPerContainer
	}
	return decimal.NewFromInt(1)
}

func checkBand(d Dosing, weight decimal.Decimal) error {
	if d.MinWeightKg.IsZero() && d.MaxWeightKg.IsZero() {
		return nil
	}
	if !weight.IsPositive() {
		return ErrWeightRequired
	}
	if weight.LessThan(d.MinWeightKg) {
		return ErrWeightOutOfRange
	}
	if d.MaxWeightKg.IsPositive() && weight.GreaterThan(d.MaxWeightKg) {
		return ErrWeightOutOfRange
	}
	return nil
}
