package supply

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRequire(t *testing.T) {
	amoxicillin := Dosing{
		Format:              FormatLiquid,
		DosePerKg:           d("0.5"), // ml per kg
		ApplicationsPerDay:  2,
		ContentPerContainer: d("60"), // ml per bottle
	}

	tests := []struct {
		name    string
		dosing  Dosing
		req     DoseRequest
		want    int64
		units   string
		wantErr error
	}{
		{
			name:   "liquid exact fit",
			dosing: amoxicillin,
			req:    DoseRequest{WeightKg: d("10"), Days: 6},
			want:   1,
			units:  "60",
		},
		{
			name:   "liquid rounds up",
			dosing: amoxicillin,
			req:    DoseRequest{WeightKg: d("10.5"), Days: 6},
			want:   2,
			units:  "63",
		},
		{
			name:   "days default to one",
			dosing: amoxicillin,
			req:    DoseRequest{WeightKg: d("4"), Days: 0},
			want:   1,
			units:  "4",
		},
		{
			name: "tablets per box",
			dosing: Dosing{
				Format:              FormatTablet,
				DosePerKg:           d("0.25"),
				ApplicationsPerDay:  1,
				ContentPerContainer: d("10"),
			},
			req:   DoseRequest{WeightKg: d("20"), Days: 5},
			want:  3,
			units: "25",
		},
		{
			name:    "weight required",
			dosing:  amoxicillin,
			req:     DoseRequest{Days: 3},
			wantErr: ErrWeightRequired,
		},
		{
			name:    "dose not configured",
			dosing:  Dosing{Format: FormatPowder, ContentPerContainer: d("100")},
			req:     DoseRequest{WeightKg: d("3"), Days: 3},
			wantErr: ErrDoseNotConfigured,
		},
		{
			name:   "pipette inside band",
			dosing: Dosing{Format: FormatPipette, MinWeightKg: d("10"), MaxWeightKg: d("20"), ContentPerContainer: d("1")},
			req:    DoseRequest{WeightKg: d("12")},
			want:   1,
			units:  "1",
		},
		{
			name:    "pipette outside band",
			dosing:  Dosing{Format: FormatPipette, MinWeightKg: d("10"), MaxWeightKg: d("20")},
			req:     DoseRequest{WeightKg: d("25")},
			wantErr: ErrWeightOutOfRange,
		},
		{
			name:    "pipette band needs weight",
			dosing:  Dosing{Format: FormatPipette, MinWeightKg: d("10"), MaxWeightKg: d("20")},
			req:     DoseRequest{},
			wantErr: ErrWeightRequired,
		},
		{
			name:   "material per application",
			dosing: Dosing{Format: FormatUnit, ApplicationsPerDay: 3, ContentPerContainer: d("4")},
			req:    DoseRequest{Days: 2},
			want:   2,
			units:  "6",
		},
		{
			name:   "explicit containers override",
			dosing: amoxicillin,
			req:    DoseRequest{Containers: 4},
			want:   4,
			units:  "240",
		},
		{
			name:    "negative containers",
			dosing:  amoxicillin,
			req:     DoseRequest{Containers: -1},
			wantErr: ErrInvalidQuantity,
		},
		{
			name:    "unknown format",
			dosing:  Dosing{Format: "spray"},
			req:     DoseRequest{WeightKg: d("3")},
			wantErr: ErrInvalidFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Require(tt.dosing, tt.req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Containers)
			assert.True(t, d(tt.units).Equal(got.Units), "units: got %s want %s", got.Units, tt.units)
		})
	}
}

func TestSupplyTakeAndPut(t *testing.T) {
	s := &Supply{Stock: 3, Active: true}

	require.NoError(t, s.Take(2))
	assert.Equal(t, int64(1), s.Stock)
	assert.ErrorIs(t, s.Take(2), ErrNegativeStock)
	assert.ErrorIs(t, s.Take(0), ErrInvalidQuantity)

	require.NoError(t, s.Put(5))
	assert.Equal(t, int64(6), s.Stock)

	s.Active = false
	assert.ErrorIs(t, s.Take(1), ErrSupplyInactive)
}
