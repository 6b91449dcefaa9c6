package escrow

import (
	"cosmossdk.io/math"
)

// Template selects one of the fixed prize distribution tables. Custom requires
// an explicit table on contest creation.
type Template int

const (
	TemplateWinnerTakesAll Template = iota
	TemplateTop2
	TemplateTop3
	TemplateTop5
	TemplateCustom
)

// PrizeSlot is one row of a distribution table. Percentage is in basis
// points; 10000 bp = 100%.
type PrizeSlot struct {
	Place        int    `json:"place"`
	PercentageBP int    `json:"percentage_bp"`
	Label        string `json:"label"`
}

const (
	// TotalBP is the required sum of a distribution table.
	TotalBP = 10000
	// MaxDistributionSize bounds the payout loop.
	MaxDistributionSize = 50
)

var templateTables = map[Template][]PrizeSlot{
	TemplateWinnerTakesAll: {
		{Place: 1, PercentageBP: 10000, Label: "Winner"},
	},
	TemplateTop2: {
		{Place: 1, PercentageBP: 7000, Label: "First place"},
		{Place: 2, PercentageBP: 3000, Label: "Second place"},
	},
	TemplateTop3: {
		{Place: 1, PercentageBP: 6000, Label: "First place"},
		{Place: 2, PercentageBP: 3000, Label: "Second place"},
		{Place: 3, PercentageBP: 1000, Label: "Third place"},
	},
	TemplateTop5: {
		{Place: 1, PercentageBP: 4000, Label: "First place"},
		{Place: 2, PercentageBP: 2500, Label: "Second place"},
		{Place: 3, PercentageBP: 1500, Label: "Third place"},
		{Place: 4, PercentageBP: 1200, Label: "Fourth place"},
		{Place: 5, PercentageBP: 800, Label: "Fifth place"},
	},
}

// ResolveDistribution returns the validated table for a template, or validates
// the custom table when the template is TemplateCustom. The returned slice is
// always a fresh copy; escrow instances never share mutable rows.
func ResolveDistribution(template Template, custom []PrizeSlot) ([]PrizeSlot, error) {
	var table []PrizeSlot
	if template == TemplateCustom {
		table = custom
	} else {
		fixed, ok := templateTables[template]
		if !ok {
			return nil, ErrUnknownTemplate.Wrapf("template %d", template)
		}
		table = fixed
	}
	if err := ValidateDistribution(table); err != nil {
		return nil, err
	}
	out := make([]PrizeSlot, len(table))
	copy(out, table)
	return out, nil
}

// ValidateDistribution checks the invariants of a distribution table:
// percentages sum to exactly 10000 bp, no zero percentages, and places form a
// permutation of 1..N with N bounded.
func ValidateDistribution(table []PrizeSlot) error {
	n := len(table)
	if n == 0 {
		return ErrInvalidDistribution.Wrap("empty distribution")
	}
	if n > MaxDistributionSize {
		return ErrInvalidDistribution.Wrapf("%d slots exceeds maximum %d", n, MaxDistributionSize)
	}

	sum := 0
	seen := make(map[int]bool, n)
	for _, slot := range table {
		if slot.PercentageBP <= 0 {
			return ErrInvalidDistribution.Wrapf("place %d has non-positive percentage", slot.Place)
		}
		if slot.Place < 1 || slot.Place > n {
			return ErrInvalidDistribution.Wrapf("place %d outside 1..%d", slot.Place, n)
		}
		if seen[slot.Place] {
			return ErrInvalidDistribution.Wrapf("duplicate place %d", slot.Place)
		}
		seen[slot.Place] = true
		sum += slot.PercentageBP
	}
	if sum != TotalBP {
		return ErrInvalidDistribution.Wrapf("percentages sum to %d bp, want %d", sum, TotalBP)
	}
	return nil
}

// PayoutFor computes the payout for one slot. Integer division truncates; the
// sum of all payouts can therefore never exceed the total prize.
func PayoutFor(totalPrize math.Int, percentageBP int) math.Int {
	return totalPrize.Mul(math.NewInt(int64(percentageBP))).Quo(math.NewInt(TotalBP))
}
