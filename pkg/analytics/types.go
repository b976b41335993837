package analytics

import "github.com/ChicagoDave/bubblepoint/pkg/antoine"

// ComponentData holds the resolved correlation of one component.
type ComponentData struct {
	Name         string               `json:"name"`
	Coefficients antoine.Coefficients `json:"antoine"`
	BoilingPoint float64              `json:"boiling_point_c"`
	Range        *antoine.Range       `json:"valid_range,omitempty"`
}

// Volatility holds the ideal relative volatility Psat1/Psat2 at both ends
// of the curve and their geometric mean.
type Volatility struct {
	AtFirstBoiling  float64 `json:"at_first_boiling_point"`
	AtSecondBoiling float64 `json:"at_second_boiling_point"`
	Geometric       float64 `json:"geometric_mean"`
}

// CurveSummary condenses a generated curve.
type CurveSummary struct {
	Points          int     `json:"points"`
	Solved          int     `json:"solved"`
	Flagged         int     `json:"flagged"`
	Iterations      int     `json:"total_iterations"`
	TMin            float64 `json:"t_min_c"`
	TMax            float64 `json:"t_max_c"`
	MaxResidual     float64 `json:"max_abs_residual_mmhg"`
	MaxEnrichment   float64 `json:"max_enrichment"`
	MaxEnrichmentAt float64 `json:"max_enrichment_x"`
}
