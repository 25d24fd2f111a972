package species

import (
	"sync"

	"github.com/chrissnell/timbercruise/pkg/taper"
)

// Published coefficients for Pacific Northwest and California species
var defaultSpecies = []Species{
	{Code: "DF", Name: "DOUGLAS-FIR", Model: taper.ModelCzaplewski, SortOrder: 0,
		Coefficients: []float64{0.72, 0.12, -2.8758, 1.3458, -1.6264, 20.1315}},
	{Code: "WH", Name: "WESTERN HEMLOCK", Model: taper.ModelCzaplewski, SortOrder: 1,
		Coefficients: []float64{0.59, 0.06, -2.0993, 0.8635, -1.026, 91.5562}},
	{Code: "RC", Name: "WESTERN REDCEDAR", Model: taper.ModelKozak1988, SortOrder: 2,
		Coefficients: []float64{1.21697, 0.84256, 1.00001, 0.3, 1.55322, -0.39719, 2.11018, -1.11416, 0.0942}},
	{Code: "SS", Name: "SITKA SPRUCE", Model: taper.ModelKozak1969, SortOrder: 3,
		Coefficients: []float64{0.99496, -1.98993, 0.99496}},
	{Code: "ES", Name: "ENGLEMANN SPRUCE", Model: taper.ModelKozak1969, SortOrder: 4,
		Coefficients: []float64{0.97449, -1.42305, 0.44856}},
	{Code: "SF", Name: "SILVER FIR", Model: taper.ModelCzaplewski, SortOrder: 5,
		Coefficients: []float64{0.5, 0.06, -1.742, 0.6184, -0.8838, 94.3683}},
	{Code: "GF", Name: "GRAND FIR", Model: taper.ModelCzaplewski, SortOrder: 6,
		Coefficients: []float64{0.59, 0.06, -1.5332, 0.56, -0.4781, 129.9282}},
	{Code: "NF", Name: "NOBLE FIR", Model: taper.ModelCzaplewski, SortOrder: 7,
		Coefficients: []float64{0.59, 0.06, -1.5332, 0.56, -0.4781, 129.9282}},
	{Code: "WL", Name: "WESTERN LARCH", Model: taper.ModelCzaplewski, SortOrder: 8,
		Coefficients: []float64{0.59, 0.06, -1.3228, 0.3905, -0.5355, 115.6905}},
	{Code: "WP", Name: "WHITE PINE", Model: taper.ModelKozak1969, SortOrder: 9,
		Coefficients: []float64{0.96272, -1.37551, 0.41279}},
	{Code: "PP", Name: "PONDEROSA PINE", Model: taper.ModelCzaplewski, SortOrder: 10,
		Coefficients: []float64{0.72, 0.06, -2.3261, 0.9514, -1.0757, 94.6991}},
	{Code: "LP", Name: "LODGEPOLE PINE", Model: taper.ModelCzaplewski, SortOrder: 11,
		Coefficients: []float64{0.41, 0.06, -1.2989, 0.3693, 0.2408, 89.1781}},
	{Code: "JP", Name: "JEFFERY PINE", Model: taper.ModelWensel, SortOrder: 12,
		Coefficients: []float64{0.82932, 1.50831, -4.08016, 0.047053, 0.0}},
	{Code: "SP", Name: "SUGAR PINE", Model: taper.ModelWensel, SortOrder: 13,
		Coefficients: []float64{0.90051, 0.91588, -0.92964, 0.0077119, -0.0011019}},
	{Code: "WF", Name: "WHITE FIR", Model: taper.ModelWensel, SortOrder: 14,
		Coefficients: []float64{0.86039, 1.45196, -2.42273, -0.15848, 0.036947}},
	{Code: "RF", Name: "RED FIR", Model: taper.ModelWensel, SortOrder: 15,
		Coefficients: []float64{0.87927, 0.9135, -0.56617, -0.01448, 0.0037262}},
	{Code: "RW", Name: "COASTAL REDWOOD", Model: taper.ModelWensel, SortOrder: 16,
		Coefficients: []float64{0.955, 0.387, -0.362, -0.00581, 0.00122}},
	{Code: "IC", Name: "INSENCE CEDAR", Model: taper.ModelWensel, SortOrder: 17,
		Coefficients: []float64{1.0, 0.3155, -0.34316, 0.0, -0.00039283}},
	{Code: "RA", Name: "RED ALDER", Model: taper.ModelKozak1969, SortOrder: 18,
		Coefficients: []float64{0.97576, -1.22922, 0.25347}},
	{Code: "BM", Name: "BIGLEAF MAPLE", Model: taper.ModelKozak1969, SortOrder: 19,
		Coefficients: []float64{0.95997, -1.46336, 0.50339}},
	{Code: "CW", Name: "BLACK COTTONWOOD", Model: taper.ModelKozak1988, SortOrder: 20,
		Coefficients: []float64{0.85258, 0.95297, 1.00048, 0.25, 0.73191, -0.08419, 0.19634, -0.06985, 0.14828}},
	{Code: "AS", Name: "QUAKING ASPEN", Model: taper.ModelKozak1969, SortOrder: 21,
		Coefficients: []float64{0.95806, -1.33682, 0.37877}},
}

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// Default returns the built-in catalog
func Default() *Catalog {
	defaultCatalogOnce.Do(func() {
		c, err := NewCatalog(defaultSpecies...)
		if err != nil {
			panic("species: invalid built-in table: " + err.Error())
		}
		defaultCatalog = c
	})
	return defaultCatalog
}
