package taper

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrUnknownModel is returned when a model name or value is not recognized
	ErrUnknownModel = errors.New("unknown taper model")
	// ErrCoefficientCount is returned when a coefficient set does not match the model's arity
	ErrCoefficientCount = errors.New("wrong number of coefficients for taper model")
	// ErrTreeBounds is returned by CheckTree for inputs a caller should not evaluate
	ErrTreeBounds = errors.New("tree dimensions out of bounds")
)

// MaxTotalHeight is the tallest tree (ft) CheckTree accepts. Profile length
// grows with height, so user-supplied heights are capped here.
const MaxTotalHeight = 1000.0

// CheckTree rejects non-finite dimensions and heights above MaxTotalHeight.
// The evaluators never call it; it is for callers taking untrusted input.
func CheckTree(dbh, totalHeight float64) error {
	if math.IsNaN(dbh) || math.IsInf(dbh, 0) || math.IsNaN(totalHeight) || math.IsInf(totalHeight, 0) {
		return fmt.Errorf("%w: dbh and height must be finite", ErrTreeBounds)
	}
	if totalHeight > MaxTotalHeight {
		return fmt.Errorf("%w: height must not exceed %v", ErrTreeBounds, MaxTotalHeight)
	}
	return nil
}

// Model identifies one of the supported taper equations
type Model int

const (
	ModelCzaplewski Model = iota + 1
	ModelKozak1969
	ModelKozak1988
	ModelWensel
)

var modelNames = map[Model]string{
	ModelCzaplewski: "czaplewski",
	ModelKozak1969:  "kozak1969",
	ModelKozak1988:  "kozak1988",
	ModelWensel:     "wensel",
}

var modelArity = map[Model]int{
	ModelCzaplewski: 6,
	ModelKozak1969:  3,
	ModelKozak1988:  9,
	ModelWensel:     5,
}

// Models returns every supported model in declaration order
func Models() []Model {
	return []Model{ModelCzaplewski, ModelKozak1969, ModelKozak1988, ModelWensel}
}

func (m Model) String() string {
	if name, ok := modelNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Model(%d)", int(m))
}

// Arity returns the number of coefficients the model takes, or 0 for an unknown model
func (m Model) Arity() int {
	return modelArity[m]
}

// MarshalText implements encoding.TextMarshaler
func (m Model) MarshalText() ([]byte, error) {
	if _, ok := modelNames[m]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownModel, int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (m *Model) UnmarshalText(text []byte) error {
	parsed, err := ParseModel(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseModel converts a model name such as "kozak1988" into a Model.
// Matching ignores case, spaces, dashes and underscores.
func ParseModel(name string) (Model, error) {
	key := strings.ToLower(name)
	key = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(key)

	for m, n := range modelNames {
		if n == key {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownModel, name)
}

func checkArity(model Model, coef []float64) error {
	arity := model.Arity()
	if arity == 0 {
		return fmt.Errorf("%w: %v", ErrUnknownModel, model)
	}
	if len(coef) != arity {
		return fmt.Errorf("%w: %v takes %d, got %d", ErrCoefficientCount, model, arity, len(coef))
	}
	return nil
}

// Evaluate computes the DIB profile for a tree with the given model and
// coefficients. The only errors are an unknown model or a coefficient set of
// the wrong length; numeric problems show up as NaN/Inf in the profile.
func Evaluate(model Model, dbh, totalHeight float64, coef []float64) (Profile, error) {
	if err := checkArity(model, coef); err != nil {
		return nil, err
	}

	k := coef
	switch model {
	case ModelCzaplewski:
		return Czaplewski(dbh, totalHeight, k[0], k[1], k[2], k[3], k[4], k[5]), nil
	case ModelKozak1969:
		return Kozak1969(dbh, totalHeight, k[0], k[1], k[2]), nil
	case ModelKozak1988:
		return Kozak1988(dbh, totalHeight, k[0], k[1], k[2], k[3], k[4], k[5], k[6], k[7], k[8]), nil
	default:
		return Wensel(dbh, totalHeight, k[0], k[1], k[2], k[3], k[4]), nil
	}
}

// EvaluateAt computes the DIB at a single stem height
func EvaluateAt(model Model, dbh, totalHeight float64, stemHeight int, coef []float64) (float64, error) {
	if err := checkArity(model, coef); err != nil {
		return 0, err
	}

	k := coef
	switch model {
	case ModelCzaplewski:
		return CzaplewskiDIB(dbh, totalHeight, stemHeight, k[0], k[1], k[2], k[3], k[4], k[5]), nil
	case ModelKozak1969:
		return Kozak1969DIB(dbh, totalHeight, stemHeight, k[0], k[1], k[2]), nil
	case ModelKozak1988:
		return Kozak1988DIB(dbh, totalHeight, stemHeight, k[0], k[1], k[2], k[3], k[4], k[5], k[6], k[7], k[8]), nil
	default:
		return WenselDIB(dbh, totalHeight, stemHeight, k[0], k[1], k[2], k[3], k[4]), nil
	}
}
