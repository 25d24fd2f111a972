// Package species holds the taper model and coefficient set used for each
// tree species, along with lookup by species code or common name.
package species

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/chrissnell/timbercruise/pkg/taper"
)

// ErrUnknownSpecies is returned when a code or name does not match any species
var ErrUnknownSpecies = errors.New("unknown species")

// Species describes one tree species and the taper equation that applies to it
type Species struct {
	Code         string      `json:"code" yaml:"code"`
	Name         string      `json:"name" yaml:"name"`
	Model        taper.Model `json:"model" yaml:"model"`
	Coefficients []float64   `json:"coefficients" yaml:"coefficients"`
	SortOrder    int         `json:"sort_order" yaml:"sort_order"`
}

// Validate checks that the species has a code, a known model and the right
// number of coefficients. Coefficient values themselves are not checked.
func (s Species) Validate() error {
	if s.Code == "" {
		return fmt.Errorf("species code is required")
	}
	if s.Model.Arity() == 0 {
		return fmt.Errorf("species %s: %w", s.Code, taper.ErrUnknownModel)
	}
	if len(s.Coefficients) != s.Model.Arity() {
		return fmt.Errorf("species %s: %w: %v takes %d, got %d",
			s.Code, taper.ErrCoefficientCount, s.Model, s.Model.Arity(), len(s.Coefficients))
	}
	return nil
}

// Profile returns the DIB profile of a tree of this species
func (s Species) Profile(dbh, totalHeight float64) (taper.Profile, error) {
	return taper.Evaluate(s.Model, dbh, totalHeight, s.Coefficients)
}

// DIBAt returns the DIB at one stem height, rounded down to a whole inch
func (s Species) DIBAt(dbh, totalHeight float64, stemHeight int) (int, error) {
	dib, err := taper.EvaluateAt(s.Model, dbh, totalHeight, stemHeight, s.Coefficients)
	if err != nil {
		return 0, err
	}
	return taper.WholeInches(math.Floor(dib)), nil
}

// Catalog is a set of species keyed by code
type Catalog struct {
	byCode map[string]Species
}

// NewCatalog builds a catalog from the given species. Later entries with the
// same code replace earlier ones.
func NewCatalog(list ...Species) (*Catalog, error) {
	c := &Catalog{byCode: make(map[string]Species, len(list))}
	for _, s := range list {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		s.Code = strings.ToUpper(s.Code)
		s.Coefficients = append([]float64(nil), s.Coefficients...)
		c.byCode[s.Code] = s
	}
	return c, nil
}

// With returns a copy of the catalog with overrides applied. An override for
// an existing code keeps the existing name and sort order if it leaves them
// blank.
func (c *Catalog) With(overrides ...Species) (*Catalog, error) {
	merged := make([]Species, 0, len(c.byCode)+len(overrides))
	for _, s := range c.byCode {
		merged = append(merged, s)
	}
	for _, o := range overrides {
		if existing, ok := c.byCode[strings.ToUpper(o.Code)]; ok {
			if o.Name == "" {
				o.Name = existing.Name
			}
			if o.SortOrder == 0 {
				o.SortOrder = existing.SortOrder
			}
		}
		merged = append(merged, o)
	}
	return NewCatalog(merged...)
}

// Lookup finds a species by code ("DF") or common name ("Douglas-fir"),
// ignoring case
func (c *Catalog) Lookup(codeOrName string) (Species, error) {
	key := strings.ToUpper(strings.TrimSpace(codeOrName))
	if s, ok := c.byCode[key]; ok {
		return s, nil
	}
	for _, s := range c.byCode {
		if strings.ToUpper(s.Name) == key {
			return s, nil
		}
	}
	return Species{}, fmt.Errorf("%w: %q", ErrUnknownSpecies, codeOrName)
}

// All returns every species in the catalog in sort order
func (c *Catalog) All() []Species {
	list := make([]Species, 0, len(c.byCode))
	for _, s := range c.byCode {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].SortOrder != list[j].SortOrder {
			return list[i].SortOrder < list[j].SortOrder
		}
		return list[i].Code < list[j].Code
	})
	return list
}

// Len returns the number of species in the catalog
func (c *Catalog) Len() int {
	return len(c.byCode)
}

// Lookup finds a species in the default catalog
func Lookup(codeOrName string) (Species, error) {
	return Default().Lookup(codeOrName)
}

// All returns the default catalog in sort order
func All() []Species {
	return Default().All()
}
