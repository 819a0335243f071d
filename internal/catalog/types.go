// Package catalog provides the read-only country and technology reference
// data consumed by the simulation engine. Catalogs are populated once and never
// mutated afterwards; every accessor hands out copies so callers cannot alter
// shared state.
package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/rshade/energyprophet/internal/greenops"
)

// Sentinel errors for catalog lookups and loading.
var (
	// ErrCountryNotFound is returned when a country id is not in the catalog.
	ErrCountryNotFound = errors.New("country not found")

	// ErrInvalidCatalog is returned when catalog data fails validation.
	ErrInvalidCatalog = errors.New("invalid catalog")

	// ErrUnsupportedSchema is returned when a catalog file's schema version is
	// outside the supported range.
	ErrUnsupportedSchema = errors.New("unsupported catalog schema version")
)

// Technology is one electricity-generation source with its cost, emission and
// import metadata.
type Technology struct {
	// ID is the stable key, e.g. "hydro".
	ID string `json:"id" yaml:"id"`

	// Name is the display name.
	Name string `json:"name" yaml:"name"`

	// Share is the fraction (0..1) of the country's current total generation.
	Share float64 `json:"share" yaml:"share"`

	// EmissionFactor is the CO2 emitted per MWh. Nil when the source had no
	// usable value.
	EmissionFactor *float64 `json:"emission_factor,omitempty" yaml:"emission_factor,omitempty"`

	// EmissionUnit tags EmissionFactor. UnitUnknown means untagged (legacy).
	EmissionUnit greenops.EmissionUnit `json:"emission_unit" yaml:"emission_unit"`

	// UnitCost is the generation cost in USD per MWh.
	UnitCost float64 `json:"unit_cost_usd_per_mwh" yaml:"unit_cost_usd_per_mwh"`

	// ImportFactor is tonnes of imported fuel per MWh.
	ImportFactor float64 `json:"import_tons_per_mwh,omitempty" yaml:"import_tons_per_mwh,omitempty"`

	// ImportResource names the imported commodity, e.g. "Gas".
	ImportResource string `json:"import_resource,omitempty" yaml:"import_resource,omitempty"`
}

// Emission resolves the technology's emission factor. A nil technology
// resolves to an unknown factor.
func (t *Technology) Emission() greenops.Factor {
	if t == nil {
		return greenops.Factor{Unit: greenops.UnitUnknown}
	}
	return greenops.Resolve(t.EmissionFactor, t.EmissionUnit)
}

// Imports reports whether the technology contributes to fuel imports.
func (t *Technology) Imports() bool {
	return t != nil && t.ImportFactor > 0 && strings.TrimSpace(t.ImportResource) != ""
}

// Country is a national generation mix in the base year.
type Country struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`

	// TotalGeneration is annual generation in TWh for the base year.
	TotalGeneration float64 `json:"total_generation_twh" yaml:"total_generation_twh"`

	// Technologies is the country's own, ordered technology list.
	Technologies []Technology `json:"technologies" yaml:"technologies"`
}

// Technology returns the country's technology with the given id
// (case-insensitive), or nil.
func (c *Country) Technology(id string) *Technology {
	if c == nil {
		return nil
	}
	for i := range c.Technologies {
		if strings.EqualFold(c.Technologies[i].ID, id) {
			return &c.Technologies[i]
		}
	}
	return nil
}

// TechnologyIDs returns the ids of the country's technologies in catalog order.
func (c *Country) TechnologyIDs() []string {
	if c == nil {
		return nil
	}
	ids := make([]string, 0, len(c.Technologies))
	for _, t := range c.Technologies {
		ids = append(ids, t.ID)
	}
	return ids
}

// DisplayName returns the country name, or its id when unnamed.
func (c *Country) DisplayName() string {
	if c == nil {
		return ""
	}
	if strings.TrimSpace(c.Name) == "" {
		return c.ID
	}
	return c.Name
}

// Clone returns a deep copy of c.
func (c Country) Clone() Country {
	out := c
	out.Technologies = make([]Technology, len(c.Technologies))
	for i, t := range c.Technologies {
		out.Technologies[i] = t.clone()
	}
	return out
}

func (t Technology) clone() Technology {
	out := t
	if t.EmissionFactor != nil {
		v := *t.EmissionFactor
		out.EmissionFactor = &v
	}
	return out
}

// Catalog is the read-only reference data lookup.
type Catalog interface {
	// GetCountry returns the country with the given id or ErrCountryNotFound.
	GetCountry(ctx context.Context, id string) (*Country, error)

	// ListCountries returns every country in catalog order.
	ListCountries(ctx context.Context) ([]Country, error)

	// Technologies returns the global technology catalog, including
	// technologies no country currently uses.
	Technologies(ctx context.Context) ([]Technology, error)
}
