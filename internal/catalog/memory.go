package catalog

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rshade/energyprophet/internal/logging"
)

// shareSumTolerance is how far a country's current shares may drift from 1.0
// before validation logs a warning.
const shareSumTolerance = 0.05

// Memory is an immutable in-memory catalog.
type Memory struct {
	countries []Country
	byID      map[string]int
	techs     []Technology
}

// NewMemory validates countries and techs and builds a catalog over copies
// of them.
func NewMemory(ctx context.Context, countries []Country, techs []Technology) (*Memory, error) {
	m := &Memory{
		countries: make([]Country, 0, len(countries)),
		byID:      make(map[string]int, len(countries)),
		techs:     make([]Technology, 0, len(techs)),
	}

	for _, c := range countries {
		if err := validateCountry(ctx, c); err != nil {
			return nil, err
		}
		key := strings.ToLower(c.ID)
		if _, dup := m.byID[key]; dup {
			return nil, fmt.Errorf("%w: duplicate country id %q", ErrInvalidCatalog, c.ID)
		}
		m.byID[key] = len(m.countries)
		m.countries = append(m.countries, c.Clone())
	}

	seen := make(map[string]bool, len(techs))
	for _, t := range techs {
		key := strings.ToLower(strings.TrimSpace(t.ID))
		if key == "" {
			return nil, fmt.Errorf("%w: technology with empty id in technology catalog", ErrInvalidCatalog)
		}
		if seen[key] {
			return nil, fmt.Errorf("%w: duplicate technology id %q in technology catalog", ErrInvalidCatalog, t.ID)
		}
		seen[key] = true
		if err := validateTechnology(t); err != nil {
			return nil, fmt.Errorf("%w: technology catalog: %w", ErrInvalidCatalog, err)
		}
		m.techs = append(m.techs, t.clone())
	}

	return m, nil
}

func validateCountry(ctx context.Context, c Country) error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("%w: country with empty id", ErrInvalidCatalog)
	}
	if c.TotalGeneration < 0 || math.IsNaN(c.TotalGeneration) || math.IsInf(c.TotalGeneration, 0) {
		return fmt.Errorf("%w: country %q has invalid total generation %v", ErrInvalidCatalog, c.ID, c.TotalGeneration)
	}

	seen := make(map[string]bool, len(c.Technologies))
	sum := 0.0
	for _, t := range c.Technologies {
		key := strings.ToLower(strings.TrimSpace(t.ID))
		if key == "" {
			return fmt.Errorf("%w: country %q has a technology with empty id", ErrInvalidCatalog, c.ID)
		}
		if seen[key] {
			return fmt.Errorf("%w: country %q lists technology %q twice", ErrInvalidCatalog, c.ID, t.ID)
		}
		seen[key] = true
		if err := validateTechnology(t); err != nil {
			return fmt.Errorf("%w: country %q: %w", ErrInvalidCatalog, c.ID, err)
		}
		sum += t.Share
	}

	if len(c.Technologies) > 0 && math.Abs(sum-1) > shareSumTolerance {
		logging.FromContext(ctx).Warn().
			Ctx(ctx).
			Str("component", "catalog").
			Str("country", c.ID).
			Float64("share_sum", sum).
			Msg("country shares do not sum to 1")
	}
	return nil
}

// validateTechnology rejects numeric fields that are not finite numbers.
func validateTechnology(t Technology) error {
	for _, field := range []struct {
		name  string
		value float64
	}{
		{"share", t.Share},
		{"unit cost", t.UnitCost},
		{"import factor", t.ImportFactor},
	} {
		if math.IsNaN(field.value) || math.IsInf(field.value, 0) {
			return fmt.Errorf("technology %q has non-finite %s %v", t.ID, field.name, field.value)
		}
	}
	return nil
}

// GetCountry implements Catalog. The returned country is a copy.
func (m *Memory) GetCountry(_ context.Context, id string) (*Country, error) {
	idx, ok := m.byID[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCountryNotFound, id)
	}
	c := m.countries[idx].Clone()
	return &c, nil
}

// ListCountries implements Catalog.
func (m *Memory) ListCountries(_ context.Context) ([]Country, error) {
	out := make([]Country, len(m.countries))
	for i, c := range m.countries {
		out[i] = c.Clone()
	}
	return out, nil
}

// Technologies implements Catalog.
func (m *Memory) Technologies(_ context.Context) ([]Technology, error) {
	out := make([]Technology, len(m.techs))
	for i, t := range m.techs {
		out[i] = t.clone()
	}
	return out, nil
}

// Len returns the number of countries.
func (m *Memory) Len() int {
	return len(m.countries)
}
