package catalog

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/rshade/energyprophet/internal/greenops"
	"github.com/rshade/energyprophet/internal/logging"
)

// SchemaVersion is the catalog file schema written by Export.
const SchemaVersion = "1.0.0"

// supportedSchema is the semver constraint a catalog file must satisfy.
const supportedSchema = "^1"

// catalogFile is the on-disk layout. JSON files decode through the same
// structure since yaml.v3 reads JSON documents.
type catalogFile struct {
	SchemaVersion string           `yaml:"schema_version"`
	Countries     []fileCountry    `yaml:"countries"`
	Technologies  []fileTechnology `yaml:"technologies,omitempty"`
}

type fileCountry struct {
	ID              string           `yaml:"id"`
	Name            string           `yaml:"name"`
	TotalGeneration *float64         `yaml:"total_generation_twh,omitempty"`
	Technologies    []fileTechnology `yaml:"technologies"`

	// Extra holds keys written by older exporters, e.g. "totalGenerationTWh".
	Extra map[string]any `yaml:",inline"`
}

type fileTechnology struct {
	ID             string   `yaml:"id"`
	Name           string   `yaml:"name,omitempty"`
	Share          float64  `yaml:"share"`
	EmissionFactor any      `yaml:"emission_factor,omitempty"`
	EmissionUnit   string   `yaml:"emission_unit,omitempty"`
	UnitCost       *float64 `yaml:"unit_cost_usd_per_mwh,omitempty"`
	ImportFactor   *float64 `yaml:"import_tons_per_mwh,omitempty"`
	ImportResource string   `yaml:"import_resource,omitempty"`

	// Extra holds legacy keys such as "emissionFactor_tCO2_per_MWh" whose
	// names carry the emission unit.
	Extra map[string]any `yaml:",inline"`
}

// LoadFile reads a YAML or JSON catalog file.
func LoadFile(ctx context.Context, path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	return Parse(ctx, data)
}

// Parse decodes catalog bytes (YAML or JSON).
func Parse(ctx context.Context, data []byte) (*Memory, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	if err := checkSchema(f.SchemaVersion); err != nil {
		return nil, err
	}

	countries := make([]Country, 0, len(f.Countries))
	for _, fc := range f.Countries {
		c, err := fc.toCountry(ctx)
		if err != nil {
			return nil, err
		}
		countries = append(countries, c)
	}

	techs := make([]Technology, 0, len(f.Technologies))
	for _, ft := range f.Technologies {
		t, err := ft.toTechnology(ctx, "")
		if err != nil {
			return nil, err
		}
		techs = append(techs, t)
	}
	if len(techs) == 0 {
		techs = collectTechnologies(countries)
	}

	return NewMemory(ctx, countries, techs)
}

func checkSchema(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrUnsupportedSchema, raw, err)
	}
	c, err := semver.NewConstraint(supportedSchema)
	if err != nil {
		return fmt.Errorf("parsing schema constraint: %w", err)
	}
	if !c.Check(v) {
		return fmt.Errorf("%w: %s (want %s)", ErrUnsupportedSchema, v, supportedSchema)
	}
	return nil
}

// collectTechnologies derives a technology catalog from the union of country
// technologies, first occurrence wins, shares zeroed.
func collectTechnologies(countries []Country) []Technology {
	seen := make(map[string]bool)
	var out []Technology
	for _, c := range countries {
		for _, t := range c.Technologies {
			key := strings.ToLower(t.ID)
			if seen[key] {
				continue
			}
			seen[key] = true
			t = t.clone()
			t.Share = 0
			out = append(out, t)
		}
	}
	return out
}

func (fc fileCountry) toCountry(ctx context.Context) (Country, error) {
	c := Country{ID: strings.TrimSpace(fc.ID), Name: fc.Name}

	switch {
	case fc.TotalGeneration != nil:
		c.TotalGeneration = *fc.TotalGeneration
	default:
		if v, ok := numberFrom(fc.Extra["totalGenerationTWh"]); ok {
			c.TotalGeneration = v
		}
	}

	c.Technologies = make([]Technology, 0, len(fc.Technologies))
	for _, ft := range fc.Technologies {
		t, err := ft.toTechnology(ctx, c.ID)
		if err != nil {
			return Country{}, err
		}
		c.Technologies = append(c.Technologies, t)
	}
	return c, nil
}

func (ft fileTechnology) toTechnology(ctx context.Context, countryID string) (Technology, error) {
	t := Technology{
		ID:             strings.TrimSpace(ft.ID),
		Name:           ft.Name,
		Share:          ft.Share,
		ImportResource: ft.ImportResource,
	}
	if t.Name == "" {
		t.Name = t.ID
	}

	unit, err := greenops.ParseEmissionUnit(ft.EmissionUnit)
	if err != nil {
		return Technology{}, fmt.Errorf("%w: technology %q: %w", ErrInvalidCatalog, t.ID, err)
	}
	t.EmissionUnit = unit

	if ft.EmissionFactor != nil {
		if v, ok := numberFrom(ft.EmissionFactor); ok {
			t.EmissionFactor = &v
		} else {
			logging.FromContext(ctx).Warn().
				Ctx(ctx).
				Str("component", "catalog").
				Str("country", countryID).
				Str("technology", t.ID).
				Interface("emission_factor", ft.EmissionFactor).
				Msg("unparseable emission factor, leaving it unset")
		}
	} else {
		t.EmissionFactor, t.EmissionUnit = legacyEmission(ft.Extra, t.EmissionUnit)
	}

	t.UnitCost = firstNumber(ft.UnitCost, ft.Extra, "unitCostUsdPerMWh", "UnitCostUsdPerMWh")
	t.ImportFactor = firstNumber(ft.ImportFactor, ft.Extra, "importTonsPerMWh", "ImportTonsPerMWh")
	if t.ImportResource == "" {
		if s, ok := ft.Extra["importResource"].(string); ok {
			t.ImportResource = s
		}
	}

	return t, nil
}

// legacyEmission scans legacy keys for an emission factor. The unit comes from
// the key name when the record carries no explicit tag.
func legacyEmission(extra map[string]any, tag greenops.EmissionUnit) (*float64, greenops.EmissionUnit) {
	for _, key := range sortedExtraKeys(extra) {
		lower := strings.ToLower(key)
		if !strings.Contains(lower, "emission") && !strings.Contains(lower, "co2") {
			continue
		}
		v, ok := numberFrom(extra[key])
		if !ok {
			continue
		}
		if tag == greenops.UnitUnknown {
			tag = greenops.UnitFromFieldName(key)
		}
		return &v, tag
	}
	return nil, tag
}

func sortedExtraKeys(extra map[string]any) []string {
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func firstNumber(canonical *float64, extra map[string]any, aliases ...string) float64 {
	if canonical != nil {
		return *canonical
	}
	for _, alias := range aliases {
		if v, ok := numberFrom(extra[alias]); ok {
			return v
		}
	}
	return 0
}

// numberFrom converts a decoded YAML scalar to float64. Strings are parsed
// leniently; NaN and infinities are rejected.
func numberFrom(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint64:
		f = float64(n)
	case float64:
		f = n
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Export writes the catalog as a YAML file.
func Export(ctx context.Context, c Catalog, path string) error {
	countries, err := c.ListCountries(ctx)
	if err != nil {
		return err
	}
	techs, err := c.Technologies(ctx)
	if err != nil {
		return err
	}

	f := catalogFile{SchemaVersion: SchemaVersion}
	for _, country := range countries {
		total := country.TotalGeneration
		fc := fileCountry{ID: country.ID, Name: country.Name, TotalGeneration: &total}
		for _, t := range country.Technologies {
			fc.Technologies = append(fc.Technologies, toFileTechnology(t))
		}
		f.Countries = append(f.Countries, fc)
	}
	for _, t := range techs {
		f.Technologies = append(f.Technologies, toFileTechnology(t))
	}

	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}

	const dirPerm, filePerm = 0o750, 0o600
	if err = os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("creating catalog directory: %w", err)
	}
	if err = os.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("writing catalog %s: %w", path, err)
	}
	return nil
}

func toFileTechnology(t Technology) fileTechnology {
	ft := fileTechnology{
		ID:             t.ID,
		Name:           t.Name,
		Share:          t.Share,
		ImportResource: t.ImportResource,
	}
	if t.EmissionFactor != nil {
		ft.EmissionFactor = *t.EmissionFactor
	}
	if f := t.Emission(); f.Unit != greenops.UnitUnknown {
		ft.EmissionUnit = f.Unit.String()
	}
	cost := t.UnitCost
	ft.UnitCost = &cost
	if t.ImportFactor > 0 {
		imp := t.ImportFactor
		ft.ImportFactor = &imp
	}
	return ft
}
