package catalog

import (
	"context"
	"database/sql"
	"fmt"

	// Registers the pure-Go "sqlite" driver.
	_ "modernc.org/sqlite"

	"github.com/rshade/energyprophet/internal/greenops"
	"github.com/rshade/energyprophet/internal/logging"
)

// globalCatalogID is the country_id under which the global technology
// catalog is stored.
const globalCatalogID = ""

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS countries (
	id                   TEXT PRIMARY KEY,
	name                 TEXT NOT NULL,
	total_generation_twh REAL NOT NULL,
	position             INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS technologies (
	country_id            TEXT NOT NULL,
	id                    TEXT NOT NULL,
	name                  TEXT NOT NULL,
	share                 REAL NOT NULL DEFAULT 0,
	emission_factor       REAL,
	emission_unit         TEXT NOT NULL DEFAULT '',
	unit_cost_usd_per_mwh REAL NOT NULL DEFAULT 0,
	import_tons_per_mwh   REAL NOT NULL DEFAULT 0,
	import_resource       TEXT NOT NULL DEFAULT '',
	position              INTEGER NOT NULL,
	PRIMARY KEY (country_id, id)
);`

// OpenSQLite loads a catalog stored in an SQLite database. The database is
// read once; the returned catalog does not keep the connection open.
func OpenSQLite(ctx context.Context, path string) (*Memory, error) {
	log := logging.FromContext(ctx)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog database %s: %w", path, err)
	}
	defer db.Close()

	countries, err := queryCountries(ctx, db)
	if err != nil {
		return nil, err
	}

	techsByCountry, err := queryTechnologies(ctx, db)
	if err != nil {
		return nil, err
	}

	for i := range countries {
		countries[i].Technologies = techsByCountry[countries[i].ID]
	}

	log.Debug().
		Ctx(ctx).
		Str("component", "catalog").
		Str("operation", "open_sqlite").
		Str("path", path).
		Int("countries", len(countries)).
		Msg("loaded catalog from sqlite")

	techs := techsByCountry[globalCatalogID]
	if len(techs) == 0 {
		techs = collectTechnologies(countries)
	}
	return NewMemory(ctx, countries, techs)
}

func queryCountries(ctx context.Context, db *sql.DB) ([]Country, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT id, name, total_generation_twh FROM countries ORDER BY position, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query countries: %w", err)
	}
	defer rows.Close()

	var countries []Country
	for rows.Next() {
		var c Country
		if err := rows.Scan(&c.ID, &c.Name, &c.TotalGeneration); err != nil {
			return nil, fmt.Errorf("failed to scan country: %w", err)
		}
		countries = append(countries, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating countries: %w", err)
	}
	return countries, nil
}

func queryTechnologies(ctx context.Context, db *sql.DB) (map[string][]Technology, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT country_id, id, name, share, emission_factor, emission_unit,
		       unit_cost_usd_per_mwh, import_tons_per_mwh, import_resource
		FROM technologies
		ORDER BY country_id, position, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query technologies: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]Technology)
	for rows.Next() {
		var (
			countryID string
			t         Technology
			ef        sql.NullFloat64
			unit      string
		)
		if err := rows.Scan(&countryID, &t.ID, &t.Name, &t.Share, &ef, &unit,
			&t.UnitCost, &t.ImportFactor, &t.ImportResource); err != nil {
			return nil, fmt.Errorf("failed to scan technology: %w", err)
		}
		if ef.Valid {
			v := ef.Float64
			t.EmissionFactor = &v
		}
		parsed, err := greenops.ParseEmissionUnit(unit)
		if err != nil {
			return nil, fmt.Errorf("%w: technology %q: %w", ErrInvalidCatalog, t.ID, err)
		}
		t.EmissionUnit = parsed
		out[countryID] = append(out[countryID], t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating technologies: %w", err)
	}
	return out, nil
}

// WriteSQLite stores the contents of c in an SQLite database at path,
// replacing any catalog rows already there.
func WriteSQLite(ctx context.Context, c Catalog, path string) error {
	countries, err := c.ListCountries(ctx)
	if err != nil {
		return err
	}
	techs, err := c.Technologies(ctx)
	if err != nil {
		return err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("opening catalog database %s: %w", path, err)
	}
	defer db.Close()

	if _, err = db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("creating catalog schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning catalog transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{"DELETE FROM technologies", "DELETE FROM countries"} {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clearing catalog: %w", err)
		}
	}

	for i, country := range countries {
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO countries (id, name, total_generation_twh, position) VALUES (?, ?, ?, ?)",
			country.ID, country.Name, country.TotalGeneration, i); err != nil {
			return fmt.Errorf("inserting country %q: %w", country.ID, err)
		}
		if err = insertTechnologies(ctx, tx, country.ID, country.Technologies); err != nil {
			return err
		}
	}
	if err = insertTechnologies(ctx, tx, globalCatalogID, techs); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing catalog: %w", err)
	}
	return nil
}

func insertTechnologies(ctx context.Context, tx *sql.Tx, countryID string, techs []Technology) error {
	for i, t := range techs {
		var ef sql.NullFloat64
		if t.EmissionFactor != nil {
			ef = sql.NullFloat64{Float64: *t.EmissionFactor, Valid: true}
		}
		unit := ""
		if t.EmissionUnit != greenops.UnitUnknown {
			unit = t.EmissionUnit.String()
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO technologies (country_id, id, name, share, emission_factor, emission_unit,
			                          unit_cost_usd_per_mwh, import_tons_per_mwh, import_resource, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			countryID, t.ID, t.Name, t.Share, ef, unit, t.UnitCost, t.ImportFactor, t.ImportResource, i); err != nil {
			return fmt.Errorf("inserting technology %q for %q: %w", t.ID, countryID, err)
		}
	}
	return nil
}
