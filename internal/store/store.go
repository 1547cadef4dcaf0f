// Package store persists the shoe catalog in sqlite. The database is the
// durable source of truth; at startup the seed JSON is upserted and the
// whole table is read back into the in-memory catalog that serves
// requests.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"

	"github.com/stridelab/shoefit/internal/types"
)

// DB wraps the sqlite connection with shoe-catalog operations.
type DB struct {
	*sql.DB
}

// shoeAttrs is the JSON blob column holding everything that is not a
// query dimension. Prices and tiers get real columns; gait and geometry
// data rides along as a document.
type shoeAttrs struct {
	Model           string             `json:"model"`
	WeightOunces    float64            `json:"weightOunces"`
	OffsetMM        float64            `json:"offsetMilimeters"`
	HeelStackMM     float64            `json:"heelStackMm"`
	ForefootStackMM float64            `json:"forefootStackMm"`
	URL             string             `json:"url"`
	SupportLevel    types.SupportLevel `json:"supportLevel"`
	CushioningScale float64            `json:"cushioningScale"`
	PaceRange       types.PaceStrings  `json:"paceRange"`
	Terrain         []types.Terrain    `json:"terrain"`
	DurabilityKm    float64            `json:"durabilityKm"`
	WidthOptions    []types.Width      `json:"widthOptions"`
	ReleaseYear     int                `json:"releaseYear"`
}

// New opens (and if needed creates) the catalog database under dataDir,
// with WAL journaling and a bounded connection pool.
func New(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "shoefit.db")
	connStr := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	store := &DB{DB: db}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("Catalog database initialized", "path", dbPath)
	return store, nil
}

func (db *DB) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS shoes (
			name TEXT PRIMARY KEY,
			brand TEXT NOT NULL,
			price REAL NOT NULL,
			price_tier TEXT NOT NULL,
			roles TEXT NOT NULL,
			attrs TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_shoes_brand ON shoes(brand)`,
		`CREATE INDEX IF NOT EXISTS idx_shoes_price ON shoes(price)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Seed upserts every shoe by name. Existing rows are refreshed, so a
// changed seed file takes effect on restart without dropping the table.
func (db *DB) Seed(shoes []types.Shoe) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO shoes (name, brand, price, price_tier, roles, attrs, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET
			brand = excluded.brand,
			price = excluded.price,
			price_tier = excluded.price_tier,
			roles = excluded.roles,
			attrs = excluded.attrs,
			updated_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return fmt.Errorf("prepare seed statement: %w", err)
	}
	defer stmt.Close()

	for _, shoe := range shoes {
		roles, err := json.Marshal(shoe.Roles)
		if err != nil {
			return fmt.Errorf("encode roles for %q: %w", shoe.Name, err)
		}
		attrs, err := json.Marshal(shoeAttrs{
			Model:           shoe.Model,
			WeightOunces:    shoe.WeightOunces,
			OffsetMM:        shoe.OffsetMM,
			HeelStackMM:     shoe.HeelStackMM,
			ForefootStackMM: shoe.ForefootStackMM,
			URL:             shoe.URL,
			SupportLevel:    shoe.SupportLevel,
			CushioningScale: shoe.CushioningScale,
			PaceRange:       shoe.PaceRange,
			Terrain:         shoe.Terrain,
			DurabilityKm:    shoe.DurabilityKm,
			WidthOptions:    shoe.WidthOptions,
			ReleaseYear:     shoe.ReleaseYear,
		})
		if err != nil {
			return fmt.Errorf("encode attrs for %q: %w", shoe.Name, err)
		}

		if _, err := stmt.Exec(shoe.Name, shoe.Brand, shoe.Price, string(shoe.PriceTier), string(roles), string(attrs)); err != nil {
			return fmt.Errorf("seed %q: %w", shoe.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}

	slog.Info("Catalog seeded", "shoes", len(shoes))
	return nil
}

// ListShoes reads the full catalog back in name order.
func (db *DB) ListShoes() ([]types.Shoe, error) {
	rows, err := db.Query(`SELECT name, brand, price, price_tier, roles, attrs FROM shoes ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query shoes: %w", err)
	}
	defer rows.Close()

	shoes := []types.Shoe{}
	for rows.Next() {
		var (
			shoe      types.Shoe
			tier      string
			rolesJSON string
			attrsJSON string
		)
		if err := rows.Scan(&shoe.Name, &shoe.Brand, &shoe.Price, &tier, &rolesJSON, &attrsJSON); err != nil {
			return nil, fmt.Errorf("scan shoe row: %w", err)
		}

		shoe.PriceTier = types.PriceTier(tier)
		if err := json.Unmarshal([]byte(rolesJSON), &shoe.Roles); err != nil {
			return nil, fmt.Errorf("decode roles for %q: %w", shoe.Name, err)
		}

		var attrs shoeAttrs
		if err := json.Unmarshal([]byte(attrsJSON), &attrs); err != nil {
			return nil, fmt.Errorf("decode attrs for %q: %w", shoe.Name, err)
		}
		shoe.Model = attrs.Model
		shoe.WeightOunces = attrs.WeightOunces
		shoe.OffsetMM = attrs.OffsetMM
		shoe.HeelStackMM = attrs.HeelStackMM
		shoe.ForefootStackMM = attrs.ForefootStackMM
		shoe.URL = attrs.URL
		shoe.SupportLevel = attrs.SupportLevel
		shoe.CushioningScale = attrs.CushioningScale
		shoe.PaceRange = attrs.PaceRange
		shoe.Terrain = attrs.Terrain
		shoe.DurabilityKm = attrs.DurabilityKm
		shoe.WidthOptions = attrs.WidthOptions
		shoe.ReleaseYear = attrs.ReleaseYear

		shoes = append(shoes, shoe)
	}
	return shoes, rows.Err()
}

// Count returns the number of stored shoes.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM shoes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count shoes: %w", err)
	}
	return n, nil
}

// LastUpdated returns the most recent row update time.
func (db *DB) LastUpdated() (time.Time, error) {
	var raw sql.NullString
	if err := db.QueryRow(`SELECT MAX(updated_at) FROM shoes`).Scan(&raw); err != nil {
		return time.Time{}, fmt.Errorf("query last update: %w", err)
	}
	if !raw.Valid {
		return time.Time{}, nil
	}
	ts, err := time.Parse("2006-01-02 15:04:05", raw.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse last update: %w", err)
	}
	return ts, nil
}
