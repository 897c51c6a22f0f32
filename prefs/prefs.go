package prefs

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const recentSearchLimit = 10

// DB keeps the small local preferences that never belong on the backend: the
// theme and the recent searches.
type DB struct {
	db *sql.DB
}

func New(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	p := &DB{db: db}
	if err := p.migrate(migrations); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *DB) Close() error {
	return p.db.Close()
}

// DarkMode returns the stored theme preference, dark by default.
func (p *DB) DarkMode() (bool, error) {
	var value string
	err := p.db.QueryRow(`SELECT value FROM preference WHERE name = 'dark_mode'`).Scan(&value)
	switch {
	case err == sql.ErrNoRows:
		return true, nil
	case err != nil:
		return false, err
	}

	return value == "true", nil
}

func (p *DB) SetDarkMode(darkMode bool) error {
	value := "false"
	if darkMode {
		value = "true"
	}
	_, err := p.db.Exec(`INSERT OR REPLACE INTO preference (name, value) VALUES ('dark_mode', ?)`, value)

	return err
}

// AddRecentSearch records a query at the front of the recent list. Repeating
// a query moves it back to the front, the list is capped.
func (p *DB) AddRecentSearch(query string) error {
	if query == "" {
		return nil
	}
	if _, err := p.db.Exec(`DELETE FROM recent_search WHERE query = ?`, query); err != nil {
		return err
	}
	if _, err := p.db.Exec(`
INSERT INTO recent_search (query, searched_at) VALUES (?, strftime('%s', 'now'))
`, query); err != nil {
		return err
	}
	_, err := p.db.Exec(`
DELETE FROM recent_search WHERE id NOT IN (
SELECT id FROM recent_search ORDER BY id DESC LIMIT ?
)`, recentSearchLimit)

	return err
}

// RecentSearches lists stored queries, newest first.
func (p *DB) RecentSearches() ([]string, error) {
	rows, err := p.db.Query(`SELECT query FROM recent_search ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	queries := []string{}
	for rows.Next() {
		var query string
		if err := rows.Scan(&query); err != nil {
			return nil, err
		}
		queries = append(queries, query)
	}

	return queries, rows.Err()
}

func (p *DB) ClearRecentSearches() error {
	_, err := p.db.Exec(`DELETE FROM recent_search`)

	return err
}

func (p *DB) migrate(wanted []string) error {
	query := `CREATE TABLE IF NOT EXISTS migration
("id" INTEGER PRIMARY KEY AUTOINCREMENT, "query" TEXT)`
	if _, err := p.db.Exec(query); err != nil {
		return err
	}

	// find existing
	rows, err := p.db.Query(`SELECT query FROM migration ORDER BY id`)
	if err != nil {
		return err
	}

	existing := []string{}
	for rows.Next() {
		var query string
		if err := rows.Scan(&query); err != nil {
			return err
		}
		existing = append(existing, query)
	}
	rows.Close()

	// compare
	missing, err := compareMigrations(wanted, existing)
	if err != nil {
		return err
	}

	// execute missing
	for _, query := range missing {
		if _, err := p.db.Exec(query); err != nil {
			return err
		}

		// register
		if _, err := p.db.Exec(`
INSERT INTO migration
(query) VALUES (?)
`, query); err != nil {
			return err
		}
	}

	return nil
}

func compareMigrations(wanted, existing []string) ([]string, error) {
	needed := []string{}
	if len(wanted) < len(existing) {
		return []string{}, fmt.Errorf("not enough migrations")
	}

	for i, want := range wanted {
		switch {
		case i >= len(existing):
			needed = append(needed, want)
		case want == existing[i]:
			// do nothing
		case want != existing[i]:
			return []string{}, fmt.Errorf("incompatible migration: %v", want)
		}
	}

	return needed, nil
}
