package prefs

var migrations = []string{
	`CREATE TABLE preference (
name TEXT PRIMARY KEY,
value TEXT NOT NULL
)`,
	`CREATE TABLE recent_search (
id INTEGER PRIMARY KEY AUTOINCREMENT,
query TEXT NOT NULL UNIQUE,
searched_at INTEGER NOT NULL
)`,
}
