package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Amounts are stored as TEXT so decimal values round-trip exactly.
const schema = `
CREATE TABLE IF NOT EXISTS expenses (
    id INTEGER PRIMARY KEY,
    description TEXT NOT NULL,
    amount TEXT NOT NULL,
    payer TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS expense_splits (
    expense_id INTEGER NOT NULL,
    participant TEXT NOT NULL,
    share TEXT NOT NULL,
    PRIMARY KEY (expense_id, participant),
    FOREIGN KEY (expense_id) REFERENCES expenses(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_expense_splits_expense_id ON expense_splits(expense_id);

-- Highest expense ID ever written; survives deletes.
CREATE TABLE IF NOT EXISTS expense_sequence (
    name TEXT PRIMARY KEY,
    last_id INTEGER NOT NULL
);

INSERT OR IGNORE INTO expense_sequence (name, last_id)
    SELECT 'expenses', COALESCE(MAX(id), 0) FROM expenses;
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
