package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"tradeinvoice/internal/invoice/models"
)

//go:embed schema.sql
var schema string

// Migrate creates the registry tables if they do not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply invoice schema: %w", err)
	}
	return nil
}

// Bootstrap inserts the registry singleton with the initial role holders.
// It is a no-op when the registry already exists, so restarts never reset
// roles or the counter. Returns true when the row was created.
func Bootstrap(ctx context.Context, db *sql.DB, initial models.RegistryState) (bool, error) {
	if initial.Admin.IsNil() || initial.Oracle.IsNil() {
		return false, fmt.Errorf("bootstrap registry: admin and oracle are required")
	}
	res, err := db.ExecContext(ctx, `
		INSERT INTO registry_state (id, admin, oracle, paused, invoice_counter)
		VALUES (1, $1, $2, FALSE, 0)
		ON CONFLICT (id) DO NOTHING`,
		initial.Admin.String(), initial.Oracle.String(),
	)
	if err != nil {
		return false, fmt.Errorf("bootstrap registry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("bootstrap registry rows: %w", err)
	}
	return n == 1, nil
}
