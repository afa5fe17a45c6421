// Package postgres persists the invoice registry in PostgreSQL.
//
// Execute serializes writers by locking the registry_state singleton row
// with SELECT ... FOR UPDATE for the lifetime of one transaction. Every
// mutation touches that row first, so no two mutations interleave, and the
// counter, invoice row and hash index entry commit together or not at all.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"

	"tradeinvoice/internal/invoice/models"
	"tradeinvoice/internal/invoice/ports"
	id "tradeinvoice/pkg/domain"
	"tradeinvoice/pkg/platform/sentinel"
	txcontext "tradeinvoice/pkg/platform/tx"
)

const (
	uniqueViolation = "23505"
	// hashIndexKey is the primary key of invoice_hashes. It is the only
	// unique violation that means a duplicate content hash.
	hashIndexKey = "invoice_hashes_pkey"
)

const invoiceColumns = `id, issuer, recipient, amount, currency, issue_date, due_date, status, verified, description, hash`

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore implements ports.Store over database/sql with the pgx driver.
type PostgresStore struct {
	db *sql.DB
}

func New(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// queryer returns the transaction carried by ctx, if any, so reads issued
// from inside Execute see the locked snapshot.
func (s *PostgresStore) queryer(ctx context.Context) queryer {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) State(ctx context.Context) (models.RegistryState, error) {
	return loadState(ctx, s.queryer(ctx), false)
}

func (s *PostgresStore) Invoice(ctx context.Context, invoiceID uint64) (*models.Invoice, error) {
	return loadInvoice(ctx, s.queryer(ctx), invoiceID)
}

func (s *PostgresStore) InvoiceIDByHash(ctx context.Context, hash models.ContentHash) (uint64, error) {
	return loadHash(ctx, s.queryer(ctx), hash)
}

// Execute runs decide inside one transaction holding the registry row lock.
// When ctx already carries a transaction the change joins it and the caller
// owns commit and rollback.
func (s *PostgresStore) Execute(ctx context.Context, decide ports.Decide) (models.Change, error) {
	if outer, ok := txcontext.From(ctx); ok {
		return s.execute(ctx, outer, decide)
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Change{}, fmt.Errorf("begin registry tx: %w", err)
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	change, err := s.execute(txcontext.WithTx(ctx, sqlTx), sqlTx, decide)
	if err != nil || change.IsEmpty() {
		return change, err
	}
	if err := sqlTx.Commit(); err != nil {
		return models.Change{}, fmt.Errorf("commit registry tx: %w", err)
	}
	return change, nil
}

func (s *PostgresStore) execute(ctx context.Context, sqlTx *sql.Tx, decide ports.Decide) (models.Change, error) {
	state, err := loadState(ctx, sqlTx, true)
	if err != nil {
		return models.Change{}, err
	}

	change, err := decide(txView{tx: sqlTx, state: state})
	if err != nil {
		return models.Change{}, err
	}
	if change.IsEmpty() {
		return change, nil
	}
	if err := apply(ctx, sqlTx, state, change); err != nil {
		return models.Change{}, err
	}
	return change, nil
}

// txView answers decide's reads from the open transaction. State comes from
// the locked row read at the start of Execute.
type txView struct {
	tx    *sql.Tx
	state models.RegistryState
}

func (v txView) State(context.Context) (models.RegistryState, error) {
	return v.state, nil
}

func (v txView) Invoice(ctx context.Context, invoiceID uint64) (*models.Invoice, error) {
	return loadInvoice(ctx, v.tx, invoiceID)
}

func (v txView) InvoiceIDByHash(ctx context.Context, hash models.ContentHash) (uint64, error) {
	return loadHash(ctx, v.tx, hash)
}

func apply(ctx context.Context, q queryer, state models.RegistryState, change models.Change) error {
	next := state
	if change.Admin != nil {
		next.Admin = *change.Admin
	}
	if change.Oracle != nil {
		next.Oracle = *change.Oracle
	}
	if change.Paused != nil {
		next.Paused = *change.Paused
	}
	if c := change.Created; c != nil {
		if c.ID != state.NextID() {
			return fmt.Errorf("invoice id %d is not next (%d): %w", c.ID, state.NextID(), sentinel.ErrInvalidState)
		}
		if err := insertInvoice(ctx, q, c); err != nil {
			return err
		}
		next.InvoiceCounter = c.ID
	}
	if u := change.Updated; u != nil {
		if err := updateInvoice(ctx, q, u); err != nil {
			return err
		}
	}
	if next == state {
		return nil
	}
	_, err := q.ExecContext(ctx, `
		UPDATE registry_state
		SET admin = $1, oracle = $2, paused = $3, invoice_counter = $4
		WHERE id = 1`,
		next.Admin.String(), next.Oracle.String(), next.Paused, int64(next.InvoiceCounter),
	)
	if err != nil {
		return fmt.Errorf("update registry state: %w", err)
	}
	return nil
}

func insertInvoice(ctx context.Context, q queryer, inv *models.Invoice) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		int64(inv.ID),
		inv.Issuer.String(),
		inv.Recipient.String(),
		formatUint(inv.Amount),
		inv.Currency,
		formatUint(inv.IssueDate),
		formatUint(inv.DueDate),
		int16(inv.Status),
		inv.Verified,
		inv.Description,
		inv.Hash[:],
	)
	if err != nil {
		return fmt.Errorf("insert invoice %d: %w", inv.ID, classify(err))
	}
	_, err = q.ExecContext(ctx, `INSERT INTO invoice_hashes (hash, invoice_id) VALUES ($1, $2)`, inv.Hash[:], int64(inv.ID))
	if err != nil {
		return fmt.Errorf("index hash %s: %w", inv.Hash, classify(err))
	}
	return nil
}

func updateInvoice(ctx context.Context, q queryer, inv *models.Invoice) error {
	res, err := q.ExecContext(ctx, `UPDATE invoices SET status = $1, verified = $2 WHERE id = $3`,
		int16(inv.Status), inv.Verified, int64(inv.ID))
	if err != nil {
		return fmt.Errorf("update invoice %d: %w", inv.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update invoice %d rows: %w", inv.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("update invoice %d: %w", inv.ID, sentinel.ErrNotFound)
	}
	return nil
}

func loadState(ctx context.Context, q queryer, forUpdate bool) (models.RegistryState, error) {
	query := `SELECT admin, oracle, paused, invoice_counter FROM registry_state WHERE id = 1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var (
		admin, oracle string
		state         models.RegistryState
		counter       int64
	)
	err := q.QueryRowContext(ctx, query).Scan(&admin, &oracle, &state.Paused, &counter)
	if errors.Is(err, sql.ErrNoRows) {
		return models.RegistryState{}, fmt.Errorf("registry not bootstrapped: %w", sentinel.ErrInvalidState)
	}
	if err != nil {
		return models.RegistryState{}, fmt.Errorf("load registry state: %w", err)
	}
	state.Admin = id.Identity(admin)
	state.Oracle = id.Identity(oracle)
	state.InvoiceCounter = uint64(counter)
	return state, nil
}

func loadInvoice(ctx context.Context, q queryer, invoiceID uint64) (*models.Invoice, error) {
	if invoiceID == 0 || invoiceID > maxBigint {
		return nil, sentinel.ErrNotFound
	}
	var (
		rowID                      int64
		issuer, recipient          string
		amount, issueDate, dueDate string
		status                     int16
		hash                       []byte
		inv                        models.Invoice
	)
	err := q.QueryRowContext(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, int64(invoiceID)).Scan(
		&rowID, &issuer, &recipient, &amount, &inv.Currency, &issueDate, &dueDate, &status, &inv.Verified, &inv.Description, &hash,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load invoice %d: %w", invoiceID, err)
	}

	inv.ID = uint64(rowID)
	inv.Issuer = id.Identity(issuer)
	inv.Recipient = id.Identity(recipient)
	inv.Status = models.Status(status)
	if inv.Amount, err = parseUint(amount); err != nil {
		return nil, fmt.Errorf("invoice %d amount: %w", invoiceID, err)
	}
	if inv.IssueDate, err = parseUint(issueDate); err != nil {
		return nil, fmt.Errorf("invoice %d issue date: %w", invoiceID, err)
	}
	if inv.DueDate, err = parseUint(dueDate); err != nil {
		return nil, fmt.Errorf("invoice %d due date: %w", invoiceID, err)
	}
	if inv.Hash, err = models.ContentHashFromBytes(hash); err != nil {
		return nil, fmt.Errorf("invoice %d hash: %w", invoiceID, err)
	}
	return &inv, nil
}

func loadHash(ctx context.Context, q queryer, hash models.ContentHash) (uint64, error) {
	var invoiceID int64
	err := q.QueryRowContext(ctx, `SELECT invoice_id FROM invoice_hashes WHERE hash = $1`, hash[:]).Scan(&invoiceID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, sentinel.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("load hash %s: %w", hash, err)
	}
	return uint64(invoiceID), nil
}

// classify maps a duplicate content hash onto sentinel.ErrConflict. Any other
// unique violation means the registry's own bookkeeping is inconsistent and
// stays an internal error.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	if pgErr.ConstraintName == hashIndexKey {
		return sentinel.ErrConflict
	}
	return fmt.Errorf("unique violation on %s: %w", pgErr.ConstraintName, err)
}

const maxBigint = 1<<63 - 1

// NUMERIC(20,0) columns travel as decimal text to keep the full uint64 range.
func formatUint(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func parseUint(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}
