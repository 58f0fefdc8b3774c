package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lcbank/backend/internal/domain"
	"github.com/lcbank/backend/internal/usecase"
)

// Advisory lock key shared by every chain writer. The chain has a
// single global tail, so appends and re-links serialize on it.
const chainAdvisoryLockID = int64(0x6c6362616e6b)

const transactionColumns = `id, seq, sender, recipient, amount, kind, description, created_at, prev_hash, hash`

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// LockChain takes the chain-wide advisory lock for the duration of the
// caller's transaction.
func (r *TransactionRepository) LockChain(ctx context.Context, tx usecase.Transaction) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, chainAdvisoryLockID)
	return err
}

// GetLatest returns the chain tail, or nil when the chain is empty.
func (r *TransactionRepository) GetLatest(ctx context.Context, tx usecase.Transaction) (*domain.Transaction, error) {
	pgxTx := tx.(*Tx).PgxTx()

	row := pgxTx.QueryRow(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		ORDER BY seq DESC
		LIMIT 1`,
	)

	txn, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return txn, nil
}

// Insert appends a transaction inside the caller's transaction and
// fills in the assigned sequence number.
func (r *TransactionRepository) Insert(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	pgxTx := tx.(*Tx).PgxTx()

	return pgxTx.QueryRow(ctx, `
		INSERT INTO transactions (id, sender, recipient, amount, kind, description, created_at, prev_hash, hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING seq`,
		txn.ID,
		txn.Sender,
		txn.Recipient,
		decimalToNumeric(txn.Amount),
		string(txn.Kind),
		txn.Description,
		timeToPgTimestamptz(txn.CreatedAt),
		txn.PrevHash,
		txn.Hash,
	).Scan(&txn.Seq)
}

// ListAll returns the whole chain in append order.
func (r *TransactionRepository) ListAll(ctx context.Context) ([]*domain.Transaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		ORDER BY seq`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// ListAllForUpdate returns the whole chain in append order with row
// locks, inside the caller's transaction.
func (r *TransactionRepository) ListAllForUpdate(ctx context.Context, tx usecase.Transaction) ([]*domain.Transaction, error) {
	pgxTx := tx.(*Tx).PgxTx()

	rows, err := pgxTx.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		ORDER BY seq
		FOR UPDATE`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// ListByAccount returns the transactions the account took part in, on
// either side, in append order.
func (r *TransactionRepository) ListByAccount(ctx context.Context, username string) ([]*domain.Transaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE sender = $1 OR recipient = $1
		ORDER BY seq`,
		username,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// RewriteParticipants replaces a username on both sides of every
// transaction, inside the caller's transaction.
func (r *TransactionRepository) RewriteParticipants(ctx context.Context, tx usecase.Transaction, oldUsername, newUsername string) error {
	pgxTx := tx.(*Tx).PgxTx()

	if _, err := pgxTx.Exec(ctx, `
		UPDATE transactions SET sender = $2 WHERE sender = $1`,
		oldUsername, newUsername,
	); err != nil {
		return err
	}

	_, err := pgxTx.Exec(ctx, `
		UPDATE transactions SET recipient = $2 WHERE recipient = $1`,
		oldUsername, newUsername,
	)
	return err
}

// UpdateHashes rewrites the chain links of one transaction, inside the
// caller's transaction.
func (r *TransactionRepository) UpdateHashes(ctx context.Context, tx usecase.Transaction, id, prevHash, hash string) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE transactions SET prev_hash = $2, hash = $3 WHERE id = $1`,
		id, prevHash, hash,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrChainCorrupted
	}

	return nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		txn       domain.Transaction
		amount    pgtype.Numeric
		kind      string
		createdAt pgtype.Timestamptz
	)

	err := row.Scan(
		&txn.ID,
		&txn.Seq,
		&txn.Sender,
		&txn.Recipient,
		&amount,
		&kind,
		&txn.Description,
		&createdAt,
		&txn.PrevHash,
		&txn.Hash,
	)
	if err != nil {
		return nil, err
	}

	txn.Amount = numericToDecimal(amount)
	txn.Kind = domain.TransactionKind(kind)
	txn.CreatedAt = createdAt.Time

	return &txn, nil
}

func collectTransactions(rows pgx.Rows) ([]*domain.Transaction, error) {
	var transactions []*domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, txn)
	}

	return transactions, rows.Err()
}
