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

const loanColumns = `id, recipient, sender, amount, description, status, created_at, expiry_date`

// LoanRepository implements usecase.LoanRepository.
type LoanRepository struct {
	pool *pgxpool.Pool
}

// NewLoanRepository creates a new LoanRepository.
func NewLoanRepository(pool *pgxpool.Pool) *LoanRepository {
	return &LoanRepository{pool: pool}
}

// Create stores a new loan request.
func (r *LoanRepository) Create(ctx context.Context, loan *domain.LoanRequest) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO loan_requests (id, recipient, sender, amount, description, status, created_at, expiry_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		loan.ID,
		loan.Recipient,
		loan.Sender,
		decimalToNumeric(loan.Amount),
		loan.Description,
		string(loan.Status),
		timeToPgTimestamptz(loan.CreatedAt),
		timeToPgTimestamptz(loan.ExpiryDate),
	)

	return err
}

// GetByID retrieves a loan request by ID.
func (r *LoanRepository) GetByID(ctx context.Context, id string) (*domain.LoanRequest, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+loanColumns+`
		FROM loan_requests
		WHERE id = $1`,
		id,
	)

	loan, err := scanLoan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}

	return loan, nil
}

// ListByStatus lists loan requests in a given state, oldest first.
func (r *LoanRepository) ListByStatus(ctx context.Context, status domain.LoanStatus) ([]*domain.LoanRequest, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+loanColumns+`
		FROM loan_requests
		WHERE status = $1
		ORDER BY created_at`,
		string(status),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLoans(rows)
}

// ListByAccount lists loan requests the user takes part in, on either
// side, oldest first.
func (r *LoanRepository) ListByAccount(ctx context.Context, username string) ([]*domain.LoanRequest, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+loanColumns+`
		FROM loan_requests
		WHERE recipient = $1 OR sender = $1
		ORDER BY created_at`,
		username,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLoans(rows)
}

// UpdateStatusIf moves the loan from one state to another inside the
// caller's transaction. When the stored state no longer matches, the
// update affects no rows and the transition is reported stale.
func (r *LoanRepository) UpdateStatusIf(ctx context.Context, tx usecase.Transaction, id string, from, to domain.LoanStatus) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE loan_requests
		SET status = $3
		WHERE id = $1 AND status = $2`,
		id,
		string(from),
		string(to),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStaleState
	}

	return nil
}

// RewriteParticipants replaces a username on both sides of every loan
// request, inside the caller's transaction.
func (r *LoanRepository) RewriteParticipants(ctx context.Context, tx usecase.Transaction, oldUsername, newUsername string) error {
	pgxTx := tx.(*Tx).PgxTx()

	if _, err := pgxTx.Exec(ctx, `
		UPDATE loan_requests SET recipient = $2 WHERE recipient = $1`,
		oldUsername, newUsername,
	); err != nil {
		return err
	}

	_, err := pgxTx.Exec(ctx, `
		UPDATE loan_requests SET sender = $2 WHERE sender = $1`,
		oldUsername, newUsername,
	)
	return err
}

func scanLoan(row pgx.Row) (*domain.LoanRequest, error) {
	var (
		loan       domain.LoanRequest
		amount     pgtype.Numeric
		status     string
		createdAt  pgtype.Timestamptz
		expiryDate pgtype.Timestamptz
	)

	err := row.Scan(
		&loan.ID,
		&loan.Recipient,
		&loan.Sender,
		&amount,
		&loan.Description,
		&status,
		&createdAt,
		&expiryDate,
	)
	if err != nil {
		return nil, err
	}

	loan.Amount = numericToDecimal(amount)
	loan.Status = domain.LoanStatus(status)
	loan.CreatedAt = createdAt.Time
	loan.ExpiryDate = expiryDate.Time

	return &loan, nil
}

func collectLoans(rows pgx.Rows) ([]*domain.LoanRequest, error) {
	var loans []*domain.LoanRequest
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}

	return loans, rows.Err()
}
