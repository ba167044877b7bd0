package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"devis/internal/domain"
	"devis/internal/errors"
)

const mysqlDuplicateEntry = 1062

const quoteColumns = `
	id, devis_number, client_name, client_email, client_phone, client_company,
	site_type, design_type, features, maintenance, maintenance_fee,
	project_description, amount, total, status, signed_at, created_at, updated_at`

type MySQLQuoteRepository struct {
	db        *sql.DB
	now       func() time.Time
	newNumber func(time.Time) string
}

func NewMySQLQuoteRepository(db *sql.DB) *MySQLQuoteRepository {
	return &MySQLQuoteRepository{
		db:        db,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		newNumber: domain.NewDevisNumber,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuote(row rowScanner) (*domain.Quote, error) {
	var (
		q           domain.Quote
		features    []byte
		description sql.NullString
		signedAt    sql.NullTime
		status      string
	)

	err := row.Scan(
		&q.ID, &q.DevisNumber, &q.ClientInfo.Name, &q.ClientInfo.Email, &q.ClientInfo.Phone, &q.ClientInfo.Company,
		&q.SiteType, &q.DesignType, &features, &q.Maintenance, &q.MaintenanceFee,
		&description, &q.Amount, &q.Total, &status, &signedAt, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(features, &q.Features); err != nil {
		return nil, fmt.Errorf("decoding features of %s: %w", q.DevisNumber, err)
	}
	q.ProjectDescription = description.String
	q.Status = domain.QuoteStatus(status)
	if signedAt.Valid {
		t := signedAt.Time.UTC()
		q.SignedAt = &t
	}
	q.CreatedAt = q.CreatedAt.UTC()
	q.UpdatedAt = q.UpdatedAt.UTC()

	if err := validateQuote(q); err != nil {
		return nil, err
	}
	return &q, nil
}

// Create inserts a pending quote. A devis number already taken is detected by
// the unique key and regenerated.
func (r *MySQLQuoteRepository) Create(ctx context.Context, draft domain.QuoteDraft) (*domain.Quote, error) {
	query := `
		INSERT INTO Quotes (` + quoteColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	features, err := json.Marshal(nonNil(draft.Features))
	if err != nil {
		return nil, errors.NewStorageError("create", fmt.Errorf("encoding features: %w", err))
	}

	now := r.now()
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		quote := newQuote(draft, uuid.New().String(), r.newNumber(now), now)

		_, err := r.db.ExecContext(ctx, query,
			quote.ID, quote.DevisNumber, quote.ClientInfo.Name, quote.ClientInfo.Email,
			quote.ClientInfo.Phone, quote.ClientInfo.Company, quote.SiteType, quote.DesignType,
			features, quote.Maintenance, quote.MaintenanceFee, quote.ProjectDescription,
			quote.Amount, quote.Total, string(quote.Status), nil, quote.CreatedAt, quote.UpdatedAt,
		)
		if err == nil {
			return &quote, nil
		}

		var myErr *mysql.MySQLError
		if stderrors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
			continue
		}
		return nil, errors.NewStorageError("create", fmt.Errorf("inserting quote: %w", err))
	}

	return nil, errors.NewStorageError("create", fmt.Errorf("no free devis number after %d attempts", maxNumberAttempts))
}

func (r *MySQLQuoteRepository) FindByNumber(ctx context.Context, number string) (*domain.Quote, error) {
	if !domain.ValidDevisNumber(number) {
		return nil, notFound(number)
	}

	query := `SELECT ` + quoteColumns + ` FROM Quotes WHERE devis_number = ?`

	quote, err := scanQuote(r.db.QueryRowContext(ctx, query, number))
	if err == sql.ErrNoRows {
		return nil, notFound(number)
	}
	if err != nil {
		return nil, errors.NewStorageError("find", fmt.Errorf("querying quote by number: %w", err))
	}

	return quote, nil
}

// UpdateStatus is a compare-and-set on status = 'pending'. When no row
// changes, the quote is re-read to tell a missing quote from one that was
// already decided.
func (r *MySQLQuoteRepository) UpdateStatus(ctx context.Context, number string, status domain.QuoteStatus) (*domain.Quote, error) {
	if !terminalStatus(status) {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid target status %q", status))
	}
	if !domain.ValidDevisNumber(number) {
		return nil, notFound(number)
	}

	query := `UPDATE Quotes SET status = ?, updated_at = ? WHERE devis_number = ? AND status = ?`

	result, err := r.db.ExecContext(ctx, query, string(status), r.now(), number, string(domain.QuoteStatusPending))
	if err != nil {
		return nil, errors.NewStorageError("update status", fmt.Errorf("updating quote status: %w", err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, errors.NewStorageError("update status", fmt.Errorf("getting rows affected: %w", err))
	}

	quote, err := r.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if rowsAffected == 0 {
		return nil, alreadyProcessed(number, quote.Status)
	}

	return quote, nil
}

func (r *MySQLQuoteRepository) RecordSignature(ctx context.Context, sig domain.Signature) (*domain.Quote, error) {
	if !domain.ValidDevisNumber(sig.DevisNumber) {
		return nil, notFound(sig.DevisNumber)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewStorageError("record signature", fmt.Errorf("beginning transaction: %w", err))
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRowContext(ctx, `SELECT status FROM Quotes WHERE devis_number = ? FOR UPDATE`, sig.DevisNumber).Scan(&status)
	if err == sql.ErrNoRows {
		return nil, notFound(sig.DevisNumber)
	}
	if err != nil {
		return nil, errors.NewStorageError("record signature", fmt.Errorf("locking quote: %w", err))
	}
	if domain.QuoteStatus(status) != domain.QuoteStatusPending {
		return nil, alreadyProcessed(sig.DevisNumber, domain.QuoteStatus(status))
	}

	_, err = tx.ExecContext(ctx, `UPDATE Quotes SET signed_at = ? WHERE devis_number = ?`, sig.SignedAt, sig.DevisNumber)
	if err != nil {
		return nil, errors.NewStorageError("record signature", fmt.Errorf("stamping quote: %w", err))
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO Signatures (id, devis_number, image_key, mime_type, size_bytes,
			signer_name, signer_email, signer_phone, signer_company,
			ip_address, user_agent, signed_at, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sig.ID, sig.DevisNumber, sig.ImageKey, sig.MimeType, sig.SizeBytes,
		sig.Signer.Name, sig.Signer.Email, sig.Signer.Phone, sig.Signer.Company,
		sig.IPAddress, sig.UserAgent, sig.SignedAt, sig.RecordedAt,
	)
	if err != nil {
		return nil, errors.NewStorageError("record signature", fmt.Errorf("inserting signature: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewStorageError("record signature", fmt.Errorf("committing: %w", err))
	}

	return r.FindByNumber(ctx, sig.DevisNumber)
}

func (r *MySQLQuoteRepository) ListSignatures(ctx context.Context, number string) ([]domain.Signature, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, devis_number, image_key, mime_type, size_bytes,
			signer_name, signer_email, signer_phone, signer_company,
			ip_address, user_agent, signed_at, recorded_at
		FROM Signatures
		WHERE devis_number = ?
		ORDER BY seq`, number)
	if err != nil {
		return nil, errors.NewStorageError("list signatures", fmt.Errorf("querying signatures: %w", err))
	}
	defer rows.Close()

	out := []domain.Signature{}
	for rows.Next() {
		var s domain.Signature
		if err := rows.Scan(
			&s.ID, &s.DevisNumber, &s.ImageKey, &s.MimeType, &s.SizeBytes,
			&s.Signer.Name, &s.Signer.Email, &s.Signer.Phone, &s.Signer.Company,
			&s.IPAddress, &s.UserAgent, &s.SignedAt, &s.RecordedAt,
		); err != nil {
			return nil, errors.NewStorageError("list signatures", fmt.Errorf("scanning signature: %w", err))
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageError("list signatures", err)
	}
	return out, nil
}

func (r *MySQLQuoteRepository) ListAll(ctx context.Context) ([]domain.Quote, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+quoteColumns+` FROM Quotes ORDER BY seq`)
	if err != nil {
		return nil, errors.NewStorageError("list", fmt.Errorf("querying quotes: %w", err))
	}
	defer rows.Close()

	out := []domain.Quote{}
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, errors.NewStorageError("list", fmt.Errorf("scanning quote: %w", err))
		}
		out = append(out, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageError("list", err)
	}
	return out, nil
}

func (r *MySQLQuoteRepository) Stats(ctx context.Context) (domain.QuoteStats, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(status = 'pending'), 0),
		       COALESCE(SUM(status = 'approved'), 0),
		       COALESCE(SUM(status = 'rejected'), 0)
		FROM Quotes
	`

	var stats domain.QuoteStats
	err := r.db.QueryRowContext(ctx, query).Scan(&stats.Total, &stats.Pending, &stats.Approved, &stats.Rejected)
	if err != nil {
		return domain.QuoteStats{}, errors.NewStorageError("stats", fmt.Errorf("counting quotes: %w", err))
	}
	return stats, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
