package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"devis/internal/domain"
	"devis/internal/errors"
)

type fileState struct {
	Quotes     []domain.Quote     `json:"quotes"`
	Signatures []domain.Signature `json:"signatures"`
}

// FileQuoteRepository keeps every quote in memory and rewrites the whole JSON
// document on each mutation through a temp file and rename. It is safe for
// concurrent use within one process.
type FileQuoteRepository struct {
	mu        sync.Mutex
	path      string
	state     fileState
	now       func() time.Time
	newNumber func(time.Time) string
}

type FileOption func(*FileQuoteRepository)

func WithClock(now func() time.Time) FileOption {
	return func(r *FileQuoteRepository) { r.now = now }
}

func WithNumberGenerator(gen func(time.Time) string) FileOption {
	return func(r *FileQuoteRepository) { r.newNumber = gen }
}

func NewFileQuoteRepository(path string, opts ...FileOption) (*FileQuoteRepository, error) {
	r := &FileQuoteRepository{
		path:      path,
		now:       func() time.Time { return time.Now().UTC() },
		newNumber: domain.NewDevisNumber,
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.load(); err != nil {
		return nil, errors.NewStorageError("load", err)
	}
	return r, nil
}

func (r *FileQuoteRepository) load() error {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", r.path, err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	var state fileState
	if data[0] == '[' {
		// plain list of quotes, no signatures
		if err := json.Unmarshal(data, &state.Quotes); err != nil {
			return fmt.Errorf("decoding %s: %w", r.path, err)
		}
	} else if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("decoding %s: %w", r.path, err)
	}

	seen := make(map[string]struct{}, len(state.Quotes))
	for _, q := range state.Quotes {
		if err := validateQuote(q); err != nil {
			return err
		}
		if _, dup := seen[q.DevisNumber]; dup {
			return fmt.Errorf("duplicate devis number %s", q.DevisNumber)
		}
		seen[q.DevisNumber] = struct{}{}
	}

	r.state = state
	return nil
}

func (r *FileQuoteRepository) persist() error {
	data, err := json.MarshalIndent(r.state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding quotes: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".devis-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replacing %s: %w", r.path, err)
	}
	return nil
}

func (r *FileQuoteRepository) indexOf(number string) int {
	for i := range r.state.Quotes {
		if r.state.Quotes[i].DevisNumber == number {
			return i
		}
	}
	return -1
}

func (r *FileQuoteRepository) Create(ctx context.Context, draft domain.QuoteDraft) (*domain.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	number := ""
	for i := 0; i < maxNumberAttempts; i++ {
		candidate := r.newNumber(now)
		if r.indexOf(candidate) < 0 {
			number = candidate
			break
		}
	}
	if number == "" {
		return nil, errors.NewStorageError("create", fmt.Errorf("no free devis number after %d attempts", maxNumberAttempts))
	}

	quote := newQuote(draft, uuid.New().String(), number, now)

	n := len(r.state.Quotes)
	r.state.Quotes = append(r.state.Quotes, quote)
	if err := r.persist(); err != nil {
		r.state.Quotes = r.state.Quotes[:n]
		return nil, errors.NewStorageError("create", err)
	}

	out := cloneQuote(quote)
	return &out, nil
}

func (r *FileQuoteRepository) FindByNumber(ctx context.Context, number string) (*domain.Quote, error) {
	if !domain.ValidDevisNumber(number) {
		return nil, notFound(number)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(number)
	if i < 0 {
		return nil, notFound(number)
	}

	out := cloneQuote(r.state.Quotes[i])
	return &out, nil
}

// UpdateStatus moves a pending quote to a terminal status. Any other current
// status yields a ConflictError carrying it.
func (r *FileQuoteRepository) UpdateStatus(ctx context.Context, number string, status domain.QuoteStatus) (*domain.Quote, error) {
	if !terminalStatus(status) {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid target status %q", status))
	}
	if !domain.ValidDevisNumber(number) {
		return nil, notFound(number)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(number)
	if i < 0 {
		return nil, notFound(number)
	}

	current := r.state.Quotes[i]
	if current.Status != domain.QuoteStatusPending {
		return nil, alreadyProcessed(number, current.Status)
	}

	updated := current
	updated.Status = status
	updated.UpdatedAt = r.now()
	r.state.Quotes[i] = updated

	if err := r.persist(); err != nil {
		r.state.Quotes[i] = current
		return nil, errors.NewStorageError("update status", err)
	}

	out := cloneQuote(updated)
	return &out, nil
}

// RecordSignature appends sig and stamps signedAt on its pending quote.
func (r *FileQuoteRepository) RecordSignature(ctx context.Context, sig domain.Signature) (*domain.Quote, error) {
	if !domain.ValidDevisNumber(sig.DevisNumber) {
		return nil, notFound(sig.DevisNumber)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(sig.DevisNumber)
	if i < 0 {
		return nil, notFound(sig.DevisNumber)
	}

	current := r.state.Quotes[i]
	if current.Status != domain.QuoteStatusPending {
		return nil, alreadyProcessed(sig.DevisNumber, current.Status)
	}

	signedAt := sig.SignedAt
	updated := cloneQuote(current)
	updated.SignedAt = &signedAt

	n := len(r.state.Signatures)
	r.state.Quotes[i] = updated
	r.state.Signatures = append(r.state.Signatures, sig)

	if err := r.persist(); err != nil {
		r.state.Quotes[i] = current
		r.state.Signatures = r.state.Signatures[:n]
		return nil, errors.NewStorageError("record signature", err)
	}

	out := cloneQuote(updated)
	return &out, nil
}

func (r *FileQuoteRepository) ListSignatures(ctx context.Context, number string) ([]domain.Signature, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []domain.Signature{}
	for _, s := range r.state.Signatures {
		if s.DevisNumber == number {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *FileQuoteRepository) ListAll(ctx context.Context) ([]domain.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Quote, 0, len(r.state.Quotes))
	for _, q := range r.state.Quotes {
		out = append(out, cloneQuote(q))
	}
	return out, nil
}

func (r *FileQuoteRepository) Stats(ctx context.Context) (domain.QuoteStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return domain.ComputeStats(r.state.Quotes), nil
}
