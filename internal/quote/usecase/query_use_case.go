package usecase

import (
	"context"

	"devis/internal/domain"
)

// QueryUseCase serves the read-only admin views.
type QueryUseCase struct {
	reader QuoteReader
}

func NewQueryUseCase(reader QuoteReader) *QueryUseCase {
	return &QueryUseCase{reader: reader}
}

func (uc *QueryUseCase) List(ctx context.Context) ([]domain.Quote, error) {
	return uc.reader.ListAll(ctx)
}

func (uc *QueryUseCase) Stats(ctx context.Context) (domain.QuoteStats, error) {
	return uc.reader.Stats(ctx)
}

func (uc *QueryUseCase) Get(ctx context.Context, number string) (*domain.Quote, []domain.Signature, error) {
	quote, err := uc.reader.FindByNumber(ctx, number)
	if err != nil {
		return nil, nil, err
	}
	sigs, err := uc.reader.ListSignatures(ctx, number)
	if err != nil {
		return nil, nil, err
	}
	return quote, sigs, nil
}
