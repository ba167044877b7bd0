package quote

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"devis/internal/actionlink"
	"devis/internal/config"
	"devis/internal/document"
	"devis/internal/infrastructure/blob"
	"devis/internal/infrastructure/mailer"
	"devis/internal/notification"
	"devis/internal/pricing"
	"devis/internal/quote/controller"
	"devis/internal/quote/repository"
	"devis/internal/quote/usecase"
)

// Module groups the HTTP controllers of the devis lifecycle.
type Module struct {
	Quotes  *controller.QuoteController
	Actions *controller.ActionController
	Pricing *controller.PricingController
	Admin   *controller.AdminController
}

type quoteStore interface {
	usecase.QuoteRepository
	usecase.QuoteReader
}

// NewModule wires the store, the notification gateway and the renderers into
// the lifecycle use cases. db is only used when the mysql store is selected.
func NewModule(ctx context.Context, db *sql.DB, engine *pricing.Engine, cfg *config.Config, logger *zap.Logger) (*Module, error) {
	store, err := newStore(db, cfg)
	if err != nil {
		return nil, err
	}

	transport, err := newTransport(cfg, logger)
	if err != nil {
		return nil, err
	}
	gateway := notification.NewGateway(transport, notification.Config{
		MaxRetries: cfg.Mail.MaxRetries,
		RetryDelay: cfg.Mail.RetryDelay,
	}, logger)

	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	templates, err := document.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("loading email templates: %w", err)
	}
	pdf := document.NewPDFRenderer()
	signer := actionlink.NewSigner([]byte(cfg.ActionLink.Secret), cfg.ActionLink.TTL, cfg.Company.SiteURL)
	validator := usecase.NewConfigurationValidator(engine)

	settings := usecase.Settings{
		Company: document.Company{
			Name:    cfg.Company.Name,
			Email:   cfg.Company.OperatorEmail,
			SiteURL: cfg.Company.SiteURL,
		},
		OperatorEmail:     cfg.Company.OperatorEmail,
		MailFrom:          cfg.Company.MailFrom,
		SignatureMaxBytes: cfg.Signature.MaxBytes,
	}

	submit := usecase.NewSubmitQuoteUseCase(store, engine, validator, templates, pdf, signer, gateway, settings, logger)
	apply := usecase.NewApplyActionUseCase(store, templates, gateway, settings, logger)
	sign := usecase.NewRecordSignatureUseCase(store, blobs, validator, templates, signer, gateway, settings, logger)
	pricingUC := usecase.NewPricingUseCase(engine, validator, pdf, settings)
	query := usecase.NewQueryUseCase(store)

	return &Module{
		Quotes:  controller.NewQuoteController(submit, sign, logger),
		Actions: controller.NewActionController(apply, signer, cfg.Company.DashboardURL, logger),
		Pricing: controller.NewPricingController(pricingUC, logger),
		Admin:   controller.NewAdminController(query, logger),
	}, nil
}

func newStore(db *sql.DB, cfg *config.Config) (quoteStore, error) {
	if cfg.Store.Driver == config.StoreDriverMySQL {
		if db == nil {
			return nil, fmt.Errorf("mysql store selected without a database connection")
		}
		return repository.NewMySQLQuoteRepository(db), nil
	}

	store, err := repository.NewFileQuoteRepository(cfg.Store.FilePath)
	if err != nil {
		return nil, fmt.Errorf("opening devis file %s: %w", cfg.Store.FilePath, err)
	}
	return store, nil
}

func newTransport(cfg *config.Config, logger *zap.Logger) (notification.Transport, error) {
	if cfg.Mail.SMTPHost == "" {
		logger.Warn("SMTP_HOST not set, emails are only logged")
		return mailer.NewLogTransport(logger), nil
	}

	transport, err := mailer.NewSMTPTransport(mailer.SMTPConfig{
		Host:     cfg.Mail.SMTPHost,
		Port:     cfg.Mail.SMTPPort,
		User:     cfg.Mail.SMTPUser,
		Password: cfg.Mail.SMTPPassword,
		Timeout:  cfg.Mail.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("creating smtp transport: %w", err)
	}
	return transport, nil
}

func newBlobStore(ctx context.Context, cfg *config.Config) (usecase.BlobStore, error) {
	if cfg.Signature.Store == config.SignatureStoreS3 {
		store, err := blob.NewS3Store(ctx, blob.S3Config{
			Bucket:          cfg.Signature.Bucket,
			Endpoint:        cfg.Signature.Endpoint,
			Region:          cfg.Signature.Region,
			AccessKeyID:     cfg.Signature.AccessKeyID,
			SecretAccessKey: cfg.Signature.SecretAccessKey,
		})
		if err != nil {
			return nil, fmt.Errorf("creating signature bucket client: %w", err)
		}
		return store, nil
	}
	return blob.NewLocalStore(cfg.Signature.Dir), nil
}
