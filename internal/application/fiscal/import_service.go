package fiscal

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nfehub/backend/internal/domain/catalog"
	"github.com/nfehub/backend/internal/domain/fiscal"
	"github.com/nfehub/backend/internal/domain/partner"
	"github.com/nfehub/backend/internal/domain/shared"
)

// XMLArchiver stores raw NFe XML in object storage and returns the storage key
type XMLArchiver interface {
	Archive(ctx context.Context, tenantID uuid.UUID, accessKey string, xmlContent []byte) (string, error)
}

// ImportService runs the document ingestion pipeline: parse, validate,
// deduplicate, archive, reconcile, persist.
type ImportService struct {
	documentRepo          fiscal.FiscalDocumentRepository
	supplierRepo          partner.SupplierRepository
	materialRepo          catalog.MaterialRepository
	engine                *fiscal.ReconciliationEngine
	archiver              XMLArchiver
	eventBus              shared.EventPublisher
	logger                *zap.Logger
	autoRegisterSuppliers bool
}

// ImportServiceOption configures optional import behavior
type ImportServiceOption func(*ImportService)

// WithSupplierAutoRegistration makes the import register unknown emitters as
// suppliers instead of reporting them unmatched. Off by default: an unknown
// emitter is a reviewable condition left for manual resolution.
func WithSupplierAutoRegistration() ImportServiceOption {
	return func(s *ImportService) {
		s.autoRegisterSuppliers = true
	}
}

// NewImportService creates a new ImportService
func NewImportService(
	documentRepo fiscal.FiscalDocumentRepository,
	supplierRepo partner.SupplierRepository,
	materialRepo catalog.MaterialRepository,
	engine *fiscal.ReconciliationEngine,
	archiver XMLArchiver,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
	opts ...ImportServiceOption,
) *ImportService {
	if engine == nil {
		engine = fiscal.NewReconciliationEngine()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ImportService{
		documentRepo: documentRepo,
		supplierRepo: supplierRepo,
		materialRepo: materialRepo,
		engine:       engine,
		archiver:     archiver,
		eventBus:     eventBus,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Import ingests one NFe XML for the tenant. The same access key is never
// stored twice: a repeated import fails with DUPLICATE_DOCUMENT and leaves
// the stored document untouched.
func (s *ImportService) Import(ctx context.Context, tenantID uuid.UUID, req ImportDocumentRequest) (*ImportResponse, error) {
	parsed, perr := fiscal.ParseDocument(req.XMLContent)
	if perr != nil {
		return nil, perr
	}

	existing, err := s.documentRepo.FindByAccessKey(ctx, tenantID, parsed.AccessKey.String())
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, duplicateDocumentError(existing)
	}

	doc, err := parsed.ToDocument(tenantID)
	if err != nil {
		return nil, err
	}

	if s.archiver != nil {
		storageKey, err := s.archiver.Archive(ctx, tenantID, doc.AccessKey, []byte(req.XMLContent))
		if err != nil {
			// the document is still importable; the raw XML can be re-archived later
			s.logger.Warn("xml archive failed",
				zap.String("access_key", parsed.AccessKey.Masked()),
				zap.Error(err))
		} else {
			doc.SetXMLStorageKey(storageKey)
		}
	}

	supplier, err := s.resolveSupplier(ctx, tenantID, doc)
	if err != nil {
		return nil, err
	}

	candidates, err := s.loadCandidates(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	report := s.engine.Reconcile(doc, supplier, candidates)

	if err := s.documentRepo.Create(ctx, doc); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			// lost the race against a concurrent import of the same key
			if winner, ferr := s.documentRepo.FindByAccessKey(ctx, tenantID, parsed.AccessKey.String()); ferr == nil {
				return nil, duplicateDocumentError(winner)
			}
			return nil, shared.NewDomainError("DUPLICATE_DOCUMENT", "Document with this access key was already imported")
		}
		return nil, err
	}

	s.publishEvents(ctx, doc)

	s.logger.Info("document imported",
		zap.String("access_key", parsed.AccessKey.Masked()),
		zap.String("document_id", doc.ID.String()),
		zap.Int("items_total", report.ItemsTotal),
		zap.Int("items_linked", report.ItemsLinked))

	return &ImportResponse{
		Document:       ToDocumentResponse(doc),
		Reconciliation: *report,
	}, nil
}

// duplicateDocumentError names the prior import so the caller can locate it
func duplicateDocumentError(existing *fiscal.FiscalDocument) *shared.DomainError {
	return shared.NewDomainError("DUPLICATE_DOCUMENT",
		"Document already imported as #"+existing.DocumentNumber)
}

// resolveSupplier looks the emitter up by CNPJ. An unknown emitter normally
// leaves the document without a supplier link, reported as unmatched for
// manual resolution; with auto-registration enabled it is registered instead.
// Registration is also skipped for CNPJs that fail check-digit validation.
func (s *ImportService) resolveSupplier(ctx context.Context, tenantID uuid.UUID, doc *fiscal.FiscalDocument) (*fiscal.SupplierRef, error) {
	existing, err := s.supplierRepo.FindByCNPJ(ctx, tenantID, doc.SupplierCNPJ)
	if err == nil {
		return &fiscal.SupplierRef{SupplierID: existing.ID, CNPJ: existing.CNPJ}, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	if !s.autoRegisterSuppliers {
		s.logger.Info("emitter has no registered supplier",
			zap.String("cnpj", doc.SupplierCNPJ))
		return nil, nil
	}

	created, err := partner.NewSupplier(tenantID, doc.SupplierCNPJ, doc.SupplierName)
	if err != nil {
		s.logger.Warn("supplier auto-registration skipped",
			zap.String("cnpj", doc.SupplierCNPJ),
			zap.Error(err))
		return nil, nil
	}
	if err := s.supplierRepo.Create(ctx, created); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			// concurrent import registered it first
			existing, err := s.supplierRepo.FindByCNPJ(ctx, tenantID, doc.SupplierCNPJ)
			if err != nil {
				return nil, err
			}
			return &fiscal.SupplierRef{SupplierID: existing.ID, CNPJ: existing.CNPJ}, nil
		}
		return nil, err
	}

	s.logger.Info("supplier auto-registered",
		zap.String("cnpj", created.CNPJ),
		zap.String("supplier_id", created.ID.String()))

	return &fiscal.SupplierRef{SupplierID: created.ID, CNPJ: created.CNPJ}, nil
}

func (s *ImportService) loadCandidates(ctx context.Context, tenantID uuid.UUID) ([]fiscal.MatchCandidate, error) {
	materials, err := s.materialRepo.ListActive(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	candidates := make([]fiscal.MatchCandidate, 0, len(materials))
	for _, material := range materials {
		candidates = append(candidates, fiscal.MatchCandidate{
			MaterialID: material.ID,
			Code:       material.Code,
			Barcode:    material.Barcode,
		})
	}
	return candidates, nil
}

func (s *ImportService) publishEvents(ctx context.Context, doc *fiscal.FiscalDocument) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(ctx, doc.GetDomainEvents()...); err != nil {
		s.logger.Warn("event publish failed", zap.Error(err))
	}
	doc.ClearDomainEvents()
}
