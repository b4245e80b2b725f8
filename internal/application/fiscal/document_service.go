package fiscal

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nfehub/backend/internal/domain/catalog"
	"github.com/nfehub/backend/internal/domain/fiscal"
	"github.com/nfehub/backend/internal/domain/partner"
	"github.com/nfehub/backend/internal/domain/shared"
)

// CountersCache caches the dashboard counters per tenant
type CountersCache interface {
	Get(ctx context.Context, tenantID uuid.UUID) (*fiscal.DocumentCounters, error)
	Set(ctx context.Context, tenantID uuid.UUID, counters *fiscal.DocumentCounters) error
	Invalidate(ctx context.Context, tenantID uuid.UUID) error
}

// DocumentService handles queries and lifecycle operations on imported
// documents
type DocumentService struct {
	documentRepo fiscal.FiscalDocumentRepository
	supplierRepo partner.SupplierRepository
	materialRepo catalog.MaterialRepository
	engine       *fiscal.ReconciliationEngine
	cache        CountersCache
	eventBus     shared.EventPublisher
	logger       *zap.Logger
	now          func() time.Time
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	documentRepo fiscal.FiscalDocumentRepository,
	supplierRepo partner.SupplierRepository,
	materialRepo catalog.MaterialRepository,
	engine *fiscal.ReconciliationEngine,
	cache CountersCache,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *DocumentService {
	if engine == nil {
		engine = fiscal.NewReconciliationEngine()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		documentRepo: documentRepo,
		supplierRepo: supplierRepo,
		materialRepo: materialRepo,
		engine:       engine,
		cache:        cache,
		eventBus:     eventBus,
		logger:       logger,
		now:          time.Now,
	}
}

// GetByID retrieves a document with its items
func (s *DocumentService) GetByID(ctx context.Context, tenantID, documentID uuid.UUID) (*DocumentResponse, error) {
	doc, err := s.documentRepo.FindByID(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}

	response := ToDocumentResponse(doc)
	return &response, nil
}

// GetByAccessKey retrieves a document by its 44-digit access key
func (s *DocumentService) GetByAccessKey(ctx context.Context, tenantID uuid.UUID, rawKey string) (*DocumentResponse, error) {
	key, err := fiscal.NewAccessKey(rawKey)
	if err != nil {
		return nil, err
	}

	doc, err := s.documentRepo.FindByAccessKey(ctx, tenantID, key.String())
	if err != nil {
		return nil, err
	}

	response := ToDocumentResponse(doc)
	return &response, nil
}

// List retrieves a page of documents matching the filter
func (s *DocumentService) List(ctx context.Context, tenantID uuid.UUID, filter DocumentListFilter) (*shared.Paginated[DocumentListResponse], error) {
	domainFilter := fiscal.DocumentFilter{
		Status:     fiscal.DocumentStatus(filter.Status),
		SupplierID: filter.SupplierID,
		IssuedFrom: filter.IssuedFrom,
		IssuedTo:   filter.IssuedTo,
		Search:     filter.Search,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
	}.Normalized()

	docs, total, err := s.documentRepo.List(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	items := make([]DocumentListResponse, 0, len(docs))
	for i := range docs {
		items = append(items, ToDocumentListResponse(&docs[i]))
	}

	page := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// Counters returns the dashboard counters, served from cache when warm
func (s *DocumentService) Counters(ctx context.Context, tenantID uuid.UUID) (*CountersResponse, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, tenantID); err == nil && cached != nil {
			response := ToCountersResponse(cached)
			return &response, nil
		}
	}

	counters, err := s.documentRepo.Counters(ctx, tenantID, s.now())
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, tenantID, counters); err != nil {
			s.logger.Warn("counters cache write failed", zap.Error(err))
		}
	}

	response := ToCountersResponse(counters)
	return &response, nil
}

// MarkProcessed transitions a pending document to PROCESSED
func (s *DocumentService) MarkProcessed(ctx context.Context, tenantID, documentID uuid.UUID) (*DocumentResponse, error) {
	return s.transition(ctx, tenantID, documentID, func(doc *fiscal.FiscalDocument) error {
		return doc.MarkProcessed()
	})
}

// Reject transitions a pending document to REJECTED
func (s *DocumentService) Reject(ctx context.Context, tenantID, documentID uuid.UUID, req RejectDocumentRequest) (*DocumentResponse, error) {
	return s.transition(ctx, tenantID, documentID, func(doc *fiscal.FiscalDocument) error {
		return doc.Reject(req.Reason)
	})
}

// Cancel transitions a processed document to CANCELLED
func (s *DocumentService) Cancel(ctx context.Context, tenantID, documentID uuid.UUID, req CancelDocumentRequest) (*DocumentResponse, error) {
	return s.transition(ctx, tenantID, documentID, func(doc *fiscal.FiscalDocument) error {
		return doc.Cancel(req.Reason)
	})
}

func (s *DocumentService) transition(ctx context.Context, tenantID, documentID uuid.UUID, apply func(*fiscal.FiscalDocument) error) (*DocumentResponse, error) {
	doc, err := s.documentRepo.FindByIDForUpdate(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}

	if err := apply(doc); err != nil {
		return nil, err
	}

	if err := s.documentRepo.Save(ctx, doc); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, doc)
	s.invalidateCounters(ctx, tenantID)

	response := ToDocumentResponse(doc)
	return &response, nil
}

// Reconcile re-runs the matcher chain over the document. Manual links are
// preserved; only still-unlinked items are evaluated.
func (s *DocumentService) Reconcile(ctx context.Context, tenantID, documentID uuid.UUID) (*fiscal.ReconciliationReport, error) {
	doc, err := s.documentRepo.FindByIDForUpdate(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}

	var supplier *fiscal.SupplierRef
	matched, err := s.supplierRepo.FindByCNPJ(ctx, tenantID, doc.SupplierCNPJ)
	if err == nil {
		supplier = &fiscal.SupplierRef{SupplierID: matched.ID, CNPJ: matched.CNPJ}
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	candidates, err := s.loadCandidates(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	report := s.engine.Reconcile(doc, supplier, candidates)

	if err := s.documentRepo.Save(ctx, doc); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, doc)

	return report, nil
}

// LinkItem manually links an invoice item to a material. The link survives
// later reconciliation runs.
func (s *DocumentService) LinkItem(ctx context.Context, tenantID, itemID uuid.UUID, req LinkItemRequest) (*InvoiceItemResponse, error) {
	item, err := s.documentRepo.FindItemByID(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}

	material, err := s.materialRepo.FindByID(ctx, tenantID, req.MaterialID)
	if err != nil {
		return nil, err
	}

	if err := item.LinkMaterial(material.ID); err != nil {
		return nil, err
	}

	if err := s.documentRepo.SaveItem(ctx, item); err != nil {
		return nil, err
	}

	// keep the catalog's cost reference in step with what suppliers invoice
	if err := material.RecordCost(item.UnitValue); err == nil {
		if err := s.materialRepo.Save(ctx, material); err != nil {
			s.logger.Warn("material cost update failed",
				zap.String("material_id", material.ID.String()),
				zap.Error(err))
		}
	}

	response := ToInvoiceItemResponse(item)
	return &response, nil
}

// UnlinkItem removes an item's material link
func (s *DocumentService) UnlinkItem(ctx context.Context, tenantID, itemID uuid.UUID) (*InvoiceItemResponse, error) {
	item, err := s.documentRepo.FindItemByID(ctx, tenantID, itemID)
	if err != nil {
		return nil, err
	}

	item.UnlinkMaterial()

	if err := s.documentRepo.SaveItem(ctx, item); err != nil {
		return nil, err
	}

	response := ToInvoiceItemResponse(item)
	return &response, nil
}

// LinkSupplier manually links the document to an internal supplier
func (s *DocumentService) LinkSupplier(ctx context.Context, tenantID, documentID uuid.UUID, req LinkSupplierRequest) (*DocumentResponse, error) {
	doc, err := s.documentRepo.FindByIDForUpdate(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}

	supplier, err := s.supplierRepo.FindByID(ctx, tenantID, req.SupplierID)
	if err != nil {
		return nil, err
	}

	if err := doc.LinkSupplier(supplier.ID); err != nil {
		return nil, err
	}

	if err := s.documentRepo.Save(ctx, doc); err != nil {
		return nil, err
	}

	response := ToDocumentResponse(doc)
	return &response, nil
}

func (s *DocumentService) loadCandidates(ctx context.Context, tenantID uuid.UUID) ([]fiscal.MatchCandidate, error) {
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

func (s *DocumentService) publishEvents(ctx context.Context, doc *fiscal.FiscalDocument) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(ctx, doc.GetDomainEvents()...); err != nil {
		s.logger.Warn("event publish failed", zap.Error(err))
	}
	doc.ClearDomainEvents()
}

func (s *DocumentService) invalidateCounters(ctx context.Context, tenantID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, tenantID); err != nil {
		s.logger.Warn("counters cache invalidation failed", zap.Error(err))
	}
}
