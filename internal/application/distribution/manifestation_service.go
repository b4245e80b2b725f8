package distribution

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nfehub/backend/internal/domain/distribution"
	"github.com/nfehub/backend/internal/domain/fiscal"
	"github.com/nfehub/backend/internal/domain/shared"
)

// ManifestationService submits receiver acknowledgements to the government
// service and records the accepted events locally.
type ManifestationService struct {
	pendingRepo  distribution.PendingNfeRepository
	eventRepo    distribution.ManifestationEventRepository
	gateway      distribution.SefazGateway
	receiverCNPJ string
	eventBus     shared.EventPublisher
	logger       *zap.Logger
	now          func() time.Time
}

// NewManifestationService creates a new ManifestationService
func NewManifestationService(
	pendingRepo distribution.PendingNfeRepository,
	eventRepo distribution.ManifestationEventRepository,
	gateway distribution.SefazGateway,
	receiverCNPJ string,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *ManifestationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ManifestationService{
		pendingRepo:  pendingRepo,
		eventRepo:    eventRepo,
		gateway:      gateway,
		receiverCNPJ: receiverCNPJ,
		eventBus:     eventBus,
		logger:       logger,
		now:          time.Now,
	}
}

// Manifest submits one acknowledgement for an access key. Local state changes
// only after the government service accepted the submission; a gateway
// failure leaves both the pending record and the event log untouched.
func (s *ManifestationService) Manifest(ctx context.Context, tenantID uuid.UUID, rawKey string, req ManifestRequest) (*ManifestResponse, error) {
	key, err := fiscal.NewAccessKey(rawKey)
	if err != nil {
		return nil, err
	}

	eventType := distribution.ManifestationEventType(req.EventType)
	if !eventType.IsValid() {
		return nil, shared.NewDomainError("INVALID_EVENT_TYPE", "Unknown manifestation event type")
	}
	if err := distribution.ValidateJustification(eventType, req.Justification); err != nil {
		return nil, err
	}

	pending, err := s.pendingRepo.FindByAccessKeyForUpdate(ctx, tenantID, key.String())
	if err != nil {
		return nil, err
	}

	// fail fast before calling out: the transition must be legal locally
	if pending.Status.IsTerminal() {
		return nil, shared.NewDomainError("ALREADY_TERMINAL",
			"Manifestation for this document already reached terminal state "+pending.Status.String())
	}
	if !pending.Status.CanTransitionTo(eventType.ResultingStatus()) {
		return nil, shared.NewDomainError("INVALID_TRANSITION",
			"Cannot transition manifestation from "+pending.Status.String()+" to "+eventType.ResultingStatus().String())
	}

	receipt, err := s.gateway.SubmitManifestation(ctx, s.receiverCNPJ, key.String(), eventType, req.Justification)
	if err != nil {
		s.logger.Error("manifestation submission failed",
			zap.String("access_key", key.Masked()),
			zap.String("event_type", eventType.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("SEFAZ_UNAVAILABLE", "Manifestation submission was not accepted: "+err.Error())
	}

	event, err := distribution.NewManifestationEvent(tenantID, key, eventType, req.Justification, receipt.ProtocolNumber)
	if err != nil {
		return nil, err
	}
	if err := s.eventRepo.Append(ctx, event); err != nil {
		return nil, err
	}

	if err := pending.ApplyManifestation(eventType); err != nil {
		return nil, err
	}
	if err := s.pendingRepo.Save(ctx, pending); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, pending)

	s.logger.Info("manifestation accepted",
		zap.String("access_key", key.Masked()),
		zap.String("event_type", eventType.String()),
		zap.String("protocol", receipt.ProtocolNumber))

	return &ManifestResponse{
		Pending: ToPendingNfeResponse(pending, s.now()),
		Event:   ToManifestationEventResponse(event),
	}, nil
}

// History returns the acknowledgement log for an access key, oldest first
func (s *ManifestationService) History(ctx context.Context, tenantID uuid.UUID, rawKey string) ([]ManifestationEventResponse, error) {
	key, err := fiscal.NewAccessKey(rawKey)
	if err != nil {
		return nil, err
	}

	events, err := s.eventRepo.ListByAccessKey(ctx, tenantID, key.String())
	if err != nil {
		return nil, err
	}

	responses := make([]ManifestationEventResponse, 0, len(events))
	for i := range events {
		responses = append(responses, ToManifestationEventResponse(&events[i]))
	}
	return responses, nil
}

// ListPending returns feed-discovered documents filtered by manifestation
// status
func (s *ManifestationService) ListPending(ctx context.Context, tenantID uuid.UUID, filter PendingListFilter) (*shared.Paginated[PendingNfeResponse], error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = shared.DefaultFilter().PageSize
	}

	status := distribution.ManifestationStatus(filter.Status)
	pendings, total, err := s.pendingRepo.ListByStatus(ctx, tenantID, status, page, pageSize)
	if err != nil {
		return nil, err
	}

	now := s.now()
	items := make([]PendingNfeResponse, 0, len(pendings))
	for i := range pendings {
		items = append(items, ToPendingNfeResponse(&pendings[i], now))
	}

	result := shared.NewPaginated(items, total, page, pageSize)
	return &result, nil
}

// GetByAccessKey returns one feed-discovered document
func (s *ManifestationService) GetByAccessKey(ctx context.Context, tenantID uuid.UUID, rawKey string) (*PendingNfeResponse, error) {
	key, err := fiscal.NewAccessKey(rawKey)
	if err != nil {
		return nil, err
	}

	pending, err := s.pendingRepo.FindByAccessKey(ctx, tenantID, key.String())
	if err != nil {
		return nil, err
	}

	response := ToPendingNfeResponse(pending, s.now())
	return &response, nil
}

// Dismiss removes a feed-discovered document the receiver decided not to
// act on. The manifestation event log for the key is kept.
func (s *ManifestationService) Dismiss(ctx context.Context, tenantID uuid.UUID, rawKey string) error {
	key, err := fiscal.NewAccessKey(rawKey)
	if err != nil {
		return err
	}

	pending, err := s.pendingRepo.FindByAccessKey(ctx, tenantID, key.String())
	if err != nil {
		return err
	}

	if err := s.pendingRepo.Delete(ctx, tenantID, pending.ID); err != nil {
		return err
	}

	s.logger.Info("pending document dismissed",
		zap.String("access_key", key.Masked()),
		zap.String("status", pending.Status.String()))
	return nil
}

func (s *ManifestationService) publishEvents(ctx context.Context, pending *distribution.PendingNfe) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(ctx, pending.GetDomainEvents()...); err != nil {
		s.logger.Warn("event publish failed", zap.Error(err))
	}
	pending.ClearDomainEvents()
}
