package distribution

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nfehub/backend/internal/domain/distribution"
	"github.com/nfehub/backend/internal/domain/fiscal"
	"github.com/nfehub/backend/internal/domain/shared"
)

// ErrPollInProgress is returned when another process holds the poll lock for
// the tenant
var ErrPollInProgress = shared.NewDomainError("POLL_IN_PROGRESS", "A distribution poll is already running for this tenant")

// ReleaseFunc releases a held distributed lock
type ReleaseFunc func(ctx context.Context) error

// DistributedLocker serializes poll runs across processes. Obtain returns
// ErrPollInProgress when the lock is already held.
type DistributedLocker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error)
}

// maxPollBatches bounds one poll run; the cursor persists, so the next run
// resumes where this one stopped.
const maxPollBatches = 20

// PollService consumes the government distribution feed and records
// discovered documents as PendingNfe rows. The NSU cursor only moves forward
// after a batch was fully recorded.
type PollService struct {
	pendingRepo  distribution.PendingNfeRepository
	cursorRepo   distribution.CursorRepository
	gateway      distribution.SefazGateway
	locker       DistributedLocker
	receiverCNPJ string
	lockTTL      time.Duration
	eventBus     shared.EventPublisher
	logger       *zap.Logger
}

// NewPollService creates a new PollService
func NewPollService(
	pendingRepo distribution.PendingNfeRepository,
	cursorRepo distribution.CursorRepository,
	gateway distribution.SefazGateway,
	locker DistributedLocker,
	receiverCNPJ string,
	lockTTL time.Duration,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *PollService {
	if lockTTL <= 0 {
		lockTTL = 2 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PollService{
		pendingRepo:  pendingRepo,
		cursorRepo:   cursorRepo,
		gateway:      gateway,
		locker:       locker,
		receiverCNPJ: receiverCNPJ,
		lockTTL:      lockTTL,
		eventBus:     eventBus,
		logger:       logger,
	}
}

// Poll drains the feed from the tenant's cursor until the service reports no
// newer documents, the batch budget runs out, or the context is cancelled.
// A request NSU overrides the starting point (re-polling an older window);
// the stored cursor itself only ever moves forward. Runs for the same tenant
// are serialized through the distributed lock.
func (s *PollService) Poll(ctx context.Context, tenantID uuid.UUID, req PollRequest) (*PollResult, error) {
	if s.locker != nil {
		release, err := s.locker.Obtain(ctx, "nfe:distribution:poll:"+tenantID.String(), s.lockTTL)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("poll lock release failed", zap.Error(err))
			}
		}()
	}

	stored, err := s.cursorRepo.Current(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	cursor := stored
	if req.NSU != nil {
		cursor = *req.NSU
	}

	result := &PollResult{StartNSU: cursor, LastNSU: cursor, Documents: []PendingNfeResponse{}}

	for batches := 0; batches < maxPollBatches; batches++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		batch, err := s.gateway.QueryDistribution(ctx, s.receiverCNPJ, cursor)
		if err != nil {
			s.logger.Error("distribution query failed",
				zap.Int64("cursor", cursor),
				zap.Error(err))
			return result, shared.NewDomainError("SEFAZ_UNAVAILABLE", "Distribution query failed: "+err.Error())
		}

		result.MaxNSU = batch.MaxNSU
		if len(batch.Documents) == 0 {
			break
		}

		for _, doc := range batch.Documents {
			if err := s.record(ctx, tenantID, doc, result); err != nil {
				return result, err
			}
		}

		if batch.LastNSU <= cursor {
			break
		}
		if batch.LastNSU > stored {
			if err := s.cursorRepo.Advance(ctx, tenantID, stored, batch.LastNSU); err != nil {
				// another poller advanced the cursor underneath us; stop here
				if errors.Is(err, shared.ErrConcurrencyConflict) {
					s.logger.Warn("cursor advance lost a race", zap.Int64("expected", stored))
					return result, nil
				}
				return result, err
			}
			stored = batch.LastNSU
		}
		cursor = batch.LastNSU
		result.LastNSU = cursor

		if batch.LastNSU >= batch.MaxNSU {
			break
		}
	}

	s.logger.Info("distribution poll finished",
		zap.String("tenant_id", tenantID.String()),
		zap.Int64("start_nsu", result.StartNSU),
		zap.Int64("last_nsu", result.LastNSU),
		zap.Int("discovered", result.Discovered),
		zap.Int("refreshed", result.Refreshed))

	return result, nil
}

// record upserts one feed document. Keys that fail validation are skipped and
// logged; one bad entry must not stall the cursor.
func (s *PollService) record(ctx context.Context, tenantID uuid.UUID, doc distribution.DistributionDocument, result *PollResult) error {
	key, err := fiscal.NewAccessKey(doc.AccessKey)
	if err != nil {
		s.logger.Warn("feed returned invalid access key",
			zap.Int64("nsu", doc.NSU),
			zap.Error(err))
		return nil
	}

	existing, err := s.pendingRepo.FindByAccessKey(ctx, tenantID, key.String())
	switch {
	case err == nil:
		if existing.Refresh(doc.NSU, doc.RawXML) {
			if doc.SupplierName != "" {
				existing.SetSupplierName(doc.SupplierName)
			}
			if err := s.pendingRepo.Save(ctx, existing); err != nil {
				return err
			}
			result.Refreshed++
		}
		return nil
	case errors.Is(err, shared.ErrNotFound):
		pending, err := distribution.NewPendingNfe(tenantID, key, doc.NSU, doc.RawXML)
		if err != nil {
			s.logger.Warn("feed document rejected",
				zap.String("access_key", key.Masked()),
				zap.Error(err))
			return nil
		}
		if doc.SupplierName != "" {
			pending.SetSupplierName(doc.SupplierName)
		}
		if err := s.pendingRepo.Save(ctx, pending); err != nil {
			return err
		}
		s.publishEvents(ctx, pending)
		result.Discovered++
		result.Documents = append(result.Documents, ToPendingNfeResponse(pending, time.Now()))
		return nil
	default:
		return err
	}
}

func (s *PollService) publishEvents(ctx context.Context, pending *distribution.PendingNfe) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(ctx, pending.GetDomainEvents()...); err != nil {
		s.logger.Warn("event publish failed", zap.Error(err))
	}
	pending.ClearDomainEvents()
}
