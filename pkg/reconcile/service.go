package reconcile

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/events"
	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/tracing"

	"github.com/Ramsey-B/clover/pkg/models"
)

// maxLockAttempts bounds the lock loop when concurrent merges move cluster
// roots between the match read and the row locks.
const maxLockAttempts = 5

// ContactStore is the persistence surface the service needs. Implemented by
// the contact repository; faked in tests.
type ContactStore interface {
	DB() database.DB
	FindByEmailOrPhone(ctx context.Context, email, phoneNumber *string) ([]models.Contact, error)
	LockByIDs(ctx context.Context, ids []int64) ([]models.Contact, error)
	GetMembersOfRoots(ctx context.Context, rootIDs []int64) ([]models.Contact, error)
	GetCluster(ctx context.Context, primaryID int64) ([]models.Contact, error)
	Create(ctx context.Context, contact *models.Contact) (*models.Contact, error)
	DemoteToSecondary(ctx context.Context, id, primaryID int64) error
	RelinkSecondaries(ctx context.Context, fromPrimaryID, toPrimaryID int64) (int64, error)
}

// Service orchestrates identify requests
type Service struct {
	contacts ContactStore
	emitter  *events.Emitter
	logger   ectologger.Logger
}

// NewService creates a new reconciliation service
func NewService(contacts ContactStore, emitter *events.Emitter, logger ectologger.Logger) *Service {
	return &Service{
		contacts: contacts,
		emitter:  emitter,
		logger:   logger,
	}
}

// Identify resolves the cluster for the given identifiers, merging clusters
// and creating contacts as needed, and returns the consolidated view.
//
// Behavior:
//   - No match: create a fresh primary from the request.
//   - Matches in one cluster: no structural change.
//   - Matches across clusters: the oldest primary survives (ties broken by
//     smallest id); the rest are demoted and their secondaries re-linked.
//   - A secondary is created only when the request carries both identifiers
//     and at least one of them is new to the cluster. At most one contact is
//     created per request.
//
// All reads and writes after matching run in one transaction with the touched
// primary rows locked, so retries after a failure are safe.
func (s *Service) Identify(ctx context.Context, req models.IdentifyRequest) (*models.IdentifyResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "reconcile.Service.Identify")
	defer span.End()

	start := time.Now()

	email := NormalizeIdentifier(req.Email)
	phoneNumber := NormalizeIdentifier(req.PhoneNumber)
	if email == nil && phoneNumber == nil {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "at least one of email or phoneNumber is required")
	}

	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"has_email": email != nil,
		"has_phone": phoneNumber != nil,
	})

	ctxTx, tx, err := s.contacts.DB().GetTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	matches, err := s.contacts.FindByEmailOrPhone(ctxTx, email, phoneNumber)
	if err != nil {
		return nil, err
	}

	// Case 1: nothing matched - the request is a brand new identity
	if len(matches) == 0 {
		created, err := s.contacts.Create(ctxTx, &models.Contact{
			Email:          email,
			PhoneNumber:    phoneNumber,
			LinkPrecedence: models.LinkPrecedencePrimary,
		})
		if err != nil {
			return nil, err
		}
		if err := tx.Commit(ctxTx); err != nil {
			return nil, err
		}

		metrics.RecordIdentify(metrics.OutcomeCreatedPrimary, time.Since(start).Seconds())
		metrics.ContactsCreatedTotal.WithLabelValues(models.LinkPrecedencePrimary).Inc()
		s.emitter.EmitContactCreated(ctx, created)

		log.WithFields(map[string]any{"primary_id": created.ID}).Info("Created new primary contact")
		return &models.IdentifyResponse{Contact: BuildContactView(*created, []models.Contact{*created})}, nil
	}

	// Case 2: matched - lock the touched clusters and reconcile
	candidates, err := s.lockCandidates(ctxTx, matches)
	if err != nil {
		return nil, err
	}

	primary, stale, err := ElectPrimary(candidates)
	if err != nil {
		log.WithError(err).WithFields(map[string]any{"candidate_count": len(candidates)}).Error("Candidate merge set has no primary")
		return nil, err
	}

	mergedPrimaryIDs := make([]int64, 0, len(stale))
	for _, demoted := range stale {
		if err := s.contacts.DemoteToSecondary(ctxTx, demoted.ID, primary.ID); err != nil {
			return nil, err
		}
		if _, err := s.contacts.RelinkSecondaries(ctxTx, demoted.ID, primary.ID); err != nil {
			return nil, err
		}
		mergedPrimaryIDs = append(mergedPrimaryIDs, demoted.ID)
	}

	// Re-read authoritative membership after any demotions
	members, err := s.contacts.GetCluster(ctxTx, primary.ID)
	if err != nil {
		return nil, err
	}

	var createdSecondary *models.Contact
	if email != nil && phoneNumber != nil && HasNewInformation(members, email, phoneNumber) {
		createdSecondary, err = s.contacts.Create(ctxTx, &models.Contact{
			Email:          email,
			PhoneNumber:    phoneNumber,
			LinkedID:       &primary.ID,
			LinkPrecedence: models.LinkPrecedenceSecondary,
		})
		if err != nil {
			return nil, err
		}
		members = append(members, *createdSecondary)
	}

	if err := tx.Commit(ctxTx); err != nil {
		return nil, err
	}

	s.recordOutcome(ctx, log, start, primary, createdSecondary, mergedPrimaryIDs, members)

	return &models.IdentifyResponse{Contact: BuildContactView(*primary, members)}, nil
}

// lockCandidates locks the touched cluster primaries and returns the
// candidate merge set. If a locked row turns out to be a secondary (a
// concurrent merge demoted it after the match read), the roots are recomputed
// and re-locked until stable.
func (s *Service) lockCandidates(ctx context.Context, matches []models.Contact) ([]models.Contact, error) {
	roots := ClusterRoots(matches)
	for attempt := 0; attempt < maxLockAttempts; attempt++ {
		locked, err := s.contacts.LockByIDs(ctx, roots)
		if err != nil {
			return nil, err
		}

		next := ClusterRoots(locked)
		if sameIDs(roots, next) {
			return s.contacts.GetMembersOfRoots(ctx, next)
		}
		roots = next
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{"root_ids": roots}).Error("Cluster roots kept moving while acquiring locks")
	return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to lock contact clusters")
}

func (s *Service) recordOutcome(
	ctx context.Context,
	log ectologger.Logger,
	start time.Time,
	primary *models.Contact,
	createdSecondary *models.Contact,
	mergedPrimaryIDs []int64,
	members []models.Contact,
) {
	memberIDs := make([]int64, 0, len(members))
	for i := range members {
		memberIDs = append(memberIDs, members[i].ID)
	}

	if len(mergedPrimaryIDs) > 0 {
		metrics.ClustersMergedTotal.Add(float64(len(mergedPrimaryIDs)))
		s.emitter.EmitClusterMerged(ctx, primary.ID, mergedPrimaryIDs, memberIDs)
	}

	outcome := metrics.OutcomeNoop
	switch {
	case createdSecondary != nil:
		outcome = metrics.OutcomeCreatedSecondary
		metrics.ContactsCreatedTotal.WithLabelValues(models.LinkPrecedenceSecondary).Inc()
		s.emitter.EmitContactLinked(ctx, createdSecondary, primary.ID)
	case len(mergedPrimaryIDs) > 0:
		outcome = metrics.OutcomeMerged
	}
	metrics.RecordIdentify(outcome, time.Since(start).Seconds())

	log.WithFields(map[string]any{
		"primary_id":        primary.ID,
		"member_count":      len(members),
		"merged_primaries":  len(mergedPrimaryIDs),
		"created_secondary": createdSecondary != nil,
	}).Info("Reconciled contact cluster")
}

func sameIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
