package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/kindergarten-backend/internal/domain"
)

const defaultVerifyBatchSize = 1000

// VerifySummary counts the outcome of a verification sweep.
type VerifySummary struct {
	Verified int
	Failed   int
}

// VerifyOutcome classifies the result of verifying one record.
type VerifyOutcome int

const (
	VerifyOK VerifyOutcome = iota
	VerifyNotFound
	VerifyNotCommitted
	VerifyMismatch
)

func (o VerifyOutcome) String() string {
	switch o {
	case VerifyOK:
		return "verified"
	case VerifyNotFound:
		return "not found"
	case VerifyNotCommitted:
		return "not committed"
	case VerifyMismatch:
		return "checksum mismatch"
	}
	return fmt.Sprintf("VerifyOutcome(%d)", int(o))
}

// VerifyTransaction recomputes the checksum of record id and, if it matches,
// moves the record from committed to verified. Returns false when the
// record does not exist, is not committed, or fails the checksum.
func (s *Service) VerifyTransaction(ctx context.Context, id int64) (bool, error) {
	out, err := s.VerifyRecord(ctx, id)
	return out == VerifyOK, err
}

// VerifyRecord is VerifyTransaction with the reason for a failure.
func (s *Service) VerifyRecord(ctx context.Context, id int64) (VerifyOutcome, error) {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return VerifyNotFound, nil
		}
		return VerifyNotFound, fmt.Errorf("audit: verify %d: %w", id, err)
	}
	return s.verify(ctx, rec)
}

// VerifyAllPending verifies the oldest committed records, up to the
// configured batch size.
func (s *Service) VerifyAllPending(ctx context.Context) (VerifySummary, error) {
	batch := s.cfg.VerifyBatchSize
	if batch <= 0 {
		batch = defaultVerifyBatchSize
	}

	recs, err := s.records.OldestCommitted(ctx, batch)
	if err != nil {
		return VerifySummary{}, fmt.Errorf("audit: verify pending: %w", err)
	}

	var sum VerifySummary
	for _, rec := range recs {
		out, err := s.verify(ctx, rec)
		if err != nil {
			s.log.ErrorContext(ctx, "verify record failed",
				slog.Int64("record_id", rec.ID),
				slog.String("error", err.Error()),
			)
		}
		if out == VerifyOK {
			sum.Verified++
		} else {
			sum.Failed++
		}
	}

	s.log.InfoContext(ctx, "verification sweep finished",
		slog.Int("verified", sum.Verified),
		slog.Int("failed", sum.Failed),
	)
	return sum, nil
}

func (s *Service) verify(ctx context.Context, rec domain.AuditRecord) (VerifyOutcome, error) {
	if !rec.Status.CanTransitionTo(domain.AuditStatusVerified) {
		return VerifyNotCommitted, nil
	}

	checksum, err := CalculateChecksum(rec.EntityType, rec.EntityID, rec.Operation, rec.DataBefore, rec.DataAfter, rec.CreatedAt)
	if err != nil {
		return VerifyMismatch, err
	}
	if checksum != rec.Checksum {
		s.log.WarnContext(ctx, "checksum mismatch",
			slog.Int64("record_id", rec.ID),
			slog.String("transaction_id", rec.TransactionID),
		)
		return VerifyMismatch, nil
	}

	ok, err := s.records.MarkVerified(ctx, rec.ID, s.now())
	if err != nil {
		return VerifyMismatch, fmt.Errorf("audit: mark verified %d: %w", rec.ID, err)
	}
	if !ok {
		// status changed since the read
		return VerifyNotCommitted, nil
	}
	return VerifyOK, nil
}
