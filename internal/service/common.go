package service

import (
	"context"
	"errors"

	"fmcg-admin-api/internal/apperror"
	"fmcg-admin-api/internal/metrics"
	"fmcg-admin-api/internal/model"
	"fmcg-admin-api/internal/repository"
	"fmcg-admin-api/internal/ws"
	"fmcg-admin-api/pkg/pin"
	"fmcg-admin-api/pkg/validator"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Publisher receives events after a commit. *ws.Hub satisfies it.
type Publisher interface {
	Publish(e ws.Event)
}

// maxTxAttempts bounds retries of a transaction that lost a version check.
const maxTxAttempts = 3

// withRetry re-runs fn while it fails with repository.ErrVersionConflict.
func withRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		if err = fn(); !errors.Is(err, repository.ErrVersionConflict) {
			return err
		}
		metrics.VersionConflicts.Inc()
		log.Ctx(ctx).Debug().Str("op", op).Int("attempt", attempt).Msg("version conflict, retrying")
	}
	conflict := apperror.Conflict("The record was changed by another request, please try again")
	conflict.Err = err
	return conflict
}

// checkPIN maps the gate's sentinel errors onto client facing ones.
func checkPIN(gate *pin.Gate, supplied string) error {
	err := gate.Check(supplied)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pin.ErrMissingPIN):
		metrics.PINRejections.Inc()
		return apperror.Forbidden("Admin PIN is required")
	default:
		metrics.PINRejections.Inc()
		return apperror.Forbidden("Invalid PIN")
	}
}

// validate runs struct validation and returns the first failure as InvalidArgument.
func validate(req interface{}) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return apperror.InvalidArgument("%s", validator.Message(errs))
	}
	return nil
}

// notFoundOr turns gorm.ErrRecordNotFound into NotFound(msg) and anything else
// into Internal. Application errors and version conflicts pass through so that
// withRetry still sees the latter.
func notFoundOr(err error, msg string) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) || errors.Is(err, repository.ErrVersionConflict) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(msg)
	}
	return apperror.Internal(err)
}

// internalErr wraps unexpected repository failures.
func internalErr(err error) error {
	if err == nil {
		return nil
	}
	return apperror.Internal(err)
}

// activatable is a post-commit lookup. Failures are logged and swallowed
// because the ledger write has already committed.
func activatable(ctx context.Context, a OfferActivator, productID uint) []model.Offer {
	if a == nil {
		return nil
	}
	offers, err := a.FindActivatable(ctx, productID)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Uint("product_id", productID).Msg("activatable offer lookup failed")
		return nil
	}
	return offers
}

func publish(p Publisher, e ws.Event) {
	if p != nil {
		p.Publish(e)
	}
}
