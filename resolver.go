package paysheet

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ResolutionReason records how a selection was resolved
type ResolutionReason string

const (
	// ReasonGuest means no customer was configured
	ReasonGuest ResolutionReason = "guest"
	// ReasonPersisted means the persisted selection was still valid
	ReasonPersisted ResolutionReason = "persisted"
	// ReasonNothingPersisted means the store held no selection
	ReasonNothingPersisted ResolutionReason = "nothing_persisted"
	// ReasonPaymentMethodGone means the persisted payment method is no longer listed
	ReasonPaymentMethodGone ResolutionReason = "payment_method_gone"
	// ReasonGooglePayUnavailable means Google Pay was persisted but is not ready
	ReasonGooglePayUnavailable ResolutionReason = "google_pay_unavailable"
	// ReasonStoreUnreadable means the store read failed and was treated as empty
	ReasonStoreUnreadable ResolutionReason = "store_unreadable"
)

// Resolution is the resolver's output
type Resolution struct {
	Selection SavedSelection

	// Reason explains why the persisted value was kept or dropped
	Reason ResolutionReason

	// WroteBack is true when a default was persisted
	WroteBack bool
}

// SelectionResolver computes the effective pre-selection for a session
type SelectionResolver struct {
	store   SelectionStore
	logger  *zap.Logger
	durable bool
}

// NewSelectionResolver creates a resolver. A nil logger is replaced with a no-op logger.
// When durable is true, failing to persist a default is an error instead of a warning.
func NewSelectionResolver(store SelectionStore, logger *zap.Logger, durable bool) *SelectionResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SelectionResolver{
		store:   store,
		logger:  logger,
		durable: durable,
	}
}

// Resolve returns the selection to pre-select for customerID.
//
// A persisted selection is returned unchanged while it is still valid.
// Otherwise the first payment method becomes the default and is written back.
// Errors are ctx's error once ctx is done, or a write-back failure on a
// durable resolver.
func (r *SelectionResolver) Resolve(
	ctx context.Context,
	customerID string,
	methods []PaymentMethod,
	googlePay GooglePayRepository,
) (Resolution, error) {
	if customerID == "" || r.store == nil {
		return Resolution{Selection: SelectionNone{}, Reason: ReasonGuest}, nil
	}
	if googlePay == nil {
		googlePay = DisabledGooglePay{}
	}

	log := r.logger.With(zap.String("customer", customerID))

	reason := ReasonNothingPersisted
	persisted, err := r.store.GetSelection(ctx, customerID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Resolution{}, ctxErr
		}
		log.Warn("reading saved selection failed, treating as absent", zap.Error(err))
		persisted = SelectionNone{}
		reason = ReasonStoreUnreadable
	}

	switch p := persisted.(type) {
	case SelectionSaved:
		if containsPaymentMethod(methods, p.PaymentMethodID) {
			return Resolution{Selection: p, Reason: ReasonPersisted}, nil
		}
		reason = ReasonPaymentMethodGone
	case SelectionGooglePay:
		ready, err := googlePay.IsReady(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Resolution{}, ctxErr
			}
			log.Warn("google pay readiness check failed", zap.Error(err))
		}
		if ready {
			return Resolution{Selection: p, Reason: ReasonPersisted}, nil
		}
		reason = ReasonGooglePayUnavailable
	}

	log.Debug("persisted selection not usable",
		zap.String("persisted", EncodeSelection(persisted)),
		zap.String("reason", string(reason)),
	)

	if len(methods) == 0 {
		return Resolution{Selection: SelectionNone{}, Reason: reason}, nil
	}

	fallback := SelectionSaved{PaymentMethodID: methods[0].ID}
	if err := r.store.SaveSelection(ctx, customerID, fallback); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Resolution{}, ctxErr
		}
		if r.durable {
			return Resolution{}, NewInitError(
				ErrCodeStore,
				fmt.Sprintf("failed to persist default selection for customer %s", customerID),
				err,
				nil,
			)
		}
		log.Warn("persisting default selection failed", zap.Error(err))
		return Resolution{Selection: fallback, Reason: reason}, nil
	}

	return Resolution{Selection: fallback, Reason: reason, WroteBack: true}, nil
}

func containsPaymentMethod(methods []PaymentMethod, id string) bool {
	for _, m := range methods {
		if m.ID == id {
			return true
		}
	}
	return false
}
