package paysheet

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// FlowInitializer builds the server-state snapshot a checkout session starts from.
// It holds no per-call state and is safe for concurrent use.
type FlowInitializer struct {
	mu sync.RWMutex

	gateway          Gateway
	store            SelectionStore
	googlePayFactory GooglePayRepositoryFactory
	logger           *zap.Logger

	publishableKey string
	stripeAccount  string
	supportedTypes []PaymentMethodType
	durable        bool

	beforeInitHooks    []BeforeInitHook
	afterInitHooks     []AfterInitHook
	onInitFailureHooks []OnInitFailureHook
}

// InitializerOption configures the initializer
type InitializerOption func(*FlowInitializer)

// WithSelectionStore sets the store used to persist saved selections.
// Without a store every session resolves to SelectionNone.
func WithSelectionStore(store SelectionStore) InitializerOption {
	return func(f *FlowInitializer) {
		f.store = store
	}
}

// WithGooglePayFactory sets how Google Pay readiness is determined for a configured environment
func WithGooglePayFactory(factory GooglePayRepositoryFactory) InitializerOption {
	return func(f *FlowInitializer) {
		f.googlePayFactory = factory
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) InitializerOption {
	return func(f *FlowInitializer) {
		f.logger = logger
	}
}

// WithPublishableKey sets the key used to retrieve PaymentIntents
func WithPublishableKey(key string) InitializerOption {
	return func(f *FlowInitializer) {
		f.publishableKey = key
	}
}

// WithStripeAccount scopes all requests to a connected account
func WithStripeAccount(account string) InitializerOption {
	return func(f *FlowInitializer) {
		f.stripeAccount = account
	}
}

// WithSupportedTypes sets the payment method types the sheet can present
func WithSupportedTypes(types ...PaymentMethodType) InitializerOption {
	return func(f *FlowInitializer) {
		f.supportedTypes = types
	}
}

// WithDurableSelection makes a failed write-back of the default selection fail the attempt
func WithDurableSelection(durable bool) InitializerOption {
	return func(f *FlowInitializer) {
		f.durable = durable
	}
}

// NewFlowInitializer creates a new initializer
func NewFlowInitializer(gateway Gateway, opts ...InitializerOption) *FlowInitializer {
	f := &FlowInitializer{
		gateway:          gateway,
		googlePayFactory: defaultGooglePayFactory,
		logger:           zap.NewNop(),
		supportedTypes:   DefaultSupportedTypes,
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.logger == nil {
		f.logger = zap.NewNop()
	}

	return f
}

// ============================================================================
// Hook Registration Methods
// ============================================================================

// OnBeforeInit registers a hook run before any remote call
func (f *FlowInitializer) OnBeforeInit(hook BeforeInitHook) *FlowInitializer {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.beforeInitHooks = append(f.beforeInitHooks, hook)
	return f
}

// OnAfterInit registers a hook run after a successful initialization
func (f *FlowInitializer) OnAfterInit(hook AfterInitHook) *FlowInitializer {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.afterInitHooks = append(f.afterInitHooks, hook)
	return f
}

// OnInitFailure registers a hook run when initialization fails
func (f *FlowInitializer) OnInitFailure(hook OnInitFailureHook) *FlowInitializer {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onInitFailureHooks = append(f.onInitFailureHooks, hook)
	return f
}

// ============================================================================
// Initialization
// ============================================================================

// Init retrieves and validates server state for a checkout session.
//
// Every completed attempt yields exactly one InitResult and a nil error.
// If ctx is cancelled before the attempt completes, Init returns a nil
// result and ctx's error; a partially populated result is never returned.
func (f *FlowInitializer) Init(ctx context.Context, secret ClientSecret, config *Configuration) (InitResult, error) {
	f.mu.RLock()
	beforeHooks := f.beforeInitHooks
	afterHooks := f.afterInitHooks
	failureHooks := f.onInitFailureHooks
	f.mu.RUnlock()

	start := time.Now()
	hookCtx := InitContext{
		Ctx:          ctx,
		SessionID:    uuid.NewString(),
		ClientSecret: secret,
		Config:       config,
		Timestamp:    start,
	}
	log := f.logger.With(zap.String("session", hookCtx.SessionID))

	for _, hook := range beforeHooks {
		result, err := hook(hookCtx)
		if err != nil {
			return f.fail(hookCtx, failureHooks, log, NewInitError(ErrCodeAborted, "before-init hook failed", err, nil)), nil
		}
		if result != nil && result.Abort {
			return f.fail(hookCtx, failureHooks, log, NewInitError(ErrCodeAborted, result.Reason, nil, nil)), nil
		}
	}

	data, resolution, err := f.initialize(ctx, secret, config)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			log.Debug("initialization cancelled", zap.Error(ctxErr))
			return nil, ctxErr
		}
		return f.fail(hookCtx, failureHooks, log, err), nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		log.Debug("initialization cancelled", zap.Error(ctxErr))
		return nil, ctxErr
	}

	resultCtx := InitResultContext{
		InitContext: hookCtx,
		Data:        data,
		Resolution:  resolution,
		Duration:    time.Since(start),
	}
	for _, hook := range afterHooks {
		if err := hook(resultCtx); err != nil {
			log.Warn("after-init hook failed", zap.Error(err))
		}
	}

	log.Debug("initialization succeeded",
		zap.String("paymentIntent", data.PaymentIntent.ID),
		zap.Int("paymentMethods", len(data.PaymentMethods)),
		zap.String("selection", EncodeSelection(data.SavedSelection)),
		zap.String("selectionReason", string(resolution.Reason)),
		zap.Duration("duration", resultCtx.Duration),
	)

	return InitSuccess{Data: data}, nil
}

// initialize runs fetch, validation and resolution in that order
func (f *FlowInitializer) initialize(ctx context.Context, secret ClientSecret, config *Configuration) (InitData, Resolution, error) {
	if err := secret.Validate(); err != nil {
		return InitData{}, Resolution{}, NewInitError(ErrCodeInvalidClientSecret, "invalid client secret", err, nil)
	}

	intent, methods, err := f.fetch(ctx, secret, config)
	if err != nil {
		return InitData{}, Resolution{}, err
	}

	if err := ValidatePaymentIntent(intent); err != nil {
		return InitData{}, Resolution{}, err
	}

	resolver := NewSelectionResolver(f.store, f.logger, f.durable)
	resolution, err := resolver.Resolve(ctx, config.CustomerID(), methods, f.googlePayFor(config))
	if err != nil {
		return InitData{}, Resolution{}, err
	}

	return InitData{
		Config:         config,
		PaymentIntent:  intent,
		AllowedTypes:   allowedTypes(intent, f.supportedTypes),
		PaymentMethods: methods,
		SavedSelection: resolution.Selection,
	}, resolution, nil
}

// fetch retrieves the PaymentIntent and, for customer sessions, the customer's
// cards concurrently. The first failure cancels the other request.
func (f *FlowInitializer) fetch(ctx context.Context, secret ClientSecret, config *Configuration) (PaymentIntent, []PaymentMethod, error) {
	var (
		intent  PaymentIntent
		methods = []PaymentMethod{}
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		pi, err := f.gateway.FetchPaymentIntent(gctx, secret, RequestOptions{
			APIKey:        f.publishableKey,
			StripeAccount: f.stripeAccount,
		})
		if err != nil {
			return NewInitError(ErrCodeTransport, "failed to retrieve PaymentIntent", err, nil)
		}
		intent = pi
		return nil
	})

	if customerID := config.CustomerID(); customerID != "" {
		ephemeralKey := config.Customer.EphemeralKeySecret
		g.Go(func() error {
			list, err := f.gateway.ListPaymentMethods(gctx, customerID, PaymentMethodTypeCard, RequestOptions{
				APIKey:        ephemeralKey,
				StripeAccount: f.stripeAccount,
			})
			if err != nil {
				return NewInitError(
					ErrCodeTransport,
					fmt.Sprintf("failed to list payment methods for customer %s", customerID),
					err,
					nil,
				)
			}
			if list != nil {
				methods = list
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return PaymentIntent{}, nil, err
	}
	return intent, methods, nil
}

func (f *FlowInitializer) googlePayFor(config *Configuration) GooglePayRepository {
	env := config.GooglePayEnvironment()
	if env == "" || f.googlePayFactory == nil {
		return DisabledGooglePay{}
	}
	return f.googlePayFactory(env)
}

// fail runs failure hooks and builds the terminal failure result
func (f *FlowInitializer) fail(hookCtx InitContext, hooks []OnInitFailureHook, log *zap.Logger, err error) InitResult {
	failureCtx := InitFailureContext{
		InitContext: hookCtx,
		Error:       err,
		Duration:    time.Since(hookCtx.Timestamp),
	}
	for _, hook := range hooks {
		result, hookErr := hook(failureCtx)
		if hookErr != nil {
			log.Warn("init-failure hook failed", zap.Error(hookErr))
			continue
		}
		if result != nil && result.Recovered {
			log.Debug("initialization recovered by hook", zap.Error(err))
			return InitSuccess{Data: result.Data}
		}
	}

	log.Debug("initialization failed", zap.Error(err), zap.Duration("duration", failureCtx.Duration))
	return InitFailure{Err: err}
}
