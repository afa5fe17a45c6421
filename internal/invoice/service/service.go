// Package service implements the invoice registry: role-gated lifecycle
// operations over a serialized store, guarded by a global pause switch.
//
// Every mutating operation runs its checks inside ports.Store.Execute and
// returns a models.Change only when all of them pass, so a failed call has
// no observable effect. Events, metrics and cache writes happen after commit.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"tradeinvoice/internal/invoice/metrics"
	"tradeinvoice/internal/invoice/models"
	"tradeinvoice/internal/invoice/policy"
	"tradeinvoice/internal/invoice/ports"
	dErrors "tradeinvoice/pkg/domain-errors"
	"tradeinvoice/pkg/platform/sentinel"
)

const tracerName = "tradeinvoice/internal/invoice/service"

// Operation names used for metrics labels and span names.
const (
	opTransferAdmin  = "transfer_admin"
	opSetOracle      = "set_oracle"
	opSetPaused      = "set_paused"
	opCreateInvoice  = "create_invoice"
	opUpdateStatus   = "update_status"
	opVerifyInvoice  = "verify_invoice"
	opCancelInvoice  = "cancel_invoice"
	opGetByHash      = "get_invoice_by_hash"
	hashCacheHit     = "hit"
	hashCacheMiss    = "miss"
	hashCacheFailure = "error"
	hashCacheStale   = "stale"
)

// Service is the invoice registry.
type Service struct {
	store        ports.Store
	policy       policy.Authorizer
	clock        ports.Clock
	hashCache    ports.HashCache
	logger       *slog.Logger
	metrics      *metrics.Metrics
	tracer       trace.Tracer
	auditEmitter *auditEmitter
}

type serviceConfig struct {
	policy         policy.Authorizer
	clock          ports.Clock
	hashCache      ports.HashCache
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher ports.AuditPublisher
}

type Option func(*serviceConfig)

// WithPolicy replaces the default RolePolicy.
func WithPolicy(p policy.Authorizer) Option {
	return func(c *serviceConfig) {
		c.policy = p
	}
}

// WithClock replaces the default UnixClock.
func WithClock(clock ports.Clock) Option {
	return func(c *serviceConfig) {
		c.clock = clock
	}
}

func WithHashCache(cache ports.HashCache) Option {
	return func(c *serviceConfig) {
		c.hashCache = cache
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *serviceConfig) {
		c.metrics = m
	}
}

func WithAuditPublisher(publisher ports.AuditPublisher) Option {
	return func(c *serviceConfig) {
		c.auditPublisher = publisher
	}
}

// New constructs the registry over store. The store must already hold the
// initial registry state.
func New(store ports.Store, opts ...Option) *Service {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.policy == nil {
		cfg.policy = policy.RolePolicy{}
	}
	if cfg.clock == nil {
		cfg.clock = ports.UnixClock{}
	}
	return &Service{
		store:        store,
		policy:       cfg.policy,
		clock:        cfg.clock,
		hashCache:    cfg.hashCache,
		logger:       cfg.logger,
		metrics:      cfg.metrics,
		tracer:       otel.Tracer(tracerName),
		auditEmitter: newAuditEmitter(cfg.logger, cfg.auditPublisher),
	}
}

// ensureNotPaused is the circuit breaker check shared by invoice mutations.
func ensureNotPaused(state models.RegistryState) error {
	if state.Paused {
		return dErrors.New(dErrors.CodePaused, "registry is paused")
	}
	return nil
}

// start opens a span and returns a finish func that records metrics and
// span status for the operation's final error.
func (s *Service) start(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	began := time.Now()
	ctx, span := s.tracer.Start(ctx, "invoice."+operation, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		defer span.End()
		if s.metrics != nil {
			s.metrics.ObserveOperation(operation, began)
		}
		if err == nil {
			return
		}
		code := string(dErrors.CodeInternal)
		if c, ok := dErrors.CodeOf(err); ok {
			code = string(c)
		}
		if s.metrics != nil {
			s.metrics.IncrementRejected(operation, code)
		}
		span.SetAttributes(attribute.String("error.code", code))
		span.RecordError(err)
		span.SetStatus(codes.Error, code)
	}
}

// translate maps store and context failures onto registry codes. Errors that
// already carry a code pass through.
func translate(err error, msg string) error {
	if err == nil {
		return nil
	}
	if _, ok := dErrors.CodeOf(err); ok {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeInvoiceExists, "an invoice with this content hash already exists")
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeInvoiceNotFound, "invoice not found")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeTimeout, msg)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
