package bridge

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/codes"

	"github.com/daml-lf/bridge/lf/types"
	"github.com/daml-lf/bridge/lferrors"
	"github.com/daml-lf/bridge/ledger"
	"github.com/daml-lf/bridge/telemetry"
)

// ErrReloadInProgress is returned by UploadDar when a previous upload is
// still being applied. Per spec.md §5 this is a ConcurrencyError; the HTTP
// layer is expected to retry once.
var ErrReloadInProgress = lferrors.New(lferrors.KindConcurrency, "reload in progress")

// DecodeDarFunc builds an Archive from the bytes of a .dar file and the
// archive's display name. It is injected rather than imported directly so
// bridge does not need to depend on lf/decode's dar-reading machinery at
// compile time for every caller (some embedders may only exercise the HTTP
// pass-through paths).
type DecodeDarFunc func(data []byte, name string) (*types.Archive, error)

// Server is the request/response translator: it holds the process's single
// pinned Archive behind an atomic pointer (readers snapshot it at request
// start, per spec.md §5), the ledger façade, the template-resolution cache,
// and telemetry seams.
type Server struct {
	archive   atomic.Pointer[types.Archive]
	client    ledger.Client
	cache     Cache
	decodeDar DecodeDarFunc

	refreshInterval time.Duration
	refreshCancel   context.CancelFunc
	refreshWg       sync.WaitGroup

	uploadMu  sync.Mutex
	uploading bool

	logger  telemetry.Logger
	metrics telemetry.Metrics
	tracer  telemetry.Tracer
}

// Option configures a Server.
type Option func(*Server)

// WithCache sets the template-resolution cache implementation.
func WithCache(c Cache) Option {
	return func(s *Server) { s.cache = c }
}

// WithLogger sets the structured logger.
func WithLogger(l telemetry.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics sets the metrics recorder used to instrument Handle.
func WithMetrics(m telemetry.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithTracer sets the tracer used to span each Handle call.
func WithTracer(t telemetry.Tracer) Option {
	return func(s *Server) { s.tracer = t }
}

// WithRefreshInterval overrides the periodic reload interval (default 60s).
func WithRefreshInterval(d time.Duration) Option {
	return func(s *Server) { s.refreshInterval = d }
}

// WithDecodeDar sets the function used to rebuild an Archive from uploaded
// .dar bytes during UploadDar and periodic refresh.
func WithDecodeDar(fn DecodeDarFunc) Option {
	return func(s *Server) { s.decodeDar = fn }
}

// NewServer constructs a Server pinned to the given initial archive.
func NewServer(initial *types.Archive, client ledger.Client, opts ...Option) *Server {
	s := &Server{
		client:          client,
		refreshInterval: 60 * time.Second,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.cache == nil {
		s.cache = NewMemoryCache()
	}
	if s.logger == nil {
		s.logger = telemetry.NewNoopLogger()
	}
	if s.metrics == nil {
		s.metrics = telemetry.NewNoopMetrics()
	}
	if s.tracer == nil {
		s.tracer = telemetry.NewNoopTracer()
	}
	s.archive.Store(initial)
	return s
}

// Archive returns a snapshot of the currently pinned Archive. Callers must
// use the same snapshot throughout a single request so a concurrent reload
// does not change the Archive underneath an in-flight request.
func (s *Server) Archive() *types.Archive {
	return s.archive.Load()
}

// StartPeriodicRefresh launches the background reload loop (grounded on the
// teacher's Manager.syncRegistry ticker loop). fetchDar retrieves the
// current main .dar bytes from the ledger's package service.
func (s *Server) StartPeriodicRefresh(ctx context.Context, fetchDar func(ctx context.Context) ([]byte, string, error)) {
	if s.refreshInterval <= 0 || s.decodeDar == nil {
		return
	}
	refreshCtx, cancel := context.WithCancel(ctx)
	s.refreshCancel = cancel
	s.refreshWg.Add(1)
	go func() {
		defer s.refreshWg.Done()
		ticker := time.NewTicker(s.refreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-refreshCtx.Done():
				return
			case <-ticker.C:
				data, name, err := fetchDar(refreshCtx)
				if err != nil {
					s.logger.Warn(refreshCtx, "periodic archive refresh failed", "error", err.Error())
					continue
				}
				if err := s.reload(data, name); err != nil {
					s.logger.Warn(refreshCtx, "periodic archive reload failed", "error", err.Error())
				}
			}
		}
	}()
}

// StopPeriodicRefresh stops the background reload loop started by
// StartPeriodicRefresh.
func (s *Server) StopPeriodicRefresh() {
	if s.refreshCancel != nil {
		s.refreshCancel()
		s.refreshWg.Wait()
		s.refreshCancel = nil
	}
}

// UploadDar uploads dar to the ledger, rebuilds the Archive from the
// response, and atomically swaps it in. A second call while one is already
// in flight returns ErrReloadInProgress immediately rather than blocking.
func (s *Server) UploadDar(ctx context.Context, dar []byte, name string, opt ledger.CallOption) error {
	s.uploadMu.Lock()
	if s.uploading {
		s.uploadMu.Unlock()
		return ErrReloadInProgress
	}
	s.uploading = true
	s.uploadMu.Unlock()

	defer func() {
		s.uploadMu.Lock()
		s.uploading = false
		s.uploadMu.Unlock()
	}()

	if err := s.client.UploadDar(ctx, dar, opt); err != nil {
		return lferrors.NewWithCause(lferrors.KindRPC, "upload dar", err)
	}
	return s.reload(dar, name)
}

func (s *Server) reload(dar []byte, name string) error {
	if s.decodeDar == nil {
		return lferrors.New(lferrors.KindConcurrency, "no archive decoder configured")
	}
	newArchive, err := s.decodeDar(dar, name)
	if err != nil {
		return lferrors.NewWithCause(lferrors.KindDecode, "decode reloaded archive", err)
	}
	s.archive.Store(newArchive)
	_ = s.cache.Clear(context.Background())
	return nil
}

// Handle recovers any panic raised while running fn and converts it into
// the standard {status:500, errors:["unexpected: ..."]} envelope, matching
// spec.md §7's "a panic ... never crashes the process". kind names the
// translated request (create, exercise, ...) for the span, counter and
// RequestTelemetry record it produces.
func (s *Server) Handle(ctx context.Context, kind string, fn func(ctx context.Context) (Envelope, error)) (env Envelope, err error) {
	start := time.Now()
	spanCtx, span := s.tracer.Start(ctx, "bridge."+kind)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
			env = Envelope{}
		}
		s.recordRequest(ctx, span, telemetry.RequestTelemetry{
			DurationMs:  time.Since(start).Milliseconds(),
			RequestKind: kind,
			Extra:       map[string]any{"status": requestStatus(err)},
		}, err)
	}()

	return fn(spanCtx)
}

func requestStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// recordRequest closes out the span and feeds a single translated request's
// telemetry into the metrics recorder and structured logger.
func (s *Server) recordRequest(ctx context.Context, span telemetry.Span, rt telemetry.RequestTelemetry, err error) {
	status, _ := rt.Extra["status"].(string)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()

	s.metrics.IncCounter("bridge_requests_total", 1, "kind", rt.RequestKind, "status", status)
	s.metrics.RecordTimer("bridge_request_duration_seconds", time.Duration(rt.DurationMs)*time.Millisecond, "kind", rt.RequestKind, "status", status)
	s.logger.Info(ctx, "request handled", "kind", rt.RequestKind, "status", status, "duration_ms", rt.DurationMs)
}
