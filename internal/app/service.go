// Package app provides the event dispatcher: it classifies each inbound
// event by sender role, routes it to the custody lifecycle, the bootstrap
// step or a player-action handler, and turns the outcome into notices,
// reports and vouchers.
package app

import (
	"context"
	"fmt"

	"github.com/prototyp3-dev/ornithologist/internal/adapters/codec"
	"github.com/prototyp3-dev/ornithologist/internal/adapters/repository"
	"github.com/prototyp3-dev/ornithologist/internal/domain/custody"
	"github.com/prototyp3-dev/ornithologist/internal/domain/duel"
	"github.com/prototyp3-dev/ornithologist/internal/domain/model"
	"github.com/prototyp3-dev/ornithologist/internal/domain/species"
	"github.com/prototyp3-dev/ornithologist/pkg/logger"
	"github.com/prototyp3-dev/ornithologist/pkg/metrics"
)

// Emitter posts outputs to the rollup server. Emission is fire-and-forget
// relative to state: failures are logged, never rolled back.
type Emitter interface {
	Voucher(ctx context.Context, v model.Voucher) error
	Notice(ctx context.Context, payload string) error
	Report(ctx context.Context, payload string) error
}

// Input kinds for metrics.
const (
	kindPortal    = "portal"
	kindContract  = "asset_contract"
	kindBootstrap = "bootstrap"
	kindPlayer    = "player"
	kindInspect   = "inspect"
)

// Service implements the dispatcher over an owned registry. Events are
// processed strictly one at a time; the service holds all mutable state
// and is not safe for concurrent use, by design of the rollup log.
type Service struct {
	reg      *repository.Registry
	table    *species.Table
	assigner species.Assigner
	custody  *custody.Custody
	duels    *duel.Engine
	emitter  Emitter
	builder  codec.Builder

	// portal is the base-layer bridge identity, pinned from the first
	// log input; contract is the game-asset contract identity, pinned by
	// the admin bootstrap message.
	portal   model.Identity
	contract model.Identity

	encounterInterval int64
	visionRange       float64
	duelTimeout       int64

	log logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithEncounterInterval sets the seconds of birdwatching per encounter.
func WithEncounterInterval(seconds int64) Option {
	return func(s *Service) {
		if seconds > 0 {
			s.encounterInterval = seconds
		}
	}
}

// WithVisionRange sets the observer vision range in meters.
func WithVisionRange(meters float64) Option {
	return func(s *Service) {
		if meters > 0 {
			s.visionRange = meters
		}
	}
}

// WithDuelTimeout sets the reveal forfeiture window in seconds.
func WithDuelTimeout(seconds int64) Option {
	return func(s *Service) {
		if seconds > 0 {
			s.duelTimeout = seconds
		}
	}
}

// WithAssigner sets a custom species assigner.
func WithAssigner(a species.Assigner) Option {
	return func(s *Service) {
		if a != nil {
			s.assigner = a
		}
	}
}

// New constructs the dispatcher with an empty registry.
func New(emitter Emitter, table *species.Table, opts ...Option) *Service {
	s := &Service{
		table:             table,
		emitter:           emitter,
		encounterInterval: 120,
		visionRange:       10,
		duelTimeout:       600,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.reg = repository.New()
	if s.assigner == nil {
		s.assigner = species.NewAssigner(table,
			species.WithEncounterInterval(s.encounterInterval),
			species.WithVisionRange(s.visionRange),
		)
	}
	s.custody = custody.New(s.reg, s.builder, &s.contract, &s.portal, codec.SendBirdAddressSelector)
	s.duels = duel.NewEngine(s.reg, table,
		duel.WithTimeout(s.duelTimeout),
		duel.WithLogger(s.log),
	)
	return s
}

// PinPortal records the base-layer bridge identity from the first log
// input.
func (s *Service) PinPortal(acct model.Account) error {
	if err := s.portal.Pin(acct); err != nil {
		return err
	}
	s.logInfo(context.Background(), "portal identity pinned", logger.String("portal", acct.String()))
	return nil
}

// Advance processes one inbound event. Any error is rendered as a report
// and the event is acknowledged negatively; the stream always continues.
func (s *Service) Advance(ctx context.Context, meta model.EventMeta, payload []byte) error {
	kind, err := s.advance(ctx, meta, payload)
	if err != nil {
		s.logWarn(ctx, "input rejected",
			logger.String("kind", kind),
			logger.String("sender", meta.Sender.String()),
			logger.Error(err),
		)
		s.report(ctx, fmt.Sprintf("Error: %v", err))
		metrics.RecordInput(kind, metrics.StatusRejected)
		return err
	}
	metrics.RecordInput(kind, metrics.StatusAccepted)
	metrics.UpdateLiveDuels(s.reg.LiveDuels())
	metrics.UpdateBirds(s.reg.Birds())
	return nil
}

// advance classifies the event by sender role, in fixed priority order.
func (s *Service) advance(ctx context.Context, meta model.EventMeta, payload []byte) (string, error) {
	switch {
	case s.portal.Is(meta.Sender):
		return kindPortal, s.handlePortal(ctx, payload)
	case s.contract.Is(meta.Sender):
		return kindContract, s.handleAssetContract(ctx, meta, payload)
	case !s.contract.IsSet():
		return kindBootstrap, s.handleBootstrap(ctx, meta.Sender, payload)
	default:
		return kindPlayer, s.handlePlayer(ctx, meta, payload)
	}
}

// Inspect answers a read-only query: the key resolves to a bird, else a
// live duel, else an ornithologist, else the species encounter summary.
func (s *Service) Inspect(ctx context.Context, payload []byte) error {
	key := normalizeQuery(payload)
	metrics.RecordInput(kindInspect, metrics.StatusAccepted)

	if bird, err := s.reg.BirdByID(model.BirdID(key)); err == nil {
		s.report(ctx, s.birdView(bird))
		return nil
	}
	if d, err := s.reg.DuelByKey(model.DuelKey(key)); err == nil {
		s.report(ctx, duelView(d))
		return nil
	}
	if acct, err := model.ParseAccount(key); err == nil {
		if o, ok := s.reg.FindOrnithologist(acct); ok {
			s.report(ctx, ornithologistView(o))
			return nil
		}
	}
	s.report(ctx, summaryView(s.reg.EncounterSummary()))
	return nil
}

// Emission helpers. Outputs are fire-and-forget: a failed post is logged
// and the transition stands.

func (s *Service) voucher(ctx context.Context, v model.Voucher) {
	s.logInfo(ctx, "emitting voucher", logger.String("destination", v.Destination.String()))
	if err := s.emitter.Voucher(ctx, v); err != nil {
		s.logWarn(ctx, "voucher emission failed", logger.Error(err))
		return
	}
	metrics.RecordOutput("voucher")
}

func (s *Service) notice(ctx context.Context, payload string) {
	if err := s.emitter.Notice(ctx, payload); err != nil {
		s.logWarn(ctx, "notice emission failed", logger.Error(err))
		return
	}
	metrics.RecordOutput("notice")
}

func (s *Service) report(ctx context.Context, payload string) {
	if err := s.emitter.Report(ctx, payload); err != nil {
		s.logWarn(ctx, "report emission failed", logger.Error(err))
		return
	}
	metrics.RecordOutput("report")
}

func (s *Service) logInfo(ctx context.Context, msg string, fields ...logger.Field) {
	if s.log != nil {
		s.log.Info(ctx, msg, fields...)
	}
}

func (s *Service) logWarn(ctx context.Context, msg string, fields ...logger.Field) {
	if s.log != nil {
		s.log.Warn(ctx, msg, fields...)
	}
}
