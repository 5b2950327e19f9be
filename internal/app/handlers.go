package app

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/prototyp3-dev/ornithologist/internal/adapters/codec"
	"github.com/prototyp3-dev/ornithologist/internal/domain/duel"
	"github.com/prototyp3-dev/ornithologist/internal/domain/fault"
	"github.com/prototyp3-dev/ornithologist/internal/domain/model"
	"github.com/prototyp3-dev/ornithologist/internal/domain/species"
	"github.com/prototyp3-dev/ornithologist/pkg/logger"
	"github.com/prototyp3-dev/ornithologist/pkg/metrics"
)

// Action bytes framing game-asset contract inputs.
const (
	actionAdmin         = 0x00
	actionBirdwatch     = 0x01
	actionRegisterToken = 0x02
)

// tokenIDLength is the fixed width of the token id field in a
// registration input.
const tokenIDLength = 32

// handleBootstrap accepts only the fixed admin message while the asset
// contract identity is unset, pinning it to the sender.
func (s *Service) handleBootstrap(ctx context.Context, sender model.Account, payload []byte) error {
	if err := s.custody.Bootstrap(sender, payload); err != nil {
		return err
	}
	s.logInfo(ctx, "asset contract pinned", logger.String("contract", sender.String()))
	s.notice(ctx, fmt.Sprintf("The configured asset contract address is %s", sender))
	return nil
}

// handlePortal settles a deposit event routed through the base-layer
// bridge. Foreign assets bounce straight back to the depositor; only the
// game asset enters the custody deposit path.
func (s *Service) handlePortal(ctx context.Context, payload []byte) error {
	header, err := codec.DepositHeader(payload)
	if err != nil {
		return err
	}
	portal, ok := s.portal.Get()
	if !ok {
		return fmt.Errorf("%w: bridge identity not configured", fault.ErrPreconditionUnmet)
	}

	switch header {
	case codec.ERC20DepositHeader:
		dep, err := codec.DecodeERC20Deposit(payload)
		if err != nil {
			return err
		}
		s.voucher(ctx, s.builder.ERC20Transfer(dep.Token, dep.Depositor, dep.Amount))

	case codec.ERC721DepositHeader:
		dep, err := codec.DecodeERC721Deposit(payload)
		if err != nil {
			return err
		}
		if !s.contract.Is(dep.Token) {
			s.voucher(ctx, s.builder.ERC721SafeTransfer(dep.Token, portal, dep.Depositor, dep.TokenID))
			return nil
		}
		if _, err := s.custody.Deposit(dep.Depositor, dep.TokenID); err != nil {
			s.report(ctx, fmt.Sprintf("Error depositing: %v", err))
			s.voucher(ctx, s.builder.ERC721SafeTransfer(dep.Token, portal, dep.Depositor, dep.TokenID))
		}

	case codec.EtherDepositHeader:
		dep, err := codec.DecodeEtherDeposit(payload)
		if err != nil {
			return err
		}
		s.voucher(ctx, s.builder.EtherWithdrawal(portal, dep.Depositor, dep.Amount))

	default:
		// Unrecognized settlement header: nothing to settle.
	}
	return nil
}

// handleAssetContract processes inputs from the game-asset contract:
// new encounters and token registrations.
func (s *Service) handleAssetContract(ctx context.Context, meta model.EventMeta, payload []byte) error {
	if len(payload) < 1 {
		return fmt.Errorf("%w: empty asset contract input", fault.ErrInvalidInput)
	}

	switch payload[0] {
	case actionBirdwatch:
		return s.handleBirdwatch(ctx, meta, payload[1:])

	case actionRegisterToken:
		if len(payload) < 1+tokenIDLength+1 {
			return fmt.Errorf("%w: truncated token registration", fault.ErrInvalidInput)
		}
		token := new(big.Int).SetBytes(payload[1 : 1+tokenIDLength])
		birdID := model.BirdID(payload[1+tokenIDLength:])
		bird, err := s.custody.RegisterToken(birdID, token)
		if err != nil {
			return err
		}
		s.notice(ctx, s.birdView(bird))
		return nil

	default:
		return fmt.Errorf("%w: invalid action index %d", fault.ErrInvalidInput, payload[0])
	}
}

// handleBirdwatch assigns a species to the observation and creates the
// bird. The event's block number seeds the assignment so any replay of
// the log re-derives the same species.
func (s *Service) handleBirdwatch(ctx context.Context, meta model.EventMeta, payload []byte) error {
	var in birdwatchInput
	if err := json.Unmarshal(payload, &in); err != nil {
		return fmt.Errorf("%w: malformed birdwatch input: %v", fault.ErrInvalidInput, err)
	}
	account, err := model.ParseAccount(in.Account)
	if err != nil {
		return err
	}

	obs := species.Observation{
		X:        in.X,
		Y:        in.Y,
		Radius:   in.Radius,
		Distance: in.Distance,
		Timespan: in.Timespan,
	}
	speciesKey, err := s.assigner.Assign(ctx, obs, meta.BlockNumber)
	if err != nil {
		return err
	}

	bird := s.reg.CreateBird(account, speciesKey)
	metrics.RecordBirdCreated()
	s.logInfo(ctx, "bird created",
		logger.String("bird", string(bird.ID)),
		logger.String("species", speciesKey),
		logger.String("ornithologist", account.String()),
	)
	s.notice(ctx, s.birdView(bird))
	return nil
}

// handlePlayer processes a structured player request.
func (s *Service) handlePlayer(ctx context.Context, meta model.EventMeta, payload []byte) error {
	var in playerInput
	if err := json.Unmarshal(payload, &in); err != nil {
		return fmt.Errorf("%w: malformed player input: %v", fault.ErrInvalidInput, err)
	}

	switch in.Action {
	case "withdraw":
		return s.handleWithdraw(ctx, meta.Sender, in)
	case "duel":
		return s.handleDuel(ctx, meta, in)
	default:
		return fmt.Errorf("%w: unrecognized action %q", fault.ErrInvalidInput, in.Action)
	}
}

// handleWithdraw relocates a bird to base-layer custody and emits the
// settling voucher.
func (s *Service) handleWithdraw(ctx context.Context, sender model.Account, in playerInput) error {
	if in.Bird == "" {
		return fmt.Errorf("%w: 'bird' id not informed", fault.ErrInvalidInput)
	}
	voucher, err := s.custody.Withdraw(sender, model.BirdID(in.Bird))
	if err != nil {
		return err
	}
	s.voucher(ctx, voucher)
	return nil
}

// handleDuel routes a duel message by the protocol state and the
// sender's role in it. A continuation message matching no legal action
// for the sender falls through to a notice of the current record.
func (s *Service) handleDuel(ctx context.Context, meta model.EventMeta, in playerInput) error {
	if in.Opponent == "" {
		return fmt.Errorf("%w: opponent ornithologist address not informed", fault.ErrInvalidInput)
	}
	opponent, err := model.ParseAccount(in.Opponent)
	if err != nil {
		return err
	}
	sender := meta.Sender

	key, err := duel.CanonicalKey(sender, opponent)
	if err != nil {
		return err
	}

	d, err := s.reg.DuelByKey(key)
	if err != nil {
		d, err = s.initiateDuel(meta, sender, opponent, in)
		if err != nil {
			return err
		}
	} else if d.Bird2 == "" {
		switch {
		case sender == d.Opponent:
			if in.Bird == "" {
				return fmt.Errorf("%w: you must provide the 'bird' id", fault.ErrInvalidInput)
			}
			if err := s.duels.ChooseResponderBird(d, meta.Timestamp, model.BirdID(in.Bird)); err != nil {
				return err
			}
		case sender == d.Challenger:
			if in.Cancel.True() {
				if err := s.duels.Cancel(d); err != nil {
					return err
				}
				metrics.RecordDuelResolved(metrics.OutcomeCancelled)
				s.notice(ctx, fmt.Sprintf("Duel canceled: %s", duelView(d)))
				return nil
			}
		default:
			return fmt.Errorf("%w: user not in this duel", fault.ErrNotAuthorized)
		}
	} else {
		switch {
		case sender == d.Opponent:
			if in.Timeout.True() {
				if err := s.duels.ClaimTimeout(d, meta.Timestamp); err != nil {
					return err
				}
				metrics.RecordDuelResolved(metrics.OutcomeTimeout)
			}
		case sender == d.Challenger:
			if in.Bird == "" {
				return fmt.Errorf("%w: you must provide the 'bird' id", fault.ErrInvalidInput)
			}
			if in.Nonce == nil {
				return fmt.Errorf("%w: you must provide the 'nonce' used in the commit", fault.ErrInvalidInput)
			}
			if err := s.duels.Reveal(ctx, d, meta.Timestamp, model.BirdID(in.Bird), string(*in.Nonce)); err != nil {
				return err
			}
			metrics.RecordDuelResolved(revealOutcome(d))
		default:
			// Not a participant: intentionally permissive, the current
			// record is still announced below.
		}
	}

	s.notice(ctx, duelView(d))
	return nil
}

// initiateDuel opens a new duel from the initiation fields.
func (s *Service) initiateDuel(meta model.EventMeta, sender, opponent model.Account, in playerInput) (*model.Duel, error) {
	if in.Commit == "" {
		return nil, fmt.Errorf("%w: commit (from ornithologist 1) not informed", fault.ErrInvalidInput)
	}
	if in.Trait == "" {
		return nil, fmt.Errorf("%w: trait to compare not informed", fault.ErrInvalidInput)
	}
	compareGreater := true
	if in.CompareGreater != nil {
		compareGreater = bool(*in.CompareGreater)
	}
	return s.duels.Initiate(meta.Timestamp, sender, opponent, in.Commit, in.Trait, compareGreater)
}

// revealOutcome labels how a reveal resolved for metrics.
func revealOutcome(d *model.Duel) string {
	switch {
	case d.Winner == "":
		return metrics.OutcomeDraw
	case d.Bird1 == "":
		return metrics.OutcomeForfeiture
	default:
		return metrics.OutcomeWin
	}
}
