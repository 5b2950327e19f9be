// Package custody implements the asset custody lifecycle: withdrawing
// birds to the base layer, depositing them back, bridging on-chain token
// identity to in-app identity, and the one-time asset-contract bootstrap.
package custody

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/prototyp3-dev/ornithologist/internal/domain/fault"
	"github.com/prototyp3-dev/ornithologist/internal/domain/model"
)

// Registry is the slice of the store custody needs.
type Registry interface {
	Ornithologist(model.Account) *model.Ornithologist
	BirdByID(model.BirdID) (*model.Bird, error)
	BirdByToken(*big.Int) (*model.Bird, error)
	IndexToken(*model.Bird)
}

// Vouchers builds the settlement instructions custody emits.
type Vouchers interface {
	// ERC721Mint tokenizes a bird for the first time: contract mints a
	// token for receiver carrying the bird id as opaque string data.
	ERC721Mint(contract, receiver model.Account, data string) model.Voucher

	// ERC721SafeTransfer moves an existing token from the dapp to the
	// receiver.
	ERC721SafeTransfer(contract, from, to model.Account, token *big.Int) model.Voucher
}

// Custody performs custody transitions against the registry.
type Custody struct {
	reg      Registry
	vouchers Vouchers

	// contract is the game-asset contract identity, pinned once by
	// Bootstrap. portal is the base-layer bridge the dapp transfers from.
	contract *model.Identity
	portal   *model.Identity

	// marker is the fixed function selector a bootstrap payload must
	// carry.
	marker []byte
}

// New wires a custody lifecycle over the registry and voucher builder.
func New(reg Registry, vouchers Vouchers, contract, portal *model.Identity, marker []byte) *Custody {
	return &Custody{
		reg:      reg,
		vouchers: vouchers,
		contract: contract,
		portal:   portal,
		marker:   marker,
	}
}

// Withdraw moves a bird to base-layer custody and returns the voucher
// settling it there: a mint for a never-tokenized bird, a transfer for a
// bird that already has a token.
func (c *Custody) Withdraw(requester model.Account, birdID model.BirdID) (model.Voucher, error) {
	bird, err := c.reg.BirdByID(birdID)
	if err != nil {
		return model.Voucher{}, err
	}
	if !bird.Owned() || bird.Owner != requester {
		return model.Voucher{}, fmt.Errorf("%w: bird %s current ornithologist is not the sender", fault.ErrNotAuthorized, birdID)
	}
	contract, ok := c.contract.Get()
	if !ok {
		return model.Voucher{}, fmt.Errorf("%w: asset contract identity not configured", fault.ErrPreconditionUnmet)
	}

	var voucher model.Voucher
	if bird.Token == nil {
		voucher = c.vouchers.ERC721Mint(contract, bird.Owner, string(bird.ID))
	} else {
		portal, ok := c.portal.Get()
		if !ok {
			return model.Voucher{}, fmt.Errorf("%w: bridge identity not configured", fault.ErrPreconditionUnmet)
		}
		voucher = c.vouchers.ERC721SafeTransfer(contract, portal, bird.Owner, bird.Token)
	}

	delete(c.reg.Ornithologist(bird.Owner).Catalogue, bird.ID)
	bird.Owner = model.Account{}
	bird.Location = model.LocationOnBaseLayer
	return voucher, nil
}

// Deposit brings a previously tokenized bird back in-app under the
// depositor. Unknown tokens fail with no state mutation.
func (c *Custody) Deposit(depositor model.Account, token *big.Int) (*model.Bird, error) {
	bird, err := c.reg.BirdByToken(token)
	if err != nil {
		return nil, err
	}
	bird.Owner = depositor
	bird.Location = model.LocationInApp
	c.reg.Ornithologist(depositor).Catalogue[bird.ID] = bird
	return bird, nil
}

// RegisterToken records the token minted for a bird and indexes it.
// Idempotent on an identical token; re-registration with a different one
// fails.
func (c *Custody) RegisterToken(birdID model.BirdID, token *big.Int) (*model.Bird, error) {
	bird, err := c.reg.BirdByID(birdID)
	if err != nil {
		return nil, err
	}
	if bird.Token != nil {
		if bird.Token.Cmp(token) == 0 {
			return bird, nil
		}
		return nil, fmt.Errorf("%w: bird %s already registered with token %s", fault.ErrInvalidState, birdID, bird.Token)
	}
	bird.Token = new(big.Int).Set(token)
	c.reg.IndexToken(bird)
	return bird, nil
}

// Bootstrap pins the game-asset contract identity to sender. Only a
// payload of one zero action byte followed by the fixed marker selector
// is accepted; the first correctly shaped message wins for the life of
// the process.
func (c *Custody) Bootstrap(sender model.Account, payload []byte) error {
	if len(payload) < 1 || payload[0] != 0 || !bytes.Equal(payload[1:], c.marker) {
		return fmt.Errorf("%w: could not define the asset contract address, wrong payload", fault.ErrInvalidBootstrap)
	}
	return c.contract.Pin(sender)
}
