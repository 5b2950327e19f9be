package codec

import (
	"math/big"

	"github.com/prototyp3-dev/ornithologist/internal/domain/model"
)

// Builder assembles voucher call data. It is stateless; a zero Builder is
// ready to use.
type Builder struct{}

// ERC20Transfer builds token.transfer(receiver, amount).
func (Builder) ERC20Transfer(token, receiver model.Account, amount *big.Int) model.Voucher {
	payload := append([]byte{}, ERC20TransferSelector...)
	payload = append(payload, encodeAddress(receiver.Address())...)
	payload = append(payload, encodeUint(amount)...)
	return model.Voucher{Destination: token, Payload: payload}
}

// ERC721SafeTransfer builds contract.safeTransferFrom(from, to, tokenID).
func (Builder) ERC721SafeTransfer(contract, from, to model.Account, tokenID *big.Int) model.Voucher {
	payload := append([]byte{}, ERC721SafeTransferSelector...)
	payload = append(payload, encodeAddress(from.Address())...)
	payload = append(payload, encodeAddress(to.Address())...)
	payload = append(payload, encodeUint(tokenID)...)
	return model.Voucher{Destination: contract, Payload: payload}
}

// ERC721Mint builds contract.mint(receiver, data) with the bird id as the
// opaque string argument.
func (Builder) ERC721Mint(contract, receiver model.Account, data string) model.Voucher {
	// head: receiver word + offset of the dynamic string (2 args * 32).
	payload := append([]byte{}, ERC721MintSelector...)
	payload = append(payload, encodeAddress(receiver.Address())...)
	payload = append(payload, encodeUint(big.NewInt(2*wordSize))...)
	payload = append(payload, encodeDynamic([]byte(data))...)
	return model.Voucher{Destination: contract, Payload: payload}
}

// EtherWithdrawal builds dapp.etherWithdrawal(bytes) where the bytes
// argument packs (receiver, amount).
func (Builder) EtherWithdrawal(dapp, receiver model.Account, amount *big.Int) model.Voucher {
	inner := append(encodeAddress(receiver.Address()), encodeUint(amount)...)

	payload := append([]byte{}, EtherWithdrawalSelector...)
	payload = append(payload, encodeUint(big.NewInt(wordSize))...) // offset of the single dynamic arg
	payload = append(payload, encodeDynamic(inner)...)
	return model.Voucher{Destination: dapp, Payload: payload}
}
