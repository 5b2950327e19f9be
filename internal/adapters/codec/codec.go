// Package codec translates between domain operations and the base-layer
// wire forms: portal deposit payloads in, voucher call data out.
//
// Everything on this wire is 32-byte words. The portal prefixes deposits
// with a fixed Keccak256 header naming the transfer kind; vouchers carry
// a 4-byte function selector followed by ABI-encoded arguments.
package codec

import (
	"fmt"
	"math/big"

	gethCommon "github.com/ethereum/go-ethereum/common"
	gethCrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/prototyp3-dev/ornithologist/internal/domain/fault"
)

const wordSize = 32

// Portal deposit headers: Keccak256 of the transfer kind name, as defined
// by the rollup portal facets.
var (
	ERC20DepositHeader  = gethCrypto.Keccak256Hash([]byte("ERC20_Transfer"))
	ERC721DepositHeader = gethCrypto.Keccak256Hash([]byte("ERC721_Transfer"))
	EtherDepositHeader  = gethCrypto.Keccak256Hash([]byte("Ether_Transfer"))
)

// Function selectors used in vouchers, plus the fixed marker accepted by
// the asset-contract bootstrap.
var (
	ERC20TransferSelector      = Selector("transfer(address,uint256)")
	ERC721SafeTransferSelector = Selector("safeTransferFrom(address,address,uint256)")
	ERC721MintSelector         = Selector("mint(address,string)")
	EtherWithdrawalSelector    = Selector("etherWithdrawal(bytes)")
	SendBirdAddressSelector    = Selector("sendBirdAddress()")
)

// Selector computes the 4-byte function selector of a solidity signature.
func Selector(signature string) []byte {
	return gethCrypto.Keccak256([]byte(signature))[:4]
}

// Word packing.

func encodeAddress(a gethCommon.Address) []byte {
	return gethCommon.LeftPadBytes(a.Bytes(), wordSize)
}

func encodeUint(v *big.Int) []byte {
	return gethCommon.LeftPadBytes(v.Bytes(), wordSize)
}

// encodeDynamic encodes a dynamic bytes/string value in tail position:
// length word followed by right-padded content.
func encodeDynamic(data []byte) []byte {
	padded := len(data)
	if rem := padded % wordSize; rem != 0 {
		padded += wordSize - rem
	}
	out := make([]byte, 0, wordSize+padded)
	out = append(out, encodeUint(big.NewInt(int64(len(data))))...)
	out = append(out, gethCommon.RightPadBytes(data, padded)...)
	return out
}

// Word reading.

type wordReader struct {
	buf []byte
	pos int
}

func (r *wordReader) word() ([]byte, error) {
	if r.pos+wordSize > len(r.buf) {
		return nil, fmt.Errorf("%w: truncated payload at offset %d", fault.ErrInvalidInput, r.pos)
	}
	w := r.buf[r.pos : r.pos+wordSize]
	r.pos += wordSize
	return w, nil
}

func (r *wordReader) address() (gethCommon.Address, error) {
	w, err := r.word()
	if err != nil {
		return gethCommon.Address{}, err
	}
	return gethCommon.BytesToAddress(w), nil
}

func (r *wordReader) uint() (*big.Int, error) {
	w, err := r.word()
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(w), nil
}

// dynamic reads a dynamic bytes value through its offset word. Offsets
// are relative to the start of the argument block. Offset and length
// words larger than the payload itself are rejected before any index
// arithmetic, so a hostile word can never wrap into a negative bound.
func (r *wordReader) dynamic(base int) ([]byte, error) {
	off, err := r.uint()
	if err != nil {
		return nil, err
	}
	if !off.IsInt64() || off.Int64() > int64(len(r.buf)) {
		return nil, fmt.Errorf("%w: dynamic offset beyond payload", fault.ErrInvalidInput)
	}
	at := base + int(off.Int64())
	if at+wordSize > len(r.buf) {
		return nil, fmt.Errorf("%w: dynamic offset beyond payload", fault.ErrInvalidInput)
	}
	lenWord := new(big.Int).SetBytes(r.buf[at : at+wordSize])
	if !lenWord.IsInt64() || lenWord.Int64() > int64(len(r.buf)) {
		return nil, fmt.Errorf("%w: dynamic value beyond payload", fault.ErrInvalidInput)
	}
	length := int(lenWord.Int64())
	start := at + wordSize
	if start+length > len(r.buf) {
		return nil, fmt.Errorf("%w: dynamic value beyond payload", fault.ErrInvalidInput)
	}
	return r.buf[start : start+length], nil
}
