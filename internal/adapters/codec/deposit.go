package codec

import (
	"fmt"
	"math/big"

	gethCommon "github.com/ethereum/go-ethereum/common"

	"github.com/prototyp3-dev/ornithologist/internal/domain/fault"
	"github.com/prototyp3-dev/ornithologist/internal/domain/model"
)

// ERC20Deposit is a decoded ERC-20 portal transfer.
type ERC20Deposit struct {
	Depositor model.Account
	Token     model.Account
	Amount    *big.Int
	Data      []byte
}

// ERC721Deposit is a decoded ERC-721 portal transfer.
type ERC721Deposit struct {
	Token     model.Account
	Operator  model.Account
	Depositor model.Account
	TokenID   *big.Int
	Data      []byte
}

// EtherDeposit is a decoded Ether portal transfer.
type EtherDeposit struct {
	Depositor model.Account
	Amount    *big.Int
	Data      []byte
}

// DepositHeader reads the 32-byte marker prefix of a portal payload.
func DepositHeader(payload []byte) (gethCommon.Hash, error) {
	if len(payload) < wordSize {
		return gethCommon.Hash{}, fmt.Errorf("%w: portal payload shorter than a header", fault.ErrInvalidInput)
	}
	return gethCommon.BytesToHash(payload[:wordSize]), nil
}

// DecodeERC20Deposit decodes (bytes32, address, address, uint256, bytes).
func DecodeERC20Deposit(payload []byte) (ERC20Deposit, error) {
	r := &wordReader{buf: payload}
	if _, err := r.word(); err != nil { // header
		return ERC20Deposit{}, err
	}
	depositor, err := r.address()
	if err != nil {
		return ERC20Deposit{}, err
	}
	token, err := r.address()
	if err != nil {
		return ERC20Deposit{}, err
	}
	amount, err := r.uint()
	if err != nil {
		return ERC20Deposit{}, err
	}
	data, err := r.dynamic(0)
	if err != nil {
		return ERC20Deposit{}, err
	}
	return ERC20Deposit{
		Depositor: model.AccountFromAddress(depositor),
		Token:     model.AccountFromAddress(token),
		Amount:    amount,
		Data:      data,
	}, nil
}

// DecodeERC721Deposit decodes (bytes32, address, address, address,
// uint256, bytes).
func DecodeERC721Deposit(payload []byte) (ERC721Deposit, error) {
	r := &wordReader{buf: payload}
	if _, err := r.word(); err != nil { // header
		return ERC721Deposit{}, err
	}
	token, err := r.address()
	if err != nil {
		return ERC721Deposit{}, err
	}
	operator, err := r.address()
	if err != nil {
		return ERC721Deposit{}, err
	}
	depositor, err := r.address()
	if err != nil {
		return ERC721Deposit{}, err
	}
	tokenID, err := r.uint()
	if err != nil {
		return ERC721Deposit{}, err
	}
	data, err := r.dynamic(0)
	if err != nil {
		return ERC721Deposit{}, err
	}
	return ERC721Deposit{
		Token:     model.AccountFromAddress(token),
		Operator:  model.AccountFromAddress(operator),
		Depositor: model.AccountFromAddress(depositor),
		TokenID:   tokenID,
		Data:      data,
	}, nil
}

// DecodeEtherDeposit decodes (bytes32, address, uint256, bytes).
func DecodeEtherDeposit(payload []byte) (EtherDeposit, error) {
	r := &wordReader{buf: payload}
	if _, err := r.word(); err != nil { // header
		return EtherDeposit{}, err
	}
	depositor, err := r.address()
	if err != nil {
		return EtherDeposit{}, err
	}
	amount, err := r.uint()
	if err != nil {
		return EtherDeposit{}, err
	}
	data, err := r.dynamic(0)
	if err != nil {
		return EtherDeposit{}, err
	}
	return EtherDeposit{
		Depositor: model.AccountFromAddress(depositor),
		Amount:    amount,
		Data:      data,
	}, nil
}
