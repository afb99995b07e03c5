// Copyright 2026 The chequedesk Authors
// This file is part of the chequedesk library.
//
// The chequedesk library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The chequedesk library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the chequedesk library. If not, see <http://www.gnu.org/licenses/>.

// Package cheque binds the cheque issuance contract: it loads the contract ABI,
// validates the deployment address and offers typed read access to the
// contract state.
package cheque

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
)

// Contract methods consumed by the desk.
const (
	MethodCount   = "chequeCount"
	MethodCheques = "cheques"
	MethodIssue   = "issueCheque"
	MethodVerify  = "verifyCheque"
)

// EventIssued is logged by issueCheque with the new cheque id as first topic.
const EventIssued = "ChequeIssued"

// DefaultAddress is the deployment address used when none is configured.
const DefaultAddress = "0x1EE050900c500293f3E2Fa31Aedd28Ea7e8bd24D"

//go:embed Cheque.json
var defaultArtifact []byte

var (
	// ErrInvalidAddress is returned when the configured contract address is not
	// a well formed hex address.
	ErrInvalidAddress = errors.New("invalid contract address")

	// ErrNoABI is returned when an artifact carries no abi member.
	ErrNoABI = errors.New("artifact has no abi")
)

// artifact is the compiler output layout the ABI is shipped in.
type artifact struct {
	ContractName string          `json:"contractName"`
	ABI          json.RawMessage `json:"abi"`
}

// LoadABI reads the contract interface from a JSON artifact of the form
// {"abi": [...]}. An empty path selects the artifact compiled into the binary.
func LoadABI(path string) (abi.ABI, error) {
	blob := defaultArtifact
	if path != "" {
		var err error
		if blob, err = os.ReadFile(path); err != nil {
			return abi.ABI{}, err
		}
	}
	return ParseArtifact(blob)
}

// ParseArtifact decodes the ABI member of a JSON artifact.
func ParseArtifact(blob []byte) (abi.ABI, error) {
	var art artifact
	if err := json.Unmarshal(blob, &art); err != nil {
		return abi.ABI{}, fmt.Errorf("invalid contract artifact: %v", err)
	}
	if len(art.ABI) == 0 || bytes.Equal(art.ABI, []byte("null")) {
		return abi.ABI{}, ErrNoABI
	}
	return abi.JSON(bytes.NewReader(art.ABI))
}

// Backend is the read access the bound contract needs.
type Backend interface {
	bind.ContractCaller
}

// Contract is an immutable handle on a deployed cheque contract.
type Contract struct {
	address  common.Address
	abi      abi.ABI
	contract *bind.BoundContract
	log      log.Logger
}

// Bind validates address and binds the contract at that address. Nothing is
// constructed if the address is malformed.
func Bind(address string, parsed abi.ABI, backend Backend) (*Contract, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	addr := common.HexToAddress(address)
	for _, method := range []string{MethodCount, MethodCheques, MethodIssue, MethodVerify} {
		if _, ok := parsed.Methods[method]; !ok {
			return nil, fmt.Errorf("contract abi lacks method %q", method)
		}
	}
	c := &Contract{
		address:  addr,
		abi:      parsed,
		contract: bind.NewBoundContract(addr, parsed, backend, nil, nil),
		log:      log.New("contract", addr),
	}
	c.log.Debug("Bound cheque contract", "methods", len(parsed.Methods))
	return c, nil
}

// Address returns the deployment address of the contract.
func (c *Contract) Address() common.Address {
	return c.address
}

// ABI returns the parsed contract interface.
func (c *Contract) ABI() abi.ABI {
	return c.abi
}

// Pack encodes the call data for method.
func (c *Contract) Pack(method string, args ...interface{}) ([]byte, error) {
	return c.abi.Pack(method, args...)
}

// ChainCheque is the contract's view of a cheque.
type ChainCheque struct {
	ID       *big.Int
	Issuer   common.Address
	Payee    common.Address
	Amount   *big.Int
	Verified bool
}

func (c *ChainCheque) String() string {
	return fmt.Sprintf("id: %v, issuer: %s, payee: %s, amount: %v, verified: %v",
		c.ID, c.Issuer.Hex(), c.Payee.Hex(), c.Amount, c.Verified)
}

// ChequeCount returns the number of cheques issued on chain.
func (c *Contract) ChequeCount(ctx context.Context) (*big.Int, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, MethodCount); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// IssuedID returns the cheque id of the first ChequeIssued event this contract
// logged in receipt.
func (c *Contract) IssuedID(receipt *types.Receipt) (*big.Int, bool) {
	event, ok := c.abi.Events[EventIssued]
	if !ok || receipt == nil {
		return nil, false
	}
	for _, l := range receipt.Logs {
		if l.Address != c.address || len(l.Topics) < 2 || l.Topics[0] != event.ID {
			continue
		}
		return new(big.Int).SetBytes(l.Topics[1].Bytes()), true
	}
	return nil, false
}

// Cheque returns the on-chain record with the given id.
func (c *Contract) Cheque(ctx context.Context, id *big.Int) (*ChainCheque, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, MethodCheques, id); err != nil {
		return nil, err
	}
	if len(out) != 5 {
		return nil, fmt.Errorf("unexpected %s output arity %d", MethodCheques, len(out))
	}
	return &ChainCheque{
		ID:       *abi.ConvertType(out[0], new(*big.Int)).(**big.Int),
		Issuer:   *abi.ConvertType(out[1], new(common.Address)).(*common.Address),
		Payee:    *abi.ConvertType(out[2], new(common.Address)).(*common.Address),
		Amount:   *abi.ConvertType(out[3], new(*big.Int)).(**big.Int),
		Verified: *abi.ConvertType(out[4], new(bool)).(*bool),
	}, nil
}
