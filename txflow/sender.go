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

package txflow

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Sender submits a state-changing call and returns the transaction hash.
type Sender interface {
	Send(ctx context.Context, msg ethereum.CallMsg) (common.Hash, error)
}

// RPCCaller is the subset of *rpc.Client used by WalletSender.
type RPCCaller interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

// WalletSender leaves signing to the wallet behind the RPC endpoint by using
// eth_sendTransaction, just like a browser wallet does.
type WalletSender struct {
	client RPCCaller
}

// NewWalletSender creates a sender signing through the given endpoint.
func NewWalletSender(client RPCCaller) *WalletSender {
	return &WalletSender{client: client}
}

// sendTxArgs is the eth_sendTransaction request object.
type sendTxArgs struct {
	From  common.Address  `json:"from"`
	To    *common.Address `json:"to"`
	Gas   hexutil.Uint64  `json:"gas"`
	Value *hexutil.Big    `json:"value,omitempty"`
	Data  hexutil.Bytes   `json:"data"`
}

// Send implements Sender.
func (s *WalletSender) Send(ctx context.Context, msg ethereum.CallMsg) (common.Hash, error) {
	args := sendTxArgs{
		From: msg.From,
		To:   msg.To,
		Gas:  hexutil.Uint64(msg.Gas),
		Data: msg.Data,
	}
	if msg.Value != nil && msg.Value.Sign() > 0 {
		args.Value = (*hexutil.Big)(msg.Value)
	}
	var hash common.Hash
	if err := s.client.CallContext(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return common.Hash{}, err
	}
	return hash, nil
}

// KeyedSender signs locally with the given transactor and submits the raw
// transaction through the backend.
type KeyedSender struct {
	opts    *bind.TransactOpts
	backend bind.ContractBackend
}

// NewKeyedSender creates a sender that signs with opts.
func NewKeyedSender(opts *bind.TransactOpts, backend bind.ContractBackend) *KeyedSender {
	return &KeyedSender{opts: opts, backend: backend}
}

// From returns the signing account.
func (s *KeyedSender) From() common.Address {
	return s.opts.From
}

// Send implements Sender.
func (s *KeyedSender) Send(ctx context.Context, msg ethereum.CallMsg) (common.Hash, error) {
	if msg.To == nil {
		return common.Hash{}, errors.New("keyed sender cannot deploy contracts")
	}
	if msg.From != s.opts.From {
		return common.Hash{}, errors.New("sender account does not match signing key")
	}
	opts := *s.opts
	opts.Context = ctx
	opts.GasLimit = msg.Gas
	opts.Value = msg.Value
	if opts.Value == nil {
		opts.Value = new(big.Int)
	}
	bound := bind.NewBoundContract(*msg.To, abi.ABI{}, s.backend, s.backend, s.backend)
	tx, err := bound.RawTransact(&opts, msg.Data)
	if err != nil {
		return common.Hash{}, err
	}
	return tx.Hash(), nil
}
