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

// Package txflow drives state-changing calls against the cheque contract:
// gas estimation, an advisory simulation, submission, receipt inspection and
// revert reason decoding.
package txflow

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/chequedesk/chequedesk/contracts/cheque"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
)

// Backend wraps the chain access needed by the workflow.
type Backend interface {
	ethereum.GasEstimator
	ethereum.ContractCaller
	bind.DeployBackend
}

// Config tunes the workflow.
type Config struct {
	Floors      Floors        // minimum gas limit per method
	MineTimeout time.Duration // upper bound on waiting for a receipt, 0 waits on the caller's context only
}

// Workflow submits calls against a single bound contract.
type Workflow struct {
	contract *cheque.Contract
	backend  Backend
	sender   Sender
	floors   Floors
	timeout  time.Duration
	log      log.Logger
}

// New creates a workflow for the given contract.
func New(contract *cheque.Contract, backend Backend, sender Sender, config Config) *Workflow {
	floors := config.Floors
	if floors == nil {
		floors = DefaultFloors()
	}
	return &Workflow{
		contract: contract,
		backend:  backend,
		sender:   sender,
		floors:   floors,
		timeout:  config.MineTimeout,
		log:      log.New("contract", contract.Address()),
	}
}

// Request is a single state-changing contract call.
type Request struct {
	Method string
	Args   []interface{}
	From   common.Address
}

// Result reports what happened to a successful request.
type Result struct {
	Method        string
	Estimate      uint64 // node estimate, 0 if estimation failed
	GasLimit      uint64 // gas limit the transaction was sent with
	SimulationErr error  // advisory simulation failure, if any
	TxHash        common.Hash
	Receipt       *types.Receipt

	ID     *big.Int            // id of the affected cheque
	Count  *big.Int            // cheque count read back after an issue
	Cheque *cheque.ChainCheque // affected cheque as read back from chain
}

// Issue issues a cheque of amount wei payable to payee.
func (w *Workflow) Issue(ctx context.Context, from, payee common.Address, amount *big.Int) (*Result, error) {
	return w.Execute(ctx, Request{Method: cheque.MethodIssue, Args: []interface{}{payee, amount}, From: from})
}

// Verify marks the cheque with the given id as verified.
func (w *Workflow) Verify(ctx context.Context, from common.Address, id *big.Int) (*Result, error) {
	return w.Execute(ctx, Request{Method: cheque.MethodVerify, Args: []interface{}{id}, From: from})
}

// Execute runs a request through estimation, simulation, submission and
// read-back, strictly in that order. Estimation and simulation failures are
// logged and never prevent the submission. Submission failures are returned
// as *SubmissionError.
func (w *Workflow) Execute(ctx context.Context, req Request) (*Result, error) {
	data, err := w.contract.Pack(req.Method, req.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s call: %w", req.Method, err)
	}
	var (
		to     = w.contract.Address()
		msg    = ethereum.CallMsg{From: req.From, To: &to, Data: data}
		floor  = w.floors.Floor(req.Method)
		logger = w.log.New("method", req.Method, "from", req.From)
		res    = &Result{Method: req.Method}
	)
	// Estimate the gas allowance, falling back to the method floor
	var estimate interface{} = floor
	if gas, err := w.backend.EstimateGas(ctx, msg); err != nil {
		logger.Warn("Gas estimation failed, using floor", "floor", floor, "err", err)
		estimateFallbacks.Inc(1)
	} else {
		estimate, res.Estimate = gas, gas
	}
	// Dry run the call. A revert here is an early warning only.
	if _, err := w.backend.CallContract(ctx, msg, nil); err != nil {
		res.SimulationErr = err
		simulationReverts.Inc(1)
		if reason, rerr := RevertReason(err); rerr == nil && reason != "" {
			logger.Warn("Simulated call reverted, submitting anyway", "reason", reason)
		} else {
			logger.Warn("Simulated call failed, submitting anyway", "err", err)
		}
	}
	res.GasLimit = NormalizeGas(estimate, floor)
	msg.Gas = res.GasLimit

	start := time.Now()
	hash, err := w.sender.Send(ctx, msg)
	if err != nil {
		return res, w.fail(logger, req.Method, err, nil)
	}
	submittedMeter.Mark(1)
	res.TxHash = hash
	logger.Info("Submitted transaction", "hash", hash, "gas", res.GasLimit, "estimate", res.Estimate)

	receipt, err := w.waitMined(ctx, hash)
	if err != nil {
		return res, w.fail(logger, req.Method, err, nil)
	}
	confirmationTimer.UpdateSince(start)
	res.Receipt = receipt
	if receipt.Status != types.ReceiptStatusSuccessful {
		return res, w.fail(logger, req.Method, w.replay(ctx, msg, receipt), receipt)
	}
	logger.Info("Transaction mined", "hash", hash, "block", receipt.BlockNumber, "gasUsed", receipt.GasUsed)

	w.readBack(ctx, logger, req, res)
	return res, nil
}

func (w *Workflow) waitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}
	return bind.WaitMinedHash(ctx, w.backend, hash)
}

// replay re-executes a transaction that was mined with a failure status to
// learn its revert payload.
func (w *Workflow) replay(ctx context.Context, msg ethereum.CallMsg, receipt *types.Receipt) error {
	if _, err := w.backend.CallContract(ctx, msg, receipt.BlockNumber); err != nil {
		return fmt.Errorf("%w: %w", ErrReceiptFailed, err)
	}
	return ErrReceiptFailed
}

// fail turns a submission failure into a *SubmissionError, decoding the revert
// reason when the error carries an Error(string) payload.
func (w *Workflow) fail(logger log.Logger, method string, err error, receipt *types.Receipt) error {
	failedMeter.Mark(1)
	serr := newSubmissionError(method, err, receipt)
	if payload, perr := ErrorPayload(err); perr == nil {
		reason, derr := DecodeRevertReason(payload)
		switch {
		case derr != nil:
			logger.Warn("Failed to decode revert reason", "payload", payload, "err", derr)
		case reason != "":
			serr.Reason = reason
			decodedReasons.Inc(1)
		}
	}
	ctx := []interface{}{"err", err}
	if serr.Reason != "" {
		ctx = append(ctx, "reason", serr.Reason)
	}
	if serr.RPCMessage != "" {
		ctx = append(ctx, "rpc", serr.RPCMessage)
	}
	if receipt != nil {
		ctx = append(ctx, "tx", receipt.TxHash, "block", receipt.BlockNumber, "status", receipt.Status, "gasUsed", receipt.GasUsed)
	}
	logger.Error("Transaction failed", ctx...)
	return serr
}

// readBack refreshes the contract state affected by a successful request.
// Failures are logged only, the transaction itself already succeeded.
func (w *Workflow) readBack(ctx context.Context, logger log.Logger, req Request, res *Result) {
	var id *big.Int
	switch req.Method {
	case cheque.MethodIssue:
		count, err := w.contract.ChequeCount(ctx)
		if err != nil {
			logger.Warn("Failed to read back cheque count", "err", err)
		} else {
			res.Count, id = count, count
		}
		// The event pins the id even if others issued in between
		if issued, ok := w.contract.IssuedID(res.Receipt); ok {
			id = issued
		}
	case cheque.MethodVerify:
		if len(req.Args) > 0 {
			id, _ = req.Args[0].(*big.Int)
		}
	}
	if id == nil {
		return
	}
	res.ID = id
	ch, err := w.contract.Cheque(ctx, id)
	if err != nil {
		logger.Warn("Failed to read back cheque", "id", id, "err", err)
		return
	}
	res.Cheque = ch
	logger.Debug("Read back cheque", "cheque", ch)
}

// IsSubmissionError reports whether err is a failed submission and returns it.
func IsSubmissionError(err error) (*SubmissionError, bool) {
	var serr *SubmissionError
	ok := errors.As(err, &serr)
	return serr, ok
}
