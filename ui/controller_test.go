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


package ui

import (
	"context"
	"encoding/hex"
	"errors"
	"math/big"
	"strings"
	"sync"
	"testing"

	"github.com/chequedesk/chequedesk/chequedb"
	"github.com/chequedesk/chequedesk/contracts/cheque"
	"github.com/chequedesk/chequedesk/txflow"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/stretchr/testify/require"
)

var (
	testAccount = common.HexToAddress("0x90F8bf6A479f320ead074411a4B0e7944Ea8c9C1")
	testHash    = common.HexToHash("0x0badf00d0badf00d0badf00d0badf00d0badf00d0badf00d0badf00d0badf00d")
	testForm    = chequedb.Form{BankName: "ABC Bank", ReceiverName: "Alice", Amount: "10", ChequeDate: "2024-01-01"}
)

// revertError mimics a node error carrying an Error(string) revert payload.
type revertError struct {
	data string
}

func newRevertError(reason string) *revertError {
	stringType, _ := abi.NewType("string", "", nil)
	packed, err := abi.Arguments{{Type: stringType}}.Pack(reason)
	if err != nil {
		panic(err)
	}
	selector := crypto.Keccak256([]byte("Error(string)"))[:4]
	return &revertError{data: "0x" + hex.EncodeToString(append(selector, packed...))}
}

func (e *revertError) Error() string          { return "execution reverted" }
func (e *revertError) ErrorCode() int         { return 3 }
func (e *revertError) ErrorData() interface{} { return e.data }

// chainStub mines everything and answers every call with zeroed words, except
// for the leading word which holds count. That makes chequeCount() and the id
// of the cheques(id) tuple report count.
type chainStub struct {
	simErr error
	count  uint64
}

func (c *chainStub) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return 60000, nil
}

func (c *chainStub) CallContract(ctx context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error) {
	if c.simErr != nil {
		return nil, c.simErr
	}
	out := make([]byte, 5*32)
	new(big.Int).SetUint64(c.count).FillBytes(out[:32])
	return out, nil
}

func (c *chainStub) CodeAt(ctx context.Context, account common.Address, block *big.Int) ([]byte, error) {
	return []byte{0x60}, nil
}

func (c *chainStub) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: hash, BlockNumber: big.NewInt(1)}, nil
}

type senderStub struct {
	err  error
	sent []ethereum.CallMsg
}

func (s *senderStub) Send(ctx context.Context, msg ethereum.CallMsg) (common.Hash, error) {
	s.sent = append(s.sent, msg)
	return testHash, s.err
}

// newWorkflowController wires a controller to a real workflow over stubs.
func newWorkflowController(t *testing.T, chain *chainStub, sender *senderStub) (*Controller, *chequedb.DB) {
	t.Helper()
	parsed, err := cheque.LoadABI("")
	require.NoError(t, err)
	contract, err := cheque.Bind(cheque.DefaultAddress, parsed, chain)
	require.NoError(t, err)

	db := memorydb.New()
	store := chequedb.New(db)
	ctrl := NewController(txflow.New(contract, chain, sender, txflow.Config{}), store, chequedb.NewSessions(db), Config{Account: testAccount})
	return ctrl, store
}

// stubIssuer succeeds unless told otherwise. count is the contract's cheque
// count, advanced by every successful issue.
type stubIssuer struct {
	lock     sync.Mutex
	err      error
	panics   bool
	count    uint64
	issued   []*big.Int
	verified []*big.Int
}

func (s *stubIssuer) Issue(ctx context.Context, from, payee common.Address, amount *big.Int) (*txflow.Result, error) {
	if s.panics {
		panic("issuer exploded")
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.issued = append(s.issued, amount)
	if s.err != nil {
		return nil, s.err
	}
	s.count++
	return &txflow.Result{Method: cheque.MethodIssue, TxHash: testHash, Count: new(big.Int).SetUint64(s.count)}, nil
}

func (s *stubIssuer) Verify(ctx context.Context, from common.Address, id *big.Int) (*txflow.Result, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.verified = append(s.verified, id)
	if s.err != nil {
		return nil, s.err
	}
	return &txflow.Result{Method: cheque.MethodVerify, TxHash: testHash}, nil
}

func newStubController(issuer *stubIssuer) (*Controller, *chequedb.DB, *chequedb.Sessions) {
	db := memorydb.New()
	store, sessions := chequedb.New(db), chequedb.NewSessions(db)
	return NewController(issuer, store, sessions, Config{Account: testAccount}), store, sessions
}

func TestSubmitIssuesCheque(t *testing.T) {
	sender := new(senderStub)
	ctrl, store := newWorkflowController(t, new(chainStub), sender)

	out := ctrl.Submit(context.Background(), testForm)
	require.NoError(t, out.Err)
	require.Equal(t, Green, out.Message.Color)
	require.Equal(t, MsgIssued, out.Message.Text)

	records, err := store.Load()
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, chequedb.Record{
		Sender:           testAccount,
		BankName:         "ABC Bank",
		ReceiverName:     "Alice",
		Amount:           "10",
		ChequeDate:       "2024-01-01",
		SequentialNumber: 1,
		Status:           chequedb.StatusPending,
	}, records[0])
	require.Equal(t, records[0], *out.Record)

	require.Len(t, sender.sent, 1)
	require.Equal(t, testAccount, sender.sent[0].From)
	require.Equal(t, uint64(txflow.IssueGasFloor), sender.sent[0].Gas)
}

func TestSubmitInsufficientFunds(t *testing.T) {
	var (
		chain  = &chainStub{simErr: newRevertError("insufficient funds")}
		sender = &senderStub{err: newRevertError("insufficient funds")}
	)
	ctrl, store := newWorkflowController(t, chain, sender)

	out := ctrl.Submit(context.Background(), testForm)
	require.Error(t, out.Err)
	require.Equal(t, Red, out.Message.Color)
	require.Equal(t, "insufficient funds", out.Message.Reason)
	require.Equal(t, MsgIssueFailed+": insufficient funds", out.Message.Text)
	require.Nil(t, out.Record)

	records, err := store.Load()
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestSubmitRawError(t *testing.T) {
	sender := &senderStub{err: errors.New("user denied transaction signature")}
	ctrl, store := newWorkflowController(t, new(chainStub), sender)

	out := ctrl.Submit(context.Background(), testForm)
	require.Equal(t, Red, out.Message.Color)
	require.Empty(t, out.Message.Reason)
	require.Contains(t, out.Message.Text, "user denied transaction signature")

	records, _ := store.Load()
	require.Empty(t, records)
}

func TestSubmitMissingFields(t *testing.T) {
	forms := []chequedb.Form{
		{},
		{BankName: "ABC Bank", ReceiverName: "Alice", Amount: "10"},
		{BankName: "ABC Bank", ReceiverName: " ", Amount: "10", ChequeDate: "2024-01-01"},
		{BankName: "\t", ReceiverName: "Alice", Amount: "10", ChequeDate: "2024-01-01"},
	}
	for i, form := range forms {
		issuer := new(stubIssuer)
		ctrl, store, _ := newStubController(issuer)

		out := ctrl.Submit(context.Background(), form)
		if !errors.Is(out.Err, ErrIncompleteForm) {
			t.Errorf("test %d: error mismatch: have %v, want %v", i, out.Err, ErrIncompleteForm)
		}
		if out.Message.Text != MsgMissingFields || out.Message.Color != Red {
			t.Errorf("test %d: message mismatch: have %+v", i, out.Message)
		}
		if len(issuer.issued) != 0 {
			t.Errorf("test %d: workflow invoked for incomplete form", i)
		}
		if records, _ := store.Load(); len(records) != 0 {
			t.Errorf("test %d: record stored for incomplete form", i)
		}
	}
}

func TestSubmitInvalidAmount(t *testing.T) {
	issuer := new(stubIssuer)
	ctrl, _, _ := newStubController(issuer)

	form := testForm
	form.Amount = "ten"
	out := ctrl.Submit(context.Background(), form)
	require.ErrorIs(t, out.Err, cheque.ErrInvalidAmount)
	require.Equal(t, Red, out.Message.Color)
	require.Empty(t, issuer.issued)
}

func TestSubmitAmountInWei(t *testing.T) {
	issuer := new(stubIssuer)
	ctrl, _, _ := newStubController(issuer)

	form := testForm
	form.Amount = "1.5"
	out := ctrl.Submit(context.Background(), form)
	require.NoError(t, out.Err)
	require.Len(t, issuer.issued, 1)
	require.Equal(t, "1500000000000000000", issuer.issued[0].String())
}

func TestConcurrentSubmit(t *testing.T) {
	ctrl, store, _ := newStubController(new(stubIssuer))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctrl.Submit(context.Background(), testForm)
		}()
	}
	wg.Wait()

	records, err := store.Load()
	require.NoError(t, err)
	require.Len(t, records, 8)
	for i, r := range records {
		require.Equal(t, uint64(i+1), r.SequentialNumber)
	}
}

func TestVerify(t *testing.T) {
	issuer := new(stubIssuer)
	ctrl, store, _ := newStubController(issuer)

	require.NoError(t, ctrl.Submit(context.Background(), testForm).Err)
	require.NoError(t, ctrl.Submit(context.Background(), testForm).Err)

	out := ctrl.Verify(context.Background(), 2)
	require.NoError(t, out.Err)
	require.Equal(t, Green, out.Message.Color)
	require.Equal(t, chequedb.StatusVerified, out.Record.Status)
	require.Equal(t, []*big.Int{big.NewInt(2)}, issuer.verified)

	records, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, chequedb.StatusPending, records[0].Status)
	require.Equal(t, chequedb.StatusVerified, records[1].Status)

	for _, seq := range []uint64{0, 3} {
		out := ctrl.Verify(context.Background(), seq)
		require.ErrorIs(t, out.Err, chequedb.ErrUnknownCheque)
		require.Equal(t, Red, out.Message.Color)
	}
	require.Len(t, issuer.verified, 1)
}

func TestSubmitStoresContractID(t *testing.T) {
	ctrl, store := newWorkflowController(t, &chainStub{count: 6}, new(senderStub))

	out := ctrl.Submit(context.Background(), testForm)
	require.NoError(t, out.Err)
	require.Equal(t, uint64(1), out.Record.SequentialNumber)
	require.NotNil(t, out.Record.ChequeID)
	require.Equal(t, uint64(6), out.Record.ChequeID.Uint64())

	records, err := store.Load()
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].ChequeID)
	require.Equal(t, "6", records[0].ChequeID.String())
}

// Cheques issued by other accounts advance the contract count, so the local
// sequential number and the contract id diverge.
func TestVerifyUsesContractID(t *testing.T) {
	issuer := &stubIssuer{count: 5}
	ctrl, store, _ := newStubController(issuer)

	issued := ctrl.Submit(context.Background(), testForm)
	require.NoError(t, issued.Err)
	require.Equal(t, uint64(1), issued.Record.SequentialNumber)
	require.Equal(t, uint64(6), issued.Record.ChequeID.Uint64())

	out := ctrl.Verify(context.Background(), 1)
	require.NoError(t, out.Err)
	require.Len(t, issuer.verified, 1)
	if issuer.verified[0].Cmp(big.NewInt(6)) != 0 {
		t.Fatalf("verified cheque id mismatch: have %v, want 6", issuer.verified[0])
	}
	records, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, chequedb.StatusVerified, records[0].Status)
}

func TestVerifyWithoutContractID(t *testing.T) {
	issuer := new(stubIssuer)
	ctrl, store, _ := newStubController(issuer)

	// A record whose issue was never read back from the contract
	_, err := store.Append(testForm.Record(testAccount))
	require.NoError(t, err)

	out := ctrl.Verify(context.Background(), 1)
	require.ErrorIs(t, out.Err, ErrNoChequeID)
	require.Equal(t, Red, out.Message.Color)
	require.Empty(t, issuer.verified)

	records, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, chequedb.StatusPending, records[0].Status)
}

func TestVerifyFailureKeepsStatus(t *testing.T) {
	issuer := new(stubIssuer)
	ctrl, store, _ := newStubController(issuer)
	require.NoError(t, ctrl.Submit(context.Background(), testForm).Err)

	issuer.err = &txflow.SubmissionError{Method: cheque.MethodVerify, Reason: "already verified", Err: errors.New("execution reverted")}
	out := ctrl.Verify(context.Background(), 1)
	require.Error(t, out.Err)
	require.Equal(t, "already verified", out.Message.Reason)

	records, _ := store.Load()
	require.Equal(t, chequedb.StatusPending, records[0].Status)
}

func TestTabs(t *testing.T) {
	ctrl, _, sessions := newStubController(new(stubIssuer))

	view, err := ctrl.Tab("status")
	require.NoError(t, err)
	require.Equal(t, [][]string{{chequedb.NoRecords}}, view.Rows)

	require.NoError(t, ctrl.Submit(context.Background(), testForm).Err)
	view, err = ctrl.Tab("status")
	require.NoError(t, err)
	require.Len(t, view.Rows, 1)
	require.Equal(t, "ABC Bank", view.Rows[0][2])

	view, err = ctrl.Tab("issue")
	require.NoError(t, err)
	require.Nil(t, view.Rows)

	user, err := ctrl.Open()
	require.NoError(t, err)
	require.True(t, strings.EqualFold(testAccount.Hex(), user.Username))

	view, err = ctrl.Tab("logout")
	require.NoError(t, err)
	require.Equal(t, "/", view.Redirect)
	_, err = sessions.Current()
	require.ErrorIs(t, err, chequedb.ErrNoSession)

	_, err = ctrl.Tab("settings")
	require.ErrorIs(t, err, ErrUnknownTab)
}
