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


// Package ui implements the cheque desk front end: the issue and status tabs,
// form handling and the session marker, served over HTTP.
package ui

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/chequedesk/chequedesk/chequedb"
	"github.com/chequedesk/chequedesk/contracts/cheque"
	"github.com/chequedesk/chequedesk/txflow"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
)

// Messages shown to the user.
const (
	MsgMissingFields = "Please fill all fields"
	MsgIssued        = "Cheque issued successfully"
	MsgVerified      = "Cheque verified successfully"
	MsgIssueFailed   = "Failed to issue cheque"
	MsgVerifyFailed  = "Failed to verify cheque"
)

var (
	// ErrIncompleteForm is returned if a submitted form has blank fields.
	ErrIncompleteForm = errors.New("incomplete cheque form")

	// ErrUnknownTab is returned for tab names other than issue, status and logout.
	ErrUnknownTab = errors.New("unknown tab")

	// ErrNoChequeID is returned when verifying a record whose contract id was
	// never read back.
	ErrNoChequeID = errors.New("cheque id on contract unknown")
)

// Issuer submits cheque transactions. It is satisfied by *txflow.Workflow.
type Issuer interface {
	Issue(ctx context.Context, from, payee common.Address, amount *big.Int) (*txflow.Result, error)
	Verify(ctx context.Context, from common.Address, id *big.Int) (*txflow.Result, error)
}

// Color is the color a result message is rendered in.
type Color string

const (
	Green Color = "green"
	Red   Color = "red"
)

// Message is the single line of feedback shown after an action.
type Message struct {
	Text   string `json:"message"`
	Color  Color  `json:"color"`
	Reason string `json:"reason,omitempty"` // decoded revert reason, if any
}

func success(text string) *Message { return &Message{Text: text, Color: Green} }
func failure(text string) *Message { return &Message{Text: text, Color: Red} }

// Outcome is the result of a submit or verify action.
type Outcome struct {
	Message *Message         `json:"result"`
	Record  *chequedb.Record `json:"record,omitempty"`
	TxHash  *common.Hash     `json:"txHash,omitempty"`
	Err     error            `json:"-"`
}

// Tab names a section of the page.
type Tab string

const (
	TabIssue  Tab = "issue"
	TabStatus Tab = "status"
	TabLogout Tab = "logout"
)

// View is what a tab switch produces.
type View struct {
	Tab      Tab
	Rows     [][]string // record table, status tab only
	Redirect string     // where to navigate after logout
}

// Config holds the identities the controller acts for.
type Config struct {
	Account   common.Address // sender of all transactions
	Payee     common.Address // payee of issued cheques, the account if zero
	LogoutURL string         // page shown after logout, "/" if empty
}

// Controller binds the workflow and the record store together.
type Controller struct {
	issuer   Issuer
	store    chequedb.Store
	sessions *chequedb.Sessions
	account  common.Address
	payee    common.Address
	logout   string
	log      log.Logger
}

// NewController creates a controller acting for config.Account.
func NewController(issuer Issuer, store chequedb.Store, sessions *chequedb.Sessions, config Config) *Controller {
	c := &Controller{
		issuer:   issuer,
		store:    store,
		sessions: sessions,
		account:  config.Account,
		payee:    config.Payee,
		logout:   config.LogoutURL,
		log:      log.New("account", config.Account),
	}
	if c.payee == (common.Address{}) {
		c.payee = c.account
	}
	if c.logout == "" {
		c.logout = "/"
	}
	return c
}

// Account returns the sender account.
func (c *Controller) Account() common.Address {
	return c.account
}

// Open creates the login session on first use and returns it.
func (c *Controller) Open() (*chequedb.LoginUser, error) {
	return c.sessions.Ensure(c.account.Hex())
}

// Records returns all stored cheque records.
func (c *Controller) Records() ([]chequedb.Record, error) {
	return c.store.Load()
}

// Tab switches to the named tab. The status tab is rebuilt from the store on
// every switch and logout ends the session.
func (c *Controller) Tab(name string) (*View, error) {
	switch Tab(name) {
	case TabIssue:
		return &View{Tab: TabIssue}, nil
	case TabStatus:
		records, err := c.store.Load()
		if err != nil {
			return nil, err
		}
		return &View{Tab: TabStatus, Rows: chequedb.Rows(records)}, nil
	case TabLogout:
		if err := c.Logout(); err != nil {
			return nil, err
		}
		return &View{Tab: TabLogout, Redirect: c.logout}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTab, name)
}

// Logout removes the session marker.
func (c *Controller) Logout() error {
	c.log.Info("Logging out")
	return c.sessions.Logout()
}

// Submit issues a cheque for a filled in form. Only a mined, successful issue
// transaction produces a record.
func (c *Controller) Submit(ctx context.Context, form chequedb.Form) *Outcome {
	if !form.Complete() {
		return &Outcome{Message: failure(MsgMissingFields), Err: ErrIncompleteForm}
	}
	amount, err := cheque.ToWei(form.Amount)
	if err != nil {
		return &Outcome{Message: failure(fmt.Sprintf("%s: %v", MsgIssueFailed, err)), Err: err}
	}
	logger := c.log.New("bank", form.BankName, "receiver", form.ReceiverName, "amount", form.Amount)
	res, err := c.issuer.Issue(ctx, c.account, c.payee, amount)
	if err != nil {
		logger.Error("Cheque issuance failed", "err", err)
		return c.failed(MsgIssueFailed, err)
	}
	rec := form.Record(c.account)
	if rec.ChequeID = issuedID(res); rec.ChequeID == nil {
		logger.Warn("Issued cheque id not read back, verification disabled", "tx", res.TxHash)
	}
	records, err := c.store.Append(rec)
	if err != nil {
		logger.Error("Failed to store issued cheque", "tx", res.TxHash, "err", err)
		return &Outcome{Message: failure(fmt.Sprintf("%s: %v", MsgIssueFailed, err)), TxHash: &res.TxHash, Err: err}
	}
	record := records[len(records)-1]
	logger.Info("Cheque issued", "seq", record.SequentialNumber, "id", record.ChequeID, "tx", res.TxHash)
	return &Outcome{Message: success(MsgIssued), Record: &record, TxHash: &res.TxHash}
}

// issuedID returns the contract id of a freshly issued cheque, or nil if it
// could not be determined.
func issuedID(res *txflow.Result) *big.Int {
	for _, id := range []*big.Int{res.ID, res.Count} {
		if id != nil && id.Sign() > 0 {
			return new(big.Int).Set(id)
		}
	}
	return nil
}

// Verify verifies the cheque with the given sequential number on chain and
// marks the local record as verified. The transaction targets the contract id
// stored with the record.
func (c *Controller) Verify(ctx context.Context, seq uint64) *Outcome {
	records, err := c.store.Load()
	if err != nil {
		return &Outcome{Message: failure(fmt.Sprintf("%s: %v", MsgVerifyFailed, err)), Err: err}
	}
	if seq == 0 || seq > uint64(len(records)) {
		err := fmt.Errorf("%w: #%d", chequedb.ErrUnknownCheque, seq)
		return &Outcome{Message: failure(fmt.Sprintf("%s: %v", MsgVerifyFailed, err)), Err: err}
	}
	id := records[seq-1].ChequeID
	if id == nil || id.Sign() <= 0 {
		err := fmt.Errorf("%w: #%d", ErrNoChequeID, seq)
		return &Outcome{Message: failure(fmt.Sprintf("%s: %v", MsgVerifyFailed, err)), Err: err}
	}
	res, err := c.issuer.Verify(ctx, c.account, new(big.Int).Set(id))
	if err != nil {
		c.log.Error("Cheque verification failed", "seq", seq, "id", id, "err", err)
		return c.failed(MsgVerifyFailed, err)
	}
	if err := c.store.SetStatus(seq, chequedb.StatusVerified); err != nil {
		return &Outcome{Message: failure(fmt.Sprintf("%s: %v", MsgVerifyFailed, err)), TxHash: &res.TxHash, Err: err}
	}
	record := records[seq-1]
	record.Status = chequedb.StatusVerified
	return &Outcome{Message: success(MsgVerified), Record: &record, TxHash: &res.TxHash}
}

// failed condenses a workflow error into one red message, preferring the
// decoded revert reason over the raw error.
func (c *Controller) failed(prefix string, err error) *Outcome {
	msg := failure(fmt.Sprintf("%s: %v", prefix, err))
	if serr, ok := txflow.IsSubmissionError(err); ok && serr.Reason != "" {
		msg.Text = fmt.Sprintf("%s: %s", prefix, serr.Reason)
		msg.Reason = serr.Reason
	}
	return &Outcome{Message: msg, Err: err}
}
