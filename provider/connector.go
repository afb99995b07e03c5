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


// Package provider locates an Ethereum JSON-RPC endpoint to talk to and
// obtains the accounts the user authorized.
package provider

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"
)

// DefaultFallbackURL is the local development node tried last.
const DefaultFallbackURL = "http://127.0.0.1:7545"

// ErrNoProvider is returned if none of the configured endpoints answered.
var ErrNoProvider = errors.New("no ethereum provider found, install or configure a wallet")

// Source tells which candidate endpoint a provider was obtained from.
type Source int

const (
	SourceWallet Source = iota
	SourceLegacy
	SourceFallback
)

func (s Source) String() string {
	switch s {
	case SourceWallet:
		return "wallet"
	case SourceLegacy:
		return "legacy"
	case SourceFallback:
		return "fallback"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// Config lists the candidate endpoints in order of preference. Empty URLs
// are skipped.
type Config struct {
	WalletURL   string `toml:",omitempty"`
	LegacyURL   string `toml:",omitempty"`
	FallbackURL string
}

// DefaultConfig only knows about the local development node.
var DefaultConfig = Config{
	FallbackURL: DefaultFallbackURL,
}

// Provider is a connected endpoint.
type Provider struct {
	RPC      *rpc.Client
	Eth      *ethclient.Client
	Source   Source
	URL      string
	ChainID  *big.Int
	Accounts []common.Address
}

// Account returns the first authorized account.
func (p *Provider) Account() (common.Address, bool) {
	if len(p.Accounts) == 0 {
		return common.Address{}, false
	}
	return p.Accounts[0], true
}

// Close tears down the underlying RPC connection.
func (p *Provider) Close() {
	p.RPC.Close()
}

type candidate struct {
	source Source
	url    string
}

// Connect tries the wallet, legacy and fallback endpoints in that order and
// returns the first one that answers. The wallet endpoint is asked for
// account authorization; a refusal is not fatal.
func Connect(ctx context.Context, config Config) (*Provider, error) {
	candidates := []candidate{
		{SourceWallet, config.WalletURL},
		{SourceLegacy, config.LegacyURL},
		{SourceFallback, config.FallbackURL},
	}
	for _, c := range candidates {
		if c.url == "" {
			continue
		}
		logger := log.New("source", c.source, "url", c.url)
		p, err := dial(ctx, c)
		if err != nil {
			logger.Debug("Provider unavailable", "err", err)
			continue
		}
		if err := p.loadAccounts(ctx, logger); err != nil {
			logger.Warn("Failed to list accounts", "err", err)
		}
		logger.Info("Connected to provider", "chainid", p.ChainID, "accounts", len(p.Accounts))
		return p, nil
	}
	return nil, ErrNoProvider
}

// dial connects to a single candidate. HTTP dials are lazy, so the endpoint is
// only considered present once it answered eth_chainId.
func dial(ctx context.Context, c candidate) (*Provider, error) {
	client, err := rpc.DialContext(ctx, c.url)
	if err != nil {
		return nil, err
	}
	eth := ethclient.NewClient(client)
	chainID, err := eth.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, err
	}
	return &Provider{RPC: client, Eth: eth, Source: c.source, URL: c.url, ChainID: chainID}, nil
}

func (p *Provider) loadAccounts(ctx context.Context, logger log.Logger) error {
	if p.Source == SourceWallet {
		var accounts []common.Address
		if err := p.RPC.CallContext(ctx, &accounts, "eth_requestAccounts"); err != nil {
			logger.Warn("Account authorization denied", "err", err)
		} else {
			p.Accounts = accounts
			return nil
		}
	}
	return p.RPC.CallContext(ctx, &p.Accounts, "eth_accounts")
}
