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


package provider

import (
	"context"
	"errors"
	"math/big"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

var (
	authorized = common.HexToAddress("0x90F8bf6A479f320ead074411a4B0e7944Ea8c9C1")
	listed     = common.HexToAddress("0xFFcf8FDEE72ac11b5c542428B35EEF5769C409f0")
)

type nodeService struct {
	chainID uint64
	deny    bool
}

func (s *nodeService) ChainId() hexutil.Big {
	return hexutil.Big(*new(big.Int).SetUint64(s.chainID))
}

func (s *nodeService) Accounts() []common.Address {
	return []common.Address{listed}
}

func (s *nodeService) RequestAccounts() ([]common.Address, error) {
	if s.deny {
		return nil, errors.New("user rejected the request")
	}
	return []common.Address{authorized}, nil
}

func newNode(t *testing.T, svc *nodeService) string {
	t.Helper()
	server := rpc.NewServer()
	if err := server.RegisterName("eth", svc); err != nil {
		t.Fatal(err)
	}
	httpsrv := httptest.NewServer(server)
	t.Cleanup(func() {
		httpsrv.Close()
		server.Stop()
	})
	return httpsrv.URL
}

// deadURL points at a port nobody listens on.
const deadURL = "http://127.0.0.1:1"

func TestConnectOrder(t *testing.T) {
	var (
		wallet   = newNode(t, &nodeService{chainID: 1})
		legacy   = newNode(t, &nodeService{chainID: 2})
		fallback = newNode(t, &nodeService{chainID: 3})
	)
	tests := []struct {
		config  Config
		source  Source
		chainID int64
		account common.Address
	}{
		{Config{WalletURL: wallet, LegacyURL: legacy, FallbackURL: fallback}, SourceWallet, 1, authorized},
		{Config{LegacyURL: legacy, FallbackURL: fallback}, SourceLegacy, 2, listed},
		{Config{WalletURL: deadURL, LegacyURL: legacy, FallbackURL: fallback}, SourceLegacy, 2, listed},
		{Config{WalletURL: deadURL, LegacyURL: deadURL, FallbackURL: fallback}, SourceFallback, 3, listed},
	}
	for i, tt := range tests {
		p, err := Connect(context.Background(), tt.config)
		if err != nil {
			t.Fatalf("test %d: connect failed: %v", i, err)
		}
		if p.Source != tt.source {
			t.Errorf("test %d: source mismatch: have %v, want %v", i, p.Source, tt.source)
		}
		if p.ChainID.Int64() != tt.chainID {
			t.Errorf("test %d: chain id mismatch: have %v, want %d", i, p.ChainID, tt.chainID)
		}
		if account, ok := p.Account(); !ok || account != tt.account {
			t.Errorf("test %d: account mismatch: have %v, want %v", i, account, tt.account)
		}
		p.Close()
	}
}

func TestConnectAuthorizationDenied(t *testing.T) {
	wallet := newNode(t, &nodeService{chainID: 1, deny: true})

	p, err := Connect(context.Background(), Config{WalletURL: wallet})
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer p.Close()
	if p.Source != SourceWallet {
		t.Fatalf("source mismatch: have %v, want %v", p.Source, SourceWallet)
	}
	if len(p.Accounts) != 1 || p.Accounts[0] != listed {
		t.Fatalf("accounts mismatch: have %v, want [%v]", p.Accounts, listed)
	}
}

func TestConnectNoProvider(t *testing.T) {
	for i, config := range []Config{
		{},
		{WalletURL: deadURL, LegacyURL: deadURL, FallbackURL: deadURL},
	} {
		if _, err := Connect(context.Background(), config); !errors.Is(err, ErrNoProvider) {
			t.Errorf("test %d: error mismatch: have %v, want %v", i, err, ErrNoProvider)
		}
	}
}

func TestSourceString(t *testing.T) {
	for source, want := range map[Source]string{SourceWallet: "wallet", SourceLegacy: "legacy", SourceFallback: "fallback", Source(7): "source(7)"} {
		if have := source.String(); have != want {
			t.Errorf("source %d: have %q, want %q", int(source), have, want)
		}
	}
}
