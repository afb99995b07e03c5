// Copyright 2026 The chequedesk Authors
// This file is part of chequedesk.
//
// chequedesk is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// chequedesk is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with chequedesk. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/chequedesk/chequedesk/chequedb"
	"github.com/chequedesk/chequedesk/contracts/cheque"
	"github.com/chequedesk/chequedesk/provider"
	"github.com/chequedesk/chequedesk/txflow"
	"github.com/chequedesk/chequedesk/ui"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/log"
)

// desk is the assembled application: provider, contract, workflow, store and
// controller, constructed once at startup.
type desk struct {
	config   deskConfig
	provider *provider.Provider
	contract *cheque.Contract
	db       ethdb.KeyValueStore
	ctrl     *ui.Controller
}

// openStore opens the record database.
func openStore(cfg *deskConfig) (ethdb.KeyValueStore, error) {
	if cfg.Store.Engine != chequedb.EngineMemory {
		if err := os.MkdirAll(cfg.Store.DataDir, 0700); err != nil {
			return nil, err
		}
	}
	return chequedb.Open(cfg.Store.Engine, cfg.dbPath())
}

// openDesk connects to a provider and wires every component together.
func openDesk(ctx context.Context, cfg deskConfig) (*desk, error) {
	parsed, err := cheque.LoadABI(cfg.Contract.ABI)
	if err != nil {
		return nil, err
	}
	p, err := provider.Connect(ctx, cfg.Provider)
	if err != nil {
		if errors.Is(err, provider.ErrNoProvider) {
			log.Error("No Ethereum provider found, install a wallet or configure one with --provider.wallet")
		}
		return nil, err
	}
	contract, err := cheque.Bind(cfg.Contract.Address, parsed, p.Eth)
	if err != nil {
		p.Close()
		return nil, err
	}
	account, sender, err := makeSender(&cfg, p)
	if err != nil {
		p.Close()
		return nil, err
	}
	var payee common.Address
	if cfg.Contract.Payee != "" {
		if !common.IsHexAddress(cfg.Contract.Payee) {
			p.Close()
			return nil, fmt.Errorf("invalid payee address %q", cfg.Contract.Payee)
		}
		payee = common.HexToAddress(cfg.Contract.Payee)
	}
	db, err := openStore(&cfg)
	if err != nil {
		p.Close()
		return nil, err
	}
	workflow := txflow.New(contract, p.Eth, sender, txflow.Config{
		Floors:      cfg.floors(),
		MineTimeout: cfg.Gas.MineTimeout,
	})
	ctrl := ui.NewController(workflow, chequedb.New(db), chequedb.NewSessions(db), ui.Config{
		Account: account,
		Payee:   payee,
	})
	log.Info("Cheque desk ready", "contract", contract.Address(), "account", account, "signer", cfg.Signer.Mode, "provider", p.Source)
	return &desk{config: cfg, provider: p, contract: contract, db: db, ctrl: ctrl}, nil
}

// Close releases the database and the provider connection.
func (d *desk) Close() {
	if err := d.db.Close(); err != nil {
		log.Warn("Failed to close cheque database", "err", err)
	}
	d.provider.Close()
}

// makeSender creates the transaction sender for the configured signer mode and
// returns the account it sends from.
func makeSender(cfg *deskConfig, p *provider.Provider) (common.Address, txflow.Sender, error) {
	switch cfg.Signer.Mode {
	case signerKeystore:
		ks := keystore.NewKeyStore(cfg.Signer.KeystoreDir, keystore.StandardScryptN, keystore.StandardScryptP)
		account, err := keystoreAccount(ks, cfg.Signer.From)
		if err != nil {
			return common.Address{}, nil, err
		}
		password, err := readPassword(cfg.Signer.PasswordFile)
		if err != nil {
			return common.Address{}, nil, err
		}
		if err := ks.Unlock(account, password); err != nil {
			return common.Address{}, nil, fmt.Errorf("failed to unlock %s: %v", account.Address, err)
		}
		opts, err := bind.NewKeyStoreTransactorWithChainID(ks, account, p.ChainID)
		if err != nil {
			return common.Address{}, nil, err
		}
		return account.Address, txflow.NewKeyedSender(opts, p.Eth), nil

	default:
		if cfg.Signer.From != "" {
			if !common.IsHexAddress(cfg.Signer.From) {
				return common.Address{}, nil, fmt.Errorf("invalid sender address %q", cfg.Signer.From)
			}
			return common.HexToAddress(cfg.Signer.From), txflow.NewWalletSender(p.RPC), nil
		}
		account, ok := p.Account()
		if !ok {
			return common.Address{}, nil, errors.New("provider exposes no accounts")
		}
		return account, txflow.NewWalletSender(p.RPC), nil
	}
}

// keystoreAccount finds the sender account in the keystore.
func keystoreAccount(ks *keystore.KeyStore, from string) (accounts.Account, error) {
	if from == "" {
		if accs := ks.Accounts(); len(accs) > 0 {
			return accs[0], nil
		}
		return accounts.Account{}, errors.New("keystore holds no accounts")
	}
	if !common.IsHexAddress(from) {
		return accounts.Account{}, fmt.Errorf("invalid sender address %q", from)
	}
	return ks.Find(accounts.Account{Address: common.HexToAddress(from)})
}

// readPassword reads the first line of the password file.
func readPassword(file string) (string, error) {
	if file == "" {
		return "", nil
	}
	blob, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("failed to read password file: %v", err)
	}
	return strings.TrimRight(strings.SplitN(string(blob), "\n", 2)[0], "\r"), nil
}
