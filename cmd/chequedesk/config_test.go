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
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chequedesk/chequedesk/chequedb"
	"github.com/chequedesk/chequedesk/contracts/cheque"
	"github.com/chequedesk/chequedesk/txflow"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestConfigRoundTrip(t *testing.T) {
	cfg := defaultConfig()
	cfg.Provider.WalletURL = "http://127.0.0.1:8545"
	cfg.Contract.Payee = "0x2222222222222222222222222222222222222222"
	cfg.Gas.MineTimeout = 90 * time.Second
	cfg.HTTP.CORSOrigins = []string{"http://localhost:3000"}
	cfg.Signer = signerConfig{Mode: signerKeystore, KeystoreDir: "/tmp/keys", PasswordFile: "/tmp/pw"}

	var buf bytes.Buffer
	require.NoError(t, writeConfig(&buf, &cfg))

	file := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(file, buf.Bytes(), 0644))

	var loaded deskConfig
	require.NoError(t, loadConfig(file, &loaded))
	require.Equal(t, cfg, loaded)
}

func TestConfigUnknownField(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(file, []byte("[Store]\nDataDir = \"/tmp\"\nCacheSize = 12\n"), 0644))

	cfg := defaultConfig()
	err := loadConfig(file, &cfg)
	require.Error(t, err)
	require.True(t, strings.HasPrefix(err.Error(), file+", "), "error lacks file name: %v", err)
	require.Contains(t, err.Error(), "CacheSize")
}

// runWithFlags parses args against the desk flags and returns the resulting
// configuration.
func runWithFlags(t *testing.T, args ...string) (deskConfig, error) {
	t.Helper()
	var (
		cfg deskConfig
		err error
	)
	app := &cli.App{
		Flags: deskFlags,
		Action: func(ctx *cli.Context) error {
			cfg, err = makeConfig(ctx)
			return nil
		},
	}
	require.NoError(t, app.Run(append([]string{"chequedesk"}, args...)))
	return cfg, err
}

func TestMakeConfig(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(file, []byte("[Contract]\nAddress = \"0x1111111111111111111111111111111111111111\"\n\n[Gas]\nIssueFloor = 350000\n"), 0644))

	cfg, err := runWithFlags(t,
		"--config", file,
		"--gas.verifyfloor", "120000",
		"--http.corsdomain", "http://a.example, http://b.example,",
		"--db.engine", "memory",
		"--provider.fallback", "http://127.0.0.1:8545",
	)
	require.NoError(t, err)
	require.Equal(t, "0x1111111111111111111111111111111111111111", cfg.Contract.Address)
	require.Equal(t, txflow.Floors{cheque.MethodIssue: 350000, cheque.MethodVerify: 120000}, cfg.floors())
	require.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.HTTP.CORSOrigins)
	require.Equal(t, chequedb.EngineMemory, cfg.Store.Engine)
	require.Equal(t, "http://127.0.0.1:8545", cfg.Provider.FallbackURL)
	require.Equal(t, signerWallet, cfg.Signer.Mode)
}

func TestValidateConfig(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.validate())

	cfg.Signer.Mode = "ledger"
	require.Error(t, cfg.validate())

	cfg = defaultConfig()
	cfg.Store.Engine = "rocksdb"
	require.Error(t, cfg.validate())

	cfg = defaultConfig()
	cfg.Signer.Mode = signerKeystore
	require.NoError(t, cfg.validate())
	require.Equal(t, filepath.Join(cfg.Store.DataDir, "keystore"), cfg.Signer.KeystoreDir)
}

func TestSplitAndTrim(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, splitAndTrim(" a ,, b ,"))
	require.Empty(t, splitAndTrim(""))
}

func TestRenderRecords(t *testing.T) {
	var buf bytes.Buffer
	renderRecords(&buf, nil)
	require.Contains(t, buf.String(), chequedb.NoRecords)

	buf.Reset()
	renderRecords(&buf, []chequedb.Record{{
		Sender:           common.HexToAddress("0x90F8bf6A479f320ead074411a4B0e7944Ea8c9C1"),
		BankName:         "ABC Bank",
		ReceiverName:     "Alice",
		Amount:           "10",
		ChequeDate:       "2024-01-01",
		SequentialNumber: 1,
		Status:           chequedb.StatusPending,
	}})
	out := buf.String()
	require.NotContains(t, out, chequedb.NoRecords)
	for _, want := range []string{"ABC Bank", "Alice", "2024-01-01", "Pending", "0x90F8bf6A479f320ead074411a4B0e7944Ea8c9C1"} {
		require.Contains(t, out, want)
	}
}

func TestReadPassword(t *testing.T) {
	file := filepath.Join(t.TempDir(), "password")
	require.NoError(t, os.WriteFile(file, []byte("hunter2\r\nignored\n"), 0600))

	pw, err := readPassword(file)
	require.NoError(t, err)
	require.Equal(t, "hunter2", pw)

	pw, err = readPassword("")
	require.NoError(t, err)
	require.Empty(t, pw)
}
