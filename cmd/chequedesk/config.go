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
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/chequedesk/chequedesk/chequedb"
	"github.com/chequedesk/chequedesk/contracts/cheque"
	"github.com/chequedesk/chequedesk/internal/flags"
	"github.com/chequedesk/chequedesk/provider"
	"github.com/chequedesk/chequedesk/txflow"
	"github.com/naoina/toml"
	"github.com/urfave/cli/v2"
)

var dumpConfigCommand = &cli.Command{
	Action:      dumpConfig,
	Name:        "dumpconfig",
	Usage:       "Export configuration values in a TOML format",
	ArgsUsage:   "<dumpfile (optional)>",
	Flags:       deskFlags,
	Description: `Export configuration values in TOML format (to stdout by default).`,
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		id := fmt.Sprintf("%s.%s", rt.String(), field)
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			return fmt.Errorf("field '%s' is not defined in %s, check the %s package for available fields", field, rt.String(), rt.PkgPath())
		}
		return fmt.Errorf("field '%s' is not defined in %s", field, id)
	},
}

// Signer modes.
const (
	signerWallet   = "wallet"
	signerKeystore = "keystore"
)

type contractConfig struct {
	Address string
	ABI     string `toml:",omitempty"`
	Payee   string `toml:",omitempty"`
}

type gasConfig struct {
	IssueFloor  uint64
	VerifyFloor uint64
	MineTimeout time.Duration
}

type storeConfig struct {
	DataDir string
	Engine  string
}

type httpConfig struct {
	ListenAddr  string
	CORSOrigins []string `toml:",omitempty"`
}

type signerConfig struct {
	Mode         string
	KeystoreDir  string `toml:",omitempty"`
	PasswordFile string `toml:",omitempty"`
	From         string `toml:",omitempty"`
}

type deskConfig struct {
	Provider provider.Config
	Contract contractConfig
	Gas      gasConfig
	Store    storeConfig
	HTTP     httpConfig
	Signer   signerConfig
}

// defaultDataDir is the default data directory, ~/.chequedesk.
func defaultDataDir() string {
	if home := flags.HomeDir(); home != "" {
		return filepath.Join(home, ".chequedesk")
	}
	return ".chequedesk"
}

func defaultConfig() deskConfig {
	return deskConfig{
		Provider: provider.DefaultConfig,
		Contract: contractConfig{
			Address: cheque.DefaultAddress,
		},
		Gas: gasConfig{
			IssueFloor:  txflow.IssueGasFloor,
			VerifyFloor: txflow.VerifyGasFloor,
			MineTimeout: 5 * time.Minute,
		},
		Store: storeConfig{
			DataDir: defaultDataDir(),
			Engine:  chequedb.EnginePebble,
		},
		HTTP: httpConfig{
			ListenAddr: "127.0.0.1:8080",
		},
		Signer: signerConfig{
			Mode: signerWallet,
		},
	}
}

// floors returns the gas floors of the workflow.
func (c *deskConfig) floors() txflow.Floors {
	return txflow.Floors{
		cheque.MethodIssue:  c.Gas.IssueFloor,
		cheque.MethodVerify: c.Gas.VerifyFloor,
	}
}

// dbPath returns the location of the cheque database.
func (c *deskConfig) dbPath() string {
	return filepath.Join(c.Store.DataDir, "cheques")
}

func loadConfig(file string, cfg *deskConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// makeConfig builds the configuration from defaults, the config file and the
// command line, in increasing order of precedence.
func makeConfig(ctx *cli.Context) (deskConfig, error) {
	cfg := defaultConfig()
	if file := ctx.String(configFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			return cfg, err
		}
	}
	applyFlags(ctx, &cfg)
	return cfg, cfg.validate()
}

func applyFlags(ctx *cli.Context, cfg *deskConfig) {
	if ctx.IsSet(walletURLFlag.Name) {
		cfg.Provider.WalletURL = ctx.String(walletURLFlag.Name)
	}
	if ctx.IsSet(legacyURLFlag.Name) {
		cfg.Provider.LegacyURL = ctx.String(legacyURLFlag.Name)
	}
	if ctx.IsSet(fallbackURLFlag.Name) {
		cfg.Provider.FallbackURL = ctx.String(fallbackURLFlag.Name)
	}
	if ctx.IsSet(contractAddrFlag.Name) {
		cfg.Contract.Address = ctx.String(contractAddrFlag.Name)
	}
	if ctx.IsSet(abiFlag.Name) {
		cfg.Contract.ABI = ctx.String(abiFlag.Name)
	}
	if ctx.IsSet(payeeFlag.Name) {
		cfg.Contract.Payee = ctx.String(payeeFlag.Name)
	}
	if ctx.IsSet(issueFloorFlag.Name) {
		cfg.Gas.IssueFloor = ctx.Uint64(issueFloorFlag.Name)
	}
	if ctx.IsSet(verifyFloorFlag.Name) {
		cfg.Gas.VerifyFloor = ctx.Uint64(verifyFloorFlag.Name)
	}
	if ctx.IsSet(mineTimeoutFlag.Name) {
		cfg.Gas.MineTimeout = ctx.Duration(mineTimeoutFlag.Name)
	}
	if ctx.IsSet(dataDirFlag.Name) {
		cfg.Store.DataDir = ctx.String(dataDirFlag.Name)
	}
	if ctx.IsSet(dbEngineFlag.Name) {
		cfg.Store.Engine = ctx.String(dbEngineFlag.Name)
	}
	if ctx.IsSet(httpAddrFlag.Name) {
		cfg.HTTP.ListenAddr = ctx.String(httpAddrFlag.Name)
	}
	if ctx.IsSet(httpCORSDomainFlag.Name) {
		cfg.HTTP.CORSOrigins = splitAndTrim(ctx.String(httpCORSDomainFlag.Name))
	}
	if ctx.IsSet(signerFlag.Name) {
		cfg.Signer.Mode = ctx.String(signerFlag.Name)
	}
	if ctx.IsSet(keystoreFlag.Name) {
		cfg.Signer.KeystoreDir = ctx.String(keystoreFlag.Name)
	}
	if ctx.IsSet(passwordFileFlag.Name) {
		cfg.Signer.PasswordFile = ctx.Path(passwordFileFlag.Name)
	}
	if ctx.IsSet(fromFlag.Name) {
		cfg.Signer.From = ctx.String(fromFlag.Name)
	}
}

// validate checks the settings that can be checked without a connection.
func (c *deskConfig) validate() error {
	switch c.Signer.Mode {
	case signerWallet:
	case signerKeystore:
		if c.Signer.KeystoreDir == "" {
			c.Signer.KeystoreDir = filepath.Join(c.Store.DataDir, "keystore")
		}
	default:
		return fmt.Errorf("unknown signer %q, want %q or %q", c.Signer.Mode, signerWallet, signerKeystore)
	}
	switch c.Store.Engine {
	case chequedb.EnginePebble, chequedb.EngineLevelDB, chequedb.EngineMemory:
	default:
		return fmt.Errorf("unknown database engine %q", c.Store.Engine)
	}
	return nil
}

// splitAndTrim splits input separated by a comma
// and trims excessive white space from the substrings.
func splitAndTrim(input string) (ret []string) {
	l := strings.Split(input, ",")
	for _, r := range l {
		if r = strings.TrimSpace(r); r != "" {
			ret = append(ret, r)
		}
	}
	return ret
}

func writeConfig(w io.Writer, cfg *deskConfig) error {
	out, err := tomlSettings.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	dump := os.Stdout
	if ctx.NArg() > 0 {
		dump, err = os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer dump.Close()
	}
	return writeConfig(dump, &cfg)
}
