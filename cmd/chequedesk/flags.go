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
	"github.com/chequedesk/chequedesk/internal/flags"
	"github.com/urfave/cli/v2"
)

var (
	configFileFlag = &cli.StringFlag{
		Name:     "config",
		Usage:    "TOML configuration file",
		Category: flags.MiscCategory,
	}

	// Provider
	walletURLFlag = &cli.StringFlag{
		Name:     "provider.wallet",
		Usage:    "Wallet JSON-RPC endpoint, asked for account authorization",
		Category: flags.ProviderCategory,
	}
	legacyURLFlag = &cli.StringFlag{
		Name:     "provider.legacy",
		Usage:    "Legacy JSON-RPC endpoint exposing unlocked accounts",
		Category: flags.ProviderCategory,
	}
	fallbackURLFlag = &cli.StringFlag{
		Name:     "provider.fallback",
		Usage:    "Local development node used when no other endpoint answers",
		Category: flags.ProviderCategory,
	}

	// Contract
	contractAddrFlag = &cli.StringFlag{
		Name:     "contract.address",
		Usage:    "Address of the cheque contract",
		Category: flags.ContractCategory,
	}
	abiFlag = &cli.StringFlag{
		Name:     "contract.abi",
		Aliases:  []string{"abi"},
		Usage:    "Contract artifact with an abi member (built-in artifact if empty)",
		Category: flags.ContractCategory,
	}
	payeeFlag = &cli.StringFlag{
		Name:     "contract.payee",
		Usage:    "Payee of issued cheques (defaults to the sender account)",
		Category: flags.ContractCategory,
	}
	issueFloorFlag = &cli.Uint64Flag{
		Name:     "gas.issuefloor",
		Usage:    "Minimum gas limit sent with issueCheque",
		Category: flags.ContractCategory,
	}
	verifyFloorFlag = &cli.Uint64Flag{
		Name:     "gas.verifyfloor",
		Usage:    "Minimum gas limit sent with verifyCheque",
		Category: flags.ContractCategory,
	}
	mineTimeoutFlag = &cli.DurationFlag{
		Name:     "gas.timeout",
		Usage:    "Maximum time to wait for a transaction to be mined (0 = no limit)",
		Category: flags.ContractCategory,
	}

	// Store
	dataDirFlag = &flags.DirectoryFlag{
		Name:     "datadir",
		Usage:    "Data directory for the cheque database",
		Category: flags.StoreCategory,
	}
	dbEngineFlag = &cli.StringFlag{
		Name:     "db.engine",
		Usage:    "Backing database implementation to use ('pebble', 'leveldb' or 'memory')",
		Category: flags.StoreCategory,
	}

	// HTTP
	httpAddrFlag = &cli.StringFlag{
		Name:     "http.addr",
		Usage:    "HTTP server listening address",
		Category: flags.HTTPCategory,
	}
	httpCORSDomainFlag = &cli.StringFlag{
		Name:     "http.corsdomain",
		Usage:    "Comma separated list of domains from which to accept cross origin API requests",
		Category: flags.HTTPCategory,
	}
	metricsEnabledFlag = &cli.BoolFlag{
		Name:     "metrics",
		Usage:    "Enable metrics collection and reporting",
		Category: flags.HTTPCategory,
	}
	metricsAddrFlag = &cli.StringFlag{
		Name:     "metrics.addr",
		Usage:    "Listening address of the prometheus metrics server",
		Value:    "127.0.0.1:6060",
		Category: flags.HTTPCategory,
	}

	// Signer
	signerFlag = &cli.StringFlag{
		Name:     "signer",
		Usage:    "Transaction signer ('wallet' signs through the provider, 'keystore' signs locally)",
		Category: flags.SignerCategory,
	}
	keystoreFlag = &flags.DirectoryFlag{
		Name:     "keystore",
		Usage:    "Directory for the keystore",
		Category: flags.SignerCategory,
	}
	passwordFileFlag = &cli.PathFlag{
		Name:     "password",
		Usage:    "Password file to use for unlocking the keystore account",
		Category: flags.SignerCategory,
	}
	fromFlag = &cli.StringFlag{
		Name:     "from",
		Usage:    "Sender account (first available account if empty)",
		Category: flags.SignerCategory,
	}

	// Logging
	verbosityFlag = &cli.IntFlag{
		Name:     "verbosity",
		Usage:    "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value:    3,
		Category: flags.LoggingCategory,
	}
	logVmoduleFlag = &cli.StringFlag{
		Name:     "log.vmodule",
		Usage:    "Per-module verbosity: comma-separated list of <pattern>=<level> (e.g. txflow/*=5)",
		Category: flags.LoggingCategory,
	}
	logFormatFlag = &cli.StringFlag{
		Name:     "log.format",
		Usage:    "Log format to use (json|logfmt|terminal)",
		Category: flags.LoggingCategory,
	}
	logFileFlag = &cli.StringFlag{
		Name:     "log.file",
		Usage:    "Write logs to a file",
		Category: flags.LoggingCategory,
	}
	logRotateFlag = &cli.BoolFlag{
		Name:     "log.rotate",
		Usage:    "Enables log file rotation",
		Category: flags.LoggingCategory,
	}
	logMaxSizeMBsFlag = &cli.IntFlag{
		Name:     "log.maxsize",
		Usage:    "Maximum size in MBs of a single log file",
		Value:    100,
		Category: flags.LoggingCategory,
	}
	logMaxBackupsFlag = &cli.IntFlag{
		Name:     "log.maxbackups",
		Usage:    "Maximum number of log files to retain",
		Value:    10,
		Category: flags.LoggingCategory,
	}
	logMaxAgeFlag = &cli.IntFlag{
		Name:     "log.maxage",
		Usage:    "Maximum number of days to retain a log file",
		Value:    30,
		Category: flags.LoggingCategory,
	}
	logCompressFlag = &cli.BoolFlag{
		Name:     "log.compress",
		Usage:    "Compress the log files",
		Value:    false,
		Category: flags.LoggingCategory,
	}
)

var (
	providerFlags = []cli.Flag{
		walletURLFlag,
		legacyURLFlag,
		fallbackURLFlag,
	}
	contractFlags = []cli.Flag{
		contractAddrFlag,
		abiFlag,
		payeeFlag,
		issueFloorFlag,
		verifyFloorFlag,
		mineTimeoutFlag,
	}
	storeFlags = []cli.Flag{
		dataDirFlag,
		dbEngineFlag,
	}
	httpFlags = []cli.Flag{
		httpAddrFlag,
		httpCORSDomainFlag,
		metricsEnabledFlag,
		metricsAddrFlag,
	}
	signerFlags = []cli.Flag{
		signerFlag,
		keystoreFlag,
		passwordFileFlag,
		fromFlag,
	}
	logFlags = []cli.Flag{
		verbosityFlag,
		logVmoduleFlag,
		logFormatFlag,
		logFileFlag,
		logRotateFlag,
		logMaxSizeMBsFlag,
		logMaxBackupsFlag,
		logMaxAgeFlag,
		logCompressFlag,
	}
)
