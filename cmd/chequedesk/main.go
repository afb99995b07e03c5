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

// chequedesk is a front end for the cheque issuance contract. It serves the
// issue and status pages over HTTP and offers the same operations on the
// command line.
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/chequedesk/chequedesk/internal/flags"
	"github.com/chequedesk/chequedesk/internal/version"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
)

const envPrefix = "CHEQUEDESK"

var app = flags.NewApp("issue and verify cheques on the cheque issuance contract")

// deskFlags configure every command that touches the desk.
var deskFlags = flags.Merge([]cli.Flag{configFileFlag}, providerFlags, contractFlags, storeFlags, httpFlags, signerFlags)

var versionCommand = &cli.Command{
	Action:    printVersion,
	Name:      "version",
	Usage:     "Print version numbers",
	ArgsUsage: " ",
}

func init() {
	app.Action = serve
	app.Flags = flags.Merge(deskFlags, logFlags)
	app.Commands = []*cli.Command{
		serveCommand,
		issueCommand,
		verifyCommand,
		statusCommand,
		dumpConfigCommand,
		versionCommand,
	}
	flags.AutoEnvVars(app.Flags, envPrefix)

	app.Before = func(ctx *cli.Context) error {
		flags.MigrateGlobalFlags(ctx)
		if err := setupLogging(ctx); err != nil {
			return err
		}
		flags.CheckEnvVars(ctx, app.Flags, envPrefix)
		return nil
	}
	app.After = func(ctx *cli.Context) error {
		closeLogging()
		return nil
	}
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			log.Crit("Unrecovered panic", "err", r, "stack", string(debug.Stack()))
		}
	}()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printVersion(ctx *cli.Context) error {
	fmt.Println("Chequedesk")
	fmt.Print(version.Full())
	return nil
}
