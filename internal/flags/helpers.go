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


package flags

import (
	"fmt"
	"os"
	"strings"

	"github.com/chequedesk/chequedesk/internal/version"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
)

// Flag categories shown in the help output.
const (
	ProviderCategory = "PROVIDER"
	ContractCategory = "CONTRACT"
	SignerCategory   = "SIGNER"
	StoreCategory    = "STORE"
	HTTPCategory     = "HTTP"
	LoggingCategory  = "LOGGING AND DEBUGGING"
	MiscCategory     = "MISC"
)

// NewApp creates an app with sane defaults.
func NewApp(usage string) *cli.App {
	v, vcs := version.Info()
	if vcs != "" {
		v += "-" + vcs
	}
	app := cli.NewApp()
	app.EnableBashCompletion = true
	app.Version = v
	app.Usage = usage
	app.Copyright = "Copyright 2026 The chequedesk Authors"
	return app
}

// Merge merges the given flag slices.
func Merge(groups ...[]cli.Flag) []cli.Flag {
	var ret []cli.Flag
	for _, group := range groups {
		ret = append(ret, group...)
	}
	return ret
}

// MigrateGlobalFlags makes all global flag values available in the
// context. This should be called as early as possible in app.Before.
//
// Example:
//
//	chequedesk --datadir /tmp/desk status
//
// is equivalent to
//
//	chequedesk status --datadir /tmp/desk
func MigrateGlobalFlags(ctx *cli.Context) {
	var iterate func(cs []*cli.Command, fn func(*cli.Command))
	iterate = func(cs []*cli.Command, fn func(*cli.Command)) {
		for _, cmd := range cs {
			fn(cmd)
			iterate(cmd.Subcommands, fn)
		}
	}
	// This iterates over all commands and wraps their action function.
	iterate(ctx.App.Commands, func(cmd *cli.Command) {
		if cmd.Action == nil {
			return
		}
		action := cmd.Action
		cmd.Action = func(ctx *cli.Context) error {
			doMigrateFlags(ctx)
			return action(ctx)
		}
	})
}

func doMigrateFlags(ctx *cli.Context) {
	// Aliases are served next to their canonical names, skip them so slice
	// flags are not set twice.
	aliases := make(map[string]bool)
	for _, fl := range ctx.Command.Flags {
		for _, alias := range fl.Names()[1:] {
			aliases[alias] = true
		}
	}
	for _, name := range ctx.FlagNames() {
		if aliases[name] {
			continue
		}
		for _, parent := range ctx.Lineage()[1:] {
			if parent.IsSet(name) {
				if result := parent.StringSlice(name); len(result) > 0 {
					ctx.Set(name, strings.Join(result, ","))
				} else {
					ctx.Set(name, parent.String(name))
				}
				break
			}
		}
	}
}

// envName turns a flag name like log.file into PREFIX_LOG_FILE.
func envName(prefix, name string) string {
	name = strings.NewReplacer(".", "_", "-", "_").Replace(name)
	return strings.ToUpper(prefix + "_" + name)
}

// AutoEnvVars extends all the specific CLI flags with automatically generated
// env vars by capitalizing the flag and prefixing it with the given prefix.
func AutoEnvVars(flags []cli.Flag, prefix string) {
	for _, flag := range flags {
		envvar := envName(prefix, flag.Names()[0])

		switch flag := flag.(type) {
		case *cli.StringFlag:
			flag.EnvVars = append(flag.EnvVars, envvar)

		case *cli.StringSliceFlag:
			flag.EnvVars = append(flag.EnvVars, envvar)

		case *cli.BoolFlag:
			flag.EnvVars = append(flag.EnvVars, envvar)

		case *cli.IntFlag:
			flag.EnvVars = append(flag.EnvVars, envvar)

		case *cli.Uint64Flag:
			flag.EnvVars = append(flag.EnvVars, envvar)

		case *cli.DurationFlag:
			flag.EnvVars = append(flag.EnvVars, envvar)

		case *cli.PathFlag:
			flag.EnvVars = append(flag.EnvVars, envvar)

		case *DirectoryFlag:
			flag.EnvVars = append(flag.EnvVars, envvar)
		}
	}
}

// CheckEnvVars reports environment variables carrying the given prefix: the
// ones that set a flag are logged, unknown ones are warned about.
func CheckEnvVars(ctx *cli.Context, flags []cli.Flag, prefix string) {
	known := make(map[string]string)
	for _, flag := range flags {
		known[envName(prefix, flag.Names()[0])] = flag.Names()[0]
	}
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, prefix+"_") {
			continue
		}
		key := strings.SplitN(env, "=", 2)[0]
		name, ok := known[key]
		if !ok {
			log.Warn("Unknown environment variable", "envvar", key)
			continue
		}
		if ctx.IsSet(name) {
			log.Info("Config environment variable found", "envvar", key)
		}
	}
}

// CheckExclusive verifies that only a single instance of the provided flags was
// set by the user.
func CheckExclusive(ctx *cli.Context, flags ...cli.Flag) error {
	var set []string
	for _, flag := range flags {
		name := flag.Names()[0]
		if ctx.IsSet(name) {
			set = append(set, "--"+name)
		}
	}
	if len(set) > 1 {
		return fmt.Errorf("flags %v can't be used at the same time", strings.Join(set, ", "))
	}
	return nil
}
