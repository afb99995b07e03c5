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
	"flag"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"
)

// DirectoryString is a flag.Value that expands the received path to an
// absolute, cleaned one.
type DirectoryString string

func (s *DirectoryString) String() string {
	return string(*s)
}

func (s *DirectoryString) Set(value string) error {
	*s = DirectoryString(ExpandPath(value))
	return nil
}

// DirectoryFlag is a cli.Flag holding a path, e.g. ~/.chequedesk becomes
// /home/username/.chequedesk. Unlike cli.PathFlag it expands ~ and embedded
// environment variables.
type DirectoryFlag struct {
	Name string

	Category    string
	DefaultText string
	Usage       string
	EnvVars     []string

	Required   bool
	Hidden     bool
	HasBeenSet bool

	Value DirectoryString

	Aliases []string
}

func (f *DirectoryFlag) Names() []string { return append([]string{f.Name}, f.Aliases...) }
func (f *DirectoryFlag) IsSet() bool     { return f.HasBeenSet }
func (f *DirectoryFlag) String() string  { return cli.FlagStringer(f) }

// Apply registers the flag, taking the initial value from the first set
// environment variable.
func (f *DirectoryFlag) Apply(set *flag.FlagSet) error {
	for _, env := range f.EnvVars {
		if val, ok := os.LookupEnv(env); ok && val != "" {
			f.Value.Set(val)
			f.HasBeenSet = true
			break
		}
	}
	for _, name := range f.Names() {
		set.Var(&f.Value, strings.TrimSpace(name), f.Usage)
	}
	return nil
}

func (f *DirectoryFlag) IsRequired() bool     { return f.Required }
func (f *DirectoryFlag) IsVisible() bool      { return !f.Hidden }
func (f *DirectoryFlag) GetCategory() string  { return f.Category }
func (f *DirectoryFlag) TakesValue() bool     { return true }
func (f *DirectoryFlag) GetUsage() string     { return f.Usage }
func (f *DirectoryFlag) GetValue() string     { return f.Value.String() }
func (f *DirectoryFlag) GetEnvVars() []string { return f.EnvVars }

func (f *DirectoryFlag) GetDefaultText() string {
	if f.DefaultText != "" {
		return f.DefaultText
	}
	return f.GetValue()
}

// ExpandPath expands a file path
// 1. replace tilde with users home dir
// 2. expands embedded environment variables
// 3. cleans the path, e.g. /a/b/../c -> /a/c
// Note, it has limitations, e.g. ~someuser/tmp will not be expanded
func ExpandPath(p string) string {
	if strings.HasPrefix(p, "~/") || strings.HasPrefix(p, "~\\") {
		if home := HomeDir(); home != "" {
			p = home + p[1:]
		}
	}
	return filepath.Clean(os.ExpandEnv(p))
}

// HomeDir returns the home directory of the current user.
func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}
