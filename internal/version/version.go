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


// Package version reports the chequedesk release and the VCS state it was
// built from.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"
)

const (
	Major = 0 // Major version component of the current release
	Minor = 3 // Minor version component of the current release
	Patch = 0 // Patch version component of the current release
	Meta  = "unstable"
)

const ourPath = "github.com/chequedesk/chequedesk" // Path to our module

// Semantic holds the textual version string.
var Semantic = fmt.Sprintf("%d.%d.%d", Major, Minor, Patch)

// WithMeta holds the textual version string including the metadata.
var WithMeta = func() string {
	v := Semantic
	if Meta != "" {
		v += "-" + Meta
	}
	return v
}()

// Set by the build script through -ldflags "-X ..." if present.
var gitCommit, gitDate string

// VCSInfo describes the commit a binary was built from.
type VCSInfo struct {
	Commit string // head commit hash
	Date   string // commit time in YYYYMMDD format
	Dirty  bool
}

// VCS returns version control information of the running binary.
func VCS() (VCSInfo, bool) {
	if gitCommit != "" {
		return VCSInfo{Commit: gitCommit, Date: gitDate}, true
	}
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Path != ourPath {
		return VCSInfo{}, false
	}
	var status VCSInfo
	for _, v := range info.Settings {
		switch v.Key {
		case "vcs.revision":
			status.Commit = v.Value
		case "vcs.modified":
			status.Dirty = v.Value == "true"
		case "vcs.time":
			t, err := time.Parse(time.RFC3339, v.Value)
			if err == nil {
				status.Date = t.UTC().Format("20060102")
			}
		}
	}
	return status, status.Commit != ""
}

// WithCommit returns the version string with a short commit suffix.
func WithCommit(commit, date string) string {
	v := WithMeta
	if len(commit) >= 8 {
		v += "-" + commit[:8]
	}
	if Meta != "stable" && date != "" {
		v += "-" + date
	}
	return v
}

// Info returns the release version and a short VCS description.
func Info() (version, vcs string) {
	version = WithMeta
	status, ok := VCS()
	if !ok {
		return version, ""
	}
	commit := status.Commit
	if len(commit) > 8 {
		commit = commit[:8]
	}
	vcs = commit + "-" + status.Date
	if status.Dirty {
		vcs += " (dirty)"
	}
	return version, vcs
}

// Full is the multi line description printed by the version command.
func Full() string {
	version, vcs := Info()
	s := fmt.Sprintf("Version: %s\n", version)
	if vcs != "" {
		s += fmt.Sprintf("Git Commit: %s\n", vcs)
	}
	s += fmt.Sprintf("Architecture: %s\nGo Version: %s\nOperating System: %s\n", runtime.GOARCH, runtime.Version(), runtime.GOOS)
	return s
}
