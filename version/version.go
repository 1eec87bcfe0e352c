// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package version contains the version information for infractl.
package version

import (
	"fmt"

	version "github.com/hashicorp/go-version"
)

// rawVersion is the main version number that is being run at the moment,
// populated by the build process with -ldflags for release builds.
var rawVersion = "0.3.0"

// dev determines whether the -dev prerelease marker will
// be included in version info. It is expected to be set to "no" using
// linker flags when building binaries for release.
var dev string = "yes"

// The prerelease marker for the version. If this is "" (empty string)
// then it means that it is a final release. Otherwise, this is a pre-release
// such as "dev" (in development), "beta", "rc1", etc.
var Prerelease = func() string {
	if dev == "no" {
		return ""
	}
	return "dev"
}()

// Version is the current version of infractl, without any prerelease
// marker.
var Version = rawVersion

// SemVer is an instance of version.Version representing the main version
// without any prerelease information.
var SemVer *version.Version

func init() {
	SemVer = version.Must(version.NewVersion(Version))
}

// String returns the complete version string, including prerelease
func String() string {
	if Prerelease != "" {
		return fmt.Sprintf("%s-%s", Version, Prerelease)
	}
	return Version
}
