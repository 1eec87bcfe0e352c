// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package httpclient provides the User-Agent conventions shared by all
// outgoing API requests.
package httpclient

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/public-datasets/infractl/version"
)

const uaEnvVar = "INFRACTL_APPEND_USER_AGENT"

const DefaultUA = "infractl"

// UserAgentString returns the User-Agent value to send on API requests,
// including the running version and any operator-supplied suffix from the
// INFRACTL_APPEND_USER_AGENT environment variable.
func UserAgentString() string {
	ua := fmt.Sprintf("%s/%s (+https://github.com/public-datasets/infractl)", DefaultUA, version.String())

	if add := os.Getenv(uaEnvVar); add != "" {
		add = strings.TrimSpace(add)
		if len(add) > 0 {
			ua += " " + add
			log.Printf("[DEBUG] Using modified User-Agent: %s", ua)
		}
	}

	return ua
}
