// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package tfdiags

// Sourceless creates and returns a diagnostic with no source location
// information. This is generally used for operational-type errors that are
// caused by or relate to the environment where infractl is running rather
// than to the provided configuration.
func Sourceless(severity Severity, summary, detail string) Diagnostic {
	return sourcelessDiagnostic{
		severity: severity,
		summary:  summary,
		detail:   detail,
	}
}

type sourcelessDiagnostic struct {
	severity Severity
	summary  string
	detail   string
}

var _ Diagnostic = sourcelessDiagnostic{}

func (e sourcelessDiagnostic) Severity() Severity {
	return e.severity
}

func (e sourcelessDiagnostic) Description() Description {
	return Description{
		Summary: e.summary,
		Detail:  e.detail,
	}
}

func (e sourcelessDiagnostic) Source() Source {
	// No source information available for a sourceless diagnostic
	return Source{}
}

func (e sourcelessDiagnostic) FromExpr() *FromExpr {
	return nil
}
