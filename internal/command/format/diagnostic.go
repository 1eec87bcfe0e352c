// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package format

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/mitchellh/colorstring"
	wordwrap "github.com/mitchellh/go-wordwrap"

	"github.com/public-datasets/infractl/internal/tfdiags"
)

var disabledColorize = &colorstring.Colorize{
	Colors:  colorstring.DefaultColors,
	Disable: true,
}

// Diagnostic formats a single diagnostic message.
//
// The width argument specifies at what column the detail text will be
// wrapped. If set to zero, messages will not be wrapped by this function at
// all. The sources map is used to include an excerpt of the offending
// configuration line, when the diagnostic has a source location.
func Diagnostic(diag tfdiags.Diagnostic, sources map[string]*hcl.File, color *colorstring.Colorize, width int) string {
	if diag == nil {
		return ""
	}
	if color == nil {
		color = disabledColorize
	}

	var buf bytes.Buffer

	// The left rule visually delimits the diagnostic from surrounding
	// output, since diagnostics often appear alongside other messages.
	var leftRuleLine, leftRuleStart, leftRuleEnd string
	var leftRuleWidth int

	switch diag.Severity() {
	case tfdiags.Error:
		buf.WriteString(color.Color("[bold][red]Error: [reset]"))
		leftRuleLine = color.Color("[red]│[reset] ")
		leftRuleStart = color.Color("[red]╷[reset]")
		leftRuleEnd = color.Color("[red]╵[reset]")
		leftRuleWidth = 2
	case tfdiags.Warning:
		buf.WriteString(color.Color("[bold][yellow]Warning: [reset]"))
		leftRuleLine = color.Color("[yellow]│[reset] ")
		leftRuleStart = color.Color("[yellow]╷[reset]")
		leftRuleEnd = color.Color("[yellow]╵[reset]")
		leftRuleWidth = 2
	default:
		buf.WriteString(color.Color("\n[reset]"))
	}

	desc := diag.Description()

	// The summary is expected to be terse and may carry the text of a
	// native Go error, so it is not word-wrapped.
	fmt.Fprintf(&buf, color.Color("[bold]%s[reset]\n\n"), ReplaceControlChars(desc.Summary))

	appendSourceSnippet(&buf, diag, sources, color)

	if desc.Detail != "" {
		paraWidth := width - leftRuleWidth - 1
		if paraWidth > 0 {
			for _, line := range strings.Split(ReplaceControlChars(desc.Detail), "\n") {
				if !strings.HasPrefix(line, " ") {
					line = wordwrap.WrapString(line, uint(paraWidth))
				}
				fmt.Fprintf(&buf, "%s\n", line)
			}
		} else {
			fmt.Fprintf(&buf, "%s\n", ReplaceControlChars(desc.Detail))
		}
	}

	// Add the left rule prefixes to each generated line so the overall
	// message reads as a single unit.
	var ruleBuf strings.Builder
	sc := bufio.NewScanner(&buf)
	ruleBuf.WriteString(leftRuleStart)
	ruleBuf.WriteByte('\n')
	for sc.Scan() {
		line := sc.Text()
		prefix := leftRuleLine
		if line == "" {
			prefix = strings.TrimSpace(prefix)
		}
		ruleBuf.WriteString(prefix)
		ruleBuf.WriteString(line)
		ruleBuf.WriteByte('\n')
	}
	ruleBuf.WriteString(leftRuleEnd)
	ruleBuf.WriteByte('\n')

	return ruleBuf.String()
}

func appendSourceSnippet(buf *bytes.Buffer, diag tfdiags.Diagnostic, sources map[string]*hcl.File, color *colorstring.Colorize) {
	source := diag.Source()
	if source.Subject == nil {
		return
	}
	rng := source.Subject

	fmt.Fprintf(buf, color.Color("[dark_gray]  on %s line %d:[reset]\n"), rng.Filename, rng.Start.Line)

	if file, ok := sources[rng.Filename]; ok && len(file.Bytes) > 0 {
		lines := strings.Split(string(file.Bytes), "\n")
		if rng.Start.Line >= 1 && rng.Start.Line <= len(lines) {
			line := strings.TrimRight(lines[rng.Start.Line-1], "\r\n")
			fmt.Fprintf(buf, "%4d: %s\n", rng.Start.Line, ReplaceControlChars(line))
		}
	}

	buf.WriteByte('\n')
}
