// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package command contains the CLI commands and the shared plumbing they
// use for configuration loading, variable gathering, state management, and
// diagnostic rendering.
package command

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/mitchellh/cli"
	"github.com/mitchellh/colorstring"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"

	"github.com/public-datasets/infractl/internal/command/arguments"
	"github.com/public-datasets/infractl/internal/command/format"
	"github.com/public-datasets/infractl/internal/configs"
	"github.com/public-datasets/infractl/internal/engine"
	"github.com/public-datasets/infractl/internal/providers"
	"github.com/public-datasets/infractl/internal/providers/google"
	"github.com/public-datasets/infractl/internal/states/statemgr"
	"github.com/public-datasets/infractl/internal/tfdiags"
)

// DefaultStateFilename is the name of the state file in the working
// directory, unless overridden with -state.
const DefaultStateFilename = "infractl.state"

// Meta contains the meta-options and functionality that nearly every
// command inherits.
type Meta struct {
	// Ui is the user interface to write output to. Commands should use
	// showDiagnostics for diagnostics so they render consistently.
	Ui cli.Ui

	// WorkingDir is the directory containing the stack configuration and,
	// by default, the state file. Empty means the current directory.
	WorkingDir string

	// ClientsFactory constructs the remote API clients. It exists so tests
	// can substitute fakes; when nil, clients are built from ambient Google
	// credentials.
	ClientsFactory func(ctx context.Context) (providers.Clients, error)

	// ShutdownCh receives a value when the user interrupts the command, to
	// cancel in-flight operations.
	ShutdownCh <-chan struct{}

	color bool
	oldUi cli.Ui

	// configSources are the raw files loaded by the most recent call to
	// loadStack, used to include source excerpts in diagnostics.
	configSources map[string]*hcl.File
}

// process arranges the Ui for color handling. It must run before a command
// produces any output.
func (m *Meta) process(noColor bool) {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		noColor = true
	}
	m.color = !noColor

	m.oldUi = m.Ui
	m.Ui = &ColorizeUi{
		Colorize:   m.Colorize(),
		ErrorColor: "[red]",
		WarnColor:  "[yellow]",
		Ui:         m.oldUi,
	}
}

func (m *Meta) Colorize() *colorstring.Colorize {
	return &colorstring.Colorize{
		Colors:  colorstring.DefaultColors,
		Disable: !m.color,
		Reset:   true,
	}
}

// showDiagnostics displays error and warning messages in the UI. The
// arguments are accepted in the same way as tfdiags.Diagnostics.Append.
func (m *Meta) showDiagnostics(vals ...interface{}) {
	var diags tfdiags.Diagnostics
	diags = diags.Append(vals...)

	for _, diag := range diags {
		msg := format.Diagnostic(diag, m.configSources, m.Colorize(), 78)
		switch diag.Severity() {
		case tfdiags.Error:
			m.Ui.Error(msg)
		case tfdiags.Warning:
			m.Ui.Warn(msg)
		default:
			m.Ui.Output(msg)
		}
	}
}

// workingDir resolves the stack directory for this command.
func (m *Meta) workingDir() string {
	if m.WorkingDir != "" {
		return m.WorkingDir
	}
	return "."
}

// configParser returns a new configuration parser over the real filesystem.
func (m *Meta) configParser() *configs.Parser {
	return configs.NewParser(afero.NewOsFs())
}

// loadStack loads the stack configuration from the given directory and
// retains the file sources for diagnostic rendering.
func (m *Meta) loadStack(dir string) (*configs.Stack, tfdiags.Diagnostics) {
	var diags tfdiags.Diagnostics

	parser := m.configParser()
	stack, hclDiags := parser.LoadStackDir(dir)
	m.configSources = parser.Sources()
	diags = diags.Append(hclDiags)
	return stack, diags
}

// statePath resolves the state file location, honoring -state.
func (m *Meta) statePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return filepath.Join(m.workingDir(), DefaultStateFilename)
}

// stateManager returns the state manager for the given path. With lock set
// to false the returned manager skips the advisory lock file.
func (m *Meta) stateManager(path string, lock bool) statemgr.Full {
	mgr := statemgr.NewFilesystem(path)
	if !lock {
		log.Printf("[INFO] command: state locking is disabled")
		return &statemgr.LockDisabled{Inner: mgr}
	}
	return mgr
}

// engine builds a reconciliation engine with live API clients. The returned
// closer must be called when the operation completes.
func (m *Meta) engine(ctx context.Context, hooks []engine.Hook) (*engine.Engine, func() error, error) {
	factory := m.ClientsFactory
	if factory == nil {
		factory = func(ctx context.Context) (providers.Clients, error) {
			return google.NewClients(ctx, "")
		}
	}
	clients, err := factory(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to configure Google Cloud clients: %w", err)
	}
	return &engine.Engine{Clients: clients, Hooks: hooks}, clients.Close, nil
}

// operationContext returns a context that is cancelled if the user
// interrupts the command.
func (m *Meta) operationContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	if m.ShutdownCh != nil {
		go func() {
			select {
			case <-m.ShutdownCh:
				log.Printf("[WARN] command: interrupt received, cancelling operation")
				cancel()
			case <-ctx.Done():
			}
		}()
	}
	return ctx, cancel
}

// collectVariableValues gathers raw values for input variables from the
// environment, from automatically loaded values files in the stack
// directory, and from -var and -var-file arguments, applying them in
// increasing order of priority.
func (m *Meta) collectVariableValues(dir string, vars *arguments.Vars) (map[string]cty.Value, tfdiags.Diagnostics) {
	var diags tfdiags.Diagnostics
	ret := map[string]cty.Value{}
	parser := m.configParser()

	// Lowest priority: *.auto.pdvars.hcl files, in lexical order.
	autoFiles, err := parser.AutoValuesFiles(dir)
	if err != nil {
		diags = diags.Append(tfdiags.Sourceless(
			tfdiags.Error,
			"Failed to read stack directory",
			fmt.Sprintf("Error while looking for automatic variable files in %s: %s.", dir, err),
		))
		return ret, diags
	}
	for _, path := range autoFiles {
		vals, hclDiags := parser.LoadValuesFile(path)
		diags = diags.Append(hclDiags)
		for k, v := range vals {
			ret[k] = v
		}
	}
	// Next: environment variables.
	env := os.Environ()
	sort.Strings(env)
	for _, raw := range env {
		if !strings.HasPrefix(raw, engine.VarEnvPrefix) {
			continue
		}
		raw = raw[len(engine.VarEnvPrefix):]
		eq := strings.Index(raw, "=")
		if eq == -1 {
			continue
		}
		name := raw[:eq]
		ret[name] = cty.StringVal(raw[eq+1:])
	}

	// Highest priority: -var and -var-file arguments, in the order they
	// were given so later arguments win.
	for _, arg := range vars.All() {
		switch arg.Name {
		case "-var":
			name, val, moreDiags := parseVarFlag(arg.Value)
			diags = diags.Append(moreDiags)
			if !moreDiags.HasErrors() {
				ret[name] = val
			}
		case "-var-file":
			vals, hclDiags := parser.LoadValuesFile(arg.Value)
			diags = diags.Append(hclDiags)
			for k, v := range vals {
				ret[k] = v
			}
		default:
			// Should never happen: the arguments package only gathers the
			// two flag names above.
			diags = diags.Append(tfdiags.Sourceless(
				tfdiags.Error,
				"Invalid variable flag",
				fmt.Sprintf("Unsupported variable argument %s.", arg),
			))
		}
	}

	// Keep any values-file sources for diagnostic excerpts.
	if m.configSources == nil {
		m.configSources = map[string]*hcl.File{}
	}
	for name, file := range parser.Sources() {
		m.configSources[name] = file
	}

	return ret, diags
}

// parseVarFlag interprets one -var NAME=VALUE argument. The value portion
// is first parsed as an HCL expression so rich types can be set from the
// command line; if it isn't valid HCL it is taken as a literal string.
func parseVarFlag(raw string) (string, cty.Value, tfdiags.Diagnostics) {
	var diags tfdiags.Diagnostics

	eq := strings.Index(raw, "=")
	if eq == -1 {
		diags = diags.Append(tfdiags.Sourceless(
			tfdiags.Error,
			"Invalid -var option",
			fmt.Sprintf("The given -var option %q is not correctly specified. Must be a variable name and value separated by an equals sign, like -var=\"key=value\".", raw),
		))
		return "", cty.NilVal, diags
	}

	name := raw[:eq]
	rawVal := raw[eq+1:]

	expr, parseDiags := hclsyntax.ParseExpression([]byte(rawVal), fmt.Sprintf("<value for var.%s>", name), hcl.Pos{Line: 1, Column: 1})
	if !parseDiags.HasErrors() {
		val, evalDiags := expr.Value(nil)
		if !evalDiags.HasErrors() {
			return name, val, diags
		}
	}

	return name, cty.StringVal(rawVal), diags
}
