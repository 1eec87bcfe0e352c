// Copyright (c) The OpenTofu Authors
// SPDX-License-Identifier: MPL-2.0
// Copyright (c) 2023 HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package configs

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/spf13/afero"
)

// Parser is the main interface to read configuration files and other related
// files from disk.
//
// It retains a cache of all files that are loaded so that they can be used
// to create source code snippets in diagnostics, etc.
type Parser struct {
	fs afero.Afero
	p  *hclparse.Parser
}

// NewParser creates and returns a parser that reads files from the given
// filesystem. If a nil filesystem is passed, the system's "real" filesystem
// will be used, via afero.OsFs.
func NewParser(fs afero.Fs) *Parser {
	if fs == nil {
		fs = afero.OsFs{}
	}

	return &Parser{
		fs: afero.Afero{Fs: fs},
		p:  hclparse.NewParser(),
	}
}

// LoadHCLFile is a low-level method that reads the file at the given path,
// parses it, and returns the hcl.Body representing its root. In many cases
// it is better to use one of the other Load*File methods on this type,
// which additionally decode the root body in some way and return a higher
// level construct.
func (p *Parser) LoadHCLFile(path string) (hcl.Body, hcl.Diagnostics) {
	src, err := p.fs.ReadFile(path)

	if err != nil {
		return nil, hcl.Diagnostics{
			{
				Severity: hcl.DiagError,
				Summary:  "Failed to read file",
				Detail:   fmt.Sprintf("The file %q could not be read.", path),
			},
		}
	}

	file, diags := p.p.ParseHCL(src, path)
	if file == nil || file.Body == nil {
		return hcl.EmptyBody(), diags
	}

	return file.Body, diags
}

// Sources returns a map of the cached source buffers for all files that
// have been loaded through this parser, with source filenames (as requested
// when each file was opened) as the keys.
func (p *Parser) Sources() map[string]*hcl.File {
	return p.p.Files()
}

// ConfigDirFiles returns the stack configuration files in the given
// directory, in lexicographic order.
func (p *Parser) ConfigDirFiles(dir string) ([]string, error) {
	infos, err := p.fs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []string
	for _, info := range infos {
		if info.IsDir() {
			// We only care about files
			continue
		}

		name := info.Name()
		if !strings.HasSuffix(name, configFileSuffix) || isIgnoredFile(name) {
			continue
		}

		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)

	return files, nil
}

// configFileSuffix is the required suffix for stack configuration files.
// Variable-value files use valuesFileSuffix instead.
const (
	configFileSuffix = ".pd.hcl"
	valuesFileSuffix = ".pdvars.hcl"
)

// AutoValuesFiles returns the variable-value files in the given directory
// whose names mark them for automatic loading, in lexicographic order.
func (p *Parser) AutoValuesFiles(dir string) ([]string, error) {
	infos, err := p.fs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []string
	for _, info := range infos {
		if info.IsDir() {
			continue
		}

		name := info.Name()
		if !strings.HasSuffix(name, ".auto"+valuesFileSuffix) || isIgnoredFile(name) {
			continue
		}

		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)

	return files, nil
}

// isIgnoredFile returns true if the given filename (which must not have a
// directory path ahead of it) should be ignored as e.g. an editor swap file.
func isIgnoredFile(name string) bool {
	return strings.HasPrefix(name, ".") || // Unix-like hidden files
		strings.HasSuffix(name, "~") || // vim
		strings.HasPrefix(name, "#") && strings.HasSuffix(name, "#") // emacs
}
