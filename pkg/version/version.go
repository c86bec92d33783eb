// pkg/version/version.go

// Package version extracts the version string from a version file.
//
// The file is read as text: only a plain assignment of a string literal to
// one of the accepted symbols is understood, e.g.
//
//	__version__ = "3.1.0"
//	version: str = '1.2.3rc1'  # comment
//
// Nothing in the file is ever executed.
package version

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/logicalclocks/hopsdist/pkg/core"
)

// DefaultSymbols are the attribute names accepted by Load
var DefaultSymbols = []string{"__version__", "version"}

var assignment = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*(?::\s*[A-Za-z_][A-Za-z0-9_.]*\s*)?=\s*(.*)$`)

var literal = regexp.MustCompile(`^(?:"([^"\\]*)"|'([^'\\]*)')\s*(?:#.*)?$`)

// Load opens the version file at path and returns its version string. Any
// failure is reported as a core.ErrVersionLoad error.
func Load(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", core.VersionLoadError(path, err)
	}
	defer f.Close()

	v, err := Parse(f, DefaultSymbols...)
	if err != nil {
		return "", core.VersionLoadError(path, err)
	}
	return v, nil
}

// Parse scans r for assignments to symbols and returns the version. Symbols
// are tried in order: the first one whose last top-level (unindented)
// assignment is a string literal wins. Lines inside triple-quoted strings
// are not code and are skipped.
func Parse(r io.Reader, symbols ...string) (string, error) {
	if len(symbols) == 0 {
		symbols = DefaultSymbols
	}
	wanted := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		wanted[s] = true
	}

	// Last assignment per symbol: either a value or why it is unusable
	values := make(map[string]string)
	problems := make(map[string]error)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	quote := ""
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		inString := quote != ""
		quote = tripleQuoteState(line, quote)
		if inString {
			continue
		}

		m := assignment.FindStringSubmatch(line)
		if m == nil || !wanted[m[1]] {
			continue
		}
		name := m[1]

		v, err := literalValue(m[2])
		if err != nil {
			problems[name] = fmt.Errorf("line %d: %s %w", lineNo, name, err)
			delete(values, name)
			continue
		}
		values[name] = v
		delete(problems, name)
	}

	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("scanning version file: %w", err)
	}

	for _, name := range symbols {
		if v, ok := values[name]; ok {
			return v, nil
		}
	}
	for _, name := range symbols {
		if err, ok := problems[name]; ok {
			return "", err
		}
	}

	return "", fmt.Errorf("looking for %s: %w", strings.Join(symbols, " or "), core.ErrVersionSymbolNotFound)
}

func literalValue(expr string) (string, error) {
	lit := literal.FindStringSubmatch(expr)
	if lit == nil {
		return "", fmt.Errorf("is not assigned a plain string literal: %w", core.ErrMalformedVersion)
	}

	v := lit[1] + lit[2]
	if strings.TrimSpace(v) == "" || v != strings.TrimSpace(v) {
		return "", fmt.Errorf("= %q: %w", v, core.ErrMalformedVersion)
	}
	return v, nil
}

// tripleQuoteState returns the triple-quote delimiter still open after line,
// given the one open before it ("" when outside a string).
func tripleQuoteState(line, open string) string {
	for i := 0; i < len(line); i++ {
		if open == "" {
			if line[i] == '#' {
				return ""
			}
			if strings.HasPrefix(line[i:], `"""`) || strings.HasPrefix(line[i:], "'''") {
				open = line[i : i+3]
				i += 2
			}
			continue
		}
		if line[i] == '\\' {
			i++
			continue
		}
		if strings.HasPrefix(line[i:], open) {
			open = ""
			i += 2
		}
	}
	return open
}

// IsSemver reports whether v is a semantic version (with or without the
// leading "v"). PEP 440 versions such as "3.0.0.dev1" are not.
func IsSemver(v string) bool {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return semver.IsValid(v)
}
