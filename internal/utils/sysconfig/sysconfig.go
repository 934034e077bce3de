// Package sysconfig edits shell-style KEY='tok tok' assignments such as the
// OPTIONS line of /etc/sysconfig/docker.
package sysconfig

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/anmitsu/go-shlex"

	"github.com/open-edge-platform/os-envcheck/internal/utils/logger"
)

const (
	DefaultFile = "/etc/sysconfig/docker"
	DefaultKey  = "OPTIONS"
)

var (
	ErrMalformedLine    = errors.New("malformed assignment")
	ErrUnbalancedQuotes = errors.New("unbalanced quotes")
	ErrKeyNotFound      = errors.New("key not found")
)

// EditOptionsString edits an OPTIONS= line.
func EditOptionsString(line string, remove, add []string) (string, error) {
	return EditAssignment(DefaultKey, line, remove, add)
}

// EditAssignment removes and appends whitespace-delimited tokens in the value
// of a "key=value" line. Removed tokens leave their separating spaces behind,
// so dropping a middle token yields a double space. Tokens in add are only
// appended when not already present. The original quote character is kept;
// a bare value that now holds several tokens is single-quoted. The result
// always ends with a newline.
func EditAssignment(key, line string, remove, add []string) (string, error) {
	lhs, rhs, ok := strings.Cut(strings.TrimSpace(line), "=")
	if !ok || strings.TrimSpace(lhs) != key {
		return "", fmt.Errorf("%w: expected %s=..., got %q", ErrMalformedLine, key, line)
	}

	quote, inner, err := unquote(rhs)
	if err != nil {
		return "", fmt.Errorf("%w: %q", err, line)
	}

	tokens := strings.Split(inner, " ")
	for i, tok := range tokens {
		if slices.Contains(remove, tok) {
			tokens[i] = ""
		}
	}
	for _, tok := range add {
		if !slices.Contains(tokens, tok) {
			tokens = append(tokens, tok)
		}
	}
	value := strings.TrimSpace(strings.Join(tokens, " "))

	switch {
	case quote != "":
		value = quote + value + quote
	case len(strings.Fields(value)) > 1:
		value = "'" + value + "'"
	}
	return key + "=" + value + "\n", nil
}

// unquote strips one level of matching quotes from rhs. The value must also
// be a well-formed shell word list.
func unquote(rhs string) (string, string, error) {
	if _, err := shlex.Split(rhs, true); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrUnbalancedQuotes, err)
	}
	if rhs == "" || (rhs[0] != '\'' && rhs[0] != '"') {
		if strings.ContainsAny(rhs, `'"`) {
			return "", "", ErrUnbalancedQuotes
		}
		return "", rhs, nil
	}
	quote := rhs[:1]
	if len(rhs) < 2 || !strings.HasSuffix(rhs, quote) || strings.Contains(rhs[1:len(rhs)-1], quote) {
		return "", "", ErrUnbalancedQuotes
	}
	return quote, rhs[1 : len(rhs)-1], nil
}

// EditFile rewrites the first key= line of a sysconfig file in place and
// returns the new line. The file mode is preserved.
func EditFile(path, key string, remove, add []string) (string, error) {
	log := logger.Logger()

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	lines := strings.SplitAfter(string(content), "\n")
	for i, line := range lines {
		if !strings.HasPrefix(strings.TrimSpace(line), key+"=") {
			continue
		}
		edited, err := EditAssignment(key, line, remove, add)
		if err != nil {
			return "", fmt.Errorf("%s line %d: %w", path, i+1, err)
		}
		if !strings.HasSuffix(line, "\n") {
			edited = strings.TrimSuffix(edited, "\n")
		}
		lines[i] = edited

		if err := os.WriteFile(path, []byte(strings.Join(lines, "")), info.Mode().Perm()); err != nil {
			log.Errorf("Failed to write %s: %v", path, err)
			return "", fmt.Errorf("failed to write %s: %w", path, err)
		}
		log.Infof("Updated %s in %s", key, path)
		return strings.TrimSuffix(edited, "\n"), nil
	}
	return "", fmt.Errorf("%w: %s in %s", ErrKeyNotFound, key, path)
}
