package motionplan

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// LinkPair names two robot links whose collisions are never checked.
type LinkPair struct {
	A, B string
}

// ParseBlacklist reads one comma separated pair of link names per line. Blank lines and lines starting with '#' are
// skipped, surrounding whitespace is ignored.
func ParseBlacklist(r io.Reader) ([]LinkPair, error) {
	var pairs []LinkPair
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Split(text, ",")
		if len(fields) != 2 {
			return nil, NewMalformedBlacklistError(lineNum, text)
		}
		a, b := strings.TrimSpace(fields[0]), strings.TrimSpace(fields[1])
		if a == "" || b == "" {
			return nil, NewMalformedBlacklistError(lineNum, text)
		}
		pairs = append(pairs, LinkPair{A: a, B: b})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read blacklist")
	}
	return pairs, nil
}

// ParseBlacklistFile reads a blacklist from disk.
func ParseBlacklistFile(path string) ([]LinkPair, error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open blacklist")
	}
	defer func() {
		_ = f.Close()
	}()
	return ParseBlacklist(f)
}
