// Package input reads query-key lists from plain text files.
package input

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadLines returns the non-blank lines of the file in order, each trimmed of
// surrounding whitespace. A limit greater than zero truncates the result to
// the first limit entries.
func ReadLines(path string, limit int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}
	defer f.Close()

	var keys []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		keys = append(keys, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input file: %w", err)
	}
	return truncate(keys, limit), nil
}

// ReadTokens returns the whitespace-separated tokens of the file in order.
// The detail input format allows several identifiers per line.
func ReadTokens(path string, limit int) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input file: %w", err)
	}
	return truncate(strings.Fields(string(data)), limit), nil
}

func truncate(keys []string, limit int) []string {
	if limit > 0 && len(keys) > limit {
		return keys[:limit]
	}
	return keys
}
