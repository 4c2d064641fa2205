package bench

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/iamasit07/c4search/internal/domain"
	"github.com/klauspost/compress/zstd"
)

// LoadStates reads one position per line. Only the first field is used, so
// "<moves> <expected score>" test sets load as they are. Blank lines and lines
// starting with # are skipped. limit <= 0 reads everything.
func LoadStates(r io.Reader, limit int) ([]string, error) {
	var states []string
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if _, err := domain.FromMoves(fields[0]); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		states = append(states, fields[0])
		if limit > 0 && len(states) == limit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read states: %w", err)
	}
	return states, nil
}

// LoadStatesFile opens path, decompressing it when it ends in .zst.
func LoadStatesFile(path string, limit int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if !strings.HasSuffix(path, ".zst") {
		return LoadStates(f, limit)
	}
	zr, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer zr.Close()
	return LoadStates(zr, limit)
}
