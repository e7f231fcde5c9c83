package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const maxLineBytes = 1024 * 1024

// TailResult holds the lines read and the file offset reading stopped at.
// Feeding the offset into Follow continues where Tail left off.
type TailResult struct {
	Lines  []string
	Offset int64
}

// Tail returns the last limit lines of the log at path. A missing file is
// not an error: a fresh install has nothing to show yet.
func Tail(path string, limit int) (TailResult, error) {
	var result TailResult

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return result, nil
		}
		return result, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return result, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return result, fmt.Errorf("log path %q is a directory", path)
	}
	if limit <= 0 {
		result.Offset = info.Size()
		return result, nil
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	// A ring of the last limit lines keeps memory bounded however large
	// the log has grown.
	ring := make([]string, limit)
	count, next := 0, 0
	for scanner.Scan() {
		ring[next] = scanner.Text()
		next = (next + 1) % limit
		if count < limit {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("read log file: %w", err)
	}

	offset, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		return result, fmt.Errorf("seek log file: %w", err)
	}
	result.Offset = offset

	lines := make([]string, count)
	if count == limit {
		for i := 0; i < count; i++ {
			lines[i] = ring[(next+i)%limit]
		}
	} else {
		copy(lines, ring[:count])
	}
	result.Lines = lines
	return result, nil
}

// Follow emits every line appended after offset until ctx ends. The file is
// polled rather than watched: lines land in bursts during labeling runs and
// a short poll stays correct across truncation.
func Follow(ctx context.Context, path string, offset int64, interval time.Duration, emit func(line string)) error {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		next, err := readAppended(path, offset, emit)
		if err != nil {
			return err
		}
		offset = next

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func readAppended(path string, offset int64, emit func(string)) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return offset, nil
		}
		return offset, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return offset, fmt.Errorf("stat log file: %w", err)
	}
	size := info.Size()
	if size < offset {
		// Truncated or replaced; start over from the top.
		offset = 0
	}
	if size == offset {
		return offset, nil
	}

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return offset, fmt.Errorf("seek log file: %w", err)
	}

	reader := bufio.NewReader(file)
	read := offset
	for {
		line, err := reader.ReadString('\n')
		switch {
		case err == nil:
			read += int64(len(line))
			emit(strings.TrimRight(line, "\n"))
		case errors.Is(err, io.EOF):
			// A partial line stays unread until the writer finishes it.
			return read, nil
		default:
			return read, fmt.Errorf("read log file: %w", err)
		}
	}
}
