package clinic

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"vetsys/logging"
)

const maxLineSize = 4 << 20

func orDiscard(log *slog.Logger) *slog.Logger {
	if log == nil {
		return logging.Discard()
	}
	return log
}

// eachDataLine calls fn for every line after the header. Blank lines are skipped.
func eachDataLine(r io.Reader, log *slog.Logger, fn func(lineNo int, line string)) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		if lineNo == 1 {
			continue
		}
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fn(lineNo, line)
	}
	if err := sc.Err(); err != nil {
		log.Warn("stopped reading data file", slog.Int("line", lineNo+1), slog.String("error", err.Error()))
	}
}

// loadFile opens path and hands it to read. An open failure is only logged.
func loadFile(path string, log *slog.Logger, read func(io.Reader)) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		log.Warn("cannot open data file", slog.String("error", err.Error()))
		return
	}
	defer f.Close()
	read(f)
}

// writeFileAtomic writes through a temp file in the target directory, syncs
// it and renames it over path.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := f.Name()

	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
