package source

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Review texts can run long; lines above this size are discarded the same way
// malformed lines are.
const maxLineBytes = 16 * 1024 * 1024

// jsonlStream reads newline-delimited JSON objects across one or more files.
// Blank, malformed, and oversized lines are skipped silently: they are
// acceptable data loss, not a reason to abort a pass.
type jsonlStream struct {
	paths  []string
	file   *os.File
	gz     *gzip.Reader
	reader *bufio.Reader
}

func newJSONLStream(paths []string) *jsonlStream {
	return &jsonlStream{paths: paths}
}

func (s *jsonlStream) Next() (Record, error) {
	for {
		if s.reader == nil {
			if len(s.paths) == 0 {
				return nil, io.EOF
			}
			if err := s.openNext(); err != nil {
				return nil, err
			}
		}

		for {
			line, ok, err := s.nextLine()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("read jsonl: %w", err)
			}
			if !ok {
				continue
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			var record Record
			if err := json.Unmarshal([]byte(line), &record); err != nil {
				continue
			}
			return record, nil
		}

		if err := s.closeCurrent(); err != nil {
			return nil, err
		}
	}
}

// nextLine reads one line from the current file. Lines longer than
// maxLineBytes are consumed to their terminator but reported as not ok, so an
// oversized record costs its own bytes and nothing else.
func (s *jsonlStream) nextLine() (string, bool, error) {
	var buf []byte
	oversized := false
	for {
		chunk, isPrefix, err := s.reader.ReadLine()
		if err != nil {
			return "", false, err
		}
		if !oversized {
			if len(buf)+len(chunk) > maxLineBytes {
				oversized = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if !isPrefix {
			if oversized {
				return "", false, nil
			}
			return string(buf), true, nil
		}
	}
}

func (s *jsonlStream) openNext() error {
	path := s.paths[0]
	s.paths = s.paths[1:]

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open jsonl %s: %w", path, err)
	}
	s.file = file

	var reader io.Reader = file
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			_ = file.Close()
			s.file = nil
			return fmt.Errorf("open gzip %s: %w", path, err)
		}
		s.gz = gz
		reader = gz
	}

	s.reader = bufio.NewReaderSize(reader, 64*1024)
	return nil
}

func (s *jsonlStream) closeCurrent() error {
	s.reader = nil
	var err error
	if s.gz != nil {
		err = s.gz.Close()
		s.gz = nil
	}
	if s.file != nil {
		if closeErr := s.file.Close(); err == nil {
			err = closeErr
		}
		s.file = nil
	}
	return err
}

func (s *jsonlStream) Close() error {
	s.paths = nil
	return s.closeCurrent()
}
