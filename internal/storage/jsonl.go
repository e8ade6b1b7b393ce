package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/helioweb/helioweb/internal/document"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (16MB per line).
// Institution and concept documents can carry tens of thousands of edges.
const MaxJSONLLineCapacity = 16 * 1024 * 1024

// AssertedEdge is one crowd-asserted edge as recorded in the assertion log.
type AssertedEdge struct {
	Subject string        `json:"s"`
	Edge    document.Edge `json:"edge"`
}

// ReadAll reads all documents from a JSONL file. Every document is validated;
// the first invalid line aborts the read.
func ReadAll(path string) ([]document.Document, error) {
	var docs []document.Document
	err := readJSONL(path, func(lineNum int, line []byte) error {
		var d document.Document
		if err := json.Unmarshal(line, &d); err != nil {
			return fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		if err := d.Validate(); err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
		docs = append(docs, d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// WriteAll writes all documents to a JSONL file, replacing existing content.
func WriteAll(path string, docs []document.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating documents file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i := range docs {
		if err := writeJSONLine(w, docs[i]); err != nil {
			return fmt.Errorf("document %s: %w", docs[i].ID, err)
		}
	}
	return w.Flush()
}

// ReadAllAsserted reads the assertion log. A missing file yields no edges.
func ReadAllAsserted(path string) ([]AssertedEdge, error) {
	var edges []AssertedEdge
	err := readJSONL(path, func(lineNum int, line []byte) error {
		var a AssertedEdge
		if err := json.Unmarshal(line, &a); err != nil {
			return fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		if a.Subject == "" {
			return fmt.Errorf("line %d: %w", lineNum, document.ErrEmptyID)
		}
		edges = append(edges, a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return edges, nil
}

// AppendAsserted adds one edge to the end of the assertion log.
func AppendAsserted(path string, a AssertedEdge) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening assertion log for append: %w", err)
	}
	defer f.Close()

	return writeJSONLine(f, a)
}

// readJSONL calls fn for every non-empty line of path. A missing file is empty.
func readJSONL(path string, fn func(lineNum int, line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	buf := make([]byte, 64*1024)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(lineNum, line); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}

// writeJSONLine marshals v to JSON and writes it as a JSONL line.
func writeJSONLine(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing: %w", err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		return fmt.Errorf("writing newline: %w", err)
	}
	return nil
}
