package telemetry

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
)

// CSVWriter appends PerfRecords to a CSV stream, writing the header once.
// A nil *CSVWriter discards records.
type CSVWriter struct {
	w             io.Writer
	closer        io.Closer
	headerWritten bool
}

func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: w}
}

// CreateCSV truncates or creates path. An empty path disables output and
// returns a nil writer.
func CreateCSV(path string) (*CSVWriter, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating perf csv: %w", err)
	}
	return &CSVWriter{w: f, closer: f}, nil
}

// Write appends one record.
func (c *CSVWriter) Write(r PerfRecord) error {
	if c == nil {
		return nil
	}

	records := []PerfRecord{r}

	if !c.headerWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, c.w); err != nil {
			return fmt.Errorf("writing perf: %w", err)
		}
		c.headerWritten = true
	} else {
		// Subsequent writes skip headers
		if err := gocsv.MarshalWithoutHeaders(records, c.w); err != nil {
			return fmt.Errorf("writing perf: %w", err)
		}
	}

	return nil
}

// Close closes the underlying file, if CreateCSV opened one.
func (c *CSVWriter) Close() error {
	if c == nil || c.closer == nil {
		return nil
	}
	return c.closer.Close()
}
