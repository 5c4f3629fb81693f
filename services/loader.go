package services

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/pgzip"
	"github.com/segmentio/encoding/json"
	"go.uber.org/zap"

	"journal-seeder/models"
)

// Opener opens the byte stream behind a remote input location.
type Opener func(ctx context.Context, location string) (io.ReadCloser, error)

// Loader reads scraped items from a local file or, when Remote is set, from an
// s3:// location.
type Loader struct {
	Logger *zap.Logger
	Remote Opener
}

// NewLoader erstellt einen neuen Loader.
func NewLoader(logger *zap.Logger, remote Opener) *Loader {
	return &Loader{Logger: logger, Remote: remote}
}

// IsRemote reports whether location points at object storage.
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "s3://")
}

// Load opens location and decodes all records in file order.
func (l *Loader) Load(ctx context.Context, location string) ([]models.RawRecord, error) {
	var (
		rc  io.ReadCloser
		err error
	)
	if IsRemote(location) {
		if l.Remote == nil {
			return nil, fmt.Errorf("no object storage configured for %s", location)
		}
		rc, err = l.Remote(ctx, location)
	} else {
		rc, err = os.Open(location)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", location, err)
	}
	defer rc.Close()

	records, err := DecodeRecords(rc, location)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", location, err)
	}
	l.Logger.Info("Loaded items", zap.String("file", location), zap.Int("count", len(records)))
	return records, nil
}

// DecodeRecords decodes r according to name: a ".gz" suffix means gzip, a
// remaining ".jsonl" suffix means one object per line, anything else is a JSON
// array.
func DecodeRecords(r io.Reader, name string) ([]models.RawRecord, error) {
	name = strings.ToLower(name)
	if strings.HasSuffix(name, ".gz") {
		zr, err := pgzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer zr.Close()
		r = zr
		name = strings.TrimSuffix(name, ".gz")
	}
	if strings.HasSuffix(name, ".jsonl") {
		return decodeLines(r)
	}
	return decodeArray(r)
}

func decodeArray(r io.Reader) ([]models.RawRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var records []models.RawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode JSON array: %w", err)
	}
	return records, nil
}

func decodeLines(r io.Reader) ([]models.RawRecord, error) {
	br := bufio.NewReader(r)
	var records []models.RawRecord
	for lineNo := 1; ; lineNo++ {
		line, err := br.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			var rec models.RawRecord
			if jerr := json.Unmarshal(trimmed, &rec); jerr != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, jerr)
			}
			if rec == nil {
				return nil, fmt.Errorf("line %d: expected a JSON object", lineNo)
			}
			records = append(records, rec)
		}
		if errors.Is(err, io.EOF) {
			return records, nil
		}
	}
}
