package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/csy1204/recsys-2019-conf-ver/internal/domain"
)

// CSVSource reads events from a headered CSV file. Columns are matched by
// header name; unknown columns are ignored so loaders can carry extra
// fields for other consumers.
type CSVSource struct {
	file   *os.File
	reader *csv.Reader
	cols   map[string]int
}

// Expected column names.
const (
	colUserID          = "user_id"
	colSessionID       = "session_id"
	colTimestamp       = "timestamp"
	colStep            = "step"
	colStepFromEnd     = "clickout_step_rev"
	colMaxStep         = "clickout_max_step"
	colActionType      = "action_type"
	colReference       = "reference"
	colPlatform        = "platform"
	colCurrentFilters  = "current_filters"
	colImpressions     = "impressions"
	colPrices          = "prices"
	colFakeImpressions = "fake_impressions"
	colIsTest          = "is_test"
)

// OpenCSV opens a CSV event log and validates its header.
func OpenCSV(path string) (*CSVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open events csv: %w", err)
	}

	r := csv.NewReader(f)

	header, err := r.Read()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, required := range []string{colUserID, colSessionID, colTimestamp, colActionType, colReference} {
		if _, ok := cols[required]; !ok {
			f.Close()
			return nil, fmt.Errorf("events csv missing column %q", required)
		}
	}

	return &CSVSource{file: f, reader: r, cols: cols}, nil
}

// Next returns the next event, io.EOF at end of file.
func (s *CSVSource) Next() (*domain.Event, error) {
	record, err := s.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("read csv row: %w", err)
	}

	row := &domain.Event{
		UserID:             s.field(record, colUserID),
		SessionID:          s.field(record, colSessionID),
		ActionType:         domain.ActionType(s.field(record, colActionType)),
		Reference:          s.field(record, colReference),
		Platform:           s.field(record, colPlatform),
		CurrentFilters:     s.field(record, colCurrentFilters),
		ImpressionsRaw:     s.field(record, colImpressions),
		PricesRaw:          s.field(record, colPrices),
		FakeImpressionsRaw: s.field(record, colFakeImpressions),
	}
	row.Timestamp = s.intField(record, colTimestamp)
	row.Step = int(s.intField(record, colStep))
	row.StepFromEnd = int(s.intField(record, colStepFromEnd))
	row.MaxStep = int(s.intField(record, colMaxStep))
	row.IsTest = s.intField(record, colIsTest) != 0

	return row, nil
}

// Close releases the underlying file.
func (s *CSVSource) Close() error {
	return s.file.Close()
}

func (s *CSVSource) field(record []string, name string) string {
	idx, ok := s.cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return record[idx]
}

// intField parses a numeric column, degrading to 0 on malformed input.
func (s *CSVSource) intField(record []string, name string) int64 {
	v := s.field(record, name)
	if v == "" {
		return 0
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
