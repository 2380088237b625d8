package napfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/evatlas/chargefeed/internal/domain"
)

// readCSV maps each data row onto the header row's column names. All values
// stay strings; unit and number coercion is the normalizer's job.
func readCSV(path string) ([]domain.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // ragged rows appear in real NAP exports
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	var records []domain.RawRecord
	for line := 2; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		rec := domain.NewRawRecord()
		for i, name := range header {
			if name == "" {
				continue
			}
			if i >= len(row) || row[i] == "" {
				rec.Set(name, domain.Null())
				continue
			}
			rec.Set(name, domain.String(row[i]))
		}
		records = append(records, rec)
	}
	return records, nil
}
