package fetcher

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"
)

// ReadCSV reads an entire CSV document, returning the header row and the
// data rows. Rows may have variable field counts; quoting is lax because
// portal exports are not always well-formed.
func ReadCSV(r io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, eris.Wrap(err, "csv: read header")
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, eris.Wrap(err, "csv: read row")
		}
		rows = append(rows, record)
	}
	return header, rows, nil
}
