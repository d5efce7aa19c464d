package series

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

const csvDateLayout = "2006-01-02"

// LoadDir reads every *.csv file in dir into a MapStore. Each file holds
// one asset's history as `date,close` rows (header optional); the symbol is
// the file name without extension. Rows that fail to parse are skipped.
func LoadDir(dir string) (*MapStore, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read series dir: %w", err)
	}

	store := NewMapStore()
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		symbol := strings.TrimSuffix(entry.Name(), ".csv")
		s, err := loadFile(filepath.Join(dir, entry.Name()), symbol)
		if err != nil {
			return nil, fmt.Errorf("load series %s: %w", symbol, err)
		}
		if s.Len() > 0 {
			store.Add(s)
		}
	}
	return store, nil
}

func loadFile(path, symbol string) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	type obs struct {
		date  time.Time
		close float64
	}
	var rows []obs
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) < 2 {
			continue
		}
		date, err := time.Parse(csvDateLayout, strings.TrimSpace(rec[0]))
		if err != nil {
			continue // header or malformed row
		}
		close, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			continue
		}
		rows = append(rows, obs{date: date, close: close})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].date.Before(rows[j].date) })

	s := &Series{Symbol: symbol}
	for _, row := range rows {
		s.Dates = append(s.Dates, row.date)
		s.Closes = append(s.Closes, row.close)
	}
	return s, nil
}
