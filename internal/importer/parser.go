package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/claude/nextset/internal/models"
)

// requiredColumns must all appear in the header, in any order. A calories
// column is optional.
var requiredColumns = []string{"date", "exercise", "set_number", "weight", "reps", "intensity"}

// ParseCSV reads a training-history export and groups its rows into per-day
// session requests, oldest day first. A day's calories is the first
// non-empty calories value among its rows.
func ParseCSV(r io.Reader) ([]models.LogSessionRequest, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	calIdx, hasCalories := cols["calories"]

	type day struct {
		date     models.Date
		calories *int
		sets     []models.SetInput
	}
	days := make(map[string]*day)
	var keys []string

	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		date, err := models.ParseDate(record[cols["date"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		weight, err := strconv.ParseFloat(record[cols["weight"]], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parsing weight %q: %w", line, record[cols["weight"]], err)
		}
		setNumber, err := strconv.Atoi(record[cols["set_number"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: parsing set_number %q: %w", line, record[cols["set_number"]], err)
		}
		reps, err := strconv.Atoi(record[cols["reps"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: parsing reps %q: %w", line, record[cols["reps"]], err)
		}
		intensity, err := strconv.Atoi(record[cols["intensity"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: parsing intensity %q: %w", line, record[cols["intensity"]], err)
		}

		key := date.Format(models.DateOnlyLayout)
		d, ok := days[key]
		if !ok {
			d = &day{date: models.Date{Time: date}}
			days[key] = d
			keys = append(keys, key)
		}
		if hasCalories && d.calories == nil {
			if raw := strings.TrimSpace(record[calIdx]); raw != "" {
				cal, err := strconv.Atoi(raw)
				if err != nil {
					return nil, fmt.Errorf("line %d: parsing calories %q: %w", line, raw, err)
				}
				d.calories = &cal
			}
		}
		d.sets = append(d.sets, models.SetInput{
			Exercise:  strings.TrimSpace(record[cols["exercise"]]),
			SetNumber: setNumber,
			Weight:    weight,
			Reps:      reps,
			Intensity: intensity,
		})
	}

	sort.Strings(keys)
	requests := make([]models.LogSessionRequest, 0, len(keys))
	for _, key := range keys {
		d := days[key]
		date := d.date
		requests = append(requests, models.LogSessionRequest{
			Date:     &date,
			Calories: d.calories,
			Sets:     d.sets,
		})
	}
	return requests, nil
}
