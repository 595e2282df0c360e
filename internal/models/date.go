package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Date handles session dates on the wire. Clients may send a full RFC3339
// timestamp or a bare calendar day ("2006-01-02"); responses always carry
// RFC3339.
type Date struct {
	time.Time
}

// DateOnlyLayout is the short form accepted in requests and CSV imports.
const DateOnlyLayout = "2006-01-02"

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return d.Parse(s)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(time.RFC3339))
}

// Parse parses a date string, trying RFC3339 first, then the date-only form.
func (d *Date) Parse(s string) error {
	parsed, err := time.Parse(time.RFC3339, s)
	if err == nil {
		d.Time = parsed
		return nil
	}
	parsed, err2 := time.Parse(DateOnlyLayout, s)
	if err2 == nil {
		d.Time = parsed
		return nil
	}
	return fmt.Errorf("cannot parse date %q: %w", s, err)
}

// ParseDate parses a date string into a time.Time.
func ParseDate(s string) (time.Time, error) {
	var d Date
	if err := d.Parse(s); err != nil {
		return time.Time{}, err
	}
	return d.Time, nil
}
