package visit

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Clients send vitals and the follow-up date as numbers, numeric strings,
// or empty strings. An absent key means "leave alone", an empty string
// means "not provided" and persists as NULL, anything else must parse.
// The three-way result is (value, provided, error).

func intField(name string, raw interface{}) (*int, bool, error) {
	f, provided, err := floatField(name, raw)
	if err != nil || f == nil {
		return nil, provided, err
	}
	if *f != math.Trunc(*f) {
		return nil, true, fmt.Errorf("%s must be a whole number", name)
	}
	n := int(*f)
	return &n, true, nil
}

func floatField(name string, raw interface{}) (*float64, bool, error) {
	switch v := raw.(type) {
	case nil:
		return nil, false, nil
	case float64:
		return &v, true, nil
	case string:
		if v == "" {
			return nil, true, nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, true, fmt.Errorf("%s must be numeric", name)
		}
		return &f, true, nil
	default:
		return nil, true, fmt.Errorf("%s must be numeric", name)
	}
}

func dateField(name string, raw interface{}) (*time.Time, bool, error) {
	switch v := raw.(type) {
	case nil:
		return nil, false, nil
	case string:
		if v == "" {
			return nil, true, nil
		}
		for _, layout := range []string{"2006-01-02", time.RFC3339} {
			if t, err := time.Parse(layout, v); err == nil {
				return &t, true, nil
			}
		}
		return nil, true, fmt.Errorf("%s must be a date (YYYY-MM-DD)", name)
	default:
		return nil, true, fmt.Errorf("%s must be a date string", name)
	}
}
