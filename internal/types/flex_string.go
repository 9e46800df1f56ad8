package types

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// FlexString is a form value that can be unmarshaled from a JSON string, number or boolean.
// Numbers keep their literal text so that "29" and 29 parse the same way later on.
type FlexString string

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}

	// Numbers and booleans are kept verbatim
	*f = FlexString(data)
	return nil
}

// String returns the value with surrounding whitespace removed
func (f FlexString) String() string {
	return strings.TrimSpace(string(f))
}

// IsEmpty reports whether the value is blank
func (f FlexString) IsEmpty() bool {
	return f.String() == ""
}

// Int parses the value as an integer. Whole-number floats such as "29.0" are accepted.
func (f FlexString) Int() (int, bool) {
	s := f.String()
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	if v, ok := f.Float(); ok && v == math.Trunc(v) && math.Abs(v) <= math.MaxInt32 {
		return int(v), true
	}
	return 0, false
}

// IntOrZero parses the value as an integer, 0 when it does not parse
func (f FlexString) IntOrZero() int {
	n, _ := f.Int()
	return n
}

// Float parses the value as a finite float. NaN and infinities do not parse.
func (f FlexString) Float() (float64, bool) {
	v, err := strconv.ParseFloat(f.String(), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// FloatOrZero parses the value as a float, 0 when it does not parse.
func (f FlexString) FloatOrZero() float64 {
	v, _ := f.Float()
	return v
}
