package dto

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ID accepts a JSON string or number and holds it as a string.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// String returns the raw identifier.
func (id ID) String() string {
	return string(id)
}

// Number accepts a JSON number or numeric string. Anything unparseable decodes to 0.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number(parseFlexFloat(data))
	return nil
}

// Int truncates the value to an int.
func (n Number) Int() int {
	return int(n)
}

// Amount is a money value. It decodes like Number and encodes as a fixed two-decimal string.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	*a = Amount(parseFlexFloat(data))
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatFloat(float64(a), 'f', 2, 64))
}

// Float returns the amount as float64.
func (a Amount) Float() float64 {
	return float64(a)
}

func parseFlexFloat(data []byte) float64 {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return 0
	}
	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0
		}
		raw = strings.TrimSpace(s)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
