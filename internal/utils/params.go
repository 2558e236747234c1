package utils

import (
	"net/url"
	"strconv"
)

// ParseFloatParam parses a float query parameter, recording a field error on
// failure.
func ParseFloatParam(queryParams url.Values, name string, fieldErrors map[string][]string) (float64, error) {
	raw := queryParams.Get(name)
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		fieldErrors[name] = append(fieldErrors[name], "must be a valid number")
		return 0, err
	}
	return value, nil
}

// ParseIntParam parses an integer query parameter, recording a field error on
// failure.
func ParseIntParam(queryParams url.Values, name string, fieldErrors map[string][]string) (int, error) {
	raw := queryParams.Get(name)
	value, err := strconv.Atoi(raw)
	if err != nil {
		fieldErrors[name] = append(fieldErrors[name], "must be a valid integer")
		return 0, err
	}
	return value, nil
}
