package models

import (
	"time"

	"spotmerge.hitchmap.org/internal/clock"
)

// ResponseModel Base response structure that can be reused
type ResponseModel struct {
	Code        int         `json:"code"`
	CurrentTime int64       `json:"currentTime"`
	Data        interface{} `json:"data,omitempty"`
	Text        string      `json:"text"`
	Version     int         `json:"version"`
}

// NewResponseWithClock creates a standard response using the provided clock.
func NewResponseWithClock(code int, data interface{}, text string, c clock.Clock) ResponseModel {
	return ResponseModel{
		Code:        code,
		CurrentTime: ResponseCurrentTimeWithClock(c),
		Data:        data,
		Text:        text,
		Version:     2,
	}
}

// NewOKResponseWithClock creates a successful response using the provided clock.
func NewOKResponseWithClock(data interface{}, c clock.Clock) ResponseModel {
	return NewResponseWithClock(200, data, "OK", c)
}

// NewOKResponse is a helper function that returns a successful response.
func NewOKResponse(data interface{}) ResponseModel {
	return NewOKResponseWithClock(data, clock.SystemClock{})
}

// NewEntryResponse wraps a single entry in the standard envelope.
func NewEntryResponse(entry interface{}, c clock.Clock) ResponseModel {
	data := map[string]interface{}{
		"entry": entry,
	}
	return NewOKResponseWithClock(data, c)
}

// NewListResponse wraps a list in the standard envelope.
func NewListResponse(list interface{}, c clock.Clock) ResponseModel {
	data := map[string]interface{}{
		"limitExceeded": false,
		"list":          list,
	}
	return NewOKResponseWithClock(data, c)
}

// ResponseCurrentTimeWithClock returns the envelope timestamp in epoch millis.
func ResponseCurrentTimeWithClock(c clock.Clock) int64 {
	return c.Now().UnixNano() / int64(time.Millisecond)
}
