// Package client implements the polling side of the tracker: a poll loop
// against the status endpoint and a dispatcher for the control commands.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexFloat decodes a JSON number that may arrive either bare or
// string-encoded, which the status endpoint historically did for the
// coordinate fields.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("parse %q as number: %w", s, err)
		}
		*f = FlexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = FlexFloat(v)
	return nil
}

// Status is the decoded ?status document.
type Status struct {
	Lon      FlexFloat `json:"lon"`
	Lat      FlexFloat `json:"lat"`
	Az       FlexFloat `json:"az"`
	Alt      FlexFloat `json:"alt"`
	Time     string    `json:"time"`
	Interval FlexFloat `json:"interval"`
	Log      []string  `json:"log"`
}
