package common

import (
	"bytes"
	"strconv"

	"github.com/pkg/errors"
)

// FlexID is an int64 identifier that decodes from a JSON number or a JSON
// string and always encodes as a string, so 64-bit ids survive JavaScript clients.
type FlexID int64

func (f FlexID) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(strconv.FormatInt(int64(f), 10))), nil
}

func (f *FlexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	v := string(bytes.Trim(b, `"`))
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return errors.Errorf("invalid id %s", b)
	}
	*f = FlexID(n)
	return nil
}
