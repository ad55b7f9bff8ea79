package util

import (
	"bytes"
	"math/big"
	"time"

	"github.com/pkg/errors"
)

// errors
var (
	ErrNameTooLong = errors.New("name is longer than 32 bytes")
)

// ToUnixTimestamp returns the seconds since the epoch of the time
func ToUnixTimestamp(t time.Time) *big.Int {
	return big.NewInt(t.Unix())
}

// FromUnixTimestamp returns the UTC time of the seconds since the epoch
func FromUnixTimestamp(v *big.Int) time.Time {
	if v == nil {
		return time.Time{}
	}
	return time.Unix(v.Int64(), 0).UTC()
}

// StringToBytes32 returns the raw ascii bytes of the name padded to 32 bytes
func StringToBytes32(name string) ([32]byte, error) {
	var bs [32]byte
	if len(name) > len(bs) {
		return bs, ErrNameTooLong
	}
	copy(bs[:], name)
	return bs, nil
}

// Bytes32ToString returns the text of the padded bytes32 value
func Bytes32ToString(bs [32]byte) string {
	return string(bytes.TrimRight(bs[:], "\x00"))
}
