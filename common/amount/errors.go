package amount

import "github.com/pkg/errors"

// errors
var (
	ErrInvalidAmountFormat = errors.New("invalid amount format")
	ErrNegativeAmount      = errors.New("negative amount")
)
