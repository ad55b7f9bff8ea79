package contract

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
)

// errors
var (
	ErrInvalidContract   = errors.New("invalid contract")
	ErrTransactionFailed = errors.New("transaction failed")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNoSigner          = errors.New("no signing account")
	ErrNoBackend         = errors.New("no backend")
)

// TransactionError is returned when the node rejects or reverts a contract
// call. It matches ErrTransactionFailed with errors.Is.
type TransactionError struct {
	Contract common.Address
	Method   string
	Reason   string // decoded revert reason, empty when the node sent none
	Err      error
}

func (e *TransactionError) Error() string {
	if len(e.Reason) > 0 {
		return fmt.Sprintf("%v: %s.%s: execution reverted: %s", ErrTransactionFailed, e.Contract.Hex(), e.Method, e.Reason)
	}
	return fmt.Sprintf("%v: %s.%s: %v", ErrTransactionFailed, e.Contract.Hex(), e.Method, e.Err)
}

// Unwrap returns the backend error
func (e *TransactionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrTransactionFailed
func (e *TransactionError) Is(target error) bool {
	return target == ErrTransactionFailed
}

// revertReason extracts the Error(string) reason of the revert data attached
// to a json-rpc error
func revertReason(err error) string {
	var de rpc.DataError
	if !errors.As(err, &de) {
		return ""
	}
	var data []byte
	switch v := de.ErrorData().(type) {
	case string:
		bs, derr := hexutil.Decode(v)
		if derr != nil {
			return ""
		}
		data = bs
	case []byte:
		data = v
	default:
		return ""
	}
	reason, uerr := abi.UnpackRevert(data)
	if uerr != nil {
		return ""
	}
	return reason
}
