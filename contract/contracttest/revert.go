package contracttest

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

var revertSelector = crypto.Keccak256([]byte("Error(string)"))[:4]

// RevertError is the json-rpc error of a reverted execution, carrying the
// Error(string) revert data like a node does
type RevertError struct {
	reason string
	data   []byte
}

// Revert returns the RevertError of the reason
func Revert(reason string) *RevertError {
	typ, _ := abi.NewType("string", "", nil)
	packed, _ := abi.Arguments{{Type: typ}}.Pack(reason)
	return &RevertError{
		reason: reason,
		data:   append(append([]byte{}, revertSelector...), packed...),
	}
}

func (e *RevertError) Error() string {
	return "execution reverted: " + e.reason
}

// ErrorCode returns the json-rpc error code of a revert
func (e *RevertError) ErrorCode() int {
	return 3
}

// ErrorData returns the hex encoded revert data
func (e *RevertError) ErrorData() interface{} {
	return hexutil.Encode(e.data)
}
