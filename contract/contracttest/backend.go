// Package contracttest provides an in-memory node for the contract clients.
// Calldata is decoded with the real abi of the stubbed contract, dispatched to
// a Go handler, and the handler results are abi encoded back, so the clients
// run their production encoding paths end to end.
package contracttest

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"sync"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// ChainID is the chain id of the Backend
var ChainID = big.NewInt(1337)

// errors
var (
	ErrNoHandler     = errors.New("no handler")
	ErrMinedReverted = errors.New("mined reverted")
)

// Handler executes a contract method with the decoded arguments and returns
// the outputs to encode. A handler of a state mutating method that returns
// ErrMinedReverted lets the transaction in with a failed receipt.
type Handler func(args []interface{}) ([]interface{}, error)

// Stub is a contract deployed on the Backend
type Stub struct {
	Address common.Address
	ABI     abi.ABI

	sync.Mutex
	handlers map[string]Handler
}

// Handle sets the handler of the method
func (s *Stub) Handle(method string, h Handler) *Stub {
	if _, has := s.ABI.Methods[method]; !has {
		panic(fmt.Sprintf("contracttest: %s is not a method of %s", method, s.Address.Hex()))
	}
	s.Lock()
	defer s.Unlock()
	s.handlers[method] = h
	return s
}

// Returns sets a handler that always returns the outputs
func (s *Stub) Returns(method string, outs ...interface{}) *Stub {
	return s.Handle(method, func([]interface{}) ([]interface{}, error) {
		return outs, nil
	})
}

func (s *Stub) handler(method string) Handler {
	s.Lock()
	defer s.Unlock()
	return s.handlers[method]
}

// Sent is a transaction accepted by the Backend
type Sent struct {
	Tx     *types.Transaction
	From   common.Address
	To     common.Address
	Method string
	Args   []interface{}
	Value  *big.Int
	Failed bool
}

// Backend is an in-memory bind.ContractBackend and bind.DeployBackend
type Backend struct {
	sync.Mutex
	stubs      map[common.Address]*Stub
	logs       []types.Log
	sent       []*Sent
	nonces     map[common.Address]uint64
	calls      map[string]int
	roundTrips int
	block      uint64
}

// NewBackend returns an empty Backend
func NewBackend() *Backend {
	return &Backend{
		stubs:  map[common.Address]*Stub{},
		nonces: map[common.Address]uint64{},
		calls:  map[string]int{},
		block:  1,
	}
}

// Deploy places a contract of the abi at the address
func (b *Backend) Deploy(address common.Address, parsed abi.ABI) *Stub {
	b.Lock()
	defer b.Unlock()
	s := &Stub{
		Address:  address,
		ABI:      parsed,
		handlers: map[string]Handler{},
	}
	b.stubs[address] = s
	return s
}

// Sent returns the accepted transactions in order
func (b *Backend) Sent() []*Sent {
	b.Lock()
	defer b.Unlock()
	return append([]*Sent{}, b.sent...)
}

// Calls returns how many times the method of the address was called
func (b *Backend) Calls(address common.Address, method string) int {
	b.Lock()
	defer b.Unlock()
	return b.calls[address.Hex()+"."+method]
}

// RoundTrips returns the number of requests served by the Backend
func (b *Backend) RoundTrips() int {
	b.Lock()
	defer b.Unlock()
	return b.roundTrips
}

// Emit appends a log of the event of the stub in a new block. args follow the
// declaration order of the event inputs.
func (b *Backend) Emit(s *Stub, event string, args ...interface{}) error {
	ev, has := s.ABI.Events[event]
	if !has {
		return fmt.Errorf("contracttest: %s is not an event of %s", event, s.Address.Hex())
	}
	if len(args) != len(ev.Inputs) {
		return fmt.Errorf("contracttest: %s takes %d arguments, got %d", event, len(ev.Inputs), len(args))
	}
	topics := []common.Hash{ev.ID}
	var data []interface{}
	for i, in := range ev.Inputs {
		if !in.Indexed {
			data = append(data, args[i])
			continue
		}
		t, err := topicOf(args[i])
		if err != nil {
			return err
		}
		topics = append(topics, t)
	}
	packed, err := ev.Inputs.NonIndexed().Pack(data...)
	if err != nil {
		return err
	}

	b.Lock()
	defer b.Unlock()
	b.block++
	b.logs = append(b.logs, types.Log{
		Address:     s.Address,
		Topics:      topics,
		Data:        packed,
		BlockNumber: b.block,
		TxHash:      crypto.Keccak256Hash(packed, big.NewInt(int64(b.block)).Bytes()),
		Index:       uint(len(b.logs)),
	})
	return nil
}

// MustEmit is Emit that panics on error
func (b *Backend) MustEmit(s *Stub, event string, args ...interface{}) {
	if err := b.Emit(s, event, args...); err != nil {
		panic(err)
	}
}

func topicOf(v interface{}) (common.Hash, error) {
	switch t := v.(type) {
	case common.Address:
		return common.BytesToHash(t.Bytes()), nil
	case *big.Int:
		return common.BigToHash(t), nil
	case [32]byte:
		return common.Hash(t), nil
	case common.Hash:
		return t, nil
	default:
		return common.Hash{}, fmt.Errorf("contracttest: unsupported topic type %T", v)
	}
}

func (b *Backend) stub(address *common.Address) *Stub {
	b.Lock()
	defer b.Unlock()
	b.roundTrips++
	if address == nil {
		return nil
	}
	return b.stubs[*address]
}

func (b *Backend) dispatch(s *Stub, data []byte) (*abi.Method, []interface{}, []interface{}, error) {
	if len(data) < 4 {
		return nil, nil, nil, Revert("no selector")
	}
	m, err := s.ABI.MethodById(data[:4])
	if err != nil {
		return nil, nil, nil, Revert("unknown selector")
	}
	args, err := m.Inputs.Unpack(data[4:])
	if err != nil {
		return m, nil, nil, err
	}

	b.Lock()
	b.calls[s.Address.Hex()+"."+m.Name]++
	b.Unlock()

	h := s.handler(m.Name)
	if h == nil {
		return m, args, nil, fmt.Errorf("%w: %s", ErrNoHandler, m.Name)
	}
	outs, err := h(args)
	return m, args, outs, err
}

// CodeAt implements bind.ContractCaller
func (b *Backend) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	if s := b.stub(&contract); s != nil {
		return []byte{0x60, 0x80, 0x60, 0x40}, nil
	}
	return nil, nil
}

// CallContract implements bind.ContractCaller
func (b *Backend) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := b.stub(call.To)
	if s == nil {
		return nil, nil
	}
	m, _, outs, err := b.dispatch(s, call.Data)
	if err != nil {
		return nil, err
	}
	return m.Outputs.Pack(outs...)
}

// PendingCodeAt implements bind.ContractTransactor
func (b *Backend) PendingCodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	return b.CodeAt(ctx, account, nil)
}

// PendingNonceAt implements bind.ContractTransactor
func (b *Backend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	b.Lock()
	defer b.Unlock()
	b.roundTrips++
	return b.nonces[account], nil
}

// HeaderByNumber implements bind.ContractTransactor
func (b *Backend) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	b.Lock()
	defer b.Unlock()
	b.roundTrips++
	return &types.Header{Number: new(big.Int).SetUint64(b.block)}, nil
}

// SuggestGasPrice implements bind.ContractTransactor
func (b *Backend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1000000000), nil
}

// SuggestGasTipCap implements bind.ContractTransactor
func (b *Backend) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1), nil
}

// EstimateGas implements bind.ContractTransactor
func (b *Backend) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	return 300000, nil
}

// SendTransaction implements bind.ContractTransactor. The handler of the
// method runs before the transaction is accepted.
func (b *Backend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	from, err := types.Sender(types.LatestSignerForChainID(ChainID), tx)
	if err != nil {
		return err
	}
	s := b.stub(tx.To())
	if s == nil {
		return errors.New("contracttest: no contract at the destination")
	}
	m, args, _, err := b.dispatch(s, tx.Data())
	failed := errors.Is(err, ErrMinedReverted)
	if err != nil && !failed {
		return err
	}

	b.Lock()
	defer b.Unlock()
	b.nonces[from]++
	b.block++
	b.sent = append(b.sent, &Sent{
		Tx:     tx,
		From:   from,
		To:     *tx.To(),
		Method: m.Name,
		Args:   args,
		Value:  tx.Value(),
		Failed: failed,
	})
	return nil
}

// TransactionReceipt implements bind.DeployBackend
func (b *Backend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	b.Lock()
	defer b.Unlock()
	b.roundTrips++
	for i, s := range b.sent {
		if s.Tx.Hash() != txHash {
			continue
		}
		status := types.ReceiptStatusSuccessful
		if s.Failed {
			status = types.ReceiptStatusFailed
		}
		return &types.Receipt{
			Status:      status,
			TxHash:      txHash,
			GasUsed:     21000,
			BlockNumber: big.NewInt(int64(i + 2)),
		}, nil
	}
	return nil, ethereum.NotFound
}

// FilterLogs implements bind.ContractFilterer
func (b *Backend) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.Lock()
	defer b.Unlock()
	b.roundTrips++

	var out []types.Log
	for _, l := range b.logs {
		if q.FromBlock != nil && l.BlockNumber < q.FromBlock.Uint64() {
			continue
		}
		if q.ToBlock != nil && l.BlockNumber > q.ToBlock.Uint64() {
			continue
		}
		if len(q.Addresses) > 0 && !containsAddress(q.Addresses, l.Address) {
			continue
		}
		if !matchTopics(q.Topics, l.Topics) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// SubscribeFilterLogs implements bind.ContractFilterer
func (b *Backend) SubscribeFilterLogs(ctx context.Context, q ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error) {
	return nil, errors.New("contracttest: subscriptions are not supported")
}

func containsAddress(list []common.Address, a common.Address) bool {
	for _, v := range list {
		if v == a {
			return true
		}
	}
	return false
}

func matchTopics(query [][]common.Hash, topics []common.Hash) bool {
	for i, alts := range query {
		if len(alts) == 0 {
			continue
		}
		if i >= len(topics) {
			return false
		}
		found := false
		for _, t := range alts {
			if t == topics[i] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// NewAuth returns the signing options of a fresh account on the Backend
func NewAuth() (*bind.TransactOpts, *ecdsa.PrivateKey, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, nil, err
	}
	auth, err := bind.NewKeyedTransactorWithChainID(key, ChainID)
	if err != nil {
		return nil, nil, err
	}
	auth.GasLimit = 500000
	auth.GasPrice = big.NewInt(1000000000)
	return auth, key, nil
}
