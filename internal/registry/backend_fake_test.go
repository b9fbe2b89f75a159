package registry

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// fakeBackend simulates the registry contract pair in memory. Read
// calls are decoded against the real ABIs and answered from state;
// submitted transactions are decoded and applied, so the whole
// pack/sign/send/read path is exercised.
type fakeBackend struct {
	mu sync.Mutex

	chainID uint64

	agents   []fakeAgent
	feedback map[common.Address]map[common.Address][]fakeEntry
	clients  map[common.Address][]common.Address

	balance *big.Int
	nonce   uint64
	gas     uint64

	failCalls   int   // next N CallContracts fail with a transport error
	estimateErr error // injected EstimateGas failure
	sendErr     error // injected SendTransaction failure
	noReceipt   bool  // never produce a receipt
	revertTx    bool  // mined receipts carry a failed status

	receipts map[common.Hash]*types.Receipt
	sent     []*types.Transaction
	closed   bool
}

type fakeAgent struct {
	id     *big.Int
	domain string
	addr   common.Address
}

type fakeEntry struct {
	value     uint64
	decimals  uint8
	tag1      [32]byte
	tag2      [32]byte
	revoked   bool
	responses uint64
}

var errFakeRevert = errors.New("execution reverted")

func newFakeBackend(chainID uint64) *fakeBackend {
	return &fakeBackend{
		chainID:  chainID,
		feedback: make(map[common.Address]map[common.Address][]fakeEntry),
		clients:  make(map[common.Address][]common.Address),
		balance:  new(big.Int).Lsh(big.NewInt(1), 60),
		gas:      50000,
		receipts: make(map[common.Hash]*types.Receipt),
	}
}

func (f *fakeBackend) registerAgent(id int64, addr common.Address) {
	f.agents = append(f.agents, fakeAgent{id: big.NewInt(id), domain: "agent.example.org", addr: addr})
}

func (f *fakeBackend) addFeedback(agent, reviewer common.Address, value uint64, decimals uint8, tag1, tag2 [32]byte, revoked bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appendEntryLocked(agent, reviewer, fakeEntry{value: value, decimals: decimals, tag1: tag1, tag2: tag2, revoked: revoked})
}

func (f *fakeBackend) appendEntryLocked(agent, reviewer common.Address, e fakeEntry) {
	if f.feedback[agent] == nil {
		f.feedback[agent] = make(map[common.Address][]fakeEntry)
	}
	if len(f.feedback[agent][reviewer]) == 0 {
		f.clients[agent] = append(f.clients[agent], reviewer)
	}
	f.feedback[agent][reviewer] = append(f.feedback[agent][reviewer], e)
}

func (f *fakeBackend) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failCalls > 0 {
		f.failCalls--
		return nil, errors.New("connection refused")
	}

	switch *call.To {
	case IdentityRegistryAddress:
		return f.identityCall(call.Data)
	case ReputationRegistryAddress:
		return f.reputationCall(call.Data)
	}
	return nil, fmt.Errorf("unexpected call target %s", call.To)
}

func (f *fakeBackend) identityCall(data []byte) ([]byte, error) {
	method, err := identityABI.MethodById(data[:4])
	if err != nil {
		return nil, err
	}
	in, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, err
	}

	switch method.Name {
	case "getAgent":
		id := in[0].(*big.Int)
		for _, a := range f.agents {
			if a.id.Cmp(id) == 0 {
				return method.Outputs.Pack(a.id, a.domain, a.addr)
			}
		}
		return nil, errFakeRevert
	case "resolveByAddress":
		addr := in[0].(common.Address)
		for _, a := range f.agents {
			if a.addr == addr {
				return method.Outputs.Pack(a.id, a.domain, a.addr)
			}
		}
		return nil, errFakeRevert
	}
	return nil, fmt.Errorf("unexpected identity method %s", method.Name)
}

func (f *fakeBackend) reputationCall(data []byte) ([]byte, error) {
	method, err := reputationABI.MethodById(data[:4])
	if err != nil {
		return nil, err
	}
	in, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, err
	}

	switch method.Name {
	case "getClients":
		agent := in[0].(common.Address)
		list := f.clients[agent]
		if list == nil {
			list = []common.Address{}
		}
		return method.Outputs.Pack(list)
	case "getLastIndex":
		agent, reviewer := in[0].(common.Address), in[1].(common.Address)
		return method.Outputs.Pack(uint64(len(f.feedback[agent][reviewer])))
	case "readFeedback":
		agent, reviewer := in[0].(common.Address), in[1].(common.Address)
		index := in[2].(uint64)
		entries := f.feedback[agent][reviewer]
		if index >= uint64(len(entries)) {
			return nil, errFakeRevert
		}
		e := entries[index]
		return method.Outputs.Pack(e.value, e.decimals, e.tag1, e.tag2, e.revoked)
	case "getResponseCount":
		agent, reviewer := in[0].(common.Address), in[1].(common.Address)
		index := in[2].(uint64)
		entries := f.feedback[agent][reviewer]
		if index >= uint64(len(entries)) {
			return nil, errFakeRevert
		}
		return method.Outputs.Pack(entries[index].responses)
	}
	return nil, fmt.Errorf("unexpected reputation method %s", method.Name)
}

func (f *fakeBackend) PendingNonceAt(_ context.Context, _ common.Address) (uint64, error) {
	return f.nonce, nil
}

func (f *fakeBackend) SuggestGasPrice(_ context.Context) (*big.Int, error) {
	return big.NewInt(1000), nil
}

func (f *fakeBackend) EstimateGas(_ context.Context, _ ethereum.CallMsg) (uint64, error) {
	if f.estimateErr != nil {
		return 0, f.estimateErr
	}
	return f.gas, nil
}

func (f *fakeBackend) BalanceAt(_ context.Context, _ common.Address, _ *big.Int) (*big.Int, error) {
	return f.balance, nil
}

// SendTransaction decodes the submitted calldata and applies it to the
// fake contract state, so a subsequent read reflects the write.
func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, tx)

	sender, err := types.Sender(types.LatestSignerForChainID(new(big.Int).SetUint64(f.chainID)), tx)
	if err != nil {
		return err
	}

	status := types.ReceiptStatusSuccessful
	if f.revertTx {
		status = types.ReceiptStatusFailed
	} else if err := f.apply(sender, tx.Data()); err != nil {
		status = types.ReceiptStatusFailed
	}

	if !f.noReceipt {
		f.receipts[tx.Hash()] = &types.Receipt{
			Status:      status,
			GasUsed:     f.gas,
			BlockNumber: big.NewInt(100),
			TxHash:      tx.Hash(),
		}
	}
	return nil
}

func (f *fakeBackend) apply(sender common.Address, data []byte) error {
	method, err := reputationABI.MethodById(data[:4])
	if err != nil {
		return err
	}
	in, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return err
	}

	switch method.Name {
	case "giveFeedback":
		agent := in[0].(common.Address)
		f.appendEntryLocked(agent, sender, fakeEntry{
			value:    in[1].(uint64),
			decimals: in[2].(uint8),
			tag1:     in[3].([32]byte),
			tag2:     in[4].([32]byte),
		})
		return nil
	case "revokeFeedback":
		agent, index := in[0].(common.Address), in[1].(uint64)
		entries := f.feedback[agent][sender]
		if index >= uint64(len(entries)) {
			return errFakeRevert
		}
		entries[index].revoked = true
		return nil
	case "appendResponse":
		agent, reviewer := in[0].(common.Address), in[1].(common.Address)
		index := in[2].(uint64)
		entries := f.feedback[agent][reviewer]
		if index >= uint64(len(entries)) {
			return errFakeRevert
		}
		entries[index].responses++
		return nil
	}
	return fmt.Errorf("unexpected write method %s", method.Name)
}

func (f *fakeBackend) TransactionReceipt(_ context.Context, txHash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.receipts[txHash]; ok {
		return r, nil
	}
	return nil, ethereum.NotFound
}

func (f *fakeBackend) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

// dialerFor wires a fake backend into a client and counts how often it
// is dialed.
func dialerFor(f *fakeBackend, dials *int) DialFunc {
	return func(_ context.Context, _ string) (Backend, error) {
		if dials != nil {
			*dials++
		}
		return f, nil
	}
}
