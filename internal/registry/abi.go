package registry

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// The registry contract pair is deployed at the same addresses on every
// supported chain.
var (
	IdentityRegistryAddress   = common.HexToAddress("0x8004A169FB4a3325136EB29fA0ceB6D2e539a432")
	ReputationRegistryAddress = common.HexToAddress("0x8004BAa17C55a88189AE136b182e5fdA19dE9b63")
)

// Minimal ABIs: only the functions this client calls.
const identityABIJSON = `[
  {"type":"function","name":"getAgent","stateMutability":"view",
   "inputs":[{"name":"agentId","type":"uint256"}],
   "outputs":[{"name":"agentId","type":"uint256"},{"name":"agentDomain","type":"string"},{"name":"agentAddress","type":"address"}]},
  {"type":"function","name":"resolveByAddress","stateMutability":"view",
   "inputs":[{"name":"agentAddress","type":"address"}],
   "outputs":[{"name":"agentId","type":"uint256"},{"name":"agentDomain","type":"string"},{"name":"agentAddress","type":"address"}]}
]`

const reputationABIJSON = `[
  {"type":"function","name":"giveFeedback","stateMutability":"nonpayable",
   "inputs":[{"name":"agent","type":"address"},{"name":"value","type":"uint64"},{"name":"decimals","type":"uint8"},{"name":"tag1","type":"bytes32"},{"name":"tag2","type":"bytes32"}],
   "outputs":[]},
  {"type":"function","name":"readFeedback","stateMutability":"view",
   "inputs":[{"name":"agent","type":"address"},{"name":"client","type":"address"},{"name":"index","type":"uint64"}],
   "outputs":[{"name":"value","type":"uint64"},{"name":"decimals","type":"uint8"},{"name":"tag1","type":"bytes32"},{"name":"tag2","type":"bytes32"},{"name":"revoked","type":"bool"}]},
  {"type":"function","name":"getClients","stateMutability":"view",
   "inputs":[{"name":"agent","type":"address"}],
   "outputs":[{"name":"","type":"address[]"}]},
  {"type":"function","name":"getLastIndex","stateMutability":"view",
   "inputs":[{"name":"agent","type":"address"},{"name":"client","type":"address"}],
   "outputs":[{"name":"","type":"uint64"}]},
  {"type":"function","name":"revokeFeedback","stateMutability":"nonpayable",
   "inputs":[{"name":"agent","type":"address"},{"name":"index","type":"uint64"}],
   "outputs":[]},
  {"type":"function","name":"appendResponse","stateMutability":"nonpayable",
   "inputs":[{"name":"agent","type":"address"},{"name":"client","type":"address"},{"name":"index","type":"uint64"},{"name":"response","type":"string"}],
   "outputs":[]},
  {"type":"function","name":"getResponseCount","stateMutability":"view",
   "inputs":[{"name":"agent","type":"address"},{"name":"client","type":"address"},{"name":"index","type":"uint64"}],
   "outputs":[{"name":"","type":"uint64"}]}
]`

var (
	identityABI   = mustParseABI(identityABIJSON)
	reputationABI = mustParseABI(reputationABIJSON)
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic("registry: bad ABI: " + err.Error())
	}
	return parsed
}
