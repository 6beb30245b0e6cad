// Package chains maps chain ids to the lookup contract deployments this
// service knows about.
package chains

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/nameview/reverse-resolution-backend/interfaces"
)

// ErrChainNotConfigured is returned when a request needs a lookup contract
// and neither the request nor the registry provides one.
var ErrChainNotConfigured = errors.New("no lookup contract configured for chain")

// UnsupportedChainContractError is returned for a historical block that
// predates the chain's lookup contract deployment.
type UnsupportedChainContractError struct {
	ChainID     uint64
	BlockNumber *big.Int
	Activation  uint64
}

func (e *UnsupportedChainContractError) Error() string {
	return fmt.Sprintf("lookup contract on chain %d is not active at block %s, deployed at block %d", e.ChainID, e.BlockNumber, e.Activation)
}

// Chain describes one lookup contract deployment.
type Chain struct {
	ID   uint64
	Name string

	// Contract is the universal resolver address on this chain.
	Contract common.Address

	// Activation is the block the contract was deployed in. Calls pinned to
	// earlier blocks are rejected rather than reverted against empty code.
	Activation uint64
}

// Registry resolves chain ids to deployments. The zero value knows no chains.
type Registry struct {
	chains map[uint64]Chain
}

// NewRegistry builds a registry from the given deployments.
func NewRegistry(chains ...Chain) *Registry {
	byID := make(map[uint64]Chain, len(chains))
	for _, c := range chains {
		byID[c.ID] = c
	}
	return &Registry{chains: byID}
}

// DefaultRegistry returns a registry with the public deployments built in.
func DefaultRegistry() *Registry {
	return NewRegistry(Mainnet, Sepolia, Holesky)
}

var (
	Mainnet = Chain{
		ID:         1,
		Name:       "mainnet",
		Contract:   common.HexToAddress("0xce01f8eee7E479C928F8919abD53E553a36CeF67"),
		Activation: 16966585,
	}
	Sepolia = Chain{
		ID:         11155111,
		Name:       "sepolia",
		Contract:   common.HexToAddress("0xc8Af999e38273D658BE1b921b88A9Ddf005769cC"),
		Activation: 5317080,
	}
	Holesky = Chain{
		ID:         17000,
		Name:       "holesky",
		Contract:   common.HexToAddress("0xa6AC935D4971E3CD133b950aE053bECD16fE7f3b"),
		Activation: 801613,
	}
)

// Chain looks up a deployment by chain id.
func (r *Registry) Chain(id uint64) (Chain, bool) {
	c, ok := r.chains[id]
	return c, ok
}

// ContractAddress picks the lookup contract for a request. A per-request
// override wins and skips all registry checks. Otherwise the chain must be
// registered, and a pinned block must not predate the deployment.
func (r *Registry) ContractAddress(chainID uint64, req *interfaces.ResolutionRequest) (common.Address, error) {
	if req.ContractAddress != nil {
		return *req.ContractAddress, nil
	}

	chain, ok := r.Chain(chainID)
	if !ok {
		return common.Address{}, fmt.Errorf("%w: chain id %d", ErrChainNotConfigured, chainID)
	}
	if req.BlockNumber != nil && req.BlockNumber.Cmp(new(big.Int).SetUint64(chain.Activation)) < 0 {
		return common.Address{}, &UnsupportedChainContractError{
			ChainID:     chainID,
			BlockNumber: req.BlockNumber,
			Activation:  chain.Activation,
		}
	}
	return chain.Contract, nil
}
