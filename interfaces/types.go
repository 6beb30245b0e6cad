package interfaces

import (
	"context"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// ContractCaller executes read-only contract calls against a blockchain
// node. *ethclient.Client satisfies this interface. Implementations must not
// mutate chain state and must surface reverts as errors carrying the revert
// data (geth-style rpc.DataError).
type ContractCaller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// HTTPDoer issues HTTP requests to offchain gateways. *http.Client satisfies
// this interface. Timeouts are the implementation's responsibility; when one
// fires it surfaces as a transport error, never as a resolution outcome.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ResolutionRequest describes a single reverse-resolution call. The zero
// value of the optional fields means "use the configured default".
type ResolutionRequest struct {
	// Address is the account whose primary name is being looked up.
	Address common.Address

	// ContractAddress overrides the chain registry's lookup contract. When
	// set it is used unconditionally and no chain needs to be configured.
	ContractAddress *common.Address

	// BlockNumber pins the resolution to a historical block. Nil means the
	// latest block.
	BlockNumber *big.Int

	// GatewayURLs replaces the URL list announced by an offchain lookup
	// signal. Mostly useful for routing through trusted gateway mirrors.
	GatewayURLs []string

	// Strict surfaces classified resolution failures as typed errors
	// identifying the failing stage and actor instead of an empty result.
	Strict bool
}
