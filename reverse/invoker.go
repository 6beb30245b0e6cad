package reverse

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/nameview/reverse-resolution-backend/ccipread"
	"github.com/nameview/reverse-resolution-backend/codec"
	"github.com/nameview/reverse-resolution-backend/interfaces"
)

// EIP-3668 recommends capping lookup chains to prevent redirect loops.
const maxOffchainLookups = 4

// Invoker executes read calls against the lookup contract, transparently
// following offchain lookup redirects.
type Invoker struct {
	caller   interfaces.ContractCaller
	gateways *ccipread.Handler
	log      *slog.Logger
}

// NewInvoker creates an Invoker on top of a node caller and gateway handler.
func NewInvoker(caller interfaces.ContractCaller, gateways *ccipread.Handler, log *slog.Logger) *Invoker {
	return &Invoker{caller: caller, gateways: gateways, log: log}
}

// Call runs calldata against contract at blockNumber. It returns either the
// call's return data, or the decoded revert signal for reverts that are not
// offchain lookup redirects, or an error. OffchainLookup reverts are handled
// internally: the gateways are queried (urlOverride replacing the announced
// list when non-empty) and the call resumes through the callback, up to
// maxOffchainLookups rounds.
func (i *Invoker) Call(ctx context.Context, contract common.Address, calldata []byte, blockNumber *big.Int, urlOverride []string) ([]byte, *codec.RevertSignal, error) {
	for round := 0; ; round++ {
		data, err := i.caller.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: calldata}, blockNumber)
		if err == nil {
			return data, nil, nil
		}

		revertData, ok := codec.RevertDataFromError(err)
		if !ok {
			return nil, nil, fmt.Errorf("contract call failed: %w", err)
		}

		signal := codec.DecodeRevert(revertData)
		if signal.Kind != codec.RevertOffchainLookup {
			return nil, signal, nil
		}
		if round >= maxOffchainLookups {
			return nil, nil, fmt.Errorf("offchain lookup chain exceeded %d rounds", maxOffchainLookups)
		}

		i.log.Debug("following offchain lookup", "contract", contract, "urls", len(signal.Lookup.URLs), "round", round)
		calldata, err = i.gateways.Execute(ctx, contract, signal.Lookup, urlOverride)
		if err != nil {
			return nil, nil, err
		}
	}
}
