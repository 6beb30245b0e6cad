package reverse

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"

	"github.com/nameview/reverse-resolution-backend/ccipread"
	"github.com/nameview/reverse-resolution-backend/chains"
	"github.com/nameview/reverse-resolution-backend/codec"
	"github.com/nameview/reverse-resolution-backend/ensname"
	"github.com/nameview/reverse-resolution-backend/interfaces"
	"github.com/nameview/reverse-resolution-backend/metrics"
)

// Result is the outcome of a resolution. An empty Name means the address has
// no (verified) primary name.
type Result struct {
	// Name is the verified primary name, empty when there is none.
	Name string

	// Resolver is the resolver contract that served the reverse record. Zero
	// when Name is empty.
	Resolver common.Address
}

// Config carries the collaborators and defaults for a Resolver.
type Config struct {
	Caller     interfaces.ContractCaller
	HTTPClient interfaces.HTTPDoer
	Registry   *chains.Registry
	ChainID    uint64
	Log        *slog.Logger
}

// Resolver resolves primary names for addresses.
type Resolver struct {
	invoker  *Invoker
	registry *chains.Registry
	chainID  uint64
	log      *slog.Logger
}

// New creates a Resolver from the given configuration.
func New(cfg Config) *Resolver {
	gateways := ccipread.NewHandler(ccipread.NewClient(cfg.HTTPClient), cfg.Log)
	return &Resolver{
		invoker:  NewInvoker(cfg.Caller, gateways, cfg.Log),
		registry: cfg.Registry,
		chainID:  cfg.ChainID,
		log:      cfg.Log,
	}
}

// ResolveName resolves the primary name of req.Address.
//
// A nil error with an empty Result.Name means the address has no usable
// name. In strict mode classified protocol failures come back as
// *ResolutionError instead; a genuinely empty record and a
// forward-verification mismatch stay an empty result in both modes.
// Configuration and infrastructure errors are returned in both modes.
func (r *Resolver) ResolveName(ctx context.Context, req *interfaces.ResolutionRequest) (*Result, error) {
	result, err := r.resolve(ctx, req)
	switch {
	case err != nil:
		if _, ok := err.(*ResolutionError); ok {
			metrics.ResolutionsTotal.WithLabelValues("no_name").Inc()
		} else {
			metrics.ResolutionsTotal.WithLabelValues("error").Inc()
		}
	case result.Name == "":
		metrics.ResolutionsTotal.WithLabelValues("no_name").Inc()
	default:
		metrics.ResolutionsTotal.WithLabelValues("resolved").Inc()
	}
	return result, err
}

func (r *Resolver) resolve(ctx context.Context, req *interfaces.ResolutionRequest) (*Result, error) {
	contract, err := r.registry.ContractAddress(r.chainID, req)
	if err != nil {
		return nil, err
	}

	name, resolver, err := r.reverseLookup(ctx, contract, req)
	if err != nil {
		return nil, err
	}
	if name == "" {
		// An empty record is a clean "no name", not a failure; strict mode
		// has nothing to attribute.
		return &Result{}, nil
	}

	forward, err := r.forwardLookup(ctx, contract, name, req)
	if err != nil {
		return nil, err
	}
	if forward != req.Address {
		r.log.Info("discarding unverified reverse record", "name", name, "address", req.Address, "forward", forward)
		return &Result{}, nil
	}
	return &Result{Name: name, Resolver: resolver}, nil
}

// noName builds the empty outcome for a classified failure: an empty result
// normally, a typed error in strict mode.
func (r *Resolver) noName(req *interfaces.ResolutionRequest, stage string, kind Kind, cause error) (*Result, error) {
	if req.Strict {
		return nil, &ResolutionError{Kind: kind, Stage: stage, Err: cause}
	}
	r.log.Debug("suppressing resolution failure", "address", req.Address, "stage", stage, "kind", string(kind), "err", cause)
	return &Result{}, nil
}

func (r *Resolver) reverseLookup(ctx context.Context, contract common.Address, req *interfaces.ResolutionRequest) (string, common.Address, error) {
	encodedName, err := ensname.DNSEncode(ensname.ReverseName(req.Address))
	if err != nil {
		return "", common.Address{}, fmt.Errorf("could not encode reverse name: %w", err)
	}
	calldata, err := codec.EncodeReverseCall(encodedName)
	if err != nil {
		return "", common.Address{}, err
	}

	data, err := r.call(ctx, contract, calldata, req, StageReverse)
	if err != nil || data == nil {
		return "", common.Address{}, err
	}

	name, resolver, err := codec.DecodeReverseResult(data)
	if err != nil {
		return "", common.Address{}, err
	}
	return name, resolver, nil
}

// forwardLookup resolves name back to an address. Classified failures here
// follow the same strict/non-strict rules as the reverse step, with the zero
// address standing in for "no forward record", which the caller treats as a
// mismatch.
func (r *Resolver) forwardLookup(ctx context.Context, contract common.Address, name string, req *interfaces.ResolutionRequest) (common.Address, error) {
	node, err := ensname.NameHash(name)
	if err != nil {
		return common.Address{}, fmt.Errorf("could not hash claimed name %q: %w", name, err)
	}
	encodedName, err := ensname.DNSEncode(name)
	if err != nil {
		return common.Address{}, fmt.Errorf("could not encode claimed name %q: %w", name, err)
	}
	calldata, err := codec.EncodeResolveCall(encodedName, node)
	if err != nil {
		return common.Address{}, err
	}

	data, err := r.call(ctx, contract, calldata, req, StageForward)
	if err != nil || data == nil {
		return common.Address{}, err
	}

	addr, _, err := codec.DecodeResolveResult(data)
	if err != nil {
		return common.Address{}, err
	}
	return addr, nil
}

// call runs one invocation and applies the failure classification. It
// returns nil data with a nil error when a classified failure was
// suppressed; strict mode turns those into *ResolutionError.
func (r *Resolver) call(ctx context.Context, contract common.Address, calldata []byte, req *interfaces.ResolutionRequest, stage string) ([]byte, error) {
	data, signal, err := r.invoker.Call(ctx, contract, calldata, req.BlockNumber, req.GatewayURLs)
	if err != nil {
		if kind, ok := classifyGatewayError(err); ok {
			_, suppressErr := r.noName(req, stage, kind, err)
			return nil, suppressErr
		}
		return nil, err
	}
	if signal != nil {
		_, suppressErr := r.noName(req, stage, classifySignal(signal), fmt.Errorf("contract reverted with %s", signal))
		return nil, suppressErr
	}
	return data, nil
}
