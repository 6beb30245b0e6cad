package ccipread

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/nameview/reverse-resolution-backend/codec"
	"github.com/nameview/reverse-resolution-backend/metrics"
)

// SenderMismatchError means the OffchainLookup signal names a sender other
// than the contract that was called, which would let the contract redirect
// the lookup to an attacker-chosen callback target.
type SenderMismatchError struct {
	Expected common.Address
	Got      common.Address
}

func (e *SenderMismatchError) Error() string {
	return fmt.Sprintf("offchain lookup sender %s does not match called contract %s", e.Got, e.Expected)
}

// AllGatewaysFailedError means every gateway URL was tried and none produced
// a usable response.
type AllGatewaysFailedError struct {
	URLs   []string
	Causes []error
}

func (e *AllGatewaysFailedError) Error() string {
	parts := make([]string, len(e.Causes))
	for i, cause := range e.Causes {
		parts[i] = cause.Error()
	}
	return fmt.Sprintf("all %d gateways failed: %s", len(e.URLs), strings.Join(parts, "; "))
}

func (e *AllGatewaysFailedError) Unwrap() []error { return e.Causes }

// Handler resolves one OffchainLookup signal into callback calldata.
type Handler struct {
	client *Client
	log    *slog.Logger
}

// NewHandler creates a Handler using the given gateway client.
func NewHandler(client *Client, log *slog.Logger) *Handler {
	return &Handler{client: client, log: log}
}

// Execute validates the signal, queries its gateways in order and returns
// the callback calldata to resume the onchain call with. contractAddr is the
// address the reverting call was sent to. urlOverride, when non-empty,
// replaces the signal's own URL list.
func (h *Handler) Execute(ctx context.Context, contractAddr common.Address, lookup *codec.OffchainLookup, urlOverride []string) ([]byte, error) {
	if lookup.Sender != contractAddr {
		return nil, &SenderMismatchError{Expected: contractAddr, Got: lookup.Sender}
	}

	urls := lookup.URLs
	if len(urlOverride) > 0 {
		urls = urlOverride
	}
	if len(urls) == 0 {
		return nil, &AllGatewaysFailedError{}
	}

	var causes []error
	for _, url := range urls {
		metrics.GatewayAttemptsTotal.Inc()
		response, err := h.client.Fetch(ctx, url, lookup.Sender, lookup.CallData)
		if err == nil {
			return codec.EncodeCallback(lookup.CallbackFunction, response, lookup.ExtraData)
		}

		metrics.GatewayFailuresTotal.Inc()
		h.log.Warn("gateway attempt failed", "url", url, "err", err)
		causes = append(causes, err)

		var statusErr *HTTPStatusError
		if errors.As(err, &statusErr) && statusErr.Terminal() {
			return nil, statusErr
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, &AllGatewaysFailedError{URLs: urls, Causes: causes}
}
