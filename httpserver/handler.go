package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/big"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"

	"github.com/nameview/reverse-resolution-backend/chains"
	"github.com/nameview/reverse-resolution-backend/interfaces"
	"github.com/nameview/reverse-resolution-backend/reverse"
)

// NameResolver is the resolution backend the handler serves. *reverse.Resolver
// implements it.
type NameResolver interface {
	ResolveName(ctx context.Context, req *interfaces.ResolutionRequest) (*reverse.Result, error)
}

// Handler processes HTTP requests for the reverse-resolution service.
type Handler struct {
	resolver NameResolver
	log      *slog.Logger
}

// NewHandler creates a new HTTP request handler backed by the given resolver.
func NewHandler(resolver NameResolver, log *slog.Logger) *Handler {
	return &Handler{resolver: resolver, log: log}
}

type resolveResponse struct {
	Address  string `json:"address"`
	Name     string `json:"name"`
	Resolver string `json:"resolver,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Stage string `json:"stage,omitempty"`
}

// HandleResolveName resolves the primary name of an address.
//
// URL format: GET /v1/name/{address}
// Query parameters:
//   - strict: "true" to surface classified resolution failures as 404 responses
//   - block: decimal block number to pin the lookup to
//   - contract: lookup contract address overriding the chain registry
//   - gateway: offchain gateway URL override, may be repeated
//
// Response: JSON with the address, its primary name (empty when there is
// none) and the resolver that served the record.
func (h *Handler) HandleResolveName(w http.ResponseWriter, r *http.Request) {
	addressHex := chi.URLParam(r, "address")
	if !common.IsHexAddress(addressHex) {
		writeError(w, http.StatusBadRequest, errorResponse{Error: "invalid address"})
		return
	}

	req := &interfaces.ResolutionRequest{
		Address:     common.HexToAddress(addressHex),
		Strict:      r.URL.Query().Get("strict") == "true",
		GatewayURLs: r.URL.Query()["gateway"],
	}

	if blockStr := r.URL.Query().Get("block"); blockStr != "" {
		block, err := strconv.ParseUint(blockStr, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, errorResponse{Error: "invalid block number"})
			return
		}
		req.BlockNumber = new(big.Int).SetUint64(block)
	}

	if contractHex := r.URL.Query().Get("contract"); contractHex != "" {
		if !common.IsHexAddress(contractHex) {
			writeError(w, http.StatusBadRequest, errorResponse{Error: "invalid contract address"})
			return
		}
		contract := common.HexToAddress(contractHex)
		req.ContractAddress = &contract
	}

	result, err := h.resolver.ResolveName(r.Context(), req)
	if err != nil {
		h.writeResolutionError(w, req, err)
		return
	}

	response := resolveResponse{
		Address: req.Address.Hex(),
		Name:    result.Name,
	}
	if result.Name != "" {
		response.Resolver = result.Resolver.Hex()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("Failed to encode response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeResolutionError(w http.ResponseWriter, req *interfaces.ResolutionRequest, err error) {
	var resErr *reverse.ResolutionError
	if errors.As(err, &resErr) {
		writeError(w, http.StatusNotFound, errorResponse{
			Error: resErr.Error(),
			Kind:  string(resErr.Kind),
			Stage: resErr.Stage,
		})
		return
	}

	var unsupportedErr *chains.UnsupportedChainContractError
	if errors.Is(err, chains.ErrChainNotConfigured) || errors.As(err, &unsupportedErr) {
		writeError(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	h.log.Error("Resolution failed", "err", err, "address", req.Address)
	writeError(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
}

func writeError(w http.ResponseWriter, status int, body errorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
