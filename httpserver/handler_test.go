package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nameview/reverse-resolution-backend/chains"
	"github.com/nameview/reverse-resolution-backend/interfaces"
	"github.com/nameview/reverse-resolution-backend/reverse"
)

var (
	testAddr     = common.HexToAddress("0xd8da6bf26964af9d7eed9e03e53415d37aa96045")
	testResolver = common.HexToAddress("0x231b0ee14048e9dccd1d247744d114a4eb5e8e63")
)

type stubResolver struct {
	gotReq *interfaces.ResolutionRequest
	result *reverse.Result
	err    error
}

func (s *stubResolver) ResolveName(ctx context.Context, req *interfaces.ResolutionRequest) (*reverse.Result, error) {
	s.gotReq = req
	return s.result, s.err
}

func testServer(t *testing.T, resolver NameResolver) *Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(&HTTPServerConfig{
		ListenAddr:               "127.0.0.1:0",
		Log:                      log,
		DrainDuration:            time.Millisecond,
		GracefulShutdownDuration: time.Second,
	}, NewHandler(resolver, log))
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.getRouter().ServeHTTP(rec, req)
	return rec
}

func TestHandleResolveName(t *testing.T) {
	stub := &stubResolver{result: &reverse.Result{Name: "vitalik.eth", Resolver: testResolver}}
	rec := get(t, testServer(t, stub), "/v1/name/"+testAddr.Hex())
	require.Equal(t, http.StatusOK, rec.Code)

	var body resolveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, testAddr.Hex(), body.Address)
	assert.Equal(t, "vitalik.eth", body.Name)
	assert.Equal(t, testResolver.Hex(), body.Resolver)
}

func TestHandleResolveNameNoName(t *testing.T) {
	stub := &stubResolver{result: &reverse.Result{}}
	rec := get(t, testServer(t, stub), "/v1/name/"+testAddr.Hex())
	require.Equal(t, http.StatusOK, rec.Code)

	var body resolveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Name)
	assert.Empty(t, body.Resolver)
}

func TestHandleResolveNameInvalidAddress(t *testing.T) {
	rec := get(t, testServer(t, &stubResolver{}), "/v1/name/nonsense")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleResolveNameQueryParams(t *testing.T) {
	stub := &stubResolver{result: &reverse.Result{}}
	contract := common.HexToAddress("0x00000000000000000000000000000000000000bb")

	rec := get(t, testServer(t, stub), "/v1/name/"+testAddr.Hex()+"?strict=true&block=17000000&contract="+contract.Hex()+"&gateway=https://a.example&gateway=https://b.example")
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, stub.gotReq)
	assert.True(t, stub.gotReq.Strict)
	assert.Equal(t, big.NewInt(17000000), stub.gotReq.BlockNumber)
	require.NotNil(t, stub.gotReq.ContractAddress)
	assert.Equal(t, contract, *stub.gotReq.ContractAddress)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, stub.gotReq.GatewayURLs)
}

func TestHandleResolveNameInvalidParams(t *testing.T) {
	srv := testServer(t, &stubResolver{result: &reverse.Result{}})

	rec := get(t, srv, "/v1/name/"+testAddr.Hex()+"?block=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, srv, "/v1/name/"+testAddr.Hex()+"?contract=xyz")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleResolveNameStrictFailure(t *testing.T) {
	stub := &stubResolver{err: &reverse.ResolutionError{Kind: reverse.KindResolverNotFound, Stage: reverse.StageReverse}}
	rec := get(t, testServer(t, stub), "/v1/name/"+testAddr.Hex()+"?strict=true")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(reverse.KindResolverNotFound), body.Kind)
	assert.Equal(t, reverse.StageReverse, body.Stage)
}

func TestHandleResolveNameConfigError(t *testing.T) {
	stub := &stubResolver{err: chains.ErrChainNotConfigured}
	rec := get(t, testServer(t, stub), "/v1/name/"+testAddr.Hex())
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	stub = &stubResolver{err: &chains.UnsupportedChainContractError{ChainID: 1, BlockNumber: big.NewInt(1), Activation: 100}}
	rec = get(t, testServer(t, stub), "/v1/name/"+testAddr.Hex())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleResolveNameInfraError(t *testing.T) {
	stub := &stubResolver{err: errors.New("connection refused")}
	rec := get(t, testServer(t, stub), "/v1/name/"+testAddr.Hex())
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	srv := testServer(t, &stubResolver{})

	assert.Equal(t, http.StatusOK, get(t, srv, "/livez").Code)
	assert.Equal(t, http.StatusOK, get(t, srv, "/readyz").Code)

	assert.Equal(t, http.StatusOK, get(t, srv, "/drain").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, srv, "/readyz").Code)

	assert.Equal(t, http.StatusOK, get(t, srv, "/undrain").Code)
	assert.Equal(t, http.StatusOK, get(t, srv, "/readyz").Code)
}
