package ccipread

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nameview/reverse-resolution-backend/codec"
)

var testSender = common.HexToAddress("0xce01f8eee7E479C928F8919abD53E553a36CeF67")

func testHandler() *Handler {
	return NewHandler(NewClient(http.DefaultClient), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testLookup(urls ...string) *codec.OffchainLookup {
	return &codec.OffchainLookup{
		Sender:           testSender,
		URLs:             urls,
		CallData:         []byte{0x01, 0x02},
		CallbackFunction: [4]byte{0xb4, 0xa8, 0x58, 0x01},
		ExtraData:        []byte{0x03},
	}
}

func gatewayAnswering(t *testing.T, data []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"data": hexutil.Encode(data)})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func gatewayFailing(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestExecuteGETTemplate(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, http.MethodGet, r.Method)
		json.NewEncoder(w).Encode(map[string]string{"data": "0xaabb"})
	}))
	defer srv.Close()

	calldata, err := testHandler().Execute(context.Background(), testSender, testLookup(srv.URL+"/gw/{sender}/{data}.json"), nil)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("/gw/%s/0x0102.json", strings.ToLower(testSender.Hex())), gotPath)
	assert.Equal(t, []byte{0xb4, 0xa8, 0x58, 0x01}, calldata[:4])
}

func TestExecutePOSTBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, strings.ToLower(testSender.Hex()), body["sender"])
		assert.Equal(t, "0x0102", body["data"])

		json.NewEncoder(w).Encode(map[string]string{"data": "0xaabb"})
	}))
	defer srv.Close()

	calldata, err := testHandler().Execute(context.Background(), testSender, testLookup(srv.URL+"/gateway"), nil)
	require.NoError(t, err)

	// selector || abi(response, extraData)
	assert.Equal(t, []byte{0xb4, 0xa8, 0x58, 0x01}, calldata[:4])
	expected, err := codec.EncodeCallback([4]byte{0xb4, 0xa8, 0x58, 0x01}, []byte{0xaa, 0xbb}, []byte{0x03})
	require.NoError(t, err)
	assert.Equal(t, expected, calldata)
}

func TestExecuteFallsBackInOrder(t *testing.T) {
	bad := gatewayFailing(t, http.StatusInternalServerError)
	good := gatewayAnswering(t, []byte{0xaa})

	var calls []string
	probe := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, "probe")
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer probe.Close()

	_, err := testHandler().Execute(context.Background(), testSender, testLookup(probe.URL, bad.URL, good.URL), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"probe"}, calls, "first gateway is tried exactly once")
}

func TestExecuteClientErrorIsTerminal(t *testing.T) {
	rejecting := gatewayFailing(t, http.StatusBadRequest)

	var reached bool
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))
	defer fallback.Close()

	_, err := testHandler().Execute(context.Background(), testSender, testLookup(rejecting.URL, fallback.URL), nil)
	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.Status)
	assert.False(t, reached, "4xx must not fall through to the next gateway")
}

func TestExecuteExhaustion(t *testing.T) {
	first := gatewayFailing(t, http.StatusInternalServerError)
	second := gatewayFailing(t, http.StatusServiceUnavailable)

	_, err := testHandler().Execute(context.Background(), testSender, testLookup(first.URL, second.URL), nil)
	var allFailed *AllGatewaysFailedError
	require.ErrorAs(t, err, &allFailed)
	assert.Len(t, allFailed.Causes, 2)
}

func TestExecuteMalformedPayloadAdvances(t *testing.T) {
	garbage := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer garbage.Close()
	good := gatewayAnswering(t, []byte{0xaa})

	_, err := testHandler().Execute(context.Background(), testSender, testLookup(garbage.URL, good.URL), nil)
	assert.NoError(t, err)
}

func TestExecuteSenderMismatch(t *testing.T) {
	lookup := testLookup("https://unreachable.invalid")
	lookup.Sender = common.HexToAddress("0x00000000000000000000000000000000000000aa")

	_, err := testHandler().Execute(context.Background(), testSender, lookup, nil)
	var mismatch *SenderMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, testSender, mismatch.Expected)
}

func TestExecuteURLOverride(t *testing.T) {
	good := gatewayAnswering(t, []byte{0xaa})

	// The signal's own URL would fail; the override must win.
	_, err := testHandler().Execute(context.Background(), testSender, testLookup("https://unreachable.invalid"), []string{good.URL})
	assert.NoError(t, err)
}

func TestExecuteNoURLs(t *testing.T) {
	_, err := testHandler().Execute(context.Background(), testSender, testLookup(), nil)
	var allFailed *AllGatewaysFailedError
	assert.ErrorAs(t, err, &allFailed)
}
