package ccipread

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/nameview/reverse-resolution-backend/interfaces"
)

// Gateway responses larger than this are treated as malformed.
const maxResponseSize = 1 << 20

// HTTPStatusError is a gateway response with a non-2xx status. 4xx statuses
// are deterministic rejections of the query and end the gateway iteration.
type HTTPStatusError struct {
	URL    string
	Status int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("gateway %s answered with status %d", e.URL, e.Status)
}

// Terminal reports whether retrying other gateways is pointless.
func (e *HTTPStatusError) Terminal() bool {
	return e.Status >= 400 && e.Status < 500
}

type gatewayRequest struct {
	Sender string `json:"sender"`
	Data   string `json:"data"`
}

type gatewayResponse struct {
	Data string `json:"data"`
}

// Client performs single gateway exchanges.
type Client struct {
	httpClient interfaces.HTTPDoer
}

// NewClient creates a gateway client on top of the given HTTP transport.
func NewClient(httpClient interfaces.HTTPDoer) *Client {
	return &Client{httpClient: httpClient}
}

// Fetch queries one gateway URL for the given sender and call data and
// returns the decoded response bytes.
func (c *Client) Fetch(ctx context.Context, url string, sender common.Address, callData []byte) ([]byte, error) {
	senderHex := strings.ToLower(sender.Hex())
	dataHex := hexutil.Encode(callData)

	var req *http.Request
	var err error
	if strings.Contains(url, "{data}") {
		target := strings.NewReplacer("{sender}", senderHex, "{data}", dataHex).Replace(url)
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	} else {
		var body []byte
		body, err = json.Marshal(gatewayRequest{Sender: senderHex, Data: dataHex})
		if err == nil {
			target := strings.ReplaceAll(url, "{sender}", senderHex)
			req, err = http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
			if req != nil {
				req.Header.Set("Content-Type", "application/json")
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("could not build gateway request for %s: %w", url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPStatusError{URL: url, Status: resp.StatusCode}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("could not read gateway response from %s: %w", url, err)
	}

	var parsed gatewayResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("malformed gateway response from %s: %w", url, err)
	}
	data, err := hexutil.Decode(parsed.Data)
	if err != nil {
		return nil, fmt.Errorf("malformed gateway response data from %s: %w", url, err)
	}
	return data, nil
}
