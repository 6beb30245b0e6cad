// Package codec owns the ABI surface of the lookup contract: encoding the
// reverse and forward calls, decoding their results, and decoding revert
// payloads into tagged protocol signals.
package codec

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Subset of the universal resolver ABI used by this service, including the
// EIP-3668 offchain lookup signal and the named errors the contract reverts
// with.
const lookupResolverABIJSON = `[
	{"type":"function","name":"reverse","stateMutability":"view","inputs":[{"name":"reverseName","type":"bytes"}],"outputs":[{"name":"name","type":"string"},{"name":"resolver","type":"address"}]},
	{"type":"function","name":"resolve","stateMutability":"view","inputs":[{"name":"name","type":"bytes"},{"name":"data","type":"bytes"}],"outputs":[{"name":"result","type":"bytes"},{"name":"resolver","type":"address"}]},
	{"type":"error","name":"OffchainLookup","inputs":[{"name":"sender","type":"address"},{"name":"urls","type":"string[]"},{"name":"callData","type":"bytes"},{"name":"callbackFunction","type":"bytes4"},{"name":"extraData","type":"bytes"}]},
	{"type":"error","name":"ResolverNotFound","inputs":[]},
	{"type":"error","name":"ResolverNotContract","inputs":[]},
	{"type":"error","name":"ResolverWildcardNotSupported","inputs":[]},
	{"type":"error","name":"ResolverError","inputs":[{"name":"returnData","type":"bytes"}]},
	{"type":"error","name":"HttpError","inputs":[{"name":"status","type":"uint16"},{"name":"message","type":"string"}]}
]`

const addrResolverABIJSON = `[
	{"type":"function","name":"addr","stateMutability":"view","inputs":[{"name":"node","type":"bytes32"}],"outputs":[{"name":"","type":"address"}]}
]`

// LookupResolverABI is the parsed lookup contract ABI. Exported so tests and
// gateway fixtures can build payloads without duplicating the JSON.
var LookupResolverABI = mustParseABI(lookupResolverABIJSON)

// AddrResolverABI is the parsed addr() resolver profile used for forward
// verification.
var AddrResolverABI = mustParseABI(addrResolverABIJSON)

func mustParseABI(data string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(data))
	if err != nil {
		panic(err)
	}
	return parsed
}

// EncodeReverseCall packs reverse(reverseName) for a DNS-encoded reverse
// name.
func EncodeReverseCall(reverseName []byte) ([]byte, error) {
	return LookupResolverABI.Pack("reverse", reverseName)
}

// DecodeReverseResult unpacks the (name, resolver) pair returned by
// reverse().
func DecodeReverseResult(data []byte) (string, common.Address, error) {
	vals, err := LookupResolverABI.Unpack("reverse", data)
	if err != nil {
		return "", common.Address{}, fmt.Errorf("could not decode reverse result: %w", err)
	}
	name, ok := vals[0].(string)
	resolver, ok2 := vals[1].(common.Address)
	if !ok || !ok2 {
		return "", common.Address{}, fmt.Errorf("unexpected reverse result shape: %v", vals)
	}
	return name, resolver, nil
}

// EncodeResolveCall packs resolve(name, data) with data set to an addr(node)
// call, the forward lookup used for verification.
func EncodeResolveCall(dnsName []byte, node [32]byte) ([]byte, error) {
	inner, err := AddrResolverABI.Pack("addr", node)
	if err != nil {
		return nil, err
	}
	return LookupResolverABI.Pack("resolve", dnsName, inner)
}

// DecodeResolveResult unpacks the (result, resolver) pair returned by
// resolve() and decodes the inner result as an address.
func DecodeResolveResult(data []byte) (common.Address, common.Address, error) {
	vals, err := LookupResolverABI.Unpack("resolve", data)
	if err != nil {
		return common.Address{}, common.Address{}, fmt.Errorf("could not decode resolve result: %w", err)
	}
	result, ok := vals[0].([]byte)
	resolver, ok2 := vals[1].(common.Address)
	if !ok || !ok2 {
		return common.Address{}, common.Address{}, fmt.Errorf("unexpected resolve result shape: %v", vals)
	}
	if len(result) == 0 {
		return common.Address{}, resolver, nil
	}

	inner, err := AddrResolverABI.Unpack("addr", result)
	if err != nil {
		return common.Address{}, common.Address{}, fmt.Errorf("could not decode forward address: %w", err)
	}
	addr, ok := inner[0].(common.Address)
	if !ok {
		return common.Address{}, common.Address{}, fmt.Errorf("unexpected forward address shape: %v", inner)
	}
	return addr, resolver, nil
}

// EncodeCallback builds the calldata for an offchain lookup callback: the
// 4-byte selector followed by abi-encoded (response, extraData), per
// EIP-3668.
func EncodeCallback(selector [4]byte, response, extraData []byte) ([]byte, error) {
	packed, err := callbackArgs.Pack(response, extraData)
	if err != nil {
		return nil, fmt.Errorf("could not encode callback arguments: %w", err)
	}
	return append(selector[:], packed...), nil
}

var callbackArgs = abi.Arguments{
	{Name: "response", Type: mustType("bytes")},
	{Name: "extraData", Type: mustType("bytes")},
}

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

// EncodeReverseResult packs a (name, resolver) pair the way reverse()
// returns it. Used by tests and gateway fixtures.
func EncodeReverseResult(name string, resolver common.Address) ([]byte, error) {
	return LookupResolverABI.Methods["reverse"].Outputs.Pack(name, resolver)
}

// EncodeResolveResult packs a (result, resolver) pair the way resolve()
// returns it, with result holding the abi-encoded address. Used by tests and
// gateway fixtures.
func EncodeResolveResult(addr common.Address, resolver common.Address) ([]byte, error) {
	inner, err := AddrResolverABI.Methods["addr"].Outputs.Pack(addr)
	if err != nil {
		return nil, err
	}
	return LookupResolverABI.Methods["resolve"].Outputs.Pack(inner, resolver)
}
