package codec

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// RevertKind tags a decoded revert payload.
type RevertKind int

const (
	// RevertUnclassified covers revert data that matches no known selector.
	RevertUnclassified RevertKind = iota
	// RevertEmpty is a revert with no data at all.
	RevertEmpty
	// RevertOffchainLookup is the EIP-3668 signal. The Lookup field is set.
	RevertOffchainLookup
	// RevertResolverNotFound means no resolver is configured for the name.
	RevertResolverNotFound
	// RevertResolverNotContract means the configured resolver address holds
	// no code.
	RevertResolverNotContract
	// RevertWildcardNotSupported means the resolver predates ENSIP-10.
	RevertWildcardNotSupported
	// RevertResolverError wraps a revert raised by the resolver itself. The
	// ReturnData field carries its payload.
	RevertResolverError
	// RevertHTTPError is the contract-side report of a failed gateway fetch.
	// Status and Message are set.
	RevertHTTPError
)

func (k RevertKind) String() string {
	switch k {
	case RevertEmpty:
		return "empty revert"
	case RevertOffchainLookup:
		return "OffchainLookup"
	case RevertResolverNotFound:
		return "ResolverNotFound"
	case RevertResolverNotContract:
		return "ResolverNotContract"
	case RevertWildcardNotSupported:
		return "ResolverWildcardNotSupported"
	case RevertResolverError:
		return "ResolverError"
	case RevertHTTPError:
		return "HttpError"
	default:
		return "unclassified revert"
	}
}

// OffchainLookup carries the decoded fields of an EIP-3668 revert.
type OffchainLookup struct {
	Sender           common.Address
	URLs             []string
	CallData         []byte
	CallbackFunction [4]byte
	ExtraData        []byte
}

// RevertSignal is a decoded revert payload. Fields beyond Kind are populated
// according to the kind's documentation.
type RevertSignal struct {
	Kind       RevertKind
	Lookup     *OffchainLookup
	ReturnData []byte
	Status     uint16
	Message    string
	Raw        []byte
}

func (s *RevertSignal) String() string {
	switch s.Kind {
	case RevertResolverError:
		return fmt.Sprintf("ResolverError(%s)", hexutil.Encode(s.ReturnData))
	case RevertHTTPError:
		return fmt.Sprintf("HttpError(%d, %q)", s.Status, s.Message)
	default:
		return s.Kind.String()
	}
}

// DecodeRevert classifies raw revert data into a RevertSignal. It never
// fails: data that matches no known error selector, or that matches a
// selector but does not unpack, comes back as RevertUnclassified with the raw
// bytes preserved.
func DecodeRevert(data []byte) *RevertSignal {
	signal := &RevertSignal{Kind: RevertUnclassified, Raw: data}
	if len(data) == 0 {
		signal.Kind = RevertEmpty
		return signal
	}
	if len(data) < 4 {
		return signal
	}

	for name, abiErr := range LookupResolverABI.Errors {
		if !bytes.Equal(abiErr.ID[:4], data[:4]) {
			continue
		}
		vals, err := abiErr.Unpack(data)
		if err != nil {
			return signal
		}
		args, _ := vals.([]interface{})

		switch name {
		case "OffchainLookup":
			if len(args) != 5 {
				return signal
			}
			sender, ok0 := args[0].(common.Address)
			urls, ok1 := args[1].([]string)
			callData, ok2 := args[2].([]byte)
			callback, ok3 := args[3].([4]byte)
			extraData, ok4 := args[4].([]byte)
			if !ok0 || !ok1 || !ok2 || !ok3 || !ok4 {
				return signal
			}
			signal.Kind = RevertOffchainLookup
			signal.Lookup = &OffchainLookup{
				Sender:           sender,
				URLs:             urls,
				CallData:         callData,
				CallbackFunction: callback,
				ExtraData:        extraData,
			}
		case "ResolverNotFound":
			signal.Kind = RevertResolverNotFound
		case "ResolverNotContract":
			signal.Kind = RevertResolverNotContract
		case "ResolverWildcardNotSupported":
			signal.Kind = RevertWildcardNotSupported
		case "ResolverError":
			returnData, ok := args[0].([]byte)
			if !ok {
				return signal
			}
			signal.Kind = RevertResolverError
			signal.ReturnData = returnData
		case "HttpError":
			status, ok0 := args[0].(uint16)
			message, ok1 := args[1].(string)
			if !ok0 || !ok1 {
				return signal
			}
			signal.Kind = RevertHTTPError
			signal.Status = status
			signal.Message = message
		}
		return signal
	}
	return signal
}

// RevertDataFromError extracts revert bytes from a node call error. Geth
// transports expose them through rpc.DataError as a hex string. The second
// return is false when the error carries no usable revert data, which marks
// it as an infrastructure failure rather than a contract signal.
func RevertDataFromError(err error) ([]byte, bool) {
	var dataErr rpc.DataError
	if !errors.As(err, &dataErr) {
		return nil, false
	}
	hexData, ok := dataErr.ErrorData().(string)
	if !ok {
		return nil, false
	}
	data, decodeErr := hexutil.Decode(hexData)
	if decodeErr != nil {
		return nil, false
	}
	return data, true
}
