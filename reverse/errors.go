package reverse

import (
	"errors"
	"fmt"

	"github.com/nameview/reverse-resolution-backend/ccipread"
	"github.com/nameview/reverse-resolution-backend/codec"
)

// Kind names the protocol condition a suppressed resolution failed on.
type Kind string

const (
	KindResolverNotFound     Kind = "resolver_not_found"
	KindResolverNotContract  Kind = "resolver_not_contract"
	KindWildcardNotSupported Kind = "wildcard_not_supported"
	KindResolverError        Kind = "resolver_error"
	KindHTTPError            Kind = "http_error"
	KindGatewaysFailed       Kind = "gateways_failed"
	KindEmptyRevert          Kind = "empty_revert"
	KindUnclassifiedRevert   Kind = "unclassified_revert"
)

// Resolution stages, used to report where a strict-mode failure happened.
const (
	StageReverse = "reverse"
	StageForward = "forward"
)

// ResolutionError is a classified "no usable name" condition. It is only
// returned in strict mode; otherwise these conditions collapse into an empty
// result.
type ResolutionError struct {
	Kind  Kind
	Stage string
	Err   error
}

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s lookup failed (%s): %s", e.Stage, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s lookup failed (%s)", e.Stage, e.Kind)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// classifySignal maps a decoded contract revert to a resolution kind. Every
// non-redirect revert means "no usable name" for the address: even an
// undecodable revert shape only proves the resolver misbehaved, not that the
// infrastructure did.
func classifySignal(signal *codec.RevertSignal) Kind {
	switch signal.Kind {
	case codec.RevertResolverNotFound:
		return KindResolverNotFound
	case codec.RevertResolverNotContract:
		return KindResolverNotContract
	case codec.RevertWildcardNotSupported:
		return KindWildcardNotSupported
	case codec.RevertResolverError:
		return KindResolverError
	case codec.RevertHTTPError:
		return KindHTTPError
	case codec.RevertEmpty:
		return KindEmptyRevert
	default:
		return KindUnclassifiedRevert
	}
}

// classifyGatewayError maps offchain lookup failures to a resolution kind.
// The second return is false for errors that must always surface, like a
// transport failure. A sender mismatch counts as an unclassified revert: the
// contract produced a signal that cannot be trusted.
func classifyGatewayError(err error) (Kind, bool) {
	var allFailed *ccipread.AllGatewaysFailedError
	if errors.As(err, &allFailed) {
		return KindGatewaysFailed, true
	}
	var statusErr *ccipread.HTTPStatusError
	if errors.As(err, &statusErr) {
		return KindHTTPError, true
	}
	var mismatch *ccipread.SenderMismatchError
	if errors.As(err, &mismatch) {
		return KindUnclassifiedRevert, true
	}
	return "", false
}
