// Package reverse implements primary-name resolution: given an address it
// asks the chain's lookup contract for the reverse record, follows any
// offchain lookup redirects, and verifies the claimed name by resolving it
// forward to the original address.
//
// Failures split into three groups. Protocol signals that simply mean "this
// address has no usable name" (missing resolvers, resolver reverts, gateway
// failures) are suppressed into an empty result by default and surfaced as
// typed ResolutionErrors in strict mode. Configuration problems, like an
// unknown chain or a block that predates the lookup contract, are always
// returned. Infrastructure failures, like an unreachable node or an
// undecodable response, are always returned as well. An empty reverse
// record is a clean empty result in both modes, and so is a forward record
// that disagrees with the queried address; a mismatching name is worse than
// no name.
package reverse
