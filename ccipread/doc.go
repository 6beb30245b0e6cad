// Package ccipread implements the client side of EIP-3668 offchain lookups:
// fetching gateway responses for an OffchainLookup revert and assembling the
// callback calldata that resumes the onchain call.
//
// A Client performs a single gateway exchange. URLs containing a {data}
// substitution are queried with GET, others with a POST carrying a JSON body
// of the sender and call data. Either way the gateway answers with a JSON
// object holding hex-encoded response data.
//
// A Handler drives the gateway list for one lookup signal. URLs are tried
// strictly in order. A 4xx response is treated as a deterministic rejection
// and ends the attempt immediately; 5xx responses, transport failures and
// malformed payloads advance to the next URL. When every URL has failed the
// handler reports AllGatewaysFailedError with the per-URL causes attached.
package ccipread
