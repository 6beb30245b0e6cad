// Package interfaces defines the core types and collaborator contracts for
// the reverse-resolution system. It provides the contract between different
// components without implementation details.
//
// The package deliberately contains no I/O of its own. The two collaborator
// interfaces it declares are satisfied by standard implementations:
// ContractCaller by *ethclient.Client, and HTTPDoer by *http.Client. Tests
// substitute testify mocks or httptest-backed clients for both.
//
// A ResolutionRequest describes one reverse lookup: the address to resolve,
// an optional lookup-contract override, an optional historical block
// constraint, an optional gateway URL override list, and the strict flag
// that turns classified resolution failures into typed errors. Requests are
// never shared between goroutines; each resolution owns its request and all
// derived state exclusively.
package interfaces
