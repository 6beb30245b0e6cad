// Package ensname implements the name machinery the lookup contract expects:
// UTS-46 normalization, labelhash/namehash, reverse-record names and the DNS
// wire encoding used for both reverse and wildcard forward lookups.
package ensname

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/miekg/dns"
	"golang.org/x/crypto/sha3"
	"golang.org/x/net/idna"
)

// UTS-46 processing with transitional mapping disabled, per ENSIP-1.
var profile = idna.New(idna.MapForLookup(), idna.StrictDomainName(false), idna.Transitional(false))

// Normalize normalizes a name according to the ENS name rules.
func Normalize(name string) (string, error) {
	output, err := profile.ToUnicode(name)
	if err != nil {
		return "", fmt.Errorf("could not normalize %q: %w", name, err)
	}
	// ToUnicode strips a leading period; keep it.
	if strings.HasPrefix(name, ".") && !strings.HasPrefix(output, ".") {
		output = "." + output
	}
	return output, nil
}

// LabelHash returns the keccak256 hash of a single normalized label. An
// empty label hashes to keccak256 of the empty string.
func LabelHash(label string) (hash [32]byte, err error) {
	if strings.Contains(label, ".") {
		return hash, fmt.Errorf("label %q contains a period", label)
	}

	normalized, err := Normalize(label)
	if err != nil {
		return hash, err
	}

	sha := sha3.NewLegacyKeccak256()
	sha.Write([]byte(normalized))
	sha.Sum(hash[:0])
	return hash, nil
}

// NameHash computes the node hash of a name as defined by EIP-137: the name
// is normalized, split into labels, and their label hashes folded
// right-to-left with keccak256.
func NameHash(name string) (hash [32]byte, err error) {
	if name == "" {
		return hash, nil
	}

	normalized, err := Normalize(name)
	if err != nil {
		return hash, err
	}

	labels := strings.Split(normalized, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		labelHash, err := LabelHash(labels[i])
		if err != nil {
			return [32]byte{}, err
		}

		sha := sha3.NewLegacyKeccak256()
		sha.Write(hash[:])
		sha.Write(labelHash[:])
		sha.Sum(hash[:0])
	}
	return hash, nil
}

// ReverseName returns the reverse-record name for an address:
// "<40 lowercase hex chars>.addr.reverse", without a 0x prefix.
func ReverseName(addr common.Address) string {
	return hex.EncodeToString(addr[:]) + ".addr.reverse"
}

// DNSEncode packs a dotted name into uncompressed DNS wire format. The
// lookup contract takes names in this shape for both reverse() and
// resolve().
func DNSEncode(name string) ([]byte, error) {
	normalized, err := Normalize(name)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 256)
	off, err := dns.PackDomainName(dns.Fqdn(normalized), buf, 0, nil, false)
	if err != nil {
		return nil, fmt.Errorf("could not dns-encode %q: %w", name, err)
	}
	return buf[:off], nil
}
