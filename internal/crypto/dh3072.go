package crypto

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"otr4/internal/domain/types"
)

// modp3072Hex is the RFC 3526 section 4 "3072-bit MODP Group" (Group 15)
// prime, transcribed from the published constant. Verify against the RFC
// text before relying on this in a production build.
const modp3072Hex = "" +
	"FFFFFFFFFFFFFFFFC90FDAA22168C234C4C6628B80DC1CD129024E088A67CC74020BBEA63B139B22514A08798E3404DDEF9519B3CD3A431B302B0A6DF25F14374FE1356D6D51C245E485B576625E7EC6F44C42E9A637ED6B0BFF5CB6F406B7EDEE386BFB5A899FA5AE9F24117C4B1FE649286651ECE45B3DC2007CB8A163BF0598DA48361C55D39A69163FA8FD24CF5F83655D23DCA3AD961C62F356208552BB9ED529077096966D670C354E4ABC9804F1746C08CA18217C32905E462E36CE3BE39E772C180E86039B2783A2EC07A28FB5C55DF06F4C52C9DE2BCBF6955817183995497CEA956AE515D2261898FA051015728E5A8AAAC42DAD33170D04507A33A85521ABDF1CBA64ECFB850458DBEF0A8AEA71575D060C7DB3970F85A6E1E4C7ABF5AE8CDB0933D71E8C94E04A25619DCEE3D2261AD2EE6BF12FFA06D98A0864D87602733EC86A64521F2B18177B200CBBE117577A615D6C770988C0BAD946E208E24FA074E5AB3143DB5BFCE0FD108E4B82D120A93AD2CAFFFFFFFFFFFFFFFF"

// dh3072Generator is the standard generator for the MODP groups (g=2).
const dh3072Generator = 2

var dh3072Prime *big.Int

func init() {
	p, ok := new(big.Int).SetString(modp3072Hex, 16)
	if !ok {
		panic("crypto: failed to parse RFC 3526 3072-bit MODP prime")
	}
	dh3072Prime = p
}

// dh3072PrivateLen is the byte length of the 3072-bit modulus, large
// enough to hold any exponent in [2, p-2] with FillBytes's zero-padding.
const dh3072PrivateLen = 3072 / 8

// GenerateDH returns a fresh classical DH keypair over the RFC 3526
// 3072-bit MODP group, used for the ratchet's periodic "brace key", backed
// by the package's DefaultAllocator.
func GenerateDH() (types.DHPrivate, types.DHPublic, error) {
	return GenerateDHWithAllocator(DefaultAllocator)
}

// GenerateDHWithAllocator is GenerateDH with an explicit Allocator for the
// private exponent's backing buffer — the one variable-length,
// several-hundred-byte secret in the whole core, and so the natural home
// for spec 5's secure-allocator pool (a nil allocator falls back to
// DefaultAllocator).
func GenerateDHWithAllocator(a Allocator) (types.DHPrivate, types.DHPublic, error) {
	a = WithAllocator(a)
	// Exponent range [2, p-2]; p-1 is not prime so there is no neat
	// subgroup order to sample against, matching the group's historical
	// (non-safe-prime-subgroup) usage in OTR/OTRv4 implementations.
	max := new(big.Int).Sub(dh3072Prime, big.NewInt(3))
	k, err := rand.Int(rand.Reader, max)
	if err != nil {
		return nil, nil, fmt.Errorf("crypto: generate DH exponent: %w", err)
	}
	k.Add(k, big.NewInt(2))

	buf := a.Alloc(dh3072PrivateLen)
	priv := types.DHPrivate(k.FillBytes(buf))

	pub := new(big.Int).Exp(big.NewInt(dh3072Generator), k, dh3072Prime)
	return priv, types.DHPublic(pub.Bytes()), nil
}

// DH computes priv^pub... rather, pub^priv mod p, the shared secret as a
// minimal-length big-endian integer with no leading zero bytes.
func DH(priv types.DHPrivate, pub types.DHPublic) (types.DHPublic, error) {
	if len(pub) == 0 {
		return nil, fmt.Errorf("crypto: empty DH public value")
	}
	k := new(big.Int).SetBytes(priv)
	p := new(big.Int).SetBytes(pub)
	if p.Cmp(dh3072Prime) >= 0 || p.Sign() <= 0 {
		return nil, fmt.Errorf("crypto: DH public value out of range")
	}
	shared := new(big.Int).Exp(p, k, dh3072Prime)
	return types.DHPublic(shared.Bytes()), nil
}

// DHPrime returns the RFC 3526 3072-bit MODP prime, exposed for validation
// of received DH public values.
func DHPrime() *big.Int { return dh3072Prime }
