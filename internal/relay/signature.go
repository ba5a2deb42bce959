package relay

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// intentDigest computes the digest a user signs over a vote intent:
// keccak over (chainId, user, target, keccak(callData), deadline,
// executeNonce), wrapped in the personal-message prefix. Binding the
// execute nonce makes every intent single-use.
func intentDigest(chainID *big.Int, user, target common.Address, callData []byte, deadline, nonce uint64) common.Hash {
	payload := make([]byte, 0, 32*4+20*2)
	payload = append(payload, common.LeftPadBytes(chainID.Bytes(), 32)...)
	payload = append(payload, user.Bytes()...)
	payload = append(payload, target.Bytes()...)
	payload = append(payload, crypto.Keccak256(callData)...)
	payload = append(payload, common.LeftPadBytes(new(big.Int).SetUint64(deadline).Bytes(), 32)...)
	payload = append(payload, common.LeftPadBytes(new(big.Int).SetUint64(nonce).Bytes(), 32)...)

	inner := crypto.Keccak256(payload)
	return crypto.Keccak256Hash([]byte("\x19Ethereum Signed Message:\n32"), inner)
}

// recoverSigner returns the address that produced the 65-byte signature
// over the digest. Both 0/1 and 27/28 recovery ids are accepted.
func recoverSigner(digest common.Hash, sig []byte) (common.Address, error) {
	if len(sig) != 65 {
		return common.Address{}, fmt.Errorf("signature length: got %d, want 65", len(sig))
	}

	normalized := make([]byte, 65)
	copy(normalized, sig)
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}

	pub, err := crypto.SigToPub(digest.Bytes(), normalized)
	if err != nil {
		return common.Address{}, fmt.Errorf("recover signer: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}
