package blocks

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"

	"github.com/strandnet/strandd/util/chainhash"
)

// BlockType identifies a block variant on the wire and in the block table.
// The ordinal values are part of the persisted format; state is deliberately
// the highest value so that "legacy" can be expressed as a type comparison.
type BlockType byte

// Block type constants.
const (
	BlockTypeInvalid BlockType = iota
	BlockTypeNotABlock
	BlockTypeSend
	BlockTypeReceive
	BlockTypeOpen
	BlockTypeChange
	BlockTypeState
)

var blockTypeStrings = map[BlockType]string{
	BlockTypeInvalid:   "invalid",
	BlockTypeNotABlock: "not_a_block",
	BlockTypeSend:      "send",
	BlockTypeReceive:   "receive",
	BlockTypeOpen:      "open",
	BlockTypeChange:    "change",
	BlockTypeState:     "state",
}

// String returns the BlockType as a human-readable string.
func (t BlockType) String() string {
	s, ok := blockTypeStrings[t]
	if !ok {
		return "unknown"
	}
	return s
}

// IsLegacy returns true for the four pre-state block variants. Legacy
// chains maintain frontier entries; state chains do not.
func (t BlockType) IsLegacy() bool {
	return t >= BlockTypeSend && t < BlockTypeState
}

// SignatureSize is the length in bytes of a block signature.
const SignatureSize = 64

// Signature is an ed25519 signature over a block's hash by the owning
// account's key.
type Signature [SignatureSize]byte

// String returns the signature as a hexadecimal string.
func (s Signature) String() string {
	return hex.EncodeToString(s[:])
}

// Block is the sum type over the five block variants. Every variant hashes
// its canonical fields, names the slot it contends for via Root, and is
// signed by exactly one account.
type Block interface {
	// Type returns the block's variant tag.
	Type() BlockType

	// Hash returns the blake2b digest of the block's canonical fields.
	Hash() chainhash.Hash

	// Previous returns the hash of the preceding block on the owning
	// account's chain, or the zero hash for an opening block.
	Previous() chainhash.Hash

	// Root returns Previous when it is non-zero and the owning account
	// otherwise. Two blocks conflict exactly when their roots are equal.
	Root() chainhash.Hash

	// Source returns the hash of the send being claimed. It is non-zero
	// only for receive and open blocks; state blocks encode their source
	// in Link and always return zero here.
	Source() chainhash.Hash

	// BlockSignature returns the signature over Hash.
	BlockSignature() Signature

	// SetBlockSignature replaces the signature.
	SetBlockSignature(signature Signature)

	// ValidPredecessor reports whether this block's variant is allowed to
	// directly follow the given predecessor on a chain.
	ValidPredecessor(predecessor Block) bool
}

// digest hashes the given canonical field encodings with blake2b-256.
func digest(fields ...[]byte) chainhash.Hash {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	for _, field := range fields {
		h.Write(field)
	}
	var hash chainhash.Hash
	copy(hash[:], h.Sum(nil))
	return hash
}

// legacyValidPredecessor is the shared predecessor rule of the send,
// receive and change variants: any legacy block may precede them, a state
// block may not. State chains drop their frontier entries, so this check is
// the second line of defense against extending a state chain the legacy way.
func legacyValidPredecessor(predecessor Block) bool {
	if predecessor == nil {
		return false
	}
	return predecessor.Type().IsLegacy()
}
