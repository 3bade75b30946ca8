package blocks

import (
	"github.com/holiman/uint256"

	"github.com/strandnet/strandd/util"
	"github.com/strandnet/strandd/util/chainhash"
)

// SendBlock debits its account. Balance is the balance *remaining* after the
// send; the sent amount is the difference from the previous balance and is
// recorded in the pending table keyed by Destination.
type SendBlock struct {
	PreviousHash chainhash.Hash
	Destination  util.Account
	Balance      *uint256.Int
	Signature    Signature
}

// Type returns the block's variant tag.
func (b *SendBlock) Type() BlockType {
	return BlockTypeSend
}

// Hash returns the blake2b digest of the block's canonical fields.
func (b *SendBlock) Hash() chainhash.Hash {
	balance := util.AmountBytes(b.Balance)
	return digest(b.PreviousHash[:], b.Destination[:], balance[:])
}

// Previous returns the hash of the preceding block.
func (b *SendBlock) Previous() chainhash.Hash {
	return b.PreviousHash
}

// Root returns the slot this block contends for.
func (b *SendBlock) Root() chainhash.Hash {
	return b.PreviousHash
}

// Source returns the zero hash; sends have no source.
func (b *SendBlock) Source() chainhash.Hash {
	return chainhash.ZeroHash
}

// BlockSignature returns the signature over Hash.
func (b *SendBlock) BlockSignature() Signature {
	return b.Signature
}

// SetBlockSignature replaces the signature.
func (b *SendBlock) SetBlockSignature(signature Signature) {
	b.Signature = signature
}

// ValidPredecessor reports whether predecessor may directly precede a send.
func (b *SendBlock) ValidPredecessor(predecessor Block) bool {
	return legacyValidPredecessor(predecessor)
}
