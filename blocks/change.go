package blocks

import (
	"github.com/strandnet/strandd/util"
	"github.com/strandnet/strandd/util/chainhash"
)

// ChangeBlock re-delegates the account's full balance to a new
// representative. The balance itself is unchanged.
type ChangeBlock struct {
	PreviousHash   chainhash.Hash
	Representative util.Account
	Signature      Signature
}

// Type returns the block's variant tag.
func (b *ChangeBlock) Type() BlockType {
	return BlockTypeChange
}

// Hash returns the blake2b digest of the block's canonical fields.
func (b *ChangeBlock) Hash() chainhash.Hash {
	return digest(b.PreviousHash[:], b.Representative[:])
}

// Previous returns the hash of the preceding block.
func (b *ChangeBlock) Previous() chainhash.Hash {
	return b.PreviousHash
}

// Root returns the slot this block contends for.
func (b *ChangeBlock) Root() chainhash.Hash {
	return b.PreviousHash
}

// Source returns the zero hash; changes have no source.
func (b *ChangeBlock) Source() chainhash.Hash {
	return chainhash.ZeroHash
}

// BlockSignature returns the signature over Hash.
func (b *ChangeBlock) BlockSignature() Signature {
	return b.Signature
}

// SetBlockSignature replaces the signature.
func (b *ChangeBlock) SetBlockSignature(signature Signature) {
	b.Signature = signature
}

// ValidPredecessor reports whether predecessor may directly precede a
// change.
func (b *ChangeBlock) ValidPredecessor(predecessor Block) bool {
	return legacyValidPredecessor(predecessor)
}
