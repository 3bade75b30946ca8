package blocks

import (
	"github.com/strandnet/strandd/util/chainhash"
)

// ReceiveBlock credits its account by claiming the pending entry created by
// the send block named in SourceHash.
type ReceiveBlock struct {
	PreviousHash chainhash.Hash
	SourceHash   chainhash.Hash
	Signature    Signature
}

// Type returns the block's variant tag.
func (b *ReceiveBlock) Type() BlockType {
	return BlockTypeReceive
}

// Hash returns the blake2b digest of the block's canonical fields.
func (b *ReceiveBlock) Hash() chainhash.Hash {
	return digest(b.PreviousHash[:], b.SourceHash[:])
}

// Previous returns the hash of the preceding block.
func (b *ReceiveBlock) Previous() chainhash.Hash {
	return b.PreviousHash
}

// Root returns the slot this block contends for.
func (b *ReceiveBlock) Root() chainhash.Hash {
	return b.PreviousHash
}

// Source returns the hash of the send being claimed.
func (b *ReceiveBlock) Source() chainhash.Hash {
	return b.SourceHash
}

// BlockSignature returns the signature over Hash.
func (b *ReceiveBlock) BlockSignature() Signature {
	return b.Signature
}

// SetBlockSignature replaces the signature.
func (b *ReceiveBlock) SetBlockSignature(signature Signature) {
	b.Signature = signature
}

// ValidPredecessor reports whether predecessor may directly precede a
// receive.
func (b *ReceiveBlock) ValidPredecessor(predecessor Block) bool {
	return legacyValidPredecessor(predecessor)
}
