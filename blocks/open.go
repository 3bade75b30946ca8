package blocks

import (
	"github.com/strandnet/strandd/util"
	"github.com/strandnet/strandd/util/chainhash"
)

// OpenBlock is the first block of an account's chain. It claims the pending
// entry named in SourceHash and elects the account's first representative.
type OpenBlock struct {
	SourceHash     chainhash.Hash
	Representative util.Account
	Account        util.Account
	Signature      Signature
}

// Type returns the block's variant tag.
func (b *OpenBlock) Type() BlockType {
	return BlockTypeOpen
}

// Hash returns the blake2b digest of the block's canonical fields.
func (b *OpenBlock) Hash() chainhash.Hash {
	return digest(b.SourceHash[:], b.Representative[:], b.Account[:])
}

// Previous returns the zero hash; an open block starts a chain.
func (b *OpenBlock) Previous() chainhash.Hash {
	return chainhash.ZeroHash
}

// Root returns the slot this block contends for, which for an open block is
// the account itself.
func (b *OpenBlock) Root() chainhash.Hash {
	return b.Account.AsHash()
}

// Source returns the hash of the send being claimed.
func (b *OpenBlock) Source() chainhash.Hash {
	return b.SourceHash
}

// BlockSignature returns the signature over Hash.
func (b *OpenBlock) BlockSignature() Signature {
	return b.Signature
}

// SetBlockSignature replaces the signature.
func (b *OpenBlock) SetBlockSignature(signature Signature) {
	b.Signature = signature
}

// ValidPredecessor always returns false; nothing precedes an open block.
func (b *OpenBlock) ValidPredecessor(Block) bool {
	return false
}
