package blocks

import (
	"github.com/holiman/uint256"

	"github.com/strandnet/strandd/util"
	"github.com/strandnet/strandd/util/chainhash"
)

// statePreamble is the leading field of a state block digest. It keeps
// state hashes disjoint from every legacy digest, whose first field is a
// hash or account that cannot collide with this constant.
var statePreamble = func() [32]byte {
	var preamble [32]byte
	preamble[31] = byte(BlockTypeState)
	return preamble
}()

// StateBlock is the unified block variant. A single layout encodes a send,
// a receive, an open or a pure representative change; the direction is
// recovered by comparing Balance against the chain's prior balance, and
// Link carries the counterparty (destination account for a send, source
// hash for a receive, zero for a representative change).
type StateBlock struct {
	Account        util.Account
	PreviousHash   chainhash.Hash
	Representative util.Account
	Balance        *uint256.Int
	Link           chainhash.Hash
	Signature      Signature
}

// Type returns the block's variant tag.
func (b *StateBlock) Type() BlockType {
	return BlockTypeState
}

// Hash returns the blake2b digest of the block's canonical fields.
func (b *StateBlock) Hash() chainhash.Hash {
	balance := util.AmountBytes(b.Balance)
	return digest(statePreamble[:], b.Account[:], b.PreviousHash[:],
		b.Representative[:], balance[:], b.Link[:])
}

// Previous returns the hash of the preceding block, or the zero hash when
// this state block opens its account.
func (b *StateBlock) Previous() chainhash.Hash {
	return b.PreviousHash
}

// Root returns the slot this block contends for.
func (b *StateBlock) Root() chainhash.Hash {
	if !b.PreviousHash.IsZero() {
		return b.PreviousHash
	}
	return b.Account.AsHash()
}

// Source returns the zero hash. A receiving state block names its source in
// Link, which only the ledger can tell apart from a destination.
func (b *StateBlock) Source() chainhash.Hash {
	return chainhash.ZeroHash
}

// BlockSignature returns the signature over Hash.
func (b *StateBlock) BlockSignature() Signature {
	return b.Signature
}

// SetBlockSignature replaces the signature.
func (b *StateBlock) SetBlockSignature(signature Signature) {
	b.Signature = signature
}

// ValidPredecessor always returns true. The state pipeline validates its
// predecessor through the account head instead of the variant matrix.
func (b *StateBlock) ValidPredecessor(Block) bool {
	return true
}
