package blocks

import (
	"golang.org/x/crypto/ed25519"

	"github.com/strandnet/strandd/util"
)

// SignBlock signs the block's hash with the given private key and installs
// the signature on the block.
func SignBlock(privateKey ed25519.PrivateKey, block Block) {
	hash := block.Hash()
	var signature Signature
	copy(signature[:], ed25519.Sign(privateKey, hash[:]))
	block.SetBlockSignature(signature)
}

// VerifyBlockSignature reports whether the block's signature is a valid
// signature of its hash by the given account's key. It is a pure function
// of its inputs.
func VerifyBlockSignature(account *util.Account, block Block) bool {
	hash := block.Hash()
	signature := block.BlockSignature()
	return ed25519.Verify(ed25519.PublicKey(account[:]), hash[:], signature[:])
}
