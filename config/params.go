package config

import (
	"encoding/hex"

	"github.com/holiman/uint256"

	"github.com/strandnet/strandd/blocks"
	"github.com/strandnet/strandd/util"
	"github.com/strandnet/strandd/util/chainhash"
)

// Params defines a strand network by its compiled-in constants: the genesis
// chain, the burn target, the feature canaries, and the trusted weight
// snapshot used while bootstrapping.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// GenesisAccount is the account holding the entire supply at genesis.
	GenesisAccount util.Account

	// GenesisBlock is the open block of the genesis account. Its source
	// field names the genesis account itself rather than a real send; the
	// ledger's amount computation special-cases it to the full supply.
	GenesisBlock *blocks.OpenBlock

	// BurnAccount is the account that may never be opened. Funds sent to
	// it are irrecoverable.
	BurnAccount util.Account

	// StateBlockParseCanary is the hash of the block whose presence in the
	// store enables processing of state blocks.
	StateBlockParseCanary chainhash.Hash

	// StateBlockGenerateCanary is the hash of the block whose presence in
	// the store enables generation of state blocks.
	StateBlockGenerateCanary chainhash.Hash

	// BootstrapWeightMaxBlocks is the total block count below which the
	// BootstrapWeights snapshot overrides the representation table.
	BootstrapWeightMaxBlocks uint64

	// BootstrapWeights is a static snapshot of trusted voting weights used
	// while the local ledger is too short to be authoritative.
	BootstrapWeights map[util.Account]*uint256.Int
}

// MainnetParams defines the strand main network.
var MainnetParams = Params{
	Name: "strand-mainnet",

	GenesisAccount: mustAccount("e89208dd038fbb269987689621d52292ae9c35941a7484756ecced92a65093ba"),
	GenesisBlock: &blocks.OpenBlock{
		SourceHash:     mustHash("e89208dd038fbb269987689621d52292ae9c35941a7484756ecced92a65093ba"),
		Representative: mustAccount("e89208dd038fbb269987689621d52292ae9c35941a7484756ecced92a65093ba"),
		Account:        mustAccount("e89208dd038fbb269987689621d52292ae9c35941a7484756ecced92a65093ba"),
		Signature: mustSignature("9f0c933c8ade004d808ea1985fa746a7e95ba2a38f867640f53ec8f180bdfe9e" +
			"2c1268dead7c2664f356e37aba362bc58e46dba03e523a7b5a19e4b6eb12bb02"),
	},

	BurnAccount: util.ZeroAccount,

	StateBlockParseCanary:    mustHash("89f1c0ac4c5ad23964abf5f8c4ccf6d018fdd4281b937ce521fc613c2b1a389a"),
	StateBlockGenerateCanary: mustHash("fcbf28bda4891ef08649706e9b290422c082f1a7eedcd8a65f38a70441cf5512"),

	BootstrapWeightMaxBlocks: 10000,
	BootstrapWeights:         map[util.Account]*uint256.Int{},
}

func mustHash(encoded string) chainhash.Hash {
	hash, err := chainhash.NewHashFromStr(encoded)
	if err != nil {
		panic(err)
	}
	return *hash
}

func mustAccount(encoded string) util.Account {
	hash := mustHash(encoded)
	return util.AccountFromHash(&hash)
}

func mustSignature(encoded string) blocks.Signature {
	decoded, err := hex.DecodeString(encoded)
	if err != nil {
		panic(err)
	}
	if len(decoded) != blocks.SignatureSize {
		panic("invalid signature length")
	}
	var signature blocks.Signature
	copy(signature[:], decoded)
	return signature
}
