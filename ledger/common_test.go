package ledger

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/holiman/uint256"
	"golang.org/x/crypto/ed25519"

	"github.com/strandnet/strandd/blocks"
	"github.com/strandnet/strandd/config"
	"github.com/strandnet/strandd/dbaccess"
	"github.com/strandnet/strandd/stats"
	"github.com/strandnet/strandd/util"
	"github.com/strandnet/strandd/util/chainhash"
)

// testEnv bundles a ledger over a fresh temp-dir database together with the
// deterministic keys its tests sign with.
type testEnv struct {
	dbContext *dbaccess.DatabaseContext
	ledger    *Ledger
	params    *config.Params
	stats     *stats.Collector

	genesisKey  ed25519.PrivateKey
	genesisHash chainhash.Hash
}

// testKey derives a deterministic ed25519 key pair from the given seed
// byte.
func testKey(seed byte) (ed25519.PrivateKey, util.Account) {
	seedBytes := make([]byte, ed25519.SeedSize)
	for i := range seedBytes {
		seedBytes[i] = seed
	}
	privateKey := ed25519.NewKeyFromSeed(seedBytes)
	var account util.Account
	copy(account[:], privateKey.Public().(ed25519.PublicKey))
	return privateKey, account
}

// testParams builds network params around a deterministic genesis key. When
// stateEnabled is set, the parse canary is the genesis block itself, so
// state blocks are enabled from initialization onwards.
func testParams(stateEnabled bool) (*config.Params, ed25519.PrivateKey) {
	genesisKey, genesisAccount := testKey(0xfa)

	genesisBlock := &blocks.OpenBlock{
		SourceHash:     genesisAccount.AsHash(),
		Representative: genesisAccount,
		Account:        genesisAccount,
	}
	blocks.SignBlock(genesisKey, genesisBlock)

	_, burnAccount := testKey(0xbe)
	params := &config.Params{
		Name:                     "strand-testnet",
		GenesisAccount:           genesisAccount,
		GenesisBlock:             genesisBlock,
		BurnAccount:              burnAccount,
		BootstrapWeightMaxBlocks: 0,
		BootstrapWeights:         map[util.Account]*uint256.Int{},
	}

	if stateEnabled {
		params.StateBlockParseCanary = genesisBlock.Hash()
		params.StateBlockGenerateCanary = genesisBlock.Hash()
	} else {
		params.StateBlockParseCanary = chainhash.Hash{0x01}
		params.StateBlockGenerateCanary = chainhash.Hash{0x02}
	}

	return params, genesisKey
}

// newTestLedger creates an initialized ledger over a fresh database. The
// returned teardown function closes and removes the database.
func newTestLedger(t *testing.T, testName string, stateEnabled bool) (*testEnv, func()) {
	path, err := ioutil.TempDir("", testName)
	if err != nil {
		t.Fatalf("%s: TempDir unexpectedly failed: %s", testName, err)
	}

	dbContext, err := dbaccess.New(filepath.Join(path, "db"))
	if err != nil {
		t.Fatalf("%s: New unexpectedly failed: %s", testName, err)
	}

	params, genesisKey := testParams(stateEnabled)
	collector := stats.NewCollector()
	ldgr := New(dbContext, collector, params)
	err = ldgr.Initialize()
	if err != nil {
		t.Fatalf("%s: Initialize unexpectedly failed: %s", testName, err)
	}

	env := &testEnv{
		dbContext:   dbContext,
		ledger:      ldgr,
		params:      params,
		stats:       collector,
		genesisKey:  genesisKey,
		genesisHash: params.GenesisBlock.Hash(),
	}
	teardown := func() {
		err := dbContext.Close()
		if err != nil {
			t.Fatalf("%s: Close unexpectedly failed: %s", testName, err)
		}
		os.RemoveAll(path)
	}
	return env, teardown
}

// processBlock processes a block inside a fresh transaction and commits it,
// failing the test on an unexpected error or result code.
func processBlock(t *testing.T, testName string, env *testEnv, block blocks.Block,
	expectedCode ProcessResult) *ProcessReturn {

	context, err := env.dbContext.NewTx()
	if err != nil {
		t.Fatalf("%s: NewTx unexpectedly failed: %s", testName, err)
	}
	defer context.RollbackUnlessClosed()

	result, err := env.ledger.Process(context, block)
	if err != nil {
		t.Fatalf("%s: Process unexpectedly failed: %s", testName, err)
	}
	if result.Code != expectedCode {
		t.Fatalf("%s: Process returned %s, want %s", testName, result.Code, expectedCode)
	}

	err = context.Commit()
	if err != nil {
		t.Fatalf("%s: Commit unexpectedly failed: %s", testName, err)
	}
	return result
}

// rollbackBlock rolls back to before the given block inside a fresh
// transaction and commits, failing the test on error.
func rollbackBlock(t *testing.T, testName string, env *testEnv, hash *chainhash.Hash) {
	context, err := env.dbContext.NewTx()
	if err != nil {
		t.Fatalf("%s: NewTx unexpectedly failed: %s", testName, err)
	}
	defer context.RollbackUnlessClosed()

	err = env.ledger.Rollback(context, hash)
	if err != nil {
		t.Fatalf("%s: Rollback unexpectedly failed: %s", testName, err)
	}
	err = context.Commit()
	if err != nil {
		t.Fatalf("%s: Commit unexpectedly failed: %s", testName, err)
	}
}

// sendFromGenesis builds and signs a send block from the genesis account.
func (env *testEnv) sendFromGenesis(previous *chainhash.Hash, destination util.Account,
	balance *uint256.Int) *blocks.SendBlock {

	block := &blocks.SendBlock{
		PreviousHash: *previous,
		Destination:  destination,
		Balance:      balance,
	}
	blocks.SignBlock(env.genesisKey, block)
	return block
}

// supplyMinus returns the full supply decreased by the given small value.
func supplyMinus(value uint64) *uint256.Int {
	return util.SubAmounts(util.MaxSupply(), util.NewAmount(value))
}

// checkBalance fails the test unless the given amount equals want.
func checkBalance(t *testing.T, testName string, got *uint256.Int, want *uint256.Int) {
	if !got.Eq(want) {
		t.Fatalf("%s: balance is %s, want %s", testName, got, want)
	}
}

// fetchRepresentation reads the representation table, failing the test on
// error.
func fetchRepresentation(t *testing.T, testName string, env *testEnv,
	hash *chainhash.Hash) *uint256.Int {

	weight, err := dbaccess.FetchRepresentation(env.dbContext, hash)
	if err != nil {
		t.Fatalf("%s: FetchRepresentation unexpectedly failed: %s", testName, err)
	}
	return weight
}
