package ledger

import (
	"testing"

	"github.com/strandnet/strandd/blocks"
	"github.com/strandnet/strandd/dbaccess"
	"github.com/strandnet/strandd/util"
	"github.com/strandnet/strandd/util/chainhash"
)

// TestStateBlockDisabled checks that state blocks are rejected outright
// while the parse canary block is absent.
func TestStateBlockDisabled(t *testing.T) {
	env, teardown := newTestLedger(t, "TestStateBlockDisabled", false)
	defer teardown()

	_, otherAccount := testKey(0x0b)
	state := &blocks.StateBlock{
		Account:        env.params.GenesisAccount,
		PreviousHash:   env.genesisHash,
		Representative: env.params.GenesisAccount,
		Balance:        supplyMinus(10),
		Link:           otherAccount.AsHash(),
	}
	blocks.SignBlock(env.genesisKey, state)
	processBlock(t, "TestStateBlockDisabled", env, state, ResultStateBlockDisabled)

	enabled, err := env.ledger.StateBlockParsingEnabled(env.dbContext)
	if err != nil {
		t.Fatalf("TestStateBlockDisabled: StateBlockParsingEnabled unexpectedly failed: %s", err)
	}
	if enabled {
		t.Fatalf("TestStateBlockDisabled: state block parsing is unexpectedly enabled")
	}
}

// TestStateSendReceiveEquivalence checks that a state send and a state
// open produce the same balances and pending flow as their legacy
// counterparts.
func TestStateSendReceiveEquivalence(t *testing.T) {
	env, teardown := newTestLedger(t, "TestStateSendReceiveEquivalence", true)
	defer teardown()

	otherKey, otherAccount := testKey(0x0b)

	stateSend := &blocks.StateBlock{
		Account:        env.params.GenesisAccount,
		PreviousHash:   env.genesisHash,
		Representative: env.params.GenesisAccount,
		Balance:        supplyMinus(10),
		Link:           otherAccount.AsHash(),
	}
	blocks.SignBlock(env.genesisKey, stateSend)
	stateSendHash := stateSend.Hash()
	result := processBlock(t, "TestStateSendReceiveEquivalence", env, stateSend, ResultProgress)

	if !result.StateIsSend {
		t.Fatalf("TestStateSendReceiveEquivalence: state send not flagged as send")
	}
	checkBalance(t, "TestStateSendReceiveEquivalence", result.Amount, util.NewAmount(10))

	pendingKey := dbaccess.PendingKey{Destination: otherAccount, SourceHash: stateSendHash}
	pending, found, err := dbaccess.FetchPending(env.dbContext, &pendingKey)
	if err != nil {
		t.Fatalf("TestStateSendReceiveEquivalence: FetchPending unexpectedly failed: %s", err)
	}
	if !found {
		t.Fatalf("TestStateSendReceiveEquivalence: state send left no pending entry")
	}
	checkBalance(t, "TestStateSendReceiveEquivalence", pending.Amount, util.NewAmount(10))
	if pending.Source != env.params.GenesisAccount {
		t.Fatalf("TestStateSendReceiveEquivalence: pending source is %s, want %s",
			pending.Source, env.params.GenesisAccount)
	}

	// The state block's hash is the new representative identity and the
	// predecessor's frontier entry is gone without a replacement.
	weight := fetchRepresentation(t, "TestStateSendReceiveEquivalence", env, &stateSendHash)
	checkBalance(t, "TestStateSendReceiveEquivalence", weight, supplyMinus(10))
	frontier, err := dbaccess.FetchFrontier(env.dbContext, &stateSendHash)
	if err != nil {
		t.Fatalf("TestStateSendReceiveEquivalence: FetchFrontier unexpectedly failed: %s", err)
	}
	if !frontier.IsZero() {
		t.Fatalf("TestStateSendReceiveEquivalence: state head unexpectedly has a frontier entry")
	}

	// A state open on the destination claims the pending entry.
	stateOpen := &blocks.StateBlock{
		Account:        otherAccount,
		PreviousHash:   chainhash.ZeroHash,
		Representative: otherAccount,
		Balance:        util.NewAmount(10),
		Link:           stateSendHash,
	}
	blocks.SignBlock(otherKey, stateOpen)
	stateOpenHash := stateOpen.Hash()
	result = processBlock(t, "TestStateSendReceiveEquivalence", env, stateOpen, ResultProgress)
	if result.StateIsSend {
		t.Fatalf("TestStateSendReceiveEquivalence: state open flagged as send")
	}
	checkBalance(t, "TestStateSendReceiveEquivalence", result.Amount, util.NewAmount(10))

	_, found, err = dbaccess.FetchPending(env.dbContext, &pendingKey)
	if err != nil {
		t.Fatalf("TestStateSendReceiveEquivalence: FetchPending unexpectedly failed: %s", err)
	}
	if found {
		t.Fatalf("TestStateSendReceiveEquivalence: pending entry survived the state open")
	}

	info, err := fetchAccountRequired(env.dbContext, &otherAccount)
	if err != nil {
		t.Fatalf("TestStateSendReceiveEquivalence: fetchAccountRequired unexpectedly failed: %s", err)
	}
	if info.Head != stateOpenHash || info.OpenBlock != stateOpenHash {
		t.Fatalf("TestStateSendReceiveEquivalence: record points at %s/%s, want %s",
			info.Head, info.OpenBlock, stateOpenHash)
	}
	checkBalance(t, "TestStateSendReceiveEquivalence", info.Balance, util.NewAmount(10))
	if info.BlockCount != 1 {
		t.Fatalf("TestStateSendReceiveEquivalence: block count is %d, want 1", info.BlockCount)
	}
}

// TestStateBalanceMismatch checks that a state receive whose balance delta
// differs from the pending amount is rejected without side effects.
func TestStateBalanceMismatch(t *testing.T) {
	env, teardown := newTestLedger(t, "TestStateBalanceMismatch", true)
	defer teardown()

	otherKey, otherAccount := testKey(0x0b)

	stateSend := &blocks.StateBlock{
		Account:        env.params.GenesisAccount,
		PreviousHash:   env.genesisHash,
		Representative: env.params.GenesisAccount,
		Balance:        supplyMinus(10),
		Link:           otherAccount.AsHash(),
	}
	blocks.SignBlock(env.genesisKey, stateSend)
	stateSendHash := stateSend.Hash()
	processBlock(t, "TestStateBalanceMismatch", env, stateSend, ResultProgress)

	// The open claims 11 where the pending entry says 10.
	mismatch := &blocks.StateBlock{
		Account:        otherAccount,
		PreviousHash:   chainhash.ZeroHash,
		Representative: otherAccount,
		Balance:        util.NewAmount(11),
		Link:           stateSendHash,
	}
	blocks.SignBlock(otherKey, mismatch)
	processBlock(t, "TestStateBalanceMismatch", env, mismatch, ResultBalanceMismatch)

	exists, err := dbaccess.HasAccount(env.dbContext, &otherAccount)
	if err != nil {
		t.Fatalf("TestStateBalanceMismatch: HasAccount unexpectedly failed: %s", err)
	}
	if exists {
		t.Fatalf("TestStateBalanceMismatch: mismatched open created an account")
	}
	pendingKey := dbaccess.PendingKey{Destination: otherAccount, SourceHash: stateSendHash}
	found, err := dbaccess.HasPending(env.dbContext, &pendingKey)
	if err != nil {
		t.Fatalf("TestStateBalanceMismatch: HasPending unexpectedly failed: %s", err)
	}
	if !found {
		t.Fatalf("TestStateBalanceMismatch: pending entry was consumed by a rejected block")
	}
}

// TestStateRejections exercises the state pipeline's remaining result
// codes.
func TestStateRejections(t *testing.T) {
	env, teardown := newTestLedger(t, "TestStateRejections", true)
	defer teardown()

	otherKey, otherAccount := testKey(0x0b)

	// A new account whose first state block has no link has nothing to
	// receive.
	openNoLink := &blocks.StateBlock{
		Account:        otherAccount,
		PreviousHash:   chainhash.ZeroHash,
		Representative: otherAccount,
		Balance:        util.NewAmount(0),
		Link:           chainhash.ZeroHash,
	}
	blocks.SignBlock(otherKey, openNoLink)
	processBlock(t, "TestStateRejections", env, openNoLink, ResultGapSource)

	// A new account naming a previous block is a gap.
	openWithPrevious := &blocks.StateBlock{
		Account:        otherAccount,
		PreviousHash:   env.genesisHash,
		Representative: otherAccount,
		Balance:        util.NewAmount(10),
		Link:           env.genesisHash,
	}
	blocks.SignBlock(otherKey, openWithPrevious)
	processBlock(t, "TestStateRejections", env, openWithPrevious, ResultGapPrevious)

	// The zero account cannot produce a verifiable signature, so the
	// pipeline rejects it before the burn-account predicate is reached.
	burn := &blocks.StateBlock{
		Account:        util.ZeroAccount,
		PreviousHash:   chainhash.ZeroHash,
		Representative: util.ZeroAccount,
		Balance:        util.NewAmount(0),
		Link:           env.genesisHash,
	}
	context, err := env.dbContext.NewTx()
	if err != nil {
		t.Fatalf("TestStateRejections: NewTx unexpectedly failed: %s", err)
	}
	result, err := env.ledger.Process(context, burn)
	if err != nil {
		t.Fatalf("TestStateRejections: Process unexpectedly failed: %s", err)
	}
	err = context.Rollback()
	if err != nil {
		t.Fatalf("TestStateRejections: Rollback unexpectedly failed: %s", err)
	}
	if result.Code != ResultBadSignature {
		t.Fatalf("TestStateRejections: Process returned %s, want bad_signature", result.Code)
	}

	// An opened account re-opening its slot forks.
	stateSend := &blocks.StateBlock{
		Account:        env.params.GenesisAccount,
		PreviousHash:   env.genesisHash,
		Representative: env.params.GenesisAccount,
		Balance:        supplyMinus(10),
		Link:           otherAccount.AsHash(),
	}
	blocks.SignBlock(env.genesisKey, stateSend)
	processBlock(t, "TestStateRejections", env, stateSend, ResultProgress)

	reopen := &blocks.StateBlock{
		Account:        env.params.GenesisAccount,
		PreviousHash:   chainhash.ZeroHash,
		Representative: env.params.GenesisAccount,
		Balance:        supplyMinus(10),
		Link:           env.genesisHash,
	}
	blocks.SignBlock(env.genesisKey, reopen)
	processBlock(t, "TestStateRejections", env, reopen, ResultFork)

	// Extending a stale head forks too.
	staleHead := &blocks.StateBlock{
		Account:        env.params.GenesisAccount,
		PreviousHash:   env.genesisHash,
		Representative: env.params.GenesisAccount,
		Balance:        supplyMinus(20),
		Link:           otherAccount.AsHash(),
	}
	blocks.SignBlock(env.genesisKey, staleHead)
	processBlock(t, "TestStateRejections", env, staleHead, ResultFork)
}
