package dbaccess

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/holiman/uint256"

	"github.com/strandnet/strandd/blocks"
	"github.com/strandnet/strandd/util"
	"github.com/strandnet/strandd/util/chainhash"
)

func prepareDatabaseForTest(t *testing.T, testName string) (*DatabaseContext, func()) {
	path, err := ioutil.TempDir("", testName)
	if err != nil {
		t.Fatalf("%s: TempDir unexpectedly failed: %s", testName, err)
	}
	dbContext, err := New(filepath.Join(path, "db"))
	if err != nil {
		t.Fatalf("%s: New unexpectedly failed: %s", testName, err)
	}
	teardown := func() {
		err := dbContext.Close()
		if err != nil {
			t.Fatalf("%s: Close unexpectedly failed: %s", testName, err)
		}
		os.RemoveAll(path)
	}
	return dbContext, teardown
}

func testAccount(seed byte) util.Account {
	var account util.Account
	for i := range account {
		account[i] = seed
	}
	return account
}

func testHash(seed byte) chainhash.Hash {
	var hash chainhash.Hash
	for i := range hash {
		hash[i] = seed
	}
	return hash
}

// TestAccountRoundTrip stores, overwrites and removes an account record.
func TestAccountRoundTrip(t *testing.T) {
	dbContext, teardown := prepareDatabaseForTest(t, "TestAccountRoundTrip")
	defer teardown()

	account := testAccount(0x01)
	info := &AccountInfo{
		Head:       testHash(0x02),
		RepBlock:   testHash(0x03),
		OpenBlock:  testHash(0x04),
		Balance:    uint256.NewInt(12345),
		Modified:   67890,
		BlockCount: 7,
	}
	err := StoreAccount(dbContext, &account, info)
	if err != nil {
		t.Fatalf("TestAccountRoundTrip: StoreAccount unexpectedly failed: %s", err)
	}

	fetched, found, err := FetchAccount(dbContext, &account)
	if err != nil {
		t.Fatalf("TestAccountRoundTrip: FetchAccount unexpectedly failed: %s", err)
	}
	if !found {
		t.Fatalf("TestAccountRoundTrip: stored account not found")
	}
	if fetched.Head != info.Head || fetched.RepBlock != info.RepBlock ||
		fetched.OpenBlock != info.OpenBlock || fetched.Modified != info.Modified ||
		fetched.BlockCount != info.BlockCount || !fetched.Balance.Eq(info.Balance) {
		t.Fatalf("TestAccountRoundTrip: fetched record differs.\nwant: %s\ngot: %s",
			spew.Sdump(info), spew.Sdump(fetched))
	}

	err = RemoveAccount(dbContext, &account)
	if err != nil {
		t.Fatalf("TestAccountRoundTrip: RemoveAccount unexpectedly failed: %s", err)
	}
	_, found, err = FetchAccount(dbContext, &account)
	if err != nil {
		t.Fatalf("TestAccountRoundTrip: FetchAccount unexpectedly failed: %s", err)
	}
	if found {
		t.Fatalf("TestAccountRoundTrip: removed account still found")
	}
}

// TestBlockStorage stores blocks, checks duplicate refusal, the successor
// index and the per-type counts.
func TestBlockStorage(t *testing.T) {
	dbContext, teardown := prepareDatabaseForTest(t, "TestBlockStorage")
	defer teardown()

	send := &blocks.SendBlock{
		PreviousHash: testHash(0x05),
		Destination:  testAccount(0x06),
		Balance:      uint256.NewInt(99),
	}
	err := StoreBlock(dbContext, send)
	if err != nil {
		t.Fatalf("TestBlockStorage: StoreBlock unexpectedly failed: %s", err)
	}

	// A block hash may never appear twice.
	err = StoreBlock(dbContext, send)
	if err == nil {
		t.Fatalf("TestBlockStorage: duplicate StoreBlock unexpectedly succeeded")
	}

	sendHash := send.Hash()
	fetched, found, err := FetchBlock(dbContext, &sendHash)
	if err != nil {
		t.Fatalf("TestBlockStorage: FetchBlock unexpectedly failed: %s", err)
	}
	if !found {
		t.Fatalf("TestBlockStorage: stored block not found")
	}
	fetchedHash := fetched.Hash()
	if fetchedHash != sendHash {
		t.Fatalf("TestBlockStorage: fetched block hashes to %s, want %s",
			fetchedHash, sendHash)
	}

	// The successor index points from the predecessor to the new block.
	previous := send.PreviousHash
	successor, err := FetchBlockSuccessor(dbContext, &previous)
	if err != nil {
		t.Fatalf("TestBlockStorage: FetchBlockSuccessor unexpectedly failed: %s", err)
	}
	if *successor != sendHash {
		t.Fatalf("TestBlockStorage: successor is %s, want %s", successor, sendHash)
	}
	err = ClearBlockSuccessor(dbContext, &previous)
	if err != nil {
		t.Fatalf("TestBlockStorage: ClearBlockSuccessor unexpectedly failed: %s", err)
	}
	successor, err = FetchBlockSuccessor(dbContext, &previous)
	if err != nil {
		t.Fatalf("TestBlockStorage: FetchBlockSuccessor unexpectedly failed: %s", err)
	}
	if !successor.IsZero() {
		t.Fatalf("TestBlockStorage: cleared successor is %s", successor)
	}

	counts, err := BlockCount(dbContext)
	if err != nil {
		t.Fatalf("TestBlockStorage: BlockCount unexpectedly failed: %s", err)
	}
	if counts.Send != 1 || counts.Sum() != 1 {
		t.Fatalf("TestBlockStorage: counts are %+v, want one send", counts)
	}

	err = RemoveBlock(dbContext, &sendHash)
	if err != nil {
		t.Fatalf("TestBlockStorage: RemoveBlock unexpectedly failed: %s", err)
	}
	counts, err = BlockCount(dbContext)
	if err != nil {
		t.Fatalf("TestBlockStorage: BlockCount unexpectedly failed: %s", err)
	}
	if counts.Sum() != 0 {
		t.Fatalf("TestBlockStorage: counts are %+v after removal, want zero", counts)
	}
}

// TestPendingIteration checks the by-destination pending scan sees exactly
// its destination's entries.
func TestPendingIteration(t *testing.T) {
	dbContext, teardown := prepareDatabaseForTest(t, "TestPendingIteration")
	defer teardown()

	destination := testAccount(0x10)
	other := testAccount(0x20)

	for i := byte(0); i < 3; i++ {
		err := StorePending(dbContext,
			&PendingKey{Destination: destination, SourceHash: testHash(0x30 + i)},
			&PendingInfo{Source: other, Amount: uint256.NewInt(uint64(i) + 1)})
		if err != nil {
			t.Fatalf("TestPendingIteration: StorePending unexpectedly failed: %s", err)
		}
	}
	err := StorePending(dbContext,
		&PendingKey{Destination: other, SourceHash: testHash(0x40)},
		&PendingInfo{Source: destination, Amount: uint256.NewInt(100)})
	if err != nil {
		t.Fatalf("TestPendingIteration: StorePending unexpectedly failed: %s", err)
	}

	total := uint256.NewInt(0)
	entries := 0
	err = ForEachPending(dbContext, &destination, func(key *PendingKey, info *PendingInfo) error {
		if key.Destination != destination {
			t.Fatalf("TestPendingIteration: scan leaked destination %s", key.Destination)
		}
		entries++
		total = util.AddAmounts(total, info.Amount)
		return nil
	})
	if err != nil {
		t.Fatalf("TestPendingIteration: ForEachPending unexpectedly failed: %s", err)
	}
	if entries != 3 {
		t.Fatalf("TestPendingIteration: scan saw %d entries, want 3", entries)
	}
	if !total.Eq(uint256.NewInt(6)) {
		t.Fatalf("TestPendingIteration: scan total is %s, want 6", total)
	}

	// An account with no pending entries scans nothing.
	empty := testAccount(0x50)
	err = ForEachPending(dbContext, &empty, func(*PendingKey, *PendingInfo) error {
		t.Fatalf("TestPendingIteration: scan of empty account yielded an entry")
		return nil
	})
	if err != nil {
		t.Fatalf("TestPendingIteration: ForEachPending unexpectedly failed: %s", err)
	}
}

// TestRepresentationWrap checks mod 2^128 wrap-around of the weight table:
// subtracting below zero and adding back restores the original value.
func TestRepresentationWrap(t *testing.T) {
	dbContext, teardown := prepareDatabaseForTest(t, "TestRepresentationWrap")
	defer teardown()

	hash := testHash(0x60)
	err := RepresentationAdd(dbContext, &hash, uint256.NewInt(10))
	if err != nil {
		t.Fatalf("TestRepresentationWrap: RepresentationAdd unexpectedly failed: %s", err)
	}
	err = RepresentationSub(dbContext, &hash, uint256.NewInt(25))
	if err != nil {
		t.Fatalf("TestRepresentationWrap: RepresentationSub unexpectedly failed: %s", err)
	}
	err = RepresentationAdd(dbContext, &hash, uint256.NewInt(25))
	if err != nil {
		t.Fatalf("TestRepresentationWrap: RepresentationAdd unexpectedly failed: %s", err)
	}

	weight, err := FetchRepresentation(dbContext, &hash)
	if err != nil {
		t.Fatalf("TestRepresentationWrap: FetchRepresentation unexpectedly failed: %s", err)
	}
	if !weight.Eq(uint256.NewInt(10)) {
		t.Fatalf("TestRepresentationWrap: weight is %s, want 10", weight)
	}
}

// TestChecksumRoundTrip checks the checksum accumulator storage.
func TestChecksumRoundTrip(t *testing.T) {
	dbContext, teardown := prepareDatabaseForTest(t, "TestChecksumRoundTrip")
	defer teardown()

	checksum, err := FetchChecksum(dbContext)
	if err != nil {
		t.Fatalf("TestChecksumRoundTrip: FetchChecksum unexpectedly failed: %s", err)
	}
	if !checksum.IsZero() {
		t.Fatalf("TestChecksumRoundTrip: fresh checksum is %s, want zero", checksum)
	}

	value := testHash(0x70)
	err = StoreChecksum(dbContext, &value)
	if err != nil {
		t.Fatalf("TestChecksumRoundTrip: StoreChecksum unexpectedly failed: %s", err)
	}
	checksum, err = FetchChecksum(dbContext)
	if err != nil {
		t.Fatalf("TestChecksumRoundTrip: FetchChecksum unexpectedly failed: %s", err)
	}
	if *checksum != value {
		t.Fatalf("TestChecksumRoundTrip: checksum is %s, want %s", checksum, value)
	}
}

// TestFrontierAndBlockInfo checks the frontier and sidecar tables.
func TestFrontierAndBlockInfo(t *testing.T) {
	dbContext, teardown := prepareDatabaseForTest(t, "TestFrontierAndBlockInfo")
	defer teardown()

	hash := testHash(0x80)
	account := testAccount(0x81)

	frontier, err := FetchFrontier(dbContext, &hash)
	if err != nil {
		t.Fatalf("TestFrontierAndBlockInfo: FetchFrontier unexpectedly failed: %s", err)
	}
	if !frontier.IsZero() {
		t.Fatalf("TestFrontierAndBlockInfo: missing frontier names %s", frontier)
	}

	err = StoreFrontier(dbContext, &hash, &account)
	if err != nil {
		t.Fatalf("TestFrontierAndBlockInfo: StoreFrontier unexpectedly failed: %s", err)
	}
	frontier, err = FetchFrontier(dbContext, &hash)
	if err != nil {
		t.Fatalf("TestFrontierAndBlockInfo: FetchFrontier unexpectedly failed: %s", err)
	}
	if *frontier != account {
		t.Fatalf("TestFrontierAndBlockInfo: frontier names %s, want %s", frontier, account)
	}
	err = RemoveFrontier(dbContext, &hash)
	if err != nil {
		t.Fatalf("TestFrontierAndBlockInfo: RemoveFrontier unexpectedly failed: %s", err)
	}

	info := &BlockInfo{Account: account, Balance: uint256.NewInt(55)}
	err = StoreBlockInfo(dbContext, &hash, info)
	if err != nil {
		t.Fatalf("TestFrontierAndBlockInfo: StoreBlockInfo unexpectedly failed: %s", err)
	}
	fetched, found, err := FetchBlockInfo(dbContext, &hash)
	if err != nil {
		t.Fatalf("TestFrontierAndBlockInfo: FetchBlockInfo unexpectedly failed: %s", err)
	}
	if !found {
		t.Fatalf("TestFrontierAndBlockInfo: stored block info not found")
	}
	if fetched.Account != account || !fetched.Balance.Eq(info.Balance) {
		t.Fatalf("TestFrontierAndBlockInfo: fetched info differs.\nwant: %s\ngot: %s",
			spew.Sdump(info), spew.Sdump(fetched))
	}
	err = RemoveBlockInfo(dbContext, &hash)
	if err != nil {
		t.Fatalf("TestFrontierAndBlockInfo: RemoveBlockInfo unexpectedly failed: %s", err)
	}
	_, found, err = FetchBlockInfo(dbContext, &hash)
	if err != nil {
		t.Fatalf("TestFrontierAndBlockInfo: FetchBlockInfo unexpectedly failed: %s", err)
	}
	if found {
		t.Fatalf("TestFrontierAndBlockInfo: removed block info still found")
	}
}
