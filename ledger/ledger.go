package ledger

import (
	"time"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/strandnet/strandd/blocks"
	"github.com/strandnet/strandd/config"
	"github.com/strandnet/strandd/dbaccess"
	"github.com/strandnet/strandd/stats"
	"github.com/strandnet/strandd/util"
	"github.com/strandnet/strandd/util/chainhash"
)

// Ledger is the transactional state machine of the lattice: it validates
// incoming blocks, applies them to the store, answers derived queries, and
// performs deterministic rollback. The ledger never opens a read-write
// transaction itself; callers pass the dbaccess.Context that scopes each
// operation, and either all of an operation's writes commit or none do.
type Ledger struct {
	dbContext *dbaccess.DatabaseContext
	stats     *stats.Collector
	params    *config.Params

	// checkBootstrapWeights is a one-way latch guarding the bootstrap
	// weight snapshot. It is read by many goroutines and cleared once when
	// the block count first crosses the configured threshold; the racing
	// clear is idempotent.
	checkBootstrapWeights uint32
}

// New returns a Ledger over the given database, counting events into the
// given collector and following the given network parameters.
func New(dbContext *dbaccess.DatabaseContext, statsCollector *stats.Collector,
	params *config.Params) *Ledger {

	return &Ledger{
		dbContext:             dbContext,
		stats:                 statsCollector,
		params:                params,
		checkBootstrapWeights: 1,
	}
}

// Initialize seeds the genesis chain if the store does not contain it yet:
// the genesis open block, its account record, frontier and representation
// entries, and the initial checksum, all in one transaction.
func (l *Ledger) Initialize() error {
	genesisHash := l.params.GenesisBlock.Hash()

	context, err := l.dbContext.NewTx()
	if err != nil {
		return err
	}
	defer context.RollbackUnlessClosed()

	exists, err := dbaccess.HasBlock(context, &genesisHash)
	if err != nil {
		return err
	}
	if exists {
		return context.Rollback()
	}

	err = dbaccess.StoreBlock(context, l.params.GenesisBlock)
	if err != nil {
		return err
	}

	supply := util.MaxSupply()
	err = dbaccess.StoreAccount(context, &l.params.GenesisAccount, &dbaccess.AccountInfo{
		Head:       genesisHash,
		RepBlock:   genesisHash,
		OpenBlock:  genesisHash,
		Balance:    supply,
		Modified:   uint64(time.Now().Unix()),
		BlockCount: 1,
	})
	if err != nil {
		return err
	}

	err = dbaccess.StoreFrontier(context, &genesisHash, &l.params.GenesisAccount)
	if err != nil {
		return err
	}

	err = dbaccess.RepresentationAdd(context, &genesisHash, supply)
	if err != nil {
		return err
	}

	err = dbaccess.StoreChecksum(context, &genesisHash)
	if err != nil {
		return err
	}

	log.Infof("Initialized %s ledger with genesis block %s", l.params.Name, genesisHash)
	return context.Commit()
}

// Latest returns the head block hash of the given account, or the zero
// hash if the account is unknown.
func (l *Ledger) Latest(context dbaccess.Context, account *util.Account) (*chainhash.Hash, error) {
	info, found, err := dbaccess.FetchAccount(context, account)
	if err != nil {
		return nil, err
	}
	if !found {
		return &chainhash.Hash{}, nil
	}
	head := info.Head
	return &head, nil
}

// LatestRoot returns the head block hash of the given account, or the
// account itself if it has no blocks. The result is the root a new block
// for this account must name.
func (l *Ledger) LatestRoot(context dbaccess.Context, account *util.Account) (*chainhash.Hash, error) {
	info, found, err := dbaccess.FetchAccount(context, account)
	if err != nil {
		return nil, err
	}
	if !found {
		root := account.AsHash()
		return &root, nil
	}
	head := info.Head
	return &head, nil
}

// AccountBalance returns the balance of the given account as of its head
// block, or zero if the account is unknown.
func (l *Ledger) AccountBalance(context dbaccess.Context, account *util.Account) (*uint256.Int, error) {
	info, found, err := dbaccess.FetchAccount(context, account)
	if err != nil {
		return nil, err
	}
	if !found {
		return uint256.NewInt(0), nil
	}
	return info.Balance, nil
}

// AccountPending returns the total amount pending receipt by the given
// account.
func (l *Ledger) AccountPending(context dbaccess.Context, account *util.Account) (*uint256.Int, error) {
	result := uint256.NewInt(0)
	err := dbaccess.ForEachPending(context, account,
		func(_ *dbaccess.PendingKey, info *dbaccess.PendingInfo) error {
			result = util.AddAmounts(result, info.Amount)
			return nil
		})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Checksum returns the ledger checksum: the XOR of the head hash of every
// account.
func (l *Ledger) Checksum(context dbaccess.Context) (*chainhash.Hash, error) {
	return dbaccess.FetchChecksum(context)
}

// BlockExists returns whether the given block is in the ledger. It opens
// its own read context.
func (l *Ledger) BlockExists(hash *chainhash.Hash) (bool, error) {
	return dbaccess.HasBlock(l.dbContext, hash)
}

// BlockText renders the given block as JSON for diagnostics, or an empty
// string if the block is unknown. It opens its own read context.
func (l *Ledger) BlockText(hash *chainhash.Hash) (string, error) {
	block, found, err := dbaccess.FetchBlock(l.dbContext, hash)
	if err != nil {
		return "", err
	}
	if !found {
		return "", nil
	}
	return blocks.BlockToJSON(block)
}

// DumpAccountChain returns the hashes of the given account's chain from
// head back to its open block. It opens its own read context.
func (l *Ledger) DumpAccountChain(account *util.Account) ([]chainhash.Hash, error) {
	hash, err := l.Latest(l.dbContext, account)
	if err != nil {
		return nil, err
	}

	var chain []chainhash.Hash
	current := *hash
	for !current.IsZero() {
		block, err := fetchBlockRequired(l.dbContext, &current)
		if err != nil {
			return nil, err
		}
		chain = append(chain, current)
		current = block.Previous()
	}
	return chain, nil
}

// StateBlockParsingEnabled returns whether state blocks may be processed,
// which is the case once the parse canary block is present in the store.
func (l *Ledger) StateBlockParsingEnabled(context dbaccess.Context) (bool, error) {
	return dbaccess.HasBlock(context, &l.params.StateBlockParseCanary)
}

// StateBlockGenerationEnabled returns whether state blocks may be
// generated, which additionally requires the generate canary block.
func (l *Ledger) StateBlockGenerationEnabled(context dbaccess.Context) (bool, error) {
	parsing, err := l.StateBlockParsingEnabled(context)
	if err != nil || !parsing {
		return false, err
	}
	return dbaccess.HasBlock(context, &l.params.StateBlockGenerateCanary)
}

// changeLatest rewrites the given account's record to the given head state.
// A zero hash deletes the record instead, which is how rolling back an open
// block erases an account. The checksum tracks both transitions, and every
// BlockInfoMax'th block of a legacy chain leaves a sidecar sample behind.
func (l *Ledger) changeLatest(context dbaccess.Context, account *util.Account,
	hash *chainhash.Hash, repBlock *chainhash.Hash, balance *uint256.Int,
	blockCount uint64, isState bool) error {

	info, found, err := dbaccess.FetchAccount(context, account)
	if err != nil {
		return err
	}
	if found {
		err = checksumUpdate(context, &info.Head)
		if err != nil {
			return err
		}
	} else {
		block, err := fetchBlockRequired(context, hash)
		if err != nil {
			return err
		}
		previous := block.Previous()
		if !previous.IsZero() {
			return errors.Errorf("account %s is being created by block %s, which has a previous block",
				account, hash)
		}
		info = &dbaccess.AccountInfo{OpenBlock: *hash}
	}

	if hash.IsZero() {
		return dbaccess.RemoveAccount(context, account)
	}

	info.Head = *hash
	info.RepBlock = *repBlock
	info.Balance = balance
	info.Modified = uint64(time.Now().Unix())
	info.BlockCount = blockCount
	err = dbaccess.StoreAccount(context, account, info)
	if err != nil {
		return err
	}

	if blockCount%dbaccess.BlockInfoMax == 0 && !isState {
		err = dbaccess.StoreBlockInfo(context, hash, &dbaccess.BlockInfo{
			Account: *account,
			Balance: balance,
		})
		if err != nil {
			return err
		}
	}

	return checksumUpdate(context, hash)
}

// checksumUpdate XORs the given hash into the checksum accumulator.
func checksumUpdate(context dbaccess.Context, hash *chainhash.Hash) error {
	value, err := dbaccess.FetchChecksum(context)
	if err != nil {
		return err
	}
	value.Xor(hash)
	return dbaccess.StoreChecksum(context, value)
}

// fetchBlockRequired fetches a block that the caller knows must exist. A
// miss indicates store corruption and is returned as an error.
func fetchBlockRequired(context dbaccess.Context, hash *chainhash.Hash) (blocks.Block, error) {
	block, found, err := dbaccess.FetchBlock(context, hash)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Errorf("missing expected block %s", hash)
	}
	return block, nil
}

// fetchAccountRequired fetches an account record that the caller knows must
// exist. A miss indicates store corruption and is returned as an error.
func fetchAccountRequired(context dbaccess.Context, account *util.Account) (*dbaccess.AccountInfo, error) {
	info, found, err := dbaccess.FetchAccount(context, account)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Errorf("missing expected account record for %s", account)
	}
	return info, nil
}
