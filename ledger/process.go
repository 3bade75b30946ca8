package ledger

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/strandnet/strandd/blocks"
	"github.com/strandnet/strandd/dbaccess"
	"github.com/strandnet/strandd/stats"
	"github.com/strandnet/strandd/util"
	"github.com/strandnet/strandd/util/chainhash"
)

// Process validates the given block against the ledger and, if it is
// valid, applies it. Every index mutation happens through the given
// context; the caller commits or aborts the enclosing transaction, so a
// returned error must abort it and no partial update can become visible.
//
// The first failing predicate of each variant's pipeline determines the
// result code, and no mutation happens on any non-progress result. The
// predicate order is part of the contract: it decides which of several
// applicable rejections a given block reports.
func (l *Ledger) Process(context dbaccess.Context, block blocks.Block) (*ProcessReturn, error) {
	switch b := block.(type) {
	case *blocks.SendBlock:
		return l.processSend(context, b)
	case *blocks.ReceiveBlock:
		return l.processReceive(context, b)
	case *blocks.OpenBlock:
		return l.processOpen(context, b)
	case *blocks.ChangeBlock:
		return l.processChange(context, b)
	case *blocks.StateBlock:
		return l.processState(context, b)
	default:
		return nil, errors.Errorf("cannot process block of type %T", block)
	}
}

func (l *Ledger) processSend(context dbaccess.Context, block *blocks.SendBlock) (*ProcessReturn, error) {
	hash := block.Hash()

	exists, err := dbaccess.HasBlock(context, &hash)
	if err != nil {
		return nil, err
	}
	if exists {
		return &ProcessReturn{Code: ResultOld}, nil
	}

	previousBlock, found, err := dbaccess.FetchBlock(context, &block.PreviousHash)
	if err != nil {
		return nil, err
	}
	if !found {
		return &ProcessReturn{Code: ResultGapPrevious}, nil
	}
	if !block.ValidPredecessor(previousBlock) {
		return &ProcessReturn{Code: ResultBlockPosition}, nil
	}

	// The predecessor must be a frontier: if it is not, some other block
	// already extends it and this send is a fork.
	account, err := dbaccess.FetchFrontier(context, &block.PreviousHash)
	if err != nil {
		return nil, err
	}
	if account.IsZero() {
		return &ProcessReturn{Code: ResultFork}, nil
	}

	if !blocks.VerifyBlockSignature(account, block) {
		return &ProcessReturn{Code: ResultBadSignature}, nil
	}

	info, err := fetchAccountRequired(context, account)
	if err != nil {
		return nil, err
	}
	if info.Head != block.PreviousHash {
		return nil, errors.Errorf("frontier %s is not the head of account %s",
			block.PreviousHash, account)
	}

	if info.Balance.Lt(block.Balance) {
		return &ProcessReturn{Code: ResultNegativeSpend}, nil
	}

	amount := util.SubAmounts(info.Balance, block.Balance)
	err = dbaccess.RepresentationSub(context, &info.RepBlock, amount)
	if err != nil {
		return nil, err
	}
	err = dbaccess.StoreBlock(context, block)
	if err != nil {
		return nil, err
	}
	err = l.changeLatest(context, account, &hash, &info.RepBlock, block.Balance,
		info.BlockCount+1, false)
	if err != nil {
		return nil, err
	}
	err = dbaccess.StorePending(context,
		&dbaccess.PendingKey{Destination: block.Destination, SourceHash: hash},
		&dbaccess.PendingInfo{Source: *account, Amount: amount})
	if err != nil {
		return nil, err
	}
	err = dbaccess.RemoveFrontier(context, &block.PreviousHash)
	if err != nil {
		return nil, err
	}
	err = dbaccess.StoreFrontier(context, &hash, account)
	if err != nil {
		return nil, err
	}

	l.stats.Inc(stats.TypeLedger, stats.DetailSend)
	return &ProcessReturn{
		Code:           ResultProgress,
		Account:        *account,
		Amount:         amount,
		PendingAccount: block.Destination,
	}, nil
}

func (l *Ledger) processReceive(context dbaccess.Context, block *blocks.ReceiveBlock) (*ProcessReturn, error) {
	hash := block.Hash()

	exists, err := dbaccess.HasBlock(context, &hash)
	if err != nil {
		return nil, err
	}
	if exists {
		return &ProcessReturn{Code: ResultOld}, nil
	}

	previousBlock, found, err := dbaccess.FetchBlock(context, &block.PreviousHash)
	if err != nil {
		return nil, err
	}
	if !found {
		return &ProcessReturn{Code: ResultGapPrevious}, nil
	}
	if !block.ValidPredecessor(previousBlock) {
		return &ProcessReturn{Code: ResultBlockPosition}, nil
	}

	sourceExists, err := dbaccess.HasBlock(context, &block.SourceHash)
	if err != nil {
		return nil, err
	}
	if !sourceExists {
		return &ProcessReturn{Code: ResultGapSource}, nil
	}

	account, err := dbaccess.FetchFrontier(context, &block.PreviousHash)
	if err != nil {
		return nil, err
	}
	if account.IsZero() {
		// The predecessor is known but is not anyone's frontier: a signed
		// fork. The existence probe mirrors the harmless case in which the
		// predecessor is missing altogether.
		previousExists, err := dbaccess.HasBlock(context, &block.PreviousHash)
		if err != nil {
			return nil, err
		}
		if previousExists {
			return &ProcessReturn{Code: ResultFork}, nil
		}
		return &ProcessReturn{Code: ResultGapPrevious}, nil
	}

	if !blocks.VerifyBlockSignature(account, block) {
		return &ProcessReturn{Code: ResultBadSignature}, nil
	}

	info, err := fetchAccountRequired(context, account)
	if err != nil {
		return nil, err
	}
	if info.Head != block.PreviousHash {
		return &ProcessReturn{Code: ResultGapPrevious}, nil
	}

	pendingKey := dbaccess.PendingKey{Destination: *account, SourceHash: block.SourceHash}
	pending, found, err := dbaccess.FetchPending(context, &pendingKey)
	if err != nil {
		return nil, err
	}
	if !found {
		return &ProcessReturn{Code: ResultUnreceivable}, nil
	}

	newBalance := util.AddAmounts(info.Balance, pending.Amount)
	_, err = fetchAccountRequired(context, &pending.Source)
	if err != nil {
		return nil, err
	}
	err = dbaccess.RemovePending(context, &pendingKey)
	if err != nil {
		return nil, err
	}
	err = dbaccess.StoreBlock(context, block)
	if err != nil {
		return nil, err
	}
	err = l.changeLatest(context, account, &hash, &info.RepBlock, newBalance,
		info.BlockCount+1, false)
	if err != nil {
		return nil, err
	}
	err = dbaccess.RepresentationAdd(context, &info.RepBlock, pending.Amount)
	if err != nil {
		return nil, err
	}
	err = dbaccess.RemoveFrontier(context, &block.PreviousHash)
	if err != nil {
		return nil, err
	}
	err = dbaccess.StoreFrontier(context, &hash, account)
	if err != nil {
		return nil, err
	}

	l.stats.Inc(stats.TypeLedger, stats.DetailReceive)
	return &ProcessReturn{
		Code:    ResultProgress,
		Account: *account,
		Amount:  pending.Amount,
	}, nil
}

func (l *Ledger) processOpen(context dbaccess.Context, block *blocks.OpenBlock) (*ProcessReturn, error) {
	hash := block.Hash()

	exists, err := dbaccess.HasBlock(context, &hash)
	if err != nil {
		return nil, err
	}
	if exists {
		return &ProcessReturn{Code: ResultOld}, nil
	}

	sourceExists, err := dbaccess.HasBlock(context, &block.SourceHash)
	if err != nil {
		return nil, err
	}
	if !sourceExists {
		return &ProcessReturn{Code: ResultGapSource}, nil
	}

	if !blocks.VerifyBlockSignature(&block.Account, block) {
		return &ProcessReturn{Code: ResultBadSignature}, nil
	}

	_, accountExists, err := dbaccess.FetchAccount(context, &block.Account)
	if err != nil {
		return nil, err
	}
	if accountExists {
		return &ProcessReturn{Code: ResultFork}, nil
	}

	pendingKey := dbaccess.PendingKey{Destination: block.Account, SourceHash: block.SourceHash}
	pending, found, err := dbaccess.FetchPending(context, &pendingKey)
	if err != nil {
		return nil, err
	}
	if !found {
		return &ProcessReturn{Code: ResultUnreceivable}, nil
	}

	if block.Account == l.params.BurnAccount {
		return &ProcessReturn{Code: ResultOpenedBurnAccount}, nil
	}

	_, err = fetchAccountRequired(context, &pending.Source)
	if err != nil {
		return nil, err
	}
	err = dbaccess.RemovePending(context, &pendingKey)
	if err != nil {
		return nil, err
	}
	err = dbaccess.StoreBlock(context, block)
	if err != nil {
		return nil, err
	}
	err = l.changeLatest(context, &block.Account, &hash, &hash, pending.Amount, 1, false)
	if err != nil {
		return nil, err
	}
	err = dbaccess.RepresentationAdd(context, &hash, pending.Amount)
	if err != nil {
		return nil, err
	}
	err = dbaccess.StoreFrontier(context, &hash, &block.Account)
	if err != nil {
		return nil, err
	}

	l.stats.Inc(stats.TypeLedger, stats.DetailOpen)
	return &ProcessReturn{
		Code:    ResultProgress,
		Account: block.Account,
		Amount:  pending.Amount,
	}, nil
}

func (l *Ledger) processChange(context dbaccess.Context, block *blocks.ChangeBlock) (*ProcessReturn, error) {
	hash := block.Hash()

	exists, err := dbaccess.HasBlock(context, &hash)
	if err != nil {
		return nil, err
	}
	if exists {
		return &ProcessReturn{Code: ResultOld}, nil
	}

	previousBlock, found, err := dbaccess.FetchBlock(context, &block.PreviousHash)
	if err != nil {
		return nil, err
	}
	if !found {
		return &ProcessReturn{Code: ResultGapPrevious}, nil
	}
	if !block.ValidPredecessor(previousBlock) {
		return &ProcessReturn{Code: ResultBlockPosition}, nil
	}

	account, err := dbaccess.FetchFrontier(context, &block.PreviousHash)
	if err != nil {
		return nil, err
	}
	if account.IsZero() {
		return &ProcessReturn{Code: ResultFork}, nil
	}

	info, err := fetchAccountRequired(context, account)
	if err != nil {
		return nil, err
	}
	if info.Head != block.PreviousHash {
		return nil, errors.Errorf("frontier %s is not the head of account %s",
			block.PreviousHash, account)
	}

	if !blocks.VerifyBlockSignature(account, block) {
		return &ProcessReturn{Code: ResultBadSignature}, nil
	}

	err = dbaccess.StoreBlock(context, block)
	if err != nil {
		return nil, err
	}
	balance, err := l.Balance(context, &block.PreviousHash)
	if err != nil {
		return nil, err
	}
	// The change block's own hash becomes the new representative identity,
	// so the full balance moves from the old rep block to it.
	err = dbaccess.RepresentationAdd(context, &hash, balance)
	if err != nil {
		return nil, err
	}
	err = dbaccess.RepresentationSub(context, &info.RepBlock, balance)
	if err != nil {
		return nil, err
	}
	err = l.changeLatest(context, account, &hash, &hash, info.Balance,
		info.BlockCount+1, false)
	if err != nil {
		return nil, err
	}
	err = dbaccess.RemoveFrontier(context, &block.PreviousHash)
	if err != nil {
		return nil, err
	}
	err = dbaccess.StoreFrontier(context, &hash, account)
	if err != nil {
		return nil, err
	}

	l.stats.Inc(stats.TypeLedger, stats.DetailChange)
	return &ProcessReturn{
		Code:    ResultProgress,
		Account: *account,
		Amount:  uint256.NewInt(0),
	}, nil
}

func (l *Ledger) processState(context dbaccess.Context, block *blocks.StateBlock) (*ProcessReturn, error) {
	enabled, err := l.StateBlockParsingEnabled(context)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return &ProcessReturn{Code: ResultStateBlockDisabled}, nil
	}
	return l.processStateImpl(context, block)
}

func (l *Ledger) processStateImpl(context dbaccess.Context, block *blocks.StateBlock) (*ProcessReturn, error) {
	hash := block.Hash()

	exists, err := dbaccess.HasBlock(context, &hash)
	if err != nil {
		return nil, err
	}
	if exists {
		return &ProcessReturn{Code: ResultOld}, nil
	}

	if !blocks.VerifyBlockSignature(&block.Account, block) {
		return &ProcessReturn{Code: ResultBadSignature}, nil
	}

	if block.Account.IsZero() {
		return &ProcessReturn{Code: ResultOpenedBurnAccount}, nil
	}

	info, accountExists, err := dbaccess.FetchAccount(context, &block.Account)
	if err != nil {
		return nil, err
	}

	isSend := false
	amount := new(uint256.Int).Set(block.Balance)
	if accountExists {
		// An already-opened account must extend its head: a zero previous
		// re-opens the slot and an unknown one is a gap; naming a known
		// block that is not the head contends for an occupied slot.
		if block.PreviousHash.IsZero() {
			return &ProcessReturn{Code: ResultFork}, nil
		}
		previousExists, err := dbaccess.HasBlock(context, &block.PreviousHash)
		if err != nil {
			return nil, err
		}
		if !previousExists {
			return &ProcessReturn{Code: ResultGapPrevious}, nil
		}
		isSend = block.Balance.Lt(info.Balance)
		if isSend {
			amount = util.SubAmounts(info.Balance, block.Balance)
		} else {
			amount = util.SubAmounts(block.Balance, info.Balance)
		}
		if block.PreviousHash != info.Head {
			return &ProcessReturn{Code: ResultFork}, nil
		}
	} else {
		if !block.PreviousHash.IsZero() {
			return &ProcessReturn{Code: ResultGapPrevious}, nil
		}
		l.stats.Inc(stats.TypeLedger, stats.DetailOpen)
		// A new account has nothing to spend; its first block must receive.
		if block.Link.IsZero() {
			return &ProcessReturn{Code: ResultGapSource}, nil
		}
	}

	if !isSend {
		if !block.Link.IsZero() {
			linkExists, err := dbaccess.HasBlock(context, &block.Link)
			if err != nil {
				return nil, err
			}
			if !linkExists {
				return &ProcessReturn{Code: ResultGapSource}, nil
			}
			pendingKey := dbaccess.PendingKey{Destination: block.Account, SourceHash: block.Link}
			pending, found, err := dbaccess.FetchPending(context, &pendingKey)
			if err != nil {
				return nil, err
			}
			if !found {
				return &ProcessReturn{Code: ResultUnreceivable}, nil
			}
			if !amount.Eq(pending.Amount) {
				return &ProcessReturn{Code: ResultBalanceMismatch}, nil
			}
		} else {
			// With no link the balance must stay put; only the
			// representative may change.
			if !amount.IsZero() {
				return &ProcessReturn{Code: ResultBalanceMismatch}, nil
			}
		}
	}

	l.stats.Inc(stats.TypeLedger, stats.DetailStateBlock)

	err = dbaccess.StoreBlock(context, block)
	if err != nil {
		return nil, err
	}

	if accountExists && !info.RepBlock.IsZero() {
		// Move existing representation off the old identity.
		err = dbaccess.RepresentationSub(context, &info.RepBlock, info.Balance)
		if err != nil {
			return nil, err
		}
	}
	err = dbaccess.RepresentationAdd(context, &hash, block.Balance)
	if err != nil {
		return nil, err
	}

	if isSend {
		destination := util.AccountFromHash(&block.Link)
		err = dbaccess.StorePending(context,
			&dbaccess.PendingKey{Destination: destination, SourceHash: hash},
			&dbaccess.PendingInfo{Source: block.Account, Amount: amount})
		if err != nil {
			return nil, err
		}
		l.stats.Inc(stats.TypeLedger, stats.DetailSend)
	} else if !block.Link.IsZero() {
		err = dbaccess.RemovePending(context,
			&dbaccess.PendingKey{Destination: block.Account, SourceHash: block.Link})
		if err != nil {
			return nil, err
		}
		l.stats.Inc(stats.TypeLedger, stats.DetailReceive)
	}

	previousBlockCount := uint64(0)
	previousHead := &chainhash.Hash{}
	if accountExists {
		previousBlockCount = info.BlockCount
		previousHead = &info.Head
	}
	err = l.changeLatest(context, &block.Account, &hash, &hash, block.Balance,
		previousBlockCount+1, true)
	if err != nil {
		return nil, err
	}

	// State chains keep no frontier entries. Dropping the predecessor's
	// entry without replacing it also stops any legacy block from ever
	// building on top of this one.
	frontierAccount, err := dbaccess.FetchFrontier(context, previousHead)
	if err != nil {
		return nil, err
	}
	if !frontierAccount.IsZero() {
		err = dbaccess.RemoveFrontier(context, previousHead)
		if err != nil {
			return nil, err
		}
	}

	return &ProcessReturn{
		Code:        ResultProgress,
		Account:     block.Account,
		Amount:      amount,
		StateIsSend: isSend,
	}, nil
}
