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

// Rollback undoes blocks from the head of the account owning the given
// hash until that hash is no longer in the ledger. Every iteration undoes
// exactly the account's current head, so the account's block count strictly
// decreases (or the account is deleted) and the loop terminates.
func (l *Ledger) Rollback(context dbaccess.Context, hash *chainhash.Hash) error {
	exists, err := dbaccess.HasBlock(context, hash)
	if err != nil {
		return err
	}
	if !exists {
		return errors.Errorf("cannot roll back missing block %s", hash)
	}

	account, err := l.Account(context, hash)
	if err != nil {
		return err
	}

	for {
		exists, err := dbaccess.HasBlock(context, hash)
		if err != nil {
			return err
		}
		if !exists {
			return nil
		}

		info, err := fetchAccountRequired(context, account)
		if err != nil {
			return err
		}
		head, err := fetchBlockRequired(context, &info.Head)
		if err != nil {
			return err
		}

		switch b := head.(type) {
		case *blocks.SendBlock:
			err = l.rollbackSend(context, b)
		case *blocks.ReceiveBlock:
			err = l.rollbackReceive(context, b)
		case *blocks.OpenBlock:
			err = l.rollbackOpen(context, b)
		case *blocks.ChangeBlock:
			err = l.rollbackChange(context, b)
		case *blocks.StateBlock:
			err = l.rollbackState(context, b)
		default:
			err = errors.Errorf("cannot roll back block of type %T", head)
		}
		if err != nil {
			return err
		}
	}
}

func (l *Ledger) rollbackSend(context dbaccess.Context, block *blocks.SendBlock) error {
	hash := block.Hash()

	// The destination may have received, and further spent, the sent
	// amount. Rewind the destination account until the pending entry this
	// send created is back.
	pendingKey := dbaccess.PendingKey{Destination: block.Destination, SourceHash: hash}
	for {
		exists, err := dbaccess.HasPending(context, &pendingKey)
		if err != nil {
			return err
		}
		if exists {
			break
		}
		latest, err := l.Latest(context, &block.Destination)
		if err != nil {
			return err
		}
		if latest.IsZero() {
			return errors.Errorf("pending entry for send %s cannot be restored", hash)
		}
		err = l.Rollback(context, latest)
		if err != nil {
			return err
		}
	}

	pending, found, err := dbaccess.FetchPending(context, &pendingKey)
	if err != nil {
		return err
	}
	if !found {
		return errors.Errorf("missing expected pending entry for send %s", hash)
	}
	info, err := fetchAccountRequired(context, &pending.Source)
	if err != nil {
		return err
	}

	err = dbaccess.RemovePending(context, &pendingKey)
	if err != nil {
		return err
	}
	representative, err := l.Representative(context, &hash)
	if err != nil {
		return err
	}
	err = dbaccess.RepresentationAdd(context, representative, pending.Amount)
	if err != nil {
		return err
	}
	previousBalance, err := l.Balance(context, &block.PreviousHash)
	if err != nil {
		return err
	}
	err = l.changeLatest(context, &pending.Source, &block.PreviousHash, &info.RepBlock,
		previousBalance, info.BlockCount-1, false)
	if err != nil {
		return err
	}
	err = dbaccess.RemoveBlock(context, &hash)
	if err != nil {
		return err
	}
	err = dbaccess.RemoveFrontier(context, &hash)
	if err != nil {
		return err
	}
	err = dbaccess.StoreFrontier(context, &block.PreviousHash, &pending.Source)
	if err != nil {
		return err
	}
	err = dbaccess.ClearBlockSuccessor(context, &block.PreviousHash)
	if err != nil {
		return err
	}
	if info.BlockCount%dbaccess.BlockInfoMax == 0 {
		err = dbaccess.RemoveBlockInfo(context, &hash)
		if err != nil {
			return err
		}
	}

	l.stats.Inc(stats.TypeRollback, stats.DetailSend)
	return nil
}

func (l *Ledger) rollbackReceive(context dbaccess.Context, block *blocks.ReceiveBlock) error {
	hash := block.Hash()

	previousRepresentative, err := l.Representative(context, &block.PreviousHash)
	if err != nil {
		return err
	}
	amount, err := l.Amount(context, &block.SourceHash)
	if err != nil {
		return err
	}
	destinationAccount, err := l.Account(context, &hash)
	if err != nil {
		return err
	}
	sourceAccount, err := l.Account(context, &block.SourceHash)
	if err != nil {
		return err
	}
	info, err := fetchAccountRequired(context, destinationAccount)
	if err != nil {
		return err
	}

	representative, err := l.Representative(context, &hash)
	if err != nil {
		return err
	}
	err = dbaccess.RepresentationSub(context, representative, amount)
	if err != nil {
		return err
	}
	previousBalance, err := l.Balance(context, &block.PreviousHash)
	if err != nil {
		return err
	}
	err = l.changeLatest(context, destinationAccount, &block.PreviousHash,
		previousRepresentative, previousBalance, info.BlockCount-1, false)
	if err != nil {
		return err
	}
	err = dbaccess.RemoveBlock(context, &hash)
	if err != nil {
		return err
	}
	err = dbaccess.StorePending(context,
		&dbaccess.PendingKey{Destination: *destinationAccount, SourceHash: block.SourceHash},
		&dbaccess.PendingInfo{Source: *sourceAccount, Amount: amount})
	if err != nil {
		return err
	}
	err = dbaccess.RemoveFrontier(context, &hash)
	if err != nil {
		return err
	}
	err = dbaccess.StoreFrontier(context, &block.PreviousHash, destinationAccount)
	if err != nil {
		return err
	}
	err = dbaccess.ClearBlockSuccessor(context, &block.PreviousHash)
	if err != nil {
		return err
	}
	if info.BlockCount%dbaccess.BlockInfoMax == 0 {
		err = dbaccess.RemoveBlockInfo(context, &hash)
		if err != nil {
			return err
		}
	}

	l.stats.Inc(stats.TypeRollback, stats.DetailReceive)
	return nil
}

func (l *Ledger) rollbackOpen(context dbaccess.Context, block *blocks.OpenBlock) error {
	hash := block.Hash()

	amount, err := l.Amount(context, &block.SourceHash)
	if err != nil {
		return err
	}
	destinationAccount, err := l.Account(context, &hash)
	if err != nil {
		return err
	}
	sourceAccount, err := l.Account(context, &block.SourceHash)
	if err != nil {
		return err
	}

	representative, err := l.Representative(context, &hash)
	if err != nil {
		return err
	}
	err = dbaccess.RepresentationSub(context, representative, amount)
	if err != nil {
		return err
	}
	// A zero hash deletes the account record: undoing an open erases the
	// account entirely.
	err = l.changeLatest(context, destinationAccount, &chainhash.Hash{},
		&chainhash.Hash{}, uint256.NewInt(0), 0, false)
	if err != nil {
		return err
	}
	err = dbaccess.RemoveBlock(context, &hash)
	if err != nil {
		return err
	}
	err = dbaccess.StorePending(context,
		&dbaccess.PendingKey{Destination: *destinationAccount, SourceHash: block.SourceHash},
		&dbaccess.PendingInfo{Source: *sourceAccount, Amount: amount})
	if err != nil {
		return err
	}
	err = dbaccess.RemoveFrontier(context, &hash)
	if err != nil {
		return err
	}

	l.stats.Inc(stats.TypeRollback, stats.DetailOpen)
	return nil
}

func (l *Ledger) rollbackChange(context dbaccess.Context, block *blocks.ChangeBlock) error {
	hash := block.Hash()

	previousRepresentative, err := l.Representative(context, &block.PreviousHash)
	if err != nil {
		return err
	}
	account, err := l.Account(context, &block.PreviousHash)
	if err != nil {
		return err
	}
	info, err := fetchAccountRequired(context, account)
	if err != nil {
		return err
	}
	balance, err := l.Balance(context, &block.PreviousHash)
	if err != nil {
		return err
	}

	err = dbaccess.RepresentationAdd(context, previousRepresentative, balance)
	if err != nil {
		return err
	}
	err = dbaccess.RepresentationSub(context, &hash, balance)
	if err != nil {
		return err
	}
	err = dbaccess.RemoveBlock(context, &hash)
	if err != nil {
		return err
	}
	err = l.changeLatest(context, account, &block.PreviousHash, previousRepresentative,
		info.Balance, info.BlockCount-1, false)
	if err != nil {
		return err
	}
	err = dbaccess.RemoveFrontier(context, &hash)
	if err != nil {
		return err
	}
	err = dbaccess.StoreFrontier(context, &block.PreviousHash, account)
	if err != nil {
		return err
	}
	err = dbaccess.ClearBlockSuccessor(context, &block.PreviousHash)
	if err != nil {
		return err
	}
	if info.BlockCount%dbaccess.BlockInfoMax == 0 {
		err = dbaccess.RemoveBlockInfo(context, &hash)
		if err != nil {
			return err
		}
	}

	l.stats.Inc(stats.TypeRollback, stats.DetailChange)
	return nil
}

func (l *Ledger) rollbackState(context dbaccess.Context, block *blocks.StateBlock) error {
	hash := block.Hash()

	representative := &chainhash.Hash{}
	if !block.PreviousHash.IsZero() {
		var err error
		representative, err = l.Representative(context, &block.PreviousHash)
		if err != nil {
			return err
		}
	}
	previousBalance, err := l.Balance(context, &block.PreviousHash)
	if err != nil {
		return err
	}
	isSend := block.Balance.Lt(previousBalance)

	// Take this block's whole balance off its own representative identity
	// and give the predecessor's representative its previous balance back.
	err = dbaccess.RepresentationSub(context, &hash, block.Balance)
	if err != nil {
		return err
	}
	if !representative.IsZero() {
		err = dbaccess.RepresentationAdd(context, representative, previousBalance)
		if err != nil {
			return err
		}
	}

	if isSend {
		destination := util.AccountFromHash(&block.Link)
		pendingKey := dbaccess.PendingKey{Destination: destination, SourceHash: hash}
		for {
			exists, err := dbaccess.HasPending(context, &pendingKey)
			if err != nil {
				return err
			}
			if exists {
				break
			}
			latest, err := l.Latest(context, &destination)
			if err != nil {
				return err
			}
			if latest.IsZero() {
				return errors.Errorf("pending entry for state send %s cannot be restored", hash)
			}
			err = l.Rollback(context, latest)
			if err != nil {
				return err
			}
		}
		err = dbaccess.RemovePending(context, &pendingKey)
		if err != nil {
			return err
		}
		l.stats.Inc(stats.TypeRollback, stats.DetailSend)
	} else if !block.Link.IsZero() {
		sourceAccount, err := l.Account(context, &block.Link)
		if err != nil {
			return err
		}
		err = dbaccess.StorePending(context,
			&dbaccess.PendingKey{Destination: block.Account, SourceHash: block.Link},
			&dbaccess.PendingInfo{
				Source: *sourceAccount,
				Amount: util.SubAmounts(block.Balance, previousBalance),
			})
		if err != nil {
			return err
		}
		l.stats.Inc(stats.TypeRollback, stats.DetailReceive)
	}

	info, err := fetchAccountRequired(context, &block.Account)
	if err != nil {
		return err
	}
	err = l.changeLatest(context, &block.Account, &block.PreviousHash, representative,
		previousBalance, info.BlockCount-1, false)
	if err != nil {
		return err
	}

	previousBlock, found, err := dbaccess.FetchBlock(context, &block.PreviousHash)
	if err != nil {
		return err
	}
	if found {
		err = dbaccess.ClearBlockSuccessor(context, &block.PreviousHash)
		if err != nil {
			return err
		}
		if previousBlock.Type() < blocks.BlockTypeState {
			// The predecessor is a legacy block: give it its frontier
			// entry back.
			err = dbaccess.StoreFrontier(context, &block.PreviousHash, &block.Account)
			if err != nil {
				return err
			}
		}
	} else {
		l.stats.Inc(stats.TypeRollback, stats.DetailOpen)
	}

	return dbaccess.RemoveBlock(context, &hash)
}
