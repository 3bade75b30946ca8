package ledger

import (
	"github.com/pkg/errors"

	"github.com/strandnet/strandd/blocks"
	"github.com/strandnet/strandd/dbaccess"
	"github.com/strandnet/strandd/util"
	"github.com/strandnet/strandd/util/chainhash"
)

// Successor returns the block that follows the given root: for a root that
// is a known account, the account's open block; otherwise the block whose
// previous field names the root. Returns nil if there is no successor.
func (l *Ledger) Successor(context dbaccess.Context, root *chainhash.Hash) (blocks.Block, error) {
	rootAccount := util.AccountFromHash(root)
	hasAccount, err := dbaccess.HasAccount(context, &rootAccount)
	if err != nil {
		return nil, err
	}

	var successor *chainhash.Hash
	if hasAccount {
		info, err := fetchAccountRequired(context, &rootAccount)
		if err != nil {
			return nil, err
		}
		successor = &info.OpenBlock
	} else {
		successor, err = dbaccess.FetchBlockSuccessor(context, root)
		if err != nil {
			return nil, err
		}
	}

	if successor.IsZero() {
		return nil, nil
	}
	return fetchBlockRequired(context, successor)
}

// ForkedBlock returns the block already in the ledger that occupies the
// given block's root slot. The given block must not itself be in the
// ledger, and its root must be known, or an error is returned.
func (l *Ledger) ForkedBlock(context dbaccess.Context, block blocks.Block) (blocks.Block, error) {
	hash := block.Hash()
	exists, err := dbaccess.HasBlock(context, &hash)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.Errorf("block %s is in the ledger and cannot be forked", hash)
	}

	root := block.Root()
	successor, err := dbaccess.FetchBlockSuccessor(context, &root)
	if err != nil {
		return nil, err
	}
	if !successor.IsZero() {
		return fetchBlockRequired(context, successor)
	}

	// Nothing extends the root, so the occupying block is the open block
	// of the account the root names.
	rootAccount := util.AccountFromHash(&root)
	info, err := fetchAccountRequired(context, &rootAccount)
	if err != nil {
		return nil, err
	}
	return fetchBlockRequired(context, &info.OpenBlock)
}

// IsSend reports whether the given state block decreases its chain's
// balance. An opening state block is never a send.
func (l *Ledger) IsSend(context dbaccess.Context, block *blocks.StateBlock) (bool, error) {
	if block.PreviousHash.IsZero() {
		return false, nil
	}
	previousBalance, err := l.Balance(context, &block.PreviousHash)
	if err != nil {
		return false, err
	}
	return block.Balance.Lt(previousBalance), nil
}

// BlockDestination returns the account a block sends funds to, or the zero
// account for non-send blocks.
func (l *Ledger) BlockDestination(context dbaccess.Context, block blocks.Block) (*util.Account, error) {
	switch b := block.(type) {
	case *blocks.SendBlock:
		destination := b.Destination
		return &destination, nil
	case *blocks.StateBlock:
		isSend, err := l.IsSend(context, b)
		if err != nil {
			return nil, err
		}
		if isSend {
			destination := util.AccountFromHash(&b.Link)
			return &destination, nil
		}
	}
	return &util.Account{}, nil
}

// BlockSource returns the hash of the send a block receives from, or the
// zero hash for non-receiving blocks.
func (l *Ledger) BlockSource(context dbaccess.Context, block blocks.Block) (*chainhash.Hash, error) {
	// For legacy variants Source is authoritative; state blocks always
	// report a zero Source and their link is a source only on the receive
	// direction.
	source := block.Source()
	if stateBlock, ok := block.(*blocks.StateBlock); ok {
		isSend, err := l.IsSend(context, stateBlock)
		if err != nil {
			return nil, err
		}
		if !isSend {
			source = stateBlock.Link
		}
	}
	return &source, nil
}
