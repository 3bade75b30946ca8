package ledger

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/strandnet/strandd/blocks"
	"github.com/strandnet/strandd/dbaccess"
	"github.com/strandnet/strandd/util"
	"github.com/strandnet/strandd/util/chainhash"
)

// Balance returns the balance of the chain as of the given block. Only
// send and state blocks carry an explicit balance; for the other variants
// the walk accumulates received amounts while following previous links
// until it reaches a balance-bearing block. A zero hash yields zero.
func (l *Ledger) Balance(context dbaccess.Context, hash *chainhash.Hash) (*uint256.Int, error) {
	result := uint256.NewInt(0)
	current := *hash
	for !current.IsZero() {
		block, err := fetchBlockRequired(context, &current)
		if err != nil {
			return nil, err
		}

		switch b := block.(type) {
		case *blocks.SendBlock:
			result = util.AddAmounts(result, b.Balance)
			current = chainhash.ZeroHash
		case *blocks.ReceiveBlock:
			amount, err := l.Amount(context, &b.SourceHash)
			if err != nil {
				return nil, err
			}
			result = util.AddAmounts(result, amount)
			current = b.PreviousHash
		case *blocks.OpenBlock:
			amount, err := l.Amount(context, &b.SourceHash)
			if err != nil {
				return nil, err
			}
			result = util.AddAmounts(result, amount)
			current = chainhash.ZeroHash
		case *blocks.ChangeBlock:
			current = b.PreviousHash
		case *blocks.StateBlock:
			result = util.AddAmounts(result, b.Balance)
			current = chainhash.ZeroHash
		default:
			return nil, errors.Errorf("cannot compute balance of block type %T", block)
		}
	}
	return result, nil
}

// Amount returns the value moved by the given block: the decrease of a
// send, the increase of a receive or open, the delta of a state block, and
// zero for a change. Receives and opens delegate to their source; the
// genesis open has no real source and yields the full supply.
func (l *Ledger) Amount(context dbaccess.Context, hash *chainhash.Hash) (*uint256.Int, error) {
	genesisSource := l.params.GenesisAccount.AsHash()

	current := *hash
	for {
		if current == genesisSource {
			return util.MaxSupply(), nil
		}
		block, err := fetchBlockRequired(context, &current)
		if err != nil {
			return nil, err
		}

		switch b := block.(type) {
		case *blocks.SendBlock:
			previousBalance, err := l.Balance(context, &b.PreviousHash)
			if err != nil {
				return nil, err
			}
			return util.SubAmounts(previousBalance, b.Balance), nil
		case *blocks.ReceiveBlock:
			current = b.SourceHash
		case *blocks.OpenBlock:
			if b.SourceHash == genesisSource {
				return util.MaxSupply(), nil
			}
			current = b.SourceHash
		case *blocks.ChangeBlock:
			return uint256.NewInt(0), nil
		case *blocks.StateBlock:
			previousBalance, err := l.Balance(context, &b.PreviousHash)
			if err != nil {
				return nil, err
			}
			if b.Balance.Lt(previousBalance) {
				return util.SubAmounts(previousBalance, b.Balance), nil
			}
			return util.SubAmounts(b.Balance, previousBalance), nil
		default:
			return nil, errors.Errorf("cannot compute amount of block type %T", block)
		}
	}
}

// Representative returns the representative identity in effect at the
// given block: the hash of the nearest open, change or state block at or
// before it on its chain.
func (l *Ledger) Representative(context dbaccess.Context, hash *chainhash.Hash) (*chainhash.Hash, error) {
	current := *hash
	for {
		block, err := fetchBlockRequired(context, &current)
		if err != nil {
			return nil, err
		}

		switch block.(type) {
		case *blocks.SendBlock, *blocks.ReceiveBlock:
			current = block.Previous()
		case *blocks.OpenBlock, *blocks.ChangeBlock, *blocks.StateBlock:
			result := current
			return &result, nil
		default:
			return nil, errors.Errorf("cannot compute representative of block type %T", block)
		}
	}
}

// Account returns the account owning the given block. State blocks name
// their account outright; on legacy chains the walk follows successor
// links forward until it hits a block-info sidecar sample, a state block,
// or the chain frontier.
func (l *Ledger) Account(context dbaccess.Context, hash *chainhash.Hash) (*util.Account, error) {
	current := *hash
	for {
		block, err := fetchBlockRequired(context, &current)
		if err != nil {
			return nil, err
		}

		if stateBlock, ok := block.(*blocks.StateBlock); ok {
			account := stateBlock.Account
			return &account, nil
		}

		info, found, err := dbaccess.FetchBlockInfo(context, &current)
		if err != nil {
			return nil, err
		}
		if found {
			account := info.Account
			return &account, nil
		}

		successor, err := dbaccess.FetchBlockSuccessor(context, &current)
		if err != nil {
			return nil, err
		}
		if successor.IsZero() {
			account, err := dbaccess.FetchFrontier(context, &current)
			if err != nil {
				return nil, err
			}
			if account.IsZero() {
				return nil, errors.Errorf("no account found for block %s", hash)
			}
			return account, nil
		}
		current = *successor
	}
}
