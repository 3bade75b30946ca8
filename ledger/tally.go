package ledger

import (
	"bytes"
	"sort"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/strandnet/strandd/blocks"
	"github.com/strandnet/strandd/dbaccess"
	"github.com/strandnet/strandd/util"
	"github.com/strandnet/strandd/util/chainhash"
)

// Votes is a set of representative votes over candidate blocks for a
// single slot.
type Votes struct {
	// RepVotes maps each voting representative to the block it endorses.
	RepVotes map[util.Account]blocks.Block
}

// TallyEntry is one candidate block with its accumulated vote weight.
type TallyEntry struct {
	Weight *uint256.Int
	Block  blocks.Block
}

// Tally sums the voting weight behind each candidate block and returns the
// candidates ordered by decreasing weight. Candidates of equal weight are
// ordered by block hash, which makes the order deterministic across runs.
func (l *Ledger) Tally(context dbaccess.Context, votes *Votes) ([]TallyEntry, error) {
	totals := make(map[chainhash.Hash]*TallyEntry, len(votes.RepVotes))
	for representative, block := range votes.RepVotes {
		representative := representative
		hash := block.Hash()
		entry, ok := totals[hash]
		if !ok {
			entry = &TallyEntry{Weight: uint256.NewInt(0), Block: block}
			totals[hash] = entry
		}
		weight, err := l.Weight(context, &representative)
		if err != nil {
			return nil, err
		}
		entry.Weight = util.AddAmounts(entry.Weight, weight)
	}

	entries := make([]TallyEntry, 0, len(totals))
	for _, entry := range totals {
		entries = append(entries, *entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		cmp := entries[i].Weight.Cmp(entries[j].Weight)
		if cmp != 0 {
			return cmp > 0
		}
		iHash := entries[i].Block.Hash()
		jHash := entries[j].Block.Hash()
		return bytes.Compare(iHash[:], jHash[:]) < 0
	})
	return entries, nil
}

// Winner returns the candidate with the most vote weight, with ties broken
// by block hash as in Tally.
func (l *Ledger) Winner(context dbaccess.Context, votes *Votes) (*TallyEntry, error) {
	tally, err := l.Tally(context, votes)
	if err != nil {
		return nil, err
	}
	if len(tally) == 0 {
		return nil, errors.New("cannot pick a winner out of no votes")
	}
	return &tally[0], nil
}
