package ledger

import (
	"github.com/holiman/uint256"

	"github.com/strandnet/strandd/util"
)

// ProcessResult classifies the outcome of processing one block. Consensus
// reacts to the class: unambiguous rejections are discarded, gaps are
// queued for retry, forks are escalated to voting, and malformed blocks may
// penalize the peer that relayed them.
type ProcessResult byte

// Process result constants.
const (
	// ResultProgress means the block was valid and has been applied.
	ResultProgress ProcessResult = iota

	// ResultOld means the block is already in the ledger. Unambiguous.
	ResultOld

	// ResultFork means another block already occupies the block's root
	// slot. Ambiguous; resolution requires voting.
	ResultFork

	// ResultGapPrevious means the block's predecessor is not yet known.
	// Harmless; the block may become valid later.
	ResultGapPrevious

	// ResultGapSource means the source block being received is not yet
	// known. Harmless; the block may become valid later.
	ResultGapSource

	// ResultBadSignature means the signature does not verify against the
	// owning account. Unambiguous.
	ResultBadSignature

	// ResultNegativeSpend means a send names a balance larger than the
	// account holds. Unambiguous.
	ResultNegativeSpend

	// ResultUnreceivable means there is no matching pending entry to
	// receive. Malformed.
	ResultUnreceivable

	// ResultBalanceMismatch means a state block's balance delta does not
	// equal the pending amount it claims. Malformed.
	ResultBalanceMismatch

	// ResultBlockPosition means the block's variant may not follow its
	// predecessor's variant. Malformed.
	ResultBlockPosition

	// ResultOpenedBurnAccount means the block attempts to open the burn
	// account. Unambiguous.
	ResultOpenedBurnAccount

	// ResultStateBlockDisabled means state blocks are not enabled because
	// the parse canary block is absent. Unambiguous until the canary
	// arrives.
	ResultStateBlockDisabled
)

var processResultStrings = map[ProcessResult]string{
	ResultProgress:           "progress",
	ResultOld:                "old",
	ResultFork:               "fork",
	ResultGapPrevious:        "gap_previous",
	ResultGapSource:          "gap_source",
	ResultBadSignature:       "bad_signature",
	ResultNegativeSpend:      "negative_spend",
	ResultUnreceivable:       "unreceivable",
	ResultBalanceMismatch:    "balance_mismatch",
	ResultBlockPosition:      "block_position",
	ResultOpenedBurnAccount:  "opened_burn_account",
	ResultStateBlockDisabled: "state_block_disabled",
}

// String returns the ProcessResult as a human-readable string.
func (r ProcessResult) String() string {
	s, ok := processResultStrings[r]
	if !ok {
		return "unknown"
	}
	return s
}

// ProcessReturn is the full outcome of processing one block. The fields
// other than Code are meaningful only when Code is ResultProgress.
type ProcessReturn struct {
	// Code classifies the outcome.
	Code ProcessResult

	// Account is the account the block belongs to.
	Account util.Account

	// Amount is the value moved by the block: the amount sent, received,
	// or opened with. Zero for a pure representative change.
	Amount *uint256.Int

	// PendingAccount is the destination of a legacy send; funds are now
	// pending for it. Zero otherwise, including for state sends, whose
	// destination is their Link (see StateIsSend).
	PendingAccount util.Account

	// StateIsSend reports whether a processed state block was a send.
	StateIsSend bool
}
