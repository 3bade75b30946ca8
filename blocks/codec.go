package blocks

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/strandnet/strandd/util"
	"github.com/strandnet/strandd/util/chainhash"
)

// Serialized block lengths, including the leading type byte and the
// trailing signature.
const (
	sendBlockLength    = 1 + chainhash.HashSize + util.AccountSize + util.AmountSize + SignatureSize
	receiveBlockLength = 1 + chainhash.HashSize*2 + SignatureSize
	openBlockLength    = 1 + chainhash.HashSize + util.AccountSize*2 + SignatureSize
	changeBlockLength  = 1 + chainhash.HashSize + util.AccountSize + SignatureSize
	stateBlockLength   = 1 + util.AccountSize + chainhash.HashSize + util.AccountSize +
		util.AmountSize + chainhash.HashSize + SignatureSize
)

// EncodeBlock serializes a block for the block table: a type byte, the
// canonical fields in hashing order, and the signature.
func EncodeBlock(block Block) ([]byte, error) {
	switch b := block.(type) {
	case *SendBlock:
		serialized := make([]byte, 0, sendBlockLength)
		balance := util.AmountBytes(b.Balance)
		serialized = append(serialized, byte(BlockTypeSend))
		serialized = append(serialized, b.PreviousHash[:]...)
		serialized = append(serialized, b.Destination[:]...)
		serialized = append(serialized, balance[:]...)
		serialized = append(serialized, b.Signature[:]...)
		return serialized, nil

	case *ReceiveBlock:
		serialized := make([]byte, 0, receiveBlockLength)
		serialized = append(serialized, byte(BlockTypeReceive))
		serialized = append(serialized, b.PreviousHash[:]...)
		serialized = append(serialized, b.SourceHash[:]...)
		serialized = append(serialized, b.Signature[:]...)
		return serialized, nil

	case *OpenBlock:
		serialized := make([]byte, 0, openBlockLength)
		serialized = append(serialized, byte(BlockTypeOpen))
		serialized = append(serialized, b.SourceHash[:]...)
		serialized = append(serialized, b.Representative[:]...)
		serialized = append(serialized, b.Account[:]...)
		serialized = append(serialized, b.Signature[:]...)
		return serialized, nil

	case *ChangeBlock:
		serialized := make([]byte, 0, changeBlockLength)
		serialized = append(serialized, byte(BlockTypeChange))
		serialized = append(serialized, b.PreviousHash[:]...)
		serialized = append(serialized, b.Representative[:]...)
		serialized = append(serialized, b.Signature[:]...)
		return serialized, nil

	case *StateBlock:
		serialized := make([]byte, 0, stateBlockLength)
		balance := util.AmountBytes(b.Balance)
		serialized = append(serialized, byte(BlockTypeState))
		serialized = append(serialized, b.Account[:]...)
		serialized = append(serialized, b.PreviousHash[:]...)
		serialized = append(serialized, b.Representative[:]...)
		serialized = append(serialized, balance[:]...)
		serialized = append(serialized, b.Link[:]...)
		serialized = append(serialized, b.Signature[:]...)
		return serialized, nil

	default:
		return nil, errors.Errorf("cannot encode block of type %T", block)
	}
}

// DecodeBlock deserializes a block previously serialized with EncodeBlock.
func DecodeBlock(serialized []byte) (Block, error) {
	if len(serialized) == 0 {
		return nil, errors.New("cannot decode an empty block")
	}

	blockType := BlockType(serialized[0])
	switch blockType {
	case BlockTypeSend:
		if len(serialized) != sendBlockLength {
			return nil, errors.Errorf("serialized send block is %d bytes, want %d",
				len(serialized), sendBlockLength)
		}
		b := &SendBlock{}
		offset := 1
		offset += copy(b.PreviousHash[:], serialized[offset:])
		offset += copy(b.Destination[:], serialized[offset:])
		balance, err := util.AmountFromBytes(serialized[offset : offset+util.AmountSize])
		if err != nil {
			return nil, err
		}
		b.Balance = balance
		offset += util.AmountSize
		copy(b.Signature[:], serialized[offset:])
		return b, nil

	case BlockTypeReceive:
		if len(serialized) != receiveBlockLength {
			return nil, errors.Errorf("serialized receive block is %d bytes, want %d",
				len(serialized), receiveBlockLength)
		}
		b := &ReceiveBlock{}
		offset := 1
		offset += copy(b.PreviousHash[:], serialized[offset:])
		offset += copy(b.SourceHash[:], serialized[offset:])
		copy(b.Signature[:], serialized[offset:])
		return b, nil

	case BlockTypeOpen:
		if len(serialized) != openBlockLength {
			return nil, errors.Errorf("serialized open block is %d bytes, want %d",
				len(serialized), openBlockLength)
		}
		b := &OpenBlock{}
		offset := 1
		offset += copy(b.SourceHash[:], serialized[offset:])
		offset += copy(b.Representative[:], serialized[offset:])
		offset += copy(b.Account[:], serialized[offset:])
		copy(b.Signature[:], serialized[offset:])
		return b, nil

	case BlockTypeChange:
		if len(serialized) != changeBlockLength {
			return nil, errors.Errorf("serialized change block is %d bytes, want %d",
				len(serialized), changeBlockLength)
		}
		b := &ChangeBlock{}
		offset := 1
		offset += copy(b.PreviousHash[:], serialized[offset:])
		offset += copy(b.Representative[:], serialized[offset:])
		copy(b.Signature[:], serialized[offset:])
		return b, nil

	case BlockTypeState:
		if len(serialized) != stateBlockLength {
			return nil, errors.Errorf("serialized state block is %d bytes, want %d",
				len(serialized), stateBlockLength)
		}
		b := &StateBlock{}
		offset := 1
		offset += copy(b.Account[:], serialized[offset:])
		offset += copy(b.PreviousHash[:], serialized[offset:])
		offset += copy(b.Representative[:], serialized[offset:])
		balance, err := util.AmountFromBytes(serialized[offset : offset+util.AmountSize])
		if err != nil {
			return nil, err
		}
		b.Balance = balance
		offset += util.AmountSize
		offset += copy(b.Link[:], serialized[offset:])
		copy(b.Signature[:], serialized[offset:])
		return b, nil

	default:
		return nil, errors.Errorf("cannot decode block of type %d", serialized[0])
	}
}

// BlockToJSON renders a block as a JSON document for diagnostics and RPC
// surfaces.
func BlockToJSON(block Block) (string, error) {
	fields := map[string]string{
		"type":      block.Type().String(),
		"signature": block.BlockSignature().String(),
	}

	switch b := block.(type) {
	case *SendBlock:
		fields["previous"] = b.PreviousHash.String()
		fields["destination"] = b.Destination.String()
		fields["balance"] = b.Balance.String()
	case *ReceiveBlock:
		fields["previous"] = b.PreviousHash.String()
		fields["source"] = b.SourceHash.String()
	case *OpenBlock:
		fields["source"] = b.SourceHash.String()
		fields["representative"] = b.Representative.String()
		fields["account"] = b.Account.String()
	case *ChangeBlock:
		fields["previous"] = b.PreviousHash.String()
		fields["representative"] = b.Representative.String()
	case *StateBlock:
		fields["account"] = b.Account.String()
		fields["previous"] = b.PreviousHash.String()
		fields["representative"] = b.Representative.String()
		fields["balance"] = b.Balance.String()
		fields["link"] = b.Link.String()
	default:
		return "", errors.Errorf("cannot render block of type %T", block)
	}

	rendered, err := json.MarshalIndent(fields, "", "    ")
	if err != nil {
		return "", errors.WithStack(err)
	}
	return string(rendered), nil
}
