package treasury

import (
	"encoding/binary"

	"github.com/code-payments/code-treasury/pkg/solana"
)

type Command uint8

const (
	CommandInitialize Command = iota
	CommandClaim
)

const (
	initializeDataSize = 1
	claimDataSize      = 1 + 8
)

// Instruction is a decoded treasury instruction. Amount is only set for
// claims.
type Instruction struct {
	Command Command
	Amount  uint64
}

// Marshal encodes the instruction as its variant tag followed by the
// variant's little endian fields
func (i Instruction) Marshal() []byte {
	switch i.Command {
	case CommandClaim:
		data := make([]byte, claimDataSize)
		data[0] = byte(CommandClaim)
		binary.LittleEndian.PutUint64(data[1:], i.Amount)
		return data
	default:
		return []byte{byte(i.Command)}
	}
}

// DecodeInstruction decodes instruction data. Unknown tags and data that
// isn't exactly the variant's size are rejected.
func DecodeInstruction(data []byte) (*Instruction, error) {
	if len(data) == 0 {
		return nil, solana.ErrInvalidInstructionData
	}

	switch Command(data[0]) {
	case CommandInitialize:
		if len(data) != initializeDataSize {
			return nil, solana.ErrInvalidInstructionData
		}
		return &Instruction{Command: CommandInitialize}, nil
	case CommandClaim:
		if len(data) != claimDataSize {
			return nil, solana.ErrInvalidInstructionData
		}
		return &Instruction{
			Command: CommandClaim,
			Amount:  binary.LittleEndian.Uint64(data[1:]),
		}, nil
	default:
		return nil, solana.ErrInvalidInstructionData
	}
}
