package treasury

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-treasury/pkg/solana"
)

func TestInstruction_Encoding(t *testing.T) {
	assert.Equal(t, []byte{0}, Instruction{Command: CommandInitialize}.Marshal())
	assert.Equal(
		t,
		[]byte{1, 0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01},
		Instruction{Command: CommandClaim, Amount: 0x0102030405060708}.Marshal(),
	)

	decoded, err := DecodeInstruction([]byte{0})
	require.NoError(t, err)
	assert.Equal(t, &Instruction{Command: CommandInitialize}, decoded)

	decoded, err = DecodeInstruction([]byte{1, 0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01})
	require.NoError(t, err)
	assert.Equal(t, &Instruction{Command: CommandClaim, Amount: 0x0102030405060708}, decoded)

	decoded, err = DecodeInstruction(Instruction{Command: CommandClaim, Amount: 0}.Marshal())
	require.NoError(t, err)
	assert.Zero(t, decoded.Amount)
}

func TestInstruction_DecodeInvalid(t *testing.T) {
	for _, data := range [][]byte{
		nil,
		{},
		{2},
		{255},
		{0, 0},
		{1},
		{1, 1, 2, 3, 4, 5, 6, 7},
		{1, 1, 2, 3, 4, 5, 6, 7, 8, 9},
	} {
		decoded, err := DecodeInstruction(data)
		assert.Equal(t, solana.ErrInvalidInstructionData, err, "%v", data)
		assert.Nil(t, decoded)
	}
}
