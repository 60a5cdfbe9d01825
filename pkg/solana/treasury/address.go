package treasury

import (
	"crypto/ed25519"

	"github.com/code-payments/code-treasury/pkg/solana"
)

var (
	TreasurySeed = []byte("treasury")
	ConfigSeed   = []byte("config")
)

// GetTreasuryAddress derives the treasury address and bump for program. The
// treasury is the authority of the program's token vault.
func GetTreasuryAddress(program ed25519.PublicKey) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(program, TreasurySeed)
}

// GetConfigAddress derives the config address and bump for program
func GetConfigAddress(program ed25519.PublicKey) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(program, ConfigSeed)
}

func getTreasurySigner(program ed25519.PublicKey) (*solana.ProgramSigner, error) {
	return solana.DeriveProgramSigner(program, TreasurySeed)
}

func getConfigSigner(program ed25519.PublicKey) (*solana.ProgramSigner, error) {
	return solana.DeriveProgramSigner(program, ConfigSeed)
}
