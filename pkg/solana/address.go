package solana

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"math"

	"github.com/jdgcs/ed25519/edwards25519"
	"github.com/pkg/errors"
)

const (
	maxSeeds      = 16
	maxSeedLength = 32

	programDerivedAddressMarker = "ProgramDerivedAddress"
)

var (
	ErrTooManySeeds          = errors.New("too many seeds")
	ErrMaxSeedLengthExceeded = errors.New("max seed length exceeded")

	ErrInvalidPublicKey = errors.New("invalid public key")
	ErrNoViableBump     = errors.New("unable to find a viable program address bump seed")
)

var (
	programHashCtor = sha256.New
)

// CreateProgramAddress mirrors the implementation of the Solana SDK's CreateProgramAddress.
//
// ProgramAddresses are public keys that _do not_ lie on the ed25519 curve to ensure that
// there is no associated private key. In the event that the program and seed parameters
// result in a valid public key, ErrInvalidPublicKey is returned.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/pubkey.rs#L158
func CreateProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	if len(seeds) > maxSeeds {
		return nil, ErrTooManySeeds
	}

	h := programHashCtor()
	for _, s := range seeds {
		if len(s) > maxSeedLength {
			return nil, ErrMaxSeedLengthExceeded
		}

		if _, err := h.Write(s); err != nil {
			return nil, errors.Wrap(err, "failed to hash seed")
		}
	}

	for _, v := range [][]byte{program, []byte(programDerivedAddressMarker)} {
		if _, err := h.Write(v); err != nil {
			return nil, errors.Wrap(err, "failed to hash seed")
		}
	}

	var pub [32]byte
	copy(pub[:], h.Sum(nil))

	// The address is rejected when it decodes as a compressed Edwards point,
	// since a private key could then exist for it. The point type we need is
	// internal to golang.org/x/crypto, so the standalone edwards25519 package
	// is used instead.
	//
	// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/pubkey.rs#L182-L187
	var A edwards25519.ExtendedGroupElement
	if A.FromBytes(&pub) {
		return nil, ErrInvalidPublicKey
	}

	return pub[:], nil
}

// FindProgramAddressAndBump mirrors the implementation of the Solana SDK's
// FindProgramAddress. It returns the address and bump seed.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/pubkey.rs#L234
func FindProgramAddressAndBump(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, uint8, error) {
	bumpSeed := []byte{math.MaxUint8}
	for i := 0; i < math.MaxUint8; i++ {
		withBump := make([][]byte, 0, len(seeds)+1)
		withBump = append(withBump, seeds...)
		withBump = append(withBump, bumpSeed)

		pub, err := CreateProgramAddress(program, withBump...)
		if err == nil {
			return pub, bumpSeed[0], nil
		}
		if err != ErrInvalidPublicKey {
			return nil, 0, err
		}

		bumpSeed[0]--
	}

	return nil, 0, ErrNoViableBump
}

// FindProgramAddress mirrors the implementation of the Solana SDK's FindProgramAddress.
// It only returns the address.
func FindProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	pub, _, err := FindProgramAddressAndBump(program, seeds...)
	return pub, err
}

// ProgramSigner is the capability a program presents to the runtime when it
// needs a program derived address to sign a cross-program invocation. It can
// only be obtained by deriving the address from its seeds, and the runtime
// re-derives it again before honouring the signature.
type ProgramSigner struct {
	program ed25519.PublicKey
	address ed25519.PublicKey
	seeds   [][]byte
	bump    uint8
}

// DeriveProgramSigner finds the program address and bump for the seeds and
// returns the signing capability for it.
func DeriveProgramSigner(program ed25519.PublicKey, seeds ...[]byte) (*ProgramSigner, error) {
	address, bump, err := FindProgramAddressAndBump(program, seeds...)
	if err != nil {
		return nil, err
	}

	copied := make([][]byte, len(seeds))
	for i, seed := range seeds {
		copied[i] = append([]byte(nil), seed...)
	}

	return &ProgramSigner{
		program: program,
		address: address,
		seeds:   copied,
		bump:    bump,
	}, nil
}

// Program is the program the address was derived for
func (s *ProgramSigner) Program() ed25519.PublicKey {
	return s.program
}

// Address is the derived address
func (s *ProgramSigner) Address() ed25519.PublicKey {
	return s.address
}

// Bump is the bump seed that moved the address off curve
func (s *ProgramSigner) Bump() uint8 {
	return s.bump
}

// SignerSeeds returns the full seed list, bump included, as it must be
// presented to CreateProgramAddress.
func (s *ProgramSigner) SignerSeeds() [][]byte {
	seeds := make([][]byte, 0, len(s.seeds)+1)
	for _, seed := range s.seeds {
		seeds = append(seeds, append([]byte(nil), seed...))
	}
	return append(seeds, []byte{s.bump})
}

// Verify checks that the signer's seeds re-derive its address under the
// provided program.
func (s *ProgramSigner) Verify(program ed25519.PublicKey) error {
	if s == nil {
		return ErrInvalidPublicKey
	}

	address, err := CreateProgramAddress(program, s.SignerSeeds()...)
	if err != nil {
		return err
	}
	if !bytes.Equal(address, s.address) {
		return errors.New("program signer seeds do not derive the signer address")
	}
	return nil
}
