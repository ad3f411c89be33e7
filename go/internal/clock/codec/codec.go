// Package codec maps internal clock slots to the public codes handed out to players.
//
// The store only depends on the Codec contract; the concrete alphabet or scheme can be
// swapped through configuration without touching the clock logic.
package codec

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/sqids/sqids-go"
)

// ErrInvalidCode is returned when a code cannot be decoded back to a slot index.
var ErrInvalidCode = errors.New("invalid clock code")

// Codec is a reversible mapping between slot indexes and public codes.
type Codec interface {
	Encode(index int) (string, error)
	Decode(code string) (int, error)
}

// Kind names a codec implementation in configuration.
type Kind string

const (
	KindSqids   Kind = "sqids"
	KindDecimal Kind = "decimal"
)

// Options configures New.
type Options struct {
	Kind      Kind
	Alphabet  string
	MinLength int
}

// New builds the codec selected by opts.Kind.
func New(opts Options) (Codec, error) {
	switch opts.Kind {
	case KindSqids, "":
		return NewSqidsCodec(opts.Alphabet, opts.MinLength)
	case KindDecimal:
		return DecimalCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown codec kind %q", opts.Kind)
	}
}

// SqidsCodec produces short, non-sequential looking codes.
type SqidsCodec struct {
	s *sqids.Sqids
}

// NewSqidsCodec creates a sqids backed codec. An empty alphabet uses the library default.
func NewSqidsCodec(alphabet string, minLength int) (*SqidsCodec, error) {
	if minLength < 0 || minLength > 255 {
		return nil, fmt.Errorf("min length must be between 0 and 255, got %d", minLength)
	}

	s, err := sqids.New(sqids.Options{
		Alphabet:  alphabet,
		MinLength: uint8(minLength),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqids encoder: %w", err)
	}

	return &SqidsCodec{s: s}, nil
}

// Encode implements Codec.
func (c *SqidsCodec) Encode(index int) (string, error) {
	if index < 0 {
		return "", fmt.Errorf("cannot encode negative index %d", index)
	}

	code, err := c.s.Encode([]uint64{uint64(index)})
	if err != nil {
		return "", fmt.Errorf("failed to encode index %d: %w", index, err)
	}
	return code, nil
}

// Decode implements Codec. Only the canonical encoding of an index is accepted, so every
// slot has exactly one valid code.
func (c *SqidsCodec) Decode(code string) (int, error) {
	if code == "" {
		return 0, ErrInvalidCode
	}

	numbers := c.s.Decode(code)
	if len(numbers) != 1 || numbers[0] > uint64(maxIndex) {
		return 0, ErrInvalidCode
	}

	index := int(numbers[0])
	canonical, err := c.Encode(index)
	if err != nil || canonical != code {
		return 0, ErrInvalidCode
	}
	return index, nil
}

// DecimalCodec uses the plain decimal slot index as the code.
type DecimalCodec struct{}

// Encode implements Codec.
func (DecimalCodec) Encode(index int) (string, error) {
	if index < 0 {
		return "", fmt.Errorf("cannot encode negative index %d", index)
	}
	return strconv.Itoa(index), nil
}

// Decode implements Codec.
func (DecimalCodec) Decode(code string) (int, error) {
	index, err := strconv.Atoi(code)
	if err != nil || index < 0 || strconv.Itoa(index) != code {
		return 0, ErrInvalidCode
	}
	return index, nil
}

const maxIndex = int(^uint(0) >> 1)
