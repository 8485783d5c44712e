package toolkit

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxBatch caps how many values a generator produces per call.
const maxBatch = 1000

func countInput(description string) Input {
	return Input{Name: "count", Description: description, Type: "integer", Default: "1"}
}

func identifierTools() []*Tool {
	return []*Tool{
		{
			Name:        "uuid-v4",
			Title:       "UUID v4",
			Category:    CategoryIdentifiers,
			Description: "Generate random (version 4) UUIDs, one per line",
			Inputs:      []Input{countInput("How many UUIDs to generate")},
			Fn:          uuidOp(uuid.NewRandom),
		},
		{
			Name:        "uuid-v7",
			Title:       "UUID v7",
			Category:    CategoryIdentifiers,
			Description: "Generate time-ordered (version 7) UUIDs, one per line",
			Inputs:      []Input{countInput("How many UUIDs to generate")},
			Fn:          uuidOp(uuid.NewV7),
		},
		{
			Name:        "ulid",
			Title:       "ULID",
			Category:    CategoryIdentifiers,
			Description: "Generate lexicographically sortable ULIDs, one per line",
			Inputs:      []Input{countInput("How many ULIDs to generate")},
			Fn:          generateULIDs,
		},
	}
}

func uuidOp(generate func() (uuid.UUID, error)) Operation {
	return func(ctx context.Context, in Inputs) (Result, error) {
		count, err := batchCount(in)
		if err != nil {
			return Result{}, err
		}

		ids := make([]string, 0, count)
		for i := 0; i < count; i++ {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
			id, err := generate()
			if err != nil {
				return Result{}, err
			}
			ids = append(ids, id.String())
		}

		return Result{Output: strings.Join(ids, "\n")}, nil
	}
}

// batchCount reads the "count" input and checks it is within 1..maxBatch.
func batchCount(in Inputs) (int, error) {
	count, err := in.Int("count", 1)
	if err != nil {
		return 0, err
	}
	if count < 1 || count > maxBatch {
		return 0, invalidInput("count", "must be between 1 and %d, got %d", maxBatch, count)
	}
	return int(count), nil
}

// crockford is the base32 alphabet ULIDs are written in.
const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// ulidSource produces ULIDs that increase strictly within one batch: when the
// millisecond repeats, the previous random part is incremented.
type ulidSource struct {
	lastMs  uint64
	entropy [10]byte
	started bool
}

func (g *ulidSource) next(t time.Time) (string, error) {
	ms := uint64(t.UnixMilli())
	if g.started && ms <= g.lastMs {
		ms = g.lastMs
		if !incrementEntropy(&g.entropy) {
			return "", fmt.Errorf("ulid: random part overflow within %d", ms)
		}
	} else if _, err := rand.Read(g.entropy[:]); err != nil {
		return "", err
	}
	g.lastMs, g.started = ms, true

	var id [16]byte
	binary.BigEndian.PutUint16(id[0:2], uint16(ms>>32))
	binary.BigEndian.PutUint32(id[2:6], uint32(ms))
	copy(id[6:], g.entropy[:])
	return encodeULID(id), nil
}

func incrementEntropy(e *[10]byte) bool {
	for i := len(e) - 1; i >= 0; i-- {
		e[i]++
		if e[i] != 0 {
			return true
		}
	}
	return false
}

// encodeULID writes the 128-bit id as 26 base32 digits, most significant first.
func encodeULID(id [16]byte) string {
	hi := binary.BigEndian.Uint64(id[:8])
	lo := binary.BigEndian.Uint64(id[8:])

	var out [26]byte
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = crockford[lo&31]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out[:])
}

func generateULIDs(ctx context.Context, in Inputs) (Result, error) {
	count, err := batchCount(in)
	if err != nil {
		return Result{}, err
	}

	var src ulidSource
	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		id, err := src.next(now())
		if err != nil {
			return Result{}, err
		}
		ids = append(ids, id)
	}

	return Result{Output: strings.Join(ids, "\n")}, nil
}
