// Package paddingoracle recovers the plaintext of a CBC-mode, PKCS#7-padded
// ciphertext without the key, given only an oracle that reports whether a
// candidate ciphertext decrypts to validly padded data. The IV is expected to
// be prepended to the ciphertext as its first block; if the caller's
// convention differs, the first real block simply goes undecrypted.
package paddingoracle

import (
	"bytes"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
)

// candidates is the size of the search space for one plaintext byte.
const candidates = 256

// An Oracle reports whether a ciphertext decrypts, under the oracle's own
// fixed key, to a message with valid PKCS#7 padding. It can be thought of as
// a server that decrypts a cookie to check user permissions: the caller never
// sees the plaintext, only whether decryption succeeded.
type Oracle interface {
	Valid(ciphertext []byte) bool
}

// OracleFunc adapts a plain function to the Oracle interface.
type OracleFunc func([]byte) bool

func (f OracleFunc) Valid(ciphertext []byte) bool { return f(ciphertext) }

// A Decryptor runs the padding-oracle attack against a fixed oracle and
// block size. The zero value is not usable; use New.
type Decryptor struct {
	blocksize int
	oracle    Oracle
	log       logr.Logger
	workers   int
}

// New returns a Decryptor for the given cipher block size and oracle.
func New(blocksize int, oracle Oracle, opts ...Option) *Decryptor {
	d := &Decryptor{
		blocksize: blocksize,
		oracle:    oracle,
		log:       logr.Discard(),
		workers:   1,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decrypt runs the attack once with default options.
func Decrypt(ciphertext []byte, blocksize int, oracle Oracle) ([]byte, error) {
	return New(blocksize, oracle).Decrypt(ciphertext)
}

// Decrypt recovers the plaintext of ciphertext. The result covers every block
// except the IV and still carries the final block's padding bytes; stripping
// them is the caller's concern, see the pkcs7 package.
func (d *Decryptor) Decrypt(ciphertext []byte) ([]byte, error) {
	if d.blocksize < 1 || len(ciphertext)%d.blocksize != 0 {
		return nil, &WrongSizeError{Blocksize: d.blocksize, Found: len(ciphertext)}
	}

	blocks := len(ciphertext) / d.blocksize

	var plaintext []byte
	for t := blocks - 1; t >= 1; t-- {
		prev := ciphertext[(t-1)*d.blocksize : t*d.blocksize]
		last := ciphertext[t*d.blocksize : (t+1)*d.blocksize]

		block, err := d.recoverBlock(prev, last)
		if err != nil {
			return nil, err
		}
		d.log.V(1).Info("recovered block", "block", t, "of", blocks-1)

		plaintext = append(block, plaintext...)
	}
	return plaintext, nil
}

// recoverBlock decrypts the target block last by forging the block before it,
// byte by byte from the end of the block to the start. prev and last are the
// original, unmodified ciphertext blocks of the pair.
func (d *Decryptor) recoverBlock(prev, last []byte) ([]byte, error) {
	bs := d.blocksize
	solved := make([]byte, 0, bs) // plaintext of the target block, forward order

	for i := 1; i <= bs; i++ {
		offset := bs - i
		initial := prev[offset]

		// The probe is a self-contained IV+block ciphertext: the forged
		// previous block followed by the untouched target block.
		probe := make([]byte, 2*bs)
		copy(probe, prev)
		copy(probe[bs:], last)

		// Rewrite the already-solved trailing bytes so they decrypt to the
		// padding value i under the current hypothesis.
		for j := 1; j < i; j++ {
			probe[offset+j] = byte(i) ^ solved[j-1] ^ prev[offset+j]
		}

		k, err := d.searchByte(probe, offset)
		if err != nil {
			return nil, err
		}

		b := initial ^ k ^ byte(i)
		solved = append([]byte{b}, solved...)
		d.log.V(1).Info("recovered byte", "position", offset, "value", b)
	}
	return solved, nil
}

// searchByte brute-forces the probe byte at offset. Candidates are tried in
// ascending order and the first confirmed one wins.
func (d *Decryptor) searchByte(probe []byte, offset int) (byte, error) {
	if d.workers > 1 {
		return d.searchByteParallel(probe, offset)
	}
	for k := 0; k < candidates; k++ {
		if d.confirmed(probe, offset, byte(k)) {
			return byte(k), nil
		}
	}
	return 0, ErrInvalidPadding
}

// searchByteParallel splits the candidate space into contiguous ascending
// ranges, one per worker, each probing on its own copy of the two-block
// slice. A worker records the lowest confirmed value in its range, so the
// lowest range with a hit holds the overall minimum and the result is
// identical to the sequential scan.
func (d *Decryptor) searchByteParallel(probe []byte, offset int) (byte, error) {
	found := make([]int, d.workers)
	per := (candidates + d.workers - 1) / d.workers

	var g errgroup.Group
	for w := 0; w < d.workers; w++ {
		lo := w * per
		hi := min(lo+per, candidates)
		slot := &found[w]
		*slot = -1

		g.Go(func() error {
			scratch := bytes.Clone(probe)
			for k := lo; k < hi; k++ {
				if d.confirmed(scratch, offset, byte(k)) {
					*slot = k
					return nil
				}
			}
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	for _, k := range found {
		if k >= 0 {
			return byte(k), nil
		}
	}
	return 0, ErrInvalidPadding
}

// confirmed writes candidate k into the probe at offset and queries the
// oracle. A success may still be a coincidental match against a shorter
// padding pattern already present in the plaintext, so the byte before offset
// is bit-flipped and the oracle queried again: a genuine match survives the
// flip, a spurious one does not.
// See https://crypto.stackexchange.com/questions/40800/is-the-padding-oracle-attack-deterministic
//
// The first byte of the block has no in-block neighbor to flip and is
// accepted on the first answer.
func (d *Decryptor) confirmed(probe []byte, offset int, k byte) bool {
	probe[offset] = k
	if !d.oracle.Valid(probe) {
		return false
	}
	if offset == 0 {
		return true
	}

	recheck := bytes.Clone(probe)
	recheck[offset-1] = ^recheck[offset-1]
	return d.oracle.Valid(recheck)
}
