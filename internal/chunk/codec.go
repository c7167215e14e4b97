// Package chunk serializes and deserializes one chunk record: the raw
// concatenated-entry text, its suffix array, a CRC trailer, and a trigram
// Bloom prefilter. Layout, little-endian throughout:
//
//	uint32  text_len
//	bytes   text[text_len]
//	uint32  sa_byte_len      ( = text_len * 4 )
//	bytes   sa[sa_byte_len]  ( packed uint32 offsets )
//	uint32  crc              ( IEEE CRC32 of every byte written above )
//	uint32  bloom_len
//	bytes   bloom[bloom_len] ( trigram Filter.MarshalBinary output, or omitted if bloom_len == 0 )
//
// The first four fields are exactly the wire format documented for the
// index: a reader that only understands text_len/text/sa_byte_len/sa can
// still parse a record correctly and simply stop before the trailer. The
// CRC and Bloom block are additive robustness and prefiltering, written by
// every writer in this module.
package chunk

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/wavenator-labs/subsearch/internal/subsearcherr"
	"github.com/wavenator-labs/subsearch/internal/trigram"
)

// Record is one persisted chunk: its text blob, the suffix array over
// that blob, and an optional trigram prefilter.
type Record struct {
	Text   []byte
	SA     []uint32
	Filter *trigram.Filter // nil if the writer was built with WithBloomFilter(false)
}

// Encode writes r to w in the layout documented above and returns the
// number of bytes written.
func Encode(w io.Writer, r Record) (int64, error) {
	if len(r.Text) == 0 {
		return 0, fmt.Errorf("chunk: %w: empty text", subsearcherr.ErrInvalidArgument)
	}
	if len(r.SA) != len(r.Text) {
		return 0, fmt.Errorf("chunk: %w: sa length %d != text length %d", subsearcherr.ErrInvalidArgument, len(r.SA), len(r.Text))
	}

	crc := crc32.NewIEEE()
	mw := io.MultiWriter(w, crc)

	var written int64

	if err := binary.Write(mw, binary.LittleEndian, uint32(len(r.Text))); err != nil {
		return written, fmt.Errorf("chunk: write text_len: %w", err)
	}
	written += 4

	n, err := mw.Write(r.Text)
	written += int64(n)
	if err != nil {
		return written, fmt.Errorf("chunk: write text: %w", err)
	}

	saBytes := packSA(r.SA)
	if err := binary.Write(mw, binary.LittleEndian, uint32(len(saBytes))); err != nil {
		return written, fmt.Errorf("chunk: write sa_byte_len: %w", err)
	}
	written += 4

	n, err = mw.Write(saBytes)
	written += int64(n)
	if err != nil {
		return written, fmt.Errorf("chunk: write sa: %w", err)
	}

	if err := binary.Write(w, binary.LittleEndian, crc.Sum32()); err != nil {
		return written, fmt.Errorf("chunk: write crc: %w", err)
	}
	written += 4

	var filterBytes []byte
	if r.Filter != nil {
		filterBytes, err = r.Filter.MarshalBinary()
		if err != nil {
			return written, fmt.Errorf("chunk: marshal bloom filter: %w", err)
		}
	}

	if err := binary.Write(w, binary.LittleEndian, uint32(len(filterBytes))); err != nil {
		return written, fmt.Errorf("chunk: write bloom_len: %w", err)
	}
	written += 4

	if len(filterBytes) > 0 {
		n, err = w.Write(filterBytes)
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("chunk: write bloom: %w", err)
		}
	}

	return written, nil
}

func packSA(sa []uint32) []byte {
	out := make([]byte, len(sa)*4)
	for i, v := range sa {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	return out
}

func unpackSA(b []byte) ([]uint32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("chunk: %w: sa block length %d not a multiple of 4", subsearcherr.ErrCorruptIndex, len(b))
	}
	out := make([]uint32, len(b)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return out, nil
}

// DecodeAt parses one chunk record starting at offset off within data,
// validating length prefixes and the CRC trailer. It returns the record
// and the offset immediately after it.
func DecodeAt(data []byte, off int64) (Record, int64, error) {
	var rec Record

	if off+4 > int64(len(data)) {
		return rec, 0, fmt.Errorf("chunk: %w: truncated text_len", subsearcherr.ErrCorruptIndex)
	}
	textLen := int64(binary.LittleEndian.Uint32(data[off:]))
	off += 4
	if textLen == 0 {
		return rec, 0, fmt.Errorf("chunk: %w: text_len is zero", subsearcherr.ErrCorruptIndex)
	}
	if off+textLen > int64(len(data)) {
		return rec, 0, fmt.Errorf("chunk: %w: truncated text", subsearcherr.ErrCorruptIndex)
	}
	text := data[off : off+textLen]
	off += textLen

	if off+4 > int64(len(data)) {
		return rec, 0, fmt.Errorf("chunk: %w: truncated sa_byte_len", subsearcherr.ErrCorruptIndex)
	}
	saByteLen := int64(binary.LittleEndian.Uint32(data[off:]))
	off += 4
	if saByteLen != textLen*4 {
		return rec, 0, fmt.Errorf("chunk: %w: sa_byte_len %d != 4*text_len %d", subsearcherr.ErrCorruptIndex, saByteLen, textLen*4)
	}
	if off+saByteLen > int64(len(data)) {
		return rec, 0, fmt.Errorf("chunk: %w: truncated sa", subsearcherr.ErrCorruptIndex)
	}
	saBytes := data[off : off+saByteLen]
	off += saByteLen

	if off+4 > int64(len(data)) {
		return rec, 0, fmt.Errorf("chunk: %w: truncated crc", subsearcherr.ErrCorruptIndex)
	}
	wantCRC := binary.LittleEndian.Uint32(data[off:])
	off += 4

	gotCRC := crc32.NewIEEE()
	_, _ = gotCRC.Write(data[off-8-saByteLen-4-textLen : off-4])
	if gotCRC.Sum32() != wantCRC {
		return rec, 0, fmt.Errorf("chunk: %w: crc mismatch", subsearcherr.ErrCorruptIndex)
	}

	if off+4 > int64(len(data)) {
		return rec, 0, fmt.Errorf("chunk: %w: truncated bloom_len", subsearcherr.ErrCorruptIndex)
	}
	bloomLen := int64(binary.LittleEndian.Uint32(data[off:]))
	off += 4
	if bloomLen < 0 || off+bloomLen > int64(len(data)) {
		return rec, 0, fmt.Errorf("chunk: %w: truncated bloom", subsearcherr.ErrCorruptIndex)
	}

	var filter *trigram.Filter
	if bloomLen > 0 {
		f, err := trigram.UnmarshalBinary(data[off : off+bloomLen])
		if err != nil {
			return rec, 0, fmt.Errorf("chunk: %w: bad bloom block: %v", subsearcherr.ErrCorruptIndex, err)
		}
		filter = f
	}
	off += bloomLen

	sa, err := unpackSA(saBytes)
	if err != nil {
		return rec, 0, err
	}

	rec.Text = text
	rec.SA = sa
	rec.Filter = filter
	return rec, off, nil
}
