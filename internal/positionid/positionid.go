// Package positionid implements compact identifiers for Quantik positions.
//
// Two encodings are provided:
//   - Board IDs: the 16 board tiles packed at 5 bits each into an 80-bit key
//     and rendered as a 14-character base64 string.
//   - History IDs: one base64 character per action index, so a move history
//     of n plies becomes an n-character string.
//
// The package works on raw tiles and action bytes so it can be shared by the
// engine, the book reader and the server without import cycles.
package positionid

import (
	"errors"
)

const (
	// BoardIDLength is the length of a board ID string
	BoardIDLength = 14
	// MaxHistory is the longest possible game (every cell filled)
	MaxHistory = 16
	// NumCells is the number of board cells
	NumCells = 16

	bitsPerCell = 5
)

// Base64 alphabet used for ID encoding
const base64Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// ErrInvalidID is returned when a board or history ID cannot be decoded
var ErrInvalidID = errors.New("invalid position ID")

// Board is a row-major array of tiles: 0 empty, color<<4 | shape otherwise.
type Board [NumCells]uint8

// BoardKey is the fast in-memory key used for hashing (5 bits per cell,
// six cells per word).
type BoardKey struct {
	Data [3]uint32
}

// PackedKey is the 80-bit serialized form used for board ID strings
type PackedKey struct {
	Data [10]uint8
}

// MakeBoardKey creates a compact key from a board
func MakeBoardKey(board Board) BoardKey {
	var key BoardKey
	for i, t := range board {
		w, s := i/6, uint(i%6)*bitsPerCell
		key.Data[w] |= uint32(t&0x1f) << s
	}
	return key
}

// MakePackedKey packs the board into 80 bits, cell 0 in the lowest bits
func MakePackedKey(board Board) PackedKey {
	var key PackedKey
	for i, t := range board {
		addBits(&key, uint32(i*bitsPerCell), t&0x1f)
	}
	return key
}

// addBits ORs a 5-bit value into the packed key starting at bitPos
func addBits(key *PackedKey, bitPos uint32, v uint8) {
	k := bitPos / 8
	r := bitPos & 0x7
	b := uint16(v) << r

	key.Data[k] |= uint8(b)
	if k < 9 {
		key.Data[k+1] |= uint8(b >> 8)
	}
}

// BoardFromPackedKey reverses MakePackedKey
func BoardFromPackedKey(key PackedKey) Board {
	var board Board
	for i := range board {
		bitPos := uint32(i * bitsPerCell)
		k := bitPos / 8
		r := bitPos & 0x7
		v := uint16(key.Data[k])
		if k < 9 {
			v |= uint16(key.Data[k+1]) << 8
		}
		board[i] = uint8(v>>r) & 0x1f
	}
	return board
}

// BoardIDFromKey renders a packed key as a base64 string
func BoardIDFromKey(key PackedKey) string {
	result := make([]byte, BoardIDLength)
	puch := key.Data[:]

	for i := 0; i < 3; i++ {
		result[i*4] = base64Chars[puch[0]>>2]
		result[i*4+1] = base64Chars[((puch[0]&0x03)<<4)|(puch[1]>>4)]
		result[i*4+2] = base64Chars[((puch[1]&0x0F)<<2)|(puch[2]>>6)]
		result[i*4+3] = base64Chars[puch[2]&0x3F]
		puch = puch[3:]
	}

	result[12] = base64Chars[puch[0]>>2]
	result[13] = base64Chars[(puch[0]&0x03)<<4]

	return string(result)
}

// BoardID generates a base64 board ID string
func BoardID(board Board) string {
	return BoardIDFromKey(MakePackedKey(board))
}

// base64Decode decodes a base64 character to its value
func base64Decode(ch byte) uint8 {
	switch {
	case ch >= 'A' && ch <= 'Z':
		return ch - 'A'
	case ch >= 'a' && ch <= 'z':
		return ch - 'a' + 26
	case ch >= '0' && ch <= '9':
		return ch - '0' + 52
	case ch == '+':
		return 62
	case ch == '/':
		return 63
	}
	return 255
}

// BoardFromID decodes a board ID string and validates the resulting board
func BoardFromID(id string) (Board, error) {
	var key PackedKey
	var board Board

	if len(id) != BoardIDLength {
		return board, ErrInvalidID
	}

	ach := make([]uint8, BoardIDLength)
	for i := 0; i < BoardIDLength; i++ {
		ach[i] = base64Decode(id[i])
		if ach[i] == 255 {
			return board, ErrInvalidID
		}
	}
	// The final character only carries two bits.
	if ach[13]&0x0f != 0 {
		return board, ErrInvalidID
	}

	pch := ach
	for i := 0; i < 3; i++ {
		key.Data[i*3] = (pch[0] << 2) | (pch[1] >> 4)
		key.Data[i*3+1] = (pch[1] << 4) | (pch[2] >> 2)
		key.Data[i*3+2] = (pch[2] << 6) | pch[3]
		pch = pch[4:]
	}
	key.Data[9] = (pch[0] << 2) | (pch[1] >> 4)

	board = BoardFromPackedKey(key)
	if !CheckBoard(board) {
		return board, ErrInvalidID
	}
	return board, nil
}

// CheckBoard validates that a board could arise in play: every tile is a
// known shape, no color holds more than two of a shape, and the first
// player has placed the same number of pieces as the second or one more.
func CheckBoard(board Board) bool {
	var count [2][5]int
	var pieces [2]int

	for _, t := range board {
		if t == 0 {
			continue
		}
		c, s := t>>4, t&0x0f
		if c > 1 || s < 1 || s > 4 {
			return false
		}
		count[c][s]++
		pieces[c]++
		if count[c][s] > 2 {
			return false
		}
	}

	d := pieces[0] - pieces[1]
	return d == 0 || d == 1
}

// HistoryID encodes a sequence of action indices (0..63), one character each
func HistoryID(actions []uint8) string {
	result := make([]byte, len(actions))
	for i, a := range actions {
		result[i] = base64Chars[a&0x3f]
	}
	return string(result)
}

// HistoryFromID decodes a history ID into action indices
func HistoryFromID(id string) ([]uint8, error) {
	if len(id) > MaxHistory {
		return nil, ErrInvalidID
	}
	actions := make([]uint8, len(id))
	for i := 0; i < len(id); i++ {
		v := base64Decode(id[i])
		if v == 255 {
			return nil, ErrInvalidID
		}
		actions[i] = v
	}
	return actions, nil
}

// EqualKeys returns true if two board keys are identical
func EqualKeys(k1, k2 BoardKey) bool {
	return k1.Data == k2.Data
}
