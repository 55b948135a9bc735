package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func ParseColor(s string) (Color, error) {
	switch strings.ToLower(s) {
	case "white", "w":
		return White, nil
	case "black", "b":
		return Black, nil
	}
	return White, fmt.Errorf("unknown color %q", s)
}

// Kind is the piece type. The zero Kind marks an empty cell.
type Kind uint8

const (
	None Kind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var kindNames = [...]string{"", "pawn", "knight", "bishop", "rook", "queen", "king"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	for i, name := range kindNames {
		if name == string(text) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown piece kind %q", text)
}

// notation letter used in move history; pawns have none
func (k Kind) notation() string {
	switch k {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	}
	return ""
}

type Piece struct {
	Kind  Kind  `json:"type"`
	Color Color `json:"color"`
}

func (p Piece) IsEmpty() bool {
	return p.Kind == None
}

// Code returns the single-character board code: uppercase white, lowercase black, '.' empty.
func (p Piece) Code() byte {
	var c byte
	switch p.Kind {
	case Pawn:
		c = 'p'
	case Knight:
		c = 'n'
	case Bishop:
		c = 'b'
	case Rook:
		c = 'r'
	case Queen:
		c = 'q'
	case King:
		c = 'k'
	default:
		return emptyCode
	}
	if p.Color == White {
		c -= 'a' - 'A'
	}
	return c
}

const (
	emptyCode = '.'
	deadCode  = 'x'
	rowSep    = '/'
)

func pieceFromCode(c byte) (Piece, bool) {
	color := Black
	if c >= 'A' && c <= 'Z' {
		color = White
		c += 'a' - 'A'
	}
	var kind Kind
	switch c {
	case 'p':
		kind = Pawn
	case 'n':
		kind = Knight
	case 'b':
		kind = Bishop
	case 'r':
		kind = Rook
	case 'q':
		kind = Queen
	case 'k':
		kind = King
	default:
		return Piece{}, false
	}
	return Piece{Kind: kind, Color: color}, true
}

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) Add(d Position) Position {
	return Position{X: p.X + d.X, Y: p.Y + d.Y}
}

// Shape reports which in-bounds cells can hold pieces.
type Shape interface {
	Playable(p Position) bool
}

type RectShape struct{}

func (RectShape) Playable(Position) bool { return true }

// MaskShape marks individual cells as dead. Dead cells block every move.
type MaskShape struct {
	cols int
	dead []bool
}

func NewMaskShape(rows, cols int, dead []Position) *MaskShape {
	m := &MaskShape{cols: cols, dead: make([]bool, rows*cols)}
	for _, p := range dead {
		m.dead[p.Y*cols+p.X] = true
	}
	return m
}

func (m *MaskShape) Playable(p Position) bool {
	return !m.dead[p.Y*m.cols+p.X]
}

// CrossShape is a size x size square with corner x corner dead blocks cut from each corner.
func CrossShape(size, corner int) *MaskShape {
	var dead []Position
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			inRowBand := y < corner || y >= size-corner
			inColBand := x < corner || x >= size-corner
			if inRowBand && inColBand {
				dead = append(dead, Position{X: x, Y: y})
			}
		}
	}
	return NewMaskShape(size, size, dead)
}

var ErrBadBoard = errors.New("malformed board")

// Board is a rows x cols grid. Row 0 is black's back rank; white moves toward it.
type Board struct {
	rows  int
	cols  int
	shape Shape
	cells []Piece
}

func NewBoard(rows, cols int, shape Shape) *Board {
	if shape == nil {
		shape = RectShape{}
	}
	return &Board{rows: rows, cols: cols, shape: shape, cells: make([]Piece, rows*cols)}
}

const MiniStart = "rqkr/pppp/..../PPPP/RQKR"

// NewMiniBoard returns the 4x5 starting position.
func NewMiniBoard() *Board {
	b, err := ParseBoard(MiniStart)
	if err != nil {
		panic(err)
	}
	return b
}

// NewFourPlayerBoard returns the 14x14 cross board with the two armies facing each other on the long arm.
func NewFourPlayerBoard() *Board {
	b := NewBoard(14, 14, CrossShape(14, 3))
	back := []Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for i, kind := range back {
		x := 3 + i
		b.Set(Position{X: x, Y: 0}, Piece{Kind: kind, Color: Black})
		b.Set(Position{X: x, Y: 1}, Piece{Kind: Pawn, Color: Black})
		b.Set(Position{X: x, Y: 12}, Piece{Kind: Pawn, Color: White})
		b.Set(Position{X: x, Y: 13}, Piece{Kind: kind, Color: White})
	}
	return b
}

func (b *Board) Rows() int { return b.rows }
func (b *Board) Cols() int { return b.cols }

// InBounds reports whether p is on the grid and playable.
func (b *Board) InBounds(p Position) bool {
	if p.X < 0 || p.X >= b.cols || p.Y < 0 || p.Y >= b.rows {
		return false
	}
	return b.shape.Playable(p)
}

// At returns the piece at p, or the empty piece when p is empty or off the board.
func (b *Board) At(p Position) Piece {
	if !b.InBounds(p) {
		return Piece{}
	}
	return b.cells[p.Y*b.cols+p.X]
}

func (b *Board) Set(p Position, piece Piece) {
	b.cells[p.Y*b.cols+p.X] = piece
}

func (b *Board) Clone() *Board {
	c := *b
	c.cells = make([]Piece, len(b.cells))
	copy(c.cells, b.cells)
	return &c
}

// Each calls fn for every occupied cell in row-major order.
func (b *Board) Each(fn func(p Position, piece Piece)) {
	for i, piece := range b.cells {
		if !piece.IsEmpty() {
			fn(Position{X: i % b.cols, Y: i / b.cols}, piece)
		}
	}
}

func (b *Board) HasKing(c Color) bool {
	for _, piece := range b.cells {
		if piece.Kind == King && piece.Color == c {
			return true
		}
	}
	return false
}

func (b *Board) KingPosition(c Color) (Position, bool) {
	for i, piece := range b.cells {
		if piece.Kind == King && piece.Color == c {
			return Position{X: i % b.cols, Y: i / b.cols}, true
		}
	}
	return Position{}, false
}

func (b *Board) PawnStartRow(c Color) int {
	if c == White {
		return b.rows - 2
	}
	return 1
}

func (b *Board) PromotionRow(c Color) int {
	if c == White {
		return 0
	}
	return b.rows - 1
}

// Forward is the row delta a pawn of color c moves by.
func Forward(c Color) int {
	if c == White {
		return -1
	}
	return 1
}

// SquareName renders p as file letter plus rank counted from the bottom, e.g. "a1".
func (b *Board) SquareName(p Position) string {
	return fmt.Sprintf("%c%d", 'a'+p.X, b.rows-p.Y)
}

// String encodes the board as row-major codes separated by '/'.
func (b *Board) String() string {
	var sb strings.Builder
	sb.Grow(b.rows * (b.cols + 1))
	for y := 0; y < b.rows; y++ {
		if y > 0 {
			sb.WriteByte(rowSep)
		}
		for x := 0; x < b.cols; x++ {
			p := Position{X: x, Y: y}
			if !b.shape.Playable(p) {
				sb.WriteByte(deadCode)
				continue
			}
			sb.WriteByte(b.cells[y*b.cols+x].Code())
		}
	}
	return sb.String()
}

// ParseBoard decodes the format produced by String. Rows may also be separated by newlines.
func ParseBoard(code string) (*Board, error) {
	code = strings.TrimSpace(code)
	rows := strings.FieldsFunc(code, func(r rune) bool {
		return r == rowSep || r == '\n' || r == '\r'
	})
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrBadBoard)
	}
	for i := range rows {
		rows[i] = strings.ReplaceAll(strings.TrimSpace(rows[i]), " ", "")
	}
	cols := len(rows[0])
	if cols == 0 {
		return nil, fmt.Errorf("%w: empty row", ErrBadBoard)
	}

	var dead []Position
	cells := make([]Piece, len(rows)*cols)
	for y, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrBadBoard, y, len(row), cols)
		}
		for x := 0; x < cols; x++ {
			c := row[x]
			switch c {
			case emptyCode:
			case deadCode:
				dead = append(dead, Position{X: x, Y: y})
			default:
				piece, ok := pieceFromCode(c)
				if !ok {
					return nil, fmt.Errorf("%w: unknown piece code %q at row %d", ErrBadBoard, c, y)
				}
				cells[y*cols+x] = piece
			}
		}
	}

	var shape Shape = RectShape{}
	if len(dead) > 0 {
		shape = NewMaskShape(len(rows), cols, dead)
	}
	return &Board{rows: len(rows), cols: cols, shape: shape, cells: cells}, nil
}

type boardJSON struct {
	Rows int    `json:"rows"`
	Cols int    `json:"cols"`
	Code string `json:"code"`
}

func (b *Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(boardJSON{Rows: b.rows, Cols: b.cols, Code: b.String()})
}

func (b *Board) UnmarshalJSON(data []byte) error {
	var raw boardJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseBoard(raw.Code)
	if err != nil {
		return err
	}
	*b = *parsed
	return nil
}
