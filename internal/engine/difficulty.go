package engine

import (
	"errors"
	"fmt"
)

var ErrUnknownDifficulty = errors.New("unknown difficulty")

// depths maps difficulty level to search depth in plies.
var depths = map[int]int{
	1: 2,
	2: 3,
	3: 5,
	4: 7,
}

const (
	MinDifficulty = 1
	MaxDifficulty = 4
)

func DepthForDifficulty(level int) (int, error) {
	d, ok := depths[level]
	if !ok {
		return 0, fmt.Errorf("%w: %d (want %d-%d)", ErrUnknownDifficulty, level, MinDifficulty, MaxDifficulty)
	}
	return d, nil
}
