package bot

import (
	"fmt"
	"strconv"
	"strings"
)

// Algorithm names a preset combination of search features.
type Algorithm int

const (
	Random Algorithm = iota
	Minimax
	AlphaBeta
	TTable
	IterDeep
	IterDeepTT
	IterDeepMoveOrder
)

var algorithmNames = []string{
	Random:            "random",
	Minimax:           "minimax",
	AlphaBeta:         "alphabeta",
	TTable:            "ttable",
	IterDeep:          "iterdeep",
	IterDeepTT:        "iterdeep_tt",
	IterDeepMoveOrder: "iterdeep_moveorder",
}

func (a Algorithm) String() string {
	if a < 0 || int(a) >= len(algorithmNames) {
		return "Algorithm(" + strconv.Itoa(int(a)) + ")"
	}
	return algorithmNames[a]
}

// Features returns the toggles the preset switches on. Random has none and
// never reaches the engine.
func (a Algorithm) Features() Features {
	switch a {
	case AlphaBeta:
		return Features{AlphaBeta: true}
	case TTable:
		return Features{AlphaBeta: true, Transposition: true}
	case IterDeep:
		return Features{AlphaBeta: true, IterativeDeepening: true}
	case IterDeepTT:
		return Features{AlphaBeta: true, Transposition: true, IterativeDeepening: true}
	case IterDeepMoveOrder:
		return Features{AlphaBeta: true, Transposition: true, IterativeDeepening: true, MoveOrdering: true}
	default:
		return Features{}
	}
}

func AllAlgorithms() []Algorithm {
	return []Algorithm{Random, Minimax, AlphaBeta, TTable, IterDeep, IterDeepTT, IterDeepMoveOrder}
}

// ParseAlgorithm accepts a preset name or its menu number.
func ParseAlgorithm(s string) (Algorithm, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 0 && n < len(algorithmNames) {
			return Algorithm(n), nil
		}
		return 0, fmt.Errorf("unknown algorithm number %d", n)
	}
	for i, name := range algorithmNames {
		if name == s {
			return Algorithm(i), nil
		}
	}
	return 0, fmt.Errorf("unknown algorithm %q", s)
}
