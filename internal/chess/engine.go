package chess

import (
	"strings"

	"github.com/notnil/chess"
)

// StandardEngine adapts github.com/notnil/chess to Engine.
type StandardEngine struct {
	game *chess.Game
}

func NewStandardEngine() *StandardEngine {
	return &StandardEngine{game: newGame()}
}

func newGame() *chess.Game {
	return chess.NewGame(chess.UseNotation(chess.UCINotation{}))
}

// Move plays from->to. A pawn reaching the last rank without an explicit
// promotion becomes a queen.
func (e *StandardEngine) Move(from, to, promotion string) bool {
	uci := strings.ToLower(from + to + promotion)
	if e.game.MoveStr(uci) == nil {
		return true
	}
	if promotion == "" && (strings.HasSuffix(to, "1") || strings.HasSuffix(to, "8")) {
		return e.game.MoveStr(uci+"q") == nil
	}
	return false
}

func (e *StandardEngine) History() []string {
	moves := e.game.Moves()
	positions := e.game.Positions()
	out := make([]string, 0, len(moves))
	var san chess.AlgebraicNotation
	for i, m := range moves {
		out = append(out, san.Encode(positions[i], m))
	}
	return out
}

func (e *StandardEngine) InCheck() bool {
	moves := e.game.Moves()
	if len(moves) == 0 {
		return false
	}
	return moves[len(moves)-1].HasTag(chess.Check)
}

func (e *StandardEngine) Turn() Color {
	if e.game.Position().Turn() == chess.White {
		return White
	}
	return Black
}

func (e *StandardEngine) Outcome() string {
	return string(e.game.Outcome())
}

func (e *StandardEngine) FEN() string {
	return e.game.Position().String()
}

func (e *StandardEngine) Reset() {
	e.game = newGame()
}
