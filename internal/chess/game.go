package chess

import (
	"errors"
	"sync"
	"time"
)

// Color is the side to move.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// ErrIllegalMove is returned when the rules engine rejects a move.
var ErrIllegalMove = errors.New("illegal move")

// Engine is the external rules engine. It owns legality, check detection
// and board transitions; Game only reads its results.
type Engine interface {
	// Move attempts from->to in square notation ("e2", "e4"). promotion is
	// empty or one of q, r, b, n.
	Move(from, to, promotion string) bool
	// History returns the played moves in standard algebraic notation.
	History() []string
	InCheck() bool
	Turn() Color
	// Outcome is "*" while the game is running, otherwise the result.
	Outcome() string
	FEN() string
	Reset()
}

// Row is one numbered turn of the move history.
type Row struct {
	Turn  int    `json:"turn"`
	White string `json:"white"`
	Black string `json:"black,omitempty"`
}

// View is a snapshot for display.
type View struct {
	Started      bool     `json:"started"`
	WhiteSeconds int      `json:"whiteSeconds"`
	BlackSeconds int      `json:"blackSeconds"`
	WhiteToMove  bool     `json:"whiteToMove"`
	InCheck      bool     `json:"inCheck"`
	Outcome      string   `json:"outcome"`
	FEN          string   `json:"fen"`
	Moves        []string `json:"moves"`
	Rows         []Row    `json:"rows"`
}

// Game is a clock and history display over an Engine. Time accrues to the
// side to move on every tick while the game is started and undecided.
type Game struct {
	mu      sync.Mutex
	engine  Engine
	started bool
	white   time.Duration
	black   time.Duration
}

func NewGame(engine Engine) *Game {
	return &Game{engine: engine}
}

// Start begins crediting time. Starting a started game is a no-op.
func (g *Game) Start() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.started = true
}

// Reset returns the board, the history and both clocks to the initial state.
func (g *Game) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.engine.Reset()
	g.started = false
	g.white = 0
	g.black = 0
}

// Move forwards a move to the engine.
func (g *Game) Move(from, to, promotion string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.engine.Move(from, to, promotion) {
		return ErrIllegalMove
	}
	return nil
}

// Tick credits d to the side to move.
func (g *Game) Tick(d time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.started || g.engine.Outcome() != "*" {
		return
	}
	if g.engine.Turn() == White {
		g.white += d
	} else {
		g.black += d
	}
}

// Snapshot returns the current display state.
func (g *Game) Snapshot() View {
	g.mu.Lock()
	defer g.mu.Unlock()

	moves := g.engine.History()
	return View{
		Started:      g.started,
		WhiteSeconds: int(g.white / time.Second),
		BlackSeconds: int(g.black / time.Second),
		WhiteToMove:  g.engine.Turn() == White,
		InCheck:      g.engine.InCheck(),
		Outcome:      g.engine.Outcome(),
		FEN:          g.engine.FEN(),
		Moves:        moves,
		Rows:         Rows(moves),
	}
}

// Rows groups a flat move list into numbered turns.
func Rows(moves []string) []Row {
	rows := make([]Row, 0, (len(moves)+1)/2)
	for i := 0; i < len(moves); i += 2 {
		r := Row{Turn: i/2 + 1, White: moves[i]}
		if i+1 < len(moves) {
			r.Black = moves[i+1]
		}
		rows = append(rows, r)
	}
	return rows
}
