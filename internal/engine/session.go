package engine

// SessionVersion tags save files; a save with another version is ignored.
const SessionVersion uint8 = 1

// Session is the simulation context of one game: the board, the active
// figure and the counters derived from play.
type Session struct {
	Board      Board
	Figure     Figure
	Score      int
	Level      int
	Figures    int // Figures placed so far
	Lines      int // Rows cleared so far
	BlockTypes int
	Version    uint8
	Over       bool
}

// LandResult describes what happened when a figure could not fall further.
type LandResult struct {
	Lines    int  // Rows removed by the collapse
	Points   int  // Score gained
	LevelUp  bool // Level increased
	GameOver bool // The next figure does not fit at its spawn position
}

// NewSession starts a fresh game with an empty board and a first figure.
func NewSession(blockTypes int, src ByteSource) *Session {
	s := &Session{}
	s.Start(blockTypes, src)
	return s
}

// Start resets the session for a new game.
func (s *Session) Start(blockTypes int, src ByteSource) {
	violation := s.Board.Violation
	*s = Session{
		BlockTypes: ClampBlockTypes(blockTypes),
		Level:      1,
		Version:    SessionVersion,
	}
	s.Board.Violation = violation
	s.Spawn(src)
}

// Spawn generates the next figure and reports whether it fits.
// A figure that does not fit ends the game.
func (s *Session) Spawn(src ByteSource) bool {
	s.Figure = Generate(src, s.BlockTypes)
	if !s.Figure.Fits(&s.Board) {
		s.Over = true
		return false
	}
	return true
}

// TryMove moves the figure if the board allows it.
func (s *Session) TryMove(dir Direction) bool {
	if s.Over || !s.Figure.CanMove(&s.Board, dir) {
		return false
	}
	s.Figure.Move(dir)
	return true
}

// TryRotate rotates the figure if the board allows it.
func (s *Session) TryRotate() bool {
	if s.Over {
		return false
	}
	return s.Figure.TryRotate(&s.Board)
}

// Fall moves the figure down one row, landing it when it cannot move.
// landed is false when the figure simply moved.
func (s *Session) Fall(src ByteSource, sc Scoring) (res LandResult, landed bool) {
	if s.TryMove(Down) {
		return LandResult{}, false
	}
	if s.Over {
		return LandResult{GameOver: true}, false
	}
	return s.Land(src, sc), true
}

// Land freezes the figure, collapses full rows, updates score and level,
// and spawns the next figure.
func (s *Session) Land(src ByteSource, sc Scoring) LandResult {
	s.Figure.FreezeInto(&s.Board)
	s.Figures++

	var res LandResult
	res.Lines = Collapse(&s.Board)
	if res.Lines > 0 {
		s.Lines += res.Lines
		res.Points = sc.Points(res.Lines)
		s.Score += res.Points
		level := sc.LevelFor(s.Score)
		res.LevelUp = level > s.Level
		s.Level = level
	}

	res.GameOver = !s.Spawn(src)
	return res
}
