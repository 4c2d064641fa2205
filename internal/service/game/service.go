package game

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/iamasit07/c4search/internal/config"
	"github.com/iamasit07/c4search/internal/domain"
	"github.com/iamasit07/c4search/internal/repository/postgres"
	"github.com/iamasit07/c4search/internal/service/bot"
	"github.com/iamasit07/c4search/pkg/uid"
	"github.com/rs/zerolog"
)

const (
	ReasonConnectFour = "connect_four"
	ReasonDraw        = "draw"
	ReasonSurrender   = "surrender"
	ReasonDisconnect  = "disconnect"
)

type ConnectionManagerInterface interface {
	SendMessage(clientID int64, message domain.ServerMessage) error
	RemoveConnection(clientID int64)
}

type GameRepository interface {
	SaveGame(ctx context.Context, g postgres.GameRecord) error
}

// GameSession is one human playing one engine over a websocket.
type GameSession struct {
	GameID      string
	ClientID    int64
	PlayerName  string
	EngineName  string
	HumanPlayer domain.PlayerID
	Game        *domain.Game
	Engine      *bot.Manager
	Reason      string
	CreatedAt   time.Time
	FinishedAt  time.Time

	botTimer *time.Timer
	botDelay time.Duration
	// thinking is set while the engine searches outside the lock
	thinking bool
	mu       sync.Mutex
	repo     GameRepository
	log      zerolog.Logger
}

// SessionManager manages active game sessions
type SessionManager struct {
	Session      map[string]*GameSession // gameID → GameSession
	ClientToGame map[int64]string        // clientID → gameID
	mu           sync.RWMutex
	repo         GameRepository
	engine       config.EngineConfig
	botDelay     time.Duration
	log          zerolog.Logger
}

// NewSessionManager accepts a nil repo; finished games are then only logged.
func NewSessionManager(repo GameRepository, engine config.EngineConfig, botDelay time.Duration, log zerolog.Logger) *SessionManager {
	return &SessionManager{
		Session:      make(map[string]*GameSession),
		ClientToGame: make(map[int64]string),
		repo:         repo,
		engine:       engine,
		botDelay:     botDelay,
		log:          log,
	}
}

// ResolveEngine picks engine settings from an algorithm name, falling back to
// a difficulty level. It also returns the display name of the engine.
func (sm *SessionManager) ResolveEngine(algorithm, difficulty string) (bot.Settings, string, error) {
	if algorithm != "" {
		alg, err := bot.ParseAlgorithm(algorithm)
		if err != nil {
			return bot.Settings{}, "", fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
		}
		settings := bot.Settings{
			Algorithm: alg,
			MaxDepth:  sm.engine.MaxDepth,
			TimeLimit: sm.engine.TimeLimit,
			TTSize:    sm.engine.TTSize,
		}
		return settings, alg.String(), nil
	}

	level := bot.ParseDifficulty(difficulty)
	settings := level.Settings(sm.engine.MaxDepth, sm.engine.TimeLimit)
	settings.TTSize = sm.engine.TTSize
	return settings, domain.GetBotName(string(level)), nil
}

// StartGame ends whatever the client was playing and opens a new session.
func (sm *SessionManager) StartGame(clientID int64, playerName, algorithm, difficulty string, humanFirst bool, conn ConnectionManagerInterface) (*GameSession, error) {
	settings, engineName, err := sm.ResolveEngine(algorithm, difficulty)
	if err != nil {
		return nil, err
	}
	sm.ForceCleanupForClient(clientID, conn)
	return sm.CreateSession(clientID, playerName, settings, engineName, humanFirst, conn), nil
}

func (sm *SessionManager) CreateSession(clientID int64, playerName string, settings bot.Settings, engineName string, humanFirst bool, conn ConnectionManagerInterface) *GameSession {
	human := domain.Player1
	if !humanFirst {
		human = domain.Player2
	}

	gs := &GameSession{
		GameID:      uid.GenerateGameID(),
		ClientID:    clientID,
		PlayerName:  playerName,
		EngineName:  engineName,
		HumanPlayer: human,
		Game:        domain.NewGame(),
		Engine:      bot.NewManager(settings, sm.log),
		CreatedAt:   time.Now(),
		botDelay:    sm.botDelay,
		repo:        sm.repo,
	}
	gs.log = sm.log.With().Str("game_id", gs.GameID).Logger()

	sm.mu.Lock()
	sm.Session[gs.GameID] = gs
	sm.ClientToGame[clientID] = gs.GameID
	sm.mu.Unlock()

	gs.log.Info().
		Str("player", playerName).
		Str("engine", engineName).
		Str("algorithm", settings.Algorithm.String()).
		Bool("human_first", humanFirst).
		Msg("session created")

	gs.mu.Lock()
	defer gs.mu.Unlock()
	conn.SendMessage(clientID, domain.ServerMessage{
		Type:        "game_start",
		GameID:      gs.GameID,
		Opponent:    engineName,
		YourPlayer:  int(human),
		CurrentTurn: int(gs.Game.CurrentPlayer),
		Board:       gs.Game.Cells(),
	})
	if !humanFirst {
		gs.scheduleBotMove(conn)
	}
	return gs
}

func (sm *SessionManager) GetSessionByClientID(clientID int64) (*GameSession, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	gameID, exists := sm.ClientToGame[clientID]
	if !exists {
		return nil, false
	}

	session, exists := sm.Session[gameID]
	return session, exists
}

func (sm *SessionManager) GetSessionByGameID(gameID string) (*GameSession, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.Session[gameID]
	return session, exists
}

func (sm *SessionManager) RemoveSession(gameID string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session, exists := sm.Session[gameID]
	if !exists {
		return fmt.Errorf("session not found")
	}

	sm.log.Debug().Str("game_id", gameID).Msg("removing session")
	if sm.ClientToGame[session.ClientID] == gameID {
		delete(sm.ClientToGame, session.ClientID)
	}
	delete(sm.Session, gameID)
	return nil
}

// ForceCleanupForClient drops the client's current session, abandoning it
// first if it is still being played.
func (sm *SessionManager) ForceCleanupForClient(clientID int64, conn ConnectionManagerInterface) {
	session, exists := sm.GetSessionByClientID(clientID)
	if !exists {
		return
	}

	session.mu.Lock()
	finished := session.over()
	session.mu.Unlock()

	if !finished {
		session.TerminateSessionByAbandonment(clientID, conn)
	}
	sm.RemoveSession(session.GameID)
}

// LiveGame is a summary of an unfinished session.
type LiveGame struct {
	GameID     string    `json:"gameId"`
	PlayerName string    `json:"playerName"`
	EngineName string    `json:"engineName"`
	Algorithm  string    `json:"algorithm"`
	MoveCount  int       `json:"moveCount"`
	StartedAt  time.Time `json:"startedAt"`
}

func (sm *SessionManager) GetActiveGames() []LiveGame {
	sm.mu.RLock()
	sessions := make([]*GameSession, 0, len(sm.Session))
	for _, s := range sm.Session {
		sessions = append(sessions, s)
	}
	sm.mu.RUnlock()

	games := make([]LiveGame, 0, len(sessions))
	for _, s := range sessions {
		s.mu.Lock()
		if !s.over() {
			games = append(games, LiveGame{
				GameID:     s.GameID,
				PlayerName: s.PlayerName,
				EngineName: s.EngineName,
				Algorithm:  s.Engine.Algorithm().String(),
				MoveCount:  s.Game.MoveCount,
				StartedAt:  s.CreatedAt,
			})
		}
		s.mu.Unlock()
	}
	return games
}

// CleanupOldSessions forgets finished sessions after an hour and unfinished
// ones after a day.
func (sm *SessionManager) CleanupOldSessions(now time.Time) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	count := 0
	for gameID, session := range sm.Session {
		session.mu.Lock()
		stale := (session.over() && now.Sub(session.FinishedAt) > time.Hour) ||
			(!session.over() && now.Sub(session.CreatedAt) > 24*time.Hour)
		if stale && session.botTimer != nil {
			session.botTimer.Stop()
		}
		session.mu.Unlock()

		if stale {
			delete(sm.Session, gameID)
			if sm.ClientToGame[session.ClientID] == gameID {
				delete(sm.ClientToGame, session.ClientID)
			}
			count++
		}
	}

	if count > 0 {
		sm.log.Info().Int("removed", count).Msg("memory cleanup: removed stale game sessions")
	}
	return count
}

// over is true once the game is decided or was forfeited. Caller holds gs.mu.
func (gs *GameSession) over() bool {
	return gs.Game.IsFinished() || gs.Reason != ""
}

func (gs *GameSession) enginePlayer() domain.PlayerID {
	return gs.HumanPlayer.Opponent()
}

func (gs *GameSession) HandleMove(clientID int64, column int, conn ConnectionManagerInterface) error {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if clientID != gs.ClientID {
		return fmt.Errorf("player not found in game")
	}
	if gs.over() {
		return domain.ErrGameOver
	}

	row, err := gs.Game.MakeMove(gs.HumanPlayer, column)
	if err != nil {
		return err
	}
	conn.SendMessage(gs.ClientID, domain.ServerMessage{
		Type:     "move_made",
		Column:   column,
		Row:      row,
		Player:   int(gs.HumanPlayer),
		Board:    gs.Game.Cells(),
		NextTurn: int(gs.Game.CurrentPlayer),
	})

	if gs.Game.IsFinished() {
		gs.finish(conn)
		return nil
	}
	gs.scheduleBotMove(conn)
	return nil
}

// scheduleBotMove must be called with gs.mu held.
func (gs *GameSession) scheduleBotMove(conn ConnectionManagerInterface) {
	gs.botTimer = time.AfterFunc(gs.botDelay, func() {
		if err := gs.HandleBotMove(conn); err != nil {
			gs.log.Error().Err(err).Msg("bot move failed")
		}
	})
}

// HandleBotMove searches on a snapshot without holding gs.mu, so lookups
// and forfeits are not blocked for the length of the search. The answer is
// dropped if the game moved on in the meantime.
func (gs *GameSession) HandleBotMove(conn ConnectionManagerInterface) error {
	gs.mu.Lock()
	engine := gs.enginePlayer()
	if gs.Game.CurrentPlayer != engine || gs.over() || gs.thinking {
		gs.mu.Unlock()
		return nil
	}
	gs.thinking = true
	snapshot := domain.FromGame(gs.Game)
	plies := gs.Game.MoveCount
	gs.mu.Unlock()

	column, score := gs.Engine.MakeMove(snapshot)
	nodes := gs.Engine.NodesSearched()

	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.thinking = false
	if gs.over() || gs.Game.CurrentPlayer != engine || gs.Game.MoveCount != plies {
		gs.log.Debug().Msg("discarding engine move for a game that moved on")
		return nil
	}

	if mask := gs.Game.LegalMask(); column < 0 || column >= domain.Columns || !mask[column] {
		gs.log.Warn().Int("column", column).Msg("engine chose an illegal column, using first legal")
		column = firstLegal(mask)
	}

	row, err := gs.Game.MakeMove(engine, column)
	if err != nil {
		return err
	}
	conn.SendMessage(gs.ClientID, domain.ServerMessage{
		Type:     "move_made",
		Column:   column,
		Row:      row,
		Player:   int(engine),
		Board:    gs.Game.Cells(),
		NextTurn: int(gs.Game.CurrentPlayer),
		Score:    &score,
		Nodes:    nodes,
	})

	if gs.Game.IsFinished() {
		gs.finish(conn)
	}
	return nil
}

func firstLegal(mask [domain.Columns]bool) int {
	for c, ok := range mask {
		if ok {
			return c
		}
	}
	return domain.NoMove
}

// finish reports a decided game and persists it. Caller holds gs.mu.
func (gs *GameSession) finish(conn ConnectionManagerInterface) {
	winner := ReasonDraw
	gs.Reason = ReasonDraw
	if gs.Game.Status == domain.StatusWon {
		gs.Reason = ReasonConnectFour
		winner = gs.nameOf(gs.Game.Winner)
	}
	gs.end(winner, conn)
}

// end stops the engine, notifies the client and saves. Caller holds gs.mu.
func (gs *GameSession) end(winner string, conn ConnectionManagerInterface) {
	if gs.botTimer != nil {
		gs.botTimer.Stop()
	}
	gs.FinishedAt = time.Now()

	conn.SendMessage(gs.ClientID, domain.ServerMessage{
		Type:   "game_over",
		Winner: winner,
		Reason: gs.Reason,
		Board:  gs.Game.Cells(),
	})
	gs.saveGameAsync(gs.record(winner))
}

func (gs *GameSession) nameOf(p domain.PlayerID) string {
	if p == gs.HumanPlayer {
		return gs.PlayerName
	}
	return gs.EngineName
}

func (gs *GameSession) record(winner string) postgres.GameRecord {
	var moves strings.Builder
	for _, c := range gs.Game.Moves {
		moves.WriteByte(byte('1' + c))
	}
	return postgres.GameRecord{
		GameID:          gs.GameID,
		PlayerName:      gs.PlayerName,
		EngineName:      gs.EngineName,
		Algorithm:       gs.Engine.Algorithm().String(),
		HumanPlayer:     int(gs.HumanPlayer),
		Winner:          winner,
		Reason:          gs.Reason,
		Moves:           moves.String(),
		TotalMoves:      gs.Game.MoveCount,
		DurationSeconds: int(gs.FinishedAt.Sub(gs.CreatedAt).Seconds()),
		CreatedAt:       gs.CreatedAt,
		FinishedAt:      gs.FinishedAt,
		Board:           gs.Game.Cells(),
	}
}

// Saves game data to database in background to avoid blocking game_over messages
func (gs *GameSession) saveGameAsync(rec postgres.GameRecord) {
	if gs.repo == nil {
		gs.log.Info().Str("winner", rec.Winner).Str("reason", rec.Reason).Str("moves", rec.Moves).Msg("game finished")
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := gs.repo.SaveGame(ctx, rec); err != nil {
			gs.log.Error().Err(err).Msg("error saving game")
			return
		}
		gs.log.Info().Str("winner", rec.Winner).Str("reason", rec.Reason).Msg("game saved")
	}()
}

// TerminateSessionByAbandonment gives the game to the engine.
func (gs *GameSession) TerminateSessionByAbandonment(clientID int64, conn ConnectionManagerInterface) error {
	return gs.forfeit(clientID, ReasonSurrender, conn)
}

// HandleDisconnect forfeits an unfinished game and drops the session.
func (gs *GameSession) HandleDisconnect(clientID int64, conn ConnectionManagerInterface, sessionManager *SessionManager) error {
	err := gs.forfeit(clientID, ReasonDisconnect, conn)
	sessionManager.RemoveSession(gs.GameID)
	return err
}

func (gs *GameSession) forfeit(clientID int64, reason string, conn ConnectionManagerInterface) error {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if clientID != gs.ClientID {
		return fmt.Errorf("player not found in game")
	}
	if gs.over() {
		return nil
	}

	gs.log.Info().Str("reason", reason).Int("moves", gs.Game.MoveCount).Msg("game ended early")
	gs.Reason = reason
	gs.end(gs.EngineName, conn)
	return nil
}
