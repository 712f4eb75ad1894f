package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gmkornilov/chess-chronicle-backend/internal/dao"
	"github.com/gmkornilov/chess-chronicle-backend/internal/game"
	"github.com/gmkornilov/chess-chronicle-backend/internal/session"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const archiveTimeout = 5 * time.Second

// SessionFactory starts a narrated session with the given id.
type SessionFactory func(id string, opts ...session.Option) *session.Session

type createGameRequest struct {
	FEN string `json:"fen"`
}

type moveRequest struct {
	Move string `json:"move" binding:"required"`
}

type gameView struct {
	session.State
	Turns []session.Turn `json:"turns"`
}

type moveView struct {
	Turn  session.Turn  `json:"turn"`
	State session.State `json:"state"`
}

type GameApi struct {
	NewSession SessionFactory
	// Archive is optional; finished and deleted games are stored there.
	Archive dao.ChronicleRepository

	log      *zap.Logger
	sessions map[string]*session.Session
	mu       sync.RWMutex
	archives sync.WaitGroup
}

func NewGameApi(newSession SessionFactory, archive dao.ChronicleRepository, log *zap.Logger) *GameApi {
	if log == nil {
		log = zap.NewNop()
	}
	return &GameApi{
		NewSession: newSession,
		Archive:    archive,
		log:        log,
		sessions:   make(map[string]*session.Session),
	}
}

func (a *GameApi) CreateGame(ctx *gin.Context) {
	var req createGameRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	var opts []session.Option
	if req.FEN != "" {
		g, err := game.FromFEN(req.FEN)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		opts = append(opts, session.WithGame(g))
	}

	id := uuid.NewString()
	s := a.NewSession(id, opts...)

	a.mu.Lock()
	a.sessions[id] = s
	a.mu.Unlock()

	a.log.Info("game created", zap.String("game_id", id))
	ctx.JSON(http.StatusCreated, s.Snapshot())
}

func (a *GameApi) GetGame(ctx *gin.Context) {
	s, ok := a.session(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, gameView{State: s.Snapshot(), Turns: s.Turns()})
}

func (a *GameApi) PlayMove(ctx *gin.Context) {
	var req moveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s, ok := a.session(ctx)
	if !ok {
		return
	}
	a.respondMove(ctx, s, func() (session.Turn, error) {
		return s.Play(req.Move)
	})
}

func (a *GameApi) EngineMove(ctx *gin.Context) {
	s, ok := a.session(ctx)
	if !ok {
		return
	}
	a.respondMove(ctx, s, s.EngineMove)
}

func (a *GameApi) respondMove(ctx *gin.Context, s *session.Session, play func() (session.Turn, error)) {
	turn, err := play()
	if err != nil {
		ctx.JSON(moveStatus(err), gin.H{"error": err.Error()})
		return
	}
	st := s.Snapshot()
	if st.Over {
		a.log.Info("game over", zap.String("game_id", s.ID), zap.String("outcome", st.Outcome), zap.String("method", st.Method))
		a.archives.Add(1)
		go func() {
			defer a.archives.Done()
			s.Close()
			a.archive(context.Background(), s)
		}()
	}
	ctx.JSON(http.StatusOK, moveView{Turn: turn, State: st})
}

// GetChronicle returns the narratives of a live game, or of an archived one
// when the game is no longer held in memory.
func (a *GameApi) GetChronicle(ctx *gin.Context) {
	id := ctx.Param("id")
	a.mu.RLock()
	s, ok := a.sessions[id]
	a.mu.RUnlock()
	if ok {
		ctx.JSON(http.StatusOK, gin.H{
			"id":       id,
			"passages": s.Chronicle(),
			"pending":  s.Pending(),
		})
		return
	}

	if a.Archive == nil {
		ctx.AbortWithStatus(http.StatusNotFound)
		return
	}
	c, err := a.Archive.GetChronicle(ctx.Request.Context(), id)
	if errors.Is(err, dao.ErrNotFound) {
		ctx.AbortWithStatus(http.StatusNotFound)
		return
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"id":       id,
		"passages": c.Passages,
		"pending":  0,
	})
}

// ListChronicles returns the games archived between from and to, both
// RFC 3339. Missing bounds default to the last day.
func (a *GameApi) ListChronicles(ctx *gin.Context) {
	if a.Archive == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "archive is not configured"})
		return
	}

	end := time.Now()
	if raw := ctx.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "to: " + err.Error()})
			return
		}
		end = t
	}
	start := end.Add(-24 * time.Hour)
	if raw := ctx.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "from: " + err.Error()})
			return
		}
		start = t
	}
	if start.After(end) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "from is after to"})
		return
	}

	res, err := a.Archive.GetChroniclesBetweenDates(ctx.Request.Context(),
		primitive.NewDateTimeFromTime(start), primitive.NewDateTimeFromTime(end))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if res == nil {
		res = []dao.Chronicle{}
	}
	ctx.JSON(http.StatusOK, res)
}

func (a *GameApi) DeleteGame(ctx *gin.Context) {
	id := ctx.Param("id")
	a.mu.Lock()
	s, ok := a.sessions[id]
	delete(a.sessions, id)
	a.mu.Unlock()
	if !ok {
		ctx.AbortWithStatus(http.StatusNotFound)
		return
	}

	s.Close()
	if !s.Snapshot().Over {
		a.archive(ctx.Request.Context(), s)
	}
	ctx.Status(http.StatusNoContent)
}

// Close stops every session and waits for pending archives.
func (a *GameApi) Close() {
	a.mu.Lock()
	sessions := a.sessions
	a.sessions = make(map[string]*session.Session)
	a.mu.Unlock()

	for _, s := range sessions {
		s.Close()
		if !s.Snapshot().Over {
			a.archive(context.Background(), s)
		}
	}
	a.archives.Wait()
}

func (a *GameApi) archive(ctx context.Context, s *session.Session) {
	if a.Archive == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, archiveTimeout)
	defer cancel()

	if err := a.Archive.InsertChronicle(ctx, dao.FromSession(s)); err != nil {
		a.log.Error("cannot archive game", zap.String("game_id", s.ID), zap.Error(err))
		return
	}
	a.log.Info("game archived", zap.String("game_id", s.ID))
}

func (a *GameApi) session(ctx *gin.Context) (*session.Session, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s, ok := a.sessions[ctx.Param("id")]
	if !ok {
		ctx.AbortWithStatus(http.StatusNotFound)
	}
	return s, ok
}

func moveStatus(err error) int {
	switch {
	case errors.Is(err, game.ErrIllegalMove):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrGameOver), errors.Is(err, session.ErrClosed):
		return http.StatusConflict
	case errors.Is(err, session.ErrNoEngine):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
