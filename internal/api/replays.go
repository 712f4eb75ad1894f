package api

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gmkornilov/chess-chronicle-backend/internal/feed"
	"github.com/google/uuid"
)

const maxReplayGames = 50

type ReplayApi struct {
	ReplayFactory *feed.UserGamesReplayFactory
	activeJobs    map[string]feed.Worker
	mu            sync.RWMutex
}

func NewReplayApi(factory *feed.UserGamesReplayFactory) *ReplayApi {
	return &ReplayApi{
		ReplayFactory: factory,
		activeJobs:    make(map[string]feed.Worker),
	}
}

func (r *ReplayApi) StartReplay(ctx *gin.Context) {
	name := ctx.Param("username")
	lastStr := ctx.DefaultQuery("last", "20")
	last, err := strconv.Atoi(lastStr)
	if err != nil || last <= 0 || last > maxReplayGames {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error": "last should be an integer between 1 and " + strconv.Itoa(maxReplayGames),
		})
		return
	}

	worker := r.ReplayFactory.CreateUserGamesReplay(name, last)
	id := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.activeJobs[id] = worker
	worker.StartWork()
	ctx.JSON(http.StatusAccepted, gin.H{
		"job_id": id,
	})
}

func (r *ReplayApi) GetReplayStatus(ctx *gin.Context) {
	id := ctx.Param("job_id")
	r.mu.Lock()
	defer r.mu.Unlock()
	worker, ok := r.activeJobs[id]
	if !ok {
		ctx.AbortWithStatus(http.StatusNotFound)
		return
	}
	if !worker.Done() {
		ctx.JSON(http.StatusOK, gin.H{
			"done":     false,
			"progress": worker.Progress(),
		})
		return
	}

	delete(r.activeJobs, id)
	if err := worker.Error(); err != nil {
		ctx.JSON(http.StatusOK, gin.H{
			"done":  true,
			"error": err.Error(),
		})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"done":   true,
		"result": worker.Result(),
	})
}
