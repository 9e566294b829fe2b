package handler

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"pomodoro/timer/internal/service"
)

const keepAliveInterval = 15 * time.Second

type TimerHandler struct {
	timerService *service.TimerService
}

type modeRequest struct {
	Mode string `json:"mode"`
}

type phaseRequest struct {
	Phase string `json:"phase"`
}

func NewTimerHandler(timerService *service.TimerService) *TimerHandler {
	return &TimerHandler{timerService: timerService}
}

func (h *TimerHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"state": h.timerService.GetState()})
}

func (h *TimerHandler) Start(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"state": h.timerService.Start()})
}

func (h *TimerHandler) Stop(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"state": h.timerService.Stop()})
}

func (h *TimerHandler) Reset(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"state": h.timerService.Reset()})
}

func (h *TimerHandler) SetMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	state, apiErr := h.timerService.SetMode(req.Mode)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func (h *TimerHandler) SetPhase(c *gin.Context) {
	var req phaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	state, apiErr := h.timerService.SetPhase(req.Phase)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

// Events streams a "state" event for the current state and then one for every
// change. A slow client only ever misses intermediate states, and never
// receives a state older than one it has already seen.
func (h *TimerHandler) Events(c *gin.Context) {
	mailbox := newStateMailbox()
	unsubscribe := h.timerService.Subscribe(mailbox.offer)
	defer unsubscribe()
	mailbox.offer(h.timerService.GetState())

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("Event stream closed")
			return
		case <-mailbox.ready:
			state, ok := mailbox.take()
			if !ok {
				continue
			}
			c.SSEvent("state", state)
		case <-keepAlive.C:
			c.SSEvent("ping", gin.H{"serverTime": time.Now().UTC()})
		}
		c.Writer.Flush()
	}
}

// stateMailbox keeps the newest state not yet written to a stream. Offers
// that are not newer than the last accepted version are dropped.
type stateMailbox struct {
	ready chan struct{}

	mu      sync.Mutex
	state   service.StateView
	pending bool
	seen    bool
	version uint64
}

func newStateMailbox() *stateMailbox {
	return &stateMailbox{ready: make(chan struct{}, 1)}
}

func (m *stateMailbox) offer(state service.StateView) {
	m.mu.Lock()
	if m.seen && state.Version <= m.version {
		m.mu.Unlock()
		return
	}
	m.state = state
	m.pending = true
	m.seen = true
	m.version = state.Version
	m.mu.Unlock()

	select {
	case m.ready <- struct{}{}:
	default:
	}
}

func (m *stateMailbox) take() (service.StateView, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.pending {
		return service.StateView{}, false
	}
	m.pending = false
	return m.state, true
}
