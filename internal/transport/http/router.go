package monitorhttp

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"deltawatch/internal/alert"
	"deltawatch/internal/monitor"
)

// MonitorHandler is the slice of the monitor the HTTP layer needs.
type MonitorHandler interface {
	Snapshot() monitor.Snapshot
	RunNow(ctx context.Context) monitor.Snapshot
	AddAlert(ctx context.Context, rule alert.Rule) error
	SetAlertStatus(ctx context.Context, rule alert.Rule, status alert.Status) error
	RemoveAlert(ctx context.Context, rule alert.Rule) error
	SyncFromSheet(ctx context.Context) error
	SyncToSheet(ctx context.Context) error
	SheetStatus(ctx context.Context) (string, error)
}

// Router exposes the monitoring API.
type Router struct {
	handler MonitorHandler
}

func NewRouter(handler MonitorHandler) *Router {
	return &Router{handler: handler}
}

// Register mounts the API routes under the given group.
func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.GET("/positions", r.handlePositions)
	group.GET("/alerts", r.handleAlerts)
	group.POST("/alerts", r.handleAddAlert)
	group.POST("/alerts/status", r.handleSetAlertStatus)
	group.DELETE("/alerts", r.handleRemoveAlert)
	group.POST("/refresh", r.handleRefresh)
	group.POST("/sync/load", r.handleSyncLoad)
	group.POST("/sync/save", r.handleSyncSave)
	group.GET("/status", r.handleStatus)
}

func (r *Router) handlePositions(c *gin.Context) {
	snap := r.handler.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"cycle_id": snap.CycleID,
		"at":       snap.At,
		"rows":     snap.Rows,
	})
}

func (r *Router) handleAlerts(c *gin.Context) {
	snap := r.handler.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"active":   snap.Active,
		"inactive": snap.Inactive,
		"fired":    snap.Fired,
	})
}

func (r *Router) handleAddAlert(c *gin.Context) {
	var rule alert.Rule
	if err := c.ShouldBindJSON(&rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := r.handler.AddAlert(c.Request.Context(), rule); err != nil {
		switch {
		case errors.Is(err, alert.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "created"})
}

// handleSetAlertStatus flips a rule's status. The request body carries the
// rule identity plus the target status in the status field.
func (r *Router) handleSetAlertStatus(c *gin.Context) {
	var rule alert.Rule
	if err := c.ShouldBindJSON(&rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := r.handler.SetAlertStatus(c.Request.Context(), rule, rule.Status); err != nil {
		switch {
		case errors.Is(err, alert.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (r *Router) handleRemoveAlert(c *gin.Context) {
	var rule alert.Rule
	if err := c.ShouldBindJSON(&rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := r.handler.RemoveAlert(c.Request.Context(), rule); err != nil {
		switch {
		case errors.Is(err, alert.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

func (r *Router) handleRefresh(c *gin.Context) {
	snap := r.handler.RunNow(c.Request.Context())
	c.JSON(http.StatusOK, snap)
}

func (r *Router) handleSyncLoad(c *gin.Context) {
	if err := r.handler.SyncFromSheet(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "loaded"})
}

func (r *Router) handleSyncSave(c *gin.Context) {
	if err := r.handler.SyncToSheet(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

func (r *Router) handleStatus(c *gin.Context) {
	snap := r.handler.Snapshot()
	title, err := r.handler.SheetStatus(c.Request.Context())
	sheet := gin.H{"ok": err == nil}
	if err != nil {
		sheet["error"] = err.Error()
	} else {
		sheet["title"] = title
	}
	c.JSON(http.StatusOK, gin.H{
		"cycle_id": snap.CycleID,
		"at":       snap.At,
		"calls":    snap.Calls,
		"sheet":    sheet,
		"rules": gin.H{
			"active":   len(snap.Active),
			"inactive": len(snap.Inactive),
		},
	})
}
