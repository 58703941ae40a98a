package controllers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/inbound"
	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/outbound"
	"github.com/parthmodi152/podcast-workflow-mvp/infrastructure/gin_interface/dto"
)

type PipelineAdminController interface {
	SyncStuckJobs(c *gin.Context)
	RetryAvatar(c *gin.Context)
	Health(c *gin.Context)
	RegisterRoutes(g *gin.Engine)
}

type pipelineAdminController struct {
	logger       outbound.LoggerPort
	store        outbound.PipelineStorePort
	reconciler   inbound.ReconcilerPort
	avatarWorker inbound.AvatarWorkerPort
	workerPool   outbound.TaskDispatcher
}

func NewPipelineAdminController(
	logger outbound.LoggerPort,
	store outbound.PipelineStorePort,
	reconciler inbound.ReconcilerPort,
	avatarWorker inbound.AvatarWorkerPort,
	workerPool outbound.TaskDispatcher,
) PipelineAdminController {
	return &pipelineAdminController{
		logger:       logger,
		store:        store,
		reconciler:   reconciler,
		avatarWorker: avatarWorker,
		workerPool:   workerPool,
	}
}

// SyncStuckJobs runs one reconciler sweep on demand.
func (p *pipelineAdminController) SyncStuckJobs(c *gin.Context) {
	report, err := p.reconciler.Sweep(c.Request.Context())
	if err != nil {
		p.logger.Error(err, "Manual sweep failed")
		c.JSON(500, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(200, dto.SweepResponse{
		Processed:       report.Processed,
		Updated:         report.Updated,
		StillProcessing: report.StillProcessing,
		Errors:          report.Errors,
	})
}

// RetryAvatar requeues a terminally failed avatar line and dispatches a fresh
// attempt. Only failed lines move; anything else is reported as a conflict.
func (p *pipelineAdminController) RetryAvatar(c *gin.Context) {
	lineID := c.Param("id")

	line, err := p.store.GetLine(c.Request.Context(), lineID)
	if err != nil {
		p.logger.Error(err, "Failed to read line for retry")
		c.JSON(500, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if line == nil {
		c.JSON(404, dto.ErrorResponse{Error: "line not found"})
		return
	}

	moved, err := p.store.RequeueFailedAvatar(c.Request.Context(), lineID)
	if err != nil {
		p.logger.Error(err, "Failed to requeue avatar line")
		c.JSON(500, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if !moved {
		c.JSON(409, dto.ErrorResponse{
			Error: "line is not in a failed avatar state (status: " + string(line.AvatarStatus) + ")",
		})
		return
	}

	if err := p.workerPool.Submit(func() {
		if err := p.avatarWorker.ProcessLine(context.Background(), lineID); err != nil {
			p.logger.ErrorWithFields(err, "Avatar retry failed", map[string]interface{}{
				"line_id": lineID,
			})
		}
	}); err != nil {
		p.logger.Error(err, "Failed to submit avatar retry")
		c.JSON(500, dto.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(202, dto.RetryAvatarResponse{LineID: lineID, Requeued: true})
}

func (p *pipelineAdminController) Health(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}

func (p *pipelineAdminController) RegisterRoutes(g *gin.Engine) {
	g.POST("/avatar/sync-stuck-jobs", p.SyncStuckJobs)
	g.POST("/lines/:id/retry-avatar", p.RetryAvatar)
	g.GET("/health", p.Health)
}
