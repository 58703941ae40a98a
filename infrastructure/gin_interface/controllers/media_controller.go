package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/outbound"
	"github.com/parthmodi152/podcast-workflow-mvp/infrastructure/gin_interface/dto"
)

// MediaController serves the stored artifacts of lines and episodes straight
// from blob storage.
type MediaController interface {
	LineAudio(c *gin.Context)
	LineVideo(c *gin.Context)
	Episode(c *gin.Context)
	RegisterRoutes(g *gin.Engine)
}

type mediaController struct {
	logger     outbound.LoggerPort
	store      outbound.PipelineStorePort
	mediaStore outbound.MediaStorePort
}

func NewMediaController(
	logger outbound.LoggerPort,
	store outbound.PipelineStorePort,
	mediaStore outbound.MediaStorePort,
) MediaController {
	return &mediaController{
		logger:     logger,
		store:      store,
		mediaStore: mediaStore,
	}
}

func (m *mediaController) LineAudio(c *gin.Context) {
	line, err := m.store.GetLine(c.Request.Context(), c.Param("id"))
	if err != nil {
		m.logger.Error(err, "Failed to read line")
		c.JSON(500, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if line == nil || line.AudioKey == "" {
		c.JSON(404, dto.ErrorResponse{Error: "no audio artifact for this line"})
		return
	}
	m.serveBlob(c, line.AudioKey, "audio/mpeg")
}

func (m *mediaController) LineVideo(c *gin.Context) {
	line, err := m.store.GetLine(c.Request.Context(), c.Param("id"))
	if err != nil {
		m.logger.Error(err, "Failed to read line")
		c.JSON(500, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if line == nil || line.VideoKey == "" {
		c.JSON(404, dto.ErrorResponse{Error: "no video artifact for this line"})
		return
	}
	m.serveBlob(c, line.VideoKey, "video/mp4")
}

func (m *mediaController) Episode(c *gin.Context) {
	script, err := m.store.GetScript(c.Request.Context(), c.Param("id"))
	if err != nil {
		m.logger.Error(err, "Failed to read script")
		c.JSON(500, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if script == nil || script.EpisodeKey == "" {
		c.JSON(404, dto.ErrorResponse{Error: "no episode artifact for this script"})
		return
	}
	m.serveBlob(c, script.EpisodeKey, "video/mp4")
}

func (m *mediaController) serveBlob(c *gin.Context, key, contentType string) {
	blob, err := m.mediaStore.Get(c.Request.Context(), key)
	if err != nil {
		m.logger.ErrorWithFields(err, "Failed to fetch blob", map[string]interface{}{
			"key": key,
		})
		c.JSON(502, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.Data(200, contentType, blob)
}

func (m *mediaController) RegisterRoutes(g *gin.Engine) {
	g.GET("/lines/:id/audio", m.LineAudio)
	g.GET("/lines/:id/video", m.LineVideo)
	g.GET("/scripts/:id/episode", m.Episode)
}
