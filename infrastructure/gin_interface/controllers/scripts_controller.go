package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/inbound"
	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/outbound"
	"github.com/parthmodi152/podcast-workflow-mvp/domain"
	"github.com/parthmodi152/podcast-workflow-mvp/infrastructure/gin_interface/dto"
)

type ScriptsController interface {
	CreateScript(c *gin.Context)
	ListScripts(c *gin.Context)
	GetScript(c *gin.Context)
	DispatchTTS(c *gin.Context)
	RegisterRoutes(g *gin.Engine)
}

type scriptsController struct {
	logger        outbound.LoggerPort
	scriptCreator inbound.ScriptCreatorPort
	statusReader  inbound.StatusReaderPort
	ttsWorker     inbound.TTSWorkerPort
}

func NewScriptsController(
	logger outbound.LoggerPort,
	scriptCreator inbound.ScriptCreatorPort,
	statusReader inbound.StatusReaderPort,
	ttsWorker inbound.TTSWorkerPort,
) ScriptsController {
	return &scriptsController{
		logger:        logger,
		scriptCreator: scriptCreator,
		statusReader:  statusReader,
		ttsWorker:     ttsWorker,
	}
}

func (s *scriptsController) CreateScript(c *gin.Context) {
	var createRequest dto.CreateScriptRequest
	if err := c.ShouldBindJSON(&createRequest); err != nil {
		c.JSON(400, dto.ErrorResponse{Error: err.Error()})
		return
	}

	speakers := make([]domain.Speaker, 0, len(createRequest.Speakers))
	for _, speaker := range createRequest.Speakers {
		speakers = append(speakers, domain.Speaker{
			Role:        speaker.Role,
			Name:        speaker.Name,
			VoiceID:     speaker.VoiceID,
			PortraitKey: speaker.PortraitKey,
		})
	}

	script, err := s.scriptCreator.Create(c.Request.Context(), inbound.CreateScriptParams{
		Title:         createRequest.Title,
		Speakers:      speakers,
		LengthMinutes: createRequest.LengthMinutes,
	})
	if err != nil {
		s.abortForError(c, err, "Failed to create script")
		return
	}

	view, err := s.statusReader.ScriptStatus(c.Request.Context(), script.ID)
	if err != nil || view == nil {
		c.JSON(201, dto.CreateScriptResponse{ScriptID: script.ID, Status: string(script.Status)})
		return
	}

	c.JSON(201, dto.CreateScriptResponse{
		ScriptID:  script.ID,
		Status:    view.Status,
		LineCount: view.TotalLines,
	})
}

func (s *scriptsController) ListScripts(c *gin.Context) {
	status := domain.ScriptStatus(c.Query("status"))

	scripts, err := s.statusReader.ListScripts(c.Request.Context(), status)
	if err != nil {
		s.abortForError(c, err, "Failed to list scripts")
		return
	}
	c.JSON(200, scripts)
}

func (s *scriptsController) GetScript(c *gin.Context) {
	view, err := s.statusReader.ScriptStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.abortForError(c, err, "Failed to read script status")
		return
	}
	if view == nil {
		c.JSON(404, dto.ErrorResponse{Error: "script not found"})
		return
	}
	c.JSON(200, view)
}

// DispatchTTS re-triggers the TTS stage for a script. Lines already past
// pending are untouched, so repeating the call is harmless.
func (s *scriptsController) DispatchTTS(c *gin.Context) {
	scriptID := c.Param("id")

	dispatched, err := s.ttsWorker.ProcessScript(c.Request.Context(), scriptID)
	if err != nil {
		s.abortForError(c, err, "Failed to dispatch TTS")
		return
	}
	c.JSON(202, dto.DispatchTTSResponse{ScriptID: scriptID, Dispatched: dispatched})
}

func (s *scriptsController) abortForError(c *gin.Context, err error, msg string) {
	s.logger.Error(err, msg)
	var pipelineErr *domain.PipelineError
	if errors.As(err, &pipelineErr) && pipelineErr.Kind == domain.FailureInput {
		c.JSON(400, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(500, dto.ErrorResponse{Error: err.Error()})
}

func (s *scriptsController) RegisterRoutes(g *gin.Engine) {
	g.POST("/scripts", s.CreateScript)
	g.GET("/scripts", s.ListScripts)
	g.GET("/scripts/:id", s.GetScript)
	g.POST("/scripts/:id/tts", s.DispatchTTS)
}
