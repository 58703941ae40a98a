package controllers

import (
	"errors"
	"io"
	"mime/multipart"

	"github.com/gin-gonic/gin"

	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/inbound"
	"github.com/parthmodi152/podcast-workflow-mvp/application/ports/outbound"
	"github.com/parthmodi152/podcast-workflow-mvp/domain"
	"github.com/parthmodi152/podcast-workflow-mvp/infrastructure/gin_interface/dto"
)

type VoicesController interface {
	CreateVoice(c *gin.Context)
	ListVoices(c *gin.Context)
	UploadPortrait(c *gin.Context)
	RegisterRoutes(g *gin.Engine)
}

type voicesController struct {
	logger       outbound.LoggerPort
	voiceManager inbound.VoiceManagerPort
}

func NewVoicesController(logger outbound.LoggerPort, voiceManager inbound.VoiceManagerPort) VoicesController {
	return &voicesController{
		logger:       logger,
		voiceManager: voiceManager,
	}
}

// CreateVoice clones a voice from multipart form data: a name field, one or
// more sample recordings under "files", and an optional "speaker_image".
func (v *voicesController) CreateVoice(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(400, dto.ErrorResponse{Error: err.Error()})
		return
	}

	params := inbound.CreateVoiceParams{Name: c.PostForm("name")}
	for _, header := range form.File["files"] {
		content, contentType, readErr := readUpload(header)
		if readErr != nil {
			c.JSON(400, dto.ErrorResponse{Error: readErr.Error()})
			return
		}
		params.Samples = append(params.Samples, inbound.VoiceSampleUpload{
			Name:        header.Filename,
			ContentType: contentType,
			Content:     content,
		})
	}
	if headers := form.File["speaker_image"]; len(headers) > 0 {
		content, contentType, readErr := readUpload(headers[0])
		if readErr != nil {
			c.JSON(400, dto.ErrorResponse{Error: readErr.Error()})
			return
		}
		params.Portrait = &inbound.PortraitUpload{ContentType: contentType, Content: content}
	}

	view, err := v.voiceManager.CreateVoice(c.Request.Context(), params)
	if err != nil {
		v.abortForError(c, err, "Failed to create voice")
		return
	}
	c.JSON(201, dto.VoiceCreateResponse{
		VoiceID:     view.VoiceID,
		Name:        view.Name,
		PortraitKey: view.PortraitKey,
	})
}

func (v *voicesController) ListVoices(c *gin.Context) {
	views, err := v.voiceManager.ListVoices(c.Request.Context())
	if err != nil {
		v.abortForError(c, err, "Failed to list voices")
		return
	}
	c.JSON(200, views)
}

func (v *voicesController) UploadPortrait(c *gin.Context) {
	header, err := c.FormFile("speaker_image")
	if err != nil {
		c.JSON(400, dto.ErrorResponse{Error: "speaker_image file is required"})
		return
	}
	content, contentType, err := readUpload(header)
	if err != nil {
		c.JSON(400, dto.ErrorResponse{Error: err.Error()})
		return
	}

	view, err := v.voiceManager.SetPortrait(c.Request.Context(), c.Param("id"), inbound.PortraitUpload{
		ContentType: contentType,
		Content:     content,
	})
	if err != nil {
		v.abortForError(c, err, "Failed to upload portrait")
		return
	}
	if view == nil {
		c.JSON(404, dto.ErrorResponse{Error: "voice not found"})
		return
	}
	c.JSON(200, dto.VoicePortraitResponse{VoiceID: view.VoiceID, PortraitKey: view.PortraitKey})
}

func (v *voicesController) abortForError(c *gin.Context, err error, msg string) {
	v.logger.Error(err, msg)
	var pipelineErr *domain.PipelineError
	if errors.As(err, &pipelineErr) && pipelineErr.Kind == domain.FailureInput {
		c.JSON(400, dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(500, dto.ErrorResponse{Error: err.Error()})
}

func readUpload(header *multipart.FileHeader) ([]byte, string, error) {
	file, err := header.Open()
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	return content, header.Header.Get("Content-Type"), nil
}

func (v *voicesController) RegisterRoutes(g *gin.Engine) {
	g.POST("/voices", v.CreateVoice)
	g.GET("/voices", v.ListVoices)
	g.POST("/voices/:id/portrait", v.UploadPortrait)
}
