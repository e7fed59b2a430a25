package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Dhruhi111/Tivaan-Vision/internal/config"
	"github.com/Dhruhi111/Tivaan-Vision/internal/console"
	"github.com/Dhruhi111/Tivaan-Vision/internal/domain/vision"
)

type Handler struct {
	console *console.Console
	config  *config.Config
	log     zerolog.Logger
}

func NewHandler(cons *console.Console, cfg *config.Config, log zerolog.Logger) *Handler {
	return &Handler{
		console: cons,
		config:  cfg,
		log:     log,
	}
}

func (h *Handler) Register(r *gin.Engine) {
	r.GET("/", h.consolePage)

	api := r.Group("/api")
	{
		api.GET("/status", h.status)
	}

	cons := api.Group("/console")
	{
		cons.POST("/controls/:key/detect", h.activateControl)
		cons.POST("/theme", h.toggleTheme)
	}

	// Debug handle: lets pages with dynamically injected controls be
	// re-scanned without restarting the process.
	debug := api.Group("/debug")
	{
		debug.POST("/reattach", h.reattach)
		debug.POST("/refresh-thumbnails", h.refreshThumbnails)
	}
}

func (h *Handler) consolePage(c *gin.Context) {
	html, err := h.console.Doc().Render()
	if err != nil {
		h.log.Error().Err(err).Msg("failed to render console page")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// activateControl is the click: the uploaded file plays the role of the
// control's file-input value. A request without a file part still runs
// the pipeline so the page shows the choose-a-file warning.
func (h *Handler) activateControl(c *gin.Context) {
	key := c.Param("key")

	var filename string
	var content []byte
	if file, header, err := c.Request.FormFile("file"); err == nil {
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("failed reading upload"))
			return
		}
		filename = header.Filename
		content = data
	}

	outcome, err := h.console.Activate(c.Request.Context(), key, filename, content)
	if err != nil {
		h.handleRunError(c, outcome, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(outcome))
}

func (h *Handler) handleRunError(c *gin.Context, outcome *console.RunOutcome, err error) {
	switch {
	case errors.Is(err, console.ErrUnknownControl):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, console.ErrControlBusy):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	case errors.Is(err, vision.ErrNoFile):
		c.JSON(http.StatusBadRequest, runErrorResponse(outcome, err))
	default:
		// Upstream failure: the run ended in its error state and the
		// page already shows the specific message.
		c.JSON(http.StatusBadGateway, runErrorResponse(outcome, err))
	}
}

func (h *Handler) toggleTheme(c *gin.Context) {
	dark := h.console.Doc().ToggleTheme()
	c.JSON(http.StatusOK, gin.H{"dark": dark})
}

func (h *Handler) reattach(c *gin.Context) {
	bound := h.console.Attach()
	c.JSON(http.StatusOK, gin.H{
		"bound":    bound,
		"controls": h.console.ControlKeys(),
	})
}

func (h *Handler) refreshThumbnails(c *gin.Context) {
	refreshed := h.console.Doc().RefreshThumbnails(timeNow())
	c.JSON(http.StatusOK, gin.H{"refreshed": refreshed})
}

func (h *Handler) status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"detection_url": h.config.Detection.URL,
		"sensor_url":    h.config.Sensor.URL,
		"controls":      h.console.ControlKeys(),
	})
}

var timeNow = time.Now

func successResponse(data interface{}) gin.H {
	return gin.H{
		"data": data,
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}

func runErrorResponse(outcome *console.RunOutcome, err error) gin.H {
	resp := gin.H{"error": err.Error()}
	if outcome != nil {
		resp["run"] = outcome
	}
	return resp
}
