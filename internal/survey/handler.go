package survey

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the survey instance lifecycle
type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers survey instance routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	instances := router.Group("/survey-instances")
	{
		instances.GET("/recipient/me", h.findForRecipient)
		instances.GET("/run/:runId", h.findForRun)

		instances.GET("/:id", h.getInstance)
		instances.GET("/:id/responses", h.findResponses)
		instances.GET("/:id/actions", h.findPossibleActions)
		instances.GET("/:id/permissions", h.getPermissions)
		instances.GET("/:id/previous-versions", h.findPreviousVersions)
		instances.GET("/:id/recipients", h.findRecipients)
		instances.GET("/:id/owners", h.findOwners)

		instances.POST("/:id/status", h.updateStatus)
		instances.POST("/:id/responses", h.saveResponse)
		instances.PUT("/:id/due-date", h.updateDueDate)
		instances.POST("/:id/report-problem", h.reportProblem)

		instances.POST("/:id/recipients", h.addRecipient)
		instances.PUT("/:id/recipients/:recipientId", h.updateRecipient)
		instances.DELETE("/:id/recipients/:recipientId", h.deleteRecipient)
	}
}

func (h *Handler) getInstance(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	inst, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, inst)
}

func (h *Handler) findForRecipient(c *gin.Context) {
	instances, err := h.service.FindForRecipient(c.Request.Context(), h.userName(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, instances)
}

func (h *Handler) findForRun(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("runId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}
	instances, err := h.service.FindForRun(c.Request.Context(), runID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, instances)
}

func (h *Handler) findResponses(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	responses, err := h.service.FindResponses(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses)
}

func (h *Handler) findPossibleActions(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	actions, err := h.service.FindPossibleActions(c.Request.Context(), h.userName(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, actions)
}

func (h *Handler) getPermissions(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	perms, err := h.service.GetPermissions(c.Request.Context(), h.userName(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, perms)
}

func (h *Handler) findPreviousVersions(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	versions, err := h.service.FindPreviousVersions(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, versions)
}

func (h *Handler) findRecipients(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	recipients, err := h.service.FindRecipients(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipients)
}

func (h *Handler) findOwners(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	owners, err := h.service.FindOwners(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, owners)
}

func (h *Handler) updateStatus(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var cmd StatusChangeCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.UpdateStatus(c.Request.Context(), h.userName(c), id, cmd)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) saveResponse(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req SaveResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.service.SaveResponse(c.Request.Context(), h.userName(c), id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

func (h *Handler) updateDueDate(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		NewDueDate time.Time `json:"new_due_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rows, err := h.service.UpdateDueDate(c.Request.Context(), h.userName(c), id, req.NewDueDate)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": rows})
}

func (h *Handler) reportProblem(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		QuestionID uuid.UUID `json:"question_id" binding:"required"`
		Message    string    `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reported, err := h.service.ReportQuestionProblem(c.Request.Context(), id, req.QuestionID, req.Message, h.userName(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reported": reported})
}

func (h *Handler) addRecipient(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		PersonID uuid.UUID `json:"person_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipient, err := h.service.AddRecipient(c.Request.Context(), h.userName(c), RecipientCreateCommand{
		SurveyInstanceID: id,
		PersonID:         req.PersonID,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipient)
}

func (h *Handler) updateRecipient(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	recipientID, err := uuid.Parse(c.Param("recipientId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipient id"})
		return
	}
	var req struct {
		PersonID uuid.UUID `json:"person_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	replaced, err := h.service.UpdateRecipient(c.Request.Context(), h.userName(c), RecipientUpdateCommand{
		SurveyInstanceID:    id,
		InstanceRecipientID: recipientID,
		PersonID:            req.PersonID,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": replaced})
}

func (h *Handler) deleteRecipient(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	recipientID, err := uuid.Parse(c.Param("recipientId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipient id"})
		return
	}

	deleted, err := h.service.DeleteRecipient(c.Request.Context(), h.userName(c), id, recipientID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (h *Handler) pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid instance id"})
		return uuid.Nil, false
	}
	return id, true
}

// userName returns the acting username placed in the context by the auth
// middleware.
func (h *Handler) userName(c *gin.Context) string {
	return c.GetString("username")
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, ErrImmutableVersion):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrIllegalTransition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Survey instance request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
