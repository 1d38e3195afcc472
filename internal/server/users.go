package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/MarcoPoloResearchLab/roster/internal/forms"
	"github.com/MarcoPoloResearchLab/roster/internal/notify"
	"github.com/MarcoPoloResearchLab/roster/internal/projection"
	"github.com/MarcoPoloResearchLab/roster/internal/users"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type userPayload struct {
	Name  string `json:"name"`
	Age   int    `json:"age" binding:"gte=0"`
	Email string `json:"email"`
	Phone int    `json:"phone" binding:"gte=0"`
}

func (p userPayload) draft() forms.Draft {
	return forms.Draft{
		Name:  strings.TrimSpace(p.Name),
		Age:   p.Age,
		Email: strings.TrimSpace(p.Email),
		Phone: p.Phone,
	}
}

type listUsersResponse struct {
	Users []users.UserRecord `json:"users"`
}

func (h *httpHandler) handleListUsers(c *gin.Context) {
	records, err := h.store.List(c.Request.Context())
	if err != nil {
		h.writeStoreError(c, err)
		return
	}
	if records == nil {
		records = []users.UserRecord{}
	}
	c.JSON(http.StatusOK, listUsersResponse{Users: records})
}

// The API has no create-form session, so the view never reports new records.
func (h *httpHandler) handleUsersView(c *gin.Context) {
	records, err := h.store.List(c.Request.Context())
	if err != nil {
		h.writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, projection.BuildView(records, 0))
}

func (h *httpHandler) handleGetUser(c *gin.Context) {
	record, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *httpHandler) handleCreateUser(c *gin.Context) {
	draft, ok := h.bindDraft(c)
	if !ok {
		return
	}
	record, err := h.store.Create(c.Request.Context(), draft.Fields())
	if err != nil {
		h.writeStoreError(c, err)
		return
	}
	h.logger.Info("user created",
		zap.String("record_id", record.ID),
		zap.String("subject", requestIdentity(c).Subject),
	)
	h.publish(notify.KindRecordCreated, record.ID, fmt.Sprintf("User %s added", record.Name))
	c.JSON(http.StatusCreated, record)
}

func (h *httpHandler) handleUpdateUser(c *gin.Context) {
	draft, ok := h.bindDraft(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if err := h.store.Update(c.Request.Context(), id, draft.Fields()); err != nil {
		h.writeStoreError(c, err)
		return
	}
	h.logger.Info("user updated",
		zap.String("record_id", id),
		zap.String("subject", requestIdentity(c).Subject),
	)
	h.publish(notify.KindRecordUpdated, id, fmt.Sprintf("User %s updated", draft.Name))
	c.Status(http.StatusNoContent)
}

// bindDraft decodes the body and applies the draft rules shared with the form controllers.
func (h *httpHandler) bindDraft(c *gin.Context) (forms.Draft, bool) {
	var payload userPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		var bindingErrors validator.ValidationErrors
		if errors.As(err, &bindingErrors) {
			fields := make([]string, 0, len(bindingErrors))
			for _, fieldErr := range bindingErrors {
				fields = append(fields, strings.ToLower(fieldErr.Field()))
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "fields": fields})
			return forms.Draft{}, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return forms.Draft{}, false
	}
	draft := payload.draft()
	if err := draft.Validate(); err != nil {
		var validationErr *forms.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "fields": validationErr.Fields})
			return forms.Draft{}, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed"})
		return forms.Draft{}, false
	}
	return draft, true
}

func (h *httpHandler) writeStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, users.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	case errors.Is(err, users.ErrInvalidFields):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed"})
	case errors.Is(err, users.ErrFetchFailed):
		h.logger.Error("record store fetch failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "fetch_failed"})
	default:
		h.logger.Error("record store operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store_failed"})
	}
}

func (h *httpHandler) publish(kind notify.Kind, recordID, message string) {
	h.feed.Notify(kind, recordID, message)
	h.metrics.ObserveNotification(string(kind))
}
