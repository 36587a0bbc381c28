package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ModularHallway100/harmony-backend/internal/http/response"
)

func uuidParam(c *gin.Context, name, code string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, code, err)
		return uuid.Nil, false
	}
	return id, true
}

// intQuery reads an optional integer query value; def is used when the
// key is absent.
func intQuery(c *gin.Context, key string, def int64) (int64, bool) {
	raw, ok := c.GetQuery(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return def, true
	}
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_"+key, err)
		return 0, false
	}
	return v, true
}
