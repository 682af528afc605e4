package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/tradeguard/internal/client/models"
)

// apiResponse is the success wrapper used by most endpoints.
type apiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

// fieldError is one entry of a 422 detail list.
type fieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func ok(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, apiResponse{Success: true, Data: data, Message: message})
}

// fail aborts with {"detail": detail}.
func fail(c *gin.Context, status int, detail any) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

func unprocessable(c *gin.Context, loc string, msgs ...string) {
	detail := make([]fieldError, 0, len(msgs))
	for _, m := range msgs {
		detail = append(detail, fieldError{Loc: []string{loc}, Msg: m, Type: "value_error"})
	}
	fail(c, http.StatusUnprocessableEntity, detail)
}

// bindJSON decodes the request body into dst and validates it. It writes a
// 422 and returns false on failure.
func bindJSON(c *gin.Context, dst any) bool {
	return decodeJSON(c, dst) && validated(c, "body", dst)
}

// decodeJSON is bindJSON without struct validation.
func decodeJSON(c *gin.Context, dst any) bool {
	if err := json.NewDecoder(c.Request.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			unprocessable(c, "body", "Field required")
		} else {
			unprocessable(c, "body", "Invalid JSON: "+err.Error())
		}
		return false
	}
	return true
}

func validated(c *gin.Context, loc string, v any) bool {
	if err := models.Validate(v); err != nil {
		unprocessable(c, loc, strings.Split(err.Error(), "; ")...)
		return false
	}
	return true
}

// queryInt reads an integer query parameter, writing a 422 on bad input.
func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw, present := c.GetQuery(name)
	if !present || raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		unprocessable(c, "query", name+" must be an integer")
		return 0, false
	}
	return v, true
}

func formatUserID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func minutes(n int) time.Duration { return time.Duration(n) * time.Minute }
