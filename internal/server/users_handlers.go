package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/tradeguard/internal/client/models"
	"github.com/dmitrijs2005/tradeguard/internal/common"
	"github.com/dmitrijs2005/tradeguard/internal/server/users"
)

type userResponse struct {
	ID        int64            `json:"id"`
	Email     string           `json:"email"`
	Username  string           `json:"username"`
	CreatedAt models.Timestamp `json:"created_at"`
}

type authResponse struct {
	User        userResponse `json:"user"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
}

func newAuthResponse(u *users.User, token string) authResponse {
	return authResponse{
		User: userResponse{
			ID:        u.ID,
			Email:     u.Email,
			Username:  u.UserName,
			CreatedAt: models.Timestamp{Time: u.CreatedAt},
		},
		AccessToken: token,
		TokenType:   "bearer",
	}
}

func (a *API) register(c *gin.Context) {
	var req models.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	u, token, err := a.users.Register(c.Request.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			fail(c, http.StatusBadRequest, "User with this email or username already exists")
			return
		}
		a.log.Error(c.Request.Context(), "register", "error", err)
		fail(c, http.StatusInternalServerError, "Error registering user")
		return
	}

	a.log.Info(c.Request.Context(), "registered", "user_id", u.ID)
	ok(c, newAuthResponse(u, token), "User registered successfully")
}

func (a *API) login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	u, token, err := a.users.Login(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		c.Header("WWW-Authenticate", "Bearer")
		fail(c, http.StatusUnauthorized, "Incorrect email or password")
		return
	case errors.Is(err, users.ErrInactive):
		fail(c, http.StatusBadRequest, "Inactive user")
		return
	case err != nil:
		a.log.Error(c.Request.Context(), "login", "error", err)
		fail(c, http.StatusInternalServerError, "Error logging in")
		return
	}

	ok(c, newAuthResponse(u, token), "Login successful")
}

func (a *API) profile(c *gin.Context) {
	u := currentUser(c)
	ok(c, gin.H{
		"id":         u.ID,
		"email":      u.Email,
		"username":   u.UserName,
		"is_active":  u.IsActive,
		"created_at": models.Timestamp{Time: u.CreatedAt},
		"updated_at": models.Timestamp{Time: u.UpdatedAt},
	}, "")
}

func (a *API) getSettings(c *gin.Context) {
	ok(c, a.data.userSettings(currentUserID(c), a.now()), "")
}

func (a *API) updateSettings(c *gin.Context) {
	var upd models.SettingsUpdate
	if !bindJSON(c, &upd) {
		return
	}
	ok(c, a.data.updateSettings(currentUserID(c), upd, a.now()), "Settings updated successfully")
}

func (a *API) getAlertSettings(c *gin.Context) {
	ok(c, a.data.alertSettings(currentUserID(c)), "")
}

func (a *API) updateAlertSettings(c *gin.Context) {
	var s models.AlertSettings
	if !bindJSON(c, &s) {
		return
	}
	ok(c, a.data.setAlertSettings(currentUserID(c), s), "Alert settings updated successfully")
}

func (a *API) snoozeAlert(c *gin.Context) {
	var req models.SnoozeRequest
	if !bindJSON(c, &req) {
		return
	}
	id := c.Param("id")
	until := a.now().Add(minutes(req.DurationMinutes))
	a.data.snooze(currentUserID(c), id, until)
	ok(c, models.SnoozeResult{AlertID: id, SnoozedUntil: models.Timestamp{Time: until}}, "Alert snoozed")
}
