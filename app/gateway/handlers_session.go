package gateway

import (
	"errors"
	"net/http"

	"github.com/sonr-io/motr-gateway/core/binder"
	"github.com/sonr-io/motr-gateway/core/handler"
	"github.com/sonr-io/motr-gateway/core/response"
	"github.com/sonr-io/motr-gateway/core/session"
)

type sessionView struct {
	Authenticated bool                 `json:"authenticated"`
	UserID        string               `json:"userId,omitempty"`
	Username      string               `json:"username,omitempty"`
	Preferences   *session.Preferences `json:"preferences,omitempty"`
}

type preferencesRequest struct {
	DefaultApp string `json:"defaultApp"`
}

type authenticateRequest struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type visitRequest struct {
	Page string `json:"page"`
}

func (a *App) getSession(ctx *Context) handler.Response {
	s, issued, err := a.sessions.GetOrCreate(ctx, ctx.Request())
	if err != nil {
		return response.Error(err)
	}
	return a.withSessionCookie(response.JSON(sessionView{
		Authenticated: s.Authenticated,
		UserID:        s.UserID,
		Username:      s.Username,
		Preferences:   s.Preferences,
	}), s, issued)
}

func (a *App) updatePreferences(ctx *Context) handler.Response {
	var req preferencesRequest
	if err := binder.JSON(ctx.Request(), &req); err != nil {
		return response.Error(failure(binder.HTTPError(err)))
	}
	s, issued, err := a.sessions.UpdatePreferences(ctx, ctx.Request(), session.Preferences{DefaultApp: req.DefaultApp})
	if err != nil {
		return sessionError(err)
	}
	return a.withSessionCookie(response.JSON(map[string]any{
		"success":     true,
		"preferences": s.Preferences,
	}), s, issued)
}

func (a *App) authenticate(ctx *Context) handler.Response {
	var req authenticateRequest
	if err := binder.JSON(ctx.Request(), &req); err != nil {
		return response.Error(failure(binder.HTTPError(err)))
	}
	s, issued, err := a.sessions.Authenticate(ctx, ctx.Request(), req.UserID, req.Username)
	if err != nil {
		return sessionError(err)
	}
	return a.withSessionCookie(response.JSON(map[string]any{
		"success": true,
		"session": s,
	}), s, issued)
}

func (a *App) logout(ctx *Context) handler.Response {
	if err := a.sessions.Logout(ctx, ctx.Request()); err != nil {
		return response.Error(err)
	}
	return response.WithBefore(response.JSON(map[string]bool{"success": true}),
		func(w http.ResponseWriter, _ *http.Request) error {
			a.sessions.ClearCookie(w)
			return nil
		})
}

func (a *App) recordVisit(ctx *Context) handler.Response {
	var req visitRequest
	if err := binder.JSON(ctx.Request(), &req); err != nil {
		return response.Error(failure(binder.HTTPError(err)))
	}
	s, issued, err := a.sessions.RecordVisit(ctx, ctx.Request(), req.Page)
	if err != nil {
		return sessionError(err)
	}
	return a.withSessionCookie(success(), s, issued)
}

func (a *App) registrationStarted(ctx *Context) handler.Response {
	s, issued, err := a.sessions.RegistrationStarted(ctx, ctx.Request())
	if err != nil {
		return sessionError(err)
	}
	return a.withSessionCookie(success(), s, issued)
}

func (a *App) registrationCompleted(ctx *Context) handler.Response {
	s, issued, err := a.sessions.RegistrationCompleted(ctx, ctx.Request())
	if err != nil {
		return sessionError(err)
	}
	return a.withSessionCookie(success(), s, issued)
}

// withSessionCookie sets the session cookie when the manager issued a new id.
// An existing valid cookie is never rewritten.
func (a *App) withSessionCookie(resp handler.Response, s session.Session, issued bool) handler.Response {
	if !issued {
		return resp
	}
	return response.WithBefore(resp, func(w http.ResponseWriter, _ *http.Request) error {
		return a.sessions.SetCookie(w, s.ID)
	})
}

func sessionError(err error) handler.Response {
	switch {
	case errors.Is(err, session.ErrInvalidDefaultApp):
		return response.Error(failure(response.ErrBadRequest.
			WithMessage("defaultApp must be one of console, profile, search")))
	case errors.Is(err, session.ErrMissingUserID):
		return response.Error(failure(response.ErrBadRequest.WithMessage("userId is required")))
	case errors.Is(err, session.ErrMissingPage):
		return response.Error(failure(response.ErrBadRequest.WithMessage("page is required")))
	default:
		return response.Error(err)
	}
}

func success() handler.Response {
	return response.JSON(map[string]bool{"success": true})
}

// failure tags an error envelope with success:false.
func failure(e response.HTTPError) response.HTTPError {
	return e.WithDetail("success", false)
}
