// Package controllers holds the gin handlers for the inventory workflows.
package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"olilab/app"
	"olilab/engine"
	"olilab/store"
)

// Srv aggregates the dependencies shared by all controllers.
type Srv struct {
	Engine *engine.Engine
	Store  store.Store
	Cfg    app.Config
}

func GetSrv(a *app.App) *Srv {
	return &Srv{Engine: a.Engine, Store: a.Store, Cfg: a.Config}
}

// fail maps engine and store errors onto HTTP responses. Workflow errors
// keep their structure so the UI can render an actionable message.
func fail(c *gin.Context, err error) {
	if errors.Is(err, store.ErrTxConflict) {
		c.JSON(http.StatusServiceUnavailable, app.H{"error": err.Error(), "kind": "conflict"})
		return
	}
	var werr *engine.Error
	if errors.As(err, &werr) {
		status := http.StatusConflict
		switch werr.Kind {
		case engine.KindNotFound:
			status = http.StatusNotFound
		case engine.KindValidation:
			status = http.StatusBadRequest
		}
		c.JSON(status, app.H{
			"error":  werr.Error(),
			"kind":   werr.Kind,
			"entity": werr.Entity,
			"id":     werr.ID,
			"have":   werr.Have,
			"want":   werr.Want,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
}

// actorID returns the authenticated caller's user id set by AuthRequired.
func actorID(c *gin.Context) string {
	v, _ := c.Get("userID")
	id, _ := v.(string)
	return id
}
