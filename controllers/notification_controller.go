package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"olilab/app"
	"olilab/models"
	"olilab/store"
)

type NotificationController struct{ *Srv }

func NewNotificationController(s *Srv) *NotificationController {
	return &NotificationController{Srv: s}
}

func (nc *NotificationController) ListNotifications(c *gin.Context) {
	unreadOnly := c.Query("unread") == "true"
	var notifications []models.Notification
	err := nc.Store.View(c.Request.Context(), func(v store.View) error {
		for _, n := range v.Notifications() {
			if unreadOnly && n.Read {
				continue
			}
			notifications = append(notifications, n)
		}
		return nil
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"notifications": notifications})
}

func (nc *NotificationController) MarkRead(c *gin.Context) {
	var in struct {
		IDs []string `json:"ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if err := nc.Engine.MarkNotificationsRead(c.Request.Context(), in.IDs); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
