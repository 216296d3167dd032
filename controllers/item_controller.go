package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"olilab/app"
	"olilab/engine"
	"olilab/models"
	"olilab/store"
)

type ItemController struct{ *Srv }

func NewItemController(s *Srv) *ItemController { return &ItemController{Srv: s} }

func (ic *ItemController) ListItems(c *gin.Context) {
	var items []models.Item
	err := ic.Store.View(c.Request.Context(), func(v store.View) error {
		items = v.Items()
		return nil
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": items})
}

func (ic *ItemController) CreateItem(c *gin.Context) {
	var in engine.ItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	it, err := ic.Engine.AddItem(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, it)
}

func (ic *ItemController) ImportItems(c *gin.Context) {
	var in struct {
		Items []engine.ItemInput `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	items, err := ic.Engine.ImportItems(c.Request.Context(), in.Items)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, app.H{"items": items})
}

func (ic *ItemController) EditItem(c *gin.Context) {
	var in engine.ItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	it, err := ic.Engine.EditItem(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

func (ic *ItemController) DeleteItem(c *gin.Context) {
	if err := ic.Engine.DeleteItem(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

func (ic *ItemController) CategoryStats(c *gin.Context) {
	totals, err := ic.Engine.CategoryTotals(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"categories": totals})
}
