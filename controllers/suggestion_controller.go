package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"olilab/app"
	"olilab/models"
	"olilab/store"
)

type SuggestionController struct{ *Srv }

func NewSuggestionController(s *Srv) *SuggestionController { return &SuggestionController{Srv: s} }

func (sc *SuggestionController) ListSuggestions(c *gin.Context) {
	var (
		suggestions []models.Suggestion
		comments    []models.Comment
	)
	err := sc.Store.View(c.Request.Context(), func(v store.View) error {
		suggestions = v.Suggestions()
		comments = v.Comments()
		return nil
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"suggestions": suggestions, "comments": comments})
}

func (sc *SuggestionController) AddSuggestion(c *gin.Context) {
	var in struct {
		ItemName string `json:"itemName" binding:"required"`
		Category string `json:"category"`
		Reason   string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	s, err := sc.Engine.AddSuggestion(c.Request.Context(), actorID(c), in.ItemName, in.Category, in.Reason)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (sc *SuggestionController) ApproveSuggestion(c *gin.Context) {
	var in struct {
		TotalQuantity int `json:"totalQuantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	s, item, err := sc.Engine.ApproveSuggestion(c.Request.Context(), c.Param("id"), in.TotalQuantity)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"suggestion": s, "item": item})
}

func (sc *SuggestionController) DenySuggestion(c *gin.Context) {
	var in struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&in)
	s, err := sc.Engine.DenySuggestion(c.Request.Context(), c.Param("id"), in.Reason, actorID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (sc *SuggestionController) AddComment(c *gin.Context) {
	var in struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	comment, err := sc.Engine.AddComment(c.Request.Context(), c.Param("id"), actorID(c), in.Text)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}
