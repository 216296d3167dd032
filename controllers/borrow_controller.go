package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"olilab/app"
	"olilab/models"
	"olilab/store"
)

type BorrowController struct{ *Srv }

func NewBorrowController(s *Srv) *BorrowController { return &BorrowController{Srv: s} }

// RequestBorrow files a borrow request for the authenticated member.
func (bc *BorrowController) RequestBorrow(c *gin.Context) {
	var in struct {
		ItemID   string `json:"itemId" binding:"required"`
		Quantity int    `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	entry, err := bc.Engine.RequestBorrow(c.Request.Context(), actorID(c), in.ItemID, in.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (bc *BorrowController) ApproveBorrow(c *gin.Context) {
	entry, err := bc.Engine.ApproveBorrow(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (bc *BorrowController) DenyBorrow(c *gin.Context) {
	entry, err := bc.Engine.DenyBorrow(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (bc *BorrowController) RequestReturn(c *gin.Context) {
	entry, err := bc.Engine.RequestReturn(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (bc *BorrowController) ApproveReturn(c *gin.Context) {
	entry, err := bc.Engine.ApproveReturn(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// ListLogs returns borrow/return records, filterable by userId, itemId,
// action and status query params.
func (bc *BorrowController) ListLogs(c *gin.Context) {
	userID := c.Query("userId")
	itemID := c.Query("itemId")
	action := c.Query("action")
	status := c.Query("status")

	var logs []models.LogEntry
	err := bc.Store.View(c.Request.Context(), func(v store.View) error {
		for _, l := range v.Logs() {
			if userID != "" && l.UserID != userID {
				continue
			}
			if itemID != "" && l.ItemID != itemID {
				continue
			}
			if action != "" && string(l.Action) != action {
				continue
			}
			if status != "" && string(l.Status) != status {
				continue
			}
			logs = append(logs, l)
		}
		return nil
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"logs": logs})
}

func (bc *BorrowController) ListOverdue(c *gin.Context) {
	logs, err := bc.Engine.ListOverdue(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"logs": logs})
}

func (bc *BorrowController) AddLogComment(c *gin.Context) {
	var in struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	comment, err := bc.Engine.AddLogComment(c.Request.Context(), c.Param("id"), actorID(c), in.Text)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}
