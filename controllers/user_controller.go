package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"olilab/app"
	"olilab/engine"
	"olilab/models"
	"olilab/store"
)

type UserController struct{ *Srv }

func NewUserController(s *Srv) *UserController { return &UserController{Srv: s} }

// Signup is public: the account lands PENDING until an admin decides.
func (uc *UserController) Signup(c *gin.Context) {
	var in engine.UserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	u, err := uc.Engine.SignupUser(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

// CreateUser is the admin path: the account starts ACTIVE.
func (uc *UserController) CreateUser(c *gin.Context) {
	var in engine.UserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	u, err := uc.Engine.CreateUser(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (uc *UserController) ListUsers(c *gin.Context) {
	status := c.Query("status")
	var users []models.User
	err := uc.Store.View(c.Request.Context(), func(v store.View) error {
		for _, u := range v.Users() {
			if status != "" && string(u.Status) != status {
				continue
			}
			users = append(users, u)
		}
		return nil
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"users": users})
}

func (uc *UserController) EditUser(c *gin.Context) {
	var in engine.UserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	u, err := uc.Engine.EditUser(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (uc *UserController) DeleteUser(c *gin.Context) {
	if err := uc.Engine.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

func (uc *UserController) ApproveUser(c *gin.Context) {
	u, err := uc.Engine.ApproveUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (uc *UserController) DenyUser(c *gin.Context) {
	u, err := uc.Engine.DenyUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
