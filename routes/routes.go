package routes

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gin-gonic/gin"

	"olilab/app"
	"olilab/controllers"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	s := controllers.GetSrv(a)
	itemCtl := controllers.NewItemController(s)
	borrowCtl := controllers.NewBorrowController(s)
	userCtl := controllers.NewUserController(s)
	suggestCtl := controllers.NewSuggestionController(s)
	notifyCtl := controllers.NewNotificationController(s)

	authMW := app.AuthRequired(a.Store)
	adminMW := app.AdminOnly()

	// Public: account signup and metrics.
	r.POST("/api/signup", userCtl.Signup)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ------------------------------
	// Items
	// ------------------------------
	items := r.Group("/api/items", authMW)
	{
		items.GET("", itemCtl.ListItems)
	}
	r.GET("/api/stats/categories", authMW, itemCtl.CategoryStats)

	itemsAdmin := r.Group("/api/items", authMW, adminMW)
	{
		itemsAdmin.POST("", itemCtl.CreateItem)
		itemsAdmin.POST("/import", itemCtl.ImportItems)
		itemsAdmin.PUT("/:id", itemCtl.EditItem)
		itemsAdmin.DELETE("/:id", itemCtl.DeleteItem)
	}

	// ------------------------------
	// Borrow / return lifecycle
	// ------------------------------
	borrows := r.Group("/api/borrows", authMW)
	{
		borrows.GET("", borrowCtl.ListLogs) // ?userId=&itemId=&action=&status=
		borrows.POST("", borrowCtl.RequestBorrow)
		borrows.POST("/:id/return-request", borrowCtl.RequestReturn)
		borrows.POST("/:id/comments", borrowCtl.AddLogComment)
	}

	borrowsAdmin := r.Group("/api/borrows", authMW, adminMW)
	{
		borrowsAdmin.GET("/overdue", borrowCtl.ListOverdue)
		borrowsAdmin.POST("/:id/approve", borrowCtl.ApproveBorrow)
		borrowsAdmin.POST("/:id/deny", borrowCtl.DenyBorrow)
		borrowsAdmin.POST("/:id/return", borrowCtl.ApproveReturn)
	}

	// ------------------------------
	// User management (admin only)
	// ------------------------------
	users := r.Group("/api/users", authMW, adminMW)
	{
		users.GET("", userCtl.ListUsers) // ?status=
		users.POST("", userCtl.CreateUser)
		users.PUT("/:id", userCtl.EditUser)
		users.DELETE("/:id", userCtl.DeleteUser)
		users.POST("/:id/approve", userCtl.ApproveUser)
		users.POST("/:id/deny", userCtl.DenyUser)
	}

	// ------------------------------
	// Suggestions
	// ------------------------------
	suggestions := r.Group("/api/suggestions", authMW)
	{
		suggestions.GET("", suggestCtl.ListSuggestions)
		suggestions.POST("", suggestCtl.AddSuggestion)
		suggestions.POST("/:id/comments", suggestCtl.AddComment)
	}

	suggestionsAdmin := r.Group("/api/suggestions", authMW, adminMW)
	{
		suggestionsAdmin.POST("/:id/approve", suggestCtl.ApproveSuggestion)
		suggestionsAdmin.POST("/:id/deny", suggestCtl.DenySuggestion)
	}

	// ------------------------------
	// Notifications (admin inbox)
	// ------------------------------
	notifications := r.Group("/api/notifications", authMW, adminMW)
	{
		notifications.GET("", notifyCtl.ListNotifications) // ?unread=true
		notifications.POST("/read", notifyCtl.MarkRead)
	}
}
