package main

import (
	"context"
	"log"

	"olilab/app"
	"olilab/config"
	"olilab/routes"
)

func main() {
	config.LoadEnv()

	application := app.MustNew()
	defer application.Close()

	r := application.Router

	// Health
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(200, app.H{"ok": true}) })

	app.BootstrapFirstAdmin(context.Background(), application.Config, application.Store, application.Engine)

	routes.RegisterRoutes(r, application)

	log.Printf("listening on :%s", application.Config.Port)
	_ = r.Run(":" + application.Config.Port)
}
