package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/contractgen/backend/config"
	"github.com/contractgen/backend/internal/handler"
	"github.com/contractgen/backend/internal/middleware"
	"github.com/contractgen/backend/internal/service"
)

func Setup(
	cfg *config.Config,
	users *service.UserService,
	userHandler *handler.UserHandler,
	orgHandler *handler.OrganizationHandler,
	keyHandler *handler.KeyHandler,
	templateHandler *handler.TemplateHandler,
	contractHandler *handler.ContractHandler,
	jobHandler *handler.JobHandler,
	attachmentHandler *handler.AttachmentHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	api := r.Group("/api")
	{
		// 注册是唯一的开放入口，其余一律鉴权
		api.POST("/users", userHandler.Create)

		authed := api.Group("")
		authed.Use(middleware.Auth(users))
		{
			authed.GET("/users/:id", userHandler.Get)

			orgs := authed.Group("/organizations")
			{
				orgs.POST("", orgHandler.Create)
				orgs.GET("", orgHandler.List)
				orgs.POST("/:id/members", orgHandler.AddMember)
			}

			keys := authed.Group("/keys")
			{
				keys.GET("", keyHandler.List)
				keys.POST("", keyHandler.Create)
				keys.DELETE("/:id", keyHandler.Delete)
			}

			templates := authed.Group("/templates")
			{
				templates.POST("", templateHandler.Create)
				templates.GET("", templateHandler.List)
				templates.GET("/:id", templateHandler.Get)
				templates.PUT("/:id", templateHandler.Update)
				templates.DELETE("/:id", templateHandler.Delete)
			}

			contracts := authed.Group("/contracts")
			{
				contracts.POST("", contractHandler.Create)
				contracts.GET("", contractHandler.List)
				contracts.GET("/:id", contractHandler.Get)
				contracts.PUT("/:id/data", contractHandler.UpdateData)
				contracts.DELETE("/:id", contractHandler.Delete)
			}

			jobs := authed.Group("/jobs")
			{
				jobs.POST("", jobHandler.Create)
				jobs.GET("", jobHandler.List)
				jobs.GET("/status", jobHandler.Status)
				jobs.GET("/queue", jobHandler.QueueStatus)
			}

			attachments := authed.Group("/attachments")
			{
				attachments.GET("/:hash/download", attachmentHandler.Download)
				attachments.GET("/:hash/preview", attachmentHandler.Preview)
			}
		}
	}

	return r
}
