package routes

import (
	"net/http"

	"crm-app/src/interface/handler"
	"crm-app/src/middleware"

	"github.com/gin-gonic/gin"
)

// Handlers bundles the handler set the router binds
type Handlers struct {
	Contact      *handler.ContactHandler
	Organization *handler.OrganizationHandler
	Note         *handler.NoteHandler
	Task         *handler.TaskHandler
	Health       gin.HandlerFunc
}

// SetupRoutes sets up all API routes.
// peerAuthがnil以外の場合、エンティティルートにピア認証を適用する
func SetupRoutes(r *gin.Engine, h Handlers, peerAuth gin.HandlerFunc) {
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.RateLimitMiddleware())

	// APIインデックス。エンティティのルートグループ一覧を返す
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "CRM API",
			"version": "0.1.0",
			"endpoints": gin.H{
				"contacts":      "/contacts",
				"organizations": "/organizations",
				"tasks":         "/tasks",
				"notes":         "/notes",
				"health":        "/health",
			},
		})
	})
	r.GET("/health", h.Health)

	api := r.Group("")
	if peerAuth != nil {
		api.Use(peerAuth)
	}
	{
		contacts := api.Group("/contacts")
		{
			contacts.POST("", h.Contact.CreateContact)          // POST /contacts
			contacts.GET("", h.Contact.ListContacts)            // GET /contacts
			contacts.POST("/bulk", h.Contact.BulkAddContacts)   // POST /contacts/bulk
			contacts.GET("/top", h.Contact.TopContacts)         // GET /contacts/top
			contacts.GET("/search", h.Contact.SearchContacts)   // GET /contacts/search
			contacts.GET("/:id", h.Contact.GetContactWithNotes) // GET /contacts/:id
		}

		organizations := api.Group("/organizations")
		{
			organizations.POST("", h.Organization.CreateOrganization) // POST /organizations
			organizations.GET("", h.Organization.ListOrganizations)   // GET /organizations
			organizations.GET("/top", h.Organization.TopOrganizations) // GET /organizations/top
		}

		tasks := api.Group("/tasks")
		{
			tasks.POST("", h.Task.CreateTask)                      // POST /tasks
			tasks.GET("", h.Task.ListTasks)                        // GET /tasks
			tasks.GET("/urgent", h.Task.UrgentTasks)               // GET /tasks/urgent
			tasks.GET("/:id", h.Task.GetTask)                      // GET /tasks/:id
			tasks.POST("/:id/complete", h.Task.CompleteTask)       // POST /tasks/:id/complete
			tasks.POST("/:id/uncomplete", h.Task.UncompleteTask)   // POST /tasks/:id/uncomplete
			tasks.PATCH("/:id/tags", h.Task.UpdateTaskTags)        // PATCH /tasks/:id/tags
		}

		notes := api.Group("/notes")
		{
			notes.POST("", h.Note.CreateNote)              // POST /notes
			notes.GET("", h.Note.ListNotes)                // GET /notes
			notes.GET("/:id", h.Note.GetNote)              // GET /notes/:id
			notes.PATCH("/:id/tags", h.Note.UpdateNoteTags) // PATCH /notes/:id/tags
		}
	}
}
