package handler

import "github.com/gin-gonic/gin"

// RegisterRoutes wires the API routes onto the router
func RegisterRoutes(r *gin.Engine, notes *NoteHandler, folders *FolderHandler) {
	api := r.Group("/api")
	{
		n := api.Group("/notes")
		{
			n.GET("", notes.ListNotes)
			n.POST("", notes.UpsertNote)
			n.GET("/:id", notes.GetNote)
			n.DELETE("/:id", notes.DeleteNote)
			n.POST("/:id/star", notes.StarNote)
			n.POST("/:id/sync", notes.SyncNote)
		}

		f := api.Group("/folders")
		{
			f.GET("", folders.ListFolders)
			f.POST("", folders.CreateFolder)
			f.DELETE("/:id", folders.DeleteFolder)
			f.GET("/:id/count", folders.CountNotesInFolder)
		}

		api.GET("/stats", notes.Stats)
	}
}
