package router

import (
	"gym_backend/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupPublicAuthRoutes sets up the login and signup routes.
func SetupPublicAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.POST("/admin/login", authHandler.AdminLogin)
	group.POST("/member/login", authHandler.MemberLogin)
	group.POST("/member/signup", authHandler.Signup)
}

func SetupProbeRoutes(group *gin.RouterGroup, probeHandler *handlers.ProbeHandler) {
	group.GET("/count", probeHandler.Count)
	group.PATCH("/touch", probeHandler.Touch)
}

// SetupMemberRoutes sets up the admin member management routes.
func SetupMemberRoutes(adminGroup *gin.RouterGroup, memberHandler *handlers.MemberHandler) {
	memberRoutes := adminGroup.Group("/members")
	{
		memberRoutes.POST("", memberHandler.CreateMember)
		memberRoutes.GET("", memberHandler.GetMembers)
		memberRoutes.GET("/:id", memberHandler.GetMemberByID)
		memberRoutes.PUT("/:id", memberHandler.UpdateMember)
		memberRoutes.DELETE("/:id", memberHandler.DeleteMember)
	}
}

// SetupInventoryRoutes sets up the inventory and stock ledger routes.
func SetupInventoryRoutes(adminGroup *gin.RouterGroup, inventoryHandler *handlers.InventoryHandler) {
	inventoryRoutes := adminGroup.Group("/inventory")
	{
		inventoryRoutes.GET("/categories", inventoryHandler.GetCategories)
		inventoryRoutes.GET("/movements", inventoryHandler.GetMovements)
		inventoryRoutes.GET("/movements/export", inventoryHandler.ExportMovements)

		itemRoutes := inventoryRoutes.Group("/items")
		itemRoutes.POST("", inventoryHandler.CreateItem)
		itemRoutes.GET("", inventoryHandler.GetItems)
		itemRoutes.GET("/:id", inventoryHandler.GetItemByID)
		itemRoutes.PUT("/:id", inventoryHandler.UpdateItem)
		itemRoutes.DELETE("/:id", inventoryHandler.ArchiveItem)
		itemRoutes.POST("/:id/stock-in", inventoryHandler.StockIn)
		itemRoutes.POST("/:id/stock-out", inventoryHandler.StockOut)
		itemRoutes.GET("/:id/ledger", inventoryHandler.GetItemLedger)
	}
}

func SetupTrainerRoutes(adminGroup *gin.RouterGroup, trainerHandler *handlers.TrainerHandler) {
	trainerRoutes := adminGroup.Group("/trainers")
	{
		trainerRoutes.POST("", trainerHandler.CreateTrainer)
		trainerRoutes.GET("", trainerHandler.GetTrainers)
		trainerRoutes.DELETE("/:id", trainerHandler.DeleteTrainer)
	}
}

func SetupAdminBookingRoutes(adminGroup *gin.RouterGroup, bookingHandler *handlers.BookingHandler) {
	bookingRoutes := adminGroup.Group("/bookings")
	{
		bookingRoutes.GET("", bookingHandler.GetBookings)
		bookingRoutes.PATCH("/:id/status", bookingHandler.UpdateBookingStatus)
		bookingRoutes.DELETE("/:id", bookingHandler.DeleteBooking)
	}
}

func SetupAdminTestimonialRoutes(adminGroup *gin.RouterGroup, testimonialHandler *handlers.TestimonialHandler) {
	testimonialRoutes := adminGroup.Group("/testimonials")
	{
		testimonialRoutes.GET("", testimonialHandler.GetTestimonials)
		testimonialRoutes.DELETE("/:id", testimonialHandler.DeleteTestimonial)
	}
}

func SetupNoteRoutes(adminGroup *gin.RouterGroup, noteHandler *handlers.NoteHandler) {
	noteRoutes := adminGroup.Group("/notes")
	{
		noteRoutes.POST("", noteHandler.CreateNote)
		noteRoutes.GET("", noteHandler.GetNotes)
		noteRoutes.DELETE("/:id", noteHandler.DeleteNote)
	}
}

// SetupMemberPortalRoutes sets up the routes a logged-in member uses.
func SetupMemberPortalRoutes(memberGroup *gin.RouterGroup, memberHandler *handlers.MemberHandler, bookingHandler *handlers.BookingHandler, testimonialHandler *handlers.TestimonialHandler) {
	memberGroup.GET("/me", memberHandler.Me)
	memberGroup.POST("/bookings", bookingHandler.CreateBooking)
	memberGroup.GET("/bookings", bookingHandler.GetMyBookings)
	memberGroup.POST("/testimonials", testimonialHandler.CreateTestimonial)
}
