package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/HSouheill/marketplace_backend/controllers"
)

// RegisterReviewRoutes sets up product reviews, their moderation and vendor replies.
func RegisterReviewRoutes(e *echo.Echo, rc *controllers.ReviewController, g guards) {
	e.GET("/api/products/:id/reviews", rc.GetProductReviews)
	e.POST("/api/products/:id/reviews", rc.CreateReview, g.auth)

	reviews := e.Group("/api/reviews")
	reviews.GET("/mine", rc.GetMyReviews, g.auth)
	reviews.GET("/:id", rc.GetReview)
	reviews.PUT("/:id", rc.UpdateReview, g.auth)
	reviews.DELETE("/:id", rc.DeleteReview, g.auth)
	reviews.POST("/:id/report", rc.ReportReview, g.auth)
	reviews.POST("/:id/reply", rc.PostReviewReply, g.auth, g.vendor)

	admin := e.Group("/api/admin/reviews", g.auth, g.admin)
	admin.GET("", rc.GetReviews)
	admin.PATCH("/:id/visibility", rc.UpdateReviewVisibility)
}
