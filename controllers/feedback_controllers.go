package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/SteveKibs/cake-backend-app/models"
	"github.com/SteveKibs/cake-backend-app/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var feedbackSortColumns = map[string]string{
	"feedback_date": "customer_feedback.feedback_date",
	"rating":        "customer_feedback.rating",
	"created_at":    "customer_feedback.created_at",
}

type FeedbackController struct {
	DB *gorm.DB
}

func NewFeedbackController(db *gorm.DB) *FeedbackController {
	return &FeedbackController{DB: db}
}

// SubmitFeedback is open to customers without an account.
func (fc *FeedbackController) SubmitFeedback(c *gin.Context) {
	var req struct {
		CustomerName    string `json:"customer_name" binding:"max=100"`
		CustomerContact string `json:"customer_contact" binding:"max=255"`
		FeedbackText    string `json:"feedback_text" binding:"required,min=10,max=2000"`
		Rating          *int   `json:"rating" binding:"omitempty,min=1,max=5"`
	}
	if err := bindJSON(c, &req); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	fb := models.CustomerFeedback{
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerContact: strings.TrimSpace(req.CustomerContact),
		FeedbackText:    strings.TrimSpace(req.FeedbackText),
		Rating:          req.Rating,
		FeedbackDate:    time.Now(),
	}
	if len(fb.FeedbackText) < 10 {
		utils.RespondAppError(c, utils.InvalidInput("feedback_text must be at least 10 characters"))
		return
	}
	if err := fc.DB.WithContext(c.Request.Context()).Create(&fb).Error; err != nil {
		utils.RespondAppError(c, utils.Persistence("create feedback", err))
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Thank you for your feedback", fb)
}

func (fc *FeedbackController) GetFeedback(c *gin.Context) {
	params, err := utils.ParseListParams(c, feedbackSortColumns, "feedback_date", "DESC")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	q := fc.DB.WithContext(c.Request.Context()).Model(&models.CustomerFeedback{})

	resolved, err := queryBool(c, "resolved")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if resolved != nil {
		q = q.Where("resolved = ?", *resolved)
	}
	if v := c.Query("rating"); v != "" {
		rating, err := strconv.Atoi(v)
		if err != nil || rating < 1 || rating > 5 {
			utils.RespondAppError(c, utils.InvalidInput("rating must be between 1 and 5"))
			return
		}
		q = q.Where("rating = ?", rating)
	}
	if search := c.Query("search"); search != "" {
		pattern := likePattern(search)
		q = q.Where("LOWER(customer_name) LIKE ? OR LOWER(feedback_text) LIKE ?", pattern, pattern)
	}

	var items []models.CustomerFeedback
	total, err := paginate(q, params, &items)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondPage(c, "Feedback retrieved successfully", items, params.Meta(total))
}

func (fc *FeedbackController) GetFeedbackByID(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var fb models.CustomerFeedback
	if err := findByID(fc.DB.WithContext(c.Request.Context()), &fb, id, "feedback"); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Feedback retrieved successfully", fb)
}

// UpdateFeedback lets staff resolve feedback and leave notes.
func (fc *FeedbackController) UpdateFeedback(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var req struct {
		Resolved *bool   `json:"resolved"`
		Notes    *string `json:"notes" binding:"omitempty,max=1000"`
	}
	if err := bindJSON(c, &req); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	db := fc.DB.WithContext(c.Request.Context())
	var fb models.CustomerFeedback
	if err := findByID(db, &fb, id, "feedback"); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if req.Resolved != nil {
		fb.Resolved = *req.Resolved
	}
	if req.Notes != nil {
		fb.Notes = *req.Notes
	}
	if err := db.Save(&fb).Error; err != nil {
		utils.RespondAppError(c, utils.Persistence("update feedback", err))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Feedback updated successfully", fb)
}

func (fc *FeedbackController) DeleteFeedback(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	db := fc.DB.WithContext(c.Request.Context())
	var fb models.CustomerFeedback
	if err := findByID(db, &fb, id, "feedback"); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if err := db.Delete(&fb).Error; err != nil {
		utils.RespondAppError(c, utils.Persistence("delete feedback", err))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Feedback deleted successfully", nil)
}
