package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/SteveKibs/cake-backend-app/models"
	"github.com/SteveKibs/cake-backend-app/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var offerSortColumns = map[string]string{
	"name":       "offers.name",
	"start_date": "offers.start_date",
	"end_date":   "offers.end_date",
	"created_at": "offers.created_at",
}

type OfferController struct {
	DB *gorm.DB
}

func NewOfferController(db *gorm.DB) *OfferController {
	return &OfferController{DB: db}
}

type offerRequest struct {
	Name                    *string          `json:"name" binding:"omitempty,min=1,max=100"`
	Description             *string          `json:"description" binding:"omitempty,max=500"`
	DiscountType            *string          `json:"discount_type" binding:"omitempty,oneof=percentage fixed_amount BOGO"`
	DiscountValue           *decimal.Decimal `json:"discount_value"`
	StartDate               *models.Date     `json:"start_date"`
	EndDate                 *models.Date     `json:"end_date"`
	ApplicableToAllProducts *bool            `json:"applicable_to_all_products"`
	ProductIDs              *string          `json:"product_ids" binding:"omitempty,max=255"`
	IsActive                *bool            `json:"is_active"`
}

func (r *offerRequest) apply(o *models.Offer) error {
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		if name == "" {
			return utils.InvalidInput("name must not be empty")
		}
		o.Name = name
	}
	if r.Description != nil {
		o.Description = *r.Description
	}
	if r.DiscountType != nil {
		o.DiscountType = *r.DiscountType
	}
	if r.DiscountValue != nil {
		if r.DiscountValue.IsNegative() {
			return utils.InvalidInput("discount_value must not be negative")
		}
		o.DiscountValue = r.DiscountValue.Round(2)
	}
	if o.DiscountType == models.DiscountPercentage && o.DiscountValue.GreaterThan(hundred) {
		return utils.InvalidInput("a percentage discount cannot exceed 100")
	}
	if r.StartDate != nil {
		o.StartDate = *r.StartDate
	}
	if r.EndDate != nil {
		o.EndDate = *r.EndDate
	}
	if o.EndDate.Before(o.StartDate.Time) {
		return utils.InvalidInput("end_date must not be before start_date")
	}
	if r.ApplicableToAllProducts != nil {
		o.ApplicableToAllProducts = *r.ApplicableToAllProducts
	}
	if r.ProductIDs != nil {
		ids, err := normalizeProductIDs(*r.ProductIDs)
		if err != nil {
			return err
		}
		o.ProductIDs = ids
	}
	if r.IsActive != nil {
		o.IsActive = *r.IsActive
	}
	return nil
}

// normalizeProductIDs checks a comma separated list of cake ids.
func normalizeProductIDs(raw string) (string, error) {
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if n, err := strconv.ParseUint(part, 10, 64); err != nil || n == 0 {
			return "", utils.InvalidInput("product_ids must be a comma separated list of cake ids")
		}
		ids = append(ids, part)
	}
	return strings.Join(ids, ","), nil
}

func (oc *OfferController) GetOffers(c *gin.Context) {
	params, err := utils.ParseListParams(c, offerSortColumns, "start_date", "DESC")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	q := oc.DB.WithContext(c.Request.Context()).Model(&models.Offer{})

	active, err := queryBool(c, "isActive")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if active != nil {
		q = q.Where("is_active = ?", *active)
	}
	if dt := c.Query("discountType"); dt != "" {
		if !models.IsValidDiscountType(dt) {
			utils.RespondAppError(c, utils.InvalidInput("invalid discountType %q", dt))
			return
		}
		q = q.Where("discount_type = ?", dt)
	}
	if search := c.Query("search"); search != "" {
		pattern := likePattern(search)
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var offers []models.Offer
	total, err := paginate(q, params, &offers)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondPage(c, "Offers retrieved successfully", offers, params.Meta(total))
}

func (oc *OfferController) CreateOffer(c *gin.Context) {
	var req offerRequest
	if err := bindJSON(c, &req); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if req.Name == nil || req.DiscountType == nil || req.DiscountValue == nil || req.StartDate == nil || req.EndDate == nil {
		utils.RespondAppError(c, utils.InvalidInput("name, discount_type, discount_value, start_date and end_date are required"))
		return
	}

	offer := models.Offer{IsActive: true}
	if err := req.apply(&offer); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if err := oc.DB.WithContext(c.Request.Context()).Create(&offer).Error; err != nil {
		utils.RespondAppError(c, utils.Persistence("create offer", err))
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Offer created successfully", offer)
}

func (oc *OfferController) GetOfferByID(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var offer models.Offer
	if err := findByID(oc.DB.WithContext(c.Request.Context()), &offer, id, "offer"); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Offer retrieved successfully", offer)
}

func (oc *OfferController) UpdateOffer(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var req offerRequest
	if err := bindJSON(c, &req); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	db := oc.DB.WithContext(c.Request.Context())
	var offer models.Offer
	if err := findByID(db, &offer, id, "offer"); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if err := req.apply(&offer); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if err := db.Save(&offer).Error; err != nil {
		utils.RespondAppError(c, utils.Persistence("update offer", err))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Offer updated successfully", offer)
}

func (oc *OfferController) DeleteOffer(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	db := oc.DB.WithContext(c.Request.Context())
	var offer models.Offer
	if err := findByID(db, &offer, id, "offer"); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if err := db.Delete(&offer).Error; err != nil {
		utils.RespondAppError(c, utils.Persistence("delete offer", err))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Offer deleted successfully", nil)
}
