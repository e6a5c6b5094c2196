package controllers

import (
	"net/http"
	"strings"

	"github.com/SteveKibs/cake-backend-app/models"
	"github.com/SteveKibs/cake-backend-app/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var distributorSortColumns = map[string]string{
	"name":            "distributors.name",
	"region":          "distributors.region",
	"commission_rate": "distributors.commission_rate",
	"created_at":      "distributors.created_at",
}

var hundred = decimal.NewFromInt(100)

type DistributorController struct {
	DB *gorm.DB
}

func NewDistributorController(db *gorm.DB) *DistributorController {
	return &DistributorController{DB: db}
}

type distributorRequest struct {
	Name           *string          `json:"name" binding:"omitempty,min=1,max=100"`
	ContactPerson  *string          `json:"contact_person" binding:"omitempty,max=100"`
	PhoneNumber    *string          `json:"phone_number" binding:"omitempty,numeric,min=10,max=15"`
	Email          *string          `json:"email" binding:"omitempty,email"`
	Region         *string          `json:"region" binding:"omitempty,max=100"`
	CommissionRate *decimal.Decimal `json:"commission_rate"`
}

func (r *distributorRequest) apply(d *models.Distributor) error {
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		if name == "" {
			return utils.InvalidInput("name must not be empty")
		}
		d.Name = name
	}
	if r.ContactPerson != nil {
		d.ContactPerson = *r.ContactPerson
	}
	if r.PhoneNumber != nil {
		d.PhoneNumber = *r.PhoneNumber
	}
	if r.Email != nil {
		d.Email = strings.ToLower(*r.Email)
	}
	if r.Region != nil {
		d.Region = *r.Region
	}
	if r.CommissionRate != nil {
		if r.CommissionRate.IsNegative() || r.CommissionRate.GreaterThan(hundred) {
			return utils.InvalidInput("commission_rate must be between 0 and 100")
		}
		d.CommissionRate = r.CommissionRate.Round(2)
	}
	return nil
}

func (dc *DistributorController) GetDistributors(c *gin.Context) {
	params, err := utils.ParseListParams(c, distributorSortColumns, "name", "ASC")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	q := dc.DB.WithContext(c.Request.Context()).Model(&models.Distributor{})
	if region := c.Query("region"); region != "" {
		q = q.Where("LOWER(region) = ?", strings.ToLower(region))
	}
	if search := c.Query("search"); search != "" {
		pattern := likePattern(search)
		q = q.Where("LOWER(name) LIKE ? OR LOWER(contact_person) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern, pattern)
	}

	var distributors []models.Distributor
	total, err := paginate(q, params, &distributors)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondPage(c, "Distributors retrieved successfully", distributors, params.Meta(total))
}

func (dc *DistributorController) CreateDistributor(c *gin.Context) {
	var req distributorRequest
	if err := bindJSON(c, &req); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if req.Name == nil {
		utils.RespondAppError(c, utils.InvalidInput("name is required"))
		return
	}

	var d models.Distributor
	if err := req.apply(&d); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if err := dc.DB.WithContext(c.Request.Context()).Create(&d).Error; err != nil {
		utils.RespondAppError(c, utils.Persistence("create distributor", err))
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Distributor created successfully", d)
}

func (dc *DistributorController) GetDistributorByID(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var d models.Distributor
	if err := findByID(dc.DB.WithContext(c.Request.Context()), &d, id, "distributor"); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Distributor retrieved successfully", d)
}

func (dc *DistributorController) UpdateDistributor(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var req distributorRequest
	if err := bindJSON(c, &req); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	db := dc.DB.WithContext(c.Request.Context())
	var d models.Distributor
	if err := findByID(db, &d, id, "distributor"); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if err := req.apply(&d); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if err := db.Save(&d).Error; err != nil {
		utils.RespondAppError(c, utils.Persistence("update distributor", err))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Distributor updated successfully", d)
}

// DeleteDistributor refuses while sales are recorded against the distributor.
func (dc *DistributorController) DeleteDistributor(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	err = dc.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var d models.Distributor
		if err := findByID(tx, &d, id, "distributor"); err != nil {
			return err
		}
		hasSales, err := exists(tx, &models.DistributorSale{}, "distributor_id = ?", id)
		if err != nil {
			return err
		}
		if hasSales {
			return utils.Conflict("distributor %d has recorded sales", id)
		}
		return tx.Delete(&d).Error
	})
	if err != nil {
		utils.RespondAppError(c, utils.Persistence("delete distributor", err))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Distributor deleted successfully", nil)
}
