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

var cakeSortColumns = map[string]string{
	"name":       "cakes.name",
	"price":      "cakes.price",
	"created_at": "cakes.created_at",
	"updated_at": "cakes.updated_at",
}

type CakeController struct {
	DB *gorm.DB
}

func NewCakeController(db *gorm.DB) *CakeController {
	return &CakeController{DB: db}
}

type cakeRequest struct {
	Name         *string          `json:"name" binding:"omitempty,min=1,max=100"`
	Description  *string          `json:"description" binding:"omitempty,max=500"`
	Price        *decimal.Decimal `json:"price"`
	ImageURL     *string          `json:"image_url" binding:"omitempty,max=255"`
	BogoEligible *bool            `json:"bogo_eligible"`
	IsAvailable  *bool            `json:"is_available"`
}

func (r *cakeRequest) apply(cake *models.Cake) error {
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		if name == "" {
			return utils.InvalidInput("name must not be empty")
		}
		cake.Name = name
	}
	if r.Description != nil {
		cake.Description = *r.Description
	}
	if r.Price != nil {
		if r.Price.LessThan(minPrice) {
			return utils.InvalidInput("price must be at least 0.01")
		}
		cake.Price = r.Price.Round(2)
	}
	if r.ImageURL != nil {
		if *r.ImageURL == "" {
			cake.ImageURL = nil
		} else {
			url := *r.ImageURL
			cake.ImageURL = &url
		}
	}
	if r.BogoEligible != nil {
		cake.BogoEligible = *r.BogoEligible
	}
	if r.IsAvailable != nil {
		cake.IsAvailable = *r.IsAvailable
	}
	return nil
}

func (cc *CakeController) GetCakes(c *gin.Context) {
	params, err := utils.ParseListParams(c, cakeSortColumns, "name", "ASC")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	q := cc.DB.WithContext(c.Request.Context()).Model(&models.Cake{})
	bogo, err := queryBool(c, "bogoEligible")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if bogo != nil {
		q = q.Where("bogo_eligible = ?", *bogo)
	}
	available, err := queryBool(c, "isAvailable")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if available != nil {
		q = q.Where("is_available = ?", *available)
	}
	if search := c.Query("search"); search != "" {
		pattern := likePattern(search)
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var cakes []models.Cake
	total, err := paginate(q, params, &cakes)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondPage(c, "Cakes retrieved successfully", cakes, params.Meta(total))
}

func (cc *CakeController) CreateCake(c *gin.Context) {
	var req cakeRequest
	if err := bindJSON(c, &req); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if req.Name == nil || req.Price == nil {
		utils.RespondAppError(c, utils.InvalidInput("name and price are required"))
		return
	}

	cake := models.Cake{IsAvailable: true}
	if err := req.apply(&cake); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if err := cc.DB.WithContext(c.Request.Context()).Create(&cake).Error; err != nil {
		utils.RespondAppError(c, utils.Persistence("create cake", err))
		return
	}

	utils.InfoLogger.Printf("Cake created: %s (id=%d)", cake.Name, cake.ID)
	utils.RespondJSON(c, http.StatusCreated, "Cake created successfully", cake)
}

func (cc *CakeController) GetCakeByID(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var cake models.Cake
	if err := findByID(cc.DB.WithContext(c.Request.Context()), &cake, id, "cake"); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cake retrieved successfully", cake)
}

func (cc *CakeController) UpdateCake(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var req cakeRequest
	if err := bindJSON(c, &req); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	db := cc.DB.WithContext(c.Request.Context())
	var cake models.Cake
	if err := findByID(db, &cake, id, "cake"); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if err := req.apply(&cake); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if err := db.Save(&cake).Error; err != nil {
		utils.RespondAppError(c, utils.Persistence("update cake", err))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cake updated successfully", cake)
}

// DeleteCake refuses to remove a cake that order lines still reference.
func (cc *CakeController) DeleteCake(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	err = cc.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var cake models.Cake
		if err := findByID(tx, &cake, id, "cake"); err != nil {
			return err
		}
		referenced, err := exists(tx, &models.OrderItem{}, "cake_id = ?", id)
		if err != nil {
			return err
		}
		if referenced {
			return utils.Conflict("cake %d is referenced by existing orders", id)
		}
		if err := tx.Where("cake_id = ?", id).Delete(&models.CakeFlavor{}).Error; err != nil {
			return err
		}
		return tx.Delete(&cake).Error
	})
	if err != nil {
		utils.RespondAppError(c, utils.Persistence("delete cake", err))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cake deleted successfully", nil)
}

func (cc *CakeController) GetCakeFlavors(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	db := cc.DB.WithContext(c.Request.Context())
	var cake models.Cake
	if err := findByID(db, &cake, id, "cake"); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var flavors []models.Flavor
	err = db.Joins("JOIN cake_flavors ON cake_flavors.flavor_id = flavors.id").
		Where("cake_flavors.cake_id = ?", id).
		Order("flavors.name ASC").
		Find(&flavors).Error
	if err != nil {
		utils.RespondAppError(c, utils.Persistence("list cake flavors", err))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cake flavors retrieved successfully", flavors)
}
