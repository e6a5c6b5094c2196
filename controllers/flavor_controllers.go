package controllers

import (
	"net/http"
	"strings"

	"github.com/SteveKibs/cake-backend-app/models"
	"github.com/SteveKibs/cake-backend-app/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var flavorSortColumns = map[string]string{
	"name":       "flavors.name",
	"created_at": "flavors.created_at",
}

type FlavorController struct {
	DB *gorm.DB
}

func NewFlavorController(db *gorm.DB) *FlavorController {
	return &FlavorController{DB: db}
}

type flavorRequest struct {
	Name string `json:"name" binding:"required,min=1,max=50"`
}

// ensureUniqueName rejects a flavor name already used by another flavor.
func ensureUniqueName(db *gorm.DB, name string, exceptID uint) error {
	taken, err := exists(db, &models.Flavor{}, "LOWER(name) = ? AND id <> ?", strings.ToLower(name), exceptID)
	if err != nil {
		return err
	}
	if taken {
		return utils.Conflict("flavor %q already exists", name)
	}
	return nil
}

func (fc *FlavorController) GetFlavors(c *gin.Context) {
	params, err := utils.ParseListParams(c, flavorSortColumns, "name", "ASC")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	q := fc.DB.WithContext(c.Request.Context()).Model(&models.Flavor{})
	if search := c.Query("search"); search != "" {
		q = q.Where("LOWER(name) LIKE ?", likePattern(search))
	}

	var flavors []models.Flavor
	total, err := paginate(q, params, &flavors)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondPage(c, "Flavors retrieved successfully", flavors, params.Meta(total))
}

func (fc *FlavorController) CreateFlavor(c *gin.Context) {
	var req flavorRequest
	if err := bindJSON(c, &req); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	name := strings.TrimSpace(req.Name)
	db := fc.DB.WithContext(c.Request.Context())
	if err := ensureUniqueName(db, name, 0); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	flavor := models.Flavor{Name: name}
	if err := db.Create(&flavor).Error; err != nil {
		utils.RespondAppError(c, utils.Persistence("create flavor", err))
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Flavor created successfully", flavor)
}

func (fc *FlavorController) GetFlavorByID(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var flavor models.Flavor
	if err := findByID(fc.DB.WithContext(c.Request.Context()), &flavor, id, "flavor"); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Flavor retrieved successfully", flavor)
}

func (fc *FlavorController) UpdateFlavor(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var req flavorRequest
	if err := bindJSON(c, &req); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	db := fc.DB.WithContext(c.Request.Context())
	var flavor models.Flavor
	if err := findByID(db, &flavor, id, "flavor"); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	name := strings.TrimSpace(req.Name)
	if err := ensureUniqueName(db, name, id); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	flavor.Name = name
	if err := db.Save(&flavor).Error; err != nil {
		utils.RespondAppError(c, utils.Persistence("update flavor", err))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Flavor updated successfully", flavor)
}

func (fc *FlavorController) DeleteFlavor(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	err = fc.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var flavor models.Flavor
		if err := findByID(tx, &flavor, id, "flavor"); err != nil {
			return err
		}
		if err := tx.Where("flavor_id = ?", id).Delete(&models.CakeFlavor{}).Error; err != nil {
			return err
		}
		return tx.Delete(&flavor).Error
	})
	if err != nil {
		utils.RespondAppError(c, utils.Persistence("delete flavor", err))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Flavor deleted successfully", nil)
}

// GetFlavorCakes lists the cakes offered in a flavor.
func (fc *FlavorController) GetFlavorCakes(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	cakes, err := cakesForFlavor(fc.DB.WithContext(c.Request.Context()), id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cakes retrieved successfully", cakes)
}

func cakesForFlavor(db *gorm.DB, flavorID uint) ([]models.Cake, error) {
	var flavor models.Flavor
	if err := findByID(db, &flavor, flavorID, "flavor"); err != nil {
		return nil, err
	}
	var cakes []models.Cake
	err := db.Joins("JOIN cake_flavors ON cake_flavors.cake_id = cakes.id").
		Where("cake_flavors.flavor_id = ?", flavorID).
		Order("cakes.name ASC").
		Find(&cakes).Error
	if err != nil {
		return nil, utils.Persistence("list flavor cakes", err)
	}
	return cakes, nil
}
