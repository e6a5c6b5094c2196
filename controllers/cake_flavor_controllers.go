package controllers

import (
	"errors"
	"net/http"

	"github.com/SteveKibs/cake-backend-app/models"
	"github.com/SteveKibs/cake-backend-app/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CakeFlavorController struct {
	DB *gorm.DB
}

func NewCakeFlavorController(db *gorm.DB) *CakeFlavorController {
	return &CakeFlavorController{DB: db}
}

// AddFlavorToCake links a cake and a flavor. Linking twice is not an error.
func (cfc *CakeFlavorController) AddFlavorToCake(c *gin.Context) {
	var req struct {
		CakeID   uint `json:"cake_id" binding:"required"`
		FlavorID uint `json:"flavor_id" binding:"required"`
	}
	if err := bindJSON(c, &req); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	created := false
	var link models.CakeFlavor
	err := cfc.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := findByID(tx, &models.Cake{}, req.CakeID, "cake"); err != nil {
			return err
		}
		if err := findByID(tx, &models.Flavor{}, req.FlavorID, "flavor"); err != nil {
			return err
		}
		err := tx.Where("cake_id = ? AND flavor_id = ?", req.CakeID, req.FlavorID).First(&link).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		link = models.CakeFlavor{CakeID: req.CakeID, FlavorID: req.FlavorID}
		created = true
		return tx.Create(&link).Error
	})
	if err != nil {
		utils.RespondAppError(c, utils.Persistence("link cake flavor", err))
		return
	}

	if !created {
		utils.RespondJSON(c, http.StatusOK, "Flavor already associated with cake", link)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Flavor added to cake successfully", link)
}

func (cfc *CakeFlavorController) RemoveFlavorFromCake(c *gin.Context) {
	cakeID, err := parseIDParam(c, "cake_id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	flavorID, err := parseIDParam(c, "flavor_id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	res := cfc.DB.WithContext(c.Request.Context()).
		Where("cake_id = ? AND flavor_id = ?", cakeID, flavorID).
		Delete(&models.CakeFlavor{})
	if res.Error != nil {
		utils.RespondAppError(c, utils.Persistence("unlink cake flavor", res.Error))
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondAppError(c, utils.NotFound("flavor %d is not associated with cake %d", flavorID, cakeID))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Flavor removed from cake successfully", nil)
}

func (cfc *CakeFlavorController) GetCakesByFlavor(c *gin.Context) {
	id, err := parseIDParam(c, "flavor_id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	cakes, err := cakesForFlavor(cfc.DB.WithContext(c.Request.Context()), id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cakes retrieved successfully", cakes)
}
