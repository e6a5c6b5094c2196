package controllers

import (
	"net/http"

	"github.com/SteveKibs/cake-backend-app/models"
	"github.com/SteveKibs/cake-backend-app/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var saleSortColumns = map[string]string{
	"sale_date":         "distributor_sales.sale_date",
	"total_amount":      "distributor_sales.total_amount",
	"commission_earned": "distributor_sales.commission_earned",
	"created_at":        "distributor_sales.created_at",
}

type DistributorSaleController struct {
	DB *gorm.DB
}

func NewDistributorSaleController(db *gorm.DB) *DistributorSaleController {
	return &DistributorSaleController{DB: db}
}

type saleRequest struct {
	DistributorID    *uint                `json:"distributor_id"`
	SaleDate         *models.Date         `json:"sale_date"`
	TotalAmount      *decimal.Decimal     `json:"total_amount"`
	CommissionEarned *decimal.Decimal     `json:"commission_earned"`
	ProductDetails   *models.SaleProducts `json:"product_details" binding:"omitempty,dive"`
	Notes            *string              `json:"notes" binding:"omitempty,max=1000"`
	PaymentStatus    *string              `json:"payment_status"`
}

// Commission computes the commission owed on amount at rate percent.
func Commission(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(hundred).Round(2)
}

// apply copies the request onto sale and fills in a commission from the
// distributor's rate when the caller leaves it out.
func (r *saleRequest) apply(tx *gorm.DB, sale *models.DistributorSale) error {
	if r.DistributorID != nil {
		sale.DistributorID = *r.DistributorID
	}
	var distributor models.Distributor
	if err := findByID(tx, &distributor, sale.DistributorID, "distributor"); err != nil {
		return err
	}
	if r.SaleDate != nil {
		sale.SaleDate = *r.SaleDate
	}
	if r.TotalAmount != nil {
		if r.TotalAmount.LessThan(minPrice) {
			return utils.InvalidInput("total_amount must be at least 0.01")
		}
		sale.TotalAmount = r.TotalAmount.Round(2)
	}
	if r.CommissionEarned != nil {
		if r.CommissionEarned.IsNegative() {
			return utils.InvalidInput("commission_earned must not be negative")
		}
		sale.CommissionEarned = r.CommissionEarned.Round(2)
	} else if r.TotalAmount != nil || r.DistributorID != nil {
		sale.CommissionEarned = Commission(sale.TotalAmount, distributor.CommissionRate)
	}
	if r.ProductDetails != nil {
		sale.ProductDetails = *r.ProductDetails
	}
	if r.Notes != nil {
		sale.Notes = *r.Notes
	}
	if r.PaymentStatus != nil {
		if !models.IsValidSalePaymentStatus(*r.PaymentStatus) {
			return utils.InvalidInput("invalid payment_status %q", *r.PaymentStatus)
		}
		sale.PaymentStatus = *r.PaymentStatus
	}
	return nil
}

func (sc *DistributorSaleController) GetSales(c *gin.Context) {
	params, err := utils.ParseListParams(c, saleSortColumns, "sale_date", "DESC")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	q := sc.DB.WithContext(c.Request.Context()).Model(&models.DistributorSale{})

	distributorID, err := queryUint(c, "distributorId")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if distributorID != nil {
		q = q.Where("distributor_id = ?", *distributorID)
	}
	if status := c.Query("paymentStatus"); status != "" {
		if !models.IsValidSalePaymentStatus(status) {
			utils.RespondAppError(c, utils.InvalidInput("invalid paymentStatus %q", status))
			return
		}
		q = q.Where("payment_status = ?", status)
	}
	start, err := queryDate(c, "startDate")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if start != nil {
		q = q.Where("sale_date >= ?", *start)
	}
	end, err := queryDate(c, "endDate")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if end != nil {
		q = q.Where("sale_date < ?", end.Next())
	}
	if search := c.Query("search"); search != "" {
		q = q.Where("LOWER(notes) LIKE ?", likePattern(search))
	}

	var sales []models.DistributorSale
	total, err := paginate(q, params, &sales, "Distributor")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondPage(c, "Distributor sales retrieved successfully", sales, params.Meta(total))
}

func (sc *DistributorSaleController) CreateSale(c *gin.Context) {
	var req saleRequest
	if err := bindJSON(c, &req); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if req.DistributorID == nil || req.SaleDate == nil || req.TotalAmount == nil {
		utils.RespondAppError(c, utils.InvalidInput("distributor_id, sale_date and total_amount are required"))
		return
	}

	sale := models.DistributorSale{PaymentStatus: models.SalePending, ProductDetails: models.SaleProducts{}}
	err := sc.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := req.apply(tx, &sale); err != nil {
			return err
		}
		if err := tx.Omit("Distributor").Create(&sale).Error; err != nil {
			return err
		}
		return tx.Preload("Distributor").First(&sale, sale.ID).Error
	})
	if err != nil {
		utils.RespondAppError(c, utils.Persistence("create distributor sale", err))
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Distributor sale recorded successfully", sale)
}

func (sc *DistributorSaleController) GetSaleByID(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var sale models.DistributorSale
	if err := findByID(sc.DB.WithContext(c.Request.Context()).Preload("Distributor"), &sale, id, "distributor sale"); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Distributor sale retrieved successfully", sale)
}

func (sc *DistributorSaleController) UpdateSale(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var req saleRequest
	if err := bindJSON(c, &req); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var sale models.DistributorSale
	err = sc.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := findByID(tx, &sale, id, "distributor sale"); err != nil {
			return err
		}
		if err := req.apply(tx, &sale); err != nil {
			return err
		}
		if err := tx.Omit("Distributor").Save(&sale).Error; err != nil {
			return err
		}
		return tx.Preload("Distributor").First(&sale, sale.ID).Error
	})
	if err != nil {
		utils.RespondAppError(c, utils.Persistence("update distributor sale", err))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Distributor sale updated successfully", sale)
}

func (sc *DistributorSaleController) DeleteSale(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	db := sc.DB.WithContext(c.Request.Context())
	var sale models.DistributorSale
	if err := findByID(db, &sale, id, "distributor sale"); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if err := db.Delete(&sale).Error; err != nil {
		utils.RespondAppError(c, utils.Persistence("delete distributor sale", err))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Distributor sale deleted successfully", nil)
}
