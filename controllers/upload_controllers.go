package controllers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/SteveKibs/cake-backend-app/models"
	"github.com/SteveKibs/cake-backend-app/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	maxImageSize = 5 << 20
	// URL prefix the upload directory is served under.
	ImageURLPrefix = "/uploads/cakes"
)

var allowedImageExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true}

type UploadController struct {
	DB            *gorm.DB
	UploadDir     string
	PublicBaseURL string
}

func NewUploadController(db *gorm.DB, uploadDir, publicBaseURL string) *UploadController {
	return &UploadController{DB: db, UploadDir: uploadDir, PublicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

// UploadImage stores a cake image from the cakeImage form field. When cake_id
// is sent the cake's image_url is updated as well.
func (uc *UploadController) UploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageSize+(1<<20))

	file, err := c.FormFile("cakeImage")
	if err != nil {
		utils.RespondAppError(c, utils.InvalidInput("cakeImage file is required"))
		return
	}
	if file.Size > maxImageSize {
		utils.RespondAppError(c, utils.InvalidInput("image must be at most 5 MB"))
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExt[ext] {
		utils.RespondAppError(c, utils.InvalidInput("only jpg, jpeg, png and gif images are allowed"))
		return
	}

	var cake *models.Cake
	db := uc.DB.WithContext(c.Request.Context())
	if v := c.PostForm("cake_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil || id == 0 {
			utils.RespondAppError(c, utils.InvalidInput("invalid cake_id"))
			return
		}
		cake = &models.Cake{}
		if err := findByID(db, cake, uint(id), "cake"); err != nil {
			utils.RespondAppError(c, err)
			return
		}
	}

	if err := os.MkdirAll(uc.UploadDir, 0o755); err != nil {
		utils.RespondAppError(c, fmt.Errorf("creating upload directory: %w", err))
		return
	}
	filename := uuid.NewString() + ext
	if err := c.SaveUploadedFile(file, filepath.Join(uc.UploadDir, filename)); err != nil {
		utils.RespondAppError(c, fmt.Errorf("saving image: %w", err))
		return
	}
	imageURL := fmt.Sprintf("%s%s/%s", uc.PublicBaseURL, ImageURLPrefix, filename)

	if cake != nil {
		if err := db.Model(cake).Update("image_url", imageURL).Error; err != nil {
			os.Remove(filepath.Join(uc.UploadDir, filename))
			utils.RespondAppError(c, utils.Persistence("attach image", err))
			return
		}
	}

	utils.InfoLogger.Printf("Image uploaded: %s", filename)
	utils.RespondJSON(c, http.StatusCreated, "Image uploaded successfully", gin.H{
		"imageUrl": imageURL,
	})
}
