package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/SteveKibs/cake-backend-app/models"
	"github.com/SteveKibs/cake-backend-app/utils"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var userSortColumns = map[string]string{
	"username":   "users.username",
	"email":      "users.email",
	"role":       "users.role",
	"created_at": "users.created_at",
}

type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

// ensureUniqueUser rejects a username or email already held by another user.
func ensureUniqueUser(db *gorm.DB, username, email string, exceptID uint) error {
	if username != "" {
		taken, err := exists(db, &models.User{}, "username = ? AND id <> ?", username, exceptID)
		if err != nil {
			return err
		}
		if taken {
			return utils.Conflict("username %q is already taken", username)
		}
	}
	if email != "" {
		taken, err := exists(db, &models.User{}, "email = ? AND id <> ?", email, exceptID)
		if err != nil {
			return err
		}
		if taken {
			return utils.Conflict("email %q is already registered", email)
		}
	}
	return nil
}

// Register creates a driver or distributor account, a driver when no role is
// given. Admin accounts are seeded with the migrate command or promoted by an
// existing admin.
func (uc *UserController) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required,alphanum,min=3,max=30"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		Role     string `json:"role" binding:"omitempty,oneof=driver distributor"`
	}
	if err := bindJSON(c, &req); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if req.Role == "" {
		req.Role = models.RoleDriver
	}
	email := strings.ToLower(req.Email)

	db := uc.DB.WithContext(c.Request.Context())
	if err := ensureUniqueUser(db, req.Username, email, 0); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	user := models.User{
		Username:     req.Username,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         req.Role,
	}
	if err := db.Create(&user).Error; err != nil {
		utils.RespondAppError(c, utils.Persistence("register user", err))
		return
	}

	utils.InfoLogger.Printf("New user registered: %s (role=%s)", user.Username, user.Role)
	utils.RespondJSON(c, http.StatusCreated, "User registered successfully", user)
}

// Login exchanges a username (or email) and password for a JWT.
func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := bindJSON(c, &input); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	invalid := utils.Unauthorized("invalid credentials")
	var user models.User
	err := uc.DB.WithContext(c.Request.Context()).
		Where("username = ? OR email = ?", input.Username, strings.ToLower(input.Username)).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondAppError(c, invalid)
			return
		}
		utils.RespondAppError(c, utils.Persistence("login", err))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		utils.RespondAppError(c, invalid)
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.InfoLogger.Printf("Login successful for user: %s, role: %s", user.Username, user.Role)
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token": token,
		"user":  user,
	})
}

// Logout revokes the presented token until it would have expired.
func (uc *UserController) Logout(c *gin.Context) {
	token := c.GetString("token")
	var expiry time.Time
	if v, ok := c.Get("claims"); ok {
		if claims, ok := v.(*utils.CustomClaims); ok && claims.ExpiresAt != nil {
			expiry = claims.ExpiresAt.Time
		}
	}
	utils.BlacklistToken(token, expiry)
	utils.RespondJSON(c, http.StatusOK, "Logout successful", nil)
}

// GetProfile returns the authenticated user.
func (uc *UserController) GetProfile(c *gin.Context) {
	userID, ok := c.Get("user_id")
	id, isUint := userID.(uint)
	if !ok || !isUint {
		utils.RespondAppError(c, utils.Unauthorized("user id not found in context"))
		return
	}
	var user models.User
	if err := findByID(uc.DB.WithContext(c.Request.Context()), &user, id, "user"); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User profile retrieved", user)
}

func (uc *UserController) GetUsers(c *gin.Context) {
	params, err := utils.ParseListParams(c, userSortColumns, "created_at", "DESC")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	q := uc.DB.WithContext(c.Request.Context()).Model(&models.User{})
	if role := c.Query("role"); role != "" {
		if !models.IsValidRole(role) {
			utils.RespondAppError(c, utils.InvalidInput("invalid role %q", role))
			return
		}
		q = q.Where("role = ?", role)
	}
	if search := c.Query("search"); search != "" {
		pattern := likePattern(search)
		q = q.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}

	var users []models.User
	total, err := paginate(q, params, &users)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondPage(c, "Users retrieved successfully", users, params.Meta(total))
}

func (uc *UserController) GetUserByID(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var user models.User
	if err := findByID(uc.DB.WithContext(c.Request.Context()), &user, id, "user"); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User retrieved successfully", user)
}

func (uc *UserController) UpdateUser(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var req struct {
		Username *string `json:"username" binding:"omitempty,alphanum,min=3,max=30"`
		Email    *string `json:"email" binding:"omitempty,email"`
		Role     *string `json:"role" binding:"omitempty,oneof=admin driver distributor"`
	}
	if err := bindJSON(c, &req); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	db := uc.DB.WithContext(c.Request.Context())
	var user models.User
	if err := findByID(db, &user, id, "user"); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var newName, newEmail string
	if req.Username != nil {
		newName = *req.Username
	}
	if req.Email != nil {
		newEmail = strings.ToLower(*req.Email)
	}
	if err := ensureUniqueUser(db, newName, newEmail, id); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if newName != "" {
		user.Username = newName
	}
	if newEmail != "" {
		user.Email = newEmail
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if err := db.Save(&user).Error; err != nil {
		utils.RespondAppError(c, utils.Persistence("update user", err))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User updated successfully", user)
}

func (uc *UserController) DeleteUser(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if current, ok := c.Get("user_id"); ok && current == id {
		utils.RespondAppError(c, utils.InvalidInput("you cannot delete your own account"))
		return
	}

	db := uc.DB.WithContext(c.Request.Context())
	var user models.User
	if err := findByID(db, &user, id, "user"); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if err := db.Delete(&user).Error; err != nil {
		utils.RespondAppError(c, utils.Persistence("delete user", err))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "User deleted successfully", nil)
}
