package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/yeremiapane/drivethru-app/config"
	"github.com/yeremiapane/drivethru-app/database"
	"github.com/yeremiapane/drivethru-app/models"
	"github.com/yeremiapane/drivethru-app/services"
	"github.com/yeremiapane/drivethru-app/utils"
)

type AdminController struct {
	Config  *config.Config
	Tokens  *utils.TokenManager
	Journal *database.Journal
	Orders  *services.OrderService
}

func NewAdminController(cfg *config.Config, tokens *utils.TokenManager, journal *database.Journal, orders *services.OrderService) *AdminController {
	return &AdminController{Config: cfg, Tokens: tokens, Journal: journal, Orders: orders}
}

func (ac *AdminController) admin() models.Admin {
	return models.Admin{
		Username:     ac.Config.AdminUsername,
		PasswordHash: ac.Config.AdminPasswordHash,
		Role:         models.RoleAdmin,
	}
}

// Login -> bcrypt check, returns a bearer token
func (ac *AdminController) Login(c *gin.Context) {
	type request struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if !ac.Config.AdminEnabled() {
		utils.RespondError(c, http.StatusServiceUnavailable, errors.New("Admin access is not configured"))
		return
	}

	admin := ac.admin()
	if req.Username != admin.Username ||
		bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)) != nil {
		utils.InfoLogger.WithField("username", req.Username).Warn("Failed admin login")
		utils.RespondError(c, http.StatusUnauthorized, errors.New("Invalid username or password"))
		return
	}

	token, expiresAt, err := ac.Tokens.GenerateToken(admin.Username, admin.Role)
	if err != nil {
		_ = c.Error(err)
		return
	}

	utils.InfoLogger.WithField("username", admin.Username).Info("Admin logged in")
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"expires_at":   expiresAt,
	})
}

// GetJournal -> recent order events, or one order's lifecycle with ?order_id=
func (ac *AdminController) GetJournal(c *gin.Context) {
	if ac.Journal == nil {
		utils.RespondJSON(c, http.StatusOK, "Journal is disabled", []models.OrderEvent{})
		return
	}

	if raw := c.Query("order_id"); raw != "" {
		orderID, err := strconv.Atoi(raw)
		if err != nil {
			_ = c.Error(utils.Invalid("Invalid order number format"))
			return
		}
		events, err := ac.Journal.ForOrder(c.Request.Context(), orderID)
		if err != nil {
			_ = c.Error(err)
			return
		}
		utils.RespondJSON(c, http.StatusOK, "Order journal", events)
		return
	}

	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	events, err := ac.Journal.Recent(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order journal", events)
}

func (ac *AdminController) GetConfig(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Configuration", ac.Config.Summary())
}

// ClearOrders -> drop every order and restart numbering
func (ac *AdminController) ClearOrders(c *gin.Context) {
	ac.Orders.Reset(c.Request.Context())
	utils.InfoLogger.WithField("username", c.GetString("username")).Warn("Order store cleared by admin")
	utils.RespondJSON(c, http.StatusOK, "All orders cleared", ac.Orders.Stats())
}
