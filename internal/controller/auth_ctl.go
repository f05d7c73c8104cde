package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront_sync_v1_202608/internal/middleware"
	"storefront_sync_v1_202608/internal/service"
)

// AuthController 登录与 OAuth 回调
type AuthController struct {
	authService *service.AuthService
	catalog     *service.CatalogService
	username    string
	password    string
}

// NewAuthController 创建授权控制器
func NewAuthController(authService *service.AuthService, catalog *service.CatalogService, username, password string) *AuthController {
	return &AuthController{
		authService: authService,
		catalog:     catalog,
		username:    username,
		password:    password,
	}
}

// loginRequest 登录请求体
type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 控制台登录
// @Summary 控制台登录，签发 JWT
// @Tags Auth (授权模块)
// @Accept json
// @Produce json
// @Param body body loginRequest true "登录信息"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /api/auth/login [post]
func (ctrl *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 400, "message": "用户名和密码必填"})
		return
	}

	if req.Username != ctrl.username || req.Password != ctrl.password {
		c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "用户名或密码错误"})
		return
	}

	token, err := middleware.GenerateAccessToken(req.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "message": "Token 签发失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "登录成功",
		"data":    gin.H{"token": token},
	})
}

// Callback 处理平台 OAuth 回调
// @Summary OAuth 回调，授权码换 Token 并落库
// @Tags Auth (授权模块)
// @Produce json
// @Param code query string false "授权码"
// @Param state query string false "防 CSRF state"
// @Param error query string false "授权方错误"
// @Param platform query string false "平台 id"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/oauth/callback [get]
func (ctrl *AuthController) Callback(c *gin.Context) {
	params := service.CallbackParams{
		Code:     c.Query("code"),
		State:    c.Query("state"),
		Error:    c.Query("error"),
		Platform: c.Query("platform"),
	}

	result, err := ctrl.authService.HandleCallback(c.Request.Context(), params)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrAuthorization) {
			status = http.StatusUnauthorized
		}
		c.JSON(status, gin.H{
			"code":    status,
			"message": "Failed to connect to " + result.PlatformName,
			"detail":  err.Error(),
		})
		return
	}

	ctrl.catalog.MarkConnected(result.PlatformID)

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "Successfully connected to " + result.PlatformName,
		"data":    result,
	})
}
