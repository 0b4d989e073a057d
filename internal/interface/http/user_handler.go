package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/iwa-store/user-service/internal/application"
	"github.com/iwa-store/user-service/internal/domain/entity"
	repo "github.com/iwa-store/user-service/internal/domain/repository"
	"github.com/iwa-store/user-service/internal/interface/middleware"
	"github.com/iwa-store/user-service/pkg/response"
	"github.com/iwa-store/user-service/pkg/validation"
)

type UserHandler struct {
	Svc    *userapp.Service
	Logger *logrus.Logger
}

func NewUserHandler(svc *userapp.Service, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Phone    string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type addressRequest struct {
	Street     string `json:"street" binding:"required"`
	PostalCode string `json:"postalCode" binding:"required"`
	City       string `json:"city" binding:"required"`
	Country    string `json:"country" binding:"required"`
}

func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}

	sess, err := h.Svc.Register(c.Request.Context(), req.Email, req.Password, req.Phone)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			resp := response.Error[any](c, http.StatusConflict, "email already registered", nil)
			c.JSON(resp.Status, resp)
			return
		}
		h.Logger.WithError(err).Error("registration failed")
		resp := response.Error[any](c, http.StatusInternalServerError, "registration failed", nil)
		c.JSON(resp.Status, resp)
		return
	}
	c.JSON(http.StatusOK, response.Success(c, http.StatusOK, sess, "registered", nil))
}

// Login responds 200 with a null data payload on any credential mismatch.
// Unknown email and wrong password are indistinguishable from outside.
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}

	sess, err := h.Svc.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.Logger.WithError(err).Error("sign-in failed")
		resp := response.Error[any](c, http.StatusInternalServerError, "sign-in failed", nil)
		c.JSON(resp.Status, resp)
		return
	}
	c.JSON(http.StatusOK, response.Success(c, http.StatusOK, sess, "login", nil))
}

func (h *UserHandler) AddAddress(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}

	u, err := h.Svc.AddAddress(c.Request.Context(), uid, entity.Address{
		Street:     req.Street,
		PostalCode: req.PostalCode,
		City:       req.City,
		Country:    req.Country,
	})
	if err != nil {
		if errors.Is(err, userapp.ErrUserNotFound) {
			resp := response.Error[any](c, http.StatusNotFound, "user not found", nil)
			c.JSON(resp.Status, resp)
			return
		}
		h.Logger.WithError(err).WithField("user_id", uid).Error("add address failed")
		resp := response.Error[any](c, http.StatusInternalServerError, "add address failed", nil)
		c.JSON(resp.Status, resp)
		return
	}
	c.JSON(http.StatusOK, response.Success(c, http.StatusOK, u, "address added", nil))
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	u, err := h.Svc.GetProfile(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, userapp.ErrUserNotFound) {
			resp := response.Error[any](c, http.StatusNotFound, "user not found", nil)
			c.JSON(resp.Status, resp)
			return
		}
		h.Logger.WithError(err).WithField("user_id", uid).Error("get profile failed")
		resp := response.Error[any](c, http.StatusInternalServerError, "get profile failed", nil)
		c.JSON(resp.Status, resp)
		return
	}
	c.JSON(http.StatusOK, response.Success(c, http.StatusOK, u, "profile", nil))
}

func (h *UserHandler) GetWishlist(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	items, err := h.Svc.GetWishlist(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, userapp.ErrUserNotFound) {
			resp := response.Error[any](c, http.StatusNotFound, "user not found", nil)
			c.JSON(resp.Status, resp)
			return
		}
		h.Logger.WithError(err).WithField("user_id", uid).Error("get wishlist failed")
		resp := response.Error[any](c, http.StatusInternalServerError, "get wishlist failed", nil)
		c.JSON(resp.Status, resp)
		return
	}
	c.JSON(http.StatusOK, response.Success(c, http.StatusOK, items, "wishlist", nil))
}

func (h *UserHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"msg": "OK"})
}

func (h *UserHandler) WhoAmI(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"msg": "/user : I am the Users Service"})
}
