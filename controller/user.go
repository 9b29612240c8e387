package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cassieopeanuts/sithtipahpreview/logic"
)

// UserController handles the operator HTTP API
type UserController struct {
	ledger *logic.LedgerLogic
	auth   *logic.AuthLogic
}

func NewUserController(ledger *logic.LedgerLogic, auth *logic.AuthLogic) *UserController {
	return &UserController{ledger: ledger, auth: auth}
}

// Login handles POST /user/login
func (c *UserController) Login(ctx *gin.Context) {
	type Request struct {
		UserID    string `json:"user_id" binding:"required"`
		Message   string `json:"message" binding:"required"`
		Signature string `json:"signature" binding:"required"`
	}
	var req Request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, expireAt, err := c.auth.Login(ctx.Request.Context(), req.UserID, req.Message, req.Signature)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user":      user,
		"token":     token,
		"expire_at": expireAt,
	})
}

// GetUser handles GET /user
func (c *UserController) GetUser(ctx *gin.Context) {
	userID, err := extractUserID(ctx)
	if err != nil {
		return
	}

	user, err := c.ledger.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, logic.ErrNotRegistered) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "user not registered"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, user)
}

// GetBalance handles GET /user/balance
func (c *UserController) GetBalance(ctx *gin.Context) {
	userID, err := extractUserID(ctx)
	if err != nil {
		return
	}

	balance, err := c.ledger.Balance(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, logic.ErrNotRegistered) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "user not registered"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"balance": balance})
}
