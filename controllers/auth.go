package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"eqcoach/db"
	"eqcoach/models"
	"eqcoach/structs"
	"eqcoach/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type AuthController struct {
	users UserStore
	log   *zap.Logger
}

func NewAuthController(users UserStore, log *zap.Logger) *AuthController {
	return &AuthController{users: users, log: log}
}

func (a *AuthController) SignUp(ctx *gin.Context) {
	var request structs.SignUpRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		badRequest(ctx, err)
		return
	}
	email := strings.ToLower(strings.TrimSpace(request.Email))

	hash, err := utils.HashPassword(request.Password)
	if err != nil {
		respondError(ctx, a.log, err)
		return
	}
	displayName := strings.TrimSpace(request.DisplayName)
	if displayName == "" {
		displayName = utils.ExtractNameFromEmail(email)
	}
	user := &models.User{Email: email, DisplayName: displayName, PasswordHash: hash}

	if err := a.users.CreateUser(ctx.Request.Context(), user); err != nil {
		if errors.Is(err, db.ErrUserExists) {
			ctx.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
			return
		}
		respondError(ctx, a.log, err)
		return
	}

	a.issueToken(ctx, http.StatusCreated, user, "Sign-up successful")
}

func (a *AuthController) Login(ctx *gin.Context) {
	var request structs.LoginRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		badRequest(ctx, err)
		return
	}
	email := strings.ToLower(strings.TrimSpace(request.Email))

	user, err := a.users.FindUserByEmail(ctx.Request.Context(), email)
	if err != nil && !errors.Is(err, db.ErrUserNotFound) {
		respondError(ctx, a.log, err)
		return
	}
	if user == nil || !utils.CheckPasswordHash(request.Password, user.PasswordHash) {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	a.issueToken(ctx, http.StatusOK, user, "Sign-in successful")
}

func (a *AuthController) issueToken(ctx *gin.Context, status int, user *models.User, message string) {
	token, err := utils.GenerateJWTToken(user.ID.Hex(), user.Email)
	if err != nil {
		respondError(ctx, a.log, err)
		return
	}
	ctx.JSON(status, gin.H{"message": message, "accessToken": token, "user": user})
}
