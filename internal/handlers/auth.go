package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"creatorboosta/internal/ledger"
	"creatorboosta/internal/models"
)

// AuthHandler owns registration, login and the current-user endpoint.
type AuthHandler struct {
	DB        *sqlx.DB
	Ledger    *ledger.Service
	Notifier  *Notifier
	JwtSecret string
	Log       *logrus.Logger
}

func NewAuthHandler(db *sqlx.DB, ldg *ledger.Service, notifier *Notifier, jwtSecret string, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{DB: db, Ledger: ldg, Notifier: notifier, JwtSecret: jwtSecret, Log: log}
}

type RegisterRequest struct {
	Username         string `json:"username" binding:"required,min=3,max=32"`
	Email            string `json:"email" binding:"required,email"`
	Password         string `json:"password" binding:"required,min=8"`
	SecurityQuestion string `json:"security_question" binding:"required"`
	SecurityAnswer   string `json:"security_answer" binding:"required"`
	Language         string `json:"language" binding:"omitempty,oneof=tr en"`
	// ReferredBy is the username of the account whose referral link
	// brought this user in.
	ReferredBy string `json:"referred_by"`
}

// Register creates an account with the signup bonus already on it and
// returns a token plus the user, so the client can log in immediately.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "Invalid request: " + err.Error()})
		return
	}
	if req.Language == "" {
		req.Language = "tr"
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.Log.WithError(err).Error("password hashing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "message": "Server error, please try again."})
		return
	}
	answerHash, err := bcrypt.GenerateFromPassword([]byte(strings.ToLower(strings.TrimSpace(req.SecurityAnswer))), bcrypt.DefaultCost)
	if err != nil {
		h.Log.WithError(err).Error("security answer hashing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "message": "Server error, please try again."})
		return
	}

	// Resolve the referrer before creating anything; a bogus code is
	// ignored rather than blocking the signup.
	var referrerID sql.NullString
	if req.ReferredBy != "" {
		var id string
		err := h.DB.GetContext(c.Request.Context(), &id, `SELECT id FROM users WHERE username = $1`, req.ReferredBy)
		if err == nil {
			referrerID = sql.NullString{String: id, Valid: true}
		} else if !errors.Is(err, sql.ErrNoRows) {
			h.Log.WithError(err).Error("referrer lookup failed")
		}
	}

	var user models.User
	query := `
		INSERT INTO users (id, username, email, password_hash, security_question, security_answer_hash,
		                   role, credits, vip_package, language, referred_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 'user', $7, 'none', $8, $9, now(), now())
		RETURNING *`
	err = h.DB.GetContext(c.Request.Context(), &user, query,
		uuid.NewString(), req.Username, req.Email, string(passwordHash),
		req.SecurityQuestion, string(answerHash), ledger.SignupBonusCredits, req.Language, referrerID)
	if err != nil {
		// Unique violations on username or email land here.
		h.Log.WithError(err).Info("registration rejected")
		c.JSON(http.StatusConflict, gin.H{"error": "conflict", "message": "Username or email already exists."})
		return
	}

	h.Notifier.Send(c.Request.Context(), user.ID, models.NotifCreditsEarned,
		"Hoş Geldiniz!", "Welcome!",
		"CreatorBoosta'ya hoş geldiniz! 10 bonus kredi kazandınız.",
		"Welcome to CreatorBoosta! You earned 10 bonus credits.")

	if referrerID.Valid {
		if _, err := h.Ledger.GrantReferral(c.Request.Context(), referrerID.String); err != nil {
			h.Log.WithError(err).Error("referral grant failed")
		} else {
			h.Notifier.Send(c.Request.Context(), referrerID.String, models.NotifCreditsEarned,
				"Davet Ödülü!", "Referral Reward!",
				"Davet ettiğiniz kullanıcı katıldı, 20 kredi kazandınız!",
				"A user you invited joined, you earned 20 credits!")
		}
	}

	token, err := h.createJWT(user)
	if err != nil {
		h.Log.WithError(err).Error("failed to create JWT")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "message": "Server error, please try again."})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"access_token": token, "token_type": "bearer", "user": user})
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "Invalid request: " + err.Error()})
		return
	}

	var user models.User
	err := h.DB.GetContext(c.Request.Context(), &user, `SELECT * FROM users WHERE username = $1`, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": "Invalid username or password."})
			return
		}
		h.Log.WithError(err).Error("database error on login")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "message": "Server error, please try again."})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": "Invalid username or password."})
		return
	}

	token, err := h.createJWT(user)
	if err != nil {
		h.Log.WithError(err).Error("failed to create JWT")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error", "message": "Server error, please try again."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer", "user": user})
}

// Me returns the authenticated account, including the live credit
// balance the client renders everywhere.
func (h *AuthHandler) Me(c *gin.Context) {
	var user models.User
	err := h.DB.GetContext(c.Request.Context(), &user, `SELECT * FROM users WHERE id = $1`, currentUserID(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "message": "Account not found."})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) createJWT(user models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(time.Hour * 24 * 7).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.JwtSecret))
}
