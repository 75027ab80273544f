package services

import (
	"context"
	"errors"
	"strings"

	"cinecore/internal/apperr"
	"cinecore/internal/logging"
	"cinecore/internal/models"
	"cinecore/internal/utils"

	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"
)

type RegisterInput struct {
	Username  string `json:"username" binding:"required,max=150"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Password2 string `json:"password2" binding:"required,eqfield=Password"`
}

type AccountService struct {
	db  *gorm.DB
	log hclog.Logger
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db, log: logging.L("accounts")}
}

// Register creates a user with a bcrypt-hashed password. Input shape is
// checked by the binding tags on RegisterInput.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, apperr.Validation("username", "may not be blank")
	}
	email := utils.NormalizeEmail(in.Email)

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}
	user := models.User{Username: username, Email: email, Password: hash}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isDuplicate(err) {
			return nil, apperr.Conflict("username or email already registered")
		}
		return nil, apperr.Internal("create user", err)
	}
	s.log.Info("user registered", "user_id", user.ID, "username", user.Username)
	return &user, nil
}

// Authenticate checks a username/password pair. Unknown users and wrong
// passwords fail the same way.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Internal("load user", err)
	}
	if err != nil || !utils.CheckPasswordHash(password, user.Password) {
		return nil, apperr.Unauthorized("invalid username or password")
	}
	return &user, nil
}

func (s *AccountService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, lookupErr(err, "user", "user")
	}
	return &user, nil
}
