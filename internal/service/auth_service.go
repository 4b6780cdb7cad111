package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/medassess/stagewise/config"
	"github.com/medassess/stagewise/internal/dto"
	"github.com/medassess/stagewise/internal/model"
	"github.com/medassess/stagewise/internal/repository"
)

type AuthService interface {
	Register(req dto.RegisterRequestDTO) (*dto.UserDTO, error)
	Login(req dto.LoginRequestDTO) (*dto.AuthResponseDTO, error)
}

type authService struct {
	userRepo repository.UserRepository
	cfg      *config.Config
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) AuthService {
	return &authService{userRepo: userRepo, cfg: cfg}
}

func (s *authService) Register(req dto.RegisterRequestDTO) (*dto.UserDTO, error) {
	_, err := s.userRepo.FindByEmail(req.Email, req.Role)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("error checking existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
	}
	if err := s.userRepo.Create(&user); err != nil {
		log.Error().Err(err).Str("email", req.Email).Msg("Register: failed to create user")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	log.Info().Str("email", user.Email).Str("role", user.Role).Msg("New user registered")

	var resp dto.UserDTO
	if err := copier.Copy(&resp, &user); err != nil {
		return nil, fmt.Errorf("error preparing user response: %w", err)
	}
	return &resp, nil
}

func (s *authService) Login(req dto.LoginRequestDTO) (*dto.AuthResponseDTO, error) {
	user, err := s.userRepo.FindByEmail(req.Email, req.Role)
	if err != nil {
		// Not-found and real errors both surface as invalid credentials.
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	resp := dto.AuthResponseDTO{Token: token}
	if err := copier.Copy(&resp.User, user); err != nil {
		return nil, fmt.Errorf("error preparing login response: %w", err)
	}
	return &resp, nil
}

func (s *authService) issueToken(user *model.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  user.UserID.String(),
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(time.Duration(s.cfg.JWT.TTLHours) * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWT.Secret))
}
