package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go-retail-backoffice/internal/model"
	"go-retail-backoffice/internal/repository"
	"go-retail-backoffice/pkg/jwt"
	"go-retail-backoffice/pkg/mailer"
	"go-retail-backoffice/pkg/validator"
)

const otpTTL = 5 * time.Minute

type AuthService interface {
	Register(email, password string) error
	// Login checks credentials, then stores and mails a one-time code.
	Login(ctx context.Context, email, password string) error
	// VerifyOTP exchanges a valid code for a signed JWT.
	VerifyOTP(ctx context.Context, email, otp string) (string, error)
}

type authService struct {
	userRepo repository.UserRepository
	otpStore repository.OTPStore
	mail     mailer.Mailer
}

func NewAuthService(userRepo repository.UserRepository, otpStore repository.OTPStore, mail mailer.Mailer) AuthService {
	return &authService{
		userRepo: userRepo,
		otpStore: otpStore,
		mail:     mail,
	}
}

func (s *authService) Register(email, password string) error {
	if password == "" {
		return fmt.Errorf("%w: password is required", ErrValidation)
	}

	user := &model.User{Email: email}
	if errs := validator.ValidateStruct(user); len(errs) > 0 {
		return fmt.Errorf("%w: field '%s' failed on tag '%s'", ErrValidation, errs[0].FailedField, errs[0].Tag)
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	if err := user.SetPassword(password); err != nil {
		return err
	}
	return s.userRepo.Create(user)
}

func (s *authService) Login(ctx context.Context, email, password string) error {
	user, err := s.userRepo.FindByEmail(email)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvalidCredentials
	}
	if err != nil {
		return err
	}
	if !user.CheckPassword(password) {
		return ErrInvalidCredentials
	}

	otp, err := generateOTP()
	if err != nil {
		return err
	}
	if err := s.otpStore.Set(ctx, email, otp, otpTTL); err != nil {
		return err
	}

	return s.mail.Send(user.Email, "Your OTP Code", fmt.Sprintf("Your OTP is %s", otp))
}

func (s *authService) VerifyOTP(ctx context.Context, email, otp string) (string, error) {
	user, err := s.userRepo.FindByEmail(email)
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrInvalidOTP
	}
	if err != nil {
		return "", err
	}

	stored, err := s.otpStore.Get(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrInvalidOTP
	}
	if err != nil {
		return "", err
	}
	if stored != otp {
		return "", ErrInvalidOTP
	}

	// Single use.
	if err := s.otpStore.Delete(ctx, email); err != nil {
		return "", err
	}

	return jwt.GenerateToken(user.ID, user.Email)
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
