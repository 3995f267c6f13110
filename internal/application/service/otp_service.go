package service

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/sangkips/tableorder-api/internal/config"
	"github.com/sangkips/tableorder-api/internal/domain/entity"
	"github.com/sangkips/tableorder-api/internal/domain/repository"
	"github.com/sangkips/tableorder-api/pkg/apperror"
	"github.com/sangkips/tableorder-api/pkg/ratelimit"
	"github.com/sangkips/tableorder-api/pkg/utils"
)

const otpLength = 6

// OTPService verifies diners by phone and opens table sessions
type OTPService struct {
	otpStore     repository.OTPStore
	customerRepo repository.CustomerRepository
	settings     SettingsProvider
	jwtManager   *utils.JWTManager
	limiter      *ratelimit.KeyedLimiter
	ttl          time.Duration
	maxAttempts  int
	maxTables    int
	logCodes     bool
	generate     func() (string, error)
	now          func() time.Time
}

// NewOTPService creates a new OTP service. Codes are written to the log when
// logCodes is set, since no SMS provider is wired.
func NewOTPService(
	otpStore repository.OTPStore,
	customerRepo repository.CustomerRepository,
	settings SettingsProvider,
	jwtManager *utils.JWTManager,
	limiter *ratelimit.KeyedLimiter,
	cfg config.OTPConfig,
	maxTables int,
	logCodes bool,
) *OTPService {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 5
	}
	if maxTables < 1 || maxTables > maxTablesCap {
		maxTables = maxTablesCap
	}
	return &OTPService{
		otpStore:     otpStore,
		customerRepo: customerRepo,
		settings:     settings,
		jwtManager:   jwtManager,
		limiter:      limiter,
		ttl:          cfg.TTL,
		maxAttempts:  maxAttempts,
		maxTables:    maxTables,
		logCodes:     logCodes,
		generate:     func() (string, error) { return utils.GenerateOTP(otpLength) },
		now:          time.Now,
	}
}

// SendOTPOutput tells the diner how long the code stays valid
type SendOTPOutput struct {
	Phone     string    `json:"phone"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SendOTP issues a new code for a phone at a table, replacing any pending one
func (s *OTPService) SendOTP(ctx context.Context, phone string, tableNumber int) (*SendOTPOutput, error) {
	phone = strings.TrimSpace(phone)
	if err := s.validatePhoneAndTable(ctx, phone, tableNumber); err != nil {
		return nil, err
	}
	if !s.limiter.Allow(phone) {
		return nil, apperror.ErrTooManyRequests
	}

	code, err := s.generate()
	if err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(code)
	if err != nil {
		return nil, err
	}

	expiresAt := s.now().Add(s.ttl)
	challenge := &repository.OTPChallenge{
		CodeHash:    hash,
		TableNumber: tableNumber,
		ExpiresAt:   expiresAt,
	}
	if err := s.otpStore.Save(ctx, phone, challenge, s.ttl); err != nil {
		return nil, err
	}

	if s.logCodes {
		log.Printf("OTP for %s at table %d: %s", phone, tableNumber, code)
	}

	return &SendOTPOutput{Phone: phone, ExpiresAt: expiresAt}, nil
}

// TableSession is the result of a successful phone verification
type TableSession struct {
	Token       string           `json:"token"`
	ExpiresAt   time.Time        `json:"expiresAt"`
	SessionID   string           `json:"sessionId"`
	TableNumber int              `json:"tableNumber"`
	Customer    *entity.Customer `json:"customer"`
}

// VerifyOTP checks the code and returns a table session token. A table number
// of zero means the table the code was sent for.
func (s *OTPService) VerifyOTP(ctx context.Context, phone, code string, tableNumber int) (*TableSession, error) {
	phone = strings.TrimSpace(phone)
	code = strings.TrimSpace(code)
	if !utils.IsValidPhone(phone) {
		return nil, apperror.NewFieldError("phone", "Please enter a valid 10-digit mobile number")
	}
	if len(code) != otpLength {
		return nil, apperror.NewFieldError("code", "must be 6 digits")
	}

	challenge, err := s.otpStore.Get(ctx, phone)
	if errors.Is(err, repository.ErrCacheMiss) {
		return nil, apperror.NewUnprocessableError("OTP expired or not found")
	}
	if err != nil {
		return nil, err
	}
	if !s.now().Before(challenge.ExpiresAt) {
		_ = s.otpStore.Delete(ctx, phone)
		return nil, apperror.NewUnprocessableError("OTP expired")
	}
	if challenge.Attempts >= s.maxAttempts {
		_ = s.otpStore.Delete(ctx, phone)
		return nil, apperror.NewAppError(apperror.ErrTooManyRequests.Code, "Too many incorrect attempts, request a new OTP")
	}
	if tableNumber == 0 {
		tableNumber = challenge.TableNumber
	}
	if tableNumber != challenge.TableNumber {
		return nil, apperror.NewFieldError("tableNumber", "does not match the table the OTP was sent for")
	}

	if !utils.CheckPasswordHash(code, challenge.CodeHash) {
		attempts, err := s.otpStore.IncrementAttempts(ctx, phone)
		if err != nil && !errors.Is(err, repository.ErrCacheMiss) {
			return nil, err
		}
		if attempts >= s.maxAttempts {
			_ = s.otpStore.Delete(ctx, phone)
		}
		return nil, apperror.NewUnprocessableError("Invalid OTP")
	}

	if err := s.otpStore.Delete(ctx, phone); err != nil {
		log.Printf("failed to clear OTP for %s: %v", phone, err)
	}

	now := s.now()
	customer := &entity.Customer{
		Phone:           phone,
		LastTableNumber: &tableNumber,
		VerifiedAt:      &now,
	}
	if err := s.customerRepo.Upsert(ctx, customer); err != nil {
		return nil, err
	}

	sessionID := entity.SessionIDFor(phone, tableNumber)
	token, expiresAt, err := s.jwtManager.GenerateSessionToken(phone, tableNumber, sessionID)
	if err != nil {
		return nil, err
	}

	return &TableSession{
		Token:       token,
		ExpiresAt:   expiresAt,
		SessionID:   sessionID,
		TableNumber: tableNumber,
		Customer:    customer,
	}, nil
}

func (s *OTPService) validatePhoneAndTable(ctx context.Context, phone string, tableNumber int) error {
	if !utils.IsValidPhone(phone) {
		return apperror.NewFieldError("phone", "Please enter a valid 10-digit mobile number")
	}

	tables := s.maxTables
	if snapshot, err := s.settings.Snapshot(ctx); err == nil && snapshot.Restaurant.NumberOfTables < tables {
		tables = snapshot.Restaurant.NumberOfTables
	}
	if tableNumber < 1 || tableNumber > tables {
		return apperror.NewFieldError("tableNumber", "must be between 1 and "+strconv.Itoa(tables))
	}
	return nil
}
