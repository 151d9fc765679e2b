package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gym_backend/internal/models"
	"gym_backend/internal/repositories"
	"gym_backend/internal/validation"
	"gym_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

// --- Custom Service Errors for Auth ---
var (
	ErrInvalidCredentials    = errors.New("invalid username or password")
	ErrUsernameTaken         = errors.New("username already taken")
	ErrMemberNotRegistered   = errors.New("no member registered with this email and phone number")
	ErrAccountAlreadyCreated = errors.New("account already created")
	ErrSessionRevoked        = errors.New("session no longer valid")
	ErrTokenGeneration       = errors.New("failed to generate token")
)

// --- Auth DTOs ---

// SignupRequest attaches portal credentials to a member record created by an admin.
type SignupRequest struct {
	Email           string `json:"email" binding:"required,email"`
	PhoneNumber     string `json:"phone_number" binding:"required,phone"`
	Username        string `json:"username" binding:"required,min=3,max=40,alphanum"`
	Password        string `json:"password" binding:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
}

// --- AuthService Interface ---
type AuthService interface {
	AdminLogin(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error)
	MemberLogin(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error)
	Signup(ctx context.Context, req SignupRequest) (*models.Member, error)
	VerifySession(ctx context.Context, session *models.Session) error
	EnsureAdmin(ctx context.Context, username, password string) (bool, error)
}

// --- authService Implementation ---
type authService struct {
	authRepo    repositories.AuthRepository
	memberRepo  repositories.MemberRepository
	tx          repositories.TxRunner
	tokens      *utils.TokenManager
	phoneRegion string
	bcryptCost  int
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(authRepo repositories.AuthRepository, memberRepo repositories.MemberRepository, tx repositories.TxRunner, tokens *utils.TokenManager, phoneRegion string) AuthService {
	return &authService{
		authRepo:    authRepo,
		memberRepo:  memberRepo,
		tx:          tx,
		tokens:      tokens,
		phoneRegion: phoneRegion,
		bcryptCost:  bcrypt.DefaultCost,
	}
}

func (s *authService) issue(userID int64, username, displayName, role string) (*models.LoginResponse, error) {
	token, expiresAt, err := s.tokens.Generate(userID, username, displayName, role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	return &models.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Session: models.Session{
			UserID:      userID,
			Username:    username,
			DisplayName: displayName,
			Role:        role,
			ExpiresAt:   expiresAt,
		},
	}, nil
}

func (s *authService) AdminLogin(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error) {
	if err := validation.Struct(&creds); err != nil {
		return nil, err
	}
	admin, err := s.authRepo.FindAdminByUsername(ctx, strings.TrimSpace(creds.Username))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	utils.LogInfo("Admin logged in", map[string]interface{}{"admin_id": admin.ID})
	return s.issue(admin.ID, admin.Username, admin.Username, utils.RoleAdmin)
}

func (s *authService) MemberLogin(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error) {
	if err := validation.Struct(&creds); err != nil {
		return nil, err
	}
	member, err := s.memberRepo.GetMemberByUsername(ctx, strings.TrimSpace(creds.Username))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if member.PasswordHash == nil || bcrypt.CompareHashAndPassword([]byte(*member.PasswordHash), []byte(creds.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(member.ID, *member.Username, member.FullName, utils.RoleMember)
}

// Signup succeeds at most once per member record: credentials are attached with a
// conditional update that only matches while the member has no username.
func (s *authService) Signup(ctx context.Context, req SignupRequest) (*models.Member, error) {
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}
	username := strings.TrimSpace(req.Username)

	phone, err := utils.NormalizePhone(req.PhoneNumber, s.phoneRegion)
	if err != nil {
		return nil, ErrMemberNotRegistered
	}
	member, err := s.memberRepo.GetMemberByEmailAndPhone(ctx, utils.NormalizeEmail(req.Email), phone)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMemberNotRegistered
		}
		return nil, err
	}
	if member.HasAccount() {
		return nil, ErrAccountAlreadyCreated
	}

	if _, err := s.memberRepo.GetMemberByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.memberRepo.AttachCredentials(ctx, exec, member.ID, username, string(hash))
	})
	switch {
	case err == nil:
	case errors.Is(err, repositories.ErrConflict):
		return nil, ErrAccountAlreadyCreated
	case repositories.IsConstraint(err, repositories.ConstraintMemberUsername):
		return nil, ErrUsernameTaken
	default:
		return nil, err
	}

	hashStr := string(hash)
	member.Username = &username
	member.PasswordHash = &hashStr
	utils.LogInfo("Member account created", map[string]interface{}{"member_id": member.ID})
	return member, nil
}

// VerifySession checks that the principal behind a valid token still exists.
func (s *authService) VerifySession(ctx context.Context, session *models.Session) error {
	switch session.Role {
	case utils.RoleAdmin:
		admin, err := s.authRepo.FindAdminByID(ctx, session.UserID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrSessionRevoked
			}
			return err
		}
		if admin.Username != session.Username {
			return ErrSessionRevoked
		}
	case utils.RoleMember:
		member, err := s.memberRepo.GetMemberByID(ctx, session.UserID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrSessionRevoked
			}
			return err
		}
		if !member.HasAccount() || *member.Username != session.Username {
			return ErrSessionRevoked
		}
	default:
		return ErrSessionRevoked
	}
	return nil
}

// EnsureAdmin creates the bootstrap admin when no admin exists. It reports whether one was created.
func (s *authService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	count, err := s.authRepo.CountAdmins(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if strings.TrimSpace(username) == "" || len(password) < 8 {
		return false, errors.New("no admin account exists: set ADMIN_USERNAME and an ADMIN_PASSWORD of at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return false, fmt.Errorf("hashing admin password: %w", err)
	}
	admin := &models.AdminUser{Username: strings.TrimSpace(username), PasswordHash: string(hash)}
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		_, err := s.authRepo.CreateAdmin(ctx, exec, admin)
		return err
	})
	if err != nil {
		return false, err
	}
	utils.LogInfo("Bootstrap admin created", map[string]interface{}{"username": admin.Username})
	return true, nil
}
