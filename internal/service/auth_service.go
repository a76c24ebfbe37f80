package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"pharmaclic/internal/model"
	"pharmaclic/internal/repository"
	"pharmaclic/internal/ws"
	"pharmaclic/pkg/jwt"
)

// sessionIdleTimeout ends a register session nobody has sent a heartbeat for.
const sessionIdleTimeout = 15 * time.Minute

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrSessionTimeout     = errors.New("session expired due to inactivity")
	ErrSessionReplaced    = errors.New("session expired (logged in on another register)")
)

type AuthService interface {
	Login(email, password string) (*LoginResponse, error)
	ChangePassword(email, oldPassword, newPassword string) error
	ValidateToken(tokenString string) (*TokenValidationResponse, error)
	Heartbeat(userID uuid.UUID) error
}

type LoginResponse struct {
	Token      string             `json:"token"`
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type TokenValidationResponse struct {
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type authService struct {
	userRepo repository.UserRepository
	wsHub    *ws.Hub
	now      func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, hub *ws.Hub) AuthService {
	return &authService{
		userRepo: userRepo,
		wsHub:    hub,
		now:      time.Now,
	}
}

func (s *authService) Login(email, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	roleCode := ""
	if user.Role != nil {
		roleCode = user.Role.Code
	}

	// One session per user: a new login invalidates tokens issued before it.
	now := s.now()
	user.TokenVersion = uuid.New().String()
	user.LastSeenAt = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	privileges := user.PrivilegeCodes()
	token, err := jwt.GenerateToken(user.ID, user.Email, user.FullName, roleCode, privileges, user.TokenVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResponse{
		Token:      token,
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: privileges,
	}, nil
}

func (s *authService) ChangePassword(email, oldPassword, newPassword string) error {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return ErrUserNotFound
	}
	if !user.CheckPassword(oldPassword) {
		return ErrWrongPassword
	}
	if err := user.SetPassword(newPassword); err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(user.ID, user.Password); err != nil {
		return err
	}
	return s.userRepo.UpdateTokenVersion(user.ID, uuid.New().String())
}

func (s *authService) ValidateToken(tokenString string) (*TokenValidationResponse, error) {
	claims, err := jwt.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionReplaced
	}
	if user.LastSeenAt == nil || s.now().Sub(*user.LastSeenAt) > sessionIdleTimeout {
		return nil, ErrSessionTimeout
	}

	return &TokenValidationResponse{
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.PrivilegeCodes(),
	}, nil
}

func (s *authService) Heartbeat(userID uuid.UUID) error {
	if err := s.userRepo.UpdateLastSeen(userID); err != nil {
		return err
	}
	s.wsHub.Publish(map[string]interface{}{
		"type":         ws.EventUserStatus,
		"user_id":      userID.String(),
		"status":       "online",
		"last_seen_at": s.now(),
	})
	return nil
}

// SetUserPassword replaces a password without the old one and ends the
// user's current session. Used by the admin CLI.
func SetUserPassword(userRepo repository.UserRepository, email, newPassword string) error {
	user, err := userRepo.FindByEmail(email)
	if err != nil {
		return ErrUserNotFound
	}
	if err := user.SetPassword(newPassword); err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}
	if err := userRepo.UpdatePassword(user.ID, user.Password); err != nil {
		return err
	}
	return userRepo.UpdateTokenVersion(user.ID, uuid.New().String())
}

// SeedAccessControl creates the default privileges and roles, grants each
// role its privileges and creates the owner account when it does not exist.
func SeedAccessControl(privilegeRepo repository.PrivilegeRepository, roleRepo repository.RoleRepository, userRepo repository.UserRepository, adminEmail, adminPassword string) error {
	if err := privilegeRepo.SeedDefaults(); err != nil {
		return fmt.Errorf("seed privileges: %w", err)
	}
	if err := roleRepo.SeedDefaults(); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}

	allPrivileges, err := privilegeRepo.FindAll()
	if err != nil {
		return fmt.Errorf("load privileges: %w", err)
	}

	roles, err := roleRepo.FindAll()
	if err != nil {
		return fmt.Errorf("load roles: %w", err)
	}
	for i := range roles {
		role := &roles[i]
		if len(role.Privileges) > 0 {
			continue
		}
		grant := allPrivileges
		if role.Code != model.RoleOwner {
			if grant, err = privilegeRepo.FindByCodes(model.RolePrivileges[role.Code]); err != nil {
				return fmt.Errorf("load privileges for %s: %w", role.Code, err)
			}
		}
		if err := roleRepo.ReplacePrivileges(role, grant); err != nil {
			return fmt.Errorf("grant privileges to %s: %w", role.Code, err)
		}
		log.Printf("✅ %s role assigned %d privileges", role.Code, len(grant))
	}

	if _, err := userRepo.FindByEmail(adminEmail); err == nil {
		return nil
	}
	owner, err := roleRepo.FindByCode(model.RoleOwner)
	if err != nil {
		return fmt.Errorf("load owner role: %w", err)
	}
	admin := &model.User{
		Email:    adminEmail,
		FullName: "Pharmacy Owner",
		RoleID:   &owner.ID,
		IsActive: true,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"
	if err := admin.SetPassword(adminPassword); err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if err := userRepo.Create(admin); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	log.Printf("✅ Owner user created: %s", adminEmail)
	return nil
}
