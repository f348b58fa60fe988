// Package auth 提供管理员认证与账号管理服务
package auth

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-admin-backend/internal/common/crypto"
	"github.com/dumeirei/hotel-admin-backend/internal/common/errors"
	"github.com/dumeirei/hotel-admin-backend/internal/common/jwt"
	"github.com/dumeirei/hotel-admin-backend/internal/common/logger"
	"github.com/dumeirei/hotel-admin-backend/internal/common/utils"
	"github.com/dumeirei/hotel-admin-backend/internal/models"
	"github.com/dumeirei/hotel-admin-backend/internal/repository"
)

// AuthService 认证服务
type AuthService struct {
	adminRepo  *repository.AdminRepository
	jwtManager *jwt.Manager
}

// NewAuthService 创建认证服务
func NewAuthService(adminRepo *repository.AdminRepository, jwtManager *jwt.Manager) *AuthService {
	return &AuthService{adminRepo: adminRepo, jwtManager: jwtManager}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResult 登录结果
type LoginResult struct {
	Token *jwt.TokenPair `json:"token"`
	Admin *AdminInfo     `json:"admin"`
}

// AdminInfo 管理员信息（不含密码哈希）
type AdminInfo struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	IsActive    bool   `json:"is_active"`
	LastLoginAt string `json:"last_login_at,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// Login 管理员登录
func (s *AuthService) Login(ctx context.Context, req *LoginRequest, ip string) (*LoginResult, error) {
	admin, err := s.adminRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrAdminNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	if !crypto.VerifyPassword(req.Password, admin.PasswordHash) {
		logger.Warn("登录密码错误",
			logger.String("username", req.Username),
			logger.IP(ip),
		)
		return nil, errors.ErrPasswordError
	}
	if !admin.IsActive {
		return nil, errors.ErrAccountDisabled
	}

	token, err := s.jwtManager.GenerateTokenPair(admin.ID, admin.Username, admin.Role)
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}

	if err := s.adminRepo.RecordLogin(ctx, admin.ID, ip); err != nil {
		logger.Warn("登录信息记录失败", logger.AdminID(admin.ID), logger.Err(err))
	}

	logger.Info("管理员登录成功",
		logger.AdminID(admin.ID),
		logger.String("username", admin.Username),
		logger.IP(ip),
	)

	return &LoginResult{Token: token, Admin: toAdminInfo(admin)}, nil
}

// RefreshToken 用刷新令牌换新令牌对
// 重新校验账号状态，禁用后刷新令牌立即失效
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	claims, err := s.jwtManager.ParseToken(refreshToken)
	if err != nil {
		if err == jwt.ErrTokenExpired {
			return nil, errors.ErrTokenExpired
		}
		return nil, errors.ErrTokenInvalid.WithError(err)
	}

	admin, err := s.getAdmin(ctx, claims.AdminID)
	if err != nil {
		return nil, err
	}
	if !admin.IsActive {
		return nil, errors.ErrAccountDisabled
	}

	token, err := s.jwtManager.GenerateTokenPair(admin.ID, admin.Username, admin.Role)
	if err != nil {
		return nil, errors.ErrTokenRefreshFail.WithError(err)
	}
	return token, nil
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// ChangePassword 修改本人密码
func (s *AuthService) ChangePassword(ctx context.Context, adminID int64, req *ChangePasswordRequest) error {
	admin, err := s.getAdmin(ctx, adminID)
	if err != nil {
		return err
	}

	if !crypto.VerifyPassword(req.OldPassword, admin.PasswordHash) {
		return errors.ErrPasswordError
	}

	hash, err := crypto.HashPassword(req.NewPassword)
	if err != nil {
		return errors.ErrInternalError.WithError(err)
	}

	if err := s.adminRepo.UpdateFields(ctx, adminID, map[string]interface{}{
		"password_hash": hash,
	}); err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}

	logger.Info("管理员密码已修改", logger.AdminID(adminID))
	return nil
}

// CreateAdminRequest 创建管理员请求
type CreateAdminRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=50"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
}

// CreateAdmin 创建管理员账号
func (s *AuthService) CreateAdmin(ctx context.Context, req *CreateAdminRequest) (*AdminInfo, error) {
	exists, err := s.adminRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if exists {
		return nil, errors.ErrAdminExists
	}

	role := req.Role
	if role == "" {
		role = models.AdminRoleStaff
	}
	if role != models.AdminRoleSuper && role != models.AdminRoleStaff {
		return nil, errors.ErrInvalidParams.WithMessage("角色仅支持 super/staff")
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return nil, errors.ErrInternalError.WithError(err)
	}

	admin := &models.Admin{
		Username:     req.Username,
		PasswordHash: hash,
		DisplayName:  req.DisplayName,
		Email:        req.Email,
		Role:         role,
		IsActive:     true,
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	logger.Info("管理员账号已创建",
		logger.AdminID(admin.ID),
		logger.String("username", admin.Username),
		logger.String("role", role),
	)
	return toAdminInfo(admin), nil
}

// UpdateAdminRequest 更新管理员请求
type UpdateAdminRequest struct {
	DisplayName *string `json:"display_name"`
	Email       *string `json:"email"`
	Role        *string `json:"role"`
	IsActive    *bool   `json:"is_active"`
	Password    *string `json:"password"`
}

// UpdateAdmin 更新管理员账号
func (s *AuthService) UpdateAdmin(ctx context.Context, id int64, req *UpdateAdminRequest) (*AdminInfo, error) {
	admin, err := s.getAdmin(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.DisplayName != nil {
		updates["display_name"] = *req.DisplayName
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Role != nil {
		if *req.Role != models.AdminRoleSuper && *req.Role != models.AdminRoleStaff {
			return nil, errors.ErrInvalidParams.WithMessage("角色仅支持 super/staff")
		}
		updates["role"] = *req.Role
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.Password != nil {
		if len(*req.Password) < 8 {
			return nil, errors.ErrInvalidParams.WithMessage("密码长度不能少于8位")
		}
		hash, err := crypto.HashPassword(*req.Password)
		if err != nil {
			return nil, errors.ErrInternalError.WithError(err)
		}
		updates["password_hash"] = hash
	}

	if len(updates) == 0 {
		return toAdminInfo(admin), nil
	}

	if err := s.adminRepo.UpdateFields(ctx, id, updates); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	admin, err = s.getAdmin(ctx, id)
	if err != nil {
		return nil, err
	}
	return toAdminInfo(admin), nil
}

// GetAdmin 获取管理员信息
func (s *AuthService) GetAdmin(ctx context.Context, id int64) (*AdminInfo, error) {
	admin, err := s.getAdmin(ctx, id)
	if err != nil {
		return nil, err
	}
	return toAdminInfo(admin), nil
}

// ListAdmins 获取管理员列表
func (s *AuthService) ListAdmins(ctx context.Context, page, pageSize int) ([]*AdminInfo, int64, error) {
	p := utils.Pagination{Page: page, PageSize: pageSize}
	p.Normalize()

	admins, total, err := s.adminRepo.List(ctx, p.GetOffset(), p.GetLimit())
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}

	infos := make([]*AdminInfo, 0, len(admins))
	for _, admin := range admins {
		infos = append(infos, toAdminInfo(admin))
	}
	return infos, total, nil
}

// EnsureDefaultAdmin 不存在任何账号时创建默认超级管理员（首次部署用）
func (s *AuthService) EnsureDefaultAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}

	exists, err := s.adminRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	if exists {
		return nil
	}

	_, err = s.CreateAdmin(ctx, &CreateAdminRequest{
		Username:    username,
		Password:    password,
		DisplayName: "Administrator",
		Role:        models.AdminRoleSuper,
	})
	return err
}

// ListOperationLogs 获取操作日志，adminID 为 0 时不过滤
func (s *AuthService) ListOperationLogs(ctx context.Context, page, pageSize int, adminID int64) ([]*models.OperationLog, int64, error) {
	p := utils.Pagination{Page: page, PageSize: pageSize}
	p.Normalize()

	logs, total, err := s.adminRepo.ListOperationLogs(ctx, p.GetOffset(), p.GetLimit(), adminID)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return logs, total, nil
}

func (s *AuthService) getAdmin(ctx context.Context, id int64) (*models.Admin, error) {
	admin, err := s.adminRepo.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrAdminNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return admin, nil
}

func toAdminInfo(admin *models.Admin) *AdminInfo {
	info := &AdminInfo{
		ID:          admin.ID,
		Username:    admin.Username,
		DisplayName: admin.DisplayName,
		Email:       admin.Email,
		Role:        admin.Role,
		IsActive:    admin.IsActive,
		CreatedAt:   admin.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if admin.LastLoginAt != nil {
		info.LastLoginAt = admin.LastLoginAt.Format("2006-01-02 15:04:05")
	}
	return info
}
