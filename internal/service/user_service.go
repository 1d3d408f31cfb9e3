package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/example/supermarket/internal/auth"
	"github.com/example/supermarket/internal/config"
	"github.com/example/supermarket/internal/datamodels/user"
)

// 默认管理员账号，seed 时创建
const (
	AdminEmail    = "admin@supermarket.com"
	adminPassword = "admin123"
)

type UserService struct {
	repo user.Repository
	jwt  *config.JWTConfig
}

func NewUserService(repo user.Repository, jwt *config.JWTConfig) *UserService {
	return &UserService{repo: repo, jwt: jwt}
}

func hashPassword(raw, salt string) string {
	h := sha256.Sum256([]byte(raw + salt))
	return hex.EncodeToString(h[:])
}

// RegisterInput 注册参数
type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// Register 注册新用户，邮箱唯一
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*user.User, error) {
	if in.Email == "" || in.Password == "" {
		return nil, errors.New("邮箱和密码不能为空")
	}
	if _, err := s.repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, errors.New("该邮箱已注册")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	u := &user.User{
		Email:     in.Email,
		Salt:      "supermarket", // 简化实现，真实业务请使用随机盐
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
		Role:      auth.RoleUser,
		JoinedAt:  time.Now().UTC(),
	}
	u.Password = hashPassword(in.Password, u.Salt)
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login 登录并返回 JWT
func (s *UserService) Login(ctx context.Context, email, password string) (string, *user.User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, errors.New("邮箱或密码错误")
	}
	if hashPassword(password, u.Salt) != u.Password {
		return "", nil, errors.New("邮箱或密码错误")
	}
	token, err := auth.GenerateToken(s.jwt, u.ID, u.Email, u.Role)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// ProfileUpdate 可更新的资料字段，空字符串表示不修改
type ProfileUpdate struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// UpdateProfile 更新资料
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, in ProfileUpdate) (*user.User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.FirstName != "" {
		u.FirstName = in.FirstName
	}
	if in.LastName != "" {
		u.LastName = in.LastName
	}
	if in.Phone != "" {
		u.Phone = in.Phone
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) ListAll(ctx context.Context) ([]*user.User, error) {
	return s.repo.ListAll(ctx)
}

// EnsureAdmin 确保默认管理员账号存在（seed 时调用）
func (s *UserService) EnsureAdmin(ctx context.Context) (*user.User, error) {
	if u, err := s.repo.GetByEmail(ctx, AdminEmail); err == nil {
		return u, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	u := &user.User{
		Email:     AdminEmail,
		Salt:      "supermarket",
		FirstName: "Admin",
		Role:      auth.RoleAdmin,
		JoinedAt:  time.Now().UTC(),
	}
	u.Password = hashPassword(adminPassword, u.Salt)
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
