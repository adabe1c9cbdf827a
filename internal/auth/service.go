package auth

import (
	"context"
	"errors"
	"time"

	"marathon-admin/internal/db"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

type Service struct {
	secret []byte
	db     db.Querier
}

type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func NewService(secret string, q db.Querier) *Service {
	return &Service{
		secret: []byte(secret),
		db:     q,
	}
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (TokenResponse, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, email, password_hash, role, status, created_at, updated_at
		FROM admin_users WHERE email = $1
	`, req.Email)

	var user AdminUser
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.Status, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return TokenResponse{}, errors.New("invalid credentials")
	}
	if user.Status != "active" {
		return TokenResponse{}, errors.New("account disabled")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return TokenResponse{}, errors.New("invalid credentials")
	}

	user.PasswordHash = ""
	return s.generateTokens(ctx, user)
}

func (s *Service) Refresh(ctx context.Context, token string) (TokenResponse, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return TokenResponse{}, err
	}

	userID, expiresAt, err := s.lookupRefreshToken(ctx, token)
	if err != nil || userID != claims.UserID || time.Now().After(expiresAt) {
		return TokenResponse{}, errors.New("refresh token invalid")
	}

	user, err := s.GetAdmin(ctx, claims.UserID)
	if err != nil {
		return TokenResponse{}, err
	}
	return s.generateTokens(ctx, user)
}

func (s *Service) CreateAdmin(ctx context.Context, req CreateAdminRequest) (AdminUser, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return AdminUser{}, errors.New("name, email, password required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return AdminUser{}, err
	}

	role := req.Role
	if role == "" {
		role = "admin"
	}

	user := AdminUser{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
		Status:       "active",
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO admin_users (id, name, email, password_hash, role, status)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at, updated_at
	`, user.ID, user.Name, user.Email, user.PasswordHash, user.Role, user.Status)
	if err := row.Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		return AdminUser{}, err
	}
	return user, nil
}

func (s *Service) ListAdmins(ctx context.Context) ([]AdminUser, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, email, role, status, created_at, updated_at
		FROM admin_users ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []AdminUser{}
	for rows.Next() {
		var u AdminUser
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Service) GetAdmin(ctx context.Context, id string) (AdminUser, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, email, role, status, created_at, updated_at
		FROM admin_users WHERE id = $1
	`, id)

	var u AdminUser
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return AdminUser{}, err
	}
	return u, nil
}

func (s *Service) UpdateAdmin(ctx context.Context, id string, req UpdateAdminRequest) (AdminUser, error) {
	current, err := s.GetAdmin(ctx, id)
	if err != nil {
		return AdminUser{}, err
	}
	if req.Name != nil {
		current.Name = *req.Name
	}
	if req.Email != nil {
		current.Email = *req.Email
	}
	if req.Role != nil {
		current.Role = *req.Role
	}
	if req.Status != nil {
		current.Status = *req.Status
	}

	row := s.db.QueryRow(ctx, `
		UPDATE admin_users
		SET name = $2, email = $3, role = $4, status = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, id, current.Name, current.Email, current.Role, current.Status)
	if err := row.Scan(&current.UpdatedAt); err != nil {
		return AdminUser{}, err
	}
	return current, nil
}

func (s *Service) DeleteAdmin(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM admin_users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.New("admin user not found")
	}
	return nil
}

func (s *Service) ValidateAccessToken(token string) (string, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

func (s *Service) generateTokens(ctx context.Context, user AdminUser) (TokenResponse, error) {
	access, err := s.signToken(user, accessTokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}

	refresh, err := s.signToken(user, refreshTokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}

	if err := s.saveRefreshToken(ctx, refresh, user.ID, refreshTokenTTL); err != nil {
		return TokenResponse{}, err
	}

	return TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(accessTokenTTL.Seconds()),
		User:         user,
	}, nil
}

func (s *Service) signToken(user AdminUser, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) parseToken(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("token invalid")
	}
	return claims, nil
}

func (s *Service) saveRefreshToken(ctx context.Context, token, userID string, ttl time.Duration) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO refresh_tokens (id, user_id, token, expires_at)
		VALUES ($1,$2,$3,$4)
	`, uuid.NewString(), userID, token, time.Now().Add(ttl))
	return err
}

func (s *Service) lookupRefreshToken(ctx context.Context, token string) (string, time.Time, error) {
	row := s.db.QueryRow(ctx, `
		SELECT user_id, expires_at
		FROM refresh_tokens
		WHERE token = $1 AND revoked_at IS NULL
	`, token)
	var userID string
	var expiresAt time.Time
	if err := row.Scan(&userID, &expiresAt); err != nil {
		return "", time.Time{}, err
	}
	return userID, expiresAt, nil
}
