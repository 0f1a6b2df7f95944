// Package usecase はauthフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"crop_yield/internal/feature/auth/domain/entity"
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// CreateIfAbsent は同じユーザー名が存在しない場合のみユーザーを1回の操作で追加します。
	// 既に存在する場合はErrUsernameTakenを返し、既存レコードは変更しません。
	CreateIfAbsent(ctx context.Context, user *entity.User) error

	// FindByUsername は指定されたユーザー名に一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
}

// PasswordHasher はパスワードのハッシュ化と検証を抽象化します。
type PasswordHasher interface {
	// Hash は平文パスワードから保存用のハッシュを生成します。
	Hash(password string) (string, error)
	// Verify はハッシュと平文パスワードが一致するか判定します。
	Verify(hash, password string) bool
}

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	users  UserRepository
	hasher PasswordHasher
	// dummyHash はユーザー未検出時にも検証処理を行うためのハッシュです。
	dummyHash string
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(users UserRepository, hasher PasswordHasher) *authUsecase {
	dummy, err := hasher.Hash("crop-yield-dummy-password")
	if err != nil {
		dummy = ""
	}
	return &authUsecase{
		users:     users,
		hasher:    hasher,
		dummyHash: dummy,
	}
}

// Register は入力を検証してから、ハッシュ化されたパスワードで新規ユーザーを登録します。
// 検証はハッシュ化と永続化より先に行われます。
func (u *authUsecase) Register(ctx context.Context, username, password, confirm string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" || confirm == "" {
		return ErrMissingFields
	}
	if password != confirm {
		return ErrPasswordMismatch
	}

	hashed, err := u.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user := &entity.User{Username: username, PasswordHash: hashed}
	return u.users.CreateIfAbsent(ctx, user)
}

// Authenticate はユーザー名とパスワードの組が登録済みレコードと一致するか判定します。
// ストレージエラーは握りつぶさずに返します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもダミーハッシュで検証を実行します。
func (u *authUsecase) Authenticate(ctx context.Context, username, password string) (bool, error) {
	user, err := u.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			u.hasher.Verify(u.dummyHash, password)
			return false, nil
		}
		return false, fmt.Errorf("failed to look up user: %w", err)
	}
	return u.hasher.Verify(user.PasswordHash, password), nil
}
