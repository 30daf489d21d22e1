package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"apichat/internal/models"
	"apichat/internal/pagination"
	"apichat/utils"
)

// UserStore is the identity persistence surface behind the user service.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUserByID(ctx context.Context, id int) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	FindUsers(ctx context.Context, filter models.UserFilter, limit, offset int) ([]models.User, error)
	CountUsers(ctx context.Context, filter models.UserFilter) (int, error)
	SetSession(ctx context.Context, session models.Session) error
}

type UserService struct {
	UserRepo     UserStore
	TokenManager *utils.Manager
	Images       ImageStore
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}

// SignUp registers a user. The optional base64 avatar goes to the blob
// store before the row is written.
func (s *UserService) SignUp(ctx context.Context, req models.SignUpRequest) (models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  string(hashedPassword),
	}

	if req.Avatar != "" && s.Images != nil {
		data, err := utils.DecodeBase64Image(req.Avatar)
		if err != nil {
			return models.User{}, err
		}
		path, err := s.Images.Upload(data, uuid.New().String()+".jpg", "avatars")
		if err != nil {
			return models.User{}, err
		}
		user.AvatarPath = &path
	}

	created, err := s.UserRepo.CreateUser(ctx, user)
	if err != nil {
		return models.User{}, err
	}
	return created.Public(), nil
}

// SignIn checks credentials and issues an access JWT plus a refresh
// token persisted as the user's session.
func (s *UserService) SignIn(ctx context.Context, req models.SignInRequest) (models.Tokens, models.User, error) {
	user, err := s.UserRepo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return models.Tokens{}, models.User{}, models.ErrInvalidCredentials
		}
		return models.Tokens{}, models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return models.Tokens{}, models.User{}, models.ErrInvalidCredentials
	}

	var tokens models.Tokens
	tokens.AccessToken, err = s.TokenManager.NewJWT(user.ID, s.AccessTTL)
	if err != nil {
		return models.Tokens{}, models.User{}, err
	}

	tokens.RefreshToken, err = s.TokenManager.NewRefreshToken()
	if err != nil {
		tokens.RefreshToken = uuid.New().String() // fallback if the entropy source fails
	}

	session := models.Session{
		UserID:       user.ID,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    time.Now().Add(s.RefreshTTL),
	}
	if err := s.UserRepo.SetSession(ctx, session); err != nil {
		return models.Tokens{}, models.User{}, err
	}

	return tokens, user.Public(), nil
}

func (s *UserService) GetUserByID(ctx context.Context, id int) (models.User, error) {
	user, err := s.UserRepo.GetUserByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	return user.Public(), nil
}

// FindUsers lists users ordered by username, optionally narrowed by
// case-insensitive partial name matches.
func (s *UserService) FindUsers(ctx context.Context, filter models.UserFilter, params pagination.Params) (pagination.Page[models.User], error) {
	total, err := s.UserRepo.CountUsers(ctx, filter)
	if err != nil {
		return pagination.Page[models.User]{}, err
	}

	users, err := s.UserRepo.FindUsers(ctx, filter, params.Size, params.Offset())
	if err != nil {
		return pagination.Page[models.User]{}, err
	}
	for i := range users {
		users[i] = users[i].Public()
	}
	return pagination.NewPage(users, total, params)
}
