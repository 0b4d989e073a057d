package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iwa-store/user-service/internal/domain/entity"
	repo "github.com/iwa-store/user-service/internal/domain/repository"
	"github.com/iwa-store/user-service/pkg/helpers"
)

var (
	ErrUserNotFound = errors.New("user not found")
	// ErrConflictRetryExhausted is returned when a document mutation kept
	// losing the optimistic-concurrency race.
	ErrConflictRetryExhausted = errors.New("too many concurrent updates, try again")
)

// saveRetries bounds the reload-and-retry loop on version conflicts.
const saveRetries = 3

const wishlistCacheTTL = 10 * time.Minute

// Session is the payload returned by Register and SignIn.
type Session struct {
	UserID string `json:"id"`
	Token  string `json:"token"`
}

// Service orchestrates registration, sign-in and profile mutation. All
// document writes go through mutate, which retries on version conflicts.
type Service struct {
	Repo   repo.UserRepository
	JWT    *helpers.JWTManager
	Redis  *redis.Client
	Logger *logrus.Logger
}

func NewService(r repo.UserRepository, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger) *Service {
	return &Service{Repo: r, JWT: jwt, Redis: rdb, Logger: logger}
}

func sessionKey(userID string) string  { return "user:session:" + userID }
func wishlistKey(userID string) string { return "user:wishlist:" + userID }

// Register creates the account and issues a token scoped to the new identity.
// A colliding email propagates repo.ErrDuplicateEmail.
func (s *Service) Register(ctx context.Context, email, password, phone string) (*Session, error) {
	salt, err := helpers.GenerateSalt()
	if err != nil {
		return nil, err
	}
	hash, err := helpers.HashPassword(password, salt)
	if err != nil {
		return nil, err
	}

	u := &entity.User{
		Email:        email,
		PasswordHash: hash,
		Salt:         salt,
		Phone:        phone,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}

	token, err := s.JWT.Generate(u.ID, u.Email)
	if err != nil {
		return nil, err
	}
	s.recordSession(ctx, u)
	if s.Logger != nil {
		s.Logger.WithField("user_id", u.ID).Info("user registered")
	}
	return &Session{UserID: u.ID, Token: token}, nil
}

// SignIn returns (nil, nil) for an unknown email and for a wrong password
// alike: the caller cannot tell which factor failed, and "no session" is not
// an error.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !helpers.VerifyPassword(password, u.PasswordHash, u.Salt) {
		return nil, nil
	}

	token, err := s.JWT.Generate(u.ID, u.Email)
	if err != nil {
		return nil, err
	}
	s.recordSession(ctx, u)
	return &Session{UserID: u.ID, Token: token}, nil
}

func (s *Service) recordSession(ctx context.Context, u *entity.User) {
	if s.Redis == nil {
		return
	}
	key := sessionKey(u.ID)
	pipe := s.Redis.Pipeline()
	pipe.HSet(ctx, key, map[string]any{
		"user_id":    u.ID,
		"email":      u.Email,
		"logged_in":  true,
		"created_at": time.Now().UTC().Format(time.RFC3339Nano),
	})
	pipe.Expire(ctx, key, 24*time.Hour)
	if _, err := pipe.Exec(ctx); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("key", key).Warn("redis pipeline failed")
	}
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// AddAddress appends a new address to the user document and returns the full
// updated user.
func (s *Service) AddAddress(ctx context.Context, userID string, addr entity.Address) (*entity.User, error) {
	if addr.ID == "" {
		addr.ID = uuid.NewString()
	}
	return s.mutate(ctx, userID, func(u *entity.User) {
		u.Addresses = append(u.Addresses, addr)
	})
}

// GetWishlist serves the wishlist through a short-lived Redis cache. The
// denormalized product fields are accepted as stale by design.
func (s *Service) GetWishlist(ctx context.Context, userID string) ([]entity.WishlistItem, error) {
	if s.Redis != nil {
		var cached []entity.WishlistItem
		if hit, err := helpers.RedisGetJSON(ctx, s.Redis, wishlistKey(userID), &cached); err == nil && hit {
			return cached, nil
		}
	}

	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	items := u.Wishlist
	if items == nil {
		items = []entity.WishlistItem{}
	}
	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, wishlistKey(userID), items, wishlistCacheTTL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Warn("wishlist cache write failed")
		}
	}
	return items, nil
}

func (s *Service) AddToWishlist(ctx context.Context, userID string, item entity.WishlistItem) ([]entity.WishlistItem, error) {
	u, err := s.mutate(ctx, userID, func(u *entity.User) {
		u.AddWishlistItem(item)
	})
	if err != nil {
		return nil, err
	}
	s.dropWishlistCache(ctx, userID)
	return u.Wishlist, nil
}

func (s *Service) RemoveFromWishlist(ctx context.Context, userID, productID string) ([]entity.WishlistItem, error) {
	u, err := s.mutate(ctx, userID, func(u *entity.User) {
		if !u.RemoveWishlistItem(productID) && s.Logger != nil {
			s.Logger.WithFields(logrus.Fields{"user_id": userID, "product_id": productID}).
				Debug("wishlist remove on non-member, no-op")
		}
	})
	if err != nil {
		return nil, err
	}
	s.dropWishlistCache(ctx, userID)
	return u.Wishlist, nil
}

// SetCartQuantity upserts the cart line for product, replacing any existing
// quantity.
func (s *Service) SetCartQuantity(ctx context.Context, userID string, product entity.CartProduct, qty int) (*entity.User, error) {
	return s.mutate(ctx, userID, func(u *entity.User) {
		u.SetCartQuantity(product, qty)
	})
}

// RemoveCartLine deletes the cart line for productID; removing an absent line
// is a no-op.
func (s *Service) RemoveCartLine(ctx context.Context, userID, productID string) (*entity.User, error) {
	return s.mutate(ctx, userID, func(u *entity.User) {
		if !u.RemoveCartLine(productID) && s.Logger != nil {
			s.Logger.WithFields(logrus.Fields{"user_id": userID, "product_id": productID}).
				Debug("cart remove on non-member, no-op")
		}
	})
}

// AttachOrder appends the order to the user document and clears the cart.
func (s *Service) AttachOrder(ctx context.Context, userID string, order entity.Order) (*entity.User, error) {
	return s.mutate(ctx, userID, func(u *entity.User) {
		u.AppendOrder(order)
	})
}

func (s *Service) dropWishlistCache(ctx context.Context, userID string) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, wishlistKey(userID)); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Warn("wishlist cache invalidation failed")
	}
}

// mutate loads the user document, applies fn to the snapshot, and re-saves the
// whole document. A version conflict means another writer won the race since
// our load; the snapshot is discarded and the cycle retried.
func (s *Service) mutate(ctx context.Context, userID string, fn func(*entity.User)) (*entity.User, error) {
	for attempt := 0; attempt < saveRetries; attempt++ {
		u, err := s.Repo.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, err
		}

		fn(u)

		err = s.Repo.Save(ctx, u)
		if err == nil {
			return u, nil
		}
		if errors.Is(err, repo.ErrVersionConflict) {
			if s.Logger != nil {
				s.Logger.WithFields(logrus.Fields{"user_id": userID, "attempt": attempt + 1}).
					Debug("document version conflict, retrying")
			}
			continue
		}
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return nil, ErrConflictRetryExhausted
}
