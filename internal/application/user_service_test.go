package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iwa-store/user-service/internal/domain/entity"
	repo "github.com/iwa-store/user-service/internal/domain/repository"
	"github.com/iwa-store/user-service/pkg/helpers"
)

// memoryRepo mimics the document store: whole-document saves with a version
// check and a unique email constraint.
type memoryRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User

	// saveHook runs before each Save while the lock is NOT held, letting
	// tests interleave a competing writer.
	saveHook func()
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[string]*entity.User)}
}

func cloneUser(u *entity.User) *entity.User {
	c := *u
	c.Addresses = append([]entity.Address(nil), u.Addresses...)
	c.Wishlist = append([]entity.WishlistItem(nil), u.Wishlist...)
	c.Cart = append([]entity.CartLine(nil), u.Cart...)
	c.Orders = append([]entity.Order(nil), u.Orders...)
	return &c
}

func (m *memoryRepo) Create(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return repo.ErrDuplicateEmail
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Version = 1
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.users[u.ID] = cloneUser(u)
	return nil
}

func (m *memoryRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return cloneUser(u), nil
}

func (m *memoryRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memoryRepo) Save(_ context.Context, u *entity.User) error {
	if m.saveHook != nil {
		m.saveHook()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.users[u.ID]
	if !ok {
		return repo.ErrNotFound
	}
	if stored.Version != u.Version {
		return repo.ErrVersionConflict
	}
	u.Version++
	u.UpdatedAt = time.Now()
	m.users[u.ID] = cloneUser(u)
	return nil
}

func newTestService(r repo.UserRepository) *Service {
	return NewService(r, helpers.NewJWTManager("test-secret", time.Hour), nil, nil)
}

func TestRegisterThenSignIn(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()

	reg, err := svc.Register(ctx, "a@x.com", "password123", "+15550001111")
	require.NoError(t, err)
	require.NotNil(t, reg)
	assert.NotEmpty(t, reg.UserID)
	assert.NotEmpty(t, reg.Token)

	sess, err := svc.SignIn(ctx, "a@x.com", "password123")
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, reg.UserID, sess.UserID)

	claims, err := svc.JWT.Parse(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)
}

func TestSignInMismatchShapes(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@x.com", "password123", "")
	require.NoError(t, err)

	// wrong password and unknown email produce the identical null shape
	wrongPwd, err := svc.SignIn(ctx, "a@x.com", "nope-nope-nope")
	require.NoError(t, err)
	assert.Nil(t, wrongPwd)

	unknown, err := svc.SignIn(ctx, "nobody@x.com", "password123")
	require.NoError(t, err)
	assert.Nil(t, unknown)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()

	first, err := svc.Register(ctx, "a@x.com", "password123", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "a@x.com", "different-pass", "")
	assert.ErrorIs(t, err, repo.ErrDuplicateEmail)

	// first account unaffected
	sess, err := svc.SignIn(ctx, "a@x.com", "password123")
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, first.UserID, sess.UserID)
}

func TestAddAddress(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()

	reg, err := svc.Register(ctx, "a@x.com", "password123", "")
	require.NoError(t, err)

	u, err := svc.AddAddress(ctx, reg.UserID, entity.Address{
		Street: "1 Main St", PostalCode: "12345", City: "Springfield", Country: "US",
	})
	require.NoError(t, err)
	require.Len(t, u.Addresses, 1)
	assert.NotEmpty(t, u.Addresses[0].ID)
	assert.Equal(t, "Springfield", u.Addresses[0].City)

	_, err = svc.AddAddress(ctx, "no-such-user", entity.Address{Street: "x"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestWishlistFlow(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()

	reg, err := svc.Register(ctx, "a@x.com", "password123", "")
	require.NoError(t, err)

	item := entity.WishlistItem{ProductID: "p1", Name: "widget", Price: 4.20}
	list, err := svc.AddToWishlist(ctx, reg.UserID, item)
	require.NoError(t, err)
	require.Len(t, list, 1)

	// repeat add stays a single entry
	list, err = svc.AddToWishlist(ctx, reg.UserID, item)
	require.NoError(t, err)
	require.Len(t, list, 1)

	list, err = svc.RemoveFromWishlist(ctx, reg.UserID, "p1")
	require.NoError(t, err)
	assert.Empty(t, list)

	// remove of absent product stays a no-op
	list, err = svc.RemoveFromWishlist(ctx, reg.UserID, "p1")
	require.NoError(t, err)
	assert.Empty(t, list)

	got, err := svc.GetWishlist(ctx, reg.UserID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCartAndOrderFlow(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()

	reg, err := svc.Register(ctx, "a@x.com", "password123", "")
	require.NoError(t, err)

	p := entity.CartProduct{ProductID: "p1", Name: "widget", Price: 4.20}
	u, err := svc.SetCartQuantity(ctx, reg.UserID, p, 3)
	require.NoError(t, err)
	require.Len(t, u.Cart, 1)
	assert.Equal(t, 3, u.Cart[0].Unit)

	u, err = svc.SetCartQuantity(ctx, reg.UserID, p, 3)
	require.NoError(t, err)
	require.Len(t, u.Cart, 1)
	assert.Equal(t, 3, u.Cart[0].Unit)

	u, err = svc.AttachOrder(ctx, reg.UserID, entity.Order{ID: "o1", Amount: 12.60})
	require.NoError(t, err)
	require.Len(t, u.Orders, 1)
	assert.Empty(t, u.Cart)

	u, err = svc.RemoveCartLine(ctx, reg.UserID, "p1")
	require.NoError(t, err)
	assert.Empty(t, u.Cart)
}

func TestMutateRetriesOnVersionConflict(t *testing.T) {
	mem := newMemoryRepo()
	svc := newTestService(mem)
	ctx := context.Background()

	reg, err := svc.Register(ctx, "a@x.com", "password123", "")
	require.NoError(t, err)

	// A competing writer bumps the document version right before the first
	// save attempt, forcing one retry cycle.
	raced := false
	mem.saveHook = func() {
		if raced {
			return
		}
		raced = true
		mem.mu.Lock()
		stored := mem.users[reg.UserID]
		stored.AddWishlistItem(entity.WishlistItem{ProductID: "racer"})
		stored.Version++
		mem.mu.Unlock()
	}

	u, err := svc.SetCartQuantity(ctx, reg.UserID, entity.CartProduct{ProductID: "p1"}, 2)
	require.NoError(t, err)

	// both writes survive: the racer's wishlist entry and our cart line
	require.Len(t, u.Cart, 1)
	assert.True(t, u.WishlistContains("racer"))
}
