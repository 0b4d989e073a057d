package events

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iwa-store/user-service/internal/application"
	"github.com/iwa-store/user-service/internal/domain/entity"
	repo "github.com/iwa-store/user-service/internal/domain/repository"
	"github.com/iwa-store/user-service/pkg/helpers"
)

type memoryRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
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
	m.users[u.ID] = cloneUser(u)
	return nil
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *application.Service, string) {
	t.Helper()
	svc := application.NewService(newMemoryRepo(), helpers.NewJWTManager("test-secret", time.Hour), nil, nil)
	sess, err := svc.Register(context.Background(), "a@x.com", "password123", "")
	require.NoError(t, err)
	return NewDispatcher(svc, nil), svc, sess.UserID
}

func envelopeBytes(t *testing.T, event string, data Payload) []byte {
	t.Helper()
	b, err := json.Marshal(Envelope{Event: event, Data: data})
	require.NoError(t, err)
	return b
}

func TestParseKind(t *testing.T) {
	assert.Equal(t, KindAddToWishlist, ParseKind("ADD_TO_WISHLIST"))
	assert.Equal(t, KindRemoveFromWishlist, ParseKind("REMOVE_FROM_WISHLIST"))
	assert.Equal(t, KindAddToCart, ParseKind("ADD_TO_CART"))
	assert.Equal(t, KindRemoveFromCart, ParseKind("REMOVE_FROM_CART"))
	assert.Equal(t, KindCreateOrder, ParseKind("CREATE_ORDER"))
	assert.Equal(t, KindUnknown, ParseKind("SOMETHING_ELSE"))
	assert.Equal(t, KindUnknown, ParseKind(""))
}

func TestDispatchCartAddThenRemove(t *testing.T) {
	d, svc, userID := newTestDispatcher(t)
	ctx := context.Background()

	add := envelopeBytes(t, "ADD_TO_CART", Payload{
		UserID:  userID,
		Product: &Product{ID: "p1", Name: "widget", Price: 2.50},
		Qty:     2,
	})
	require.NoError(t, d.Dispatch(ctx, add))

	u, err := svc.GetProfile(ctx, userID)
	require.NoError(t, err)
	require.Len(t, u.Cart, 1)
	assert.Equal(t, 2, u.Cart[0].Unit)

	remove := envelopeBytes(t, "REMOVE_FROM_CART", Payload{
		UserID:  userID,
		Product: &Product{ID: "p1"},
	})
	require.NoError(t, d.Dispatch(ctx, remove))

	u, err = svc.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, u.Cart)
}

func TestDispatchWishlistAddAndRemoveAreDirectionCorrect(t *testing.T) {
	d, svc, userID := newTestDispatcher(t)
	ctx := context.Background()

	// a remove for a product never added must NOT turn into an add
	remove := envelopeBytes(t, "REMOVE_FROM_WISHLIST", Payload{
		UserID:  userID,
		Product: &Product{ID: "p1"},
	})
	require.NoError(t, d.Dispatch(ctx, remove))

	u, err := svc.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, u.Wishlist)

	add := envelopeBytes(t, "ADD_TO_WISHLIST", Payload{
		UserID:  userID,
		Product: &Product{ID: "p1", Name: "widget"},
	})
	require.NoError(t, d.Dispatch(ctx, add))
	// a replayed add stays an add
	require.NoError(t, d.Dispatch(ctx, add))

	u, err = svc.GetProfile(ctx, userID)
	require.NoError(t, err)
	require.Len(t, u.Wishlist, 1)
	assert.Equal(t, "p1", u.Wishlist[0].ProductID)
}

func TestDispatchCreateOrderClearsCart(t *testing.T) {
	d, svc, userID := newTestDispatcher(t)
	ctx := context.Background()

	add := envelopeBytes(t, "ADD_TO_CART", Payload{
		UserID:  userID,
		Product: &Product{ID: "p1"},
		Qty:     1,
	})
	require.NoError(t, d.Dispatch(ctx, add))

	order := envelopeBytes(t, "CREATE_ORDER", Payload{
		UserID: userID,
		Order:  &entity.Order{ID: "o1", Amount: 10, Status: "received"},
	})
	require.NoError(t, d.Dispatch(ctx, order))

	u, err := svc.GetProfile(ctx, userID)
	require.NoError(t, err)
	require.Len(t, u.Orders, 1)
	assert.Equal(t, "o1", u.Orders[0].ID)
	assert.Empty(t, u.Cart)
}

func TestDispatchUnknownEvent(t *testing.T) {
	d, _, userID := newTestDispatcher(t)

	body := envelopeBytes(t, "DELETE_ACCOUNT", Payload{UserID: userID})
	err := d.Dispatch(context.Background(), body)
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestDispatchMalformedEnvelope(t *testing.T) {
	d, _, userID := newTestDispatcher(t)
	ctx := context.Background()

	err := d.Dispatch(ctx, []byte("{not json"))
	assert.ErrorIs(t, err, ErrMalformedEnvelope)

	// valid json, missing userId
	err = d.Dispatch(ctx, []byte(`{"event":"ADD_TO_CART","data":{}}`))
	assert.ErrorIs(t, err, ErrMalformedEnvelope)

	// known kind, missing product
	err = d.Dispatch(ctx, envelopeBytes(t, "ADD_TO_CART", Payload{UserID: userID}))
	assert.ErrorIs(t, err, ErrMalformedEnvelope)
}
