package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/memo-auth-api/internal/apperr"
	"github.com/iliyamo/memo-auth-api/internal/model"
	"github.com/iliyamo/memo-auth-api/internal/queue"
	"github.com/iliyamo/memo-auth-api/internal/repository"
	"github.com/iliyamo/memo-auth-api/internal/repository/memory"
	"github.com/iliyamo/memo-auth-api/internal/utils"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.SessionEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.SessionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []queue.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]queue.EventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	deps    Deps
	users   *memory.UserRepo
	tokens  *memory.TokenRepo
	devices *memory.DeviceRepo
	memos   *memory.MemoRepo
	issuer  *utils.TokenIssuer
	events  *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	issuer, err := utils.NewTokenIssuer("test",
		utils.KeyConfig{Secret: "access-secret", TTL: 15 * time.Minute},
		utils.KeyConfig{Secret: "refresh-secret", TTL: 24 * time.Hour},
	)
	require.NoError(t, err)

	f := &fixture{
		users:   memory.NewUserRepo(),
		tokens:  memory.NewTokenRepo(),
		devices: memory.NewDeviceRepo(),
		memos:   memory.NewMemoRepo(),
		issuer:  issuer,
		events:  &recordingPublisher{},
	}
	f.deps = Deps{
		Users:    f.users,
		Sessions: repository.NewSessionStore(f.tokens, nil, zerolog.Nop()),
		Devices:  f.devices,
		Memos:    f.memos,
		Hasher:   utils.NewBcryptHasher(bcrypt.MinCost),
		Tokens:   issuer,
		Events:   f.events,
		Log:      zerolog.Nop(),
	}
	return f
}

func (f *fixture) addUser(t *testing.T, email, password string, role model.Role) *model.User {
	t.Helper()
	hash, err := f.deps.Hasher.Hash(password)
	require.NoError(t, err)
	u, err := model.NewUser(uuid.NewString(), email, hash, role)
	require.NoError(t, err)
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) addDevice(t *testing.T, owner *model.User) *model.Device {
	t.Helper()
	d, err := model.NewDevice(uuid.NewString(), owner.ID, "phone")
	require.NoError(t, err)
	require.NoError(t, f.devices.Create(context.Background(), d))
	return d
}

func (f *fixture) login(t *testing.T, email, password, deviceID string) TokenPair {
	t.Helper()
	pair, err := NewLogin(f.deps).Exec(context.Background(), LoginInput{Email: email, Password: password, DeviceID: deviceID})
	require.NoError(t, err)
	return pair
}

func (f *fixture) authenticate(access string) (*Principal, error) {
	return NewValidateAuthentication(f.deps).Exec(context.Background(), AuthenticationInput{Authorization: "Bearer " + access})
}

// assertAppErr checks kind and exact message of a use case error.
func assertAppErr(t *testing.T, err error, kind apperr.Kind, msg string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperr.KindOf(err), "kind of %q", err)
	assert.Equal(t, msg, err.Error())
}
