package service

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/aisgo/posibel/mq"
	"github.com/aisgo/posibel/store"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testPassword = "correct-horse-battery"

type recordingProducer struct {
	mu   sync.Mutex
	msgs []*mq.Message
	err  error
}

func (p *recordingProducer) Send(_ context.Context, msg *mq.Message) (*mq.Receipt, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	p.msgs = append(p.msgs, msg)
	return &mq.Receipt{Topic: msg.Topic}, nil
}

func (p *recordingProducer) Close() error { return nil }

func (p *recordingProducer) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.msgs))
	for _, m := range p.msgs {
		out = append(out, m.Topic)
	}
	return out
}

type fakeLocker struct {
	mu       sync.Mutex
	held     map[string]bool
	keys     []string
	released int
	err      error
}

func (l *fakeLocker) Hold(_ context.Context, scope, key string) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	name := scope + ":" + key
	if l.held[name] {
		return nil, stderrors.New("held")
	}
	if l.held == nil {
		l.held = map[string]bool{}
	}
	l.held[name] = true
	l.keys = append(l.keys, name)
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, name)
		l.released++
		return nil
	}, nil
}

type fixture struct {
	db       *gorm.DB
	stores   *store.Stores
	producer *recordingProducer
	locker   *fakeLocker
	orgs     *OrganizationService
	users    *UserService
	auth     *AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, store.AutoMigrate(t.Context(), db))

	f := &fixture{
		db:       db,
		stores:   store.New(db),
		producer: &recordingProducer{},
		locker:   &fakeLocker{},
	}
	d := Deps{
		Stores:   f.stores,
		Locker:   f.locker,
		Events:   NewPublisher(f.producer, "posibel.", nil),
		HashCost: bcrypt.MinCost,
	}
	f.users = NewUserService(d)
	f.orgs = NewOrganizationService(d, f.users)
	f.auth = NewAuthService(d)
	return f
}

func orgDTO(name, email string) RegisterOrganizationDTO {
	return RegisterOrganizationDTO{
		OrganizationName:     name,
		Email:                email,
		Password:             testPassword,
		ConfirmationPassword: testPassword,
		FirstName:            "Ada",
		LastName:             "Lovelace",
	}
}

func userDTO(email string, roleID int64) RegisterUserDTO {
	return RegisterUserDTO{
		RoleID:               roleID,
		Email:                email,
		Password:             testPassword,
		ConfirmationPassword: testPassword,
		FirstName:            "Grace",
		LastName:             "Hopper",
	}
}

func countRows(t *testing.T, db *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Table(table).Count(&n).Error)
	return n
}
