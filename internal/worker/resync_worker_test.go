package worker

import (
	"context"
	"errors"
	"taskBoard/internal/models/contact"
	"taskBoard/internal/session"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockBoard struct {
	mock.Mock
}

func (m *MockBoard) Current() (session.Session, error) {
	args := m.Called()
	return args.Get(0).(session.Session), args.Error(1)
}

func (m *MockBoard) Pending() int {
	return m.Called().Int(0)
}

func (m *MockBoard) Reload(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func authenticated() session.Session {
	return session.Authenticated(contact.User{Name: "Anna", Email: "anna@example.com"})
}

func TestResyncWorker_Check(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(m *MockBoard)
		reloaded bool
	}{
		{
			name: "no session",
			setup: func(m *MockBoard) {
				m.On("Current").Return(session.Session{}, session.ErrNoSession)
			},
		},
		{
			name: "guest",
			setup: func(m *MockBoard) {
				m.On("Current").Return(session.Guest(), nil)
			},
		},
		{
			name: "pending writes",
			setup: func(m *MockBoard) {
				m.On("Current").Return(authenticated(), nil)
				m.On("Pending").Return(2)
			},
		},
		{
			name: "reload failure",
			setup: func(m *MockBoard) {
				m.On("Current").Return(authenticated(), nil)
				m.On("Pending").Return(0)
				m.On("Reload", mock.Anything).Return(errors.New("offline"))
			},
		},
		{
			name: "reloaded",
			setup: func(m *MockBoard) {
				m.On("Current").Return(authenticated(), nil)
				m.On("Pending").Return(0)
				m.On("Reload", mock.Anything).Return(nil)
			},
			reloaded: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockBoard)
			tt.setup(m)

			w := NewResyncWorker(m, nil)
			assert.Equal(t, tt.reloaded, w.Check(context.Background()))
			m.AssertExpectations(t)
		})
	}
}

func TestResyncWorker_DefaultInterval(t *testing.T) {
	w := NewResyncWorker(new(MockBoard), nil)
	assert.Equal(t, 5*time.Minute, w.interval)
}

func TestResyncWorker_StopsOnCancel(t *testing.T) {
	m := new(MockBoard)
	m.On("Current").Return(authenticated(), nil).Maybe()
	m.On("Pending").Return(0).Maybe()
	reloaded := make(chan struct{}, 1)
	m.On("Reload", mock.Anything).Return(nil).Run(func(mock.Arguments) {
		select {
		case reloaded <- struct{}{}:
		default:
		}
	})

	interval := 5 * time.Millisecond
	w := NewResyncWorker(m, &interval)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	select {
	case <-reloaded:
	case <-time.After(time.Second):
		t.Fatal("worker did not reload")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
