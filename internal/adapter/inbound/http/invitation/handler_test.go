package invitationhttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/calshare/server/internal/domain/invitation"
	"github.com/calshare/server/internal/model"
	"github.com/calshare/server/internal/port/inbound"
	apperrors "github.com/calshare/server/internal/utils/errors"
	"github.com/calshare/server/internal/utils/requestctx"
)

// MockInvitationDomain is a mock implementation of inbound.InvitationDomain.
type MockInvitationDomain struct {
	mock.Mock
}

func (m *MockInvitationDomain) CreateInvitation(ctx context.Context, input *inbound.CreateInvitationInput) (*model.Invitation, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invitation), args.Error(1)
}

func (m *MockInvitationDomain) Accept(ctx context.Context, actorID, invitationID uuid.UUID) (*model.Invitation, error) {
	return m.answer(m.Called(ctx, actorID, invitationID))
}

func (m *MockInvitationDomain) Reject(ctx context.Context, actorID, invitationID uuid.UUID) (*model.Invitation, error) {
	return m.answer(m.Called(ctx, actorID, invitationID))
}

func (m *MockInvitationDomain) ToggleVisible(ctx context.Context, actorID, invitationID uuid.UUID) (*model.Invitation, error) {
	return m.answer(m.Called(ctx, actorID, invitationID))
}

func (m *MockInvitationDomain) Get(ctx context.Context, actorID, invitationID uuid.UUID) (*model.Invitation, error) {
	return m.answer(m.Called(ctx, actorID, invitationID))
}

func (m *MockInvitationDomain) ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Invitation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Invitation), args.Error(1)
}

func (m *MockInvitationDomain) ListForCalendar(ctx context.Context, actorID, calendarID uuid.UUID) ([]*model.Invitation, error) {
	args := m.Called(ctx, actorID, calendarID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Invitation), args.Error(1)
}

func (m *MockInvitationDomain) answer(args mock.Arguments) (*model.Invitation, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invitation), args.Error(1)
}

var _ inbound.InvitationDomain = (*MockInvitationDomain)(nil)

func setupRouter(t *testing.T, userID uuid.UUID) (*gin.Engine, *MockInvitationDomain) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	domain := new(MockInvitationDomain)
	t.Cleanup(func() { domain.AssertExpectations(t) })

	asUser := func(c *gin.Context) {
		actor := requestctx.NewActor(userID, "user@example.com", "req-1")
		c.Request = c.Request.WithContext(requestctx.WithActor(c.Request.Context(), actor))
		c.Next()
	}

	r := gin.New()
	NewHandler(domain).RegisterRoutes(r.Group("/api/v1"), asUser)
	return r, domain
}

func serve(r http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestHandler_ListMyInvitations(t *testing.T) {
	userID := uuid.New()
	visible := &model.Invitation{ID: uuid.New(), ToID: userID, Status: model.InvitationStatusPending, Visible: true}
	hidden := &model.Invitation{ID: uuid.New(), ToID: userID, Status: model.InvitationStatusPending, Visible: false}

	t.Run("hidden_are_filtered", func(t *testing.T) {
		r, domain := setupRouter(t, userID)
		domain.On("ListForUser", mock.Anything, userID).Return([]*model.Invitation{visible, hidden}, nil)

		w := serve(r, http.MethodGet, "/api/v1/invitations")
		require.Equal(t, http.StatusOK, w.Code)

		var out []*model.Invitation
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		require.Len(t, out, 1)
		assert.Equal(t, visible.ID, out[0].ID)
	})

	t.Run("include_hidden", func(t *testing.T) {
		r, domain := setupRouter(t, userID)
		domain.On("ListForUser", mock.Anything, userID).Return([]*model.Invitation{visible, hidden}, nil)

		w := serve(r, http.MethodGet, "/api/v1/invitations?include_hidden=true")
		require.Equal(t, http.StatusOK, w.Code)

		var out []*model.Invitation
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		assert.Len(t, out, 2)
	})

	t.Run("empty_list_is_array", func(t *testing.T) {
		r, domain := setupRouter(t, userID)
		domain.On("ListForUser", mock.Anything, userID).Return([]*model.Invitation{}, nil)

		w := serve(r, http.MethodGet, "/api/v1/invitations")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", w.Body.String())
	})
}

func TestHandler_Answer(t *testing.T) {
	userID := uuid.New()
	invitationID := uuid.New()
	path := "/api/v1/invitations/" + invitationID.String()

	t.Run("accept", func(t *testing.T) {
		r, domain := setupRouter(t, userID)
		domain.On("Accept", mock.Anything, userID, invitationID).
			Return(&model.Invitation{ID: invitationID, Status: model.InvitationStatusAccepted}, nil)

		w := serve(r, http.MethodPost, path+"/accept")
		require.Equal(t, http.StatusOK, w.Code)

		var out model.Invitation
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		assert.Equal(t, model.InvitationStatusAccepted, out.Status)
	})

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"already_processed", invitation.ErrInvitationAlreadyProcessed, http.StatusConflict},
		{"not_invitee", invitation.ErrNotInvitee, http.StatusForbidden},
		{"not_found", invitation.ErrInvitationNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, domain := setupRouter(t, userID)
			domain.On("Reject", mock.Anything, userID, invitationID).Return(nil, tt.err)

			w := serve(r, http.MethodPost, path+"/reject")
			assert.Equal(t, tt.status, w.Code)

			var body apperrors.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error.Code)
		})
	}

	t.Run("invalid_id", func(t *testing.T) {
		r, _ := setupRouter(t, userID)

		w := serve(r, http.MethodPost, "/api/v1/invitations/not-a-uuid/accept")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_ListCalendarInvitations(t *testing.T) {
	userID := uuid.New()
	calendarID := uuid.New()

	r, domain := setupRouter(t, userID)
	domain.On("ListForCalendar", mock.Anything, userID, calendarID).Return(nil, invitation.ErrNotCalendarAdmin)

	w := serve(r, http.MethodGet, "/api/v1/calendars/"+calendarID.String()+"/invitations")
	assert.Equal(t, http.StatusForbidden, w.Code)
}
