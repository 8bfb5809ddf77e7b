package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"valentine/internal/delivery/http/helpers"
	"valentine/internal/delivery/http/middleware"
	"valentine/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMessageService implements domain.MessageService for handler tests.
type fakeMessageService struct {
	createResult *domain.CreateMessageResult
	createErr    error
	lastEmail    string
	lastInput    domain.CreateMessageInput

	getMessage *domain.Message
	getErr     error

	acceptResult *domain.AcceptResult
	acceptErr    error

	listMine    []*domain.OwnedMessage
	listMineErr error

	listAll      []*domain.Message
	listAllStats *domain.MessageStats
	listAllErr   error
}

func (f *fakeMessageService) Create(ctx context.Context, userEmail string, in domain.CreateMessageInput) (*domain.CreateMessageResult, error) {
	f.lastEmail = userEmail
	f.lastInput = in
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createResult, nil
}

func (f *fakeMessageService) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getMessage, nil
}

func (f *fakeMessageService) Accept(ctx context.Context, id string) (*domain.AcceptResult, error) {
	if f.acceptErr != nil {
		return nil, f.acceptErr
	}
	return f.acceptResult, nil
}

func (f *fakeMessageService) ListMine(ctx context.Context, userID string) ([]*domain.OwnedMessage, error) {
	if f.listMineErr != nil {
		return nil, f.listMineErr
	}
	return f.listMine, nil
}

func (f *fakeMessageService) ListAll(ctx context.Context) ([]*domain.Message, *domain.MessageStats, error) {
	if f.listAllErr != nil {
		return nil, nil, f.listAllErr
	}
	return f.listAll, f.listAllStats, nil
}

func testControllerLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func userClaims(email string) *domain.TokenClaims {
	return &domain.TokenClaims{Subject: "user-1", Email: email, Roles: []string{"user"}}
}

func TestMessageController_Create(t *testing.T) {
	validBody := `{"recipient_name":"Sam","sender_email":"a@x.com","captcha_token":"tok"}`

	tests := []struct {
		name           string
		claims         *domain.TokenClaims
		body           string
		fakeResult     *domain.CreateMessageResult
		fakeErr        error
		wantStatus     int
		wantBodyCode   string
		wantBodySubstr string
	}{
		{
			name:       "success",
			claims:     userClaims("a@x.com"),
			body:       validBody,
			fakeResult: &domain.CreateMessageResult{MessageID: "msg-1", Remaining: 4},
			wantStatus: http.StatusCreated,
		},
		{
			name:         "no claims in context",
			body:         validBody,
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeAuthRequired,
		},
		{
			name:           "invalid json",
			claims:         userClaims("a@x.com"),
			body:           `{invalid`,
			wantStatus:     http.StatusBadRequest,
			wantBodyCode:   helpers.ErrCodeBadRequest,
			wantBodySubstr: "invalid",
		},
		{
			name:           "missing recipient name",
			claims:         userClaims("a@x.com"),
			body:           `{"sender_email":"a@x.com","captcha_token":"tok"}`,
			wantStatus:     http.StatusBadRequest,
			wantBodyCode:   helpers.ErrCodeBadRequest,
			wantBodySubstr: "recipient_name",
		},
		{
			name:           "email validation failure",
			claims:         userClaims("a@x.com"),
			body:           validBody,
			fakeErr:        &domain.ValidationError{Reason: "Disposable email addresses are not allowed"},
			wantStatus:     http.StatusBadRequest,
			wantBodyCode:   helpers.ErrCodeBadRequest,
			wantBodySubstr: "Disposable",
		},
		{
			name:           "captcha failure",
			claims:         userClaims("a@x.com"),
			body:           validBody,
			fakeErr:        domain.ErrCaptchaFailed,
			wantStatus:     http.StatusBadRequest,
			wantBodyCode:   helpers.ErrCodeBadRequest,
			wantBodySubstr: "Captcha",
		},
		{
			name:         "rate limited",
			claims:       userClaims("a@x.com"),
			body:         validBody,
			fakeErr:      &domain.RateLimitedError{ResetAt: time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)},
			wantStatus:   http.StatusTooManyRequests,
			wantBodyCode: helpers.ErrCodeRateLimited,
		},
		{
			name:         "user row missing",
			claims:       userClaims("a@x.com"),
			body:         validBody,
			fakeErr:      domain.ErrUserNotFound,
			wantStatus:   http.StatusNotFound,
			wantBodyCode: helpers.ErrCodeNotFound,
		},
		{
			name:         "service error",
			claims:       userClaims("a@x.com"),
			body:         validBody,
			fakeErr:      assert.AnError,
			wantStatus:   http.StatusInternalServerError,
			wantBodyCode: helpers.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeMessageService{createResult: tt.fakeResult, createErr: tt.fakeErr}
			ctrl := NewMessageController(testControllerLogger(), fake)

			req := httptest.NewRequest(http.MethodPost, "http://test/messages", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.claims != nil {
				req = req.WithContext(middleware.SetClaims(req.Context(), tt.claims))
			}
			rr := httptest.NewRecorder()

			ctrl.Create(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusCreated {
				require.Nil(t, envelope.Error)
				dataBytes, err := json.Marshal(envelope.Data)
				require.NoError(t, err)
				var resp CreateMessageResponse
				require.NoError(t, json.Unmarshal(dataBytes, &resp))
				assert.Equal(t, "msg-1", resp.MessageID)
				assert.Equal(t, 4, resp.Remaining)
				assert.Equal(t, "a@x.com", fake.lastEmail)
				return
			}
			require.NotNil(t, envelope.Error)
			if tt.wantBodyCode != "" {
				assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
			}
			if tt.wantBodyCode == helpers.ErrCodeRateLimited {
				require.NotNil(t, envelope.Error.ResetAt)
				assert.Equal(t, time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC), envelope.Error.ResetAt.UTC())
			}
			if tt.wantBodySubstr != "" {
				assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr)
			}
		})
	}
}

func TestMessageController_Create_NormalizesInput(t *testing.T) {
	fake := &fakeMessageService{createResult: &domain.CreateMessageResult{MessageID: "msg-1", Remaining: 4}}
	ctrl := NewMessageController(testControllerLogger(), fake)

	body := `{"recipient_name":"  Sam  ","sender_email":"A@X.COM","sender_name":" Alice ","captcha_token":"tok"}`
	req := httptest.NewRequest(http.MethodPost, "http://test/messages", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	req = req.WithContext(middleware.SetClaims(req.Context(), userClaims("owner@x.com")))
	rr := httptest.NewRecorder()

	ctrl.Create(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "owner@x.com", fake.lastEmail)
	assert.Equal(t, "Sam", fake.lastInput.RecipientName)
	assert.Equal(t, "a@x.com", fake.lastInput.SenderEmail)
	assert.Equal(t, "Alice", fake.lastInput.SenderName)
	assert.Equal(t, "203.0.113.7", fake.lastInput.IPAddress)
}

func TestMessageController_Get(t *testing.T) {
	now := time.Now()
	clicked := now.Add(-time.Hour)

	tests := []struct {
		name         string
		fakeMessage  *domain.Message
		fakeErr      error
		wantStatus   int
		wantBodyCode string
	}{
		{
			name: "success strips private fields",
			fakeMessage: &domain.Message{
				ID:            "msg-1",
				RecipientName: "Sam",
				SenderEmail:   "a@x.com",
				SenderName:    "Alice",
				UserID:        "user-1",
				IPAddress:     "1.2.3.4",
				Clicked:       true,
				ClickedAt:     &clicked,
				CreatedAt:     now,
			},
			wantStatus: http.StatusOK,
		},
		{
			name:         "not found",
			fakeErr:      domain.ErrMessageNotFound,
			wantStatus:   http.StatusNotFound,
			wantBodyCode: helpers.ErrCodeNotFound,
		},
		{
			name:         "service error",
			fakeErr:      assert.AnError,
			wantStatus:   http.StatusInternalServerError,
			wantBodyCode: helpers.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeMessageService{getMessage: tt.fakeMessage, getErr: tt.fakeErr}
			ctrl := NewMessageController(testControllerLogger(), fake)

			req := httptest.NewRequest(http.MethodGet, "http://test/messages/msg-1", nil)
			req.SetPathValue("id", "msg-1")
			rr := httptest.NewRecorder()

			ctrl.Get(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusOK {
				require.Nil(t, envelope.Error)
				dataBytes, err := json.Marshal(envelope.Data)
				require.NoError(t, err)
				var m domain.Message
				require.NoError(t, json.Unmarshal(dataBytes, &m))
				assert.Equal(t, "msg-1", m.ID)
				assert.Equal(t, "Sam", m.RecipientName)
				assert.Empty(t, m.SenderEmail, "sender email must not leak on the public view")
				assert.True(t, m.Clicked)
				return
			}
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
		})
	}
}

func TestMessageController_Accept(t *testing.T) {
	tests := []struct {
		name               string
		fakeResult         *domain.AcceptResult
		fakeErr            error
		wantStatus         int
		wantBodyCode       string
		wantAlreadyClicked bool
	}{
		{
			name:       "first acceptance",
			fakeResult: &domain.AcceptResult{AlreadyClicked: false},
			wantStatus: http.StatusOK,
		},
		{
			name:               "repeat acceptance",
			fakeResult:         &domain.AcceptResult{AlreadyClicked: true},
			wantStatus:         http.StatusOK,
			wantAlreadyClicked: true,
		},
		{
			name:         "not found",
			fakeErr:      domain.ErrMessageNotFound,
			wantStatus:   http.StatusNotFound,
			wantBodyCode: helpers.ErrCodeNotFound,
		},
		{
			name:         "service error",
			fakeErr:      assert.AnError,
			wantStatus:   http.StatusInternalServerError,
			wantBodyCode: helpers.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeMessageService{acceptResult: tt.fakeResult, acceptErr: tt.fakeErr}
			ctrl := NewMessageController(testControllerLogger(), fake)

			req := httptest.NewRequest(http.MethodPost, "http://test/messages/msg-1/click", nil)
			req.SetPathValue("id", "msg-1")
			rr := httptest.NewRecorder()

			ctrl.Accept(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusOK {
				require.Nil(t, envelope.Error)
				dataBytes, err := json.Marshal(envelope.Data)
				require.NoError(t, err)
				var resp AcceptResponse
				require.NoError(t, json.Unmarshal(dataBytes, &resp))
				assert.Equal(t, tt.wantAlreadyClicked, resp.AlreadyClicked)
				return
			}
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
		})
	}
}

func TestMessageController_ListMine(t *testing.T) {
	now := time.Now()
	owned := []*domain.OwnedMessage{
		{
			Message:       &domain.Message{ID: "msg-2", RecipientName: "Sam", SenderEmail: "a@x.com", Clicked: true, CreatedAt: now},
			ShareableLink: "https://valentine.test/valentine?id=msg-2",
			Status:        "clicked",
		},
		{
			Message:       &domain.Message{ID: "msg-1", RecipientName: "Pat", SenderEmail: "a@x.com", CreatedAt: now.Add(-time.Hour)},
			ShareableLink: "https://valentine.test/valentine?id=msg-1",
			Status:        "waiting",
		},
	}

	tests := []struct {
		name         string
		claims       *domain.TokenClaims
		fakeList     []*domain.OwnedMessage
		fakeErr      error
		wantStatus   int
		wantBodyCode string
		wantCount    int
	}{
		{
			name:       "success",
			claims:     userClaims("a@x.com"),
			fakeList:   owned,
			wantStatus: http.StatusOK,
			wantCount:  2,
		},
		{
			name:         "no claims in context",
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeAuthRequired,
		},
		{
			name:         "service error",
			claims:       userClaims("a@x.com"),
			fakeErr:      assert.AnError,
			wantStatus:   http.StatusInternalServerError,
			wantBodyCode: helpers.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeMessageService{listMine: tt.fakeList, listMineErr: tt.fakeErr}
			ctrl := NewMessageController(testControllerLogger(), fake)

			req := httptest.NewRequest(http.MethodGet, "http://test/users/me/messages", nil)
			if tt.claims != nil {
				req = req.WithContext(middleware.SetClaims(req.Context(), tt.claims))
			}
			rr := httptest.NewRecorder()

			ctrl.ListMine(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusOK {
				require.Nil(t, envelope.Error)
				dataBytes, err := json.Marshal(envelope.Data)
				require.NoError(t, err)
				var list []*domain.OwnedMessage
				require.NoError(t, json.Unmarshal(dataBytes, &list))
				require.Len(t, list, tt.wantCount)
				assert.Equal(t, "clicked", list[0].Status)
				assert.Equal(t, "https://valentine.test/valentine?id=msg-2", list[0].ShareableLink)
				return
			}
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
		})
	}
}
