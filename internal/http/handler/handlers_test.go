package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"filedock/internal/audit"
	"filedock/internal/domain/file"
	"filedock/internal/domain/folder"
	"filedock/internal/domain/user"
	"filedock/internal/service"
	"filedock/internal/storage/s3"
	apperrors "filedock/pkg/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopAudit struct{}

func (noopAudit) Record(echo.Context, audit.ResourceType, *uuid.UUID, audit.Action, audit.Status, map[string]any) {
}

func (noopAudit) RecordError(echo.Context, audit.ResourceType, *uuid.UUID, audit.Action, error) {}

type fakePublicResolver struct {
	openFn func(ctx context.Context, slug string) (*file.File, *s3.Object, error)
}

func (f *fakePublicResolver) OpenBySlug(ctx context.Context, slug string) (*file.File, *s3.Object, error) {
	return f.openFn(ctx, slug)
}

type fakeFolderOps struct {
	FolderOperations

	deleteFn func(ctx context.Context, ident *user.Identity, id uuid.UUID, recursive bool) (*folder.DeleteReport, error)
	createFn func(ctx context.Context, ident *user.Identity, name string, parentID *uuid.UUID) (*folder.Folder, error)
}

func (f *fakeFolderOps) Delete(ctx context.Context, ident *user.Identity, id uuid.UUID, recursive bool) (*folder.DeleteReport, error) {
	return f.deleteFn(ctx, ident, id, recursive)
}

func (f *fakeFolderOps) Create(ctx context.Context, ident *user.Identity, name string, parentID *uuid.UUID) (*folder.Folder, error) {
	return f.createFn(ctx, ident, name, parentID)
}

type fakeAccounts struct {
	AccountService

	registerFn func(ctx context.Context, email, password string) (*service.LoginResult, error)
}

func (f *fakeAccounts) Register(ctx context.Context, email, password string) (*service.LoginResult, error) {
	return f.registerFn(ctx, email, password)
}

type fakeFileOps struct {
	FileOperations

	listFn func(ctx context.Context, ident *user.Identity, input service.ListInput) (*service.FilePage, error)
}

func (f *fakeFileOps) List(ctx context.Context, ident *user.Identity, input service.ListInput) (*service.FilePage, error) {
	return f.listFn(ctx, ident, input)
}

type fakeAuditQuerier struct {
	queryFn func(ctx context.Context, filter audit.QueryFilter) ([]*audit.Event, error)
}

func (f *fakeAuditQuerier) Query(ctx context.Context, filter audit.QueryFilter) ([]*audit.Event, error) {
	return f.queryFn(ctx, filter)
}

func newContext(t *testing.T, method, target string, body io.Reader, contentType string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()

	return echo.New().NewContext(req, rec), rec
}

func TestPublicGetBySlug(t *testing.T) {
	name := "report.pdf"
	contentType := "application/pdf"
	resolver := &fakePublicResolver{
		openFn: func(_ context.Context, slug string) (*file.File, *s3.Object, error) {
			if slug != "brave-falcon-a1b2" {
				return nil, nil, apperrors.NotFound("public file not found")
			}
			return &file.File{ID: uuid.New(), OriginalName: name, ContentType: &contentType},
				&s3.Object{Body: io.NopCloser(strings.NewReader("pdf-bytes")), Size: 9, ContentType: contentType},
				nil
		},
	}
	h := NewPublicHandler(resolver, noopAudit{})

	c, rec := newContext(t, http.MethodGet, "/public/brave-falcon-a1b2", nil, "")
	c.SetParamNames(paramSlug)
	c.SetParamValues("brave-falcon-a1b2")

	require.NoError(t, h.GetBySlug(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pdf-bytes", rec.Body.String())
	assert.Equal(t, contentType, rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), `inline; filename="report.pdf"`)
}

func TestPublicGetBySlugNotFound(t *testing.T) {
	resolver := &fakePublicResolver{
		openFn: func(context.Context, string) (*file.File, *s3.Object, error) {
			return nil, nil, apperrors.NotFound("public file not found")
		},
	}
	h := NewPublicHandler(resolver, noopAudit{})

	c, rec := newContext(t, http.MethodGet, "/public/nope", nil, "")
	c.SetParamNames(paramSlug)
	c.SetParamValues("nope")

	require.NoError(t, h.GetBySlug(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteFolderPartialFailureReturnsMultiStatus(t *testing.T) {
	failedID := uuid.New()
	folders := &fakeFolderOps{
		deleteFn: func(context.Context, *user.Identity, uuid.UUID, bool) (*folder.DeleteReport, error) {
			report := &folder.DeleteReport{
				FilesDeleted:   3,
				FoldersDeleted: 1,
				FoldersSkipped: 2,
				FailedFiles: []folder.FailedFile{
					{ID: failedID, StorageKey: "app/files/x-stuck.bin", Reason: "connection reset"},
				},
			}
			return report, apperrors.PartialDeletion("folder partially deleted: 1 of 4 files")
		},
	}
	h := NewFolderHandler(folders, noopAudit{})

	c, rec := newContext(t, http.MethodDelete, "/api/folders/"+uuid.NewString(), nil, "")
	c.SetParamNames(paramID)
	c.SetParamValues(uuid.NewString())

	require.NoError(t, h.DeleteFolder(c))
	assert.Equal(t, http.StatusMultiStatus, rec.Code)

	var resp DeleteReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(3), resp.FilesDeleted)
	assert.Equal(t, int64(1), resp.FoldersDeleted)
	assert.Equal(t, 2, resp.FoldersSkipped)
	require.Len(t, resp.FailedFiles, 1)
	assert.Equal(t, failedID, resp.FailedFiles[0].ID)
}

func TestCreateFolderRejectsUnknownFields(t *testing.T) {
	folders := &fakeFolderOps{
		createFn: func(context.Context, *user.Identity, string, *uuid.UUID) (*folder.Folder, error) {
			t.Fatal("service should not be reached")
			return nil, nil
		},
	}
	h := NewFolderHandler(folders, noopAudit{})

	body := `{"name":"docs","bogus":true}`
	c, rec := newContext(t, http.MethodPost, "/api/folders", strings.NewReader(body), contentTypeJSON)

	require.NoError(t, h.CreateFolder(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateFolderDistinguishesNullParent(t *testing.T) {
	var req UpdateFolderRequest
	require.NoError(t, json.Unmarshal([]byte(`{"parent_id":null}`), &req))
	require.NotNil(t, req.ParentID)

	parent, err := parseNullableUUID(req.ParentID)
	require.NoError(t, err)
	assert.Nil(t, parent)

	var absent UpdateFolderRequest
	require.NoError(t, json.Unmarshal([]byte(`{"name":"docs"}`), &absent))
	assert.Nil(t, absent.ParentID)

	id := uuid.New()
	require.NoError(t, json.Unmarshal([]byte(`{"parent_id":"`+id.String()+`"}`), &req))
	parent, err = parseNullableUUID(req.ParentID)
	require.NoError(t, err)
	require.NotNil(t, parent)
	assert.Equal(t, id, *parent)
}

func TestRegisterReturnsTokenEnvelope(t *testing.T) {
	accounts := &fakeAccounts{
		registerFn: func(_ context.Context, email, _ string) (*service.LoginResult, error) {
			return &service.LoginResult{
				User:  &user.User{ID: uuid.New(), Email: email, IsActive: true},
				Token: "signed-jwt",
			}, nil
		},
	}
	h := NewAuthHandler(accounts, noopAudit{})

	body := `{"email":"new@example.com","password":"correct horse battery"}`
	c, rec := newContext(t, http.MethodPost, "/auth/register", strings.NewReader(body), contentTypeJSON)

	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "signed-jwt", resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, "new@example.com", resp.User.Email)
}

func TestListFilesFolderQueryScoping(t *testing.T) {
	var captured service.ListInput
	files := &fakeFileOps{
		listFn: func(_ context.Context, _ *user.Identity, input service.ListInput) (*service.FilePage, error) {
			captured = input
			return &service.FilePage{Items: []*file.File{}, Page: 1, PerPage: 20}, nil
		},
	}
	h := NewFileHandler(files, noopAudit{})

	// No folder_id parameter: the listing is unscoped.
	c, rec := newContext(t, http.MethodGet, "/api/files", nil, "")
	require.NoError(t, h.ListFiles(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, captured.FolderScoped)
	assert.Nil(t, captured.FolderID)

	// Empty folder_id scopes to root-level files.
	c, rec = newContext(t, http.MethodGet, "/api/files?folder_id=", nil, "")
	require.NoError(t, h.ListFiles(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, captured.FolderScoped)
	assert.Nil(t, captured.FolderID)

	// A folder id scopes to that folder.
	id := uuid.New()
	c, rec = newContext(t, http.MethodGet, "/api/files?folder_id="+id.String(), nil, "")
	require.NoError(t, h.ListFiles(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, captured.FolderScoped)
	require.NotNil(t, captured.FolderID)
	assert.Equal(t, id, *captured.FolderID)

	c, rec = newContext(t, http.MethodGet, "/api/files?folder_id=not-a-uuid", nil, "")
	require.NoError(t, h.ListFiles(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAuditEventsAppliesFilters(t *testing.T) {
	actorID := uuid.New()
	var captured audit.QueryFilter
	querier := &fakeAuditQuerier{
		queryFn: func(_ context.Context, filter audit.QueryFilter) ([]*audit.Event, error) {
			captured = filter
			return []*audit.Event{
				{ID: uuid.New(), Action: audit.ActionUpload, Status: audit.StatusSuccess, ActorID: &actorID},
			}, nil
		},
	}
	h := NewAuditHandler(querier)

	target := "/api/audit?action=upload&status=success&actor_id=" + actorID.String() + "&limit=10&offset=5"
	c, rec := newContext(t, http.MethodGet, target, nil, "")

	require.NoError(t, h.ListEvents(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, captured.Action)
	assert.Equal(t, audit.ActionUpload, *captured.Action)
	require.NotNil(t, captured.Status)
	assert.Equal(t, audit.StatusSuccess, *captured.Status)
	require.NotNil(t, captured.ActorID)
	assert.Equal(t, actorID, *captured.ActorID)
	assert.Equal(t, 10, captured.Limit)
	assert.Equal(t, 5, captured.Offset)

	var resp AuditEventListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, "upload", resp.Events[0].Action)
}

func TestListAuditEventsRejectsBadLimit(t *testing.T) {
	querier := &fakeAuditQuerier{
		queryFn: func(context.Context, audit.QueryFilter) ([]*audit.Event, error) {
			t.Fatal("query should not be reached")
			return nil, nil
		},
	}
	h := NewAuditHandler(querier)

	for _, target := range []string{
		"/api/audit?limit=0",
		"/api/audit?limit=9999",
		"/api/audit?limit=abc",
		"/api/audit?offset=-1",
	} {
		c, rec := newContext(t, http.MethodGet, target, nil, "")
		require.NoError(t, h.ListEvents(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestRegisterDuplicateEmailMapsToConflict(t *testing.T) {
	accounts := &fakeAccounts{
		registerFn: func(context.Context, string, string) (*service.LoginResult, error) {
			return nil, &apperrors.AppError{Code: "EMAIL_EXISTS", Message: "email already registered", Err: apperrors.ErrEmailExists}
		},
	}
	h := NewAuthHandler(accounts, noopAudit{})

	body := `{"email":"dup@example.com","password":"correct horse battery"}`
	c, rec := newContext(t, http.MethodPost, "/auth/register", strings.NewReader(body), contentTypeJSON)

	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "email already registered")
}
