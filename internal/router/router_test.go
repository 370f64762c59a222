package router

import (
    "encoding/json"
    "fmt"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/pistac/admin-backend/internal/entitlement"
    "github.com/pistac/admin-backend/internal/handler"
    "github.com/pistac/admin-backend/internal/model"
    "github.com/pistac/admin-backend/internal/ordering"
    "github.com/pistac/admin-backend/internal/publication"
    "github.com/pistac/admin-backend/internal/registration"
    "github.com/pistac/admin-backend/internal/testutil"
    "github.com/pistac/admin-backend/internal/utils"
)

const secret = "router-test-secret"

type server struct {
    e     *echo.Echo
    store *testutil.Store
    admin string
    user  string
    uid   uint64
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

func newServer(t *testing.T) *server {
    t.Helper()
    store := testutil.NewStore()
    events := &testutil.RecordingPublisher{}

    h := Handlers{
        Access: handler.NewAccessHandler(
            entitlement.NewResolver(store.Users(), store.Courses(), store.Access(), events),
            entitlement.NewUsers(store.Users(), events),
        ),
        Documents: handler.NewDocumentHandler(publication.NewService(store.Documents(), store.Magazines(), events)),
        Display: handler.NewDisplayHandler(
            ordering.NewCollection[*model.Slide]("slide", store.Slides(), ordering.ValidateSlide, events),
            ordering.NewCollection[*model.QuickAccessItem]("quick_access", store.QuickAccess(), ordering.ValidateQuickAccess, events),
            nil,
        ),
        Workshops: handler.NewWorkshopHandler(registration.NewLifecycle(store.Workshops(), store.Registrations(), events)),
    }
    e := echo.New()
    RegisterRoutes(e, nil)
    RegisterPublic(e, h, passThrough)
    RegisterMe(e, h, secret)
    RegisterAdmin(e, h, secret, passThrough)

    adminID := store.AddUser("root", model.RoleAdmin, model.TierVIP)
    uid := store.AddUser("u1", model.RoleUser, model.TierFree)
    admin, err := utils.NewAccessToken(secret, adminID, model.RoleAdmin, time.Hour)
    require.NoError(t, err)
    user, err := utils.NewAccessToken(secret, uid, model.RoleUser, time.Hour)
    require.NoError(t, err)
    return &server{e: e, store: store, admin: admin.Token, user: user.Token, uid: uid}
}

func (s *server) call(method, path, token, body string) *httptest.ResponseRecorder {
    var req *http.Request
    if body != "" {
        req = httptest.NewRequest(method, path, strings.NewReader(body))
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    } else {
        req = httptest.NewRequest(method, path, nil)
    }
    if token != "" {
        req.Header.Set("Authorization", "Bearer "+token)
    }
    rec := httptest.NewRecorder()
    s.e.ServeHTTP(rec, req)
    return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
    t.Helper()
    var out map[string]any
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
    return out
}

func TestHealth(t *testing.T) {
    s := newServer(t)
    rec := s.call(http.MethodGet, "/healthz", "", "")
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
    s := newServer(t)
    assert.Equal(t, http.StatusUnauthorized, s.call(http.MethodGet, "/v1/admin/users", "", "").Code)
    assert.Equal(t, http.StatusForbidden, s.call(http.MethodGet, "/v1/admin/users", s.user, "").Code)
    assert.Equal(t, http.StatusOK, s.call(http.MethodGet, "/v1/admin/users", s.admin, "").Code)
}

func TestCourseAccessFlow(t *testing.T) {
    s := newServer(t)
    c1 := s.store.AddCourse("c1", model.TierPremium)

    rec := s.call(http.MethodGet, fmt.Sprintf("/v1/me/courses/%d/access", c1), s.user, "")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "insufficient-tier", decode(t, rec)["reason"])

    expiry := time.Now().Add(7 * 24 * time.Hour).UTC().Format(time.RFC3339)
    rec = s.call(http.MethodPost, fmt.Sprintf("/v1/admin/users/%d/grant-course-access", s.uid), s.admin,
        `{"courseId":`+fmt.Sprint(c1)+`,"accessType":"trial","expiryDate":"`+expiry+`"}`)
    require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
    assert.Equal(t, "trial", decode(t, rec)["accessType"])

    rec = s.call(http.MethodGet, fmt.Sprintf("/v1/admin/users/%d/course-access/%d", s.uid, c1), s.admin, "")
    require.Equal(t, http.StatusOK, rec.Code)
    body := decode(t, rec)
    assert.Equal(t, true, body["allowed"])
    assert.Equal(t, "grant", body["reason"])

    rec = s.call(http.MethodGet, fmt.Sprintf("/v1/admin/users/%d/course-access", s.uid), s.admin, "")
    require.Equal(t, http.StatusOK, rec.Code)
    body = decode(t, rec)
    assert.Len(t, body["grants"], 1)
    assert.Len(t, body["entitlements"], 1)

    rec = s.call(http.MethodPost, fmt.Sprintf("/v1/admin/users/%d/grant-course-access", s.uid), s.admin,
        `{"courseId":`+fmt.Sprint(c1)+`,"expiryDate":"soon"}`)
    assert.Equal(t, http.StatusBadRequest, rec.Code)

    rec = s.call(http.MethodPost, fmt.Sprintf("/v1/admin/users/%d/grant-course-access", s.uid), s.admin, `{}`)
    assert.Equal(t, http.StatusBadRequest, rec.Code)
    assert.Contains(t, decode(t, rec)["error"], "courseId")

    rec = s.call(http.MethodDelete, fmt.Sprintf("/v1/admin/users/%d/revoke-course-access/%d", s.uid, c1), s.admin, "")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, true, decode(t, rec)["revoked"])
    rec = s.call(http.MethodDelete, fmt.Sprintf("/v1/admin/users/%d/revoke-course-access/%d", s.uid, c1), s.admin, "")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, false, decode(t, rec)["revoked"])

    assert.Equal(t, http.StatusNotFound, s.call(http.MethodGet, "/v1/admin/users/999/course-access", s.admin, "").Code)
}

func TestBatchGrant(t *testing.T) {
    s := newServer(t)
    c1 := s.store.AddCourse("c1", model.TierPremium)
    rec := s.call(http.MethodPost, fmt.Sprintf("/v1/admin/users/%d/grant-course-access/batch", s.uid), s.admin,
        `{"items":[{"courseId":`+fmt.Sprint(c1)+`},{"courseId":4242}]}`)
    require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
    body := decode(t, rec)
    assert.EqualValues(t, 1, body["succeeded"])
    assert.EqualValues(t, 1, body["failed"])
}

func TestBatchGrantReportsInvalidItem(t *testing.T) {
    s := newServer(t)
    c1 := s.store.AddCourse("c1", model.TierPremium)
    rec := s.call(http.MethodPost, fmt.Sprintf("/v1/admin/users/%d/grant-course-access/batch", s.uid), s.admin,
        `{"items":[{"courseId":`+fmt.Sprint(c1)+`},{"accessType":"trial"}]}`)
    require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
    body := decode(t, rec)
    assert.EqualValues(t, 1, body["succeeded"])
    assert.EqualValues(t, 1, body["failed"])

    results := body["results"].([]any)
    require.Len(t, results, 2)
    assert.Equal(t, true, results[0].(map[string]any)["ok"])
    bad := results[1].(map[string]any)
    assert.Equal(t, false, bad["ok"])
    assert.Contains(t, bad["error"], "courseId")

    rec = s.call(http.MethodPost, fmt.Sprintf("/v1/admin/users/%d/grant-course-access/batch", s.uid), s.admin, `{"items":[]}`)
    assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentLifecycle(t *testing.T) {
    s := newServer(t)
    rec := s.call(http.MethodPost, "/v1/admin/documents", s.admin, `{"title":"Intro","category":"news"}`)
    require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
    doc := decode(t, rec)
    id := jsonNum(doc["id"])
    assert.Equal(t, false, doc["isPublished"])

    rec = s.call(http.MethodPost, "/v1/admin/documents/"+id+"/toggle-featured", s.admin, "")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, true, decode(t, rec)["isFeatured"])

    assert.Equal(t, http.StatusNotFound, s.call(http.MethodGet, "/v1/articles/"+id, "", "").Code)
    rec = s.call(http.MethodGet, "/v1/articles?featured=true", "", "")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Empty(t, decode(t, rec)["items"])

    rec = s.call(http.MethodPatch, "/v1/admin/documents/"+id, s.admin, `{"isPublished":true,"version":1}`)
    assert.Equal(t, http.StatusConflict, rec.Code)
    rec = s.call(http.MethodPatch, "/v1/admin/documents/"+id, s.admin, `{"isPublished":true}`)
    require.Equal(t, http.StatusOK, rec.Code)
    doc = decode(t, rec)
    assert.Equal(t, true, doc["isPublished"])
    assert.Equal(t, true, doc["isFeatured"])

    rec = s.call(http.MethodGet, "/v1/articles?featured=true&category=news", "", "")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Len(t, decode(t, rec)["items"], 1)

    assert.Equal(t, http.StatusBadRequest, s.call(http.MethodPatch, "/v1/admin/documents/"+id, s.admin, `{}`).Code)
    assert.Equal(t, http.StatusNotFound, s.call(http.MethodPost, "/v1/admin/documents/999/toggle-featured", s.admin, "").Code)
    assert.Equal(t, http.StatusBadRequest, s.call(http.MethodGet, "/v1/admin/documents/abc", s.admin, "").Code)
}

func TestSlidesOrderingOverHTTP(t *testing.T) {
    s := newServer(t)
    var ids []string
    for _, order := range []string{"5", "5", "1"} {
        rec := s.call(http.MethodPost, "/v1/admin/slides", s.admin, `{"title":"s","order":`+order+`}`)
        require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
        ids = append(ids, jsonNum(decode(t, rec)["id"]))
    }

    listIDs := func(path, token string) []string {
        rec := s.call(http.MethodGet, path, token, "")
        require.Equal(t, http.StatusOK, rec.Code)
        var out []string
        for _, it := range decode(t, rec)["items"].([]any) {
            out = append(out, jsonNum(it.(map[string]any)["id"]))
        }
        return out
    }
    assert.Equal(t, []string{ids[2], ids[0], ids[1]}, listIDs("/v1/slides", ""))

    rec := s.call(http.MethodPatch, "/v1/admin/slides/"+ids[0], s.admin, `{"isActive":false}`)
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, []string{ids[2], ids[1]}, listIDs("/v1/slides", ""))
    assert.Len(t, listIDs("/v1/admin/slides", s.admin), 3)

    rec = s.call(http.MethodPatch, "/v1/admin/slides/"+ids[1], s.admin, `{"order":0}`)
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, []string{ids[1], ids[2]}, listIDs("/v1/slides", ""))

    assert.Equal(t, http.StatusBadRequest, s.call(http.MethodPost, "/v1/admin/slides", s.admin, `{"order":1}`).Code)
    assert.Equal(t, http.StatusNotFound, s.call(http.MethodPatch, "/v1/admin/slides/999", s.admin, `{"order":1}`).Code)
    assert.Equal(t, http.StatusOK, s.call(http.MethodDelete, "/v1/admin/slides/"+ids[2], s.admin, "").Code)
}

func TestAdminCreatedRegistrationStartsPending(t *testing.T) {
    s := newServer(t)
    rec := s.call(http.MethodPost, "/v1/admin/workshops", s.admin, `{"title":"Go"}`)
    require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
    wid := jsonNum(decode(t, rec)["id"])

    rec = s.call(http.MethodPost, "/v1/admin/workshop-registrations", s.admin,
        `{"workshopId":`+wid+`,"userName":"Ana","userEmail":"ana@example.com","status":"confirmed"}`)
    require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
    assert.Equal(t, "pending", decode(t, rec)["status"])
}

func TestWorkshopRegistrationFlow(t *testing.T) {
    s := newServer(t)
    rec := s.call(http.MethodPost, "/v1/admin/workshops", s.admin, `{"title":"Go"}`)
    require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
    wid := jsonNum(decode(t, rec)["id"])

    rec = s.call(http.MethodPost, "/v1/workshops/"+wid+"/register", "", `{"userName":"Ana","userEmail":"not-an-email"}`)
    assert.Equal(t, http.StatusBadRequest, rec.Code)
    rec = s.call(http.MethodPost, "/v1/workshops/"+wid+"/register", "", `{"userName":"Ana","userEmail":"ana@example.com"}`)
    require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
    reg := decode(t, rec)
    assert.Equal(t, "pending", reg["status"])
    rid := jsonNum(reg["id"])

    rec = s.call(http.MethodPatch, "/v1/admin/workshop-registrations/"+rid, s.admin, `{"status":"cancelled"}`)
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, "cancelled", decode(t, rec)["status"])
    assert.Equal(t, http.StatusBadRequest,
        s.call(http.MethodPatch, "/v1/admin/workshop-registrations/"+rid, s.admin, `{"status":"gone"}`).Code)

    rec = s.call(http.MethodGet, "/v1/admin/workshop-registrations?workshopId="+wid, s.admin, "")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Len(t, decode(t, rec)["items"], 1)

    assert.Equal(t, http.StatusConflict, s.call(http.MethodDelete, "/v1/admin/workshops/"+wid, s.admin, "").Code)
    rec = s.call(http.MethodDelete, "/v1/admin/workshops/"+wid+"?cascade=true", s.admin, "")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.EqualValues(t, 1, decode(t, rec)["registrationsRemoved"])
    assert.Equal(t, http.StatusNotFound, s.call(http.MethodGet, "/v1/admin/workshop-registrations/"+rid, s.admin, "").Code)
}

// jsonNum renders a decoded JSON id as a path segment.
func jsonNum(v any) string {
    b, _ := json.Marshal(v)
    return string(b)
}
