package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/telcwrite/telcwrite/internal/document"
	"github.com/telcwrite/telcwrite/internal/document/repository"
	"github.com/telcwrite/telcwrite/internal/document/service"
	"github.com/telcwrite/telcwrite/internal/review"
)

type scriptedClient struct {
	result review.Result
	err    error
}

func (s *scriptedClient) Review(context.Context, string, string) (review.Result, error) {
	if s.err != nil {
		return review.Result{}, s.err
	}
	return s.result, nil
}

func newAPI(t *testing.T, client review.Client) (*gin.Engine, repository.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := repository.NewMemoryStore()
	g := gin.New()
	RegisterRoutes(g, service.New(store), review.NewLifecycle(store, client))
	return g, store
}

func do(g *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	g.ServeHTTP(w, req)
	return w
}

func createDoc(t *testing.T, g *gin.Engine, title string) string {
	t.Helper()
	w := do(g, http.MethodPost, "/api/documents", fmt.Sprintf(`{"title":%q}`, title))
	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		Document struct {
			ID string `json:"id"`
		} `json:"document"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Document.ID)
	return resp.Document.ID
}

func TestDocumentCRUD(t *testing.T) {
	g, _ := newAPI(t, &scriptedClient{})

	id := createDoc(t, g, "Erste Übung")

	w := do(g, http.MethodGet, "/api/documents/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(g, http.MethodGet, "/api/documents", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)

	w = do(g, http.MethodDelete, "/api/documents/"+id, "")
	require.Equal(t, http.StatusNoContent, w.Code)
	w = do(g, http.MethodGet, "/api/documents/"+id, "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateDocumentRejections(t *testing.T) {
	g, _ := newAPI(t, &scriptedClient{})

	w := do(g, http.MethodPost, "/api/documents", `{"title":""}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	createDoc(t, g, "Doppelt")
	w = do(g, http.MethodPost, "/api/documents", `{"title":"Doppelt"}`)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestContentGetAndPatch(t *testing.T) {
	g, _ := newAPI(t, &scriptedClient{})
	id := createDoc(t, g, "Inhalt")

	// defaults before anything was saved
	w := do(g, http.MethodGet, "/api/documents/"+id+"/content", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Content struct {
			Task           string   `json:"task"`
			SubmissionText string   `json:"submissionText"`
			ReviewScore    *float64 `json:"reviewScore"`
		} `json:"content"`
		State string `json:"state"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Empty(t, resp.Content.Task)
	require.Nil(t, resp.Content.ReviewScore)
	require.Equal(t, "editable", resp.State)

	// field-level merge across two patches
	w = do(g, http.MethodPatch, "/api/documents/"+id+"/content", `{"task":"Aufgabe"}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(g, http.MethodPatch, "/api/documents/"+id+"/content", `{"submissionText":"Mein Text"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(g, http.MethodGet, "/api/documents/"+id+"/content", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "Aufgabe", resp.Content.Task)
	require.Equal(t, "Mein Text", resp.Content.SubmissionText)

	w = do(g, http.MethodGet, "/api/documents/missing/content", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestPatchCorrectionBeforeReview(t *testing.T) {
	g, _ := newAPI(t, &scriptedClient{})
	id := createDoc(t, g, "Zu früh")

	w := do(g, http.MethodPatch, "/api/documents/"+id+"/content", `{"correction":"++x++"}`)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestReviewFlow(t *testing.T) {
	client := &scriptedClient{result: review.Result{Score: 4, Feedback: "gut", Correction: "--a--++b++"}}
	g, store := newAPI(t, client)
	id := createDoc(t, g, "Korrigier mich")

	long := strings.TrimSpace(strings.Repeat("wort ", 100))
	w := do(g, http.MethodPatch, "/api/documents/"+id+"/content", fmt.Sprintf(`{"submissionText":%q}`, long))
	require.Equal(t, http.StatusOK, w.Code)

	w = do(g, http.MethodPost, "/api/documents/"+id+"/review", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Feedback review.Result `json:"feedback"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 4.0, resp.Feedback.Score)

	c, err := store.GetContent(context.Background(), id)
	require.NoError(t, err)
	require.True(t, c.HasReview())

	// state is now reviewed on load
	w = do(g, http.MethodGet, "/api/documents/"+id+"/content", "")
	var state struct {
		State string `json:"state"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	require.Equal(t, "reviewed", state.State)
}

func TestReviewNotEligible(t *testing.T) {
	g, _ := newAPI(t, &scriptedClient{result: review.Result{Score: 1, Feedback: "f", Correction: "c"}})
	id := createDoc(t, g, "Zu kurz")

	short := strings.TrimSpace(strings.Repeat("wort ", 99))
	do(g, http.MethodPatch, "/api/documents/"+id+"/content", fmt.Sprintf(`{"submissionText":%q}`, short))

	w := do(g, http.MethodPost, "/api/documents/"+id+"/review", "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestReviewServiceFailure(t *testing.T) {
	client := &scriptedClient{err: fmt.Errorf("%w: upstream", review.ErrService)}
	g, store := newAPI(t, client)
	id := createDoc(t, g, "Kaputt")

	long := strings.TrimSpace(strings.Repeat("wort ", 120))
	do(g, http.MethodPatch, "/api/documents/"+id+"/content", fmt.Sprintf(`{"submissionText":%q}`, long))

	w := do(g, http.MethodPost, "/api/documents/"+id+"/review", "")
	require.Equal(t, http.StatusBadGateway, w.Code)

	c, err := store.GetContent(context.Background(), id)
	require.NoError(t, err)
	require.False(t, c.HasReview())
	require.Equal(t, long, c.SubmissionText)
}

func TestReviewMissingDocument(t *testing.T) {
	g, _ := newAPI(t, &scriptedClient{})
	w := do(g, http.MethodPost, "/api/documents/missing/review", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCorrectionEndpoint(t *testing.T) {
	g, store := newAPI(t, &scriptedClient{})
	id := createDoc(t, g, "Gerendert")
	require.NoError(t, store.SetReview(context.Background(), id, document.Review{
		Score: 3, Feedback: "ok", Correction: "--alt--++neu++ <b>",
	}))

	w := do(g, http.MethodGet, "/api/documents/"+id+"/correction", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Raw      string `json:"raw"`
		Rendered string `json:"rendered"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "--alt--++neu++ <b>", resp.Raw)
	require.Contains(t, resp.Rendered, `<span class="bg-removed px-1 rounded">alt</span>`)
	require.Contains(t, resp.Rendered, `<span class="bg-added px-1 rounded">neu</span>`)
	require.NotContains(t, resp.Rendered, "<b>")
}
