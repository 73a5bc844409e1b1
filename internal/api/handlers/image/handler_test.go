package handlers

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/shutterbin/image-service/internal/provider"
	"github.com/shutterbin/image-service/internal/store"
)

func testPNG(width, height int) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'})
	binary.Write(&buf, binary.BigEndian, uint32(13))
	buf.WriteString("IHDR")
	binary.Write(&buf, binary.BigEndian, uint32(width))
	binary.Write(&buf, binary.BigEndian, uint32(height))
	buf.Write([]byte{8, 6, 0, 0, 0})
	binary.Write(&buf, binary.BigEndian, uint32(0))
	return buf.Bytes()
}

func newTestRouter(t *testing.T) (*gin.Engine, *Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	p, err := provider.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	h := New(store.NewMemory(), p, nil)

	r := gin.New()
	r.GET("/i/:id", h.Raw)
	r.POST("/api/upload", h.Upload)
	r.GET("/api/images/:id", h.Get)
	r.DELETE("/api/images/:id", h.Delete)
	r.GET("/api/health", h.HealthCheck)
	return r, h
}

func uploadPNG(t *testing.T, r *gin.Engine) (id, token, rawURL string) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "photo.png")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	part.Write(testPNG(320, 240))
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Image struct {
			ID          string `json:"id"`
			DeleteToken string `json:"delete_token"`
			RawURL      string `json:"raw_url"`
			Width       int    `json:"width"`
			Height      int    `json:"height"`
		} `json:"image"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if resp.Image.ID == "" || resp.Image.DeleteToken == "" {
		t.Fatalf("receipt missing id or token: %+v", resp.Image)
	}
	if resp.Image.Width != 320 || resp.Image.Height != 240 {
		t.Errorf("dimensions = %dx%d, want 320x240", resp.Image.Width, resp.Image.Height)
	}
	return resp.Image.ID, resp.Image.DeleteToken, resp.Image.RawURL
}

func TestUploadAndGet(t *testing.T) {
	r, _ := newTestRouter(t)
	id, _, _ := uploadPNG(t, r)

	req := httptest.NewRequest(http.MethodGet, "/api/images/"+id, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("delete_token")) {
		t.Error("metadata view leaked the delete token")
	}
	var resp struct {
		Image struct {
			ID   string `json:"id"`
			Mime string `json:"mime"`
		} `json:"image"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode get response: %v", err)
	}
	if resp.Image.ID != id {
		t.Errorf("id = %q, want %q", resp.Image.ID, id)
	}
	if resp.Image.Mime != "image/png" {
		t.Errorf("mime = %q, want image/png", resp.Image.Mime)
	}
}

func TestGetMissing(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/images/ZZZZZZZZZZ", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestRawServesBytes(t *testing.T) {
	r, _ := newTestRouter(t)
	id, _, _ := uploadPNG(t, r)

	req := httptest.NewRequest(http.MethodGet, "/i/"+id, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("raw status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	if !bytes.Equal(rec.Body.Bytes(), testPNG(320, 240)) {
		t.Error("served bytes differ from uploaded bytes")
	}
}

func TestDeleteRequiresToken(t *testing.T) {
	r, h := newTestRouter(t)
	id, token, _ := uploadPNG(t, r)

	// No token at all.
	req := httptest.NewRequest(http.MethodDelete, "/api/images/"+id, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing token status = %d, want 400", rec.Code)
	}

	// Wrong token looks identical to a missing image.
	req = httptest.NewRequest(http.MethodDelete, "/api/images/"+id+"?token=wrong", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("wrong token status = %d, want 404", rec.Code)
	}
	if _, ok := h.Store.GetByID(id); !ok {
		t.Fatal("record vanished after rejected delete")
	}

	// Correct token via header.
	req = httptest.NewRequest(http.MethodDelete, "/api/images/"+id, nil)
	req.Header.Set("X-Delete-Token", token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body %s", rec.Code, rec.Body.String())
	}
	if _, ok := h.Store.GetByID(id); ok {
		t.Error("record still present after delete")
	}

	// Raw bytes are gone too.
	req = httptest.NewRequest(http.MethodGet, "/i/"+id, nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("raw after delete status = %d, want 404", rec.Code)
	}
}

func TestUploadRejectsUnknownType(t *testing.T) {
	r, _ := newTestRouter(t)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, _ := w.CreateFormFile("file", "notes.txt")
	part.Write([]byte("plain text"))
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("ok")) {
		t.Errorf("unexpected health body: %s", rec.Body.String())
	}
}
