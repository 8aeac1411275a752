package upload

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func multipartBody(t *testing.T, names ...string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, name := range names {
		fw, err := w.CreateFormFile("files", name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte("content of " + name)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, w.FormDataContentType()
}

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "XLSX")
	return NewService(dir, []string{"ATNYSEG", "SIGASTI"}, nil, nil), dir
}

func postUpload(t *testing.T, svc *Service, names ...string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, names...)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	svc.ServeHTTP(rec, req)
	return rec
}

func TestUploadAccepted(t *testing.T) {
	svc, dir := newTestService(t)

	rec := postUpload(t, svc, "SIGASTI_150925.xlsx", "ATNYSEG_150925.xlsx")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var resp struct {
		OK    bool     `json:"ok"`
		Files []string `json:"files"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.OK || len(resp.Files) != 2 {
		t.Fatalf("response = %+v", resp)
	}

	// Order of arrival is preserved; files land under the storage namespace.
	if resp.Files[0] != "XLSX/SIGASTI_150925.xlsx" || resp.Files[1] != "XLSX/ATNYSEG_150925.xlsx" {
		t.Errorf("paths = %v", resp.Files)
	}
	for _, name := range []string{"SIGASTI_150925.xlsx", "ATNYSEG_150925.xlsx"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("stored file missing: %v", err)
		}
	}
}

func TestUploadRejections(t *testing.T) {
	tests := []struct {
		name       string
		files      []string
		wantStatus int
	}{
		{"one file only", []string{"ATNYSEG_150925.xlsx"}, http.StatusBadRequest},
		{"three files", []string{"ATNYSEG_1.xlsx", "SIGASTI_1.xlsx", "ATNYSEG_2.xlsx"}, http.StatusBadRequest},
		{"wrong extension", []string{"ATNYSEG_150925.csv", "SIGASTI_150925.xlsx"}, http.StatusBadRequest},
		{"missing prefix", []string{"ATNYSEG_150925.xlsx", "OTRO_150925.xlsx"}, http.StatusBadRequest},
		{"prefix is case sensitive", []string{"atnyseg_150925.xlsx", "SIGASTI_150925.xlsx"}, http.StatusBadRequest},
		{"duplicate prefix", []string{"ATNYSEG_1.xlsx", "ATNYSEG_2.xlsx"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		svc, dir := newTestService(t)
		rec := postUpload(t, svc, tt.files...)
		if rec.Code != tt.wantStatus {
			t.Errorf("%s: status = %d, want %d", tt.name, rec.Code, tt.wantStatus)
		}

		// A rejected batch leaves nothing behind, not even spool files.
		entries, err := os.ReadDir(dir)
		if err == nil && len(entries) != 0 {
			t.Errorf("%s: %d leftover files after reject", tt.name, len(entries))
		}
	}
}

func TestUploadMethodNotAllowed(t *testing.T) {
	svc, _ := newTestService(t)
	req := httptest.NewRequest(http.MethodGet, "/upload", nil)
	rec := httptest.NewRecorder()
	svc.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestUploadRecordsLedger(t *testing.T) {
	dir := t.TempDir()
	ledger, err := OpenLedger(filepath.Join(dir, "uploads.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer ledger.Close()

	svc := NewService(filepath.Join(dir, "XLSX"), []string{"ATNYSEG", "SIGASTI"}, ledger, nil)
	rec := postUpload(t, svc, "ATNYSEG_150925.xlsx", "SIGASTI_150925.xlsx")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	batches, err := ledger.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(batches) != 1 {
		t.Fatalf("batches = %d, want 1", len(batches))
	}
	if batches[0].ID == "" || len(batches[0].Files) != 2 {
		t.Errorf("batch = %+v", batches[0])
	}
}
