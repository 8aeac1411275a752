// Package upload is the file ingestion boundary: it accepts exactly the
// two dataset workbooks, validates them before any side effect is visible,
// and persists them into the storage namespace the source provider reads.
package upload

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxFileSize is the per-file limit, matching the transport cap of the
// hosted deployment.
const MaxFileSize = 200 << 20 // 200 MiB

// RequiredFiles is how many workbooks one batch must carry.
const RequiredFiles = 2

// ValidationError rejects a batch before anything is persisted: wrong file
// count, extension, or filename prefix.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// SizeLimitError rejects a single file for exceeding MaxFileSize. Kept
// distinct from ValidationError so callers can show an actionable message.
type SizeLimitError struct {
	Name string
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("file %s exceeds the %d MiB limit", e.Name, MaxFileSize>>20)
}

// Service accepts uploads of the dataset workbooks.
type Service struct {
	storageDir string
	prefixes   []string // required case-sensitive filename prefixes, one file each
	ledger     *Ledger  // optional
	logger     *slog.Logger
}

// NewService creates the ingestion service. prefixes lists the required
// filename prefixes (e.g. ATNYSEG, SIGASTI); each accepted batch must carry
// exactly one file per prefix, in any order.
func NewService(storageDir string, prefixes []string, ledger *Ledger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		storageDir: storageDir,
		prefixes:   prefixes,
		ledger:     ledger,
		logger:     logger,
	}
}

type uploadResponse struct {
	OK    bool     `json:"ok"`
	Files []string `json:"files,omitempty"`
	Error string   `json:"error,omitempty"`
}

// ServeHTTP handles POST with a multipart "files" field.
func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeUploadError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	batch, err := s.Accept(r)
	if err != nil {
		status := http.StatusInternalServerError
		switch err.(type) {
		case *ValidationError:
			status = http.StatusBadRequest
		case *SizeLimitError:
			status = http.StatusRequestEntityTooLarge
		}
		s.logger.Warn("upload rejected", "error", err)
		writeUploadError(w, status, err.Error())
		return
	}

	paths := make([]string, len(batch.Files))
	for i, f := range batch.Files {
		paths[i] = f.Path
	}
	s.logger.Info("upload accepted", "batch", batch.ID, "files", paths)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(uploadResponse{OK: true, Files: paths})
}

// Accept validates and persists one upload request. Files land under
// temporary names first and are renamed into place only after the whole
// batch validates, so a rejected batch leaves no visible side effect.
func (s *Service) Accept(r *http.Request) (*Batch, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, &ValidationError{Reason: "expected multipart form data"}
	}
	if err := os.MkdirAll(s.storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage dir: %w", err)
	}

	type pending struct {
		name string
		tmp  string
		size int64
	}
	var files []pending
	cleanup := func() {
		for _, p := range files {
			os.Remove(p.tmp)
		}
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("read multipart: %w", err)
		}
		if part.FormName() != "files" || part.FileName() == "" {
			part.Close()
			continue
		}
		if len(files) == RequiredFiles {
			part.Close()
			cleanup()
			return nil, &ValidationError{Reason: fmt.Sprintf("exactly %d files are required", RequiredFiles)}
		}

		name := filepath.Base(part.FileName())
		if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
			part.Close()
			cleanup()
			return nil, &ValidationError{Reason: "invalid file name"}
		}
		if !strings.EqualFold(filepath.Ext(name), ".xlsx") {
			part.Close()
			cleanup()
			return nil, &ValidationError{Reason: "only .xlsx files are allowed"}
		}

		size, tmp, err := s.spool(part, name)
		part.Close()
		if err != nil {
			cleanup()
			return nil, err
		}
		files = append(files, pending{name: name, tmp: tmp, size: size})
	}

	if len(files) != RequiredFiles {
		cleanup()
		return nil, &ValidationError{Reason: fmt.Sprintf("exactly %d files are required", RequiredFiles)}
	}
	if err := s.checkPrefixes(files[0].name, files[1].name); err != nil {
		cleanup()
		return nil, err
	}

	batch := &Batch{ID: uuid.NewString()}
	for _, p := range files {
		dest := filepath.Join(s.storageDir, p.name)
		if err := os.Rename(p.tmp, dest); err != nil {
			cleanup()
			return nil, fmt.Errorf("store %s: %w", p.name, err)
		}
		batch.Files = append(batch.Files, StoredFile{
			Name: p.name,
			Size: p.size,
			Path: path.Join(filepath.Base(s.storageDir), p.name),
		})
	}

	if s.ledger != nil {
		if err := s.ledger.Record(batch.ID, batch.Files); err != nil {
			// The files are already in place; a ledger failure should not
			// fail the upload.
			s.logger.Error("upload ledger write failed", "batch", batch.ID, "error", err)
		}
	}
	return batch, nil
}

// spool streams one part to a temporary file, enforcing the per-file limit.
func (s *Service) spool(part *multipart.Part, name string) (int64, string, error) {
	tmp, err := os.CreateTemp(s.storageDir, ".upload-*")
	if err != nil {
		return 0, "", fmt.Errorf("spool %s: %w", name, err)
	}
	n, copyErr := io.Copy(tmp, io.LimitReader(part, MaxFileSize+1))
	closeErr := tmp.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(tmp.Name())
		if copyErr == nil {
			copyErr = closeErr
		}
		return 0, "", fmt.Errorf("spool %s: %w", name, copyErr)
	}
	if n > MaxFileSize {
		os.Remove(tmp.Name())
		return 0, "", &SizeLimitError{Name: name}
	}
	return n, tmp.Name(), nil
}

// checkPrefixes requires one file per configured prefix, in any order.
// Prefixes are case-sensitive literals.
func (s *Service) checkPrefixes(names ...string) error {
	for _, prefix := range s.prefixes {
		found := false
		for _, name := range names {
			if strings.HasPrefix(name, prefix) {
				found = true
				break
			}
		}
		if !found {
			return &ValidationError{
				Reason: fmt.Sprintf("file names must start with %s (in any order)", strings.Join(s.prefixes, " and ")),
			}
		}
	}
	return nil
}

func writeUploadError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(uploadResponse{OK: false, Error: msg})
}
