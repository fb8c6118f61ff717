package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lucidata/hr-core-go/internal/pkg/storage"
)

var ErrUnsupportedFileType = errors.New("unsupported file type")

// MaxUploadSize bounds a single document or attachment upload.
const MaxUploadSize = 10 << 20

var (
	documentExts   = []string{".pdf", ".jpg", ".jpeg", ".png"}
	attachmentExts = []string{".pdf", ".jpg", ".jpeg", ".png", ".doc", ".docx", ".xls", ".xlsx", ".txt"}
)

type FileService interface {
	// UploadDocument stores an employee document scan and returns its key.
	UploadDocument(ctx context.Context, employeeID string, file io.Reader, filename string, category string) (string, error)

	// UploadWorkflowAttachment stores a file attached to a workflow request.
	UploadWorkflowAttachment(ctx context.Context, requestID string, file io.Reader, filename string) (string, error)

	DeleteFile(ctx context.Context, path string) error
	GetFileURL(ctx context.Context, path string, expiry time.Duration) (string, error)
}

type fileServiceImpl struct {
	storage storage.FileStorage
	now     func() time.Time
}

func NewFileService(storage storage.FileStorage) FileService {
	return &fileServiceImpl{
		storage: storage,
		now:     time.Now,
	}
}

// ContentType guesses a MIME type from the file extension.
func ContentType(filename string) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); t != "" {
		return t
	}
	return "application/octet-stream"
}

func checkExt(filename string, allowed []string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !slices.Contains(allowed, ext) {
		return "", fmt.Errorf("%w: only %s allowed", ErrUnsupportedFileType, strings.Join(allowed, ", "))
	}
	return ext, nil
}

func (s *fileServiceImpl) UploadDocument(ctx context.Context, employeeID string, file io.Reader, filename string, category string) (string, error) {
	ext, err := checkExt(filename, documentExts)
	if err != nil {
		return "", err
	}

	key := path.Join("documents", employeeID, category+"-"+uuid.Must(uuid.NewV7()).String()+ext)
	return s.put(ctx, key, file, filename, "document")
}

func (s *fileServiceImpl) UploadWorkflowAttachment(ctx context.Context, requestID string, file io.Reader, filename string) (string, error) {
	ext, err := checkExt(filename, attachmentExts)
	if err != nil {
		return "", err
	}

	// workflows/{requestID}/{yyyymmdd}-{uuid}.ext
	stamp := s.now().UTC().Format("20060102")
	key := path.Join("workflows", requestID, stamp+"-"+uuid.Must(uuid.NewV7()).String()+ext)
	return s.put(ctx, key, file, filename, "workflow attachment")
}

// put caps the upload at MaxUploadSize; anything beyond is truncated.
func (s *fileServiceImpl) put(ctx context.Context, key string, file io.Reader, filename, kind string) (string, error) {
	stored, err := s.storage.Upload(ctx, io.LimitReader(file, MaxUploadSize), key, ContentType(filename))
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", kind, err)
	}
	return stored, nil
}

func (s *fileServiceImpl) DeleteFile(ctx context.Context, key string) error {
	return s.storage.Delete(ctx, key)
}

func (s *fileServiceImpl) GetFileURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return s.storage.GetURL(ctx, key, expiry)
}
