package document

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lucidata/hr-core-go/internal/domain/audit"
	"github.com/lucidata/hr-core-go/internal/domain/document"
	"github.com/lucidata/hr-core-go/internal/domain/settings"
	"github.com/lucidata/hr-core-go/internal/pkg/pagination"
	"github.com/lucidata/hr-core-go/internal/service/file"
)

type DocumentServiceImpl struct {
	repo        document.Repository
	fileService file.FileService
	settings    settings.Provider
	recorder    audit.Recorder
	now         func() time.Time
}

func NewDocumentService(
	repo document.Repository,
	fileService file.FileService,
	settings settings.Provider,
	recorder audit.Recorder,
) document.DocumentService {
	return &DocumentServiceImpl{
		repo:        repo,
		fileService: fileService,
		settings:    settings,
		recorder:    recorder,
		now:         time.Now,
	}
}

// evaluate replaces the cached status with one computed at now.
func evaluate(doc document.Document, warnDays int, now time.Time) (document.Document, error) {
	status, err := document.ComputeStatus(doc.ExpiryDate, warnDays, now)
	if err != nil {
		return doc, fmt.Errorf("document %s: %w", doc.ID, err)
	}
	doc.Status = status
	return doc, nil
}

func (s *DocumentServiceImpl) toResponse(ctx context.Context, doc document.Document, now time.Time) document.DocumentResponse {
	resp := document.NewDocumentResponse(doc, now)
	if doc.FilePath != nil {
		url, err := s.fileService.GetFileURL(ctx, *doc.FilePath, time.Hour)
		if err != nil {
			slog.Warn("failed to build document file url", "document_id", doc.ID, "error", err)
		} else {
			resp.FileURL = &url
		}
	}
	return resp
}

func (s *DocumentServiceImpl) Create(ctx context.Context, req document.CreateDocumentRequest) (document.DocumentResponse, error) {
	if err := req.Validate(); err != nil {
		return document.DocumentResponse{}, err
	}
	issue, expiry := req.Dates()

	warnDays, err := s.settings.WarnDays(ctx)
	if err != nil {
		return document.DocumentResponse{}, err
	}
	now := s.now().UTC()
	status, err := document.ComputeStatus(expiry, warnDays, now)
	if err != nil {
		return document.DocumentResponse{}, err
	}

	doc := document.Document{
		EmployeeID: req.EmployeeID,
		Category:   document.Category(req.Category),
		FileName:   req.FileName,
		IssueDate:  issue,
		ExpiryDate: expiry,
		Status:     status,
		UploadedAt: now,
		UpdatedAt:  now,
	}

	if req.File != nil && req.FileHeader != nil {
		if doc.FileName == "" {
			doc.FileName = req.FileHeader.Filename
		}
		path, err := s.fileService.UploadDocument(ctx, req.EmployeeID, req.File, req.FileHeader.Filename, req.Category)
		if err != nil {
			return document.DocumentResponse{}, err
		}
		doc.FilePath = &path
		doc.FileType = file.ContentType(req.FileHeader.Filename)
		doc.FileSize = req.FileHeader.Size
	}

	created, err := s.repo.Create(ctx, doc)
	if err != nil {
		if doc.FilePath != nil {
			if delErr := s.fileService.DeleteFile(ctx, *doc.FilePath); delErr != nil {
				slog.Error("failed to remove orphaned document file", "path", *doc.FilePath, "error", delErr)
			}
		}
		return document.DocumentResponse{}, err
	}

	s.recorder.Record(ctx, audit.ActionCreate, audit.EntityDocument, created.ID, map[string]interface{}{
		"employee_id": created.EmployeeID,
		"category":    string(created.Category),
		"file_name":   created.FileName,
		"expiry_date": created.ExpiryDate.Format("2006-01-02"),
	})
	return s.toResponse(ctx, created, now), nil
}

func (s *DocumentServiceImpl) Get(ctx context.Context, id string) (document.DocumentResponse, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return document.DocumentResponse{}, err
	}
	warnDays, err := s.settings.WarnDays(ctx)
	if err != nil {
		return document.DocumentResponse{}, err
	}
	now := s.now().UTC()
	if doc, err = evaluate(doc, warnDays, now); err != nil {
		return document.DocumentResponse{}, err
	}
	return s.toResponse(ctx, doc, now), nil
}

// List filters by status through the expiry window that status maps to at
// the current threshold, so the cached status column is never trusted.
func (s *DocumentServiceImpl) List(ctx context.Context, filter document.DocumentFilter) (document.ListDocumentResponse, error) {
	if err := filter.Validate(); err != nil {
		return document.ListDocumentResponse{}, err
	}

	warnDays, err := s.settings.WarnDays(ctx)
	if err != nil {
		return document.ListDocumentResponse{}, err
	}
	now := s.now().UTC()

	page, limit := pagination.Normalize(filter.Page, filter.Limit)
	repoFilter := document.Filter{
		EmployeeID: filter.EmployeeID,
		Search:     filter.Search,
		SortBy:     filter.SortBy,
		SortOrder:  filter.SortOrder,
		Page:       page,
		Limit:      limit,
	}
	if filter.Category != nil {
		c := document.Category(*filter.Category)
		repoFilter.Category = &c
	}
	if filter.Status != nil {
		after, until, err := document.ExpiryWindow(document.Status(*filter.Status), warnDays, now)
		if err != nil {
			return document.ListDocumentResponse{}, err
		}
		repoFilter.ExpiresAfter, repoFilter.ExpiresUntil = after, until
	}

	docs, total, err := s.repo.List(ctx, repoFilter)
	if err != nil {
		return document.ListDocumentResponse{}, err
	}

	resp := make([]document.DocumentResponse, 0, len(docs))
	for _, d := range docs {
		d, err := evaluate(d, warnDays, now)
		if err != nil {
			return document.ListDocumentResponse{}, err
		}
		resp = append(resp, s.toResponse(ctx, d, now))
	}

	return document.ListDocumentResponse{
		Documents:  resp,
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		TotalPages: pagination.TotalPages(total, limit),
	}, nil
}

func (s *DocumentServiceImpl) Update(ctx context.Context, req document.UpdateDocumentRequest) (document.DocumentResponse, error) {
	if err := req.Validate(); err != nil {
		return document.DocumentResponse{}, err
	}

	doc, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return document.DocumentResponse{}, err
	}

	changed := []string{}
	if req.Category != nil {
		doc.Category = document.Category(*req.Category)
		changed = append(changed, "category")
	}
	if req.FileName != nil {
		doc.FileName = *req.FileName
		changed = append(changed, "file_name")
	}
	issue, expiry := req.Dates()
	if issue != nil {
		doc.IssueDate = *issue
		changed = append(changed, "issue_date")
	}
	if expiry != nil {
		doc.ExpiryDate = *expiry
		changed = append(changed, "expiry_date")
	}
	if !doc.ExpiryDate.After(doc.IssueDate) {
		return document.DocumentResponse{}, document.ErrExpiryBeforeIssue
	}

	warnDays, err := s.settings.WarnDays(ctx)
	if err != nil {
		return document.DocumentResponse{}, err
	}
	now := s.now().UTC()
	if doc, err = evaluate(doc, warnDays, now); err != nil {
		return document.DocumentResponse{}, err
	}
	doc.UpdatedAt = now

	if err := s.repo.Update(ctx, doc); err != nil {
		return document.DocumentResponse{}, err
	}

	s.recorder.Record(ctx, audit.ActionUpdate, audit.EntityDocument, doc.ID, map[string]interface{}{
		"fields": changed,
		"status": string(doc.Status),
	})
	return s.toResponse(ctx, doc, now), nil
}

func (s *DocumentServiceImpl) Delete(ctx context.Context, id string) error {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if doc.FilePath != nil {
		if err := s.fileService.DeleteFile(ctx, *doc.FilePath); err != nil {
			slog.Error("failed to delete document file", "document_id", id, "path", *doc.FilePath, "error", err)
		}
	}

	s.recorder.Record(ctx, audit.ActionDelete, audit.EntityDocument, id, map[string]interface{}{
		"employee_id": doc.EmployeeID,
		"file_name":   doc.FileName,
	})
	return nil
}

func (s *DocumentServiceImpl) ListExpiring(ctx context.Context, now time.Time) ([]document.DocumentResponse, error) {
	warnDays, err := s.settings.WarnDays(ctx)
	if err != nil {
		return nil, err
	}
	// Warning and Expired together are everything up to the warning edge.
	_, until, err := document.ExpiryWindow(document.StatusWarning, warnDays, now)
	if err != nil {
		return nil, err
	}

	docs, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	resp := []document.DocumentResponse{}
	for _, d := range docs {
		if d.ExpiryDate.After(*until) {
			continue
		}
		d, err := evaluate(d, warnDays, now)
		if err != nil {
			return nil, err
		}
		if d.Status.NeedsAttention() {
			resp = append(resp, s.toResponse(ctx, d, now))
		}
	}
	return resp, nil
}

func (s *DocumentServiceImpl) RefreshStatuses(ctx context.Context, now time.Time) (document.RefreshResult, error) {
	warnDays, err := s.settings.WarnDays(ctx)
	if err != nil {
		return document.RefreshResult{}, err
	}
	docs, err := s.repo.ListAll(ctx)
	if err != nil {
		return document.RefreshResult{}, err
	}

	result := document.RefreshResult{Scanned: len(docs)}
	for _, d := range docs {
		fresh, err := evaluate(d, warnDays, now)
		if err != nil {
			slog.Warn("skipping document with unusable expiry date", "document_id", d.ID, "error", err)
			continue
		}
		if fresh.Status == d.Status {
			continue
		}
		if err := s.repo.UpdateStatus(ctx, d.ID, fresh.Status); err != nil {
			return result, err
		}
		result.Changed = append(result.Changed, fresh)
	}

	if len(result.Changed) > 0 {
		s.recorder.Record(ctx, audit.ActionRefresh, audit.EntityDocument, "*", map[string]interface{}{
			"scanned":   result.Scanned,
			"changed":   len(result.Changed),
			"warn_days": warnDays,
		})
	}
	return result, nil
}
