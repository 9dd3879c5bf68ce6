package service

import (
	"context"
	"strings"
	"time"

	"github.com/BenAnderson8181/BusApp/internal/domain"
	"go.uber.org/zap"
)

type DocumentRepository interface {
	CreateDocument(ctx context.Context, d *domain.Document) error
	FindDocument(ctx context.Context, id string) (*domain.Document, error)
	ListDocuments(ctx context.Context, userID string) ([]domain.Document, error)
	DeleteDocument(ctx context.Context, id string) (*domain.Document, error)
	CreateDocumentLog(ctx context.Context, l *domain.DocumentLog) error
	FindDocumentLog(ctx context.Context, id string) (*domain.DocumentLog, error)
	UpdateDocumentLogAction(ctx context.Context, id string, action domain.DocumentAction) (*domain.DocumentLog, error)
}

// Uploader issues presigned upload URLs; *storage.S3Store in production.
type Uploader interface {
	PresignUpload(ctx context.Context, userID, fileName, contentType string, size int64) (url, key string, expires time.Time, err error)
}

type CallerResolver interface {
	MustResolve(ctx context.Context, externalID string) (*domain.Account, error)
}

type UploadRequest struct {
	FileName    string `json:"file_name" validate:"required,max=255"`
	ContentType string `json:"content_type" validate:"required,doctype"`
	Size        int64  `json:"size" validate:"gt=0,maxupload"`
}

type DocumentInput struct {
	DocumentTypeID string `json:"document_type_id" validate:"required"`
	URL            string `json:"url" validate:"required,url"`
	Name           string `json:"name" validate:"required,max=255"`
	Key            string `json:"key" validate:"required"`
	Size           int64  `json:"size" validate:"gte=0"`
}

type DocumentService struct {
	repo     DocumentRepository
	uploader Uploader
	callers  CallerResolver
	logger   *zap.Logger
}

func NewDocumentService(repo DocumentRepository, uploader Uploader, callers CallerResolver, logger *zap.Logger) *DocumentService {
	return &DocumentService{
		repo:     repo,
		uploader: uploader,
		callers:  callers,
		logger:   logger.Named("document-service"),
	}
}

// canRead: owners see their files, Admin staff see everyone's.
func canRead(caller *domain.Account, d *domain.Document) bool {
	return d.UserID == caller.ID || caller.UserType.IsStaff()
}

// UploadURL presigns a direct upload into the caller's prefix.
func (s *DocumentService) UploadURL(ctx context.Context, externalID string, req UploadRequest) (*domain.UploadTicket, error) {
	if err := check(req); err != nil {
		return nil, err
	}

	caller, err := s.callers.MustResolve(ctx, externalID)
	if err != nil {
		return nil, err
	}
	url, key, expires, err := s.uploader.PresignUpload(ctx, caller.ID, req.FileName, req.ContentType, req.Size)
	if err != nil {
		return nil, domain.Retrieval("presign upload", err)
	}
	return &domain.UploadTicket{URL: url, Key: key, ExpiresAt: expires}, nil
}

// Create records an uploaded file for the caller and writes the upload log entry.
func (s *DocumentService) Create(ctx context.Context, externalID string, in DocumentInput) (*domain.Document, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	caller, err := s.callers.MustResolve(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(in.Key, "users/"+caller.ID+"/") {
		return nil, domain.Invalid("key", "not an upload of this user")
	}

	d := &domain.Document{
		UserID:         caller.ID,
		DocumentTypeID: in.DocumentTypeID,
		URL:            in.URL,
		Name:           in.Name,
		Key:            in.Key,
		Size:           in.Size,
	}
	if err := s.repo.CreateDocument(ctx, d); err != nil {
		return nil, domain.Persistence("create document", err)
	}
	s.log(ctx, d, domain.DocumentUploaded)
	return d, nil
}

// Get returns a document the caller may read. Others' documents are reported
// as missing.
func (s *DocumentService) Get(ctx context.Context, externalID, id string) (*domain.Document, error) {
	caller, err := s.callers.MustResolve(ctx, externalID)
	if err != nil {
		return nil, err
	}
	d, err := s.repo.FindDocument(ctx, id)
	if err != nil {
		return nil, domain.Retrieval("get document", err)
	}
	if d == nil || !canRead(caller, d) {
		return nil, domain.NotFound("get document", "document "+id)
	}
	return d, nil
}

// List returns the caller's documents. Staff may list another user's.
func (s *DocumentService) List(ctx context.Context, externalID, userID string) ([]domain.Document, error) {
	caller, err := s.callers.MustResolve(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		userID = caller.ID
	}
	if userID != caller.ID && !caller.UserType.IsStaff() {
		return []domain.Document{}, nil
	}
	out, err := s.repo.ListDocuments(ctx, userID)
	if err != nil {
		return nil, domain.Retrieval("list documents", err)
	}
	return out, nil
}

func (s *DocumentService) Delete(ctx context.Context, externalID, id string) error {
	if _, err := s.Get(ctx, externalID, id); err != nil {
		return err
	}
	d, err := s.repo.DeleteDocument(ctx, id)
	if err != nil {
		return domain.Persistence("delete document", err)
	}
	s.log(ctx, d, domain.DocumentDeleted)
	return nil
}

// UpdateLog changes the action of a document log entry. The same read rule
// as documents applies: owners and Admin staff only.
func (s *DocumentService) UpdateLog(ctx context.Context, externalID, id string, action domain.DocumentAction) (*domain.DocumentLog, error) {
	const op = "update document log"
	if !action.Valid() {
		return nil, domain.Invalid("action", "must be upload, replace or delete")
	}
	caller, err := s.callers.MustResolve(ctx, externalID)
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.FindDocumentLog(ctx, id)
	if err != nil {
		return nil, domain.Retrieval(op, err)
	}
	if existing == nil || (existing.UserID != caller.ID && !caller.UserType.IsStaff()) {
		return nil, domain.NotFound(op, "document log "+id)
	}
	l, err := s.repo.UpdateDocumentLogAction(ctx, id, action)
	if err != nil {
		return nil, domain.Persistence(op, err)
	}
	return l, nil
}

// log writes the document log entry. The document change already happened,
// so a failure here is only logged.
func (s *DocumentService) log(ctx context.Context, d *domain.Document, action domain.DocumentAction) {
	entry := &domain.DocumentLog{
		UserID: d.UserID,
		URL:    d.URL,
		Name:   d.Name,
		Key:    d.Key,
		Size:   d.Size,
		Action: action,
	}
	if err := s.repo.CreateDocumentLog(ctx, entry); err != nil {
		s.logger.Warn("document log not written",
			zap.String("document_id", d.ID),
			zap.String("action", string(action)),
			zap.Error(err))
	}
}
