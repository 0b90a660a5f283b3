package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"doctrack/internal/audit"
	"doctrack/internal/model"
	"doctrack/internal/repository"
	"doctrack/internal/storage"
)

// allowedTransitions is the document state machine. A requested status not
// listed under the current one fails, including re-requesting the current
// status. PROCESSED and REJECTED have no outgoing transitions.
var allowedTransitions = map[model.Status][]model.Status{
	model.StatusReceived:  {model.StatusValidated, model.StatusRejected},
	model.StatusValidated: {model.StatusQueued, model.StatusRejected},
	model.StatusQueued:    {model.StatusProcessed, model.StatusRejected},
	model.StatusProcessed: {},
	model.StatusRejected:  {},
}

func transitionAllowed(from, to model.Status) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func contentKey(id string) string {
	return "documents/" + id + ".txt"
}

// CreateDocumentInput carries the fields required to register a document.
// Content must be present but may be the empty string.
type CreateDocumentInput struct {
	ClientReference string  `json:"clientReference"`
	DocumentType    string  `json:"documentType"`
	FileName        string  `json:"fileName"`
	Content         *string `json:"content"`
}

// UpdateDocumentInput is a partial update: nil fields keep their current
// value. A present Content (even "") replaces the stored blob.
type UpdateDocumentInput struct {
	ClientReference *string `json:"clientReference"`
	DocumentType    *string `json:"documentType"`
	FileName        *string `json:"fileName"`
	Content         *string `json:"content"`
}

// ListFilter narrows the listing. Empty values impose no constraint; filters
// AND-compose. Query matches case-insensitive substrings across
// clientReference, documentType, fileName and status.
type ListFilter struct {
	ClientReference string
	DocumentType    string
	Status          string
	Query           string
}

// DocumentListResult is the filtered listing plus its count.
type DocumentListResult struct {
	Count     int              `json:"count"`
	Documents []model.Document `json:"documents"`
}

// ExportSummary describes a generated daily export snapshot.
type ExportSummary struct {
	Date     string `json:"date"`
	Count    int    `json:"count"`
	FileName string `json:"fileName"`
}

// DocumentService owns the document lifecycle: it is the only component
// allowed to construct status transitions.
type DocumentService interface {
	// Create registers a new document with status RECEIVED and stores its
	// content blob alongside the metadata record.
	Create(ctx context.Context, in CreateDocumentInput) (*model.Document, error)

	// List returns documents matching the filter, newest first.
	List(ctx context.Context, f ListFilter) (*DocumentListResult, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, id string) (*model.Document, error)

	// GetContent returns the content blob of an existing document.
	GetContent(ctx context.Context, id string) (string, error)

	// Update merges partial metadata changes and optionally replaces the
	// content blob. Terminal documents cannot be updated.
	Update(ctx context.Context, id string, in UpdateDocumentInput) (*model.Document, error)

	// UpdateStatus advances the document along the transition table.
	UpdateStatus(ctx context.Context, id string, status string, rejectionReason string) (*model.Document, error)

	// Reject forces a transition to REJECTED from any non-PROCESSED status.
	// This is how deletion is modeled; documents are never physically removed.
	Reject(ctx context.Context, id string, reason string) (*model.Document, error)

	// ExportDaily snapshots the whole collection into a dated export object
	// after an artificial delay.
	ExportDaily(ctx context.Context) (*ExportSummary, error)
}

type documentService struct {
	store       storage.Storage
	repo        repository.DocumentRepository
	audit       audit.Logger
	exportDelay time.Duration
}

// NewDocumentService constructs a new DocumentService. exportDelay throttles
// ExportDaily to mimic a slow batch job; pass 0 to disable.
func NewDocumentService(store storage.Storage, repo repository.DocumentRepository, auditLog audit.Logger, exportDelay time.Duration) DocumentService {
	return &documentService{store: store, repo: repo, audit: auditLog, exportDelay: exportDelay}
}

func (s *documentService) Create(ctx context.Context, in CreateDocumentInput) (*model.Document, error) {
	clientReference := strings.TrimSpace(in.ClientReference)
	documentType := strings.TrimSpace(in.DocumentType)
	fileName := strings.TrimSpace(in.FileName)
	if clientReference == "" || documentType == "" || fileName == "" || in.Content == nil {
		return nil, validation("missing required fields: clientReference, documentType, fileName, content")
	}

	now := time.Now().UTC()
	doc := &model.Document{
		ID:              uuid.NewString(),
		ClientReference: clientReference,
		DocumentType:    documentType,
		FileName:        fileName,
		Status:          model.StatusReceived,
		RejectionReason: nil,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		return nil, internal("create document", err)
	}

	// The metadata row is already committed here; a failed blob write leaves
	// it without content. Known gap, surfaced instead of rolled back.
	if err := s.putContent(ctx, stored.ID, stored.FileName, *in.Content); err != nil {
		return nil, internal("store content", err)
	}

	s.logAudit(ctx, fmt.Sprintf("CREATE doc=%s clientReference=%s type=%s", stored.ID, stored.ClientReference, stored.DocumentType))
	return stored, nil
}

func (s *documentService) List(ctx context.Context, f ListFilter) (*DocumentListResult, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, internal("list documents", err)
	}

	filtered := make([]model.Document, 0, len(all))
	for _, d := range all {
		if matchesFilter(d, f) {
			filtered = append(filtered, d)
		}
	}

	return &DocumentListResult{Count: len(filtered), Documents: filtered}, nil
}

func matchesFilter(d model.Document, f ListFilter) bool {
	if f.ClientReference != "" && d.ClientReference != f.ClientReference {
		return false
	}
	if f.DocumentType != "" && d.DocumentType != f.DocumentType {
		return false
	}
	if f.Status != "" && string(d.Status) != f.Status {
		return false
	}
	if f.Query != "" {
		haystack := strings.ToLower(d.ClientReference + " " + d.DocumentType + " " + d.FileName + " " + string(d.Status))
		if !strings.Contains(haystack, strings.ToLower(f.Query)) {
			return false
		}
	}
	return true
}

func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	return s.find(ctx, id)
}

func (s *documentService) GetContent(ctx context.Context, id string) (string, error) {
	// Existence is checked against metadata first so an unknown id is a
	// not-found, never a raw blob-read error.
	if _, err := s.find(ctx, id); err != nil {
		return "", err
	}

	rc, _, err := s.store.Get(ctx, contentKey(id))
	if err != nil {
		return "", internal("read content", err)
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return "", internal("read content", err)
	}
	return string(b), nil
}

func (s *documentService) Update(ctx context.Context, id string, in UpdateDocumentInput) (*model.Document, error) {
	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status == model.StatusProcessed {
		return nil, conflict("PROCESSED documents cannot be modified")
	}
	if existing.Status == model.StatusRejected {
		return nil, conflict("REJECTED documents cannot be modified")
	}

	next := *existing
	if in.ClientReference != nil {
		next.ClientReference = *in.ClientReference
	}
	if in.DocumentType != nil {
		next.DocumentType = *in.DocumentType
	}
	if in.FileName != nil {
		next.FileName = *in.FileName
	}
	next.UpdatedAt = time.Now().UTC()

	updated, err := s.persist(ctx, &next)
	if err != nil {
		return nil, err
	}

	if in.Content != nil {
		if err := s.putContent(ctx, updated.ID, updated.FileName, *in.Content); err != nil {
			return nil, internal("store content", err)
		}
	}

	s.logAudit(ctx, fmt.Sprintf("UPDATE doc=%s", id))
	return updated, nil
}

func (s *documentService) UpdateStatus(ctx context.Context, id string, status string, rejectionReason string) (*model.Document, error) {
	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	newStatus := model.Status(status)
	if !newStatus.Known() {
		return nil, validation(fmt.Sprintf("invalid status, must be one of: %s", joinStatuses()))
	}

	if existing.Status == model.StatusProcessed {
		return nil, conflict("PROCESSED documents cannot change status")
	}
	if existing.Status == model.StatusRejected {
		return nil, conflict("REJECTED documents cannot change status")
	}

	if !transitionAllowed(existing.Status, newStatus) {
		return nil, conflict(fmt.Sprintf("invalid transition: %s -> %s", existing.Status, newStatus))
	}
	if newStatus == model.StatusRejected && rejectionReason == "" {
		return nil, validation("REJECTED requires rejectionReason")
	}

	next := *existing
	next.Status = newStatus
	if newStatus == model.StatusRejected {
		next.RejectionReason = &rejectionReason
	} else {
		next.RejectionReason = nil
	}
	next.UpdatedAt = time.Now().UTC()

	updated, err := s.persist(ctx, &next)
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, fmt.Sprintf("STATUS doc=%s %s -> %s", id, existing.Status, newStatus))
	return updated, nil
}

func (s *documentService) Reject(ctx context.Context, id string, reason string) (*model.Document, error) {
	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status == model.StatusProcessed {
		return nil, conflict("cannot delete/reject a PROCESSED document")
	}
	if reason == "" {
		return nil, validation("deletion requires a reason")
	}

	// Rejecting an already-REJECTED document is allowed and overwrites the
	// stored reason. Preserved behavior; only PROCESSED blocks a reject.
	next := *existing
	next.Status = model.StatusRejected
	next.RejectionReason = &reason
	next.UpdatedAt = time.Now().UTC()

	updated, err := s.persist(ctx, &next)
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, fmt.Sprintf("DELETE->REJECT doc=%s reason=%q", id, reason))
	return updated, nil
}

func (s *documentService) ExportDaily(ctx context.Context) (*ExportSummary, error) {
	// The delay mimics a slow batch job; other requests keep being served
	// while this one waits.
	if s.exportDelay > 0 {
		select {
		case <-time.After(s.exportDelay):
		case <-ctx.Done():
			return nil, internal("export interrupted", ctx.Err())
		}
	}

	docs, err := s.repo.List(ctx)
	if err != nil {
		return nil, internal("list documents", err)
	}

	date := time.Now().UTC().Format("2006-01-02")
	fileName := "daily-export-" + date + ".json"

	payload := struct {
		Date      string           `json:"date"`
		Count     int              `json:"count"`
		Documents []model.Document `json:"documents"`
	}{Date: date, Count: len(docs), Documents: docs}

	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, internal("encode export", err)
	}

	// One object per calendar day; rerunning overwrites today's snapshot.
	_, err = s.store.Put(ctx, "exports/"+fileName, bytes.NewReader(b), storage.PutObjectOptions{
		Size:        int64(len(b)),
		ContentType: "application/json",
	})
	if err != nil {
		return nil, internal("write export", err)
	}

	s.logAudit(ctx, fmt.Sprintf("EXPORT daily file=%s count=%d", fileName, len(docs)))
	return &ExportSummary{Date: date, Count: len(docs), FileName: fileName}, nil
}

// find maps an absent row to the service's not-found error.
func (s *documentService) find(ctx context.Context, id string) (*model.Document, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("document not found")
		}
		return nil, internal("find document", err)
	}
	return doc, nil
}

func (s *documentService) persist(ctx context.Context, doc *model.Document) (*model.Document, error) {
	updated, err := s.repo.Update(ctx, doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("document not found")
		}
		return nil, internal("update document", err)
	}
	return updated, nil
}

func (s *documentService) putContent(ctx context.Context, id, fileName, content string) error {
	_, err := s.store.Put(ctx, contentKey(id), strings.NewReader(content), storage.PutObjectOptions{
		Size:        int64(len(content)),
		ContentType: "text/plain; charset=utf-8",
		Metadata:    map[string]string{"file-name": fileName},
	})
	return err
}

// logAudit appends an audit line, logging failures instead of surfacing
// them: auditing is best-effort and must not fail the business operation.
func (s *documentService) logAudit(ctx context.Context, message string) {
	if err := s.audit.Append(ctx, message); err != nil {
		entry := map[string]any{
			"ts":    time.Now().UTC().Format(time.RFC3339Nano),
			"level": "warn",
			"msg":   "audit_append_failed",
			"error": err.Error(),
		}
		if b, jerr := json.Marshal(entry); jerr == nil {
			log.SetFlags(0)
			log.Println(string(b))
		}
	}
}

func joinStatuses() string {
	parts := make([]string, 0, len(model.Statuses))
	for _, st := range model.Statuses {
		parts = append(parts, string(st))
	}
	return strings.Join(parts, ", ")
}
