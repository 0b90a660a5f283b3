package handler

import (
	"github.com/gofiber/fiber/v2"

	"doctrack/internal/service"
)

// contentResponse is the body returned by GetDocumentContent.
type contentResponse struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// statusRequest is the body accepted by UpdateDocumentStatus.
type statusRequest struct {
	Status          string `json:"status"`
	RejectionReason string `json:"rejectionReason"`
}

// deleteRequest is the body accepted by DeleteDocument. Reason is optional;
// an absent field (or missing body) falls back to a default, but an explicit
// empty string is passed through and rejected by the service.
type deleteRequest struct {
	Reason *string `json:"reason"`
}

const defaultDeleteReason = "Deleted by user"

// CreateDocument handles POST /api/documents.
func CreateDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.CreateDocumentInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		}

		doc, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// ListDocuments handles GET /api/documents with optional filters.
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter := service.ListFilter{
			ClientReference: c.Query("clientReference"),
			DocumentType:    c.Query("documentType"),
			Status:          c.Query("status"),
			Query:           c.Query("q"),
		}

		res, err := svc.List(c.UserContext(), filter)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetDocument handles GET /api/documents/:id.
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// GetDocumentContent handles GET /api/documents/:id/content.
func GetDocumentContent(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		content, err := svc.GetContent(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(contentResponse{ID: id, Content: content})
	}
}

// UpdateDocument handles PUT /api/documents/:id with a partial body.
func UpdateDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.UpdateDocumentInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		}

		doc, err := svc.Update(c.UserContext(), c.Params("id"), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// UpdateDocumentStatus handles PATCH /api/documents/:id/status.
func UpdateDocumentStatus(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body statusRequest
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		}

		doc, err := svc.UpdateStatus(c.UserContext(), c.Params("id"), body.Status, body.RejectionReason)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// DeleteDocument handles DELETE /api/documents/:id. Deletion is modeled as a
// forced transition to REJECTED; the document stays in the collection.
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reason := defaultDeleteReason
		var body deleteRequest
		if err := c.BodyParser(&body); err == nil && body.Reason != nil {
			reason = *body.Reason
		}

		doc, err := svc.Reject(c.UserContext(), c.Params("id"), reason)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// ExportDaily handles GET /api/exports/daily.
func ExportDaily(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		summary, err := svc.ExportDaily(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(summary)
	}
}
