package matching

import (
	"errors"
	"fmt"
	"mime/multipart"

	"facility-matcher/core/database"
	"facility-matcher/core/logger"
	"facility-matcher/core/match"
	"facility-matcher/core/session"
	"facility-matcher/core/storage"
	"facility-matcher/core/table"
	"facility-matcher/core/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the matching wizard.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the matching routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/matching/sessions")
	group.Post("/", h.HandleCreate)
	group.Get("/:id", h.HandleGet)
	group.Delete("/:id", h.HandleDelete)
	group.Post("/:id/upload", h.HandleUpload)
	group.Post("/:id/source", h.HandleSource)
	group.Post("/:id/rename", h.HandleRename)
	group.Post("/:id/rename/skip", h.HandleSkipRename)
	group.Post("/:id/match", h.HandleMatch)
	group.Get("/:id/result", h.HandleResult)
	group.Get("/:id/export", h.HandleExport)
	group.Post("/:id/reset", h.HandleReset)
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, session.ErrInvalidTransition), errors.Is(err, ErrNoResult):
		return fiber.StatusConflict
	case errors.Is(err, ErrSourceUnavailable):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, match.ErrInvalidColumn),
		errors.Is(err, match.ErrEmptyInput),
		errors.Is(err, match.ErrInvalidThreshold),
		errors.Is(err, table.ErrEmptyFile),
		errors.Is(err, table.ErrUnsupportedFormat),
		errors.Is(err, table.ErrUnknownColumn),
		errors.Is(err, table.ErrDuplicateColumn),
		errors.Is(err, ErrInvalidSource),
		errors.Is(err, database.ErrInvalidTableName),
		errors.Is(err, database.ErrTableNotFound),
		errors.Is(err, storage.ErrInvalidObjectKey):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	status := statusFor(err)
	l := logger.WithSession(logger.WithRayID(h.service.logger, c), c.Params("id"))
	if status >= fiber.StatusInternalServerError {
		l.Error(msg, zap.Error(err))
	} else {
		l.Warn(msg, zap.Error(err), zap.Int("status", status))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// HandleCreate starts a new session.
// @Summary Create Session
// @Description Starts a matching wizard session in the awaiting_upload state.
// @Tags matching
// @Produce json
// @Success 201 {object} SessionView
// @Router /matching/sessions [post]
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	sess := h.service.Create()
	return c.Status(fiber.StatusCreated).JSON(NewSessionView(sess))
}

// HandleGet returns a session.
// @Summary Get Session
// @Description Returns the session state, column lists and previews.
// @Tags matching
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} SessionView
// @Failure 404 {object} map[string]string
// @Router /matching/sessions/{id} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	sess, err := h.service.Get(c.Params("id"))
	if err != nil {
		return h.fail(c, "Get session failed", err)
	}
	return c.JSON(NewSessionView(sess))
}

// HandleDelete drops a session.
// @Summary Delete Session
// @Tags matching
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /matching/sessions/{id} [delete]
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Params("id")); err != nil {
		return h.fail(c, "Delete session failed", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func readUpload(fh *multipart.FileHeader, opts table.ReadOptions) (table.Table, error) {
	f, err := fh.Open()
	if err != nil {
		return table.Table{}, err
	}
	defer f.Close()
	return table.Read(fh.Filename, f, opts)
}

// HandleUpload attaches both lists from a multipart upload.
// @Summary Upload Lists
// @Description Uploads the primary and reference lists (CSV, TSV or XLSX).
// @Tags matching
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Session ID"
// @Param primary formData file true "Primary list"
// @Param reference formData file true "Reference list"
// @Param raw_strings formData boolean false "Keep every cell as text"
// @Success 200 {object} SessionView
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /matching/sessions/{id}/upload [post]
func (h *Handler) HandleUpload(c *fiber.Ctx) error {
	primaryFile, err := c.FormFile("primary")
	if err != nil {
		return badRequest(c, "missing primary file")
	}
	referenceFile, err := c.FormFile("reference")
	if err != nil {
		return badRequest(c, "missing reference file")
	}

	opts := table.ReadOptions{RawStrings: utils.ToBool(c.FormValue("raw_strings"))}

	primary, err := readUpload(primaryFile, opts)
	if err != nil {
		return h.fail(c, "Failed to read primary file", fmt.Errorf("primary: %w", err))
	}
	reference, err := readUpload(referenceFile, opts)
	if err != nil {
		return h.fail(c, "Failed to read reference file", fmt.Errorf("reference: %w", err))
	}

	sess, err := h.service.Upload(c.Params("id"), primary, reference)
	if err != nil {
		return h.fail(c, "Upload failed", err)
	}

	logger.WithSession(logger.WithRayID(h.service.logger, c), sess.ID).Info("Lists uploaded",
		zap.Int("primary_rows", primary.Len()),
		zap.Int("reference_rows", reference.Len()))

	return c.JSON(NewSessionView(sess))
}

// HandleSource attaches both lists from the bucket or the registry database.
// @Summary Load Lists From Source
// @Tags matching
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body SourceRequest true "Sources"
// @Success 200 {object} SessionView
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /matching/sessions/{id}/source [post]
func (h *Handler) HandleSource(c *fiber.Ctx) error {
	var req SourceRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	sess, err := h.service.LoadSources(c.Context(), c.Params("id"), req)
	if err != nil {
		return h.fail(c, "Load sources failed", err)
	}
	return c.JSON(NewSessionView(sess))
}

// HandleRename renames columns.
// @Summary Rename Columns
// @Tags matching
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body RenameRequest true "Column renames"
// @Success 200 {object} SessionView
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /matching/sessions/{id}/rename [post]
func (h *Handler) HandleRename(c *fiber.Ctx) error {
	var req RenameRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	sess, err := h.service.Rename(c.Params("id"), req)
	if err != nil {
		return h.fail(c, "Rename failed", err)
	}
	return c.JSON(NewSessionView(sess))
}

// HandleSkipRename keeps the column names.
// @Summary Skip Renaming
// @Tags matching
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} SessionView
// @Failure 409 {object} map[string]string
// @Router /matching/sessions/{id}/rename/skip [post]
func (h *Handler) HandleSkipRename(c *fiber.Ctx) error {
	sess, err := h.service.SkipRename(c.Params("id"))
	if err != nil {
		return h.fail(c, "Skip rename failed", err)
	}
	return c.JSON(NewSessionView(sess))
}

// HandleMatch runs the matcher.
// @Summary Perform Matching
// @Description Pairs every primary facility with its best reference counterpart.
// @Tags matching
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body MatchRequest true "Key columns and threshold"
// @Success 200 {object} map[string]interface{} "Columns, rows and summary"
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /matching/sessions/{id}/match [post]
func (h *Handler) HandleMatch(c *fiber.Ctx) error {
	var req MatchRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	res, err := h.service.Match(c.Context(), c.Params("id"), req)
	if err != nil {
		return h.fail(c, "Matching failed", err)
	}
	return c.JSON(res)
}

// HandleResult returns the stored result.
// @Summary Get Result
// @Tags matching
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} map[string]interface{} "Columns, rows and summary"
// @Failure 409 {object} map[string]string
// @Router /matching/sessions/{id}/result [get]
func (h *Handler) HandleResult(c *fiber.Ctx) error {
	res, err := h.service.Result(c.Params("id"))
	if err != nil {
		return h.fail(c, "Get result failed", err)
	}
	return c.JSON(res)
}

// HandleExport downloads the result, or stores it in the bucket.
// @Summary Export Result
// @Tags matching
// @Produce octet-stream
// @Param id path string true "Session ID"
// @Param format query string false "csv or xlsx" default(csv)
// @Param store query boolean false "Upload to exports/ instead of downloading"
// @Success 200 {file} file
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /matching/sessions/{id}/export [get]
func (h *Handler) HandleExport(c *fiber.Ctx) error {
	id := c.Params("id")
	format := c.Query("format", FormatCSV)

	if c.QueryBool("store") {
		key, err := h.service.StoreExport(c.Context(), id, format)
		if err != nil {
			return h.fail(c, "Store export failed", err)
		}
		return c.JSON(fiber.Map{"key": key})
	}

	exp, err := h.service.Export(id, format)
	if err != nil {
		return h.fail(c, "Export failed", err)
	}

	c.Attachment(exp.FileName)
	c.Set(fiber.HeaderContentType, exp.ContentType)
	return c.Send(exp.Data)
}

// HandleReset returns the session to the upload step.
// @Summary Start Over
// @Tags matching
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} SessionView
// @Failure 404 {object} map[string]string
// @Router /matching/sessions/{id}/reset [post]
func (h *Handler) HandleReset(c *fiber.Ctx) error {
	sess, err := h.service.Reset(c.Params("id"))
	if err != nil {
		return h.fail(c, "Reset failed", err)
	}
	return c.JSON(NewSessionView(sess))
}
