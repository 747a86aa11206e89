package handlers

import (
	"io"

	"chat_backend_service/internal/chat/repository"
	errprocess "chat_backend_service/pkg/err"

	"github.com/gofiber/fiber/v2"
)

// FileHandler definition upload and download endpoints
type FileHandler struct {
	FileRepo repository.FileRepository
}

// Upload store one multipart file, identical content reuses the earlier object
func (h *FileHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return respondErr(c, errprocess.New(errprocess.KindValidation, "file is required"))
	}

	f, err := fileHeader.Open()
	if err != nil {
		return respondErr(c, errprocess.Wrap(errprocess.KindInternal, "open upload fail", err))
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return respondErr(c, errprocess.Wrap(errprocess.KindInternal, "read upload fail", err))
	}

	userID, _ := principal(c)
	stored, err := h.FileRepo.Save(c.Context(), fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data, userID)
	if err != nil {
		return respondErr(c, errprocess.Wrap(errprocess.KindInternal, "store upload fail", err))
	}
	return respondOK(c, stored)
}

// Download stream one stored object. The token rides in the query so a
// plain download link works without headers.
func (h *FileHandler) Download(c *fiber.Ctx) error {
	storedName := c.Params("stored_name")

	obj, file, err := h.FileRepo.Get(c.Context(), storedName)
	if err != nil {
		return respondErr(c, errprocess.Wrap(errprocess.KindNotFound, "file not found", err))
	}

	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+file.OriginalName+`"`)
	return c.SendStream(obj, int(file.Size))
}
