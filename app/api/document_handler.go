package api

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"chatpdf/index"
	"chatpdf/store"
	"chatpdf/types"

	"github.com/gofiber/fiber/v2"
)

type DocumentHandler struct {
	ingestor *index.Ingestor
	store    *index.ArtifactStore
	db       store.DBStorer
	cfg      types.Config
}

func NewDocumentHandler(ingestor *index.Ingestor, artifacts *index.ArtifactStore, db store.DBStorer, cfg types.Config) *DocumentHandler {
	return &DocumentHandler{
		ingestor: ingestor,
		store:    artifacts,
		db:       db,
		cfg:      cfg,
	}
}

// HandleUpload ingests a PDF: saves the raw bytes, extracts per-page text,
// chunks, embeds and persists the index artifacts. Re-uploading the same
// filename replaces the previous index.
func (h *DocumentHandler) HandleUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return ErrBadRequest()
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	name := filepath.Base(fileHeader.Filename)
	log.Printf("[UPLOAD] Processing %s (%d bytes)", name, len(data))

	doc, chunks, err := h.ingestor.Ingest(c.Context(), name, data)
	if err != nil {
		return err
	}

	pdfPath := filepath.Join(h.cfg.UploadDir, name)
	if err := os.WriteFile(pdfPath, data, 0644); err != nil {
		return fmt.Errorf("failed to save PDF: %w", err)
	}

	if h.cfg.MirrorChunks && h.db != nil {
		if err := h.db.DeleteChunksByDoc(c.Context(), name); err != nil {
			log.Printf("[UPLOAD] chunk mirror cleanup failed: %v", err)
		} else if err := h.db.SaveChunks(c.Context(), chunks); err != nil {
			log.Printf("[UPLOAD] chunk mirror write failed: %v", err)
		}
	}

	return c.JSON(doc)
}

func (h *DocumentHandler) HandleList(c *fiber.Ctx) error {
	names, err := h.store.List()
	if err != nil {
		return err
	}
	if names == nil {
		names = []string{}
	}
	return c.JSON(fiber.Map{"documents": names})
}

// HandleDelete removes the index artifacts and the stored PDF. Deleting a
// document that is already gone succeeds as a no-op.
func (h *DocumentHandler) HandleDelete(c *fiber.Ctx) error {
	name := filepath.Base(c.Params("name"))
	if name == "" || name == "." {
		return ErrBadRequest()
	}

	if err := h.store.Delete(name); err != nil {
		return err
	}

	pdfPath := filepath.Join(h.cfg.UploadDir, name)
	if err := os.Remove(pdfPath); err != nil && !os.IsNotExist(err) {
		return err
	}

	if h.cfg.MirrorChunks && h.db != nil {
		if err := h.db.DeleteChunksByDoc(c.Context(), name); err != nil {
			log.Printf("[DELETE] chunk mirror cleanup failed: %v", err)
		}
	}

	return c.JSON(fiber.Map{"message": fmt.Sprintf("document '%s' and associated artifacts deleted", name)})
}
