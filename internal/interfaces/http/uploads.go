package http

import (
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/jhoicas/crm-api/internal/domain"
)

// UploadsPrefix ruta pública de los archivos subidos.
const UploadsPrefix = "/uploads"

// Uploads guarda archivos multipart en Dir.
type Uploads struct {
	Dir      string
	MaxBytes int64
}

// stored archivo ya guardado en disco.
type stored struct {
	Name string // nombre original
	Path string // ruta en disco
	URL  string // UploadsPrefix + "/" + nombre generado
	Mime string
	Ext  string
	Size int64
}

// save guarda el archivo del campo field con un nombre único. maxBytes 0 usa u.MaxBytes.
func (u Uploads) save(c *fiber.Ctx, field string, maxBytes int64) (*stored, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, domain.Invalid(field, "archivo requerido")
	}
	if maxBytes <= 0 {
		maxBytes = u.MaxBytes
	}
	if maxBytes > 0 && fh.Size > maxBytes {
		return nil, fiber.NewError(fiber.StatusRequestEntityTooLarge, "archivo demasiado grande")
	}
	if err := os.MkdirAll(u.Dir, 0o755); err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	name := uuid.NewString() + ext
	path := filepath.Join(u.Dir, name)
	if err := c.SaveFile(fh, path); err != nil {
		return nil, err
	}
	return &stored{
		Name: filepath.Base(fh.Filename),
		Path: path,
		URL:  UploadsPrefix + "/" + name,
		Mime: mimeOf(fh),
		Ext:  strings.TrimPrefix(ext, "."),
		Size: fh.Size,
	}, nil
}

// remove borra el archivo; los errores se ignoran.
func (u Uploads) remove(path string) {
	if path == "" {
		return
	}
	clean := filepath.Clean(path)
	if !strings.HasPrefix(clean, filepath.Clean(u.Dir)+string(os.PathSeparator)) {
		return
	}
	_ = os.Remove(clean)
}

func mimeOf(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get(fiber.HeaderContentType); ct != "" {
		return ct
	}
	return fiber.MIMEOctetStream
}
