package handler

import (
	"mime/multipart"
	"strings"

	"fmcg-admin-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

const maxImageBytes = 5 << 20

// openImage checks size and type and opens the part for reading.
func openImage(fh *multipart.FileHeader) (*service.Image, multipart.File, error) {
	if fh.Size > maxImageBytes {
		return nil, nil, fiber.NewError(fiber.StatusBadRequest, "Image "+fh.Filename+" exceeds the 5MB limit")
	}
	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, nil, fiber.NewError(fiber.StatusBadRequest, "Only image files are allowed")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, fiber.NewError(fiber.StatusBadRequest, "Could not read uploaded file")
	}
	return &service.Image{Filename: fh.Filename, ContentType: contentType, Body: f}, f, nil
}

// singleImage returns the optional file under field, or nil when absent.
// The returned close func is always safe to call.
func singleImage(c *fiber.Ctx, field string) (*service.Image, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		// missing file or a plain JSON body
		return nil, func() {}, nil
	}
	img, f, err := openImage(fh)
	if err != nil {
		return nil, func() {}, err
	}
	return img, func() { _ = f.Close() }, nil
}

// multiImages returns every file under field.
func multiImages(c *fiber.Ctx, field string) ([]service.Image, func(), error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, func() {}, nil
	}
	var (
		images []service.Image
		files  []multipart.File
	)
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}
	for _, fh := range form.File[field] {
		img, f, err := openImage(fh)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		images = append(images, *img)
		files = append(files, f)
	}
	return images, closeAll, nil
}
