package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"hetave/internal/apperr"
	"hetave/internal/services"

	"github.com/gofiber/fiber/v2"
)

// form is the text and file parts of a request. A JSON body is accepted as a
// form without files.
type form struct {
	values map[string][]string
	files  map[string][]*multipart.FileHeader
}

func parseForm(c *fiber.Ctx) (*form, error) {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		mf, err := c.MultipartForm()
		if err != nil {
			return nil, err
		}
		return &form{values: mf.Value, files: mf.File}, nil
	}

	f := &form{values: map[string][]string{}}
	if len(c.Body()) == 0 {
		return f, nil
	}
	var raw map[string]any
	if err := c.BodyParser(&raw); err != nil {
		return nil, err
	}
	for k, v := range raw {
		switch tv := v.(type) {
		case string:
			f.values[k] = []string{tv}
		case nil:
		default:
			// Arrays, numbers and booleans keep their JSON encoding, which is
			// what the multipart admin form sends too.
			b, err := json.Marshal(tv)
			if err != nil {
				return nil, err
			}
			f.values[k] = []string{string(b)}
		}
	}
	return f, nil
}

// value returns the first value of key and whether key was sent at all.
func (f *form) value(key string) (string, bool) {
	v, ok := f.values[key]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}

func (f *form) str(key string) *string {
	v, ok := f.value(key)
	if !ok {
		return nil
	}
	return &v
}

// float parses key as a number. Absent and empty values yield nil.
func (f *form) float(key string) (*float64, error) {
	v, ok := f.value(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil, nil
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return nil, apperr.Validation("%s must be a number", key)
	}
	return &n, nil
}

// boolean treats "true" as true and any other sent value as false.
func (f *form) boolean(key string) *bool {
	v, ok := f.value(key)
	if !ok {
		return nil
	}
	b := strings.EqualFold(strings.TrimSpace(v), "true")
	return &b
}

// stringList decodes a JSON array of strings. Absent and empty values yield nil.
func (f *form) stringList(key string) (*[]string, error) {
	v, ok := f.value(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(v), &out); err != nil {
		return nil, apperr.Validation("%s must be a JSON array of strings", key)
	}
	return &out, nil
}

func (f *form) colors(key string) (*[]services.ColorInput, error) {
	v, ok := f.value(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil, nil
	}
	var out []services.ColorInput
	if err := json.Unmarshal([]byte(v), &out); err != nil {
		return nil, apperr.Validation("%s must be a JSON array of {name, image}", key)
	}
	return &out, nil
}

// upload reads the first file sent under key, if any.
func (f *form) upload(key string) (*services.Upload, error) {
	files := f.files[key]
	if len(files) == 0 {
		return nil, nil
	}
	return readUpload(files[0])
}

func (f *form) uploads(key string) ([]*services.Upload, error) {
	files := f.files[key]
	if len(files) > services.MaxColorImages {
		return nil, apperr.Validation("At most %d %s files are allowed", services.MaxColorImages, key)
	}
	out := make([]*services.Upload, 0, len(files))
	for _, fh := range files {
		u, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

func readUpload(fh *multipart.FileHeader) (*services.Upload, error) {
	if fh.Size > services.MaxImageBytes {
		return nil, apperr.Validation("Image %s exceeds the 5MB limit", fh.Filename)
	}
	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, services.MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}
	return &services.Upload{Filename: fh.Filename, Data: data}, nil
}
