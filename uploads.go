package inkpost

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
)

const (
	maxUploadBytes = 5 << 20 // 5 MiB, checked before anything is written
	maxImageWidth  = 1600
	jpegQuality    = 80
	uploadField    = "postImage"
	uploadsPrefix  = "/uploads"
)

// allowedTypes maps accepted file extensions to the media type each must
// declare. Uploads whose extension or declared type falls outside this list
// are rejected.
var allowedTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

// Uploads is the attachment service consumed by the authoring workflow.
// Implementations keep at most one stored file per post alive and guarantee
// that failed operations do not leave orphaned files behind.
type Uploads interface {
	// Validate rejects uploads whose declared media type, extension, or size
	// fall outside the allow-list. It does not read file content.
	Validate(file *multipart.FileHeader) error
	// Store persists a validated upload under a collision-resistant name and
	// returns its public URL.
	Store(file *multipart.FileHeader) (string, error)
	// Replace resolves an image transition: a new file replaces (and
	// schedules deletion of) the old one; removeRequested without a new file
	// schedules deletion and returns ""; otherwise oldURL passes through.
	Replace(oldURL string, file *multipart.FileHeader, removeRequested bool) (string, error)
	// Discard synchronously removes a stored file that must not be kept,
	// used when the surrounding record operation fails.
	Discard(url string)
	// ScheduleDelete removes a stored file in the background. The caller
	// never waits on it and a missing file is not an error.
	ScheduleDelete(url string)
}

// UploadService stores post images on the local filesystem under dir,
// serving them at /uploads/<name>. Background deletions are tracked so
// Close can wait for them during shutdown.
type UploadService struct {
	dir string
	wg  sync.WaitGroup
}

var _ Uploads = (*UploadService)(nil)

// NewUploadService creates an UploadService rooted at dir.
func NewUploadService(dir string) *UploadService {
	return &UploadService{dir: dir}
}

// Close waits for any in-flight background deletions to finish.
func (u *UploadService) Close() error {
	u.wg.Wait()
	return nil
}

// Validate checks the declared media type and file extension against the
// allow-list and enforces the size cap. Oversized or mistyped uploads are
// rejected before anything touches disk.
func (u *UploadService) Validate(file *multipart.FileHeader) error {
	if file.Size > maxUploadBytes {
		return &ValidationError{Message: "Image too large (max 5 MB)."}
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	want, ok := allowedTypes[ext]
	if !ok {
		return &ValidationError{Message: "Images only (jpeg, jpg, png, gif)."}
	}
	declared := file.Header.Get("Content-Type")
	if declared != want {
		return &ValidationError{Message: fmt.Sprintf("Image type %q does not match its extension.", declared)}
	}
	return nil
}

// Store persists the upload under <field>-<nanotimestamp><ext> and returns
// its public /uploads URL. JPEGs and PNGs wider than maxImageWidth are
// downscaled in their own format; GIFs are stored verbatim to preserve
// animation.
func (u *UploadService) Store(file *multipart.FileHeader) (string, error) {
	if err := u.Validate(file); err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxUploadBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > maxUploadBytes {
		return "", &ValidationError{Message: "Image too large (max 5 MB)."}
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".gif" {
		data = downscale(data, ext)
	}

	if err := os.MkdirAll(u.dir, 0o755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}
	name := fmt.Sprintf("%s-%d%s", uploadField, time.Now().UnixNano(), ext)
	if err := os.WriteFile(filepath.Join(u.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return uploadsPrefix + "/" + name, nil
}

// downscale re-encodes images wider than maxImageWidth at a reduced width,
// preserving the original format. Content that does not decode is returned
// unchanged; the declared type already passed validation.
func downscale(data []byte, ext string) []byte {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxImageWidth {
		return data
	}
	newH := h * maxImageWidth / w
	dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	switch ext {
	case ".png":
		err = png.Encode(&buf, dst)
	default:
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		return data
	}
	return buf.Bytes()
}

// Replace implements the image transition for post updates.
func (u *UploadService) Replace(oldURL string, file *multipart.FileHeader, removeRequested bool) (string, error) {
	if file != nil {
		newURL, err := u.Store(file)
		if err != nil {
			return "", err
		}
		if oldURL != "" {
			u.ScheduleDelete(oldURL)
		}
		return newURL, nil
	}
	if removeRequested {
		if oldURL != "" {
			u.ScheduleDelete(oldURL)
		}
		return "", nil
	}
	return oldURL, nil
}

// Discard synchronously removes a stored file, logging (not returning)
// failures. Removing a file that is already gone is not an error.
func (u *UploadService) Discard(url string) {
	u.remove(url)
}

// ScheduleDelete removes a stored file in the background. The outcome is
// logged and never awaited by the caller.
func (u *UploadService) ScheduleDelete(url string) {
	u.wg.Add(1)
	go func() {
		defer u.wg.Done()
		u.remove(url)
	}()
}

func (u *UploadService) remove(url string) {
	p := u.filePath(url)
	if p == "" {
		return
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		log.Error().Err(err).Str("file", p).Msg("failed to delete upload")
	}
}

// filePath maps a public /uploads URL back to its path under dir. Only the
// base name is used, so a crafted URL cannot escape the uploads directory.
func (u *UploadService) filePath(url string) string {
	if !strings.HasPrefix(url, uploadsPrefix+"/") {
		return ""
	}
	return filepath.Join(u.dir, path.Base(url))
}
