package inkpost

import (
	"database/sql"
	"mime/multipart"
	"strings"
)

// Workflow orchestrates the store and the upload service so that authoring
// operations leave neither orphaned files nor records pointing at files that
// were never stored.
type Workflow struct {
	store   *Store
	uploads Uploads
}

// NewWorkflow wires the authoring workflow over a store and upload service.
func NewWorkflow(store *Store, uploads Uploads) *Workflow {
	return &Workflow{store: store, uploads: uploads}
}

// normalize trims the form fields and applies the author fallback. This is
// the single place default coalescing happens.
func normalize(in PostInput) PostInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Author = strings.TrimSpace(in.Author)
	in.Location = strings.TrimSpace(in.Location)
	if in.Author == "" {
		in.Author = "Admin"
	}
	return in
}

// CreatePost validates the upload and the form fields, stores the image if
// one was attached, and creates the post. A validation failure before the
// record exists leaves no stored file; a storage failure after the image was
// written discards it again.
func (w *Workflow) CreatePost(in PostInput, file *multipart.FileHeader) (Post, error) {
	if file != nil {
		if err := w.uploads.Validate(file); err != nil {
			return Post{}, err
		}
	}
	in = normalize(in)
	if err := validateRequired(in.Title, in.Description, in.Content); err != nil {
		return Post{}, err
	}

	imageURL := ""
	if file != nil {
		url, err := w.uploads.Store(file)
		if err != nil {
			return Post{}, err
		}
		imageURL = url
	}

	p, err := w.store.CreatePost(in, imageURL)
	if err != nil {
		if imageURL != "" {
			w.uploads.Discard(imageURL)
		}
		return Post{}, err
	}
	return p, nil
}

// UpdatePost applies the form fields and the image transition to an existing
// post. Field validation failures leave the record and its current image
// untouched; a storage failure after a new image was written discards the
// new file so nothing is orphaned.
func (w *Workflow) UpdatePost(id string, in PostInput, file *multipart.FileHeader, removeImage bool) (Post, error) {
	existing, err := w.store.GetPost(id)
	if err != nil {
		return Post{}, err
	}
	if file != nil {
		if err := w.uploads.Validate(file); err != nil {
			return Post{}, err
		}
	}
	in = normalize(in)
	if err := validateRequired(in.Title, in.Description, in.Content); err != nil {
		return Post{}, err
	}

	imageURL, err := w.uploads.Replace(existing.ImageURL, file, removeImage)
	if err != nil {
		return Post{}, err
	}

	update := PostUpdate{
		Title:       &in.Title,
		Description: &in.Description,
		Content:     &in.Content,
		Author:      &in.Author,
		Location:    &in.Location,
		ImageURL:    &sql.NullString{String: imageURL, Valid: imageURL != ""},
	}
	p, err := w.store.UpdatePost(id, update)
	if err != nil {
		if imageURL != "" && imageURL != existing.ImageURL {
			w.uploads.Discard(imageURL)
		}
		return Post{}, err
	}
	return p, nil
}

// DeletePost removes a post and schedules deletion of its attachment, if
// any. The file deletion is best-effort and never blocks the caller.
func (w *Workflow) DeletePost(id string) error {
	p, err := w.store.DeletePost(id)
	if err != nil {
		return err
	}
	if p.ImageURL != "" {
		w.uploads.ScheduleDelete(p.ImageURL)
	}
	return nil
}
