package tracker

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"maint-tracker/internal/database"
	"maint-tracker/internal/logutils"
	"maint-tracker/internal/models"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// MaxPhotoSize is the largest accepted upload, 5 MiB.
const MaxPhotoSize = 5 << 20

// PhotoUpload is one file handed to AddPhoto or AddPhotos.
type PhotoUpload struct {
	Filename    string
	ContentType string // as declared by the client, may be empty
	Data        []byte
}

// PhotoFailure describes a rejected file of a batch upload.
type PhotoFailure struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// newPhoto validates an upload and encodes it for storage.
func (s *Service) newPhoto(actor string, up PhotoUpload) (models.Photo, error) {
	name := strings.TrimSpace(up.Filename)
	if name == "" {
		name = "photo"
	}
	if len(up.Data) == 0 {
		return models.Photo{}, invalid("photos", "File %q is empty.", name)
	}
	if len(up.Data) > MaxPhotoSize {
		return models.Photo{}, invalid("photos", "File %q is too large. Please upload images smaller than 5MB.", name)
	}

	declared := strings.ToLower(strings.TrimSpace(up.ContentType))
	if declared != "" && !strings.HasPrefix(declared, "image/") {
		return models.Photo{}, invalid("photos", "File %q is not an image. Please upload only image files.", name)
	}
	detected := mimetype.Detect(up.Data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return models.Photo{}, invalid("photos", "File %q is not an image. Please upload only image files.", name)
	}

	sum := blake2b.Sum256(up.Data)
	ctype := detected.String()
	return models.Photo{
		ID:          uuid.NewString(),
		Filename:    name,
		ContentType: ctype,
		Data:        "data:" + ctype + ";base64," + base64.StdEncoding.EncodeToString(up.Data),
		Checksum:    hex.EncodeToString(sum[:]),
		UploadedAt:  s.now(),
		UploadedBy:  actorOrDefault(actor),
		Size:        int64(len(up.Data)),
	}, nil
}

func (s *Service) attachPhotos(ctx context.Context, actor string, p *models.Project, photos []models.Photo) error {
	next := p.Clone()
	next.Photos = append(next.Photos, photos...)
	next.UpdatedDate = s.now()

	field := "photos"
	entries := make([]models.AuditEntry, 0, len(photos))
	for _, ph := range photos {
		filename := ph.Filename
		entries = append(entries, s.entry(p.ID, models.ActionAddPhoto, &field, nil, &filename, actor))
	}
	if err := s.commit(ctx, "save photos", database.Change{Project: &next, Audit: entries}); err != nil {
		return err
	}
	*p = next

	logutils.Log.WithFields(logutils.Fields{"project": p.ID, "photos": len(photos)}).Info("photos added")
	return nil
}

// AddPhoto validates and appends a single photo.
func (s *Service) AddPhoto(ctx context.Context, actor, projectID string, up PhotoUpload) (models.Project, error) {
	p, err := s.activeProject(ctx, projectID)
	if err != nil {
		return models.Project{}, err
	}
	ph, err := s.newPhoto(actor, up)
	if err != nil {
		return models.Project{}, err
	}
	if err := s.attachPhotos(ctx, actor, &p, []models.Photo{ph}); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

// AddPhotos validates every upload on its own. Valid files are attached even
// when others fail; the rejected ones are reported in the returned failures.
func (s *Service) AddPhotos(ctx context.Context, actor, projectID string, uploads []PhotoUpload) (models.Project, []PhotoFailure, error) {
	p, err := s.activeProject(ctx, projectID)
	if err != nil {
		return models.Project{}, nil, err
	}

	var (
		accepted []models.Photo
		failures = []PhotoFailure{}
	)
	for _, up := range uploads {
		ph, err := s.newPhoto(actor, up)
		if err != nil {
			failures = append(failures, PhotoFailure{Filename: up.Filename, Error: err.Error()})
			continue
		}
		accepted = append(accepted, ph)
	}

	if len(accepted) == 0 {
		return p, failures, nil
	}
	if err := s.attachPhotos(ctx, actor, &p, accepted); err != nil {
		return models.Project{}, nil, err
	}
	return p, failures, nil
}

// RemovePhoto detaches one photo and records DELETE_PHOTO.
func (s *Service) RemovePhoto(ctx context.Context, actor, projectID, photoID string) (models.Project, error) {
	p, err := s.activeProject(ctx, projectID)
	if err != nil {
		return models.Project{}, err
	}

	idx := -1
	for i, ph := range p.Photos {
		if ph.ID == photoID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.Project{}, &NotFoundError{Kind: "photo", ID: photoID}
	}

	removed := p.Photos[idx]
	p.Photos = append(p.Photos[:idx:idx], p.Photos[idx+1:]...)
	p.UpdatedDate = s.now()

	field := "photos"
	err = s.commit(ctx, "remove photo", database.Change{
		Project: &p,
		Audit:   []models.AuditEntry{s.entry(p.ID, models.ActionDeletePhoto, &field, &removed.Filename, nil, actor)},
	})
	if err != nil {
		return models.Project{}, err
	}

	logutils.Log.WithFields(logutils.Fields{"project": p.ID, "photo": photoID}).Info("photo removed")
	return p, nil
}

func (s *Service) GetPhoto(ctx context.Context, projectID, photoID string) (models.Photo, error) {
	p, err := s.activeProject(ctx, projectID)
	if err != nil {
		return models.Photo{}, err
	}
	for _, ph := range p.Photos {
		if ph.ID == photoID {
			return ph, nil
		}
	}
	return models.Photo{}, &NotFoundError{Kind: "photo", ID: photoID}
}

// PhotoBytes decodes the data URL held by a photo.
func PhotoBytes(ph models.Photo) ([]byte, error) {
	_, payload, ok := strings.Cut(ph.Data, ";base64,")
	if !ok {
		return nil, fmt.Errorf("photo %s: data is not a base64 data URL", ph.ID)
	}
	return base64.StdEncoding.DecodeString(payload)
}
