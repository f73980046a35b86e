package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tutor-booking-api/internal/dto"
	"github.com/noah-isme/tutor-booking-api/internal/models"
	"github.com/noah-isme/tutor-booking-api/internal/repository"
	appErrors "github.com/noah-isme/tutor-booking-api/pkg/errors"
	"github.com/noah-isme/tutor-booking-api/pkg/storage"
)

// Class defaults applied on create.
const (
	defaultMaxStudents   = 40
	defaultTotalSessions = 12
	defaultLocation      = "TBA"
)

// Metadata-only material defaults.
const (
	defaultMaterialName = "Uploaded File.pdf"
	defaultMaterialType = "PDF"
	defaultMaterialSize = "1.0 MB"
)

type materialStorage interface {
	Put(key string, r io.Reader, limit int64) (int64, error)
	Open(key string) (*os.File, error)
	Delete(key string) error
}

type downloadSigner interface {
	Generate(resourceID, key string) (string, time.Time, error)
	Parse(token string) (*storage.SignedObject, error)
}

// ClassConfig controls material handling.
type ClassConfig struct {
	APIPrefix       string
	MaxUploadBytes  int64
	DownloadBaseURL string
}

// MaterialFile is an opened stored material ready to stream.
type MaterialFile struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.ReadCloser
}

// ClassService manages classes and their materials.
type ClassService struct {
	store     recordStore
	files     materialStorage
	signer    downloadSigner
	validator *validator.Validate
	logger    *zap.Logger
	config    ClassConfig
	now       func() time.Time
}

// NewClassService constructs the service. files and signer may be nil when
// uploads are disabled.
func NewClassService(store recordStore, files materialStorage, signer downloadSigner, validate *validator.Validate, logger *zap.Logger, cfg ClassConfig) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api"
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	return &ClassService{store: store, files: files, signer: signer, validator: validate, logger: logger, config: cfg, now: time.Now}
}

// List filters and paginates classes. TutorID matches either the tutor id or
// the tutor's user id.
func (s *ClassService) List(ctx context.Context, filter dto.ClassFilter) (*dto.ClassListResponse, error) {
	var classes []models.Class
	err := view(ctx, s.store, []string{repository.CollectionClasses, repository.CollectionTutors}, "failed to list classes", func(r *repository.Records) error {
		all, err := r.Classes()
		if err != nil {
			return err
		}
		tutorIDs := map[string]struct{}{}
		if filter.TutorID != "" {
			tutorIDs[filter.TutorID] = struct{}{}
			tutors, err := r.Tutors()
			if err != nil {
				return err
			}
			if t, ok := repository.FindTutorByUser(tutors, filter.TutorID); ok {
				tutorIDs[t.ID] = struct{}{}
			}
		}
		classes = repository.Filter(all, func(c models.Class) bool {
			if filter.TutorID != "" {
				if _, ok := tutorIDs[c.TutorID]; !ok {
					return false
				}
			}
			if filter.Subject != "" && filter.Subject != "All" && c.Subject != filter.Subject {
				return false
			}
			if filter.Status != "" && c.Status != filter.Status {
				return false
			}
			return true
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	pagination := models.NewPagination(filter.Page, filter.Limit, len(classes))
	start, end := pagination.Bounds(len(classes))
	return &dto.ClassListResponse{Classes: classes[start:end], Pagination: pagination}, nil
}

// Get returns one class.
func (s *ClassService) Get(ctx context.Context, id string) (*models.Class, error) {
	var class models.Class
	err := view(ctx, s.store, []string{repository.CollectionClasses}, "failed to load class", func(r *repository.Records) error {
		classes, err := r.Classes()
		if err != nil {
			return err
		}
		idx := repository.IndexOf(classes, func(c models.Class) bool { return c.ID == id })
		if idx < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "Class not found")
		}
		class = classes[idx]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &class, nil
}

// Create adds a class owned by the calling tutor.
func (s *ClassService) Create(ctx context.Context, claims *models.Claims, req dto.CreateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Name and subject are required")
	}

	var created models.Class
	err := update(ctx, s.store, []string{repository.CollectionClasses, repository.CollectionTutors}, "failed to create class", func(r *repository.Records) error {
		classes, err := r.Classes()
		if err != nil {
			return err
		}
		tutors, err := r.Tutors()
		if err != nil {
			return err
		}
		tutorID := claims.UserID
		if t, ok := repository.FindTutorByUser(tutors, claims.UserID); ok {
			tutorID = t.ID
		}

		created = models.Class{
			ID:            repository.NextSequentialID(repository.PrefixClass, repository.IDs(classes, func(c models.Class) string { return c.ID })),
			TutorID:       tutorID,
			TutorName:     claims.Name,
			TutorEmail:    claims.Email,
			Name:          req.Name,
			Subject:       req.Subject,
			Description:   req.Description,
			Schedule:      req.Schedule,
			MaxStudents:   req.MaxStudents,
			Location:      req.Location,
			Status:        models.ClassStatusActive,
			NextSession:   req.NextSession,
			TotalSessions: req.TotalSessions,
			Materials:     []models.Material{},
			CreatedAt:     s.now().UTC(),
		}
		if created.MaxStudents == 0 {
			created.MaxStudents = defaultMaxStudents
		}
		if created.TotalSessions == 0 {
			created.TotalSessions = defaultTotalSessions
		}
		if created.Location == "" {
			created.Location = defaultLocation
		}
		return r.SaveClasses(append(classes, created))
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("class created", zap.String("class_id", created.ID), zap.String("tutor_id", created.TutorID))
	return &created, nil
}

// AddMaterial records material metadata without a stored file.
func (s *ClassService) AddMaterial(ctx context.Context, classID string, req dto.CreateMaterialRequest) (*models.Material, error) {
	material := models.Material{
		ID:         repository.ShortID(repository.PrefixMaterial),
		Name:       valueOr(req.Name, defaultMaterialName),
		Type:       valueOr(req.Type, defaultMaterialType),
		Size:       valueOr(req.Size, defaultMaterialSize),
		UploadedAt: s.now().UTC(),
	}
	if err := s.appendMaterial(ctx, classID, material); err != nil {
		return nil, err
	}
	return &material, nil
}

// UploadMaterial stores the file body and records it on the class.
func (s *ClassService) UploadMaterial(ctx context.Context, classID, filename string, body io.Reader) (*models.Material, error) {
	if s.files == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file uploads are disabled")
	}
	if _, err := s.Get(ctx, classID); err != nil {
		return nil, err
	}

	name := storage.SanitizeFilename(filename)
	material := models.Material{
		ID:         repository.ShortID(repository.PrefixMaterial),
		Name:       filepath.Base(filename),
		Type:       materialType(name),
		UploadedAt: s.now().UTC(),
	}
	material.StorageKey = strings.Join([]string{classID, material.ID, name}, "/")

	size, err := s.files.Put(material.StorageKey, body, s.config.MaxUploadBytes)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds the %s limit", formatSize(s.config.MaxUploadBytes)))
		}
		return nil, appErrors.Internal(err, "failed to store material")
	}
	material.SizeBytes = size
	material.Size = formatSize(size)

	if err := s.appendMaterial(ctx, classID, material); err != nil {
		if delErr := s.files.Delete(material.StorageKey); delErr != nil {
			s.logger.Warn("failed to remove orphaned material", zap.String("key", material.StorageKey), zap.Error(delErr))
		}
		return nil, err
	}
	s.logger.Info("material uploaded", zap.String("class_id", classID), zap.String("material_id", material.ID), zap.Int64("bytes", size))
	return &material, nil
}

func (s *ClassService) appendMaterial(ctx context.Context, classID string, material models.Material) error {
	return update(ctx, s.store, []string{repository.CollectionClasses}, "failed to add material", func(r *repository.Records) error {
		classes, err := r.Classes()
		if err != nil {
			return err
		}
		idx := repository.IndexOf(classes, func(c models.Class) bool { return c.ID == classID })
		if idx < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "Class not found")
		}
		classes[idx].Materials = append(classes[idx].Materials, material)
		return r.SaveClasses(classes)
	})
}

// MaterialDownloadURL issues a signed link for a stored material.
func (s *ClassService) MaterialDownloadURL(ctx context.Context, materialID string) (*dto.MaterialDownloadResponse, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Material downloads are disabled")
	}
	material, err := s.findMaterial(ctx, materialID)
	if err != nil {
		return nil, err
	}
	if material.StorageKey == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Material has no stored file")
	}
	token, expiresAt, err := s.signer.Generate(material.ID, material.StorageKey)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to sign download url")
	}
	link := s.config.DownloadBaseURL + s.config.APIPrefix + "/materials/download?token=" + url.QueryEscape(token)
	return &dto.MaterialDownloadResponse{MaterialID: material.ID, URL: link, ExpiresAt: expiresAt}, nil
}

// OpenMaterial resolves a download token to the stored file.
func (s *ClassService) OpenMaterial(ctx context.Context, token string) (*MaterialFile, error) {
	if s.signer == nil || s.files == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Material downloads are disabled")
	}
	obj, err := s.signer.Parse(token)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidToken, "Invalid or expired download link")
	}
	material, err := s.findMaterial(ctx, obj.ResourceID)
	if err != nil {
		return nil, err
	}
	if material.StorageKey != obj.Key {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Material not found")
	}
	f, err := s.files.Open(obj.Key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Material file not found")
		}
		return nil, appErrors.Internal(err, "failed to open material")
	}
	contentType := mime.TypeByExtension(filepath.Ext(obj.Key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &MaterialFile{Name: material.Name, ContentType: contentType, Size: material.SizeBytes, Body: f}, nil
}

func (s *ClassService) findMaterial(ctx context.Context, materialID string) (models.Material, error) {
	var material models.Material
	err := view(ctx, s.store, []string{repository.CollectionClasses}, "failed to load material", func(r *repository.Records) error {
		classes, err := r.Classes()
		if err != nil {
			return err
		}
		for _, c := range classes {
			for _, m := range c.Materials {
				if m.ID == materialID {
					material = m
					return nil
				}
			}
		}
		return appErrors.Clone(appErrors.ErrNotFound, "Material not found")
	})
	return material, err
}

func materialType(name string) string {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" {
		return "FILE"
	}
	return strings.ToUpper(ext)
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func valueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
