package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"maint-tracker/internal/logutils"
	"maint-tracker/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PostgresStore persists the tracker in PostgreSQL through gorm.
type PostgresStore struct {
	DB *gorm.DB
}

const (
	connectAttempts = 10
	connectBackoff  = 2 * time.Second
)

// OpenPostgres connects to dsn, retrying while the database comes up, and
// migrates the schema.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	var (
		db  *gorm.DB
		err error
	)

	for i := 1; i <= connectAttempts; i++ {
		logutils.Log.Infof("trying to connect to DB (attempt %d/%d)...", i, connectAttempts)

		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err == nil {
			logutils.Log.Info("connected to DB successfully")
			break
		}

		logutils.Log.WithError(err).Warn("failed to connect to DB")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectBackoff):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to db after %d attempts: %w", connectAttempts, err)
	}

	s := &PostgresStore{DB: db}
	if err := s.migrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	db := s.DB.WithContext(ctx)
	err := db.AutoMigrate(
		&models.Project{},
		&models.Photo{},
		&models.Note{},
		&models.AuditEntry{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	if err := db.Exec("CREATE SEQUENCE IF NOT EXISTS project_seq").Error; err != nil {
		return fmt.Errorf("failed to create project sequence: %w", err)
	}
	return nil
}

func orderedPhotos(db *gorm.DB) *gorm.DB {
	return db.Order("position asc")
}

func (s *PostgresStore) NextProjectSeq(ctx context.Context) (int, error) {
	var seq int
	if err := s.DB.WithContext(ctx).Raw("SELECT nextval('project_seq')").Scan(&seq).Error; err != nil {
		return 0, fmt.Errorf("failed to advance project sequence: %w", err)
	}
	return seq, nil
}

func (s *PostgresStore) CreateProject(ctx context.Context, p *models.Project) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return createProject(tx, p)
	})
}

func createProject(tx *gorm.DB, p *models.Project) error {
	if err := tx.Omit("Photos").Create(p).Error; err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return insertPhotos(tx, p)
}

func insertPhotos(tx *gorm.DB, p *models.Project) error {
	if len(p.Photos) == 0 {
		return nil
	}
	photos := make([]models.Photo, len(p.Photos))
	for i, ph := range p.Photos {
		ph.ProjectID = p.ID
		ph.Position = i
		photos[i] = ph
	}
	if err := tx.Create(&photos).Error; err != nil {
		return fmt.Errorf("failed to store photos: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetProject(ctx context.Context, id string) (models.Project, error) {
	var p models.Project
	err := s.DB.WithContext(ctx).
		Preload("Photos", orderedPhotos).
		Where("id = ?", id).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Project{}, ErrNotFound
	}
	if err != nil {
		return models.Project{}, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) SaveProject(ctx context.Context, p *models.Project) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return saveProject(tx, p)
	})
}

func saveProject(tx *gorm.DB, p *models.Project) error {
	var count int64
	if err := tx.Model(&models.Project{}).Where("id = ?", p.ID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check project: %w", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	if err := tx.Omit("Photos").Save(p).Error; err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	if err := tx.Where("project_id = ?", p.ID).Delete(&models.Photo{}).Error; err != nil {
		return fmt.Errorf("failed to replace photos: %w", err)
	}
	return insertPhotos(tx, p)
}

func (s *PostgresStore) ListProjects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	err := s.DB.WithContext(ctx).
		Preload("Photos", orderedPhotos).
		Order("seq asc").
		Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

func (s *PostgresStore) CreateNote(ctx context.Context, n *models.Note) error {
	if err := s.DB.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListNotes(ctx context.Context, projectID string) ([]models.Note, error) {
	q := s.DB.WithContext(ctx).Order("id asc")
	if projectID != "" {
		q = q.Where("project_id = ?", projectID)
	}

	notes := []models.Note{}
	if err := q.Find(&notes).Error; err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

func (s *PostgresStore) AppendAudit(ctx context.Context, e *models.AuditEntry) error {
	if err := s.DB.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAudit(ctx context.Context, projectID string) ([]models.AuditEntry, error) {
	q := s.DB.WithContext(ctx).Order("id asc")
	if projectID != "" {
		q = q.Where("project_id = ?", projectID)
	}

	entries := []models.AuditEntry{}
	if err := q.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list audit log: %w", err)
	}
	return entries, nil
}

func (s *PostgresStore) Commit(ctx context.Context, c Change) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if p := c.Project; p != nil {
			var err error
			if c.Create {
				err = createProject(tx, p)
			} else {
				err = saveProject(tx, p)
			}
			if err != nil {
				return err
			}
			if c.DeleteNotes {
				if err := tx.Where("project_id = ?", p.ID).Delete(&models.Note{}).Error; err != nil {
					return fmt.Errorf("failed to delete notes: %w", err)
				}
			}
		}
		if c.Note != nil {
			if err := tx.Create(c.Note).Error; err != nil {
				return fmt.Errorf("failed to create note: %w", err)
			}
		}
		for i := range c.Audit {
			if err := tx.Create(&c.Audit[i]).Error; err != nil {
				return fmt.Errorf("failed to append audit entry: %w", err)
			}
		}
		return nil
	})
}

func (s *PostgresStore) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
