package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/clientreview/internal/common"
	"github.com/dmitrijs2005/clientreview/internal/logging"
	"github.com/dmitrijs2005/clientreview/internal/server/models"
	"github.com/dmitrijs2005/clientreview/internal/server/repositories/repomanager"
)

type TagService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewTagService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *TagService {
	return &TagService{db: db, repomanager: m, logger: logger}
}

func (s *TagService) List(ctx context.Context) ([]*models.Tag, error) {
	list, err := s.repomanager.Tags(s.db).List(ctx)
	if err != nil {
		s.logger.Error(ctx, "list tags failed", "error", err)
		return nil, common.ErrorInternal
	}
	return list, nil
}

// Create adds a tag. The category must be POSITIVE or NEGATIVE; names are
// unique.
func (s *TagService) Create(ctx context.Context, name string, category models.TagCategory, group string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	category = models.TagCategory(strings.ToUpper(strings.TrimSpace(string(category))))

	if name == "" {
		return nil, fmt.Errorf("%w: tag name is required", common.ErrInvalidInput)
	}
	if !category.Valid() {
		return nil, fmt.Errorf("%w: category must be POSITIVE or NEGATIVE", common.ErrInvalidInput)
	}

	t, err := s.repomanager.Tags(s.db).Create(ctx, &models.Tag{
		Name:     name,
		Category: category,
		Group:    strings.TrimSpace(group),
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		s.logger.Error(ctx, "create tag failed", "error", err)
		return nil, common.ErrorInternal
	}
	return t, nil
}
