package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/domain/ingest"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSummaryReader implements ingest.SummaryReader using GORM
type GormSummaryReader struct {
	db *gorm.DB
}

// NewGormSummaryReader creates a new GormSummaryReader
func NewGormSummaryReader(db *gorm.DB) *GormSummaryReader {
	return &GormSummaryReader{db: db}
}

type shopCount struct {
	ShopID uuid.UUID
	Total  int64
}

// Summaries returns every shop by name with its counts and its most recent files, newest first
func (r *GormSummaryReader) Summaries(ctx context.Context, recentFiles int) ([]ingest.SourceSummary, error) {
	db := r.db.WithContext(ctx)

	var shops []models.ShopModel
	if err := db.Order("name ASC").Find(&shops).Error; err != nil {
		return nil, translateError(err)
	}

	orderCounts, err := countByShop(db, &models.OrderModel{})
	if err != nil {
		return nil, err
	}
	customerCounts, err := countByShop(db, &models.CustomerModel{})
	if err != nil {
		return nil, err
	}
	fileCounts, err := countByShop(db, &models.CSVFileModel{})
	if err != nil {
		return nil, err
	}

	summaries := make([]ingest.SourceSummary, 0, len(shops))
	for _, shop := range shops {
		summary := ingest.SourceSummary{
			ID:            shop.ID,
			Name:          shop.Name,
			DisplayName:   shop.DisplayName,
			LastSync:      shop.LastSync,
			OrderCount:    orderCounts[shop.ID],
			CustomerCount: customerCounts[shop.ID],
			FileCount:     fileCounts[shop.ID],
			RecentFiles:   []ingest.FileSummary{},
		}

		if recentFiles > 0 && summary.FileCount > 0 {
			var files []models.CSVFileModel
			if err := db.Where("shop_id = ?", shop.ID).
				Order("created_at DESC").
				Limit(recentFiles).
				Find(&files).Error; err != nil {
				return nil, translateError(err)
			}
			for i := range files {
				summary.RecentFiles = append(summary.RecentFiles, files[i].ToSummary())
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func countByShop(db *gorm.DB, model any) (map[uuid.UUID]int64, error) {
	var rows []shopCount
	if err := db.Model(model).
		Select("shop_id, COUNT(*) AS total").
		Group("shop_id").
		Scan(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	counts := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		counts[row.ShopID] = row.Total
	}
	return counts, nil
}
