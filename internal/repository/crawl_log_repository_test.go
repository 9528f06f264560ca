package repository

import (
	"context"
	"testing"
	"time"

	"github.com/fadilmartias/notice-radar/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrawlLogRepositoryLatest(t *testing.T) {
	db := newTestDB(t)
	repo := NewCrawlLogRepository(db)
	ctx := context.Background()

	got, err := repo.Latest(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, db.Create(&model.CrawlLog{Source: "기업마당", TotalCount: 10, NewCount: 2, CrawledAt: base}).Error)
	require.NoError(t, db.Create(&model.CrawlLog{Source: "나라장터", TotalCount: 5, NewCount: 1, CrawledAt: base.Add(2 * time.Hour)}).Error)

	got, err = repo.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "나라장터", got.Source)
}
