// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package story

import (
	"context"

	"github.com/taibuivan/ficdex/pkg/pagination"
)

// Repository reads story records from the dataset.
type Repository interface {
	// Search returns one page of matching records and the total match count.
	Search(ctx context.Context, criteria Criteria, page pagination.Params) ([]Story, int64, error)

	// FindByID returns every column of one record or a NotFound error.
	FindByID(ctx context.Context, id int64) (*Detail, error)
}
