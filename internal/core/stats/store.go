// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package stats

import "context"

// Repository computes aggregates over the dataset. Limits are already
// validated by the caller.
type Repository interface {
	Basic(ctx context.Context) (*Basic, error)
	TopFandoms(ctx context.Context, limit int) ([]Fandom, error)
	TopAuthors(ctx context.Context, limit int) ([]Author, error)
	LongestStories(ctx context.Context, limit int) ([]LongStory, error)

	// Distribution groups by column; limit 0 returns every group.
	Distribution(ctx context.Context, column string, limit int) ([]Bucket, error)
}
