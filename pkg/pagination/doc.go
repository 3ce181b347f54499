// Package pagination walks limit/offset paginated upstream endpoints.
//
// The subscription endpoint has no total-count header. A key is paged with a
// fixed page size and increasing offset until a page comes back shorter than
// the page size (or empty). Pages are fetched sequentially with a minimum
// interval between calls.
//
// Example usage:
//
//	pager := pagination.NewOffsetPager(func(ctx context.Context, offset, limit int) ([]client.Subscription, error) {
//		return c.FetchSubscriptions(ctx, key, offset, limit, headers)
//	}, pagination.DefaultConfig())
//	subs, err := pager.FetchAll(ctx)
//
// The pager:
//   - Requests offset 0, PageSize, 2*PageSize, ... in order
//   - Stops on the first short page
//   - Waits PageInterval between pages (not before the first)
//   - Returns no items if any page fails
package pagination
