package persistence

import (
	"context"

	"github.com/dfryer1193/goblog-backend/blog/domain"
)

var _ domain.Paginator = (*postPaginator)(nil)

// postPaginator pages over a snapshot count taken when it was created.
type postPaginator struct {
	repo       *SQLitePostRepository
	sorter     domain.Sorter
	maxPerPage int
	nbResults  int
	page       int
}

func newPaginator(repo *SQLitePostRepository, sorter domain.Sorter, maxPerPage, nbResults int) *postPaginator {
	return &postPaginator{
		repo:       repo,
		sorter:     sorter,
		maxPerPage: maxPerPage,
		nbResults:  nbResults,
		page:       1,
	}
}

func (p *postPaginator) SetCurrentPage(page int, clampLow, clampHigh bool) error {
	if page < 1 {
		if !clampLow {
			return domain.ErrOutOfRangePage
		}
		page = 1
	}

	if last := p.NbPages(); page > last {
		if !clampHigh {
			return domain.ErrOutOfRangePage
		}
		page = last
	}

	p.page = page
	return nil
}

func (p *postPaginator) CurrentPage() int {
	return p.page
}

func (p *postPaginator) MaxPerPage() int {
	return p.maxPerPage
}

// NbPages is never below 1, so an empty listing still has a first page.
func (p *postPaginator) NbPages() int {
	pages := (p.nbResults + p.maxPerPage - 1) / p.maxPerPage
	if pages < 1 {
		return 1
	}
	return pages
}

func (p *postPaginator) NbResults() int {
	return p.nbResults
}

func (p *postPaginator) HasPreviousPage() bool {
	return p.page > 1
}

func (p *postPaginator) HasNextPage() bool {
	return p.page < p.NbPages()
}

func (p *postPaginator) CurrentPageResults(ctx context.Context) ([]*domain.Post, error) {
	offset := (p.page - 1) * p.maxPerPage
	return p.repo.listPosts(ctx, p.sorter, p.maxPerPage, offset)
}
