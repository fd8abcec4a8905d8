package resolvers

import gqlmodels "catalog.GO/graphql/models"

func defaultPageSize(p *int) int {
	if p != nil && *p > 0 {
		return *p
	}
	return 20
}

func defaultCurrentPage(p *int) int {
	if p != nil && *p > 0 {
		return *p
	}
	return 1
}

func paginate[T any](items []T, currentPage, pageSize int) []T {
	total := len(items)
	start := (currentPage - 1) * pageSize
	end := start + pageSize
	if start >= total {
		return []T{}
	}
	if end > total {
		end = total
	}
	return items[start:end]
}

func pageInfo(total, currentPage, pageSize int) *gqlmodels.PageInfo {
	pages := 0
	if pageSize > 0 {
		pages = (total + pageSize - 1) / pageSize
	}
	return &gqlmodels.PageInfo{
		PageSize:    int32(pageSize),
		CurrentPage: int32(currentPage),
		TotalPages:  int32(pages),
	}
}
