package api

import (
	"fmt"
	"net/url"
	"strconv"

	"hireflow/internal/pipeline"
	"hireflow/internal/views"
)

// ViewQueryFromValues parses the shared filter/sort/pagination parameters all
// view endpoints accept. Unknown facet or sort values are rejected rather
// than silently ignored.
func ViewQueryFromValues(values url.Values) (views.Query, error) {
	query := views.Query{
		Text:          values.Get("q"),
		JobIDs:        values["job"],
		LocationIDs:   values["location"],
		DepartmentIDs: values["department"],
		StageID:       values.Get("stage"),
	}

	for _, raw := range values["phase"] {
		phase, ok := views.ParsePhase(raw)
		if !ok {
			return views.Query{}, fmt.Errorf("%w: unknown phase %q", pipeline.ErrValidation, raw)
		}
		query.Phases = append(query.Phases, phase)
	}

	sortField, ok := views.ParseSortField(values.Get("sort"))
	if !ok {
		return views.Query{}, fmt.Errorf("%w: unknown sort field %q", pipeline.ErrValidation, values.Get("sort"))
	}
	query.Sort = sortField

	dir, ok := views.ParseSortDir(values.Get("dir"))
	if !ok {
		return views.Query{}, fmt.Errorf("%w: unknown sort direction %q", pipeline.ErrValidation, values.Get("dir"))
	}
	query.Dir = dir

	if raw := values.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return views.Query{}, fmt.Errorf("%w: invalid page %q", pipeline.ErrValidation, raw)
		}
		query.Page = page
	}
	return query, nil
}
