package clientapp

import (
	"net/http"
	"strconv"

	"github.com/lyracrm/lyra/app/sdk/errs"
	"github.com/lyracrm/lyra/business/domain/clientbus"
	"github.com/lyracrm/lyra/business/types/name"
	"github.com/lyracrm/lyra/business/types/status"
)

type queryParams struct {
	Page     string
	Rows     string
	OrderBy  string
	ID       string
	Name     string
	Industry string
	Status   string
}

func parseQueryParams(r *http.Request) queryParams {
	values := r.URL.Query()

	return queryParams{
		Page:     values.Get("page"),
		Rows:     values.Get("rows"),
		OrderBy:  values.Get("orderBy"),
		ID:       values.Get("client_id"),
		Name:     values.Get("name"),
		Industry: values.Get("industry"),
		Status:   values.Get("status"),
	}
}

func parseFilter(qp queryParams) (clientbus.QueryFilter, error) {
	var fieldErrors errs.FieldErrors
	var filter clientbus.QueryFilter

	if qp.ID != "" {
		id, err := strconv.ParseInt(qp.ID, 10, 64)
		switch err {
		case nil:
			filter.ID = &id
		default:
			fieldErrors.Add("client_id", err)
		}
	}

	if qp.Name != "" {
		nme, err := name.Parse(qp.Name)
		switch err {
		case nil:
			filter.Name = &nme
		default:
			fieldErrors.Add("name", err)
		}
	}

	if qp.Industry != "" {
		filter.Industry = &qp.Industry
	}

	if qp.Status != "" {
		sts, err := status.Parse(qp.Status)
		switch err {
		case nil:
			filter.Status = &sts
		default:
			fieldErrors.Add("status", err)
		}
	}

	if fieldErrors != nil {
		return clientbus.QueryFilter{}, fieldErrors.ToError()
	}

	return filter, nil
}
