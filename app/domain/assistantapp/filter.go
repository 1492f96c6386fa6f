package assistantapp

import (
	"net/http"
	"strconv"

	"github.com/lyracrm/lyra/app/sdk/errs"
	"github.com/lyracrm/lyra/business/domain/assistantbus"
	"github.com/lyracrm/lyra/business/types/status"
)

type queryParams struct {
	Page     string
	Rows     string
	OrderBy  string
	ID       string
	ClientID string
	Model    string
	Status   string
}

func parseQueryParams(r *http.Request) queryParams {
	values := r.URL.Query()

	return queryParams{
		Page:     values.Get("page"),
		Rows:     values.Get("rows"),
		OrderBy:  values.Get("orderBy"),
		ID:       values.Get("assistant_id"),
		ClientID: values.Get("client_id"),
		Model:    values.Get("model"),
		Status:   values.Get("status"),
	}
}

func parseFilter(qp queryParams) (assistantbus.QueryFilter, error) {
	var fieldErrors errs.FieldErrors
	var filter assistantbus.QueryFilter

	if qp.ID != "" {
		id, err := strconv.ParseInt(qp.ID, 10, 64)
		switch err {
		case nil:
			filter.ID = &id
		default:
			fieldErrors.Add("assistant_id", err)
		}
	}

	if qp.ClientID != "" {
		id, err := strconv.ParseInt(qp.ClientID, 10, 64)
		switch err {
		case nil:
			filter.ClientID = &id
		default:
			fieldErrors.Add("client_id", err)
		}
	}

	if qp.Model != "" {
		filter.Model = &qp.Model
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
		return assistantbus.QueryFilter{}, fieldErrors.ToError()
	}

	return filter, nil
}
