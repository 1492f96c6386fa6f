package clientdb

import (
	"bytes"
	"strings"

	"github.com/lyracrm/lyra/business/domain/clientbus"
)

func applyFilter(filter clientbus.QueryFilter, data map[string]any, buf *bytes.Buffer) {
	var wc []string

	if filter.ID != nil {
		data["client_id"] = *filter.ID
		wc = append(wc, "c.client_id = :client_id")
	}

	if filter.Name != nil {
		data["name"] = "%" + filter.Name.String() + "%"
		wc = append(wc, "c.name LIKE :name")
	}

	if filter.Industry != nil {
		data["industry"] = *filter.Industry
		wc = append(wc, "c.industry = :industry")
	}

	if filter.Status != nil {
		data["status"] = filter.Status.String()
		wc = append(wc, "c.status = :status")
	}

	if len(wc) > 0 {
		buf.WriteString(" WHERE ")
		buf.WriteString(strings.Join(wc, " AND "))
	}
}
