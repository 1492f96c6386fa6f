package assistantdb

import (
	"bytes"
	"strings"

	"github.com/lyracrm/lyra/business/domain/assistantbus"
)

func applyFilter(filter assistantbus.QueryFilter, data map[string]any, buf *bytes.Buffer) {
	var wc []string

	if filter.ID != nil {
		data["assistant_id"] = *filter.ID
		wc = append(wc, "a.assistant_id = :assistant_id")
	}

	if filter.ClientID != nil {
		data["client_id"] = *filter.ClientID
		wc = append(wc, "a.client_id = :client_id")
	}

	if filter.Model != nil {
		data["model"] = *filter.Model
		wc = append(wc, "a.model = :model")
	}

	if filter.Status != nil {
		data["status"] = filter.Status.String()
		wc = append(wc, "a.status = :status")
	}

	if len(wc) > 0 {
		buf.WriteString(" WHERE ")
		buf.WriteString(strings.Join(wc, " AND "))
	}
}
