package integrationdb

import (
	"bytes"
	"strings"

	"github.com/lyracrm/lyra/business/domain/integrationbus"
)

func applyFilter(filter integrationbus.QueryFilter, data map[string]any, buf *bytes.Buffer) {
	var wc []string

	if filter.ID != nil {
		data["integration_id"] = *filter.ID
		wc = append(wc, "i.integration_id = :integration_id")
	}

	if filter.ClientID != nil {
		data["client_id"] = *filter.ClientID
		wc = append(wc, "i.client_id = :client_id")
	}

	if filter.Type != nil {
		data["integration_type"] = *filter.Type
		wc = append(wc, "i.integration_type = :integration_type")
	}

	if filter.Status != nil {
		data["status"] = filter.Status.String()
		wc = append(wc, "i.status = :status")
	}

	if len(wc) > 0 {
		buf.WriteString(" WHERE ")
		buf.WriteString(strings.Join(wc, " AND "))
	}
}
