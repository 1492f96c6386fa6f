package contentdb

import (
	"bytes"
	"strings"

	"github.com/lyracrm/lyra/business/domain/contentbus"
)

func applyFilter(filter contentbus.QueryFilter, data map[string]any, buf *bytes.Buffer) {
	var wc []string

	if filter.ID != nil {
		data["content_id"] = *filter.ID
		wc = append(wc, "ct.content_id = :content_id")
	}

	if filter.ClientID != nil {
		data["client_id"] = *filter.ClientID
		wc = append(wc, "ct.client_id = :client_id")
	}

	if filter.AssistantID != nil {
		data["assistant_id"] = *filter.AssistantID
		wc = append(wc, "ct.assistant_id = :assistant_id")
	}

	if filter.Type != nil {
		data["content_type"] = *filter.Type
		wc = append(wc, "ct.content_type = :content_type")
	}

	if filter.Status != nil {
		data["status"] = filter.Status.String()
		wc = append(wc, "ct.status = :status")
	}

	if len(wc) > 0 {
		buf.WriteString(" WHERE ")
		buf.WriteString(strings.Join(wc, " AND "))
	}
}
