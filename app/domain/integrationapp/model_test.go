package integrationapp

import (
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/lyracrm/lyra/business/domain/integrationbus"
	"github.com/lyracrm/lyra/business/types/status"
)

func Test_CredentialKeysOnly(t *testing.T) {
	now := time.Now()

	itg := toAppIntegration(integrationbus.Integration{
		ID:       1,
		ClientID: 1,
		Type:     "kommo",
		Credentials: map[string]any{
			"channel_secret": "s3cret-value",
			"bot_id":         "bot-1",
		},
		Status:    status.Active,
		CreatedAt: now,
		UpdatedAt: now,
	})

	sort.Strings(itg.CredentialKeys)
	if exp := []string{"bot_id", "channel_secret"}; len(itg.CredentialKeys) != 2 || itg.CredentialKeys[0] != exp[0] || itg.CredentialKeys[1] != exp[1] {
		t.Errorf("credentialKeys: got %v, exp %v", itg.CredentialKeys, exp)
	}

	// The raw credential values must never reach a response body.
	data, _, err := itg.Encode()
	if err != nil {
		t.Fatalf("encode: %s", err)
	}
	if strings.Contains(string(data), "s3cret-value") {
		t.Errorf("response leaks credential value: %s", data)
	}
}
