// Package kommoapp maintains the app layer api for the Kommo webhook
// bridge.
package kommoapp

import (
	"context"
	"net/http"

	"github.com/lyracrm/lyra/app/sdk/errs"
	"github.com/lyracrm/lyra/business/sdk/web"
	"github.com/lyracrm/lyra/foundation/kommo"
	"github.com/lyracrm/lyra/foundation/logger"
)

// replyText is the canned acknowledgement sent back into the
// conversation.
const replyText = "Gracias por tu mensaje! ¿En qué puedo ayudarte?"

type app struct {
	log    *logger.Logger
	client *kommo.Client
}

func newApp(log *logger.Logger, client *kommo.Client) *app {
	return &app{
		log:    log,
		client: client,
	}
}

// webhook acks the inbound message immediately. The reply is dispatched
// in the background so a slow or failing channel API never delays the
// webhook response; dispatch failures are logged, never raised.
func (a *app) webhook(ctx context.Context, r *http.Request) web.Encoder {
	var app Webhook
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	msg := app.Message.Add[0]

	reply := kommo.Reply{
		ConversationID: msg.ChatID,
		ReceiverID:     msg.Author.ID,
		ReceiverName:   msg.Author.Name,
		ReceiverAvatar: msg.Author.AvatarURL,
		Text:           replyText,
	}

	go func(ctx context.Context) {
		result := a.client.SendReply(ctx, reply)
		if !result.Success {
			a.log.Error(ctx, "kommo webhook: reply failed", "chat_id", msg.ChatID, "err", result.Error)
		}
	}(context.WithoutCancel(ctx))

	return Ack{Accepted: true}
}
