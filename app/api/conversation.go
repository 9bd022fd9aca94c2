package api

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2/middleware/session"

	"docchat/types"
)

const (
	messagesKey = "messages"
	flashKey    = "flash"
)

// AppendTurn records one exchange, user message first, then bot reply.
func AppendTurn(msgs []types.Message, question, answer string) []types.Message {
	msgs = append(msgs, types.Message{Role: types.RoleUser, Content: question})
	msgs = append(msgs, types.Message{Role: types.RoleBot, Content: answer})
	return msgs
}

// loadMessages decodes the session's conversation log. A missing or
// corrupt entry is an empty conversation.
func loadMessages(sess *session.Session) []types.Message {
	raw, ok := sess.Get(messagesKey).(string)
	if !ok || raw == "" {
		return nil
	}
	return DecodeMessages(raw)
}

// saveMessages writes the conversation log back to the session. The log
// is stored JSON-encoded so the session storage never has to deal with
// our own types.
func saveMessages(sess *session.Session, msgs []types.Message) error {
	raw, err := EncodeMessages(msgs)
	if err != nil {
		return err
	}
	sess.Set(messagesKey, raw)
	return sess.Save()
}

func EncodeMessages(msgs []types.Message) (string, error) {
	raw, err := json.Marshal(msgs)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func DecodeMessages(raw string) []types.Message {
	var msgs []types.Message
	if err := json.Unmarshal([]byte(raw), &msgs); err != nil {
		return nil
	}
	return msgs
}

func setFlash(sess *session.Session, msg string) {
	sess.Set(flashKey, msg)
}

// popFlash reads and clears the one-shot flash message. The caller is
// responsible for saving the session.
func popFlash(sess *session.Session) string {
	msg, _ := sess.Get(flashKey).(string)
	sess.Delete(flashKey)
	return msg
}
