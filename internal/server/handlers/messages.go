package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/agentstation/smsrelay/internal/openphone"
	"github.com/agentstation/smsrelay/internal/server/response"
	"github.com/agentstation/smsrelay/internal/translate"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// HandleListMessages handles GET /messages.
// participants may be repeated or comma-separated; limit maps to the
// provider's maxResults.
func (h *Handlers) HandleListMessages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	phoneNumberID := strings.TrimSpace(q.Get("phoneNumberId"))
	participants := splitParticipants(append(q["participants"], q["participants[]"]...))

	if phoneNumberID == "" || len(participants) == 0 {
		response.BadRequest(w, "phoneNumberId and participants are required")
		return
	}
	limit, err := parsePositiveInt(q.Get("limit"))
	if err != nil {
		response.BadRequest(w, "limit must be a positive integer")
		return
	}

	page, err := h.phone.ListMessages(r.Context(), openphone.MessagesQuery{
		PhoneNumberID: phoneNumberID,
		Participants:  participants,
		PageToken:     q.Get("pageToken"),
		MaxResults:    limit,
	})
	if err != nil {
		h.log(r).Error().Err(err).Str("phone_number_id", phoneNumberID).Msg("Failed to list messages")
		response.ErrorFromType(w, err)
		return
	}

	response.OK(w, page)
}

// recipients accepts either a single number or a list.
type recipients []string

func (rs *recipients) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one == "" {
			*rs = nil
		} else {
			*rs = recipients{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("to must be a string or an array of strings")
	}
	*rs = many
	return nil
}

// sendMessageRequest is the POST /messages body.
type sendMessageRequest struct {
	Text       string     `json:"text"`
	To         recipients `json:"to"`
	From       string     `json:"from,omitempty"`
	TargetLang string     `json:"targetLang,omitempty"`
	SourceLang string     `json:"sourceLang,omitempty"`
	UserID     string     `json:"userId,omitempty"`
	Strict     bool       `json:"strict,omitempty"`
}

// HandleSendMessage handles POST /messages.
//
// The text is translated first when targetLang is set. In strict mode a
// translation failure aborts with 500; otherwise the original text is sent.
// The provider's response status and body are relayed unchanged.
func (h *Handlers) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	to := splitParticipants(req.To)
	if strings.TrimSpace(req.Text) == "" || len(to) == 0 {
		response.BadRequest(w, "text and to are required")
		return
	}
	from := req.From
	if from == "" {
		from = h.cfg.DefaultFrom
	}
	if from == "" {
		response.BadRequest(w, "from is required (set OPENPHONE_FROM or pass from)")
		return
	}
	userID := req.UserID
	if userID == "" {
		userID = h.cfg.DefaultUserID
	}

	content := req.Text
	if req.TargetLang != "" {
		tr := translate.Request{Text: req.Text, TargetLang: req.TargetLang, SourceLang: req.SourceLang}
		if req.Strict {
			out, err := h.translator.TranslateStrict(r.Context(), tr)
			if err != nil {
				response.ErrorFromType(w, err)
				return
			}
			content = out
		} else {
			content = h.translator.Translate(r.Context(), tr)
		}
	}

	raw, err := h.phone.SendMessage(r.Context(), openphone.SendRequest{
		Content: content,
		From:    from,
		To:      to,
		UserID:  userID,
	})
	if err != nil {
		h.log(r).Error().Err(err).Msg("Failed to send message")
		response.ErrorFromType(w, err)
		return
	}

	h.log(r).Info().
		Int("upstream_status", raw.StatusCode).
		Int("recipients", len(to)).
		Bool("translated", content != req.Text).
		Msg("Message relayed")
	response.Passthrough(w, raw.StatusCode, raw.ContentType, raw.Body)
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil {
		return fmt.Errorf("request body is required")
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %v", err)
	}
	return nil
}

// splitParticipants flattens comma-separated values and drops blanks.
func splitParticipants(values []string) []string {
	var out []string
	for _, v := range values {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// parsePositiveInt parses an optional query integer; empty means zero.
func parsePositiveInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid positive integer %q", s)
	}
	return n, nil
}
