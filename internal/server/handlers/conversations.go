package handlers

import (
	"net/http"

	"github.com/agentstation/smsrelay/internal/openphone"
	"github.com/agentstation/smsrelay/internal/server/response"
)

// HandleListConversations handles GET /conversations.
// Only one-to-one conversations are returned, each with its latest message.
func (h *Handlers) HandleListConversations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	maxResults, err := parsePositiveInt(q.Get("maxResults"))
	if err != nil {
		response.BadRequest(w, "maxResults must be a positive integer")
		return
	}

	page, err := h.phone.ListConversations(r.Context(), openphone.ConversationsQuery{
		PageToken:  q.Get("pageToken"),
		MaxResults: maxResults,
	})
	if err != nil {
		h.log(r).Error().Err(err).Msg("Failed to list conversations")
		response.ErrorFromType(w, err)
		return
	}

	response.OK(w, page)
}
