package matching

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"tin-dog/internal/domain/dogs"
	"tin-dog/internal/domain/users"
	"tin-dog/internal/middleware"
	"tin-dog/internal/platform/apperr"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// RegisterRoutes monta /matches y /conversations. r ya debe exigir auth.
func RegisterRoutes(r chi.Router, engine *Engine, convs *Conversations) {
	r.Route("/matches", func(mr chi.Router) {
		mr.Post("/", swipeHandler(engine))
		mr.Get("/", listMatchesHandler(convs))
	})
	r.Route("/conversations/{conversationId}", func(cr chi.Router) {
		cr.Get("/messages", listMessagesHandler(convs))
		cr.Post("/messages", postMessageHandler(convs))
		cr.Post("/read", markReadHandler(convs))
	})
}

type swipeRequest struct {
	DogID  string `json:"dogId" validate:"required"`
	Action string `json:"action" validate:"required,oneof=like pass"`
}

type postMessageRequest struct {
	Content string `json:"content"`
}

type MatchResponse struct {
	ID           string    `json:"id"`
	Participants [2]string `json:"participants"`
	DogID        string    `json:"dogId"`
	Strategy     string    `json:"strategy"`
	Status       string    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
}

type swipeResponse struct {
	Success        bool           `json:"success"`
	IsMatch        bool           `json:"isMatch"`
	Match          *MatchResponse `json:"match,omitempty"`
	ConversationID string         `json:"conversationId,omitempty"`
	Message        string         `json:"message"`
}

// PartyResponse: exactamente uno de dog/user viene informado según kind.
type PartyResponse struct {
	Kind string              `json:"kind"`
	ID   string              `json:"id"`
	Dog  *dogs.DogResponse   `json:"dog,omitempty"`
	User *users.UserResponse `json:"user,omitempty"`
}

type matchSummaryResponse struct {
	MatchResponse
	OtherParty     PartyResponse `json:"otherParty"`
	ConversationID string        `json:"conversationId"`
	Unread         int           `json:"unread"`
}

type MessageResponse struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	Seq            int64     `json:"seq"`
	SenderID       string    `json:"senderId"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
	Read           bool      `json:"read"`
}

type postMessageResponse struct {
	Success bool            `json:"success"`
	Message MessageResponse `json:"message"`
}

type markReadResponse struct {
	Success bool `json:"success"`
	Marked  int  `json:"marked"`
}

// swipeHandler godoc
// @Summary Registrar swipe
// @Description like o pass sobre un perro. Si hay match devuelve el match y la conversación creada.
// @Tags matches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body swipeRequest true "Swipe"
// @Success 200 {object} swipeResponse
// @Failure 400 {object} map[string]string "validation_error"
// @Failure 404 {object} map[string]string "not_found"
// @Router /api/matches [post]
func swipeHandler(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req swipeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperr.WriteCode(w, apperr.CodeValidation, "invalid json")
			return
		}
		if err := validate.Struct(req); err != nil {
			var ves validator.ValidationErrors
			if errors.As(err, &ves) && len(ves) > 0 && ves[0].Field() == "DogID" {
				apperr.WriteCode(w, apperr.CodeValidation, "dogId is required")
				return
			}
			apperr.Write(w, ErrInvalidAction)
			return
		}

		action := Action(req.Action)
		out, err := engine.RecordSwipe(r.Context(), middleware.UserID(r.Context()), req.DogID, action)
		if err != nil {
			apperr.Write(w, err)
			return
		}

		resp := swipeResponse{Success: true, IsMatch: out.IsMatch}
		switch {
		case out.IsMatch:
			m := toMatchResponse(*out.Match)
			resp.Match = &m
			resp.ConversationID = out.Conversation.ID
			resp.Message = "It's a match!"
		case action == ActionLike:
			resp.Message = "Dog liked!"
		default:
			resp.Message = "Dog passed!"
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// listMatchesHandler godoc
// @Summary Matches del usuario
// @Tags matches
// @Produce json
// @Security BearerAuth
// @Success 200 {array} matchSummaryResponse
// @Router /api/matches [get]
func listMatchesHandler(convs *Conversations) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := convs.List(r.Context(), middleware.UserID(r.Context()))
		if err != nil {
			apperr.Write(w, err)
			return
		}

		out := make([]matchSummaryResponse, 0, len(list))
		for _, s := range list {
			out = append(out, matchSummaryResponse{
				MatchResponse:  toMatchResponse(s.Match),
				OtherParty:     toPartyResponse(s.OtherParty),
				ConversationID: s.Conversation.ID,
				Unread:         s.Unread,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// listMessagesHandler godoc
// @Summary Mensajes de una conversación
// @Tags conversations
// @Produce json
// @Security BearerAuth
// @Param conversationId path string true "Conversation ID"
// @Success 200 {array} MessageResponse
// @Failure 403 {object} map[string]string "forbidden"
// @Failure 404 {object} map[string]string "not_found"
// @Router /api/conversations/{conversationId}/messages [get]
func listMessagesHandler(convs *Conversations) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msgs, err := convs.Messages(r.Context(), chi.URLParam(r, "conversationId"), middleware.UserID(r.Context()))
		if err != nil {
			apperr.Write(w, err)
			return
		}
		out := make([]MessageResponse, 0, len(msgs))
		for _, m := range msgs {
			out = append(out, toMessageResponse(m))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// postMessageHandler godoc
// @Summary Enviar mensaje
// @Tags conversations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param conversationId path string true "Conversation ID"
// @Param payload body postMessageRequest true "Mensaje"
// @Success 201 {object} postMessageResponse
// @Failure 400 {object} map[string]string "validation_error"
// @Failure 403 {object} map[string]string "forbidden"
// @Failure 404 {object} map[string]string "not_found"
// @Router /api/conversations/{conversationId}/messages [post]
func postMessageHandler(convs *Conversations) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req postMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			apperr.WriteCode(w, apperr.CodeValidation, "invalid json")
			return
		}

		msg, err := convs.Post(r.Context(), chi.URLParam(r, "conversationId"), middleware.UserID(r.Context()), req.Content)
		if err != nil {
			apperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, postMessageResponse{Success: true, Message: toMessageResponse(msg)})
	}
}

// markReadHandler godoc
// @Summary Marcar conversación como leída
// @Tags conversations
// @Produce json
// @Security BearerAuth
// @Param conversationId path string true "Conversation ID"
// @Success 200 {object} markReadResponse
// @Router /api/conversations/{conversationId}/read [post]
func markReadHandler(convs *Conversations) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := convs.MarkRead(r.Context(), chi.URLParam(r, "conversationId"), middleware.UserID(r.Context()))
		if err != nil {
			apperr.Write(w, err)
			return
		}
		writeJSON(w, http.StatusOK, markReadResponse{Success: true, Marked: n})
	}
}

func toMatchResponse(m Match) MatchResponse {
	return MatchResponse{
		ID:           m.ID,
		Participants: m.Participants,
		DogID:        m.DogID,
		Strategy:     m.Strategy,
		Status:       m.Status,
		Timestamp:    m.CreatedAt,
	}
}

func toPartyResponse(p Party) PartyResponse {
	out := PartyResponse{Kind: string(p.Kind), ID: p.ID}
	switch p.Kind {
	case PartyDog:
		d := dogs.ToResponse(*p.Dog)
		out.Dog = &d
	case PartyUser:
		u := users.ToUserResponse(*p.User)
		out.User = &u
	}
	return out
}

func toMessageResponse(m Message) MessageResponse {
	return MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Seq:            m.Seq,
		SenderID:       m.SenderID,
		Content:        m.Content,
		Timestamp:      m.Timestamp,
		Read:           m.Read,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
