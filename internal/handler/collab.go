package handler

import (
	"context"  // contexts for store and publisher calls
	"errors"   // errors.Is comparisons against store sentinels
	"net/http" // HTTP status codes
	"strings"  // code normalization
	"time"     // event timestamps

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/collab-shopping/internal/middleware"
	"github.com/iliyamo/collab-shopping/internal/model"
	"github.com/iliyamo/collab-shopping/internal/queue"
	"github.com/iliyamo/collab-shopping/internal/store"
	"github.com/iliyamo/collab-shopping/internal/utils"
)

// Catalog is the product lookup collaborator.  addItem consults it only
// when the payload carries a bare productId instead of denormalized
// product data.
type Catalog interface {
	GetProduct(ctx context.Context, id uint64) (*model.Product, error)
}

// Publisher emits a session activity event.  Failures are the
// publisher's problem: the dispatch surface never fails a request over
// a broker error.
type Publisher func(ctx context.Context, ev queue.SessionActivityEvent) error

// maxCodeAttempts bounds join-code regeneration on collision.  With a
// ~887M code space a second collision in a row already means something
// is very wrong with the store.
const maxCodeAttempts = 5

// CollabHandler is the single dispatch surface for the collaborative
// shopping engine.  Clients POST an action discriminator plus payload
// to /collab; every mutating action validates its payload, applies an
// atomic update through the session store and returns the full updated
// snapshot (never a diff).  Clients reconcile by replacing their local
// view wholesale.
type CollabHandler struct {
	Store       store.Store // authoritative session state
	Catalog     Catalog     // product lookup; nil when no catalog is configured
	Publish     Publisher   // activity events; nil disables publishing
	TokenSecret string      // secret for participant tokens
	TokenTTL    time.Duration
}

// NewCollabHandler constructs a CollabHandler.  The store is mandatory;
// catalog and publisher are optional collaborators.
func NewCollabHandler(st store.Store, catalog Catalog, publish Publisher, tokenSecret string, tokenTTL time.Duration) *CollabHandler {
	if st == nil {
		panic("nil store passed to NewCollabHandler")
	}
	return &CollabHandler{
		Store:       st,
		Catalog:     catalog,
		Publish:     publish,
		TokenSecret: tokenSecret,
		TokenTTL:    tokenTTL,
	}
}

// collabRequest is the wire shape of every /collab action.  Fields not
// used by an action are simply ignored for that action.
type collabRequest struct {
	Action      string         `json:"action"`
	Name        string         `json:"name"`     // create: session display name
	HostName    string         `json:"hostName"` // create: host identity
	Code        string         `json:"code"`     // join code, case-insensitive
	UserName    string         `json:"userName"` // actor identity where not token-attributed
	ProductID   uint64         `json:"productId"`
	ProductData *model.Product `json:"productData"`
	AddedBy     string         `json:"addedBy"`
	Size        string         `json:"size"`
	Color       string         `json:"color"`
	Notes       string         `json:"notes"`
	ItemID      uint64         `json:"itemId"`
	Value       int            `json:"value"`
	Message     string         `json:"message"`
}

// Dispatch handles POST /collab.  It binds the body, switches on the
// action discriminator and hands off to the per-action method.
func (h *CollabHandler) Dispatch(c echo.Context) error {
	var req collabRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))

	switch req.Action {
	case "create":
		return h.create(c, req)
	case "join":
		return h.join(c, req)
	case "addItem":
		return h.addItem(c, req)
	case "removeItem":
		return h.removeItem(c, req)
	case "vote":
		return h.vote(c, req)
	case "sendMessage":
		return h.sendMessage(c, req, model.MessageTypeChat)
	case "react":
		return h.sendMessage(c, req, model.MessageTypeReaction)
	case "refresh":
		return h.refresh(c, req.Code)
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown action"})
	}
}

// Refresh handles GET /collab/:code, the polling read path.  It is the
// same snapshot the mutating actions return, fetched without mutation.
func (h *CollabHandler) Refresh(c echo.Context) error {
	return h.refresh(c, strings.ToUpper(strings.TrimSpace(c.Param("code"))))
}

func (h *CollabHandler) refresh(c echo.Context, code string) error {
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code is required"})
	}
	snap, err := h.Store.Get(c.Request().Context(), code)
	if err != nil {
		return h.storeError(c, err)
	}
	return c.JSON(http.StatusOK, snap)
}

func (h *CollabHandler) create(c echo.Context, req collabRequest) error {
	name := strings.TrimSpace(req.Name)
	host := strings.TrimSpace(req.HostName)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if host == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "hostName is required"})
	}
	ctx := c.Request().Context()
	var snap *model.Session
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := utils.NewJoinCode()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to generate join code"})
		}
		s := model.NewSession(code, name, host)
		err = h.Store.Create(ctx, s)
		if errors.Is(err, store.ErrCodeTaken) {
			continue // regenerate and retry
		}
		if err != nil {
			return h.storeError(c, err)
		}
		snap = s
		break
	}
	if snap == nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to allocate a unique join code"})
	}
	h.issueToken(c, snap.Code, host)
	h.publish(queue.SessionActivityEvent{
		SessionCode:  snap.Code,
		SessionName:  snap.Name,
		Action:       "create",
		Actor:        host,
		Participants: len(snap.Participants),
		OccurredAt:   time.Now().UTC().Format(time.RFC3339),
	})
	return c.JSON(http.StatusCreated, snap)
}

func (h *CollabHandler) join(c echo.Context, req collabRequest) error {
	user := h.actor(c, req.UserName)
	if req.Code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code is required"})
	}
	if user == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "userName is required"})
	}
	joined := false
	snap, err := h.Store.Update(c.Request().Context(), req.Code, func(s *model.Session) error {
		joined = s.Join(user)
		return nil
	})
	if err != nil {
		return h.storeError(c, err)
	}
	h.issueToken(c, snap.Code, user)
	if joined {
		h.publish(queue.SessionActivityEvent{
			SessionCode:  snap.Code,
			SessionName:  snap.Name,
			Action:       "join",
			Actor:        user,
			Participants: len(snap.Participants),
			OccurredAt:   time.Now().UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, snap)
}

func (h *CollabHandler) addItem(c echo.Context, req collabRequest) error {
	addedBy := h.actor(c, req.AddedBy)
	if req.Code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code is required"})
	}
	if addedBy == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "addedBy is required"})
	}

	// Resolve the product: a denormalized snapshot wins, otherwise the
	// catalog collaborator resolves the bare id.
	var product model.Product
	switch {
	case req.ProductData != nil && strings.TrimSpace(req.ProductData.Title) != "":
		product = *req.ProductData
	case req.ProductID != 0:
		if h.Catalog == nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "no catalog configured; productData is required"})
		}
		p, err := h.Catalog.GetProduct(c.Request().Context(), req.ProductID)
		if err != nil {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		product = *p
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "productId or productData is required"})
	}

	var added model.CartItem
	snap, err := h.Store.Update(c.Request().Context(), req.Code, func(s *model.Session) error {
		added = *s.AddItem(product, addedBy, req.Size, req.Color, req.Notes)
		return nil
	})
	if err != nil {
		return h.storeError(c, err)
	}
	h.publish(queue.SessionActivityEvent{
		SessionCode:  snap.Code,
		SessionName:  snap.Name,
		Action:       "addItem",
		Actor:        addedBy,
		ItemID:       added.ID,
		ItemTitle:    added.Product.Title,
		Participants: len(snap.Participants),
		OccurredAt:   time.Now().UTC().Format(time.RFC3339),
	})
	return c.JSON(http.StatusOK, snap)
}

func (h *CollabHandler) removeItem(c echo.Context, req collabRequest) error {
	requester := h.actor(c, req.UserName)
	if req.Code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code is required"})
	}
	if req.ItemID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "itemId is required"})
	}
	if requester == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "userName or participant token is required"})
	}
	var removedTitle string
	snap, err := h.Store.Update(c.Request().Context(), req.Code, func(s *model.Session) error {
		item := s.Item(req.ItemID)
		if item == nil {
			return store.ErrItemNotFound
		}
		// Only the participant who added the item or the host may
		// remove it.
		if requester != item.AddedBy && requester != s.HostID {
			return store.ErrForbidden
		}
		removedTitle = item.Product.Title
		s.RemoveItem(req.ItemID)
		return nil
	})
	if err != nil {
		return h.storeError(c, err)
	}
	h.publish(queue.SessionActivityEvent{
		SessionCode:  snap.Code,
		SessionName:  snap.Name,
		Action:       "removeItem",
		Actor:        requester,
		ItemID:       req.ItemID,
		ItemTitle:    removedTitle,
		Participants: len(snap.Participants),
		OccurredAt:   time.Now().UTC().Format(time.RFC3339),
	})
	return c.JSON(http.StatusOK, snap)
}

func (h *CollabHandler) vote(c echo.Context, req collabRequest) error {
	voter := h.actor(c, req.UserName)
	if req.Code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code is required"})
	}
	if req.ItemID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "itemId is required"})
	}
	if req.Value != 1 && req.Value != -1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "value must be +1 or -1"})
	}
	if voter == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "userName or participant token is required"})
	}
	var itemTitle string
	snap, err := h.Store.Update(c.Request().Context(), req.Code, func(s *model.Session) error {
		item := s.Item(req.ItemID)
		if item == nil {
			return store.ErrItemNotFound
		}
		// Re-voting overwrites; one vote per (item, voter) always.
		item.SetVote(voter, req.Value)
		itemTitle = item.Product.Title
		return nil
	})
	if err != nil {
		return h.storeError(c, err)
	}
	h.publish(queue.SessionActivityEvent{
		SessionCode:  snap.Code,
		SessionName:  snap.Name,
		Action:       "vote",
		Actor:        voter,
		ItemID:       req.ItemID,
		ItemTitle:    itemTitle,
		VoteValue:    req.Value,
		Participants: len(snap.Participants),
		OccurredAt:   time.Now().UTC().Format(time.RFC3339),
	})
	return c.JSON(http.StatusOK, snap)
}

func (h *CollabHandler) sendMessage(c echo.Context, req collabRequest, msgType string) error {
	user := h.actor(c, req.UserName)
	if req.Code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code is required"})
	}
	if user == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "userName is required"})
	}
	text := strings.TrimSpace(req.Message)
	if text == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "message is required"})
	}
	snap, err := h.Store.Update(c.Request().Context(), req.Code, func(s *model.Session) error {
		s.AppendMessage(user, text, msgType)
		return nil
	})
	if err != nil {
		return h.storeError(c, err)
	}
	h.publish(queue.SessionActivityEvent{
		SessionCode:  snap.Code,
		SessionName:  snap.Name,
		Action:       req.Action,
		Actor:        user,
		Participants: len(snap.Participants),
		OccurredAt:   time.Now().UTC().Format(time.RFC3339),
	})
	return c.JSON(http.StatusOK, snap)
}

// actor resolves the acting participant: an explicit payload field
// wins, then the verified participant token, then empty.
func (h *CollabHandler) actor(c echo.Context, payloadName string) string {
	if name := strings.TrimSpace(payloadName); name != "" {
		return name
	}
	return middleware.ParticipantName(c)
}

// issueToken attaches a participant token for the given identity to
// the response so the client can attribute later actions without
// resending its name.  Token failures are silently dropped: the token
// is a convenience, not a requirement.
func (h *CollabHandler) issueToken(c echo.Context, code, userName string) {
	if h.TokenSecret == "" {
		return
	}
	tok, err := utils.NewParticipantToken(h.TokenSecret, utils.ParticipantClaims{
		SessionCode: code,
		UserName:    userName,
	}, h.TokenTTL)
	if err != nil {
		return
	}
	c.Response().Header().Set("X-Participant-Token", tok)
}

// publish fires an activity event without blocking the request.  The
// publisher dials the broker itself and logs its own failures.
func (h *CollabHandler) publish(ev queue.SessionActivityEvent) {
	if h.Publish == nil {
		return
	}
	go func() { _ = h.Publish(context.Background(), ev) }()
}

// storeError maps store sentinels onto HTTP responses.
func (h *CollabHandler) storeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, store.ErrSessionNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
	case errors.Is(err, store.ErrItemNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "cart item not found"})
	case errors.Is(err, store.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "session store failure"})
	}
}
